package drawdata

// Kind classifies an entity for rendering. The zero value is Unknown.
type Kind uint8

const (
	Unknown Kind = iota
	Ball
	Wall
	Nail
	Collector
	Floor
)

func (k Kind) String() string {
	switch k {
	case Ball:
		return "ball"
	case Wall:
		return "wall"
	case Nail:
		return "nail"
	case Collector:
		return "collector"
	case Floor:
		return "floor"
	default:
		return "unknown"
	}
}

// Drawable reports whether renderers should draw entities of this kind.
func (k Kind) Drawable() bool { return k != Unknown }

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText maps unrecognised names to Unknown.
func (k *Kind) UnmarshalText(text []byte) error {
	*k = ParseKind(string(text))
	return nil
}

func ParseKind(s string) Kind {
	for c := Ball; c <= Floor; c++ {
		if c.String() == s {
			return c
		}
	}
	return Unknown
}
