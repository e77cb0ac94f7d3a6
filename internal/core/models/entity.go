package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidEntityID = errors.New("invalid entity id")

// EntityID is the stable, process-unique identity of a simulated object.
// It is a 128-bit unsigned integer split into two words. The zero value
// is never allocated and marks "no entity".
type EntityID struct {
	hi, lo uint64
}

// NewEntityID builds an EntityID from its high and low words.
func NewEntityID(hi, lo uint64) EntityID {
	return EntityID{hi: hi, lo: lo}
}

func (id EntityID) Hi() uint64   { return id.hi }
func (id EntityID) Lo() uint64   { return id.lo }
func (id EntityID) IsZero() bool { return id.hi == 0 && id.lo == 0 }

// Less reports whether id was allocated before other.
func (id EntityID) Less(other EntityID) bool {
	if id.hi != other.hi {
		return id.hi < other.hi
	}
	return id.lo < other.lo
}

// String prints the decimal value while it fits in 64 bits, hex otherwise.
func (id EntityID) String() string {
	if id.hi == 0 {
		return fmt.Sprintf("%d", id.lo)
	}
	return fmt.Sprintf("0x%x%016x", id.hi, id.lo)
}

func (id EntityID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *EntityID) UnmarshalText(text []byte) error {
	parsed, err := ParseEntityID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseEntityID reads the format produced by String.
func ParseEntityID(s string) (EntityID, error) {
	hex, ok := strings.CutPrefix(s, "0x")
	if !ok {
		lo, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return EntityID{}, fmt.Errorf("%w: %q", ErrInvalidEntityID, s)
		}
		return EntityID{lo: lo}, nil
	}
	if len(hex) <= 16 || len(hex) > 32 {
		return EntityID{}, fmt.Errorf("%w: %q", ErrInvalidEntityID, s)
	}
	split := len(hex) - 16
	hi, err := strconv.ParseUint(hex[:split], 16, 64)
	if err != nil {
		return EntityID{}, fmt.Errorf("%w: %q", ErrInvalidEntityID, s)
	}
	lo, err := strconv.ParseUint(hex[split:], 16, 64)
	if err != nil {
		return EntityID{}, fmt.Errorf("%w: %q", ErrInvalidEntityID, s)
	}
	return EntityID{hi: hi, lo: lo}, nil
}

func (id EntityID) next() EntityID {
	if id.lo == math.MaxUint64 {
		if id.hi == math.MaxUint64 {
			panic("models: entity id space exhausted")
		}
		return EntityID{hi: id.hi + 1}
	}
	return EntityID{hi: id.hi, lo: id.lo + 1}
}

// IDAllocator hands out strictly increasing EntityIDs starting at 1.
// IDs are never reused. The zero value is ready to use and is not safe
// for concurrent use.
type IDAllocator struct {
	last EntityID
}

// Next allocates a fresh EntityID.
func (a *IDAllocator) Next() EntityID {
	a.last = a.last.next()
	return a.last
}

// Last returns the most recently allocated EntityID, or the zero ID.
func (a *IDAllocator) Last() EntityID {
	return a.last
}
