package drawdata

import "github.com/zeusync/dropchooser/internal/core/models"

// Attributes is a snapshot of everything recorded for one entity.
// Nil pointers and an empty Name mean the attribute was never set.
type Attributes struct {
	Kind     Kind          `json:"kind"`
	Color    *models.Color `json:"color,omitempty"`
	Rect     *Rect         `json:"rect,omitempty"`
	Rotation *float64      `json:"rotation,omitempty"`
	Name     string        `json:"name,omitempty"`
}

const (
	hasColor uint8 = 1 << iota
	hasRect
	hasRotation
	hasName
	hasKind
)

type record struct {
	set      uint8
	kind     Kind
	color    models.Color
	rect     Rect
	rotation float64
	name     string
}

// Store keeps render attributes keyed by Entity ID. Each attribute is set
// independently and a later insert overwrites an earlier one. It is owned
// by the tick goroutine and is not safe for concurrent use.
type Store struct {
	records map[models.EntityID]*record
}

func NewStore() *Store {
	return &Store{records: make(map[models.EntityID]*record)}
}

func (s *Store) entry(id models.EntityID) *record {
	r, ok := s.records[id]
	if !ok {
		r = &record{}
		s.records[id] = r
	}
	return r
}

func (s *Store) InsertColor(id models.EntityID, c models.Color) {
	r := s.entry(id)
	r.color = c
	r.set |= hasColor
}

func (s *Store) InsertKind(id models.EntityID, k Kind) {
	r := s.entry(id)
	r.kind = k
	r.set |= hasKind
}

func (s *Store) InsertRect(id models.EntityID, rect Rect) {
	r := s.entry(id)
	r.rect = rect
	r.set |= hasRect
}

func (s *Store) InsertRotation(id models.EntityID, rotation float64) {
	r := s.entry(id)
	r.rotation = rotation
	r.set |= hasRotation
}

func (s *Store) InsertName(id models.EntityID, name string) {
	r := s.entry(id)
	r.name = name
	r.set |= hasName
}

func (s *Store) lookup(id models.EntityID, flag uint8) (*record, bool) {
	r, ok := s.records[id]
	if !ok || r.set&flag == 0 {
		return nil, false
	}
	return r, true
}

func (s *Store) Color(id models.EntityID) (models.Color, bool) {
	r, ok := s.lookup(id, hasColor)
	if !ok {
		return models.Color{}, false
	}
	return r.color, true
}

// Kind never fails: entities without a recorded kind are Unknown.
func (s *Store) Kind(id models.EntityID) Kind {
	r, ok := s.lookup(id, hasKind)
	if !ok {
		return Unknown
	}
	return r.kind
}

func (s *Store) Rect(id models.EntityID) (Rect, bool) {
	r, ok := s.lookup(id, hasRect)
	if !ok {
		return Rect{}, false
	}
	return r.rect, true
}

func (s *Store) Rotation(id models.EntityID) (float64, bool) {
	r, ok := s.lookup(id, hasRotation)
	if !ok {
		return 0, false
	}
	return r.rotation, true
}

func (s *Store) Name(id models.EntityID) (string, bool) {
	r, ok := s.lookup(id, hasName)
	if !ok {
		return "", false
	}
	return r.name, true
}

// Get returns a copy of every attribute recorded for id.
func (s *Store) Get(id models.EntityID) (Attributes, bool) {
	r, ok := s.records[id]
	if !ok {
		return Attributes{}, false
	}

	a := Attributes{Kind: r.kind, Name: r.name}
	if r.set&hasColor != 0 {
		c := r.color
		a.Color = &c
	}
	if r.set&hasRect != 0 {
		rect := r.rect
		a.Rect = &rect
	}
	if r.set&hasRotation != 0 {
		rot := r.rotation
		a.Rotation = &rot
	}
	return a, true
}

// Forget drops every attribute of id.
func (s *Store) Forget(id models.EntityID) {
	delete(s.records, id)
}

// Len returns how many entities have at least one attribute.
func (s *Store) Len() int { return len(s.records) }
