package bus

import (
	"fmt"

	"github.com/zeusync/dropchooser/internal/core/systems/physics"
)

// Category names a family of events for subscription.
type Category uint8

const (
	CategoryKeyPressed Category = iota + 1
	CategoryIntersection
)

func (c Category) String() string {
	switch c {
	case CategoryKeyPressed:
		return "KeyPressed"
	case CategoryIntersection:
		return "IntersectionEvent"
	default:
		return fmt.Sprintf("Category(%d)", uint8(c))
	}
}

// Key is a frontend-independent key code.
type Key uint8

const (
	KeyUnknown Key = iota
	KeySpace
	KeyEscape
	KeyEnter
)

func (k Key) String() string {
	switch k {
	case KeySpace:
		return "space"
	case KeyEscape:
		return "escape"
	case KeyEnter:
		return "enter"
	default:
		return "unknown"
	}
}

// KeyPressed is published when the user presses a key.
type KeyPressed struct {
	Key Key
}

func (KeyPressed) Category() Category { return CategoryKeyPressed }
func (KeyPressed) isEvent()           {}

// Intersection is published when two colliders begin to overlap.
type Intersection struct {
	A, B physics.Handle
}

func (Intersection) Category() Category { return CategoryIntersection }
func (Intersection) isEvent()           {}
