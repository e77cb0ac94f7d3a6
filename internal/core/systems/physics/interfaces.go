package physics

import (
	"github.com/jakecoffman/cp"

	"github.com/zeusync/dropchooser/internal/core/models"
)

// Handle is an opaque token for a collider owned by a Registry.
// The zero value is invalid. Handles are comparable and only meaningful
// when passed back to the Registry that issued them.
type Handle struct {
	shape *cp.Shape
}

// IsZero reports whether h was never issued.
func (h Handle) IsZero() bool { return h.shape == nil }

// Body is a read-only snapshot of a registered body.
type Body struct {
	ID       models.EntityID
	Position Vec2
	Velocity Vec2
	Angle    float64
	Static   bool
	Sensor   bool
}

// CollisionHandler receives engine collision notifications.
//
// Both methods are invoked synchronously from inside Registry.Step on the
// stepping goroutine. Implementations must not call back into the Registry.
type CollisionHandler interface {
	// HandleIntersection is called when a ball starts or stops overlapping a sensor.
	HandleIntersection(IntersectionEvent)
	// HandleContact is called when a ball starts or stops touching a solid or another ball.
	HandleContact(ContactEvent)
}

// IntersectionEvent reports a sensor overlap change. A is always the ball.
type IntersectionEvent struct {
	A, B         Handle
	Intersecting bool
}

// ContactEvent reports a solid contact change. A is always a ball.
type ContactEvent struct {
	A, B    Handle
	Started bool
}

// NopHandler discards every notification.
type NopHandler struct{}

func (NopHandler) HandleIntersection(IntersectionEvent) {}
func (NopHandler) HandleContact(ContactEvent)           {}
