// Package collision forwards physics notifications onto the event bus.
package collision

import (
	"sync/atomic"

	"github.com/zeusync/dropchooser/internal/core/events/bus"
	"github.com/zeusync/dropchooser/internal/core/observability/log"
	"github.com/zeusync/dropchooser/internal/core/systems/physics"
)

var _ physics.CollisionHandler = (*Bridge)(nil)

// Bridge publishes an Intersection event for every sensor overlap that begins.
// Separations are ignored and solid contacts are only counted.
type Bridge struct {
	sender   bus.Sender
	logger   log.Log
	contacts atomic.Uint64
	failures atomic.Uint64
}

func NewBridge(sender bus.Sender, logger log.Log) *Bridge {
	if logger == nil {
		logger = log.Nop()
	}
	return &Bridge{sender: sender, logger: logger.Named("collision")}
}

func (b *Bridge) HandleIntersection(e physics.IntersectionEvent) {
	if !e.Intersecting {
		return
	}
	if err := b.sender.Send(bus.Intersection{A: e.A, B: e.B}); err != nil {
		b.failures.Add(1)
		b.logger.Warn("dropping intersection event", log.Error(err))
	}
}

func (b *Bridge) HandleContact(e physics.ContactEvent) {
	if e.Started {
		b.contacts.Add(1)
	}
}

// Contacts returns how many solid contacts have started.
func (b *Bridge) Contacts() uint64 { return b.contacts.Load() }

// Failures returns how many intersection events could not be published.
func (b *Bridge) Failures() uint64 { return b.failures.Load() }
