package bus

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/zeusync/dropchooser/internal/core/observability/log"
	"github.com/zeusync/dropchooser/pkg/sequence"
)

// Receiver is a subscriber's private FIFO inbox.
// It is filled by Bus.Drain and emptied by its owner.
type Receiver struct {
	id         string
	categories []Category
	inbox      sequence.Queue[Event]
	closed     atomic.Bool
}

func (r *Receiver) ID() string { return r.id }

func (r *Receiver) Categories() []Category { return slices.Clone(r.categories) }

// TryRecv pops the oldest delivered event.
func (r *Receiver) TryRecv() (Event, bool) { return r.inbox.Dequeue() }

// Recv returns every delivered event in order and empties the inbox.
func (r *Receiver) Recv() []Event { return r.inbox.DrainAll() }

func (r *Receiver) Len() int { return r.inbox.Len() }

// Close stops delivery to r. The next Drain reports the failure and
// drops r from the routing table.
func (r *Receiver) Close() { r.closed.Store(true) }

func (r *Receiver) deliver(e Event) error {
	if r.closed.Load() {
		return ErrReceiverClosed
	}
	r.inbox.Enqueue(e)
	return nil
}

// Option configures a Bus.
type Option func(*Bus)

func WithPolicy(p Policy) Option {
	return func(b *Bus) { b.policy = p }
}

func WithObserver(o Observer) Option {
	return func(b *Bus) {
		if o != nil {
			b.observers = append(b.observers, o)
		}
	}
}

// Bus queues published events and routes them to receivers by category.
//
// Publishing is safe from any goroutine. Drain must be called from a
// single goroutine, normally once per simulation tick.
type Bus struct {
	pending   sequence.Queue[Event]
	policy    Policy
	observers []Observer
	closed    atomic.Bool

	mu     sync.RWMutex
	routes map[Category][]*Receiver

	published atomic.Uint64
	delivered atomic.Uint64
	unrouted  atomic.Uint64
	failures  atomic.Uint64
}

// New creates a bus using DeliverAll unless another policy is given.
func New(opts ...Option) *Bus {
	b := &Bus{
		policy: DeliverAll,
		routes: make(map[Category][]*Receiver),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type publisher struct {
	bus *Bus
}

func (p publisher) Send(e Event) error { return p.bus.publish(e) }

// Publisher returns a Sender bound to b. Any number may be handed out.
func (b *Bus) Publisher() Sender { return publisher{bus: b} }

func (b *Bus) publish(e Event) error {
	if e == nil {
		return ErrNilEvent
	}
	if b.closed.Load() {
		return ErrBusClosed
	}
	b.pending.Enqueue(e)
	b.published.Add(1)
	for _, o := range b.observers {
		o.OnPublish(e)
	}
	return nil
}

// Subscribe creates a receiver for one category.
func (b *Bus) Subscribe(category Category) *Receiver {
	return b.SubscribeMany(category)
}

// SubscribeMany creates one receiver registered under every given category.
// Duplicate categories are registered once.
func (b *Bus) SubscribeMany(categories ...Category) *Receiver {
	r := &Receiver{id: uuid.NewString()}
	for _, c := range categories {
		if !slices.Contains(r.categories, c) {
			r.categories = append(r.categories, c)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range r.categories {
		b.routes[c] = append(b.routes[c], r)
	}
	return r
}

// Pending returns the number of events waiting to be drained.
func (b *Bus) Pending() int { return b.pending.Len() }

// Drain routes pending events according to the bus policy and returns how
// many receiver deliveries succeeded. Failed deliveries do not stop routing;
// they are joined into the returned error.
func (b *Bus) Drain() (int, error) {
	var (
		delivered int
		errs      []error
		stale     []*Receiver
	)

	switch b.policy {
	case DeliverFirstMatch:
		for {
			e, ok := b.pending.Dequeue()
			if !ok {
				break
			}
			n, routed, err := b.route(e, &stale)
			delivered += n
			if err != nil {
				errs = append(errs, err)
			}
			if routed {
				break
			}
		}
	default:
		for _, e := range b.pending.DrainAll() {
			n, _, err := b.route(e, &stale)
			delivered += n
			if err != nil {
				errs = append(errs, err)
			}
		}
	}

	if len(stale) > 0 {
		b.prune(stale)
	}
	return delivered, errors.Join(errs...)
}

// route hands e to every receiver of its category. routed reports whether
// the category had any receivers at all.
func (b *Bus) route(e Event, stale *[]*Receiver) (n int, routed bool, err error) {
	b.mu.RLock()
	receivers := b.routes[e.Category()]
	b.mu.RUnlock()

	if len(receivers) == 0 {
		b.unrouted.Add(1)
		b.notifyDelivered(e, 0, nil)
		return 0, false, nil
	}

	var errs []error
	for _, r := range receivers {
		if derr := r.deliver(e); derr != nil {
			b.failures.Add(1)
			errs = append(errs, fmt.Errorf("deliver %s to %s: %w", e.Category(), r.id, derr))
			if !slices.Contains(*stale, r) {
				*stale = append(*stale, r)
			}
			continue
		}
		n++
	}
	b.delivered.Add(uint64(n))

	err = errors.Join(errs...)
	b.notifyDelivered(e, n, err)
	return n, true, err
}

func (b *Bus) notifyDelivered(e Event, receivers int, err error) {
	for _, o := range b.observers {
		o.OnDelivered(e, receivers, err)
	}
}

func (b *Bus) prune(stale []*Receiver) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for c, rs := range b.routes {
		rs = slices.DeleteFunc(rs, func(r *Receiver) bool { return slices.Contains(stale, r) })
		if len(rs) == 0 {
			delete(b.routes, c)
			continue
		}
		b.routes[c] = rs
	}
}

// Close rejects further publications. Already queued events can still be drained.
func (b *Bus) Close() { b.closed.Store(true) }

func (b *Bus) Metrics() Metrics {
	return Metrics{
		Published: b.published.Load(),
		Delivered: b.delivered.Load(),
		Unrouted:  b.unrouted.Load(),
		Errors:    b.failures.Load(),
	}
}

// LogObserver logs delivery failures at warn and routing at debug.
type LogObserver struct {
	Logger log.Log
}

func (o LogObserver) OnPublish(e Event) {
	o.Logger.Debug("event published", log.Stringer("category", e.Category()))
}

func (o LogObserver) OnDelivered(e Event, receivers int, err error) {
	switch {
	case err != nil:
		o.Logger.Warn("event delivery failed",
			log.Stringer("category", e.Category()),
			log.Int("receivers", receivers),
			log.Error(err),
		)
	case receivers == 0:
		o.Logger.Debug("event unrouted", log.Stringer("category", e.Category()))
	default:
		o.Logger.Debug("event routed",
			log.Stringer("category", e.Category()),
			log.Int("receivers", receivers),
		)
	}
}
