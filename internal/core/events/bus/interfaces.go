package bus

// Event is a message carried by the Bus.
//
// The set of events is closed: KeyPressed and Intersection are the only
// implementations. Events are plain values and are copied on delivery, so
// consumers may keep them after the tick that delivered them.
type Event interface {
	// Category is the routing key used to select receivers.
	Category() Category
	isEvent()
}

// Sender publishes events into the bus queue.
//
// Send never blocks and is safe for concurrent use from any goroutine,
// so input capture and the physics step can publish while the tick
// goroutine drains. After Bus.Close every Send fails with ErrBusClosed.
type Sender interface {
	Send(Event) error
}

// Observer is notified about publications and routing. Observers are called
// on the publishing goroutine (OnPublish) and on the draining goroutine
// (OnDelivered) and should return quickly.
type Observer interface {
	OnPublish(event Event)
	// OnDelivered reports one routed event: how many receivers got it and the
	// joined delivery error, if any. receivers is zero for unrouted events.
	OnDelivered(event Event, receivers int, err error)
}

// Policy selects how Drain walks the pending queue.
type Policy uint8

const (
	// DeliverAll drains the whole queue and hands every event to every
	// receiver subscribed to its category, in publication order.
	DeliverAll Policy = iota
	// DeliverFirstMatch discards events nobody subscribed to until it finds
	// one that has receivers, delivers it and stops. Later events stay queued.
	DeliverFirstMatch
)

func (p Policy) String() string {
	switch p {
	case DeliverAll:
		return "deliver_all"
	case DeliverFirstMatch:
		return "deliver_first_match"
	default:
		return "unknown"
	}
}

// Metrics is a snapshot of the bus counters.
type Metrics struct {
	Published uint64
	Delivered uint64
	Unrouted  uint64
	Errors    uint64
}
