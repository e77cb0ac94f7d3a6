package bus

import "errors"

var (
	ErrBusClosed      = errors.New("event bus is closed")
	ErrReceiverClosed = errors.New("receiver is closed")
	ErrNilEvent       = errors.New("nil event")
)
