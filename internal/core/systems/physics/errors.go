package physics

import "errors"

var (
	ErrUnknownHandle = errors.New("unknown physics handle")
)
