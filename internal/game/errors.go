package game

import "errors"

var (
	ErrMissingDependency = errors.New("missing game dependency")
)
