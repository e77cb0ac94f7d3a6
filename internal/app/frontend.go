package app

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/zeusync/dropchooser/internal/core/events/bus"
	"github.com/zeusync/dropchooser/internal/game"
)

// Frontend presents frames and produces key presses.
type Frontend interface {
	// Present draws one frame. An error stops the host loop.
	Present(game.Frame) error
	// Keys delivers raw key presses. It may be nil.
	Keys() <-chan bus.Key
	// Done is closed when the user quits.
	Done() <-chan struct{}
}

// Broadcaster receives every presented frame, e.g. the websocket feed.
type Broadcaster interface {
	Broadcast(game.Frame)
}

// Headless plays a round without a screen: it presses Space after
// DropDelay, prints the winner to Out and quits Linger after that.
type Headless struct {
	DropDelay time.Duration
	Linger    time.Duration
	Out       io.Writer

	keys      chan bus.Key
	done      chan struct{}
	startOnce sync.Once
	endOnce   sync.Once
}

func NewHeadless(dropDelay, linger time.Duration, out io.Writer) *Headless {
	if out == nil {
		out = io.Discard
	}
	return &Headless{
		DropDelay: dropDelay,
		Linger:    linger,
		Out:       out,
		keys:      make(chan bus.Key, 1),
		done:      make(chan struct{}),
	}
}

func (h *Headless) Present(f game.Frame) error {
	h.startOnce.Do(func() {
		time.AfterFunc(h.DropDelay, func() {
			select {
			case h.keys <- bus.KeySpace:
			case <-h.done:
			}
		})
	})

	if f.Banner == nil {
		return nil
	}
	var err error
	h.endOnce.Do(func() {
		_, err = fmt.Fprintln(h.Out, f.Banner.Text)
		time.AfterFunc(h.Linger, func() { close(h.done) })
	})
	return err
}

func (h *Headless) Keys() <-chan bus.Key { return h.keys }

func (h *Headless) Done() <-chan struct{} { return h.done }
