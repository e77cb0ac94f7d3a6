package client

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/dropchooser/internal/core/drawdata"
	"github.com/zeusync/dropchooser/internal/core/models"
	"github.com/zeusync/dropchooser/internal/core/observability/log"
	"github.com/zeusync/dropchooser/internal/core/systems/physics"
	"github.com/zeusync/dropchooser/internal/game"
	"github.com/zeusync/dropchooser/internal/server"
)

func startFeed(t *testing.T) *server.FeedServer {
	t.Helper()
	feed := server.NewFeedServer("127.0.0.1:0", log.Nop())
	require.NoError(t, feed.Start(context.Background()))
	t.Cleanup(func() { _ = feed.Stop(context.Background()) })
	return feed
}

func TestClientWatchesFeed(t *testing.T) {
	feed := startFeed(t)

	cfg := DefaultClientConfig()
	cfg.ServerAddr = feed.Addr()
	c := NewClient(cfg, log.Nop())
	defer func() { _ = c.Close() }()

	var seen atomic.Int64
	c.OnFrame(func(game.Frame) error {
		seen.Add(1)
		return nil
	})

	require.NoError(t, c.Connect(context.Background()))
	assert.True(t, c.IsConnected())
	assert.ErrorIs(t, c.Connect(context.Background()), ErrAlreadyConnected)
	require.Eventually(t, func() bool { return feed.GetStats().ClientCount == 1 }, 2*time.Second, 5*time.Millisecond)

	red := models.MustParseColor("#ff0000")
	rect := drawdata.CenteredRect(20, 20)
	feed.Broadcast(game.Frame{
		Tick:  1,
		State: game.Dropping,
		Drawables: []game.Drawable{{
			ID:         models.NewEntityID(0, 12),
			Kind:       drawdata.Ball,
			Position:   physics.Point(100, 50),
			Attributes: drawdata.Attributes{Kind: drawdata.Ball, Color: &red, Rect: &rect, Name: "Tacos"},
		}},
	})
	feed.Broadcast(game.Frame{
		Tick:   2,
		State:  game.Finished,
		Banner: &game.Banner{Text: game.WinnerText("Tacos"), Color: red, TextColor: models.Black},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	won, err := c.WaitWinner(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), won.Tick)
	assert.Equal(t, game.Finished, won.State)
	assert.Equal(t, "Tacos Won!!!", won.Banner.Text)
	assert.Equal(t, red, won.Banner.Color)

	assert.Equal(t, uint64(2), c.Frames())
	assert.Equal(t, int64(2), seen.Load())

	last, ok := c.Last()
	require.True(t, ok)
	assert.Equal(t, uint64(2), last.Tick)
}

func TestClientDecodesDrawables(t *testing.T) {
	feed := startFeed(t)

	cfg := DefaultClientConfig()
	cfg.ServerAddr = feed.Addr()
	c := NewClient(cfg, nil)
	defer func() { _ = c.Close() }()

	got := make(chan game.Frame, 1)
	c.OnFrame(func(f game.Frame) error {
		got <- f
		return nil
	})
	require.NoError(t, c.Connect(context.Background()))
	require.Eventually(t, func() bool { return feed.GetStats().ClientCount == 1 }, 2*time.Second, 5*time.Millisecond)

	rotation := 0.35
	feed.Broadcast(game.Frame{Drawables: []game.Drawable{{
		ID:         models.NewEntityID(0, 5),
		Kind:       drawdata.Collector,
		Angle:      0,
		Attributes: drawdata.Attributes{Kind: drawdata.Collector, Rotation: &rotation},
	}}})

	select {
	case f := <-got:
		require.Len(t, f.Drawables, 1)
		d := f.Drawables[0]
		assert.Equal(t, models.NewEntityID(0, 5), d.ID)
		assert.Equal(t, drawdata.Collector, d.Kind)
		require.NotNil(t, d.Attributes.Rotation)
		assert.InDelta(t, 0.35, *d.Attributes.Rotation, 1e-12)
	case <-time.After(2 * time.Second):
		t.Fatal("no frame received")
	}
}

func TestClientFeedEnds(t *testing.T) {
	feed := server.NewFeedServer("127.0.0.1:0", log.Nop())
	require.NoError(t, feed.Start(context.Background()))

	cfg := DefaultClientConfig()
	cfg.ServerAddr = feed.Addr()
	c := NewClient(cfg, nil)
	defer func() { _ = c.Close() }()
	require.NoError(t, c.Connect(context.Background()))
	require.Eventually(t, func() bool { return feed.GetStats().ClientCount == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, feed.Stop(context.Background()))

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("client did not notice the feed ending")
	}
	_, err := c.WaitWinner(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.False(t, c.IsConnected())
}

func TestClientLifecycle(t *testing.T) {
	c := NewClient(Config{}, nil)
	assert.ErrorIs(t, c.Connect(context.Background()), ErrInvalidConfig)

	c = NewClient(Config{ServerAddr: "example.invalid:1"}, nil)
	u, err := c.URL()
	require.NoError(t, err)
	assert.Equal(t, "ws://example.invalid:1/frames", u)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.True(t, c.IsClosed())
	assert.ErrorIs(t, c.Connect(context.Background()), ErrClientClosed)
}
