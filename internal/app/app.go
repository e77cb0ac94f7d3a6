// Package app hosts the fixed-rate tick loop around a game and its frontends.
package app

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/dropchooser/internal/core/events/bus"
	"github.com/zeusync/dropchooser/internal/core/observability/log"
	"github.com/zeusync/dropchooser/internal/game"
	"github.com/zeusync/dropchooser/internal/server"
)

// Options configures Run.
type Options struct {
	TickRate      int
	Feed          *server.FeedServer
	StatsInterval time.Duration
	Logger        log.Log
}

// Run ticks g at opts.TickRate until ctx is cancelled or the frontend quits.
// Each tick's frame goes to the frontend and, when configured, to the feed.
// The tick loop, key forwarding, the feed and the stats reporter run in
// one errgroup; the first failure stops them all.
func Run(ctx context.Context, g *game.Game, fe Frontend, opts Options) error {
	if opts.TickRate <= 0 {
		opts.TickRate = 60
	}
	if opts.Logger == nil {
		opts.Logger = log.Nop()
	}
	logger := opts.Logger.Named("app")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	group, ctx := errgroup.WithContext(ctx)

	var broadcaster Broadcaster
	if opts.Feed != nil {
		broadcaster = opts.Feed
		if err := opts.Feed.Start(ctx); err != nil {
			return err
		}
		group.Go(func() error {
			<-ctx.Done()
			stopCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
			defer stop()
			return opts.Feed.Stop(stopCtx)
		})
	}

	group.Go(func() error {
		defer cancel()
		return tickLoop(ctx, g, fe, broadcaster, time.Second/time.Duration(opts.TickRate), logger)
	})

	group.Go(func() error {
		return forwardKeys(ctx, g, fe.Keys(), logger)
	})

	if opts.StatsInterval > 0 {
		group.Go(func() error {
			reportStats(ctx, g, opts.Feed, opts.StatsInterval, logger)
			return nil
		})
	}

	err := group.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func tickLoop(ctx context.Context, g *game.Game, fe Frontend, feed Broadcaster, period time.Duration, logger log.Log) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-fe.Done():
			logger.Info("frontend closed", log.Uint64("ticks", g.Ticks()))
			return nil
		case <-ticker.C:
			// Delivery errors are logged by the game and never stop the round.
			_ = g.Tick()
			frame := g.Frame()
			if err := fe.Present(frame); err != nil {
				return err
			}
			if feed != nil {
				feed.Broadcast(frame)
			}
		}
	}
}

func forwardKeys(ctx context.Context, g *game.Game, keys <-chan bus.Key, logger log.Log) error {
	if keys == nil {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case k, ok := <-keys:
			if !ok {
				return nil
			}
			if err := g.PressKey(k); err != nil {
				logger.Warn("key press dropped", log.Stringer("key", k), log.Error(err))
			}
		}
	}
}

func reportStats(ctx context.Context, g *game.Game, feed *server.FeedServer, every time.Duration, logger log.Log) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fields := []log.Field{
				log.Uint64("ticks", g.Ticks()),
				log.Stringer("state", g.State()),
			}
			if feed != nil {
				fields = append(fields, log.Int64("spectators", feed.GetStats().ClientCount))
			}
			logger.Info("round stats", fields...)
		}
	}
}
