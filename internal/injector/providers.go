package injector

import (
	"fmt"

	"github.com/google/wire"

	"github.com/zeusync/dropchooser/internal/choices"
	"github.com/zeusync/dropchooser/internal/config"
	"github.com/zeusync/dropchooser/internal/core/drawdata"
	"github.com/zeusync/dropchooser/internal/core/events/bus"
	"github.com/zeusync/dropchooser/internal/core/observability/log"
	"github.com/zeusync/dropchooser/internal/core/systems/collision"
	"github.com/zeusync/dropchooser/internal/core/systems/physics"
	"github.com/zeusync/dropchooser/internal/game"
)

// GameSet assembles a round from its configuration and choices.
var GameSet = wire.NewSet(
	ProvideBus,
	ProvideBridge,
	ProvideRegistry,
	drawdata.NewStore,
	ProvideDeps,
	ProvideGame,
)

// ProvideLogger builds the process logger from the configured level and output.
func ProvideLogger(cfg *config.Config) (log.Log, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	var outputs []string
	if cfg.LogOutput != "" {
		outputs = append(outputs, cfg.LogOutput)
	}
	logger, err := log.New(level, outputs...)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

func ProvideBus(logger log.Log) *bus.Bus {
	return bus.New(bus.WithObserver(bus.LogObserver{Logger: logger.Named("bus")}))
}

func ProvideBridge(b *bus.Bus, logger log.Log) *collision.Bridge {
	return collision.NewBridge(b.Publisher(), logger)
}

// ProvideRegistry steps the world once per tick at the configured rate.
func ProvideRegistry(cfg *config.Config, bridge *collision.Bridge, logger log.Log) *physics.Registry {
	opts := physics.DefaultOptions()
	opts.Gravity = physics.NewVec2(0, cfg.Gravity)
	if cfg.TickRate > 0 {
		opts.TimeStep = 1 / float64(cfg.TickRate)
	}
	opts.Handler = bridge
	opts.Logger = logger
	return physics.NewRegistry(opts)
}

func ProvideDeps(registry *physics.Registry, store *drawdata.Store, b *bus.Bus, logger log.Log) game.Deps {
	return game.Deps{Registry: registry, Store: store, Bus: b, Logger: logger}
}

func ProvideGame(cfg *config.Config, cs []choices.Choice, deps game.Deps, opts []game.Option) (*game.Game, error) {
	return game.New(cfg, cs, deps, opts...)
}
