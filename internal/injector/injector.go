//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/dropchooser/internal/choices"
	"github.com/zeusync/dropchooser/internal/config"
	"github.com/zeusync/dropchooser/internal/core/observability/log"
	"github.com/zeusync/dropchooser/internal/game"
)

func InitializeGame(cfg *config.Config, cs []choices.Choice, logger log.Log, opts []game.Option) (*game.Game, error) {
	wire.Build(GameSet)
	return nil, nil
}
