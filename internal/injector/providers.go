package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/physics2d/internal/config"
	"github.com/zeusync/physics2d/internal/core/events/bus"
	"github.com/zeusync/physics2d/internal/core/observability/log"
	"github.com/zeusync/physics2d/internal/core/systems/physics/resolver"
	"github.com/zeusync/physics2d/internal/server"
)

// App is everything a physics process runs.
type App struct {
	Config config.Config
	Logger log.Log
	Events bus.EventBus
	World  *resolver.World
	Server *server.Server
}

// ProviderSet builds an App from a config.Config.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideEventBus,
	ProvideWorld,
	ProvideServer,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(cfg config.Config) log.Log {
	return log.New(cfg.Log.Level)
}

func ProvideEventBus() bus.EventBus {
	return bus.New()
}

func ProvideWorld(cfg config.Config, logger log.Log, events bus.EventBus) (*resolver.World, error) {
	return resolver.NewWorld(cfg.Physics, logger.With(log.String("component", "world")), events)
}

func ProvideServer(cfg config.Config, world *resolver.World, events bus.EventBus, logger log.Log) *server.Server {
	return server.NewServer(cfg.Server, world, events, logger)
}
