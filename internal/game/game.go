// Package game runs one round: it builds the arena, steps the world and
// reacts to key presses and sensor hits.
package game

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/zeusync/dropchooser/internal/choices"
	"github.com/zeusync/dropchooser/internal/config"
	"github.com/zeusync/dropchooser/internal/core/drawdata"
	"github.com/zeusync/dropchooser/internal/core/events/bus"
	"github.com/zeusync/dropchooser/internal/core/models"
	"github.com/zeusync/dropchooser/internal/core/observability/log"
	"github.com/zeusync/dropchooser/internal/core/systems/physics"
)

// Deps are the collaborators a Game drives. The registry is expected to
// report collisions onto Bus, normally through a collision.Bridge.
type Deps struct {
	Registry *physics.Registry
	Store    *drawdata.Store
	Bus      *bus.Bus
	Logger   log.Log
}

type Option func(*Game)

// WithRand sets the source used for spawn positions.
func WithRand(rng *rand.Rand) Option {
	return func(g *Game) { g.rng = rng }
}

// Game owns the simulation for one round. Apart from PressKey every
// method must be called from the tick goroutine.
type Game struct {
	cfg     *config.Config
	choices []choices.Choice

	registry *physics.Registry
	store    *drawdata.Store
	bus      *bus.Bus
	logger   log.Log
	rng      *rand.Rand

	input  bus.Sender
	events *bus.Receiver

	state        State
	ticks        uint64
	floor        models.EntityID
	floorPresent bool
	sensor       models.EntityID
	balls        []models.EntityID
	winner       *Winner
}

// New validates cfg, builds the arena and drops one ball per choice.
func New(cfg *config.Config, cs []choices.Choice, deps Deps, opts ...Option) (*Game, error) {
	switch {
	case cfg == nil:
		return nil, fmt.Errorf("%w: config", ErrMissingDependency)
	case deps.Registry == nil:
		return nil, fmt.Errorf("%w: registry", ErrMissingDependency)
	case deps.Store == nil:
		return nil, fmt.Errorf("%w: attribute store", ErrMissingDependency)
	case deps.Bus == nil:
		return nil, fmt.Errorf("%w: event bus", ErrMissingDependency)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(cs) == 0 {
		return nil, choices.ErrNoChoices
	}
	if deps.Logger == nil {
		deps.Logger = log.Nop()
	}

	g := &Game{
		cfg:      cfg,
		choices:  slices.Clone(cs),
		registry: deps.Registry,
		store:    deps.Store,
		bus:      deps.Bus,
		logger:   deps.Logger.Named("game"),
		state:    Waiting,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	g.input = g.bus.Publisher()
	g.events = g.bus.SubscribeMany(bus.CategoryKeyPressed, bus.CategoryIntersection)

	g.buildArena()
	g.logger.Info("arena built",
		log.Int("bodies", g.registry.Len()),
		log.Int("choices", len(g.balls)),
		log.Entity("floor", g.floor),
		log.Entity("sensor", g.sensor),
	)
	return g, nil
}

// PressKey queues a key press for the next tick. Safe from any goroutine.
func (g *Game) PressKey(k bus.Key) error {
	return g.input.Send(bus.KeyPressed{Key: k})
}

// Sender returns the input publisher so frontends can queue key presses directly.
func (g *Game) Sender() bus.Sender { return g.input }

// Tick steps the world once, routes queued events and handles every event
// delivered to the game. Delivery errors are returned but never abort the tick.
func (g *Game) Tick() error {
	g.registry.Step()
	g.ticks++

	delivered, err := g.bus.Drain()
	if err != nil {
		g.logger.Warn("event routing failed", log.Uint64("tick", g.ticks), log.Error(err))
	}
	if delivered > 0 {
		g.logger.Debug("events routed", log.Uint64("tick", g.ticks), log.Int("delivered", delivered))
	}

	for _, e := range g.events.Recv() {
		g.handle(e)
	}
	return err
}

func (g *Game) handle(e bus.Event) {
	switch ev := e.(type) {
	case bus.KeyPressed:
		g.handleKey(ev.Key)
	case bus.Intersection:
		g.handleIntersection(ev)
	}
}

func (g *Game) handleKey(k bus.Key) {
	if k != bus.KeySpace {
		g.logger.Debug("key ignored", log.Stringer("key", k))
		return
	}
	if !g.floorPresent {
		return
	}

	h, ok := g.registry.ResolveHandle(g.floor)
	if !ok {
		g.logger.Warn("floor has no collider", log.Entity("floor", g.floor))
		g.floorPresent = false
		return
	}
	if err := g.registry.Remove(h); err != nil {
		g.logger.Warn("removing floor failed", log.Entity("floor", g.floor), log.Error(err))
		return
	}
	g.store.Forget(g.floor)
	g.floorPresent = false
	if g.state == Waiting {
		g.state = Dropping
	}
	g.logger.Info("floor removed", log.Uint64("tick", g.ticks))
}

func (g *Game) handleIntersection(ev bus.Intersection) {
	if g.winner != nil {
		return
	}
	for _, h := range [2]physics.Handle{ev.A, ev.B} {
		id, ok := g.registry.ResolveID(h)
		if !ok {
			g.logger.Warn("intersection with unknown collider", log.Uint64("tick", g.ticks))
			continue
		}
		if g.store.Kind(id) != drawdata.Ball {
			continue
		}
		name, ok := g.store.Name(id)
		if !ok {
			continue
		}
		color, _ := g.store.Color(id)

		g.winner = &Winner{ID: id, Name: name, Color: color}
		g.state = Finished
		g.logger.Info("winner picked",
			log.String("name", name),
			log.Entity("id", id),
			log.Uint64("tick", g.ticks),
		)
		return
	}
}

// Frame snapshots every drawable body, in insertion order.
func (g *Game) Frame() Frame {
	f := Frame{
		Tick:       g.ticks,
		State:      g.state,
		Width:      g.cfg.Width,
		Height:     g.cfg.Height,
		Background: g.cfg.BackgroundColor,
		Drawables:  make([]Drawable, 0, g.registry.Len()),
	}
	for b := range g.registry.Bodies() {
		kind := g.store.Kind(b.ID)
		if !kind.Drawable() {
			continue
		}
		attrs, _ := g.store.Get(b.ID)
		f.Drawables = append(f.Drawables, Drawable{
			ID:         b.ID,
			Kind:       kind,
			Position:   b.Position,
			Angle:      b.Angle,
			Attributes: attrs,
		})
	}
	if g.winner != nil {
		f.Banner = newBanner(*g.winner)
	}
	return f
}

func (g *Game) Winner() (Winner, bool) {
	if g.winner == nil {
		return Winner{}, false
	}
	return *g.winner, true
}

func (g *Game) State() State { return g.state }

func (g *Game) Ticks() uint64 { return g.ticks }

// FloorID returns the floor's ID and whether it is still in the world.
func (g *Game) FloorID() (models.EntityID, bool) { return g.floor, g.floorPresent }

// BallIDs returns ball IDs in choice order.
func (g *Game) BallIDs() []models.EntityID { return slices.Clone(g.balls) }

func (g *Game) SensorID() models.EntityID { return g.sensor }

func (g *Game) Config() *config.Config { return g.cfg }
