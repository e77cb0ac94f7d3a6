package physics

import (
	"iter"
	"math"

	"github.com/jakecoffman/cp"

	"github.com/zeusync/dropchooser/internal/core/models"
	"github.com/zeusync/dropchooser/internal/core/observability/log"
)

const (
	collisionBall cp.CollisionType = iota + 1
	collisionSolid
	collisionSensor
)

const (
	defaultTimeStep   = 1.0 / 60.0
	defaultIterations = 10
	defaultFriction   = 0.5
	ballDensity       = 1.0
)

// Options configures a Registry.
type Options struct {
	Gravity    Vec2
	TimeStep   float64
	Iterations int
	Handler    CollisionHandler
	Logger     log.Log
}

// DefaultOptions returns a downward gravity of 98.1 units/s² at 60 Hz.
func DefaultOptions() Options {
	return Options{
		Gravity:    Vec2{Y: 98.1},
		TimeStep:   defaultTimeStep,
		Iterations: defaultIterations,
		Handler:    NopHandler{},
		Logger:     log.Nop(),
	}
}

type entry struct {
	id     models.EntityID
	body   *cp.Body
	shape  *cp.Shape
	static bool
	sensor bool
}

// Registry binds engine bodies and colliders to Entity IDs.
//
// It owns the engine space. Every insertion allocates a fresh, strictly
// increasing Entity ID which is stored as user data on both the body and
// its collider. A Registry is not safe for concurrent use; it belongs to
// the goroutine that calls Step.
type Registry struct {
	space   *cp.Space
	ids     models.IDAllocator
	dt      float64
	steps   uint64
	handler CollisionHandler
	logger  log.Log

	entries  []*entry
	byID     map[models.EntityID]int
	byHandle map[Handle]models.EntityID
}

// NewRegistry creates an empty world. Zero fields in opts fall back to DefaultOptions.
func NewRegistry(opts Options) *Registry {
	def := DefaultOptions()
	if opts.TimeStep <= 0 {
		opts.TimeStep = def.TimeStep
	}
	if opts.Iterations <= 0 {
		opts.Iterations = def.Iterations
	}
	if opts.Handler == nil {
		opts.Handler = def.Handler
	}
	if opts.Logger == nil {
		opts.Logger = def.Logger
	}

	space := cp.NewSpace()
	space.Iterations = uint(opts.Iterations)
	space.SetGravity(opts.Gravity.toCP())

	r := &Registry{
		space:    space,
		dt:       opts.TimeStep,
		handler:  opts.Handler,
		logger:   opts.Logger.Named("physics"),
		byID:     make(map[models.EntityID]int),
		byHandle: make(map[Handle]models.EntityID),
	}
	r.installHandlers()
	return r
}

// SetCollisionHandler replaces the collision handler. nil installs NopHandler.
func (r *Registry) SetCollisionHandler(h CollisionHandler) {
	if h == nil {
		h = NopHandler{}
	}
	r.handler = h
}

func (r *Registry) installHandlers() {
	sensor := r.space.NewCollisionHandler(collisionBall, collisionSensor)
	sensor.UserData = r
	sensor.BeginFunc = func(arb *cp.Arbiter, _ *cp.Space, userData interface{}) bool {
		a, b := arb.Shapes()
		userData.(*Registry).handler.HandleIntersection(IntersectionEvent{
			A: Handle{a}, B: Handle{b}, Intersecting: true,
		})
		return true
	}
	sensor.SeparateFunc = func(arb *cp.Arbiter, _ *cp.Space, userData interface{}) {
		a, b := arb.Shapes()
		userData.(*Registry).handler.HandleIntersection(IntersectionEvent{
			A: Handle{a}, B: Handle{b}, Intersecting: false,
		})
	}

	for _, other := range []cp.CollisionType{collisionSolid, collisionBall} {
		contact := r.space.NewCollisionHandler(collisionBall, other)
		contact.UserData = r
		contact.BeginFunc = func(arb *cp.Arbiter, _ *cp.Space, userData interface{}) bool {
			a, b := arb.Shapes()
			userData.(*Registry).handler.HandleContact(ContactEvent{A: Handle{a}, B: Handle{b}, Started: true})
			return true
		}
		contact.SeparateFunc = func(arb *cp.Arbiter, _ *cp.Space, userData interface{}) {
			a, b := arb.Shapes()
			userData.(*Registry).handler.HandleContact(ContactEvent{A: Handle{a}, B: Handle{b}, Started: false})
		}
	}
}

// InsertBall adds a dynamic circle whose mass follows from its area.
func (r *Registry) InsertBall(pos Vec2, radius, restitution float64) models.EntityID {
	mass := ballDensity * math.Pi * radius * radius
	body := cp.NewBody(mass, cp.MomentForCircle(mass, 0, radius, cp.Vector{}))
	body.SetPosition(pos.toCP())
	r.space.AddBody(body)

	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetElasticity(restitution)
	shape.SetFriction(defaultFriction)
	shape.SetCollisionType(collisionBall)

	return r.attach(body, shape, false, false)
}

// InsertWall adds a static axis-aligned box centered on pos.
func (r *Registry) InsertWall(pos Vec2, width, height float64) models.EntityID {
	body := r.staticBody(pos)
	shape := cp.NewBox(body, width, height, 0)
	r.solid(shape)
	return r.attach(body, shape, true, false)
}

// InsertRotatedWall adds a static box whose body sits at pos while the box
// itself is centered at (0, -(height/2 + heightOffset)) relative to pos and
// rotated by rotation radians about its own center.
func (r *Registry) InsertRotatedWall(pos Vec2, width, height, rotation, heightOffset float64) models.EntityID {
	body := r.staticBody(pos)

	offset := Vec2{Y: -(height/2 + heightOffset)}
	hw, hh := width/2, height/2
	corners := [4]Vec2{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}
	verts := make([]cp.Vector, len(corners))
	for i, c := range corners {
		verts[i] = c.Rotate(rotation).Add(offset).toCP()
	}

	shape := cp.NewPolyShape(body, len(verts), verts, cp.NewTransformIdentity(), 0)
	r.solid(shape)
	return r.attach(body, shape, true, false)
}

// InsertNail adds a static circle.
func (r *Registry) InsertNail(pos Vec2, radius float64) models.EntityID {
	body := r.staticBody(pos)
	shape := cp.NewCircle(body, radius, cp.Vector{})
	r.solid(shape)
	return r.attach(body, shape, true, false)
}

// InsertSensor adds a static box that reports overlaps and never deflects bodies.
func (r *Registry) InsertSensor(pos Vec2, width, height float64) models.EntityID {
	body := r.staticBody(pos)
	shape := cp.NewBox(body, width, height, 0)
	shape.SetSensor(true)
	shape.SetCollisionType(collisionSensor)
	return r.attach(body, shape, true, true)
}

func (r *Registry) staticBody(pos Vec2) *cp.Body {
	body := cp.NewStaticBody()
	body.SetPosition(pos.toCP())
	r.space.AddBody(body)
	return body
}

// Static colliders bounce with elasticity 1 so the ball's restitution decides.
func (r *Registry) solid(shape *cp.Shape) {
	shape.SetElasticity(1)
	shape.SetFriction(1)
	shape.SetCollisionType(collisionSolid)
}

func (r *Registry) attach(body *cp.Body, shape *cp.Shape, static, sensor bool) models.EntityID {
	id := r.ids.Next()
	body.UserData = id
	shape.UserData = id
	r.space.AddShape(shape)

	r.byID[id] = len(r.entries)
	r.byHandle[Handle{shape}] = id
	r.entries = append(r.entries, &entry{id: id, body: body, shape: shape, static: static, sensor: sensor})

	r.logger.Debug("body inserted",
		log.Entity("id", id),
		log.Bool("static", static),
		log.Bool("sensor", sensor),
	)
	return id
}

// Step advances the simulation by one fixed time step. Collision
// notifications reach the handler before Step returns.
func (r *Registry) Step() {
	r.space.Step(r.dt)
	r.steps++
}

// Steps returns how many times Step has run.
func (r *Registry) Steps() uint64 { return r.steps }

// Remove deletes the body and collider behind h. Their ID is never reissued.
func (r *Registry) Remove(h Handle) error {
	id, ok := r.byHandle[h]
	if !ok {
		return ErrUnknownHandle
	}
	idx := r.byID[id]
	e := r.entries[idx]

	r.space.RemoveShape(e.shape)
	r.space.RemoveBody(e.body)

	delete(r.byHandle, h)
	delete(r.byID, id)
	copy(r.entries[idx:], r.entries[idx+1:])
	r.entries[len(r.entries)-1] = nil
	r.entries = r.entries[:len(r.entries)-1]
	for i := idx; i < len(r.entries); i++ {
		r.byID[r.entries[i].id] = i
	}

	r.logger.Debug("body removed", log.Entity("id", id))
	return nil
}

// ResolveHandle maps an Entity ID to its collider handle.
func (r *Registry) ResolveHandle(id models.EntityID) (Handle, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return Handle{}, false
	}
	return Handle{r.entries[idx].shape}, true
}

// ResolveID maps a handle back to its Entity ID.
func (r *Registry) ResolveID(h Handle) (models.EntityID, bool) {
	id, ok := r.byHandle[h]
	return id, ok
}

// Body returns a snapshot of the body registered under id.
func (r *Registry) Body(id models.EntityID) (Body, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return Body{}, false
	}
	return r.entries[idx].snapshot(), true
}

// Bodies yields a snapshot of every live body in insertion order.
// The registry must not be mutated while iterating.
func (r *Registry) Bodies() iter.Seq[Body] {
	return func(yield func(Body) bool) {
		for _, e := range r.entries {
			if !yield(e.snapshot()) {
				return
			}
		}
	}
}

// Len returns the number of live bodies.
func (r *Registry) Len() int { return len(r.entries) }

func (e *entry) snapshot() Body {
	return Body{
		ID:       e.id,
		Position: fromCP(e.body.Position()),
		Velocity: fromCP(e.body.Velocity()),
		Angle:    e.body.Angle(),
		Static:   e.static,
		Sensor:   e.sensor,
	}
}
