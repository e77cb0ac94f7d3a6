package physics

import (
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/dropchooser/internal/core/models"
)

type recordingHandler struct {
	intersections []IntersectionEvent
	contacts      []ContactEvent
}

func (h *recordingHandler) HandleIntersection(e IntersectionEvent) {
	h.intersections = append(h.intersections, e)
}

func (h *recordingHandler) HandleContact(e ContactEvent) {
	h.contacts = append(h.contacts, e)
}

func (h *recordingHandler) began() int {
	n := 0
	for _, e := range h.intersections {
		if e.Intersecting {
			n++
		}
	}
	return n
}

func newTestRegistry(h CollisionHandler) *Registry {
	opts := DefaultOptions()
	opts.Handler = h
	return NewRegistry(opts)
}

func TestRegistryIDs(t *testing.T) {
	r := newTestRegistry(nil)

	ids := []models.EntityID{
		r.InsertWall(Point(0, 0), 10, 100),
		r.InsertNail(Point(50, 50), 2),
		r.InsertRotatedWall(Point(80, 80), 40, 5, 0.3, 2),
		r.InsertSensor(Point(50, 200), 100, 10),
		r.InsertBall(Point(50, 0), 5, 0.5),
	}

	assert.Equal(t, models.NewEntityID(0, 1), ids[0])
	for i := 1; i < len(ids); i++ {
		assert.True(t, ids[i-1].Less(ids[i]), "ids must strictly increase")
	}
	assert.Equal(t, len(ids), r.Len())

	t.Run("Round trip", func(t *testing.T) {
		for _, id := range ids {
			h, ok := r.ResolveHandle(id)
			require.True(t, ok)
			require.False(t, h.IsZero())

			back, ok := r.ResolveID(h)
			require.True(t, ok)
			assert.Equal(t, id, back)
		}
	})

	t.Run("Unknown lookups", func(t *testing.T) {
		_, ok := r.ResolveHandle(models.NewEntityID(0, 999))
		assert.False(t, ok)
		_, ok = r.ResolveID(Handle{})
		assert.False(t, ok)
		_, ok = r.Body(models.EntityID{})
		assert.False(t, ok)
	})

	t.Run("Bodies in insertion order", func(t *testing.T) {
		var got []models.EntityID
		for b := range r.Bodies() {
			got = append(got, b.ID)
		}
		assert.Equal(t, ids, got)

		n := 0
		for range r.Bodies() {
			n++
			if n == 2 {
				break
			}
		}
		assert.Equal(t, 2, n)
	})

	t.Run("Snapshots carry no handle", func(t *testing.T) {
		handleType := reflect.TypeOf(Handle{})
		bodyType := reflect.TypeOf(Body{})
		for i := 0; i < bodyType.NumField(); i++ {
			assert.NotEqual(t, handleType, bodyType.Field(i).Type, bodyType.Field(i).Name)
		}
	})

	t.Run("Body flags", func(t *testing.T) {
		sensor, ok := r.Body(ids[3])
		require.True(t, ok)
		assert.True(t, sensor.Static)
		assert.True(t, sensor.Sensor)

		ball, ok := r.Body(ids[4])
		require.True(t, ok)
		assert.False(t, ball.Static)
		assert.Equal(t, Point(50, 0), ball.Position)
	})
}

func TestRegistryRemove(t *testing.T) {
	r := newTestRegistry(nil)
	wall := r.InsertWall(Point(0, 0), 10, 10)
	floor := r.InsertWall(Point(0, 100), 100, 10)
	ball := r.InsertBall(Point(0, 50), 5, 0)

	h, ok := r.ResolveHandle(floor)
	require.True(t, ok)
	require.NoError(t, r.Remove(h))

	_, ok = r.ResolveHandle(floor)
	assert.False(t, ok)
	_, ok = r.ResolveID(h)
	assert.False(t, ok)
	assert.ErrorIs(t, r.Remove(h), ErrUnknownHandle)
	assert.Equal(t, 2, r.Len())

	for _, id := range []models.EntityID{wall, ball} {
		b, ok := r.Body(id)
		require.True(t, ok)
		assert.Equal(t, id, b.ID)
	}

	next := r.InsertNail(Point(0, 0), 1)
	assert.True(t, ball.Less(next), "removed ids are never reissued")
}

func TestRegistryGravity(t *testing.T) {
	r := newTestRegistry(nil)
	id := r.InsertBall(Point(0, 0), 5, 0)

	for i := 0; i < 30; i++ {
		r.Step()
	}
	assert.Equal(t, uint64(30), r.Steps())

	b, ok := r.Body(id)
	require.True(t, ok)
	assert.Greater(t, b.Velocity.Y, 0.0)
	assert.Greater(t, b.Position.Y, 0.0)
	assert.InDelta(t, 0, b.Position.X, 1e-9)
}

func TestRegistryBallRestsOnWall(t *testing.T) {
	h := &recordingHandler{}
	r := newTestRegistry(h)
	r.InsertWall(Point(0, 100), 200, 20)
	ball := r.InsertBall(Point(0, 50), 5, 0)

	for i := 0; i < 600; i++ {
		r.Step()
	}

	b, ok := r.Body(ball)
	require.True(t, ok)
	assert.InDelta(t, 85, b.Position.Y, 1)
	require.NotEmpty(t, h.contacts)
	assert.True(t, h.contacts[0].Started)
	assert.Empty(t, h.intersections)
}

func TestRegistryRotatedWallPlacement(t *testing.T) {
	r := newTestRegistry(nil)
	// Unrotated, the box spans y in [pos.Y-offset-height, pos.Y-offset].
	r.InsertRotatedWall(Point(0, 100), 200, 10, 0, 5)
	ball := r.InsertBall(Point(0, 0), 5, 0)

	for i := 0; i < 600; i++ {
		r.Step()
	}

	b, ok := r.Body(ball)
	require.True(t, ok)
	assert.InDelta(t, 80, b.Position.Y, 1)
}

func TestRegistrySensor(t *testing.T) {
	const steps = 300

	drop := func(withSensor bool) (Body, *recordingHandler, models.EntityID, models.EntityID) {
		h := &recordingHandler{}
		r := newTestRegistry(h)
		ball := r.InsertBall(Point(10, 0), 5, 0.5)
		var sensor models.EntityID
		if withSensor {
			sensor = r.InsertSensor(Point(10, 100), 100, 20)
		}
		for i := 0; i < steps; i++ {
			r.Step()
		}
		b, ok := r.Body(ball)
		require.True(t, ok)
		return b, h, ball, sensor
	}

	plain, _, _, _ := drop(false)
	sensed, h, _, _ := drop(true)

	t.Run("Does not deflect bodies", func(t *testing.T) {
		assert.InDelta(t, plain.Position.X, sensed.Position.X, 1e-9)
		assert.InDelta(t, plain.Position.Y, sensed.Position.Y, 1e-9)
		assert.InDelta(t, plain.Velocity.Y, sensed.Velocity.Y, 1e-9)
		assert.Greater(t, sensed.Position.Y, 120.0, "ball must have fallen past the sensor")
	})

	t.Run("Reports a single overlap", func(t *testing.T) {
		assert.Equal(t, 1, h.began())
		require.Len(t, h.intersections, 2)
		assert.False(t, h.intersections[1].Intersecting)
		assert.Empty(t, h.contacts)
	})
}

func TestRegistryIntersectionHandles(t *testing.T) {
	h := &recordingHandler{}
	r := newTestRegistry(nil)
	r.SetCollisionHandler(h)

	ball := r.InsertBall(Point(0, 0), 5, 0)
	sensor := r.InsertSensor(Point(0, 60), 50, 20)
	for i := 0; i < 120 && h.began() == 0; i++ {
		r.Step()
	}
	require.Equal(t, 1, h.began())

	ev := h.intersections[0]
	a, ok := r.ResolveID(ev.A)
	require.True(t, ok)
	b, ok := r.ResolveID(ev.B)
	require.True(t, ok)
	assert.Equal(t, ball, a)
	assert.Equal(t, sensor, b)
}

func TestVec2(t *testing.T) {
	v := NewVec2(1, 0).Rotate(math.Pi / 2)
	assert.InDelta(t, 0, v.X, 1e-12)
	assert.InDelta(t, 1, v.Y, 1e-12)

	assert.Equal(t, Point(4, 6), Point(1, 2).Add(Point(3, 4)))
	assert.Equal(t, Point(-2, -2), Point(1, 2).Sub(Point(3, 4)))
	assert.Equal(t, Point(2, 4), Point(1, 2).Scale(2))
	assert.InDelta(t, 5, Point(3, 4).Len(), 1e-12)
}
