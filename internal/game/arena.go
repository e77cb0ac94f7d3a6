package game

import (
	"math"

	"github.com/zeusync/dropchooser/internal/core/drawdata"
	"github.com/zeusync/dropchooser/internal/core/models"
	"github.com/zeusync/dropchooser/internal/core/systems/physics"
)

var (
	wallColor      = models.MustParseColor("#6c7086")
	floorColor     = models.MustParseColor("#a6adc8")
	nailColor      = models.MustParseColor("#f5e0dc")
	collectorColor = models.MustParseColor("#89b4fa")
)

// buildArena inserts, in order: side and bottom walls, the floor, the nail
// grid, both collectors, the sensor and finally one ball per choice.
func (g *Game) buildArena() {
	c := g.cfg
	w, h, ww := c.Width, c.Height, c.WallWidth

	g.wall(physics.Point(ww/2, h/2), ww, h)
	g.wall(physics.Point(w-ww/2, h/2), ww, h)
	g.wall(physics.Point(w/2, h-ww/2), w, ww)

	g.floor = g.registry.InsertWall(physics.Point(w/2, c.FloorY), w-2*ww, c.FloorHeight)
	g.floorPresent = true
	g.decorate(g.floor, drawdata.Floor, floorColor, drawdata.CenteredRect(w-2*ww, c.FloorHeight))

	g.nails()
	g.collectors()

	// The sensor gets no attributes, so it is never drawn.
	g.sensor = g.registry.InsertSensor(physics.Point(w/2, h-ww-c.SensorHeight/2), w-2*ww, c.SensorHeight)

	xr := physics.Range{Min: c.ChoiceStartXMin, Max: c.ChoiceStartXMax}
	yr := physics.Range{Min: c.ChoiceStartYMin, Max: c.ChoiceStartYMax}
	for _, choice := range g.choices {
		pos := physics.NewRandomVec2(g.rng, xr, yr)
		id := g.registry.InsertBall(pos, c.ChoiceRadius, c.Bounciness)
		g.decorate(id, drawdata.Ball, choice.Color, drawdata.CenteredRect(2*c.ChoiceRadius, 2*c.ChoiceRadius))
		g.store.InsertName(id, choice.Name)
		g.balls = append(g.balls, id)
	}
}

func (g *Game) wall(pos physics.Vec2, width, height float64) {
	id := g.registry.InsertWall(pos, width, height)
	g.decorate(id, drawdata.Wall, wallColor, drawdata.CenteredRect(width, height))
}

// nails lays out staggered rows centered on the arena. Odd rows shift by
// half a spacing; nails that would touch a side wall are skipped.
func (g *Game) nails() {
	c := g.cfg
	if c.NailRows <= 0 || c.NailColumns <= 0 {
		return
	}
	span := float64(c.NailColumns-1) * c.NailSpacing
	minX := c.WallWidth + c.NailRadius
	maxX := c.Width - c.WallWidth - c.NailRadius

	for row := 0; row < c.NailRows; row++ {
		y := c.NailTop + float64(row)*c.NailSpacing
		x0 := c.Width/2 - span/2
		if row%2 == 1 {
			x0 += c.NailSpacing / 2
		}
		for col := 0; col < c.NailColumns; col++ {
			x := x0 + float64(col)*c.NailSpacing
			if x < minX || x > maxX {
				continue
			}
			id := g.registry.InsertNail(physics.Point(x, y), c.NailRadius)
			g.decorate(id, drawdata.Nail, nailColor, drawdata.CenteredRect(2*c.NailRadius, 2*c.NailRadius))
		}
	}
}

// collectors places two mirrored boards whose inner ends leave CollectorGap
// between them just above the sensor.
func (g *Game) collectors() {
	c := g.cfg
	base := c.Height - c.WallWidth - c.SensorHeight
	reach := c.CollectorGap/2 + c.CollectorWidth/2*math.Cos(c.CollectorRotation)
	rect := drawdata.Rect{
		X: -c.CollectorWidth / 2,
		Y: -(c.CollectorHeight + c.CollectorHeightOffset),
		W: c.CollectorWidth,
		H: c.CollectorHeight,
	}

	for _, side := range [2]float64{-1, 1} {
		pos := physics.Point(c.Width/2+side*reach, base)
		rotation := -side * c.CollectorRotation
		id := g.registry.InsertRotatedWall(pos, c.CollectorWidth, c.CollectorHeight, rotation, c.CollectorHeightOffset)
		g.decorate(id, drawdata.Collector, collectorColor, rect)
		g.store.InsertRotation(id, rotation)
	}
}

func (g *Game) decorate(id models.EntityID, kind drawdata.Kind, color models.Color, rect drawdata.Rect) {
	g.store.InsertKind(id, kind)
	g.store.InsertColor(id, color)
	g.store.InsertRect(id, rect)
}
