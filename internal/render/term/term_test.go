package term

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/dropchooser/internal/core/drawdata"
	"github.com/zeusync/dropchooser/internal/core/events/bus"
	"github.com/zeusync/dropchooser/internal/core/models"
	"github.com/zeusync/dropchooser/internal/core/systems/physics"
	"github.com/zeusync/dropchooser/internal/game"
)

func newSimulated(t *testing.T) (*Frontend, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	fe, err := NewWithScreen(screen, nil)
	require.NoError(t, err)
	screen.SetSize(80, 24)
	t.Cleanup(fe.Close)
	return fe, screen
}

func runeAt(s tcell.Screen, col, row int) rune {
	r, _, _, _ := s.GetContent(col, row)
	return r
}

func rowText(s tcell.Screen, row, cols int) string {
	var b strings.Builder
	for col := 0; col < cols; col++ {
		b.WriteRune(runeAt(s, col, row))
	}
	return b.String()
}

func TestPresent(t *testing.T) {
	fe, screen := newSimulated(t)

	red := models.MustParseColor("#ff0000")
	wall := drawdata.CenteredRect(4, 2)
	tilted := drawdata.CenteredRect(20, 1)
	rotation := 0.3

	frame := game.Frame{
		Width:      80,
		Height:     24,
		Background: models.Black,
		Drawables: []game.Drawable{
			{Kind: drawdata.Ball, Position: physics.Point(10.5, 5.5), Attributes: drawdata.Attributes{Color: &red}},
			{Kind: drawdata.Nail, Position: physics.Point(20.5, 3.5)},
			{Kind: drawdata.Wall, Position: physics.Point(40, 12), Attributes: drawdata.Attributes{Rect: &wall}},
			{Kind: drawdata.Collector, Position: physics.Point(60, 20), Attributes: drawdata.Attributes{Rect: &tilted, Rotation: &rotation}},
		},
	}
	require.NoError(t, fe.Present(frame))

	assert.Equal(t, ballRune, runeAt(screen, 10, 5))
	assert.Equal(t, nailRune, runeAt(screen, 20, 3))
	for _, cell := range [][2]int{{38, 11}, {41, 11}, {38, 12}, {41, 12}} {
		assert.Equal(t, solidRune, runeAt(screen, cell[0], cell[1]), "wall cell %v", cell)
	}
	assert.Equal(t, ' ', runeAt(screen, 37, 11))
	assert.Equal(t, solidRune, runeAt(screen, 60, 20), "collector center")
	assert.Equal(t, ' ', runeAt(screen, 0, 0))

	t.Run("Ball keeps its color", func(t *testing.T) {
		_, _, style, _ := screen.GetContent(10, 5)
		fg, _, _ := style.Decompose()
		assert.Equal(t, tcell.NewRGBColor(255, 0, 0), fg)
	})

	t.Run("Banner is centered", func(t *testing.T) {
		frame.Banner = &game.Banner{Text: game.WinnerText("Alice"), Color: red, TextColor: models.White}
		require.NoError(t, fe.Present(frame))
		line := rowText(screen, 12, 80)
		idx := strings.Index(line, "Alice Won!!!")
		require.GreaterOrEqual(t, idx, 0, line)
		assert.InDelta(t, 40, idx+len("Alice Won!!!")/2, 2)
	})
}

func TestPresentEmptyFrame(t *testing.T) {
	fe, _ := newSimulated(t)
	assert.NoError(t, fe.Present(game.Frame{}))
}

func TestKeys(t *testing.T) {
	fe, screen := newSimulated(t)

	screen.InjectKey(tcell.KeyRune, ' ', tcell.ModNone)
	screen.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
	for _, want := range []bus.Key{bus.KeySpace, bus.KeyEnter} {
		select {
		case k := <-fe.Keys():
			assert.Equal(t, want, k)
		case <-time.After(time.Second):
			t.Fatalf("no %s key delivered", want)
		}
	}

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case <-fe.Done():
	case <-time.After(time.Second):
		t.Fatal("q did not quit")
	}
}

func TestCloseTwice(t *testing.T) {
	fe, _ := newSimulated(t)
	fe.Close()
	fe.Close()
	assert.NoError(t, fe.Present(game.Frame{Width: 1, Height: 1}))

	select {
	case <-fe.Done():
	default:
		t.Fatal("close must end the frontend")
	}
}

func TestInside(t *testing.T) {
	square := drawdata.CenteredRect(2, 2).Corners(physics.Point(0, 0), 0)
	assert.True(t, inside(physics.Point(0, 0), square))
	assert.True(t, inside(physics.Point(0.9, -0.9), square))
	assert.False(t, inside(physics.Point(1.5, 0), square))
}
