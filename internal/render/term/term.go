// Package term draws frames into a terminal with tcell and turns key
// presses into game input.
package term

import (
	"math"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/zeusync/dropchooser/internal/core/drawdata"
	"github.com/zeusync/dropchooser/internal/core/events/bus"
	"github.com/zeusync/dropchooser/internal/core/models"
	"github.com/zeusync/dropchooser/internal/core/observability/log"
	"github.com/zeusync/dropchooser/internal/core/systems/physics"
	"github.com/zeusync/dropchooser/internal/game"
)

const (
	ballRune  = '●'
	nailRune  = '·'
	solidRune = '█'
)

// Frontend renders into a tcell screen. It owns the screen from New until Close.
type Frontend struct {
	screen tcell.Screen
	logger log.Log

	keys chan bus.Key
	done chan struct{}

	mu     sync.Mutex
	closed bool
	quit   sync.Once
}

// New opens the controlling terminal.
func New(logger log.Log) (*Frontend, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewWithScreen(screen, logger)
}

// NewWithScreen initialises screen and starts reading its events.
func NewWithScreen(screen tcell.Screen, logger log.Log) (*Frontend, error) {
	if err := screen.Init(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Nop()
	}
	screen.HideCursor()
	screen.Clear()

	f := &Frontend{
		screen: screen,
		logger: logger.Named("term"),
		keys:   make(chan bus.Key, 8),
		done:   make(chan struct{}),
	}
	go f.pollEvents()
	return f, nil
}

func (f *Frontend) Keys() <-chan bus.Key { return f.keys }

func (f *Frontend) Done() <-chan struct{} { return f.done }

// Close restores the terminal. Safe to call more than once.
func (f *Frontend) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	f.screen.Fini()
	f.stop()
}

func (f *Frontend) stop() { f.quit.Do(func() { close(f.done) }) }

func (f *Frontend) pollEvents() {
	for {
		ev := f.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			f.handleKey(ev)
		case *tcell.EventResize:
			f.screen.Sync()
		}
	}
}

func (f *Frontend) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		f.stop()
	case tcell.KeyEnter:
		f.push(bus.KeyEnter)
	case tcell.KeyRune:
		switch ev.Rune() {
		case ' ':
			f.push(bus.KeySpace)
		case 'q', 'Q':
			f.stop()
		}
	}
}

func (f *Frontend) push(k bus.Key) {
	select {
	case f.keys <- k:
	case <-f.done:
	default:
		f.logger.Warn("key dropped", log.Stringer("key", k))
	}
}

// Present scales the arena onto the current terminal size and shows it.
func (f *Frontend) Present(frame game.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}

	cols, rows := f.screen.Size()
	if cols <= 0 || rows <= 0 || frame.Width <= 0 || frame.Height <= 0 {
		return nil
	}
	v := viewport{
		cols: cols,
		rows: rows,
		sx:   float64(cols) / frame.Width,
		sy:   float64(rows) / frame.Height,
		bg:   toTcell(frame.Background),
	}

	f.screen.Fill(' ', tcell.StyleDefault.Background(v.bg))
	for _, d := range frame.Drawables {
		f.drawBody(v, d)
	}
	if frame.Banner != nil {
		f.drawBanner(v, *frame.Banner)
	}
	f.screen.Show()
	return nil
}

type viewport struct {
	cols, rows int
	sx, sy     float64
	bg         tcell.Color
}

func (v viewport) cell(p physics.Vec2) (int, int) {
	return int(math.Floor(p.X * v.sx)), int(math.Floor(p.Y * v.sy))
}

// arena returns the arena point at the center of cell (col, row).
func (v viewport) arena(col, row int) physics.Vec2 {
	return physics.Point((float64(col)+0.5)/v.sx, (float64(row)+0.5)/v.sy)
}

func (f *Frontend) drawBody(v viewport, d game.Drawable) {
	color := models.White
	if d.Attributes.Color != nil {
		color = *d.Attributes.Color
	}
	style := tcell.StyleDefault.Foreground(toTcell(color)).Background(v.bg)

	switch d.Kind {
	case drawdata.Ball:
		f.set(v, d.Position, ballRune, style)
	case drawdata.Nail:
		f.set(v, d.Position, nailRune, style)
	default:
		if d.Attributes.Rect == nil {
			f.set(v, d.Position, solidRune, style)
			return
		}
		rotation := d.Angle
		if d.Attributes.Rotation != nil {
			rotation += *d.Attributes.Rotation
		}
		f.fillPolygon(v, d.Attributes.Rect.Corners(d.Position, rotation), style)
	}
}

func (f *Frontend) set(v viewport, p physics.Vec2, r rune, style tcell.Style) {
	col, row := v.cell(p)
	if col < 0 || row < 0 || col >= v.cols || row >= v.rows {
		return
	}
	f.screen.SetContent(col, row, r, nil, style)
}

// fillPolygon paints every cell whose center lies inside the convex quad.
// Shapes thinner than a cell still get the cells their edges cross.
func (f *Frontend) fillPolygon(v viewport, corners [4]physics.Vec2, style tcell.Style) {
	minCol, minRow := v.cols, v.rows
	maxCol, maxRow := -1, -1
	for _, c := range corners {
		col, row := v.cell(c)
		minCol, maxCol = min(minCol, col), max(maxCol, col)
		minRow, maxRow = min(minRow, row), max(maxRow, row)
	}
	minCol, minRow = max(minCol, 0), max(minRow, 0)
	maxCol, maxRow = min(maxCol, v.cols-1), min(maxRow, v.rows-1)

	filled := false
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			if inside(v.arena(col, row), corners) {
				f.screen.SetContent(col, row, solidRune, nil, style)
				filled = true
			}
		}
	}
	if filled {
		return
	}
	for i := range corners {
		a, b := corners[i], corners[(i+1)%len(corners)]
		steps := int(math.Ceil(math.Max(math.Abs(b.X-a.X)*v.sx, math.Abs(b.Y-a.Y)*v.sy))) + 1
		for s := 0; s <= steps; s++ {
			t := float64(s) / float64(steps)
			f.set(v, a.Add(b.Sub(a).Scale(t)), solidRune, style)
		}
	}
}

func inside(p physics.Vec2, poly [4]physics.Vec2) bool {
	var sign float64
	for i := range poly {
		a, b := poly[i], poly[(i+1)%len(poly)]
		cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
		if cross == 0 {
			continue
		}
		if sign == 0 {
			sign = cross
			continue
		}
		if (cross > 0) != (sign > 0) {
			return false
		}
	}
	return true
}

func (f *Frontend) drawBanner(v viewport, b game.Banner) {
	text := " " + b.Text + " "
	width := runewidth.StringWidth(text)
	col := max((v.cols-width)/2, 0)
	row := v.rows / 2

	style := tcell.StyleDefault.Foreground(toTcell(b.TextColor)).Background(toTcell(b.Color)).Bold(true)
	for _, r := range text {
		if col >= v.cols {
			break
		}
		f.screen.SetContent(col, row, r, nil, style)
		col += runewidth.RuneWidth(r)
	}
}

func toTcell(c models.Color) tcell.Color {
	r, g, b, _ := c.RGBA()
	return tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8))
}
