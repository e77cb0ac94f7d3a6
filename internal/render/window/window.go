// Package window runs a round in a desktop window with ebiten.
package window

import (
	"context"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/zeusync/dropchooser/internal/app"
	"github.com/zeusync/dropchooser/internal/core/drawdata"
	"github.com/zeusync/dropchooser/internal/core/events/bus"
	"github.com/zeusync/dropchooser/internal/core/models"
	"github.com/zeusync/dropchooser/internal/core/observability/log"
	"github.com/zeusync/dropchooser/internal/game"
)

const bannerPadding = 12

// Window implements ebiten.Game. Ebiten owns the loop: every Update is one tick.
type Window struct {
	ctx    context.Context
	game   *game.Game
	feed   app.Broadcaster
	logger log.Log
	debug  bool

	frame game.Frame
	pixel *ebiten.Image
	face  text.Face
}

type Option func(*Window)

// WithFeed mirrors every frame to b.
func WithFeed(b app.Broadcaster) Option {
	return func(w *Window) { w.feed = b }
}

// WithDebug prints the tick and state in the top-left corner.
func WithDebug(on bool) Option {
	return func(w *Window) { w.debug = on }
}

func New(g *game.Game, logger log.Log, opts ...Option) *Window {
	if logger == nil {
		logger = log.Nop()
	}
	w := &Window{
		ctx:    context.Background(),
		game:   g,
		logger: logger.Named("window"),
		frame:  g.Frame(),
		face:   text.NewGoXFace(basicfont.Face7x13),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run opens the window and blocks until it is closed, Escape is pressed or
// ctx is cancelled.
func (w *Window) Run(ctx context.Context) error {
	w.ctx = ctx
	cfg := w.game.Config()

	ebiten.SetWindowSize(int(cfg.Width), int(cfg.Height))
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetVsyncEnabled(cfg.VSync)
	ebiten.SetTPS(cfg.TickRate)

	w.logger.Info("window opened", log.String("title", cfg.Title), log.Int("tps", cfg.TickRate))
	if err := ebiten.RunGame(w); err != nil {
		return fmt.Errorf("run window: %w", err)
	}
	return nil
}

func (w *Window) Update() error {
	select {
	case <-w.ctx.Done():
		return ebiten.Termination
	default:
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		w.logger.Info("window closed by user", log.Uint64("ticks", w.game.Ticks()))
		return ebiten.Termination
	}
	for _, k := range [...]struct {
		from ebiten.Key
		to   bus.Key
	}{
		{ebiten.KeySpace, bus.KeySpace},
		{ebiten.KeyEnter, bus.KeyEnter},
	} {
		if !inpututil.IsKeyJustPressed(k.from) {
			continue
		}
		if err := w.game.PressKey(k.to); err != nil {
			w.logger.Warn("key press dropped", log.Stringer("key", k.to), log.Error(err))
		}
	}

	_ = w.game.Tick()
	w.frame = w.game.Frame()
	if w.feed != nil {
		w.feed.Broadcast(w.frame)
	}
	return nil
}

func (w *Window) Draw(screen *ebiten.Image) {
	if w.pixel == nil {
		w.pixel = ebiten.NewImage(1, 1)
		w.pixel.Fill(color.White)
	}

	screen.Fill(w.frame.Background)
	for _, d := range w.frame.Drawables {
		w.drawBody(screen, d)
	}
	if w.frame.Banner != nil {
		w.drawBanner(screen, *w.frame.Banner)
	}
	if w.debug {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("tick %d  %s  %.0f fps", w.frame.Tick, w.frame.State, ebiten.ActualFPS()), 4, 4)
	}
}

func (w *Window) Layout(_, _ int) (int, int) {
	return int(w.frame.Width), int(w.frame.Height)
}

func (w *Window) drawBody(screen *ebiten.Image, d game.Drawable) {
	c := models.White
	if d.Attributes.Color != nil {
		c = *d.Attributes.Color
	}

	switch d.Kind {
	case drawdata.Ball, drawdata.Nail:
		r := 2.0
		if d.Attributes.Rect != nil {
			r = d.Attributes.Rect.W / 2
		}
		vector.DrawFilledCircle(screen, float32(d.Position.X), float32(d.Position.Y), float32(r), c, true)
	default:
		if d.Attributes.Rect == nil {
			return
		}
		rotation := d.Angle
		if d.Attributes.Rotation != nil {
			rotation += *d.Attributes.Rotation
		}
		if rotation == 0 {
			rect := *d.Attributes.Rect
			vector.DrawFilledRect(screen,
				float32(d.Position.X+rect.X), float32(d.Position.Y+rect.Y),
				float32(rect.W), float32(rect.H), c, false)
			return
		}
		op := &ebiten.DrawImageOptions{GeoM: rectGeoM(d, rotation)}
		op.ColorScale.ScaleWithColor(c)
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(w.pixel, op)
	}
}

// rectGeoM maps the unit square onto the drawable's rectangle rotated by
// rotation about its own center.
func rectGeoM(d game.Drawable, rotation float64) ebiten.GeoM {
	rect := *d.Attributes.Rect
	center := rect.Center()

	var m ebiten.GeoM
	m.Scale(rect.W, rect.H)
	m.Translate(-rect.W/2, -rect.H/2)
	m.Rotate(rotation)
	m.Translate(d.Position.X+center.X, d.Position.Y+center.Y)
	return m
}

func (w *Window) drawBanner(screen *ebiten.Image, b game.Banner) {
	tw, th := text.Measure(b.Text, w.face, w.face.Metrics().HAscent+w.face.Metrics().HDescent)
	x, y := bannerOrigin(w.frame.Width, w.frame.Height, tw, th)

	vector.DrawFilledRect(screen,
		float32(x-bannerPadding), float32(y-bannerPadding),
		float32(tw+2*bannerPadding), float32(th+2*bannerPadding), b.Color, false)

	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(b.TextColor)
	text.Draw(screen, b.Text, w.face, op)
}

// bannerOrigin centers a tw by th box on a width by height screen.
func bannerOrigin(width, height, tw, th float64) (float64, float64) {
	return (width - tw) / 2, (height - th) / 2
}
