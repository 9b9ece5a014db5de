package ui

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/qibla"
)

// qiblaPage is the screen with the Qibla compass.
type qiblaPage struct {
	widget.BaseWidget

	compass qibla.Compass
	dial    *compassDial
	heading *widget.Label
	hint    *widget.Label
	u       *BaseUI

	mu     sync.Mutex
	cancel context.CancelFunc
}

func newQiblaPage(u *BaseUI) *qiblaPage {
	heading := widget.NewLabel("")
	heading.Alignment = fyne.TextAlignCenter
	heading.TextStyle.Bold = true
	hint := widget.NewLabel("")
	hint.Alignment = fyne.TextAlignCenter
	hint.Wrapping = fyne.TextWrapWord
	a := &qiblaPage{
		dial:    newCompassDial(),
		heading: heading,
		hint:    hint,
		u:       u,
	}
	a.ExtendBaseWidget(a)
	return a
}

func (a *qiblaPage) CreateRenderer() fyne.WidgetRenderer {
	c := container.NewBorder(
		a.heading,
		a.hint,
		nil,
		nil,
		container.NewCenter(container.NewGridWrap(fyne.NewSquareSize(240), a.dial)),
	)
	return widget.NewSimpleRenderer(c)
}

// bearing returns the direction of the Qibla for the last known location.
func (a *qiblaPage) bearing() float64 {
	var loc app.Location
	if a.u.lastLocation != nil {
		loc, _ = a.u.lastLocation()
	}
	return qibla.Bearing(loc)
}

// start starts following the sensors. It blocks until the sensors stop or stop is called.
func (a *qiblaPage) start() {
	ctx, cancel := context.WithCancel(context.Background())
	a.mu.Lock()
	if a.cancel != nil {
		a.mu.Unlock()
		cancel()
		return
	}
	a.cancel = cancel
	a.mu.Unlock()
	defer a.stop()

	bearing := a.bearing()
	fyne.Do(func() {
		a.heading.SetText(fmt.Sprintf("Qibla %.0f°", bearing))
		a.hint.SetText("Waiting for compass...")
	})
	err := a.compass.Run(ctx, a.u.sensors, func(h float64) {
		fyne.Do(func() {
			a.show(h, bearing)
		})
	})
	switch {
	case errors.Is(err, qibla.ErrNoSensors):
		slog.Info("No compass sensors available")
		fyne.Do(func() {
			a.hint.SetText("This device has no compass. The Qibla is shown relative to north.")
			a.dial.set(0, bearing)
		})
	case err != nil && !errors.Is(err, context.Canceled):
		slog.Warn("Compass stopped", "error", err)
		fyne.Do(func() {
			a.hint.SetText("Compass not available")
		})
	}
}

// stop stops following the sensors.
func (a *qiblaPage) stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel == nil {
		return
	}
	a.cancel()
	a.cancel = nil
}

func (a *qiblaPage) show(heading, bearing float64) {
	a.dial.set(heading, bearing)
	turn := qibla.Turn(heading, bearing)
	var s string
	switch {
	case math.Abs(turn) < 5:
		s = "You are facing the Qibla"
	case turn > 0:
		s = fmt.Sprintf("Turn %.0f° right", turn)
	default:
		s = fmt.Sprintf("Turn %.0f° left", -turn)
	}
	a.hint.SetText(fmt.Sprintf("Heading %.0f°. %s", heading, s))
}

// compassDial draws a compass rose with a needle pointing towards the Qibla.
type compassDial struct {
	widget.BaseWidget

	mu      sync.Mutex
	heading float64
	bearing float64
}

func newCompassDial() *compassDial {
	w := &compassDial{}
	w.ExtendBaseWidget(w)
	return w
}

// set updates the dial. Angles are in degrees from north.
func (w *compassDial) set(heading, bearing float64) {
	w.mu.Lock()
	w.heading = heading
	w.bearing = bearing
	w.mu.Unlock()
	w.Refresh()
}

func (w *compassDial) angles() (north, needle float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return qibla.Normalize(-w.heading), qibla.Normalize(w.bearing - w.heading)
}

func (w *compassDial) CreateRenderer() fyne.WidgetRenderer {
	ring := canvas.NewCircle(color.Transparent)
	ring.StrokeWidth = 2
	north := canvas.NewText("N", theme.Color(theme.ColorNameForeground))
	north.TextStyle.Bold = true
	needle := canvas.NewLine(theme.Color(colorNameCounter))
	needle.StrokeWidth = 4
	r := &compassDialRenderer{
		north:  north,
		needle: needle,
		ring:   ring,
		w:      w,
	}
	r.Refresh()
	return r
}

type compassDialRenderer struct {
	north  *canvas.Text
	needle *canvas.Line
	ring   *canvas.Circle
	w      *compassDial
}

func (r *compassDialRenderer) Destroy() {}

func (r *compassDialRenderer) Layout(size fyne.Size) {
	d := fyne.Min(size.Width, size.Height)
	center := fyne.NewPos(size.Width/2, size.Height/2)
	radius := d/2 - theme.Padding()
	r.ring.Resize(fyne.NewSquareSize(2 * radius))
	r.ring.Move(center.SubtractXY(radius, radius))

	northAngle, needleAngle := r.w.angles()
	textSize := r.north.MinSize()
	p := pointOnCircle(center, radius-textSize.Height, northAngle)
	r.north.Move(p.SubtractXY(textSize.Width/2, textSize.Height/2))
	r.north.Resize(textSize)

	r.needle.Position1 = center
	r.needle.Position2 = pointOnCircle(center, radius*0.8, needleAngle)
}

func (r *compassDialRenderer) MinSize() fyne.Size {
	return fyne.NewSquareSize(120)
}

func (r *compassDialRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.ring, r.north, r.needle}
}

func (r *compassDialRenderer) Refresh() {
	r.ring.StrokeColor = theme.Color(theme.ColorNameForeground)
	r.north.Color = theme.Color(theme.ColorNameForeground)
	r.needle.StrokeColor = theme.Color(colorNameCounter)
	r.Layout(r.w.Size())
	canvas.Refresh(r.w)
}

// pointOnCircle returns the point at angle degrees clockwise from the top.
func pointOnCircle(center fyne.Position, radius float32, angle float64) fyne.Position {
	rad := angle * math.Pi / 180
	return fyne.NewPos(
		center.X+radius*float32(math.Sin(rad)),
		center.Y-radius*float32(math.Cos(rad)),
	)
}
