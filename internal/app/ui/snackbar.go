package ui

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const (
	snackbarQueueSize = 10
	snackbarTimeout   = 3 * time.Second
	shadowWidth       = 8
)

// snackbar shows short messages at the bottom of a window, one after the other.
// Messages are dropped when too many are waiting.
type snackbar struct {
	label    *widget.Label
	messages chan string
	popup    *widget.PopUp
	timeout  time.Duration

	mu      sync.Mutex
	running bool
	stop    chan struct{}
}

func newSnackbar(w fyne.Window) *snackbar {
	l := widget.NewLabel("")
	sb := &snackbar{
		label:    l,
		messages: make(chan string, snackbarQueueSize),
		popup:    widget.NewPopUp(l, w.Canvas()),
		timeout:  snackbarTimeout,
	}
	return sb
}

// Show queues a message for display.
func (sb *snackbar) Show(text string) {
	select {
	case sb.messages <- text:
	default:
	}
}

// Start starts showing messages. It should be called after the app has started.
func (sb *snackbar) Start() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	if sb.running {
		return
	}
	sb.running = true
	sb.stop = make(chan struct{})
	go sb.run(sb.stop)
}

// Stop stops showing messages.
func (sb *snackbar) Stop() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	if !sb.running {
		return
	}
	close(sb.stop)
	sb.running = false
}

func (sb *snackbar) run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case text := <-sb.messages:
			fyne.Do(func() {
				sb.show(text)
			})
			select {
			case <-stop:
			case <-time.After(sb.timeout):
			}
			fyne.Do(func() {
				sb.popup.Hide()
			})
		}
	}
}

func (sb *snackbar) show(text string) {
	sb.label.SetText(text)
	_, canvasSize := sb.popup.Canvas.InteractiveArea()
	outer := sb.popup.Content.MinSize().Add(fyne.NewSquareSize(
		theme.Size(theme.SizeNameInnerPadding) + shadowWidth,
	))
	sb.popup.Move(fyne.NewPos(
		canvasSize.Width/2-outer.Width/2,
		canvasSize.Height-outer.Height*1.2,
	))
	sb.popup.Show()
}
