package ui

import (
	"log/slog"

	"fyne.io/fyne/v2"
)

// Notifier sends notifications through the operating system.
type Notifier struct {
	app fyne.App
}

// NewNotifier returns a new Notifier for app.
func NewNotifier(app fyne.App) *Notifier {
	return &Notifier{app: app}
}

// Notify sends a notification. It can be called from any goroutine.
func (n *Notifier) Notify(title, content string) {
	slog.Debug("Sending notification", "title", title)
	fyne.Do(func() {
		n.app.SendNotification(fyne.NewNotification(title, content))
	})
}
