// Package humanize transforms values into more user friendly representations.
package humanize

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/optional"
)

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Duration returns a humanized duration, e.g. "10h 5m".
//
// Shows days and hours for duration over 1 day, else hours and minutes.
// Rounds to full minutes.
// Negative durations are returned as "0m"
func Duration(duration time.Duration) string {
	if duration <= 0 {
		return "0m"
	}
	mRaw := duration.Minutes()
	if mRaw < 1 {
		return "<1m"
	}
	m := int(math.Round(mRaw))
	d := m / 60 / 24
	m -= d * 60 * 24
	h := m / 60
	m -= h * 60
	if d > 0 {
		return fmt.Sprintf("%dd %dh", d, h)
	}
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// Countdown returns the time left from now until t, e.g. "in 1h 5m".
func Countdown(now, t time.Time) string {
	d := t.Sub(now)
	if d <= 0 {
		return "now"
	}
	return "in " + Duration(d)
}

// Comma produces a string form of the given number in base 10
// with commas after every three orders of magnitude.
func Comma[T integer](x T) string {
	return humanize.Comma(int64(x))
}

// Progress returns a count and its target, e.g. "12 / 33".
func Progress[T integer](current, target T) string {
	return fmt.Sprintf("%s / %s", Comma(current), Comma(target))
}

// Optional returns a string representation of on optional value when set
// or the fallback when not set.
func Optional[T any](o optional.Optional[T], fallback string) string {
	if o.IsEmpty() {
		return fallback
	}
	v := o.ValueOrZero()
	switch x := any(v).(type) {
	case time.Duration:
		return Duration(x)
	case time.Time:
		return humanize.Time(x)
	case string:
		return x
	case int:
		return Comma(x)
	case int64:
		return Comma(x)
	case bool:
		if x {
			return "yes"
		}
		return "no"
	}
	return fmt.Sprint(v)
}

// TimeWithFallback returns a given time as relative string.
// Or returns the fallback when time is zero.
func TimeWithFallback(v time.Time, fallback string) string {
	if v.IsZero() {
		return fallback
	}
	return humanize.Time(v)
}

// Error returns a short message for showing an error to users.
func Error(err error) string {
	if err == nil {
		return ""
	}
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &netErr):
		return "network error"
	}
	return err.Error()
}
