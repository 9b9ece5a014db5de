package tasbeeh

import (
	"context"
	"fmt"
	"time"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/storage"
)

// HistoryDays is the number of days shown in the history.
const HistoryDays = 7

// HistoryService provides the history of tasbeeh sessions.
type HistoryService struct {
	st  *storage.Storage
	now func() time.Time
}

var _ Recorder = (*HistoryService)(nil)

func NewHistoryService(st *storage.Storage) *HistoryService {
	return &HistoryService{st: st, now: time.Now}
}

// Record records a completed session. Sessions without counts are ignored.
func (s *HistoryService) Record(ctx context.Context, count int, dhikr string) error {
	if count <= 0 {
		return nil
	}
	_, err := s.st.CreateTasbeehSession(ctx, storage.CreateTasbeehSessionParams{
		Count:       count,
		Dhikr:       dhikr,
		CompletedAt: s.now(),
	})
	if err != nil {
		return fmt.Errorf("record session: %w", err)
	}
	return nil
}

// Recent returns the sessions of the last 7 days. The most recent comes first.
func (s *HistoryService) Recent(ctx context.Context) ([]app.Session, error) {
	since := app.StartOfDay(s.now()).AddDate(0, 0, -(HistoryDays - 1))
	sessions, err := s.st.ListTasbeehSessionsSince(ctx, since)
	if err != nil {
		return nil, err
	}
	for i, x := range sessions {
		sessions[i].CompletedAt = x.CompletedAt.In(s.now().Location())
	}
	return sessions, nil
}

// DailyTotals returns the totals per day for the last 7 days. The most recent day comes first.
// Days without sessions are omitted.
func (s *HistoryService) DailyTotals(ctx context.Context) ([]app.DailyTotal, error) {
	sessions, err := s.Recent(ctx)
	if err != nil {
		return nil, err
	}
	totals := make([]app.DailyTotal, 0)
	for _, x := range sessions {
		d := app.DateOf(x.CompletedAt)
		if n := len(totals); n == 0 || totals[n-1].Date != d {
			totals = append(totals, app.DailyTotal{Date: d})
		}
		t := &totals[len(totals)-1]
		t.Count += x.Count
		t.Sessions++
	}
	return totals, nil
}

// Clear deletes the complete history.
func (s *HistoryService) Clear(ctx context.Context) error {
	return s.st.DeleteTasbeehSessions(ctx)
}
