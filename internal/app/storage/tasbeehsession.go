package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app"
)

type CreateTasbeehSessionParams struct {
	Count       int
	Dhikr       string
	CompletedAt time.Time
}

func (st *Storage) CreateTasbeehSession(ctx context.Context, arg CreateTasbeehSessionParams) (int64, error) {
	if arg.Count < 0 {
		return 0, fmt.Errorf("create tasbeeh session: %w", errors.New("negative count"))
	}
	if arg.CompletedAt.IsZero() {
		arg.CompletedAt = time.Now()
	}
	r, err := st.db.ExecContext(
		ctx,
		`INSERT INTO tasbeeh_sessions (count, dhikr, completed_at) VALUES (?, ?, ?);`,
		arg.Count,
		arg.Dhikr,
		arg.CompletedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("create tasbeeh session: %w", err)
	}
	id, err := r.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create tasbeeh session: %w", err)
	}
	return id, nil
}

func (st *Storage) GetTasbeehSession(ctx context.Context, id int64) (app.Session, error) {
	row := st.db.QueryRowContext(
		ctx,
		`SELECT id, count, dhikr, completed_at FROM tasbeeh_sessions WHERE id = ?;`,
		id,
	)
	var s app.Session
	if err := row.Scan(&s.ID, &s.Count, &s.Dhikr, &s.CompletedAt); err != nil {
		return app.Session{}, fmt.Errorf("get tasbeeh session %d: %w", id, convertGetError(err))
	}
	return s, nil
}

// ListTasbeehSessionsSince returns all sessions completed at or after since. The most recent comes first.
func (st *Storage) ListTasbeehSessionsSince(ctx context.Context, since time.Time) ([]app.Session, error) {
	rows, err := st.db.QueryContext(
		ctx,
		`SELECT id, count, dhikr, completed_at
		FROM tasbeeh_sessions
		WHERE completed_at >= ?
		ORDER BY completed_at DESC, id DESC;`,
		since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list tasbeeh sessions: %w", err)
	}
	defer rows.Close()
	sessions := make([]app.Session, 0)
	for rows.Next() {
		var s app.Session
		if err := rows.Scan(&s.ID, &s.Count, &s.Dhikr, &s.CompletedAt); err != nil {
			return nil, fmt.Errorf("list tasbeeh sessions: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasbeeh sessions: %w", err)
	}
	return sessions, nil
}

func (st *Storage) DeleteTasbeehSessions(ctx context.Context) error {
	if _, err := st.db.ExecContext(ctx, `DELETE FROM tasbeeh_sessions;`); err != nil {
		return fmt.Errorf("delete tasbeeh sessions: %w", err)
	}
	return nil
}
