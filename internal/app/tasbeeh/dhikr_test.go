package tasbeeh_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/tasbeeh"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/kvstore"
)

func TestLoadBuiltin(t *testing.T) {
	items, err := tasbeeh.LoadBuiltin()
	require.NoError(t, err)
	require.NotEmpty(t, items)
	ids := make(map[string]bool)
	for _, d := range items {
		assert.NotEmpty(t, d.ID)
		assert.NotEmpty(t, d.Arabic)
		assert.NotEmpty(t, d.Translation)
		assert.Greater(t, d.Target, 0)
		assert.False(t, d.IsCustom)
		assert.False(t, ids[d.ID], "duplicate ID %s", d.ID)
		ids[d.ID] = true
	}
}

func TestDhikrService(t *testing.T) {
	ctx := context.Background()
	newService := func(t *testing.T) (*tasbeeh.DhikrService, *kvstore.Memory, *tasbeeh.Events) {
		st := kvstore.NewMemory()
		ev := tasbeeh.NewEvents()
		s, err := tasbeeh.NewDhikrService(st, ev)
		require.NoError(t, err)
		return s, st, ev
	}
	t.Run("should list built-in dhikr without progress", func(t *testing.T) {
		s, _, _ := newService(t)
		items := s.List()
		builtin, _ := tasbeeh.LoadBuiltin()
		assert.Len(t, items, len(builtin))
		for _, d := range items {
			assert.Equal(t, 0, d.Current)
		}
	})
	t.Run("should increment and persist progress", func(t *testing.T) {
		// given
		s, st, _ := newService(t)
		// when
		d, err := s.Increment(ctx, "subhanallah")
		// then
		require.NoError(t, err)
		assert.Equal(t, 1, d.Current)
		s2, err := tasbeeh.NewDhikrService(st, nil)
		require.NoError(t, err)
		d2, err := s2.Get("subhanallah")
		require.NoError(t, err)
		assert.Equal(t, 1, d2.Current)
	})
	t.Run("should not increment beyond target and report complete", func(t *testing.T) {
		s, st, _ := newService(t)
		require.NoError(t, kvstore.SetJSON(st, "dhikr_progress", map[string]int{"subhanallah": 33}))
		d, err := s.Increment(ctx, "subhanallah")
		require.NoError(t, err)
		assert.Equal(t, 33, d.Current)
		assert.True(t, d.IsComplete())
	})
	t.Run("should cap stored progress above target", func(t *testing.T) {
		s, st, _ := newService(t)
		require.NoError(t, kvstore.SetJSON(st, "dhikr_progress", map[string]int{"subhanallah": 99}))
		d, err := s.Get("subhanallah")
		require.NoError(t, err)
		assert.Equal(t, 33, d.Current)
	})
	t.Run("should emit event when target is reached", func(t *testing.T) {
		s, st, ev := newService(t)
		require.NoError(t, kvstore.SetJSON(st, "dhikr_progress", map[string]int{"subhanallah": 32}))
		ch := make(chan app.Dhikr, 1)
		ev.DhikrCompleted.AddListener(func(_ context.Context, d app.Dhikr) {
			ch <- d
		})
		_, err := s.Increment(ctx, "subhanallah")
		require.NoError(t, err)
		select {
		case d := <-ch:
			assert.Equal(t, "subhanallah", d.ID)
			assert.Equal(t, 33, d.Current)
		case <-time.After(time.Second):
			t.Fatal("no event")
		}
		_, err = s.Increment(ctx, "subhanallah")
		require.NoError(t, err)
		select {
		case <-ch:
			t.Fatal("event emitted again")
		case <-time.After(50 * time.Millisecond):
		}
	})
	t.Run("should reset dhikr to zero", func(t *testing.T) {
		for _, current := range []int{0, 10, 33} {
			s, st, _ := newService(t)
			require.NoError(t, kvstore.SetJSON(st, "dhikr_progress", map[string]int{"subhanallah": current}))
			d, err := s.Reset("subhanallah")
			require.NoError(t, err)
			assert.Equal(t, 0, d.Current)
			d, err = s.Get("subhanallah")
			require.NoError(t, err)
			assert.Equal(t, 0, d.Current)
		}
	})
	t.Run("should reset all", func(t *testing.T) {
		s, _, _ := newService(t)
		_, err := s.Increment(ctx, "subhanallah")
		require.NoError(t, err)
		_, err = s.Increment(ctx, "alhamdulillah")
		require.NoError(t, err)
		require.NoError(t, s.ResetAll())
		for _, d := range s.List() {
			assert.Equal(t, 0, d.Current)
		}
	})
	t.Run("should report unknown dhikr", func(t *testing.T) {
		s, _, _ := newService(t)
		_, err := s.Increment(ctx, "unknown")
		assert.ErrorIs(t, err, tasbeeh.ErrNotFound)
		_, err = s.Reset("unknown")
		assert.ErrorIs(t, err, tasbeeh.ErrNotFound)
	})
	t.Run("should add custom dhikr", func(t *testing.T) {
		s, st, _ := newService(t)
		d, err := s.AddCustom(" بِسْمِ ٱللَّٰهِ ", "In the name of Allah", 7)
		require.NoError(t, err)
		assert.True(t, d.IsCustom)
		assert.Equal(t, "بِسْمِ ٱللَّٰهِ", d.Arabic)
		s2, err := tasbeeh.NewDhikrService(st, nil)
		require.NoError(t, err)
		items := s2.List()
		last := items[len(items)-1]
		assert.Equal(t, d.ID, last.ID)
		assert.True(t, last.IsCustom)
		assert.Equal(t, 7, last.Target)
	})
	t.Run("should create unique IDs for custom dhikr", func(t *testing.T) {
		s, _, _ := newService(t)
		d1, err := s.AddCustom("alpha", "", 1)
		require.NoError(t, err)
		d2, err := s.AddCustom("bravo", "", 1)
		require.NoError(t, err)
		require.NoError(t, s.DeleteCustom(d1.ID))
		d3, err := s.AddCustom("charlie", "", 1)
		require.NoError(t, err)
		assert.NotEqual(t, d2.ID, d3.ID)
	})
	t.Run("should reject invalid custom dhikr", func(t *testing.T) {
		s, _, _ := newService(t)
		_, err := s.AddCustom("", " ", 10)
		assert.ErrorIs(t, err, tasbeeh.ErrInvalidDhikr)
		_, err = s.AddCustom("alpha", "", 0)
		assert.ErrorIs(t, err, tasbeeh.ErrInvalidDhikr)
	})
	t.Run("should delete custom dhikr with progress", func(t *testing.T) {
		s, _, _ := newService(t)
		d, err := s.AddCustom("alpha", "", 5)
		require.NoError(t, err)
		_, err = s.Increment(ctx, d.ID)
		require.NoError(t, err)
		require.NoError(t, s.DeleteCustom(d.ID))
		_, err = s.Get(d.ID)
		assert.ErrorIs(t, err, tasbeeh.ErrNotFound)
		assert.ErrorIs(t, s.DeleteCustom(d.ID), tasbeeh.ErrNotFound)
	})
	t.Run("should not delete built-in dhikr", func(t *testing.T) {
		s, _, _ := newService(t)
		err := s.DeleteCustom("subhanallah")
		assert.ErrorIs(t, err, tasbeeh.ErrBuiltin)
	})
	t.Run("should tolerate invalid stored data", func(t *testing.T) {
		s, st, _ := newService(t)
		st.Set("custom_dhikr", "invalid")
		st.Set("dhikr_progress", "invalid")
		builtin, _ := tasbeeh.LoadBuiltin()
		assert.Len(t, s.List(), len(builtin))
	})
}
