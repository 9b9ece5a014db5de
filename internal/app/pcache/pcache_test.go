package pcache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/pcache"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/storage/testutil"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/httpclient"
)

func TestPCache(t *testing.T) {
	db, st, _ := testutil.NewDBInMemory()
	defer db.Close()
	c := pcache.New(st, 0)
	defer c.Close()

	t.Run("should return stored items", func(t *testing.T) {
		cases := []struct {
			name    string
			timeout time.Duration
		}{
			{"with timeout", time.Minute},
			{"without timeout", 0},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				// given
				testutil.MustTruncateTables(db)
				// when
				c.Set("alpha", []byte("one"), tc.timeout)
				// then
				got, found := c.Get("alpha")
				require.True(t, found)
				assert.Equal(t, []byte("one"), got)
			})
		}
	})
	t.Run("should report missing items", func(t *testing.T) {
		testutil.MustTruncateTables(db)
		_, found := c.Get("unknown")
		assert.False(t, found)
	})
	t.Run("should not return expired items", func(t *testing.T) {
		// given
		testutil.MustTruncateTables(db)
		c.Set("alpha", []byte("one"), time.Millisecond)
		// when
		time.Sleep(20 * time.Millisecond)
		// then
		_, found := c.Get("alpha")
		assert.False(t, found)
	})
	t.Run("should delete an item", func(t *testing.T) {
		// given
		testutil.MustTruncateTables(db)
		c.Set("alpha", []byte("one"), 0)
		c.Set("bravo", []byte("two"), 0)
		// when
		c.Delete("alpha")
		// then
		_, found := c.Get("alpha")
		assert.False(t, found)
		_, found = c.Get("bravo")
		assert.True(t, found)
	})
	t.Run("should clear all items", func(t *testing.T) {
		// given
		testutil.MustTruncateTables(db)
		c.Set("alpha", []byte("one"), 0)
		c.Set("bravo", []byte("two"), time.Hour)
		// when
		c.Clear()
		// then
		_, found := c.Get("alpha")
		assert.False(t, found)
		_, found = c.Get("bravo")
		assert.False(t, found)
	})
	t.Run("should remove only expired items on clean-up", func(t *testing.T) {
		// given
		testutil.MustTruncateTables(db)
		c.Set("alpha", []byte("one"), time.Millisecond)
		c.Set("bravo", []byte("two"), 0)
		time.Sleep(20 * time.Millisecond)
		// when
		n := c.CleanUp()
		// then
		assert.Equal(t, 1, n)
		_, found := c.Get("bravo")
		assert.True(t, found)
	})
	t.Run("can serve as backend for cached HTTP responses", func(t *testing.T) {
		// given
		testutil.MustTruncateTables(db)
		ca := httpclient.NewCacheAdapter(c, "http-", 0)
		// when
		ca.Set("https://example.com", []byte("response"))
		// then
		got, found := c.Get("http-https://example.com")
		require.True(t, found)
		assert.Equal(t, []byte("response"), got)
	})
}

func TestPCacheClose(t *testing.T) {
	db, st, _ := testutil.NewDBInMemory()
	defer db.Close()
	c := pcache.New(st, time.Minute)
	assert.NotPanics(t, func() {
		c.Close()
		c.Close()
	})
}
