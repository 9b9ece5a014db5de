package ui_test

import (
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/storage/testutil"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/ui"
)

func TestUI_StartEmpty(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterNoResponder(httpmock.NewNotFoundResponder(t.Fatal)) // fails on any HTTP request
	db, st, _ := testutil.NewDBOnDisk(t)
	defer db.Close()
	u := ui.MakeFakeBaseUI(st, test.NewTempApp(t), &ui.FakePrayerTimes{})
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			if u.IsStartupCompleted() {
				u.App().Quit()
				return
			}
		}
	}()
	u.ShowAndRun()
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}
