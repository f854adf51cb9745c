package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridpulse/config"
	"github.com/kilianp07/gridpulse/core/dispatch"
	"github.com/kilianp07/gridpulse/core/scheduler"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Price.Seed = 11
	cfg.Dispatch.Seed = 11
	cfg.SetDefaults()
	return cfg
}

func TestNewLoadsBundledCatalog(t *testing.T) {
	svc, err := New(testConfig(), WithClock(scheduler.NewManualClock(time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC))))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	assert.Positive(t, svc.Catalog.Len())
	assert.Equal(t, 1, svc.Report.DroppedTotal())

	rr := httptest.NewRecorder()
	svc.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/dates", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var dates []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dates))
	assert.Len(t, dates, len(svc.Catalog.Dates()))

	rr = httptest.NewRecorder()
	svc.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestNewRejectsMissingFile(t *testing.T) {
	cfg := testConfig()
	cfg.Data.Events = "does/not/exist.csv"
	_, err := New(cfg)
	require.Error(t, err)
}

func TestRunHeadlessCompletesAccrual(t *testing.T) {
	clock := scheduler.NewManualClock(time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC))
	svc, err := New(testConfig(), WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
			}
			if clock.Pending() > 0 {
				clock.Advance(100 * time.Millisecond)
			} else {
				time.Sleep(time.Millisecond)
			}
		}
	}()

	snap, err := svc.RunHeadless(ctx, dispatch.Selection{Date: "2025-09-13"})
	require.NoError(t, err)
	assert.Equal(t, dispatch.AccrualClosed, snap.State)
	assert.Equal(t, 30, snap.AccrualTicks)
	assert.Positive(t, snap.Revenue)
	require.NotNil(t, snap.Command)
	assert.Equal(t, 1, svc.Ledger.Len())
}

func TestRunHeadlessUnknownDate(t *testing.T) {
	svc, err := New(testConfig(), WithClock(scheduler.NewManualClock(time.Now())))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	_, err = svc.RunHeadless(context.Background(), dispatch.Selection{Date: "2031-01-01"})
	require.ErrorIs(t, err, dispatch.ErrUnknownSelection)
}
