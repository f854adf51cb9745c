package scenarios

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridpulse/app"
	"github.com/kilianp07/gridpulse/config"
	"github.com/kilianp07/gridpulse/core/dispatch"
	"github.com/kilianp07/gridpulse/core/ledger"
	"github.com/kilianp07/gridpulse/core/model"
	"github.com/kilianp07/gridpulse/core/price"
	"github.com/kilianp07/gridpulse/core/scheduler"
	"github.com/kilianp07/gridpulse/infra/logger"
)

type fixedPrice float64

func (p fixedPrice) Price() float64 { return float64(p) }
func (p fixedPrice) Reseed(string, []model.Event) price.Quote {
	return price.Quote{Price: float64(p), Simulated: true}
}

type scriptedBriefer struct{ err string }

func (scriptedBriefer) Name() string { return "scenario" }
func (b scriptedBriefer) GenerateBrief(_ context.Context, in dispatch.BriefInput) (string, error) {
	if b.err != "" {
		return "", errors.New(b.err)
	}
	return "1. PRE-CHARGE: " + in.Stats.PreChargeLabel, nil
}

type scriptedConfirmer struct{ err string }

func (scriptedConfirmer) Name() string { return "scenario" }
func (c scriptedConfirmer) ConfirmDispatch(context.Context, dispatch.ConfirmRequest) error {
	if c.err != "" {
		return errors.New(c.err)
	}
	return nil
}

// RunScenario plays select, brief and confirm on a manual clock, advances
// past the accrual window and checks the final snapshot and ledger.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	catalog, _, err := app.LoadCatalog(config.DataConfig{Timezone: "America/Chicago"}, logger.NopLogger{})
	require.NoError(t, err)

	clock := scheduler.NewManualClock(time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC))
	l := ledger.NewWithClock(clock.Now)
	cfg := dispatch.Config{Seed: 11}
	o, err := dispatch.New(cfg, catalog, fixedPrice(sc.Price),
		dispatch.WithClock(clock),
		dispatch.WithLedger(l),
		dispatch.WithBriefGenerator(scriptedBriefer{err: sc.BriefError}),
		dispatch.WithConfirmer(scriptedConfirmer{err: sc.ConfirmError}),
	)
	require.NoError(t, err)
	defer o.Close()

	ctx := context.Background()
	snap, err := o.Select(dispatch.ParseSelection(sc.Select))
	require.NoError(t, err, "select %s", sc.Select)
	if sc.Expected.Zones != nil {
		assert.ElementsMatch(t, sc.Expected.Zones, snap.Stats.Zones)
	}
	assert.GreaterOrEqual(t, snap.Stats.Batteries, sc.Expected.MinBatteries)

	if _, err := o.RequestBrief(ctx); err != nil {
		if sc.BriefError == "" {
			t.Fatalf("brief: %v", err)
		}
	} else if _, err := o.Confirm(ctx); err != nil && sc.ConfirmError == "" {
		t.Fatalf("confirm: %v", err)
	}

	clock.Advance(time.Minute)
	snap = o.Snapshot()
	assert.Equal(t, sc.Expected.State, snap.State.String())
	assert.Equal(t, sc.Expected.AccrualTicks, snap.AccrualTicks)
	assert.Equal(t, sc.Expected.LedgerEntries, l.Len())
}
