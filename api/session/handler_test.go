package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridpulse/core/dispatch"
	"github.com/kilianp07/gridpulse/core/ledger"
	"github.com/kilianp07/gridpulse/core/model"
	"github.com/kilianp07/gridpulse/core/price"
	"github.com/kilianp07/gridpulse/core/scheduler"
)

var central = time.FixedZone("CDT", -5*3600)

type fixedPrice struct{ q price.Quote }

func (f fixedPrice) Price() float64                           { return f.q.Price }
func (f fixedPrice) Current() price.Quote                     { return f.q }
func (f fixedPrice) Reseed(string, []model.Event) price.Quote { return f.q }

type briefer struct{ err error }

func (briefer) Name() string { return "stub" }
func (b briefer) GenerateBrief(context.Context, dispatch.BriefInput) (string, error) {
	return "1. PRE-CHARGE: now", b.err
}

type confirmer struct{}

func (confirmer) Name() string                                                   { return "stub" }
func (confirmer) ConfirmDispatch(context.Context, dispatch.ConfirmRequest) error { return nil }

func fixture(t *testing.T, briefErr error) (http.Handler, *ledger.Ledger) {
	t.Helper()
	moody, ok := model.LookupVenue("Moody Center")
	require.True(t, ok)
	evs := []model.Event{{
		ID: "mbb-1", Name: "Texas vs. Rice", Category: model.MensBasketball, Venue: moody,
		Start:      time.Date(2025, 9, 13, 19, 0, 0, 0, central),
		End:        time.Date(2025, 9, 13, 21, 30, 0, 0, central),
		EndLabel:   "9:30 PM",
		Attendance: 10000, TempF: 95,
	}}
	catalog := model.NewCatalog(evs)
	clock := scheduler.NewManualClock(time.Date(2025, 9, 1, 12, 0, 0, 0, central))
	l := ledger.NewWithClock(clock.Now)
	q := fixedPrice{q: price.Quote{Price: 120, Simulated: true, Tier: "NORMAL"}}
	o, err := dispatch.New(dispatch.Config{Seed: 3}, catalog, q,
		dispatch.WithClock(clock),
		dispatch.WithLedger(l),
		dispatch.WithBriefGenerator(briefer{err: briefErr}),
		dispatch.WithConfirmer(confirmer{}),
	)
	require.NoError(t, err)
	t.Cleanup(o.Close)
	return NewHandler(Deps{Session: o, Catalog: catalog, History: l, Quoter: q}, "tok"), l
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestUnauthorized(t *testing.T) {
	h, _ := fixture(t, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/session", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

func TestSessionFlow(t *testing.T) {
	h, l := fixture(t, nil)

	rr := do(t, h, http.MethodPost, "/api/session/confirm", "")
	require.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/session/select", `{"date":"2025-09-13"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var snap struct {
		State     string `json:"state"`
		DateKey   string `json:"date"`
		Brief     string `json:"brief"`
		Confirmed bool   `json:"confirmed"`
		Command   *struct {
			DispatchID string `json:"dispatch_id"`
		} `json:"command"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Equal(t, "2025-09-13", snap.DateKey)

	rr = do(t, h, http.MethodPost, "/api/session/brief", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Equal(t, "1. PRE-CHARGE: now", snap.Brief)

	rr = do(t, h, http.MethodPost, "/api/session/confirm", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.True(t, snap.Confirmed)
	require.NotNil(t, snap.Command)
	assert.True(t, strings.HasPrefix(snap.Command.DispatchID, "GP-2025-0913-"))
	assert.Equal(t, 1, l.Len())

	rr = do(t, h, http.MethodGet, "/api/ledger", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Entries []ledger.Entry `json:"entries"`
		Totals  ledger.Totals  `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Entries, 1)
	assert.Equal(t, 1, body.Totals.Count)

	rr = do(t, h, http.MethodGet, "/api/ledger/export", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], snap.Command.DispatchID+",2025-09-13,"))

	rr = do(t, h, http.MethodGet, "/api/ledger/export?format=json", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), snap.Command.DispatchID)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/ledger/export?format=xml", "").Code)
}

func TestSelectErrors(t *testing.T) {
	h, _ := fixture(t, nil)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/session/select", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/session/select", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/api/session/select", `{"date":"2030-01-01"}`).Code)
}

func TestBriefFailureCarriesSnapshot(t *testing.T) {
	h, _ := fixture(t, errors.New("Groq API error (500)"))
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/session/select", `{"event_id":"mbb-1"}`).Code)
	rr := do(t, h, http.MethodPost, "/api/session/brief", "")
	require.Equal(t, http.StatusBadGateway, rr.Code)
	var body struct {
		Error    string `json:"error"`
		Snapshot struct {
			State      string `json:"state"`
			BriefError string `json:"brief_error"`
		} `json:"snapshot"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "Groq API error (500)")
	assert.Equal(t, "Groq API error (500)", body.Snapshot.BriefError)
}

func TestCatalogEndpoints(t *testing.T) {
	h, _ := fixture(t, nil)

	rr := do(t, h, http.MethodGet, "/api/dates", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var dates []dateSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dates))
	require.Len(t, dates, 1)
	assert.Equal(t, "Sat, Sep 13, 2025", dates[0].Label)
	assert.Positive(t, dates[0].Batteries)

	rr = do(t, h, http.MethodGet, "/api/events?date=2030-01-01", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())

	rr = do(t, h, http.MethodGet, "/api/impact?date=2025-09-13", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var imp struct {
		Zones    []map[string]any `json:"zone_load"`
		Clusters []model.Cluster  `json:"clusters"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &imp))
	assert.Len(t, imp.Zones, 4)
	assert.NotEmpty(t, imp.Clusters)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/impact", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/impact?date=2030-01-01", "").Code)

	rr = do(t, h, http.MethodGet, "/api/clusters", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var cs []struct {
		ID     string `json:"id"`
		Radius int    `json:"radius_m"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cs))
	assert.Len(t, cs, len(model.Clusters()))
	assert.Positive(t, cs[0].Radius)

	rr = do(t, h, http.MethodGet, "/api/price", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"price":120`)
}
