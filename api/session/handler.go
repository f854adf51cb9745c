// Package session exposes the dispatch session, the event catalog and the
// ledger over HTTP.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kilianp07/gridpulse/core/dispatch"
	"github.com/kilianp07/gridpulse/core/impact"
	"github.com/kilianp07/gridpulse/core/ledger"
	"github.com/kilianp07/gridpulse/core/logger"
	"github.com/kilianp07/gridpulse/core/model"
	"github.com/kilianp07/gridpulse/core/price"
	"github.com/kilianp07/gridpulse/pkg/export"
)

// Session is the part of the orchestrator driven over HTTP.
type Session interface {
	Select(sel dispatch.Selection) (dispatch.Snapshot, error)
	RequestBrief(ctx context.Context) (dispatch.Snapshot, error)
	Confirm(ctx context.Context) (dispatch.Snapshot, error)
	Snapshot() dispatch.Snapshot
}

// History lists recorded dispatches, newest first.
type History interface {
	Entries() []ledger.Entry
}

// Quoter returns the live market price.
type Quoter interface {
	Current() price.Quote
}

// Deps bundles the handler dependencies.
type Deps struct {
	Session Session
	Catalog *model.Catalog
	History History
	Quoter  Quoter
	Logger  logger.Logger
}

type handler struct {
	Deps
}

// NewHandler returns the session API. Requests must include an Authorization
// header with "Bearer <token>" when token is non-empty.
//
//	GET  /api/session          current snapshot
//	POST /api/session/select   {"date": "2025-09-13"} or {"event_id": "..."}
//	POST /api/session/brief    generate the operator brief
//	POST /api/session/confirm  confirm and start the rollout
//	GET  /api/dates            dates with their projected figures
//	GET  /api/events?date=     events, all or on one date
//	GET  /api/impact?date=     impact stats and zone surge for a date
//	GET  /api/price            live market price
//	GET  /api/clusters         battery cluster catalog
//	GET  /api/ledger           dispatch history and totals
//	GET  /api/ledger/export    history as ?format=csv (default) or json
func NewHandler(d Deps, token string) http.Handler {
	d.Logger = logger.OrNop(d.Logger)
	h := &handler{Deps: d}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/session", h.snapshot)
	mux.HandleFunc("POST /api/session/select", h.selectDate)
	mux.HandleFunc("POST /api/session/brief", h.brief)
	mux.HandleFunc("POST /api/session/confirm", h.confirm)
	mux.HandleFunc("GET /api/dates", h.dates)
	mux.HandleFunc("GET /api/events", h.events)
	mux.HandleFunc("GET /api/impact", h.impact)
	mux.HandleFunc("GET /api/price", h.price)
	mux.HandleFunc("GET /api/clusters", h.clusters)
	mux.HandleFunc("GET /api/ledger", h.ledger)
	mux.HandleFunc("GET /api/ledger/export", h.exportLedger)
	return RequireToken(token, mux)
}

// RequireToken wraps next with bearer-token authentication. An empty token
// disables the check.
func RequireToken(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type errorBody struct {
	Error    string             `json:"error"`
	Snapshot *dispatch.Snapshot `json:"snapshot,omitempty"`
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Warnf("encode response: %v", err)
	}
}

// writeResult answers with the snapshot, or with the error and the snapshot
// when the operation failed.
func (h *handler) writeResult(w http.ResponseWriter, snap dispatch.Snapshot, err error) {
	if err == nil {
		h.writeJSON(w, http.StatusOK, snap)
		return
	}
	h.writeJSON(w, statusFor(err), errorBody{Error: err.Error(), Snapshot: &snap})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, dispatch.ErrUnknownSelection):
		return http.StatusNotFound
	case errors.Is(err, dispatch.ErrNoSelection), errors.Is(err, dispatch.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (h *handler) snapshot(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.Session.Snapshot())
}

func (h *handler) selectDate(w http.ResponseWriter, r *http.Request) {
	var sel dispatch.Selection
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid body: " + err.Error()})
		return
	}
	if sel.Date == "" && sel.EventID == "" {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "date or event_id is required"})
		return
	}
	snap, err := h.Session.Select(sel)
	h.writeResult(w, snap, err)
}

func (h *handler) brief(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Session.RequestBrief(r.Context())
	h.writeResult(w, snap, err)
}

func (h *handler) confirm(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Session.Confirm(r.Context())
	h.writeResult(w, snap, err)
}

type dateSummary struct {
	Date             string  `json:"date"`
	Label            string  `json:"label"`
	EventCount       int     `json:"event_count"`
	Batteries        int     `json:"batteries"`
	ProjectedRevenue float64 `json:"projected_revenue"`
}

func (h *handler) dates(w http.ResponseWriter, _ *http.Request) {
	p := h.Quoter.Current().Price
	keys := h.Catalog.Dates()
	out := make([]dateSummary, 0, len(keys))
	for _, k := range keys {
		evs := h.Catalog.OnDate(k)
		st := impact.Aggregate(evs, p)
		out = append(out, dateSummary{
			Date:             k,
			Label:            dispatch.DateLabel(k),
			EventCount:       st.EventCount,
			Batteries:        st.Batteries,
			ProjectedRevenue: impact.ProjectedRevenue(evs, p),
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *handler) events(w http.ResponseWriter, r *http.Request) {
	if d := r.URL.Query().Get("date"); d != "" {
		h.writeJSON(w, http.StatusOK, nonNil(h.Catalog.OnDate(d)))
		return
	}
	h.writeJSON(w, http.StatusOK, h.Catalog.Events())
}

type impactBody struct {
	Date     string             `json:"date"`
	Label    string             `json:"label"`
	Price    price.Quote        `json:"price"`
	Stats    impact.Stats       `json:"stats"`
	Zones    []impact.ZoneSurge `json:"zone_load"`
	Clusters []model.Cluster    `json:"clusters"`
}

func (h *handler) impact(w http.ResponseWriter, r *http.Request) {
	d := r.URL.Query().Get("date")
	if d == "" {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "date is required"})
		return
	}
	evs := h.Catalog.OnDate(d)
	if len(evs) == 0 {
		h.writeJSON(w, http.StatusNotFound, errorBody{Error: dispatch.ErrUnknownSelection.Error()})
		return
	}
	q := h.Quoter.Current()
	st := impact.Aggregate(evs, q.Price)
	h.writeJSON(w, http.StatusOK, impactBody{
		Date:     d,
		Label:    dispatch.DateLabel(d),
		Price:    q,
		Stats:    st,
		Zones:    impact.ZoneLoad(evs),
		Clusters: nonNil(model.ClustersInZones(st.Zones)),
	})
}

func (h *handler) price(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.Quoter.Current())
}

type clusterBody struct {
	model.Cluster
	RadiusMeters int `json:"radius_m"`
}

func (h *handler) clusters(w http.ResponseWriter, _ *http.Request) {
	cs := model.Clusters()
	out := make([]clusterBody, len(cs))
	for i, c := range cs {
		out[i] = clusterBody{Cluster: c, RadiusMeters: c.RadiusMeters()}
	}
	h.writeJSON(w, http.StatusOK, out)
}

type ledgerBody struct {
	Entries    []ledger.Entry         `json:"entries"`
	Totals     ledger.Totals          `json:"totals"`
	Seasons    []ledger.SeasonTotal   `json:"seasons"`
	Categories []ledger.CategoryTotal `json:"categories"`
}

func (h *handler) ledger(w http.ResponseWriter, _ *http.Request) {
	entries := nonNil(h.History.Entries())
	h.writeJSON(w, http.StatusOK, ledgerBody{
		Entries:    entries,
		Totals:     ledger.ComputeTotals(entries),
		Seasons:    ledger.SeasonTotals(entries),
		Categories: ledger.CategoryTotals(entries, h.Catalog),
	})
}

func (h *handler) exportLedger(w http.ResponseWriter, r *http.Request) {
	entries := nonNil(h.History.Entries())
	var err error
	switch r.URL.Query().Get("format") {
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="dispatches.csv"`)
		err = export.WriteCSV(w, entries)
	case "json":
		w.Header().Set("Content-Type", "application/json")
		err = export.WriteJSON(w, entries)
	default:
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "format must be csv or json"})
		return
	}
	if err != nil {
		h.Logger.Errorf("export ledger: %v", err)
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
