package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/gridpulse/config"
	"github.com/kilianp07/gridpulse/core/price/feedmock"
)

// fastConfig shortens the rollout so a full session completes in well under
// a second once confirmed.
func fastConfig(t *testing.T, feedURL string) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Price.FeedURL = feedURL
	cfg.Price.Seed = 5
	cfg.Dispatch.ActivationWindow = 30 * time.Millisecond
	cfg.Dispatch.PhaseTwoAt = 40 * time.Millisecond
	cfg.Dispatch.PhaseThreeAt = 50 * time.Millisecond
	cfg.Dispatch.AccrualInterval = 10 * time.Millisecond
	cfg.Dispatch.AccrualWindow = 50 * time.Millisecond
	cfg.Dispatch.Seed = 5
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}
	return cfg
}

func startFeed(t *testing.T, price float64) *httptest.Server {
	t.Helper()
	feed := feedmock.NewWithRegistry(feedmock.Config{Price: price}, nil, prometheus.NewRegistry())
	srv := httptest.NewServer(feed.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(http.MethodPost, url, &buf)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}
