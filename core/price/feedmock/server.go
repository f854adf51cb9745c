// Package feedmock serves a local market price feed in the settlement point
// format probed by the price process. It is meant for development and
// end-to-end tests where the real feed is unreachable.
package feedmock

import (
	"context"
	"encoding/json"
	"math"
	"math/rand"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/gridpulse/core/logger"
)

// Config defines the mock feed behaviour.
type Config struct {
	Address string `json:"address"`
	// Price is served verbatim when positive; otherwise a random walk
	// around 60 is served.
	Price float64 `json:"price"`
	// FailureRate is the probability of answering 503.
	FailureRate float64 `json:"failure_rate"`
	Seed        int64   `json:"seed"`
}

// Server exposes the mock feed over HTTP.
type Server struct {
	cfg    Config
	addr   string
	log    logger.Logger
	srv    *http.Server
	served *prometheus.CounterVec

	mu   sync.Mutex
	rng  *rand.Rand
	walk float64
}

// New creates a mock feed using the default Prometheus registerer.
func New(cfg Config, log logger.Logger) *Server {
	return NewWithRegistry(cfg, log, prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a mock feed and registers its counter on reg. An
// already registered counter of the same name is reused.
func NewWithRegistry(cfg Config, log logger.Logger, reg prometheus.Registerer) *Server {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	log = logger.OrNop(log)
	served := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "price_feed_mock_requests_total",
		Help: "Requests answered by the mock price feed",
	}, []string{"outcome"})
	if err := reg.Register(served); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if exist, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				served = exist
			} else {
				log.Errorf("existing collector for price_feed_mock_requests_total has wrong type %T", are.ExistingCollector)
			}
		}
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Server{
		cfg:    cfg,
		addr:   cfg.Address,
		log:    log,
		served: served,
		rng:    rand.New(rand.NewSource(seed)),
		walk:   60,
	}
}

type settlement struct {
	SettlementPoint struct {
		Price float64 `json:"price"`
	} `json:"settlementPoint"`
}

// Handler returns the HTTP routes of the feed.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("pong")); err != nil {
			s.log.Errorf("write pong: %v", err)
		}
	})
	mux.HandleFunc("/price", s.handlePrice)
	return mux
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	price, fail := s.next()
	if fail {
		s.served.WithLabelValues("failure").Inc()
		http.Error(w, "feed unavailable", http.StatusServiceUnavailable)
		return
	}
	var entry settlement
	entry.SettlementPoint.Price = price
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode([]settlement{entry}); err != nil {
		s.log.Errorf("encode price: %v", err)
		return
	}
	s.served.WithLabelValues("success").Inc()
}

func (s *Server) next() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.FailureRate > 0 && s.rng.Float64() < s.cfg.FailureRate {
		return 0, true
	}
	if s.cfg.Price > 0 {
		return s.cfg.Price, false
	}
	s.walk = math.Max(21, math.Min(300, s.walk+s.rng.Float64()*10-5))
	return math.Round(s.walk*100) / 100, false
}

// Addr returns the listening address once Start has been called.
func (s *Server) Addr() string { return s.addr }

// Start runs the HTTP server until the context is canceled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.addr = ln.Addr().String()
	s.srv = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("shutdown feed mock: %v", err)
		}
		cancel()
	}()
	s.log.Infof("price feed mock listening on %s", s.addr)
	err = s.srv.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
