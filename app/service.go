package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/gridpulse/api/session"
	"github.com/kilianp07/gridpulse/api/stream"
	"github.com/kilianp07/gridpulse/config"
	"github.com/kilianp07/gridpulse/core/dispatch"
	"github.com/kilianp07/gridpulse/core/ingest"
	"github.com/kilianp07/gridpulse/core/ledger"
	coremetrics "github.com/kilianp07/gridpulse/core/metrics"
	"github.com/kilianp07/gridpulse/core/model"
	coremon "github.com/kilianp07/gridpulse/core/monitoring"
	"github.com/kilianp07/gridpulse/core/price"
	"github.com/kilianp07/gridpulse/core/scheduler"
	"github.com/kilianp07/gridpulse/infra/llm"
	"github.com/kilianp07/gridpulse/infra/logger"
	"github.com/kilianp07/gridpulse/infra/metrics"
	"github.com/kilianp07/gridpulse/infra/monitoring"
	"github.com/kilianp07/gridpulse/infra/mqtt"
	"github.com/kilianp07/gridpulse/internal/eventbus"
)

const (
	localBriefDelay   = 800 * time.Millisecond
	localConfirmDelay = 900 * time.Millisecond
)

// Service wires the catalog, price process, orchestrator and transports.
type Service struct {
	Catalog      *model.Catalog
	Report       ingest.Report
	Price        *price.Process
	Ledger       *ledger.Ledger
	Orchestrator *dispatch.Orchestrator
	Bus          *eventbus.Bus

	cfg   *config.Config
	sink  coremetrics.MetricsSink
	mqtt  *mqtt.PahoClient
	clock scheduler.Clock
	log   logger.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces the real clock for the price process, the orchestrator
// and the local strategies.
func WithClock(c scheduler.Clock) Option { return func(s *Service) { s.clock = c } }

// New creates a Service from the configuration. The MQTT broker is dialled
// only when configured.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	s := &Service{cfg: cfg, log: logger.New("service"), clock: scheduler.RealClock{}}
	for _, opt := range opts {
		opt(s)
	}

	mon, err := monitoring.NewSentryMonitor(cfg.Monitoring)
	if err != nil {
		return nil, err
	}
	coremon.Init(mon)

	catalog, rep, err := LoadCatalog(cfg.Data, logger.New("ingest"))
	if err != nil {
		return nil, err
	}
	if catalog.Len() == 0 {
		return nil, fmt.Errorf("no events after normalization (%d rows, %d dropped)", rep.Rows, rep.DroppedTotal())
	}
	s.Catalog, s.Report = catalog, rep
	s.log.Infow("catalog loaded", map[string]any{
		"events": catalog.Len(), "dates": len(catalog.Dates()), "dropped": rep.DroppedTotal(),
	})

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	s.sink = sink

	s.Bus = eventbus.NewWithBuffer(256)
	s.Price = price.NewProcess(cfg.Price,
		price.WithClock(s.clock),
		price.WithBus(s.Bus),
		price.WithLogger(logger.New("price")),
	)
	s.Ledger = ledger.NewWithClock(s.clock.Now)

	briefer := llm.SelectBriefer(cfg.Brief, dispatch.LocalBriefer{Delay: localBriefDelay, Clock: s.clock}, logger.New("brief"))
	confirmer := llm.SelectConfirmer(cfg.Confirm, dispatch.LocalConfirmer{Delay: localConfirmDelay, Clock: s.clock}, logger.New("confirm"))
	s.Orchestrator, err = dispatch.New(cfg.Dispatch, catalog, s.Price,
		dispatch.WithClock(s.clock),
		dispatch.WithBus(s.Bus),
		dispatch.WithSink(sink),
		dispatch.WithLogger(logger.New("dispatch")),
		dispatch.WithLedger(s.Ledger),
		dispatch.WithBriefGenerator(briefer),
		dispatch.WithConfirmer(confirmer),
	)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	s.log.Infof("brief strategy %s, confirm strategy %s", briefer.Name(), confirmer.Name())

	if cfg.MQTT.Enabled() {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			s.Orchestrator.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		s.mqtt = client
	}
	return s, nil
}

// Handler serves the session API, the live stream and a health probe.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	api := session.NewHandler(session.Deps{
		Session: s.Orchestrator,
		Catalog: s.Catalog,
		History: s.Ledger,
		Quoter:  s.Price,
		Logger:  logger.New("api"),
	}, s.cfg.API.Token)
	mux.Handle("/api/", api)
	hub := stream.NewHub(s.Bus, func() any { return s.Orchestrator.Snapshot() }, s.cfg.API.AllowedOrigins, logger.New("stream"))
	mux.Handle("/api/stream", session.RequireToken(s.cfg.API.Token, hub))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Start launches the background workers: the price probe and ticker, the
// metrics collector and the MQTT bridge. They stop when ctx ends.
func (s *Service) Start(ctx context.Context, g *errgroup.Group) {
	collected := metrics.StartEventCollector(ctx, s.Bus, s.sink)
	g.Go(func() error {
		defer coremon.Recover()
		<-collected
		return nil
	})
	if s.mqtt != nil {
		bridged := mqtt.StartBridge(ctx, s.Bus, s.mqtt, s.mqtt.Topics())
		g.Go(func() error {
			defer coremon.Recover()
			<-bridged
			return nil
		})
	}
	g.Go(func() error {
		defer coremon.Recover()
		if _, err := s.Price.Probe(ctx); err != nil {
			s.log.Debugf("probe: %v", err)
		}
		return s.Price.Run(ctx)
	})
}

// Run serves the API and the workers until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	s.Start(ctx, g)
	g.Go(func() error {
		s.log.Infof("API listening on %s", s.cfg.API.Addr)
		return metrics.Serve(ctx, &http.Server{Addr: s.cfg.API.Addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second})
	})
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		g.Go(func() error { return metrics.StartPromServer(ctx, addr) })
	}
	err := g.Wait()
	coremon.CaptureException(err, map[string]string{"stage": "run"})
	return err
}

// Close stops pending timers, disconnects from the broker and closes the
// bus and the sink.
func (s *Service) Close() error {
	s.Orchestrator.Close()
	if s.mqtt != nil {
		s.mqtt.Disconnect()
	}
	s.Bus.Close()
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	coremon.Flush(2 * time.Second)
	return nil
}
