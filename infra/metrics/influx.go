package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/gridpulse/core/metrics"
	"github.com/kilianp07/gridpulse/infra/logger"
)

// InfluxConfig locates the InfluxDB bucket.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes dispatch records and session samples to InfluxDB using
// the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordDispatch writes one dispatch_command point.
func (s *InfluxSink) RecordDispatch(rec coremetrics.DispatchRecord) error {
	p := write.NewPointWithMeasurement("dispatch_command").
		AddTag("dispatch_id", rec.DispatchID).
		AddTag("date", rec.DateKey).
		AddTag("accepted", strconv.FormatBool(rec.Accepted)).
		AddField("batteries", rec.Batteries).
		AddField("zones", strings.Join(rec.Zones, ",")).
		AddField("spread_usd", round3(rec.Spread)).
		AddField("capture_usd", round3(rec.TotalCapture)).
		AddField("demand_mw", round3(rec.DemandMW)).
		AddField("latency_ms", round3(rec.Latency.Seconds()*1000)).
		SetTime(rec.Time)
	return s.write(p)
}

// RecordPrice writes a market_price point.
func (s *InfluxSink) RecordPrice(ps coremetrics.PriceSample) error {
	p := write.NewPointWithMeasurement("market_price").
		AddTag("simulated", strconv.FormatBool(ps.Simulated)).
		AddTag("tier", ps.Tier).
		AddField("usd_mwh", round3(ps.Price)).
		SetTime(ps.Time)
	return s.write(p)
}

// RecordBrief writes a brief_generated point.
func (s *InfluxSink) RecordBrief(rec coremetrics.BriefRecord) error {
	p := write.NewPointWithMeasurement("brief_generated").
		AddTag("source", rec.Source).
		AddTag("success", strconv.FormatBool(rec.Success)).
		AddField("latency_ms", round3(rec.Latency.Seconds()*1000)).
		SetTime(rec.Time)
	return s.write(p)
}

// RecordClusterActivation writes a cluster_activated point.
func (s *InfluxSink) RecordClusterActivation(ev coremetrics.ClusterActivation) error {
	p := write.NewPointWithMeasurement("cluster_activated").
		AddTag("dispatch_id", ev.DispatchID).
		AddTag("cluster_id", ev.ClusterID).
		AddTag("zone", ev.Zone).
		AddField("units", ev.Units).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordAccrual writes a revenue_accrual point.
func (s *InfluxSink) RecordAccrual(as coremetrics.AccrualSample) error {
	p := write.NewPointWithMeasurement("revenue_accrual").
		AddTag("dispatch_id", as.DispatchID).
		AddField("increment_usd", round3(as.Increment)).
		AddField("total_usd", round3(as.Total)).
		SetTime(as.Time)
	return s.write(p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
