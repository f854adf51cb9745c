package e2e

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxClient is a small read-side helper around the official InfluxDB v2
// client used by the E2E tests to check what the sink wrote.
type InfluxClient struct {
	org    string
	bucket string
	client influxdb2.Client
	query  api.QueryAPI
}

// NewInfluxClient creates a new client for the given parameters. It assumes
// the server is already running and reachable.
func NewInfluxClient(url, org, bucket, token string) *InfluxClient {
	c := influxdb2.NewClient(url, token)
	return &InfluxClient{
		org:    org,
		bucket: bucket,
		client: c,
		query:  c.QueryAPI(org),
	}
}

// Query runs a Flux query and returns the raw result iterator. The caller is
// responsible for iterating and closing it.
func (c *InfluxClient) Query(ctx context.Context, flux string) (*api.QueryTableResult, error) {
	return c.query.Query(ctx, flux)
}

// CountPoints returns how many points of measurement were written in the
// last hour, optionally restricted to one tag value.
func (c *InfluxClient) CountPoints(ctx context.Context, measurement, tag, value string) (int, error) {
	flux := fmt.Sprintf(`from(bucket:%q) |> range(start:-1h) |> filter(fn: (r) => r._measurement == %q)`, c.bucket, measurement)
	if tag != "" {
		flux += fmt.Sprintf(` |> filter(fn: (r) => r[%q] == %q)`, tag, value)
	}
	// One row per field; count distinct timestamps to get points.
	res, err := c.Query(ctx, flux)
	if err != nil {
		return 0, err
	}
	defer res.Close()
	seen := map[int64]struct{}{}
	for res.Next() {
		seen[res.Record().Time().UnixNano()] = struct{}{}
	}
	if err := res.Err(); err != nil {
		return 0, err
	}
	return len(seen), nil
}

// Ready reports whether the server health check passes.
func (c *InfluxClient) Ready(ctx context.Context) bool {
	h, err := c.client.Health(ctx)
	return err == nil && h.Status == "pass"
}

// Close releases the underlying client resources.
func (c *InfluxClient) Close() { c.client.Close() }
