package metrics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridpulse/core/factory"
	coremetrics "github.com/kilianp07/gridpulse/core/metrics"
	"github.com/kilianp07/gridpulse/infra/logger"
)

func TestLogSinkWritesDispatch(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSink(logger.NewZerologLoggerWithWriter("metrics", &buf))
	require.NoError(t, s.RecordDispatch(coremetrics.DispatchRecord{
		DispatchID: "GP-2025-0913-417", Accepted: true, Batteries: 544, Latency: 900 * time.Millisecond,
	}))
	require.NoError(t, s.RecordBrief(coremetrics.BriefRecord{Source: "local", Success: true}))
	out := buf.String()
	assert.Contains(t, out, `"dispatch_id":"GP-2025-0913-417"`)
	assert.Contains(t, out, `"latency_ms":900`)
	assert.Contains(t, out, `"source":"local"`)
}

func TestFactoryBuildsLogSink(t *testing.T) {
	s, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "log", Conf: map[string]any{"component": "audit"}}})
	require.NoError(t, err)
	assert.IsType(t, &LogSink{}, s)
}

func TestFactoryRejectsIncompleteInflux(t *testing.T) {
	_, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "influx", Conf: map[string]any{"url": "http://localhost:8086"}}})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "url and bucket are required"), err.Error())
}
