// Package metrics defines the recorder interfaces used to observe a dispatch
// session: prices, brief attempts, confirmations, cluster activations and
// revenue accrual. Concrete sinks (Prometheus, InfluxDB) live in
// infra/metrics and register themselves with the factory; NewMetricsSink
// returns a MultiSink when several sinks are configured.
package metrics
