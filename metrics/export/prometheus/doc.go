// Package prometheus provides Prometheus collectors for goRedact metrics.
//
// [NewPrometheusExporter] accepts a [goRedact.Engine] and exposes an [http.Handler]
// that renders all goRedact counters and histograms in Prometheus text exposition format.
// Counter names are prefixed goredact_*_total; the single histogram is
// goredact_render_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
