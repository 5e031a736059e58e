// Package otel exports the engine's in-process counters as OpenTelemetry
// observable instruments.
//
// The exporter registers one Int64ObservableCounter per entry in
// tenauth.MetricNames and a callback that snapshots the engine at collection
// time. Nothing is pushed: the meter's reader decides when values are read.
//
// # What this package must NOT do
//
//   - Mutate engine state.
//   - Block the request path.
package otel
