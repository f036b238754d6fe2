// Package otel bridges adauth's in-process metrics to an OpenTelemetry
// meter using observable instruments. The collector pulls values on its
// own schedule; the core counters are never written to directly.
package otel
