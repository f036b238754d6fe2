// Package internaldefs holds the shared metric name table used by the
// Prometheus and OpenTelemetry exporters. It exists so the two
// exporters expose identical names without importing each other.
package internaldefs
