// Package metrics defines observability hooks for pipeline runs and their
// Prometheus-backed implementation. The NoopRecorder is used when metrics are
// not configured so call sites never need nil checks.
package metrics
