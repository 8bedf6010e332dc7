// Package metrics exposes content cache counters, resource request timings and
// monitor file events to Prometheus.
package metrics
