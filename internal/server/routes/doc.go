// Package routes registers the /-/ diagnostics endpoints on top of the server
// application: providers, content formats, cache statistics, manual cache
// invalidation and Prometheus metrics.
package routes
