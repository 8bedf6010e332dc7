// Package server turns HTTP paths into provider resources. NewApp builds the
// Fiber application: every request gets an id, paths are matched against the
// ProviderRegistry by longest root prefix, and the matched provider's
// resource is rendered as JSON by a ResourceHandler. Diagnostics endpoints
// live under /-/ and are registered by the routes package so that they can
// depend on the cache registry and metrics without import cycles.
package server
