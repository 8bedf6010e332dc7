// Package cache keeps parsed content files in memory, keyed by the logical
// resource path they back. A ContentCache is owned by exactly one provider and
// bounded by an LRU policy; lookups that yield no content are memoized as
// absent entries so sparse trees do not re-trigger file parsing on every
// resolution. The Registry lets the change monitor (or any caller) flush or
// refresh a path across every registered cache, or within one cache chosen by
// id, without holding references to the providers themselves.
package cache
