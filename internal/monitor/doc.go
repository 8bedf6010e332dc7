// Package monitor polls a provider filesystem and turns file changes into
// cache invalidations. Every pass walks the tree, diffs modification time and
// size against the previous snapshot, and notifies the cache registry: a
// changed content file refreshes its cached entry, while added or removed
// files flush the logical path they map to.
package monitor
