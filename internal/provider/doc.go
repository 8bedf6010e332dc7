// Package provider mounts one filesystem directory under a logical root. An
// active provider owns a ContentCache registered under its name, resolves
// resources through the content and file mappers, and optionally runs a
// polling monitor that keeps the cache coherent with the files on disk.
package provider
