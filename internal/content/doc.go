// Package content defines the immutable in-memory representation of a parsed
// content file. A content file (e.g. "page.json" next to a "page" folder)
// describes one resource together with its nested child resources; the parser
// package produces Elements and the cache package keeps them keyed by logical
// path. Elements never change after construction, so a cache entry can be
// shared by every reader without copying.
package content
