// Package ignorefs hides paths matching provider ignore globs (editor swap
// files, VCS metadata) from a billy filesystem, so mapping, parsing and the
// change monitor all see the same filtered tree.
package ignorefs
