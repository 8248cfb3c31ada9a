// Package mapping resolves dot-delimited event paths to trigger codes.
//
// A mapping document is a tree whose internal nodes are named groups and
// whose leaves are integer codes. The same document may be authored flat
// ("scenes.intro.start": 11) or nested ("scenes": {"intro": {"start": 11}});
// resolution checks the literal flat key first and falls back to a
// hierarchical walk, so callers never need to know which shape is loaded.
//
// Documents loaded from disk are validated against a CUE schema before being
// accepted: every leaf must be an integer. Documents built in-process via
// FromMap skip validation, so resolution still guards against non-numeric
// leaves.
package mapping
