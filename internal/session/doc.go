// Package session composes the dispatch engine, the mapping resolver, and
// the history ledger into one stateful trigger session.
//
// A Manager is an explicit, constructible object: hosts create as many
// independent sessions as they need and tear them down freely in tests.
// There is no package-level singleton.
//
// The manager is a state machine over Uninitialized, Initializing, Ready and
// Failed. Initialize is re-entrant: calling it again re-runs the full
// sequence and may move a Ready session back through Initializing to Failed.
// Event-based and raw sends require Ready and fail with *NotReadyError
// otherwise, without side effects.
package session
