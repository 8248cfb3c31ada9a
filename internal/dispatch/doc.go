// Package dispatch converts trigger codes into HTTP requests against a
// recording endpoint.
//
// The engine supports two transmission paths:
//
//   - Standard: marshal a JSON body, POST, await the response. The outcome
//     carries the decoded response payload.
//   - Low-latency: reuse a per-engine request buffer across calls and build
//     the body by appending the code to a fixed template, avoiding per-call
//     allocation. With SkipResponse enabled the call returns a pending
//     outcome before the network round trip settles; the request still runs
//     to completion but its result is never observed by the caller.
//
// # Single-In-Flight Precondition
//
// The awaited low-latency path hands a shared request buffer to the
// transport. Two overlapping awaited sends on the same Engine race on that
// buffer: the second send's body mutation can be observed by the first
// send's in-flight read. This is a deliberate trade for minimum latency.
// Callers must await each such send before issuing the next, or use one
// Engine per concurrent caller.
//
// Skip-response sends are exempt: their settle moment is unobservable to the
// caller, so each request captures its own copy of the body at issue time
// and back-to-back sends never corrupt an in-flight request.
//
// Configuration is mutable at any time; changes take effect on the next
// dispatch, never retroactively. No internal locking is performed; concurrent
// configuration writes during in-flight dispatches race and the last write
// wins for subsequent calls.
package dispatch
