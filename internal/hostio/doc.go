// Package hostio intercepts a host's console surface and broadcasts what it
// shows to passive subscribers.
//
// An [Interceptor] is a decorator over a [Surface]. Once attached to a [Host]
// it forwards every call to the real surface unchanged, and additionally:
//
//   - reconstructs complete lines from fragment writes (Write, WriteColor)
//     and dispatches them as Output when a line write arrives
//   - splits category writes (error, warning, verbose, debug) into lines and
//     dispatches each one in order
//   - offers the results of interactive reads and progress updates to
//     subscribers implementing [InteractiveSubscriber]
//
// # Subscribers
//
// Subscribers are held through a [Registry] of weak references: registering a
// subscriber never keeps it alive. When the last strong reference is dropped
// and the collector runs, the subscriber stops receiving events and its entry
// is pruned on the next iteration. Callers that want a subscriber to live for
// the whole run must keep a reference to it.
//
// A failing subscriber never breaks the console. Errors returned by handlers
// and panics raised in them are recovered, logged at WARN, and passed to the
// optional fault handler. Delivery continues with the next subscriber.
//
// # Pausing
//
// [Interceptor.SetPaused] turns the broadcaster into a transparent
// pass-through: no line buffering takes place and no subscriber runs.
// [Interceptor.Suspend] pauses for a scope without touching the SetPaused
// flag, so a pause requested while the scope is open outlives it:
//
//	defer ic.Suspend()()
//	ic.WriteWarningLine("log file unavailable")
//
// Anything that reports back to the console from inside a subscriber handler
// must do so under Suspend. Dispatch holds the interceptor lock, so an
// unsuspended write from a handler deadlocks.
//
// # Concurrency
//
// All methods are safe for concurrent use. Buffering and dispatch are
// serialized, so subscribers see events in write order. Interactive
// operations delegate to the real surface without holding the lock.
package hostio
