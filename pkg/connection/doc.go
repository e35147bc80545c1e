// Package connection provides retry timing for establishing connections to
// a camera service.
//
// Only the initial dial is retried. Once connected, a lost connection is
// surfaced to the caller as a remote failure; in-flight device and session
// state is never replayed automatically.
//
// # Backoff
//
//  1. Initial delay: 200 milliseconds
//  2. Exponential increase (x2)
//  3. Maximum delay: 5 seconds
//
// Jitter spreads out clients started at the same time:
//
//	actual_delay = base_delay + random(0, base_delay * 0.25)
package connection
