// Package dispatch delivers remote callbacks to listeners.
//
// Events arrive on transport goroutines and are posted to a Queue, which
// runs them one at a time, in post order, on a single consumer goroutine.
// Posting never blocks: when the queue is full the event is dropped and
// counted, so a slow listener can never stall the connection that carries
// device results and frame events.
//
// Components that emit events accept a Poster. Queue is the normal
// implementation; Inline runs events synchronously and is used in tests and
// by callers that do their own scheduling.
package dispatch
