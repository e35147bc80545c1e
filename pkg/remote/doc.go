// Package remote defines the boundary between the camera core and the
// out-of-process device/stream service.
//
// The core talks to the service only through the Service, Device, Session
// and Stream interfaces. Every method is a blocking round trip; failures are
// reported as *camerr.RemoteError and are never retried here. Asynchronous
// events flow back through DeviceCallbacks, StreamCallbacks and the
// availability handler, invoked from the transport's receive goroutine.
// Callbacks must return quickly and must not issue requests on that
// goroutine; the core hands them to a dispatch.Queue.
//
// Client implements Service over a camkit connection (length-prefixed CBOR
// frames, see pkg/wire). Server exposes any Service implementation, such as
// pkg/simulator, to remote clients.
package remote
