// Package wire defines the CBOR messages exchanged between the camera core
// and a remote camera service.
//
// Every message is a CBOR map with integer keys, carried in a length-prefixed
// frame (see package transport).
//
// # Message Types
//
//   - Request: core to service (enumerate, open, update settings, session and
//     stream control)
//   - Response: service to core, correlated by message ID
//   - Notification: service to core, asynchronous device and stream events
//   - Control: ping/pong/close, handled by the transport
//
// Camera metadata travels as the binary encoding of package metadata inside a
// CBOR byte string, so capability and control stores are bit-exact on both
// sides.
package wire
