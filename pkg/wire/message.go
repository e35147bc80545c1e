package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// CBOR map keys for message encoding.
const (
	KeyControlType   = 0
	KeyMessageID     = 1
	KeyMethodOrEvent = 2 // Method (request), Status (response), Event (notification)
	KeyTarget        = 3
	KeyPayload       = 4
)

// NotificationMessageID is reserved to mark notification messages.
const NotificationMessageID uint32 = 0

// NoTarget is used by requests and notifications that address the service
// itself rather than a device, session or stream handle.
const NoTarget uint32 = 0

// Request is sent from the core to the service.
//
// CBOR encoding:
//
//	{
//	  1: messageId,  // uint32, never 0
//	  2: method,     // uint8
//	  3: target,     // uint32 handle (0 = service)
//	  4: payload     // method-specific CBOR
//	}
type Request struct {
	MessageID uint32          `cbor:"1,keyasint"`
	Method    Method          `cbor:"2,keyasint"`
	Target    uint32          `cbor:"3,keyasint,omitempty"`
	Payload   cbor.RawMessage `cbor:"4,keyasint,omitempty"`
}

// Validate checks if the request is valid.
func (r *Request) Validate() error {
	if r.MessageID == NotificationMessageID {
		return fmt.Errorf("messageId 0 is reserved for notifications")
	}
	if !r.Method.IsValid() {
		return fmt.Errorf("invalid method: %d", r.Method)
	}
	return nil
}

// Response is sent from the service to the core.
//
// CBOR encoding:
//
//	{
//	  1: messageId,  // uint32: matches request
//	  2: status,     // uint8: 0=success, or error code
//	  3: payload     // method-specific result, or ErrorPayload on failure
//	}
type Response struct {
	MessageID uint32          `cbor:"1,keyasint"`
	Status    Status          `cbor:"2,keyasint"`
	Payload   cbor.RawMessage `cbor:"3,keyasint,omitempty"`
}

// IsSuccess returns true if the response indicates success.
func (r *Response) IsSuccess() bool {
	return r.Status.IsSuccess()
}

// ErrorMessage returns the message carried by a failed response, if any.
func (r *Response) ErrorMessage() string {
	if r.IsSuccess() || len(r.Payload) == 0 {
		return ""
	}
	var ep ErrorPayload
	if err := Unmarshal(r.Payload, &ep); err != nil {
		return ""
	}
	return ep.Message
}

// Notification is an asynchronous event pushed by the service.
//
// CBOR encoding:
//
//	{
//	  1: 0,        // messageId 0 = notification
//	  2: event,    // uint8
//	  3: target,   // uint32 device or stream handle
//	  4: payload   // event-specific CBOR
//	}
type Notification struct {
	Event   Event
	Target  uint32
	Payload cbor.RawMessage
}

// ErrorPayload carries a human-readable reason in a failed response.
type ErrorPayload struct {
	Message string `cbor:"1,keyasint,omitempty"`
}

// ControlMessage is a transport-level control message. It uses key 0 so it
// can never be mistaken for a request, response or notification.
type ControlMessage struct {
	Type     ControlMessageType `cbor:"0,keyasint"`
	Sequence uint32             `cbor:"5,keyasint,omitempty"`
}

// ControlMessageType represents the type of control message.
type ControlMessageType uint8

const (
	// ControlPing is sent to check connection liveness.
	ControlPing ControlMessageType = 1

	// ControlPong is the response to a ping.
	ControlPong ControlMessageType = 2

	// ControlClose initiates graceful connection close.
	ControlClose ControlMessageType = 3
)

// String returns the control message type name.
func (t ControlMessageType) String() string {
	switch t {
	case ControlPing:
		return "ping"
	case ControlPong:
		return "pong"
	case ControlClose:
		return "close"
	default:
		return "unknown"
	}
}
