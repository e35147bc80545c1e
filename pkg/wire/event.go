package wire

// Event identifies an asynchronous notification from the service.
type Event uint8

const (
	// Device events target a device handle.
	EventDeviceResult Event = 1
	EventDeviceError  Event = 2

	// Stream events target a stream handle.
	EventFrameStarted    Event = 3
	EventFrameEnded      Event = 4
	EventStreamError     Event = 5
	EventCaptureStarted  Event = 6
	EventCaptureEnded    Event = 7
	EventFrameShutter    Event = 8
	EventCaptureError    Event = 9
	EventMetadataObjects Event = 10

	// EventDeviceAvailability has no target; the payload names the device.
	EventDeviceAvailability Event = 11
)

// String returns the event name.
func (e Event) String() string {
	switch e {
	case EventDeviceResult:
		return "DeviceResult"
	case EventDeviceError:
		return "DeviceError"
	case EventFrameStarted:
		return "FrameStarted"
	case EventFrameEnded:
		return "FrameEnded"
	case EventStreamError:
		return "StreamError"
	case EventCaptureStarted:
		return "CaptureStarted"
	case EventCaptureEnded:
		return "CaptureEnded"
	case EventFrameShutter:
		return "FrameShutter"
	case EventCaptureError:
		return "CaptureError"
	case EventMetadataObjects:
		return "MetadataObjects"
	case EventDeviceAvailability:
		return "DeviceAvailability"
	default:
		return "Unknown"
	}
}

// IsStreamEvent reports whether the event targets a stream handle.
func (e Event) IsStreamEvent() bool {
	return e >= EventFrameStarted && e <= EventMetadataObjects
}
