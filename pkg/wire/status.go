package wire

// Status represents a response status code.
type Status uint8

const (
	// StatusSuccess indicates the request completed.
	StatusSuccess Status = 0

	// StatusInvalidArgument indicates a malformed or out-of-range argument.
	StatusInvalidArgument Status = 1

	// StatusDeviceBusy indicates the device is held by another client.
	StatusDeviceBusy Status = 2

	// StatusDeviceClosed indicates the device handle is not open.
	StatusDeviceClosed Status = 3

	// StatusDeviceDisconnected indicates the device was unplugged.
	StatusDeviceDisconnected Status = 4

	// StatusCaptureLimitExceeded indicates too many in-flight captures or streams.
	StatusCaptureLimitExceeded Status = 5

	// StatusUnsupported indicates the mode, format or size is not supported.
	StatusUnsupported Status = 6

	// StatusInvalidState indicates the target cannot accept the request now.
	StatusInvalidState Status = 7

	// StatusNotFound indicates an unknown device ID or handle.
	StatusNotFound Status = 8

	// StatusServiceFatal indicates an unrecoverable service failure.
	StatusServiceFatal Status = 9

	// StatusTimeout indicates no response arrived in time.
	StatusTimeout Status = 10
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusInvalidArgument:
		return "INVALID_ARGUMENT"
	case StatusDeviceBusy:
		return "DEVICE_BUSY"
	case StatusDeviceClosed:
		return "DEVICE_CLOSED"
	case StatusDeviceDisconnected:
		return "DEVICE_DISCONNECTED"
	case StatusCaptureLimitExceeded:
		return "CAPTURE_LIMIT_EXCEEDED"
	case StatusUnsupported:
		return "UNSUPPORTED"
	case StatusInvalidState:
		return "INVALID_STATE"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusServiceFatal:
		return "SERVICE_FATAL"
	case StatusTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// IsSuccess returns true if the status indicates success.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}

// IsError returns true if the status indicates an error.
func (s Status) IsError() bool {
	return s != StatusSuccess
}
