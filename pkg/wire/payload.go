package wire

// Metadata fields below hold the binary encoding produced by
// metadata.Encode.

// DeviceInfo describes one enumerated camera.
type DeviceInfo struct {
	ID           string `cbor:"1,keyasint"`
	Capabilities []byte `cbor:"2,keyasint"`
}

// EnumerateDevicesResponse is the result of MethodEnumerateDevices.
type EnumerateDevicesResponse struct {
	Devices []DeviceInfo `cbor:"1,keyasint"`
}

// OpenDeviceRequest is the payload of MethodOpenDevice.
type OpenDeviceRequest struct {
	DeviceID string `cbor:"1,keyasint"`
}

// HandleResponse returns a newly created device, session or stream handle.
type HandleResponse struct {
	Handle uint32 `cbor:"1,keyasint"`
}

// MetadataPayload carries an encoded metadata store. Used by
// MethodUpdateSetting and MethodStreamUpdateSetting.
type MetadataPayload struct {
	Metadata []byte `cbor:"1,keyasint,omitempty"`
}

// CommitConfigRequest carries the complete session configuration.
type CommitConfigRequest struct {
	Input   uint32   `cbor:"1,keyasint"`
	Streams []uint32 `cbor:"2,keyasint"`
}

// CreateStreamRequest is the payload of MethodCreateStream.
type CreateStreamRequest struct {
	Kind   uint8  `cbor:"1,keyasint"`
	Format uint32 `cbor:"2,keyasint,omitempty"`
	Width  uint32 `cbor:"3,keyasint,omitempty"`
	Height uint32 `cbor:"4,keyasint,omitempty"`
	Sink   string `cbor:"5,keyasint,omitempty"`
}

// CaptureRequest is the payload of MethodStreamCapture. Settings is empty
// when the device defaults apply.
type CaptureRequest struct {
	CaptureID uint32 `cbor:"1,keyasint"`
	Settings  []byte `cbor:"2,keyasint,omitempty"`
}

// DeviceResultPayload accompanies EventDeviceResult.
type DeviceResultPayload struct {
	Timestamp int64  `cbor:"1,keyasint"`
	Metadata  []byte `cbor:"2,keyasint,omitempty"`
}

// ErrorEventPayload accompanies EventDeviceError and EventStreamError.
type ErrorEventPayload struct {
	Code    int32  `cbor:"1,keyasint"`
	Message string `cbor:"2,keyasint,omitempty"`
}

// FramePayload accompanies EventFrameStarted and EventFrameEnded.
type FramePayload struct {
	Timestamp  int64  `cbor:"1,keyasint,omitempty"`
	FrameCount uint32 `cbor:"2,keyasint,omitempty"`
}

// CapturePayload accompanies the capture events.
type CapturePayload struct {
	CaptureID  uint32 `cbor:"1,keyasint"`
	Timestamp  int64  `cbor:"2,keyasint,omitempty"`
	FrameCount uint32 `cbor:"3,keyasint,omitempty"`
	Code       int32  `cbor:"4,keyasint,omitempty"`
}

// MetadataObject is one detected scene object.
type MetadataObject struct {
	Type      uint8   `cbor:"1,keyasint"`
	Timestamp int64   `cbor:"2,keyasint"`
	X         float64 `cbor:"3,keyasint"`
	Y         float64 `cbor:"4,keyasint"`
	Width     float64 `cbor:"5,keyasint"`
	Height    float64 `cbor:"6,keyasint"`
}

// MetadataObjectsPayload accompanies EventMetadataObjects.
type MetadataObjectsPayload struct {
	Objects []MetadataObject `cbor:"1,keyasint"`
}

// AvailabilityPayload accompanies EventDeviceAvailability.
type AvailabilityPayload struct {
	DeviceID     string `cbor:"1,keyasint"`
	Available    bool   `cbor:"2,keyasint"`
	Capabilities []byte `cbor:"3,keyasint,omitempty"`
}
