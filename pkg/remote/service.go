package remote

import (
	"context"
	"fmt"

	"github.com/camkit-project/camkit-go/pkg/metadata"
)

// StreamKind identifies the type of a capture stream.
type StreamKind uint8

const (
	StreamPreview StreamKind = iota
	StreamPhoto
	StreamVideo
	StreamMetadata
)

// String returns the stream kind name.
func (k StreamKind) String() string {
	switch k {
	case StreamPreview:
		return "PREVIEW"
	case StreamPhoto:
		return "PHOTO"
	case StreamVideo:
		return "VIDEO"
	case StreamMetadata:
		return "METADATA"
	default:
		return fmt.Sprintf("STREAM_KIND(%d)", uint8(k))
	}
}

// IsValid reports whether k is a known stream kind.
func (k StreamKind) IsValid() bool {
	return k <= StreamMetadata
}

// IsRepeating reports whether streams of this kind run continuously once
// started. Photo streams only produce frames on Capture.
func (k StreamKind) IsRepeating() bool {
	return k != StreamPhoto
}

// Format is a stream pixel format.
type Format uint32

const (
	FormatUnknown  Format = 0
	FormatYUV420   Format = 1
	FormatRGBA8888 Format = 2
	FormatJPEG     Format = 3
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatYUV420:
		return "YUV420"
	case FormatRGBA8888:
		return "RGBA8888"
	case FormatJPEG:
		return "JPEG"
	case FormatUnknown:
		return "UNKNOWN"
	default:
		return fmt.Sprintf("FORMAT(%d)", uint32(f))
	}
}

// StreamSpec describes a stream to create.
type StreamSpec struct {
	Kind   StreamKind
	Format Format
	Width  uint32
	Height uint32

	// Sink identifies the consumer surface or buffer queue the service
	// delivers frames to. The core treats it as opaque.
	Sink string
}

// DeviceInfo describes one enumerated camera.
type DeviceInfo struct {
	ID           string
	Capabilities *metadata.Store
}

// MetadataObjectType identifies a kind of detected scene object.
type MetadataObjectType uint8

const (
	MetadataObjectFace MetadataObjectType = iota
	MetadataObjectHumanBody
	MetadataObjectQRCode
)

// String returns the object type name.
func (t MetadataObjectType) String() string {
	switch t {
	case MetadataObjectFace:
		return "FACE"
	case MetadataObjectHumanBody:
		return "HUMAN_BODY"
	case MetadataObjectQRCode:
		return "QR_CODE"
	default:
		return fmt.Sprintf("OBJECT(%d)", uint8(t))
	}
}

// Rect is a bounding box in normalized [0,1] frame coordinates.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// MetadataObject is one detected scene object.
type MetadataObject struct {
	Type      MetadataObjectType
	Timestamp int64
	Bounds    Rect
}

// AvailabilityChange reports a camera being plugged in or removed.
type AvailabilityChange struct {
	DeviceID  string
	Available bool

	// Capabilities is set when a device becomes available.
	Capabilities *metadata.Store
}

// AvailabilityHandler receives device hot-plug events.
type AvailabilityHandler func(change AvailabilityChange)

// DeviceCallbacks receives asynchronous events for one opened device.
type DeviceCallbacks interface {
	// OnDeviceResult delivers result metadata (focus state, exposure state, ...).
	OnDeviceResult(timestamp int64, result *metadata.Store)

	// OnDeviceError reports a device-level failure.
	OnDeviceError(code int32, message string)
}

// StreamCallbacks receives asynchronous events for one stream.
type StreamCallbacks interface {
	OnFrameStarted(timestamp int64)
	OnFrameEnded(frameCount uint32)
	OnStreamError(code int32)

	OnCaptureStarted(captureID uint32)
	OnCaptureEnded(captureID, frameCount uint32)
	OnFrameShutter(captureID uint32, timestamp int64)
	OnCaptureError(captureID uint32, code int32)

	OnMetadataObjects(objects []MetadataObject)
}

// NopStreamCallbacks implements StreamCallbacks with no-ops. Embed it to
// handle a subset of the events.
type NopStreamCallbacks struct{}

func (NopStreamCallbacks) OnFrameStarted(int64)               {}
func (NopStreamCallbacks) OnFrameEnded(uint32)                {}
func (NopStreamCallbacks) OnStreamError(int32)                {}
func (NopStreamCallbacks) OnCaptureStarted(uint32)            {}
func (NopStreamCallbacks) OnCaptureEnded(uint32, uint32)      {}
func (NopStreamCallbacks) OnFrameShutter(uint32, int64)       {}
func (NopStreamCallbacks) OnCaptureError(uint32, int32)       {}
func (NopStreamCallbacks) OnMetadataObjects([]MetadataObject) {}

// NopDeviceCallbacks implements DeviceCallbacks with no-ops.
type NopDeviceCallbacks struct{}

func (NopDeviceCallbacks) OnDeviceResult(int64, *metadata.Store) {}
func (NopDeviceCallbacks) OnDeviceError(int32, string)           {}

// Service is the remote camera service.
type Service interface {
	// EnumerateDevices lists the cameras currently present.
	EnumerateDevices(ctx context.Context) ([]DeviceInfo, error)

	// OpenDevice acquires a device handle. cb may be nil.
	OpenDevice(ctx context.Context, id string, cb DeviceCallbacks) (Device, error)

	// CreateSession creates a capture session.
	CreateSession(ctx context.Context) (Session, error)

	// CreateStream creates a stream bound to spec.Sink. cb may be nil.
	CreateStream(ctx context.Context, spec StreamSpec, cb StreamCallbacks) (Stream, error)

	// SetAvailabilityHandler installs the hot-plug handler. nil removes it.
	SetAvailabilityHandler(h AvailabilityHandler)
}

// Device is an acquired remote camera.
type Device interface {
	Handle() uint32
	Open(ctx context.Context) error
	Close(ctx context.Context) error

	// UpdateSetting applies settings atomically.
	UpdateSetting(ctx context.Context, settings *metadata.Store) error

	Release(ctx context.Context) error
}

// Session is a remote capture session.
type Session interface {
	Handle() uint32
	BeginConfig(ctx context.Context) error

	// CommitConfig sends the complete configuration in one request.
	CommitConfig(ctx context.Context, input Device, outputs []Stream) error

	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Release(ctx context.Context) error
}

// Stream is a remote per-output data channel.
type Stream interface {
	Handle() uint32
	Kind() StreamKind
	Start(ctx context.Context) error
	Stop(ctx context.Context) error

	// Capture triggers a one-shot capture. A nil or empty settings store
	// leaves every device default in place.
	Capture(ctx context.Context, captureID uint32, settings *metadata.Store) error

	// UpdateSetting applies stream-level settings.
	UpdateSetting(ctx context.Context, settings *metadata.Store) error

	Release(ctx context.Context) error
}
