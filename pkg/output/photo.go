package output

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/camkit-project/camkit-go/pkg/camerr"
	"github.com/camkit-project/camkit-go/pkg/metadata"
	"github.com/camkit-project/camkit-go/pkg/remote"
)

// Quality is the JPEG encoding quality level.
type Quality uint8

const (
	QualityHigh   Quality = 0
	QualityMedium Quality = 1
	QualityLow    Quality = 2
)

// Rotation is the clockwise image rotation in degrees.
type Rotation int32

const (
	Rotation0   Rotation = 0
	Rotation90  Rotation = 90
	Rotation180 Rotation = 180
	Rotation270 Rotation = 270
)

func (r Rotation) valid() bool {
	switch r {
	case Rotation0, Rotation90, Rotation180, Rotation270:
		return true
	}
	return false
}

// Location is a GPS position embedded in the photo.
type Location struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
}

// PhotoSettings are per-capture overrides. A nil field keeps the device
// default.
type PhotoSettings struct {
	Quality  *Quality
	Rotation *Rotation
	Mirror   *bool
	Location *Location
}

// Metadata returns the capture settings store holding only the fields that
// are set. A nil receiver yields an empty store.
func (s *PhotoSettings) Metadata() (*metadata.Store, error) {
	out := metadata.NewStore(4, 32)
	if s == nil {
		return out, nil
	}
	if s.Quality != nil {
		if *s.Quality > QualityLow {
			return nil, camerr.Unsupported("photo quality", *s.Quality)
		}
		if err := out.Add(metadata.NewByteItem(metadata.TagJPEGQuality, uint8(*s.Quality))); err != nil {
			return nil, err
		}
	}
	if s.Rotation != nil {
		if !s.Rotation.valid() {
			return nil, camerr.Unsupported("photo rotation", *s.Rotation)
		}
		if err := out.Add(metadata.NewInt32Item(metadata.TagJPEGOrientation, int32(*s.Rotation))); err != nil {
			return nil, err
		}
	}
	if s.Mirror != nil {
		var v uint8
		if *s.Mirror {
			v = 1
		}
		if err := out.Add(metadata.NewByteItem(metadata.TagJPEGMirror, v)); err != nil {
			return nil, err
		}
	}
	if s.Location != nil {
		loc := s.Location
		if err := out.Add(metadata.NewDoubleItem(metadata.TagJPEGGPSLocation,
			loc.Latitude, loc.Longitude, loc.Altitude)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// PhotoListener receives capture events. Nil fields are skipped.
type PhotoListener struct {
	OnCaptureStarted func(captureID uint32)
	OnCaptureEnded   func(captureID, frameCount uint32)
	OnFrameShutter   func(captureID uint32, timestamp int64)
	OnCaptureError   func(captureID uint32, code int32)
}

// PhotoOutput takes still captures.
type PhotoOutput struct {
	base

	nextID atomic.Uint32

	listenerMu sync.RWMutex
	listener   PhotoListener
}

var (
	_ Output                 = (*PhotoOutput)(nil)
	_ remote.StreamCallbacks = (*PhotoOutput)(nil)
)

// NewPhoto creates a photo stream for spec on svc.
func NewPhoto(ctx context.Context, svc remote.Service, spec remote.StreamSpec, cfg Config) (*PhotoOutput, error) {
	spec.Kind = remote.StreamPhoto
	o := &PhotoOutput{}
	o.init(o, spec, cfg)
	if err := o.open(ctx, svc, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *PhotoOutput) SetListener(l PhotoListener) {
	o.listenerMu.Lock()
	defer o.listenerMu.Unlock()
	o.listener = l
}

func (o *PhotoOutput) getListener() PhotoListener {
	o.listenerMu.RLock()
	defer o.listenerMu.RUnlock()
	return o.listener
}

// Capture triggers one still capture and returns its ID. IDs increase
// monotonically per output. Only the fields set in settings are sent.
func (o *PhotoOutput) Capture(ctx context.Context, settings *PhotoSettings) (uint32, error) {
	if err := o.requireAttached("Capture"); err != nil {
		return 0, err
	}
	md, err := settings.Metadata()
	if err != nil {
		return 0, err
	}

	id := o.nextID.Add(1)
	if err := o.stream.Capture(ctx, id, md); err != nil {
		return 0, camerr.Remote("StreamCapture", err)
	}
	return id, nil
}

func (o *PhotoOutput) OnCaptureStarted(captureID uint32) {
	if fn := o.getListener().OnCaptureStarted; fn != nil {
		o.post(func() { fn(captureID) })
	}
}

func (o *PhotoOutput) OnCaptureEnded(captureID, frameCount uint32) {
	if fn := o.getListener().OnCaptureEnded; fn != nil {
		o.post(func() { fn(captureID, frameCount) })
	}
}

func (o *PhotoOutput) OnFrameShutter(captureID uint32, timestamp int64) {
	if fn := o.getListener().OnFrameShutter; fn != nil {
		o.post(func() { fn(captureID, timestamp) })
	}
}

func (o *PhotoOutput) OnCaptureError(captureID uint32, code int32) {
	fn := o.getListener().OnCaptureError
	if fn == nil {
		o.cfg.Logger.Warn("capture error without listener", "capture_id", captureID, "code", code)
		return
	}
	o.post(func() { fn(captureID, code) })
}
