package simulator

import (
	"context"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/camkit-project/camkit-go/pkg/metadata"
	"github.com/camkit-project/camkit-go/pkg/remote"
	"github.com/camkit-project/camkit-go/pkg/wire"
)

// Stream is a simulated output stream.
type Stream struct {
	svc    *Service
	handle uint32
	spec   remote.StreamSpec
	cb     remote.StreamCallbacks

	mu       sync.Mutex
	session  *Session
	input    *Device
	released bool

	// object types reported by a metadata stream; nil reports every
	// type the camera detects
	objectTypes []remote.MetadataObjectType

	stop   chan struct{}
	done   chan struct{}
	frames atomic.Uint32
}

var _ remote.Stream = (*Stream)(nil)

// Handle returns the service handle of the stream.
func (s *Stream) Handle() uint32 { return s.handle }

// Kind returns the stream kind.
func (s *Stream) Kind() remote.StreamKind { return s.spec.Kind }

// Spec returns the configuration the stream was created with.
func (s *Stream) Spec() remote.StreamSpec { return s.spec }

func (s *Stream) boundSession() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *Stream) isReleased() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

func (s *Stream) bind(sess *Session, dev *Device) {
	s.mu.Lock()
	s.session = sess
	s.input = dev
	s.mu.Unlock()
}

func (s *Stream) unbind() {
	s.halt()
	s.mu.Lock()
	s.session = nil
	s.input = nil
	s.mu.Unlock()
}

// binding returns the session and device of a usable stream.
func (s *Stream) binding(op string) (*Session, *Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil, nil, remote.StatusError(op, wire.StatusInvalidState, "stream %d released", s.handle)
	}
	if s.session == nil {
		return nil, nil, remote.StatusError(op, wire.StatusInvalidState, "stream %d is not in a session", s.handle)
	}
	return s.session, s.input, nil
}

// Start starts the frame ticker. The owning session must be running.
func (s *Stream) Start(ctx context.Context) error {
	const op = "StreamStart"
	if !s.spec.Kind.IsRepeating() {
		return remote.StatusError(op, wire.StatusInvalidArgument, "%s streams capture on demand", s.spec.Kind)
	}
	sess, dev, err := s.binding(op)
	if err != nil {
		return err
	}
	if !sess.running() {
		return remote.StatusError(op, wire.StatusInvalidState, "session is not running")
	}
	if err := dev.usable(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return nil
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.frames.Store(0)
	go s.run(dev, s.stop, s.done)
	return nil
}

// Stop stops the frame ticker and reports the number of frames delivered.
func (s *Stream) Stop(ctx context.Context) error {
	if s.isReleased() {
		return remote.StatusError("StreamStop", wire.StatusInvalidState, "stream %d released", s.handle)
	}
	s.halt()
	return nil
}

func (s *Stream) halt() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	n := s.frames.Load()
	s.svc.emit(func() { s.cb.OnFrameEnded(n) })
}

func (s *Stream) fail(code int32) {
	s.mu.Lock()
	running := s.stop != nil
	s.mu.Unlock()
	if !running {
		return
	}
	s.svc.emit(func() { s.cb.OnStreamError(code) })
	s.halt()
}

func (s *Stream) run(dev *Device, stop, done chan struct{}) {
	defer close(done)

	t := time.NewTicker(s.svc.cfg.FrameInterval)
	defer t.Stop()

	for {
		select {
		case <-stop:
			return
		case <-t.C:
		}
		n := s.frames.Add(1)
		ts := time.Now().UnixNano()
		if n == 1 {
			s.svc.emit(func() { s.cb.OnFrameStarted(ts) })
		}
		if s.spec.Kind == remote.StreamMetadata {
			if objs := s.detect(dev, n, ts); len(objs) > 0 {
				s.svc.emit(func() { s.cb.OnMetadataObjects(objs) })
			}
		}
	}
}

// detect produces the scene objects of frame n. The simulated scene holds
// one face drifting left and right.
func (s *Stream) detect(dev *Device, n uint32, ts int64) []remote.MetadataObject {
	if !dev.cam.profile.FaceDetection {
		return nil
	}
	s.mu.Lock()
	wanted := s.objectTypes == nil || slices.Contains(s.objectTypes, remote.MetadataObjectFace)
	s.mu.Unlock()
	if !wanted {
		return nil
	}

	x := 0.4 + 0.2*math.Sin(float64(n)/30)
	return []remote.MetadataObject{{
		Type:      remote.MetadataObjectFace,
		Timestamp: ts,
		Bounds:    remote.Rect{X: x, Y: 0.3, Width: 0.2, Height: 0.25},
	}}
}

// Capture takes one photo. Started, shutter and ended are reported in
// that order.
func (s *Stream) Capture(ctx context.Context, captureID uint32, settings *metadata.Store) error {
	const op = "StreamCapture"
	if s.spec.Kind != remote.StreamPhoto {
		return remote.StatusError(op, wire.StatusInvalidArgument, "%s streams do not capture", s.spec.Kind)
	}
	sess, dev, err := s.binding(op)
	if err != nil {
		return err
	}
	if !sess.running() {
		return remote.StatusError(op, wire.StatusInvalidState, "session is not running")
	}
	if err := dev.usable(); err != nil {
		return err
	}
	if err := checkCaptureSettings(op, settings); err != nil {
		return err
	}

	s.svc.emit(func() { s.cb.OnCaptureStarted(captureID) })
	time.AfterFunc(s.svc.cfg.FrameInterval, func() {
		ts := time.Now().UnixNano()
		s.svc.emit(func() {
			s.cb.OnFrameShutter(captureID, ts)
			s.cb.OnCaptureEnded(captureID, 1)
		})
	})
	return nil
}

func checkCaptureSettings(op string, settings *metadata.Store) error {
	if settings == nil {
		return nil
	}
	if q, ok := settings.Byte(metadata.TagJPEGQuality); ok && q > 2 {
		return remote.StatusError(op, wire.StatusInvalidArgument, "jpeg quality %d", q)
	}
	if r, ok := settings.Int32(metadata.TagJPEGOrientation); ok && (r < 0 || r >= 360 || r%90 != 0) {
		return remote.StatusError(op, wire.StatusInvalidArgument, "jpeg orientation %d", r)
	}
	if loc, ok := settings.DoubleList(metadata.TagJPEGGPSLocation); ok && len(loc) != 3 {
		return remote.StatusError(op, wire.StatusInvalidArgument, "gps location needs [lat,lon,alt]")
	}
	for _, tag := range settings.Tags() {
		if tag&0xFFFF0000 != metadata.SectionJPEG {
			return remote.StatusError(op, wire.StatusInvalidArgument, "%s is not a capture setting", metadata.TagName(tag))
		}
	}
	return nil
}

// UpdateSetting applies stream settings. Metadata streams accept the
// object type filter.
func (s *Stream) UpdateSetting(ctx context.Context, settings *metadata.Store) error {
	const op = "StreamUpdateSetting"

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return remote.StatusError(op, wire.StatusInvalidState, "stream %d released", s.handle)
	}

	for _, it := range settings.Items() {
		if it.Tag != metadata.TagStreamMetadataObjectTypes || s.spec.Kind != remote.StreamMetadata {
			return remote.StatusError(op, wire.StatusInvalidArgument, "%s not accepted by %s streams",
				metadata.TagName(it.Tag), s.spec.Kind)
		}
		raw, ok := it.Bytes()
		if !ok {
			return remote.StatusError(op, wire.StatusInvalidArgument, "object types must be bytes")
		}
		types := make([]remote.MetadataObjectType, 0, len(raw))
		for _, b := range raw {
			t := remote.MetadataObjectType(b)
			if t != remote.MetadataObjectFace || (s.input != nil && !s.input.cam.profile.FaceDetection) {
				return remote.StatusError(op, wire.StatusUnsupported, "object type %s", t)
			}
			types = append(types, t)
		}
		s.objectTypes = types
	}
	return nil
}

// Release stops the stream and removes it from its session. Releasing
// twice is not an error.
func (s *Stream) Release(ctx context.Context) error {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return nil
	}
	s.released = true
	sess := s.session
	s.mu.Unlock()

	s.halt()
	if sess != nil {
		sess.detach(s)
	}
	s.mu.Lock()
	s.session = nil
	s.input = nil
	s.mu.Unlock()
	return nil
}
