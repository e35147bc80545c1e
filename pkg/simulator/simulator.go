// Package simulator implements the remote camera service in process.
//
// A Service stands in for the camera hardware and driver stack: it
// enumerates cameras described by Profiles, enforces exclusive device
// access, runs a frame ticker for started repeating streams and reports
// focus, exposure, capture and face-detection events through the remote
// callback interfaces. All callbacks of one Service are delivered in order
// on a single dispatch goroutine.
//
// Cameras can be plugged and unplugged at runtime to exercise hot-plug
// handling:
//
//	svc, _ := simulator.New(simulator.DefaultConfig())
//	defer svc.Close()
//
//	svc.Unplug("back-wide") // open handles receive DEVICE_DISCONNECTED
package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/camkit-project/camkit-go/pkg/dispatch"
	"github.com/camkit-project/camkit-go/pkg/metadata"
	"github.com/camkit-project/camkit-go/pkg/remote"
	"github.com/camkit-project/camkit-go/pkg/wire"
)

// Config configures a simulated service.
type Config struct {
	// Profiles are the cameras present at startup.
	Profiles []Profile

	// FrameInterval is the period of the frame ticker (default: 33ms).
	FrameInterval time.Duration

	// SettleDelay is how long focus and exposure take to converge after a
	// settings update (default: 100ms).
	SettleDelay time.Duration

	// MaxStreams limits the outputs of one session (default: 4).
	MaxStreams int

	// Logger for operational logging (optional).
	Logger *slog.Logger
}

// DefaultConfig returns a configuration with the default camera profiles.
func DefaultConfig() Config {
	return Config{
		Profiles:      DefaultProfiles(),
		FrameInterval: 33 * time.Millisecond,
		SettleDelay:   100 * time.Millisecond,
		MaxStreams:    4,
	}
}

type camera struct {
	profile Profile
	caps    *metadata.Store
	specs   []remote.StreamSpec
	owner   *Device
}

func newCamera(p Profile) (*camera, error) {
	caps, err := p.Capabilities()
	if err != nil {
		return nil, err
	}
	specs, err := p.Specs()
	if err != nil {
		return nil, err
	}
	return &camera{profile: p, caps: caps, specs: specs}, nil
}

func (c *camera) supports(spec remote.StreamSpec) bool {
	for _, s := range c.specs {
		if s.Kind != spec.Kind {
			continue
		}
		if spec.Kind == remote.StreamMetadata {
			return true
		}
		if s.Format == spec.Format && s.Width == spec.Width && s.Height == spec.Height {
			return true
		}
	}
	return false
}

// Service is a simulated remote camera service.
type Service struct {
	cfg    Config
	logger *slog.Logger
	events *dispatch.Queue

	nextHandle atomic.Uint32

	mu           sync.Mutex
	cameras      map[string]*camera
	order        []string
	sessions     map[*Session]struct{}
	availability remote.AvailabilityHandler
	closed       bool
}

var _ remote.Service = (*Service)(nil)

// New creates a service with the cameras of cfg.Profiles.
func New(cfg Config) (*Service, error) {
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = 33 * time.Millisecond
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = 100 * time.Millisecond
	}
	if cfg.MaxStreams <= 0 {
		cfg.MaxStreams = 4
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Service{
		cfg:      cfg,
		logger:   logger,
		cameras:  make(map[string]*camera),
		sessions: make(map[*Session]struct{}),
	}
	for _, p := range cfg.Profiles {
		if err := s.addCamera(p); err != nil {
			return nil, err
		}
	}
	s.events = dispatch.New(dispatch.Config{Name: "simulator", Logger: logger})
	return s, nil
}

func (s *Service) addCamera(p Profile) error {
	cam, err := newCamera(p)
	if err != nil {
		return err
	}
	if _, dup := s.cameras[p.ID]; dup {
		return fmt.Errorf("%w: duplicate camera id %q", ErrInvalidProfile, p.ID)
	}
	s.cameras[p.ID] = cam
	s.order = append(s.order, p.ID)
	return nil
}

// Close releases every session and stops event delivery after the
// queued events have been delivered.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	sessions := make([]*Session, 0, len(s.sessions))
	for sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		_ = sess.Release(context.Background())
	}
	s.events.Close()
	return nil
}

// Flush waits until every callback emitted so far has been delivered.
func (s *Service) Flush(ctx context.Context) error {
	return s.events.Flush(ctx)
}

func (s *Service) emit(fn func()) {
	s.events.Post(fn)
}

func (s *Service) allocHandle() uint32 {
	return s.nextHandle.Add(1)
}

// EnumerateDevices lists the plugged cameras in profile order.
func (s *Service) EnumerateDevices(ctx context.Context) ([]remote.DeviceInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]remote.DeviceInfo, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, remote.DeviceInfo{ID: id, Capabilities: s.cameras[id].caps.Clone()})
	}
	return out, nil
}

// OpenDevice acquires a camera. A camera has at most one holder.
func (s *Service) OpenDevice(ctx context.Context, id string, cb remote.DeviceCallbacks) (remote.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, remote.StatusError("OpenDevice", wire.StatusServiceFatal, "service closed")
	}
	cam, ok := s.cameras[id]
	if !ok {
		return nil, remote.StatusError("OpenDevice", wire.StatusNotFound, "no camera %q", id)
	}
	if cam.owner != nil {
		return nil, remote.StatusError("OpenDevice", wire.StatusDeviceBusy, "camera %q is in use", id)
	}

	if cb == nil {
		cb = remote.NopDeviceCallbacks{}
	}
	d := newDevice(s, cam, cb)
	cam.owner = d
	s.logger.Debug("camera acquired", slog.String("device_id", id), slog.Uint64("handle", uint64(d.handle)))
	return d, nil
}

func (s *Service) releaseCamera(d *Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.cam.owner == d {
		d.cam.owner = nil
		s.logger.Debug("camera released", slog.String("device_id", d.ID()))
	}
}

// CreateSession creates a capture session.
func (s *Service) CreateSession(ctx context.Context) (remote.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, remote.StatusError("CreateSession", wire.StatusServiceFatal, "service closed")
	}
	sess := &Session{svc: s, handle: s.allocHandle()}
	s.sessions[sess] = struct{}{}
	return sess, nil
}

func (s *Service) forgetSession(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
}

// CreateStream creates a stream for spec. Support for the configuration is
// checked when the stream is committed with a device.
func (s *Service) CreateStream(ctx context.Context, spec remote.StreamSpec, cb remote.StreamCallbacks) (remote.Stream, error) {
	if !spec.Kind.IsValid() {
		return nil, remote.StatusError("CreateStream", wire.StatusInvalidArgument, "unknown stream kind %d", spec.Kind)
	}
	if cb == nil {
		cb = remote.NopStreamCallbacks{}
	}
	return &Stream{svc: s, handle: s.allocHandle(), spec: spec, cb: cb}, nil
}

// SetAvailabilityHandler installs the hot-plug handler.
func (s *Service) SetAvailabilityHandler(h remote.AvailabilityHandler) {
	s.mu.Lock()
	s.availability = h
	s.mu.Unlock()
}

func (s *Service) notifyAvailability(change remote.AvailabilityChange) {
	s.mu.Lock()
	h := s.availability
	s.mu.Unlock()
	if h != nil {
		s.emit(func() { h(change) })
	}
}

// Plug adds a camera at runtime and reports it as available.
func (s *Service) Plug(p Profile) error {
	s.mu.Lock()
	err := s.addCamera(p)
	var caps *metadata.Store
	if err == nil {
		caps = s.cameras[p.ID].caps.Clone()
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.Info("camera plugged", slog.String("device_id", p.ID))
	s.notifyAvailability(remote.AvailabilityChange{DeviceID: p.ID, Available: true, Capabilities: caps})
	return nil
}

// Unplug removes a camera. Its holder receives a device error, streams
// fed by it stop with a stream error, and the camera is reported as
// unavailable.
func (s *Service) Unplug(id string) error {
	s.mu.Lock()
	cam, ok := s.cameras[id]
	if !ok {
		s.mu.Unlock()
		return remote.StatusError("Unplug", wire.StatusNotFound, "no camera %q", id)
	}
	delete(s.cameras, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	owner := cam.owner
	cam.owner = nil
	sessions := make([]*Session, 0, len(s.sessions))
	for sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	s.logger.Info("camera unplugged", slog.String("device_id", id))
	if owner != nil {
		owner.disconnect()
		for _, sess := range sessions {
			sess.inputLost(owner)
		}
	}
	s.notifyAvailability(remote.AvailabilityChange{DeviceID: id, Available: false})
	return nil
}

// CameraState is a snapshot of one simulated camera.
type CameraState struct {
	ID       string
	Profile  Profile
	InUse    bool
	Opened   bool
	Settings *metadata.Store
}

// Cameras returns a snapshot of the plugged cameras in profile order.
func (s *Service) Cameras() []CameraState {
	s.mu.Lock()
	cams := make([]*camera, 0, len(s.order))
	owners := make([]*Device, 0, len(s.order))
	for _, id := range s.order {
		cam := s.cameras[id]
		cams = append(cams, cam)
		owners = append(owners, cam.owner)
	}
	s.mu.Unlock()

	out := make([]CameraState, 0, len(cams))
	for i, cam := range cams {
		st := CameraState{ID: cam.profile.ID, Profile: cam.profile}
		if owners[i] != nil {
			st.InUse = true
			st.Opened, st.Settings = owners[i].snapshot()
		}
		out = append(out, st)
	}
	return out
}
