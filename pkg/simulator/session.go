package simulator

import (
	"context"
	"slices"
	"sync"

	"github.com/camkit-project/camkit-go/pkg/remote"
	"github.com/camkit-project/camkit-go/pkg/wire"
)

type sessionState uint8

const (
	sessionIdle sessionState = iota
	sessionConfiguring
	sessionConfigured
	sessionRunning
	sessionReleased
)

func (s sessionState) String() string {
	switch s {
	case sessionIdle:
		return "IDLE"
	case sessionConfiguring:
		return "CONFIGURING"
	case sessionConfigured:
		return "CONFIGURED"
	case sessionRunning:
		return "RUNNING"
	default:
		return "RELEASED"
	}
}

// Session is a simulated capture session.
//
// Lock order: a session may lock its streams while holding its own lock,
// never the other way around.
type Session struct {
	svc    *Service
	handle uint32

	mu      sync.Mutex
	state   sessionState
	input   *Device
	outputs []*Stream
}

var _ remote.Session = (*Session)(nil)

// Handle returns the service handle of the session.
func (s *Session) Handle() uint32 { return s.handle }

func (s *Session) invalidState(op string) error {
	return remote.StatusError(op, wire.StatusInvalidState, "session is %s", s.state)
}

// BeginConfig enters configuration from idle or configured.
func (s *Session) BeginConfig(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != sessionIdle && s.state != sessionConfigured {
		return s.invalidState("SessionBeginConfig")
	}
	s.state = sessionConfiguring
	return nil
}

// CommitConfig validates and applies the whole configuration. Streams of
// the previous configuration that are not part of the new one are stopped
// and unbound.
func (s *Session) CommitConfig(ctx context.Context, input remote.Device, outputs []remote.Stream) error {
	const op = "SessionCommitConfig"
	invalid := func(format string, args ...any) error {
		return remote.StatusError(op, wire.StatusInvalidArgument, format, args...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != sessionConfiguring {
		return s.invalidState(op)
	}
	dev, ok := input.(*Device)
	if !ok || dev.svc != s.svc {
		return invalid("input is not a device of this service")
	}
	if err := dev.usable(); err != nil {
		return err
	}
	if len(outputs) == 0 {
		return invalid("no outputs")
	}
	if len(outputs) > s.svc.cfg.MaxStreams {
		return remote.StatusError(op, wire.StatusCaptureLimitExceeded,
			"%d outputs, at most %d", len(outputs), s.svc.cfg.MaxStreams)
	}

	streams := make([]*Stream, 0, len(outputs))
	for _, o := range outputs {
		st, ok := o.(*Stream)
		if !ok || st.svc != s.svc {
			return invalid("output is not a stream of this service")
		}
		if slices.Contains(streams, st) {
			return invalid("stream %d listed twice", st.handle)
		}
		if owner := st.boundSession(); owner != nil && owner != s {
			return remote.StatusError(op, wire.StatusDeviceBusy, "stream %d belongs to another session", st.handle)
		}
		if st.isReleased() {
			return invalid("stream %d was released", st.handle)
		}
		if !dev.cam.supports(st.spec) {
			return remote.StatusError(op, wire.StatusUnsupported,
				"camera %q does not support %s %s %dx%d", dev.ID(), st.spec.Kind, st.spec.Format, st.spec.Width, st.spec.Height)
		}
		streams = append(streams, st)
	}

	for _, old := range s.outputs {
		if !slices.Contains(streams, old) {
			old.unbind()
		}
	}
	for _, st := range streams {
		st.bind(s, dev)
	}
	s.input = dev
	s.outputs = streams
	s.state = sessionConfigured
	return nil
}

// Start begins delivering frames to the streams once they are started.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != sessionConfigured {
		return s.invalidState("SessionStart")
	}
	if err := s.input.usable(); err != nil {
		return err
	}
	s.state = sessionRunning
	return nil
}

// Stop stops every running stream of the session.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.state != sessionRunning {
		err := s.invalidState("SessionStop")
		s.mu.Unlock()
		return err
	}
	s.state = sessionConfigured
	outputs := slices.Clone(s.outputs)
	s.mu.Unlock()

	for _, st := range outputs {
		st.halt()
	}
	return nil
}

// Release stops and unbinds the streams. Releasing twice is not an error.
func (s *Session) Release(ctx context.Context) error {
	s.mu.Lock()
	if s.state == sessionReleased {
		s.mu.Unlock()
		return nil
	}
	s.state = sessionReleased
	outputs := s.outputs
	s.outputs = nil
	s.input = nil
	s.mu.Unlock()

	for _, st := range outputs {
		st.halt()
		st.unbind()
	}
	s.svc.forgetSession(s)
	return nil
}

func (s *Session) running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == sessionRunning
}

func (s *Session) detach(st *Stream) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs = slices.DeleteFunc(s.outputs, func(o *Stream) bool { return o == st })
}

// inputLost fails the running streams of a session fed by dev.
func (s *Session) inputLost(dev *Device) {
	s.mu.Lock()
	if s.input != dev {
		s.mu.Unlock()
		return
	}
	wasRunning := s.state == sessionRunning
	if wasRunning {
		s.state = sessionConfigured
	}
	outputs := slices.Clone(s.outputs)
	s.mu.Unlock()

	if !wasRunning {
		return
	}
	for _, st := range outputs {
		st.fail(int32(wire.StatusDeviceDisconnected))
	}
}
