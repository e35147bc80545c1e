// Package session implements the capture session: one device input and a
// set of outputs driven through a configuration transaction and a run state
// machine.
//
//	Idle ──BeginConfig──▶ Configuring ──CommitConfig──▶ Configured ──Start──▶ Running
//	                          ▲                              │  ▲               │
//	                          └──────────BeginConfig─────────┘  └──────Stop─────┘
//
// Release moves any state to Released. Every transition runs under the
// session's state lock, so only one configuration is in flight at a time.
// A failed remote call leaves the state unchanged.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/camkit-project/camkit-go/pkg/camerr"
	"github.com/camkit-project/camkit-go/pkg/device"
	"github.com/camkit-project/camkit-go/pkg/dispatch"
	"github.com/camkit-project/camkit-go/pkg/log"
	"github.com/camkit-project/camkit-go/pkg/output"
	"github.com/camkit-project/camkit-go/pkg/remote"
	"github.com/google/uuid"
)

// State is the session state.
type State uint8

const (
	StateIdle        State = 0
	StateConfiguring State = 1
	StateConfigured  State = 2
	StateRunning     State = 3
	StateReleased    State = 4
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateConfiguring:
		return "CONFIGURING"
	case StateConfigured:
		return "CONFIGURED"
	case StateRunning:
		return "RUNNING"
	default:
		return "RELEASED"
	}
}

// inputBinder is implemented by outputs that act on the session's device.
type inputBinder interface {
	BindInput(h *device.Handle)
}

// objectReporter is implemented by metadata outputs.
type objectReporter interface {
	CapturingObjectTypes() []remote.MetadataObjectType
}

// Config configures a Session.
type Config struct {
	// Poster delivers error listener callbacks. Defaults to dispatch.Inline.
	Poster dispatch.Poster

	// Logger receives diagnostics (optional).
	Logger *slog.Logger

	// ProtocolLogger receives state changes (optional).
	ProtocolLogger log.Logger
}

// Session is a capture session.
type Session struct {
	id     string
	remote remote.Session
	poster dispatch.Poster
	logger *slog.Logger
	plog   log.Logger

	mu        sync.Mutex
	state     State
	input     *device.Handle
	stopWatch func()
	outputs   []output.Output

	// listenerMu is separate from mu: callbacks must not wait on a
	// transition that is blocked in a remote call.
	listenerMu  sync.Mutex
	errListener func(error)
}

var _ output.Owner = (*Session)(nil)

// New creates a remote capture session on svc.
func New(ctx context.Context, svc remote.Service, cfg Config) (*Session, error) {
	rs, err := svc.CreateSession(ctx)
	if err != nil {
		return nil, camerr.Remote("CreateSession", err)
	}

	s := &Session{
		id:     uuid.NewString(),
		remote: rs,
		poster: cfg.Poster,
		logger: cfg.Logger,
		plog:   cfg.ProtocolLogger,
	}
	if s.poster == nil {
		s.poster = dispatch.Inline{}
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	s.plog = log.OrNoop(s.plog)
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Input returns the device input, or nil.
func (s *Session) Input() *device.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Outputs returns the attached outputs in the order they were added.
func (s *Session) Outputs() []output.Output {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.outputs)
}

// SetErrorListener registers fn for asynchronous session failures, such as
// errors reported by the input device. nil clears it.
func (s *Session) SetErrorListener(fn func(error)) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.errListener = fn
}

// BeginConfig opens a configuration transaction.
func (s *Session) BeginConfig(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateIdle, StateConfigured:
	default:
		return camerr.Usage("BeginConfig", "session is %s", s.state)
	}
	if err := s.remote.BeginConfig(ctx); err != nil {
		return camerr.Remote("SessionBeginConfig", err)
	}
	s.setState(StateConfiguring, "")
	return nil
}

// AddInput sets the session's device. A session has at most one input.
func (s *Session) AddInput(h *device.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireConfiguring("AddInput"); err != nil {
		return err
	}
	switch {
	case h == nil:
		return camerr.Usage("AddInput", "nil input")
	case s.input != nil:
		return camerr.Usage("AddInput", "session already has input %s", s.input.Descriptor().ID())
	case h.State() == device.HandleReleased:
		return camerr.Usage("AddInput", "device %s released", h.Descriptor().ID())
	}

	s.input = h
	s.stopWatch = h.WatchErrors(s.inputFailed)
	return nil
}

// RemoveInput clears the session's device.
func (s *Session) RemoveInput(h *device.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireConfiguring("RemoveInput"); err != nil {
		return err
	}
	if h == nil || s.input != h {
		return camerr.Usage("RemoveInput", "input is not part of this session")
	}
	s.dropInputLocked()
	return nil
}

func (s *Session) dropInputLocked() {
	if s.stopWatch != nil {
		s.stopWatch()
		s.stopWatch = nil
	}
	for _, o := range s.outputs {
		if b, ok := o.(inputBinder); ok {
			b.BindInput(nil)
		}
	}
	s.input = nil
}

// AddOutput attaches o. It fails if o belongs to another session.
func (s *Session) AddOutput(o output.Output) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireConfiguring("AddOutput"); err != nil {
		return err
	}
	if o == nil {
		return camerr.Usage("AddOutput", "nil output")
	}
	if slices.Contains(s.outputs, o) {
		return camerr.Usage("AddOutput", "%s output already added", o.Kind())
	}
	if err := o.Attach(s); err != nil {
		return err
	}
	s.outputs = append(s.outputs, o)
	return nil
}

// RemoveOutput detaches o.
func (s *Session) RemoveOutput(o output.Output) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireConfiguring("RemoveOutput"); err != nil {
		return err
	}
	i := slices.Index(s.outputs, o)
	if i < 0 {
		return camerr.Usage("RemoveOutput", "output is not part of this session")
	}
	s.outputs = slices.Delete(s.outputs, i, i+1)
	if b, ok := o.(inputBinder); ok {
		b.BindInput(nil)
	}
	o.Detach(s)
	return nil
}

// OutputReleased drops a released output from the session.
func (s *Session) OutputReleased(o output.Output) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.Index(s.outputs, o); i >= 0 {
		s.outputs = slices.Delete(s.outputs, i, i+1)
	}
}

// CommitConfig validates the configuration against the input's stream
// configurations and sends it to the remote session in one request.
func (s *Session) CommitConfig(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireConfiguring("CommitConfig"); err != nil {
		return err
	}
	if s.input == nil {
		return camerr.Usage("CommitConfig", "session has no input")
	}
	if err := s.validateLocked(); err != nil {
		return err
	}

	streams := make([]remote.Stream, len(s.outputs))
	for i, o := range s.outputs {
		streams[i] = o.Stream()
	}
	if err := s.remote.CommitConfig(ctx, s.input.Remote(), streams); err != nil {
		return camerr.Remote("SessionCommitConfig", err)
	}

	for _, o := range s.outputs {
		if b, ok := o.(inputBinder); ok {
			b.BindInput(s.input)
		}
	}
	s.setState(StateConfigured, "")
	return nil
}

func (s *Session) validateLocked() error {
	desc := s.input.Descriptor()
	for _, o := range s.outputs {
		spec := o.Spec()
		if spec.Kind == remote.StreamMetadata {
			if len(desc.StreamConfigurations(remote.StreamMetadata)) == 0 {
				return camerr.Unsupported("metadata output on device", desc.ID())
			}
			if r, ok := o.(objectReporter); ok {
				detectable := desc.MetadataObjectTypes()
				for _, t := range r.CapturingObjectTypes() {
					if !slices.Contains(detectable, t) {
						return camerr.Unsupported("metadata object type", t)
					}
				}
			}
			continue
		}
		if !desc.SupportsStream(spec) {
			return camerr.Unsupported(spec.Kind.String()+" configuration",
				streamLabel(spec))
		}
	}
	return nil
}

// Start runs the session and starts every repeating output that is not
// already running. If an output fails to start, the session is stopped again
// and stays Configured.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConfigured {
		return camerr.Usage("Start", "session is %s", s.state)
	}
	if err := s.remote.Start(ctx); err != nil {
		return camerr.Remote("SessionStart", err)
	}

	var started []output.Output
	for _, o := range s.outputs {
		if !o.Kind().IsRepeating() || o.State() == output.StateStarted {
			continue
		}
		if err := o.Start(ctx); err != nil {
			s.rollbackStart(ctx, started)
			return err
		}
		started = append(started, o)
	}

	s.setState(StateRunning, "")
	return nil
}

func (s *Session) rollbackStart(ctx context.Context, started []output.Output) {
	for _, o := range started {
		if err := o.Stop(ctx); err != nil {
			s.logger.Warn("output stop during rollback failed", "session_id", s.id, "kind", o.Kind().String(), "error", err)
		}
	}
	if err := s.remote.Stop(ctx); err != nil {
		s.logger.Warn("session stop during rollback failed", "session_id", s.id, "error", err)
	}
}

// Stop stops the running outputs and the session. Every output is asked to
// stop even if an earlier one fails; the failures are joined into the
// returned error. The session leaves Running once the remote session has
// stopped, whatever its outputs reported.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return camerr.Usage("Stop", "session is %s", s.state)
	}
	var errs []error
	for _, o := range s.outputs {
		if !o.Kind().IsRepeating() {
			continue
		}
		if err := o.Stop(ctx); err != nil {
			s.logger.Warn("output stop failed", "session_id", s.id, "kind", o.Kind().String(), "error", err)
			errs = append(errs, err)
		}
	}
	if err := s.remote.Stop(ctx); err != nil {
		errs = append(errs, camerr.Remote("SessionStop", err))
		return errors.Join(errs...)
	}
	s.setState(StateConfigured, "")
	return errors.Join(errs...)
}

// Release ends the session, detaches its outputs and releases its input.
// Calling it again is a no-op.
func (s *Session) Release(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateReleased {
		return nil
	}
	if err := s.remote.Release(ctx); err != nil {
		return camerr.Remote("SessionRelease", err)
	}

	for _, o := range s.outputs {
		if b, ok := o.(inputBinder); ok {
			b.BindInput(nil)
		}
		o.Detach(s)
	}
	s.outputs = nil

	var errs []error
	if in := s.input; in != nil {
		s.dropInputLocked()
		if err := in.Release(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.setState(StateReleased, "")
	return errors.Join(errs...)
}

// IsVideoStabilizationModeSupported reports whether the input supports m.
func (s *Session) IsVideoStabilizationModeSupported(m device.StabilizationMode) (bool, error) {
	in, err := s.activeInput("IsVideoStabilizationModeSupported")
	if err != nil {
		return false, err
	}
	return in.Descriptor().IsStabilizationModeSupported(m), nil
}

// ActiveVideoStabilizationMode returns the mode last committed on the input.
// It reports StabilizationOff if none was set.
func (s *Session) ActiveVideoStabilizationMode() (device.StabilizationMode, error) {
	in, err := s.activeInput("ActiveVideoStabilizationMode")
	if err != nil {
		return device.StabilizationOff, err
	}
	m, ok := in.VideoStabilizationMode()
	if !ok {
		return device.StabilizationOff, nil
	}
	return m, nil
}

// SetVideoStabilizationMode applies m to the input in its own transaction.
func (s *Session) SetVideoStabilizationMode(ctx context.Context, m device.StabilizationMode) error {
	in, err := s.activeInput("SetVideoStabilizationMode")
	if err != nil {
		return err
	}
	if !in.Descriptor().IsStabilizationModeSupported(m) {
		return camerr.Unsupported("video stabilization mode", m)
	}
	return in.Configure(ctx, func(h *device.Handle) error {
		return h.SetVideoStabilizationMode(m)
	})
}

func (s *Session) activeInput(op string) (*device.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateReleased {
		return nil, camerr.Usage(op, "session released")
	}
	if s.input == nil {
		return nil, camerr.Usage(op, "session has no input")
	}
	return s.input, nil
}

func (s *Session) inputFailed(derr *device.DeviceError) {
	s.listenerMu.Lock()
	fn := s.errListener
	s.listenerMu.Unlock()
	if fn == nil {
		s.logger.Debug("session error dropped", "session_id", s.id, "error", derr)
		return
	}
	if !s.poster.Post(func() { fn(derr) }) {
		s.logger.Debug("session error dropped", "session_id", s.id, "error", derr)
	}
}

func (s *Session) requireConfiguring(op string) error {
	if s.state != StateConfiguring {
		return camerr.Usage(op, "session is %s, not CONFIGURING", s.state)
	}
	return nil
}

// setState must be called with mu held.
func (s *Session) setState(next State, reason string) {
	prev := s.state
	s.state = next
	ev := log.NewStateChange(log.StateEntitySession, prev.String(), next.String(), reason)
	ev.SessionID = s.id
	if s.input != nil {
		ev.DeviceID = s.input.Descriptor().ID()
	}
	s.plog.Log(ev)
}

func streamLabel(spec remote.StreamSpec) string {
	return fmt.Sprintf("%s %dx%d", spec.Format, spec.Width, spec.Height)
}
