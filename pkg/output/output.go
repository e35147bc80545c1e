// Package output implements the capture outputs a session streams into:
// preview, photo, video and metadata.
//
// Each output wraps one remote stream. It is created unattached, attached to
// at most one session at a time, and released exactly once. The remote
// stream is reference counted: the output holds one reference and the sink
// collaborator may take more with Retain. The stream is released when the
// last reference is dropped.
package output

import (
	"context"
	"log/slog"
	"sync"

	"github.com/camkit-project/camkit-go/pkg/camerr"
	"github.com/camkit-project/camkit-go/pkg/dispatch"
	"github.com/camkit-project/camkit-go/pkg/log"
	"github.com/camkit-project/camkit-go/pkg/remote"
)

// State is the lifecycle state of an output.
type State uint8

const (
	StateCreated  State = 0
	StateAdded    State = 1
	StateStarted  State = 2
	StateStopped  State = 3
	StateReleased State = 4
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "CREATED"
	case StateAdded:
		return "ADDED"
	case StateStarted:
		return "STARTED"
	case StateStopped:
		return "STOPPED"
	default:
		return "RELEASED"
	}
}

// Owner is the session an output is attached to.
type Owner interface {
	ID() string

	// OutputReleased is called after an attached output is released.
	OutputReleased(o Output)
}

// Output is the behaviour shared by all output kinds.
type Output interface {
	Kind() remote.StreamKind
	Spec() remote.StreamSpec
	Stream() remote.Stream
	State() State

	// Attach binds the output to a session. It fails with a UsageError if the
	// output is attached elsewhere or released.
	Attach(owner Owner) error

	// Detach unbinds the output if owner holds it.
	Detach(owner Owner)

	// Owner returns the attached session, or nil.
	Owner() Owner

	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Release(ctx context.Context) error
}

// Config configures an output.
type Config struct {
	// Poster delivers listener callbacks. Defaults to dispatch.Inline.
	Poster dispatch.Poster

	// Logger receives diagnostics (optional).
	Logger *slog.Logger

	// ProtocolLogger receives state changes (optional).
	ProtocolLogger log.Logger
}

func (c Config) withDefaults() Config {
	if c.Poster == nil {
		c.Poster = dispatch.Inline{}
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	c.ProtocolLogger = log.OrNoop(c.ProtocolLogger)
	return c
}

// base carries the lifecycle shared by every output kind.
type base struct {
	remote.NopStreamCallbacks

	spec   remote.StreamSpec
	stream remote.Stream
	cfg    Config
	self   Output

	mu    sync.Mutex
	state State
	owner Owner
	refs  int
}

func (b *base) init(self Output, spec remote.StreamSpec, cfg Config) {
	b.self = self
	b.spec = spec
	b.cfg = cfg.withDefaults()
	b.refs = 1
}

// open creates the remote stream with cb as its callback sink.
func (b *base) open(ctx context.Context, svc remote.Service, cb remote.StreamCallbacks) error {
	stream, err := svc.CreateStream(ctx, b.spec, cb)
	if err != nil {
		return camerr.Remote("CreateStream", err)
	}
	b.stream = stream
	return nil
}

func (b *base) Kind() remote.StreamKind { return b.spec.Kind }

func (b *base) Spec() remote.StreamSpec { return b.spec }

func (b *base) Stream() remote.Stream { return b.stream }

func (b *base) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *base) Owner() Owner {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.owner
}

func (b *base) Attach(owner Owner) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case b.state == StateReleased:
		return camerr.Usage("AddOutput", "%s output released", b.spec.Kind)
	case b.owner == owner:
		return nil
	case b.owner != nil:
		return camerr.Usage("AddOutput", "%s output already attached to session %s", b.spec.Kind, b.owner.ID())
	}
	b.owner = owner
	b.setState(StateAdded, "attached to "+owner.ID())
	return nil
}

func (b *base) Detach(owner Owner) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.owner != owner || b.owner == nil {
		return
	}
	b.owner = nil
	if b.state != StateReleased {
		b.setState(StateCreated, "detached from "+owner.ID())
	}
}

// Start starts a repeating output. The output must be attached.
func (b *base) Start(ctx context.Context) error {
	if !b.spec.Kind.IsRepeating() {
		return camerr.Usage("Start", "%s output is not repeating", b.spec.Kind)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateStarted:
		return nil
	case StateAdded, StateStopped:
	default:
		return camerr.Usage("Start", "%s output is %s", b.spec.Kind, b.state)
	}
	if err := b.stream.Start(ctx); err != nil {
		return camerr.Remote("StreamStart", err)
	}
	b.setState(StateStarted, "")
	return nil
}

// Stop stops a running repeating output. Stopping an idle output is a no-op.
func (b *base) Stop(ctx context.Context) error {
	if !b.spec.Kind.IsRepeating() {
		return camerr.Usage("Stop", "%s output is not repeating", b.spec.Kind)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateStarted {
		return nil
	}
	if err := b.stream.Stop(ctx); err != nil {
		return camerr.Remote("StreamStop", err)
	}
	b.setState(StateStopped, "")
	return nil
}

// Release drops the output's reference to the stream and detaches it from
// its session. Calling it again is a no-op.
func (b *base) Release(ctx context.Context) error {
	b.mu.Lock()
	if b.state == StateReleased {
		b.mu.Unlock()
		return nil
	}
	owner := b.owner
	b.owner = nil
	b.setState(StateReleased, "")
	b.refs--
	last := b.refs == 0
	b.mu.Unlock()

	if owner != nil {
		owner.OutputReleased(b.self)
	}
	if !last {
		return nil
	}
	return b.releaseStream(ctx)
}

// Retain takes an extra reference to the remote stream for a sink. The
// returned function drops it; calling it more than once has no effect.
func (b *base) Retain() (func(ctx context.Context) error, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.refs == 0 {
		return nil, camerr.Usage("Retain", "%s stream released", b.spec.Kind)
	}
	b.refs++

	var once sync.Once
	return func(ctx context.Context) error {
		var err error
		once.Do(func() {
			b.mu.Lock()
			b.refs--
			last := b.refs == 0
			b.mu.Unlock()
			if last {
				err = b.releaseStream(ctx)
			}
		})
		return err
	}, nil
}

// RefCount returns the number of live references to the stream.
func (b *base) RefCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refs
}

func (b *base) releaseStream(ctx context.Context) error {
	if err := b.stream.Release(ctx); err != nil {
		return camerr.Remote("StreamRelease", err)
	}
	return nil
}

// requireAttached returns a UsageError unless the output is attached.
func (b *base) requireAttached(op string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.owner == nil || b.state == StateReleased {
		return camerr.Usage(op, "%s output is not attached to a session", b.spec.Kind)
	}
	return nil
}

func (b *base) post(fn func()) {
	if !b.cfg.Poster.Post(fn) {
		b.cfg.Logger.Debug("output callback dropped", "kind", b.spec.Kind.String())
	}
}

// setState must be called with mu held.
func (b *base) setState(next State, reason string) {
	prev := b.state
	b.state = next
	ev := log.NewStateChange(log.StateEntityOutput, prev.String(), next.String(), reason)
	if b.owner != nil {
		ev.SessionID = b.owner.ID()
	}
	b.cfg.ProtocolLogger.Log(ev)
}
