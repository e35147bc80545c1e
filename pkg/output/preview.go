package output

import (
	"context"
	"sync"

	"github.com/camkit-project/camkit-go/pkg/remote"
)

// FrameListener receives events from a repeating pixel stream. Nil fields
// are skipped.
type FrameListener struct {
	OnFrameStarted func()
	OnFrameEnded   func(frameCount uint32)
	OnError        func(code int32)
}

// frameEvents routes stream frame callbacks to a FrameListener.
type frameEvents struct {
	mu       sync.RWMutex
	listener FrameListener
}

func (f *frameEvents) SetListener(l FrameListener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listener = l
}

func (f *frameEvents) get() FrameListener {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.listener
}

// PreviewOutput streams viewfinder frames to a display sink.
type PreviewOutput struct {
	base
	frameEvents
}

var (
	_ Output                 = (*PreviewOutput)(nil)
	_ remote.StreamCallbacks = (*PreviewOutput)(nil)
)

// NewPreview creates a preview stream for spec on svc.
func NewPreview(ctx context.Context, svc remote.Service, spec remote.StreamSpec, cfg Config) (*PreviewOutput, error) {
	spec.Kind = remote.StreamPreview
	o := &PreviewOutput{}
	o.init(o, spec, cfg)
	if err := o.open(ctx, svc, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *PreviewOutput) OnFrameStarted(int64) {
	if fn := o.get().OnFrameStarted; fn != nil {
		o.post(fn)
	}
}

func (o *PreviewOutput) OnFrameEnded(frameCount uint32) {
	if fn := o.get().OnFrameEnded; fn != nil {
		o.post(func() { fn(frameCount) })
	}
}

func (o *PreviewOutput) OnStreamError(code int32) {
	fn := o.get().OnError
	if fn == nil {
		o.cfg.Logger.Warn("preview stream error without listener", "code", code)
		return
	}
	o.post(func() { fn(code) })
}
