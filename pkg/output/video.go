package output

import (
	"context"
	"sync"

	"github.com/camkit-project/camkit-go/pkg/camerr"
	"github.com/camkit-project/camkit-go/pkg/device"
	"github.com/camkit-project/camkit-go/pkg/remote"
)

// VideoOutput streams frames to a recorder sink. Its frame rate is a
// device-level setting applied through the session input's handle.
type VideoOutput struct {
	base
	frameEvents

	inputMu sync.Mutex
	input   *device.Handle
	ranges  []device.IntRange
	loaded  bool
}

var (
	_ Output                 = (*VideoOutput)(nil)
	_ remote.StreamCallbacks = (*VideoOutput)(nil)
)

// NewVideo creates a video stream for spec on svc.
func NewVideo(ctx context.Context, svc remote.Service, spec remote.StreamSpec, cfg Config) (*VideoOutput, error) {
	spec.Kind = remote.StreamVideo
	o := &VideoOutput{}
	o.init(o, spec, cfg)
	if err := o.open(ctx, svc, o); err != nil {
		return nil, err
	}
	return o, nil
}

// BindInput sets the device whose frame rate this output controls. The
// session calls it when its configuration is committed; nil unbinds.
func (o *VideoOutput) BindInput(h *device.Handle) {
	o.inputMu.Lock()
	defer o.inputMu.Unlock()
	o.input = h
	o.ranges = nil
	o.loaded = false
}

func (o *VideoOutput) boundInput(op string) (*device.Handle, error) {
	o.inputMu.Lock()
	defer o.inputMu.Unlock()
	if o.input == nil {
		return nil, camerr.Usage(op, "video output has no committed input")
	}
	return o.input, nil
}

// FrameRateRanges returns the frame rate ranges supported by the bound
// device. The result is read once per binding.
func (o *VideoOutput) FrameRateRanges() ([]device.IntRange, error) {
	o.inputMu.Lock()
	defer o.inputMu.Unlock()

	if o.input == nil {
		return nil, camerr.Usage("FrameRateRanges", "video output has no committed input")
	}
	if !o.loaded {
		o.ranges = o.input.Descriptor().FrameRateRanges()
		o.loaded = true
	}
	return o.ranges, nil
}

// ActiveFrameRateRange returns the range last committed on the device.
func (o *VideoOutput) ActiveFrameRateRange() (device.IntRange, bool) {
	h, err := o.boundInput("ActiveFrameRateRange")
	if err != nil {
		return device.IntRange{}, false
	}
	return h.FrameRateRange()
}

// SetFrameRateRange applies r to the bound device in its own transaction.
func (o *VideoOutput) SetFrameRateRange(ctx context.Context, r device.IntRange) error {
	h, err := o.boundInput("SetFrameRateRange")
	if err != nil {
		return err
	}
	return h.Configure(ctx, func(h *device.Handle) error {
		return h.SetFrameRateRange(r)
	})
}

func (o *VideoOutput) OnFrameStarted(int64) {
	if fn := o.get().OnFrameStarted; fn != nil {
		o.post(fn)
	}
}

func (o *VideoOutput) OnFrameEnded(frameCount uint32) {
	if fn := o.get().OnFrameEnded; fn != nil {
		o.post(func() { fn(frameCount) })
	}
}

func (o *VideoOutput) OnStreamError(code int32) {
	fn := o.get().OnError
	if fn == nil {
		o.cfg.Logger.Warn("video stream error without listener", "code", code)
		return
	}
	o.post(func() { fn(code) })
}
