package device

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/camkit-project/camkit-go/pkg/camerr"
	"github.com/camkit-project/camkit-go/pkg/dispatch"
	"github.com/camkit-project/camkit-go/pkg/log"
	"github.com/camkit-project/camkit-go/pkg/metadata"
	"github.com/camkit-project/camkit-go/pkg/remote"
)

// HandleState is the lifecycle state of a Handle.
type HandleState uint8

const (
	HandleClosed   HandleState = 0
	HandleOpened   HandleState = 1
	HandleReleased HandleState = 2
)

func (s HandleState) String() string {
	switch s {
	case HandleClosed:
		return "CLOSED"
	case HandleOpened:
		return "OPENED"
	default:
		return "RELEASED"
	}
}

// HandleConfig configures a Handle.
type HandleConfig struct {
	// Poster delivers listener callbacks. Defaults to dispatch.Inline.
	Poster dispatch.Poster

	// Logger receives diagnostics (optional).
	Logger *slog.Logger

	// ProtocolLogger receives state changes (optional).
	ProtocolLogger log.Logger
}

// Handle controls an opened camera.
type Handle struct {
	desc   *Descriptor
	dev    remote.Device
	poster dispatch.Poster
	logger *slog.Logger
	plog   log.Logger

	// guard is held from Lock to Unlock.
	guard chan struct{}

	pendingMu sync.Mutex
	pending   *metadata.Store

	stateMu sync.Mutex
	state   HandleState

	listenerMu       sync.RWMutex
	focusListener    func(FocusState)
	exposureListener func(ExposureState)
	errorListener    func(*DeviceError)
	watchers         map[int]func(*DeviceError)
	nextWatcher      int
}

var _ remote.DeviceCallbacks = (*Handle)(nil)

// NewHandle asks svc for a control channel to desc's device. The returned
// handle is registered as the device's callback sink.
func NewHandle(ctx context.Context, svc remote.Service, desc *Descriptor, cfg HandleConfig) (*Handle, error) {
	h := &Handle{
		desc:   desc,
		poster: cfg.Poster,
		logger: cfg.Logger,
		plog:   cfg.ProtocolLogger,
		guard:  make(chan struct{}, 1),
	}
	if h.poster == nil {
		h.poster = dispatch.Inline{}
	}
	if h.logger == nil {
		h.logger = slog.New(slog.DiscardHandler)
	}
	h.plog = log.OrNoop(h.plog)

	dev, err := svc.OpenDevice(ctx, desc.ID(), h)
	if err != nil {
		return nil, camerr.Remote("OpenDevice", err)
	}
	h.dev = dev
	return h, nil
}

// Descriptor returns the device this handle controls.
func (h *Handle) Descriptor() *Descriptor { return h.desc }

// Remote returns the underlying remote device.
func (h *Handle) Remote() remote.Device { return h.dev }

// State returns the lifecycle state.
func (h *Handle) State() HandleState {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()
	return h.state
}

func (h *Handle) setState(next HandleState, reason string) {
	prev := h.state
	h.state = next
	ev := log.NewStateChange(log.StateEntityDevice, prev.String(), next.String(), reason)
	ev.DeviceID = h.desc.ID()
	h.plog.Log(ev)
}

// Open opens the camera on the device side.
func (h *Handle) Open(ctx context.Context) error {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()

	switch h.state {
	case HandleOpened:
		return nil
	case HandleReleased:
		return camerr.Usage("Open", "device %s released", h.desc.ID())
	}
	if err := h.dev.Open(ctx); err != nil {
		return camerr.Remote("Open", err)
	}
	h.setState(HandleOpened, "")
	return nil
}

// Close closes the camera on the device side.
func (h *Handle) Close(ctx context.Context) error {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()

	if h.state != HandleOpened {
		return nil
	}
	if err := h.dev.Close(ctx); err != nil {
		return camerr.Remote("Close", err)
	}
	h.setState(HandleClosed, "")
	return nil
}

// Release frees the remote device handle. Calling it again is a no-op.
func (h *Handle) Release(ctx context.Context) error {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()

	if h.state == HandleReleased {
		return nil
	}
	err := h.dev.Release(ctx)
	h.setState(HandleReleased, "")
	if err != nil {
		return camerr.Remote("Release", err)
	}
	return nil
}

// Lock opens a settings transaction. It blocks while another transaction is
// open and returns ctx's error if ctx ends first.
func (h *Handle) Lock(ctx context.Context) error {
	if h.State() == HandleReleased {
		return camerr.Usage("Lock", "device %s released", h.desc.ID())
	}

	select {
	case h.guard <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	h.pendingMu.Lock()
	h.pending = metadata.NewStore(metadata.DefaultItemCapacity, metadata.DefaultDataCapacity)
	h.pendingMu.Unlock()
	return nil
}

// Unlock commits the transaction. Staged values are sent in one UpdateSetting
// call and merged into the descriptor's capabilities on success. An empty
// transaction makes no remote call. The transaction is closed in every case.
func (h *Handle) Unlock(ctx context.Context) error {
	h.pendingMu.Lock()
	pending := h.pending
	h.pending = nil
	h.pendingMu.Unlock()

	if pending == nil {
		return camerr.Usage("Unlock", "no open transaction on device %s", h.desc.ID())
	}
	defer func() { <-h.guard }()

	if pending.Len() == 0 {
		return nil
	}
	if err := h.dev.UpdateSetting(ctx, pending); err != nil {
		h.logger.Warn("settings update failed", "device_id", h.desc.ID(), "error", err)
		return camerr.Remote("UpdateSetting", err)
	}
	h.desc.Capabilities().Merge(pending)
	return nil
}

// Configure runs fn inside a transaction. If fn fails, the staged values
// are discarded and nothing is sent.
func (h *Handle) Configure(ctx context.Context, fn func(*Handle) error) error {
	if err := h.Lock(ctx); err != nil {
		return err
	}
	if err := fn(h); err != nil {
		h.discard()
		return err
	}
	return h.Unlock(ctx)
}

func (h *Handle) discard() {
	h.pendingMu.Lock()
	open := h.pending != nil
	h.pending = nil
	h.pendingMu.Unlock()
	if open {
		<-h.guard
	}
}

// InTransaction reports whether a transaction is open.
func (h *Handle) InTransaction() bool {
	h.pendingMu.Lock()
	defer h.pendingMu.Unlock()
	return h.pending != nil
}

// stage records it in the open transaction.
func (h *Handle) stage(op string, it metadata.Item) error {
	h.pendingMu.Lock()
	defer h.pendingMu.Unlock()

	if h.pending == nil {
		h.logger.Warn("setter called without an open transaction", "op", op, "device_id", h.desc.ID())
		return camerr.Usage(op, "no open transaction on device %s", h.desc.ID())
	}
	return h.pending.Set(it)
}

// SetFlashMode stages the flash mode. The mode must be supported.
func (h *Handle) SetFlashMode(m FlashMode) error {
	if !h.desc.IsFlashModeSupported(m) {
		return camerr.Unsupported("flash mode", m)
	}
	return h.stage("SetFlashMode", metadata.NewByteItem(metadata.TagFlashMode, uint8(m)))
}

// SetExposureMode stages the exposure mode. The mode must be supported.
func (h *Handle) SetExposureMode(m ExposureMode) error {
	if !h.desc.IsExposureModeSupported(m) {
		return camerr.Unsupported("exposure mode", m)
	}
	return h.stage("SetExposureMode", metadata.NewByteItem(metadata.TagExposureMode, uint8(m)))
}

// SetExposurePoint sets the metering point. Coordinates are clamped to [0,1].
func (h *Handle) SetExposurePoint(p Point) error {
	p = clampPoint(p)
	return h.stage("SetExposurePoint", metadata.NewFloatItem(metadata.TagExposurePoint, float32(p.X), float32(p.Y)))
}

// SetExposureBias sets exposure compensation in EV, clamped to the supported
// range and rounded to the nearest step.
func (h *Handle) SetExposureBias(ev float64) error {
	rng, ok := h.desc.ExposureBiasRange()
	if !ok || math.IsNaN(ev) {
		return camerr.Unsupported("exposure bias", ev)
	}
	step, _ := h.desc.ExposureBiasStep()
	steps := int32(math.Round(rng.Clamp(ev) / step))
	return h.stage("SetExposureBias", metadata.NewInt32Item(metadata.TagExposureBias, steps))
}

// SetFocusMode stages the focus mode. The mode must be supported.
func (h *Handle) SetFocusMode(m FocusMode) error {
	if !h.desc.IsFocusModeSupported(m) {
		return camerr.Unsupported("focus mode", m)
	}
	return h.stage("SetFocusMode", metadata.NewByteItem(metadata.TagFocusMode, uint8(m)))
}

// SetFocusPoint sets the focus point. Coordinates are clamped to [0,1].
func (h *Handle) SetFocusPoint(p Point) error {
	p = clampPoint(p)
	return h.stage("SetFocusPoint", metadata.NewFloatItem(metadata.TagFocusPoint, float32(p.X), float32(p.Y)))
}

// SetZoomRatio sets the zoom ratio, clamped to the supported range.
func (h *Handle) SetZoomRatio(ratio float64) error {
	rng, ok := h.desc.ZoomRatioRange()
	if !ok || math.IsNaN(ratio) {
		return camerr.Unsupported("zoom ratio", ratio)
	}
	ratio = rng.Clamp(ratio)
	if ratio <= 0 {
		return camerr.Unsupported("zoom ratio", ratio)
	}
	return h.stage("SetZoomRatio", metadata.NewFloatItem(metadata.TagZoomRatio, float32(ratio)))
}

// SetVideoStabilizationMode stages the stabilization mode. The mode must be
// supported.
func (h *Handle) SetVideoStabilizationMode(m StabilizationMode) error {
	if !h.desc.IsStabilizationModeSupported(m) {
		return camerr.Unsupported("video stabilization mode", m)
	}
	return h.stage("SetVideoStabilizationMode", metadata.NewByteItem(metadata.TagVideoStabilizationMode, uint8(m)))
}

// SetFrameRateRange sets the capture fps range. It must fit within one of
// the supported ranges.
func (h *Handle) SetFrameRateRange(r IntRange) error {
	if !h.desc.IsFrameRateRangeSupported(r) {
		return camerr.Unsupported("frame rate range", r)
	}
	return h.stage("SetFrameRateRange", metadata.NewInt32Item(metadata.TagFPSRange, r.Min, r.Max))
}

// FlashMode returns the committed flash mode.
func (h *Handle) FlashMode() (FlashMode, bool) {
	v, ok := h.desc.Capabilities().Byte(metadata.TagFlashMode)
	return FlashMode(v), ok
}

// ExposureMode returns the committed exposure mode.
func (h *Handle) ExposureMode() (ExposureMode, bool) {
	v, ok := h.desc.Capabilities().Byte(metadata.TagExposureMode)
	return ExposureMode(v), ok
}

// ExposurePoint returns the committed metering point.
func (h *Handle) ExposurePoint() (Point, bool) {
	return pointOf(h.desc.Capabilities(), metadata.TagExposurePoint)
}

// ExposureValue returns the committed exposure compensation in EV.
func (h *Handle) ExposureValue() (float64, bool) {
	steps, ok := h.desc.Capabilities().Int32(metadata.TagExposureBias)
	if !ok {
		return 0, false
	}
	step, ok := h.desc.ExposureBiasStep()
	if !ok {
		step = 1
	}
	return float64(steps) * step, true
}

// FocusMode returns the committed focus mode.
func (h *Handle) FocusMode() (FocusMode, bool) {
	v, ok := h.desc.Capabilities().Byte(metadata.TagFocusMode)
	return FocusMode(v), ok
}

// FocusPoint returns the committed focus point.
func (h *Handle) FocusPoint() (Point, bool) {
	return pointOf(h.desc.Capabilities(), metadata.TagFocusPoint)
}

// ZoomRatio returns the committed zoom ratio.
func (h *Handle) ZoomRatio() (float64, bool) {
	v, ok := h.desc.Capabilities().Float(metadata.TagZoomRatio)
	return float64(v), ok
}

// VideoStabilizationMode returns the committed stabilization mode.
func (h *Handle) VideoStabilizationMode() (StabilizationMode, bool) {
	v, ok := h.desc.Capabilities().Byte(metadata.TagVideoStabilizationMode)
	return StabilizationMode(v), ok
}

// FrameRateRange returns the committed frame rate range.
func (h *Handle) FrameRateRange() (IntRange, bool) {
	v, ok := h.desc.Capabilities().Int32List(metadata.TagFPSRange)
	if !ok || len(v) < 2 {
		return IntRange{}, false
	}
	return IntRange{Min: v[0], Max: v[1]}, true
}

// SetFocusStateListener registers fn for focus state changes. nil clears it.
func (h *Handle) SetFocusStateListener(fn func(FocusState)) {
	h.listenerMu.Lock()
	defer h.listenerMu.Unlock()
	h.focusListener = fn
}

// SetExposureStateListener registers fn for exposure state changes. nil clears it.
func (h *Handle) SetExposureStateListener(fn func(ExposureState)) {
	h.listenerMu.Lock()
	defer h.listenerMu.Unlock()
	h.exposureListener = fn
}

// SetErrorListener registers fn for device errors. nil clears it.
func (h *Handle) SetErrorListener(fn func(*DeviceError)) {
	h.listenerMu.Lock()
	defer h.listenerMu.Unlock()
	h.errorListener = fn
}

// WatchErrors registers fn for device errors alongside the error listener.
// Sessions use it to surface failures of their input. The returned function
// removes the watcher.
func (h *Handle) WatchErrors(fn func(*DeviceError)) (cancel func()) {
	h.listenerMu.Lock()
	defer h.listenerMu.Unlock()
	if h.watchers == nil {
		h.watchers = make(map[int]func(*DeviceError))
	}
	id := h.nextWatcher
	h.nextWatcher++
	h.watchers[id] = fn
	return func() {
		h.listenerMu.Lock()
		defer h.listenerMu.Unlock()
		delete(h.watchers, id)
	}
}

// OnDeviceResult inspects a result for focus and exposure state and notifies
// the registered listeners.
func (h *Handle) OnDeviceResult(_ int64, result *metadata.Store) {
	if result == nil {
		return
	}
	if raw, ok := result.Byte(metadata.TagFocusState); ok {
		if state, ok := focusStateOf(raw); ok {
			h.listenerMu.RLock()
			fn := h.focusListener
			h.listenerMu.RUnlock()
			if fn != nil {
				h.post(func() { fn(state) })
			}
		}
	}
	if raw, ok := result.Byte(metadata.TagExposureState); ok {
		if state, ok := exposureStateOf(raw); ok {
			h.listenerMu.RLock()
			fn := h.exposureListener
			h.listenerMu.RUnlock()
			if fn != nil {
				h.post(func() { fn(state) })
			}
		}
	}
}

// OnDeviceError forwards a device error to the error listener.
func (h *Handle) OnDeviceError(code int32, msg string) {
	derr := &DeviceError{DeviceID: h.desc.ID(), Code: code, Message: msg}

	h.listenerMu.RLock()
	fns := make([]func(*DeviceError), 0, len(h.watchers)+1)
	if h.errorListener != nil {
		fns = append(fns, h.errorListener)
	}
	for _, w := range h.watchers {
		fns = append(fns, w)
	}
	h.listenerMu.RUnlock()

	if len(fns) == 0 {
		h.logger.Warn("device error without listener", "device_id", h.desc.ID(), "code", code, "message", msg)
		return
	}
	for _, fn := range fns {
		h.post(func() { fn(derr) })
	}
}

func (h *Handle) post(fn func()) {
	if !h.poster.Post(fn) {
		h.logger.Debug("device callback dropped", "device_id", h.desc.ID())
	}
}

func focusStateOf(raw uint8) (FocusState, bool) {
	switch raw {
	case metadata.AFStatePassiveScan, metadata.AFStateActiveScan:
		return FocusStateScan, true
	case metadata.AFStatePassiveFocused, metadata.AFStateFocusedLocked:
		return FocusStateFocused, true
	case metadata.AFStateNotFocusedLocked, metadata.AFStatePassiveUnfocused:
		return FocusStateUnfocused, true
	default:
		return 0, false
	}
}

func exposureStateOf(raw uint8) (ExposureState, bool) {
	switch raw {
	case metadata.AEStateSearching:
		return ExposureStateScan, true
	case metadata.AEStateConverged, metadata.AEStateLocked, metadata.AEStateFlashRequired:
		return ExposureStateConverged, true
	default:
		return 0, false
	}
}

func clampPoint(p Point) Point {
	unit := FloatRange{Min: 0, Max: 1}
	if math.IsNaN(p.X) {
		p.X = 0
	}
	if math.IsNaN(p.Y) {
		p.Y = 0
	}
	return Point{X: unit.Clamp(p.X), Y: unit.Clamp(p.Y)}
}

func pointOf(s *metadata.Store, tag uint32) (Point, bool) {
	v, ok := s.FloatList(tag)
	if !ok || len(v) < 2 {
		return Point{}, false
	}
	return Point{X: float64(v[0]), Y: float64(v[1])}, true
}
