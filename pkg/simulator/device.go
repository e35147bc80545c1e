package simulator

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/camkit-project/camkit-go/pkg/device"
	"github.com/camkit-project/camkit-go/pkg/metadata"
	"github.com/camkit-project/camkit-go/pkg/remote"
	"github.com/camkit-project/camkit-go/pkg/wire"
)

// Device is an acquired simulated camera.
type Device struct {
	svc    *Service
	cam    *camera
	handle uint32
	cb     remote.DeviceCallbacks

	mu           sync.Mutex
	opened       bool
	released     bool
	disconnected bool
	settings     *metadata.Store

	// settle generation; a newer update supersedes pending converged results
	generation uint64
}

var _ remote.Device = (*Device)(nil)

func newDevice(svc *Service, cam *camera, cb remote.DeviceCallbacks) *Device {
	return &Device{
		svc:      svc,
		cam:      cam,
		handle:   svc.allocHandle(),
		cb:       cb,
		settings: metadata.NewStore(0, 0),
	}
}

// Handle returns the service handle of the device.
func (d *Device) Handle() uint32 { return d.handle }

// ID returns the camera identifier.
func (d *Device) ID() string { return d.cam.profile.ID }

// checkLocked reports why the device cannot be used, if it cannot.
func (d *Device) checkLocked(op string) error {
	switch {
	case d.disconnected:
		return remote.StatusError(op, wire.StatusDeviceDisconnected, "camera %q was removed", d.ID())
	case d.released:
		return remote.StatusError(op, wire.StatusDeviceClosed, "camera %q handle released", d.ID())
	}
	return nil
}

func (d *Device) usable() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.checkLocked("Device")
}

// Open starts the sensor.
func (d *Device) Open(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLocked("DeviceOpen"); err != nil {
		return err
	}
	d.opened = true
	return nil
}

// Close stops the sensor. The camera stays acquired until Release.
func (d *Device) Close(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLocked("DeviceClose"); err != nil {
		return err
	}
	d.opened = false
	return nil
}

// Release gives the camera back. Releasing twice is not an error.
func (d *Device) Release(ctx context.Context) error {
	d.mu.Lock()
	if d.released {
		d.mu.Unlock()
		return nil
	}
	d.released = true
	d.opened = false
	d.generation++
	d.mu.Unlock()

	d.svc.releaseCamera(d)
	return nil
}

// UpdateSetting validates and applies control settings atomically, then
// reports focus and exposure state changes for the touched controls.
func (d *Device) UpdateSetting(ctx context.Context, settings *metadata.Store) error {
	const op = "UpdateSetting"

	d.mu.Lock()
	if err := d.checkLocked(op); err != nil {
		d.mu.Unlock()
		return err
	}
	for _, it := range settings.Items() {
		if err := d.validate(op, it); err != nil {
			d.mu.Unlock()
			d.svc.logger.Warn("setting rejected",
				slog.String("device_id", d.ID()),
				slog.String("tag", metadata.TagName(it.Tag)),
				slog.Any("error", err))
			return err
		}
	}
	changed := d.settings.Merge(settings)
	d.generation++
	gen := d.generation
	scan, settled := d.resultsLocked(changed)
	d.mu.Unlock()

	d.report(gen, scan, settled)
	return nil
}

// validate checks one control item against the capabilities.
func (d *Device) validate(op string, it metadata.Item) error {
	caps := d.cam.caps
	invalid := func(format string, args ...any) error {
		return remote.StatusError(op, wire.StatusInvalidArgument, format, args...)
	}

	switch it.Tag {
	case metadata.TagFlashMode:
		return d.checkMode(op, it, metadata.TagFlashModes)
	case metadata.TagExposureMode:
		return d.checkMode(op, it, metadata.TagExposureModes)
	case metadata.TagFocusMode:
		return d.checkMode(op, it, metadata.TagFocusModes)
	case metadata.TagVideoStabilizationMode:
		return d.checkMode(op, it, metadata.TagVideoStabilizationModes)

	case metadata.TagExposurePoint, metadata.TagFocusPoint:
		p, ok := it.Floats()
		if !ok || len(p) != 2 || !unit(p[0]) || !unit(p[1]) {
			return invalid("%s must be a point in [0,1]", metadata.TagName(it.Tag))
		}

	case metadata.TagExposureBias:
		v, ok := it.Int32s()
		r, _ := caps.Int32List(metadata.TagExposureBiasRange)
		if !ok || len(v) != 1 || len(r) < 2 || v[0] < r[0] || v[0] > r[1] {
			return invalid("exposure bias out of range")
		}

	case metadata.TagZoomRatio:
		v, ok := it.Floats()
		r, has := caps.Int32List(metadata.TagZoomRatioRange)
		if !has || len(r) < 2 {
			return remote.StatusError(op, wire.StatusUnsupported, "camera %q has no zoom", d.ID())
		}
		lo, hi := float64(r[0])/100, float64(r[1])/100
		if !ok || len(v) != 1 || float64(v[0]) < lo-1e-6 || float64(v[0]) > hi+1e-6 {
			return invalid("zoom ratio outside [%g,%g]", lo, hi)
		}

	case metadata.TagFPSRange:
		v, ok := it.Int32s()
		if !ok || len(v) != 2 {
			return invalid("fps range needs [min,max]")
		}
		ranges, _ := caps.Int32List(metadata.TagFPSRanges)
		for i := 0; i+1 < len(ranges); i += 2 {
			if v[0] >= ranges[i] && v[1] <= ranges[i+1] && v[0] <= v[1] {
				return nil
			}
		}
		return remote.StatusError(op, wire.StatusUnsupported, "fps range [%d,%d]", v[0], v[1])

	default:
		if it.Tag&0xFFFF0000 != metadata.SectionControl {
			return invalid("%s is not a control", metadata.TagName(it.Tag))
		}
	}
	return nil
}

func (d *Device) checkMode(op string, it metadata.Item, listTag uint32) error {
	v, ok := it.Bytes()
	if !ok || len(v) != 1 {
		return remote.StatusError(op, wire.StatusInvalidArgument, "%s needs one byte", metadata.TagName(it.Tag))
	}
	modes, _ := d.cam.caps.ByteList(listTag)
	if !slices.Contains(modes, v[0]) {
		return remote.StatusError(op, wire.StatusUnsupported, "%s %d", metadata.TagName(it.Tag), v[0])
	}
	return nil
}

func unit(v float32) bool {
	return !math.IsNaN(float64(v)) && v >= 0 && v <= 1
}

// resultsLocked builds the immediate and the converged result for the
// changed tags. Either may be empty.
func (d *Device) resultsLocked(changed []uint32) (scan, settled *metadata.Store) {
	scan, settled = metadata.NewStore(0, 0), metadata.NewStore(0, 0)

	touched := func(tags ...uint32) bool {
		for _, t := range tags {
			if slices.Contains(changed, t) {
				return true
			}
		}
		return false
	}

	if touched(metadata.TagFocusMode, metadata.TagFocusPoint) && d.cam.caps.Has(metadata.TagFocusModes) {
		mode := device.FocusModeContinuousAuto
		if v, ok := d.settings.Byte(metadata.TagFocusMode); ok {
			mode = device.FocusMode(v)
		}
		switch mode {
		case device.FocusModeContinuousAuto:
			_ = scan.Set(metadata.NewByteItem(metadata.TagFocusState, metadata.AFStatePassiveScan))
			_ = settled.Set(metadata.NewByteItem(metadata.TagFocusState, metadata.AFStatePassiveFocused))
		case device.FocusModeAuto:
			_ = scan.Set(metadata.NewByteItem(metadata.TagFocusState, metadata.AFStateActiveScan))
			_ = settled.Set(metadata.NewByteItem(metadata.TagFocusState, metadata.AFStateFocusedLocked))
		default:
			_ = scan.Set(metadata.NewByteItem(metadata.TagFocusState, metadata.AFStateFocusedLocked))
		}
	}

	if touched(metadata.TagExposureMode, metadata.TagExposurePoint, metadata.TagExposureBias) {
		mode := device.ExposureModeContinuousAuto
		if v, ok := d.settings.Byte(metadata.TagExposureMode); ok {
			mode = device.ExposureMode(v)
		}
		if mode == device.ExposureModeLocked {
			_ = scan.Set(metadata.NewByteItem(metadata.TagExposureState, metadata.AEStateLocked))
		} else {
			_ = scan.Set(metadata.NewByteItem(metadata.TagExposureState, metadata.AEStateSearching))
			_ = settled.Set(metadata.NewByteItem(metadata.TagExposureState, metadata.AEStateConverged))
		}
	}
	return scan, settled
}

// report emits scan now and settled after the settle delay, unless a
// newer update or a release happened in between.
func (d *Device) report(gen uint64, scan, settled *metadata.Store) {
	if d.cb == nil {
		return
	}
	if scan.Len() > 0 {
		d.svc.emit(func() { d.cb.OnDeviceResult(time.Now().UnixNano(), scan) })
	}
	if settled.Len() == 0 {
		return
	}
	time.AfterFunc(d.svc.cfg.SettleDelay, func() {
		d.mu.Lock()
		current := d.generation == gen && !d.disconnected
		d.mu.Unlock()
		if current {
			d.svc.emit(func() { d.cb.OnDeviceResult(time.Now().UnixNano(), settled) })
		}
	})
}

// disconnect marks the device removed and reports it to the holder.
func (d *Device) disconnect() {
	d.mu.Lock()
	if d.disconnected {
		d.mu.Unlock()
		return
	}
	d.disconnected = true
	d.opened = false
	d.generation++
	released := d.released
	d.mu.Unlock()

	if d.cb != nil && !released {
		d.svc.emit(func() { d.cb.OnDeviceError(int32(wire.StatusDeviceDisconnected), "device removed") })
	}
}

func (d *Device) snapshot() (bool, *metadata.Store) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opened, d.settings.Clone()
}
