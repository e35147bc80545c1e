package device

import (
	"slices"
	"sync"

	"github.com/camkit-project/camkit-go/pkg/metadata"
	"github.com/camkit-project/camkit-go/pkg/remote"
)

// zoomFixedPointScale is the divisor for int32 zoom ratio ranges.
const zoomFixedPointScale = 100

// StreamConfiguration is one supported (kind, format, size) combination.
type StreamConfiguration struct {
	Kind   remote.StreamKind
	Format remote.Format
	Width  uint32
	Height uint32
}

// Matches reports whether spec uses this configuration.
func (c StreamConfiguration) Matches(spec remote.StreamSpec) bool {
	return c.Kind == spec.Kind && c.Format == spec.Format &&
		c.Width == spec.Width && c.Height == spec.Height
}

// Descriptor identifies a camera and carries its capabilities.
//
// Position, type, connection type and mirror support are derived once at
// construction. Zoom and exposure bias ranges are derived on first use.
type Descriptor struct {
	id   string
	caps *metadata.Store

	position   Position
	typ        Type
	connection ConnectionType
	mirror     bool

	zoomOnce  sync.Once
	zoomRange FloatRange
	zoomOK    bool

	biasOnce  sync.Once
	biasRange IntRange
	biasStep  float64
	biasOK    bool
}

// NewDescriptor builds a descriptor from the capabilities reported for id.
// The descriptor keeps its own copy of caps.
func NewDescriptor(id string, caps *metadata.Store) *Descriptor {
	if caps == nil {
		caps = metadata.NewStore(metadata.DefaultItemCapacity, metadata.DefaultDataCapacity)
	} else {
		caps = caps.Clone()
	}

	d := &Descriptor{id: id, caps: caps}
	if v, ok := caps.Byte(metadata.TagCameraPosition); ok {
		d.position = Position(v)
	}
	if v, ok := caps.Byte(metadata.TagCameraType); ok {
		d.typ = Type(v)
	}
	if v, ok := caps.Byte(metadata.TagCameraConnectionType); ok {
		d.connection = ConnectionType(v)
	}
	if v, ok := caps.Byte(metadata.TagMirrorSupported); ok {
		d.mirror = v != 0
	}
	return d
}

// ID returns the device identifier.
func (d *Descriptor) ID() string { return d.id }

// Capabilities returns the live capability mirror. Locked transactions
// merge committed control values into it.
func (d *Descriptor) Capabilities() *metadata.Store { return d.caps }

// Position returns where the camera faces. It is PositionUnspecified when
// the capability is absent.
func (d *Descriptor) Position() Position { return d.position }

// Type returns the lens type.
func (d *Descriptor) Type() Type { return d.typ }

// ConnectionType returns how the camera is attached.
func (d *Descriptor) ConnectionType() ConnectionType { return d.connection }

// IsMirrorSupported reports whether outputs can be mirrored.
func (d *Descriptor) IsMirrorSupported() bool { return d.mirror }

// SensorOrientation returns the sensor mounting angle in degrees.
func (d *Descriptor) SensorOrientation() (int32, bool) {
	return d.caps.Int32(metadata.TagSensorOrientation)
}

// FocalLength returns the lens focal length in millimetres.
func (d *Descriptor) FocalLength() (metadata.Rational, bool) {
	return d.caps.Rational(metadata.TagFocalLength)
}

// ZoomRatioRange returns the supported zoom ratio range. The capability is
// either an int32 fixed-point pair (x100) or a float pair.
func (d *Descriptor) ZoomRatioRange() (FloatRange, bool) {
	d.zoomOnce.Do(func() {
		var lo, hi float64
		if v, ok := d.caps.Int32List(metadata.TagZoomRatioRange); ok && len(v) >= 2 {
			lo = float64(v[0]) / zoomFixedPointScale
			hi = float64(v[1]) / zoomFixedPointScale
		} else if v, ok := d.caps.FloatList(metadata.TagZoomRatioRange); ok && len(v) >= 2 {
			lo, hi = float64(v[0]), float64(v[1])
		} else {
			return
		}
		if lo <= 0 || hi < lo {
			return
		}
		d.zoomRange = FloatRange{Min: lo, Max: hi}
		d.zoomOK = true
	})
	return d.zoomRange, d.zoomOK
}

func (d *Descriptor) loadBias() {
	d.biasOnce.Do(func() {
		v, ok := d.caps.Int32List(metadata.TagExposureBiasRange)
		if !ok || len(v) < 2 || v[1] < v[0] {
			return
		}
		d.biasRange = IntRange{Min: v[0], Max: v[1]}
		d.biasStep = 1
		if r, ok := d.caps.Rational(metadata.TagExposureBiasStep); ok && r.Denominator != 0 && r.Numerator != 0 {
			d.biasStep = r.Float64()
		}
		d.biasOK = true
	})
}

// ExposureBiasRange returns the supported exposure compensation in EV.
func (d *Descriptor) ExposureBiasRange() (FloatRange, bool) {
	d.loadBias()
	if !d.biasOK {
		return FloatRange{}, false
	}
	return FloatRange{
		Min: float64(d.biasRange.Min) * d.biasStep,
		Max: float64(d.biasRange.Max) * d.biasStep,
	}, true
}

// ExposureBiasStep returns the EV value of one compensation step.
func (d *Descriptor) ExposureBiasStep() (float64, bool) {
	d.loadBias()
	return d.biasStep, d.biasOK
}

// HasFlash reports whether the camera has a flash unit.
func (d *Descriptor) HasFlash() bool {
	v, ok := d.caps.Byte(metadata.TagFlashAvailable)
	return ok && v != 0
}

// FlashModes returns the supported flash modes.
func (d *Descriptor) FlashModes() []FlashMode {
	return byteModes[FlashMode](d.caps, metadata.TagFlashModes)
}

// ExposureModes returns the supported exposure modes.
func (d *Descriptor) ExposureModes() []ExposureMode {
	return byteModes[ExposureMode](d.caps, metadata.TagExposureModes)
}

// FocusModes returns the supported focus modes.
func (d *Descriptor) FocusModes() []FocusMode {
	return byteModes[FocusMode](d.caps, metadata.TagFocusModes)
}

// StabilizationModes returns the supported video stabilization modes.
func (d *Descriptor) StabilizationModes() []StabilizationMode {
	return byteModes[StabilizationMode](d.caps, metadata.TagVideoStabilizationModes)
}

// MetadataObjectTypes returns the object types the camera can detect.
func (d *Descriptor) MetadataObjectTypes() []remote.MetadataObjectType {
	return byteModes[remote.MetadataObjectType](d.caps, metadata.TagMetadataObjectTypes)
}

// IsFlashModeSupported reports whether m is listed in FlashModes.
func (d *Descriptor) IsFlashModeSupported(m FlashMode) bool {
	return slices.Contains(d.FlashModes(), m)
}

// IsExposureModeSupported reports whether m is listed in ExposureModes.
func (d *Descriptor) IsExposureModeSupported(m ExposureMode) bool {
	return slices.Contains(d.ExposureModes(), m)
}

// IsFocusModeSupported reports whether m is listed in FocusModes.
func (d *Descriptor) IsFocusModeSupported(m FocusMode) bool {
	return slices.Contains(d.FocusModes(), m)
}

// IsStabilizationModeSupported reports whether m is listed in
// StabilizationModes.
func (d *Descriptor) IsStabilizationModeSupported(m StabilizationMode) bool {
	return slices.Contains(d.StabilizationModes(), m)
}

// FrameRateRanges returns the supported [min,max] fps pairs.
func (d *Descriptor) FrameRateRanges() []IntRange {
	v, ok := d.caps.Int32List(metadata.TagFPSRanges)
	if !ok {
		return nil
	}
	out := make([]IntRange, 0, len(v)/2)
	for i := 0; i+1 < len(v); i += 2 {
		out = append(out, IntRange{Min: v[i], Max: v[i+1]})
	}
	return out
}

// IsFrameRateRangeSupported reports whether r fits in one supported range.
func (d *Descriptor) IsFrameRateRangeSupported(r IntRange) bool {
	if r.Min <= 0 || r.Max < r.Min {
		return false
	}
	for _, s := range d.FrameRateRanges() {
		if s.Covers(r) {
			return true
		}
	}
	return false
}

// StreamConfigurations returns the supported stream configurations, optionally
// filtered by kind.
func (d *Descriptor) StreamConfigurations(kinds ...remote.StreamKind) []StreamConfiguration {
	v, ok := d.caps.Int32List(metadata.TagStreamConfigurations)
	if !ok {
		return nil
	}
	var out []StreamConfiguration
	for i := 0; i+3 < len(v); i += 4 {
		c := StreamConfiguration{
			Kind:   remote.StreamKind(v[i]),
			Format: remote.Format(v[i+1]),
			Width:  uint32(v[i+2]),
			Height: uint32(v[i+3]),
		}
		if len(kinds) > 0 && !slices.Contains(kinds, c.Kind) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// SupportsStream reports whether spec matches a reported configuration.
func (d *Descriptor) SupportsStream(spec remote.StreamSpec) bool {
	for _, c := range d.StreamConfigurations(spec.Kind) {
		if c.Matches(spec) {
			return true
		}
	}
	return false
}

func byteModes[T ~uint8](caps *metadata.Store, tag uint32) []T {
	v, ok := caps.ByteList(tag)
	if !ok {
		return nil
	}
	out := make([]T, len(v))
	for i, b := range v {
		out[i] = T(b)
	}
	return out
}
