package simulator

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/camkit-project/camkit-go/pkg/device"
	"github.com/camkit-project/camkit-go/pkg/metadata"
	"github.com/camkit-project/camkit-go/pkg/remote"
)

// ErrInvalidProfile is returned when a camera profile cannot describe a device.
var ErrInvalidProfile = errors.New("invalid camera profile")

// Profile describes one simulated camera.
type Profile struct {
	ID                string          `yaml:"id" json:"id"`
	Position          string          `yaml:"position" json:"position"`
	Type              string          `yaml:"type" json:"type"`
	Connection        string          `yaml:"connection" json:"connection"`
	SensorOrientation int32           `yaml:"sensorOrientation" json:"sensorOrientation"`
	Mirror            bool            `yaml:"mirror" json:"mirror"`
	Flash             bool            `yaml:"flash" json:"flash"`
	ZoomMin           float64         `yaml:"zoomMin" json:"zoomMin"`
	ZoomMax           float64         `yaml:"zoomMax" json:"zoomMax"`
	FrameRates        []FrameRate     `yaml:"frameRates" json:"frameRates"`
	FaceDetection     bool            `yaml:"faceDetection" json:"faceDetection"`
	Streams           []StreamProfile `yaml:"streams" json:"streams"`
}

// FrameRate is a supported [Min, Max] frame-rate range.
type FrameRate struct {
	Min int32 `yaml:"min" json:"min"`
	Max int32 `yaml:"max" json:"max"`
}

// StreamProfile is one supported stream configuration.
type StreamProfile struct {
	Kind   string `yaml:"kind" json:"kind"`
	Format string `yaml:"format" json:"format"`
	Width  uint32 `yaml:"width" json:"width"`
	Height uint32 `yaml:"height" json:"height"`
}

var (
	positionNames = map[string]device.Position{
		"":            device.PositionUnspecified,
		"unspecified": device.PositionUnspecified,
		"back":        device.PositionBack,
		"front":       device.PositionFront,
	}
	typeNames = map[string]device.Type{
		"":          device.TypeDefault,
		"default":   device.TypeDefault,
		"wide":      device.TypeWideAngle,
		"ultrawide": device.TypeUltraWide,
		"telephoto": device.TypeTelephoto,
		"truedepth": device.TypeTrueDepth,
	}
	connectionNames = map[string]device.ConnectionType{
		"":        device.ConnectionBuiltIn,
		"builtin": device.ConnectionBuiltIn,
		"usb":     device.ConnectionUSB,
		"remote":  device.ConnectionRemote,
	}
	kindNames = map[string]remote.StreamKind{
		"preview":  remote.StreamPreview,
		"photo":    remote.StreamPhoto,
		"video":    remote.StreamVideo,
		"metadata": remote.StreamMetadata,
	}
	formatNames = map[string]remote.Format{
		"":         remote.FormatUnknown,
		"yuv420":   remote.FormatYUV420,
		"rgba8888": remote.FormatRGBA8888,
		"jpeg":     remote.FormatJPEG,
	}
)

// focal lengths in millimetres, 35mm equivalent
var focalLengths = map[device.Type]int32{
	device.TypeDefault:   26,
	device.TypeWideAngle: 26,
	device.TypeUltraWide: 13,
	device.TypeTelephoto: 77,
	device.TypeTrueDepth: 23,
}

func lookup[T any](names map[string]T, field, value string) (T, error) {
	v, ok := names[strings.ToLower(value)]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: unknown %s %q", ErrInvalidProfile, field, value)
	}
	return v, nil
}

// DefaultProfiles returns a back wide-angle camera and a front camera.
func DefaultProfiles() []Profile {
	return []Profile{
		{
			ID:                "back-wide",
			Position:          "back",
			Type:              "wide",
			Connection:        "builtin",
			SensorOrientation: 90,
			Flash:             true,
			ZoomMin:           1,
			ZoomMax:           8,
			FrameRates:        []FrameRate{{Min: 15, Max: 30}, {Min: 30, Max: 30}, {Min: 30, Max: 60}},
			FaceDetection:     true,
			Streams: []StreamProfile{
				{Kind: "preview", Format: "yuv420", Width: 1920, Height: 1080},
				{Kind: "preview", Format: "yuv420", Width: 1280, Height: 720},
				{Kind: "photo", Format: "jpeg", Width: 4032, Height: 3024},
				{Kind: "video", Format: "yuv420", Width: 1920, Height: 1080},
				{Kind: "video", Format: "yuv420", Width: 3840, Height: 2160},
				{Kind: "metadata"},
			},
		},
		{
			ID:                "front",
			Position:          "front",
			Type:              "truedepth",
			Connection:        "builtin",
			SensorOrientation: 270,
			Mirror:            true,
			ZoomMin:           1,
			ZoomMax:           2,
			FrameRates:        []FrameRate{{Min: 15, Max: 30}},
			FaceDetection:     true,
			Streams: []StreamProfile{
				{Kind: "preview", Format: "yuv420", Width: 1280, Height: 720},
				{Kind: "photo", Format: "jpeg", Width: 3088, Height: 2316},
				{Kind: "video", Format: "yuv420", Width: 1280, Height: 720},
				{Kind: "metadata"},
			},
		},
	}
}

// Validate checks that the profile describes a usable device.
func (p Profile) Validate() error {
	_, err := p.Capabilities()
	return err
}

// Specs returns the stream configurations of the profile.
func (p Profile) Specs() ([]remote.StreamSpec, error) {
	if len(p.Streams) == 0 {
		return nil, fmt.Errorf("%w: camera %q has no streams", ErrInvalidProfile, p.ID)
	}
	specs := make([]remote.StreamSpec, 0, len(p.Streams))
	for _, sp := range p.Streams {
		kind, err := lookup(kindNames, "stream kind", sp.Kind)
		if err != nil {
			return nil, err
		}
		format, err := lookup(formatNames, "stream format", sp.Format)
		if err != nil {
			return nil, err
		}
		if kind != remote.StreamMetadata && (sp.Width == 0 || sp.Height == 0 || format == remote.FormatUnknown) {
			return nil, fmt.Errorf("%w: camera %q %s stream needs format and size", ErrInvalidProfile, p.ID, kind)
		}
		specs = append(specs, remote.StreamSpec{Kind: kind, Format: format, Width: sp.Width, Height: sp.Height})
	}
	return specs, nil
}

// Capabilities builds the capability store advertised at enumeration.
func (p Profile) Capabilities() (*metadata.Store, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidProfile)
	}
	pos, err := lookup(positionNames, "position", p.Position)
	if err != nil {
		return nil, err
	}
	typ, err := lookup(typeNames, "type", p.Type)
	if err != nil {
		return nil, err
	}
	conn, err := lookup(connectionNames, "connection", p.Connection)
	if err != nil {
		return nil, err
	}
	if len(p.FrameRates) == 0 {
		return nil, fmt.Errorf("%w: camera %q has no frame rates", ErrInvalidProfile, p.ID)
	}
	fps := make([]int32, 0, 2*len(p.FrameRates))
	for _, r := range p.FrameRates {
		if r.Min <= 0 || r.Max < r.Min {
			return nil, fmt.Errorf("%w: camera %q frame rate [%d,%d]", ErrInvalidProfile, p.ID, r.Min, r.Max)
		}
		fps = append(fps, r.Min, r.Max)
	}
	specs, err := p.Specs()
	if err != nil {
		return nil, err
	}
	tuples := make([]int32, 0, 4*len(specs))
	for _, s := range specs {
		tuples = append(tuples, int32(s.Kind), int32(s.Format), int32(s.Width), int32(s.Height))
	}

	items := []metadata.Item{
		metadata.NewByteItem(metadata.TagCameraPosition, uint8(pos)),
		metadata.NewByteItem(metadata.TagCameraType, uint8(typ)),
		metadata.NewByteItem(metadata.TagCameraConnectionType, uint8(conn)),
		metadata.NewByteItem(metadata.TagMirrorSupported, boolByte(p.Mirror)),
		metadata.NewInt32Item(metadata.TagSensorOrientation, p.SensorOrientation),
		metadata.NewRationalItem(metadata.TagFocalLength, metadata.Rational{Numerator: focalLengths[typ], Denominator: 1}),
		metadata.NewInt32Item(metadata.TagExposureBiasRange, -4, 4),
		metadata.NewRationalItem(metadata.TagExposureBiasStep, metadata.Rational{Numerator: 1, Denominator: 2}),
		metadata.NewByteItem(metadata.TagExposureModes,
			uint8(device.ExposureModeLocked), uint8(device.ExposureModeAuto), uint8(device.ExposureModeContinuousAuto)),
		metadata.NewByteItem(metadata.TagVideoStabilizationModes,
			uint8(device.StabilizationOff), uint8(device.StabilizationMiddle), uint8(device.StabilizationAuto)),
		metadata.NewInt32Item(metadata.TagFPSRanges, fps...),
		metadata.NewInt32Item(metadata.TagStreamConfigurations, tuples...),
		metadata.NewByteItem(metadata.TagFlashAvailable, boolByte(p.Flash)),
	}

	if p.ZoomMin != 0 || p.ZoomMax != 0 {
		if p.ZoomMin <= 0 || p.ZoomMax < p.ZoomMin {
			return nil, fmt.Errorf("%w: camera %q zoom [%g,%g]", ErrInvalidProfile, p.ID, p.ZoomMin, p.ZoomMax)
		}
		items = append(items, metadata.NewInt32Item(metadata.TagZoomRatioRange,
			int32(math.Round(p.ZoomMin*100)), int32(math.Round(p.ZoomMax*100))))
	}
	if p.Flash {
		items = append(items, metadata.NewByteItem(metadata.TagFlashModes,
			uint8(device.FlashModeClose), uint8(device.FlashModeOpen), uint8(device.FlashModeAuto), uint8(device.FlashModeAlwaysOpen)))
	}
	// fixed-focus front sensors
	if typ != device.TypeTrueDepth {
		items = append(items, metadata.NewByteItem(metadata.TagFocusModes,
			uint8(device.FocusModeManual), uint8(device.FocusModeContinuousAuto), uint8(device.FocusModeAuto), uint8(device.FocusModeLocked)))
	}
	if p.FaceDetection {
		items = append(items, metadata.NewByteItem(metadata.TagMetadataObjectTypes, uint8(remote.MetadataObjectFace)))
	}

	return metadata.NewStoreFromItems(items...)
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
