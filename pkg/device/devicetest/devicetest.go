// Package devicetest provides capability fixtures and handle helpers for
// tests of packages built on top of device handles.
package devicetest

import (
	"context"
	"testing"

	"github.com/camkit-project/camkit-go/pkg/device"
	"github.com/camkit-project/camkit-go/pkg/dispatch"
	"github.com/camkit-project/camkit-go/pkg/metadata"
	"github.com/camkit-project/camkit-go/pkg/remote"
	"github.com/camkit-project/camkit-go/pkg/remote/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Stream configurations advertised by Capabilities.
var (
	Preview  = remote.StreamSpec{Kind: remote.StreamPreview, Format: remote.FormatYUV420, Width: 1280, Height: 720}
	Photo    = remote.StreamSpec{Kind: remote.StreamPhoto, Format: remote.FormatJPEG, Width: 4032, Height: 3024}
	Video    = remote.StreamSpec{Kind: remote.StreamVideo, Format: remote.FormatYUV420, Width: 1920, Height: 1080}
	Metadata = remote.StreamSpec{Kind: remote.StreamMetadata}
)

// Capabilities returns a back wide-angle camera with zoom 1.0-3.0, exposure
// bias -4..4 steps of 1/2 EV, flash, and the stream configurations above.
func Capabilities() *metadata.Store {
	s, err := metadata.NewStoreFromItems(
		metadata.NewByteItem(metadata.TagCameraPosition, uint8(device.PositionBack)),
		metadata.NewByteItem(metadata.TagCameraType, uint8(device.TypeWideAngle)),
		metadata.NewByteItem(metadata.TagCameraConnectionType, uint8(device.ConnectionBuiltIn)),
		metadata.NewByteItem(metadata.TagMirrorSupported, 1),
		metadata.NewInt32Item(metadata.TagSensorOrientation, 90),
		metadata.NewInt32Item(metadata.TagZoomRatioRange, 100, 300),
		metadata.NewInt32Item(metadata.TagExposureBiasRange, -4, 4),
		metadata.NewRationalItem(metadata.TagExposureBiasStep, metadata.Rational{Numerator: 1, Denominator: 2}),
		metadata.NewByteItem(metadata.TagFlashAvailable, 1),
		metadata.NewByteItem(metadata.TagFlashModes,
			uint8(device.FlashModeClose), uint8(device.FlashModeOpen), uint8(device.FlashModeAuto)),
		metadata.NewByteItem(metadata.TagExposureModes,
			uint8(device.ExposureModeLocked), uint8(device.ExposureModeContinuousAuto)),
		metadata.NewByteItem(metadata.TagFocusModes,
			uint8(device.FocusModeAuto), uint8(device.FocusModeContinuousAuto), uint8(device.FocusModeLocked)),
		metadata.NewByteItem(metadata.TagVideoStabilizationModes,
			uint8(device.StabilizationOff), uint8(device.StabilizationAuto)),
		metadata.NewInt32Item(metadata.TagFPSRanges, 15, 30, 30, 60),
		metadata.NewInt32Item(metadata.TagStreamConfigurations,
			streamTuple(Preview, Photo, Video, Metadata)...),
		metadata.NewByteItem(metadata.TagMetadataObjectTypes, uint8(remote.MetadataObjectFace)),
	)
	if err != nil {
		panic(err)
	}
	return s
}

func streamTuple(specs ...remote.StreamSpec) []int32 {
	var out []int32
	for _, s := range specs {
		out = append(out, int32(s.Kind), int32(s.Format), int32(s.Width), int32(s.Height))
	}
	return out
}

// NewHandle opens a handle on dev for a device described by Capabilities.
// Callbacks run inline.
func NewHandle(t *testing.T, id string, dev remote.Device) *device.Handle {
	t.Helper()
	svc := mocks.NewMockService(t)
	svc.EXPECT().OpenDevice(mock.Anything, id, mock.Anything).Return(dev, nil).Once()

	h, err := device.NewHandle(context.Background(), svc, device.NewDescriptor(id, Capabilities()),
		device.HandleConfig{Poster: dispatch.Inline{}})
	require.NoError(t, err)
	return h
}
