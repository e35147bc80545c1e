package inspect

import (
	"testing"

	"github.com/camkit-project/camkit-go/pkg/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		input   string
		device  string
		tag     uint32
		partial bool
	}{
		{"back-wide", "back-wide", 0, true},
		{" front ", "front", 0, true},
		{"back-wide/zoom.ratioRange", "back-wide", metadata.TagZoomRatioRange, false},
		{"back-wide/FOCUS.MODE", "back-wide", metadata.TagFocusMode, false},
		{"back-wide/0x20007", "back-wide", metadata.TagZoomRatio, false},
		{"back-wide/131077", "back-wide", metadata.TagFocusMode, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := ParsePath(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.device, p.DeviceID)
			assert.Equal(t, tt.tag, p.Tag)
			assert.Equal(t, tt.partial, p.IsPartial)
		})
	}
}

func TestParsePathErrors(t *testing.T) {
	tests := []struct {
		input string
		want  error
	}{
		{"", ErrEmptyPath},
		{"  ", ErrEmptyPath},
		{"/zoom.ratio", ErrInvalidPath},
		{"back-wide/", ErrInvalidPath},
		{"a/b/c", ErrInvalidPath},
		{"back-wide/zoom.nope", ErrUnknownTag},
		{"back-wide/0xZZ", ErrInvalidNumber},
		{"back-wide/99999999999", ErrInvalidNumber},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParsePath(tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPathString(t *testing.T) {
	p, err := ParsePath("back-wide/0x20005")
	require.NoError(t, err)
	assert.Equal(t, "back-wide/focus.mode", p.String())

	p, err = ParsePath("back-wide/0x80000001")
	require.NoError(t, err)
	assert.Equal(t, "back-wide/0x80000001", p.String())

	p, err = ParsePath("front")
	require.NoError(t, err)
	assert.Equal(t, "front", p.String())
}

func TestTagNames(t *testing.T) {
	names := TagNames()
	assert.Len(t, names, len(knownTags))
	assert.IsIncreasing(t, names)
	for _, n := range names {
		tag, ok := ResolveTagName(n)
		require.True(t, ok, n)
		assert.Equal(t, n, metadata.TagName(tag))
	}

	assert.Equal(t, []string{"jpeg.gpsLocation", "jpeg.mirror", "jpeg.orientation", "jpeg.quality"},
		TagNamesInSection(metadata.SectionJPEG))
}

func TestFormatValue(t *testing.T) {
	f := NewFormatter()

	tests := []struct {
		name     string
		item     metadata.Item
		expected string
	}{
		{"single byte", metadata.NewByteItem(metadata.TagFocusMode, 2), "2"},
		{"byte list", metadata.NewByteItem(metadata.TagFlashModes, 0, 1, 2), "[0 1 2]"},
		{"int32 pair", metadata.NewInt32Item(metadata.TagExposureBiasRange, -4, 4), "[-4 4]"},
		{"float", metadata.NewFloatItem(metadata.TagZoomRatio, 2.5), "2.50"},
		{"double", metadata.NewDoubleItem(metadata.TagJPEGGPSLocation, 48.1, 11.5, 520), "[48.1000 11.5000 520.0000]"},
		{"int64", metadata.NewInt64Item(metadata.TagSensorTimestamp, 123456789), "123456789"},
		{"rational", metadata.NewRationalItem(metadata.TagExposureBiasStep, metadata.Rational{Numerator: 1, Denominator: 3}), "1/3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, f.FormatValue(tt.item))
		})
	}
}

func TestFormatStore(t *testing.T) {
	s, err := metadata.NewStoreFromItems(
		metadata.NewFloatItem(metadata.TagZoomRatio, 2),
		metadata.NewByteItem(metadata.TagFocusMode, 1),
	)
	require.NoError(t, err)

	f := NewFormatter()
	assert.Equal(t,
		"  focus.mode <byte[1]> = 1\n  zoom.ratio <float[1]> = 2.00\n",
		f.FormatStore(s, 1))

	f.ShowTypes = false
	f.ShowTags = true
	assert.Equal(t, "focus.mode (0x20005) = 1", f.FormatItem(metadata.NewByteItem(metadata.TagFocusMode, 1)))

	assert.Equal(t, "(empty)\n", f.FormatStore(metadata.NewStore(0, 0), 0))
	assert.Equal(t, "    x", f.Indent(2, "x"))
}

func TestStoreMap(t *testing.T) {
	s, err := metadata.NewStoreFromItems(
		metadata.NewByteItem(metadata.TagFlashModes, 0, 1),
		metadata.NewInt32Item(metadata.TagSensorOrientation, 90),
		metadata.NewRationalItem(metadata.TagFocalLength, metadata.Rational{Numerator: 26, Denominator: 1}),
	)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"flash.modes":        []int{0, 1},
		"sensor.orientation": int32(90),
		"lens.focalLength":   "26/1",
	}, StoreMap(s))
	assert.Empty(t, StoreMap(nil))
}
