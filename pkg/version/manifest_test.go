package version

import (
	"strings"
	"testing"

	"github.com/camkit-project/camkit-go/pkg/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeCaps(t *testing.T) *metadata.Store {
	t.Helper()
	s := metadata.NewStore(8, 128)
	require.NoError(t, s.Set(metadata.NewByteItem(metadata.TagCameraPosition, 1)))
	require.NoError(t, s.Set(metadata.NewByteItem(metadata.TagCameraType, 0)))
	require.NoError(t, s.Set(metadata.NewByteItem(metadata.TagCameraConnectionType, 0)))
	require.NoError(t, s.Set(metadata.NewInt32Item(metadata.TagStreamConfigurations, 0, 1, 1920, 1080)))
	require.NoError(t, s.Set(metadata.NewInt32Item(metadata.TagFPSRanges, 15, 30)))
	return s
}

func TestLoadCurrentManifest(t *testing.T) {
	m, err := LoadCurrentManifest()
	require.NoError(t, err)
	assert.Equal(t, Current, m.Version)
	assert.NotEmpty(t, m.Capabilities.Mandatory)
	assert.Contains(t, m.MandatoryNames(), "camera.position")

	again, err := LoadManifest(Current)
	require.NoError(t, err)
	assert.Same(t, m, again)
}

func TestLoadManifestUnknownVersion(t *testing.T) {
	_, err := LoadManifest("9.9")
	assert.Error(t, err)
}

func TestAvailableManifests(t *testing.T) {
	versions, err := AvailableManifests()
	require.NoError(t, err)
	assert.Contains(t, versions, Current)
}

func TestManifestNamesResolve(t *testing.T) {
	m, err := LoadCurrentManifest()
	require.NoError(t, err)

	all := append(append([]CapabilityDef{}, m.Capabilities.Mandatory...), m.Capabilities.Optional...)
	for _, def := range all {
		_, ok := metadata.TagByName(def.Name)
		assert.True(t, ok, "unknown tag %s", def.Name)
		_, ok = metadata.ParseType(def.Type)
		assert.True(t, ok, "unknown type %s for %s", def.Type, def.Name)
	}
}

func TestValidateCapabilities(t *testing.T) {
	m, err := LoadCurrentManifest()
	require.NoError(t, err)

	t.Run("complete", func(t *testing.T) {
		res := ValidateCapabilities(m, completeCaps(t))
		assert.True(t, res.Valid, "errors: %v", res.Errors)
		assert.Empty(t, res.Warnings)
	})

	t.Run("missing mandatory", func(t *testing.T) {
		caps := completeCaps(t)
		caps.Delete(metadata.TagCameraPosition)
		res := ValidateCapabilities(m, caps)
		assert.False(t, res.Valid)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0], "camera.position")
	})

	t.Run("wrong type", func(t *testing.T) {
		caps := completeCaps(t)
		require.NoError(t, caps.Set(metadata.NewFloatItem(metadata.TagFPSRanges, 15, 30)))
		res := ValidateCapabilities(m, caps)
		assert.False(t, res.Valid)
		require.Len(t, res.Errors, 1)
		assert.True(t, strings.Contains(res.Errors[0], "expected int32"), res.Errors[0])
	})

	t.Run("short stream configuration", func(t *testing.T) {
		caps := completeCaps(t)
		require.NoError(t, caps.Set(metadata.NewInt32Item(metadata.TagStreamConfigurations, 0, 1)))
		res := ValidateCapabilities(m, caps)
		assert.False(t, res.Valid)
	})

	t.Run("malformed optional is a warning", func(t *testing.T) {
		caps := completeCaps(t)
		require.NoError(t, caps.Set(metadata.NewInt32Item(metadata.TagZoomRatioRange, 100)))
		res := ValidateCapabilities(m, caps)
		assert.True(t, res.Valid)
		assert.Len(t, res.Warnings, 1)
	})
}
