package inspect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/camkit-project/camkit-go/pkg/metadata"
)

// knownTags lists every tag with a registered name.
var knownTags = []uint32{
	metadata.TagCameraPosition,
	metadata.TagCameraType,
	metadata.TagCameraConnectionType,
	metadata.TagMirrorSupported,
	metadata.TagSensorOrientation,
	metadata.TagZoomRatioRange,
	metadata.TagExposureBiasRange,
	metadata.TagExposureBiasStep,
	metadata.TagFlashModes,
	metadata.TagFlashAvailable,
	metadata.TagExposureModes,
	metadata.TagFocusModes,
	metadata.TagVideoStabilizationModes,
	metadata.TagFPSRanges,
	metadata.TagStreamConfigurations,
	metadata.TagMetadataObjectTypes,
	metadata.TagFocalLength,
	metadata.TagFlashMode,
	metadata.TagExposureMode,
	metadata.TagExposurePoint,
	metadata.TagExposureBias,
	metadata.TagFocusMode,
	metadata.TagFocusPoint,
	metadata.TagZoomRatio,
	metadata.TagVideoStabilizationMode,
	metadata.TagFPSRange,
	metadata.TagStreamMetadataObjectTypes,
	metadata.TagFocusState,
	metadata.TagExposureState,
	metadata.TagSensorTimestamp,
	metadata.TagFaceRectangles,
	metadata.TagFlashState,
	metadata.TagJPEGQuality,
	metadata.TagJPEGOrientation,
	metadata.TagJPEGMirror,
	metadata.TagJPEGGPSLocation,
}

// ResolveTagName resolves a tag name to its tag (case-insensitive).
func ResolveTagName(name string) (uint32, bool) {
	if tag, ok := metadata.TagByName(name); ok {
		return tag, true
	}
	lname := strings.ToLower(name)
	for _, tag := range knownTags {
		if strings.ToLower(metadata.TagName(tag)) == lname {
			return tag, true
		}
	}
	return 0, false
}

// TagDisplayName returns the name of a tag, or its hex form for unknown tags.
func TagDisplayName(tag uint32) string {
	if _, ok := metadata.TagByName(metadata.TagName(tag)); ok {
		return metadata.TagName(tag)
	}
	return fmt.Sprintf("%#x", tag)
}

// TagNames returns all known tag names, sorted.
func TagNames() []string {
	names := make([]string, 0, len(knownTags))
	for _, tag := range knownTags {
		names = append(names, metadata.TagName(tag))
	}
	sort.Strings(names)
	return names
}

// TagNamesInSection returns the sorted names of the known tags in a section.
func TagNamesInSection(section uint32) []string {
	var names []string
	for _, tag := range knownTags {
		if tag&0xFFFF0000 == section {
			names = append(names, metadata.TagName(tag))
		}
	}
	sort.Strings(names)
	return names
}
