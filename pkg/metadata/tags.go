package metadata

import "fmt"

// Tag sections. A tag is section<<16 | index.
const (
	SectionAbility uint32 = 0x0001 << 16
	SectionControl uint32 = 0x0002 << 16
	SectionStream  uint32 = 0x0003 << 16
	SectionResult  uint32 = 0x0004 << 16
	SectionJPEG    uint32 = 0x0005 << 16
	SectionVendor  uint32 = 0x8000 << 16
)

// Ability tags: read-only capabilities reported at enumeration.
const (
	TagCameraPosition          = SectionAbility | 0x01 // byte
	TagCameraType              = SectionAbility | 0x02 // byte
	TagCameraConnectionType    = SectionAbility | 0x03 // byte
	TagMirrorSupported         = SectionAbility | 0x04 // byte (0/1)
	TagSensorOrientation       = SectionAbility | 0x05 // int32 degrees
	TagZoomRatioRange          = SectionAbility | 0x06 // int32 [min,max] fixed-point x100, or float [min,max]
	TagExposureBiasRange       = SectionAbility | 0x07 // int32 [min,max] in EV steps
	TagExposureBiasStep        = SectionAbility | 0x08 // rational EV per step
	TagFlashModes              = SectionAbility | 0x09 // byte list
	TagFlashAvailable          = SectionAbility | 0x0A // byte (0/1)
	TagExposureModes           = SectionAbility | 0x0B // byte list
	TagFocusModes              = SectionAbility | 0x0C // byte list
	TagVideoStabilizationModes = SectionAbility | 0x0D // byte list
	TagFPSRanges               = SectionAbility | 0x0E // int32 [min,max] pairs
	TagStreamConfigurations    = SectionAbility | 0x0F // int32 [kind,format,width,height] tuples
	TagMetadataObjectTypes     = SectionAbility | 0x10 // byte list
	TagFocalLength             = SectionAbility | 0x11 // rational millimetres
)

// Control tags: settings written through locked transactions.
const (
	TagFlashMode              = SectionControl | 0x01 // byte
	TagExposureMode           = SectionControl | 0x02 // byte
	TagExposurePoint          = SectionControl | 0x03 // float [x,y]
	TagExposureBias           = SectionControl | 0x04 // int32 steps
	TagFocusMode              = SectionControl | 0x05 // byte
	TagFocusPoint             = SectionControl | 0x06 // float [x,y]
	TagZoomRatio              = SectionControl | 0x07 // float
	TagVideoStabilizationMode = SectionControl | 0x08 // byte
	TagFPSRange               = SectionControl | 0x09 // int32 [min,max]
)

// Stream tags: per-stream settings.
const (
	TagStreamMetadataObjectTypes = SectionStream | 0x01 // byte list
)

// Result tags: reported asynchronously by the device.
const (
	TagFocusState      = SectionResult | 0x01 // byte
	TagExposureState   = SectionResult | 0x02 // byte
	TagSensorTimestamp = SectionResult | 0x03 // int64 nanoseconds
	TagFaceRectangles  = SectionResult | 0x04 // float [x,y,w,h] per face
	TagFlashState      = SectionResult | 0x05 // byte
)

// JPEG capture tags: per-capture photo settings.
const (
	TagJPEGQuality     = SectionJPEG | 0x01 // byte
	TagJPEGOrientation = SectionJPEG | 0x02 // int32 degrees
	TagJPEGMirror      = SectionJPEG | 0x03 // byte (0/1)
	TagJPEGGPSLocation = SectionJPEG | 0x04 // double [lat,lon,alt]
)

var tagNames = map[uint32]string{
	TagCameraPosition:            "camera.position",
	TagCameraType:                "camera.type",
	TagCameraConnectionType:      "camera.connectionType",
	TagMirrorSupported:           "camera.mirrorSupported",
	TagSensorOrientation:         "sensor.orientation",
	TagZoomRatioRange:            "zoom.ratioRange",
	TagExposureBiasRange:         "exposure.biasRange",
	TagExposureBiasStep:          "exposure.biasStep",
	TagFlashModes:                "flash.modes",
	TagFlashAvailable:            "flash.available",
	TagExposureModes:             "exposure.modes",
	TagFocusModes:                "focus.modes",
	TagVideoStabilizationModes:   "stabilization.modes",
	TagFPSRanges:                 "fps.ranges",
	TagStreamConfigurations:      "stream.configurations",
	TagMetadataObjectTypes:       "metadata.objectTypes",
	TagFocalLength:               "lens.focalLength",
	TagFlashMode:                 "flash.mode",
	TagExposureMode:              "exposure.mode",
	TagExposurePoint:             "exposure.point",
	TagExposureBias:              "exposure.bias",
	TagFocusMode:                 "focus.mode",
	TagFocusPoint:                "focus.point",
	TagZoomRatio:                 "zoom.ratio",
	TagVideoStabilizationMode:    "stabilization.mode",
	TagFPSRange:                  "fps.range",
	TagStreamMetadataObjectTypes: "stream.metadataObjectTypes",
	TagFocusState:                "focus.state",
	TagExposureState:             "exposure.state",
	TagSensorTimestamp:           "sensor.timestamp",
	TagFaceRectangles:            "face.rectangles",
	TagFlashState:                "flash.state",
	TagJPEGQuality:               "jpeg.quality",
	TagJPEGOrientation:           "jpeg.orientation",
	TagJPEGMirror:                "jpeg.mirror",
	TagJPEGGPSLocation:           "jpeg.gpsLocation",
}

// TagName returns a human-readable name for known tags and a hex form otherwise.
func TagName(tag uint32) string {
	if name, ok := tagNames[tag]; ok {
		return name
	}
	return fmt.Sprintf("tag(%#08x)", tag)
}

// TagByName is the inverse of TagName for known tags.
func TagByName(name string) (uint32, bool) {
	for tag, n := range tagNames {
		if n == name {
			return tag, true
		}
	}
	return 0, false
}

// Values reported in TagFocusState.
const (
	AFStateInactive uint8 = iota
	AFStatePassiveScan
	AFStatePassiveFocused
	AFStateActiveScan
	AFStateFocusedLocked
	AFStateNotFocusedLocked
	AFStatePassiveUnfocused
)

// Values reported in TagExposureState.
const (
	AEStateInactive uint8 = iota
	AEStateSearching
	AEStateConverged
	AEStateLocked
	AEStateFlashRequired
)
