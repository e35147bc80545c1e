package device

import "fmt"

// Position is where the camera faces.
type Position uint8

const (
	PositionUnspecified Position = 0
	PositionBack        Position = 1
	PositionFront       Position = 2
)

func (p Position) String() string {
	switch p {
	case PositionBack:
		return "BACK"
	case PositionFront:
		return "FRONT"
	default:
		return "UNSPECIFIED"
	}
}

// Type is the lens type.
type Type uint8

const (
	TypeDefault   Type = 0
	TypeWideAngle Type = 1
	TypeUltraWide Type = 2
	TypeTelephoto Type = 3
	TypeTrueDepth Type = 4
)

func (t Type) String() string {
	switch t {
	case TypeWideAngle:
		return "WIDE_ANGLE"
	case TypeUltraWide:
		return "ULTRA_WIDE"
	case TypeTelephoto:
		return "TELEPHOTO"
	case TypeTrueDepth:
		return "TRUE_DEPTH"
	default:
		return "DEFAULT"
	}
}

// ConnectionType is how the camera is attached.
type ConnectionType uint8

const (
	ConnectionBuiltIn ConnectionType = 0
	ConnectionUSB     ConnectionType = 1
	ConnectionRemote  ConnectionType = 2
)

func (c ConnectionType) String() string {
	switch c {
	case ConnectionUSB:
		return "USB"
	case ConnectionRemote:
		return "REMOTE"
	default:
		return "BUILT_IN"
	}
}

// FlashMode controls the flash unit.
type FlashMode uint8

const (
	FlashModeClose      FlashMode = 0
	FlashModeOpen       FlashMode = 1
	FlashModeAuto       FlashMode = 2
	FlashModeAlwaysOpen FlashMode = 3
)

func (m FlashMode) String() string {
	switch m {
	case FlashModeClose:
		return "CLOSE"
	case FlashModeOpen:
		return "OPEN"
	case FlashModeAuto:
		return "AUTO"
	case FlashModeAlwaysOpen:
		return "ALWAYS_OPEN"
	default:
		return fmt.Sprintf("FLASH_MODE(%d)", uint8(m))
	}
}

// ExposureMode controls auto exposure.
type ExposureMode uint8

const (
	ExposureModeLocked         ExposureMode = 0
	ExposureModeAuto           ExposureMode = 1
	ExposureModeContinuousAuto ExposureMode = 2
)

func (m ExposureMode) String() string {
	switch m {
	case ExposureModeLocked:
		return "LOCKED"
	case ExposureModeAuto:
		return "AUTO"
	case ExposureModeContinuousAuto:
		return "CONTINUOUS_AUTO"
	default:
		return fmt.Sprintf("EXPOSURE_MODE(%d)", uint8(m))
	}
}

// FocusMode controls auto focus.
type FocusMode uint8

const (
	FocusModeManual         FocusMode = 0
	FocusModeContinuousAuto FocusMode = 1
	FocusModeAuto           FocusMode = 2
	FocusModeLocked         FocusMode = 3
)

func (m FocusMode) String() string {
	switch m {
	case FocusModeManual:
		return "MANUAL"
	case FocusModeContinuousAuto:
		return "CONTINUOUS_AUTO"
	case FocusModeAuto:
		return "AUTO"
	case FocusModeLocked:
		return "LOCKED"
	default:
		return fmt.Sprintf("FOCUS_MODE(%d)", uint8(m))
	}
}

// StabilizationMode controls video stabilization.
type StabilizationMode uint8

const (
	StabilizationOff    StabilizationMode = 0
	StabilizationLow    StabilizationMode = 1
	StabilizationMiddle StabilizationMode = 2
	StabilizationHigh   StabilizationMode = 3
	StabilizationAuto   StabilizationMode = 4
)

func (m StabilizationMode) String() string {
	switch m {
	case StabilizationOff:
		return "OFF"
	case StabilizationLow:
		return "LOW"
	case StabilizationMiddle:
		return "MIDDLE"
	case StabilizationHigh:
		return "HIGH"
	case StabilizationAuto:
		return "AUTO"
	default:
		return fmt.Sprintf("STABILIZATION(%d)", uint8(m))
	}
}

// FocusState is the focus progress reported to listeners.
type FocusState uint8

const (
	FocusStateScan      FocusState = 0
	FocusStateFocused   FocusState = 1
	FocusStateUnfocused FocusState = 2
)

func (s FocusState) String() string {
	switch s {
	case FocusStateScan:
		return "SCAN"
	case FocusStateFocused:
		return "FOCUSED"
	default:
		return "UNFOCUSED"
	}
}

// ExposureState is the exposure progress reported to listeners.
type ExposureState uint8

const (
	ExposureStateScan      ExposureState = 0
	ExposureStateConverged ExposureState = 1
)

func (s ExposureState) String() string {
	if s == ExposureStateScan {
		return "SCAN"
	}
	return "CONVERGED"
}

// Point is a normalized [0,1] position in the frame.
type Point struct {
	X, Y float64
}

// FloatRange is an inclusive range.
type FloatRange struct {
	Min, Max float64
}

// Clamp returns v limited to the range.
func (r FloatRange) Clamp(v float64) float64 {
	return min(max(v, r.Min), r.Max)
}

// Contains reports whether v lies in the range.
func (r FloatRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// IntRange is an inclusive integer range, used for frame rates.
type IntRange struct {
	Min, Max int32
}

// Covers reports whether other lies entirely within r.
func (r IntRange) Covers(other IntRange) bool {
	return other.Min >= r.Min && other.Max <= r.Max
}

func (r IntRange) String() string {
	return fmt.Sprintf("[%d,%d]", r.Min, r.Max)
}

// DeviceError is delivered to the error listener when the device fails.
type DeviceError struct {
	DeviceID string
	Code     int32
	Message  string
}

func (e *DeviceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("device %s error %d: %s", e.DeviceID, e.Code, e.Message)
	}
	return fmt.Sprintf("device %s error %d", e.DeviceID, e.Code)
}
