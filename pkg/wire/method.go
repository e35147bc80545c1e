package wire

// Method identifies a remote request.
type Method uint8

const (
	MethodEnumerateDevices Method = 1
	MethodOpenDevice       Method = 2

	// Device methods target a device handle.
	MethodDeviceOpen    Method = 3
	MethodDeviceClose   Method = 4
	MethodDeviceRelease Method = 5
	MethodUpdateSetting Method = 6

	MethodCreateSession Method = 7

	// Session methods target a session handle.
	MethodSessionBeginConfig  Method = 8
	MethodSessionCommitConfig Method = 9
	MethodSessionStart        Method = 10
	MethodSessionStop         Method = 11
	MethodSessionRelease      Method = 12

	MethodCreateStream Method = 13

	// Stream methods target a stream handle.
	MethodStreamStart         Method = 14
	MethodStreamStop          Method = 15
	MethodStreamCapture       Method = 16
	MethodStreamUpdateSetting Method = 17
	MethodStreamRelease       Method = 18
)

var methodNames = map[Method]string{
	MethodEnumerateDevices:    "EnumerateDevices",
	MethodOpenDevice:          "OpenDevice",
	MethodDeviceOpen:          "DeviceOpen",
	MethodDeviceClose:         "DeviceClose",
	MethodDeviceRelease:       "DeviceRelease",
	MethodUpdateSetting:       "UpdateSetting",
	MethodCreateSession:       "CreateSession",
	MethodSessionBeginConfig:  "SessionBeginConfig",
	MethodSessionCommitConfig: "SessionCommitConfig",
	MethodSessionStart:        "SessionStart",
	MethodSessionStop:         "SessionStop",
	MethodSessionRelease:      "SessionRelease",
	MethodCreateStream:        "CreateStream",
	MethodStreamStart:         "StreamStart",
	MethodStreamStop:          "StreamStop",
	MethodStreamCapture:       "StreamCapture",
	MethodStreamUpdateSetting: "StreamUpdateSetting",
	MethodStreamRelease:       "StreamRelease",
}

// String returns the method name.
func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "Unknown"
}

// IsValid reports whether m is a known method.
func (m Method) IsValid() bool {
	_, ok := methodNames[m]
	return ok
}
