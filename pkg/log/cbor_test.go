package log

import (
	"bytes"
	"testing"
	"time"

	"github.com/camkit-project/camkit-go/pkg/wire"
)

func TestEventCBORRoundTrip(t *testing.T) {
	method := wire.MethodUpdateSetting
	target := uint32(3)
	status := wire.StatusDeviceBusy
	code := 7
	elapsed := 1500 * time.Microsecond
	ts := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)

	tests := []struct {
		name  string
		event Event
	}{
		{
			name: "frame",
			event: Event{
				Timestamp:    ts,
				ConnectionID: "conn-1",
				Direction:    DirectionOut,
				Layer:        LayerTransport,
				Category:     CategoryMessage,
				Frame:        &FrameEvent{Size: 12, Data: []byte{1, 2, 3}},
			},
		},
		{
			name: "request",
			event: Event{
				Timestamp: ts,
				LocalRole: RoleClient,
				Layer:     LayerWire,
				Category:  CategoryMessage,
				DeviceID:  "cam0",
				Message: &MessageEvent{
					Type:      MessageTypeRequest,
					MessageID: 11,
					Method:    &method,
					Target:    &target,
				},
			},
		},
		{
			name: "response",
			event: Event{
				Timestamp: ts,
				Direction: DirectionIn,
				Layer:     LayerWire,
				Category:  CategoryMessage,
				Message: &MessageEvent{
					Type:           MessageTypeResponse,
					MessageID:      11,
					Status:         &status,
					ProcessingTime: &elapsed,
				},
			},
		},
		{
			name: "state",
			event: Event{
				Timestamp: ts,
				Layer:     LayerCore,
				Category:  CategoryState,
				SessionID: "s-1",
				StateChange: &StateChangeEvent{
					Entity:   StateEntitySession,
					OldState: "IDLE",
					NewState: "CONFIGURING",
				},
			},
		},
		{
			name: "error",
			event: Event{
				Timestamp: ts,
				Layer:     LayerCore,
				Category:  CategoryError,
				Error:     &ErrorEventData{Layer: LayerCore, Message: "boom", Code: &code},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeEvent(tt.event)
			if err != nil {
				t.Fatalf("EncodeEvent failed: %v", err)
			}
			got, err := DecodeEvent(data)
			if err != nil {
				t.Fatalf("DecodeEvent failed: %v", err)
			}

			if !got.Timestamp.Equal(tt.event.Timestamp) {
				t.Errorf("Timestamp = %v, want %v", got.Timestamp, tt.event.Timestamp)
			}
			// Re-encode to compare the remaining fields structurally.
			got.Timestamp = tt.event.Timestamp
			again, err := EncodeEvent(got)
			if err != nil {
				t.Fatalf("re-encode failed: %v", err)
			}
			if !bytes.Equal(data, again) {
				t.Errorf("round trip changed the event:\n got %x\nwant %x", again, data)
			}
		})
	}
}

func TestEventCBORUsesIntegerKeys(t *testing.T) {
	data, err := EncodeEvent(Event{ConnectionID: "abc", Layer: LayerCore})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	if bytes.Contains(data, []byte("ConnectionID")) || bytes.Contains(data, []byte("Layer")) {
		t.Error("expected integer keys, found field names")
	}
}
