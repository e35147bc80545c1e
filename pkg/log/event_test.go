package log

import (
	"errors"
	"testing"
)

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"direction in", DirectionIn.String(), "IN"},
		{"direction out", DirectionOut.String(), "OUT"},
		{"direction unknown", Direction(9).String(), "UNKNOWN"},
		{"layer transport", LayerTransport.String(), "TRANSPORT"},
		{"layer wire", LayerWire.String(), "WIRE"},
		{"layer core", LayerCore.String(), "CORE"},
		{"category state", CategoryState.String(), "STATE"},
		{"category error", CategoryError.String(), "ERROR"},
		{"role service", RoleService.String(), "SERVICE"},
		{"role client", RoleClient.String(), "CLIENT"},
		{"message notification", MessageTypeNotification.String(), "NOTIFICATION"},
		{"entity session", StateEntitySession.String(), "SESSION"},
		{"entity output", StateEntityOutput.String(), "OUTPUT"},
		{"entity device", StateEntityDevice.String(), "DEVICE"},
		{"control pong", ControlMsgPong.String(), "PONG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestNewStateChange(t *testing.T) {
	ev := NewStateChange(StateEntitySession, "CONFIGURED", "RUNNING", "")

	if ev.Layer != LayerCore || ev.Category != CategoryState {
		t.Errorf("layer/category = %v/%v", ev.Layer, ev.Category)
	}
	if ev.StateChange == nil || ev.StateChange.NewState != "RUNNING" {
		t.Fatalf("unexpected state change: %+v", ev.StateChange)
	}
	if ev.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestNewError(t *testing.T) {
	ev := NewError(LayerWire, "decode", errors.New("bad frame"))

	if ev.Category != CategoryError {
		t.Errorf("category = %v", ev.Category)
	}
	if ev.Error.Message != "bad frame" || ev.Error.Context != "decode" {
		t.Errorf("error = %+v", ev.Error)
	}
}
