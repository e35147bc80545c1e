package remote

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/camkit-project/camkit-go/pkg/camerr"
	"github.com/camkit-project/camkit-go/pkg/wire"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want wire.Status
	}{
		{"nil", nil, wire.StatusSuccess},
		{"explicit status", StatusError("OpenDevice", wire.StatusDeviceBusy, "held by %s", "other"), wire.StatusDeviceBusy},
		{"wrapped status", fmt.Errorf("ctx: %w", StatusError("x", wire.StatusNotFound, "gone")), wire.StatusNotFound},
		{"unsupported", camerr.Unsupported("flash mode", 3), wire.StatusUnsupported},
		{"usage", camerr.Usage("Start", "not configured"), wire.StatusInvalidState},
		{"format", &camerr.FormatError{Offset: 4, Reason: "truncated"}, wire.StatusInvalidArgument},
		{"deadline", context.DeadlineExceeded, wire.StatusTimeout},
		{"other", errors.New("boom"), wire.StatusServiceFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusOf(tt.err); got != tt.want {
				t.Errorf("StatusOf(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestStatusErrorIsRemote(t *testing.T) {
	err := StatusError("UpdateSetting", wire.StatusDeviceClosed, "device %s closed", "cam0")
	if !errors.Is(err, camerr.ErrRemote) {
		t.Error("expected errors.Is(err, ErrRemote)")
	}
	if !IsStatus(err, wire.StatusDeviceClosed) {
		t.Error("expected IsStatus DeviceClosed")
	}
	if IsStatus(errors.New("x"), wire.StatusDeviceClosed) {
		t.Error("plain error must not match a status")
	}
}

func TestStreamKind(t *testing.T) {
	if StreamPhoto.IsRepeating() {
		t.Error("photo streams are not repeating")
	}
	for _, k := range []StreamKind{StreamPreview, StreamVideo, StreamMetadata} {
		if !k.IsRepeating() {
			t.Errorf("%s should be repeating", k)
		}
	}
	if StreamKind(9).IsValid() {
		t.Error("kind 9 should be invalid")
	}
	if got := StreamKind(9).String(); got != "STREAM_KIND(9)" {
		t.Errorf("String() = %q", got)
	}
}
