package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/camkit-project/camkit-go/pkg/log"
	"github.com/camkit-project/camkit-go/pkg/wire"
	"github.com/fxamacker/cbor/v2"
)

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.clog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("failed to close logger: %v", err)
	}
	return path
}

var testTime = time.Date(2026, 3, 14, 9, 30, 0, 250000000, time.UTC)

// sampleEvents returns a request/response pair on one connection and a
// session state change on another.
func sampleEvents(t *testing.T) []log.Event {
	t.Helper()
	payload, err := cbor.Marshal(map[int]any{1: "back-wide"})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	method := wire.MethodOpenDevice
	status := wire.StatusSuccess
	rtt := 1500 * time.Microsecond
	target := uint32(7)

	return []log.Event{
		{
			Timestamp:    testTime,
			ConnectionID: "conn-aaaa-1111",
			Direction:    log.DirectionOut,
			Layer:        log.LayerWire,
			Category:     log.CategoryMessage,
			DeviceID:     "back-wide",
			Message: &log.MessageEvent{
				Type:      log.MessageTypeRequest,
				MessageID: 1,
				Method:    &method,
				Target:    &target,
				Payload:   payload,
			},
		},
		{
			Timestamp:    testTime.Add(2 * time.Millisecond),
			ConnectionID: "conn-aaaa-1111",
			Direction:    log.DirectionIn,
			Layer:        log.LayerWire,
			Category:     log.CategoryMessage,
			DeviceID:     "back-wide",
			Message: &log.MessageEvent{
				Type:           log.MessageTypeResponse,
				MessageID:      1,
				Status:         &status,
				ProcessingTime: &rtt,
			},
		},
		{
			Timestamp:    testTime.Add(time.Second),
			ConnectionID: "conn-bbbb-2222",
			Layer:        log.LayerCore,
			Category:     log.CategoryState,
			SessionID:    "s1",
			StateChange: &log.StateChangeEvent{
				Entity:   log.StateEntitySession,
				OldState: "CONFIGURED",
				NewState: "RUNNING",
			},
		},
	}
}
