package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/camkit-project/camkit-go/pkg/log"
)

func TestViewFormatsMessages(t *testing.T) {
	path := createTestLogFile(t, sampleEvents(t))

	var buf bytes.Buffer
	if err := RunView(path, log.Filter{}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"2026-03-14T09:30:00.250000Z [conn:conn-aaa] OUT WIRE OpenDevice",
		"Device: back-wide",
		"Target: 7",
		`Payload: {1: "back-wide"}`,
		"Status: SUCCESS (0)",
		"Duration: 1.500ms",
		"Session: s1",
		"CONFIGURED -> RUNNING",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q\n%s", want, output)
		}
	}
}

func TestViewAppliesFilter(t *testing.T) {
	path := createTestLogFile(t, sampleEvents(t))

	layer := log.LayerCore
	var buf bytes.Buffer
	if err := RunView(path, log.Filter{Layer: &layer}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	output := buf.String()

	if strings.Contains(output, "OpenDevice") {
		t.Error("wire events should be filtered out")
	}
	if !strings.Contains(output, "CORE State") {
		t.Errorf("expected core state event, got:\n%s", output)
	}
}

func TestViewControlAndErrors(t *testing.T) {
	code := 3
	events := []log.Event{
		{
			Timestamp:  testTime,
			Layer:      log.LayerTransport,
			Category:   log.CategoryControl,
			ControlMsg: &log.ControlMsgEvent{Type: log.ControlMsgPing},
		},
		{
			Timestamp: testTime,
			Layer:     log.LayerCore,
			Category:  log.CategoryError,
			Error: &log.ErrorEventData{
				Layer:   log.LayerCore,
				Message: "device closed",
				Code:    &code,
				Context: "commit",
			},
		},
	}
	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunView(path, log.Filter{}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{"[conn:local]", "CTRL PING", "Message: device closed", "Code: 3", "Context: commit"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q\n%s", want, output)
		}
	}
}

func TestViewMissingFile(t *testing.T) {
	var buf bytes.Buffer
	if err := RunView("/nonexistent/file.clog", log.Filter{}, &buf); err == nil {
		t.Fatal("expected error for missing file")
	}
}
