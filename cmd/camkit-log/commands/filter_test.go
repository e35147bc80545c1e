package commands

import (
	"path/filepath"
	"testing"

	"github.com/camkit-project/camkit-go/pkg/log"
)

func TestFilterByDevice(t *testing.T) {
	path := createTestLogFile(t, sampleEvents(t))
	out := filepath.Join(t.TempDir(), "filtered.clog")

	filter, err := FilterOptions{DeviceID: "back-wide", Direction: "in"}.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	n, err := RunFilter(path, out, filter)
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("copied %d events, want 1", n)
	}

	reader, err := log.NewReader(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer reader.Close()

	var got []log.Event
	for e, err := range reader.Events() {
		if err != nil {
			t.Fatalf("read output: %v", err)
		}
		got = append(got, e)
	}
	if len(got) != 1 || got[0].Message == nil || got[0].Message.Type != log.MessageTypeResponse {
		t.Errorf("unexpected filtered events: %+v", got)
	}
}

func TestFilterRejectsSameOutput(t *testing.T) {
	path := createTestLogFile(t, nil)
	if _, err := RunFilter(path, path, log.Filter{}); err == nil {
		t.Fatal("expected error when output equals input")
	}
}

func TestFilterOptionsBuild(t *testing.T) {
	filter, err := FilterOptions{
		ConnID:    "abc",
		SessionID: "s1",
		TimeStart: "2026-03-14T09:00:00Z",
		TimeEnd:   "2026-03-14T10:00:00Z",
		Layer:     "core",
		Category:  "state",
	}.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if filter.ConnectionID != "abc" || filter.SessionID != "s1" {
		t.Errorf("ids not copied: %+v", filter)
	}
	if filter.Layer == nil || *filter.Layer != log.LayerCore {
		t.Errorf("Layer = %v", filter.Layer)
	}
	if filter.Category == nil || *filter.Category != log.CategoryState {
		t.Errorf("Category = %v", filter.Category)
	}
	if filter.TimeStart == nil || filter.TimeEnd == nil || !filter.TimeStart.Before(*filter.TimeEnd) {
		t.Errorf("time range not parsed: %v %v", filter.TimeStart, filter.TimeEnd)
	}
	if filter.Direction != nil {
		t.Errorf("Direction should be unset")
	}
}

func TestFilterOptionsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts FilterOptions
	}{
		{"bad layer", FilterOptions{Layer: "service"}},
		{"bad direction", FilterOptions{Direction: "sideways"}},
		{"bad category", FilterOptions{Category: "snapshot"}},
		{"bad start", FilterOptions{TimeStart: "yesterday"}},
		{"bad end", FilterOptions{TimeEnd: "2026-13-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.opts.Build(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseFlagsCaseInsensitive(t *testing.T) {
	if l, err := ParseLayer("TRANSPORT"); err != nil || l != log.LayerTransport {
		t.Errorf("ParseLayer = %v, %v", l, err)
	}
	if d, err := ParseDirection("Out"); err != nil || d != log.DirectionOut {
		t.Errorf("ParseDirection = %v, %v", d, err)
	}
	if c, err := ParseCategory("Error"); err != nil || c != log.CategoryError {
		t.Errorf("ParseCategory = %v, %v", c, err)
	}
}
