package commands

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/camkit-project/camkit-go/pkg/log"
)

func TestExportToJSONL(t *testing.T) {
	path := createTestLogFile(t, sampleEvents(t))

	var buf bytes.Buffer
	if err := RunExport(path, "jsonl", log.Filter{}, &buf); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 0 is not JSON: %v", err)
	}
	if first["ConnectionID"] != "conn-aaaa-1111" {
		t.Errorf("ConnectionID = %v", first["ConnectionID"])
	}
	if first["DeviceID"] != "back-wide" {
		t.Errorf("DeviceID = %v", first["DeviceID"])
	}
}

func TestExportToCSV(t *testing.T) {
	path := createTestLogFile(t, sampleEvents(t))

	var buf bytes.Buffer
	if err := RunExport(path, "csv", log.Filter{}, &buf); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(records))
	}
	if records[0][0] != "timestamp" || records[0][5] != "device_id" {
		t.Errorf("unexpected header: %v", records[0])
	}

	req := records[1]
	if req[2] != "OUT" || req[3] != "WIRE" || req[7] != "OpenDevice" || req[8] != "1" {
		t.Errorf("unexpected request row: %v", req)
	}
	if records[2][9] != "SUCCESS" {
		t.Errorf("status = %q, want SUCCESS", records[2][9])
	}
	if records[3][6] != "s1" {
		t.Errorf("session = %q, want s1", records[3][6])
	}
}

func TestExportFiltersBySession(t *testing.T) {
	path := createTestLogFile(t, sampleEvents(t))

	var buf bytes.Buffer
	if err := RunExport(path, "jsonl", log.Filter{SessionID: "s1"}, &buf); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}
	if n := strings.Count(buf.String(), "\n"); n != 1 {
		t.Errorf("expected 1 exported event, got %d", n)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	path := createTestLogFile(t, nil)

	var buf bytes.Buffer
	err := RunExport(path, "xml", log.Filter{}, &buf)
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
}
