package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/camkit-project/camkit-go/pkg/log"
)

// RunExport writes the matching events of a capture file to w as JSON
// lines or CSV.
func RunExport(path, format string, filter log.Filter, w io.Writer) error {
	var write func(log.Event) error
	switch format {
	case "jsonl":
		enc := json.NewEncoder(w)
		write = func(e log.Event) error { return enc.Encode(e) }
	case "csv":
		cw := csv.NewWriter(w)
		defer cw.Flush()
		header := []string{"timestamp", "connection_id", "direction", "layer", "category", "device_id", "session_id", "type", "message_id", "status"}
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		write = func(e log.Event) error { return cw.Write(csvRow(e)) }
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for event, err := range reader.Events() {
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := write(event); err != nil {
			return fmt.Errorf("failed to write event: %w", err)
		}
	}
	return nil
}

func csvRow(event log.Event) []string {
	var msgID, status string
	if m := event.Message; m != nil {
		msgID = strconv.FormatUint(uint64(m.MessageID), 10)
		if m.Status != nil {
			status = m.Status.String()
		}
	}
	return []string{
		event.Timestamp.UTC().Format(timestampLayout),
		event.ConnectionID,
		event.Direction.String(),
		event.Layer.String(),
		event.Category.String(),
		event.DeviceID,
		event.SessionID,
		eventType(event),
		msgID,
		status,
	}
}
