package commands

import (
	"fmt"

	"github.com/camkit-project/camkit-go/pkg/log"
)

// RunFilter copies the matching events of a capture file to output and
// returns how many were copied.
func RunFilter(path, output string, filter log.Filter) (int, error) {
	if output == path {
		return 0, fmt.Errorf("output must differ from input %s", path)
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	out, err := log.NewFileLogger(output)
	if err != nil {
		return 0, fmt.Errorf("failed to create output logger: %w", err)
	}

	count := 0
	for event, err := range reader.Events() {
		if err != nil {
			out.Close()
			return count, fmt.Errorf("failed to read event: %w", err)
		}
		out.Log(event)
		count++
	}

	if err := out.Close(); err != nil {
		return count, err
	}
	if n := out.Dropped(); n > 0 {
		return count, fmt.Errorf("%d events could not be written", n)
	}
	return count, nil
}
