// Package inspect provides camera inspection utilities.
//
// The inspect package offers:
//   - Parsing path expressions (e.g., "back-wide/zoom.ratioRange")
//   - Resolving metadata tag names to numeric tags
//   - Formatting metadata for display
//   - An HTTP API exposing the state of a camera service
package inspect

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Path errors.
var (
	ErrEmptyPath     = errors.New("empty path")
	ErrInvalidPath   = errors.New("invalid path format")
	ErrInvalidNumber = errors.New("invalid numeric value in path")
	ErrUnknownTag    = errors.New("unknown tag")
)

// Path represents a parsed inspection path.
// Format: device[/tag]
type Path struct {
	// DeviceID is the camera identifier.
	DeviceID string

	// Tag is the metadata tag (when IsPartial is false).
	Tag uint32

	// IsPartial indicates the path doesn't include a tag
	// (used for inspect operations that show all entries).
	IsPartial bool

	// Raw stores the original input string.
	Raw string
}

// ParsePath parses a path string into a Path struct.
//
// Supported formats:
//   - "device" - partial (for listing all entries)
//   - "device/tag" - a single entry
//
// Tags are given by name (case-insensitive) or numerically in decimal or
// hex (0x prefix).
func ParsePath(input string) (*Path, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyPath
	}

	// Check for invalid patterns
	if strings.HasPrefix(input, "/") || strings.HasSuffix(input, "/") {
		return nil, ErrInvalidPath
	}

	parts := strings.Split(input, "/")
	p := &Path{Raw: input, DeviceID: parts[0]}

	switch len(parts) {
	case 1:
		p.IsPartial = true
	case 2:
		tag, err := ResolveTag(parts[1])
		if err != nil {
			return nil, err
		}
		p.Tag = tag
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, input)
	}
	return p, nil
}

// ResolveTag resolves a tag name or number.
func ResolveTag(s string) (uint32, error) {
	if tag, ok := ResolveTagName(s); ok {
		return tag, nil
	}
	if s == "" || (s[0] < '0' || s[0] > '9') {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTag, s)
	}
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return uint32(n), nil
}

// String returns the canonical form of the path.
func (p *Path) String() string {
	if p.IsPartial {
		return p.DeviceID
	}
	return p.DeviceID + "/" + TagDisplayName(p.Tag)
}
