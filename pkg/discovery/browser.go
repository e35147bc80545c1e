package discovery

import (
	"context"
	"time"
)

// Browser finds camera services over mDNS.
type Browser interface {
	// Browse searches for camera services. Services are reported once per
	// instance; the channel is closed when ctx is done.
	Browse(ctx context.Context) (<-chan *Service, error)

	// Find returns the first service named instance, or any service when
	// instance is empty. It gives up after the browse timeout.
	Find(ctx context.Context, instance string) (*Service, error)

	// Stop stops all active browsing operations.
	Stop()
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// BrowseTimeout is the default timeout for Find.
	// Default: 10 seconds.
	BrowseTimeout time.Duration

	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		BrowseTimeout: BrowseTimeout,
		Interface:     "",
	}
}
