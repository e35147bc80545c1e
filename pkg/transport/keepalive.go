package transport

import (
	"context"
	"sync"
	"time"
)

// Keep-alive defaults. A dead peer is detected after at most
// MaxDetectionDelay.
const (
	DefaultPingInterval   = 15 * time.Second
	DefaultPongTimeout    = 5 * time.Second
	DefaultMaxMissedPongs = 3

	MaxDetectionDelay = DefaultPingInterval*DefaultMaxMissedPongs + DefaultPongTimeout
)

// KeepAliveConfig configures liveness monitoring of a connection.
type KeepAliveConfig struct {
	// PingInterval is the interval between pings.
	PingInterval time.Duration

	// PongTimeout is how long a ping may stay unanswered before it counts
	// as missed.
	PongTimeout time.Duration

	// MaxMissedPongs consecutive misses close the connection.
	MaxMissedPongs int
}

// DefaultKeepAliveConfig returns the default keep-alive configuration.
func DefaultKeepAliveConfig() KeepAliveConfig {
	return KeepAliveConfig{
		PingInterval:   DefaultPingInterval,
		PongTimeout:    DefaultPongTimeout,
		MaxMissedPongs: DefaultMaxMissedPongs,
	}
}

// DetectionDelay returns the worst-case time to notice a dead peer.
func (c KeepAliveConfig) DetectionDelay() time.Duration {
	return c.PingInterval*time.Duration(c.MaxMissedPongs) + c.PongTimeout
}

// KeepAliveStats is a snapshot of the liveness state.
type KeepAliveStats struct {
	Sequence     uint32
	MissedPongs  int
	LastPingTime time.Time
	LastPongTime time.Time

	// RoundTrip is the latency of the last answered ping.
	RoundTrip time.Duration
}

// KeepAlive sends sequenced pings and reports a timeout after too many
// unanswered ones. The monitoring goroutine owns the ping state; Stats
// reads a copy.
type KeepAlive struct {
	config    KeepAliveConfig
	sendPing  func(seq uint32) error
	onTimeout func()
	pongs     chan uint32

	mu      sync.Mutex
	stats   KeepAliveStats
	pending bool
	stop    chan struct{}
}

// NewKeepAlive creates a keep-alive monitor. Zero config fields take
// their defaults.
func NewKeepAlive(config KeepAliveConfig, sendPing func(seq uint32) error, onTimeout func()) *KeepAlive {
	def := DefaultKeepAliveConfig()
	if config.PingInterval <= 0 {
		config.PingInterval = def.PingInterval
	}
	if config.PongTimeout <= 0 {
		config.PongTimeout = def.PongTimeout
	}
	if config.MaxMissedPongs <= 0 {
		config.MaxMissedPongs = def.MaxMissedPongs
	}
	return &KeepAlive{
		config:    config,
		sendPing:  sendPing,
		onTimeout: onTimeout,
		pongs:     make(chan uint32, 1),
	}
}

// Start begins monitoring. It is a no-op while already running.
func (ka *KeepAlive) Start(ctx context.Context) {
	ka.mu.Lock()
	defer ka.mu.Unlock()
	if ka.stop != nil {
		return
	}
	ka.stop = make(chan struct{})
	go ka.run(ctx, ka.stop)
}

// Stop ends monitoring.
func (ka *KeepAlive) Stop() {
	ka.mu.Lock()
	defer ka.mu.Unlock()
	if ka.stop != nil {
		close(ka.stop)
		ka.stop = nil
	}
}

// IsRunning reports whether monitoring is active.
func (ka *KeepAlive) IsRunning() bool {
	ka.mu.Lock()
	defer ka.mu.Unlock()
	return ka.stop != nil
}

// PongReceived records the pong for seq. It never blocks; a pong arriving
// while the previous one is unprocessed is dropped.
func (ka *KeepAlive) PongReceived(seq uint32) {
	select {
	case ka.pongs <- seq:
	default:
	}
}

// Stats returns the current liveness state.
func (ka *KeepAlive) Stats() KeepAliveStats {
	ka.mu.Lock()
	defer ka.mu.Unlock()
	return ka.stats
}

func (ka *KeepAlive) run(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(ka.config.PingInterval)
	defer ticker.Stop()

	ka.ping()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case seq := <-ka.pongs:
			ka.pong(seq)
		case <-ticker.C:
			if ka.expired() {
				if ka.onTimeout != nil {
					ka.onTimeout()
				}
				return
			}
			ka.ping()
		}
	}
}

func (ka *KeepAlive) ping() {
	ka.mu.Lock()
	ka.stats.Sequence++
	seq := ka.stats.Sequence
	ka.stats.LastPingTime = time.Now()
	ka.pending = true
	ka.mu.Unlock()

	if err := ka.sendPing(seq); err != nil {
		// Backdate so the ping counts as missed on the next tick.
		ka.mu.Lock()
		ka.stats.LastPingTime = time.Time{}
		ka.mu.Unlock()
	}
}

// expired accounts for an unanswered ping and reports whether the peer is
// considered dead.
func (ka *KeepAlive) expired() bool {
	ka.mu.Lock()
	defer ka.mu.Unlock()
	if !ka.pending || time.Since(ka.stats.LastPingTime) < ka.config.PongTimeout {
		return false
	}
	ka.pending = false
	ka.stats.MissedPongs++
	return ka.stats.MissedPongs >= ka.config.MaxMissedPongs
}

func (ka *KeepAlive) pong(seq uint32) {
	ka.mu.Lock()
	defer ka.mu.Unlock()
	now := time.Now()
	ka.stats.LastPongTime = now
	// Late pongs of earlier pings are ignored.
	if !ka.pending || seq != ka.stats.Sequence {
		return
	}
	ka.pending = false
	ka.stats.MissedPongs = 0
	ka.stats.RoundTrip = now.Sub(ka.stats.LastPingTime)
}
