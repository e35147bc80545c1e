package transport

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestKeepAliveTimesOutWithoutPongs(t *testing.T) {
	var pings atomic.Int32
	timedOut := make(chan struct{}, 1)

	ka := NewKeepAlive(KeepAliveConfig{
		PingInterval:   10 * time.Millisecond,
		PongTimeout:    5 * time.Millisecond,
		MaxMissedPongs: 2,
	}, func(uint32) error {
		pings.Add(1)
		return nil
	}, func() {
		select {
		case timedOut <- struct{}{}:
		default:
		}
	})

	ka.Start(context.Background())
	defer ka.Stop()

	select {
	case <-timedOut:
	case <-time.After(time.Second):
		t.Fatal("keep-alive did not time out")
	}
	if pings.Load() < 2 {
		t.Errorf("sent %d pings, want at least 2", pings.Load())
	}
}

func TestKeepAlivePongResetsMissed(t *testing.T) {
	var ka *KeepAlive
	timedOut := make(chan struct{}, 1)

	ka = NewKeepAlive(KeepAliveConfig{
		PingInterval:   10 * time.Millisecond,
		PongTimeout:    5 * time.Millisecond,
		MaxMissedPongs: 2,
	}, func(seq uint32) error {
		go ka.PongReceived(seq)
		return nil
	}, func() {
		select {
		case timedOut <- struct{}{}:
		default:
		}
	})

	ka.Start(context.Background())
	time.Sleep(100 * time.Millisecond)
	ka.Stop()

	select {
	case <-timedOut:
		t.Fatal("keep-alive timed out despite pongs")
	default:
	}
	if ka.Stats().MissedPongs != 0 {
		t.Errorf("MissedPongs = %d", ka.Stats().MissedPongs)
	}
	if ka.IsRunning() {
		t.Error("still running after Stop")
	}
}

func TestKeepAliveDefaults(t *testing.T) {
	cfg := DefaultKeepAliveConfig()
	if cfg.DetectionDelay() != MaxDetectionDelay {
		t.Errorf("DetectionDelay = %v, want %v", cfg.DetectionDelay(), MaxDetectionDelay)
	}
}
