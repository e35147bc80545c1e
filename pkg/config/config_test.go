package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/camkit-project/camkit-go/pkg/simulator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
listen: 127.0.0.1:9000
inspect: 127.0.0.1:9080
advertise: false
logLevel: debug
protocolLog: /tmp/camkit.clog
frameInterval: 10ms
maxStreams: 2
cameras:
  - id: usb-0
    position: front
    type: wide
    connection: usb
    frameRates:
      - {min: 15, max: 30}
    streams:
      - {kind: preview, format: yuv420, width: 640, height: 480}
      - {kind: photo, format: jpeg, width: 1280, height: 960}
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Listen)
	assert.Equal(t, "127.0.0.1:9080", cfg.Inspect)
	assert.False(t, cfg.Advertise)
	assert.Equal(t, "/tmp/camkit.clog", cfg.ProtocolLog)
	assert.Equal(t, 10*time.Millisecond, cfg.FrameInterval)
	assert.Equal(t, 2, cfg.MaxStreams)

	// fields absent from the file keep their defaults
	assert.Equal(t, Default().SettleDelay, cfg.SettleDelay)

	require.Len(t, cfg.Cameras, 1)
	assert.Equal(t, "usb-0", cfg.Cameras[0].ID)
	assert.Len(t, cfg.Cameras[0].Streams, 2)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestParseEmptyUsesDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":7450", cfg.Listen)
	assert.Len(t, cfg.Cameras, len(simulator.DefaultProfiles()))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown field", "listn: :1\n"},
		{"bad yaml", "listen: [\n"},
		{"bad level", "logLevel: loud\n"},
		{"empty listen", "listen: \"\"\n"},
		{"bad duration", "frameInterval: soon\n"},
		{"no cameras", "cameras: []\n"},
		{"tls cert without key", "tls: {enabled: true, certFile: a.crt}\n"},
		{"invalid camera", "cameras:\n  - id: x\n    position: up\n"},
		{"duplicate camera", `cameras:
  - {id: a, frameRates: [{min: 1, max: 1}], streams: [{kind: metadata}]}
  - {id: a, frameRates: [{min: 1, max: 1}], streams: [{kind: metadata}]}
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			var le *LoadError
			assert.ErrorAs(t, err, &le)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "camkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Listen)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, filepath.Join(dir, "missing.yaml"), le.File)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	require.NoError(t, os.WriteFile(path, []byte("logLevel: loud\n"), 0o600))
	_, err = Load(path)
	require.ErrorAs(t, err, &le)
	assert.Equal(t, path, le.File)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestApplyEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"CAMKIT_LISTEN=0.0.0.0:8000\nCAMKIT_LOG_LEVEL=warn\nCAMKIT_NAME=from-file\n"), 0o600))

	// the process environment wins over the file
	t.Setenv("CAMKIT_NAME", "from-env")
	t.Setenv("CAMKIT_ADVERTISE", "false")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(envFile))
	assert.Equal(t, "0.0.0.0:8000", cfg.Listen)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "from-env", cfg.Name)
	assert.False(t, cfg.Advertise)
}

func TestApplyEnvMissingFile(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(filepath.Join(t.TempDir(), "absent.env")))
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv("CAMKIT_ADVERTISE", "maybe")
	var le *LoadError
	assert.ErrorAs(t, Default().ApplyEnv(""), &le)

	t.Setenv("CAMKIT_ADVERTISE", "true")
	t.Setenv("CAMKIT_LOG_LEVEL", "chatty")
	assert.ErrorAs(t, Default().ApplyEnv(""), &le)
}

func TestSimulatorConfig(t *testing.T) {
	cfg := Default()
	sim := cfg.Simulator(nil)
	assert.Equal(t, cfg.Cameras, sim.Profiles)
	assert.Equal(t, cfg.FrameInterval, sim.FrameInterval)
	assert.Equal(t, cfg.MaxStreams, sim.MaxStreams)

	_, err := simulator.New(sim)
	assert.NoError(t, err)
}

func TestParseTLSAndState(t *testing.T) {
	cfg, err := Parse([]byte(`
stateFile: /var/lib/camkit/state.json
tls:
  enabled: true
  certFile: service.crt
  keyFile: service.key
`))
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/camkit/state.json", cfg.StateFile)
	assert.Equal(t, TLSConfig{Enabled: true, CertFile: "service.crt", KeyFile: "service.key"}, cfg.TLS)
}

func TestApplyEnvTLSAndState(t *testing.T) {
	t.Setenv("CAMKIT_TLS", "true")
	t.Setenv("CAMKIT_TLS_CERT", "a.crt")
	t.Setenv("CAMKIT_TLS_KEY", "a.key")
	t.Setenv("CAMKIT_STATE_FILE", "state.json")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(""))
	assert.True(t, cfg.TLS.Enabled)
	assert.Equal(t, "a.crt", cfg.TLS.CertFile)
	assert.Equal(t, "a.key", cfg.TLS.KeyFile)
	assert.Equal(t, "state.json", cfg.StateFile)

	t.Setenv("CAMKIT_TLS", "sometimes")
	var le *LoadError
	assert.ErrorAs(t, Default().ApplyEnv(""), &le)
}
