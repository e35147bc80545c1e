// Package config loads the camera service configuration.
//
// The configuration is a YAML file; every field has a default, so an
// empty or missing file yields a service with the built-in cameras.
// Selected fields can be overridden from the environment or from a
// .env file:
//
//	CAMKIT_LISTEN        listen address of the remote service
//	CAMKIT_INSPECT       listen address of the inspection API ("" disables it)
//	CAMKIT_ADVERTISE     advertise the service over mDNS (true/false)
//	CAMKIT_NAME          instance name used for mDNS
//	CAMKIT_LOG_LEVEL     debug, info, warn or error
//	CAMKIT_PROTOCOL_LOG  path of the protocol capture file
//	CAMKIT_STATE_FILE    path of the camera state file ("" disables it)
//	CAMKIT_TLS           serve over TLS (true/false)
//	CAMKIT_TLS_CERT      PEM certificate of the service
//	CAMKIT_TLS_KEY       PEM private key of the service
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/camkit-project/camkit-go/pkg/simulator"
	"github.com/camkit-project/camkit-go/pkg/transport"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the service configuration.
type Config struct {
	// Listen is the address of the remote camera service.
	Listen string `yaml:"listen"`

	// Inspect is the address of the HTTP inspection API. Empty disables it.
	Inspect string `yaml:"inspect"`

	// Advertise enables mDNS advertisement under Name.
	Advertise bool   `yaml:"advertise"`
	Name      string `yaml:"name"`

	LogLevel    string `yaml:"logLevel"`
	ProtocolLog string `yaml:"protocolLog"`

	// Simulation timing and limits.
	FrameInterval time.Duration `yaml:"frameInterval"`
	SettleDelay   time.Duration `yaml:"settleDelay"`
	MaxStreams    int           `yaml:"maxStreams"`

	// Cameras replaces the built-in camera profiles when set.
	Cameras []simulator.Profile `yaml:"cameras"`

	// StateFile keeps the plugged cameras across restarts. A saved state
	// takes precedence over Cameras.
	StateFile string `yaml:"stateFile"`

	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig configures TLS on the remote service. With TLS enabled and no
// files given, a self-signed certificate is generated on every start.
// Files that do not exist yet are created.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"certFile"`
	KeyFile  string `yaml:"keyFile"`
}

// Default returns the default configuration.
func Default() *Config {
	sim := simulator.DefaultConfig()
	return &Config{
		Listen:        fmt.Sprintf(":%d", transport.DefaultPort),
		Advertise:     true,
		Name:          "camkit",
		LogLevel:      "info",
		FrameInterval: sim.FrameInterval,
		SettleDelay:   sim.SettleDelay,
		MaxStreams:    sim.MaxStreams,
		Cameras:       sim.Profiles,
	}
}

// LoadError provides details about a configuration loading error.
type LoadError struct {
	// File is the path of the file that failed to load.
	File string

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.File == "" {
		return msg
	}
	return e.File + ": " + msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Parse parses a YAML configuration on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &LoadError{Message: "failed to parse YAML", Cause: err}
	}

	if err := cfg.Validate(); err != nil {
		return nil, &LoadError{Message: "invalid configuration", Cause: err}
	}
	return cfg, nil
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}

	cfg, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{File: path, Message: err.Error()}
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return errors.New("listen address is required")
	}
	if c.Advertise && c.Name == "" {
		return errors.New("name is required when advertising")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.FrameInterval < 0 || c.SettleDelay < 0 || c.MaxStreams < 0 {
		return errors.New("timing and limits must not be negative")
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		return errors.New("tls certFile and keyFile must be set together")
	}
	if len(c.Cameras) == 0 {
		return errors.New("at least one camera is required")
	}

	seen := make(map[string]bool, len(c.Cameras))
	for i, p := range c.Cameras {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("cameras[%d]: %w", i, err)
		}
		if seen[p.ID] {
			return fmt.Errorf("cameras[%d]: duplicate id %q", i, p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// ApplyEnv applies CAMKIT_* overrides. Variables set in the process
// environment take precedence over those in envFile; a missing envFile is
// ignored. The result is validated.
func (c *Config) ApplyEnv(envFile string) error {
	fileVars := map[string]string{}
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileVars = vars
		case !errors.Is(err, fs.ErrNotExist):
			return &LoadError{File: envFile, Message: "failed to read env file", Cause: err}
		}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}

	if v, ok := lookup("CAMKIT_LISTEN"); ok {
		c.Listen = v
	}
	if v, ok := lookup("CAMKIT_INSPECT"); ok {
		c.Inspect = v
	}
	if v, ok := lookup("CAMKIT_NAME"); ok {
		c.Name = v
	}
	if v, ok := lookup("CAMKIT_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := lookup("CAMKIT_PROTOCOL_LOG"); ok {
		c.ProtocolLog = v
	}
	if v, ok := lookup("CAMKIT_STATE_FILE"); ok {
		c.StateFile = v
	}
	if v, ok := lookup("CAMKIT_TLS_CERT"); ok {
		c.TLS.CertFile = v
	}
	if v, ok := lookup("CAMKIT_TLS_KEY"); ok {
		c.TLS.KeyFile = v
	}
	for key, dst := range map[string]*bool{
		"CAMKIT_ADVERTISE": &c.Advertise,
		"CAMKIT_TLS":       &c.TLS.Enabled,
	} {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &LoadError{Message: key, Cause: err}
		}
		*dst = b
	}

	if err := c.Validate(); err != nil {
		return &LoadError{Message: "invalid configuration", Cause: err}
	}
	return nil
}

// Simulator returns the simulator configuration.
func (c *Config) Simulator(logger *slog.Logger) simulator.Config {
	return simulator.Config{
		Profiles:      c.Cameras,
		FrameInterval: c.FrameInterval,
		SettleDelay:   c.SettleDelay,
		MaxStreams:    c.MaxStreams,
		Logger:        logger,
	}
}
