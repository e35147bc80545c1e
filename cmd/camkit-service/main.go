// Command camkit-service runs a simulated camera service.
//
// The service exposes the simulated cameras over the camkit remote
// protocol, advertises itself over mDNS and optionally serves the HTTP
// inspection API.
//
// Usage:
//
//	camkit-service [flags]
//
// Flags:
//
//	-config string        YAML configuration file
//	-env string           .env file with CAMKIT_* overrides (default ".env")
//	-listen string        Listen address (overrides the configuration)
//	-inspect string       Inspection API address (overrides the configuration)
//	-log-level string     debug, info, warn or error (overrides the configuration)
//	-protocol-log string  Protocol capture file (overrides the configuration)
//	-state string         Camera state file (overrides the configuration)
//	-tls                  Serve over TLS (self-signed unless configured)
//
// Examples:
//
//	# Start with the built-in cameras
//	camkit-service
//
//	# Start with a camera rig and the inspection API on :8080
//	camkit-service -config rig.yaml -inspect :8080
//
//	# Capture all protocol traffic for camkit-log
//	camkit-service -protocol-log service.clog -log-level debug
//
//	# Serve over TLS; clients pin the logged fingerprint
//	camkit-service -tls
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camkit-project/camkit-go/pkg/cert"
	"github.com/camkit-project/camkit-go/pkg/config"
	"github.com/camkit-project/camkit-go/pkg/discovery"
	"github.com/camkit-project/camkit-go/pkg/inspect"
	"github.com/camkit-project/camkit-go/pkg/log"
	"github.com/camkit-project/camkit-go/pkg/persistence"
	"github.com/camkit-project/camkit-go/pkg/remote"
	"github.com/camkit-project/camkit-go/pkg/simulator"
	"github.com/camkit-project/camkit-go/pkg/version"
)

// advertiseInterval is how often the advertised camera count is refreshed.
const advertiseInterval = 2 * time.Second

var flags struct {
	ConfigFile  string
	EnvFile     string
	Listen      string
	Inspect     string
	LogLevel    string
	ProtocolLog string
	StateFile   string
	TLS         bool
}

func init() {
	flag.StringVar(&flags.ConfigFile, "config", "", "YAML configuration file")
	flag.StringVar(&flags.EnvFile, "env", ".env", ".env file with CAMKIT_* overrides")
	flag.StringVar(&flags.Listen, "listen", "", "Listen address (overrides the configuration)")
	flag.StringVar(&flags.Inspect, "inspect", "", "Inspection API address (overrides the configuration)")
	flag.StringVar(&flags.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.StringVar(&flags.ProtocolLog, "protocol-log", "", "Protocol capture file")
	flag.StringVar(&flags.StateFile, "state", "", "Camera state file")
	flag.BoolVar(&flags.TLS, "tls", false, "Serve over TLS")
}

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("service failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// loadConfig builds the configuration from the file, the environment and
// the command line, in increasing precedence.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if flags.ConfigFile != "" {
		loaded, err := config.Load(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(flags.EnvFile); err != nil {
		return nil, err
	}

	if flags.Listen != "" {
		cfg.Listen = flags.Listen
	}
	if flags.Inspect != "" {
		cfg.Inspect = flags.Inspect
	}
	if flags.LogLevel != "" {
		cfg.LogLevel = flags.LogLevel
	}
	if flags.ProtocolLog != "" {
		cfg.ProtocolLog = flags.ProtocolLog
	}
	if flags.StateFile != "" {
		cfg.StateFile = flags.StateFile
	}
	if flags.TLS {
		cfg.TLS.Enabled = true
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	plog, closeLog, err := protocolLogger(cfg, logger)
	if err != nil {
		return err
	}
	defer closeLog()

	var store *persistence.StateStore
	if cfg.StateFile != "" {
		store = persistence.NewStateStore(cfg.StateFile)
		state, err := store.Load()
		if err != nil {
			return fmt.Errorf("load state: %w", err)
		}
		if state != nil && len(state.Cameras) > 0 {
			cfg.Cameras = state.Cameras
			logger.Info("restored cameras", slog.String("file", cfg.StateFile), slog.Int("cameras", len(state.Cameras)))
		}
	}

	svc, err := simulator.New(cfg.Simulator(logger.With(slog.String("component", "simulator"))))
	if err != nil {
		return fmt.Errorf("create simulator: %w", err)
	}
	defer svc.Close()
	if store != nil {
		defer func() {
			if err := store.Save(persistence.Snapshot(svc.Cameras())); err != nil {
				logger.Warn("save state", slog.Any("error", err))
			}
		}()
	}

	srvCfg := remote.DefaultServerConfig()
	srvCfg.Address = cfg.Listen
	srvCfg.Logger = logger.With(slog.String("component", "remote"))
	srvCfg.ProtocolLogger = plog
	if cfg.TLS.Enabled {
		id, err := serverIdentity(cfg, logger)
		if err != nil {
			return err
		}
		srvCfg.TLSConfig = cert.ServerTLSConfig(id)
		logger.Info("TLS enabled", slog.String("fingerprint", id.Fingerprint()))
	}

	server, err := remote.NewServer(svc, srvCfg)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	defer server.Stop()

	logger.Info("camera service started",
		slog.String("address", server.Addr().String()),
		slog.String("version", version.Current),
		slog.Int("cameras", len(svc.Cameras())))

	if cfg.Inspect != "" {
		api := inspect.NewServer(svc, inspect.ServerConfig{
			Addr:    cfg.Inspect,
			Version: version.Current,
			Logger:  logger.With(slog.String("component", "inspect")),
		})
		if err := api.Start(); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := api.Shutdown(shutdownCtx); err != nil {
				logger.Warn("inspection API shutdown", slog.Any("error", err))
			}
		}()
	}

	if cfg.Advertise {
		adv, err := advertise(ctx, cfg, server.Addr(), len(svc.Cameras()))
		if err != nil {
			// The service stays reachable by address.
			logger.Warn("mDNS advertising disabled", slog.Any("error", err))
		} else {
			defer adv.Stop()
			go refreshAdvertisement(ctx, adv, cfg, server.Addr(), svc, logger)
		}
	}

	<-ctx.Done()
	logger.Info("shutting down", slog.Int("connections", server.ConnectionCount()))
	return nil
}

// serverIdentity loads the configured certificate, or generates one.
func serverIdentity(cfg *config.Config, logger *slog.Logger) (*cert.Identity, error) {
	hosts := []string{"localhost", "127.0.0.1", "::1"}
	if h, err := os.Hostname(); err == nil {
		hosts = append(hosts, h)
	}

	if cfg.TLS.CertFile == "" {
		id, err := cert.GenerateSelfSigned(cfg.Name, hosts, cert.DefaultValidity)
		if err != nil {
			return nil, fmt.Errorf("generate certificate: %w", err)
		}
		return id, nil
	}

	id, created, err := cert.LoadOrGenerate(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.Name, hosts)
	if err != nil {
		return nil, fmt.Errorf("load certificate: %w", err)
	}
	if created {
		logger.Info("generated certificate", slog.String("file", cfg.TLS.CertFile))
	}
	if err := cert.CheckValidity(id.Certificate, time.Now()); err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.TLS.CertFile, err)
	}
	return id, nil
}

// protocolLogger combines the capture file and the debug log. The returned
// function closes the capture file.
func protocolLogger(cfg *config.Config, logger *slog.Logger) (log.Logger, func(), error) {
	var loggers []log.Logger
	closeFn := func() {}

	if cfg.ProtocolLog != "" {
		fl, err := log.NewFileLogger(cfg.ProtocolLog)
		if err != nil {
			return nil, nil, fmt.Errorf("open protocol log: %w", err)
		}
		loggers = append(loggers, fl)
		closeFn = func() {
			if err := fl.Close(); err != nil {
				logger.Warn("close protocol log", slog.Any("error", err))
			}
			if n := fl.Dropped(); n > 0 {
				logger.Warn("protocol events dropped", slog.Uint64("count", n))
			}
		}
		logger.Info("capturing protocol traffic", slog.String("file", cfg.ProtocolLog))
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		loggers = append(loggers, log.NewSlogAdapter(logger.With(slog.String("component", "protocol"))))
	}
	return log.NewMultiLogger(loggers...), closeFn, nil
}

func serviceInfo(cfg *config.Config, addr net.Addr, cameras int) (*discovery.ServiceInfo, error) {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok {
		return nil, errors.New("listen address is not TCP")
	}
	return &discovery.ServiceInfo{
		InstanceName: cfg.Name,
		Port:         uint16(tcp.Port),
		Version:      version.Current,
		Cameras:      cameras,
		Name:         cfg.Name,
	}, nil
}

func advertise(ctx context.Context, cfg *config.Config, addr net.Addr, cameras int) (*discovery.MDNSAdvertiser, error) {
	info, err := serviceInfo(cfg, addr, cameras)
	if err != nil {
		return nil, err
	}
	adv, err := discovery.NewMDNSAdvertiser(discovery.DefaultAdvertiserConfig())
	if err != nil {
		return nil, err
	}
	if err := adv.Advertise(ctx, info); err != nil {
		return nil, err
	}
	return adv, nil
}

// refreshAdvertisement keeps the advertised camera count in step with
// hot-plug changes.
func refreshAdvertisement(ctx context.Context, adv *discovery.MDNSAdvertiser, cfg *config.Config, addr net.Addr, svc *simulator.Service, logger *slog.Logger) {
	ticker := time.NewTicker(advertiseInterval)
	defer ticker.Stop()

	last := len(svc.Cameras())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		n := len(svc.Cameras())
		if n == last {
			continue
		}
		info, err := serviceInfo(cfg, addr, n)
		if err == nil {
			err = adv.Update(info)
		}
		if err != nil {
			logger.Warn("update advertisement", slog.Any("error", err))
			continue
		}
		logger.Debug("advertisement updated", slog.Int("cameras", n))
		last = n
	}
}
