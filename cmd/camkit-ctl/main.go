// Command camkit-ctl is an interactive client for camkit camera services.
//
// It connects to a service by address, or finds one over mDNS, and offers
// a shell to inspect, configure and run the remote cameras.
//
// Usage:
//
//	camkit-ctl [flags]
//
// Flags:
//
//	-addr string          Service address (host:port); browse mDNS when empty
//	-instance string      mDNS instance to connect to (default: first found)
//	-timeout duration     Request timeout (default 10s)
//	-log-level string     debug, info, warn or error (default "warn")
//	-protocol-log string  Protocol capture file
//	-tls                  Connect over TLS, verifying against the system roots
//	-ca string            PEM bundle to verify the service against (implies -tls)
//	-pin string           SHA-256 fingerprint of the service certificate (implies -tls)
//
// Examples:
//
//	# Connect to the first service on the local network
//	camkit-ctl
//
//	# Connect by address and capture the traffic
//	camkit-ctl -addr 192.168.1.20:7450 -protocol-log ctl.clog
//
//	# Connect to a TLS service with a self-signed certificate
//	camkit-ctl -addr 192.168.1.20:7450 -pin 3f2a...e1
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camkit-project/camkit-go/cmd/camkit-ctl/shell"
	"github.com/camkit-project/camkit-go/pkg/cert"
	"github.com/camkit-project/camkit-go/pkg/discovery"
	"github.com/camkit-project/camkit-go/pkg/log"
	"github.com/camkit-project/camkit-go/pkg/manager"
	"github.com/camkit-project/camkit-go/pkg/remote"
)

var flags struct {
	Addr        string
	Instance    string
	Timeout     time.Duration
	LogLevel    string
	ProtocolLog string
	TLS         bool
	CAFile      string
	Pin         string
}

func init() {
	flag.StringVar(&flags.Addr, "addr", "", "Service address (host:port); browse mDNS when empty")
	flag.StringVar(&flags.Instance, "instance", "", "mDNS instance to connect to (default: first found)")
	flag.DurationVar(&flags.Timeout, "timeout", remote.DefaultRequestTimeout, "Request timeout")
	flag.StringVar(&flags.LogLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	flag.StringVar(&flags.ProtocolLog, "protocol-log", "", "Protocol capture file")
	flag.BoolVar(&flags.TLS, "tls", false, "Connect over TLS")
	flag.StringVar(&flags.CAFile, "ca", "", "PEM bundle to verify the service against")
	flag.StringVar(&flags.Pin, "pin", "", "SHA-256 fingerprint of the service certificate")
}

func main() {
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(flags.LogLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q\n", flags.LogLevel)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	browser, err := discovery.NewMDNSBrowser(discovery.DefaultBrowserConfig())
	if err != nil {
		return err
	}
	defer browser.Stop()

	addr := flags.Addr
	if addr == "" {
		fmt.Println("Browsing for camera services...")
		svc, err := browser.Find(ctx, flags.Instance)
		if err != nil {
			return fmt.Errorf("no camera service found: %w", err)
		}
		addr = svc.Addr()
		fmt.Printf("Found %s at %s (%d cameras)\n", svc.InstanceName, addr, svc.Cameras)
	}

	var plog log.Logger = log.NoopLogger{}
	if flags.ProtocolLog != "" {
		fl, err := log.NewFileLogger(flags.ProtocolLog)
		if err != nil {
			return fmt.Errorf("open protocol log: %w", err)
		}
		defer fl.Close()
		plog = fl
	}

	clientCfg := remote.DefaultClientConfig()
	clientCfg.RequestTimeout = flags.Timeout
	clientCfg.Logger = logger
	clientCfg.ProtocolLogger = plog
	clientCfg.TLSConfig, err = clientTLS(addr)
	if err != nil {
		return err
	}

	client, err := remote.Dial(ctx, addr, clientCfg)
	if err != nil {
		return err
	}
	defer client.Close()

	// Listener callbacks run on the manager's own queue, off the client's
	// read loop.
	mgrCfg := manager.DefaultConfig()
	mgrCfg.Logger = logger
	mgrCfg.ProtocolLogger = plog

	mgr, err := manager.New(client, mgrCfg)
	if err != nil {
		return err
	}
	defer mgr.Close()

	if _, err := mgr.Enumerate(ctx); err != nil {
		return err
	}

	sh := shell.New(mgr, shell.Config{Browser: browser})
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sh.Shutdown(releaseCtx); err != nil {
			logger.Warn("release failed", slog.Any("error", err))
		}
	}()

	go func() {
		select {
		case <-client.Done():
			logger.Error("connection lost", slog.Any("error", client.Err()))
		case <-ctx.Done():
		}
	}()
	return sh.Run(ctx)
}

// clientTLS returns the TLS configuration selected by the flags, or nil for
// a plain connection.
func clientTLS(addr string) (*tls.Config, error) {
	switch {
	case flags.Pin != "":
		return cert.PinnedClientTLSConfig(flags.Pin), nil
	case flags.CAFile != "" || flags.TLS:
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("address %q: %w", addr, err)
		}
		if flags.CAFile == "" {
			return cert.ClientTLSConfig(nil, host), nil
		}
		pool, err := cert.ReadCertPool(flags.CAFile)
		if err != nil {
			return nil, err
		}
		return cert.ClientTLSConfig(pool, host), nil
	default:
		return nil, nil
	}
}
