// Package log provides protocol and lifecycle capture for camkit.
//
// It is separate from operational logging (slog): capture produces a
// machine-readable trace of frames, decoded remote messages and core state
// changes (sessions, outputs, device handles) for debugging and replay.
//
// # Basic Usage
//
//	// Development: mirror events to slog
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// Production: append to a capture file
//	cfg.ProtocolLogger, _ = log.NewFileLogger("/var/log/camkit/service.clog")
//
//	// Both
//	cfg.ProtocolLogger = log.NewMultiLogger(slogAdapter, fileLogger)
//
// # File Format
//
// Capture files are a stream of CBOR-encoded events with the .clog
// extension. The camkit-log command views and filters them.
package log
