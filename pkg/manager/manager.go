// Package manager is the entry point of the core: it enumerates cameras,
// opens device handles, creates sessions and outputs, and distributes
// device hot-plug events.
package manager

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/camkit-project/camkit-go/pkg/camerr"
	"github.com/camkit-project/camkit-go/pkg/device"
	"github.com/camkit-project/camkit-go/pkg/dispatch"
	"github.com/camkit-project/camkit-go/pkg/log"
	"github.com/camkit-project/camkit-go/pkg/metadata"
	"github.com/camkit-project/camkit-go/pkg/output"
	"github.com/camkit-project/camkit-go/pkg/remote"
	"github.com/camkit-project/camkit-go/pkg/session"
	"github.com/camkit-project/camkit-go/pkg/version"
)

// Status is the availability of a known device.
type Status uint8

const (
	StatusAvailable   Status = 0
	StatusUnavailable Status = 1
)

func (s Status) String() string {
	if s == StatusAvailable {
		return "AVAILABLE"
	}
	return "UNAVAILABLE"
}

// AvailabilityEvent reports a device appearing or disappearing.
type AvailabilityEvent struct {
	DeviceID string
	Status   Status

	// Descriptor is the new descriptor for available devices and the last
	// known one for removed devices. It may be nil for unknown devices.
	Descriptor *device.Descriptor
}

// Config configures a Manager.
type Config struct {
	// Poster delivers listener callbacks for every object the manager
	// creates. When nil the manager runs its own dispatch.Queue, closed by
	// Close. dispatch.Inline is only safe over in-process services: a
	// listener that calls back into a remote.Client from the client's read
	// goroutine waits for a response nothing can read.
	Poster dispatch.Poster

	// Logger receives diagnostics (optional).
	Logger *slog.Logger

	// ProtocolLogger receives state changes (optional).
	ProtocolLogger log.Logger

	// ManifestVersion selects the capability manifest devices are checked
	// against. Defaults to version.Current.
	ManifestVersion string

	// StrictManifest hides devices whose capabilities miss mandatory
	// manifest entries. By default they are listed and the gaps logged.
	StrictManifest bool
}

// DefaultConfig returns the default manager configuration.
func DefaultConfig() Config {
	return Config{
		ManifestVersion: version.Current,
	}
}

type entry struct {
	desc   *device.Descriptor
	status Status
}

// Manager is the device registry.
type Manager struct {
	svc      remote.Service
	cfg      Config
	logger   *slog.Logger
	manifest *version.Manifest
	queue    *dispatch.Queue

	mu      sync.RWMutex
	devices map[string]*entry
	order   []string

	listenerMu   sync.Mutex
	listeners    map[int]func(AvailabilityEvent)
	nextListener int
}

// New creates a manager on svc and subscribes to its hot-plug events.
func New(svc remote.Service, cfg Config) (*Manager, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	cfg.ProtocolLogger = log.OrNoop(cfg.ProtocolLogger)
	if cfg.ManifestVersion == "" {
		cfg.ManifestVersion = version.Current
	}

	manifest, err := version.LoadManifest(cfg.ManifestVersion)
	if err != nil {
		if known, lerr := version.AvailableManifests(); lerr == nil {
			return nil, fmt.Errorf("load capability manifest (available: %s): %w", strings.Join(known, ", "), err)
		}
		return nil, fmt.Errorf("load capability manifest: %w", err)
	}

	m := &Manager{
		svc:       svc,
		cfg:       cfg,
		logger:    cfg.Logger,
		manifest:  manifest,
		devices:   make(map[string]*entry),
		listeners: make(map[int]func(AvailabilityEvent)),
	}
	if m.cfg.Poster == nil {
		m.queue = dispatch.New(dispatch.DefaultConfig())
		m.cfg.Poster = m.queue
	}
	svc.SetAvailabilityHandler(m.onAvailability)
	return m, nil
}

// Flush waits until callbacks posted to the manager's own queue have run.
// It returns immediately when the caller supplied a Poster.
func (m *Manager) Flush(ctx context.Context) error {
	if m.queue == nil {
		return nil
	}
	return m.queue.Flush(ctx)
}

// Close unsubscribes from hot-plug events and stops the manager's own
// callback queue, if any.
func (m *Manager) Close() {
	m.svc.SetAvailabilityHandler(nil)
	if m.queue != nil {
		m.queue.Close()
	}
}

// Enumerate lists the cameras present on the service. Devices whose
// capabilities lack mandatory entries are listed with defaulted fields
// unless Config.StrictManifest is set.
func (m *Manager) Enumerate(ctx context.Context) ([]*device.Descriptor, error) {
	infos, err := m.svc.EnumerateDevices(ctx)
	if err != nil {
		return nil, camerr.Remote("EnumerateDevices", err)
	}

	devices := make(map[string]*entry, len(infos))
	order := make([]string, 0, len(infos))
	out := make([]*device.Descriptor, 0, len(infos))
	for _, info := range infos {
		desc, ok := m.describe(info.ID, info.Capabilities)
		if !ok {
			continue
		}
		if _, dup := devices[info.ID]; dup {
			m.logger.Warn("duplicate device id in enumeration", "device_id", info.ID)
			continue
		}
		devices[info.ID] = &entry{desc: desc, status: StatusAvailable}
		order = append(order, info.ID)
		out = append(out, desc)
	}

	m.mu.Lock()
	m.devices = devices
	m.order = order
	m.mu.Unlock()

	m.logger.Debug("devices enumerated", "count", len(out))
	return out, nil
}

// describe validates caps and builds a descriptor.
func (m *Manager) describe(id string, caps *metadata.Store) (*device.Descriptor, bool) {
	if caps == nil {
		caps = metadata.NewStore(0, 0)
	}
	res := version.ValidateCapabilities(m.manifest, caps)
	for _, w := range res.Warnings {
		m.logger.Warn("device capability warning", "device_id", id, "detail", w)
	}
	if !res.Valid {
		for _, e := range res.Errors {
			m.logger.Warn("device capability missing", "device_id", id, "detail", e)
		}
		if m.cfg.StrictManifest {
			m.logger.Warn("device skipped", "device_id", id,
				"manifest", m.manifest.Version, "mandatory", m.manifest.MandatoryNames())
			return nil, false
		}
	}
	return device.NewDescriptor(id, caps), true
}

// Devices returns the known devices in enumeration order, including those
// currently unavailable.
func (m *Manager) Devices() []*device.Descriptor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*device.Descriptor, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.devices[id].desc)
	}
	return out
}

// Descriptor returns the known descriptor for id.
func (m *Manager) Descriptor(id string) (*device.Descriptor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.devices[id]
	if !ok {
		return nil, false
	}
	return e.desc, true
}

// Status returns the availability of a known device.
func (m *Manager) Status(id string) (Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.devices[id]
	if !ok {
		return StatusUnavailable, false
	}
	return e.status, true
}

// OpenHandle opens a control handle on desc.
func (m *Manager) OpenHandle(ctx context.Context, desc *device.Descriptor) (*device.Handle, error) {
	if desc == nil {
		return nil, camerr.Usage("OpenHandle", "nil descriptor")
	}
	if st, ok := m.Status(desc.ID()); ok && st == StatusUnavailable {
		return nil, camerr.Usage("OpenHandle", "device %s is unavailable", desc.ID())
	}
	return device.NewHandle(ctx, m.svc, desc, device.HandleConfig{
		Poster:         m.cfg.Poster,
		Logger:         m.logger.With("device_id", desc.ID()),
		ProtocolLogger: m.cfg.ProtocolLogger,
	})
}

// CreateSession creates a capture session.
func (m *Manager) CreateSession(ctx context.Context) (*session.Session, error) {
	return session.New(ctx, m.svc, session.Config{
		Poster:         m.cfg.Poster,
		Logger:         m.logger,
		ProtocolLogger: m.cfg.ProtocolLogger,
	})
}

func (m *Manager) outputConfig() output.Config {
	return output.Config{
		Poster:         m.cfg.Poster,
		Logger:         m.logger,
		ProtocolLogger: m.cfg.ProtocolLogger,
	}
}

// CreatePreviewOutput creates a preview output streaming into spec.Sink.
func (m *Manager) CreatePreviewOutput(ctx context.Context, spec remote.StreamSpec) (*output.PreviewOutput, error) {
	return output.NewPreview(ctx, m.svc, spec, m.outputConfig())
}

// CreatePhotoOutput creates a photo output delivering into spec.Sink.
func (m *Manager) CreatePhotoOutput(ctx context.Context, spec remote.StreamSpec) (*output.PhotoOutput, error) {
	return output.NewPhoto(ctx, m.svc, spec, m.outputConfig())
}

// CreateVideoOutput creates a video output streaming into spec.Sink.
func (m *Manager) CreateVideoOutput(ctx context.Context, spec remote.StreamSpec) (*output.VideoOutput, error) {
	return output.NewVideo(ctx, m.svc, spec, m.outputConfig())
}

// CreateMetadataOutput creates a metadata output reporting types.
func (m *Manager) CreateMetadataOutput(ctx context.Context, types []remote.MetadataObjectType) (*output.MetadataOutput, error) {
	if len(types) == 0 {
		return nil, camerr.Usage("CreateMetadataOutput", "no metadata object types")
	}
	return output.NewMetadata(ctx, m.svc, types, m.outputConfig())
}

// AddAvailabilityListener registers fn for hot-plug events. The returned
// function unregisters it.
func (m *Manager) AddAvailabilityListener(fn func(AvailabilityEvent)) (remove func()) {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	id := m.nextListener
	m.nextListener++
	m.listeners[id] = fn
	return func() {
		m.listenerMu.Lock()
		defer m.listenerMu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *Manager) onAvailability(change remote.AvailabilityChange) {
	ev := AvailabilityEvent{DeviceID: change.DeviceID, Status: StatusUnavailable}

	if change.Available {
		desc, ok := m.describe(change.DeviceID, change.Capabilities)
		if !ok {
			return
		}
		ev.Status = StatusAvailable
		ev.Descriptor = desc

		m.mu.Lock()
		if _, known := m.devices[change.DeviceID]; !known {
			m.order = append(m.order, change.DeviceID)
		}
		m.devices[change.DeviceID] = &entry{desc: desc, status: StatusAvailable}
		m.mu.Unlock()
	} else {
		m.mu.Lock()
		if e, ok := m.devices[change.DeviceID]; ok {
			e.status = StatusUnavailable
			ev.Descriptor = e.desc
		}
		m.mu.Unlock()
	}

	m.logger.Info("device availability changed", "device_id", ev.DeviceID, "status", ev.Status.String())

	m.listenerMu.Lock()
	fns := make([]func(AvailabilityEvent), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.listenerMu.Unlock()

	for _, fn := range fns {
		if !m.cfg.Poster.Post(func() { fn(ev) }) {
			m.logger.Debug("availability callback dropped", "device_id", ev.DeviceID)
		}
	}
}
