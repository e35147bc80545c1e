package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/camkit-project/camkit-go/pkg/device"
	"github.com/camkit-project/camkit-go/pkg/inspect"
	"github.com/camkit-project/camkit-go/pkg/manager"
	"github.com/camkit-project/camkit-go/pkg/output"
	"github.com/camkit-project/camkit-go/pkg/remote"
)

var (
	errNoDevice  = errors.New("no camera open (use 'open <id>')")
	errNoSession = errors.New("no session (use 'start')")
)

func (s *Shell) cmdDevices() {
	descs := s.mgr.Devices()
	if len(descs) == 0 {
		s.printf("No cameras (try 'refresh').\n")
		return
	}
	for _, d := range descs {
		status, _ := s.mgr.Status(d.ID())
		marker := " "
		if s.handle != nil && s.handle.Descriptor().ID() == d.ID() {
			marker = "*"
		}
		s.printf("%s %-12s %-6s %-11s %-9s %s\n", marker, d.ID(), d.Position(), d.Type(), d.ConnectionType(), status)
	}
}

func (s *Shell) cmdRefresh(ctx context.Context) error {
	descs, err := s.mgr.Enumerate(ctx)
	if err != nil {
		return err
	}
	s.printf("Found %d cameras.\n", len(descs))
	s.cmdDevices()
	return nil
}

func (s *Shell) descriptor(id string) (*device.Descriptor, error) {
	d, ok := s.mgr.Descriptor(id)
	if !ok {
		return nil, fmt.Errorf("unknown camera %q", id)
	}
	return d, nil
}

func (s *Shell) cmdInspect(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: inspect <id>[/<tag>]")
	}
	path, err := inspect.ParsePath(args[0])
	if err != nil {
		return err
	}
	d, err := s.descriptor(path.DeviceID)
	if err != nil {
		return err
	}

	if path.IsPartial {
		s.printf("%s:\n%s", d.ID(), s.formatter.FormatStore(d.Capabilities(), 1))
		return nil
	}
	it, ok := d.Capabilities().Get(path.Tag)
	if !ok {
		return fmt.Errorf("%s has no capability %s", d.ID(), inspect.TagDisplayName(path.Tag))
	}
	s.printf("%s\n", s.formatter.FormatItem(it))
	return nil
}

func (s *Shell) cmdOutputs(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: outputs <id>")
	}
	d, err := s.descriptor(args[0])
	if err != nil {
		return err
	}

	c := s.mgr.SupportedOutputCapability(d)
	printProfiles := func(label string, ps []manager.Profile) {
		for _, p := range ps {
			s.printf("  %-8s %s %dx%d\n", label, p.Format, p.Width, p.Height)
		}
	}
	printProfiles("preview", c.PreviewProfiles)
	printProfiles("photo", c.PhotoProfiles)
	for _, v := range c.VideoProfiles {
		rates := make([]string, len(v.FrameRates))
		for i, r := range v.FrameRates {
			rates[i] = r.String()
		}
		s.printf("  %-8s %s %dx%d fps %s\n", "video", v.Format, v.Width, v.Height, strings.Join(rates, " "))
	}
	for _, t := range c.MetadataObjectTypes {
		s.printf("  %-8s %s\n", "metadata", t)
	}
	return nil
}

func (s *Shell) cmdOpen(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: open <id>")
	}
	if s.handle != nil {
		return fmt.Errorf("%s is open (use 'close' first)", s.handle.Descriptor().ID())
	}
	d, err := s.descriptor(args[0])
	if err != nil {
		return err
	}

	h, err := s.mgr.OpenHandle(ctx, d)
	if err != nil {
		return err
	}
	if err := h.Open(ctx); err != nil {
		_ = h.Release(ctx)
		return err
	}

	id := d.ID()
	h.SetFocusStateListener(func(st device.FocusState) {
		s.printf("[%s] focus %s\n", id, st)
	})
	h.SetExposureStateListener(func(st device.ExposureState) {
		s.printf("[%s] exposure %s\n", id, st)
	})
	s.stopWatch = h.WatchErrors(func(e *device.DeviceError) {
		s.printf("[%s] error: %v\n", id, e)
	})
	s.handle = h
	s.printf("Opened %s.\n", id)
	return nil
}

func (s *Shell) cmdSet(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: set <%s> <value>", strings.Join(settingNames, "|"))
	}
	if s.handle == nil {
		return errNoDevice
	}
	apply, err := parseSetting(args[0], args[1])
	if err != nil {
		return err
	}
	if err := s.handle.Configure(ctx, apply); err != nil {
		return err
	}
	s.printf("OK\n")
	return nil
}

func (s *Shell) cmdStatus() {
	if s.handle == nil {
		s.printf("No camera open.\n")
		return
	}
	h := s.handle
	s.printf("Camera %s (%s)\n", h.Descriptor().ID(), h.State())
	if v, ok := h.ZoomRatio(); ok {
		s.printf("  zoom:          %.2f\n", v)
	}
	if v, ok := h.FocusMode(); ok {
		s.printf("  focus:         %s\n", v)
	}
	if v, ok := h.FocusPoint(); ok {
		s.printf("  focus-point:   %.2f,%.2f\n", v.X, v.Y)
	}
	if v, ok := h.ExposureMode(); ok {
		s.printf("  exposure:      %s\n", v)
	}
	if v, ok := h.ExposureValue(); ok {
		s.printf("  bias:          %.2f\n", v)
	}
	if v, ok := h.FlashMode(); ok {
		s.printf("  flash:         %s\n", v)
	}
	if v, ok := h.VideoStabilizationMode(); ok {
		s.printf("  stabilization: %s\n", v)
	}
	if v, ok := h.FrameRateRange(); ok {
		s.printf("  fps:           %s\n", v)
	}
	if s.sess != nil {
		s.printf("Session %s (%s), %d outputs\n", s.sess.ID(), s.sess.State(), len(s.sess.Outputs()))
	}
}

// cmdStart configures and starts a session with a preview output and,
// when the camera supports it, a photo output.
func (s *Shell) cmdStart(ctx context.Context) error {
	if s.handle == nil {
		return errNoDevice
	}
	if s.sess != nil {
		return s.sess.Start(ctx)
	}

	caps := s.mgr.SupportedOutputCapability(s.handle.Descriptor())
	if len(caps.PreviewProfiles) == 0 {
		return errors.New("camera has no preview profile")
	}

	sess, err := s.mgr.CreateSession(ctx)
	if err != nil {
		return err
	}
	s.sess = sess
	sess.SetErrorListener(func(err error) {
		s.printf("[session] error: %v\n", err)
	})

	preview, err := s.mgr.CreatePreviewOutput(ctx, caps.PreviewProfiles[0].StreamSpec(remote.StreamPreview, "ctl-preview"))
	if err != nil {
		return err
	}
	s.preview = preview
	preview.SetListener(output.FrameListener{
		OnError: func(code int32) { s.printf("[preview] stream error %d\n", code) },
	})

	if len(caps.PhotoProfiles) > 0 {
		photo, err := s.mgr.CreatePhotoOutput(ctx, caps.PhotoProfiles[0].StreamSpec(remote.StreamPhoto, "ctl-photo"))
		if err != nil {
			return err
		}
		s.photo = photo
		photo.SetListener(output.PhotoListener{
			OnCaptureEnded: func(id, frames uint32) { s.printf("[photo] capture %d done (%d frames)\n", id, frames) },
			OnCaptureError: func(id uint32, code int32) { s.printf("[photo] capture %d failed: %d\n", id, code) },
		})
	}

	if err := sess.BeginConfig(ctx); err != nil {
		return err
	}
	if err := sess.AddInput(s.handle); err != nil {
		return err
	}
	if err := sess.AddOutput(preview); err != nil {
		return err
	}
	if s.photo != nil {
		if err := sess.AddOutput(s.photo); err != nil {
			return err
		}
	}
	if err := sess.CommitConfig(ctx); err != nil {
		return err
	}
	if err := sess.Start(ctx); err != nil {
		return err
	}
	s.printf("Session %s running.\n", sess.ID())
	return nil
}

func (s *Shell) cmdCapture(ctx context.Context, args []string) error {
	if s.photo == nil {
		return errNoSession
	}
	var settings output.PhotoSettings
	if len(args) > 0 {
		q, err := parseQuality(args[0])
		if err != nil {
			return err
		}
		settings.Quality = &q
	}
	id, err := s.photo.Capture(ctx, &settings)
	if err != nil {
		return err
	}
	s.printf("Capture %d requested.\n", id)
	return nil
}

func (s *Shell) cmdStop(ctx context.Context) error {
	if s.sess == nil {
		return errNoSession
	}
	if err := s.sess.Stop(ctx); err != nil {
		return err
	}
	s.printf("Session %s stopped.\n", s.sess.ID())
	return nil
}

func (s *Shell) cmdDiscover(ctx context.Context) error {
	if s.cfg.Browser == nil {
		return errors.New("discovery is not available")
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.DiscoverTimeout)
	defer cancel()

	services, err := s.cfg.Browser.Browse(ctx)
	if err != nil {
		return err
	}
	n := 0
	for svc := range services {
		n++
		s.printf("  %-20s %-22s v%s cameras=%d\n", svc.InstanceName, svc.Addr(), svc.Version, svc.Cameras)
	}
	s.printf("Found %d services.\n", n)
	return nil
}

// settingNames are the settings accepted by the set command.
var settingNames = []string{"zoom", "bias", "focus", "focus-point", "exposure", "exposure-point", "flash", "stabilization", "fps"}

// parseSetting returns a transaction body applying one setting.
func parseSetting(name, value string) (func(*device.Handle) error, error) {
	switch strings.ToLower(name) {
	case "zoom":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("zoom: %w", err)
		}
		return func(h *device.Handle) error { return h.SetZoomRatio(v) }, nil
	case "bias":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("bias: %w", err)
		}
		return func(h *device.Handle) error { return h.SetExposureBias(v) }, nil
	case "focus":
		m, err := parseEnum("focus mode", value, focusModes)
		if err != nil {
			return nil, err
		}
		return func(h *device.Handle) error { return h.SetFocusMode(m) }, nil
	case "focus-point":
		p, err := parsePoint(value)
		if err != nil {
			return nil, err
		}
		return func(h *device.Handle) error { return h.SetFocusPoint(p) }, nil
	case "exposure":
		m, err := parseEnum("exposure mode", value, exposureModes)
		if err != nil {
			return nil, err
		}
		return func(h *device.Handle) error { return h.SetExposureMode(m) }, nil
	case "exposure-point":
		p, err := parsePoint(value)
		if err != nil {
			return nil, err
		}
		return func(h *device.Handle) error { return h.SetExposurePoint(p) }, nil
	case "flash":
		m, err := parseEnum("flash mode", value, flashModes)
		if err != nil {
			return nil, err
		}
		return func(h *device.Handle) error { return h.SetFlashMode(m) }, nil
	case "stabilization":
		m, err := parseEnum("stabilization mode", value, stabilizationModes)
		if err != nil {
			return nil, err
		}
		return func(h *device.Handle) error { return h.SetVideoStabilizationMode(m) }, nil
	case "fps":
		r, err := parseRange(value)
		if err != nil {
			return nil, err
		}
		return func(h *device.Handle) error { return h.SetFrameRateRange(r) }, nil
	}
	return nil, fmt.Errorf("unknown setting %q", name)
}

var (
	focusModes = []device.FocusMode{
		device.FocusModeManual, device.FocusModeContinuousAuto, device.FocusModeAuto, device.FocusModeLocked,
	}
	exposureModes = []device.ExposureMode{
		device.ExposureModeLocked, device.ExposureModeAuto, device.ExposureModeContinuousAuto,
	}
	flashModes = []device.FlashMode{
		device.FlashModeClose, device.FlashModeOpen, device.FlashModeAuto, device.FlashModeAlwaysOpen,
	}
	stabilizationModes = []device.StabilizationMode{
		device.StabilizationOff, device.StabilizationLow, device.StabilizationMiddle, device.StabilizationHigh, device.StabilizationAuto,
	}
)

// parseEnum matches value against the names of all, ignoring case and
// accepting '-' for '_'.
func parseEnum[T fmt.Stringer](what, value string, all []T) (T, error) {
	want := strings.ReplaceAll(value, "-", "_")
	for _, v := range all {
		if strings.EqualFold(v.String(), want) {
			return v, nil
		}
	}
	names := make([]string, len(all))
	for i, v := range all {
		names[i] = strings.ToLower(v.String())
	}
	var zero T
	return zero, fmt.Errorf("unknown %s %q (one of %s)", what, value, strings.Join(names, ", "))
}

// parsePoint parses "x,y".
func parsePoint(s string) (device.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return device.Point{}, fmt.Errorf("point %q: want x,y", s)
	}
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return device.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return device.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	return device.Point{X: x, Y: y}, nil
}

// parseRange parses "min-max" or a single fixed rate.
func parseRange(s string) (device.IntRange, error) {
	lo, hi, found := strings.Cut(s, "-")
	if !found {
		hi = lo
	}
	minV, err := strconv.ParseInt(lo, 10, 32)
	if err != nil {
		return device.IntRange{}, fmt.Errorf("fps %q: %w", s, err)
	}
	maxV, err := strconv.ParseInt(hi, 10, 32)
	if err != nil {
		return device.IntRange{}, fmt.Errorf("fps %q: %w", s, err)
	}
	if minV > maxV {
		return device.IntRange{}, fmt.Errorf("fps %q: min above max", s)
	}
	return device.IntRange{Min: int32(minV), Max: int32(maxV)}, nil
}

func parseQuality(s string) (output.Quality, error) {
	switch strings.ToLower(s) {
	case "high":
		return output.QualityHigh, nil
	case "medium":
		return output.QualityMedium, nil
	case "low":
		return output.QualityLow, nil
	}
	return 0, fmt.Errorf("unknown quality %q (high, medium or low)", s)
}
