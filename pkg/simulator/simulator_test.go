package simulator_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/camkit-project/camkit-go/pkg/metadata"
	"github.com/camkit-project/camkit-go/pkg/remote"
	"github.com/camkit-project/camkit-go/pkg/simulator"
	"github.com/camkit-project/camkit-go/pkg/version"
	"github.com/camkit-project/camkit-go/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

// recorder captures device and stream callbacks as strings.
type recorder struct {
	mu     sync.Mutex
	events []string
	faces  int
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
	r.mu.Unlock()
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) has(ev string) bool {
	for _, e := range r.Events() {
		if e == ev {
			return true
		}
	}
	return false
}

func (r *recorder) OnDeviceResult(_ int64, result *metadata.Store) {
	if v, ok := result.Byte(metadata.TagFocusState); ok {
		r.add("af=%d", v)
	}
	if v, ok := result.Byte(metadata.TagExposureState); ok {
		r.add("ae=%d", v)
	}
}

func (r *recorder) OnDeviceError(code int32, _ string) { r.add("device-error=%d", code) }
func (r *recorder) OnFrameStarted(int64)               { r.add("frame-started") }
func (r *recorder) OnFrameEnded(n uint32) {
	if n > 0 {
		r.add("frame-ended")
	} else {
		r.add("frame-ended-empty")
	}
}
func (r *recorder) OnStreamError(code int32)          { r.add("stream-error=%d", code) }
func (r *recorder) OnCaptureStarted(id uint32)        { r.add("capture-started=%d", id) }
func (r *recorder) OnCaptureEnded(id, n uint32)       { r.add("capture-ended=%d/%d", id, n) }
func (r *recorder) OnFrameShutter(id uint32, _ int64) { r.add("shutter=%d", id) }
func (r *recorder) OnCaptureError(id uint32, c int32) { r.add("capture-error=%d/%d", id, c) }
func (r *recorder) OnMetadataObjects(objs []remote.MetadataObject) {
	r.mu.Lock()
	r.faces += len(objs)
	r.mu.Unlock()
}

func (r *recorder) faceCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.faces
}

func newService(t *testing.T) *simulator.Service {
	t.Helper()
	cfg := simulator.DefaultConfig()
	cfg.FrameInterval = 2 * time.Millisecond
	cfg.SettleDelay = 10 * time.Millisecond
	svc, err := simulator.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func flush(t *testing.T, svc *simulator.Service) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	require.NoError(t, svc.Flush(ctx))
}

func settings(t *testing.T, items ...metadata.Item) *metadata.Store {
	t.Helper()
	s, err := metadata.NewStoreFromItems(items...)
	require.NoError(t, err)
	return s
}

var (
	previewSpec  = remote.StreamSpec{Kind: remote.StreamPreview, Format: remote.FormatYUV420, Width: 1280, Height: 720}
	photoSpec    = remote.StreamSpec{Kind: remote.StreamPhoto, Format: remote.FormatJPEG, Width: 4032, Height: 3024}
	metadataSpec = remote.StreamSpec{Kind: remote.StreamMetadata}
)

func TestDefaultProfilesPassManifest(t *testing.T) {
	svc := newService(t)
	m, err := version.LoadCurrentManifest()
	require.NoError(t, err)

	infos, err := svc.EnumerateDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "back-wide", infos[0].ID)
	assert.Equal(t, "front", infos[1].ID)

	for _, info := range infos {
		res := version.ValidateCapabilities(m, info.Capabilities)
		assert.True(t, res.Valid, "%s: %v", info.ID, res.Errors)
		assert.Empty(t, res.Warnings, info.ID)
	}
}

func TestProfileValidation(t *testing.T) {
	base := simulator.DefaultProfiles()[0]

	tests := []struct {
		name   string
		mutate func(p *simulator.Profile)
	}{
		{"missing id", func(p *simulator.Profile) { p.ID = "" }},
		{"unknown position", func(p *simulator.Profile) { p.Position = "sideways" }},
		{"unknown type", func(p *simulator.Profile) { p.Type = "fisheye" }},
		{"inverted zoom", func(p *simulator.Profile) { p.ZoomMin, p.ZoomMax = 4, 2 }},
		{"no frame rates", func(p *simulator.Profile) { p.FrameRates = nil }},
		{"bad frame rate", func(p *simulator.Profile) { p.FrameRates = []simulator.FrameRate{{Min: 30, Max: 15}} }},
		{"no streams", func(p *simulator.Profile) { p.Streams = nil }},
		{"unsized stream", func(p *simulator.Profile) { p.Streams = []simulator.StreamProfile{{Kind: "preview", Format: "yuv420"}} }},
		{"unknown kind", func(p *simulator.Profile) { p.Streams = []simulator.StreamProfile{{Kind: "depth"}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			assert.ErrorIs(t, p.Validate(), simulator.ErrInvalidProfile)
		})
	}

	assert.NoError(t, base.Validate())
}

func TestDuplicateProfile(t *testing.T) {
	cfg := simulator.DefaultConfig()
	cfg.Profiles = append(cfg.Profiles, cfg.Profiles[0])
	_, err := simulator.New(cfg)
	assert.ErrorIs(t, err, simulator.ErrInvalidProfile)
}

func TestProfileCapabilities(t *testing.T) {
	caps, err := simulator.DefaultProfiles()[0].Capabilities()
	require.NoError(t, err)

	zoom, ok := caps.Int32List(metadata.TagZoomRatioRange)
	require.True(t, ok)
	assert.Equal(t, []int32{100, 800}, zoom)

	fps, ok := caps.Int32List(metadata.TagFPSRanges)
	require.True(t, ok)
	assert.Equal(t, []int32{15, 30, 30, 30, 30, 60}, fps)

	// the front camera has fixed focus and no flash
	front, err := simulator.DefaultProfiles()[1].Capabilities()
	require.NoError(t, err)
	assert.False(t, front.Has(metadata.TagFocusModes))
	assert.False(t, front.Has(metadata.TagFlashModes))
}

func TestOpenDeviceExclusive(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	dev, err := svc.OpenDevice(ctx, "back-wide", nil)
	require.NoError(t, err)

	_, err = svc.OpenDevice(ctx, "back-wide", nil)
	assert.True(t, remote.IsStatus(err, wire.StatusDeviceBusy), err)

	_, err = svc.OpenDevice(ctx, "missing", nil)
	assert.True(t, remote.IsStatus(err, wire.StatusNotFound), err)

	require.NoError(t, dev.Release(ctx))
	require.NoError(t, dev.Release(ctx))

	err = dev.Open(ctx)
	assert.True(t, remote.IsStatus(err, wire.StatusDeviceClosed), err)

	again, err := svc.OpenDevice(ctx, "back-wide", nil)
	require.NoError(t, err)
	assert.NotEqual(t, dev.Handle(), again.Handle())
}

func TestCamerasSnapshot(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	dev, err := svc.OpenDevice(ctx, "front", nil)
	require.NoError(t, err)
	require.NoError(t, dev.Open(ctx))
	require.NoError(t, dev.UpdateSetting(ctx, settings(t, metadata.NewFloatItem(metadata.TagZoomRatio, 1.5))))

	cams := svc.Cameras()
	require.Len(t, cams, 2)
	assert.False(t, cams[0].InUse)
	assert.True(t, cams[1].InUse)
	assert.True(t, cams[1].Opened)
	z, ok := cams[1].Settings.Float(metadata.TagZoomRatio)
	require.True(t, ok)
	assert.InDelta(t, 1.5, z, 1e-6)
}

func TestUpdateSettingFocusSequence(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	rec := &recorder{}

	dev, err := svc.OpenDevice(ctx, "back-wide", rec)
	require.NoError(t, err)

	require.NoError(t, dev.UpdateSetting(ctx, settings(t,
		metadata.NewByteItem(metadata.TagFocusMode, 2), // auto
		metadata.NewFloatItem(metadata.TagFocusPoint, 0.5, 0.5),
	)))

	assert.Eventually(t, func() bool {
		return rec.has(fmt.Sprintf("af=%d", metadata.AFStateFocusedLocked))
	}, waitFor, 5*time.Millisecond)

	events := rec.Events()
	assert.Equal(t, fmt.Sprintf("af=%d", metadata.AFStateActiveScan), events[0])
}

func TestUpdateSettingExposureLocked(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	rec := &recorder{}

	dev, err := svc.OpenDevice(ctx, "back-wide", rec)
	require.NoError(t, err)
	require.NoError(t, dev.UpdateSetting(ctx, settings(t, metadata.NewByteItem(metadata.TagExposureMode, 0))))

	time.Sleep(30 * time.Millisecond)
	flush(t, svc)
	assert.Equal(t, []string{fmt.Sprintf("ae=%d", metadata.AEStateLocked)}, rec.Events())
}

func TestUpdateSettingRejects(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	dev, err := svc.OpenDevice(ctx, "front", nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		item   metadata.Item
		status wire.Status
	}{
		{"unsupported focus mode", metadata.NewByteItem(metadata.TagFocusMode, 1), wire.StatusUnsupported},
		{"zoom outside range", metadata.NewFloatItem(metadata.TagZoomRatio, 5), wire.StatusInvalidArgument},
		{"bias outside range", metadata.NewInt32Item(metadata.TagExposureBias, 9), wire.StatusInvalidArgument},
		{"point outside frame", metadata.NewFloatItem(metadata.TagExposurePoint, 1.5, 0), wire.StatusInvalidArgument},
		{"unsupported fps", metadata.NewInt32Item(metadata.TagFPSRange, 30, 60), wire.StatusUnsupported},
		{"ability tag", metadata.NewInt32Item(metadata.TagSensorOrientation, 0), wire.StatusInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := dev.UpdateSetting(ctx, settings(t, tt.item))
			assert.True(t, remote.IsStatus(err, tt.status), "got %v", err)
		})
	}

	_, applied := svc.Cameras()[1].Settings.Get(metadata.TagZoomRatio)
	assert.False(t, applied)
}

func TestSessionStateMachine(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	dev, err := svc.OpenDevice(ctx, "back-wide", nil)
	require.NoError(t, err)
	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	preview, err := svc.CreateStream(ctx, previewSpec, nil)
	require.NoError(t, err)

	assert.True(t, remote.IsStatus(sess.Start(ctx), wire.StatusInvalidState))
	assert.True(t, remote.IsStatus(sess.CommitConfig(ctx, dev, []remote.Stream{preview}), wire.StatusInvalidState))

	require.NoError(t, sess.BeginConfig(ctx))
	assert.True(t, remote.IsStatus(sess.BeginConfig(ctx), wire.StatusInvalidState))
	require.NoError(t, sess.CommitConfig(ctx, dev, []remote.Stream{preview}))
	require.NoError(t, sess.Start(ctx))
	assert.True(t, remote.IsStatus(sess.BeginConfig(ctx), wire.StatusInvalidState))
	require.NoError(t, sess.Stop(ctx))
	assert.True(t, remote.IsStatus(sess.Stop(ctx), wire.StatusInvalidState))

	require.NoError(t, sess.Release(ctx))
	require.NoError(t, sess.Release(ctx))
	assert.True(t, remote.IsStatus(sess.BeginConfig(ctx), wire.StatusInvalidState))
}

func TestCommitConfigChecks(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	dev, err := svc.OpenDevice(ctx, "front", nil)
	require.NoError(t, err)

	begin := func(t *testing.T) remote.Session {
		sess, err := svc.CreateSession(ctx)
		require.NoError(t, err)
		require.NoError(t, sess.BeginConfig(ctx))
		return sess
	}

	t.Run("unsupported configuration", func(t *testing.T) {
		photo, err := svc.CreateStream(ctx, photoSpec, nil)
		require.NoError(t, err)
		err = begin(t).CommitConfig(ctx, dev, []remote.Stream{photo})
		assert.True(t, remote.IsStatus(err, wire.StatusUnsupported), err)
	})

	t.Run("too many outputs", func(t *testing.T) {
		var streams []remote.Stream
		for range 5 {
			st, err := svc.CreateStream(ctx, previewSpec, nil)
			require.NoError(t, err)
			streams = append(streams, st)
		}
		err := begin(t).CommitConfig(ctx, dev, streams)
		assert.True(t, remote.IsStatus(err, wire.StatusCaptureLimitExceeded), err)
	})

	t.Run("no outputs", func(t *testing.T) {
		err := begin(t).CommitConfig(ctx, dev, nil)
		assert.True(t, remote.IsStatus(err, wire.StatusInvalidArgument), err)
	})

	t.Run("stream of another session", func(t *testing.T) {
		st, err := svc.CreateStream(ctx, previewSpec, nil)
		require.NoError(t, err)
		require.NoError(t, begin(t).CommitConfig(ctx, dev, []remote.Stream{st}))

		err = begin(t).CommitConfig(ctx, dev, []remote.Stream{st})
		assert.True(t, remote.IsStatus(err, wire.StatusDeviceBusy), err)
	})

	t.Run("released device", func(t *testing.T) {
		other, err := svc.OpenDevice(ctx, "back-wide", nil)
		require.NoError(t, err)
		require.NoError(t, other.Release(ctx))
		st, err := svc.CreateStream(ctx, previewSpec, nil)
		require.NoError(t, err)

		err = begin(t).CommitConfig(ctx, other, []remote.Stream{st})
		assert.True(t, remote.IsStatus(err, wire.StatusDeviceClosed), err)
	})
}

func TestStreamFrames(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	rec := &recorder{}

	dev, err := svc.OpenDevice(ctx, "back-wide", nil)
	require.NoError(t, err)
	preview, err := svc.CreateStream(ctx, previewSpec, rec)
	require.NoError(t, err)
	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	require.NoError(t, sess.BeginConfig(ctx))
	require.NoError(t, sess.CommitConfig(ctx, dev, []remote.Stream{preview}))

	// the session must run before streams deliver frames
	assert.True(t, remote.IsStatus(preview.Start(ctx), wire.StatusInvalidState))

	require.NoError(t, sess.Start(ctx))
	require.NoError(t, preview.Start(ctx))
	require.NoError(t, preview.Start(ctx))

	assert.Eventually(t, func() bool { return rec.has("frame-started") }, waitFor, time.Millisecond)

	require.NoError(t, sess.Stop(ctx))
	flush(t, svc)
	assert.Equal(t, []string{"frame-started", "frame-ended"}, rec.Events())
}

func TestMetadataStreamFaces(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	rec := &recorder{}

	dev, err := svc.OpenDevice(ctx, "back-wide", nil)
	require.NoError(t, err)
	md, err := svc.CreateStream(ctx, metadataSpec, rec)
	require.NoError(t, err)
	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	require.NoError(t, sess.BeginConfig(ctx))
	require.NoError(t, sess.CommitConfig(ctx, dev, []remote.Stream{md}))
	require.NoError(t, sess.Start(ctx))
	require.NoError(t, md.Start(ctx))

	assert.Eventually(t, func() bool { return rec.faceCount() > 0 }, waitFor, time.Millisecond)

	// an empty filter stops object delivery
	require.NoError(t, md.UpdateSetting(ctx, settings(t, metadata.NewByteItem(metadata.TagStreamMetadataObjectTypes))))
	time.Sleep(10 * time.Millisecond)
	flush(t, svc)
	before := rec.faceCount()
	time.Sleep(20 * time.Millisecond)
	flush(t, svc)
	assert.Equal(t, before, rec.faceCount())

	err = md.UpdateSetting(ctx, settings(t,
		metadata.NewByteItem(metadata.TagStreamMetadataObjectTypes, uint8(remote.MetadataObjectQRCode))))
	assert.True(t, remote.IsStatus(err, wire.StatusUnsupported), err)
}

func TestPhotoCaptureSequence(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	rec := &recorder{}

	dev, err := svc.OpenDevice(ctx, "back-wide", nil)
	require.NoError(t, err)
	photo, err := svc.CreateStream(ctx, photoSpec, rec)
	require.NoError(t, err)
	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	assert.True(t, remote.IsStatus(photo.Capture(ctx, 1, nil), wire.StatusInvalidState))

	require.NoError(t, sess.BeginConfig(ctx))
	require.NoError(t, sess.CommitConfig(ctx, dev, []remote.Stream{photo}))
	require.NoError(t, sess.Start(ctx))

	assert.True(t, remote.IsStatus(photo.Start(ctx), wire.StatusInvalidArgument))
	err = photo.Capture(ctx, 2, settings(t, metadata.NewByteItem(metadata.TagJPEGQuality, 7)))
	assert.True(t, remote.IsStatus(err, wire.StatusInvalidArgument), err)

	require.NoError(t, photo.Capture(ctx, 3, settings(t, metadata.NewByteItem(metadata.TagJPEGQuality, 1))))
	assert.Eventually(t, func() bool { return rec.has("capture-ended=3/1") }, waitFor, time.Millisecond)
	assert.Equal(t, []string{"capture-started=3", "shutter=3", "capture-ended=3/1"}, rec.Events())
}

func TestUnplug(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	devRec, streamRec := &recorder{}, &recorder{}

	var (
		mu      sync.Mutex
		changes []remote.AvailabilityChange
	)
	svc.SetAvailabilityHandler(func(c remote.AvailabilityChange) {
		mu.Lock()
		changes = append(changes, c)
		mu.Unlock()
	})

	dev, err := svc.OpenDevice(ctx, "back-wide", devRec)
	require.NoError(t, err)
	preview, err := svc.CreateStream(ctx, previewSpec, streamRec)
	require.NoError(t, err)
	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	require.NoError(t, sess.BeginConfig(ctx))
	require.NoError(t, sess.CommitConfig(ctx, dev, []remote.Stream{preview}))
	require.NoError(t, sess.Start(ctx))
	require.NoError(t, preview.Start(ctx))

	require.NoError(t, svc.Unplug("back-wide"))
	flush(t, svc)

	code := int32(wire.StatusDeviceDisconnected)
	assert.Equal(t, []string{fmt.Sprintf("device-error=%d", code)}, devRec.Events())
	assert.Contains(t, streamRec.Events(), fmt.Sprintf("stream-error=%d", code))

	assert.True(t, remote.IsStatus(dev.Open(ctx), wire.StatusDeviceDisconnected))
	assert.True(t, remote.IsStatus(sess.Start(ctx), wire.StatusDeviceDisconnected))

	infos, err := svc.EnumerateDevices(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)

	assert.True(t, remote.IsStatus(svc.Unplug("back-wide"), wire.StatusNotFound))

	require.NoError(t, svc.Plug(simulator.DefaultProfiles()[0]))
	flush(t, svc)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, changes, 2)
	assert.False(t, changes[0].Available)
	assert.True(t, changes[1].Available)
	assert.NotNil(t, changes[1].Capabilities)
}
