package output_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/camkit-project/camkit-go/pkg/camerr"
	"github.com/camkit-project/camkit-go/pkg/device"
	"github.com/camkit-project/camkit-go/pkg/device/devicetest"
	"github.com/camkit-project/camkit-go/pkg/metadata"
	"github.com/camkit-project/camkit-go/pkg/output"
	"github.com/camkit-project/camkit-go/pkg/remote"
	"github.com/camkit-project/camkit-go/pkg/remote/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeOwner struct {
	id string

	mu       sync.Mutex
	released []output.Output
}

func (f *fakeOwner) ID() string { return f.id }

func (f *fakeOwner) OutputReleased(o output.Output) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, o)
}

func newStreamService(t *testing.T, kind remote.StreamKind) (*mocks.MockService, *mocks.MockStream) {
	t.Helper()
	svc := mocks.NewMockService(t)
	stream := mocks.NewMockStream(t)
	svc.EXPECT().CreateStream(mock.Anything, mock.MatchedBy(func(s remote.StreamSpec) bool {
		return s.Kind == kind
	}), mock.Anything).Return(stream, nil).Once()
	return svc, stream
}

func newPreview(t *testing.T) (*output.PreviewOutput, *mocks.MockStream) {
	t.Helper()
	svc, stream := newStreamService(t, remote.StreamPreview)
	o, err := output.NewPreview(context.Background(), svc, devicetest.Preview, output.Config{})
	require.NoError(t, err)
	return o, stream
}

func TestCreateStreamFailure(t *testing.T) {
	svc := mocks.NewMockService(t)
	svc.EXPECT().CreateStream(mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("no sink")).Once()

	_, err := output.NewPreview(context.Background(), svc, devicetest.Preview, output.Config{})
	assert.ErrorIs(t, err, camerr.ErrRemote)
}

func TestPreviewLifecycle(t *testing.T) {
	ctx := context.Background()
	o, stream := newPreview(t)
	owner := &fakeOwner{id: "s1"}

	stream.EXPECT().Start(mock.Anything).Return(nil).Once()
	stream.EXPECT().Stop(mock.Anything).Return(nil).Once()
	stream.EXPECT().Release(mock.Anything).Return(nil).Once()

	assert.Equal(t, output.StateCreated, o.State())
	require.NoError(t, o.Attach(owner))
	assert.Equal(t, output.StateAdded, o.State())
	assert.Equal(t, owner, o.Owner())

	require.NoError(t, o.Start(ctx))
	require.NoError(t, o.Start(ctx))
	assert.Equal(t, output.StateStarted, o.State())

	require.NoError(t, o.Stop(ctx))
	require.NoError(t, o.Stop(ctx))
	assert.Equal(t, output.StateStopped, o.State())

	require.NoError(t, o.Release(ctx))
	require.NoError(t, o.Release(ctx))
	assert.Equal(t, output.StateReleased, o.State())
	assert.Nil(t, o.Owner())
	assert.Equal(t, []output.Output{o}, owner.released)
}

func TestStartRequiresAttachment(t *testing.T) {
	o, _ := newPreview(t)
	assert.ErrorIs(t, o.Start(context.Background()), camerr.ErrUsage)
}

func TestStartFailureKeepsState(t *testing.T) {
	o, stream := newPreview(t)
	require.NoError(t, o.Attach(&fakeOwner{id: "s1"}))
	stream.EXPECT().Start(mock.Anything).Return(errors.New("busy")).Once()

	assert.ErrorIs(t, o.Start(context.Background()), camerr.ErrRemote)
	assert.Equal(t, output.StateAdded, o.State())
}

func TestAttachIsExclusive(t *testing.T) {
	o, _ := newPreview(t)
	a := &fakeOwner{id: "a"}
	b := &fakeOwner{id: "b"}

	require.NoError(t, o.Attach(a))
	require.NoError(t, o.Attach(a))
	assert.ErrorIs(t, o.Attach(b), camerr.ErrUsage)
	assert.Equal(t, a, o.Owner())

	o.Detach(b)
	assert.Equal(t, a, o.Owner())
	o.Detach(a)
	assert.Nil(t, o.Owner())
	assert.Equal(t, output.StateCreated, o.State())
	require.NoError(t, o.Attach(b))
}

func TestAttachAfterRelease(t *testing.T) {
	o, stream := newPreview(t)
	stream.EXPECT().Release(mock.Anything).Return(nil).Once()
	require.NoError(t, o.Release(context.Background()))

	assert.ErrorIs(t, o.Attach(&fakeOwner{id: "s1"}), camerr.ErrUsage)
}

func TestRetainDefersStreamRelease(t *testing.T) {
	ctx := context.Background()
	o, stream := newPreview(t)

	drop, err := o.Retain()
	require.NoError(t, err)
	assert.Equal(t, 2, o.RefCount())

	// The sink still holds the stream.
	require.NoError(t, o.Release(ctx))
	assert.Equal(t, 1, o.RefCount())

	stream.EXPECT().Release(mock.Anything).Return(nil).Once()
	require.NoError(t, drop(ctx))
	require.NoError(t, drop(ctx))
	assert.Equal(t, 0, o.RefCount())

	_, err = o.Retain()
	assert.ErrorIs(t, err, camerr.ErrUsage)
}

func TestPreviewListener(t *testing.T) {
	o, _ := newPreview(t)

	var started int
	var ended []uint32
	var codes []int32
	o.SetListener(output.FrameListener{
		OnFrameStarted: func() { started++ },
		OnFrameEnded:   func(n uint32) { ended = append(ended, n) },
		OnError:        func(code int32) { codes = append(codes, code) },
	})

	o.OnFrameStarted(100)
	o.OnFrameEnded(30)
	o.OnStreamError(4)

	assert.Equal(t, 1, started)
	assert.Equal(t, []uint32{30}, ended)
	assert.Equal(t, []int32{4}, codes)

	o.SetListener(output.FrameListener{})
	assert.NotPanics(t, func() {
		o.OnFrameStarted(200)
		o.OnStreamError(5)
	})
}

func newPhoto(t *testing.T) (*output.PhotoOutput, *mocks.MockStream) {
	t.Helper()
	svc, stream := newStreamService(t, remote.StreamPhoto)
	o, err := output.NewPhoto(context.Background(), svc, devicetest.Photo, output.Config{})
	require.NoError(t, err)
	require.NoError(t, o.Attach(&fakeOwner{id: "s1"}))
	return o, stream
}

func TestPhotoCaptureAppliesOnlyGivenSettings(t *testing.T) {
	ctx := context.Background()
	o, stream := newPhoto(t)

	var sent []*metadata.Store
	stream.EXPECT().Capture(mock.Anything, mock.Anything, mock.Anything).
		Run(func(_ context.Context, _ uint32, s *metadata.Store) { sent = append(sent, s.Clone()) }).
		Return(nil).Times(2)

	_, err := o.Capture(ctx, nil)
	require.NoError(t, err)

	low := output.QualityLow
	_, err = o.Capture(ctx, &output.PhotoSettings{Quality: &low})
	require.NoError(t, err)

	require.Len(t, sent, 2)
	assert.Zero(t, sent[0].Len())
	assert.Equal(t, []uint32{metadata.TagJPEGQuality}, sent[1].Tags())
	q, _ := sent[1].Byte(metadata.TagJPEGQuality)
	assert.Equal(t, uint8(2), q)
}

func TestPhotoCaptureIDsIncrease(t *testing.T) {
	ctx := context.Background()
	o, stream := newPhoto(t)

	var ids []uint32
	stream.EXPECT().Capture(mock.Anything, mock.Anything, mock.Anything).
		Run(func(_ context.Context, id uint32, _ *metadata.Store) { ids = append(ids, id) }).
		Return(nil).Times(3)

	for range 3 {
		_, err := o.Capture(ctx, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, []uint32{1, 2, 3}, ids)
}

func TestPhotoSettingsMetadata(t *testing.T) {
	rot := output.Rotation90
	mirror := true
	s := &output.PhotoSettings{
		Rotation: &rot,
		Mirror:   &mirror,
		Location: &output.Location{Latitude: 48.1, Longitude: 11.5, Altitude: 520},
	}
	md, err := s.Metadata()
	require.NoError(t, err)

	assert.Equal(t, []uint32{metadata.TagJPEGOrientation, metadata.TagJPEGMirror, metadata.TagJPEGGPSLocation}, md.Tags())
	loc, _ := md.DoubleList(metadata.TagJPEGGPSLocation)
	assert.Equal(t, []float64{48.1, 11.5, 520}, loc)

	bad := output.Rotation(45)
	_, err = (&output.PhotoSettings{Rotation: &bad}).Metadata()
	assert.ErrorIs(t, err, camerr.ErrUnsupported)

	worse := output.Quality(9)
	_, err = (&output.PhotoSettings{Quality: &worse}).Metadata()
	assert.ErrorIs(t, err, camerr.ErrUnsupported)
}

func TestPhotoCaptureRequiresAttachment(t *testing.T) {
	svc, _ := newStreamService(t, remote.StreamPhoto)
	o, err := output.NewPhoto(context.Background(), svc, devicetest.Photo, output.Config{})
	require.NoError(t, err)

	_, err = o.Capture(context.Background(), nil)
	assert.ErrorIs(t, err, camerr.ErrUsage)
}

func TestPhotoIsNotRepeating(t *testing.T) {
	o, _ := newPhoto(t)
	assert.ErrorIs(t, o.Start(context.Background()), camerr.ErrUsage)
	assert.ErrorIs(t, o.Stop(context.Background()), camerr.ErrUsage)
}

func TestPhotoListener(t *testing.T) {
	o, _ := newPhoto(t)

	var events []string
	o.SetListener(output.PhotoListener{
		OnCaptureStarted: func(id uint32) { events = append(events, "started") },
		OnFrameShutter:   func(id uint32, ts int64) { events = append(events, "shutter") },
		OnCaptureEnded:   func(id, n uint32) { events = append(events, "ended") },
		OnCaptureError:   func(id uint32, code int32) { events = append(events, "error") },
	})

	o.OnCaptureStarted(1)
	o.OnFrameShutter(1, 5)
	o.OnCaptureEnded(1, 1)
	o.OnCaptureError(2, 3)

	assert.Equal(t, []string{"started", "shutter", "ended", "error"}, events)
}

func TestVideoFrameRate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newStreamService(t, remote.StreamVideo)
	o, err := output.NewVideo(ctx, svc, devicetest.Video, output.Config{})
	require.NoError(t, err)

	_, err = o.FrameRateRanges()
	assert.ErrorIs(t, err, camerr.ErrUsage)
	assert.ErrorIs(t, o.SetFrameRateRange(ctx, device.IntRange{Min: 30, Max: 30}), camerr.ErrUsage)

	dev := mocks.NewMockDevice(t)
	h := devicetest.NewHandle(t, "cam0", dev)
	o.BindInput(h)

	ranges, err := o.FrameRateRanges()
	require.NoError(t, err)
	assert.Equal(t, []device.IntRange{{Min: 15, Max: 30}, {Min: 30, Max: 60}}, ranges)

	dev.EXPECT().UpdateSetting(mock.Anything, mock.Anything).Return(nil).Once()
	require.NoError(t, o.SetFrameRateRange(ctx, device.IntRange{Min: 24, Max: 30}))

	active, ok := o.ActiveFrameRateRange()
	require.True(t, ok)
	assert.Equal(t, device.IntRange{Min: 24, Max: 30}, active)

	assert.ErrorIs(t, o.SetFrameRateRange(ctx, device.IntRange{Min: 10, Max: 120}), camerr.ErrUnsupported)
	assert.False(t, h.InTransaction())
}

func TestMetadataObjectFilter(t *testing.T) {
	ctx := context.Background()
	svc, stream := newStreamService(t, remote.StreamMetadata)
	o, err := output.NewMetadata(ctx, svc,
		[]remote.MetadataObjectType{remote.MetadataObjectFace, remote.MetadataObjectQRCode}, output.Config{})
	require.NoError(t, err)

	var got [][]remote.MetadataObject
	o.SetListener(output.MetadataListener{
		OnObjects: func(objs []remote.MetadataObject) { got = append(got, objs) },
	})

	face := remote.MetadataObject{Type: remote.MetadataObjectFace, Timestamp: 1, Bounds: remote.Rect{Width: 0.2, Height: 0.2}}
	qr := remote.MetadataObject{Type: remote.MetadataObjectQRCode, Timestamp: 1}

	o.OnMetadataObjects([]remote.MetadataObject{face, qr})
	require.Len(t, got, 1)
	assert.Len(t, got[0], 2)

	stream.EXPECT().UpdateSetting(mock.Anything, mock.Anything).
		Run(func(_ context.Context, s *metadata.Store) {
			v, _ := s.ByteList(metadata.TagStreamMetadataObjectTypes)
			assert.Equal(t, []uint8{uint8(remote.MetadataObjectFace)}, v)
		}).
		Return(nil).Once()
	require.NoError(t, o.SetCapturingObjectTypes(ctx, []remote.MetadataObjectType{remote.MetadataObjectFace}))
	assert.Equal(t, []remote.MetadataObjectType{remote.MetadataObjectFace}, o.CapturingObjectTypes())

	o.OnMetadataObjects([]remote.MetadataObject{face, qr})
	o.OnMetadataObjects([]remote.MetadataObject{qr})
	require.Len(t, got, 2)
	assert.Equal(t, []remote.MetadataObject{face}, got[1])

	err = o.SetCapturingObjectTypes(ctx, []remote.MetadataObjectType{remote.MetadataObjectHumanBody})
	assert.ErrorIs(t, err, camerr.ErrUnsupported)
	assert.Len(t, o.SupportedObjectTypes(), 2)
}

func TestMetadataBindNarrowsToDevice(t *testing.T) {
	ctx := context.Background()
	svc, _ := newStreamService(t, remote.StreamMetadata)
	o, err := output.NewMetadata(ctx, svc,
		[]remote.MetadataObjectType{remote.MetadataObjectFace, remote.MetadataObjectQRCode}, output.Config{})
	require.NoError(t, err)

	// devicetest cameras only detect faces.
	o.BindInput(devicetest.NewHandle(t, "cam0", mocks.NewMockDevice(t)))
	assert.Equal(t, []remote.MetadataObjectType{remote.MetadataObjectFace}, o.SupportedObjectTypes())
	assert.Equal(t, []remote.MetadataObjectType{remote.MetadataObjectFace}, o.CapturingObjectTypes())
	assert.ErrorIs(t,
		o.SetCapturingObjectTypes(ctx, []remote.MetadataObjectType{remote.MetadataObjectQRCode}),
		camerr.ErrUnsupported)

	o.BindInput(nil)
	assert.Len(t, o.SupportedObjectTypes(), 2)
}
