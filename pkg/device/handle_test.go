package device_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/camkit-project/camkit-go/pkg/camerr"
	"github.com/camkit-project/camkit-go/pkg/device"
	"github.com/camkit-project/camkit-go/pkg/device/devicetest"
	"github.com/camkit-project/camkit-go/pkg/metadata"
	"github.com/camkit-project/camkit-go/pkg/remote/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewHandleOpenDeviceFails(t *testing.T) {
	svc := mocks.NewMockService(t)
	svc.EXPECT().OpenDevice(mock.Anything, "cam0", mock.Anything).Return(nil, errors.New("busy")).Once()

	_, err := device.NewHandle(context.Background(), svc, device.NewDescriptor("cam0", nil), device.HandleConfig{})
	assert.ErrorIs(t, err, camerr.ErrRemote)
}

func TestZoomTransactionClampsAndMerges(t *testing.T) {
	ctx := context.Background()
	dev := mocks.NewMockDevice(t)
	h := devicetest.NewHandle(t, "cam0", dev)

	rng, ok := h.Descriptor().ZoomRatioRange()
	require.True(t, ok)
	assert.Equal(t, device.FloatRange{Min: 1, Max: 3}, rng)

	dev.EXPECT().UpdateSetting(mock.Anything, mock.Anything).
		Run(func(_ context.Context, settings *metadata.Store) {
			assert.Equal(t, 1, settings.Len())
			v, ok := settings.Float(metadata.TagZoomRatio)
			assert.True(t, ok)
			assert.Equal(t, float32(3.0), v)
		}).
		Return(nil).Once()

	require.NoError(t, h.Lock(ctx))
	require.NoError(t, h.SetZoomRatio(5.0))
	require.NoError(t, h.Unlock(ctx))

	ratio, ok := h.ZoomRatio()
	require.True(t, ok)
	assert.Equal(t, 3.0, ratio)
	assert.False(t, h.InTransaction())
}

func TestZoomBelowMinimumClamps(t *testing.T) {
	ctx := context.Background()
	dev := mocks.NewMockDevice(t)
	h := devicetest.NewHandle(t, "cam0", dev)
	dev.EXPECT().UpdateSetting(mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, h.Lock(ctx))
	require.NoError(t, h.SetZoomRatio(0.25))
	require.NoError(t, h.Unlock(ctx))

	ratio, _ := h.ZoomRatio()
	assert.Equal(t, 1.0, ratio)
}

func TestEmptyTransactionMakesNoRemoteCall(t *testing.T) {
	ctx := context.Background()
	// No expectations: any call on dev fails the test.
	dev := mocks.NewMockDevice(t)
	h := devicetest.NewHandle(t, "cam0", dev)
	before := h.Descriptor().Capabilities().Clone()

	require.NoError(t, h.Lock(ctx))
	require.NoError(t, h.Unlock(ctx))

	assert.True(t, before.Equal(h.Descriptor().Capabilities()))
}

func TestSetterWithoutTransaction(t *testing.T) {
	dev := mocks.NewMockDevice(t)
	h := devicetest.NewHandle(t, "cam0", dev)
	before := h.Descriptor().Capabilities().Clone()

	setters := map[string]func() error{
		"flash":         func() error { return h.SetFlashMode(device.FlashModeAuto) },
		"exposure mode": func() error { return h.SetExposureMode(device.ExposureModeLocked) },
		"exposure pt":   func() error { return h.SetExposurePoint(device.Point{X: 0.5, Y: 0.5}) },
		"bias":          func() error { return h.SetExposureBias(1) },
		"focus mode":    func() error { return h.SetFocusMode(device.FocusModeAuto) },
		"focus pt":      func() error { return h.SetFocusPoint(device.Point{X: 0.1, Y: 0.9}) },
		"zoom":          func() error { return h.SetZoomRatio(2) },
		"stabilization": func() error { return h.SetVideoStabilizationMode(device.StabilizationAuto) },
		"fps":           func() error { return h.SetFrameRateRange(device.IntRange{Min: 30, Max: 30}) },
	}
	for name, set := range setters {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, set(), camerr.ErrUsage)
		})
	}

	assert.True(t, before.Equal(h.Descriptor().Capabilities()))
}

func TestUnlockWithoutLock(t *testing.T) {
	h := devicetest.NewHandle(t, "cam0", mocks.NewMockDevice(t))
	assert.ErrorIs(t, h.Unlock(context.Background()), camerr.ErrUsage)
}

func TestFailedUnlockClosesTransaction(t *testing.T) {
	ctx := context.Background()
	dev := mocks.NewMockDevice(t)
	h := devicetest.NewHandle(t, "cam0", dev)
	before := h.Descriptor().Capabilities().Clone()

	dev.EXPECT().UpdateSetting(mock.Anything, mock.Anything).Return(errors.New("link down")).Once()

	require.NoError(t, h.Lock(ctx))
	require.NoError(t, h.SetZoomRatio(2))
	err := h.Unlock(ctx)
	assert.ErrorIs(t, err, camerr.ErrRemote)
	assert.False(t, h.InTransaction())
	assert.True(t, before.Equal(h.Descriptor().Capabilities()))

	// The guard was released: a new transaction opens without blocking.
	lockCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, h.Lock(lockCtx))
	require.NoError(t, h.Unlock(ctx))
}

func TestUnsupportedModesAreRejected(t *testing.T) {
	ctx := context.Background()
	h := devicetest.NewHandle(t, "cam0", mocks.NewMockDevice(t))

	require.NoError(t, h.Lock(ctx))
	assert.ErrorIs(t, h.SetFlashMode(device.FlashModeAlwaysOpen), camerr.ErrUnsupported)
	assert.ErrorIs(t, h.SetExposureMode(device.ExposureModeAuto), camerr.ErrUnsupported)
	assert.ErrorIs(t, h.SetFocusMode(device.FocusModeManual), camerr.ErrUnsupported)
	assert.ErrorIs(t, h.SetVideoStabilizationMode(device.StabilizationHigh), camerr.ErrUnsupported)
	assert.ErrorIs(t, h.SetFrameRateRange(device.IntRange{Min: 10, Max: 90}), camerr.ErrUnsupported)
	// Nothing was staged, so Unlock makes no remote call.
	require.NoError(t, h.Unlock(ctx))
}

func TestZoomWithoutRangeIsUnsupported(t *testing.T) {
	ctx := context.Background()
	svc := mocks.NewMockService(t)
	dev := mocks.NewMockDevice(t)
	svc.EXPECT().OpenDevice(mock.Anything, "bare", mock.Anything).Return(dev, nil).Once()
	h, err := device.NewHandle(ctx, svc, device.NewDescriptor("bare", nil), device.HandleConfig{})
	require.NoError(t, err)

	require.NoError(t, h.Lock(ctx))
	assert.ErrorIs(t, h.SetZoomRatio(2), camerr.ErrUnsupported)
	assert.ErrorIs(t, h.SetExposureBias(1), camerr.ErrUnsupported)
	require.NoError(t, h.Unlock(ctx))
}

func TestExposureBiasRoundsToSteps(t *testing.T) {
	ctx := context.Background()
	dev := mocks.NewMockDevice(t)
	h := devicetest.NewHandle(t, "cam0", dev)

	var sent *metadata.Store
	dev.EXPECT().UpdateSetting(mock.Anything, mock.Anything).
		Run(func(_ context.Context, s *metadata.Store) { sent = s.Clone() }).
		Return(nil).Times(2)

	require.NoError(t, h.Lock(ctx))
	require.NoError(t, h.SetExposureBias(1.4))
	require.NoError(t, h.Unlock(ctx))

	steps, _ := sent.Int32(metadata.TagExposureBias)
	assert.Equal(t, int32(3), steps)
	ev, ok := h.ExposureValue()
	require.True(t, ok)
	assert.Equal(t, 1.5, ev)

	require.NoError(t, h.Lock(ctx))
	require.NoError(t, h.SetExposureBias(-10))
	require.NoError(t, h.Unlock(ctx))

	ev, _ = h.ExposureValue()
	assert.Equal(t, -2.0, ev)
}

func TestPointsAreClamped(t *testing.T) {
	ctx := context.Background()
	dev := mocks.NewMockDevice(t)
	h := devicetest.NewHandle(t, "cam0", dev)
	dev.EXPECT().UpdateSetting(mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, h.Lock(ctx))
	require.NoError(t, h.SetFocusPoint(device.Point{X: -1, Y: 0.25}))
	require.NoError(t, h.SetExposurePoint(device.Point{X: 0.5, Y: 7}))
	require.NoError(t, h.Unlock(ctx))

	fp, ok := h.FocusPoint()
	require.True(t, ok)
	assert.Equal(t, device.Point{X: 0, Y: 0.25}, fp)

	ep, ok := h.ExposurePoint()
	require.True(t, ok)
	assert.Equal(t, device.Point{X: 0.5, Y: 1}, ep)
}

func TestTransactionBatchesAllSetters(t *testing.T) {
	ctx := context.Background()
	dev := mocks.NewMockDevice(t)
	h := devicetest.NewHandle(t, "cam0", dev)

	dev.EXPECT().UpdateSetting(mock.Anything, mock.Anything).
		Run(func(_ context.Context, s *metadata.Store) {
			assert.Equal(t, []uint32{
				metadata.TagFlashMode,
				metadata.TagFocusMode,
				metadata.TagZoomRatio,
				metadata.TagFPSRange,
			}, s.Tags())
		}).
		Return(nil).Once()

	err := h.Configure(ctx, func(h *device.Handle) error {
		if err := h.SetFlashMode(device.FlashModeAuto); err != nil {
			return err
		}
		if err := h.SetFocusMode(device.FocusModeContinuousAuto); err != nil {
			return err
		}
		// Last write wins within a transaction.
		if err := h.SetZoomRatio(1.5); err != nil {
			return err
		}
		if err := h.SetZoomRatio(2); err != nil {
			return err
		}
		return h.SetFrameRateRange(device.IntRange{Min: 30, Max: 60})
	})
	require.NoError(t, err)

	flash, _ := h.FlashMode()
	assert.Equal(t, device.FlashModeAuto, flash)
	focus, _ := h.FocusMode()
	assert.Equal(t, device.FocusModeContinuousAuto, focus)
	zoom, _ := h.ZoomRatio()
	assert.Equal(t, 2.0, zoom)
	fps, _ := h.FrameRateRange()
	assert.Equal(t, device.IntRange{Min: 30, Max: 60}, fps)
}

func TestConfigureDiscardsOnError(t *testing.T) {
	ctx := context.Background()
	h := devicetest.NewHandle(t, "cam0", mocks.NewMockDevice(t))

	err := h.Configure(ctx, func(h *device.Handle) error {
		require.NoError(t, h.SetZoomRatio(2))
		return h.SetFlashMode(device.FlashModeAlwaysOpen)
	})
	assert.ErrorIs(t, err, camerr.ErrUnsupported)
	assert.False(t, h.InTransaction())

	_, ok := h.ZoomRatio()
	assert.False(t, ok)
}

func TestLockBlocksUntilUnlock(t *testing.T) {
	ctx := context.Background()
	h := devicetest.NewHandle(t, "cam0", mocks.NewMockDevice(t))
	require.NoError(t, h.Lock(ctx))

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, h.Lock(waitCtx), context.DeadlineExceeded)

	require.NoError(t, h.Unlock(ctx))
	require.NoError(t, h.Lock(ctx))
	require.NoError(t, h.Unlock(ctx))
}

func TestConcurrentTransactionsAreSerialized(t *testing.T) {
	ctx := context.Background()
	dev := mocks.NewMockDevice(t)
	h := devicetest.NewHandle(t, "cam0", dev)

	var inFlight, overlap atomic.Int32
	dev.EXPECT().UpdateSetting(mock.Anything, mock.Anything).
		Run(func(context.Context, *metadata.Store) {
			if inFlight.Add(1) > 1 {
				overlap.Add(1)
			}
			time.Sleep(time.Millisecond)
			inFlight.Add(-1)
		}).
		Return(nil).Times(8)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := h.Configure(ctx, func(h *device.Handle) error {
				return h.SetZoomRatio(1 + float64(i)/4)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Zero(t, overlap.Load())
}

func TestFocusStateMapping(t *testing.T) {
	tests := []struct {
		raw  uint8
		want device.FocusState
		ok   bool
	}{
		{metadata.AFStateInactive, 0, false},
		{metadata.AFStatePassiveScan, device.FocusStateScan, true},
		{metadata.AFStateActiveScan, device.FocusStateScan, true},
		{metadata.AFStatePassiveFocused, device.FocusStateFocused, true},
		{metadata.AFStateFocusedLocked, device.FocusStateFocused, true},
		{metadata.AFStateNotFocusedLocked, device.FocusStateUnfocused, true},
		{metadata.AFStatePassiveUnfocused, device.FocusStateUnfocused, true},
	}

	h := devicetest.NewHandle(t, "cam0", mocks.NewMockDevice(t))
	var got []device.FocusState
	h.SetFocusStateListener(func(s device.FocusState) { got = append(got, s) })

	for _, tt := range tests {
		got = nil
		result, err := metadata.NewStoreFromItems(metadata.NewByteItem(metadata.TagFocusState, tt.raw))
		require.NoError(t, err)
		h.OnDeviceResult(1, result)

		if tt.ok {
			assert.Equal(t, []device.FocusState{tt.want}, got, "raw %d", tt.raw)
		} else {
			assert.Empty(t, got, "raw %d", tt.raw)
		}
	}
}

func TestExposureStateMapping(t *testing.T) {
	h := devicetest.NewHandle(t, "cam0", mocks.NewMockDevice(t))
	var got []device.ExposureState
	h.SetExposureStateListener(func(s device.ExposureState) { got = append(got, s) })

	for _, raw := range []uint8{
		metadata.AEStateInactive,
		metadata.AEStateSearching,
		metadata.AEStateConverged,
		metadata.AEStateLocked,
		metadata.AEStateFlashRequired,
	} {
		result, err := metadata.NewStoreFromItems(metadata.NewByteItem(metadata.TagExposureState, raw))
		require.NoError(t, err)
		h.OnDeviceResult(1, result)
	}

	assert.Equal(t, []device.ExposureState{
		device.ExposureStateScan,
		device.ExposureStateConverged,
		device.ExposureStateConverged,
		device.ExposureStateConverged,
	}, got)
}

func TestResultsWithoutListenersAreIgnored(t *testing.T) {
	h := devicetest.NewHandle(t, "cam0", mocks.NewMockDevice(t))
	result, err := metadata.NewStoreFromItems(
		metadata.NewByteItem(metadata.TagFocusState, metadata.AFStateFocusedLocked),
		metadata.NewByteItem(metadata.TagExposureState, metadata.AEStateConverged),
	)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		h.OnDeviceResult(1, result)
		h.OnDeviceResult(2, nil)
		h.OnDeviceError(5, "overheated")
	})
}

func TestDeviceErrorListener(t *testing.T) {
	h := devicetest.NewHandle(t, "cam0", mocks.NewMockDevice(t))
	var got *device.DeviceError
	h.SetErrorListener(func(e *device.DeviceError) { got = e })

	h.OnDeviceError(7, "sensor fault")

	require.NotNil(t, got)
	assert.Equal(t, "cam0", got.DeviceID)
	assert.Equal(t, int32(7), got.Code)
	assert.Contains(t, got.Error(), "sensor fault")
}

func TestHandleLifecycle(t *testing.T) {
	ctx := context.Background()
	dev := mocks.NewMockDevice(t)
	h := devicetest.NewHandle(t, "cam0", dev)

	dev.EXPECT().Open(mock.Anything).Return(nil).Once()
	dev.EXPECT().Close(mock.Anything).Return(nil).Once()
	dev.EXPECT().Release(mock.Anything).Return(nil).Once()

	assert.Equal(t, device.HandleClosed, h.State())
	require.NoError(t, h.Open(ctx))
	require.NoError(t, h.Open(ctx))
	assert.Equal(t, device.HandleOpened, h.State())
	require.NoError(t, h.Close(ctx))
	assert.Equal(t, device.HandleClosed, h.State())

	require.NoError(t, h.Release(ctx))
	require.NoError(t, h.Release(ctx))
	assert.Equal(t, device.HandleReleased, h.State())

	assert.ErrorIs(t, h.Open(ctx), camerr.ErrUsage)
	assert.ErrorIs(t, h.Lock(ctx), camerr.ErrUsage)
}

func TestWatchErrors(t *testing.T) {
	h := devicetest.NewHandle(t, "cam0", mocks.NewMockDevice(t))

	var listened, watched int
	h.SetErrorListener(func(*device.DeviceError) { listened++ })
	cancel := h.WatchErrors(func(*device.DeviceError) { watched++ })

	h.OnDeviceError(1, "")
	cancel()
	h.OnDeviceError(2, "")

	assert.Equal(t, 2, listened)
	assert.Equal(t, 1, watched)
}
