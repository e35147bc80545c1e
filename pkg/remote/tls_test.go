package remote_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/camkit-project/camkit-go/pkg/cert"
	"github.com/camkit-project/camkit-go/pkg/remote"
	"github.com/camkit-project/camkit-go/pkg/remote/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPinnedTLS(t *testing.T) {
	id, err := cert.GenerateSelfSigned("camkit-test", []string{"127.0.0.1"}, time.Hour)
	require.NoError(t, err)

	svc := mocks.NewMockService(t)
	svc.EXPECT().SetAvailabilityHandler(mock.Anything).Return()
	svc.EXPECT().EnumerateDevices(mock.Anything).Return([]remote.DeviceInfo{{ID: "cam0", Capabilities: testCaps(t)}}, nil)

	srv, err := remote.NewServer(svc, remote.ServerConfig{
		Address:   "127.0.0.1:0",
		TLSConfig: cert.ServerTLSConfig(id),
	})
	require.NoError(t, err)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { srv.Stop() })

	dial := func(pin string) (*remote.Client, error) {
		cfg := remote.DefaultClientConfig()
		cfg.EnableKeepAlive = false
		cfg.DialAttempts = 1
		cfg.TLSConfig = cert.PinnedClientTLSConfig(pin)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return remote.Dial(ctx, srv.Addr().String(), cfg)
	}

	client, err := dial(id.Fingerprint())
	require.NoError(t, err)
	defer client.Close()

	devs, err := client.EnumerateDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devs, 1)
	assert.Equal(t, "cam0", devs[0].ID)

	_, err = dial(strings.Repeat("00", 32))
	assert.Error(t, err)
}
