package discovery

import (
	"net"
	"testing"

	"github.com/enbility/zeroconf/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryToService(t *testing.T) {
	entry := new(zeroconf.ServiceEntry)
	entry.Instance = "camkit"
	entry.HostName = "rig.local."
	entry.Port = 7450
	entry.Text = []string{"ver=1.0", "cams=2"}
	entry.AddrIPv4 = []net.IP{net.ParseIP("192.168.1.5")}

	svc := entryToService(entry)
	require.NotNil(t, svc)
	assert.Equal(t, "camkit", svc.InstanceName)
	assert.Equal(t, uint16(7450), svc.Port)
	assert.Equal(t, 2, svc.Cameras)
	assert.Equal(t, []string{"192.168.1.5"}, svc.Addresses)

	entry.Text = []string{"cams=2"}
	assert.Nil(t, entryToService(entry))
}

func TestMergeAndRemoveAddresses(t *testing.T) {
	addrs := mergeAddresses([]string{"10.0.0.1"}, []string{"10.0.0.1", "fe80::1"})
	assert.Equal(t, []string{"10.0.0.1", "fe80::1"}, addrs)

	gone := new(zeroconf.ServiceEntry)
	gone.AddrIPv6 = []net.IP{net.ParseIP("fe80::1")}
	assert.Equal(t, []string{"10.0.0.1"}, removeAddresses(addrs, gone))
}
