package discovery

import (
	"errors"
	"net"
	"strconv"
	"time"
)

// Service type constants for mDNS.
const (
	// ServiceType is the service type advertised by camera services.
	ServiceType = "_camkit._tcp"

	// Domain is the mDNS domain.
	Domain = "local"
)

// TXT record keys.
const (
	TXTKeyVersion = "ver"  // protocol version
	TXTKeyCameras = "cams" // plugged camera count
	TXTKeyName    = "name" // service name (optional)
)

// Timing constants.
const (
	// BrowseTimeout is the default timeout for mDNS browsing.
	BrowseTimeout = 10 * time.Second

	// DefaultTTL is the default DNS record TTL.
	DefaultTTL = 120 * time.Second
)

// Limits.
const (
	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63

	// MaxTXTRecordSize is the maximum total TXT record size.
	MaxTXTRecordSize = 400
)

// Discovery errors.
var (
	ErrInvalidTXTRecord    = errors.New("invalid TXT record format")
	ErrMissingRequired     = errors.New("missing required field")
	ErrInstanceNameTooLong = errors.New("instance name exceeds 63 characters")
	ErrNotFound            = errors.New("service not found")
	ErrNotAdvertising      = errors.New("not advertising")
)

// ServiceInfo is what a camera service advertises.
type ServiceInfo struct {
	// InstanceName is the mDNS instance name.
	InstanceName string

	// Port is the remote protocol port.
	Port uint16

	// Version is the protocol version.
	Version string

	// Cameras is the number of plugged cameras.
	Cameras int

	// Name is a human-readable service name.
	Name string
}

// Service is a discovered camera service.
type Service struct {
	InstanceName string
	Host         string
	Port         uint16
	Addresses    []string

	Version string
	Cameras int
	Name    string
}

// Addr returns host:port for the first known address, or for the host
// name when no address was resolved.
func (s *Service) Addr() string {
	host := s.Host
	if len(s.Addresses) > 0 {
		host = s.Addresses[0]
	}
	return net.JoinHostPort(host, strconv.Itoa(int(s.Port)))
}
