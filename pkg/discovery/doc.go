// Package discovery implements mDNS/DNS-SD discovery of camkit services.
//
// A camera service advertises one instance of _camkit._tcp. The instance
// name is the configured service name. TXT records:
//
//	ver   protocol version implemented by the service (e.g. "1.0")
//	cams  number of cameras currently plugged
//	name  human-readable service name (optional)
//
// Clients browse for the service type and connect to the advertised port
// with the remote protocol.
package discovery
