// Package cert manages the TLS identity of a camera service.
//
// A service presents an ECDSA P-256 certificate, either loaded from PEM
// files or generated self-signed at startup. Clients verify it against a
// CA pool or pin its SHA-256 fingerprint:
//
//	id, _ := cert.GenerateSelfSigned("camkit", []string{"localhost"}, cert.DefaultValidity)
//	srv := cert.ServerTLSConfig(id)
//	cli := cert.PinnedClientTLSConfig(id.Fingerprint())
package cert
