package cert

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrFingerprintMismatch is returned when a pinned peer presents another
// certificate.
var ErrFingerprintMismatch = errors.New("certificate fingerprint mismatch")

// ServerTLSConfig returns a TLS 1.3 server configuration presenting id.
func ServerTLSConfig(id *Identity) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{id.TLSCertificate()},
		MinVersion:   tls.VersionTLS13,
	}
}

// ClientTLSConfig returns a client configuration verifying the service
// against roots. A nil pool uses the system roots.
func ClientTLSConfig(roots *x509.CertPool, serverName string) *tls.Config {
	return &tls.Config{
		RootCAs:    roots,
		ServerName: serverName,
		MinVersion: tls.VersionTLS13,
	}
}

// PinnedClientTLSConfig returns a client configuration that accepts only a
// certificate with the given SHA-256 fingerprint. Colons and case in pin
// are ignored. Chain and host name are not checked.
func PinnedClientTLSConfig(pin string) *tls.Config {
	want := NormalizeFingerprint(pin)
	return &tls.Config{
		MinVersion: tls.VersionTLS13,
		// Verification happens in VerifyPeerCertificate.
		InsecureSkipVerify: true,
		VerifyPeerCertificate: func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			return verifyPin(rawCerts, want, time.Now())
		},
	}
}

func verifyPin(rawCerts [][]byte, want string, now time.Time) error {
	if len(rawCerts) == 0 {
		return fmt.Errorf("%w: no peer certificate", ErrInvalidCert)
	}
	peer, err := x509.ParseCertificate(rawCerts[0])
	if err != nil {
		return fmt.Errorf("parse peer certificate: %w", err)
	}
	if got := Fingerprint(peer); got != want {
		return fmt.Errorf("%w: got %s", ErrFingerprintMismatch, got)
	}
	return CheckValidity(peer, now)
}

// NormalizeFingerprint strips colons and lowercases a fingerprint.
func NormalizeFingerprint(fp string) string {
	return strings.ToLower(strings.ReplaceAll(fp, ":", ""))
}
