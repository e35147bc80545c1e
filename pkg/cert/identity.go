package cert

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"net"
	"time"
)

// DefaultValidity is the validity of generated service certificates.
const DefaultValidity = 365 * 24 * time.Hour

// Identity errors.
var (
	ErrInvalidCert     = errors.New("invalid certificate")
	ErrKeyMismatch     = errors.New("private key does not match certificate")
	ErrCertExpired     = errors.New("certificate has expired")
	ErrCertNotYetValid = errors.New("certificate is not yet valid")
)

// Identity is a certificate with its private key.
type Identity struct {
	Certificate *x509.Certificate
	PrivateKey  *ecdsa.PrivateKey
}

// GenerateSelfSigned creates a self-signed server identity for name. Hosts
// that parse as IP addresses become IP SANs, the rest DNS SANs.
func GenerateSelfSigned(name string, hosts []string, validity time.Duration) (*Identity, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("generate serial: %w", err)
	}

	now := time.Now()
	tmpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: name, Organization: []string{"camkit"}},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.Add(validity),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			tmpl.IPAddresses = append(tmpl.IPAddresses, ip)
		} else {
			tmpl.DNSNames = append(tmpl.DNSNames, h)
		}
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}
	c, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, err
	}
	return &Identity{Certificate: c, PrivateKey: key}, nil
}

// LoadIdentity reads an identity from PEM files and checks that the key
// belongs to the certificate.
func LoadIdentity(certFile, keyFile string) (*Identity, error) {
	c, err := ReadCertFile(certFile)
	if err != nil {
		return nil, err
	}
	key, err := ReadKeyFile(keyFile)
	if err != nil {
		return nil, err
	}
	pub, ok := c.PublicKey.(*ecdsa.PublicKey)
	if !ok || !pub.Equal(&key.PublicKey) {
		return nil, ErrKeyMismatch
	}
	return &Identity{Certificate: c, PrivateKey: key}, nil
}

// LoadOrGenerate loads the identity from certFile and keyFile, creating
// and saving a self-signed one when neither file exists.
func LoadOrGenerate(certFile, keyFile, name string, hosts []string) (id *Identity, created bool, err error) {
	id, err = LoadIdentity(certFile, keyFile)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, err
	}

	id, err = GenerateSelfSigned(name, hosts, DefaultValidity)
	if err != nil {
		return nil, false, err
	}
	if err := id.Save(certFile, keyFile); err != nil {
		return nil, false, err
	}
	return id, true, nil
}

// Save writes the certificate and key as PEM files. The key file is only
// readable by the owner.
func (id *Identity) Save(certFile, keyFile string) error {
	keyPEM, err := EncodeKeyPEM(id.PrivateKey)
	if err != nil {
		return err
	}
	if err := writeFile(certFile, EncodeCertPEM(id.Certificate), 0644); err != nil {
		return err
	}
	return writeFile(keyFile, keyPEM, 0600)
}

// TLSCertificate returns the identity in the form crypto/tls expects.
func (id *Identity) TLSCertificate() tls.Certificate {
	return tls.Certificate{
		Certificate: [][]byte{id.Certificate.Raw},
		PrivateKey:  id.PrivateKey,
		Leaf:        id.Certificate,
	}
}

// Fingerprint returns the SHA-256 fingerprint of the certificate.
func (id *Identity) Fingerprint() string {
	return Fingerprint(id.Certificate)
}

// Fingerprint returns the lowercase hex SHA-256 digest of a certificate's
// DER encoding.
func Fingerprint(c *x509.Certificate) string {
	sum := sha256.Sum256(c.Raw)
	return hex.EncodeToString(sum[:])
}

// CheckValidity reports whether c is valid at now.
func CheckValidity(c *x509.Certificate, now time.Time) error {
	if c == nil {
		return ErrInvalidCert
	}
	if now.Before(c.NotBefore) {
		return ErrCertNotYetValid
	}
	if now.After(c.NotAfter) {
		return ErrCertExpired
	}
	return nil
}
