package cert

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdentity(t *testing.T) *Identity {
	t.Helper()
	id, err := GenerateSelfSigned("camkit-test", []string{"localhost", "127.0.0.1"}, time.Hour)
	require.NoError(t, err)
	return id
}

func TestGenerateSelfSigned(t *testing.T) {
	id := newIdentity(t)

	assert.Equal(t, "camkit-test", id.Certificate.Subject.CommonName)
	assert.Equal(t, []string{"localhost"}, id.Certificate.DNSNames)
	require.Len(t, id.Certificate.IPAddresses, 1)
	assert.True(t, id.Certificate.IPAddresses[0].Equal(net.ParseIP("127.0.0.1")))
	assert.NoError(t, CheckValidity(id.Certificate, time.Now()))
	assert.Len(t, id.Fingerprint(), 64)
}

func TestPEMRoundTrip(t *testing.T) {
	id := newIdentity(t)

	c, err := DecodeCertPEM(EncodeCertPEM(id.Certificate))
	require.NoError(t, err)
	assert.Equal(t, id.Fingerprint(), Fingerprint(c))

	keyPEM, err := EncodeKeyPEM(id.PrivateKey)
	require.NoError(t, err)
	key, err := DecodeKeyPEM(keyPEM)
	require.NoError(t, err)
	assert.True(t, key.Equal(id.PrivateKey))

	_, err = DecodeCertPEM([]byte("garbage"))
	assert.ErrorIs(t, err, ErrInvalidPEM)
	_, err = DecodeKeyPEM(EncodeCertPEM(id.Certificate))
	assert.ErrorIs(t, err, ErrInvalidPEM)
}

func TestSaveAndLoadIdentity(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "service.crt")
	keyFile := filepath.Join(dir, "service.key")

	id := newIdentity(t)
	require.NoError(t, id.Save(certFile, keyFile))

	info, err := os.Stat(keyFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadIdentity(certFile, keyFile)
	require.NoError(t, err)
	assert.Equal(t, id.Fingerprint(), loaded.Fingerprint())

	pool, err := ReadCertPool(certFile)
	require.NoError(t, err)
	assert.NotNil(t, pool)
}

func TestLoadIdentityKeyMismatch(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "a.crt")
	keyFile := filepath.Join(dir, "a.key")

	a := newIdentity(t)
	b := newIdentity(t)
	require.NoError(t, a.Save(certFile, keyFile))

	keyPEM, err := EncodeKeyPEM(b.PrivateKey)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(keyFile, keyPEM, 0600))

	_, err = LoadIdentity(certFile, keyFile)
	assert.ErrorIs(t, err, ErrKeyMismatch)
}

func TestLoadOrGenerate(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "service.crt")
	keyFile := filepath.Join(dir, "service.key")

	first, created, err := LoadOrGenerate(certFile, keyFile, "camkit", []string{"localhost"})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := LoadOrGenerate(certFile, keyFile, "camkit", []string{"localhost"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.Fingerprint(), second.Fingerprint())
}

func TestReadFileErrors(t *testing.T) {
	_, err := ReadCertFile(filepath.Join(t.TempDir(), "missing.crt"))
	assert.ErrorIs(t, err, ErrReadFile)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCheckValidity(t *testing.T) {
	id := newIdentity(t)
	c := id.Certificate

	assert.ErrorIs(t, CheckValidity(c, c.NotBefore.Add(-time.Second)), ErrCertNotYetValid)
	assert.ErrorIs(t, CheckValidity(c, c.NotAfter.Add(time.Second)), ErrCertExpired)
	assert.ErrorIs(t, CheckValidity(nil, time.Now()), ErrInvalidCert)
}

func TestNormalizeFingerprint(t *testing.T) {
	assert.Equal(t, "abcd01", NormalizeFingerprint("AB:CD:01"))
}

func TestVerifyPin(t *testing.T) {
	id := newIdentity(t)
	raw := [][]byte{id.Certificate.Raw}

	assert.NoError(t, verifyPin(raw, id.Fingerprint(), time.Now()))
	assert.ErrorIs(t, verifyPin(raw, strings.Repeat("0", 64), time.Now()), ErrFingerprintMismatch)
	assert.ErrorIs(t, verifyPin(nil, id.Fingerprint(), time.Now()), ErrInvalidCert)
}

// handshake dials a TLS listener serving id and returns the client error.
func handshake(t *testing.T, id *Identity, client *tls.Config) error {
	t.Helper()
	ln, err := tls.Listen("tcp", "127.0.0.1:0", ServerTLSConfig(id))
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.(*tls.Conn).Handshake()
		_, _ = io.Copy(io.Discard, conn)
	}()

	conn, err := tls.Dial("tcp", ln.Addr().String(), client)
	if err != nil {
		return err
	}
	return conn.Close()
}

func TestPinnedHandshake(t *testing.T) {
	id := newIdentity(t)

	assert.NoError(t, handshake(t, id, PinnedClientTLSConfig(id.Fingerprint())))

	err := handshake(t, id, PinnedClientTLSConfig(strings.Repeat("ab", 32)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFingerprintMismatch) || strings.Contains(err.Error(), "fingerprint mismatch"))
}

func TestCAHandshake(t *testing.T) {
	id := newIdentity(t)
	pool := x509.NewCertPool()
	pool.AddCert(id.Certificate)

	assert.NoError(t, handshake(t, id, ClientTLSConfig(pool, "localhost")))
	assert.Error(t, handshake(t, id, ClientTLSConfig(x509.NewCertPool(), "localhost")))
}
