package tlsconf

import (
	"crypto/tls"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeKeyPair(t *testing.T, hosts ...string) (certFile, keyFile string) {
	t.Helper()
	certPEM, keyPEM, err := SelfSignedPEM(hosts...)
	require.NoError(t, err)

	dir := t.TempDir()
	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(certFile, certPEM, 0o600))
	require.NoError(t, os.WriteFile(keyFile, keyPEM, 0o600))
	return certFile, keyFile
}

func TestLoadValidKeyPair(t *testing.T) {
	certFile, keyFile := writeKeyPair(t, "localhost", "127.0.0.1")

	cfg, err := Load(certFile, keyFile)
	require.NoError(t, err)
	assert.Len(t, cfg.Certificates, 1)
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
}

func TestLoadMissingFiles(t *testing.T) {
	cfg, err := Load("no-such-cert.pem", "no-such-key.pem")
	require.Error(t, err)
	assert.Nil(t, cfg)

	var certErr *CertificateError
	require.True(t, errors.As(err, &certErr))
	assert.Equal(t, "no-such-cert.pem", certErr.CertFile)
}

func TestLoadMismatchedPair(t *testing.T) {
	certFile, _ := writeKeyPair(t, "localhost")
	_, otherKey := writeKeyPair(t, "localhost")

	_, err := Load(certFile, otherKey)
	var certErr *CertificateError
	require.True(t, errors.As(err, &certErr))
}

func TestLoadCorruptPEM(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "cert.pem")
	keyFile := filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(certFile, []byte("not a certificate"), 0o600))
	require.NoError(t, os.WriteFile(keyFile, []byte("not a key"), 0o600))

	_, err := Load(certFile, keyFile)
	var certErr *CertificateError
	require.True(t, errors.As(err, &certErr))
}

func TestSelfSigned(t *testing.T) {
	cfg, err := SelfSigned("127.0.0.1")
	require.NoError(t, err)
	assert.Len(t, cfg.Certificates, 1)
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
}

func TestACMEConfig(t *testing.T) {
	cfg := ACME(t.TempDir(), "example.com")
	require.NotNil(t, cfg.GetCertificate)
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
}
