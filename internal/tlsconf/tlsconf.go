// internal/tlsconf/tlsconf.go
package tlsconf

import (
	"crypto/tls"
	"fmt"

	"golang.org/x/crypto/acme/autocert"
)

// CertificateError reports a certificate chain or private key that could not
// be loaded: missing file, unreadable file, corrupt encoding, or a key that
// does not match the certificate.
type CertificateError struct {
	CertFile string
	KeyFile  string
	Err      error
}

func (e *CertificateError) Error() string {
	return fmt.Sprintf("loading certificate %q / key %q: %v", e.CertFile, e.KeyFile, e.Err)
}

func (e *CertificateError) Unwrap() error { return e.Err }

// Load reads the certificate chain and private key from disk and returns a
// server-side TLS config with the project's protocol floor applied.
func Load(certFile, keyFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, &CertificateError{CertFile: certFile, KeyFile: keyFile, Err: err}
	}
	return newConfig(cert), nil
}

// TLS 1.2 is the negotiation floor everywhere. The platform default would be
// accepted silently otherwise, which is the wrong place for that decision.
func newConfig(cert tls.Certificate) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
}

// SelfSigned generates a throwaway in-memory certificate valid for the given
// hosts and returns a TLS config using it. Intended for development and tests
// where no cert.pem/key.pem exists on disk.
func SelfSigned(hosts ...string) (*tls.Config, error) {
	certPEM, keyPEM, err := SelfSignedPEM(hosts...)
	if err != nil {
		return nil, err
	}
	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, &CertificateError{CertFile: "(generated)", KeyFile: "(generated)", Err: err}
	}
	return newConfig(cert), nil
}

// ACME returns a TLS config that obtains and renews certificates from Let's
// Encrypt for the given hosts, caching them under cacheDir.
func ACME(cacheDir string, hosts ...string) *tls.Config {
	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(hosts...),
		Cache:      autocert.DirCache(cacheDir),
	}
	cfg := manager.TLSConfig()
	cfg.MinVersion = tls.VersionTLS12
	return cfg
}
