package client

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	certFileName  = "client.crt"
	keyFileName   = "client.key"
	tokenFileName = "token"
)

// TLSConfig trusts the CA in caFile and presents the client certificate
// from certFile/keyFile when both are given and present. A missing client
// certificate is not an error: registration and token auth work without it.
func TLSConfig(caFile, certFile, keyFile string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}

	if caFile != "" {
		caCert, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, errors.New("failed to parse CA cert")
		}
		cfg.RootCAs = pool
	}

	if certFile == "" || keyFile == "" || !exists(certFile) || !exists(keyFile) {
		return cfg, nil
	}
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load client cert/key: %w", err)
	}
	cfg.Certificates = []tls.Certificate{cert}
	return cfg, nil
}

// SaveCredentials writes the certificate, key and token returned by the
// server into dir. Empty parts are skipped.
func SaveCredentials(dir string, creds *Credentials) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	files := []struct {
		name, data string
	}{
		{certFileName, creds.Cert},
		{keyFileName, creds.Key},
		{tokenFileName, creds.Token},
	}
	for _, f := range files {
		if f.data == "" {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, f.name), []byte(f.data), 0o600); err != nil {
			return fmt.Errorf("failed to save %s: %w", f.name, err)
		}
	}
	return nil
}

// CredentialPaths returns the certificate, key and token paths inside dir.
func CredentialPaths(dir string) (cert, key, token string) {
	return filepath.Join(dir, certFileName), filepath.Join(dir, keyFileName), filepath.Join(dir, tokenFileName)
}

// ReadToken returns the saved token in path, or "" when there is none.
func ReadToken(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
