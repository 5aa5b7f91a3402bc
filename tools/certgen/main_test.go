package main

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/atinyakov/healthmate/internal/certgen"
)

func readCert(t *testing.T, path string) *x509.Certificate {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	block, _ := pem.Decode(raw)
	if block == nil || block.Type != "CERTIFICATE" {
		t.Fatalf("expected CERTIFICATE PEM block in %s", path)
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		t.Fatalf("failed to parse %s: %v", path, err)
	}
	return cert
}

func TestRun_CreatesCAAndServerCert(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")

	if err := run(options{dir: dir, hosts: []string{"localhost"}}); err != nil {
		t.Fatalf("run error: %v", err)
	}

	ca := readCert(t, filepath.Join(dir, certgen.CACertFile))
	if !ca.IsCA {
		t.Error("CA certificate should have IsCA=true")
	}
	server := readCert(t, filepath.Join(dir, "server.crt"))
	if err := server.CheckSignatureFrom(ca); err != nil {
		t.Errorf("server certificate not signed by CA: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "client.crt")); !os.IsNotExist(err) {
		t.Errorf("client.crt should not exist without --client; stat err = %v", err)
	}
}

func TestRun_ReusesExistingCA(t *testing.T) {
	dir := t.TempDir()

	if err := run(options{dir: dir, hosts: []string{"localhost"}}); err != nil {
		t.Fatalf("first run error: %v", err)
	}
	first, err := os.ReadFile(filepath.Join(dir, certgen.CACertFile))
	if err != nil {
		t.Fatal(err)
	}

	if err := run(options{dir: dir, hosts: []string{"localhost"}, client: "alice@example.com"}); err != nil {
		t.Fatalf("second run error: %v", err)
	}
	second, err := os.ReadFile(filepath.Join(dir, certgen.CACertFile))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("CA was regenerated; want it reused")
	}

	client := readCert(t, filepath.Join(dir, "client.crt"))
	if client.Subject.CommonName != "alice@example.com" {
		t.Errorf("CommonName = %q; want alice@example.com", client.Subject.CommonName)
	}
	if err := client.CheckSignatureFrom(readCert(t, filepath.Join(dir, certgen.CACertFile))); err != nil {
		t.Errorf("client certificate not signed by CA: %v", err)
	}
}
