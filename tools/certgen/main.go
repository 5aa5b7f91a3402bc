// Package main bootstraps the HealthMate PKI: it creates the CA and the server
// certificate under a cert directory and can issue a client certificate for
// a login.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/atinyakov/healthmate/internal/certgen"
)

const caValidity = 10 * 365 * 24 * time.Hour

type options struct {
	dir    string
	hosts  []string
	client string
}

func main() {
	var opts options
	flag.StringVar(&opts.dir, "dir", "certs", "directory for certificates and keys")
	flag.StringSliceVar(&opts.hosts, "hosts", []string{"localhost", "127.0.0.1"}, "server certificate hosts")
	flag.StringVar(&opts.client, "client", "", "also issue a client certificate for this login")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "certgen:", err)
		os.Exit(1)
	}
	fmt.Printf("Certificates generated into %s\n", opts.dir)
}

// run creates the CA when the directory has none, then (re)issues the server
// certificate and the optional client certificate.
func run(opts options) error {
	if err := os.MkdirAll(opts.dir, 0o755); err != nil {
		return fmt.Errorf("create cert dir: %w", err)
	}

	ca, err := loadOrCreateCA(opts.dir)
	if err != nil {
		return err
	}

	certPEM, keyPEM, err := ca.IssueServerCertificate(opts.hosts, certgen.ClientValidity)
	if err != nil {
		return fmt.Errorf("issue server cert: %w", err)
	}
	if err := certgen.WriteFiles(filepath.Join(opts.dir, "server.crt"), filepath.Join(opts.dir, "server.key"), certPEM, keyPEM); err != nil {
		return err
	}

	if opts.client == "" {
		return nil
	}
	certPEM, keyPEM, err = ca.IssueClientCertificate(opts.client, certgen.ClientValidity)
	if err != nil {
		return fmt.Errorf("issue client cert: %w", err)
	}
	return certgen.WriteFiles(filepath.Join(opts.dir, "client.crt"), filepath.Join(opts.dir, "client.key"), certPEM, keyPEM)
}

func loadOrCreateCA(dir string) (*certgen.Authority, error) {
	_, err := os.Stat(filepath.Join(dir, certgen.CACertFile))
	switch {
	case err == nil:
		return certgen.LoadAuthorityDir(dir)
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("stat ca cert: %w", err)
	}

	ca, err := certgen.NewAuthority("HealthMate CA", caValidity)
	if err != nil {
		return nil, err
	}
	certPEM, keyPEM, err := ca.PEM()
	if err != nil {
		return nil, err
	}
	if err := certgen.WriteFiles(filepath.Join(dir, certgen.CACertFile), filepath.Join(dir, certgen.CAKeyFile), certPEM, keyPEM); err != nil {
		return nil, err
	}
	return ca, nil
}
