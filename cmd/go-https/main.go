package main

import (
	"crypto/tls"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/ProjectXcloud/go-https/internal/config"
	"github.com/ProjectXcloud/go-https/internal/fileserver"
	"github.com/ProjectXcloud/go-https/internal/server"
	"github.com/ProjectXcloud/go-https/internal/signaling"
	"github.com/ProjectXcloud/go-https/internal/tlsconf"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	defaults := config.Default()

	fs := flag.NewFlagSet("go-https", flag.ExitOnError)
	var (
		configFile = fs.String("config", "", "optional YAML config file")
		address    = fs.String("address", defaults.Address, "interface to listen on")
		port       = fs.Int("port", defaults.Port, "TCP port to listen on")
		certFile   = fs.String("cert", defaults.CertFile, "PEM certificate chain file")
		keyFile    = fs.String("key", defaults.KeyFile, "PEM private key file")
		root       = fs.String("root", defaults.Root, "directory to serve files from")
		maxConns   = fs.Int("max-conns", defaults.MaxConns, "connections handled concurrently; 1 is the original serial behavior, below 1 removes the bound")
		noCache    = fs.Bool("no-cache", defaults.NoCache, "send no-cache headers on every response")
		devCert    = fs.Bool("dev-cert", defaults.DevCert, "serve with a generated self-signed certificate instead of cert/key files")
		acmeHosts  = fs.String("acme-hosts", "", "comma-separated hosts to obtain Let's Encrypt certificates for")
		enableSig  = fs.Bool("signaling", defaults.Signaling, "expose the /signaling WebRTC endpoint")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Precedence: defaults, then config file, then environment, then any
	// flag that was set explicitly.
	cfg := config.Default()
	if *configFile != "" {
		if err := cfg.LoadFile(*configFile); err != nil {
			return err
		}
	}
	cfg.ApplyEnv()
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "address":
			cfg.Address = *address
		case "port":
			cfg.Port = *port
		case "cert":
			cfg.CertFile = *certFile
		case "key":
			cfg.KeyFile = *keyFile
		case "root":
			cfg.Root = *root
		case "max-conns":
			cfg.MaxConns = *maxConns
		case "no-cache":
			cfg.NoCache = *noCache
		case "dev-cert":
			cfg.DevCert = *devCert
		case "acme-hosts":
			cfg.ACMEHosts = nil
			for _, h := range strings.Split(*acmeHosts, ",") {
				if h = strings.TrimSpace(h); h != "" {
					cfg.ACMEHosts = append(cfg.ACMEHosts, h)
				}
			}
		case "signaling":
			cfg.Signaling = *enableSig
		}
	})
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	files, err := fileserver.New(cfg.Root)
	if err != nil {
		return fmt.Errorf("resolving root directory: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/", files)
	if cfg.Signaling {
		hub := signaling.NewHub(signaling.Options{
			STUNServers:    cfg.STUNServers,
			TURNURL:        cfg.TURN.URL,
			TURNUsername:   cfg.TURN.Username,
			TURNCredential: cfg.TURN.Credential,
		})
		mux.Handle("/signaling", hub)
		log.Println("Signaling endpoint enabled at /signaling")
	}
	var handler http.Handler = mux
	if cfg.NoCache {
		handler = fileserver.NoCache(handler)
	}

	// Bind before loading certificates so an occupied port fails without
	// touching key material; the deferred Close releases the socket when
	// certificate loading fails partway through setup.
	srv, err := server.Listen(cfg.ListenAddr(), server.Options{
		MaxConns:          cfg.MaxConns,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	})
	if err != nil {
		return err
	}
	defer srv.Close()

	tlsCfg, err := buildTLSConfig(cfg)
	if err != nil {
		return err
	}

	log.Printf("Serving %s", files.Root())
	fmt.Printf("Serving on https://%s:%d\n", cfg.Address, cfg.Port)
	return srv.ServeTLS(tlsCfg, handler)
}

func buildTLSConfig(cfg config.Config) (*tls.Config, error) {
	switch {
	case cfg.DevCert:
		return tlsconf.SelfSigned(cfg.Address, "localhost")
	case len(cfg.ACMEHosts) > 0:
		return tlsconf.ACME(cfg.ACMECacheDir, cfg.ACMEHosts...), nil
	default:
		return tlsconf.Load(cfg.CertFile, cfg.KeyFile)
	}
}
