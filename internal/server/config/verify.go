package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Verify validates the configuration before the server starts.
func Verify(cfg *ServerConfig) error {
	if cfg.Server.HTTP.Addr == "" {
		return errors.New("server.http.addr is required")
	}
	if (cfg.Server.HTTP.TLSCertFile == "") != (cfg.Server.HTTP.TLSKeyFile == "") {
		return errors.New("server.http: tls_cert_file and tls_key_file must be set together")
	}

	if err := verifyRegistry(&cfg.Registry); err != nil {
		return err
	}
	if err := verifyUpstream(&cfg.Upstream); err != nil {
		return err
	}

	if cfg.Gateway.PublicBase != "" {
		u, err := url.Parse(cfg.Gateway.PublicBase)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("gateway.public_base %q is not an absolute URL", cfg.Gateway.PublicBase)
		}
	}

	return nil
}

func verifyRegistry(cfg *RegistrySection) error {
	switch strings.ToLower(cfg.Backend) {
	case "file":
		if cfg.ServicesPath == "" || cfg.ClientsPath == "" {
			return errors.New("registry: services_path and clients_path are required for the file backend")
		}
		if cfg.ServicesPath == cfg.ClientsPath {
			return errors.New("registry: services_path and clients_path must differ")
		}
	case "badger":
		if cfg.DataDir == "" {
			return errors.New("registry.data_dir is required for the badger backend")
		}
	default:
		return fmt.Errorf("registry.backend %q is not supported (file, badger)", cfg.Backend)
	}
	return nil
}

func verifyUpstream(cfg *UpstreamSection) error {
	if cfg.Portal == "" {
		return errors.New("upstream.portal is required")
	}
	if cfg.UsernameEnv == "" || cfg.PasswordEnv == "" {
		return errors.New("upstream: username_env and password_env are required")
	}
	if cfg.ExpirationMinutes < 1 {
		return errors.New("upstream.expiration_minutes must be at least 1")
	}
	if cfg.AuthTimeout <= 0 || cfg.DataTimeout <= 0 {
		return errors.New("upstream: auth_timeout and data_timeout must be positive")
	}
	return nil
}
