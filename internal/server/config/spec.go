// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for esriagol-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Gateway  GatewaySection  `koanf:"gateway"`
	Registry RegistrySection `koanf:"registry"`
	Upstream UpstreamSection `koanf:"upstream"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures the listening endpoint.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`
}

// GatewaySection configures gateway-facing behavior.
type GatewaySection struct {
	// PublicBase is the externally visible base URL of this gateway
	// (e.g. https://proxy.example.com). Required for style rewriting.
	PublicBase string `koanf:"public_base"`

	// AdminKey protects the /admin endpoints. Admin operations are
	// refused entirely while it is unset.
	AdminKey string `koanf:"admin_key"`
}

// RegistrySection configures the services/clients registries.
type RegistrySection struct {
	// Backend selects the document store: "file" or "badger".
	Backend string `koanf:"backend"`

	// ServicesPath and ClientsPath locate the JSON registry files
	// (file backend).
	ServicesPath string `koanf:"services_path"`
	ClientsPath  string `koanf:"clients_path"`

	// DataDir is the Badger database directory (badger backend).
	DataDir string `koanf:"data_dir"`
}

// UpstreamSection configures the ArcGIS portal connection.
type UpstreamSection struct {
	// Portal is the ArcGIS portal base URL.
	Portal string `koanf:"portal"`

	// Referer is bound to issued session tokens.
	Referer string `koanf:"referer"`

	// UsernameEnv and PasswordEnv name the environment variables the
	// portal credentials are read from. The credentials themselves
	// never appear in configuration files.
	UsernameEnv string `koanf:"username_env"`
	PasswordEnv string `koanf:"password_env"`

	// ExpirationMinutes is the requested session token lifetime.
	ExpirationMinutes int `koanf:"expiration_minutes"`

	// AuthTimeout bounds the token exchange; DataTimeout bounds
	// queries and tile fetches.
	AuthTimeout time.Duration `koanf:"auth_timeout"`
	DataTimeout time.Duration `koanf:"data_timeout"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
