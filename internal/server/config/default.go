package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr = "127.0.0.1:8080"

	DefaultRegistryBackend = "file"
	DefaultServicesPath    = "services.json"
	DefaultClientsPath     = "clients.json"
	DefaultRegistryDataDir = "registry-data"

	DefaultPortal            = "https://www.arcgis.com"
	DefaultReferer           = "https://www.arcgis.com"
	DefaultUsernameEnv       = "AGOL_USERNAME"
	DefaultPasswordEnv       = "AGOL_PASSWORD"
	DefaultExpirationMinutes = 60
	DefaultAuthTimeout       = 30 * time.Second
	DefaultDataTimeout       = 60 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr: DefaultHTTPAddr,
			},
		},
		Registry: RegistrySection{
			Backend:      DefaultRegistryBackend,
			ServicesPath: DefaultServicesPath,
			ClientsPath:  DefaultClientsPath,
			DataDir:      DefaultRegistryDataDir,
		},
		Upstream: UpstreamSection{
			Portal:            DefaultPortal,
			Referer:           DefaultReferer,
			UsernameEnv:       DefaultUsernameEnv,
			PasswordEnv:       DefaultPasswordEnv,
			ExpirationMinutes: DefaultExpirationMinutes,
			AuthTimeout:       DefaultAuthTimeout,
			DataTimeout:       DefaultDataTimeout,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
