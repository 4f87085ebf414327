// Package config reads the mcauth CLI's settings from the environment.
package config

// Config is everything the CLI needs to run either login flow.
type Config interface {
	CredentialsConfig
	TransportConfig
	EnvConfig
}

// CredentialsConfig selects and feeds the login flow: a Microsoft client id
// drives the device-code flow, a username/password pair the legacy one.
type CredentialsConfig interface {
	GetMsaClientID() string
	GetUsername() string
	GetPassword() string
	GetClientToken() string
}

// TransportConfig tunes the HTTP exchanger.
type TransportConfig interface {
	GetProxyURL() string
}

type EnvConfig interface {
	GetAppName() string
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
