package config

import "os"

const (
	msaClientIDVar = "MSA_CLIENT_ID"
	usernameVar    = "MOJANG_USERNAME"
	passwordVar    = "MOJANG_PASSWORD"
	clientTokenVar = "MOJANG_CLIENT_TOKEN"
	proxyURLVar    = "MCAUTH_PROXY"
	appNameVar     = "APP_NAME"
	logLevelVar    = "LOG_LEVEL"
)

type EnvVars struct{}

var _ Config = EnvVars{}

func (EnvVars) GetMsaClientID() string {
	return GetEnv(msaClientIDVar, "")
}

func (EnvVars) GetUsername() string {
	return GetEnv(usernameVar, "")
}

func (EnvVars) GetPassword() string {
	return GetEnv(passwordVar, "")
}

// GetClientToken returns a persisted legacy client token, or "" to let the
// service generate a fresh one per run.
func (EnvVars) GetClientToken() string {
	return GetEnv(clientTokenVar, "")
}

func (EnvVars) GetProxyURL() string {
	return GetEnv(proxyURLVar, "")
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "mcauth")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
