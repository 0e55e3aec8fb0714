package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ClientConfig holds all configuration for the schedule-sync client.
type ClientConfig struct {
	AppEnv string

	// APIBaseURL is the base URL of the scheduling backend.
	APIBaseURL string
	// HTTPTimeout bounds each remote call; timeouts surface as ordinary
	// remote failures.
	HTTPTimeout time.Duration

	// ProbeURL is polled by the connectivity monitor; empty disables probing.
	ProbeURL      string
	ProbeInterval time.Duration

	// ReplayBackoff enables exponential backoff between offline-queue replay
	// attempts. Off by default: the baseline behavior retries immediately and
	// without bound on every reconnect.
	ReplayBackoff     bool
	ReplayMaxAttempts int
}

// StubConfig holds configuration for the in-memory stub backend.
type StubConfig struct {
	AppEnv string
	Port   string
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("SCHEDSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads client configuration from SCHEDSYNC_-prefixed environment
// variables, applying defaults for everything optional.
func Load() (*ClientConfig, error) {
	v := newViper()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("API_BASE_URL", "http://localhost:8080")
	v.SetDefault("HTTP_TIMEOUT", "10s")
	v.SetDefault("PROBE_URL", "")
	v.SetDefault("PROBE_INTERVAL", "15s")
	v.SetDefault("REPLAY_BACKOFF", false)
	v.SetDefault("REPLAY_MAX_ATTEMPTS", 0)

	return &ClientConfig{
		AppEnv:            v.GetString("APP_ENV"),
		APIBaseURL:        v.GetString("API_BASE_URL"),
		HTTPTimeout:       v.GetDuration("HTTP_TIMEOUT"),
		ProbeURL:          v.GetString("PROBE_URL"),
		ProbeInterval:     v.GetDuration("PROBE_INTERVAL"),
		ReplayBackoff:     v.GetBool("REPLAY_BACKOFF"),
		ReplayMaxAttempts: v.GetInt("REPLAY_MAX_ATTEMPTS"),
	}, nil
}

// LoadStub reads stub-backend configuration from the same environment prefix.
func LoadStub() (*StubConfig, error) {
	v := newViper()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("STUB_PORT", ":8080")

	port := v.GetString("STUB_PORT")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	return &StubConfig{
		AppEnv: v.GetString("APP_ENV"),
		Port:   port,
	}, nil
}
