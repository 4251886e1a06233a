// pkg/config/config.go

// Package config loads hermes settings from config file, environment and
// .env, in ascending precedence: defaults < config.yaml < HERMES_* env <
// flags bound via cli.BindFlagsToViper.
package config

import (
	"context"
	"io/fs"
	"os"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/xdg"
)

// Settings is the resolved hermes configuration.
type Settings struct {
	Remote RemoteSettings `mapstructure:"remote"`
	Probe  ProbeSettings  `mapstructure:"probe"`
	Serve  ServeSettings  `mapstructure:"serve"`
}

// RemoteSettings describes the verification target.
type RemoteSettings struct {
	// Endpoint is the SSH host (name or address) credentials are verified on.
	Endpoint string `mapstructure:"endpoint"`
	User     string `mapstructure:"user"`
	Port     int    `mapstructure:"port"`

	// Identity is a private key path for SSH. When empty and no password is
	// given, hermes prompts for a password before connecting.
	Identity string `mapstructure:"identity"`

	// AgentURL selects the HTTP agent transport instead of SSH when set.
	AgentURL string `mapstructure:"agent-url"`
}

// ProbeSettings bounds individual verification probes.
type ProbeSettings struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// ServeSettings configures the local agent.
type ServeSettings struct {
	Listen string `mapstructure:"listen"`
}

// DefaultAgentListen is loopback only: the agent is a trusted local
// endpoint, never exposed beyond the host.
const DefaultAgentListen = "127.0.0.1:8000"

// New creates a viper instance with hermes defaults, env prefix and config
// file search paths applied.
func New() *viper.Viper {
	v := viper.New()
	cli.SetViperEnvPrefix(v, "HERMES")

	// Every key gets a default so HERMES_* env values bind even when the
	// key is absent from the config file.
	v.SetDefault("remote.endpoint", "")
	v.SetDefault("remote.user", "root")
	v.SetDefault("remote.port", 22)
	v.SetDefault("remote.identity", "")
	v.SetDefault("remote.agent-url", "")
	v.SetDefault("probe.timeout", time.Duration(shared.DefaultProbeTimeoutSeconds)*time.Second)
	v.SetDefault("serve.listen", DefaultAgentListen)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(xdg.XDGConfigPath(shared.AppID, ""))
	v.AddConfigPath("/etc/" + shared.AppID)
	v.AddConfigPath(".")

	return v
}

// Load reads .env and the config file, then unmarshals into Settings.
// A missing config file is fine; a malformed one is not.
func Load(ctx context.Context, v *viper.Viper) (*Settings, error) {
	logger := otelzap.Ctx(ctx)

	if err := loadDotEnv(); err != nil {
		logger.Warn("Failed to load .env file", zap.Error(err))
	}

	if err := v.ReadInConfig(); err != nil {
		// Search-path mode reports ConfigFileNotFoundError; SetConfigFile
		// mode reports a plain path error. Both mean "run on defaults".
		var notFound viper.ConfigFileNotFoundError
		if !cerr.As(err, &notFound) && !cerr.Is(err, fs.ErrNotExist) {
			return nil, cerr.Wrap(err, "failed to read config file")
		}
		logger.Debug("No config file found, using defaults")
	} else {
		logger.Debug("Loaded config file", zap.String("path", v.ConfigFileUsed()))
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func loadDotEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		return godotenv.Load(".env")
	}
	return nil
}
