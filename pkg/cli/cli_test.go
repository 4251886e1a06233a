// pkg/cli/cli_test.go

package cli

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindFlagsToViperPrecedence(t *testing.T) {
	v := viper.New()
	v.SetDefault("remote.endpoint", "")
	v.SetDefault("remote.port", 22)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("host", "", "")
	flags.Int("port", 0, "")

	require.NoError(t, BindFlagsToViper(v, flags, map[string]string{
		"host": "remote.endpoint",
		"port": "remote.port",
	}))

	// Unset flags must not clobber defaults with their zero values.
	assert.Equal(t, "", v.GetString("remote.endpoint"))
	assert.Equal(t, 22, v.GetInt("remote.port"))

	require.NoError(t, flags.Parse([]string{"--host", "db1.example.com"}))
	assert.Equal(t, "db1.example.com", v.GetString("remote.endpoint"),
		"a flag set on the command line wins")
	assert.Equal(t, 22, v.GetInt("remote.port"),
		"flags left unset still fall back")
}

func TestBindFlagsToViperUnregisteredFlag(t *testing.T) {
	v := viper.New()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("host", "", "")

	err := BindFlagsToViper(v, flags, map[string]string{
		"host":    "remote.endpoint",
		"missing": "remote.user",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--missing")

	// The registered flag still bound.
	require.NoError(t, flags.Parse([]string{"--host", "db1"}))
	assert.Equal(t, "db1", v.GetString("remote.endpoint"))
}

func TestSetViperEnvPrefix(t *testing.T) {
	t.Setenv("HERMES_REMOTE_ENDPOINT", "env-host")

	v := viper.New()
	SetViperEnvPrefix(v, "HERMES")
	v.SetDefault("remote.endpoint", "")

	assert.Equal(t, "env-host", v.GetString("remote.endpoint"))
}
