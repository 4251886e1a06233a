// pkg/cli/cli.go
//
// Package cli holds shared viper plumbing for commands: env prefixing,
// flag-to-config-key binding and tolerant flag lookup.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// BindFlagsToViper binds each named flag to its config key, so a flag set on
// the command line takes precedence over environment and config file values
// for that key. Keys map flag names to config keys ("host" →
// "remote.endpoint"); flags left out of the map stay flag-only.
func BindFlagsToViper(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	var result error
	for flagName, key := range keys {
		f := flags.Lookup(flagName)
		if f == nil {
			result = multierror.Append(result, fmt.Errorf("flag --%s is not registered", flagName))
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}

// SetViperEnvPrefix lets Viper read env vars with the given prefix.
func SetViperEnvPrefix(v *viper.Viper, prefix string) {
	v.SetEnvPrefix(prefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
}

// GetStringOrEmpty returns the string value or empty string on error.
func GetStringOrEmpty(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to get flag %s: %v\n", name, err)
		return ""
	}
	return val
}
