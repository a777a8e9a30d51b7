package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ralt/debrepack/internal/models"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Environment variable prefix for debrepack configuration
const envPrefix = "DEBREPACK"

// loadSettings layers the command's flags over the environment, the config
// file and the flag defaults
func loadSettings(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	configFile := v.GetString("config")
	if configFile == "" {
		return v, nil
	}

	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, &models.RepackError{
			Type: models.ErrInvalidConfig,
			Path: configFile,
			Err:  fmt.Errorf("reading config file: %w", err),
		}
	}
	return v, nil
}

// required fails on the first empty setting among names
func required(v *viper.Viper, names ...string) error {
	for _, name := range names {
		if v.GetString(name) == "" {
			return &models.RepackError{
				Type: models.ErrInvalidConfig,
				Err:  fmt.Errorf("%s is required", name),
			}
		}
	}
	return nil
}

// existing fails when path does not exist
func existing(flag, path string) error {
	if _, err := os.Stat(path); err != nil {
		return &models.RepackError{
			Type: models.ErrInvalidInput,
			Path: path,
			Err:  fmt.Errorf("%s: %w", flag, err),
		}
	}
	return nil
}
