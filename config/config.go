// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/lrcshow-cli/lrcshow/constant"
	"github.com/lrcshow-cli/lrcshow/filesystem"
	"github.com/lrcshow-cli/lrcshow/key"
	"github.com/lrcshow-cli/lrcshow/util"
	"github.com/lrcshow-cli/lrcshow/where"
	"github.com/spf13/viper"
)

// Filename is the name of the configuration file inside where.Config().
const Filename = constant.Lrcshow + ".toml"

const (
	minTickMs = 1
	maxTickMs = 1000
)

// EnvKeyReplacer is a strings.Replacer used to normalize configuration keys into environment variable naming conventions.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup initializes the global configuration state, including defaults, environment bindings, and localized file resolution.
func Setup() error {
	viper.SetConfigName(constant.Lrcshow)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	// Synchronize environment variable bindings.
	viper.SetEnvPrefix(constant.Lrcshow)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	// Initialize factory default values.
	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}

	return nil
}

// File returns the path of the configuration file, whether it exists or not.
func File() string {
	return filepath.Join(where.Config(), Filename)
}

// Tick returns the synchronization tick period.
func Tick() time.Duration {
	return time.Duration(util.Clamp(viper.GetInt(key.DaemonTickMs), minTickMs, maxTickMs)) * time.Millisecond
}

// QueryTimeout returns the timeout of player queries.
func QueryTimeout() time.Duration {
	return time.Duration(max(viper.GetInt(key.MprisQueryTimeoutMs), 1)) * time.Millisecond
}
