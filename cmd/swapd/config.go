package main

import (
	"os"
	"path/filepath"

	"github.com/iov-one/tokenswap/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	flagHome     = "home"
	flagLogLevel = "log_level"
	flagBind     = "bind"
	flagBackend  = "backend"
	flagMetrics  = "metrics"
	flagDebug    = "debug"
)

// Config holds the settings of the daemon. Values are read, in order of
// precedence, from command line flags, SWAPD_ prefixed environment
// variables, swapd.toml in the home directory and the defaults.
type Config struct {
	Home     string
	LogLevel string
	Bind     string
	Backend  string
	Metrics  string
	Debug    bool
}

func defaultHome() string {
	return filepath.Join(os.ExpandEnv("$HOME"), ".swapd")
}

// loadConfig resolves the configuration. flags may be nil.
func loadConfig(flags *pflag.FlagSet) (Config, error) {
	vip := viper.New()
	vip.SetEnvPrefix("SWAPD")
	vip.AutomaticEnv()

	vip.SetDefault(flagHome, defaultHome())
	vip.SetDefault(flagLogLevel, "info")
	vip.SetDefault(flagBind, "tcp://localhost:26658")
	vip.SetDefault(flagBackend, "iavl")
	vip.SetDefault(flagMetrics, ":9102")
	vip.SetDefault(flagDebug, false)

	if flags != nil {
		if err := vip.BindPFlags(flags); err != nil {
			return Config{}, errors.Wrap(errors.ErrInput, err.Error())
		}
	}

	vip.SetConfigName("swapd")
	vip.SetConfigType("toml")
	vip.AddConfigPath(vip.GetString(flagHome))
	if err := vip.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, errors.Wrapf(errors.ErrInput, "cannot read config: %s", err)
		}
	}

	conf := Config{
		Home:     vip.GetString(flagHome),
		LogLevel: vip.GetString(flagLogLevel),
		Bind:     vip.GetString(flagBind),
		Backend:  vip.GetString(flagBackend),
		Metrics:  vip.GetString(flagMetrics),
		Debug:    vip.GetBool(flagDebug),
	}
	return conf, nil
}

// newLogger returns a tendermint logger writing to stdout that drops
// entries below the configured level.
func newLogger(level string) (log.Logger, error) {
	allowed, err := log.AllowLevel(level)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout)).With("module", "swapd")
	return log.NewFilter(logger, allowed), nil
}
