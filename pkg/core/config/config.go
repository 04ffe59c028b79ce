/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package config loads the client configuration (identity, nodes, channels,
// timeouts and metrics) from YAML or JSON with environment overrides.
package config

import (
	"bytes"
	"io"
	"strings"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/logging"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var logModules = [...]string{"fabsdk", "fabsdk/client", "fabsdk/core", "fabsdk/fab", "fabsdk/common"}

type options struct {
	envPrefix    string
	templatePath string
}

const (
	cmdRoot = "FABRIC_SDK"
)

// Provider loads the configuration on demand
type Provider func() (*Config, error)

// Option configures the package.
type Option func(opts *options) error

// FromReader loads configuration from in.
// configType can be "json" or "yaml".
func FromReader(in io.Reader, configType string, opts ...Option) Provider {
	return func() (*Config, error) {
		return initFromReader(in, configType, opts...)
	}
}

// FromFile reads from named config file
func FromFile(name string, opts ...Option) Provider {
	return func() (*Config, error) {
		backend, err := newBackend(opts...)
		if err != nil {
			return nil, err
		}

		if name == "" {
			return nil, errors.New("filename is required")
		}

		backend.configViper.SetConfigFile(name)

		err = backend.configViper.MergeInConfig()
		if err != nil {
			return nil, errors.Wrapf(err, "loading config file failed: %s", name)
		}

		return backend.load()
	}
}

// FromRaw will initialize the configs from a byte array
func FromRaw(configBytes []byte, configType string, opts ...Option) Provider {
	return func() (*Config, error) {
		buf := bytes.NewBuffer(configBytes)
		return initFromReader(buf, configType, opts...)
	}
}

func initFromReader(in io.Reader, configType string, opts ...Option) (*Config, error) {
	backend, err := newBackend(opts...)
	if err != nil {
		return nil, err
	}

	if configType == "" {
		return nil, errors.New("empty config type")
	}

	// read config from bytes array, but must set ConfigType
	// for viper to properly unmarshal the bytes array
	backend.configViper.SetConfigType(configType)
	err = backend.configViper.MergeConfig(in)
	if err != nil {
		return nil, err
	}

	return backend.load()
}

// WithEnvPrefix defines the prefix for environment variable overrides.
// See viper SetEnvPrefix for more information.
func WithEnvPrefix(prefix string) Option {
	return func(opts *options) error {
		opts.envPrefix = prefix
		return nil
	}
}

// WithTemplatePath loads the config file found in path before the
// configuration given to the provider, which is merged on top of it.
func WithTemplatePath(path string) Option {
	return func(opts *options) error {
		if path == "" {
			return errors.New("template path is required")
		}
		opts.templatePath = path
		return nil
	}
}

func newBackend(opts ...Option) (*defConfigBackend, error) {
	o := options{
		envPrefix: cmdRoot,
	}

	for _, option := range opts {
		err := option(&o)
		if err != nil {
			return nil, errors.WithMessage(err, "Error in options passed to create new config backend")
		}
	}

	v := newViper(o.envPrefix)
	setDefaults(v)

	backend := &defConfigBackend{
		configViper: v,
		opts:        o,
	}

	err := backend.loadTemplateConfig()
	if err != nil {
		return nil, err
	}

	return backend, nil
}

func newViper(cmdRootPrefix string) *viper.Viper {
	myViper := viper.New()
	myViper.SetEnvPrefix(cmdRootPrefix)
	myViper.AutomaticEnv()
	replacer := strings.NewReplacer(".", "_")
	myViper.SetEnvKeyReplacer(replacer)
	return myViper
}

// setLogLevel will set the log level of the client
func setLogLevel(cfg *Config) error {
	logLevel := logging.INFO
	if cfg.Client.Logging.Level != "" {
		var err error
		logLevel, err = logging.LogLevel(cfg.Client.Logging.Level)
		if err != nil {
			return errors.WithMessage(err, "invalid client.logging.level")
		}
	}

	for _, logModule := range logModules {
		logging.SetLevel(logModule, logLevel)
	}
	return nil
}
