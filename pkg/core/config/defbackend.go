/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	defaultPeerResponseTimeout    = 20 * time.Second
	defaultOrdererResponseTimeout = 15 * time.Second
	defaultCommitTimeout          = 3 * time.Minute
	defaultConnectionTimeout      = 3 * time.Second
	defaultEventReconnectDelay    = 5 * time.Second
	defaultMetricsNamespace       = "fabric_channel"
)

// scalar keys get a default so that environment overrides apply even when
// the config file does not name them
var defaults = map[string]interface{}{
	"client.organization":          "",
	"client.mspID":                 "",
	"client.logging.level":         "",
	"client.credentials.cert.path": "",
	"client.credentials.cert.pem":  "",
	"client.credentials.key.path":  "",
	"client.credentials.key.pem":   "",
	"timeouts.peerResponse":        defaultPeerResponseTimeout,
	"timeouts.ordererResponse":     defaultOrdererResponseTimeout,
	"timeouts.commit":              defaultCommitTimeout,
	"timeouts.connection":          defaultConnectionTimeout,
	"timeouts.eventReconnect":      defaultEventReconnectDelay,
	"metrics.enabled":              false,
	"metrics.namespace":            defaultMetricsNamespace,
}

func setDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// defConfigBackend represents the default config backend
type defConfigBackend struct {
	configViper *viper.Viper
	opts        options
}

// Lookup gets the config item value by Key
func (c *defConfigBackend) Lookup(key string) (interface{}, bool) {
	value := c.configViper.Get(key)
	if value == nil {
		return nil, false
	}
	return value, true
}

// load Default config
func (c *defConfigBackend) loadTemplateConfig() error {
	templatePath := c.opts.templatePath
	if templatePath == "" {
		return nil
	}
	// if set, use it to load default config
	c.configViper.AddConfigPath(os.ExpandEnv(templatePath))
	err := c.configViper.ReadInConfig() // Find and read the config file
	if err != nil {                     // Handle errors reading the config file
		return errors.Wrap(err, "loading config file failed")
	}
	return nil
}

// load decodes the merged configuration. Sections keyed by node or
// channel name are decoded from the raw value since names may contain
// dots; the remaining sections go through the flattened settings so that
// environment overrides apply.
func (c *defConfigBackend) load() (*Config, error) {
	cfg := &Config{}

	settings := c.configViper.AllSettings()
	sections := []struct {
		value  interface{}
		result interface{}
	}{
		{settings["client"], &cfg.Client},
		{settings["timeouts"], &cfg.Timeouts},
		{settings["metrics"], &cfg.Metrics},
	}
	for _, s := range sections {
		if err := decode(s.value, s.result); err != nil {
			return nil, err
		}
	}

	named := []struct {
		key    string
		result interface{}
	}{
		{"peers", &cfg.Peers},
		{"orderers", &cfg.Orderers},
		{"eventSources", &cfg.EventSources},
		{"channels", &cfg.Channels},
	}
	for _, n := range named {
		if err := c.unmarshalKey(n.key, n.result); err != nil {
			return nil, errors.WithMessagef(err, "failed to parse '%s' config item", n.key)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := setLogLevel(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *defConfigBackend) unmarshalKey(key string, rawVal interface{}) error {
	value, ok := c.Lookup(key)
	if !ok {
		return nil
	}
	return decode(value, rawVal)
}

func decode(value interface{}, rawVal interface{}) error {
	if value == nil {
		return nil
	}

	hookFn := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       hookFn,
		WeaklyTypedInput: true,
		Result:           rawVal,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(value)
}
