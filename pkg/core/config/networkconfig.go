/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"io/ioutil"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/comm"
	"github.com/pkg/errors"
)

// Config is the client configuration. Node and channel names are
// case-insensitive and stored in lower case.
type Config struct {
	Client       ClientConfig
	Peers        map[string]PeerConfig
	Orderers     map[string]NodeConfig
	EventSources map[string]NodeConfig
	Channels     map[string]ChannelConfig
	Timeouts     TimeoutConfig
	Metrics      MetricsConfig
}

// ClientConfig identifies the client
type ClientConfig struct {
	Organization string
	MSPID        string
	Credentials  CredentialsConfig
	Logging      LoggingConfig
}

// LoggingConfig holds the client log level
type LoggingConfig struct {
	Level string
}

// CredentialsConfig locates the signing certificate and private key
type CredentialsConfig struct {
	Cert PEMConfig
	Key  PEMConfig
}

// PEMConfig is PEM content given inline or by path. Environment variables
// in the path are expanded.
type PEMConfig struct {
	Path string
	Pem  string
}

// IsSet reports whether inline content or a path is configured
func (p PEMConfig) IsSet() bool {
	return p.Pem != "" || p.Path != ""
}

// Bytes returns the inline PEM or the content of the file at Path
func (p PEMConfig) Bytes() ([]byte, error) {
	if p.Pem != "" {
		return []byte(p.Pem), nil
	}
	if p.Path == "" {
		return nil, nil
	}
	b, err := ioutil.ReadFile(os.ExpandEnv(p.Path))
	if err != nil {
		return nil, errors.Wrapf(err, "reading PEM file %s failed", p.Path)
	}
	return b, nil
}

// NodeConfig describes an orderer or event source endpoint
type NodeConfig struct {
	URL         string
	TLSCACerts  PEMConfig
	GRPCOptions map[string]interface{}
}

// Endpoint returns the connection settings of the node
func (n NodeConfig) Endpoint(dialTimeout time.Duration) (comm.EndpointConfig, error) {
	pem, err := n.TLSCACerts.Bytes()
	if err != nil {
		return comm.EndpointConfig{}, err
	}
	cfg, err := comm.FromGRPCOptions(n.URL, pem, n.GRPCOptions)
	if err != nil {
		return comm.EndpointConfig{}, err
	}
	cfg.DialTimeout = dialTimeout
	return cfg, nil
}

// PeerConfig describes a peer endpoint
type PeerConfig struct {
	NodeConfig `mapstructure:",squash"`
	MSPID      string
}

// ChannelConfig names the members of a channel
type ChannelConfig struct {
	Orderers     []string
	Peers        map[string]ChannelPeerConfig
	EventSources []string
}

// ChannelPeerConfig holds the roles of a peer within a channel. An unset
// role defaults to true.
type ChannelPeerConfig struct {
	EndorsingPeer  *bool
	ChaincodeQuery *bool
	LedgerQuery    *bool
	EventSource    *bool
}

// TimeoutConfig bounds the requests of the client
type TimeoutConfig struct {
	PeerResponse    time.Duration
	OrdererResponse time.Duration
	Commit          time.Duration
	Connection      time.Duration
	EventReconnect  time.Duration
}

// MetricsConfig enables the prometheus metrics of the client
type MetricsConfig struct {
	Enabled   bool
	Namespace string
}

// Peer returns the configuration of the named peer
func (c *Config) Peer(name string) (PeerConfig, bool) {
	p, ok := c.Peers[strings.ToLower(name)]
	return p, ok
}

// Orderer returns the configuration of the named orderer
func (c *Config) Orderer(name string) (NodeConfig, bool) {
	o, ok := c.Orderers[strings.ToLower(name)]
	return o, ok
}

// EventSource returns the configuration of the named event source
func (c *Config) EventSource(name string) (NodeConfig, bool) {
	es, ok := c.EventSources[strings.ToLower(name)]
	return es, ok
}

// Channel returns the configuration of the named channel
func (c *Config) Channel(name string) (ChannelConfig, bool) {
	ch, ok := c.Channels[strings.ToLower(name)]
	return ch, ok
}

// ChannelNames returns the sorted names of the configured channels
func (c *Config) ChannelNames() []string {
	names := make([]string, 0, len(c.Channels))
	for name := range c.Channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Config) validate() error {
	for name, p := range c.Peers {
		if p.URL == "" {
			return errors.Errorf("peer %s has no url", name)
		}
	}
	for name, o := range c.Orderers {
		if o.URL == "" {
			return errors.Errorf("orderer %s has no url", name)
		}
	}
	for name, es := range c.EventSources {
		if es.URL == "" {
			return errors.Errorf("event source %s has no url", name)
		}
	}

	for name, ch := range c.Channels {
		for _, o := range ch.Orderers {
			if _, ok := c.Orderer(o); !ok {
				return errors.Errorf("channel %s references unknown orderer %s", name, o)
			}
		}
		for p := range ch.Peers {
			if _, ok := c.Peer(p); !ok {
				return errors.Errorf("channel %s references unknown peer %s", name, p)
			}
		}
		for _, es := range ch.EventSources {
			if _, ok := c.EventSource(es); !ok {
				return errors.Errorf("channel %s references unknown event source %s", name, es)
			}
		}
	}
	return nil
}
