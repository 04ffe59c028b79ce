/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package channel manages the peers, orderers and event sources of a
// channel and drives the propose, endorse, order and commit protocol
// against them.
//
// A channel is created, optionally initialized and finally shut down.
// Shutdown is irreversible: every later membership change or protocol
// request fails with an InvalidArgument error.
package channel

import (
	reqContext "context"
	"crypto/x509"
	"sync"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/sdkerr"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/logging"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/metrics"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/events"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/events/tracker"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/orderer"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/peer"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

var logger = logging.NewLogger("fabsdk/fab")

// Client supplies the identity requests are signed with
type Client interface {
	SigningIdentity() fab.SigningIdentity
}

// Channel is the client side handle of a channel
type Channel struct {
	name   string
	client Client
	opts   options

	initialized *atomic.Bool
	shutdown    *atomic.Bool
	initMtx     sync.Mutex

	// mtx guards membership and the loaded configuration
	mtx          sync.RWMutex
	peers        []*peer.Peer
	peerOptions  map[*peer.Peer]PeerOptions
	orderers     []*orderer.Orderer
	eventSources []*events.EventSource
	config       *Config
	caCerts      []*x509.Certificate

	tracker *tracker.Tracker
	metrics *metrics.ChannelMetrics

	listeners *listeners
}

// New creates a channel. The name must be unique in the registry given
// with WithRegistry.
func New(name string, client Client, opts ...Option) (*Channel, error) {
	if name == "" {
		return nil, sdkerr.NewInvalidArgument("Channel name is invalid can not be null or empty.")
	}
	if client == nil {
		return nil, sdkerr.NewInvalidArgument("Channel client is invalid can not be null.")
	}

	c := newChannel(name, client, opts...)

	if c.opts.registry != nil {
		if err := c.opts.registry.register(c); err != nil {
			return nil, err
		}
	}

	logger.Debugf("Created channel %s", name)
	return c, nil
}

func newChannel(name string, client Client, opts ...Option) *Channel {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	m := o.metrics
	if m == nil {
		m = metrics.NewDisabledChannelMetrics()
	}

	c := &Channel{
		name:        name,
		client:      client,
		opts:        o,
		initialized: atomic.NewBool(false),
		shutdown:    atomic.NewBool(false),
		peerOptions: make(map[*peer.Peer]PeerOptions),
		tracker:     tracker.New(),
		metrics:     m,
	}
	c.listeners = newListeners(c)
	return c
}

// Name returns the channel name
func (c *Channel) Name() string {
	return c.name
}

// IsInitialized reports whether Initialize completed
func (c *Channel) IsInitialized() bool {
	return c.initialized.Load()
}

// IsShutdown reports whether the channel was shut down
func (c *Channel) IsShutdown() bool {
	return c.shutdown.Load()
}

// Config returns the configuration loaded by Initialize, or nil
func (c *Channel) Config() *Config {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.config
}

// CACertificates returns the MSP root and intermediate certificates
// loaded by Initialize
func (c *Channel) CACertificates() []*x509.Certificate {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	certs := make([]*x509.Certificate, len(c.caCerts))
	copy(certs, c.caCerts)
	return certs
}

// PendingTransactions returns the number of transactions waiting for a
// commit event
func (c *Channel) PendingTransactions() int {
	return c.tracker.Pending()
}

func (c *Channel) signer() fab.SigningIdentity {
	return c.client.SigningIdentity()
}

func (c *Channel) shutdownError() error {
	return sdkerr.NewInvalidArgument("Channel %s has been shutdown.", c.name)
}

// checkReady verifies the channel may serve protocol requests
func (c *Channel) checkReady() error {
	if c.shutdown.Load() {
		return c.shutdownError()
	}
	if !c.initialized.Load() {
		return sdkerr.NewInvalidArgument("Channel %s has not been initialized.", c.name)
	}
	return nil
}

// Initialize loads the channel configuration and starts listening to the
// event sources of the channel. It is a no-op once the channel is
// initialized.
func (c *Channel) Initialize(ctx reqContext.Context) error {
	if c.shutdown.Load() {
		return c.shutdownError()
	}
	if c.name == "" {
		return sdkerr.NewInvalidArgument("Can not initialize channel without a valid name.")
	}
	if c.client == nil {
		return sdkerr.NewInvalidArgument("Can not initialize channel without a client object.")
	}

	c.initMtx.Lock()
	defer c.initMtx.Unlock()

	if c.initialized.Load() {
		return nil
	}

	logger.Debugf("Initializing channel %s", c.name)

	cfg, err := c.opts.loader.ParseConfigBlock(ctx, c)
	if err != nil {
		return sdkerr.WrapTransaction(err, "Channel %s initialization failed", c.name)
	}
	certs, err := c.opts.loader.LoadCACertificates(c, cfg)
	if err != nil {
		return sdkerr.WrapTransaction(err, "Channel %s initialization failed", c.name)
	}

	c.mtx.Lock()
	if c.shutdown.Load() {
		c.mtx.Unlock()
		return c.shutdownError()
	}
	c.config = cfg
	c.caCerts = certs
	eventSources := append([]*events.EventSource(nil), c.eventSources...)
	c.initialized.Store(true)
	c.mtx.Unlock()

	for _, es := range eventSources {
		c.listeners.start(es)
	}

	logger.Infof("Channel %s initialized", c.name)
	return nil
}

// Shutdown releases every member node, rejects the transactions waiting
// for a commit event and removes the channel from its registry. With force
// the connections of the member nodes are closed as well.
func (c *Channel) Shutdown(force bool) {
	if !c.shutdown.CAS(false, true) {
		return
	}
	logger.Debugf("Shutting down channel %s", c.name)

	c.tracker.Close(c.shutdownError())
	c.listeners.stopAll()

	c.mtx.Lock()
	peers, orderers, eventSources := c.peers, c.orderers, c.eventSources
	c.peers = nil
	c.orderers = nil
	c.eventSources = nil
	c.peerOptions = make(map[*peer.Peer]PeerOptions)
	c.initialized.Store(false)
	c.mtx.Unlock()

	for _, p := range peers {
		p.Unbind(c.name)
		if force {
			p.Close()
		}
	}
	for _, o := range orderers {
		o.Unbind(c.name)
		if force {
			o.Close()
		}
	}
	for _, es := range eventSources {
		es.Unbind(c.name)
		if force {
			es.Close()
		}
	}

	if c.opts.registry != nil {
		c.opts.registry.remove(c)
	}
	logger.Infof("Channel %s has been shutdown", c.name)
}

// HealthCheck fails when the channel is shut down or has no orderer to
// send transactions to
func (c *Channel) HealthCheck(ctx reqContext.Context) error {
	if c.shutdown.Load() {
		return c.shutdownError()
	}
	for _, o := range c.Orderers() {
		if o.URL() != "" {
			return nil
		}
	}
	return errors.Errorf("Channel %s has no orderers.", c.name)
}
