/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package fabricclient is the entry point of the SDK. A Client owns the
// signing identity, the channels created through it, their metrics and a
// health handler reporting on every channel.
package fabricclient

import (
	reqContext "context"
	"net/http"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/sdkerr"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/logging"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/metrics"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/core/config"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/channel"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/events"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/identity"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/orderer"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/peer"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/txn"
	"github.com/hyperledger/fabric-lib-go/healthz"
	"github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var logger = logging.NewLogger("fabsdk/client")

const healthCheckTimeout = 10 * time.Second

// Client creates channels and nodes sharing one identity
type Client struct {
	signer   fab.SigningIdentity
	config   *config.Config
	opts     options
	registry *channel.Registry
	metrics  *metrics.ChannelMetrics
	health   *healthz.HealthHandler
}

type options struct {
	signer     fab.SigningIdentity
	registry   *prometheus.Registry
	namespace  string
	timeouts   config.TimeoutConfig
	channelOps []channel.Option
}

// Option describes a functional parameter for the New constructor
type Option func(*options)

// WithSigningIdentity sets the identity requests are signed with
func WithSigningIdentity(signer fab.SigningIdentity) Option {
	return func(o *options) {
		o.signer = signer
	}
}

// WithMetrics records channel metrics in r under namespace
func WithMetrics(r *prometheus.Registry, namespace string) Option {
	return func(o *options) {
		o.registry = r
		o.namespace = namespace
	}
}

// WithTimeouts sets the request timeouts of the channels. Zero values keep
// the channel defaults.
func WithTimeouts(timeouts config.TimeoutConfig) Option {
	return func(o *options) {
		o.timeouts = timeouts
	}
}

// WithChannelOptions adds options to every channel the client creates
func WithChannelOptions(opts ...channel.Option) Option {
	return func(o *options) {
		o.channelOps = append(o.channelOps, opts...)
	}
}

// New returns a client. A signing identity is required.
func New(opts ...Option) (*Client, error) {
	return newClient(nil, opts...)
}

// NewFromConfig returns a client configured by cfg. The signing identity
// is loaded from the client credentials unless one is given.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	var base []Option
	base = append(base, WithTimeouts(cfg.Timeouts))
	if cfg.Metrics.Enabled {
		base = append(base, WithMetrics(prometheus.NewRegistry(), cfg.Metrics.Namespace))
	}
	return newClient(cfg, append(base, opts...)...)
}

func newClient(cfg *config.Config, opts ...Option) (*Client, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if o.signer == nil && cfg != nil {
		signer, err := loadIdentity(cfg.Client)
		if err != nil {
			return nil, err
		}
		o.signer = signer
	}
	if o.signer == nil {
		return nil, errors.New("signing identity is required")
	}

	m := metrics.NewDisabledChannelMetrics()
	if o.registry != nil {
		m = metrics.NewChannelMetrics(metrics.NewPrometheusProvider(o.registry), o.namespace)
	}

	health := healthz.NewHealthHandler()
	health.SetTimeout(healthCheckTimeout)

	return &Client{
		signer:   o.signer,
		config:   cfg,
		opts:     o,
		registry: channel.NewRegistry(),
		metrics:  m,
		health:   health,
	}, nil
}

func loadIdentity(cfg config.ClientConfig) (*identity.SigningIdentity, error) {
	if !cfg.Credentials.Cert.IsSet() || !cfg.Credentials.Key.IsSet() {
		return nil, errors.New("client credentials are not configured")
	}
	cert, err := cfg.Credentials.Cert.Bytes()
	if err != nil {
		return nil, errors.WithMessage(err, "loading client certificate failed")
	}
	key, err := cfg.Credentials.Key.Bytes()
	if err != nil {
		return nil, errors.WithMessage(err, "loading client key failed")
	}
	return identity.New(cfg.MSPID, cert, key)
}

// SigningIdentity returns the identity of the client
func (c *Client) SigningIdentity() fab.SigningIdentity {
	return c.signer
}

// Config returns the configuration of the client, or nil
func (c *Client) Config() *config.Config {
	return c.config
}

// MetricsHandler serves the client metrics in the prometheus format
func (c *Client) MetricsHandler() http.Handler {
	if c.opts.registry == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(c.opts.registry, promhttp.HandlerOpts{})
}

// HealthHandler reports the health of the channels of the client
func (c *Client) HealthHandler() http.Handler {
	return c.health
}

func (c *Client) channelOptions() []channel.Option {
	t := c.opts.timeouts
	opts := []channel.Option{channel.WithMetrics(c.metrics)}
	if t.PeerResponse > 0 {
		opts = append(opts, channel.WithDefaultProposalTimeout(t.PeerResponse))
	}
	if t.OrdererResponse > 0 {
		opts = append(opts, channel.WithDefaultOrdererTimeout(t.OrdererResponse))
	}
	if t.Commit > 0 {
		opts = append(opts, channel.WithDefaultCommitTimeout(t.Commit))
	}
	if t.EventReconnect > 0 {
		opts = append(opts, channel.WithEventReconnectDelay(t.EventReconnect))
	}
	return append(opts, c.opts.channelOps...)
}

// NewChannel creates a channel. Channel names are unique per client until
// the channel is shut down.
func (c *Client) NewChannel(name string, opts ...channel.Option) (*channel.Channel, error) {
	ch, err := c.registry.NewChannel(name, c, append(c.channelOptions(), opts...)...)
	if err != nil {
		return nil, err
	}

	component := "channel/" + name
	c.health.DeregisterChecker(component)
	if err := c.health.RegisterChecker(component, &channelChecker{registry: c.registry, name: name}); err != nil {
		logger.Warnf("Registering health checker of channel %s failed: %s", name, err)
	}
	return ch, nil
}

// GetChannel returns the channel called name
func (c *Client) GetChannel(name string) (*channel.Channel, bool) {
	return c.registry.Get(name)
}

// Channels returns the names of the channels of the client
func (c *Client) Channels() []string {
	return c.registry.Names()
}

// Close shuts down every channel of the client
func (c *Client) Close(force bool) {
	c.registry.Shutdown(force)
}

func (c *Client) dialTimeout() time.Duration {
	return c.opts.timeouts.Connection
}

// NewPeer creates a peer. The options given are applied after the name and URL.
func (c *Client) NewPeer(name, url string, opts ...peer.Option) (*peer.Peer, error) {
	base := []peer.Option{peer.WithName(name), peer.WithURL(url)}
	return peer.New(append(base, opts...)...)
}

// NewOrderer creates an orderer
func (c *Client) NewOrderer(name, url string, opts ...orderer.Option) (*orderer.Orderer, error) {
	base := []orderer.Option{orderer.WithName(name), orderer.WithURL(url)}
	return orderer.New(append(base, opts...)...)
}

// NewEventSource creates an event source
func (c *Client) NewEventSource(name, url string, opts ...events.Option) (*events.EventSource, error) {
	base := []events.Option{events.WithName(name), events.WithURL(url)}
	return events.New(append(base, opts...)...)
}

// QueryChannels returns the channels p has joined
func (c *Client) QueryChannels(ctx reqContext.Context, p *peer.Peer) (*pb.ChannelQueryResponse, error) {
	if p == nil {
		return nil, sdkerr.NewInvalidArgument("QueryChannels requires peer")
	}

	payload, err := c.queryPeer(ctx, p, txn.ChannelsRequest())
	if err != nil {
		return nil, err
	}

	response := &pb.ChannelQueryResponse{}
	if err := proto.Unmarshal(payload, response); err != nil {
		return nil, sdkerr.WrapProposal(err, "Unmarshal ChannelQueryResponse failed")
	}
	return response, nil
}

// QueryInstalledChaincodes returns the chaincodes installed on p
func (c *Client) QueryInstalledChaincodes(ctx reqContext.Context, p *peer.Peer) (*pb.ChaincodeQueryResponse, error) {
	if p == nil {
		return nil, sdkerr.NewInvalidArgument("QueryInstalledChaincodes requires peer")
	}

	payload, err := c.queryPeer(ctx, p, txn.InstalledChaincodesRequest())
	if err != nil {
		return nil, err
	}

	response := &pb.ChaincodeQueryResponse{}
	if err := proto.Unmarshal(payload, response); err != nil {
		return nil, sdkerr.WrapProposal(err, "Unmarshal ChaincodeQueryResponse failed")
	}
	return response, nil
}

// queryPeer sends a peer scoped system chaincode request to p
func (c *Client) queryPeer(ctx reqContext.Context, p *peer.Peer, request txn.ChaincodeInvokeRequest) ([]byte, error) {
	txh, err := txn.NewHeader(c.signer, fab.SystemChannel)
	if err != nil {
		return nil, sdkerr.WrapProposal(err, "Creating transaction header failed")
	}
	proposal, err := txn.CreateChaincodeInvokeProposal(txh, request)
	if err != nil {
		return nil, sdkerr.WrapProposal(err, "Creating %s proposal failed", request.Fcn)
	}

	timeout := c.opts.timeouts.PeerResponse
	if timeout <= 0 {
		timeout = channel.DefaultProposalTimeout
	}

	results, err := txn.SendProposal(ctx, c.signer, proposal, []fab.Endorser{p}, txn.WithResponseTimeout(timeout))
	if err != nil {
		if sdkerr.IsFatal(err) {
			return nil, err
		}
		return nil, sdkerr.WrapProposal(err, "Sending %s proposal to %s failed", request.Fcn, p.URL())
	}

	r := results[0]
	if r.Err != nil {
		return nil, r.Err
	}
	if r.Response.Status != int32(common.Status_SUCCESS) {
		return nil, sdkerr.NewProposal("bad status from %s (%d)", r.Endorser, r.Response.Status)
	}
	return r.Response.GetResponse().GetPayload(), nil
}

// channelChecker checks the channel registered under name, if any
type channelChecker struct {
	registry *channel.Registry
	name     string
}

func (cc *channelChecker) HealthCheck(ctx reqContext.Context) error {
	ch, ok := cc.registry.Get(cc.name)
	if !ok {
		return nil
	}
	return ch.HealthCheck(ctx)
}
