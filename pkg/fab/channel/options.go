/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package channel

import (
	"time"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/metrics"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/peer"
)

const (
	// DefaultProposalTimeout bounds the time a peer gets to answer a proposal
	DefaultProposalTimeout = 20 * time.Second
	// DefaultOrdererTimeout bounds broadcast and deliver requests
	DefaultOrdererTimeout = 15 * time.Second
	// DefaultCommitTimeout bounds the wait for a commit event
	DefaultCommitTimeout = 3 * time.Minute
	// DefaultEventReconnectDelay is the pause before an event stream is reopened
	DefaultEventReconnectDelay = 5 * time.Second
)

type options struct {
	loader              ConfigLoader
	registry            *Registry
	metrics             *metrics.ChannelMetrics
	proposalTimeout     time.Duration
	ordererTimeout      time.Duration
	commitTimeout       time.Duration
	eventReconnectDelay time.Duration
}

func defaultOptions() options {
	return options{
		loader:              &BlockConfigLoader{},
		proposalTimeout:     DefaultProposalTimeout,
		ordererTimeout:      DefaultOrdererTimeout,
		commitTimeout:       DefaultCommitTimeout,
		eventReconnectDelay: DefaultEventReconnectDelay,
	}
}

// Option describes a functional parameter for the New constructor
type Option func(*options)

// WithConfigLoader replaces the loader run by Initialize
func WithConfigLoader(loader ConfigLoader) Option {
	return func(o *options) {
		o.loader = loader
	}
}

// WithRegistry registers the channel in r. New fails if r already holds
// a channel of the same name.
func WithRegistry(r *Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithMetrics records channel activity in m
func WithMetrics(m *metrics.ChannelMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithDefaultProposalTimeout sets the per peer timeout of proposals
func WithDefaultProposalTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.proposalTimeout = timeout
	}
}

// WithDefaultOrdererTimeout sets the timeout of orderer requests
func WithDefaultOrdererTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.ordererTimeout = timeout
	}
}

// WithDefaultCommitTimeout sets the time SendTransaction waits for a commit event
func WithDefaultCommitTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.commitTimeout = timeout
	}
}

// WithEventReconnectDelay sets the pause before a failed event stream is reopened
func WithEventReconnectDelay(delay time.Duration) Option {
	return func(o *options) {
		o.eventReconnectDelay = delay
	}
}

type requestOptions struct {
	targets       []*peer.Peer
	targetsSet    bool
	timeout       time.Duration
	commitTimeout time.Duration
}

// RequestOption configures a single channel request
type RequestOption func(*requestOptions)

// WithTargets sends the request to peers instead of the default peers of
// the channel. Every peer must be a member of the channel.
func WithTargets(peers []*peer.Peer) RequestOption {
	return func(o *requestOptions) {
		o.targets = peers
		o.targetsSet = true
	}
}

// WithTarget sends a ledger query to p only
func WithTarget(p *peer.Peer) RequestOption {
	return func(o *requestOptions) {
		o.targets = []*peer.Peer{p}
		o.targetsSet = true
	}
}

// WithTimeout overrides the per peer proposal timeout
func WithTimeout(timeout time.Duration) RequestOption {
	return func(o *requestOptions) {
		o.timeout = timeout
	}
}

// WithCommitTimeout overrides the time SendTransaction waits for a commit event
func WithCommitTimeout(timeout time.Duration) RequestOption {
	return func(o *requestOptions) {
		o.commitTimeout = timeout
	}
}

func (c *Channel) requestOptions(opts []RequestOption) requestOptions {
	o := requestOptions{
		timeout:       c.opts.proposalTimeout,
		commitTimeout: c.opts.commitTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// PeerOptions holds the channel specific settings of a member peer
type PeerOptions struct {
	Roles peer.Role
}

// PeerOption configures a peer added to a channel
type PeerOption func(*PeerOptions)

// WithPeerRoles overrides the roles of the peer within the channel
func WithPeerRoles(roles peer.Role) PeerOption {
	return func(o *PeerOptions) {
		o.Roles = roles
	}
}
