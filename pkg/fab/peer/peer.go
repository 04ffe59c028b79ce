/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package peer

import (
	reqContext "context"
	"crypto/x509"
	"strings"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/logging"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/comm"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/membership"
)

var logger = logging.NewLogger("fabsdk/fab")

// Role is a capability of a peer deciding which requests are routed to it
type Role uint8

const (
	// EndorsingPeer endorses transaction proposals
	EndorsingPeer Role = 1 << iota
	// LedgerQuery serves block and transaction queries
	LedgerQuery
	// ChaincodeQuery serves chaincode queries
	ChaincodeQuery
	// EventSource delivers block events
	EventSource

	// AllRoles is the default set of roles of a peer
	AllRoles = EndorsingPeer | LedgerQuery | ChaincodeQuery | EventSource
)

var roleNames = []struct {
	role Role
	name string
}{
	{EndorsingPeer, "endorsingPeer"},
	{LedgerQuery, "ledgerQuery"},
	{ChaincodeQuery, "chaincodeQuery"},
	{EventSource, "eventSource"},
}

// Has reports whether all roles of other are present in r
func (r Role) Has(other Role) bool {
	return r&other == other
}

func (r Role) String() string {
	var names []string
	for _, rn := range roleNames {
		if r.Has(rn.role) {
			names = append(names, rn.name)
		}
	}
	return "[" + strings.Join(names, ",") + "]"
}

// Peer represents a node in the target blockchain network to which
// endorsement proposals and query requests are sent.
type Peer struct {
	membership.Binding
	name      string
	url       string
	mspID     string
	roles     Role
	endpoint  comm.EndpointConfig
	processor fab.EndorserClient
}

// Option describes a functional parameter for the New constructor
type Option func(*Peer) error

// New Returns a new Peer instance. Unless an endorser client is supplied,
// a gRPC endorser for the peer URL is created; it connects on first use.
func New(opts ...Option) (*Peer, error) {
	peer := &Peer{roles: AllRoles}

	for _, opt := range opts {
		if err := opt(peer); err != nil {
			return nil, err
		}
	}
	peer.endpoint.URL = peer.url

	if peer.processor == nil && peer.url != "" {
		peer.processor = newPeerEndorser(peer.endpoint)
	}

	return peer, nil
}

// WithName is a functional option for the peer.New constructor that configures the peer's name
func WithName(name string) Option {
	return func(p *Peer) error {
		p.name = name
		return nil
	}
}

// WithURL is a functional option for the peer.New constructor that configures the peer's URL
func WithURL(url string) Option {
	return func(p *Peer) error {
		p.url = url
		return nil
	}
}

// WithMSPID is a functional option for the peer.New constructor that configures the peer's msp ID
func WithMSPID(mspID string) Option {
	return func(p *Peer) error {
		p.mspID = mspID
		return nil
	}
}

// WithRoles replaces the default roles of the peer
func WithRoles(roles Role) Option {
	return func(p *Peer) error {
		p.roles = roles
		return nil
	}
}

// WithEndpointConfig is a functional option for the peer.New constructor that
// configures the connection settings of the peer
func WithEndpointConfig(cfg comm.EndpointConfig) Option {
	return func(p *Peer) error {
		p.endpoint = cfg
		if cfg.URL != "" {
			p.url = cfg.URL
		}
		return nil
	}
}

// WithTLSCert is a functional option for the peer.New constructor that configures the peer's TLS certificate
func WithTLSCert(certificate *x509.Certificate) Option {
	return func(p *Peer) error {
		if certificate != nil {
			p.endpoint.TLSCACerts = append(p.endpoint.TLSCACerts, certificate)
		}
		return nil
	}
}

// WithServerName is a functional option for the peer.New constructor that configures the peer's server name
func WithServerName(serverName string) Option {
	return func(p *Peer) error {
		p.endpoint.ServerHostOverride = serverName
		return nil
	}
}

// WithInsecure is a functional option for the peer.New constructor that configures the peer's grpc insecure option
func WithInsecure() Option {
	return func(p *Peer) error {
		p.endpoint.AllowInsecure = true
		return nil
	}
}

// WithEndorserClient is a functional option for the peer.New constructor that
// configures the client proposals are sent through
func WithEndorserClient(client fab.EndorserClient) Option {
	return func(p *Peer) error {
		p.processor = client
		return nil
	}
}

// Name gets the Peer name.
func (p *Peer) Name() string {
	return p.name
}

// URL gets the Peer URL.
func (p *Peer) URL() string {
	return p.url
}

// MSPID gets the Peer mspID.
func (p *Peer) MSPID() string {
	return p.mspID
}

// Roles returns the roles of the peer
func (p *Peer) Roles() Role {
	return p.roles
}

// HasRole reports whether the peer has the given role
func (p *Peer) HasRole(role Role) bool {
	return p.roles.Has(role)
}

// ProcessTransactionProposal sends the created proposal to peer for endorsement.
func (p *Peer) ProcessTransactionProposal(ctx reqContext.Context, proposal fab.ProcessProposalRequest) (*fab.TransactionProposalResponse, error) {
	if p.processor == nil {
		return nil, status.New(status.EndorserClientStatus, status.ConnectionFailed.ToInt32(),
			"peer "+p.String()+" has no endpoint", []interface{}{p.name})
	}
	return p.processor.ProcessTransactionProposal(ctx, proposal)
}

// Active reports whether the connection to the peer can serve requests
func (p *Peer) Active() bool {
	return p.processor != nil && p.processor.Active()
}

// Close releases the connection to the peer
func (p *Peer) Close() {
	if p.processor != nil {
		logger.Debugf("closing peer %s", p)
		p.processor.Close()
	}
}

func (p *Peer) String() string {
	if p.name == "" {
		return p.url
	}
	return p.name
}
