/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package fab

import (
	reqContext "context"

	"github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
)

// EndorserClient is the remote endpoint of a peer.
type EndorserClient interface {
	ProposalProcessor
	// Active reports whether the underlying connection can still serve requests.
	Active() bool
	Close()
}

// OrdererClient is the remote endpoint of an orderer.
type OrdererClient interface {
	SendBroadcast(ctx reqContext.Context, envelope *SignedEnvelope) (*common.Status, error)
	SendDeliver(ctx reqContext.Context, envelope *SignedEnvelope) (chan *common.Block, chan error)
	Close()
}

// Orderer is a named ordering service endpoint
type Orderer interface {
	URL() string
	SendBroadcast(ctx reqContext.Context, envelope *SignedEnvelope) (*common.Status, error)
	SendDeliver(ctx reqContext.Context, envelope *SignedEnvelope) (chan *common.Block, chan error)
}

// EventClient is the remote endpoint of an event source. DeliverFiltered
// streams filtered blocks until ctx is done or the stream fails; both
// channels are closed when the stream ends.
type EventClient interface {
	DeliverFiltered(ctx reqContext.Context, envelope *SignedEnvelope) (<-chan *pb.FilteredBlock, <-chan error)
	Close()
}

// A SignedEnvelope can can be sent to an orderer for broadcasting
type SignedEnvelope struct {
	Payload   []byte
	Signature []byte
}

// SigningIdentity signs payloads on behalf of the client.
type SigningIdentity interface {
	// MSPID is the membership service provider of the identity
	MSPID() string
	// Serialize returns the marshalled msp.SerializedIdentity
	Serialize() ([]byte, error)
	// Sign signs msg with the private key of the identity
	Sign(msg []byte) ([]byte, error)
}
