/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package txn

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/golang/protobuf/ptypes"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
)

// NonceSize is the number of random bytes of a transaction nonce
const NonceSize = 24

// TransactionHeader contains metadata for a transaction created by the SDK.
type TransactionHeader struct {
	id        fab.TransactionID
	creator   []byte
	nonce     []byte
	channelID string
}

// TransactionID returns the transaction's computed identifier.
func (th *TransactionHeader) TransactionID() fab.TransactionID {
	return th.id
}

// Creator returns the transaction creator's identity bytes.
func (th *TransactionHeader) Creator() []byte {
	return th.creator
}

// Nonce returns the transaction's generated nonce.
func (th *TransactionHeader) Nonce() []byte {
	return th.nonce
}

// ChannelID returns the transaction's target channel identifier.
func (th *TransactionHeader) ChannelID() string {
	return th.channelID
}

// NewHeader computes a TransactionID from the current user context and holds
// metadata to create transaction proposals.
func NewHeader(signer fab.SigningIdentity, channelID string, opts ...fab.TxnHeaderOpt) (*TransactionHeader, error) {
	var options fab.TxnHeaderOptions
	for _, opt := range opts {
		opt(&options)
	}

	nonce := options.Nonce
	if nonce == nil {
		var err error
		nonce, err = newNonce()
		if err != nil {
			return nil, errors.WithMessage(err, "nonce creation failed")
		}
	}

	creator := options.Creator
	if creator == nil {
		if signer == nil {
			return nil, errors.New("signing identity is required")
		}
		var err error
		creator, err = signer.Serialize()
		if err != nil {
			return nil, errors.WithMessage(err, "identity from context failed")
		}
	}

	txnID := TransactionHeader{
		id:        fab.TransactionID(computeTxnID(nonce, creator)),
		creator:   creator,
		nonce:     nonce,
		channelID: channelID,
	}
	return &txnID, nil
}

func newNonce() ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Wrap(err, "error getting random bytes")
	}
	return nonce, nil
}

func computeTxnID(nonce, creator []byte) string {
	b := make([]byte, 0, len(nonce)+len(creator))
	b = append(b, nonce...)
	b = append(b, creator...)

	digest := sha256.Sum256(b)
	return hex.EncodeToString(digest[:])
}

// ChannelHeaderOpts holds the parameters to create a ChannelHeader.
type ChannelHeaderOpts struct {
	TxnHeader   fab.TransactionHeader
	Epoch       uint64
	ChaincodeID string
	Timestamp   time.Time
}

// CreateChannelHeader is a utility method to build a common chain header
func CreateChannelHeader(headerType common.HeaderType, opts ChannelHeaderOpts) (*common.ChannelHeader, error) {
	logger.Debugf("buildChannelHeader - headerType: %s channelID: %s txID: %s epoch: %d chaincodeID: %s timestamp: %v",
		headerType, opts.TxnHeader.ChannelID(), opts.TxnHeader.TransactionID(), opts.Epoch, opts.ChaincodeID, opts.Timestamp)

	channelHeader := &common.ChannelHeader{
		Type:      int32(headerType),
		ChannelId: opts.TxnHeader.ChannelID(),
		TxId:      string(opts.TxnHeader.TransactionID()),
		Epoch:     opts.Epoch,
	}

	ts := opts.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	tsProto, err := ptypes.TimestampProto(ts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create timestamp in channel header")
	}
	channelHeader.Timestamp = tsProto

	if opts.ChaincodeID != "" {
		headerExt := &pb.ChaincodeHeaderExtension{
			ChaincodeId: &pb.ChaincodeID{Name: opts.ChaincodeID},
		}
		headerExtBytes, err := proto.Marshal(headerExt)
		if err != nil {
			return nil, errors.Wrap(err, "marshal header extension failed")
		}
		channelHeader.Extension = headerExtBytes
	}
	return channelHeader, nil
}

// createHeader creates a Header from a ChannelHeader.
func createHeader(th fab.TransactionHeader, channelHeader *common.ChannelHeader) (*common.Header, error) {
	signatureHeader := &common.SignatureHeader{
		Creator: th.Creator(),
		Nonce:   th.Nonce(),
	}
	sh, err := proto.Marshal(signatureHeader)
	if err != nil {
		return nil, errors.Wrap(err, "marshal signatureHeader failed")
	}
	ch, err := proto.Marshal(channelHeader)
	if err != nil {
		return nil, errors.Wrap(err, "marshal channelHeader failed")
	}
	return &common.Header{SignatureHeader: sh, ChannelHeader: ch}, nil
}

// CreatePayload creates a payload from a ChannelHeader and a data slice.
func CreatePayload(txh fab.TransactionHeader, channelHeader *common.ChannelHeader, data []byte) (*common.Payload, error) {
	header, err := createHeader(txh, channelHeader)
	if err != nil {
		return nil, errors.Wrap(err, "header creation failed")
	}
	return &common.Payload{Header: header, Data: data}, nil
}

// SignPayload marshals and signs payload
func SignPayload(signer fab.SigningIdentity, payload *common.Payload) (*fab.SignedEnvelope, error) {
	payloadBytes, err := proto.Marshal(payload)
	if err != nil {
		return nil, errors.WithMessage(err, "marshaling of payload failed")
	}

	signature, err := signer.Sign(payloadBytes)
	if err != nil {
		return nil, errors.WithMessage(err, "signing of payload failed")
	}
	return &fab.SignedEnvelope{Payload: payloadBytes, Signature: signature}, nil
}

// CreateSignedEnvelope wraps msg into a signed envelope of the given header
// type addressed to channelID. Seek requests sent to deliver services use it.
func CreateSignedEnvelope(signer fab.SigningIdentity, headerType common.HeaderType, channelID string, msg proto.Message) (*fab.SignedEnvelope, error) {
	txh, err := NewHeader(signer, channelID)
	if err != nil {
		return nil, errors.WithMessage(err, "header creation failed")
	}

	channelHeader, err := CreateChannelHeader(headerType, ChannelHeaderOpts{TxnHeader: txh})
	if err != nil {
		return nil, errors.WithMessage(err, "channel header creation failed")
	}

	data, err := proto.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(err, "marshal of envelope data failed")
	}

	payload, err := CreatePayload(txh, channelHeader, data)
	if err != nil {
		return nil, err
	}
	return SignPayload(signer, payload)
}
