/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package txn enables creating, endorsing and sending transactions to Fabric peers and orderers.
package txn

import (
	"bytes"
	reqContext "context"
	"math/rand"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/multi"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/logging"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-protos-go/common"
	ab "github.com/hyperledger/fabric-protos-go/orderer"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
)

var logger = logging.NewLogger("fabsdk/fab")

// New create a transaction with proposal response, following the endorsement policy.
func New(request fab.TransactionRequest) (*fab.Transaction, error) {
	if len(request.ProposalResponses) == 0 {
		return nil, errors.New("at least one proposal response is necessary")
	}
	if request.Proposal == nil || request.Proposal.Proposal == nil {
		return nil, errors.New("proposal is required")
	}

	for i, r := range request.ProposalResponses {
		if r == nil {
			return nil, errors.Errorf("proposal response %d is nil", i)
		}
		if r.ProposalResponse == nil || r.ProposalResponse.Response == nil {
			return nil, errors.Errorf("proposal response from %s has no response", r.Endorser)
		}
	}

	proposal := request.Proposal

	// the original header
	hdr := &common.Header{}
	if err := proto.Unmarshal(proposal.Header, hdr); err != nil {
		return nil, errors.Wrap(err, "unmarshal proposal header failed")
	}

	// the original payload
	pPayl := &pb.ChaincodeProposalPayload{}
	if err := proto.Unmarshal(proposal.Payload, pPayl); err != nil {
		return nil, errors.Wrap(err, "unmarshal proposal payload failed")
	}

	responsePayload := request.ProposalResponses[0].ProposalResponse.Payload
	for _, r := range request.ProposalResponses {
		if r.ProposalResponse.Response.Status != int32(common.Status_SUCCESS) {
			return nil, errors.Errorf("proposal response was not successful, error code %d, msg %s", r.ProposalResponse.Response.Status, r.ProposalResponse.Response.Message)
		}
		if !bytes.Equal(responsePayload, r.ProposalResponse.Payload) {
			return nil, status.New(status.EndorserClientStatus, status.EndorsementMismatch.ToInt32(),
				"ProposalResponsePayloads do not match", []interface{}{r.Endorser})
		}
	}

	// fill endorsements
	endorsements := make([]*pb.Endorsement, len(request.ProposalResponses))
	for n, r := range request.ProposalResponses {
		endorsements[n] = r.ProposalResponse.Endorsement
	}

	// create ChaincodeEndorsedAction
	cea := &pb.ChaincodeEndorsedAction{ProposalResponsePayload: responsePayload, Endorsements: endorsements}

	// the transient map is never part of the transaction
	propPayloadBytes, err := proto.Marshal(&pb.ChaincodeProposalPayload{Input: pPayl.Input})
	if err != nil {
		return nil, errors.Wrap(err, "marshal of chaincode proposal payload failed")
	}

	// serialize the chaincode action payload
	cap := &pb.ChaincodeActionPayload{ChaincodeProposalPayload: propPayloadBytes, Action: cea}
	capBytes, err := proto.Marshal(cap)
	if err != nil {
		return nil, errors.Wrap(err, "marshal of chaincode action payload failed")
	}

	// create a transaction
	taa := &pb.TransactionAction{Header: hdr.SignatureHeader, Payload: capBytes}

	return &fab.Transaction{
		Transaction: &pb.Transaction{Actions: []*pb.TransactionAction{taa}},
		Proposal:    proposal,
	}, nil
}

// Send send a transaction to the chain’s orderer service (one or more orderer endpoints) for consensus and committing to the ledger.
func Send(reqCtx reqContext.Context, signer fab.SigningIdentity, tx *fab.Transaction, orderers []fab.Orderer) (*fab.TransactionResponse, error) {
	if len(orderers) == 0 {
		return nil, errors.New("orderers is nil")
	}
	if tx == nil {
		return nil, errors.New("transaction is nil")
	}
	if tx.Proposal == nil || tx.Proposal.Proposal == nil {
		return nil, errors.New("proposal is nil")
	}

	// the original header
	hdr := &common.Header{}
	if err := proto.Unmarshal(tx.Proposal.Proposal.Header, hdr); err != nil {
		return nil, errors.Wrap(err, "unmarshal proposal header failed")
	}
	// serialize the tx
	txBytes, err := proto.Marshal(tx.Transaction)
	if err != nil {
		return nil, errors.Wrap(err, "marshal of transaction failed")
	}

	// create the payload
	payload := common.Payload{Header: hdr, Data: txBytes}

	return BroadcastPayload(reqCtx, signer, &payload, orderers)
}

// BroadcastPayload will send the given payload to some orderer, picking random endpoints
// until all are exhausted
func BroadcastPayload(reqCtx reqContext.Context, signer fab.SigningIdentity, payload *common.Payload, orderers []fab.Orderer) (*fab.TransactionResponse, error) {
	// Check if orderers are defined
	if len(orderers) == 0 {
		return nil, errors.New("orderers not set")
	}

	envelope, err := SignPayload(signer, payload)
	if err != nil {
		return nil, err
	}

	return broadcastEnvelope(reqCtx, envelope, orderers)
}

// broadcastEnvelope will send the given envelope to some orderer, picking random endpoints
// until all are exhausted
func broadcastEnvelope(reqCtx reqContext.Context, envelope *fab.SignedEnvelope, orderers []fab.Orderer) (*fab.TransactionResponse, error) {
	var errs multi.Errors

	// Iterate them in a random order and try broadcasting 1 by 1
	for _, i := range rand.Perm(len(orderers)) {
		resp, err := sendBroadcast(reqCtx, envelope, orderers[i])
		if err == nil {
			return resp, nil
		}
		errs = append(errs, err)
		if reqCtx.Err() != nil {
			break
		}
	}
	return nil, errs.ToError()
}

func sendBroadcast(reqCtx reqContext.Context, envelope *fab.SignedEnvelope, orderer fab.Orderer) (*fab.TransactionResponse, error) {
	logger.Debugf("Broadcasting envelope to orderer: %s", orderer.URL())
	s, err := orderer.SendBroadcast(reqCtx, envelope)
	if err != nil {
		logger.Debugf("Receive Error Response from orderer: %s", err)
		return nil, errors.WithMessagef(err, "calling orderer '%s' failed", orderer.URL())
	}
	if s != nil && *s != common.Status_SUCCESS {
		return nil, status.New(status.OrdererServerStatus, int32(*s), "broadcast was not successful", []interface{}{orderer.URL()})
	}

	logger.Debugf("Receive Success Response from orderer: %s", orderer.URL())
	return &fab.TransactionResponse{Orderer: orderer.URL()}, nil
}

// CreateSeekEnvelope returns a signed deliver request for the given seek
func CreateSeekEnvelope(signer fab.SigningIdentity, channelID string, seekInfo *ab.SeekInfo) (*fab.SignedEnvelope, error) {
	return CreateSignedEnvelope(signer, common.HeaderType_DELIVER_SEEK_INFO, channelID, seekInfo)
}

// RetrieveBlock sends the seek request to the orderers in random order and
// returns the first block delivered.
func RetrieveBlock(reqCtx reqContext.Context, signer fab.SigningIdentity, channelID string, seekInfo *ab.SeekInfo, orderers []fab.Orderer) (*common.Block, error) {
	if len(orderers) == 0 {
		return nil, errors.New("orderers not set")
	}

	envelope, err := CreateSeekEnvelope(signer, channelID, seekInfo)
	if err != nil {
		return nil, errors.WithMessage(err, "seek envelope creation failed")
	}

	var errs multi.Errors
	for _, i := range rand.Perm(len(orderers)) {
		block, err := deliverBlock(reqCtx, envelope, orderers[i])
		if err == nil {
			return block, nil
		}
		errs = append(errs, errors.WithMessagef(err, "deliver from orderer '%s' failed", orderers[i].URL()))
		if reqCtx.Err() != nil {
			break
		}
	}
	return nil, errors.Wrap(errs.ToError(), "error returned from orderer service")
}

func deliverBlock(reqCtx reqContext.Context, envelope *fab.SignedEnvelope, orderer fab.Orderer) (*common.Block, error) {
	ctx, cancel := reqContext.WithCancel(reqCtx)
	defer cancel()

	blocks, errs := orderer.SendDeliver(ctx, envelope)
	select {
	case block, ok := <-blocks:
		if ok && block != nil {
			return block, nil
		}
		select {
		case err := <-errs:
			if err != nil {
				return nil, err
			}
		default:
		}
		return nil, errors.New("no block delivered")
	case err := <-errs:
		return nil, err
	case <-reqCtx.Done():
		return nil, errors.Wrap(reqCtx.Err(), "timeout waiting for response from orderer")
	}
}
