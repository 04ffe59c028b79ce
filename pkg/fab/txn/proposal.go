/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package txn

import (
	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/sdkerr"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
)

// ChaincodeInvokeRequest contains the parameters for sending a transaction proposal.
type ChaincodeInvokeRequest struct {
	ChaincodeID  string
	Lang         pb.ChaincodeSpec_Type
	TransientMap map[string][]byte
	Fcn          string
	Args         [][]byte
}

// CreateChaincodeInvokeProposal creates a proposal for transaction.
func CreateChaincodeInvokeProposal(txh fab.TransactionHeader, request ChaincodeInvokeRequest) (*fab.TransactionProposal, error) {
	if request.ChaincodeID == "" {
		return nil, sdkerr.NewInvalidArgument("ChaincodeID is required")
	}
	if request.Fcn == "" {
		return nil, sdkerr.NewInvalidArgument("Fcn is required")
	}

	// Add function name to arguments
	argsArray := make([][]byte, len(request.Args)+1)
	argsArray[0] = []byte(request.Fcn)
	for i, arg := range request.Args {
		argsArray[i+1] = arg
	}

	lang := request.Lang
	if lang == pb.ChaincodeSpec_UNDEFINED {
		lang = pb.ChaincodeSpec_GOLANG
	}

	// create invocation spec to target a chaincode with arguments
	ccis := &pb.ChaincodeInvocationSpec{ChaincodeSpec: &pb.ChaincodeSpec{
		Type: lang, ChaincodeId: &pb.ChaincodeID{Name: request.ChaincodeID},
		Input: &pb.ChaincodeInput{Args: argsArray}}}

	proposal, err := createChaincodeProposal(txh, request.ChaincodeID, ccis, request.TransientMap)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create chaincode proposal")
	}

	return &fab.TransactionProposal{
		TxnID:    txh.TransactionID(),
		Proposal: proposal,
	}, nil
}

// CreateTransactionProposal creates an invoke proposal from a transaction request
func CreateTransactionProposal(txh fab.TransactionHeader, request *TransactionProposalRequest) (*fab.TransactionProposal, error) {
	if err := validateInvoke(request.ChaincodeSpec); err != nil {
		return nil, err
	}
	return CreateChaincodeInvokeProposal(txh, invokeRequest(request.ChaincodeSpec))
}

// CreateQueryProposal creates an invoke proposal from a query request
func CreateQueryProposal(txh fab.TransactionHeader, request *QueryProposalRequest) (*fab.TransactionProposal, error) {
	if err := validateInvoke(request.ChaincodeSpec); err != nil {
		return nil, err
	}
	return CreateChaincodeInvokeProposal(txh, invokeRequest(request.ChaincodeSpec))
}

func invokeRequest(spec ChaincodeSpec) ChaincodeInvokeRequest {
	return ChaincodeInvokeRequest{
		ChaincodeID:  spec.Name,
		Lang:         spec.Lang,
		TransientMap: spec.TransientMap,
		Fcn:          spec.Fcn,
		Args:         spec.Args,
	}
}

func validateInvoke(spec ChaincodeSpec) error {
	if spec.Name == "" {
		return sdkerr.NewInvalidArgument("Missing chaincode name")
	}
	if spec.Fcn == "" {
		return sdkerr.NewInvalidArgument("Missing chaincode function name")
	}
	return nil
}

// SignProposal creates a SignedProposal signed by signer
func SignProposal(signer fab.SigningIdentity, proposal *pb.Proposal) (*pb.SignedProposal, error) {
	if signer == nil {
		return nil, errors.New("signing identity is nil")
	}

	proposalBytes, err := proto.Marshal(proposal)
	if err != nil {
		return nil, errors.Wrap(err, "mashal proposal failed")
	}

	signature, err := signer.Sign(proposalBytes)
	if err != nil {
		return nil, errors.WithMessage(err, "sign failed")
	}

	return &pb.SignedProposal{ProposalBytes: proposalBytes, Signature: signature}, nil
}

func createChaincodeProposal(txh fab.TransactionHeader, chaincodeID string, ccis *pb.ChaincodeInvocationSpec, transientMap map[string][]byte) (*pb.Proposal, error) {
	channelHeader, err := CreateChannelHeader(common.HeaderType_ENDORSER_TRANSACTION, ChannelHeaderOpts{
		TxnHeader:   txh,
		ChaincodeID: chaincodeID,
	})
	if err != nil {
		return nil, err
	}

	header, err := createHeader(txh, channelHeader)
	if err != nil {
		return nil, err
	}
	headerBytes, err := proto.Marshal(header)
	if err != nil {
		return nil, errors.Wrap(err, "marshal of header failed")
	}

	ccisBytes, err := proto.Marshal(ccis)
	if err != nil {
		return nil, errors.Wrap(err, "marshal of chaincode invocation spec failed")
	}
	payloadBytes, err := proto.Marshal(&pb.ChaincodeProposalPayload{Input: ccisBytes, TransientMap: transientMap})
	if err != nil {
		return nil, errors.Wrap(err, "marshal of chaincode proposal payload failed")
	}

	return &pb.Proposal{Header: headerBytes, Payload: payloadBytes}, nil
}
