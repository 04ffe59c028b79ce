/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mocks

import (
	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-protos-go/common"
	"github.com/hyperledger/fabric-protos-go/msp"
	pb "github.com/hyperledger/fabric-protos-go/peer"
)

// NewProposalResponse returns a proposal response with the given status
// and message as returned by the given endorser
func NewProposalResponse(endorser string, status int32, message string, payload []byte) *fab.TransactionProposalResponse {
	return &fab.TransactionProposalResponse{
		Endorser:        endorser,
		Status:          status,
		ChaincodeStatus: status,
		ProposalResponse: &pb.ProposalResponse{
			Version:     1,
			Response:    &pb.Response{Status: status, Message: message, Payload: payload},
			Payload:     []byte("proposal-response-payload"),
			Endorsement: &pb.Endorsement{Endorser: []byte(endorser), Signature: []byte("signature")},
		},
	}
}

// NewSuccessResponse returns a 200 proposal response from the given endorser
func NewSuccessResponse(endorser string, payload []byte) *fab.TransactionProposalResponse {
	return NewProposalResponse(endorser, int32(common.Status_SUCCESS), "", payload)
}

// NewFilteredBlock returns a filtered block with the given transactions
func NewFilteredBlock(channelID string, number uint64, filteredTx ...*pb.FilteredTransaction) *pb.FilteredBlock {
	return &pb.FilteredBlock{
		ChannelId:            channelID,
		Number:               number,
		FilteredTransactions: filteredTx,
	}
}

// NewFilteredTx returns a filtered endorser transaction
func NewFilteredTx(txID string, txValidationCode pb.TxValidationCode) *pb.FilteredTransaction {
	return &pb.FilteredTransaction{
		Txid:             txID,
		TxValidationCode: txValidationCode,
		Type:             common.HeaderType_ENDORSER_TRANSACTION,
	}
}

// NewBlock returns a block with the given number carrying one opaque envelope
func NewBlock(channelID string, number uint64) *common.Block {
	chdr, _ := proto.Marshal(&common.ChannelHeader{Type: int32(common.HeaderType_MESSAGE), ChannelId: channelID})
	payload, _ := proto.Marshal(&common.Payload{Header: &common.Header{ChannelHeader: chdr}, Data: []byte("test")})
	env, _ := proto.Marshal(&common.Envelope{Payload: payload})
	return &common.Block{
		Header:   &common.BlockHeader{Number: number},
		Data:     &common.BlockData{Data: [][]byte{env}},
		Metadata: &common.BlockMetadata{Metadata: [][]byte{{}, {}, {}, {}, {}}},
	}
}

// NewConfigBlock returns a config block of the channel whose application
// group holds one MSP per entry of rootCerts (MSP ID -> PEM root certs).
func NewConfigBlock(channelID string, number uint64, rootCerts map[string][][]byte) *common.Block {
	orgs := make(map[string]*common.ConfigGroup)
	for mspID, certs := range rootCerts {
		fabricMSP, _ := proto.Marshal(&msp.FabricMSPConfig{Name: mspID, RootCerts: certs})
		mspConfig, _ := proto.Marshal(&msp.MSPConfig{Type: 0, Config: fabricMSP})
		orgs[mspID] = &common.ConfigGroup{
			Values: map[string]*common.ConfigValue{
				"MSP": {Value: mspConfig},
			},
		}
	}

	cfgEnv, _ := proto.Marshal(&common.ConfigEnvelope{
		Config: &common.Config{
			Sequence: number,
			ChannelGroup: &common.ConfigGroup{
				Groups: map[string]*common.ConfigGroup{
					"Application": {Groups: orgs},
				},
			},
		},
	})
	chdr, _ := proto.Marshal(&common.ChannelHeader{Type: int32(common.HeaderType_CONFIG), ChannelId: channelID})
	payload, _ := proto.Marshal(&common.Payload{Header: &common.Header{ChannelHeader: chdr}, Data: cfgEnv})
	env, _ := proto.Marshal(&common.Envelope{Payload: payload})

	return &common.Block{
		Header:   &common.BlockHeader{Number: number},
		Data:     &common.BlockData{Data: [][]byte{env}},
		Metadata: &common.BlockMetadata{Metadata: [][]byte{{}, {}, {}, {}, {}}},
	}
}

// SetLastConfig records index as the last config block in the signatures
// metadata of block, the way v2 orderers write it
func SetLastConfig(block *common.Block, index uint64) *common.Block {
	obm, _ := proto.Marshal(&common.OrdererBlockMetadata{LastConfig: &common.LastConfig{Index: index}})
	metadata, _ := proto.Marshal(&common.Metadata{Value: obm})
	block.Metadata.Metadata[common.BlockMetadataIndex_SIGNATURES] = metadata
	return block
}
