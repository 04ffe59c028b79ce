/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package txn

import (
	"strconv"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-protos-go/common"
	"github.com/pkg/errors"
)

const (
	cscc            = "cscc"
	csccJoinChannel = "JoinChain"
	csccChannels    = "GetChannels"

	qscc                       = "qscc"
	qsccChainInfo              = "GetChainInfo"
	qsccBlockByNumber          = "GetBlockByNumber"
	qsccBlockByHash            = "GetBlockByHash"
	qsccTransactionByID        = "GetTransactionByID"
	qsccBlockByTxID            = "GetBlockByTxID"
	lsccInstalledChaincodes    = "getinstalledchaincodes"
	lsccInstantiatedChaincodes = "getchaincodes"
)

// JoinChannelRequest asks a peer to join the channel of the genesis block
func JoinChannelRequest(genesisBlock *common.Block) (ChaincodeInvokeRequest, error) {
	genesisBlockBytes, err := proto.Marshal(genesisBlock)
	if err != nil {
		return ChaincodeInvokeRequest{}, errors.Wrap(err, "marshal genesis block failed")
	}

	return ChaincodeInvokeRequest{
		ChaincodeID: cscc,
		Fcn:         csccJoinChannel,
		Args:        [][]byte{genesisBlockBytes},
	}, nil
}

// ChannelsRequest queries the channels a peer has joined
func ChannelsRequest() ChaincodeInvokeRequest {
	return ChaincodeInvokeRequest{
		ChaincodeID: cscc,
		Fcn:         csccChannels,
	}
}

// InstalledChaincodesRequest queries the chaincodes installed on a peer
func InstalledChaincodesRequest() ChaincodeInvokeRequest {
	return ChaincodeInvokeRequest{
		ChaincodeID: lscc,
		Fcn:         lsccInstalledChaincodes,
	}
}

// InstantiatedChaincodesRequest queries the chaincodes instantiated on a channel
func InstantiatedChaincodesRequest() ChaincodeInvokeRequest {
	return ChaincodeInvokeRequest{
		ChaincodeID: lscc,
		Fcn:         lsccInstantiatedChaincodes,
	}
}

// ChainInfoRequest queries the height and current hash of a channel ledger
func ChainInfoRequest(channelID string) ChaincodeInvokeRequest {
	return ChaincodeInvokeRequest{
		ChaincodeID: qscc,
		Fcn:         qsccChainInfo,
		Args:        [][]byte{[]byte(channelID)},
	}
}

// BlockByNumberRequest queries a block by its number
func BlockByNumberRequest(channelID string, blockNumber uint64) ChaincodeInvokeRequest {
	return ChaincodeInvokeRequest{
		ChaincodeID: qscc,
		Fcn:         qsccBlockByNumber,
		Args:        [][]byte{[]byte(channelID), []byte(strconv.FormatUint(blockNumber, 10))},
	}
}

// BlockByHashRequest queries a block by its header hash
func BlockByHashRequest(channelID string, blockHash []byte) ChaincodeInvokeRequest {
	return ChaincodeInvokeRequest{
		ChaincodeID: qscc,
		Fcn:         qsccBlockByHash,
		Args:        [][]byte{[]byte(channelID), blockHash},
	}
}

// TransactionByIDRequest queries a processed transaction by its id
func TransactionByIDRequest(channelID string, txID string) ChaincodeInvokeRequest {
	return ChaincodeInvokeRequest{
		ChaincodeID: qscc,
		Fcn:         qsccTransactionByID,
		Args:        [][]byte{[]byte(channelID), []byte(txID)},
	}
}

// BlockByTxIDRequest queries the block holding a transaction
func BlockByTxIDRequest(channelID string, txID string) ChaincodeInvokeRequest {
	return ChaincodeInvokeRequest{
		ChaincodeID: qscc,
		Fcn:         qsccBlockByTxID,
		Args:        [][]byte{[]byte(channelID), []byte(txID)},
	}
}
