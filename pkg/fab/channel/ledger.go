/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package channel

import (
	reqContext "context"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/multi"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/sdkerr"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/peer"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/txn"
	"github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
)

// QueryBlockchainInfo returns the height and current hashes of the ledger
func (c *Channel) QueryBlockchainInfo(ctx reqContext.Context, opts ...RequestOption) (*common.BlockchainInfo, error) {
	if err := c.checkReady(); err != nil {
		return nil, err
	}
	payload, err := c.queryLedger(ctx, txn.ChainInfoRequest(c.name), opts)
	if err != nil {
		return nil, err
	}
	info := &common.BlockchainInfo{}
	if err := proto.Unmarshal(payload, info); err != nil {
		return nil, errors.Wrap(err, "unmarshal of blockchain info failed")
	}
	return info, nil
}

// QueryBlockByHash returns the block with the given header hash
func (c *Channel) QueryBlockByHash(ctx reqContext.Context, blockHash []byte, opts ...RequestOption) (*common.Block, error) {
	if err := c.checkReady(); err != nil {
		return nil, err
	}
	if blockHash == nil {
		return nil, sdkerr.NewInvalidArgument("blockHash parameter is null.")
	}
	return c.queryBlock(ctx, txn.BlockByHashRequest(c.name, blockHash), opts)
}

// QueryBlockByNumber returns the block with the given number
func (c *Channel) QueryBlockByNumber(ctx reqContext.Context, blockNumber uint64, opts ...RequestOption) (*common.Block, error) {
	if err := c.checkReady(); err != nil {
		return nil, err
	}
	return c.queryBlock(ctx, txn.BlockByNumberRequest(c.name, blockNumber), opts)
}

// QueryBlockByTransactionID returns the block containing the transaction
func (c *Channel) QueryBlockByTransactionID(ctx reqContext.Context, txID string, opts ...RequestOption) (*common.Block, error) {
	if err := c.checkReady(); err != nil {
		return nil, err
	}
	if txID == "" {
		return nil, sdkerr.NewInvalidArgument("TxID parameter is null.")
	}
	return c.queryBlock(ctx, txn.BlockByTxIDRequest(c.name, txID), opts)
}

// QueryTransactionByID returns the processed transaction with its
// validation code
func (c *Channel) QueryTransactionByID(ctx reqContext.Context, txID string, opts ...RequestOption) (*pb.ProcessedTransaction, error) {
	if err := c.checkReady(); err != nil {
		return nil, err
	}
	if txID == "" {
		return nil, sdkerr.NewInvalidArgument("TxID parameter is null.")
	}
	payload, err := c.queryLedger(ctx, txn.TransactionByIDRequest(c.name, txID), opts)
	if err != nil {
		return nil, err
	}
	tx := &pb.ProcessedTransaction{}
	if err := proto.Unmarshal(payload, tx); err != nil {
		return nil, errors.Wrap(err, "unmarshal of processed transaction failed")
	}
	return tx, nil
}

// QueryInstantiatedChaincodes lists the chaincodes instantiated on the channel
func (c *Channel) QueryInstantiatedChaincodes(ctx reqContext.Context, opts ...RequestOption) (*pb.ChaincodeQueryResponse, error) {
	if err := c.checkReady(); err != nil {
		return nil, err
	}
	payload, err := c.queryLedger(ctx, txn.InstantiatedChaincodesRequest(), opts)
	if err != nil {
		return nil, err
	}
	response := &pb.ChaincodeQueryResponse{}
	if err := proto.Unmarshal(payload, response); err != nil {
		return nil, errors.Wrap(err, "unmarshal of chaincode query response failed")
	}
	return response, nil
}

func (c *Channel) queryBlock(ctx reqContext.Context, request txn.ChaincodeInvokeRequest, opts []RequestOption) (*common.Block, error) {
	payload, err := c.queryLedger(ctx, request, opts)
	if err != nil {
		return nil, err
	}
	block := &common.Block{}
	if err := proto.Unmarshal(payload, block); err != nil {
		return nil, errors.Wrap(err, "unmarshal of block failed")
	}
	return block, nil
}

// queryLedger asks the targets one at a time, in random order unless the
// target is explicit, and returns the first successful payload
func (c *Channel) queryLedger(ctx reqContext.Context, request txn.ChaincodeInvokeRequest, opts []RequestOption) ([]byte, error) {
	o := c.requestOptions(opts)
	targets, err := c.targets(o, peer.LedgerQuery)
	if err != nil {
		return nil, err
	}
	if !o.targetsSet {
		targets = shuffle(targets)
	}

	txh, err := c.newHeader(c.name)
	if err != nil {
		return nil, err
	}
	proposal, err := txn.CreateChaincodeInvokeProposal(txh, request)
	if err != nil {
		return nil, sdkerr.WrapProposal(err, "Creating %s proposal failed", request.Fcn)
	}

	var errs multi.Errors
	for _, target := range targets {
		responses, err := c.sendProposal(ctx, kindLedger, proposal, []fab.Endorser{target}, o)
		if err != nil {
			if sdkerr.IsFatal(err) {
				return nil, err
			}
			errs = append(errs, err)
			continue
		}

		r := responses.Results[0]
		if r.Err != nil {
			errs = append(errs, r.Err)
			continue
		}
		if r.Response.Status != int32(common.Status_SUCCESS) {
			errs = append(errs, errors.Errorf("bad status from %s (%d)", r.Endorser, r.Response.Status))
			continue
		}
		return r.Response.GetResponse().GetPayload(), nil
	}
	return nil, sdkerr.WrapProposal(errs.ToError(), "Ledger query %s on channel %s failed", request.Fcn, c.name)
}
