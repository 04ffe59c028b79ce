/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package channel

import (
	reqContext "context"
	"time"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/sdkerr"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/events/seek"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/events/tracker"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/peer"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/txn"
	"github.com/hyperledger/fabric-protos-go/common"
)

// CreateTransaction assembles a transaction from endorsed proposal responses
func (c *Channel) CreateTransaction(request fab.TransactionRequest) (*fab.Transaction, error) {
	tx, err := txn.New(request)
	if err != nil {
		return nil, sdkerr.WrapTransaction(err, "Creating transaction on channel %s failed", c.name)
	}
	return tx, nil
}

// SendTransaction sends the endorsed transaction to the orderers of the
// channel. It never fails synchronously: every failure, including a shut
// down channel, rejects the returned future. The future resolves with the
// commit event of the transaction, or with a nil event once an orderer
// accepted it when the channel has no event sources.
func (c *Channel) SendTransaction(ctx reqContext.Context, request fab.TransactionRequest, opts ...RequestOption) *tracker.Future {
	var txID string
	if request.Proposal != nil {
		txID = string(request.Proposal.TxnID)
	}

	if err := c.checkReady(); err != nil {
		return tracker.NewFailedFuture(txID, err)
	}
	orderers := c.ordererList()
	if len(orderers) == 0 {
		return tracker.NewFailedFuture(txID, sdkerr.NewInvalidArgument("Channel %s has no orderers.", c.name))
	}
	if request.Proposal == nil {
		return tracker.NewFailedFuture(txID, sdkerr.NewInvalidArgument("Transaction proposal is null."))
	}
	if len(request.ProposalResponses) == 0 {
		return tracker.NewFailedFuture(txID, sdkerr.NewInvalidArgument("Collection of proposal responses is empty."))
	}

	tx, err := c.CreateTransaction(request)
	if err != nil {
		return tracker.NewFailedFuture(txID, err)
	}

	o := c.requestOptions(opts)
	future, err := c.tracker.Register(txID, o.commitTimeout)
	if err != nil {
		if c.shutdown.Load() {
			return tracker.NewFailedFuture(txID, c.shutdownError())
		}
		return tracker.NewFailedFuture(txID, sdkerr.NewInvalidArgument("%s", err))
	}

	go c.broadcast(ctx, tx, future, orderers)
	return future
}

func (c *Channel) broadcast(ctx reqContext.Context, tx *fab.Transaction, future *tracker.Future, orderers []fab.Orderer) {
	txID := future.TxID()
	start := time.Now()

	reqCtx, cancel := reqContext.WithTimeout(ctx, c.opts.ordererTimeout)
	resp, err := txn.Send(reqCtx, c.signer(), tx, orderers)
	cancel()

	if err != nil {
		c.metrics.TransactionsFailed.With("channel", c.name).Add(1)
		logger.Warnf("Transaction %s was not accepted by any orderer of channel %s: %s", txID, c.name, err)
		c.tracker.Fail(txID, sdkerr.WrapTransaction(err, "Sending transaction %s to orderers of channel %s failed", txID, c.name))
		return
	}

	c.metrics.TransactionsBroadcast.With("channel", c.name).Add(1)
	logger.Debugf("Transaction %s accepted by orderer %s", txID, resp.Orderer)

	if len(c.EventSources()) == 0 {
		logger.Debugf("Channel %s has no event sources, not waiting for commit of %s", c.name, txID)
		c.tracker.Release(txID)
		return
	}

	<-future.Done()
	if _, err := future.Get(reqContext.Background()); sdkerr.IsTimeout(err) {
		c.metrics.CommitTimeouts.With("channel", c.name).Add(1)
		return
	}
	c.metrics.CommitDuration.With("channel", c.name).Observe(time.Since(start).Seconds())
}

// JoinPeer fetches the genesis block of the channel from an orderer and
// asks p to join the channel with it. The peer becomes a member only after
// it accepted the join proposal.
func (c *Channel) JoinPeer(ctx reqContext.Context, p *peer.Peer, opts ...PeerOption) error {
	if c.shutdown.Load() {
		return sdkerr.NewProposal("Channel %s has been shutdown.", c.name)
	}
	if p == nil {
		return sdkerr.NewProposal("Peer value is null.")
	}
	orderers := c.ordererList()
	if len(orderers) == 0 {
		return sdkerr.NewProposal("Channel %s does not have any orderers associated with it.", c.name)
	}
	if owner := p.ChannelName(); owner != "" && owner != c.name {
		return sdkerr.NewProposal("Can not add peer %s to channel %s because it already belongs to channel %s", p.Name(), c.name, owner)
	}

	logger.Debugf("Joining peer %s to channel %s", p.Name(), c.name)

	reqCtx, cancel := reqContext.WithTimeout(ctx, c.opts.ordererTimeout)
	genesis, err := txn.RetrieveBlock(reqCtx, c.signer(), c.name, seek.InfoBlock(0), orderers)
	cancel()
	if err != nil {
		return sdkerr.WrapProposal(err, "Retrieving genesis block of channel %s failed", c.name)
	}

	request, err := txn.JoinChannelRequest(genesis)
	if err != nil {
		return sdkerr.WrapProposal(err, "Creating join request for channel %s failed", c.name)
	}
	txh, err := c.newHeader(fab.SystemChannel)
	if err != nil {
		return err
	}
	proposal, err := txn.CreateChaincodeInvokeProposal(txh, request)
	if err != nil {
		return sdkerr.WrapProposal(err, "Creating join proposal for channel %s failed", c.name)
	}

	responses, err := c.sendProposal(ctx, kindJoin, proposal, []fab.Endorser{p}, c.requestOptions(nil))
	if err != nil {
		return err
	}

	r := responses.Results[0]
	if r.Err != nil {
		return sdkerr.WrapProposal(r.Err, "Join peer %s to channel %s failed", p.Name(), c.name)
	}
	if r.Response == nil || r.Response.Status != int32(common.Status_SUCCESS) {
		return sdkerr.NewProposal("Join peer %s to channel %s failed: unexpected response %v", p.Name(), c.name, r.Response)
	}

	logger.Infof("Peer %s joined channel %s", p.Name(), c.name)
	return c.AddPeer(p, opts...)
}
