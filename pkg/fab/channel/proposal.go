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
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/peer"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/txn"
)

// proposal kinds used as metric labels
const (
	kindInstall     = "install"
	kindInstantiate = "instantiate"
	kindUpgrade     = "upgrade"
	kindInvoke      = "invoke"
	kindQuery       = "query"
	kindJoin        = "join"
	kindLedger      = "ledger"
)

// ProposalResponses holds a sent proposal and one result per target peer.
// Failed peers are part of Results; nothing is filtered out.
type ProposalResponses struct {
	Proposal *fab.TransactionProposal
	Results  txn.EndorsementResults
}

// TxID returns the transaction ID of the proposal
func (r *ProposalResponses) TxID() fab.TransactionID {
	return r.Proposal.TxnID
}

// TransactionRequest returns the request SendTransaction expects, made of
// the successful responses
func (r *ProposalResponses) TransactionRequest() fab.TransactionRequest {
	return fab.TransactionRequest{
		Proposal:          r.Proposal,
		ProposalResponses: r.Results.Responses(),
	}
}

// SendInstallProposal packages the chaincode and installs it on the
// endorsing peers of the channel, or on the WithTargets peers
func (c *Channel) SendInstallProposal(ctx reqContext.Context, request *txn.InstallProposalRequest, opts ...RequestOption) (*ProposalResponses, error) {
	if err := c.checkReady(); err != nil {
		return nil, err
	}
	if request == nil {
		return nil, sdkerr.NewInvalidArgument("InstallProposalRequest is null")
	}
	o := c.requestOptions(opts)
	targets, err := c.targets(o, peer.EndorsingPeer)
	if err != nil {
		return nil, err
	}

	// install is scoped to the peer, not to the channel
	txh, err := c.newHeader(fab.SystemChannel)
	if err != nil {
		return nil, err
	}
	proposal, err := txn.CreateChaincodeInstallProposal(txh, request)
	if err != nil {
		return nil, proposalError(err, "Creating install proposal for chaincode %s failed", request.Name)
	}
	return c.sendProposal(ctx, kindInstall, proposal, targets, o)
}

// SendInstantiationProposal proposes the instantiation of an installed
// chaincode on the channel
func (c *Channel) SendInstantiationProposal(ctx reqContext.Context, request *txn.InstantiateProposalRequest, opts ...RequestOption) (*ProposalResponses, error) {
	if err := c.checkReady(); err != nil {
		return nil, err
	}
	if request == nil {
		return nil, sdkerr.NewInvalidArgument("InstantiateProposalRequest is null")
	}
	return c.sendDeployProposal(ctx, kindInstantiate, txn.InstantiateChaincode, request, opts)
}

// SendUpgradeProposal proposes an upgrade of an instantiated chaincode
func (c *Channel) SendUpgradeProposal(ctx reqContext.Context, request *txn.UpgradeProposalRequest, opts ...RequestOption) (*ProposalResponses, error) {
	if err := c.checkReady(); err != nil {
		return nil, err
	}
	if request == nil {
		return nil, sdkerr.NewInvalidArgument("Upgradeproposal is null")
	}
	return c.sendDeployProposal(ctx, kindUpgrade, txn.UpgradeChaincode, (*txn.InstantiateProposalRequest)(request), opts)
}

func (c *Channel) sendDeployProposal(ctx reqContext.Context, kind string, deploy txn.ChaincodeDeployType, request *txn.InstantiateProposalRequest, opts []RequestOption) (*ProposalResponses, error) {
	o := c.requestOptions(opts)
	targets, err := c.targets(o, peer.EndorsingPeer)
	if err != nil {
		return nil, err
	}

	txh, err := c.newHeader(c.name)
	if err != nil {
		return nil, err
	}
	proposal, err := txn.CreateChaincodeDeployProposal(txh, deploy, request)
	if err != nil {
		return nil, proposalError(err, "Creating %s proposal for chaincode %s failed", deploy, request.Name)
	}
	return c.sendProposal(ctx, kind, proposal, targets, o)
}

// SendTransactionProposal sends a chaincode invocation to the endorsing
// peers. The responses feed SendTransaction.
func (c *Channel) SendTransactionProposal(ctx reqContext.Context, request *txn.TransactionProposalRequest, opts ...RequestOption) (*ProposalResponses, error) {
	if err := c.checkReady(); err != nil {
		return nil, err
	}
	if request == nil {
		return nil, sdkerr.NewInvalidArgument("TransactionProposalRequest is null")
	}
	o := c.requestOptions(opts)
	targets, err := c.targets(o, peer.EndorsingPeer)
	if err != nil {
		return nil, err
	}

	txh, err := c.newHeader(c.name)
	if err != nil {
		return nil, err
	}
	proposal, err := txn.CreateTransactionProposal(txh, request)
	if err != nil {
		return nil, proposalError(err, "Creating transaction proposal for chaincode %s failed", request.Name)
	}
	return c.sendProposal(ctx, kindInvoke, proposal, targets, o)
}

// QueryByChaincode evaluates a chaincode function on the chaincode query
// peers without producing a transaction
func (c *Channel) QueryByChaincode(ctx reqContext.Context, request *txn.QueryProposalRequest, opts ...RequestOption) (*ProposalResponses, error) {
	if err := c.checkReady(); err != nil {
		return nil, err
	}
	if request == nil {
		return nil, sdkerr.NewInvalidArgument("QueryByChaincodeRequest is null")
	}
	o := c.requestOptions(opts)
	targets, err := c.targets(o, peer.ChaincodeQuery)
	if err != nil {
		return nil, err
	}

	txh, err := c.newHeader(c.name)
	if err != nil {
		return nil, err
	}
	proposal, err := txn.CreateQueryProposal(txh, request)
	if err != nil {
		return nil, proposalError(err, "Creating query proposal for chaincode %s failed", request.Name)
	}
	return c.sendProposal(ctx, kindQuery, proposal, targets, o)
}

func (c *Channel) newHeader(channelID string) (*txn.TransactionHeader, error) {
	txh, err := txn.NewHeader(c.signer(), channelID)
	if err != nil {
		return nil, sdkerr.WrapProposal(err, "Creating transaction header for channel %s failed", c.name)
	}
	return txh, nil
}

func (c *Channel) sendProposal(ctx reqContext.Context, kind string, proposal *fab.TransactionProposal, targets []fab.Endorser, o requestOptions) (*ProposalResponses, error) {
	logger.Debugf("Sending %s proposal %s on channel %s to %d peers", kind, proposal.TxnID, c.name, len(targets))

	start := time.Now()
	results, err := txn.SendProposal(ctx, c.signer(), proposal, targets, txn.WithResponseTimeout(o.timeout))
	c.metrics.EndorsementDuration.With("channel", c.name, "kind", kind).Observe(time.Since(start).Seconds())
	c.metrics.ProposalsSent.With("channel", c.name, "kind", kind).Add(float64(len(results)))
	if failed := len(results.Failed()); failed > 0 {
		c.metrics.ProposalsFailed.With("channel", c.name, "kind", kind).Add(float64(failed))
	}
	if err != nil {
		if sdkerr.IsFatal(err) {
			return nil, err
		}
		return nil, sdkerr.WrapProposal(err, "Sending %s proposal on channel %s failed", kind, c.name)
	}

	for _, r := range results.Failed() {
		logger.Debugf("Peer %s failed %s proposal %s: %s", r.Endorser, kind, proposal.TxnID, r.Err)
	}
	return &ProposalResponses{Proposal: proposal, Results: results}, nil
}

// proposalError keeps argument errors as they are
func proposalError(err error, format string, args ...interface{}) error {
	if sdkerr.IsInvalidArgument(err) {
		return err
	}
	return sdkerr.WrapProposal(err, format, args...)
}
