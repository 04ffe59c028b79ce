/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package peer

import (
	reqContext "context"
	"sync"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/sdkerr"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/comm"
	"github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
)

// peerEndorser enables access to a GRPC-based endorser for running transaction proposal simulations
type peerEndorser struct {
	endpoint comm.EndpointConfig
	target   string

	mtx    sync.Mutex
	conn   *grpc.ClientConn
	closed bool
}

func newPeerEndorser(endpoint comm.EndpointConfig) *peerEndorser {
	return &peerEndorser{endpoint: endpoint, target: comm.ToAddress(endpoint.URL)}
}

// ProcessTransactionProposal sends the transaction proposal to a peer and returns the response.
// A response with an error status is returned together with the error describing it.
func (p *peerEndorser) ProcessTransactionProposal(ctx reqContext.Context, request fab.ProcessProposalRequest) (*fab.TransactionProposalResponse, error) {
	logger.Debugf("Processing proposal using endorser: %s", p.target)

	proposalResponse, err := p.sendProposal(ctx, request)
	if err != nil {
		return nil, errors.WithMessagef(err, "Transaction processing for endorser [%s]", p.target)
	}

	chaincodeStatus, err := getChaincodeResponseStatus(proposalResponse)
	if err != nil {
		return nil, errors.WithMessage(err, "chaincode response status parsing failed")
	}

	tpr := &fab.TransactionProposalResponse{
		ProposalResponse: proposalResponse,
		Endorser:         p.target,
		ChaincodeStatus:  chaincodeStatus,
		Status:           proposalResponse.GetResponse().GetStatus(),
	}

	if isErrorStatus(tpr.Status) {
		return tpr, status.NewFromProposalResponse(proposalResponse, p.target)
	}
	return tpr, nil
}

// Active returns false once the connection is closed or shut down
func (p *peerEndorser) Active() bool {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.closed {
		return false
	}
	return p.conn == nil || p.conn.GetState() != connectivity.Shutdown
}

// Close closes the connection to the peer
func (p *peerEndorser) Close() {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.closed = true
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			logger.Debugf("unable to close connection [%s]", err)
		}
		p.conn = nil
	}
}

func (p *peerEndorser) connection(ctx reqContext.Context) (*grpc.ClientConn, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.closed {
		return nil, status.New(status.EndorserClientStatus, status.ConnectionFailed.ToInt32(), "endorser connection is closed", []interface{}{p.target})
	}
	if p.conn != nil && p.conn.GetState() != connectivity.Shutdown {
		return p.conn, nil
	}

	conn, err := comm.Dial(ctx, p.endpoint, status.EndorserClientStatus)
	if err != nil {
		return nil, err
	}
	p.conn = conn
	return conn, nil
}

func (p *peerEndorser) sendProposal(ctx reqContext.Context, proposal fab.ProcessProposalRequest) (*pb.ProposalResponse, error) {
	conn, err := p.connection(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := pb.NewEndorserClient(conn).ProcessProposal(ctx, proposal.SignedProposal)
	if err != nil {
		logger.Errorf("process proposal failed [%s]", err)
		return nil, comm.TranslateError(err)
	}
	if resp == nil || resp.Response == nil {
		return nil, sdkerr.NewProposal("endorser %s returned an empty response", p.target)
	}
	return resp, nil
}

func isErrorStatus(code int32) bool {
	return code < int32(common.Status_SUCCESS) || code >= int32(common.Status_BAD_REQUEST)
}

// getChaincodeResponseStatus gets the actual response status from response.Payload.extension.Response.status, as fabric always returns actual 200
func getChaincodeResponseStatus(response *pb.ProposalResponse) (int32, error) {
	if response.Payload != nil {
		payload := &pb.ProposalResponsePayload{}
		if err := proto.Unmarshal(response.Payload, payload); err != nil {
			return 0, errors.Wrap(err, "unmarshal of proposal response payload failed")
		}

		extension := &pb.ChaincodeAction{}
		if err := proto.Unmarshal(payload.Extension, extension); err != nil {
			return 0, errors.Wrap(err, "unmarshal of chaincode action failed")
		}

		if extension.Response != nil {
			return extension.Response.Status, nil
		}
	}
	return response.Response.Status, nil
}
