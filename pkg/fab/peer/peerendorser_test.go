/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package peer

import (
	"context"
	"testing"
	"time"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/comm"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/mocks"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
)

const testAddress = "127.0.0.1:0"

func startEndorserServer(t *testing.T, srv *mocks.MockEndorserServer) *peerEndorser {
	addr := srv.Start(testAddress)
	t.Cleanup(srv.Stop)

	endorser := newPeerEndorser(comm.EndpointConfig{URL: "grpc://" + addr, DialTimeout: 2 * time.Second})
	t.Cleanup(endorser.Close)
	return endorser
}

func testProposal() fab.ProcessProposalRequest {
	return fab.ProcessProposalRequest{SignedProposal: &pb.SignedProposal{ProposalBytes: []byte("proposal")}}
}

// TestProcessProposalGoodDial validates that a proposal reaches the remote endorser
func TestProcessProposalGoodDial(t *testing.T) {
	srv := &mocks.MockEndorserServer{ChaincodeStatus: 201}
	endorser := startEndorserServer(t, srv)

	tpr, err := endorser.ProcessTransactionProposal(context.Background(), testProposal())
	if err != nil {
		t.Fatalf("Process proposal failed (%s)", err)
	}
	assert.EqualValues(t, 200, tpr.Status)
	assert.EqualValues(t, 201, tpr.ChaincodeStatus)
	assert.Equal(t, endorser.target, tpr.Endorser)
	assert.Equal(t, 1, srv.Received())
	assert.True(t, endorser.Active())

	// the connection is reused
	_, err = endorser.ProcessTransactionProposal(context.Background(), testProposal())
	require.NoError(t, err)
	assert.Equal(t, 2, srv.Received())
}

func TestProcessProposalErrorStatus(t *testing.T) {
	srv := &mocks.MockEndorserServer{Status: 500, Message: "chaincode error"}
	endorser := startEndorserServer(t, srv)

	tpr, err := endorser.ProcessTransactionProposal(context.Background(), testProposal())
	require.Error(t, err)
	require.NotNil(t, tpr, "response is returned together with the error")
	assert.EqualValues(t, 500, tpr.Status)

	s, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, status.EndorserServerStatus, s.Group)
	assert.EqualValues(t, 500, s.Code)
	assert.Equal(t, "chaincode error", s.Message)
}

func TestProcessProposalGRPCError(t *testing.T) {
	srv := &mocks.MockEndorserServer{ProposalError: grpcstatus.New(codes.PermissionDenied, "access denied").Err()}
	endorser := startEndorserServer(t, srv)

	tpr, err := endorser.ProcessTransactionProposal(context.Background(), testProposal())
	require.Error(t, err)
	assert.Nil(t, tpr)
	assert.Contains(t, err.Error(), "Transaction processing for endorser")

	s, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, status.GRPCTransportStatus, s.Group)
	assert.EqualValues(t, codes.PermissionDenied, s.Code)
}

func TestProcessProposalBadDial(t *testing.T) {
	endorser := newPeerEndorser(comm.EndpointConfig{URL: "grpc://127.0.0.1:0", DialTimeout: 100 * time.Millisecond})
	defer endorser.Close()

	_, err := endorser.ProcessTransactionProposal(context.Background(), testProposal())
	require.Error(t, err)

	s, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, status.EndorserClientStatus, s.Group)
	assert.EqualValues(t, status.ConnectionFailed, s.Code)
}

func TestProcessProposalAfterClose(t *testing.T) {
	srv := &mocks.MockEndorserServer{}
	endorser := startEndorserServer(t, srv)

	endorser.Close()
	assert.False(t, endorser.Active())

	_, err := endorser.ProcessTransactionProposal(context.Background(), testProposal())
	require.Error(t, err)
	assert.Equal(t, 0, srv.Received())
}

func TestChaincodeStatusFromResponse(t *testing.T) {
	code, err := getChaincodeResponseStatus(&pb.ProposalResponse{Response: &pb.Response{Status: 200}})
	require.NoError(t, err)
	assert.EqualValues(t, 200, code)

	_, err = getChaincodeResponseStatus(&pb.ProposalResponse{Response: &pb.Response{Status: 200}, Payload: []byte("invalid")})
	assert.Error(t, err)
}
