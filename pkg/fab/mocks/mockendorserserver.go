/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mocks

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/logging"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

var logger = logging.NewLogger("fabsdk/fab/mocks")

// MockEndorserServer mock endorser server to process endorsement proposals
type MockEndorserServer struct {
	Creds         credentials.TransportCredentials
	ProposalError error
	// Status overrides the response status when ProposalError is not set
	Status          int32
	Message         string
	ChaincodeStatus int32
	wg              sync.WaitGroup
	srv             *grpc.Server
	mtx             sync.Mutex
	received        int
}

// ProcessProposal mock implementation that returns success if error is not set
// error if it is
func (m *MockEndorserServer) ProcessProposal(ctx context.Context, proposal *pb.SignedProposal) (*pb.ProposalResponse, error) {
	m.mtx.Lock()
	m.received++
	m.mtx.Unlock()

	if m.ProposalError != nil {
		return nil, m.ProposalError
	}

	status := m.Status
	if status == 0 {
		status = 200
	}
	return &pb.ProposalResponse{
		Response:    &pb.Response{Status: status, Message: m.Message},
		Endorsement: &pb.Endorsement{Endorser: []byte("endorser"), Signature: []byte("signature")},
		Payload:     m.createProposalResponsePayload(),
	}, nil
}

// Received returns the number of proposals processed
func (m *MockEndorserServer) Received() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.received
}

func (m *MockEndorserServer) createProposalResponsePayload() []byte {
	ccStatus := m.ChaincodeStatus
	if ccStatus == 0 {
		ccStatus = 200
	}
	ccAction, err := proto.Marshal(&pb.ChaincodeAction{
		Results:  []byte("results"),
		Response: &pb.Response{Status: ccStatus},
	})
	if err != nil {
		return nil
	}
	prpBytes, err := proto.Marshal(&pb.ProposalResponsePayload{ProposalHash: []byte("hash"), Extension: ccAction})
	if err != nil {
		return nil
	}
	return prpBytes
}

// Start the mock endorser server
func (m *MockEndorserServer) Start(address string) string {
	if m.srv != nil {
		panic("MockEndorserServer already started")
	}

	// pass in TLS creds if present
	if m.Creds != nil {
		m.srv = grpc.NewServer(grpc.Creds(m.Creds))
	} else {
		m.srv = grpc.NewServer()
	}

	lis, err := net.Listen("tcp", address)
	if err != nil {
		panic(fmt.Sprintf("Error starting EndorserServer %s", err))
	}
	addr := lis.Addr().String()

	logger.Debugf("Starting MockEndorserServer [%s]", addr)
	pb.RegisterEndorserServer(m.srv, m)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.srv.Serve(lis); err != nil {
			logger.Debugf("MockEndorserServer failed [%s]", err)
		}
	}()

	return addr
}

// Stop the mock endorser server and wait for completion.
func (m *MockEndorserServer) Stop() {
	if m.srv == nil {
		panic("MockEndorserServer not started")
	}

	m.srv.Stop()
	m.wg.Wait()
	m.srv = nil
}
