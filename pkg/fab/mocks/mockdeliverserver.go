/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mocks

import (
	"fmt"
	"net"
	"sync"

	"github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// MockDeliverServer is a peer deliver service streaming filtered blocks
// pushed to FilteredBlocks.
type MockDeliverServer struct {
	FilteredBlocks chan *pb.FilteredBlock
	// DisconnectError ends every stream with this error right after the seek
	DisconnectError error

	srv *grpc.Server
	wg  sync.WaitGroup
}

// NewMockDeliverServer returns a deliver server with a buffered block channel
func NewMockDeliverServer() *MockDeliverServer {
	return &MockDeliverServer{FilteredBlocks: make(chan *pb.FilteredBlock, 100)}
}

// Deliver is not served by the mock
func (m *MockDeliverServer) Deliver(server pb.Deliver_DeliverServer) error {
	return status.Error(codes.Unimplemented, "Deliver is not supported")
}

// DeliverWithPrivateData is not served by the mock
func (m *MockDeliverServer) DeliverWithPrivateData(server pb.Deliver_DeliverWithPrivateDataServer) error {
	return status.Error(codes.Unimplemented, "DeliverWithPrivateData is not supported")
}

// DeliverFiltered streams the pushed filtered blocks until the client goes away
func (m *MockDeliverServer) DeliverFiltered(server pb.Deliver_DeliverFilteredServer) error {
	if _, err := server.Recv(); err != nil {
		return err
	}
	if m.DisconnectError != nil {
		return m.DisconnectError
	}

	if err := server.Send(&pb.DeliverResponse{Type: &pb.DeliverResponse_Status{Status: common.Status_SUCCESS}}); err != nil {
		return err
	}
	for {
		select {
		case <-server.Context().Done():
			return nil
		case fb := <-m.FilteredBlocks:
			if err := server.Send(&pb.DeliverResponse{Type: &pb.DeliverResponse_FilteredBlock{FilteredBlock: fb}}); err != nil {
				return err
			}
		}
	}
}

// Start the mock deliver server
func (m *MockDeliverServer) Start(address string) string {
	if m.srv != nil {
		panic("MockDeliverServer already started")
	}
	m.srv = grpc.NewServer()

	lis, err := net.Listen("tcp", address)
	if err != nil {
		panic(fmt.Sprintf("Error starting DeliverServer %s", err))
	}
	addr := lis.Addr().String()

	logger.Debugf("Starting MockDeliverServer [%s]", addr)
	pb.RegisterDeliverServer(m.srv, m)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.srv.Serve(lis); err != nil {
			logger.Debugf("MockDeliverServer failed [%s]", err)
		}
	}()

	return addr
}

// Stop the mock deliver server and wait for completion.
func (m *MockDeliverServer) Stop() {
	if m.srv == nil {
		panic("MockDeliverServer not started")
	}

	m.srv.Stop()
	m.wg.Wait()
	m.srv = nil
}
