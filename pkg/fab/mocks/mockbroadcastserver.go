/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mocks

import (
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-protos-go/common"
	po "github.com/hyperledger/fabric-protos-go/orderer"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

var broadcastResponseSuccess = &po.BroadcastResponse{Status: common.Status_SUCCESS}
var broadcastResponseError = &po.BroadcastResponse{Status: common.Status_INTERNAL_SERVER_ERROR, Info: "internal error"}

// MockBroadcastServer mock orderer serving broadcast and deliver
type MockBroadcastServer struct {
	DeliverError                 error
	BroadcastError               error
	Creds                        credentials.TransportCredentials
	BroadcastInternalServerError bool
	// Blocks are sent in order to every deliver request
	Blocks []*common.Block
	// FilteredDeliveries, when set, receives a VALID filtered block for every
	// broadcast transaction
	FilteredDeliveries chan *pb.FilteredBlock

	srv    *grpc.Server
	wg     sync.WaitGroup
	mtx    sync.Mutex
	blkNum uint64
}

// Broadcast mock broadcast
func (m *MockBroadcastServer) Broadcast(server po.AtomicBroadcast_BroadcastServer) error {
	for {
		env, err := server.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if m.BroadcastError != nil {
			return m.BroadcastError
		}
		if m.BroadcastInternalServerError {
			if err := server.Send(broadcastResponseError); err != nil {
				return err
			}
			continue
		}
		if err := server.Send(broadcastResponseSuccess); err != nil {
			return err
		}
		if err := m.mockBlockDelivery(env.Payload); err != nil {
			return err
		}
	}
}

func (m *MockBroadcastServer) mockBlockDelivery(payload []byte) error {
	if m.FilteredDeliveries == nil {
		return nil
	}
	pl := &common.Payload{}
	if err := proto.Unmarshal(payload, pl); err != nil {
		return err
	}
	// if payload is empty, then no need to broadcast to block DeliveryServer
	if pl.Header == nil {
		return nil
	}
	chdr := &common.ChannelHeader{}
	if err := proto.Unmarshal(pl.Header.ChannelHeader, chdr); err != nil {
		return err
	}

	m.mtx.Lock()
	m.blkNum++
	blkNum := m.blkNum
	m.mtx.Unlock()

	m.FilteredDeliveries <- NewFilteredBlock(chdr.ChannelId, blkNum, NewFilteredTx(chdr.TxId, pb.TxValidationCode_VALID))
	return nil
}

// Deliver mock deliver
func (m *MockBroadcastServer) Deliver(server po.AtomicBroadcast_DeliverServer) error {
	if _, err := server.Recv(); err != nil {
		return err
	}
	if m.DeliverError != nil {
		return m.DeliverError
	}

	for _, b := range m.Blocks {
		if err := server.Send(&po.DeliverResponse{Type: &po.DeliverResponse_Block{Block: b}}); err != nil {
			return err
		}
	}
	return server.Send(&po.DeliverResponse{Type: &po.DeliverResponse_Status{Status: common.Status_SUCCESS}})
}

// Start the mock broadcast server
func (m *MockBroadcastServer) Start(address string) string {
	if m.srv != nil {
		panic("MockBroadcastServer already started")
	}

	// pass in TLS creds if present
	if m.Creds != nil {
		m.srv = grpc.NewServer(grpc.Creds(m.Creds))
	} else {
		m.srv = grpc.NewServer()
	}

	lis, err := net.Listen("tcp", address)
	if err != nil {
		panic(fmt.Sprintf("Error starting BroadcastServer %s", err))
	}
	addr := lis.Addr().String()

	logger.Debugf("Starting MockBroadcastServer [%s]", addr)
	po.RegisterAtomicBroadcastServer(m.srv, m)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.srv.Serve(lis); err != nil {
			logger.Debugf("MockBroadcastServer failed [%s]", err)
		}
	}()

	return addr
}

// Stop the mock broadcast server and wait for completion.
func (m *MockBroadcastServer) Stop() {
	if m.srv == nil {
		panic("MockBroadcastServer not started")
	}

	m.srv.Stop()
	m.wg.Wait()
	m.srv = nil
}
