/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mocks

import (
	reqContext "context"
	"sync"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/providers/fab"
	pb "github.com/hyperledger/fabric-protos-go/peer"
)

// MockEventClient is an event client double. Blocks pushed with Deliver
// are streamed to the subscriber.
type MockEventClient struct {
	ConnectError error

	mtx         sync.Mutex
	blocks      chan *pb.FilteredBlock
	subscribed  chan struct{}
	subscribeOK bool
	closed      bool
}

// NewMockEventClient returns an event client double
func NewMockEventClient() *MockEventClient {
	return &MockEventClient{
		blocks:     make(chan *pb.FilteredBlock, 100),
		subscribed: make(chan struct{}),
	}
}

// DeliverFiltered forwards the pushed blocks until ctx is done
func (m *MockEventClient) DeliverFiltered(ctx reqContext.Context, envelope *fab.SignedEnvelope) (<-chan *pb.FilteredBlock, <-chan error) {
	out := make(chan *pb.FilteredBlock)
	errs := make(chan error, 1)

	if m.ConnectError != nil {
		errs <- m.ConnectError
		close(out)
		close(errs)
		return out, errs
	}

	m.mtx.Lock()
	if !m.subscribeOK {
		m.subscribeOK = true
		close(m.subscribed)
	}
	m.mtx.Unlock()

	go func() {
		defer close(out)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			case b := <-m.blocks:
				select {
				case out <- b:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, errs
}

// Deliver pushes a filtered block to the subscriber
func (m *MockEventClient) Deliver(block *pb.FilteredBlock) {
	m.blocks <- block
}

// Subscribed returns a channel closed on the first subscription
func (m *MockEventClient) Subscribed() <-chan struct{} {
	return m.subscribed
}

// Close marks the client closed
func (m *MockEventClient) Close() {
	m.mtx.Lock()
	m.closed = true
	m.mtx.Unlock()
}

// Closed reports whether Close was called
func (m *MockEventClient) Closed() bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.closed
}
