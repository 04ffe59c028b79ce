/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mocks

import (
	reqContext "context"
	"sync"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-protos-go/common"
)

// MockOrderer is an orderer client double
type MockOrderer struct {
	URL            string
	BroadcastError error
	BroadcastFunc  func(*fab.SignedEnvelope) (*common.Status, error)
	DeliverBlocks  []*common.Block
	DeliverError   error

	mtx       sync.Mutex
	envelopes []*fab.SignedEnvelope
	closed    bool
}

// NewMockOrderer returns an orderer double accepting every broadcast
func NewMockOrderer(url string) *MockOrderer {
	return &MockOrderer{URL: url}
}

// SendBroadcast records the envelope and returns the configured outcome
func (m *MockOrderer) SendBroadcast(ctx reqContext.Context, envelope *fab.SignedEnvelope) (*common.Status, error) {
	m.mtx.Lock()
	m.envelopes = append(m.envelopes, envelope)
	m.mtx.Unlock()

	if m.BroadcastFunc != nil {
		return m.BroadcastFunc(envelope)
	}
	if m.BroadcastError != nil {
		return nil, m.BroadcastError
	}
	s := common.Status_SUCCESS
	return &s, nil
}

// SendDeliver streams the configured blocks, then the configured error
func (m *MockOrderer) SendDeliver(ctx reqContext.Context, envelope *fab.SignedEnvelope) (chan *common.Block, chan error) {
	blocks := make(chan *common.Block, len(m.DeliverBlocks))
	errs := make(chan error, 1)

	for _, b := range m.DeliverBlocks {
		blocks <- b
	}
	if m.DeliverError != nil {
		errs <- m.DeliverError
	}
	close(blocks)
	return blocks, errs
}

// Close marks the client closed
func (m *MockOrderer) Close() {
	m.mtx.Lock()
	m.closed = true
	m.mtx.Unlock()
}

// Closed reports whether Close was called
func (m *MockOrderer) Closed() bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.closed
}

// Envelopes returns the broadcast envelopes received so far
func (m *MockOrderer) Envelopes() []*fab.SignedEnvelope {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	envs := make([]*fab.SignedEnvelope, len(m.envelopes))
	copy(envs, m.envelopes)
	return envs
}
