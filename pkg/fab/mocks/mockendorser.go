/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mocks

import (
	reqContext "context"
	"sync"
	"time"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/providers/fab"
)

// MockEndorser is an endorser client double. Without a configured outcome
// it answers every proposal with a 200 response.
type MockEndorser struct {
	URL         string
	Response    *fab.TransactionProposalResponse
	Err         error
	Delay       time.Duration
	PanicValue  interface{}
	ProcessFunc func(reqContext.Context, fab.ProcessProposalRequest) (*fab.TransactionProposalResponse, error)
	Inactive    bool

	mtx      sync.Mutex
	requests []fab.ProcessProposalRequest
	closed   bool
}

// NewMockEndorser returns an endorser double answering with success
func NewMockEndorser(url string) *MockEndorser {
	return &MockEndorser{URL: url}
}

// ProcessTransactionProposal records the request and returns the configured outcome
func (m *MockEndorser) ProcessTransactionProposal(ctx reqContext.Context, request fab.ProcessProposalRequest) (*fab.TransactionProposalResponse, error) {
	m.mtx.Lock()
	m.requests = append(m.requests, request)
	m.mtx.Unlock()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.PanicValue != nil {
		panic(m.PanicValue)
	}
	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, request)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Response != nil {
		return m.Response, nil
	}
	return NewSuccessResponse(m.URL, nil), nil
}

// Active returns false once closed or when marked inactive
func (m *MockEndorser) Active() bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return !m.closed && !m.Inactive
}

// Close marks the client closed
func (m *MockEndorser) Close() {
	m.mtx.Lock()
	m.closed = true
	m.mtx.Unlock()
}

// Requests returns the requests received so far
func (m *MockEndorser) Requests() []fab.ProcessProposalRequest {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	reqs := make([]fab.ProcessProposalRequest, len(m.requests))
	copy(reqs, m.requests)
	return reqs
}
