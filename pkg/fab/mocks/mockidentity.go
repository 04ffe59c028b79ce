/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mocks

import (
	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-protos-go/msp"
)

// MockSigningIdentity signs by returning a fixed signature
type MockSigningIdentity struct {
	MSP       string
	Cert      []byte
	SignErr   error
	Signature []byte
}

// NewMockSigningIdentity returns a signing identity of the given MSP
func NewMockSigningIdentity(mspID string) *MockSigningIdentity {
	return &MockSigningIdentity{MSP: mspID, Cert: []byte("cert"), Signature: []byte("signature")}
}

// MSPID returns the MSP ID
func (m *MockSigningIdentity) MSPID() string {
	return m.MSP
}

// Serialize returns a marshalled msp.SerializedIdentity
func (m *MockSigningIdentity) Serialize() ([]byte, error) {
	return proto.Marshal(&msp.SerializedIdentity{Mspid: m.MSP, IdBytes: m.Cert})
}

// Sign returns the configured signature or error
func (m *MockSigningIdentity) Sign(msg []byte) ([]byte, error) {
	if m.SignErr != nil {
		return nil, m.SignErr
	}
	return m.Signature, nil
}
