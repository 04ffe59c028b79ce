/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mockfab

//go:generate mockgen -destination mockfab.gen.go -package mockfab github.com/hyperledger/fabric-channel-sdk-go/pkg/common/providers/fab EndorserClient,OrdererClient,EventClient,SigningIdentity

import (
	"github.com/golang/mock/gomock"
	"github.com/golang/protobuf/proto"
	mb "github.com/hyperledger/fabric-protos-go/msp"
)

// ErrorMessage is a mock error message
const ErrorMessage = "default error message"

// DefaultSigningIdentity returns a signing identity of mspID that signs
// every message with a fixed signature
func DefaultSigningIdentity(mockCtrl *gomock.Controller, mspID string) *MockSigningIdentity {
	identity := NewMockSigningIdentity(mockCtrl)

	serialized, _ := proto.Marshal(&mb.SerializedIdentity{Mspid: mspID, IdBytes: []byte("cert")})
	identity.EXPECT().MSPID().Return(mspID).AnyTimes()
	identity.EXPECT().Serialize().Return(serialized, nil).AnyTimes()
	identity.EXPECT().Sign(gomock.Any()).Return([]byte("signature"), nil).AnyTimes()

	return identity
}
