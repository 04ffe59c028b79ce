/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package txn

import (
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/ccpackager"
	pb "github.com/hyperledger/fabric-protos-go/peer"
)

// ChaincodeSpec identifies a chaincode and the function invoked on it
type ChaincodeSpec struct {
	Name    string
	Version string
	Path    string
	Lang    pb.ChaincodeSpec_Type
	Fcn     string
	Args    [][]byte
	// TransientMap is sent to the endorsers but left out of the transaction
	TransientMap map[string][]byte
}

// InstallProposalRequest installs chaincode on peers
type InstallProposalRequest struct {
	ChaincodeSpec
	// Source is the chaincode source root. For Go it holds src/<Path>.
	Source string
	// MetaInfLocation optionally names the directory holding META-INF
	MetaInfLocation string
	// Package is used instead of packaging Source when set
	Package *ccpackager.CCPackage
}

// InstantiateProposalRequest instantiates installed chaincode on a channel
type InstantiateProposalRequest struct {
	ChaincodeSpec
	// EndorsementPolicy is a marshalled common.SignaturePolicyEnvelope
	EndorsementPolicy []byte
	// CollectionConfig is a marshalled pb.CollectionConfigPackage
	CollectionConfig []byte
}

// UpgradeProposalRequest upgrades instantiated chaincode to a new version
type UpgradeProposalRequest InstantiateProposalRequest

// TransactionProposalRequest invokes chaincode
type TransactionProposalRequest struct {
	ChaincodeSpec
}

// QueryProposalRequest queries chaincode; the responses are not ordered
type QueryProposalRequest struct {
	ChaincodeSpec
}

// ChaincodeDeployType reflects transitions in the chaincode lifecycle
type ChaincodeDeployType int

// Define chaincode deploy types
const (
	InstantiateChaincode ChaincodeDeployType = iota
	UpgradeChaincode
)

func (t ChaincodeDeployType) String() string {
	if t == UpgradeChaincode {
		return "upgrade"
	}
	return "deploy"
}
