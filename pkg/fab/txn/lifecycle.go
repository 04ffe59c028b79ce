/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package txn

import (
	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/sdkerr"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/ccpackager"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/ccpackager/gopackager"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/ccpackager/javapackager"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/ccpackager/nodepackager"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
)

const (
	lscc        = "lscc"
	lsccInstall = "install"
	escc        = "escc"
	vscc        = "vscc"
)

// NewCCPackage packages the chaincode source of request for its language
func NewCCPackage(request *InstallProposalRequest) (*ccpackager.CCPackage, error) {
	if request.Package != nil {
		return request.Package, nil
	}
	if request.Source == "" {
		return nil, sdkerr.NewInvalidArgument("Missing chaincode source location")
	}

	switch request.Lang {
	case pb.ChaincodeSpec_GOLANG, pb.ChaincodeSpec_UNDEFINED:
		if request.Path == "" {
			return nil, sdkerr.NewInvalidArgument("Missing chaincodePath parameter in Install proposal request")
		}
		return gopackager.NewCCPackage(request.Path, request.Source, request.MetaInfLocation)
	case pb.ChaincodeSpec_JAVA:
		return javapackager.NewCCPackage(request.Source, request.MetaInfLocation)
	case pb.ChaincodeSpec_NODE:
		return nodepackager.NewCCPackage(request.Source, request.MetaInfLocation)
	default:
		return nil, sdkerr.NewInvalidArgument("Unsupported chaincode language %s", request.Lang)
	}
}

// CreateChaincodeInstallProposal creates an install chaincode proposal.
// The proposal is addressed to no channel.
func CreateChaincodeInstallProposal(txh fab.TransactionHeader, request *InstallProposalRequest) (*fab.TransactionProposal, error) {
	if request.Name == "" {
		return nil, sdkerr.NewInvalidArgument("Missing chaincodeName parameter in Install proposal request")
	}
	if request.Version == "" {
		return nil, sdkerr.NewInvalidArgument("Missing chaincodeVersion parameter in Install proposal request")
	}

	pkg, err := NewCCPackage(request)
	if err != nil {
		return nil, err
	}

	ccds := &pb.ChaincodeDeploymentSpec{
		ChaincodeSpec: &pb.ChaincodeSpec{
			Type:        pkg.Type,
			ChaincodeId: &pb.ChaincodeID{Name: request.Name, Path: request.Path, Version: request.Version},
		},
		CodePackage: pkg.Code,
	}
	ccdsBytes, err := proto.Marshal(ccds)
	if err != nil {
		return nil, errors.Wrap(err, "marshal of chaincode deployment spec failed")
	}

	return CreateChaincodeInvokeProposal(txh, ChaincodeInvokeRequest{
		ChaincodeID: lscc,
		Fcn:         lsccInstall,
		Args:        [][]byte{ccdsBytes},
	})
}

// CreateChaincodeDeployProposal creates an instantiate or upgrade chaincode
// proposal for the channel of txh.
func CreateChaincodeDeployProposal(txh fab.TransactionHeader, deploy ChaincodeDeployType, request *InstantiateProposalRequest) (*fab.TransactionProposal, error) {
	if request.Name == "" {
		return nil, sdkerr.NewInvalidArgument("Missing chaincodeName parameter in %s proposal request", deploy)
	}
	if request.Version == "" {
		return nil, sdkerr.NewInvalidArgument("Missing chaincodeVersion parameter in %s proposal request", deploy)
	}

	fcn := request.Fcn
	if fcn == "" {
		fcn = "init"
	}
	argsArray := make([][]byte, len(request.Args)+1)
	argsArray[0] = []byte(fcn)
	copy(argsArray[1:], request.Args)

	lang := request.Lang
	if lang == pb.ChaincodeSpec_UNDEFINED {
		lang = pb.ChaincodeSpec_GOLANG
	}

	ccds := &pb.ChaincodeDeploymentSpec{ChaincodeSpec: &pb.ChaincodeSpec{
		Type:        lang,
		ChaincodeId: &pb.ChaincodeID{Name: request.Name, Path: request.Path, Version: request.Version},
		Input:       &pb.ChaincodeInput{Args: argsArray},
	}}
	ccdsBytes, err := proto.Marshal(ccds)
	if err != nil {
		return nil, errors.Wrap(err, "marshal of chaincode deployment spec failed")
	}

	args := [][]byte{
		[]byte(txh.ChannelID()),
		ccdsBytes,
		request.EndorsementPolicy,
		[]byte(escc),
		[]byte(vscc),
	}
	if len(request.CollectionConfig) > 0 {
		args = append(args, request.CollectionConfig)
	}

	return CreateChaincodeInvokeProposal(txh, ChaincodeInvokeRequest{
		ChaincodeID:  lscc,
		Fcn:          deploy.String(),
		Args:         args,
		TransientMap: request.TransientMap,
	})
}
