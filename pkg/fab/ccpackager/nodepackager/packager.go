/*
 Copyright Mioto Yaku All Rights Reserved.

 SPDX-License-Identifier: Apache-2.0
*/

package nodepackager

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/sdkerr"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/ccpackager"
	pb "github.com/hyperledger/fabric-protos-go/peer"
)

// node_modules is restored by the peer from package.json
func keep(path string) bool {
	return !strings.Contains(filepath.ToSlash(path), "/node_modules/")
}

// NewCCPackage creates a node chaincode package. Every file below
// sourcePath, except installed modules, is stored as src/<relative path>.
func NewCCPackage(sourcePath string, metaInfLocation string) (*ccpackager.CCPackage, error) {
	if sourcePath == "" {
		return nil, sdkerr.NewInvalidArgument("chaincode source path must be provided")
	}
	if _, err := os.Stat(filepath.Join(sourcePath, "package.json")); err != nil {
		return nil, sdkerr.NewInvalidArgument("The chaincode source directory %s does not contain package.json", sourcePath)
	}

	descriptors, err := ccpackager.FindSource(sourcePath, "src", keep)
	if err != nil {
		return nil, err
	}
	if metaInfLocation != "" {
		metaInf, err := ccpackager.FindMetaInf(metaInfLocation)
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, metaInf...)
	}

	tarBytes, err := ccpackager.Package(descriptors)
	if err != nil {
		return nil, err
	}
	return &ccpackager.CCPackage{Type: pb.ChaincodeSpec_NODE, Code: tarBytes}, nil
}
