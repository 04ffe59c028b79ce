/*
 Copyright Mioto Yaku All Rights Reserved.

 SPDX-License-Identifier: Apache-2.0
*/

package javapackager

import (
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/sdkerr"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/ccpackager"
	pb "github.com/hyperledger/fabric-protos-go/peer"
)

var keep = ccpackager.KeepExtensions(".c", ".h", ".s", ".java", ".yaml", ".json", ".xml", ".gradle", ".properties")

// NewCCPackage creates a java chaincode package. Every kept file below
// sourcePath is stored as src/<relative path>.
func NewCCPackage(sourcePath string, metaInfLocation string) (*ccpackager.CCPackage, error) {
	if sourcePath == "" {
		return nil, sdkerr.NewInvalidArgument("chaincode source path must be provided")
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
	return &ccpackager.CCPackage{Type: pb.ChaincodeSpec_JAVA, Code: tarBytes}, nil
}
