/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package gopackager

import (
	"go/build"
	"path"
	"path/filepath"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/sdkerr"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/logging"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/ccpackager"
	pb "github.com/hyperledger/fabric-protos-go/peer"
)

// A list of file extensions that should be packaged into the .tar.gz.
// Files with all other file extensions are excluded to minimize the size
// of the install payload.
var keep = ccpackager.KeepExtensions(".c", ".h", ".s", ".go", ".yaml", ".json")

var logger = logging.NewLogger("fabsdk/fab")

// NewCCPackage creates a go chaincode package. The sources are read from
// <goPath>/src/<chaincodePath> and stored as src/<chaincodePath>/...
// When metaInfLocation is set, <metaInfLocation>/META-INF is added as META-INF/...
func NewCCPackage(chaincodePath string, goPath string, metaInfLocation string) (*ccpackager.CCPackage, error) {
	if chaincodePath == "" {
		return nil, sdkerr.NewInvalidArgument("chaincode path must be provided")
	}

	gp := goPath
	if gp == "" {
		gp = defaultGoPath()
		if gp == "" {
			return nil, sdkerr.NewInvalidArgument("GOPATH not defined")
		}
		logger.Debugf("Default GOPATH=%s", gp)
	}

	projDir := filepath.Join(gp, "src", filepath.FromSlash(chaincodePath))
	logger.Debugf("projDir variable=%s", projDir)

	descriptors, err := ccpackager.FindSource(projDir, path.Join("src", filepath.ToSlash(chaincodePath)), keep)
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

	return &ccpackager.CCPackage{Type: pb.ChaincodeSpec_GOLANG, Code: tarBytes}, nil
}

// defaultGoPath returns the system's default GOPATH. If the system
// has multiple GOPATHs then the first is used.
func defaultGoPath() string {
	gps := filepath.SplitList(build.Default.GOPATH)
	if len(gps) == 0 {
		return ""
	}
	return gps[0]
}
