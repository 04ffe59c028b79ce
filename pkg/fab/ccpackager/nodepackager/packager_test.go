/*
 Copyright Mioto Yaku All Rights Reserved.

 SPDX-License-Identifier: Apache-2.0
*/

package nodepackager

import (
	"path/filepath"
	"testing"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/ccpackager"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testdata = filepath.Join("..", "..", "..", "..", "test", "fixtures", "testdata")

func TestNewCCPackage(t *testing.T) {
	ccPackage, err := NewCCPackage(filepath.Join(testdata, "node", "example_cc"), "")
	assert.Nil(t, err, "error from Create %s", err)
	assert.Equal(t, pb.ChaincodeSpec_NODE, ccPackage.Type)

	entries, err := ccpackager.Entries(ccPackage.Code)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"src/chaincode_example02.js",
		"src/package.json",
	}, entries)
}

func TestMissingPackageJSON(t *testing.T) {
	_, err := NewCCPackage(filepath.Join(testdata, "java", "example_cc"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not contain package.json")
}
