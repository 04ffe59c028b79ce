/*
 Copyright Mioto Yaku All Rights Reserved.

 SPDX-License-Identifier: Apache-2.0
*/

package javapackager

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
	ccPackage, err := NewCCPackage(filepath.Join(testdata, "java", "example_cc"), filepath.Join(testdata, "meta-infs", "test1"))
	require.NoError(t, err)
	assert.Equal(t, pb.ChaincodeSpec_JAVA, ccPackage.Type)

	entries, err := ccpackager.Entries(ccPackage.Code)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"META-INF/statedb/couchdb/indexes/MockFakeIndex.json",
		"src/build.gradle",
		"src/src/main/java/org/example/SimpleChaincode.java",
	}, entries)
}

func TestEmptyCreate(t *testing.T) {
	_, err := NewCCPackage("", "")
	assert.Error(t, err)
}
