/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package channel

import (
	reqContext "context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/sdkerr"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/ccpackager"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/mocks"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/peer"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/txn"
	"github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testdataDir = "../../../test/fixtures/testdata"

// packageRecorder keeps the archive entries of the install proposals it
// endorses
type packageRecorder struct {
	mtx     sync.Mutex
	entries []string
	channel string
}

func (r *packageRecorder) process(ctx reqContext.Context, request fab.ProcessProposalRequest) (*fab.TransactionProposalResponse, error) {
	proposal := &pb.Proposal{}
	if err := proto.Unmarshal(request.SignedProposal.ProposalBytes, proposal); err != nil {
		return nil, err
	}
	hdr := &common.Header{}
	if err := proto.Unmarshal(proposal.Header, hdr); err != nil {
		return nil, err
	}
	chdr := &common.ChannelHeader{}
	if err := proto.Unmarshal(hdr.ChannelHeader, chdr); err != nil {
		return nil, err
	}
	payload := &pb.ChaincodeProposalPayload{}
	if err := proto.Unmarshal(proposal.Payload, payload); err != nil {
		return nil, err
	}
	ccis := &pb.ChaincodeInvocationSpec{}
	if err := proto.Unmarshal(payload.Input, ccis); err != nil {
		return nil, err
	}
	cds := &pb.ChaincodeDeploymentSpec{}
	if err := proto.Unmarshal(ccis.ChaincodeSpec.Input.Args[1], cds); err != nil {
		return nil, err
	}
	entries, err := ccpackager.Entries(cds.CodePackage)
	if err != nil {
		return nil, err
	}

	r.mtx.Lock()
	r.entries = entries
	r.channel = chdr.ChannelId
	r.mtx.Unlock()
	return mocks.NewSuccessResponse("peer1", nil), nil
}

func installRequest(metaInf string) *txn.InstallProposalRequest {
	return &txn.InstallProposalRequest{
		ChaincodeSpec:   txn.ChaincodeSpec{Name: "example_cc", Version: "1", Path: "github.com/example_cc"},
		Source:          filepath.Join(testdataDir, "go"),
		MetaInfLocation: metaInf,
	}
}

func TestSendInstallProposal(t *testing.T) {
	recorder := &packageRecorder{}
	endorser := mocks.NewMockEndorser("grpc://peer1:7051")
	endorser.ProcessFunc = recorder.process

	ch := newInitializedChannel(t, "mychannel")
	require.NoError(t, ch.AddPeer(newTestPeer(t, "peer1", endorser)))

	responses, err := ch.SendInstallProposal(reqContext.Background(), installRequest(""))
	require.NoError(t, err)
	assert.True(t, responses.Results.AllSucceeded())
	assert.NotEmpty(t, responses.TxID())

	assert.Equal(t, []string{"src/github.com/example_cc/example_cc.go"}, recorder.entries)
	assert.Equal(t, fab.SystemChannel, recorder.channel)
}

func TestSendInstallProposalWithMetaInf(t *testing.T) {
	recorder := &packageRecorder{}
	endorser := mocks.NewMockEndorser("grpc://peer1:7051")
	endorser.ProcessFunc = recorder.process

	ch := newInitializedChannel(t, "mychannel")
	require.NoError(t, ch.AddPeer(newTestPeer(t, "peer1", endorser)))

	_, err := ch.SendInstallProposal(reqContext.Background(), installRequest(filepath.Join(testdataDir, "meta-infs", "test1")))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"META-INF/statedb/couchdb/indexes/MockFakeIndex.json",
		"src/github.com/example_cc/example_cc.go",
	}, recorder.entries)
}

func TestSendInstallProposalMetaInfErrors(t *testing.T) {
	ch := newInitializedChannel(t, "mychannel")
	require.NoError(t, ch.AddPeer(newTestPeer(t, "peer1", nil)))

	missing := filepath.Join(testdataDir, "meta-infs", "missing")
	_, err := ch.SendInstallProposal(reqContext.Background(), installRequest(missing))
	assert.True(t, sdkerr.IsInvalidArgument(err))
	assert.EqualError(t, err, "Directory to find chaincode META-INF "+missing+" does not exist")

	noMetaInf := filepath.Join(testdataDir, "go")
	_, err = ch.SendInstallProposal(reqContext.Background(), installRequest(noMetaInf))
	assert.True(t, sdkerr.IsInvalidArgument(err))
	assert.EqualError(t, err, "The META-INF directory does not exist in "+filepath.Join(noMetaInf, "META-INF"))
}

func TestSendProposalNullRequests(t *testing.T) {
	ch := newInitializedChannel(t, "mychannel")
	require.NoError(t, ch.AddPeer(newTestPeer(t, "peer1", nil)))
	ctx := reqContext.Background()

	_, err := ch.SendInstallProposal(ctx, nil)
	assert.EqualError(t, err, "InstallProposalRequest is null")

	_, err = ch.SendInstantiationProposal(ctx, nil)
	assert.EqualError(t, err, "InstantiateProposalRequest is null")

	_, err = ch.SendUpgradeProposal(ctx, nil)
	assert.EqualError(t, err, "Upgradeproposal is null")

	_, err = ch.SendTransactionProposal(ctx, nil)
	assert.EqualError(t, err, "TransactionProposalRequest is null")

	_, err = ch.QueryByChaincode(ctx, nil)
	assert.True(t, sdkerr.IsInvalidArgument(err))
	assert.EqualError(t, err, "QueryByChaincodeRequest is null")
}

func invokeRequest() *txn.TransactionProposalRequest {
	return &txn.TransactionProposalRequest{
		ChaincodeSpec: txn.ChaincodeSpec{Name: "example_cc", Fcn: "move", Args: [][]byte{[]byte("a"), []byte("b"), []byte("1")}},
	}
}

func TestSendTransactionProposalMixedResults(t *testing.T) {
	good := mocks.NewMockEndorser("grpc://peer1:7051")
	bad := mocks.NewMockEndorser("grpc://peer2:7051")
	bad.Err = errors.New("peer exception")

	ch := newInitializedChannel(t, "mychannel")
	require.NoError(t, ch.AddPeer(newTestPeer(t, "peer1", good)))
	require.NoError(t, ch.AddPeer(newTestPeer(t, "peer2", bad)))

	responses, err := ch.SendTransactionProposal(reqContext.Background(), invokeRequest())
	require.NoError(t, err)
	require.Len(t, responses.Results, 2)
	require.Len(t, responses.Results.Failed(), 1)

	failed := responses.Results.Failed()[0]
	assert.Equal(t, "grpc://peer2:7051", failed.Endorser)
	assert.True(t, sdkerr.IsProposal(failed.Err))
	assert.Contains(t, failed.Err.Error(), "peer exception")

	request := responses.TransactionRequest()
	assert.True(t, request.Proposal == responses.Proposal)
	assert.Len(t, request.ProposalResponses, 1)
}

func TestSendTransactionProposalPeersSharingURL(t *testing.T) {
	e1 := mocks.NewMockEndorser("grpc://shared:7051")
	e2 := mocks.NewMockEndorser("grpc://shared:7051")
	e2.Err = errors.New("peer exception")

	ch := newInitializedChannel(t, "mychannel")
	require.NoError(t, ch.AddPeer(newTestPeer(t, "peerA", e1)))
	require.NoError(t, ch.AddPeer(newTestPeer(t, "peerB", e2)))

	responses, err := ch.SendTransactionProposal(reqContext.Background(), invokeRequest())
	require.NoError(t, err)
	require.Len(t, responses.Results, 2)
	assert.Len(t, e1.Requests(), 1)
	assert.Len(t, e2.Requests(), 1)
	assert.Len(t, responses.Results.Successful(), 1)
	assert.Len(t, responses.Results.Failed(), 1)
}

func TestSendTransactionProposalTargets(t *testing.T) {
	e1 := mocks.NewMockEndorser("grpc://peer1:7051")
	e2 := mocks.NewMockEndorser("grpc://peer2:7051")
	p2 := newTestPeer(t, "peer2", e2)

	ch := newInitializedChannel(t, "mychannel")
	require.NoError(t, ch.AddPeer(newTestPeer(t, "peer1", e1)))
	require.NoError(t, ch.AddPeer(p2))

	responses, err := ch.SendTransactionProposal(reqContext.Background(), invokeRequest(), WithTargets([]*peer.Peer{p2}))
	require.NoError(t, err)
	assert.Len(t, responses.Results, 1)
	assert.Empty(t, e1.Requests())
	assert.Len(t, e2.Requests(), 1)

	_, err = ch.SendTransactionProposal(reqContext.Background(), invokeRequest(), WithTargets([]*peer.Peer{}))
	assert.EqualError(t, err, "Collection of peers is empty.")
}

func TestSendTransactionProposalInvalidRequest(t *testing.T) {
	ch := newInitializedChannel(t, "mychannel")
	require.NoError(t, ch.AddPeer(newTestPeer(t, "peer1", nil)))

	_, err := ch.SendTransactionProposal(reqContext.Background(), &txn.TransactionProposalRequest{})
	assert.True(t, sdkerr.IsInvalidArgument(err))
	assert.EqualError(t, err, "Missing chaincode name")
}

func TestSendProposalFatal(t *testing.T) {
	endorser := mocks.NewMockEndorser("grpc://peer1:7051")
	endorser.PanicValue = "out of memory"

	ch := newInitializedChannel(t, "mychannel")
	require.NoError(t, ch.AddPeer(newTestPeer(t, "peer1", endorser)))

	_, err := ch.SendTransactionProposal(reqContext.Background(), invokeRequest())
	assert.True(t, sdkerr.IsFatal(err))
	assert.Contains(t, err.Error(), "out of memory")
}

func TestQueryByChaincodeUsesQueryPeers(t *testing.T) {
	endorsing := mocks.NewMockEndorser("grpc://peer1:7051")
	query := mocks.NewMockEndorser("grpc://peer2:7051")
	query.Response = mocks.NewSuccessResponse("grpc://peer2:7051", []byte("100"))

	ch := newInitializedChannel(t, "mychannel")
	require.NoError(t, ch.AddPeer(newTestPeer(t, "peer1", endorsing), WithPeerRoles(peer.EndorsingPeer)))
	require.NoError(t, ch.AddPeer(newTestPeer(t, "peer2", query), WithPeerRoles(peer.ChaincodeQuery)))

	responses, err := ch.QueryByChaincode(reqContext.Background(), &txn.QueryProposalRequest{
		ChaincodeSpec: txn.ChaincodeSpec{Name: "example_cc", Fcn: "query", Args: [][]byte{[]byte("a")}},
	})
	require.NoError(t, err)
	require.Len(t, responses.Results, 1)
	assert.Equal(t, []byte("100"), responses.Results[0].Response.GetResponse().GetPayload())
	assert.Empty(t, endorsing.Requests())
}

func TestSendInstantiationProposal(t *testing.T) {
	endorser := mocks.NewMockEndorser("grpc://peer1:7051")
	ch := newInitializedChannel(t, "mychannel")
	require.NoError(t, ch.AddPeer(newTestPeer(t, "peer1", endorser)))

	request := &txn.InstantiateProposalRequest{
		ChaincodeSpec: txn.ChaincodeSpec{Name: "example_cc", Version: "1", Path: "github.com/example_cc", Fcn: "init"},
	}
	responses, err := ch.SendInstantiationProposal(reqContext.Background(), request)
	require.NoError(t, err)
	assert.True(t, responses.Results.AllSucceeded())

	upgrade := txn.UpgradeProposalRequest(*request)
	upgrade.Version = ""
	_, err = ch.SendUpgradeProposal(reqContext.Background(), &upgrade)
	assert.True(t, sdkerr.IsInvalidArgument(err))
	assert.EqualError(t, err, "Missing chaincodeVersion parameter in upgrade proposal request")
}
