/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package commands

import (
	"bytes"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/mocks"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/peer"
	fabricclient "github.com/hyperledger/fabric-channel-sdk-go/pkg/fabric-client"
	"github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const peerURL = "grpc://peer1:7051"

func successEndorser(t *testing.T, msg proto.Message) *mocks.MockEndorser {
	e := mocks.NewMockEndorser(peerURL)
	if msg != nil {
		payload, err := proto.Marshal(msg)
		require.NoError(t, err)
		e.Response = mocks.NewSuccessResponse(peerURL, payload)
	}
	return e
}

// newTestFactory returns a factory whose client has the channel mychannel
// served by endorser
func newTestFactory(t *testing.T, endorser *mocks.MockEndorser) (*Factory, *bytes.Buffer) {
	out := &bytes.Buffer{}
	f := &Factory{
		out: out,
		newClient: func(path string) (*fabricclient.Client, error) {
			c, err := fabricclient.New(fabricclient.WithSigningIdentity(mocks.NewMockSigningIdentity("Org1MSP")))
			if err != nil {
				return nil, err
			}
			ch, err := c.NewChannel("mychannel")
			if err != nil {
				return nil, err
			}
			p, err := c.NewPeer("peer1", peerURL, peer.WithEndorserClient(endorser))
			if err != nil {
				return nil, err
			}
			return c, ch.AddPeer(p)
		},
		newPeer: func(c *fabricclient.Client, name string) (*peer.Peer, error) {
			return c.NewPeer(name, peerURL, peer.WithEndorserClient(endorser))
		},
	}
	return f, out
}

func execute(f *Factory, args ...string) error {
	cmd := newRootCmd(f)
	cmd.SetErr(ioutil.Discard)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestChannelsCmd(t *testing.T) {
	f, out := newTestFactory(t, successEndorser(t, &pb.ChannelQueryResponse{
		Channels: []*pb.ChannelInfo{{ChannelId: "mychannel"}, {ChannelId: "other"}},
	}))

	require.NoError(t, execute(f, "channels", "--peer", "peer1"))
	assert.Equal(t, "mychannel\nother\n", out.String())
	assert.Nil(t, f.client)
}

func TestChaincodesCmd(t *testing.T) {
	f, out := newTestFactory(t, successEndorser(t, &pb.ChaincodeQueryResponse{
		Chaincodes: []*pb.ChaincodeInfo{{Name: "example_cc", Version: "1.0", Path: "github.com/example_cc"}},
	}))

	require.NoError(t, execute(f, "chaincodes", "-p", "peer1"))
	assert.Equal(t, "Name: example_cc, Version: 1.0, Path: github.com/example_cc\n", out.String())
}

func TestPeerCmdErrors(t *testing.T) {
	f, _ := newTestFactory(t, successEndorser(t, nil))
	assert.EqualError(t, execute(f, "channels"), "peer name is required")

	endorser := mocks.NewMockEndorser(peerURL)
	endorser.Err = errors.New("connection refused")
	f, out := newTestFactory(t, endorser)
	err := execute(f, "channels", "--peer", "peer1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Empty(t, out.String())

	f, _ = newTestFactory(t, successEndorser(t, nil))
	err = execute(f, "channels", "extra")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trailing args detected")
}

func TestInfoCmd(t *testing.T) {
	f, out := newTestFactory(t, successEndorser(t, &common.BlockchainInfo{
		Height:           5,
		CurrentBlockHash: []byte{0xab, 0xcd},
	}))

	require.NoError(t, execute(f, "info", "--channelID", "mychannel"))
	assert.Contains(t, out.String(), "Height: 5\n")
	assert.Contains(t, out.String(), "CurrentBlockHash: abcd\n")
}

func TestBlockCmd(t *testing.T) {
	f, out := newTestFactory(t, successEndorser(t, mocks.NewBlock("mychannel", 3)))

	require.NoError(t, execute(f, "block", "-c", "mychannel", "-n", "3"))
	assert.Contains(t, out.String(), `"number": "3"`)

	f, _ = newTestFactory(t, successEndorser(t, mocks.NewBlock("mychannel", 3)))
	err := execute(f, "block", "-c", "mychannel", "--hash", "not-hex")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid block hash")
}

func TestTxCmd(t *testing.T) {
	f, out := newTestFactory(t, successEndorser(t, &pb.ProcessedTransaction{
		ValidationCode: int32(pb.TxValidationCode_MVCC_READ_CONFLICT),
	}))

	require.NoError(t, execute(f, "tx", "-c", "mychannel", "txid1"))
	assert.Contains(t, out.String(), `"validation_code": 11`)

	f, _ = newTestFactory(t, successEndorser(t, nil))
	assert.Error(t, execute(f, "tx", "-c", "mychannel"))
}

func TestChannelCmdErrors(t *testing.T) {
	f, _ := newTestFactory(t, successEndorser(t, nil))
	assert.EqualError(t, execute(f, "info"), "channel name is required")

	// the test client has no configuration to load other channels from
	f, _ = newTestFactory(t, successEndorser(t, nil))
	assert.EqualError(t, execute(f, "info", "-c", "other"), "client has no configuration")
}

func TestQueryCmd(t *testing.T) {
	endorser := mocks.NewMockEndorser(peerURL)
	endorser.Response = mocks.NewSuccessResponse(peerURL, []byte("100"))
	f, out := newTestFactory(t, endorser)

	require.NoError(t, execute(f, "query", "-c", "mychannel", "-n", "example_cc", "-a", "a"))
	assert.Equal(t, peerURL+": 100\n", out.String())

	f, _ = newTestFactory(t, endorser)
	assert.EqualError(t, execute(f, "query", "-c", "mychannel"), "chaincode name is required")

	failing := mocks.NewMockEndorser(peerURL)
	failing.Err = errors.New("chaincode not found")
	f, _ = newTestFactory(t, failing)
	assert.Error(t, execute(f, "query", "-c", "mychannel", "-n", "example_cc"))
}

func TestClientFromFile(t *testing.T) {
	f := &Factory{out: &bytes.Buffer{}, newClient: clientFromFile, newPeer: peerFromConfig}
	err := execute(f, "channels", "--config", "/nonexistent/config.yaml", "--peer", "peer1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating client failed")
}

func TestServeMux(t *testing.T) {
	f, _ := newTestFactory(t, successEndorser(t, nil))
	c, err := f.loadChannels()
	require.NoError(t, err)
	defer f.close()

	server := httptest.NewServer(newServeMux(c))
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	// mychannel has no orderers
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
