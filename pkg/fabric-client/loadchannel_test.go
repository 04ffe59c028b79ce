/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package fabricclient

import (
	"testing"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/core/config"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/mocks"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/peer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool {
	return &b
}

func networkConfig() *config.Config {
	return &config.Config{
		Peers: map[string]config.PeerConfig{
			"peer0.org1.example.com": {
				NodeConfig: config.NodeConfig{URL: "grpc://peer0.org1.example.com:7051"},
				MSPID:      "Org1MSP",
			},
			"peer1.org1.example.com": {
				NodeConfig: config.NodeConfig{URL: "grpc://peer1.org1.example.com:7051"},
				MSPID:      "Org1MSP",
			},
		},
		Orderers: map[string]config.NodeConfig{
			"orderer.example.com": {URL: "grpc://orderer.example.com:7050"},
		},
		EventSources: map[string]config.NodeConfig{
			"peer0.org1.example.com": {URL: "grpc://peer0.org1.example.com:7051"},
		},
		Channels: map[string]config.ChannelConfig{
			"mychannel": {
				Orderers: []string{"orderer.example.com"},
				Peers: map[string]config.ChannelPeerConfig{
					"peer0.org1.example.com": {},
					"peer1.org1.example.com": {EndorsingPeer: boolPtr(false), EventSource: boolPtr(false)},
				},
				EventSources: []string{"peer0.org1.example.com"},
			},
		},
	}
}

func newConfigClient(t *testing.T, cfg *config.Config) *Client {
	c, err := NewFromConfig(cfg, WithSigningIdentity(mocks.NewMockSigningIdentity("Org1MSP")))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close(true) })
	return c
}

func TestLoadChannel(t *testing.T) {
	c := newConfigClient(t, networkConfig())

	ch, err := c.LoadChannel("mychannel")
	require.NoError(t, err)
	assert.False(t, ch.IsInitialized())

	require.Len(t, ch.Orderers(), 1)
	assert.Equal(t, "grpc://orderer.example.com:7050", ch.Orderers()[0].URL())
	require.Len(t, ch.EventSources(), 1)

	peers := ch.Peers()
	require.Len(t, peers, 2)
	assert.Equal(t, "peer0.org1.example.com", peers[0].Name())
	assert.Equal(t, "Org1MSP", peers[0].MSPID())

	opts, ok := ch.PeerOptions(peers[0])
	require.True(t, ok)
	assert.Equal(t, peer.AllRoles, opts.Roles)

	opts, ok = ch.PeerOptions(peers[1])
	require.True(t, ok)
	assert.Equal(t, peer.LedgerQuery|peer.ChaincodeQuery, opts.Roles)

	assert.Equal(t, []*peer.Peer{peers[0]}, ch.EndorsingPeers())

	got, ok := c.GetChannel("mychannel")
	require.True(t, ok)
	assert.True(t, got == ch)
}

func TestLoadChannelErrors(t *testing.T) {
	c := newTestClient(t)
	_, err := c.LoadChannel("mychannel")
	assert.EqualError(t, err, "client has no configuration")

	c = newConfigClient(t, networkConfig())
	_, err = c.LoadChannel("other")
	assert.EqualError(t, err, "channel other is not configured")

	cfg := networkConfig()
	cfg.Orderers["orderer.example.com"] = config.NodeConfig{
		URL:        "grpcs://orderer.example.com:7050",
		TLSCACerts: config.PEMConfig{Path: "/nonexistent/tlsca.pem"},
	}
	c = newConfigClient(t, cfg)
	_, err = c.LoadChannel("mychannel")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading channel mychannel failed")
	_, ok := c.GetChannel("mychannel")
	assert.False(t, ok)
}

func TestPeerRoles(t *testing.T) {
	assert.Equal(t, peer.AllRoles, peerRoles(config.ChannelPeerConfig{}))
	assert.Equal(t, peer.EndorsingPeer, peerRoles(config.ChannelPeerConfig{
		ChaincodeQuery: boolPtr(false),
		LedgerQuery:    boolPtr(false),
		EventSource:    boolPtr(false),
	}))
	assert.Equal(t, peer.AllRoles, peerRoles(config.ChannelPeerConfig{EndorsingPeer: boolPtr(true)}))
}
