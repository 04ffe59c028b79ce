/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package channel

import (
	"sync"
	"testing"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/sdkerr"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/peer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddPeer(t *testing.T) {
	ch := newTestChannel(t, "mychannel")

	err := ch.AddPeer(nil)
	assert.True(t, sdkerr.IsInvalidArgument(err))
	assert.EqualError(t, err, "Peer value is null.")

	nameless, err := peer.New(peer.WithURL("grpc://localhost:7051"))
	require.NoError(t, err)
	err = ch.AddPeer(nameless)
	assert.EqualError(t, err, "Peer name is invalid can not be null or empty.")

	p := newTestPeer(t, "peer1", nil)
	require.NoError(t, ch.AddPeer(p))
	require.NoError(t, ch.AddPeer(p))
	assert.Equal(t, []*peer.Peer{p}, ch.Peers())
	assert.Equal(t, "mychannel", p.ChannelName())

	other := newTestChannel(t, "other")
	err = other.AddPeer(p)
	assert.True(t, sdkerr.IsInvalidArgument(err))
	assert.EqualError(t, err, "Can not add peer peer1 to channel other because it already belongs to channel mychannel")
	assert.Empty(t, other.Peers())
}

func TestAddPeerRoles(t *testing.T) {
	ch := newTestChannel(t, "mychannel")

	endorsing := newTestPeer(t, "peer1", nil)
	ledgerOnly := newTestPeer(t, "peer2", nil)
	require.NoError(t, ch.AddPeer(endorsing))
	require.NoError(t, ch.AddPeer(ledgerOnly, WithPeerRoles(peer.LedgerQuery)))

	assert.Equal(t, []*peer.Peer{endorsing}, ch.EndorsingPeers())
	assert.Equal(t, []*peer.Peer{endorsing, ledgerOnly}, ch.peersWithRole(peer.LedgerQuery))

	opts, ok := ch.PeerOptions(ledgerOnly)
	require.True(t, ok)
	assert.Equal(t, peer.LedgerQuery, opts.Roles)
}

func TestAddOrderer(t *testing.T) {
	ch := newTestChannel(t, "mychannel")

	err := ch.AddOrderer(nil)
	assert.EqualError(t, err, "Orderer value is null.")

	o := newTestOrderer(t, "orderer", nil)
	require.NoError(t, ch.AddOrderer(o))
	require.NoError(t, ch.AddOrderer(o))
	assert.Len(t, ch.Orderers(), 1)

	other := newTestChannel(t, "other")
	err = other.AddOrderer(o)
	assert.True(t, sdkerr.IsInvalidArgument(err))
	assert.EqualError(t, err, "Can not add orderer orderer to channel other because it already belongs to channel mychannel")
}

func TestAddEventSource(t *testing.T) {
	ch := newTestChannel(t, "mychannel")

	err := ch.AddEventSource(nil)
	assert.EqualError(t, err, "EventSource value is null.")

	es := newTestEventSource(t, "events", nil)
	require.NoError(t, ch.AddEventSource(es))
	require.NoError(t, ch.AddEventSource(es))
	assert.Len(t, ch.EventSources(), 1)

	other := newTestChannel(t, "other")
	err = other.AddEventSource(es)
	assert.EqualError(t, err, "Can not add event source events to channel other because it already belongs to channel mychannel")
}

func TestRemoveMembers(t *testing.T) {
	ch := newTestChannel(t, "mychannel")

	p := newTestPeer(t, "peer1", nil)
	o := newTestOrderer(t, "orderer", nil)
	es := newTestEventSource(t, "events", nil)

	assert.EqualError(t, ch.RemovePeer(p), "Channel mychannel does not have peer peer1")
	assert.EqualError(t, ch.RemoveOrderer(o), "Channel mychannel does not have orderer orderer")
	assert.EqualError(t, ch.RemoveEventSource(es), "Channel mychannel does not have event source events")

	require.NoError(t, ch.AddPeer(p))
	require.NoError(t, ch.AddOrderer(o))
	require.NoError(t, ch.AddEventSource(es))

	require.NoError(t, ch.RemovePeer(p))
	require.NoError(t, ch.RemoveOrderer(o))
	require.NoError(t, ch.RemoveEventSource(es))
	assert.Empty(t, ch.Peers())
	assert.Empty(t, ch.Orderers())
	assert.Empty(t, ch.EventSources())
	assert.Empty(t, p.ChannelName())

	_, ok := ch.PeerOptions(p)
	assert.False(t, ok)
}

func TestConcurrentAddPeerHasOneWinner(t *testing.T) {
	p := newTestPeer(t, "peer1", nil)

	const count = 10
	channels := make([]*Channel, count)
	for i := range channels {
		channels[i] = newChannel(string(rune('a'+i)), newTestClient())
	}

	var wg sync.WaitGroup
	errs := make([]error, count)
	for i, ch := range channels {
		wg.Add(1)
		go func(i int, ch *Channel) {
			defer wg.Done()
			errs[i] = ch.AddPeer(p)
		}(i, ch)
	}
	wg.Wait()

	winners := 0
	for i, err := range errs {
		if err == nil {
			winners++
			assert.Equal(t, channels[i].Name(), p.ChannelName())
			continue
		}
		assert.True(t, sdkerr.IsInvalidArgument(err))
	}
	assert.Equal(t, 1, winners)
}

func TestTargets(t *testing.T) {
	ch := newTestChannel(t, "mychannel")
	other := newTestChannel(t, "other")

	member := newTestPeer(t, "peer1", nil)
	foreign := newTestPeer(t, "peer2", nil)
	stranger := newTestPeer(t, "peer3", nil)
	require.NoError(t, ch.AddPeer(member))
	require.NoError(t, other.AddPeer(foreign))

	_, err := ch.targets(ch.requestOptions(nil), peer.EndorsingPeer)
	require.NoError(t, err)

	tests := []struct {
		name    string
		targets []*peer.Peer
		err     string
	}{
		{"nil collection", nil, "Collection of peers is null."},
		{"empty collection", []*peer.Peer{}, "Collection of peers is empty."},
		{"nil peer", []*peer.Peer{member, nil}, "Peer value is null."},
		{"not a member", []*peer.Peer{stranger}, "Channel mychannel does not have peer peer3"},
		{"member of another channel", []*peer.Peer{foreign}, "Channel mychannel does not have peer peer2. Peer belongs to channel other"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ch.targets(ch.requestOptions([]RequestOption{WithTargets(tc.targets)}), peer.EndorsingPeer)
			assert.True(t, sdkerr.IsInvalidArgument(err))
			assert.EqualError(t, err, tc.err)
		})
	}

	// member whose binding was taken over
	member.Unbind("mychannel")
	_, ok := member.Bind("other")
	require.True(t, ok)
	_, err = ch.targets(ch.requestOptions([]RequestOption{WithTargets([]*peer.Peer{member})}), peer.EndorsingPeer)
	assert.EqualError(t, err, "Peer peer1 not set for channel mychannel")
}

func TestTargetsWithoutRolePeers(t *testing.T) {
	ch := newTestChannel(t, "mychannel")
	require.NoError(t, ch.AddPeer(newTestPeer(t, "peer1", nil), WithPeerRoles(peer.LedgerQuery)))

	_, err := ch.targets(ch.requestOptions(nil), peer.EndorsingPeer)
	assert.True(t, sdkerr.IsInvalidArgument(err))
	assert.EqualError(t, err, "Channel mychannel does not have any peers with role [endorsingPeer]")
}
