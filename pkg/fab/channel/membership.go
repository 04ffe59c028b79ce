/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package channel

import (
	"math/rand"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/sdkerr"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/events"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/orderer"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/peer"
)

// AddPeer adds p to the channel. Adding a member again is a no-op.
func (c *Channel) AddPeer(p *peer.Peer, opts ...PeerOption) error {
	if c.shutdown.Load() {
		return c.shutdownError()
	}
	if p == nil {
		return sdkerr.NewInvalidArgument("Peer value is null.")
	}
	if p.Name() == "" {
		return sdkerr.NewInvalidArgument("Peer name is invalid can not be null or empty.")
	}

	peerOpts := PeerOptions{Roles: p.Roles()}
	for _, opt := range opts {
		opt(&peerOpts)
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.shutdown.Load() {
		return c.shutdownError()
	}
	if containsPeer(c.peers, p) {
		return nil
	}
	if owner, ok := p.Bind(c.name); !ok {
		return sdkerr.NewInvalidArgument("Can not add peer %s to channel %s because it already belongs to channel %s", p.Name(), c.name, owner)
	}

	c.peers = append(c.peers, p)
	c.peerOptions[p] = peerOpts
	logger.Debugf("Added peer %s %s to channel %s", p.Name(), peerOpts.Roles, c.name)
	return nil
}

// AddOrderer adds o to the channel. Adding a member again is a no-op.
func (c *Channel) AddOrderer(o *orderer.Orderer) error {
	if c.shutdown.Load() {
		return c.shutdownError()
	}
	if o == nil {
		return sdkerr.NewInvalidArgument("Orderer value is null.")
	}
	if o.Name() == "" {
		return sdkerr.NewInvalidArgument("Orderer name is invalid can not be null or empty.")
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.shutdown.Load() {
		return c.shutdownError()
	}
	for _, m := range c.orderers {
		if m == o {
			return nil
		}
	}
	if owner, ok := o.Bind(c.name); !ok {
		return sdkerr.NewInvalidArgument("Can not add orderer %s to channel %s because it already belongs to channel %s", o.Name(), c.name, owner)
	}

	c.orderers = append(c.orderers, o)
	logger.Debugf("Added orderer %s to channel %s", o.Name(), c.name)
	return nil
}

// AddEventSource adds es to the channel. On an initialized channel the
// event source is subscribed to right away.
func (c *Channel) AddEventSource(es *events.EventSource) error {
	if c.shutdown.Load() {
		return c.shutdownError()
	}
	if es == nil {
		return sdkerr.NewInvalidArgument("EventSource value is null.")
	}
	if es.Name() == "" {
		return sdkerr.NewInvalidArgument("EventSource name is invalid can not be null or empty.")
	}

	c.mtx.Lock()
	if c.shutdown.Load() {
		c.mtx.Unlock()
		return c.shutdownError()
	}
	for _, m := range c.eventSources {
		if m == es {
			c.mtx.Unlock()
			return nil
		}
	}
	if owner, ok := es.Bind(c.name); !ok {
		c.mtx.Unlock()
		return sdkerr.NewInvalidArgument("Can not add event source %s to channel %s because it already belongs to channel %s", es.Name(), c.name, owner)
	}
	c.eventSources = append(c.eventSources, es)
	c.mtx.Unlock()

	logger.Debugf("Added event source %s to channel %s", es.Name(), c.name)
	if c.initialized.Load() {
		c.listeners.start(es)
	}
	return nil
}

// RemovePeer removes p from the channel and releases its binding
func (c *Channel) RemovePeer(p *peer.Peer) error {
	if c.shutdown.Load() {
		return c.shutdownError()
	}
	if p == nil {
		return sdkerr.NewInvalidArgument("Peer value is null.")
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()

	for i, m := range c.peers {
		if m == p {
			c.peers = append(c.peers[:i:i], c.peers[i+1:]...)
			delete(c.peerOptions, p)
			p.Unbind(c.name)
			return nil
		}
	}
	return sdkerr.NewInvalidArgument("Channel %s does not have peer %s", c.name, p.Name())
}

// RemoveOrderer removes o from the channel and releases its binding
func (c *Channel) RemoveOrderer(o *orderer.Orderer) error {
	if c.shutdown.Load() {
		return c.shutdownError()
	}
	if o == nil {
		return sdkerr.NewInvalidArgument("Orderer value is null.")
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()

	for i, m := range c.orderers {
		if m == o {
			c.orderers = append(c.orderers[:i:i], c.orderers[i+1:]...)
			o.Unbind(c.name)
			return nil
		}
	}
	return sdkerr.NewInvalidArgument("Channel %s does not have orderer %s", c.name, o.Name())
}

// RemoveEventSource stops listening to es and removes it from the channel
func (c *Channel) RemoveEventSource(es *events.EventSource) error {
	if c.shutdown.Load() {
		return c.shutdownError()
	}
	if es == nil {
		return sdkerr.NewInvalidArgument("EventSource value is null.")
	}

	c.mtx.Lock()
	found := false
	for i, m := range c.eventSources {
		if m == es {
			c.eventSources = append(c.eventSources[:i:i], c.eventSources[i+1:]...)
			found = true
			break
		}
	}
	c.mtx.Unlock()

	if !found {
		return sdkerr.NewInvalidArgument("Channel %s does not have event source %s", c.name, es.Name())
	}
	c.listeners.stop(es)
	es.Unbind(c.name)
	return nil
}

// Peers returns the member peers in the order they were added
func (c *Channel) Peers() []*peer.Peer {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return append([]*peer.Peer(nil), c.peers...)
}

// Orderers returns the member orderers in the order they were added
func (c *Channel) Orderers() []*orderer.Orderer {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return append([]*orderer.Orderer(nil), c.orderers...)
}

// EventSources returns the member event sources in the order they were added
func (c *Channel) EventSources() []*events.EventSource {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return append([]*events.EventSource(nil), c.eventSources...)
}

// PeerOptions returns the channel settings of member p
func (c *Channel) PeerOptions(p *peer.Peer) (PeerOptions, bool) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	o, ok := c.peerOptions[p]
	return o, ok
}

// EndorsingPeers returns the members with the endorsing role
func (c *Channel) EndorsingPeers() []*peer.Peer {
	return c.peersWithRole(peer.EndorsingPeer)
}

func (c *Channel) peersWithRole(role peer.Role) []*peer.Peer {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	var peers []*peer.Peer
	for _, p := range c.peers {
		if c.peerOptions[p].Roles.Has(role) {
			peers = append(peers, p)
		}
	}
	return peers
}

func (c *Channel) isMember(p *peer.Peer) bool {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return containsPeer(c.peers, p)
}

func containsPeer(peers []*peer.Peer, p *peer.Peer) bool {
	for _, m := range peers {
		if m == p {
			return true
		}
	}
	return false
}

// checkPeers verifies that every peer is a member bound to this channel
func (c *Channel) checkPeers(peers []*peer.Peer) error {
	if peers == nil {
		return sdkerr.NewInvalidArgument("Collection of peers is null.")
	}
	if len(peers) == 0 {
		return sdkerr.NewInvalidArgument("Collection of peers is empty.")
	}
	for _, p := range peers {
		if err := c.checkPeer(p); err != nil {
			return err
		}
	}
	return nil
}

func (c *Channel) checkPeer(p *peer.Peer) error {
	if p == nil {
		return sdkerr.NewInvalidArgument("Peer value is null.")
	}
	owner := p.ChannelName()
	if !c.isMember(p) {
		if owner != "" && owner != c.name {
			return sdkerr.NewInvalidArgument("Channel %s does not have peer %s. Peer belongs to channel %s", c.name, p.Name(), owner)
		}
		return sdkerr.NewInvalidArgument("Channel %s does not have peer %s", c.name, p.Name())
	}
	if owner != c.name {
		return sdkerr.NewInvalidArgument("Peer %s not set for channel %s", p.Name(), c.name)
	}
	return nil
}

// targets returns the explicit targets of the request, or the members
// with role
func (c *Channel) targets(o requestOptions, role peer.Role) ([]fab.Endorser, error) {
	peers := o.targets
	if o.targetsSet {
		if err := c.checkPeers(peers); err != nil {
			return nil, err
		}
	} else {
		peers = c.peersWithRole(role)
		if len(peers) == 0 {
			return nil, sdkerr.NewInvalidArgument("Channel %s does not have any peers with role %s", c.name, role)
		}
	}

	endorsers := make([]fab.Endorser, len(peers))
	for i, p := range peers {
		endorsers[i] = p
	}
	return endorsers, nil
}

func shuffle(endorsers []fab.Endorser) []fab.Endorser {
	shuffled := make([]fab.Endorser, len(endorsers))
	for i, j := range rand.Perm(len(endorsers)) {
		shuffled[i] = endorsers[j]
	}
	return shuffled
}

func (c *Channel) ordererList() []fab.Orderer {
	orderers := c.Orderers()
	list := make([]fab.Orderer, len(orderers))
	for i, o := range orderers {
		list[i] = o
	}
	return list
}
