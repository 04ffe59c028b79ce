/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package fabricclient

import (
	"sort"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/core/config"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/channel"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/events"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/orderer"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/peer"
	"github.com/pkg/errors"
)

// LoadChannel creates the configured channel called name together with
// its orderers, peers and event sources. The channel still has to be
// initialized.
func (c *Client) LoadChannel(name string, opts ...channel.Option) (*channel.Channel, error) {
	if c.config == nil {
		return nil, errors.New("client has no configuration")
	}
	chCfg, ok := c.config.Channel(name)
	if !ok {
		return nil, errors.Errorf("channel %s is not configured", name)
	}

	ch, err := c.NewChannel(name, opts...)
	if err != nil {
		return nil, err
	}

	if err := c.addMembers(ch, chCfg); err != nil {
		ch.Shutdown(true)
		return nil, errors.WithMessagef(err, "loading channel %s failed", name)
	}

	logger.Debugf("Loaded channel %s with %d peers, %d orderers and %d event sources",
		name, len(ch.Peers()), len(ch.Orderers()), len(ch.EventSources()))
	return ch, nil
}

func (c *Client) addMembers(ch *channel.Channel, chCfg config.ChannelConfig) error {
	for _, name := range chCfg.Orderers {
		nodeCfg, _ := c.config.Orderer(name)
		endpoint, err := nodeCfg.Endpoint(c.dialTimeout())
		if err != nil {
			return err
		}
		o, err := orderer.New(orderer.WithName(name), orderer.WithEndpointConfig(endpoint))
		if err != nil {
			return err
		}
		if err := ch.AddOrderer(o); err != nil {
			return err
		}
	}

	// sorted so that the peer order of the channel does not depend on map order
	peerNames := make([]string, 0, len(chCfg.Peers))
	for name := range chCfg.Peers {
		peerNames = append(peerNames, name)
	}
	sort.Strings(peerNames)

	for _, name := range peerNames {
		peerCfg, _ := c.config.Peer(name)
		endpoint, err := peerCfg.Endpoint(c.dialTimeout())
		if err != nil {
			return err
		}
		p, err := peer.New(peer.WithName(name), peer.WithEndpointConfig(endpoint), peer.WithMSPID(peerCfg.MSPID))
		if err != nil {
			return err
		}
		if err := ch.AddPeer(p, channel.WithPeerRoles(peerRoles(chCfg.Peers[name]))); err != nil {
			return err
		}
	}

	for _, name := range chCfg.EventSources {
		nodeCfg, _ := c.config.EventSource(name)
		endpoint, err := nodeCfg.Endpoint(c.dialTimeout())
		if err != nil {
			return err
		}
		es, err := events.New(events.WithName(name), events.WithEndpointConfig(endpoint))
		if err != nil {
			return err
		}
		if err := ch.AddEventSource(es); err != nil {
			return err
		}
	}
	return nil
}

// peerRoles converts the role flags of a channel peer; unset flags count as set
func peerRoles(cfg config.ChannelPeerConfig) peer.Role {
	var roles peer.Role
	flags := []struct {
		flag *bool
		role peer.Role
	}{
		{cfg.EndorsingPeer, peer.EndorsingPeer},
		{cfg.ChaincodeQuery, peer.ChaincodeQuery},
		{cfg.LedgerQuery, peer.LedgerQuery},
		{cfg.EventSource, peer.EventSource},
	}
	for _, f := range flags {
		if f.flag == nil || *f.flag {
			roles |= f.role
		}
	}
	return roles
}
