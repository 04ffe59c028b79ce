/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package membership records which channel a node currently belongs to.
package membership

import "sync"

// Binding is the channel back-reference of a peer, orderer or event
// source. It holds the channel name only; a node belongs to at most one
// channel at a time.
type Binding struct {
	mtx     sync.Mutex
	channel string
}

// Bind binds the node to channel. It succeeds when the node is unbound or
// already bound to channel; otherwise it fails and returns the owning channel.
func (b *Binding) Bind(channel string) (owner string, ok bool) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if b.channel != "" && b.channel != channel {
		return b.channel, false
	}
	b.channel = channel
	return channel, true
}

// Unbind clears the binding if the node is bound to channel
func (b *Binding) Unbind(channel string) bool {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if b.channel != channel {
		return false
	}
	b.channel = ""
	return true
}

// ChannelName returns the name of the owning channel, or "" when unbound
func (b *Binding) ChannelName() string {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.channel
}

// Bound is implemented by every node that can join a channel
type Bound interface {
	Bind(channel string) (owner string, ok bool)
	Unbind(channel string) bool
	ChannelName() string
}
