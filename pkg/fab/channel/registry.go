/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package channel

import (
	"sort"
	"sync"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/sdkerr"
)

// Registry maps channel names to channels. Names are unique within a
// registry; a channel leaves its registry when it is shut down.
type Registry struct {
	mtx      sync.RWMutex
	channels map[string]*Channel
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{channels: make(map[string]*Channel)}
}

// NewChannel creates a channel registered in r
func (r *Registry) NewChannel(name string, client Client, opts ...Option) (*Channel, error) {
	return New(name, client, append(opts, WithRegistry(r))...)
}

// Get returns the channel called name
func (r *Registry) Get(name string) (*Channel, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	ch, ok := r.channels[name]
	return ch, ok
}

// Names returns the sorted names of the registered channels
func (r *Registry) Names() []string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	names := make([]string, 0, len(r.channels))
	for name := range r.channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Channels returns the registered channels
func (r *Registry) Channels() []*Channel {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	channels := make([]*Channel, 0, len(r.channels))
	for _, ch := range r.channels {
		channels = append(channels, ch)
	}
	return channels
}

// Shutdown shuts down every registered channel
func (r *Registry) Shutdown(force bool) {
	for _, ch := range r.Channels() {
		ch.Shutdown(force)
	}
}

func (r *Registry) register(ch *Channel) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if _, ok := r.channels[ch.name]; ok {
		return sdkerr.NewInvalidArgument("Channel by the name %s already exists", ch.name)
	}
	r.channels[ch.name] = ch
	return nil
}

func (r *Registry) remove(ch *Channel) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.channels[ch.name] == ch {
		delete(r.channels, ch.name)
	}
}
