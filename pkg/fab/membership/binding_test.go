/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package membership

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBind(t *testing.T) {
	var b Binding
	assert.Equal(t, "", b.ChannelName())

	owner, ok := b.Bind("channel1")
	assert.True(t, ok)
	assert.Equal(t, "channel1", owner)

	// rebinding to the same channel is a no-op
	_, ok = b.Bind("channel1")
	assert.True(t, ok)

	owner, ok = b.Bind("channel2")
	assert.False(t, ok)
	assert.Equal(t, "channel1", owner)

	assert.False(t, b.Unbind("channel2"))
	assert.True(t, b.Unbind("channel1"))
	assert.Equal(t, "", b.ChannelName())

	_, ok = b.Bind("channel2")
	assert.True(t, ok)
}

func TestConcurrentBindHasOneWinner(t *testing.T) {
	var b Binding
	var wins int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, ok := b.Bind(string(rune('a' + i))); ok {
				atomic.AddInt32(&wins, 1)
			}
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, wins)
}
