/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package channel

import (
	reqContext "context"
	"sync"
	"time"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/events"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/events/seek"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/txn"
)

// listeners runs one filtered block subscription per event source and
// feeds the blocks into the commit tracker
type listeners struct {
	channel *Channel

	ctx    reqContext.Context
	cancel reqContext.CancelFunc
	wg     sync.WaitGroup

	mtx     sync.Mutex
	running map[*events.EventSource]reqContext.CancelFunc
}

func newListeners(c *Channel) *listeners {
	ctx, cancel := reqContext.WithCancel(reqContext.Background())
	return &listeners{
		channel: c,
		ctx:     ctx,
		cancel:  cancel,
		running: make(map[*events.EventSource]reqContext.CancelFunc),
	}
}

func (l *listeners) start(es *events.EventSource) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if l.ctx.Err() != nil {
		return
	}
	if _, ok := l.running[es]; ok {
		return
	}

	ctx, cancel := reqContext.WithCancel(l.ctx)
	l.running[es] = cancel

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.listen(ctx, es)
	}()
}

func (l *listeners) stop(es *events.EventSource) {
	l.mtx.Lock()
	cancel, ok := l.running[es]
	delete(l.running, es)
	l.mtx.Unlock()

	if ok {
		cancel()
	}
}

func (l *listeners) stopAll() {
	l.mtx.Lock()
	l.cancel()
	l.running = make(map[*events.EventSource]reqContext.CancelFunc)
	l.mtx.Unlock()

	l.wg.Wait()
}

// listen reopens the stream of es until ctx is done
func (l *listeners) listen(ctx reqContext.Context, es *events.EventSource) {
	c := l.channel
	for {
		err := l.subscribe(ctx, es)
		if ctx.Err() != nil {
			logger.Debugf("Stopped listening to event source %s on channel %s", es.Name(), c.name)
			return
		}
		if err != nil {
			logger.Warnf("Event stream from %s on channel %s failed: %s", es.Name(), c.name, err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.opts.eventReconnectDelay):
			logger.Debugf("Reconnecting to event source %s on channel %s", es.Name(), c.name)
		}
	}
}

func (l *listeners) subscribe(ctx reqContext.Context, es *events.EventSource) error {
	c := l.channel
	envelope, err := txn.CreateSeekEnvelope(c.signer(), c.name, seek.InfoNewest())
	if err != nil {
		return err
	}
	return es.Listen(ctx, envelope, c.tracker.PublishFilteredBlock)
}
