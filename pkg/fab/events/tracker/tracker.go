/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package tracker matches submitted transactions with the commit events
// reported by event sources.
//
// Every transaction id is registered once and resolved once: by the first
// status event carrying its id, by an explicit failure, by its deadline or
// by closing the tracker. Later outcomes are ignored.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/sdkerr"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/logging"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/util/concurrent/futurevalue"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
)

var logger = logging.NewLogger("fabsdk/fab")

// Future is the pending outcome of a submitted transaction
type Future struct {
	txID  string
	value *futurevalue.Value
}

func newFuture(txID string) *Future {
	return &Future{txID: txID, value: futurevalue.New()}
}

// NewFailedFuture returns a future already rejected with err
func NewFailedFuture(txID string, err error) *Future {
	f := newFuture(txID)
	f.value.Set(nil, err)
	return f
}

// TxID returns the id of the tracked transaction
func (f *Future) TxID() string {
	return f.txID
}

// Done returns a channel that is closed once the outcome is known
func (f *Future) Done() <-chan struct{} {
	return f.value.Done()
}

// Get waits for the outcome. A commit event with a validation code other
// than VALID is returned together with a transaction error. The event is
// nil when the transaction was released without an event.
func (f *Future) Get(ctx context.Context) (*fab.TxStatusEvent, error) {
	v, err := f.value.Get(ctx)
	if err != nil {
		return nil, err
	}

	event, _ := v.(*fab.TxStatusEvent)
	if event != nil && !event.Committed() {
		return event, sdkerr.NewTransaction("Received invalid transaction event. Transaction ID %s status %s", event.TxID, event.TxValidationCode)
	}
	return event, nil
}

func (f *Future) resolve(event *fab.TxStatusEvent, err error) bool {
	return f.value.Set(event, err)
}

type registration struct {
	future *Future
	timer  *time.Timer
}

// Tracker holds the pending transactions of a channel
type Tracker struct {
	mtx           sync.Mutex
	registrations map[string]*registration
	closed        bool
	closeErr      error
}

// New returns an empty tracker
func New() *Tracker {
	return &Tracker{registrations: make(map[string]*registration)}
}

// Register starts tracking txID. A positive timeout rejects the future
// with a timeout error once it expires; the transaction itself is not
// retracted.
func (t *Tracker) Register(txID string, timeout time.Duration) (*Future, error) {
	if txID == "" {
		return nil, errors.New("transaction ID is required")
	}

	t.mtx.Lock()
	defer t.mtx.Unlock()

	if t.closed {
		return nil, errors.WithMessage(t.closeErr, "tracker is closed")
	}
	if _, ok := t.registrations[txID]; ok {
		return nil, errors.Errorf("registration already exists for TX ID [%s]", txID)
	}

	reg := &registration{future: newFuture(txID)}
	if timeout > 0 {
		reg.timer = time.AfterFunc(timeout, func() {
			t.resolve(txID, nil, sdkerr.NewTimeout("Transaction %s did not complete within %s", txID, timeout))
		})
	}
	t.registrations[txID] = reg
	logger.Debugf("registered TX ID [%s]", txID)
	return reg.future, nil
}

// PublishTxStatus resolves the registration of event.TxID, if any
func (t *Tracker) PublishTxStatus(event *fab.TxStatusEvent) bool {
	if event == nil {
		return false
	}
	return t.resolve(event.TxID, event, nil)
}

// PublishFilteredBlock publishes a status event for every transaction of the block
func (t *Tracker) PublishFilteredBlock(block *pb.FilteredBlock, sourceURL string) {
	if block == nil {
		return
	}
	for _, tx := range block.FilteredTransactions {
		t.PublishTxStatus(&fab.TxStatusEvent{
			TxID:             tx.Txid,
			TxValidationCode: tx.TxValidationCode,
			BlockNumber:      block.Number,
			SourceURL:        sourceURL,
		})
	}
}

// Release resolves txID without an event
func (t *Tracker) Release(txID string) bool {
	return t.resolve(txID, nil, nil)
}

// Fail rejects the registration of txID with err
func (t *Tracker) Fail(txID string, err error) bool {
	return t.resolve(txID, nil, err)
}

// Pending returns the number of unresolved registrations
func (t *Tracker) Pending() int {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return len(t.registrations)
}

// Close rejects every pending registration with err. Further
// registrations fail.
func (t *Tracker) Close(err error) {
	t.mtx.Lock()
	if t.closed {
		t.mtx.Unlock()
		return
	}
	t.closed = true
	t.closeErr = err
	regs := t.registrations
	t.registrations = make(map[string]*registration)
	t.mtx.Unlock()

	for txID, reg := range regs {
		stopTimer(reg)
		logger.Debugf("rejecting pending TX ID [%s]: %s", txID, err)
		reg.future.resolve(nil, err)
	}
}

func (t *Tracker) resolve(txID string, event *fab.TxStatusEvent, err error) bool {
	t.mtx.Lock()
	reg, ok := t.registrations[txID]
	if ok {
		delete(t.registrations, txID)
	}
	t.mtx.Unlock()

	if !ok {
		return false
	}
	stopTimer(reg)
	return reg.future.resolve(event, err)
}

func stopTimer(reg *registration) {
	if reg.timer != nil {
		reg.timer.Stop()
	}
}
