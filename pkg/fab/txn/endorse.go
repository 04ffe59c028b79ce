/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package txn

import (
	reqContext "context"
	"fmt"
	"sync"
	"time"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/multi"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/sdkerr"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/providers/fab"
	"github.com/pkg/errors"
)

// EndorsementResult is the outcome of sending a proposal to one endorser.
// Response may be set together with Err when the endorser answered with an
// error status.
type EndorsementResult struct {
	Target   fab.Endorser
	Endorser string
	Response *fab.TransactionProposalResponse
	Err      error
}

// Succeeded reports whether the endorser answered with a successful response
func (r *EndorsementResult) Succeeded() bool {
	return r.Err == nil && r.Response != nil
}

// EndorsementResults holds one result per dispatched endorser, in target order
type EndorsementResults []*EndorsementResult

// Successful returns the results of endorsers that answered successfully
func (rs EndorsementResults) Successful() EndorsementResults {
	var ok EndorsementResults
	for _, r := range rs {
		if r.Succeeded() {
			ok = append(ok, r)
		}
	}
	return ok
}

// Failed returns the results of endorsers that failed
func (rs EndorsementResults) Failed() EndorsementResults {
	var failed EndorsementResults
	for _, r := range rs {
		if !r.Succeeded() {
			failed = append(failed, r)
		}
	}
	return failed
}

// AllSucceeded reports whether every endorser answered successfully
func (rs EndorsementResults) AllSucceeded() bool {
	return len(rs) > 0 && len(rs.Failed()) == 0
}

// Responses returns the successful proposal responses
func (rs EndorsementResults) Responses() []*fab.TransactionProposalResponse {
	var responses []*fab.TransactionProposalResponse
	for _, r := range rs.Successful() {
		responses = append(responses, r.Response)
	}
	return responses
}

// Error aggregates the errors of the failed endorsers
func (rs EndorsementResults) Error() error {
	var errs multi.Errors
	for _, r := range rs.Failed() {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs.ToError()
}

type sendOptions struct {
	responseTimeout time.Duration
}

// SendOption configures SendProposal
type SendOption func(*sendOptions)

// WithResponseTimeout bounds the time each endorser gets to answer
func WithResponseTimeout(timeout time.Duration) SendOption {
	return func(o *sendOptions) {
		o.responseTimeout = timeout
	}
}

// SendProposal signs the proposal once and sends it to every target
// concurrently. Each target gets its own result; failures are reported as
// proposal errors carrying the original message. A fatal error raised by
// any target, including a recovered panic, is returned as the error of the
// call.
func SendProposal(reqCtx reqContext.Context, signer fab.SigningIdentity, proposal *fab.TransactionProposal, targets []fab.Endorser, opts ...SendOption) (EndorsementResults, error) {
	if proposal == nil {
		return nil, errors.New("proposal is required")
	}
	if len(targets) < 1 {
		return nil, errors.New("targets is required")
	}
	for _, p := range targets {
		if p == nil {
			return nil, errors.New("target is nil")
		}
	}

	options := sendOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	targets = getTargetsWithoutDuplicates(targets)

	signedProposal, err := SignProposal(signer, proposal.Proposal)
	if err != nil {
		return nil, errors.WithMessage(err, "sign proposal failed")
	}
	request := fab.ProcessProposalRequest{SignedProposal: signedProposal}

	results := make(EndorsementResults, len(targets))
	var fatalMtx sync.Mutex
	var fatal error
	var wg sync.WaitGroup

	for i, p := range targets {
		wg.Add(1)
		go func(i int, processor fab.Endorser) {
			defer wg.Done()

			result, err := processProposal(reqCtx, processor, request, options.responseTimeout)
			if err != nil {
				fatalMtx.Lock()
				if fatal == nil {
					fatal = err
				}
				fatalMtx.Unlock()
			}
			results[i] = result
		}(i, p)
	}
	wg.Wait()

	if fatal != nil {
		return results, fatal
	}
	return results, nil
}

// processProposal returns a fatal error separately from the result
func processProposal(reqCtx reqContext.Context, processor fab.Endorser, request fab.ProcessProposalRequest, timeout time.Duration) (result *EndorsementResult, fatal error) {
	result = &EndorsementResult{Target: processor, Endorser: processor.URL()}

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("recovered from panic while sending proposal to %s: %v", processor.URL(), r)
			fatal = sdkerr.NewFatal(status.New(status.EndorserClientStatus, status.PanicRecovered.ToInt32(), fmt.Sprint(r), []interface{}{processor.URL()}))
			result.Err = fatal
		}
	}()

	ctx := reqCtx
	if timeout > 0 {
		var cancel reqContext.CancelFunc
		ctx, cancel = reqContext.WithTimeout(reqCtx, timeout)
		defer cancel()
	}

	resp, err := processor.ProcessTransactionProposal(ctx, request)
	if err != nil {
		logger.Debugf("Received error response from txn proposal processing: %s", err)
		if sdkerr.IsFatal(err) {
			result.Err = err
			return result, err
		}
		result.Response = resp
		result.Err = sdkerr.WrapProposal(err, "Sending proposal to %s failed", nameOf(processor))
		return result, nil
	}
	if resp == nil {
		result.Err = sdkerr.NewProposal("Sending proposal to %s failed: empty response", nameOf(processor))
		return result, nil
	}

	result.Response = resp
	return result, nil
}

func nameOf(e fab.Endorser) string {
	if e.Name() != "" {
		return e.Name()
	}
	return e.URL()
}

// getTargetsWithoutDuplicates drops repeated targets. Distinct targets
// sharing a URL are kept, each gets its own result.
func getTargetsWithoutDuplicates(targets []fab.Endorser) []fab.Endorser {
	seen := map[fab.Endorser]struct{}{}
	var uniqueTargets []fab.Endorser

	for _, t := range targets {
		if _, present := seen[t]; !present {
			uniqueTargets = append(uniqueTargets, t)
			seen[t] = struct{}{}
		}
	}

	if len(uniqueTargets) != len(targets) {
		logger.Debugf("Dropped %d repeated target peers", len(targets)-len(uniqueTargets))
	}

	return uniqueTargets
}
