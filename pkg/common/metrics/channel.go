/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	kitmetrics "github.com/go-kit/kit/metrics"
)

const (
	// DefaultNamespace prefixes every channel metric
	DefaultNamespace = "fabric_channel"
	subsystem        = "client"
)

// ChannelMetrics are shared by every channel of a client. Proposal metrics
// are labeled by channel and proposal kind, the others by channel.
type ChannelMetrics struct {
	ProposalsSent         kitmetrics.Counter
	ProposalsFailed       kitmetrics.Counter
	TransactionsBroadcast kitmetrics.Counter
	TransactionsFailed    kitmetrics.Counter
	CommitTimeouts        kitmetrics.Counter
	EndorsementDuration   kitmetrics.Histogram
	CommitDuration        kitmetrics.Histogram
}

// NewChannelMetrics creates the channel metrics in namespace
func NewChannelMetrics(p Provider, namespace string) *ChannelMetrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &ChannelMetrics{
		ProposalsSent: p.NewCounter(CounterOpts{
			Namespace:  namespace,
			Subsystem:  subsystem,
			Name:       "proposals_sent",
			Help:       "The number of proposals sent to peers.",
			LabelNames: []string{"channel", "kind"},
		}),
		ProposalsFailed: p.NewCounter(CounterOpts{
			Namespace:  namespace,
			Subsystem:  subsystem,
			Name:       "proposals_failed",
			Help:       "The number of peer responses that were failures.",
			LabelNames: []string{"channel", "kind"},
		}),
		TransactionsBroadcast: p.NewCounter(CounterOpts{
			Namespace:  namespace,
			Subsystem:  subsystem,
			Name:       "transactions_broadcast",
			Help:       "The number of transactions accepted by an orderer.",
			LabelNames: []string{"channel"},
		}),
		TransactionsFailed: p.NewCounter(CounterOpts{
			Namespace:  namespace,
			Subsystem:  subsystem,
			Name:       "transactions_failed",
			Help:       "The number of transactions that no orderer accepted.",
			LabelNames: []string{"channel"},
		}),
		CommitTimeouts: p.NewCounter(CounterOpts{
			Namespace:  namespace,
			Subsystem:  subsystem,
			Name:       "commit_timeouts",
			Help:       "The number of transactions whose commit event did not arrive in time.",
			LabelNames: []string{"channel"},
		}),
		EndorsementDuration: p.NewHistogram(HistogramOpts{
			Namespace:  namespace,
			Subsystem:  subsystem,
			Name:       "endorsement_duration",
			Help:       "The time to collect endorsements in seconds.",
			Buckets:    []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			LabelNames: []string{"channel", "kind"},
		}),
		CommitDuration: p.NewHistogram(HistogramOpts{
			Namespace:  namespace,
			Subsystem:  subsystem,
			Name:       "commit_duration",
			Help:       "The time from broadcast to commit event in seconds.",
			Buckets:    []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			LabelNames: []string{"channel"},
		}),
	}
}

// NewDisabledChannelMetrics returns channel metrics that record nothing
func NewDisabledChannelMetrics() *ChannelMetrics {
	return NewChannelMetrics(&DisabledProvider{}, "")
}
