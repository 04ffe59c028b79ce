/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package metrics creates the counters and histograms recorded by channels.
// Values are go-kit metrics backed either by Prometheus vectors or by
// discarding implementations.
package metrics

import (
	kitmetrics "github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	prom "github.com/prometheus/client_golang/prometheus"
)

// CounterOpts describes a counter
type CounterOpts struct {
	Namespace  string
	Subsystem  string
	Name       string
	Help       string
	LabelNames []string
}

// HistogramOpts describes a histogram
type HistogramOpts struct {
	Namespace  string
	Subsystem  string
	Name       string
	Help       string
	Buckets    []float64
	LabelNames []string
}

// Provider creates metrics
type Provider interface {
	NewCounter(opts CounterOpts) kitmetrics.Counter
	NewHistogram(opts HistogramOpts) kitmetrics.Histogram
}

// PrometheusProvider registers a vector per metric on its registerer.
// Registering the same metric twice returns the vector registered first.
type PrometheusProvider struct {
	Registerer prom.Registerer
}

// NewPrometheusProvider returns a provider registering on r
func NewPrometheusProvider(r prom.Registerer) *PrometheusProvider {
	return &PrometheusProvider{Registerer: r}
}

// NewCounter creates a counter vector
func (p *PrometheusProvider) NewCounter(o CounterOpts) kitmetrics.Counter {
	cv := prom.NewCounterVec(prom.CounterOpts{
		Namespace: o.Namespace,
		Subsystem: o.Subsystem,
		Name:      o.Name,
		Help:      o.Help,
	}, o.LabelNames)

	if existing := p.register(cv); existing != nil {
		cv = existing.(*prom.CounterVec)
	}
	return kitprometheus.NewCounter(cv)
}

// NewHistogram creates a histogram vector
func (p *PrometheusProvider) NewHistogram(o HistogramOpts) kitmetrics.Histogram {
	hv := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: o.Namespace,
		Subsystem: o.Subsystem,
		Name:      o.Name,
		Help:      o.Help,
		Buckets:   o.Buckets,
	}, o.LabelNames)

	if existing := p.register(hv); existing != nil {
		hv = existing.(*prom.HistogramVec)
	}
	return kitprometheus.NewHistogram(hv)
}

func (p *PrometheusProvider) register(c prom.Collector) prom.Collector {
	err := p.Registerer.Register(c)
	if err == nil {
		return nil
	}
	if are, ok := err.(prom.AlreadyRegisteredError); ok {
		return are.ExistingCollector
	}
	panic(err)
}

// DisabledProvider creates metrics that record nothing
type DisabledProvider struct{}

// NewCounter returns a discarding counter
func (p *DisabledProvider) NewCounter(CounterOpts) kitmetrics.Counter {
	return discard.NewCounter()
}

// NewHistogram returns a discarding histogram
func (p *DisabledProvider) NewHistogram(HistogramOpts) kitmetrics.Histogram {
	return discard.NewHistogram()
}
