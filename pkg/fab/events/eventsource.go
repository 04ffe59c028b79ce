/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package events connects a channel to the block event services of its
// peers. Each EventSource streams filtered blocks that carry the
// validation result of every transaction.
package events

import (
	reqContext "context"
	"crypto/x509"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/logging"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/comm"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/membership"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
)

var logger = logging.NewLogger("fabsdk/fab")

// BlockHandler receives every filtered block delivered by an event source
type BlockHandler func(block *pb.FilteredBlock, sourceURL string)

// EventSource is a peer endpoint delivering block events
type EventSource struct {
	membership.Binding
	name     string
	url      string
	endpoint comm.EndpointConfig
	client   fab.EventClient
}

// Option describes a functional parameter for the New constructor
type Option func(*EventSource) error

// New returns an event source
func New(opts ...Option) (*EventSource, error) {
	es := &EventSource{}
	for _, opt := range opts {
		if err := opt(es); err != nil {
			return nil, err
		}
	}
	es.endpoint.URL = es.url

	if es.client == nil && es.url != "" {
		es.client = &deliverClient{endpoint: es.endpoint}
	}
	return es, nil
}

// WithName sets the event source name
func WithName(name string) Option {
	return func(es *EventSource) error {
		es.name = name
		return nil
	}
}

// WithURL sets the event source URL
func WithURL(url string) Option {
	return func(es *EventSource) error {
		es.url = url
		return nil
	}
}

// WithEndpointConfig sets the connection settings
func WithEndpointConfig(cfg comm.EndpointConfig) Option {
	return func(es *EventSource) error {
		es.endpoint = cfg
		if cfg.URL != "" {
			es.url = cfg.URL
		}
		return nil
	}
}

// WithTLSCert adds a trusted TLS root
func WithTLSCert(certificate *x509.Certificate) Option {
	return func(es *EventSource) error {
		if certificate != nil {
			es.endpoint.TLSCACerts = append(es.endpoint.TLSCACerts, certificate)
		}
		return nil
	}
}

// WithServerName overrides the TLS server name
func WithServerName(serverName string) Option {
	return func(es *EventSource) error {
		es.endpoint.ServerHostOverride = serverName
		return nil
	}
}

// WithInsecure allows plain text connections for URLs without protocol
func WithInsecure() Option {
	return func(es *EventSource) error {
		es.endpoint.AllowInsecure = true
		return nil
	}
}

// WithEventClient replaces the gRPC client
func WithEventClient(client fab.EventClient) Option {
	return func(es *EventSource) error {
		es.client = client
		return nil
	}
}

// Name returns the event source name
func (es *EventSource) Name() string {
	return es.name
}

// URL returns the event source URL
func (es *EventSource) URL() string {
	return es.url
}

func (es *EventSource) String() string {
	if es.name == "" {
		return es.url
	}
	return es.name
}

// Listen subscribes with the signed seek envelope and passes every
// filtered block to handler. It blocks until ctx is done, returning nil,
// or until the stream fails.
func (es *EventSource) Listen(ctx reqContext.Context, seekEnvelope *fab.SignedEnvelope, handler BlockHandler) error {
	if es.client == nil {
		return status.New(status.ClientStatus, status.ConnectionFailed.ToInt32(), "event source "+es.String()+" has no endpoint", nil)
	}

	logger.Debugf("subscribing to filtered blocks of %s", es)
	blocks, errs := es.client.DeliverFiltered(ctx, seekEnvelope)
	for {
		select {
		case block, ok := <-blocks:
			if !ok {
				return streamError(ctx, errs)
			}
			handler(block, es.url)
		case err, ok := <-errs:
			if ok && err != nil {
				return errors.WithMessagef(err, "event stream of %s failed", es)
			}
			errs = nil
		}
	}
}

// Close releases the client
func (es *EventSource) Close() {
	if es.client != nil {
		es.client.Close()
	}
}

func streamError(ctx reqContext.Context, errs <-chan error) error {
	var err error
	if errs != nil {
		err = <-errs
	}
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return err
	}
	return errors.New("event stream closed")
}
