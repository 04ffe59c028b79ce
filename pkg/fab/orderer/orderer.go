/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package orderer

import (
	reqContext "context"
	"crypto/x509"
	"io"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/multi"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/logging"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/comm"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/membership"
	"github.com/hyperledger/fabric-protos-go/common"
	ab "github.com/hyperledger/fabric-protos-go/orderer"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
)

var logger = logging.NewLogger("fabsdk/fab")

// Orderer allows a client to broadcast a transaction.
type Orderer struct {
	membership.Binding
	name     string
	url      string
	endpoint comm.EndpointConfig
	client   fab.OrdererClient
}

// Option describes a functional parameter for the New constructor
type Option func(*Orderer) error

// New Returns a Orderer instance
func New(opts ...Option) (*Orderer, error) {
	orderer := &Orderer{}

	for _, opt := range opts {
		if err := opt(orderer); err != nil {
			return nil, err
		}
	}
	orderer.endpoint.URL = orderer.url

	if orderer.client == nil && orderer.url != "" {
		orderer.client = &grpcClient{endpoint: orderer.endpoint}
	}
	return orderer, nil
}

// WithName is a functional option for the orderer.New constructor that configures the orderer's name.
func WithName(name string) Option {
	return func(o *Orderer) error {
		o.name = name
		return nil
	}
}

// WithURL is a functional option for the orderer.New constructor that configures the orderer's URL.
func WithURL(url string) Option {
	return func(o *Orderer) error {
		o.url = url
		return nil
	}
}

// WithEndpointConfig is a functional option for the orderer.New constructor
// that configures the connection settings of the orderer.
func WithEndpointConfig(cfg comm.EndpointConfig) Option {
	return func(o *Orderer) error {
		o.endpoint = cfg
		if cfg.URL != "" {
			o.url = cfg.URL
		}
		return nil
	}
}

// WithTLSCert is a functional option for the orderer.New constructor that configures the orderer's TLS certificate
func WithTLSCert(tlsCACert *x509.Certificate) Option {
	return func(o *Orderer) error {
		if tlsCACert != nil {
			o.endpoint.TLSCACerts = append(o.endpoint.TLSCACerts, tlsCACert)
		}
		return nil
	}
}

// WithServerName is a functional option for the orderer.New constructor that configures the orderer's server name
func WithServerName(serverName string) Option {
	return func(o *Orderer) error {
		o.endpoint.ServerHostOverride = serverName
		return nil
	}
}

// WithInsecure is a functional option for the orderer.New constructor that configures the orderer's grpc insecure option
func WithInsecure() Option {
	return func(o *Orderer) error {
		o.endpoint.AllowInsecure = true
		return nil
	}
}

// WithOrdererClient replaces the gRPC client of the orderer
func WithOrdererClient(client fab.OrdererClient) Option {
	return func(o *Orderer) error {
		o.client = client
		return nil
	}
}

// Name returns the orderer name
func (o *Orderer) Name() string {
	return o.name
}

// URL Get the Orderer url. Required property for the instance objects.
func (o *Orderer) URL() string {
	return o.url
}

func (o *Orderer) String() string {
	if o.name == "" {
		return o.url
	}
	return o.name
}

// SendBroadcast Send the created transaction to Orderer.
func (o *Orderer) SendBroadcast(ctx reqContext.Context, envelope *fab.SignedEnvelope) (*common.Status, error) {
	if o.client == nil {
		return nil, status.New(status.OrdererClientStatus, status.ConnectionFailed.ToInt32(), "orderer "+o.String()+" has no endpoint", nil)
	}
	return o.client.SendBroadcast(ctx, envelope)
}

// SendDeliver sends a deliver request to the ordering service and returns the
// blocks requested
// envelope: contains the seek request for blocks
func (o *Orderer) SendDeliver(ctx reqContext.Context, envelope *fab.SignedEnvelope) (chan *common.Block, chan error) {
	if o.client == nil {
		responses := make(chan *common.Block)
		errs := make(chan error, 1)
		errs <- status.New(status.OrdererClientStatus, status.ConnectionFailed.ToInt32(), "orderer "+o.String()+" has no endpoint", nil)
		close(responses)
		return responses, errs
	}
	return o.client.SendDeliver(ctx, envelope)
}

// Close releases the client of the orderer
func (o *Orderer) Close() {
	if o.client != nil {
		o.client.Close()
	}
}

// grpcClient opens a connection per request and releases it when the
// stream ends
type grpcClient struct {
	endpoint comm.EndpointConfig
}

func (c *grpcClient) conn(ctx reqContext.Context) (*grpc.ClientConn, error) {
	return comm.Dial(ctx, c.endpoint, status.OrdererClientStatus)
}

func releaseConn(conn *grpc.ClientConn) {
	if err := conn.Close(); err != nil {
		logger.Debugf("unable to close connection [%s]", err)
	}
}

func (c *grpcClient) SendBroadcast(ctx reqContext.Context, envelope *fab.SignedEnvelope) (*common.Status, error) {
	conn, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer releaseConn(conn)

	broadcastClient, err := ab.NewAtomicBroadcastClient(conn).Broadcast(ctx)
	if err != nil {
		return nil, errors.Wrap(comm.TranslateError(err), "NewAtomicBroadcastClient failed")
	}

	responses := make(chan common.Status)
	errs := make(chan error, 1)

	go broadcastStream(broadcastClient, responses, errs)

	err = broadcastClient.Send(&common.Envelope{
		Payload:   envelope.Payload,
		Signature: envelope.Signature,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to send envelope to orderer")
	}
	if err = broadcastClient.CloseSend(); err != nil {
		logger.Debugf("unable to close broadcast client [%s]", err)
	}

	return wrapStreamStatusRPC(responses, errs)
}

func (c *grpcClient) SendDeliver(ctx reqContext.Context, envelope *fab.SignedEnvelope) (chan *common.Block, chan error) {
	responses := make(chan *common.Block)
	errs := make(chan error, 1)

	conn, err := c.conn(ctx)
	if err != nil {
		errs <- err
		close(responses)
		return responses, errs
	}

	deliverClient, err := ab.NewAtomicBroadcastClient(conn).Deliver(ctx)
	if err != nil {
		logger.Errorf("deliver failed [%s]", err)
		releaseConn(conn)

		errs <- errors.Wrap(comm.TranslateError(err), "deliver failed")
		close(responses)
		return responses, errs
	}

	go func() {
		blockStream(ctx, deliverClient, responses, errs)
		releaseConn(conn)
	}()

	logger.Debug("Requesting blocks from ordering service")
	err = deliverClient.Send(&common.Envelope{
		Payload:   envelope.Payload,
		Signature: envelope.Signature,
	})
	if err != nil {
		logger.Warnf("failed to send block request to orderer [%s]", err)
	}
	if err = deliverClient.CloseSend(); err != nil {
		logger.Debugf("unable to close deliver client [%s]", err)
	}

	return responses, errs
}

// Close is a no-op; connections live for a single request
func (c *grpcClient) Close() {}

// wrapStreamStatusRPC returns the last response and err and blocks until the chan is closed.
func wrapStreamStatusRPC(responses chan common.Status, errs chan error) (*common.Status, error) {
	var status common.Status
	var err multi.Errors

read:
	for {
		select {
		case s, ok := <-responses:
			if !ok {
				break read
			}
			status = s
		case e := <-errs:
			err = append(err, e)
		}
	}

	// drain remaining errors.
	for i := 0; i < len(errs); i++ {
		e := <-errs
		err = append(err, e)
	}

	return &status, err.ToError()
}

func broadcastStream(broadcastClient ab.AtomicBroadcast_BroadcastClient, responses chan common.Status, errs chan error) {
	defer close(responses)
	for {
		broadcastResponse, err := broadcastClient.Recv()
		if err == io.EOF {
			return
		}
		if err != nil {
			errs <- errors.Wrap(comm.TranslateError(err), "broadcast recv failed")
			return
		}

		if broadcastResponse.Status == common.Status_SUCCESS {
			responses <- broadcastResponse.Status
		} else {
			errs <- status.New(status.OrdererServerStatus, int32(broadcastResponse.Status), broadcastResponse.Info, nil)
		}
	}
}

func blockStream(ctx reqContext.Context, deliverClient ab.AtomicBroadcast_DeliverClient, responses chan *common.Block, errs chan error) {
	defer close(responses)
	for {
		response, err := deliverClient.Recv()
		if err == io.EOF {
			return
		}
		if err != nil {
			errs <- errors.Wrap(comm.TranslateError(err), "recv from ordering service failed")
			return
		}

		switch t := response.Type.(type) {
		// Seek operation success, no more responses
		case *ab.DeliverResponse_Status:
			logger.Debugf("Received deliver response status from ordering service: %s", t.Status)
			if t.Status != common.Status_SUCCESS {
				errs <- status.New(status.OrdererServerStatus, int32(t.Status), "error status from ordering service", []interface{}{})
			}
			return
		case *ab.DeliverResponse_Block:
			logger.Debug("Received block from ordering service")
			select {
			case responses <- response.GetBlock():
			case <-ctx.Done():
				return
			}
		default:
			logger.Infof("unknown response type from ordering service %T", t)
		}
	}
}
