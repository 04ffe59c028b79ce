/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package comm

import (
	"context"
	"time"

	grpc_retry "github.com/grpc-ecosystem/go-grpc-middleware/retry"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/logging"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	grpcstatus "google.golang.org/grpc/status"
)

var logger = logging.NewLogger("fabsdk/fab")

const (
	// GRPC max message size (same as Fabric)
	maxCallRecvMsgSize = 100 * 1024 * 1024
	maxCallSendMsgSize = 100 * 1024 * 1024

	defaultDialTimeout = 3 * time.Second
	retryBackoff       = 100 * time.Millisecond
)

// DialOptions returns the dial options for the endpoint
func DialOptions(cfg EndpointConfig) ([]grpc.DialOption, error) {
	var opts []grpc.DialOption
	if cfg.KeepAlive.Time > 0 {
		opts = append(opts, grpc.WithKeepaliveParams(cfg.KeepAlive))
	}
	opts = append(opts, grpc.WithDefaultCallOptions(grpc.WaitForReady(!cfg.FailFast)))

	if AttemptSecured(cfg.URL, cfg.AllowInsecure) {
		tlsConfig, err := TLSConfig(cfg.TLSCACerts, cfg.ServerHostOverride)
		if err != nil {
			return nil, err
		}
		opts = append(opts, grpc.WithTransportCredentials(credentials.NewTLS(tlsConfig)))
	} else {
		opts = append(opts, grpc.WithInsecure())
	}

	opts = append(opts, grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(maxCallRecvMsgSize),
		grpc.MaxCallSendMsgSize(maxCallSendMsgSize)))

	if cfg.RetryMax > 0 {
		opts = append(opts, grpc.WithUnaryInterceptor(grpc_retry.UnaryClientInterceptor(
			grpc_retry.WithMax(cfg.RetryMax),
			grpc_retry.WithCodes(codes.Unavailable),
			grpc_retry.WithBackoff(grpc_retry.BackoffLinear(retryBackoff)),
		)))
	}
	return opts, nil
}

// Dial opens a connection to the endpoint, blocking until it is ready or
// the dial timeout expires. Dial failures are reported as a status with
// group clientGroup and code ConnectionFailed.
func Dial(ctx context.Context, cfg EndpointConfig, clientGroup status.Group, extra ...grpc.DialOption) (*grpc.ClientConn, error) {
	if cfg.URL == "" {
		return nil, errors.New("target is required")
	}

	opts, err := DialOptions(cfg)
	if err != nil {
		return nil, err
	}
	opts = append(opts, extra...)
	opts = append(opts, grpc.WithBlock())

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target := ToAddress(cfg.URL)
	logger.Debugf("dialing %s", target)

	conn, err := grpc.DialContext(ctx, target, opts...)
	if err != nil {
		if rpcStatus, ok := grpcstatus.FromError(err); ok && rpcStatus.Code() != codes.Unknown {
			return nil, errors.WithMessage(status.NewFromGRPCStatus(rpcStatus), "connection failed")
		}
		return nil, status.New(clientGroup, status.ConnectionFailed.ToInt32(), err.Error(), []interface{}{target})
	}
	return conn, nil
}

// TranslateError converts a gRPC error returned by a remote call into a
// status error of the gRPC transport group.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	if rpcStatus, ok := grpcstatus.FromError(err); ok {
		return status.NewFromGRPCStatus(rpcStatus)
	}
	return err
}
