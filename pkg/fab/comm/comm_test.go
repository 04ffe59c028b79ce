/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package comm

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
)

var tlsCACert = filepath.Join("..", "..", "..", "test", "fixtures", "testdata", "msp", "tlscacerts", "tlsca.org1.example.com-cert.pem")

func TestToAddress(t *testing.T) {
	assert.Equal(t, "peer0.org1:7051", ToAddress("grpc://peer0.org1:7051"))
	assert.Equal(t, "peer0.org1:7051", ToAddress("grpcs://peer0.org1:7051"))
	assert.Equal(t, "peer0.org1:7051", ToAddress("peer0.org1:7051"))
}

func TestAttemptSecured(t *testing.T) {
	assert.True(t, AttemptSecured("grpcs://peer0:7051", true))
	assert.True(t, AttemptSecured("GRPCS://peer0:7051", true))
	assert.False(t, AttemptSecured("grpc://peer0:7051", false))
	assert.True(t, AttemptSecured("peer0:7051", false))
	assert.False(t, AttemptSecured("peer0:7051", true))
}

func TestFromGRPCOptions(t *testing.T) {
	pem, err := os.ReadFile(tlsCACert)
	require.NoError(t, err)

	cfg, err := FromGRPCOptions("grpcs://peer0.org1:7051", pem, map[string]interface{}{
		"ssl-target-name-override": "peer0.org1.example.com",
		"keep-alive-time":          "20s",
		"keep-alive-timeout":       "5s",
		"keep-alive-permit":        false,
		"fail-fast":                "true",
		"allow-insecure":           false,
		"retry-max":                3,
	})
	require.NoError(t, err)
	assert.Equal(t, "peer0.org1.example.com", cfg.ServerHostOverride)
	assert.Equal(t, 20*time.Second, cfg.KeepAlive.Time)
	assert.Equal(t, 5*time.Second, cfg.KeepAlive.Timeout)
	assert.True(t, cfg.FailFast)
	assert.EqualValues(t, 3, cfg.RetryMax)
	require.Len(t, cfg.TLSCACerts, 1)
	assert.Equal(t, "tlsca.org1.example.com", cfg.TLSCACerts[0].Subject.CommonName)

	_, err = FromGRPCOptions("grpcs://peer0.org1:7051", []byte("garbage"), nil)
	assert.Error(t, err)
}

func TestDialOptions(t *testing.T) {
	opts, err := DialOptions(EndpointConfig{URL: "grpc://localhost:7051", RetryMax: 2})
	require.NoError(t, err)
	assert.Len(t, opts, 4)

	opts, err = DialOptions(EndpointConfig{URL: "grpcs://localhost:7051"})
	require.NoError(t, err)
	assert.Len(t, opts, 3)
}

func TestDial(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := grpc.NewServer()
	go srv.Serve(lis)
	defer srv.Stop()

	conn, err := Dial(context.Background(), EndpointConfig{URL: "grpc://" + lis.Addr().String()}, status.EndorserClientStatus)
	require.NoError(t, err)
	conn.Close()

	_, err = Dial(context.Background(), EndpointConfig{}, status.EndorserClientStatus)
	assert.EqualError(t, err, "target is required")
}

func TestDialFailure(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	lis.Close()

	_, err = Dial(context.Background(), EndpointConfig{URL: "grpc://" + addr, DialTimeout: 100 * time.Millisecond}, status.OrdererClientStatus)
	require.Error(t, err)
	s, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, status.OrdererClientStatus, s.Group)
	assert.EqualValues(t, status.ConnectionFailed, s.Code)
}

func TestTranslateError(t *testing.T) {
	assert.Nil(t, TranslateError(nil))

	err := TranslateError(grpcstatus.Error(codes.Aborted, "stream aborted"))
	s, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, status.GRPCTransportStatus, s.Group)
	assert.Contains(t, err.Error(), "Aborted")
}
