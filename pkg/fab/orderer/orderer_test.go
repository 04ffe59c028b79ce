/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package orderer

import (
	reqContext "context"
	"os"
	"testing"
	"time"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/comm"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/mocks"
	"github.com/hyperledger/fabric-protos-go/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpccodes "google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
)

const testOrdererURL = "127.0.0.1:0"

var ordererAddr string

func TestMain(m *testing.M) {
	srv := &mocks.MockBroadcastServer{Blocks: []*common.Block{mocks.NewBlock("mychannel", 0)}}
	ordererAddr = srv.Start(testOrdererURL)
	code := m.Run()
	srv.Stop()
	os.Exit(code)
}

func newTestOrderer(t *testing.T, addr string) *Orderer {
	o, err := New(WithName("orderer1"), WithEndpointConfig(comm.EndpointConfig{URL: "grpc://" + addr, DialTimeout: 2 * time.Second}))
	if err != nil {
		t.Fatalf("Orderer create failed: %s", err)
	}
	return o
}

func startCustomizedMockServer(t *testing.T, srv *mocks.MockBroadcastServer) string {
	addr := srv.Start(testOrdererURL)
	t.Cleanup(srv.Stop)
	return addr
}

func TestSendDeliverHappy(t *testing.T) {
	orderer := newTestOrderer(t, ordererAddr)
	ctx, cancel := reqContext.WithTimeout(reqContext.Background(), 15*time.Second)
	defer cancel()

	blocks, errs := orderer.SendDeliver(ctx, &fab.SignedEnvelope{})

	var received []*common.Block
	for block := range blocks {
		received = append(received, block)
	}
	select {
	case err := <-errs:
		t.Fatalf("Did not expect error from SendDeliver %s", err)
	default:
	}
	require.Len(t, received, 1)
	assert.EqualValues(t, 0, received[0].Header.Number)
}

func TestSendDeliverErr(t *testing.T) {
	addr := startCustomizedMockServer(t, &mocks.MockBroadcastServer{DeliverError: grpcstatus.New(grpccodes.PermissionDenied, "forbidden").Err()})
	orderer := newTestOrderer(t, addr)

	blocks, errs := orderer.SendDeliver(reqContext.Background(), &fab.SignedEnvelope{})
	for range blocks {
		t.Fatal("Expected no blocks")
	}

	err := <-errs
	require.Error(t, err)
	s, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, status.GRPCTransportStatus, s.Group)
	assert.EqualValues(t, grpccodes.PermissionDenied, s.Code)
}

func TestSendBroadcastHappy(t *testing.T) {
	orderer := newTestOrderer(t, ordererAddr)

	s, err := orderer.SendBroadcast(reqContext.Background(), &fab.SignedEnvelope{})
	require.NoError(t, err)
	assert.Equal(t, common.Status_SUCCESS, *s)
}

func TestSendBroadcastServerBadResponse(t *testing.T) {
	addr := startCustomizedMockServer(t, &mocks.MockBroadcastServer{BroadcastInternalServerError: true})
	orderer := newTestOrderer(t, addr)

	_, err := orderer.SendBroadcast(reqContext.Background(), &fab.SignedEnvelope{})
	require.Error(t, err)

	s, ok := status.FromError(err)
	require.True(t, ok, "expected status error")
	assert.Equal(t, status.OrdererServerStatus, s.Group)
	assert.EqualValues(t, common.Status_INTERNAL_SERVER_ERROR, s.Code)
	assert.Equal(t, "internal error", s.Message)
}

func TestSendBroadcastError(t *testing.T) {
	addr := startCustomizedMockServer(t, &mocks.MockBroadcastServer{BroadcastError: errors.New("just to test error scenario")})
	orderer := newTestOrderer(t, addr)

	_, err := orderer.SendBroadcast(reqContext.Background(), &fab.SignedEnvelope{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "just to test error scenario")
}

func TestBroadcastBadDial(t *testing.T) {
	orderer, err := New(WithEndpointConfig(comm.EndpointConfig{URL: "grpc://127.0.0.1:0", DialTimeout: 100 * time.Millisecond}))
	require.NoError(t, err)

	_, err = orderer.SendBroadcast(reqContext.Background(), &fab.SignedEnvelope{})
	require.Error(t, err)
	s, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, status.OrdererClientStatus, s.Group)
	assert.EqualValues(t, status.ConnectionFailed, s.Code)

	blocks, errs := orderer.SendDeliver(reqContext.Background(), &fab.SignedEnvelope{})
	_, open := <-blocks
	assert.False(t, open)
	assert.Error(t, <-errs)
}

func TestOrdererWithoutEndpoint(t *testing.T) {
	orderer, err := New(WithName("orderer1"))
	require.NoError(t, err)

	_, err = orderer.SendBroadcast(reqContext.Background(), &fab.SignedEnvelope{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "orderer1 has no endpoint")
}

func TestOrdererWithClient(t *testing.T) {
	client := mocks.NewMockOrderer("grpc://orderer.example.com:7050")
	orderer, err := New(WithName("orderer1"), WithURL(client.URL), WithOrdererClient(client))
	require.NoError(t, err)

	assert.Equal(t, "orderer1", orderer.Name())
	assert.Equal(t, client.URL, orderer.URL())
	assert.Equal(t, "orderer1", orderer.String())

	_, err = orderer.SendBroadcast(reqContext.Background(), &fab.SignedEnvelope{Payload: []byte("payload")})
	require.NoError(t, err)
	require.Len(t, client.Envelopes(), 1)
	assert.Equal(t, []byte("payload"), client.Envelopes()[0].Payload)

	orderer.Close()
	assert.True(t, client.Closed())
}

func TestNewOrdererSecured(t *testing.T) {
	orderer, err := New(WithURL("orderer.example.com:7050"), WithServerName("orderer.override"), WithTLSCert(nil))
	require.NoError(t, err)

	assert.Equal(t, "orderer.override", orderer.endpoint.ServerHostOverride)
	assert.False(t, orderer.endpoint.AllowInsecure)
	assert.True(t, comm.AttemptSecured(orderer.endpoint.URL, orderer.endpoint.AllowInsecure))

	orderer, err = New(WithURL("orderer.example.com:7050"), WithInsecure())
	require.NoError(t, err)
	assert.False(t, comm.AttemptSecured(orderer.endpoint.URL, orderer.endpoint.AllowInsecure))
}
