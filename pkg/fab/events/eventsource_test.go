/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/comm"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/mocks"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	channelID = "mychannel"
	esURL     = "grpc://peer1.example.com:7053"
)

type blockCollector struct {
	mtx     sync.Mutex
	blocks  []*pb.FilteredBlock
	sources []string
	recv    chan struct{}
}

func newBlockCollector() *blockCollector {
	return &blockCollector{recv: make(chan struct{}, 10)}
}

func (c *blockCollector) handle(block *pb.FilteredBlock, sourceURL string) {
	c.mtx.Lock()
	c.blocks = append(c.blocks, block)
	c.sources = append(c.sources, sourceURL)
	c.mtx.Unlock()
	c.recv <- struct{}{}
}

func (c *blockCollector) waitFor(t *testing.T, n int) {
	for i := 0; i < n; i++ {
		select {
		case <-c.recv:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for block %d", i+1)
		}
	}
}

func TestListenWithClient(t *testing.T) {
	client := mocks.NewMockEventClient()
	es, err := New(WithName("peer1"), WithURL(esURL), WithEventClient(client))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	collector := newBlockCollector()

	done := make(chan error, 1)
	go func() {
		done <- es.Listen(ctx, &fab.SignedEnvelope{}, collector.handle)
	}()

	<-client.Subscribed()
	client.Deliver(mocks.NewFilteredBlock(channelID, 1, mocks.NewFilteredTx("tx1", pb.TxValidationCode_VALID)))
	client.Deliver(mocks.NewFilteredBlock(channelID, 2))
	collector.waitFor(t, 2)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err, "cancelled subscription ends without error")
	case <-time.After(5 * time.Second):
		t.Fatal("Listen did not return after cancel")
	}

	collector.mtx.Lock()
	defer collector.mtx.Unlock()
	assert.EqualValues(t, 1, collector.blocks[0].Number)
	assert.Equal(t, []string{esURL, esURL}, collector.sources)
}

func TestListenConnectError(t *testing.T) {
	client := mocks.NewMockEventClient()
	client.ConnectError = errors.New("connection refused")
	es, err := New(WithURL(esURL), WithEventClient(client))
	require.NoError(t, err)

	err = es.Listen(context.Background(), &fab.SignedEnvelope{}, func(*pb.FilteredBlock, string) {
		t.Fatal("no blocks expected")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestListenWithoutEndpoint(t *testing.T) {
	es, err := New(WithName("es"))
	require.NoError(t, err)

	err = es.Listen(context.Background(), &fab.SignedEnvelope{}, func(*pb.FilteredBlock, string) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no endpoint")
}

func TestEventSourceAccessors(t *testing.T) {
	client := mocks.NewMockEventClient()
	es, err := New(WithURL(esURL), WithEventClient(client))
	require.NoError(t, err)

	assert.Equal(t, "", es.Name())
	assert.Equal(t, esURL, es.URL())
	assert.Equal(t, esURL, es.String())

	es.Close()
	assert.True(t, client.Closed())
}

func TestDeliverClientAgainstServer(t *testing.T) {
	srv := mocks.NewMockDeliverServer()
	addr := srv.Start("127.0.0.1:0")
	defer srv.Stop()

	es, err := New(WithName("peer1"), WithEndpointConfig(comm.EndpointConfig{URL: "grpc://" + addr, DialTimeout: 2 * time.Second}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	collector := newBlockCollector()
	done := make(chan error, 1)
	go func() {
		done <- es.Listen(ctx, &fab.SignedEnvelope{Payload: []byte("seek")}, collector.handle)
	}()

	srv.FilteredBlocks <- mocks.NewFilteredBlock(channelID, 7, mocks.NewFilteredTx("tx7", pb.TxValidationCode_MVCC_READ_CONFLICT))
	collector.waitFor(t, 1)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Listen did not return after cancel")
	}

	collector.mtx.Lock()
	defer collector.mtx.Unlock()
	require.Len(t, collector.blocks, 1)
	assert.EqualValues(t, 7, collector.blocks[0].Number)
	assert.Equal(t, pb.TxValidationCode_MVCC_READ_CONFLICT, collector.blocks[0].FilteredTransactions[0].TxValidationCode)
}

func TestDeliverClientDisconnect(t *testing.T) {
	srv := mocks.NewMockDeliverServer()
	srv.DisconnectError = errors.New("deliver service unavailable")
	addr := srv.Start("127.0.0.1:0")
	defer srv.Stop()

	es, err := New(WithEndpointConfig(comm.EndpointConfig{URL: "grpc://" + addr, DialTimeout: 2 * time.Second}))
	require.NoError(t, err)

	err = es.Listen(context.Background(), &fab.SignedEnvelope{}, func(*pb.FilteredBlock, string) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deliver service unavailable")
}
