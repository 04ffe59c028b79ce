/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package events

import (
	reqContext "context"
	"io"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/comm"
	"github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
)

// deliverClient streams filtered blocks from the peer deliver service. A
// connection is opened per subscription and closed when the stream ends.
type deliverClient struct {
	endpoint comm.EndpointConfig
}

func (c *deliverClient) DeliverFiltered(ctx reqContext.Context, envelope *fab.SignedEnvelope) (<-chan *pb.FilteredBlock, <-chan error) {
	blocks := make(chan *pb.FilteredBlock)
	errs := make(chan error, 1)

	conn, err := comm.Dial(ctx, c.endpoint, status.ClientStatus)
	if err != nil {
		errs <- err
		close(blocks)
		close(errs)
		return blocks, errs
	}

	stream, err := pb.NewDeliverClient(conn).DeliverFiltered(ctx)
	if err != nil {
		releaseConn(conn)
		errs <- errors.Wrap(comm.TranslateError(err), "deliver filtered failed")
		close(blocks)
		close(errs)
		return blocks, errs
	}

	if err := stream.Send(&common.Envelope{Payload: envelope.Payload, Signature: envelope.Signature}); err != nil {
		logger.Warnf("failed to send seek request to %s [%s]", c.endpoint.URL, err)
	}

	go func() {
		defer releaseConn(conn)
		defer close(errs)
		defer close(blocks)
		filteredBlockStream(ctx, stream, blocks, errs)
	}()

	return blocks, errs
}

// Close is a no-op; connections live for a single subscription
func (c *deliverClient) Close() {}

func releaseConn(conn *grpc.ClientConn) {
	if err := conn.Close(); err != nil {
		logger.Debugf("unable to close connection [%s]", err)
	}
}

func filteredBlockStream(ctx reqContext.Context, stream pb.Deliver_DeliverFilteredClient, blocks chan<- *pb.FilteredBlock, errs chan<- error) {
	for {
		response, err := stream.Recv()
		if err == io.EOF {
			return
		}
		if err != nil {
			if ctx.Err() == nil {
				errs <- errors.Wrap(comm.TranslateError(err), "recv from deliver service failed")
			}
			return
		}

		switch t := response.Type.(type) {
		case *pb.DeliverResponse_Status:
			logger.Debugf("Received deliver response status: %s", t.Status)
			if t.Status != common.Status_SUCCESS {
				errs <- status.New(status.EventServerStatus, int32(t.Status), "error status from deliver service", nil)
				return
			}
		case *pb.DeliverResponse_FilteredBlock:
			select {
			case blocks <- t.FilteredBlock:
			case <-ctx.Done():
				return
			}
		default:
			logger.Infof("unknown response type from deliver service %T", t)
		}
	}
}
