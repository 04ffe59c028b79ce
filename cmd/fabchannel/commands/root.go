/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package commands implements the fabchannel command line. Every command
// reads the network configuration, creates a client from it and works on
// the peers and channels the configuration names.
package commands

import (
	reqContext "context"
	"io"
	"time"

	"github.com/golang/protobuf/jsonpb"
	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/common/logging"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/core/config"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/channel"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/peer"
	fabricclient "github.com/hyperledger/fabric-channel-sdk-go/pkg/fabric-client"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var logger = logging.NewLogger("fabsdk")

const defaultCmdTimeout = 30 * time.Second

// Factory creates the client shared by the commands of one invocation
type Factory struct {
	ConfigPath string
	Timeout    time.Duration

	out       io.Writer
	client    *fabricclient.Client
	newClient func(path string) (*fabricclient.Client, error)
	newPeer   func(c *fabricclient.Client, name string) (*peer.Peer, error)
}

// NewRootCmd returns the fabchannel command writing its results to out
func NewRootCmd(out io.Writer) *cobra.Command {
	return newRootCmd(&Factory{
		out:       out,
		newClient: clientFromFile,
		newPeer:   peerFromConfig,
	})
}

func newRootCmd(f *Factory) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fabchannel",
		Short: "Query peers and channels of a Fabric network.",
		Long:  "Query peers and channels of a Fabric network described by a client configuration file.",
	}
	rootCmd.SetOut(f.out)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&f.ConfigPath, "config", "f", "config.yaml", "path of the client configuration file")
	flags.DurationVarP(&f.Timeout, "timeout", "t", defaultCmdTimeout, "timeout of the command")

	rootCmd.AddCommand(
		channelsCmd(f),
		chaincodesCmd(f),
		infoCmd(f),
		blockCmd(f),
		txCmd(f),
		queryCmd(f),
		serveCmd(f),
	)
	return rootCmd
}

func clientFromFile(path string) (*fabricclient.Client, error) {
	cfg, err := config.FromFile(path)()
	if err != nil {
		return nil, err
	}
	return fabricclient.NewFromConfig(cfg)
}

// peerFromConfig creates the peer called name from the client configuration
func peerFromConfig(c *fabricclient.Client, name string) (*peer.Peer, error) {
	cfg := c.Config()
	peerCfg, ok := cfg.Peer(name)
	if !ok {
		return nil, errors.Errorf("peer %s is not configured", name)
	}
	endpoint, err := peerCfg.Endpoint(cfg.Timeouts.Connection)
	if err != nil {
		return nil, err
	}
	return peer.New(peer.WithName(name), peer.WithEndpointConfig(endpoint), peer.WithMSPID(peerCfg.MSPID))
}

func (f *Factory) getClient() (*fabricclient.Client, error) {
	if f.client != nil {
		return f.client, nil
	}
	c, err := f.newClient(f.ConfigPath)
	if err != nil {
		return nil, errors.WithMessage(err, "creating client failed")
	}
	f.client = c
	return c, nil
}

func (f *Factory) getPeer(name string) (*peer.Peer, error) {
	if name == "" {
		return nil, errors.New("peer name is required")
	}
	c, err := f.getClient()
	if err != nil {
		return nil, err
	}
	return f.newPeer(c, name)
}

// getChannel returns the initialized channel called name, loading it from
// the configuration unless the client already has it
func (f *Factory) getChannel(ctx reqContext.Context, name string) (*channel.Channel, error) {
	if name == "" {
		return nil, errors.New("channel name is required")
	}
	c, err := f.getClient()
	if err != nil {
		return nil, err
	}

	ch, ok := c.GetChannel(name)
	if !ok {
		ch, err = c.LoadChannel(name)
		if err != nil {
			return nil, err
		}
	}
	if err := ch.Initialize(ctx); err != nil {
		return nil, err
	}
	return ch, nil
}

func (f *Factory) context() (reqContext.Context, reqContext.CancelFunc) {
	if f.Timeout <= 0 {
		return reqContext.WithTimeout(reqContext.Background(), defaultCmdTimeout)
	}
	return reqContext.WithTimeout(reqContext.Background(), f.Timeout)
}

func (f *Factory) close() {
	if f.client != nil {
		f.client.Close(true)
		f.client = nil
	}
}

func (f *Factory) printProto(msg proto.Message) error {
	m := jsonpb.Marshaler{Indent: "  ", OrigName: true}
	if err := m.Marshal(f.out, msg); err != nil {
		return errors.Wrap(err, "printing response failed")
	}
	_, err := io.WriteString(f.out, "\n")
	return err
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 0 {
		return errors.Errorf("trailing args detected: %s", args)
	}
	return nil
}
