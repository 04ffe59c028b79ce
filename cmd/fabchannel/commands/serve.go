/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package commands

import (
	reqContext "context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	fabricclient "github.com/hyperledger/fabric-channel-sdk-go/pkg/fabric-client"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func serveCmd(f *Factory) *cobra.Command {
	var listenAddress string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the health and metrics of the configured channels.",
		Long:  "Load and initialize every configured channel and serve /healthz and /metrics until interrupted.",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			defer f.close()

			c, err := f.loadChannels()
			if err != nil {
				return err
			}

			server := &http.Server{Addr: listenAddress, Handler: newServeMux(c)}
			errCh := make(chan error, 1)
			go func() {
				logger.Infof("Serving health and metrics on %s", listenAddress)
				errCh <- server.ListenAndServe()
			}()

			signals := make(chan os.Signal, 1)
			signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(signals)

			select {
			case err := <-errCh:
				return errors.Wrap(err, "serving failed")
			case sig := <-signals:
				logger.Infof("Received %s, shutting down", sig)
			}

			ctx, cancel := reqContext.WithTimeout(reqContext.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(ctx)
		},
	}
	cmd.Flags().StringVarP(&listenAddress, "listen", "l", "127.0.0.1:9443", "address to serve on")
	return cmd
}

// loadChannels loads every configured channel. A channel that fails to
// initialize is kept so that its health check reports it.
func (f *Factory) loadChannels() (*fabricclient.Client, error) {
	c, err := f.getClient()
	if err != nil {
		return nil, err
	}
	if c.Config() == nil {
		return c, nil
	}

	ctx, cancel := f.context()
	defer cancel()

	for _, name := range c.Config().ChannelNames() {
		if _, ok := c.GetChannel(name); ok {
			continue
		}
		ch, err := c.LoadChannel(name)
		if err != nil {
			return nil, err
		}
		if err := ch.Initialize(ctx); err != nil {
			logger.Warnf("Initializing channel %s failed: %s", name, err)
		}
	}
	return c, nil
}

func newServeMux(c *fabricclient.Client) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/healthz", c.HealthHandler())
	mux.Handle("/metrics", c.MetricsHandler())
	return mux
}
