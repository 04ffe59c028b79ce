/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func channelsCmd(f *Factory) *cobra.Command {
	var peerName string
	cmd := &cobra.Command{
		Use:   "channels",
		Short: "List the channels a peer has joined.",
		Long:  "List the channels a peer has joined. Requires '--peer'.",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// parsing of the command line is done so silence cmd usage
			cmd.SilenceUsage = true
			defer f.close()

			p, err := f.getPeer(peerName)
			if err != nil {
				return err
			}
			ctx, cancel := f.context()
			defer cancel()

			c, _ := f.getClient()
			response, err := c.QueryChannels(ctx, p)
			if err != nil {
				return err
			}
			for _, ch := range response.Channels {
				fmt.Fprintln(f.out, ch.ChannelId)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&peerName, "peer", "p", "", "name of the peer")
	return cmd
}

func chaincodesCmd(f *Factory) *cobra.Command {
	var peerName string
	cmd := &cobra.Command{
		Use:   "chaincodes",
		Short: "List the chaincodes installed on a peer.",
		Long:  "List the chaincodes installed on a peer. Requires '--peer'.",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			defer f.close()

			p, err := f.getPeer(peerName)
			if err != nil {
				return err
			}
			ctx, cancel := f.context()
			defer cancel()

			c, _ := f.getClient()
			response, err := c.QueryInstalledChaincodes(ctx, p)
			if err != nil {
				return err
			}
			for _, cc := range response.Chaincodes {
				fmt.Fprintf(f.out, "Name: %s, Version: %s, Path: %s\n", cc.Name, cc.Version, cc.Path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&peerName, "peer", "p", "", "name of the peer")
	return cmd
}
