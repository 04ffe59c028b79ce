/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/channel"
	"github.com/hyperledger/fabric-channel-sdk-go/pkg/fab/txn"
	"github.com/hyperledger/fabric-protos-go/common"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func infoCmd(f *Factory) *cobra.Command {
	var channelID string
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the blockchain information of a channel.",
		Long:  "Show the height and current block hashes of a channel. Requires '--channelID'.",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			defer f.close()

			ctx, cancel := f.context()
			defer cancel()

			ch, err := f.getChannel(ctx, channelID)
			if err != nil {
				return err
			}
			info, err := ch.QueryBlockchainInfo(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(f.out, "Height: %d\n", info.Height)
			fmt.Fprintf(f.out, "CurrentBlockHash: %s\n", hex.EncodeToString(info.CurrentBlockHash))
			fmt.Fprintf(f.out, "PreviousBlockHash: %s\n", hex.EncodeToString(info.PreviousBlockHash))
			return nil
		},
	}
	cmd.Flags().StringVarP(&channelID, "channelID", "c", "", "name of the channel")
	return cmd
}

func blockCmd(f *Factory) *cobra.Command {
	var (
		channelID string
		number    uint64
		hash      string
		txID      string
	)
	cmd := &cobra.Command{
		Use:   "block",
		Short: "Fetch a block of a channel.",
		Long:  "Fetch a block of a channel by number, hash or transaction ID. Requires '--channelID'.",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			defer f.close()

			ctx, cancel := f.context()
			defer cancel()

			ch, err := f.getChannel(ctx, channelID)
			if err != nil {
				return err
			}

			var block *common.Block
			switch {
			case hash != "":
				blockHash, decodeErr := hex.DecodeString(hash)
				if decodeErr != nil {
					return errors.Wrap(decodeErr, "invalid block hash")
				}
				block, err = ch.QueryBlockByHash(ctx, blockHash)
			case txID != "":
				block, err = ch.QueryBlockByTransactionID(ctx, txID)
			default:
				block, err = ch.QueryBlockByNumber(ctx, number)
			}
			if err != nil {
				return err
			}
			return f.printProto(block)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&channelID, "channelID", "c", "", "name of the channel")
	flags.Uint64VarP(&number, "number", "n", 0, "number of the block")
	flags.StringVar(&hash, "hash", "", "hex encoded header hash of the block")
	flags.StringVar(&txID, "txid", "", "ID of a transaction the block contains")
	return cmd
}

func txCmd(f *Factory) *cobra.Command {
	var channelID string
	cmd := &cobra.Command{
		Use:   "tx <txid>",
		Short: "Fetch a processed transaction of a channel.",
		Long:  "Fetch a processed transaction and its validation code. Requires '--channelID'.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			defer f.close()

			ctx, cancel := f.context()
			defer cancel()

			ch, err := f.getChannel(ctx, channelID)
			if err != nil {
				return err
			}
			tx, err := ch.QueryTransactionByID(ctx, args[0])
			if err != nil {
				return err
			}
			return f.printProto(tx)
		},
	}
	cmd.Flags().StringVarP(&channelID, "channelID", "c", "", "name of the channel")
	return cmd
}

func queryCmd(f *Factory) *cobra.Command {
	var (
		channelID string
		name      string
		fcn       string
		args      []string
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query a chaincode of a channel.",
		Long:  "Query a chaincode on the chaincode query peers of a channel. Requires '--channelID' and '--name'.",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if name == "" {
				return errors.New("chaincode name is required")
			}
			cmd.SilenceUsage = true
			defer f.close()

			ctx, cancel := f.context()
			defer cancel()

			ch, err := f.getChannel(ctx, channelID)
			if err != nil {
				return err
			}

			request := &txn.QueryProposalRequest{
				ChaincodeSpec: txn.ChaincodeSpec{Name: name, Fcn: fcn, Args: toBytes(args)},
			}
			responses, err := ch.QueryByChaincode(ctx, request)
			if err != nil {
				return err
			}
			return printQueryResults(f, responses)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&channelID, "channelID", "c", "", "name of the channel")
	flags.StringVarP(&name, "name", "n", "", "name of the chaincode")
	flags.StringVar(&fcn, "fcn", "query", "function of the chaincode")
	flags.StringSliceVarP(&args, "args", "a", nil, "arguments of the function")
	return cmd
}

func printQueryResults(f *Factory, responses *channel.ProposalResponses) error {
	var failed int
	for _, r := range responses.Results {
		if !r.Succeeded() {
			failed++
			fmt.Fprintf(f.out, "%s: error: %s\n", r.Endorser, r.Err)
			continue
		}
		fmt.Fprintf(f.out, "%s: %s\n", r.Endorser, r.Response.ProposalResponse.GetResponse().GetPayload())
	}
	if failed == len(responses.Results) {
		return errors.New("no peer answered the query")
	}
	return nil
}

func toBytes(args []string) [][]byte {
	b := make([][]byte, len(args))
	for i, arg := range args {
		b[i] = []byte(arg)
	}
	return b
}
