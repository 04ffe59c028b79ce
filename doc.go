/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package fabricchannelsdk enables Go developers to work with the channels
// of a Hyperledger Fabric network.
//
// # Packages for end developer usage
//
// pkg/fabric-client: The entry point. A client owns the signing identity,
// creates peers, orderers, event sources and channels, and serves the
// health and metrics of its channels.
//
// pkg/fab/channel: A channel groups its member nodes and sends proposals,
// transactions and ledger queries to them. Submitted transactions are
// tracked until the commit event of an event source resolves them.
//
// pkg/core/config: Loads the client configuration from YAML with
// environment overrides.
//
// cmd/fabchannel: A command line for querying peers and channels.
//
// Basic workflow
//
//  1. Load the configuration with config.FromFile
//  2. Create a client with fabricclient.NewFromConfig
//  3. Load a channel with Client.LoadChannel and initialize it
//  4. Send proposals with SendTransactionProposal
//  5. Send the endorsed transaction with SendTransaction and wait on
//     the returned future for the commit event
//  6. Shut the channel down when done
package fabricchannelsdk
