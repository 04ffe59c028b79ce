/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"os"

	"github.com/hyperledger/fabric-channel-sdk-go/cmd/fabchannel/commands"
)

func main() {
	if err := commands.NewRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
