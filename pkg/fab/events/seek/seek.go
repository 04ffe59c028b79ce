/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package seek builds the seek requests sent to deliver services.
package seek

import (
	"math"

	ab "github.com/hyperledger/fabric-protos-go/orderer"
)

var (
	newestPos = &ab.SeekPosition{Type: &ab.SeekPosition_Newest{Newest: &ab.SeekNewest{}}}
	maxPos    = &ab.SeekPosition{Type: &ab.SeekPosition_Specified{Specified: &ab.SeekSpecified{Number: math.MaxUint64}}}
)

// InfoNewest returns a SeekInfo struct that indicates to the deliver server
// that we just want the latest blocks
func InfoNewest() *ab.SeekInfo {
	return newSeekInfo(newestPos, maxPos, ab.SeekInfo_BLOCK_UNTIL_READY)
}

// InfoFrom returns a SeekInfo struct that indicates to the deliver server
// that we want all blocks starting from the given block number
func InfoFrom(fromBlock uint64) *ab.SeekInfo {
	return newSeekInfo(specifiedPos(fromBlock), maxPos, ab.SeekInfo_BLOCK_UNTIL_READY)
}

// InfoBlock requests exactly one block, failing if it does not exist yet
func InfoBlock(number uint64) *ab.SeekInfo {
	return newSeekInfo(specifiedPos(number), specifiedPos(number), ab.SeekInfo_FAIL_IF_NOT_READY)
}

// InfoLatestBlock requests the newest block only
func InfoLatestBlock() *ab.SeekInfo {
	return newSeekInfo(newestPos, newestPos, ab.SeekInfo_FAIL_IF_NOT_READY)
}

func specifiedPos(number uint64) *ab.SeekPosition {
	return &ab.SeekPosition{
		Type: &ab.SeekPosition_Specified{
			Specified: &ab.SeekSpecified{
				Number: number,
			},
		},
	}
}

func newSeekInfo(start *ab.SeekPosition, stop *ab.SeekPosition, behavior ab.SeekInfo_SeekBehavior) *ab.SeekInfo {
	return &ab.SeekInfo{
		Start:    start,
		Stop:     stop,
		Behavior: behavior,
	}
}
