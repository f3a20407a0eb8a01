// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package archive

import (
	"io"

	"github.com/Fantom-foundation/merkle-pda/common"
)

const (
	// ErrBlockOutOfOrder is returned if blocks are not added in increasing order.
	ErrBlockOutOfOrder = common.ConstError("block out of order")
)

// An Archive retains a history of account mutations on a block-level
// granularity. The history is recorded by adding per-block updates. All
// updates are append-only. History written once can no longer be altered.
//
// Archive Add(..) and GetXXX(..) operations are thread safe and may thus be run
// in parallel.
type Archive interface {

	// Add adds the changes of the given block to this archive. Blocks have
	// to be added in strictly increasing order; blocks may be skipped.
	Add(block uint64, update common.Update) error

	// GetLastBlockHeight gets the maximum block height inserted so far. If
	// the archive is empty, the empty flag is set.
	GetLastBlockHeight() (block uint64, empty bool, err error)

	// GetHash provides the hash of the archive content at the given block,
	// covering all blocks up to and including it.
	GetHash(block uint64) (hash common.Hash, err error)

	// GetAccountHash provides the hash of the content of the given account
	// at the given block. The zero hash is returned for accounts never
	// modified up to that block.
	GetAccountHash(block uint64, account common.Address) (hash common.Hash, err error)

	io.Closer
}

// NextBlockHash computes the hash of a block from the hash of its
// predecessor and the changes it introduces. Blocks without changes keep the
// hash of their predecessor. The update has to be normalized.
func NextBlockHash(previous common.Hash, update *common.Update) common.Hash {
	if update.IsEmpty() {
		return previous
	}
	data := make([][]byte, 0, 1+2*len(update.Accounts))
	data = append(data, previous[:])
	for _, change := range update.Accounts {
		hash := change.Account.Hash()
		data = append(data, change.Address[:], hash[:])
	}
	return common.Keccak256(data...)
}
