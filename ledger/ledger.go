// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ledger

//go:generate mockgen -source ledger.go -destination ledger_mocks.go -package ledger

import (
	"io"

	"github.com/Fantom-foundation/merkle-pda/common"
)

const (
	// ErrBlockOutOfOrder is returned if blocks are not applied in increasing order.
	ErrBlockOutOfOrder = common.ConstError("block out of order")
)

// A Ledger retains the current content of all accounts. It is modified
// block by block, each block being applied atomically: either all account
// updates of the block become visible or none of them.
//
// Implementations are not required to be thread safe; the runtime
// serializes all accesses.
type Ledger interface {
	// GetAccount provides the current content of the given account. The
	// second result is false if the account does not exist, in which case an
	// empty account is returned.
	GetAccount(address common.Address) (common.Account, bool, error)

	// Apply atomically applies the changes of the given block. Updates
	// setting an account to the empty account remove it. Block numbers have
	// to be strictly increasing.
	Apply(block uint64, update common.Update) error

	// GetBlockHeight provides the last applied block. The second result is
	// false if no block was applied so far.
	GetBlockHeight() (uint64, bool, error)

	common.MemoryFootprintProvider
	io.Closer
}
