// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package memory

import (
	"fmt"
	"unsafe"

	"github.com/Fantom-foundation/merkle-pda/common"
	"github.com/Fantom-foundation/merkle-pda/ledger"
)

// Ledger is an in-memory ledger implementation, intended for tests and
// short-lived runtimes.
type Ledger struct {
	accounts   map[common.Address]common.Account
	height     uint64
	hasBlocks  bool
	totalBytes uintptr
}

// NewLedger creates an empty in-memory ledger.
func NewLedger() *Ledger {
	return &Ledger{
		accounts: map[common.Address]common.Account{},
	}
}

func (l *Ledger) GetAccount(address common.Address) (common.Account, bool, error) {
	account, exists := l.accounts[address]
	if !exists {
		return common.Account{}, false, nil
	}
	return account.Clone(), true, nil
}

func (l *Ledger) Apply(block uint64, update common.Update) error {
	if l.hasBlocks && block <= l.height {
		return fmt.Errorf("%w: block %d after %d", ledger.ErrBlockOutOfOrder, block, l.height)
	}
	if err := update.Check(); err != nil {
		return err
	}
	for _, change := range update.Accounts {
		if old, exists := l.accounts[change.Address]; exists {
			l.totalBytes -= uintptr(len(old.Data))
		}
		if change.Account.IsEmpty() {
			delete(l.accounts, change.Address)
			continue
		}
		l.accounts[change.Address] = change.Account.Clone()
		l.totalBytes += uintptr(len(change.Account.Data))
	}
	l.height = block
	l.hasBlocks = true
	return nil
}

func (l *Ledger) GetBlockHeight() (uint64, bool, error) {
	return l.height, l.hasBlocks, nil
}

func (l *Ledger) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*l))
	var address common.Address
	var account common.Account
	entrySize := unsafe.Sizeof(address) + unsafe.Sizeof(account)
	mf.AddChild("accounts", common.NewMemoryFootprint(uintptr(len(l.accounts))*entrySize+l.totalBytes))
	return mf
}

func (l *Ledger) Close() error {
	return nil
}

var _ ledger.Ledger = (*Ledger)(nil)
