// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package runtime hosts programs: it verifies transactions, loads the
// accounts they access from a ledger, runs the invoked program, and commits
// the modified accounts as a new block.
package runtime

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Fantom-foundation/merkle-pda/archive"
	"github.com/Fantom-foundation/merkle-pda/common"
	"github.com/Fantom-foundation/merkle-pda/common/amount"
	"github.com/Fantom-foundation/merkle-pda/ledger"
	"github.com/Fantom-foundation/merkle-pda/program"
	"github.com/Fantom-foundation/merkle-pda/rent"
)

// Result summarizes the effects of a successfully executed transaction.
type Result struct {
	// Block is the block the changes of the transaction were committed in.
	Block uint64
	// Logs are the messages emitted by the program.
	Logs []common.Log
}

// Runtime executes transactions one at a time. Every successful transaction
// forms its own block; failed transactions leave no trace.
type Runtime struct {
	mu       sync.Mutex
	ledger   ledger.Ledger
	archive  archive.Archive // nil if no history is retained
	rent     rent.Rent
	programs map[common.Address]program.Program
	lock     *common.DirectoryLock // nil if no directory is used
}

// New creates a runtime on top of the given ledger and optional archive.
// The runtime takes ownership of both.
func New(l ledger.Ledger, a archive.Archive, rent rent.Rent) *Runtime {
	return &Runtime{
		ledger:   l,
		archive:  a,
		rent:     rent,
		programs: map[common.Address]program.Program{},
	}
}

// Register makes the given program available under the given address.
func (r *Runtime) Register(id common.Address, p program.Program) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == program.SystemProgramID {
		return fmt.Errorf("%w: %v is reserved for the system program", program.ErrInvalidArgument, id)
	}
	if _, found := r.programs[id]; found {
		return fmt.Errorf("%w: program %v already registered", program.ErrInvalidArgument, id)
	}
	r.programs[id] = p
	return nil
}

// Execute runs the given transaction. If the program fails, no account is
// modified and the program's error is returned.
func (r *Runtime) Execute(tx *Transaction) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, found := r.programs[tx.ProgramID]
	if !found {
		return Result{}, fmt.Errorf("%w: %v", ErrUnknownProgram, tx.ProgramID)
	}
	if err := tx.verifySignatures(); err != nil {
		return Result{}, err
	}

	originals := make([]common.Account, len(tx.Accounts))
	accounts := make([]*program.AccountRef, len(tx.Accounts))
	seen := make(map[common.Address]bool, len(tx.Accounts))
	for i, meta := range tx.Accounts {
		if seen[meta.Key] {
			return Result{}, fmt.Errorf("%w: account %v listed twice", program.ErrInvalidArgument, meta.Key)
		}
		seen[meta.Key] = true
		account, _, err := r.ledger.GetAccount(meta.Key)
		if err != nil {
			return Result{}, err
		}
		originals[i] = account
		clone := account.Clone()
		accounts[i] = &program.AccountRef{
			Key:        meta.Key,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
			Owner:      clone.Owner,
			Balance:    clone.Balance,
			Data:       clone.Data,
		}
	}

	ctx := &program.Context{
		ProgramID: tx.ProgramID,
		Rent:      r.rent,
		Allocator: newSystemProgram(tx.ProgramID, r.rent, accounts),
	}
	if err := p.Process(ctx, accounts, tx.Data); err != nil {
		return Result{}, err
	}

	update := common.Update{}
	for i, ref := range accounts {
		modified := common.Account{Balance: ref.Balance, Owner: ref.Owner, Data: ref.Data}
		if modified.Equal(&originals[i]) {
			continue
		}
		if !ref.IsWritable {
			return Result{}, fmt.Errorf("%w: %v", ErrReadonlyModified, ref.Key)
		}
		update.AppendAccountUpdate(ref.Key, modified)
	}
	block, err := r.commit(update)
	if err != nil {
		return Result{}, err
	}
	return Result{Block: block, Logs: ctx.Logs}, nil
}

// Airdrop credits the given amount to an account, creating it if needed.
// It returns the block the credit was committed in.
func (r *Runtime) Airdrop(address common.Address, value amount.Amount) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, _, err := r.ledger.GetAccount(address)
	if err != nil {
		return 0, err
	}
	balance, overflow := amount.AddOverflow(account.Balance, value)
	if overflow {
		return 0, fmt.Errorf("%w: balance of %v would overflow", program.ErrInvalidArgument, address)
	}
	account.Balance = balance
	update := common.Update{}
	update.AppendAccountUpdate(address, account)
	return r.commit(update)
}

// commit applies the update as the next block to the ledger and the archive.
func (r *Runtime) commit(update common.Update) (uint64, error) {
	if err := update.Normalize(); err != nil {
		return 0, err
	}
	block, err := r.nextBlock()
	if err != nil {
		return 0, err
	}
	if err := r.ledger.Apply(block, update); err != nil {
		return 0, fmt.Errorf("failed to apply block %d to ledger; %w", block, err)
	}
	if r.archive != nil {
		if err := r.archive.Add(block, update); err != nil {
			return 0, fmt.Errorf("failed to add block %d to archive; %w", block, err)
		}
	}
	return block, nil
}

// nextBlock provides the number of the block following the last committed
// one. Block numbers start at 1.
func (r *Runtime) nextBlock() (uint64, error) {
	height, has, err := r.ledger.GetBlockHeight()
	if err != nil {
		return 0, err
	}
	if !has {
		return 1, nil
	}
	return height + 1, nil
}

// GetAccount provides the current content of the given account.
func (r *Runtime) GetAccount(address common.Address) (common.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, _, err := r.ledger.GetAccount(address)
	return account, err
}

// GetBlockHeight provides the last committed block, 0 if there is none.
func (r *Runtime) GetBlockHeight() (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	height, _, err := r.ledger.GetBlockHeight()
	return height, err
}

// GetAccountHash provides the hash of the content of an account at the
// given block, retrieved from the archive.
func (r *Runtime) GetAccountHash(block uint64, address common.Address) (common.Hash, error) {
	if r.archive == nil {
		return common.Hash{}, ErrNoArchive
	}
	return r.archive.GetAccountHash(block, address)
}

// GetMemoryFootprint provides the memory consumed by the runtime's storage.
func (r *Runtime) GetMemoryFootprint() *common.MemoryFootprint {
	r.mu.Lock()
	defer r.mu.Unlock()
	mf := common.NewMemoryFootprint(0)
	mf.AddChild("ledger", r.ledger.GetMemoryFootprint())
	if provider, ok := r.archive.(common.MemoryFootprintProvider); ok {
		mf.AddChild("archive", provider.GetMemoryFootprint())
	}
	return mf
}

// Close releases the ledger and the archive.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var archiveErr, lockErr error
	if r.archive != nil {
		archiveErr = r.archive.Close()
	}
	ledgerErr := r.ledger.Close()
	if r.lock != nil {
		lockErr = r.lock.Release()
	}
	return errors.Join(ledgerErr, archiveErr, lockErr)
}
