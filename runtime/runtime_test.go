// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package runtime

import (
	"bytes"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"testing"

	"github.com/Fantom-foundation/merkle-pda/common"
	"github.com/Fantom-foundation/merkle-pda/common/amount"
	"github.com/Fantom-foundation/merkle-pda/ledger"
	"github.com/Fantom-foundation/merkle-pda/ledger/memory"
	"github.com/Fantom-foundation/merkle-pda/pda"
	"github.com/Fantom-foundation/merkle-pda/program"
	"github.com/Fantom-foundation/merkle-pda/rent"
	"github.com/Fantom-foundation/merkle-pda/tree"
	"github.com/golang/mock/gomock"
)

var treeProgram = program.DefaultProgramID

func newTreeRuntime(t *testing.T, params Parameters) *Runtime {
	t.Helper()
	r, err := NewRuntime(params)
	if err != nil {
		t.Fatalf("failed to create runtime: %v", err)
	}
	if err := r.Register(treeProgram, program.NewProcessor()); err != nil {
		t.Fatalf("failed to register program: %v", err)
	}
	return r
}

func treeAddress(t *testing.T, owner common.Address) common.Address {
	t.Helper()
	address, _, err := program.TreeAddress(owner, treeProgram)
	if err != nil {
		t.Fatalf("failed to derive tree address: %v", err)
	}
	return address
}

func createTreeTx(t *testing.T, key *ecdsa.PrivateKey) *Transaction {
	owner := pda.AddressOf(&key.PublicKey)
	tx := &Transaction{
		ProgramID: treeProgram,
		Accounts: []AccountMeta{
			{Key: owner, IsSigner: true, IsWritable: true},
			{Key: treeAddress(t, owner), IsWritable: true},
			{Key: program.SystemProgramID},
		},
		Data: program.EncodeInitializeTree(),
	}
	if err := tx.Sign(key); err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	return tx
}

func insertTx(t *testing.T, key *ecdsa.PrivateKey, data []byte) *Transaction {
	owner := pda.AddressOf(&key.PublicKey)
	tx := &Transaction{
		ProgramID: treeProgram,
		Accounts: []AccountMeta{
			{Key: owner, IsSigner: true},
			{Key: treeAddress(t, owner), IsWritable: true},
		},
		Data: program.EncodeInsertLeaf(data),
	}
	if err := tx.Sign(key); err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	return tx
}

func readTree(t *testing.T, r *Runtime, owner common.Address) *tree.Record {
	t.Helper()
	account, err := r.GetAccount(treeAddress(t, owner))
	if err != nil {
		t.Fatalf("failed to read account: %v", err)
	}
	record, err := program.ReadTree(account.Data)
	if err != nil {
		t.Fatalf("failed to decode tree: %v", err)
	}
	return record
}

func TestRuntime_TreeLifecycleInAllConfigurations(t *testing.T) {
	for _, config := range GetAllConfigurations() {
		t.Run(config.String(), func(t *testing.T) {
			r := newTreeRuntime(t, Parameters{Variant: config.Variant, Archive: config.Archive, Directory: t.TempDir()})
			defer func() {
				if err := r.Close(); err != nil {
					t.Errorf("failed to close runtime: %v", err)
				}
			}()

			key, owner := newKey(t)
			if block, err := r.Airdrop(owner, amount.New(1_000_000_000)); err != nil || block != 1 {
				t.Fatalf("failed to airdrop: %d, %v", block, err)
			}
			result, err := r.Execute(createTreeTx(t, key))
			if err != nil {
				t.Fatalf("failed to create tree: %v", err)
			}
			if result.Block != 2 || len(result.Logs) == 0 {
				t.Errorf("unexpected result %v", result)
			}

			treeAccount, err := r.GetAccount(treeAddress(t, owner))
			if err != nil {
				t.Fatalf("failed to read tree account: %v", err)
			}
			minimum := rent.Default().MinimumBalance(tree.RecordSize)
			if treeAccount.Owner != treeProgram || treeAccount.Balance != minimum || len(treeAccount.Data) != tree.RecordSize {
				t.Errorf("unexpected tree account %v", treeAccount)
			}
			payer, _ := r.GetAccount(owner)
			if want, _ := amount.SubUnderflow(amount.New(1_000_000_000), minimum); payer.Balance != want {
				t.Errorf("unexpected payer balance, wanted %v, got %v", want, payer.Balance)
			}

			for _, data := range []string{"hello", "world"} {
				if _, err := r.Execute(insertTx(t, key, []byte(data))); err != nil {
					t.Fatalf("failed to insert %q: %v", data, err)
				}
			}
			record := readTree(t, r, owner)
			hello, world := common.Keccak256([]byte("hello")), common.Keccak256([]byte("world"))
			if want := common.Keccak256ForHashes(hello, world); record.Root != want {
				t.Errorf("unexpected root, wanted %v, got %v", want, record.Root)
			}
			if record.Child != [2]common.Index{0, 1} || len(record.Leafs) != 2 {
				t.Errorf("unexpected tree %v", record)
			}
			if height, _ := r.GetBlockHeight(); height != 4 {
				t.Errorf("unexpected block height %d", height)
			}

			if config.Archive == NoArchive {
				if _, err := r.GetAccountHash(4, owner); !errors.Is(err, ErrNoArchive) {
					t.Errorf("expected ErrNoArchive, got %v", err)
				}
				return
			}
			current, _ := r.GetAccount(treeAddress(t, owner))
			if hash, err := r.GetAccountHash(4, treeAddress(t, owner)); err != nil || hash != current.Hash() {
				t.Errorf("unexpected archived hash %v, %v", hash, err)
			}
			if hash, err := r.GetAccountHash(1, treeAddress(t, owner)); err != nil || hash != (common.Hash{}) {
				t.Errorf("tree should not be archived before its creation: %v, %v", hash, err)
			}
		})
	}
}

func TestRuntime_FailedTransactionLeavesNoTrace(t *testing.T) {
	r := newTreeRuntime(t, Parameters{})
	defer r.Close()

	key, owner := newKey(t)
	// the owner has no funds to pay for the tree account
	if _, err := r.Execute(createTreeTx(t, key)); !errors.Is(err, program.ErrInsufficientFunds) {
		t.Errorf("expected ErrInsufficientFunds, got %v", err)
	}
	if account, _ := r.GetAccount(treeAddress(t, owner)); !account.IsEmpty() {
		t.Errorf("failed transaction created account %v", account)
	}
	if height, _ := r.GetBlockHeight(); height != 0 {
		t.Errorf("failed transaction produced a block")
	}
}

func TestRuntime_FullTreeRejectsFurtherLeaves(t *testing.T) {
	r := newTreeRuntime(t, Parameters{})
	defer r.Close()

	key, owner := newKey(t)
	if _, err := r.Airdrop(owner, amount.New(1_000_000_000)); err != nil {
		t.Fatalf("failed to airdrop: %v", err)
	}
	if _, err := r.Execute(createTreeTx(t, key)); err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}
	for i := 0; i < tree.Capacity; i++ {
		if _, err := r.Execute(insertTx(t, key, []byte(fmt.Sprintf("leaf-%d", i)))); err != nil {
			t.Fatalf("failed to insert leaf %d: %v", i, err)
		}
	}
	before, _ := r.GetAccount(treeAddress(t, owner))
	if _, err := r.Execute(insertTx(t, key, []byte("overflow"))); !errors.Is(err, program.ErrCapacityExceeded) {
		t.Errorf("expected ErrCapacityExceeded, got %v", err)
	}
	after, _ := r.GetAccount(treeAddress(t, owner))
	if !bytes.Equal(before.Data, after.Data) {
		t.Errorf("failed insertion modified the tree")
	}
	if got := len(readTree(t, r, owner).Leafs); got != tree.Capacity {
		t.Errorf("unexpected number of leaves %d", got)
	}
}

func TestRuntime_TreesOfDifferentOwnersAreIndependent(t *testing.T) {
	r := newTreeRuntime(t, Parameters{})
	defer r.Close()

	key1, owner1 := newKey(t)
	key2, owner2 := newKey(t)
	for _, key := range []*ecdsa.PrivateKey{key1, key2} {
		if _, err := r.Airdrop(pda.AddressOf(&key.PublicKey), amount.New(1_000_000_000)); err != nil {
			t.Fatalf("failed to airdrop: %v", err)
		}
		if _, err := r.Execute(createTreeTx(t, key)); err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}
	}
	if _, err := r.Execute(insertTx(t, key1, []byte("a"))); err != nil {
		t.Fatalf("failed to insert: %v", err)
	}
	if got := len(readTree(t, r, owner1).Leafs); got != 1 {
		t.Errorf("unexpected number of leaves in first tree: %d", got)
	}
	if got := len(readTree(t, r, owner2).Leafs); got != 0 {
		t.Errorf("unexpected number of leaves in second tree: %d", got)
	}

	// the second owner can not append to the first tree
	tx := insertTx(t, key2, []byte("b"))
	tx.Accounts[1].Key = treeAddress(t, owner1)
	tx.Signatures = nil
	if err := tx.Sign(key2); err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	if _, err := r.Execute(tx); !errors.Is(err, program.ErrAddressMismatch) {
		t.Errorf("expected ErrAddressMismatch, got %v", err)
	}
}

func TestRuntime_RejectsInvalidTransactions(t *testing.T) {
	r := newTreeRuntime(t, Parameters{})
	defer r.Close()
	key, _ := newKey(t)

	tx := createTreeTx(t, key)
	tx.ProgramID = common.Address{0x99}
	if _, err := r.Execute(tx); !errors.Is(err, ErrUnknownProgram) {
		t.Errorf("expected ErrUnknownProgram, got %v", err)
	}

	tx = createTreeTx(t, key)
	tx.Signatures = nil
	if _, err := r.Execute(tx); !errors.Is(err, ErrSignatureVerification) {
		t.Errorf("expected ErrSignatureVerification, got %v", err)
	}

	tx = createTreeTx(t, key)
	tx.Accounts = append(tx.Accounts, tx.Accounts[0])
	tx.Signatures = nil
	if err := tx.Sign(key); err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	if _, err := r.Execute(tx); !errors.Is(err, program.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for duplicated account, got %v", err)
	}
}

type programFunc func(ctx *program.Context, accounts []*program.AccountRef, data []byte) error

func (f programFunc) Process(ctx *program.Context, accounts []*program.AccountRef, data []byte) error {
	return f(ctx, accounts, data)
}

func TestRuntime_ReadonlyAccountsCanNotBeModified(t *testing.T) {
	r := New(memory.NewLedger(), nil, rent.Default())
	defer r.Close()
	target := common.Address{0x42}
	if _, err := r.Airdrop(target, amount.New(10)); err != nil {
		t.Fatalf("failed to airdrop: %v", err)
	}
	id := common.Address{0x01}
	err := r.Register(id, programFunc(func(ctx *program.Context, accounts []*program.AccountRef, data []byte) error {
		accounts[0].Data = []byte{1}
		return nil
	}))
	if err != nil {
		t.Fatalf("failed to register program: %v", err)
	}

	tx := &Transaction{ProgramID: id, Accounts: []AccountMeta{{Key: target}}}
	if _, err := r.Execute(tx); !errors.Is(err, ErrReadonlyModified) {
		t.Errorf("expected ErrReadonlyModified, got %v", err)
	}
	tx.Accounts[0].IsWritable = true
	if _, err := r.Execute(tx); err != nil {
		t.Errorf("failed to modify writable account: %v", err)
	}
	if account, _ := r.GetAccount(target); !bytes.Equal(account.Data, []byte{1}) {
		t.Errorf("modification was not committed: %v", account)
	}
}

func TestRuntime_ProgramFailureDiscardsModifications(t *testing.T) {
	r := New(memory.NewLedger(), nil, rent.Default())
	defer r.Close()
	target := common.Address{0x42}
	if _, err := r.Airdrop(target, amount.New(10)); err != nil {
		t.Fatalf("failed to airdrop: %v", err)
	}
	injected := fmt.Errorf("injected failure")
	id := common.Address{0x01}
	err := r.Register(id, programFunc(func(ctx *program.Context, accounts []*program.AccountRef, data []byte) error {
		accounts[0].Balance = amount.New(1000)
		accounts[0].Data = []byte{1, 2, 3}
		return injected
	}))
	if err != nil {
		t.Fatalf("failed to register program: %v", err)
	}
	tx := &Transaction{ProgramID: id, Accounts: []AccountMeta{{Key: target, IsWritable: true}}}
	if _, err := r.Execute(tx); !errors.Is(err, injected) {
		t.Errorf("expected injected error, got %v", err)
	}
	account, _ := r.GetAccount(target)
	if account.Balance != amount.New(10) || len(account.Data) != 0 {
		t.Errorf("failed program modified the account: %v", account)
	}
}

func TestRuntime_RegisterRejectsReservedAndDuplicateAddresses(t *testing.T) {
	r := New(memory.NewLedger(), nil, rent.Default())
	defer r.Close()
	if err := r.Register(program.SystemProgramID, program.NewProcessor()); !errors.Is(err, program.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for system program address, got %v", err)
	}
	if err := r.Register(treeProgram, program.NewProcessor()); err != nil {
		t.Fatalf("failed to register: %v", err)
	}
	if err := r.Register(treeProgram, program.NewProcessor()); !errors.Is(err, program.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for duplicate registration, got %v", err)
	}
}

func TestRuntime_LedgerFailuresAreReported(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mock := ledger.NewMockLedger(ctrl)
	injected := fmt.Errorf("injected failure")

	address := common.Address{0x42}
	update := common.Update{}
	update.AppendAccountUpdate(address, common.Account{Balance: amount.New(5)})

	gomock.InOrder(
		mock.EXPECT().GetAccount(address).Return(common.Account{}, false, nil),
		mock.EXPECT().GetBlockHeight().Return(uint64(7), true, nil),
		mock.EXPECT().Apply(uint64(8), update).Return(injected),
	)
	r := New(mock, nil, rent.Default())
	if _, err := r.Airdrop(address, amount.New(5)); !errors.Is(err, injected) {
		t.Errorf("expected injected error, got %v", err)
	}

	mock.EXPECT().Close().Return(injected)
	if err := r.Close(); !errors.Is(err, injected) {
		t.Errorf("expected close error, got %v", err)
	}
}

func TestRuntime_StateSurvivesReopening(t *testing.T) {
	params := Parameters{Variant: LevelDbVariant, Archive: LevelDbArchive, Directory: t.TempDir()}
	key, owner := newKey(t)

	r := newTreeRuntime(t, params)
	if _, err := r.Airdrop(owner, amount.New(1_000_000_000)); err != nil {
		t.Fatalf("failed to airdrop: %v", err)
	}
	if _, err := r.Execute(createTreeTx(t, key)); err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("failed to close runtime: %v", err)
	}

	r = newTreeRuntime(t, params)
	defer r.Close()
	result, err := r.Execute(insertTx(t, key, []byte("hello")))
	if err != nil {
		t.Fatalf("failed to insert after reopening: %v", err)
	}
	if result.Block != 3 {
		t.Errorf("unexpected block %d", result.Block)
	}
	if got := len(readTree(t, r, owner).Leafs); got != 1 {
		t.Errorf("unexpected number of leaves %d", got)
	}
	if _, err := r.Execute(createTreeTx(t, key)); !errors.Is(err, program.ErrAddressConflict) {
		t.Errorf("expected ErrAddressConflict when creating a tree twice, got %v", err)
	}
}

func TestNewRuntime_RejectsUnsupportedConfigurations(t *testing.T) {
	tests := map[string]Parameters{
		"unknown variant":        {Variant: "cpp", Directory: t.TempDir()},
		"unknown archive":        {Archive: "s5", Directory: t.TempDir()},
		"persistent without dir": {Variant: LevelDbVariant},
		"archive without dir":    {Archive: SqliteArchive},
	}
	for name, params := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := NewRuntime(params); !errors.Is(err, UnsupportedConfiguration) {
				t.Errorf("expected UnsupportedConfiguration, got %v", err)
			}
		})
	}
}

func TestNewRuntime_UsesCustomRent(t *testing.T) {
	custom := rent.Rent{LamportsPerByteYear: 1, ExemptionYears: 1}
	r := newTreeRuntime(t, Parameters{Rent: &custom})
	defer r.Close()

	key, owner := newKey(t)
	if _, err := r.Airdrop(owner, amount.New(tree.RecordSize)); err != nil {
		t.Fatalf("failed to airdrop: %v", err)
	}
	if _, err := r.Execute(createTreeTx(t, key)); err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}
	if payer, _ := r.GetAccount(owner); !payer.Balance.IsZero() {
		t.Errorf("unexpected remaining balance %v", payer.Balance)
	}
}

func TestNewRuntime_DirectoryCanOnlyBeUsedOnce(t *testing.T) {
	params := Parameters{Variant: LevelDbVariant, Archive: SqliteArchive, Directory: t.TempDir()}
	first := newTreeRuntime(t, params)
	if _, err := NewRuntime(params); err == nil {
		t.Errorf("opening a directory in use should fail")
	}
	if err := first.Close(); err != nil {
		t.Fatalf("failed to close runtime: %v", err)
	}
	second := newTreeRuntime(t, params)
	if err := second.Close(); err != nil {
		t.Fatalf("failed to close runtime: %v", err)
	}
}
