// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package program

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Fantom-foundation/merkle-pda/common"
	"github.com/Fantom-foundation/merkle-pda/common/amount"
	"github.com/Fantom-foundation/merkle-pda/tree"
	"github.com/golang/mock/gomock"
)

func TestLifecycle_CreateRequiresPayerSignature(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	allocator := NewMockAllocator(ctrl)

	address, bump := treeAddressOf(t, owner1)
	payer := &AccountRef{Key: owner1}
	target := &AccountRef{Key: address, IsWritable: true}
	err := Lifecycle{}.Create(newContext(allocator), payer, target, bump)
	if !errors.Is(err, ErrMissingAuthorization) {
		t.Errorf("expected ErrMissingAuthorization, got %v", err)
	}
}

func TestLifecycle_CreateRequiresMatchingBump(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	allocator := NewMockAllocator(ctrl)

	address, bump := treeAddressOf(t, owner1)
	payer := &AccountRef{Key: owner1, IsSigner: true}
	target := &AccountRef{Key: address, IsWritable: true}
	for _, wrong := range []uint8{bump + 1, bump - 1} {
		err := Lifecycle{}.Create(newContext(allocator), payer, target, wrong)
		if !errors.Is(err, ErrAddressMismatch) {
			t.Errorf("expected ErrAddressMismatch for bump %d, got %v", wrong, err)
		}
	}
}

func TestLifecycle_CreateRejectsPopulatedTarget(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	allocator := NewMockAllocator(ctrl)

	address, bump := treeAddressOf(t, owner1)
	payer := &AccountRef{Key: owner1, IsSigner: true}
	target := &AccountRef{Key: address, IsWritable: true, Data: []byte{0}}
	err := Lifecycle{}.Create(newContext(allocator), payer, target, bump)
	if !errors.Is(err, ErrAddressConflict) {
		t.Errorf("expected ErrAddressConflict, got %v", err)
	}
}

func TestLifecycle_CreateFundsAccountWithMinimumBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	allocator := NewMockAllocator(ctrl)
	expectCreation(t, allocator, owner1)

	ctx := newContext(allocator)
	address, bump := treeAddressOf(t, owner1)
	payer := &AccountRef{Key: owner1, IsSigner: true}
	target := &AccountRef{Key: address, IsWritable: true}
	if err := (Lifecycle{}).Create(ctx, payer, target, bump); err != nil {
		t.Fatalf("failed to create account: %v", err)
	}
	if want := ctx.Rent.MinimumBalance(tree.RecordSize); target.Balance != want {
		t.Errorf("unexpected balance, wanted %v, got %v", want, target.Balance)
	}
	if len(target.Data) != tree.RecordSize {
		t.Errorf("unexpected size %d", len(target.Data))
	}
}

func TestLifecycle_InitializeResetsFreshAccount(t *testing.T) {
	target := &AccountRef{Data: make([]byte, tree.RecordSize)}
	record, err := Lifecycle{}.Initialize(target)
	if err != nil {
		t.Fatalf("failed to initialize: %v", err)
	}
	if !record.Initialized || record.Root != (common.Hash{}) || len(record.Leafs) != 0 {
		t.Errorf("unexpected record state %v", record)
	}
	want, err := record.Serialize()
	if err != nil {
		t.Fatalf("failed to serialize: %v", err)
	}
	if !bytes.Equal(target.Data[:len(want)], want) {
		t.Errorf("account data does not hold the initialized record")
	}
}

func TestLifecycle_InitializeFailsOnGarbage(t *testing.T) {
	data := make([]byte, tree.RecordSize)
	data[0] = 7
	target := &AccountRef{Data: bytes.Clone(data), Balance: amount.New(1)}
	if _, err := (Lifecycle{}).Initialize(target); !errors.Is(err, ErrSerialization) {
		t.Errorf("expected ErrSerialization, got %v", err)
	}
	if !bytes.Equal(data, target.Data) {
		t.Errorf("failed initialization modified the account")
	}
}

func TestInstruction_EncodeDecode(t *testing.T) {
	instruction, payload, err := DecodeInstruction(EncodeInsertLeaf([]byte("data")))
	if err != nil || instruction != InsertLeaf || string(payload) != "data" {
		t.Errorf("unexpected decoding: %v %q %v", instruction, payload, err)
	}
	instruction, payload, err = DecodeInstruction(EncodeInsertLeaf(nil))
	if err != nil || instruction != InsertLeaf || len(payload) != 0 {
		t.Errorf("unexpected decoding: %v %q %v", instruction, payload, err)
	}
	instruction, _, err = DecodeInstruction(EncodeInitializeTree())
	if err != nil || instruction != InitializeTree {
		t.Errorf("unexpected decoding: %v %v", instruction, err)
	}
	if got := Instruction(9).String(); got != "Instruction(9)" {
		t.Errorf("unexpected name %v", got)
	}
}
