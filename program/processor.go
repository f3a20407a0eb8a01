// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package program implements the tree program: every key holder may create
// a single Merkle tree account at an address derived from its own address,
// and append leaves to it afterwards.
package program

import (
	"fmt"

	"github.com/Fantom-foundation/merkle-pda/common"
	"github.com/Fantom-foundation/merkle-pda/tree"
)

// DefaultProgramID is the address the tree program is registered at by the tools.
var DefaultProgramID = common.Address(common.Keccak256([]byte("merkle tree program")))

// Processor dispatches instructions of the tree program.
type Processor struct {
	lifecycle Lifecycle
}

// NewProcessor creates the tree program.
func NewProcessor() *Processor {
	return &Processor{}
}

// Process validates the accounts and executes the instruction encoded in data.
func (p *Processor) Process(ctx *Context, accounts []*AccountRef, data []byte) error {
	instruction, payload, err := DecodeInstruction(data)
	if err != nil {
		return err
	}
	switch instruction {
	case InitializeTree:
		return p.initializeTree(ctx, accounts)
	case InsertLeaf:
		return p.insertLeaf(ctx, accounts, payload)
	}
	return fmt.Errorf("%w: unsupported instruction %v", ErrInvalidInstructionData, instruction)
}

func (p *Processor) initializeTree(ctx *Context, accounts []*AccountRef) error {
	if len(accounts) < 3 {
		return fmt.Errorf("%w: %v requires 3 accounts, got %d", ErrNotEnoughAccountKeys, InitializeTree, len(accounts))
	}
	payer, target, system := accounts[0], accounts[1], accounts[2]

	if !payer.IsSigner {
		return fmt.Errorf("%w: payer %v", ErrMissingRequiredSignature, payer.Key)
	}
	if system.Key != SystemProgramID {
		return fmt.Errorf("%w: %v is not the system program", ErrInvalidArgument, system.Key)
	}
	address, bump, err := TreeAddress(payer.Key, ctx.ProgramID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if address != target.Key {
		return fmt.Errorf("%w: %w: expected %v, got %v", ErrInvalidArgument, ErrAddressMismatch, address, target.Key)
	}
	if !target.IsWritable {
		return fmt.Errorf("%w: tree account %v is not writable", ErrInvalidArgument, target.Key)
	}
	if !target.DataIsEmpty() {
		return fmt.Errorf("%w: %w: tree account %v already exists", ErrInvalidArgument, ErrAddressConflict, target.Key)
	}

	if err := p.lifecycle.Create(ctx, payer, target, bump); err != nil {
		return err
	}
	record, err := p.lifecycle.Initialize(target)
	if err != nil {
		return err
	}
	ctx.Logf("created tree %v for %v with capacity %d", target.Key, payer.Key, record.Capacity())
	return nil
}

func (p *Processor) insertLeaf(ctx *Context, accounts []*AccountRef, data []byte) error {
	if len(accounts) < 2 {
		return fmt.Errorf("%w: %v requires 2 accounts, got %d", ErrNotEnoughAccountKeys, InsertLeaf, len(accounts))
	}
	owner, target := accounts[0], accounts[1]

	if !owner.IsSigner {
		return fmt.Errorf("%w: owner %v", ErrMissingRequiredSignature, owner.Key)
	}
	address, _, err := TreeAddress(owner.Key, ctx.ProgramID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if address != target.Key {
		return fmt.Errorf("%w: %w: expected %v, got %v", ErrInvalidArgument, ErrAddressMismatch, address, target.Key)
	}
	if target.DataIsEmpty() {
		return fmt.Errorf("%w: tree account %v does not exist", ErrNotInitialized, target.Key)
	}
	if target.Owner != ctx.ProgramID {
		return fmt.Errorf("%w: %w: %v is owned by %v", ErrInvalidArgument, ErrIllegalOwner, target.Key, target.Owner)
	}
	if !target.IsWritable {
		return fmt.Errorf("%w: tree account %v is not writable", ErrInvalidArgument, target.Key)
	}

	record, err := tree.Deserialize(target.Data)
	if err != nil {
		return err
	}
	if err := record.Insert(data); err != nil {
		return err
	}
	if err := store(record, target); err != nil {
		return err
	}
	leaf := record.Leafs[len(record.Leafs)-1]
	ctx.Logf("leaf %d: %v", len(record.Leafs)-1, leaf.Root)
	ctx.Logf("root: %v", record.Root)
	return nil
}

// ReadTree decodes the tree stored in the given account data.
func ReadTree(data []byte) (*tree.Record, error) {
	if len(data) == 0 {
		return nil, ErrNotInitialized
	}
	return tree.Deserialize(data)
}

var _ Program = (*Processor)(nil)
