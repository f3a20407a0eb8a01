// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/Fantom-foundation/merkle-pda/common"
	"github.com/Fantom-foundation/merkle-pda/pda"
	"github.com/Fantom-foundation/merkle-pda/program"
	"github.com/Fantom-foundation/merkle-pda/runtime"
	"github.com/urfave/cli/v2"
)

var (
	dataFlag = cli.StringFlag{
		Name:     "data",
		Usage:    "the data of the leaf to be inserted",
		Required: true,
	}
	blockFlag = cli.Uint64Flag{
		Name:     "block",
		Usage:    "the block to be inspected",
		Required: true,
	}
)

var deriveCommand = cli.Command{
	Action: derive,
	Name:   "derive",
	Usage:  "prints the address of the tree account of an owner",
	Flags: []cli.Flag{
		&ownerFlag,
	},
}

func derive(ctx *cli.Context) error {
	owner, err := parseOwner(ctx)
	if err != nil {
		return err
	}
	address, bump, err := program.TreeAddress(owner, program.DefaultProgramID)
	if err != nil {
		return err
	}
	fmt.Printf("Tree: %v\nBump: %d\n", address, bump)
	return nil
}

var createCommand = cli.Command{
	Action: create,
	Name:   "create",
	Usage:  "creates the tree account of a key",
	Flags: []cli.Flag{
		&dbDirectoryFlag,
		&archiveFlag,
		&keyFileFlag,
		&cpuProfilingFlag,
	},
}

func create(ctx *cli.Context) error {
	key, _, err := loadKey(ctx)
	if err != nil {
		return err
	}
	tx, err := newCreateTreeTransaction(key)
	if err != nil {
		return err
	}
	return execute(ctx, tx)
}

var insertCommand = cli.Command{
	Action: insert,
	Name:   "insert",
	Usage:  "appends a leaf to the tree of a key",
	Flags: []cli.Flag{
		&dbDirectoryFlag,
		&archiveFlag,
		&keyFileFlag,
		&dataFlag,
		&cpuProfilingFlag,
	},
}

func insert(ctx *cli.Context) error {
	key, _, err := loadKey(ctx)
	if err != nil {
		return err
	}
	tx, err := newInsertLeafTransaction(key, []byte(ctx.String(dataFlag.Name)))
	if err != nil {
		return err
	}
	return execute(ctx, tx)
}

func execute(ctx *cli.Context, tx *runtime.Transaction) (err error) {
	profileTarget := ctx.String(cpuProfilingFlag.Name)
	if len(profileTarget) != 0 {
		if err := StartCPUProfile(profileTarget); err != nil {
			return err
		}
		defer StopCPUProfile()
	}

	r, err := open(ctx)
	if err != nil {
		return err
	}
	defer closeRuntime(r, ctx.String(dbDirectoryFlag.Name), &err)

	result, err := r.Execute(tx)
	if err != nil {
		return err
	}
	fmt.Printf("Committed in block %d\n", result.Block)
	for _, log := range result.Logs {
		fmt.Printf("  %v\n", log)
	}
	return nil
}

// newCreateTreeTransaction creates a signed transaction creating the tree of the given key.
func newCreateTreeTransaction(key *ecdsa.PrivateKey) (*runtime.Transaction, error) {
	owner := pda.AddressOf(&key.PublicKey)
	address, _, err := program.TreeAddress(owner, program.DefaultProgramID)
	if err != nil {
		return nil, err
	}
	tx := &runtime.Transaction{
		ProgramID: program.DefaultProgramID,
		Accounts: []runtime.AccountMeta{
			{Key: owner, IsSigner: true, IsWritable: true},
			{Key: address, IsWritable: true},
			{Key: program.SystemProgramID},
		},
		Data: program.EncodeInitializeTree(),
	}
	return tx, tx.Sign(key)
}

// newInsertLeafTransaction creates a signed transaction appending data to the tree of the given key.
func newInsertLeafTransaction(key *ecdsa.PrivateKey, data []byte) (*runtime.Transaction, error) {
	owner := pda.AddressOf(&key.PublicKey)
	address, _, err := program.TreeAddress(owner, program.DefaultProgramID)
	if err != nil {
		return nil, err
	}
	tx := &runtime.Transaction{
		ProgramID: program.DefaultProgramID,
		Accounts: []runtime.AccountMeta{
			{Key: owner, IsSigner: true},
			{Key: address, IsWritable: true},
		},
		Data: program.EncodeInsertLeaf(data),
	}
	return tx, tx.Sign(key)
}

var infoCommand = cli.Command{
	Action: info,
	Name:   "info",
	Usage:  "prints the content of the tree of an owner",
	Flags: []cli.Flag{
		&dbDirectoryFlag,
		&archiveFlag,
		&ownerFlag,
	},
}

func info(ctx *cli.Context) (err error) {
	owner, err := parseOwner(ctx)
	if err != nil {
		return err
	}
	address, _, err := program.TreeAddress(owner, program.DefaultProgramID)
	if err != nil {
		return err
	}
	r, err := open(ctx)
	if err != nil {
		return err
	}
	defer closeRuntime(r, ctx.String(dbDirectoryFlag.Name), &err)

	account, err := r.GetAccount(address)
	if err != nil {
		return err
	}
	record, err := program.ReadTree(account.Data)
	if err != nil {
		return fmt.Errorf("no tree for %v at %v: %w", owner, address, err)
	}
	fmt.Printf("Tree:     %v\n", address)
	fmt.Printf("Balance:  %v\n", account.Balance)
	fmt.Printf("Root:     %v\n", record.Root)
	fmt.Printf("Children: %v, %v\n", record.Child[0], record.Child[1])
	fmt.Printf("Leaves:   %d of %d\n", len(record.Leafs), record.Capacity())
	for i, leaf := range record.Leafs {
		fmt.Printf("  %3d: %v\n", i, leaf.Root)
	}
	return nil
}

var historyCommand = cli.Command{
	Action: history,
	Name:   "history",
	Usage:  "prints the archived hash of the tree account of an owner at a block",
	Flags: []cli.Flag{
		&dbDirectoryFlag,
		&archiveFlag,
		&ownerFlag,
		&blockFlag,
	},
}

func history(ctx *cli.Context) (err error) {
	owner, err := parseOwner(ctx)
	if err != nil {
		return err
	}
	address, _, err := program.TreeAddress(owner, program.DefaultProgramID)
	if err != nil {
		return err
	}
	r, err := open(ctx)
	if err != nil {
		return err
	}
	defer closeRuntime(r, ctx.String(dbDirectoryFlag.Name), &err)

	block := ctx.Uint64(blockFlag.Name)
	hash, err := r.GetAccountHash(block, address)
	if err != nil {
		return err
	}
	if hash == (common.Hash{}) {
		fmt.Printf("Block %d: no tree for %v\n", block, owner)
		return nil
	}
	fmt.Printf("Block %d: tree account hash %v\n", block, hash)
	return nil
}
