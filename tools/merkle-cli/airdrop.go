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
	"fmt"

	"github.com/Fantom-foundation/merkle-pda/common/amount"
	"github.com/urfave/cli/v2"
)

var amountFlag = cli.StringFlag{
	Name:     "amount",
	Usage:    "the decimal amount to be credited",
	Required: true,
}

var airdropCommand = cli.Command{
	Action: airdrop,
	Name:   "airdrop",
	Usage:  "credits funds to the account of a key, e.g. to pay for a tree account",
	Flags: []cli.Flag{
		&dbDirectoryFlag,
		&archiveFlag,
		&keyFileFlag,
		&amountFlag,
	},
}

func airdrop(ctx *cli.Context) (err error) {
	value, err := amount.Parse(ctx.String(amountFlag.Name))
	if err != nil {
		return err
	}
	_, address, err := loadKey(ctx)
	if err != nil {
		return err
	}
	r, err := open(ctx)
	if err != nil {
		return err
	}
	defer closeRuntime(r, ctx.String(dbDirectoryFlag.Name), &err)

	block, err := r.Airdrop(address, value)
	if err != nil {
		return err
	}
	account, err := r.GetAccount(address)
	if err != nil {
		return err
	}
	fmt.Printf("Block %d: balance of %v is %v\n", block, address, account.Balance)
	return nil
}
