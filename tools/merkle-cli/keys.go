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
	"log"

	"github.com/Fantom-foundation/merkle-pda/common"
	"github.com/Fantom-foundation/merkle-pda/pda"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/urfave/cli/v2"
)

var keygenCommand = cli.Command{
	Action: keygen,
	Name:   "keygen",
	Usage:  "generates a new private key and stores it in a file",
	Flags: []cli.Flag{
		&keyFileFlag,
	},
}

func keygen(ctx *cli.Context) error {
	key, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	file := ctx.String(keyFileFlag.Name)
	if err := crypto.SaveECDSA(file, key); err != nil {
		return fmt.Errorf("failed to save key: %w", err)
	}
	log.Printf("Stored new key in %v", file)
	fmt.Printf("Address: %v\n", pda.AddressOf(&key.PublicKey))
	return nil
}

var addressCommand = cli.Command{
	Action: printAddress,
	Name:   "address",
	Usage:  "prints the account address of a private key",
	Flags: []cli.Flag{
		&keyFileFlag,
	},
}

func printAddress(ctx *cli.Context) error {
	_, address, err := loadKey(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Address: %v\n", address)
	return nil
}

func parseOwner(ctx *cli.Context) (common.Address, error) {
	owner, err := common.HexToAddress(ctx.String(ownerFlag.Name))
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid owner: %w", err)
	}
	return owner, nil
}
