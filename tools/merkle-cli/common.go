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
	"log"
	"os"
	"runtime/pprof"

	"github.com/Fantom-foundation/merkle-pda/common"
	"github.com/Fantom-foundation/merkle-pda/pda"
	"github.com/Fantom-foundation/merkle-pda/program"
	"github.com/Fantom-foundation/merkle-pda/runtime"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/urfave/cli/v2"
)

var (
	dbDirectoryFlag = cli.StringFlag{
		Name:     "dir",
		Usage:    "the targeted ledger directory",
		Required: true,
	}
	archiveFlag = cli.StringFlag{
		Name:  "archive",
		Usage: "the archive implementation to be used (none, ldb, sqlite)",
		Value: string(runtime.LevelDbArchive),
	}
	keyFileFlag = cli.StringFlag{
		Name:     "key",
		Usage:    "the file holding the hex encoded private key of the signer",
		Required: true,
	}
	ownerFlag = cli.StringFlag{
		Name:     "owner",
		Usage:    "the hex encoded address of the tree owner",
		Required: true,
	}
	cpuProfilingFlag = cli.StringFlag{
		Name:  "cpu-profile",
		Usage: "enable the recording of a CPU profile",
	}
)

// open opens the runtime stored in the directory selected by the command
// line and registers the tree program.
func open(ctx *cli.Context) (*runtime.Runtime, error) {
	dir := ctx.String(dbDirectoryFlag.Name)
	log.Printf("Opening ledger in %v ...", dir)
	r, err := runtime.NewRuntime(runtime.Parameters{
		Variant:   runtime.LevelDbVariant,
		Archive:   runtime.ArchiveType(ctx.String(archiveFlag.Name)),
		Directory: dir,
	})
	if err != nil {
		return nil, err
	}
	if err := r.Register(program.DefaultProgramID, program.NewProcessor()); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// closeRuntime closes the runtime, reporting the failure through err if no
// other error occurred before.
func closeRuntime(r *runtime.Runtime, dir string, err *error) {
	log.Printf("Closing ledger in %v ...", dir)
	if closeError := r.Close(); closeError != nil {
		if *err == nil {
			*err = closeError
		} else {
			log.Printf("Failure closing ledger: %v", closeError)
		}
	}
}

func loadKey(ctx *cli.Context) (*ecdsa.PrivateKey, common.Address, error) {
	key, err := crypto.LoadECDSA(ctx.String(keyFileFlag.Name))
	if err != nil {
		return nil, common.Address{}, fmt.Errorf("failed to load key: %w", err)
	}
	return key, pda.AddressOf(&key.PublicKey), nil
}

func StartCPUProfile(profileName string) error {
	f, err := os.Create(profileName)
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %s", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		return fmt.Errorf("could not start CPU profile: %s", err)
	}
	return nil
}

func StopCPUProfile() {
	pprof.StopCPUProfile()
}
