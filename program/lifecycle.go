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
	"fmt"

	"github.com/Fantom-foundation/merkle-pda/common"
	"github.com/Fantom-foundation/merkle-pda/pda"
	"github.com/Fantom-foundation/merkle-pda/tree"
)

// SeedPrefix separates tree accounts from other addresses derived for the program.
var SeedPrefix = []byte("merkle")

// TreeAddress returns the address of the tree account of the given owner
// and the bump seed needed to sign on its behalf.
func TreeAddress(owner, programID common.Address) (common.Address, uint8, error) {
	return pda.FindProgramAddress(treeSeeds(owner), programID)
}

func treeSeeds(owner common.Address) [][]byte {
	return [][]byte{SeedPrefix, owner.Bytes()}
}

// Lifecycle creates tree accounts and puts them into their initial state.
type Lifecycle struct{}

// Create allocates the tree account of the payer at the given target. The
// bump has to be the one obtained from TreeAddress for the payer. The
// account is sized for a full tree and funded with the minimum balance
// making it exempt from rent.
func (Lifecycle) Create(ctx *Context, payer, target *AccountRef, bump uint8) error {
	if !payer.IsSigner {
		return fmt.Errorf("%w: payer %v did not sign", ErrMissingAuthorization, payer.Key)
	}
	seeds := append(treeSeeds(payer.Key), []byte{bump})
	address, err := pda.CreateProgramAddress(seeds, ctx.ProgramID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAddressMismatch, err)
	}
	if address != target.Key {
		return fmt.Errorf("%w: expected %v, got %v", ErrAddressMismatch, address, target.Key)
	}
	if !target.DataIsEmpty() {
		return fmt.Errorf("%w: %v holds %d bytes", ErrAddressConflict, target.Key, len(target.Data))
	}

	space := uint64(tree.RecordSize)
	request := CreateAccountRequest{
		From:    payer.Key,
		To:      target.Key,
		Balance: ctx.Rent.MinimumBalance(space),
		Space:   space,
		Owner:   ctx.ProgramID,
	}
	data, err := ctx.Allocator.CreateAccount(request, seeds)
	if err != nil {
		return err
	}
	if len(data) != int(space) {
		return fmt.Errorf("%w: allocated %d bytes, requested %d", ErrSerialization, len(data), space)
	}
	target.Data = data
	target.Owner = request.Owner
	target.Balance = request.Balance
	return nil
}

// Initialize puts a freshly allocated tree account into the initialized,
// empty state. The account data is only modified on success.
func (Lifecycle) Initialize(target *AccountRef) (*tree.Record, error) {
	record, err := tree.DeserializeUnchecked(target.Data)
	if err != nil {
		return nil, err
	}
	record.Reset()
	if err := store(record, target); err != nil {
		return nil, err
	}
	return record, nil
}

// store serializes the record into the account data, leaving the account
// untouched on failure.
func store(record *tree.Record, target *AccountRef) error {
	scratch := make([]byte, len(target.Data))
	if err := record.SerializeTo(scratch); err != nil {
		return err
	}
	copy(target.Data, scratch)
	return nil
}
