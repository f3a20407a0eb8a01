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
	"fmt"

	"github.com/Fantom-foundation/merkle-pda/common"
	"github.com/Fantom-foundation/merkle-pda/common/amount"
	"github.com/Fantom-foundation/merkle-pda/pda"
	"github.com/Fantom-foundation/merkle-pda/program"
	"github.com/Fantom-foundation/merkle-pda/rent"
)

// MaxAccountSize is the largest amount of data a single account may hold.
const MaxAccountSize = 10 << 20

// systemProgram allocates accounts on behalf of the program executing a
// transaction. It operates on the accounts loaded for the transaction, so
// all its effects are discarded if the transaction fails.
type systemProgram struct {
	caller   common.Address
	rent     rent.Rent
	accounts map[common.Address]*program.AccountRef
}

func newSystemProgram(caller common.Address, rent rent.Rent, accounts []*program.AccountRef) *systemProgram {
	res := &systemProgram{
		caller:   caller,
		rent:     rent,
		accounts: make(map[common.Address]*program.AccountRef, len(accounts)),
	}
	for _, account := range accounts {
		res.accounts[account.Key] = account
	}
	return res
}

func (s *systemProgram) CreateAccount(request program.CreateAccountRequest, signerSeeds [][]byte) ([]byte, error) {
	payer, found := s.accounts[request.From]
	if !found {
		return nil, fmt.Errorf("%w: payer %v not provided", program.ErrNotEnoughAccountKeys, request.From)
	}
	target, found := s.accounts[request.To]
	if !found {
		return nil, fmt.Errorf("%w: new account %v not provided", program.ErrNotEnoughAccountKeys, request.To)
	}
	if !payer.IsSigner {
		return nil, fmt.Errorf("%w: payer %v did not sign", program.ErrMissingAuthorization, payer.Key)
	}
	if !payer.IsWritable || !target.IsWritable {
		return nil, fmt.Errorf("%w: payer and new account have to be writable", program.ErrInvalidArgument)
	}
	if !target.IsSigner {
		derived, err := pda.CreateProgramAddress(signerSeeds, s.caller)
		if err != nil || derived != target.Key {
			return nil, fmt.Errorf("%w: %v can not sign for %v", program.ErrMissingAuthorization, s.caller, target.Key)
		}
	}
	if !target.DataIsEmpty() || target.Owner != program.SystemProgramID || !target.Balance.IsZero() {
		return nil, fmt.Errorf("%w: %v is already in use", program.ErrAddressConflict, target.Key)
	}
	if request.Space > MaxAccountSize {
		return nil, fmt.Errorf("%w: %d bytes exceed the maximum account size", program.ErrInvalidArgument, request.Space)
	}
	if !s.rent.IsExempt(request.Balance, request.Space) {
		return nil, fmt.Errorf("%w: %v is below the minimum of %v for %d bytes", program.ErrInsufficientFundsForRent, request.Balance, s.rent.MinimumBalance(request.Space), request.Space)
	}
	remaining, underflow := amount.SubUnderflow(payer.Balance, request.Balance)
	if underflow {
		return nil, fmt.Errorf("%w: %v has %v, needs %v", program.ErrInsufficientFunds, payer.Key, payer.Balance, request.Balance)
	}

	payer.Balance = remaining
	target.Balance = request.Balance
	target.Owner = request.Owner
	target.Data = make([]byte, request.Space)
	return target.Data, nil
}

var _ program.Allocator = (*systemProgram)(nil)
