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

//go:generate mockgen -source allocator.go -destination allocator_mocks.go -package program

import (
	"github.com/Fantom-foundation/merkle-pda/common"
	"github.com/Fantom-foundation/merkle-pda/common/amount"
)

// CreateAccountRequest describes a new account to be allocated.
type CreateAccountRequest struct {
	// From is the account paying for the new account.
	From common.Address
	// To is the address of the account to be created.
	To common.Address
	// Balance is transferred from the payer to the new account.
	Balance amount.Amount
	// Space is the size of the zero-initialized data of the new account.
	Space uint64
	// Owner is the program granted write access to the new account.
	Owner common.Address
}

// Allocator is the interface of the system program creating accounts.
type Allocator interface {
	// CreateAccount creates the requested account and returns its data
	// buffer. If the new account has no private key, the calling program
	// authorizes the creation by providing the seeds of the target's
	// derived address.
	CreateAccount(request CreateAccountRequest, signerSeeds [][]byte) ([]byte, error)
}
