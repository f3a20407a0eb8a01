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
	"github.com/Fantom-foundation/merkle-pda/common"
	"github.com/Fantom-foundation/merkle-pda/tree"
)

const (
	ErrMissingRequiredSignature = common.ConstError("missing required signature for instruction")
	ErrInvalidArgument          = common.ConstError("invalid argument")
	ErrAddressConflict          = common.ConstError("account already in use")
	ErrAddressMismatch          = common.ConstError("account does not match the derived address")
	ErrMissingAuthorization     = common.ConstError("missing authorization to create account")
	ErrNotEnoughAccountKeys     = common.ConstError("insufficient account keys for instruction")
	ErrInvalidInstructionData   = common.ConstError("invalid instruction data")
	ErrIllegalOwner             = common.ConstError("account is not owned by the program")
	ErrInsufficientFunds        = common.ConstError("insufficient funds")
	ErrInsufficientFundsForRent = common.ConstError("insufficient funds for rent")

	ErrNotInitialized   = tree.ErrNotInitialized
	ErrCapacityExceeded = tree.ErrCapacityExceeded
	ErrSerialization    = tree.ErrSerialization
)
