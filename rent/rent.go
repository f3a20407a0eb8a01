// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package rent computes the minimum balance an account must hold to be kept
// by the runtime indefinitely.
package rent

import "github.com/Fantom-foundation/merkle-pda/common/amount"

// Rent holds the pricing parameters for account storage.
type Rent struct {
	// LamportsPerByteYear is the price of storing one byte for one year.
	LamportsPerByteYear uint64
	// ExemptionYears is the number of years of storage an account has to
	// prepay to become exempt from rent collection.
	ExemptionYears uint64
	// AccountOverhead is the number of bytes charged for every account in
	// addition to its data.
	AccountOverhead uint64
}

// Default returns the default rent parameters.
func Default() Rent {
	return Rent{
		LamportsPerByteYear: 3480,
		ExemptionYears:      2,
		AccountOverhead:     128,
	}
}

// MinimumBalance returns the balance required for an account holding the
// given number of data bytes. The result saturates at the maximum amount.
func (r Rent) MinimumBalance(space uint64) amount.Amount {
	size, overflow := amount.AddOverflow(amount.New(r.AccountOverhead), amount.New(space))
	if overflow {
		return amount.Max()
	}
	perYear, overflow := amount.MulOverflow(size, amount.New(r.LamportsPerByteYear))
	if overflow {
		return amount.Max()
	}
	res, overflow := amount.MulOverflow(perYear, amount.New(r.ExemptionYears))
	if overflow {
		return amount.Max()
	}
	return res
}

// IsExempt reports whether the given balance covers an account of the given size.
func (r Rent) IsExempt(balance amount.Amount, space uint64) bool {
	return balance.Cmp(r.MinimumBalance(space)) >= 0
}
