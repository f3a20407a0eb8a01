// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package amount

import (
	"fmt"

	"github.com/holiman/uint256"
)

// BytesLength is the length of the byte representation of an amount.
const BytesLength = 32

// Amount is a 256-bit unsigned integer used for account balances and the
// minimum balance required to keep an account alive.
type Amount struct {
	internal uint256.Int
}

// New creates a new Amount from up to 4 uint64 arguments. The
// arguments are given in the Big Endian order. No argument results in a value of zero.
// The constructor panics if more than 4 arguments are given.
func New(args ...uint64) Amount {
	if len(args) > 4 {
		panic("too many arguments")
	}
	result := Amount{}
	offset := 4 - len(args)
	for i := 0; i < len(args); i++ {
		result.internal[3-i-offset] = args[i]
	}
	return result
}

// NewFromBytes creates a new Amount instance from up to 32 byte arguments.
// The arguments are given in the Big Endian order. No argument results in a
// value of zero. The constructor panics if more than 32 arguments are given.
func NewFromBytes(bytes ...byte) Amount {
	if len(bytes) > BytesLength {
		panic("too many arguments")
	}
	result := Amount{}
	result.internal.SetBytes(bytes)
	return result
}

// Parse reads a decimal amount.
func Parse(s string) (Amount, error) {
	result := Amount{}
	if err := result.internal.SetFromDecimal(s); err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return result, nil
}

// Uint64 returns the amount as an uint64. The result is only valid if `IsUint64()` returns true.
func (a Amount) Uint64() uint64 {
	return a.internal.Uint64()
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool {
	return a.internal.IsZero()
}

// IsUint64 returns true if the amount is representable as an uint64.
func (a Amount) IsUint64() bool {
	return a.internal.IsUint64()
}

// String returns the string representation of the amount.
func (a Amount) String() string {
	return a.internal.Dec()
}

// Bytes32 returns the amount as a 32 byte array.
func (a Amount) Bytes32() [32]byte {
	return a.internal.Bytes32()
}

// Cmp compares a and b and returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int {
	return a.internal.Cmp(&b.internal)
}

// Add returns the sum of two amounts.
func Add(a, b Amount) Amount {
	result := Amount{}
	result.internal.Add(&a.internal, &b.internal)
	return result
}

// AddOverflow returns the sum of two amounts and a boolean indicating overflow.
func AddOverflow(a, b Amount) (Amount, bool) {
	result := Amount{}
	_, overflow := result.internal.AddOverflow(&a.internal, &b.internal)
	return result, overflow
}

// SubUnderflow returns the difference of two amounts and a boolean indicating underflow.
func SubUnderflow(a, b Amount) (Amount, bool) {
	result := Amount{}
	_, underflow := result.internal.SubOverflow(&a.internal, &b.internal)
	return result, underflow
}

// MulOverflow returns the product of two amounts and a boolean indicating overflow.
func MulOverflow(a, b Amount) (Amount, bool) {
	result := Amount{}
	_, overflow := result.internal.MulOverflow(&a.internal, &b.internal)
	return result, overflow
}

// Max returns the maximum amount.
func Max() Amount {
	return New(0xFFFFFFFFFFFFFFFF, 0xFFFFFFFFFFFFFFFF, 0xFFFFFFFFFFFFFFFF, 0xFFFFFFFFFFFFFFFF)
}
