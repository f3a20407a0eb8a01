// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/Fantom-foundation/merkle-pda/common/amount"
)

// accountHeaderSize is the size of the encoded balance, owner and data length.
const accountHeaderSize = 32 + AddressSize + 4

// Account is the state kept for a single address: a balance, the program
// allowed to modify the data, and the data itself.
type Account struct {
	Balance amount.Amount
	Owner   Address
	Data    []byte
}

// IsEmpty is true for accounts without balance, owner, or data. Empty
// accounts are not retained by the ledger.
func (a *Account) IsEmpty() bool {
	return a.Balance.IsZero() && a.Owner == (Address{}) && len(a.Data) == 0
}

// Clone creates a deep copy of the account.
func (a *Account) Clone() Account {
	res := *a
	if a.Data != nil {
		res.Data = bytes.Clone(a.Data)
	}
	return res
}

// Equal compares the content of two accounts.
func (a *Account) Equal(b *Account) bool {
	return a.Balance == b.Balance && a.Owner == b.Owner && bytes.Equal(a.Data, b.Data)
}

// Hash computes the Keccak256 hash of the encoded account.
func (a *Account) Hash() Hash {
	return Keccak256(a.ToBytes())
}

func (a Account) String() string {
	return fmt.Sprintf("Account{balance: %v, owner: %v, data: %d bytes}", a.Balance, a.Owner, len(a.Data))
}

// ToBytes encodes the account as the balance (32 bytes, big endian), the
// owner, the data length (4 bytes, little endian), and the data.
func (a *Account) ToBytes() []byte {
	res := make([]byte, accountHeaderSize+len(a.Data))
	balance := a.Balance.Bytes32()
	copy(res[0:32], balance[:])
	copy(res[32:32+AddressSize], a.Owner[:])
	binary.LittleEndian.PutUint32(res[32+AddressSize:], uint32(len(a.Data)))
	copy(res[accountHeaderSize:], a.Data)
	return res
}

// AccountFromBytes decodes an account produced by Account.ToBytes.
func AccountFromBytes(data []byte) (Account, error) {
	if len(data) < accountHeaderSize {
		return Account{}, fmt.Errorf("invalid account encoding, %d bytes are too few", len(data))
	}
	length := binary.LittleEndian.Uint32(data[32+AddressSize:])
	if uint64(len(data)-accountHeaderSize) != uint64(length) {
		return Account{}, fmt.Errorf("invalid account encoding, expected %d bytes of data, got %d", length, len(data)-accountHeaderSize)
	}
	res := Account{
		Balance: amount.NewFromBytes(data[0:32]...),
	}
	copy(res.Owner[:], data[32:32+AddressSize])
	if length > 0 {
		res.Data = bytes.Clone(data[accountHeaderSize:])
	}
	return res, nil
}
