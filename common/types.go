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
	"encoding/hex"
	"fmt"
)

// HashSize is the number of bytes of a Hash.
const HashSize = 32

// AddressSize is the number of bytes of an Address.
const AddressSize = 32

// Hash is a 32-byte Keccak256 digest. The zero value is the default hash.
type Hash [HashSize]byte

// Address identifies an account. Addresses of key holders are the X
// coordinate of their secp256k1 public key, program derived addresses are
// guaranteed to be off that curve.
type Address [AddressSize]byte

// Index is a position within a sequence of leaves stored in an account.
type Index uint32

// NoIndex is the sentinel Index value marking an absent reference.
const NoIndex = Index(0xFFFFFFFF)

func (h Hash) String() string {
	return fmt.Sprintf("%x", h[:])
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (a Address) String() string {
	return fmt.Sprintf("%x", a[:])
}

// Bytes returns a copy of the address bytes.
func (a Address) Bytes() []byte {
	res := make([]byte, AddressSize)
	copy(res, a[:])
	return res
}

func (i Index) String() string {
	if i == NoIndex {
		return "none"
	}
	return fmt.Sprintf("%d", uint32(i))
}

// HexToAddress parses a hex encoded address. An optional 0x prefix is accepted.
func HexToAddress(s string) (Address, error) {
	var res Address
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return res, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if len(b) != AddressSize {
		return res, fmt.Errorf("invalid address length %d, expected %d", len(b), AddressSize)
	}
	copy(res[:], b)
	return res, nil
}
