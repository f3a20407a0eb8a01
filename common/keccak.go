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
	"sync"

	"golang.org/x/crypto/sha3"
)

var keccakHasherPool = sync.Pool{New: func() any { return sha3.NewLegacyKeccak256() }}

type keccakHasher interface {
	Reset()
	Write(in []byte) (int, error)
	Read(out []byte) (int, error)
}

// Keccak256 hashes the concatenation of the given byte slices.
func Keccak256(data ...[]byte) Hash {
	hasher := keccakHasherPool.Get().(keccakHasher)
	hasher.Reset()
	for _, cur := range data {
		hasher.Write(cur)
	}
	var res Hash
	hasher.Read(res[:])
	keccakHasherPool.Put(hasher)
	return res
}

// Keccak256ForHashes hashes the concatenation of two hashes, as done for
// combining sibling nodes of a tree.
func Keccak256ForHashes(left, right Hash) Hash {
	return Keccak256(left[:], right[:])
}
