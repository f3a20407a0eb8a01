// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package pda derives program addresses: deterministic account addresses
// computed from a list of seeds and the address of the owning program.
//
// A derived address is never a valid secp256k1 X coordinate, hence no
// private key exists that could sign on its behalf. Only the program it was
// derived for may authorize operations on it, by presenting the seeds.
package pda

import (
	"github.com/Fantom-foundation/merkle-pda/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// MaxSeeds is the maximum number of seeds, including the bump seed.
	MaxSeeds = 16
	// MaxSeedLength is the maximum length of a single seed in bytes.
	MaxSeedLength = 32

	// ErrMaxSeedLengthExceeded is returned for seeds not satisfying the limits above.
	ErrMaxSeedLengthExceeded = common.ConstError("length of the seed is too long for address generation")
	// ErrInvalidSeeds is returned if the seeds produce an address on the curve.
	ErrInvalidSeeds = common.ConstError("provided seeds do not result in a valid address")
	// ErrNoViableBump is returned if no bump seed produces an off-curve address.
	ErrNoViableBump = common.ConstError("unable to find a viable program address bump seed")
)

// addressMarker separates derived addresses from any other Keccak256 image.
var addressMarker = []byte("ProgramDerivedAddress")

// CreateProgramAddress computes the address for the given seeds and program.
// It fails with ErrInvalidSeeds if the result happens to be on the curve.
func CreateProgramAddress(seeds [][]byte, programID common.Address) (common.Address, error) {
	if len(seeds) > MaxSeeds {
		return common.Address{}, ErrMaxSeedLengthExceeded
	}
	parts := make([][]byte, 0, len(seeds)+2)
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return common.Address{}, ErrMaxSeedLengthExceeded
		}
		parts = append(parts, seed)
	}
	parts = append(parts, programID[:], addressMarker)
	address := common.Address(common.Keccak256(parts...))
	if IsOnCurve(address) {
		return common.Address{}, ErrInvalidSeeds
	}
	return address, nil
}

// FindProgramAddress searches the highest bump seed for which
// CreateProgramAddress(seeds + [bump]) succeeds. The resulting address and
// bump are reproducible by anyone knowing the seeds and the program.
func FindProgramAddress(seeds [][]byte, programID common.Address) (common.Address, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return common.Address{}, 0, ErrMaxSeedLengthExceeded
	}
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	bump := []byte{0}
	withBump[len(seeds)] = bump
	for i := 255; i >= 0; i-- {
		bump[0] = uint8(i)
		address, err := CreateProgramAddress(withBump, programID)
		if err == nil {
			return address, uint8(i), nil
		}
		if err != ErrInvalidSeeds {
			return common.Address{}, 0, err
		}
	}
	return common.Address{}, 0, ErrNoViableBump
}

// IsOnCurve reports whether the given address is the X coordinate of a
// point on the secp256k1 curve, and thus could be an account of a key holder.
func IsOnCurve(address common.Address) bool {
	compressed := make([]byte, 0, 1+common.AddressSize)
	compressed = append(compressed, 0x02)
	compressed = append(compressed, address[:]...)
	_, err := crypto.DecompressPubkey(compressed)
	return err == nil
}
