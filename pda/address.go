// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package pda

import (
	"crypto/ecdsa"

	"github.com/Fantom-foundation/merkle-pda/common"
)

// AddressOf returns the account address of the given public key, which is
// the big-endian X coordinate of the key. It is always on the curve.
func AddressOf(key *ecdsa.PublicKey) common.Address {
	var res common.Address
	key.X.FillBytes(res[:])
	return res
}
