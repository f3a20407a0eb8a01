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

import "github.com/Fantom-foundation/merkle-pda/common"

const (
	// ErrUnknownProgram is returned for transactions invoking a program not
	// registered in the runtime.
	ErrUnknownProgram = common.ConstError("unknown program")
	// ErrSignatureVerification is returned for transactions lacking a valid
	// signature of one of their signers.
	ErrSignatureVerification = common.ConstError("signature verification failed")
	// ErrReadonlyModified is returned if a program modified an account the
	// transaction did not grant write access to.
	ErrReadonlyModified = common.ConstError("read-only account modified")
	// ErrNoArchive is returned for history queries on runtimes without archive.
	ErrNoArchive = common.ConstError("no archive available")
)
