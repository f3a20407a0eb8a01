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

import (
	"crypto/ecdsa"
	"encoding/binary"
	"fmt"

	"github.com/Fantom-foundation/merkle-pda/common"
	"github.com/Fantom-foundation/merkle-pda/pda"
	"github.com/ethereum/go-ethereum/crypto"
)

// AccountMeta lists an account accessed by a transaction together with the
// access rights requested for it.
type AccountMeta struct {
	Key        common.Address
	IsSigner   bool
	IsWritable bool
}

// Transaction invokes a single instruction of a program. Every account
// flagged as signer has to provide a signature of the transaction hash.
type Transaction struct {
	ProgramID  common.Address
	Accounts   []AccountMeta
	Data       []byte
	Signatures map[common.Address][]byte
}

// Hash computes the Keccak256 hash of the canonical encoding of the
// transaction, excluding its signatures.
func (t *Transaction) Hash() common.Hash {
	size := common.AddressSize + 4 + len(t.Accounts)*(common.AddressSize+1) + 4 + len(t.Data)
	buffer := make([]byte, 0, size)
	buffer = append(buffer, t.ProgramID[:]...)
	buffer = binary.BigEndian.AppendUint32(buffer, uint32(len(t.Accounts)))
	for _, meta := range t.Accounts {
		var flags byte
		if meta.IsSigner {
			flags |= 1
		}
		if meta.IsWritable {
			flags |= 2
		}
		buffer = append(buffer, meta.Key[:]...)
		buffer = append(buffer, flags)
	}
	buffer = binary.BigEndian.AppendUint32(buffer, uint32(len(t.Data)))
	buffer = append(buffer, t.Data...)
	return common.Keccak256(buffer)
}

// Sign adds the signature of the given key to the transaction.
func (t *Transaction) Sign(key *ecdsa.PrivateKey) error {
	hash := t.Hash()
	signature, err := crypto.Sign(hash[:], key)
	if err != nil {
		return err
	}
	if t.Signatures == nil {
		t.Signatures = map[common.Address][]byte{}
	}
	t.Signatures[pda.AddressOf(&key.PublicKey)] = signature
	return nil
}

// verifySignatures checks all signatures of the transaction and makes sure
// every account flagged as signer has signed it.
func (t *Transaction) verifySignatures() error {
	hash := t.Hash()
	for address, signature := range t.Signatures {
		key, err := crypto.SigToPub(hash[:], signature)
		if err != nil {
			return fmt.Errorf("%w: invalid signature for %v: %w", ErrSignatureVerification, address, err)
		}
		if signer := pda.AddressOf(key); signer != address {
			return fmt.Errorf("%w: signature of %v claimed by %v", ErrSignatureVerification, signer, address)
		}
	}
	for _, meta := range t.Accounts {
		if !meta.IsSigner {
			continue
		}
		if _, found := t.Signatures[meta.Key]; !found {
			return fmt.Errorf("%w: missing signature of %v", ErrSignatureVerification, meta.Key)
		}
	}
	return nil
}
