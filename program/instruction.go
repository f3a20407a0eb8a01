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

import "fmt"

// Instruction identifies the operation requested from the tree program. It
// is encoded as the first byte of the instruction data.
type Instruction byte

const (
	// InitializeTree creates and initializes the tree account of the signer.
	// Accounts: [signer, writable] payer, [writable] tree, [] system program.
	InitializeTree Instruction = 0
	// InsertLeaf appends the remaining instruction data as a new leaf.
	// Accounts: [signer] owner, [writable] tree.
	InsertLeaf Instruction = 1
)

func (i Instruction) String() string {
	switch i {
	case InitializeTree:
		return "InitializeTree"
	case InsertLeaf:
		return "InsertLeaf"
	}
	return fmt.Sprintf("Instruction(%d)", byte(i))
}

// EncodeInitializeTree produces the instruction data creating a tree.
func EncodeInitializeTree() []byte {
	return []byte{byte(InitializeTree)}
}

// EncodeInsertLeaf produces the instruction data inserting the given data.
func EncodeInsertLeaf(data []byte) []byte {
	res := make([]byte, 0, len(data)+1)
	res = append(res, byte(InsertLeaf))
	return append(res, data...)
}

// DecodeInstruction splits instruction data into the instruction and its payload.
func DecodeInstruction(data []byte) (Instruction, []byte, error) {
	if len(data) == 0 {
		return 0, nil, fmt.Errorf("%w: empty instruction", ErrInvalidInstructionData)
	}
	instruction := Instruction(data[0])
	switch instruction {
	case InitializeTree:
		if len(data) != 1 {
			return 0, nil, fmt.Errorf("%w: unexpected payload for %v", ErrInvalidInstructionData, instruction)
		}
	case InsertLeaf:
	default:
		return 0, nil, fmt.Errorf("%w: unknown instruction %d", ErrInvalidInstructionData, data[0])
	}
	return instruction, data[1:], nil
}
