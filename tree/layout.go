// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package tree

import "github.com/Fantom-foundation/merkle-pda/common"

// Byte layout of a serialized Record, in order:
//
//	initialized flag       1 byte
//	root hash             32 bytes
//	top-level children   2x4 bytes
//	leaf count             4 bytes
//	leaves              count x LeafBytes
//
// All integers are little endian.
const (
	InitializedBytes = 1
	RootHashBytes    = common.HashSize
	ChildBytes       = 2 * 4
	LengthBytes      = 4
	LeafBytes        = common.HashSize + 2*4

	// HeaderBytes is the size of everything before the first leaf.
	HeaderBytes = InitializedBytes + RootHashBytes + ChildBytes + LengthBytes

	// LeafRegionBytes is the space reserved for leaves: 1KiB plus one slot.
	LeafRegionBytes = 1024 + LeafBytes

	// RecordSize is the size of the account created for a tree. A full
	// leaf-sized slot is reserved behind the fixed header to hold the count.
	RecordSize = InitializedBytes + RootHashBytes + ChildBytes + LeafBytes + LeafRegionBytes

	// Capacity is the number of leaves fitting into an account of RecordSize.
	Capacity = LeafRegionBytes / LeafBytes
)

// CapacityOf returns the number of leaves a buffer of the given size can hold.
func CapacityOf(size int) int {
	res := (size - InitializedBytes - RootHashBytes - ChildBytes - LeafBytes) / LeafBytes
	if res < 0 {
		return 0
	}
	return res
}

// SizeFor returns the smallest buffer size providing the given capacity.
func SizeFor(capacity int) int {
	return InitializedBytes + RootHashBytes + ChildBytes + LeafBytes + capacity*LeafBytes
}

// EncodedSize returns the number of bytes used by a record with n leaves.
func EncodedSize(n int) int {
	return HeaderBytes + n*LeafBytes
}
