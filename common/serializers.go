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

import "encoding/binary"

// Serializer allows to convert the type to a slice of bytes and back
type Serializer[T any] interface {
	// ToBytes serialize the type to bytes
	ToBytes(T) []byte
	// CopyBytes serialize the type into a provided slice
	CopyBytes(T, []byte)
	// FromBytes deserialize the type from bytes
	FromBytes([]byte) T
	// Size provides the size of the type when serialized (bytes)
	Size() int
}

// HashSerializer is a Serializer of the Hash type
type HashSerializer struct{}

func (a HashSerializer) ToBytes(hash Hash) []byte {
	return hash[:]
}
func (a HashSerializer) CopyBytes(hash Hash, out []byte) {
	copy(out, hash[:])
}
func (a HashSerializer) FromBytes(bytes []byte) Hash {
	var hash Hash
	copy(hash[:], bytes)
	return hash
}
func (a HashSerializer) Size() int {
	return HashSize
}

// IndexSerializer is a Serializer of the Index type, encoded little endian.
type IndexSerializer struct{}

func (a IndexSerializer) ToBytes(value Index) []byte {
	return binary.LittleEndian.AppendUint32(make([]byte, 0, 4), uint32(value))
}
func (a IndexSerializer) CopyBytes(value Index, out []byte) {
	binary.LittleEndian.PutUint32(out, uint32(value))
}
func (a IndexSerializer) FromBytes(bytes []byte) Index {
	return Index(binary.LittleEndian.Uint32(bytes))
}
func (a IndexSerializer) Size() int {
	return 4
}

// Identifier32Serializer is a Serializer of the uint32 type
type Identifier32Serializer struct{}

func (a Identifier32Serializer) ToBytes(value uint32) []byte {
	return binary.LittleEndian.AppendUint32(make([]byte, 0, 4), value)
}
func (a Identifier32Serializer) CopyBytes(value uint32, out []byte) {
	binary.LittleEndian.PutUint32(out, value)
}
func (a Identifier32Serializer) FromBytes(bytes []byte) uint32 {
	return binary.LittleEndian.Uint32(bytes)
}
func (a Identifier32Serializer) Size() int {
	return 4
}
