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

import (
	"fmt"

	"github.com/Fantom-foundation/merkle-pda/common"
)

var (
	hashSerializer  common.Serializer[common.Hash]  = common.HashSerializer{}
	indexSerializer common.Serializer[common.Index] = common.IndexSerializer{}
	countSerializer common.Serializer[uint32]       = common.Identifier32Serializer{}
)

// Serialize encodes the record into a new buffer of the minimal size
// preserving the record's capacity.
func (r *Record) Serialize() ([]byte, error) {
	buffer := make([]byte, SizeFor(r.capacity))
	if err := r.SerializeTo(buffer); err != nil {
		return nil, err
	}
	return buffer, nil
}

// SerializeTo encodes the record into the given buffer. Bytes behind the
// encoded record are zeroed. The buffer is not modified on failure.
func (r *Record) SerializeTo(buffer []byte) error {
	if len(buffer) < HeaderBytes {
		return fmt.Errorf("%w: buffer of %d bytes is too short", ErrSerialization, len(buffer))
	}
	if len(r.Leafs) > CapacityOf(len(buffer)) {
		return fmt.Errorf("%w: %d leaves do not fit into %d bytes", ErrSerialization, len(r.Leafs), len(buffer))
	}
	if r.Initialized {
		buffer[0] = 1
	} else {
		buffer[0] = 0
	}
	pos := InitializedBytes
	hashSerializer.CopyBytes(r.Root, buffer[pos:])
	pos += RootHashBytes
	pos = writeChildren(r.Child, buffer, pos)
	countSerializer.CopyBytes(uint32(len(r.Leafs)), buffer[pos:])
	pos += LengthBytes
	for _, leaf := range r.Leafs {
		hashSerializer.CopyBytes(leaf.Root, buffer[pos:])
		pos = writeChildren(leaf.Child, buffer, pos+common.HashSize)
	}
	clear(buffer[pos:])
	return nil
}

func writeChildren(child [2]common.Index, buffer []byte, pos int) int {
	indexSerializer.CopyBytes(child[0], buffer[pos:])
	indexSerializer.CopyBytes(child[1], buffer[pos+4:])
	return pos + ChildBytes
}

func readChildren(buffer []byte, pos int) ([2]common.Index, int) {
	return [2]common.Index{
		indexSerializer.FromBytes(buffer[pos:]),
		indexSerializer.FromBytes(buffer[pos+4:]),
	}, pos + ChildBytes
}

// Deserialize decodes a record from the given buffer, which determines the
// capacity of the record. Initialized records are verified to satisfy all
// structural invariants.
func Deserialize(buffer []byte) (*Record, error) {
	record, err := DeserializeUnchecked(buffer)
	if err != nil {
		return nil, err
	}
	if record.Initialized {
		if err := record.Verify(); err != nil {
			return nil, err
		}
	}
	return record, nil
}

// DeserializeUnchecked decodes a record from the given buffer without
// verifying the relation between leaves, children and root. It is intended
// for freshly allocated, still zeroed buffers.
func DeserializeUnchecked(buffer []byte) (*Record, error) {
	if len(buffer) < HeaderBytes {
		return nil, fmt.Errorf("%w: buffer of %d bytes is too short", ErrSerialization, len(buffer))
	}
	record := &Record{capacity: CapacityOf(len(buffer))}
	switch buffer[0] {
	case 0:
		record.Initialized = false
	case 1:
		record.Initialized = true
	default:
		return nil, fmt.Errorf("%w: invalid initialized flag %d", ErrSerialization, buffer[0])
	}
	pos := InitializedBytes
	record.Root = hashSerializer.FromBytes(buffer[pos : pos+RootHashBytes])
	pos += RootHashBytes
	record.Child, pos = readChildren(buffer, pos)
	count := int(countSerializer.FromBytes(buffer[pos:]))
	pos += LengthBytes
	if count > record.capacity || EncodedSize(count) > len(buffer) {
		return nil, fmt.Errorf("%w: %d leaves do not fit into %d bytes", ErrSerialization, count, len(buffer))
	}
	record.Leafs = make([]Leaf, count, record.capacity)
	for i := range record.Leafs {
		record.Leafs[i].Root = hashSerializer.FromBytes(buffer[pos : pos+common.HashSize])
		record.Leafs[i].Child, pos = readChildren(buffer, pos+common.HashSize)
	}
	return record, nil
}
