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

// Insert hashes the given data and appends it as a new leaf. A leaf at an
// odd position completes a pair with its left neighbour; the hash of the pair
// is then folded into the root. A leaf at an even position stays dangling
// and does not alter the root until its right sibling arrives.
//
// On failure the record is not modified.
func (r *Record) Insert(data []byte) error {
	if !r.Initialized {
		return ErrNotInitialized
	}
	if len(r.Leafs) >= r.capacity {
		return fmt.Errorf("%w: all %d leaves are in use", ErrCapacityExceeded, r.capacity)
	}
	r.Leafs = append(r.Leafs, Leaf{
		Root:  common.Keccak256(data),
		Child: noChildren,
	})
	pos := common.Index(len(r.Leafs) - 1)
	if pos%2 == 1 {
		r.Root = combine(r.Root, pos-1, r.Leafs[pos-1].Root, r.Leafs[pos].Root)
		r.Child = [2]common.Index{pos - 1, pos}
	}
	return nil
}

// combine folds the pair starting at position left into the current root.
// The root thus covers all completed pairs; only for the first pair does it
// equal the hash of the two top-level children.
func combine(root common.Hash, left common.Index, leftHash, rightHash common.Hash) common.Hash {
	pair := common.Keccak256ForHashes(leftHash, rightHash)
	if left == 0 {
		return pair
	}
	return common.Keccak256ForHashes(root, pair)
}

// ComputeRoot recomputes the root and top-level children for the given
// sequence of leaves from scratch.
func ComputeRoot(leafs []Leaf) (common.Hash, [2]common.Index) {
	root, child := common.Hash{}, noChildren
	for i := 1; i < len(leafs); i += 2 {
		left := common.Index(i - 1)
		root = combine(root, left, leafs[i-1].Root, leafs[i].Root)
		child = [2]common.Index{left, common.Index(i)}
	}
	return root, child
}

// Verify checks the structural invariants of an initialized record.
func (r *Record) Verify() error {
	if len(r.Leafs) > r.capacity {
		return fmt.Errorf("%w: %d leaves exceed capacity of %d", ErrSerialization, len(r.Leafs), r.capacity)
	}
	for i, leaf := range r.Leafs {
		if leaf.Child != noChildren {
			return fmt.Errorf("%w: data leaf %d has children %v", ErrSerialization, i, leaf.Child)
		}
	}
	root, child := ComputeRoot(r.Leafs)
	if r.Child != child {
		return fmt.Errorf("%w: top-level children %v, expected %v", ErrSerialization, r.Child, child)
	}
	if r.Root != root {
		return fmt.Errorf("%w: root %v, expected %v", ErrSerialization, r.Root, root)
	}
	return nil
}
