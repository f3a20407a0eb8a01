// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package tree implements the append-only Merkle tree kept in a fixed-size
// account. Leaves are stored in insertion order in an arena; all parent and
// child relations are expressed by positions within that arena.
package tree

import (
	"fmt"
	"strings"

	"github.com/Fantom-foundation/merkle-pda/common"
	"golang.org/x/exp/slices"
)

const (
	ErrNotInitialized   = common.ConstError("tree is not initialized")
	ErrCapacityExceeded = common.ConstError("tree capacity exceeded")
	ErrSerialization    = common.ConstError("invalid tree serialization")
)

// Leaf is a node of the tree. Data leaves hold the hash of the inserted data
// and have no children.
type Leaf struct {
	Root  common.Hash
	Child [2]common.Index
}

var noChildren = [2]common.Index{common.NoIndex, common.NoIndex}

// Record is the content of a tree account.
type Record struct {
	Initialized bool
	Root        common.Hash
	Child       [2]common.Index
	Leafs       []Leaf
	capacity    int
}

// NewRecord creates an uninitialized record able to hold the given number of leaves.
func NewRecord(capacity int) *Record {
	return &Record{
		Child:    noChildren,
		capacity: capacity,
	}
}

// Capacity returns the maximum number of leaves of this record.
func (r *Record) Capacity() int {
	return r.capacity
}

// Reset puts the record into its initialized, empty state.
func (r *Record) Reset() {
	r.Initialized = true
	r.Root = common.Hash{}
	r.Child = noChildren
	r.Leafs = r.Leafs[:0]
}

// Clone creates a deep copy of this record.
func (r *Record) Clone() *Record {
	res := *r
	res.Leafs = slices.Clone(r.Leafs)
	return &res
}

// Equal compares the content and capacity of two records.
func (r *Record) Equal(other *Record) bool {
	return r.Initialized == other.Initialized &&
		r.Root == other.Root &&
		r.Child == other.Child &&
		r.capacity == other.capacity &&
		slices.Equal(r.Leafs, other.Leafs)
}

func (r *Record) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tree(initialized=%t, root=%v, child=[%v,%v], leafs=%d/%d)",
		r.Initialized, r.Root, r.Child[0], r.Child[1], len(r.Leafs), r.capacity)
	for i, leaf := range r.Leafs {
		fmt.Fprintf(&sb, "\n  %d: %v", i, leaf.Root)
	}
	return sb.String()
}
