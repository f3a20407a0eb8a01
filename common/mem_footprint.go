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

import (
	"fmt"
	"sort"
	"strings"
)

// MemoryFootprint describes the memory consumption of a storage component,
// such as a ledger or an archive, and its sub-components.
type MemoryFootprint struct {
	value    uintptr
	children map[string]*MemoryFootprint
}

// NewMemoryFootprint creates a new MemoryFootprint for a component directly
// consuming the given number of bytes.
func NewMemoryFootprint(value uintptr) *MemoryFootprint {
	return &MemoryFootprint{
		value:    value,
		children: make(map[string]*MemoryFootprint),
	}
}

// AddChild attaches the footprint of a sub-component. Nil children are ignored.
func (mf *MemoryFootprint) AddChild(name string, child *MemoryFootprint) {
	if child == nil {
		return
	}
	mf.children[name] = child
}

// Value provides the amount of bytes consumed by the component itself.
func (mf *MemoryFootprint) Value() uintptr {
	return mf.value
}

// Total provides the amount of bytes consumed including all sub-components.
// Components reachable through multiple paths are only counted once.
func (mf *MemoryFootprint) Total() uintptr {
	return mf.total(map[*MemoryFootprint]bool{})
}

func (mf *MemoryFootprint) total(seen map[*MemoryFootprint]bool) uintptr {
	if seen[mf] {
		return 0
	}
	seen[mf] = true
	sum := mf.value
	for _, child := range mf.children {
		sum += child.total(seen)
	}
	return sum
}

func (mf *MemoryFootprint) String() string {
	var sb strings.Builder
	mf.print(&sb, ".", map[*MemoryFootprint]bool{})
	return sb.String()
}

func (mf *MemoryFootprint) print(sb *strings.Builder, path string, visited map[*MemoryFootprint]bool) {
	if visited[mf] {
		return
	}
	visited[mf] = true
	names := make([]string, 0, len(mf.children))
	for name := range mf.children {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		mf.children[name].print(sb, path+"/"+name, visited)
	}
	writeMemoryAmount(sb, mf.Total())
	sb.WriteRune(' ')
	sb.WriteString(path)
	sb.WriteRune('\n')
}

func writeMemoryAmount(sb *strings.Builder, bytes uintptr) {
	const unit = 1024
	const prefixes = "KMGTPE"
	if bytes < unit {
		fmt.Fprintf(sb, "%d B", bytes)
		return
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit && exp+1 < len(prefixes); n /= unit {
		div *= unit
		exp++
	}
	fmt.Fprintf(sb, "%.1f %cB", float64(bytes)/float64(div), prefixes[exp])
}

// MemoryFootprintProvider is implemented by components able to report
// their memory consumption.
type MemoryFootprintProvider interface {
	GetMemoryFootprint() *MemoryFootprint
}
