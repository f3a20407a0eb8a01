// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ldb

import (
	"bytes"
	"testing"

	"github.com/Fantom-foundation/merkle-pda/backend"
	"github.com/Fantom-foundation/merkle-pda/common"
)

func TestBlockKey(t *testing.T) {
	var block0, block1, block2 blockKey
	block0.set(0)
	block1.set(1)
	block2.set(2)
	blockRange := getBlockKeyRangeFrom(2)

	if !bytes.Equal(blockRange.Start, block2[:]) {
		t.Errorf("the range does not start at block 2; %x == %x", blockRange.Start, block2[:])
	}
	if !(bytes.Compare(blockRange.Limit, block1[:]) > 0) {
		t.Errorf("the range does not include block 1; %x > %x", blockRange.Limit, block1[:])
	}
	if !(bytes.Compare(blockRange.Limit, block0[:]) > 0) {
		t.Errorf("the range does not include block 0; %x > %x", blockRange.Limit, block0[:])
	}
	for _, block := range []uint64{0, 1, 2, 1 << 40, maxBlock} {
		var key blockKey
		key.set(block)
		if got := key.get(); got != block {
			t.Errorf("block number not restored, wanted %d, got %d", block, got)
		}
	}
}

func TestBlockKey_HigherBlocksSortFirst(t *testing.T) {
	var low, high blockKey
	low.set(10)
	high.set(11)
	if bytes.Compare(high[:], low[:]) >= 0 {
		t.Errorf("block 11 should be ordered before block 10")
	}
}

func TestAccountBlockKey(t *testing.T) {
	var addr = common.Address{0x01}
	var block0, block1, block2 accountBlockKey
	block0.set(backend.AccountHashArchiveKey, addr, 0)
	block1.set(backend.AccountHashArchiveKey, addr, 1)
	block2.set(backend.AccountHashArchiveKey, addr, 2)
	blockRange := block2.getRange()

	if !bytes.Equal(blockRange.Start, block2[:]) {
		t.Errorf("the range does not start at block 2; %x == %x", blockRange.Start, block2[:])
	}
	if !(bytes.Compare(blockRange.Limit, block1[:]) > 0) {
		t.Errorf("the range does not include block 1; %x > %x", blockRange.Limit, block1[:])
	}
	if !(bytes.Compare(blockRange.Limit, block0[:]) > 0) {
		t.Errorf("the range does not include block 0; %x > %x", blockRange.Limit, block0[:])
	}

	var other accountBlockKey
	other.set(backend.AccountHashArchiveKey, common.Address{0x02}, 0)
	if bytes.Compare(other[:], blockRange.Limit) < 0 {
		t.Errorf("the range includes keys of other accounts")
	}
}
