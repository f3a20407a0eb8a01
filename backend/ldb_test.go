// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package backend

import (
	"bytes"
	"testing"

	"github.com/Fantom-foundation/merkle-pda/common"
)

func TestToDBKey_PrefixesTableSpace(t *testing.T) {
	address := common.Address{1, 2, 3}
	key := ToDBKey(AccountStoreKey, address[:])
	if key[0] != byte(AccountStoreKey) {
		t.Errorf("unexpected prefix %x", key[0])
	}
	if !bytes.Equal(key.ToBytes()[1:], address[:]) {
		t.Errorf("unexpected key %x", key.ToBytes())
	}
}

func TestToDBKey_OversizedKeyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("oversized key should cause a panic")
		}
	}()
	ToDBKey(AccountStoreKey, make([]byte, common.AddressSize+1))
}

func TestOpenLevelDb_ReportsMemoryFootprint(t *testing.T) {
	db, err := OpenLevelDb(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("failed to open LevelDB: %v", err)
	}
	defer db.Close()

	if err := db.Put([]byte("key"), []byte("value"), nil); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	mf := db.GetMemoryFootprint()
	if mf == nil || mf.Total() == 0 {
		t.Errorf("expected a non-empty memory footprint")
	}
}

var dbKeySink DbKey

func BenchmarkDbKeyConversion(b *testing.B) {
	address := common.Address{}
	for i := 1; i <= b.N; i++ {
		address[0] = byte(i)
		dbKeySink = ToDBKey(AccountStoreKey, address[:])
	}
}
