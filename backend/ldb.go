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
	"fmt"

	"github.com/Fantom-foundation/merkle-pda/common"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// TableSpace divide key-value storage into spaces by adding a prefix to the key.
type TableSpace byte

const (
	// AccountStoreKey is a tablespace for the current content of accounts
	AccountStoreKey TableSpace = 'C'
	// BlockHeightKey is a tablespace holding the last block applied to a ledger
	BlockHeightKey TableSpace = 'H'

	// BlockArchiveKey is a tablespace for archive mapping from block numbers to block hashes
	BlockArchiveKey TableSpace = '1'
	// AccountHashArchiveKey is a tablespace for archive account hashes
	AccountHashArchiveKey TableSpace = '7'
)

// DbKey expects max size of the 32B address plus one byte for the table prefix.
type DbKey [1 + common.AddressSize]byte

func (d DbKey) ToBytes() []byte {
	return d[:]
}

// ToDBKey converts the input key to its respective table space key
func ToDBKey(t TableSpace, key []byte) DbKey {
	var dbKey DbKey
	dbKey[0] = byte(t)
	if n := copy(dbKey[1:], key); n < len(key) {
		panic(fmt.Sprintf("input key does not fit into dbkey: len(key) > len(DbKey)-1: %d > %d", len(key), len(dbKey)-1))
	}
	return dbKey
}

// OpenLevelDb opens the LevelDB connection and provides it wrapped in memory-footprint-reporting object.
func OpenLevelDb(path string, options *opt.Options) (wrapped *LevelDbMemoryFootprintWrapper, err error) {
	ldb, err := leveldb.OpenFile(path, options)
	if err != nil {
		return nil, err
	}
	mf := common.NewMemoryFootprint(0)
	mf.AddChild("writeBuffer", common.NewMemoryFootprint(uintptr(options.GetWriteBuffer())))
	return &LevelDbMemoryFootprintWrapper{ldb, mf}, nil
}

// LevelDbMemoryFootprintWrapper is a LevelDB wrapper adding a memory footprint providing method.
type LevelDbMemoryFootprintWrapper struct {
	*leveldb.DB
	mf *common.MemoryFootprint
}

func (wrapper *LevelDbMemoryFootprintWrapper) GetMemoryFootprint() *common.MemoryFootprint {
	var ldbStats leveldb.DBStats
	err := wrapper.DB.Stats(&ldbStats)
	if err != nil {
		panic(fmt.Errorf("failed to get LevelDB Stats; %s", err))
	}
	wrapper.mf.AddChild("blockCache", common.NewMemoryFootprint(uintptr(ldbStats.BlockCacheSize)))
	return wrapper.mf
}
