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
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/Fantom-foundation/merkle-pda/backend"
	"github.com/Fantom-foundation/merkle-pda/common"
	"github.com/Fantom-foundation/merkle-pda/ledger"
	"github.com/syndtr/goleveldb/leveldb"
)

// CacheCapacity is the number of accounts retained in the read cache.
const CacheCapacity = 1 << 12

// Ledger is a ledger persisting accounts in a LevelDB instance. Each block
// is written as a single LevelDB batch.
type Ledger struct {
	db        *backend.LevelDbMemoryFootprintWrapper
	batch     leveldb.Batch
	height    uint64
	hasBlocks bool
	cache     *common.LruCache[common.Address, cachedAccount]
	cacheMu   sync.Mutex
}

// cachedAccount also records misses, so absent accounts are not re-fetched.
type cachedAccount struct {
	account common.Account
	exists  bool
}

// OpenLedger opens the ledger stored in the given directory, creating an
// empty one if the directory holds none.
func OpenLedger(directory string) (*Ledger, error) {
	db, err := backend.OpenLevelDb(directory, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open LevelDB; %w", err)
	}
	res := &Ledger{
		db:    db,
		cache: common.NewLruCache[common.Address, cachedAccount](CacheCapacity),
	}
	value, err := db.Get(heightKey(), nil)
	if err == nil {
		if len(value) != 8 {
			return nil, errors.Join(fmt.Errorf("invalid block height encoding: %x", value), db.Close())
		}
		res.height = binary.BigEndian.Uint64(value)
		res.hasBlocks = true
	} else if !errors.Is(err, leveldb.ErrNotFound) {
		return nil, errors.Join(err, db.Close())
	}
	return res, nil
}

func heightKey() []byte {
	return []byte{byte(backend.BlockHeightKey)}
}

func (l *Ledger) GetAccount(address common.Address) (common.Account, bool, error) {
	l.cacheMu.Lock()
	defer l.cacheMu.Unlock()
	if entry, found := l.cache.Get(address); found {
		return entry.account.Clone(), entry.exists, nil
	}
	account, exists, err := l.fetchAccount(address)
	if err != nil {
		return common.Account{}, false, err
	}
	l.cache.Set(address, cachedAccount{account: account.Clone(), exists: exists})
	return account, exists, nil
}

func (l *Ledger) fetchAccount(address common.Address) (common.Account, bool, error) {
	key := backend.ToDBKey(backend.AccountStoreKey, address[:])
	value, err := l.db.Get(key.ToBytes(), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return common.Account{}, false, nil
	}
	if err != nil {
		return common.Account{}, false, err
	}
	account, err := common.AccountFromBytes(value)
	if err != nil {
		return common.Account{}, false, fmt.Errorf("failed to decode account %v; %w", address, err)
	}
	return account, true, nil
}

func (l *Ledger) Apply(block uint64, update common.Update) error {
	if l.hasBlocks && block <= l.height {
		return fmt.Errorf("%w: block %d after %d", ledger.ErrBlockOutOfOrder, block, l.height)
	}
	if err := update.Check(); err != nil {
		return err
	}

	l.batch.Reset()
	for _, change := range update.Accounts {
		key := backend.ToDBKey(backend.AccountStoreKey, change.Address[:])
		if change.Account.IsEmpty() {
			l.batch.Delete(key.ToBytes())
		} else {
			l.batch.Put(key.ToBytes(), change.Account.ToBytes())
		}
	}
	var height [8]byte
	binary.BigEndian.PutUint64(height[:], block)
	l.batch.Put(heightKey(), height[:])

	if err := l.db.Write(&l.batch, nil); err != nil {
		return err
	}

	l.cacheMu.Lock()
	for _, change := range update.Accounts {
		if _, found := l.cache.Get(change.Address); found {
			l.cache.Set(change.Address, cachedAccount{
				account: change.Account.Clone(),
				exists:  !change.Account.IsEmpty(),
			})
		}
	}
	l.cacheMu.Unlock()
	l.height = block
	l.hasBlocks = true
	return nil
}

func (l *Ledger) GetBlockHeight() (uint64, bool, error) {
	return l.height, l.hasBlocks, nil
}

// GetMemoryFootprint provides the size of the ledger in memory in bytes
func (l *Ledger) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*l))
	mf.AddChild("levelDb", l.db.GetMemoryFootprint())
	mf.AddChild("batch", common.NewMemoryFootprint(uintptr(len(l.batch.Dump()))))
	l.cacheMu.Lock()
	mf.AddChild("cache", l.cache.GetDynamicMemoryFootprint(func(entry cachedAccount) uintptr {
		return uintptr(cap(entry.account.Data))
	}))
	l.cacheMu.Unlock()
	return mf
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

var _ ledger.Ledger = (*Ledger)(nil)
