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
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/Fantom-foundation/merkle-pda/archive"
	"github.com/Fantom-foundation/merkle-pda/backend"
	"github.com/Fantom-foundation/merkle-pda/common"
	"github.com/syndtr/goleveldb/leveldb"
)

// Archive is an archive retaining account hashes in a LevelDB instance.
// Block numbers are stored inverted so that the first key found when
// iterating from a block is the latest entry at or before that block.
type Archive struct {
	db             *backend.LevelDbMemoryFootprintWrapper
	batch          leveldb.Batch
	lastBlockCache blockCache
	addMutex       sync.Mutex
}

// OpenArchive opens the archive stored in the given directory, creating an
// empty one if the directory holds none.
func OpenArchive(directory string) (*Archive, error) {
	db, err := backend.OpenLevelDb(directory, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open LevelDB; %w", err)
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// Add a new update as a new block into the archive.
func (a *Archive) Add(block uint64, update common.Update) error {
	a.addMutex.Lock()
	defer a.addMutex.Unlock()

	if block > maxBlock {
		return fmt.Errorf("block %d exceeds the maximum block number", block)
	}
	lastBlock, lastHash, err := a.getLastBlock()
	empty := errors.Is(err, leveldb.ErrNotFound)
	if err != nil && !empty {
		return fmt.Errorf("failed to get preceding block hash; %w", err)
	}
	if !empty && block <= lastBlock {
		return fmt.Errorf("%w: unable to add block %d, is lower or equal to already present block %d", archive.ErrBlockOutOfOrder, block, lastBlock)
	}
	if err := update.Check(); err != nil {
		return err
	}

	a.batch.Reset()
	for _, change := range update.Accounts {
		hash := change.Account.Hash()
		var accountK accountBlockKey
		accountK.set(backend.AccountHashArchiveKey, change.Address, block)
		a.batch.Put(accountK[:], hash[:])
	}

	blockHash := archive.NextBlockHash(lastHash, &update)
	var blockK blockKey
	blockK.set(block)
	a.batch.Put(blockK[:], blockHash[:])

	if err := a.db.Write(&a.batch, nil); err != nil {
		return err
	}

	a.lastBlockCache.set(block, blockHash)
	return nil
}

// getLastBlock provides info about the last completely written block
func (a *Archive) getLastBlock() (number uint64, hash common.Hash, err error) {
	number, hash, valid := a.lastBlockCache.get()
	if valid {
		return number, hash, nil
	}
	number, hash, err = a.getBlockAtOrBefore(maxBlock)
	if err == nil {
		a.lastBlockCache.set(number, hash)
	}
	return number, hash, err
}

// getBlockAtOrBefore provides the latest block not exceeding the given one.
// It returns leveldb.ErrNotFound if there is none.
func (a *Archive) getBlockAtOrBefore(block uint64) (number uint64, hash common.Hash, err error) {
	keyRange := getBlockKeyRangeFrom(block)
	it := a.db.NewIterator(&keyRange, nil)
	defer it.Release()

	if it.Next() {
		var blockK blockKey
		copy(blockK[:], it.Key())
		copy(hash[:], it.Value())
		return blockK.get(), hash, nil
	}
	err = it.Error()
	if err == nil {
		err = leveldb.ErrNotFound
	}
	return 0, common.Hash{}, err
}

func (a *Archive) GetLastBlockHeight() (block uint64, empty bool, err error) {
	block, _, err = a.getLastBlock()
	if errors.Is(err, leveldb.ErrNotFound) {
		return 0, true, nil
	}
	return block, false, err
}

func (a *Archive) GetHash(block uint64) (hash common.Hash, err error) {
	if block > maxBlock {
		block = maxBlock
	}
	_, hash, err = a.getBlockAtOrBefore(block)
	if errors.Is(err, leveldb.ErrNotFound) {
		return common.Hash{}, nil
	}
	return hash, err
}

func (a *Archive) GetAccountHash(block uint64, account common.Address) (hash common.Hash, err error) {
	if block > maxBlock {
		block = maxBlock
	}
	var key accountBlockKey
	key.set(backend.AccountHashArchiveKey, account, block)
	keyRange := key.getRange()
	it := a.db.NewIterator(&keyRange, nil)
	defer it.Release()

	if it.Next() {
		copy(hash[:], it.Value())
		return hash, nil
	}
	return common.Hash{}, it.Error()
}

// GetMemoryFootprint provides the size of the archive in memory in bytes
func (a *Archive) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*a))
	mf.AddChild("levelDb", a.db.GetMemoryFootprint())
	return mf
}

// blockCache caches info about the last block in the archive
type blockCache struct {
	mu            sync.Mutex
	lastBlockNum  uint64
	lastBlockHash common.Hash
	valid         bool
}

func (c *blockCache) set(number uint64, hash common.Hash) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastBlockNum = number
	c.lastBlockHash = hash
	c.valid = true
}

func (c *blockCache) get() (number uint64, hash common.Hash, valid bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastBlockNum, c.lastBlockHash, c.valid
}

var _ archive.Archive = (*Archive)(nil)
