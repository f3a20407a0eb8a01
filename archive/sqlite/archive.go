// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sync"

	"github.com/Fantom-foundation/merkle-pda/archive"
	"github.com/Fantom-foundation/merkle-pda/common"
	_ "github.com/mattn/go-sqlite3"
)

var (
	// See https://www.sqlite.org/pragma.html
	kConfigureConnection = []string{
		"PRAGMA journal_mode = OFF",
		"PRAGMA synchronous = OFF",
		"PRAGMA cache_size = -65536", // abs(N*1024) = 64MB
		"PRAGMA locking_mode = EXCLUSIVE",
	}
)

const (
	kCreateBlockTable   = "CREATE TABLE IF NOT EXISTS block (number INT PRIMARY KEY, hash BLOB)"
	kAddBlockStmt       = "INSERT INTO block(number, hash) VALUES (?,?)"
	kGetBlockHeightStmt = "SELECT number, hash FROM block ORDER BY number DESC LIMIT 1"
	kGetBlockHashStmt   = "SELECT hash FROM block WHERE number <= ? ORDER BY number DESC LIMIT 1"

	kCreateAccountHashTable = "CREATE TABLE IF NOT EXISTS account_hash (account BLOB, block INT, hash BLOB, PRIMARY KEY(account,block))"
	kAddAccountHashStmt     = "INSERT INTO account_hash(account, block, hash) VALUES (?,?,?)"
	kGetAccountHashStmt     = "SELECT hash FROM account_hash WHERE account = ? AND block <= ? ORDER BY block DESC LIMIT 1"
)

// Archive is an archive retaining account hashes in an SQLite database.
type Archive struct {
	db                 *sql.DB
	addBlockStmt       *sql.Stmt
	getBlockHeightStmt *sql.Stmt
	getBlockHashStmt   *sql.Stmt
	addAccountHashStmt *sql.Stmt
	getAccountHashStmt *sql.Stmt
	addMutex           sync.Mutex
}

// NewArchive opens the archive in the given SQLite file, creating it if needed.
func NewArchive(file string) (*Archive, error) {
	db, err := sql.Open("sqlite3", "file:"+file)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite; %w", err)
	}
	// the connection holds an exclusive lock on the file
	db.SetMaxOpenConns(1)
	res, err := newArchive(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return res, nil
}

func newArchive(db *sql.DB) (*Archive, error) {
	for _, cmd := range kConfigureConnection {
		if _, err := db.Exec(cmd); err != nil {
			return nil, fmt.Errorf("failed to configure connection with %s; %w", cmd, err)
		}
	}
	if _, err := db.Exec(kCreateBlockTable); err != nil {
		return nil, fmt.Errorf("failed to create block table; %w", err)
	}
	if _, err := db.Exec(kCreateAccountHashTable); err != nil {
		return nil, fmt.Errorf("failed to create account hash table; %w", err)
	}

	addBlock, err := db.Prepare(kAddBlockStmt)
	if err != nil {
		return nil, err
	}
	getBlockHeight, err := db.Prepare(kGetBlockHeightStmt)
	if err != nil {
		return nil, err
	}
	getBlockHash, err := db.Prepare(kGetBlockHashStmt)
	if err != nil {
		return nil, err
	}
	addAccountHash, err := db.Prepare(kAddAccountHashStmt)
	if err != nil {
		return nil, err
	}
	getAccountHash, err := db.Prepare(kGetAccountHashStmt)
	if err != nil {
		return nil, err
	}

	return &Archive{
		db:                 db,
		addBlockStmt:       addBlock,
		getBlockHeightStmt: getBlockHeight,
		getBlockHashStmt:   getBlockHash,
		addAccountHashStmt: addAccountHash,
		getAccountHashStmt: getAccountHash,
	}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) Add(block uint64, update common.Update) error {
	a.addMutex.Lock()
	defer a.addMutex.Unlock()

	if block > math.MaxInt64 {
		return fmt.Errorf("block %d exceeds the maximum block number", block)
	}
	if err := update.Check(); err != nil {
		return err
	}

	tx, err := a.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	var succeed bool
	defer func() {
		if !succeed {
			if err := tx.Rollback(); err != nil {
				panic(fmt.Errorf("failed to rollback; %s", err))
			}
		}
	}()

	lastBlock, lastHash, empty, err := a.getLastBlock(tx) // needs to be in tx, otherwise database is locked
	if err != nil {
		return fmt.Errorf("failed to get preceding block; %w", err)
	}
	if !empty && block <= lastBlock {
		return fmt.Errorf("%w: unable to add block %d, is lower or equal to already present block %d", archive.ErrBlockOutOfOrder, block, lastBlock)
	}

	stmt := tx.Stmt(a.addAccountHashStmt)
	for _, change := range update.Accounts {
		hash := change.Account.Hash()
		if _, err := stmt.Exec(change.Address[:], int64(block), hash[:]); err != nil {
			return fmt.Errorf("failed to add account hash; %w", err)
		}
	}

	blockHash := archive.NextBlockHash(lastHash, &update)
	if _, err := tx.Stmt(a.addBlockStmt).Exec(int64(block), blockHash[:]); err != nil {
		return fmt.Errorf("failed to add block %d; %w", block, err)
	}

	succeed = true
	return tx.Commit()
}

func (a *Archive) getLastBlock(tx *sql.Tx) (block uint64, hash common.Hash, empty bool, err error) {
	stmt := a.getBlockHeightStmt
	if tx != nil {
		stmt = tx.Stmt(stmt)
	}
	rows, err := stmt.Query()
	if err != nil {
		return 0, common.Hash{}, false, err
	}
	defer rows.Close()
	if rows.Next() {
		var number int64
		var bytes sql.RawBytes
		if err := rows.Scan(&number, &bytes); err != nil {
			return 0, common.Hash{}, false, err
		}
		copy(hash[:], bytes)
		return uint64(number), hash, false, nil
	}
	return 0, common.Hash{}, true, rows.Err()
}

func (a *Archive) GetLastBlockHeight() (block uint64, empty bool, err error) {
	block, _, empty, err = a.getLastBlock(nil)
	return block, empty, err
}

func (a *Archive) GetHash(block uint64) (hash common.Hash, err error) {
	rows, err := a.getBlockHashStmt.Query(toSqlBlock(block))
	if err != nil {
		return common.Hash{}, err
	}
	defer rows.Close()
	if rows.Next() {
		var bytes sql.RawBytes
		err = rows.Scan(&bytes)
		copy(hash[:], bytes)
		return hash, err
	}
	return common.Hash{}, rows.Err()
}

func (a *Archive) GetAccountHash(block uint64, account common.Address) (hash common.Hash, err error) {
	rows, err := a.getAccountHashStmt.Query(account[:], toSqlBlock(block))
	if err != nil {
		return common.Hash{}, err
	}
	defer rows.Close()
	if rows.Next() {
		var bytes sql.RawBytes
		err = rows.Scan(&bytes)
		copy(hash[:], bytes)
		return hash, err
	}
	return common.Hash{}, rows.Err()
}

// toSqlBlock converts a block number into the signed range supported by SQLite.
func toSqlBlock(block uint64) int64 {
	if block > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(block)
}

var _ archive.Archive = (*Archive)(nil)
