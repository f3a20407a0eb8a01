// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package runtime

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Fantom-foundation/merkle-pda/archive"
	ldbarchive "github.com/Fantom-foundation/merkle-pda/archive/ldb"
	"github.com/Fantom-foundation/merkle-pda/archive/sqlite"
	"github.com/Fantom-foundation/merkle-pda/common"
	"github.com/Fantom-foundation/merkle-pda/ledger"
	ldbledger "github.com/Fantom-foundation/merkle-pda/ledger/ldb"
	"github.com/Fantom-foundation/merkle-pda/ledger/memory"
	"github.com/Fantom-foundation/merkle-pda/rent"
	"golang.org/x/exp/maps"
)

// Parameters struct defining configuration parameters for runtime instances.
type Parameters struct {
	Variant   Variant
	Archive   ArchiveType
	Directory string
	Rent      *rent.Rent // nil for the default rent
}

// UnsupportedConfiguration is the error returned if unsupported configuration
// parameters have been specified. The text may contain further details regarding the
// unsupported feature.
const UnsupportedConfiguration = common.ConstError("unsupported configuration")

// NewRuntime is the public interface for creating runtime instances. If for
// the given parameters a runtime can be constructed, the resulting runtime is
// returned. If the requested configuration is not supported, the error is an
// UnsupportedConfiguration error.
func NewRuntime(params Parameters) (*Runtime, error) {
	config := Configuration{
		Variant: params.Variant,
		Archive: params.Archive,
	}
	// Enforce default values.
	if config.Variant == "" {
		config.Variant = MemoryVariant
	}
	if config.Archive == "" {
		config.Archive = NoArchive
	}
	ledgerFactory, found := ledgerFactoryRegistry[config.Variant]
	if !found {
		return nil, fmt.Errorf("%w: no registered ledger implementation for %v", UnsupportedConfiguration, config)
	}
	archiveFactory, found := archiveFactoryRegistry[config.Archive]
	if !found {
		return nil, fmt.Errorf("%w: no registered archive implementation for %v", UnsupportedConfiguration, config)
	}
	if (ledgerFactory.persistent || config.Archive != NoArchive) && params.Directory == "" {
		return nil, fmt.Errorf("%w: %v requires a directory", UnsupportedConfiguration, config)
	}

	var lock *common.DirectoryLock
	if params.Directory != "" {
		var err error
		if lock, err = common.LockDirectory(params.Directory); err != nil {
			return nil, err
		}
	}
	release := func(err error) error {
		if lock == nil {
			return err
		}
		return errors.Join(err, lock.Release())
	}

	l, err := ledgerFactory.create(params.Directory)
	if err != nil {
		return nil, release(fmt.Errorf("failed to open ledger; %w", err))
	}
	a, err := archiveFactory(params.Directory)
	if err != nil {
		return nil, release(errors.Join(fmt.Errorf("failed to open archive; %w", err), l.Close()))
	}
	if err := checkConsistency(l, a); err != nil {
		var archiveErr error
		if a != nil {
			archiveErr = a.Close()
		}
		return nil, release(errors.Join(err, l.Close(), archiveErr))
	}

	r := rent.Default()
	if params.Rent != nil {
		r = *params.Rent
	}
	res := New(l, a, r)
	res.lock = lock
	return res, nil
}

// checkConsistency makes sure the archive is not ahead of the ledger, which
// would prevent new blocks from being archived.
func checkConsistency(l ledger.Ledger, a archive.Archive) error {
	if a == nil {
		return nil
	}
	height, hasBlocks, err := l.GetBlockHeight()
	if err != nil {
		return err
	}
	last, empty, err := a.GetLastBlockHeight()
	if err != nil {
		return err
	}
	if !empty && (!hasBlocks || last > height) {
		return fmt.Errorf("archive at block %d is ahead of ledger at block %d", last, height)
	}
	return nil
}

type Configuration struct {
	Variant Variant
	Archive ArchiveType
}

func (c Configuration) String() string {
	return fmt.Sprintf("%s_%v", c.Variant, c.Archive)
}

type Variant string

const (
	MemoryVariant  Variant = "memory"
	LevelDbVariant Variant = "go-ldb"
)

type ArchiveType string

const (
	NoArchive      ArchiveType = "none"
	LevelDbArchive ArchiveType = "ldb"
	SqliteArchive  ArchiveType = "sqlite"
)

type ledgerFactory struct {
	create     func(directory string) (ledger.Ledger, error)
	persistent bool
}

type ArchiveFactory func(directory string) (archive.Archive, error)

var ledgerFactoryRegistry = map[Variant]ledgerFactory{
	MemoryVariant: {
		create: func(string) (ledger.Ledger, error) {
			return memory.NewLedger(), nil
		},
	},
	LevelDbVariant: {
		create: func(directory string) (ledger.Ledger, error) {
			path := filepath.Join(directory, "ledger")
			if err := os.MkdirAll(path, 0700); err != nil {
				return nil, err
			}
			return ldbledger.OpenLedger(path)
		},
		persistent: true,
	},
}

var archiveFactoryRegistry = map[ArchiveType]ArchiveFactory{
	NoArchive: func(string) (archive.Archive, error) {
		return nil, nil
	},
	LevelDbArchive: func(directory string) (archive.Archive, error) {
		path := filepath.Join(directory, "archive")
		if err := os.MkdirAll(path, 0700); err != nil {
			return nil, err
		}
		return ldbarchive.OpenArchive(path)
	},
	SqliteArchive: func(directory string) (archive.Archive, error) {
		if err := os.MkdirAll(directory, 0700); err != nil {
			return nil, err
		}
		return sqlite.NewArchive(filepath.Join(directory, "archive.sqlite"))
	},
}

// GetAllConfigurations lists all supported runtime configurations.
func GetAllConfigurations() []Configuration {
	var res []Configuration
	for _, variant := range maps.Keys(ledgerFactoryRegistry) {
		for _, archiveType := range maps.Keys(archiveFactoryRegistry) {
			res = append(res, Configuration{variant, archiveType})
		}
	}
	return res
}
