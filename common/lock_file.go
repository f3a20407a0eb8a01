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
	"os"
	"path/filepath"
)

// LockFileName is the name of the file marking a directory as in use.
const LockFileName = "~lock"

// DirectoryLock grants a single process exclusive access to a directory.
// The lock is represented by a file inside the directory which is deleted
// when the lock is released. Locks not released by a process, e.g. due to a
// crash, remain in place and have to be removed manually.
type DirectoryLock struct {
	path string
	file *os.File
}

// LockDirectory acquires the lock of the given directory, creating the
// directory if needed. It fails if the directory is already locked.
func LockDirectory(directory string) (*DirectoryLock, error) {
	if err := os.MkdirAll(directory, 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory %v: %w", directory, err)
	}
	path := filepath.Join(directory, LockFileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to lock directory %v: %w", directory, err)
	}
	return &DirectoryLock{path: path, file: file}, nil
}

// Valid checks whether this lock still owns the directory.
func (l *DirectoryLock) Valid() bool {
	return l != nil && l.file != nil
}

// Release gives up the ownership of the directory. Each lock may only be
// released once.
func (l *DirectoryLock) Release() error {
	if !l.Valid() {
		return fmt.Errorf("unable to release invalid lock")
	}
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("failed to release directory lock: %w", err)
	}
	l.file = nil
	if err := os.Remove(l.path); err != nil {
		return fmt.Errorf("failed to release directory lock: %w", err)
	}
	return nil
}
