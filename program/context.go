// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package program

import (
	"fmt"

	"github.com/Fantom-foundation/merkle-pda/common"
	"github.com/Fantom-foundation/merkle-pda/common/amount"
	"github.com/Fantom-foundation/merkle-pda/rent"
)

// SystemProgramID is the well-known address of the runtime's system
// program, which allocates new accounts.
var SystemProgramID = common.Address{}

// Program is the entry point of on-chain logic invoked by the runtime.
type Program interface {
	// Process executes a single instruction. Accounts are handed over in the
	// order listed by the transaction; their data may be modified in place.
	// If an error is returned, the runtime discards all modifications.
	Process(ctx *Context, accounts []*AccountRef, data []byte) error
}

// AccountRef is an account made available to a program for the duration of
// an instruction.
type AccountRef struct {
	Key        common.Address
	IsSigner   bool
	IsWritable bool
	Owner      common.Address
	Balance    amount.Amount
	Data       []byte
}

// DataIsEmpty reports whether the account holds no data.
func (a *AccountRef) DataIsEmpty() bool {
	return len(a.Data) == 0
}

// Context is the environment provided by the runtime to an executing program.
type Context struct {
	// ProgramID is the address of the executing program.
	ProgramID common.Address
	// Rent provides the minimum balance required for new accounts.
	Rent rent.Rent
	// Allocator creates new accounts on behalf of the program.
	Allocator Allocator
	// Logs collects messages emitted during the execution.
	Logs []common.Log
}

// Logf records a message in the execution log.
func (c *Context) Logf(format string, args ...any) {
	c.Logs = append(c.Logs, common.Log{
		Program: c.ProgramID,
		Message: fmt.Sprintf(format, args...),
	})
}
