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

import "fmt"

// Log summarizes a message recorded during the execution of a program.
type Log struct {
	// Address of the program that emitted the message.
	Program Address
	// The actual log message.
	Message string
}

func (l Log) String() string {
	return fmt.Sprintf("Program %v: %s", l.Program, l.Message)
}
