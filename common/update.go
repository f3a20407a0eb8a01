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
	"bytes"
	"fmt"
	"sort"
)

// Update summarizes the effective changes of a block: the new content of
// every account modified by the block.
//
// An example use of an update would look like this:
//
//	// Create an update.
//	update := Update{}
//	// Fill in changes.
//	update.AppendAccountUpdate(..)
//	update.AppendAccountUpdate(..)
//	...
//	// Sort the updates and remove duplicates.
//	err := update.Normalize()
//
// Valid instances can then be forwarded to a ledger or an archive.
type Update struct {
	Accounts []AccountUpdate
}

// AccountUpdate is the new content of a single account. An empty account
// removes the address from the ledger.
type AccountUpdate struct {
	Address Address
	Account Account
}

// IsEmpty is true if there is no change covered by this update.
func (u *Update) IsEmpty() bool {
	return len(u.Accounts) == 0
}

// AppendAccountUpdate registers the new content of an account.
func (u *Update) AppendAccountUpdate(address Address, account Account) {
	u.Accounts = append(u.Accounts, AccountUpdate{address, account})
}

// Normalize sorts all updates by address and removes duplicates. Conflicting
// updates of the same account are reported as an error.
func (u *Update) Normalize() error {
	sort.SliceStable(u.Accounts, func(i, j int) bool {
		return bytes.Compare(u.Accounts[i].Address[:], u.Accounts[j].Address[:]) < 0
	})
	res := u.Accounts[:0]
	for _, cur := range u.Accounts {
		if len(res) > 0 && cur.Address == res[len(res)-1].Address {
			if !cur.Account.Equal(&res[len(res)-1].Account) {
				return fmt.Errorf("conflicting updates for account %v", cur.Address)
			}
			continue
		}
		res = append(res, cur)
	}
	u.Accounts = res
	return nil
}

// Check verifies that the updates are sorted by address and unique.
func (u *Update) Check() error {
	for i := 1; i < len(u.Accounts); i++ {
		if bytes.Compare(u.Accounts[i-1].Address[:], u.Accounts[i].Address[:]) >= 0 {
			return fmt.Errorf("account updates are not sorted and unique: %v before %v", u.Accounts[i-1].Address, u.Accounts[i].Address)
		}
	}
	return nil
}

func (u AccountUpdate) String() string {
	return fmt.Sprintf("%v: %v", u.Address, u.Account)
}
