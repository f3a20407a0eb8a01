// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package amount

import (
	"testing"
)

func TestAmount_New(t *testing.T) {
	tests := []struct {
		name      string
		args      []uint64
		want      Amount
		wantPanic bool
	}{
		{"No arguments", []uint64{}, Amount{[4]uint64{0, 0, 0, 0}}, false},
		{"One argument", []uint64{1}, Amount{[4]uint64{1, 0, 0, 0}}, false},
		{"Two arguments", []uint64{1, 2}, Amount{[4]uint64{2, 1, 0, 0}}, false},
		{"Four arguments", []uint64{1, 2, 3, 4}, Amount{[4]uint64{4, 3, 2, 1}}, false},
		{"Too many arguments", []uint64{1, 2, 3, 4, 5}, Amount{}, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					if !test.wantPanic {
						t.Errorf("New() panicked unexpectedly: %v", r)
					}
				} else if test.wantPanic {
					t.Errorf("New() did not panic")
				}
			}()
			if got, want := New(test.args...), test.want; got != want {
				t.Errorf("wrong result, got %v, want %v", got, want)
			}
		})
	}
}

func TestAmount_NewFromBytes(t *testing.T) {
	if got, want := NewFromBytes(1, 0), New(256); got != want {
		t.Errorf("wrong result, got %v, want %v", got, want)
	}
	bytes := New(1, 2, 3, 4).Bytes32()
	if got, want := NewFromBytes(bytes[:]...), New(1, 2, 3, 4); got != want {
		t.Errorf("wrong result, got %v, want %v", got, want)
	}
}

func TestAmount_Parse(t *testing.T) {
	got, err := Parse("1000000")
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	if want := New(1000000); got != want {
		t.Errorf("wrong result, got %v, want %v", got, want)
	}
	if got.String() != "1000000" {
		t.Errorf("unexpected string representation: %v", got)
	}
	if _, err := Parse("-1"); err == nil {
		t.Errorf("parsing a negative amount should fail")
	}
	if _, err := Parse("abc"); err == nil {
		t.Errorf("parsing a non-number should fail")
	}
}

func TestAmount_Arithmetic(t *testing.T) {
	if got, want := Add(New(2), New(3)), New(5); got != want {
		t.Errorf("wrong sum, got %v, want %v", got, want)
	}
	if _, overflow := AddOverflow(Max(), New(1)); !overflow {
		t.Errorf("expected overflow")
	}
	if got, underflow := SubUnderflow(New(5), New(3)); underflow || got != New(2) {
		t.Errorf("wrong difference, got %v, underflow %t", got, underflow)
	}
	if _, underflow := SubUnderflow(New(3), New(5)); !underflow {
		t.Errorf("expected underflow")
	}
	if got, overflow := MulOverflow(New(6), New(7)); overflow || got != New(42) {
		t.Errorf("wrong product, got %v, overflow %t", got, overflow)
	}
	if _, overflow := MulOverflow(Max(), New(2)); !overflow {
		t.Errorf("expected overflow")
	}
}

func TestAmount_Cmp(t *testing.T) {
	tests := []struct {
		a, b Amount
		want int
	}{
		{New(1), New(2), -1},
		{New(2), New(2), 0},
		{New(1, 0), New(2), 1},
	}
	for _, test := range tests {
		if got := test.a.Cmp(test.b); got != test.want {
			t.Errorf("Cmp(%v, %v) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}

func TestAmount_Predicates(t *testing.T) {
	if !New().IsZero() || New(1).IsZero() {
		t.Errorf("IsZero mismatch")
	}
	if !New(12).IsUint64() || New(1, 0).IsUint64() {
		t.Errorf("IsUint64 mismatch")
	}
	if got := New(12).Uint64(); got != 12 {
		t.Errorf("unexpected value %d", got)
	}
}
