package core

import (
	"errors"
	"testing"
)

func TestIdentifier(t *testing.T) {
	if _, ok := (Money{}).Identifier(); ok {
		t.Fatalf("new money should not have an identifier")
	}
	if id, ok := (Money{ID: Ptr(int64(123))}).Identifier(); !ok || id != 123 {
		t.Fatalf("expected 123, got %d (ok=%v)", id, ok)
	}
	if _, ok := IncomeIdentifier(Income{}); ok {
		t.Fatalf("new income should not have an identifier")
	}
	if id, ok := IncomeIdentifier(Income{ID: Ptr(int64(0))}); !ok || id != 0 {
		t.Fatalf("zero is a valid identifier, got %d (ok=%v)", id, ok)
	}
}

func TestParseIncome(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		err error
	}{
		{"1", 1, nil},
		{" 1200 ", 1200, nil},
		{"-15", -15, nil},
		{"+3", 3, nil},
		{"", 0, ErrRequired},
		{"   ", 0, ErrRequired},
		{"12,5", 0, ErrInvalidAmount},
		{"abc", 0, ErrInvalidAmount},
		{"99999999999", 0, ErrInvalidAmount},
	}
	for _, tc := range cases {
		got, err := ParseIncome(tc.in)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("%q expected %v, got %v", tc.in, tc.err, err)
			}
			continue
		}
		if err != nil || got != tc.out {
			t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
		}
	}
}

func TestFormatIncome(t *testing.T) {
	if got := FormatIncome(nil); got != "" {
		t.Errorf("FormatIncome(nil) = %q, want empty", got)
	}
	if got := FormatIncome(Ptr(int64(-15))); got != "-15" {
		t.Errorf("FormatIncome(-15) = %q", got)
	}
}
