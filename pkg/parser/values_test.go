package parser

import (
	"strconv"
	"testing"
	"time"

	"github.com/minhlq/saoke/pkg/models"
)

func TestAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"21,991,508 VND", 21991508, true},
		{"9,000 đ", 9000, true},
		{"2.500.000đ", 2500000, true},
		{"1.234.567", 1234567, true},
		{"1,000", 1000, true},
		{"500000", 500000, true},
		{"-2.500.000", -2500000, true},
		{"  42 ", 42, true},
		{"", 0, false},
		{"   ", 0, false},
		{"Total:", 0, false},
		{"abc", 0, false},
		{"Số dư", 0, false},
	}
	for _, c := range cases {
		got, ok := Amount(models.TextCell(c.in))
		if got != c.want || ok != c.ok {
			t.Errorf("Amount(%q) = (%d, %v), want (%d, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestAmountNumberCell(t *testing.T) {
	got, ok := Amount(models.NumberCell(21991508))
	if !ok || got != 21991508 {
		t.Errorf("Amount(number cell) = (%d, %v), want (21991508, true)", got, ok)
	}
}

func TestAmountIdempotent(t *testing.T) {
	inputs := []string{"21,991,508 VND", "1.234.567", "0", "junk", "9,000 đ"}
	for _, in := range inputs {
		first, _ := Amount(models.TextCell(in))
		again, _ := Amount(models.TextCell(strconv.FormatInt(first, 10)))
		if first != again {
			t.Errorf("Amount not idempotent for %q: %d then %d", in, first, again)
		}
	}
}

func TestDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"15/01/2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"15/01/2024 09:30", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"15-01-2024 09:30:59", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"5/3/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"15/01/2024\n09:30", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"32/01/2024", time.Time{}, false},
		{"00/00/2024", time.Time{}, false},
		{"30/02/2024", time.Time{}, false},
		{"13/13/2024", time.Time{}, false},
		{"", time.Time{}, false},
		{"Số dư đầu kỳ", time.Time{}, false},
	}
	for _, c := range cases {
		got, ok := Date(models.TextCell(c.in))
		if ok != c.ok || (c.ok && !got.Equal(c.want)) {
			t.Errorf("Date(%q) = (%v, %v), want (%v, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestDateNativeCell(t *testing.T) {
	native := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)
	got, ok := Date(models.DateCell(native))
	if !ok || !got.Equal(native) {
		t.Errorf("Date(native) = (%v, %v), want passthrough", got, ok)
	}
}
