package stakeapi

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDatetime(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
		ok   bool
	}{
		{"rfc3339 zulu", "2025-01-15T15:00:00Z", time.Date(2025, 1, 15, 15, 0, 0, 0, time.UTC), true},
		{"rfc3339 offset", "2025-01-15T15:00:00+02:00", time.Date(2025, 1, 15, 13, 0, 0, 0, time.UTC), true},
		{"no zone assumes utc", "2025-01-15T15:00:00", time.Date(2025, 1, 15, 15, 0, 0, 0, time.UTC), true},
		{"empty", "", time.Time{}, false},
		{"garbage", "not-a-date", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDatetime(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if tt.ok && !got.UTC().Equal(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"100.5", "USD", "$100.50"},
		{"99.999", "usd", "$100.00"},
		{"10", "EUR", "€10.00"},
		{"10", "GBP", "£10.00"},
		{"0.001", "btc", "0.00 BTC"},
	}
	for _, tt := range tests {
		got := FormatCurrency(decimal.RequireFromString(tt.amount), tt.currency)
		if got != tt.want {
			t.Fatalf("FormatCurrency(%s, %s) = %q, want %q", tt.amount, tt.currency, got, tt.want)
		}
	}
}

func TestCalculateWinRate(t *testing.T) {
	if got := CalculateWinRate(0, 0); got != 0 {
		t.Fatalf("zero bets: got %v", got)
	}
	if got := CalculateWinRate(1, 4); got != 25 {
		t.Fatalf("got %v, want 25", got)
	}
}

func TestValidateBetAmount(t *testing.T) {
	min := decimal.RequireFromString("0.01")
	max := decimal.RequireFromString("1000.00")
	tests := []struct {
		amount string
		want   bool
	}{
		{"0.01", true},
		{"1000.00", true},
		{"500", true},
		{"0.009", false},
		{"1000.01", false},
	}
	for _, tt := range tests {
		if got := ValidateBetAmount(decimal.RequireFromString(tt.amount), min, max); got != tt.want {
			t.Fatalf("ValidateBetAmount(%s) = %v, want %v", tt.amount, got, tt.want)
		}
	}
}

func TestSanitizeGameName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sweet Bonanza!", "Sweet Bonanza"},
		{"  Gates   of\tOlympus ", "Gates of Olympus"},
		{"Money-Train_3", "Money-Train_3"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeGameName(tt.in); got != tt.want {
			t.Fatalf("SanitizeGameName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"abcdefghijklmnopqrstuvwxyz123456", true},
		{"short", false},
		{"", false},
		{"has spaces in it aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false},
	}
	for _, tt := range tests {
		if got := ValidateAPIKey(tt.in); got != tt.want {
			t.Fatalf("ValidateAPIKey(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSafeDecimal(t *testing.T) {
	if d, ok := SafeDecimal("1.50"); !ok || !d.Equal(decimal.RequireFromString("1.50")) {
		t.Fatalf("string: %s %v", d, ok)
	}
	if d, ok := SafeDecimal(json.Number("0.001")); !ok || !d.Equal(decimal.RequireFromString("0.001")) {
		t.Fatalf("number: %s %v", d, ok)
	}
	if _, ok := SafeDecimal(nil); ok {
		t.Fatal("nil should not convert")
	}
	if _, ok := SafeDecimal("not-a-number"); ok {
		t.Fatal("garbage should not convert")
	}
}
