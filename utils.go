package stakeapi

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	apiKeyPattern      = regexp.MustCompile(`^[a-zA-Z0-9]{32,64}$`)
	gameNameStripChars = regexp.MustCompile(`[^\w\s-]`)
	gameNameCollapseWS = regexp.MustCompile(`\s+`)
)

// ValidateAPIKey reports whether a credential string looks like a
// valid API key.
func ValidateAPIKey(apiKey string) bool {
	return apiKeyPattern.MatchString(apiKey)
}

// SafeDecimal converts an arbitrary decoded JSON value to a decimal,
// reporting false instead of an error on failure.
func SafeDecimal(v any) (decimal.Decimal, bool) {
	if v == nil {
		return decimal.Zero, false
	}
	d, err := toDecimal(v)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseDatetime parses an API timestamp string. RFC3339 is accepted
// as-is; payloads without an explicit zone are assumed UTC. Reports
// false instead of an error on failure.
func ParseDatetime(dateString string) (time.Time, bool) {
	if dateString == "" {
		return time.Time{}, false
	}
	ts, err := parseTimeValue(dateString)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// FormatCurrency renders an amount for display with the conventional
// symbol for the major fiat currencies.
func FormatCurrency(amount decimal.Decimal, currency string) string {
	switch strings.ToUpper(currency) {
	case "USD":
		return "$" + amount.StringFixed(2)
	case "EUR":
		return "€" + amount.StringFixed(2)
	case "GBP":
		return "£" + amount.StringFixed(2)
	default:
		return amount.StringFixed(2) + " " + strings.ToUpper(currency)
	}
}

// CalculateWinRate returns the win percentage in [0, 100].
func CalculateWinRate(wins, totalBets int) float64 {
	if totalBets == 0 {
		return 0
	}
	return float64(wins) / float64(totalBets) * 100
}

// ValidateBetAmount reports whether amount lies within the game's bet
// bounds, inclusive.
func ValidateBetAmount(amount, minBet, maxBet decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(minBet) && amount.LessThanOrEqual(maxBet)
}

// SanitizeGameName strips special characters and collapses whitespace.
func SanitizeGameName(name string) string {
	sanitized := gameNameStripChars.ReplaceAllString(name, "")
	sanitized = gameNameCollapseWS.ReplaceAllString(sanitized, " ")
	return strings.TrimSpace(sanitized)
}
