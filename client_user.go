package stakeapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// GetUserProfile fetches the authenticated user's profile.
func (c *Client) GetUserProfile(ctx context.Context) (User, error) {
	data, err := c.Request(ctx, http.MethodGet, EndpointUserProfile, nil, nil)
	if err != nil {
		return User{}, err
	}
	return UserFromMap(data)
}

// GetUserBalance fetches the per-currency balances through GraphQL and
// aggregates them into available and vault maps keyed by lower-cased
// currency code. A response without a user or balances object yields
// empty maps, not an error.
func (c *Client) GetUserBalance(ctx context.Context) (Balances, error) {
	data, err := c.GraphQL(ctx, QueryUserBalances, nil, "UserBalances")
	if err != nil {
		return Balances{}, err
	}
	return aggregateBalances(data)
}

// GetUserTransactions fetches the user's transaction history. A limit
// of zero or less falls back to 50.
func (c *Client) GetUserTransactions(ctx context.Context, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	data, err := c.Request(ctx, http.MethodGet, EndpointUserTransactions, query, nil)
	if err != nil {
		return nil, err
	}
	items, _ := data["transactions"].([]any)
	transactions := make([]Transaction, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, &ValidationError{Model: "Transaction", Reason: "expected a mapping entry"}
		}
		tx, err := TransactionFromMap(m)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

// GetUserStatistics fetches the user's aggregate betting statistics.
func (c *Client) GetUserStatistics(ctx context.Context) (Statistics, error) {
	data, err := c.Request(ctx, http.MethodGet, EndpointUserStatistics, nil, nil)
	if err != nil {
		return Statistics{}, err
	}
	return StatisticsFromMap(data)
}

type balanceEntry struct {
	Currency string `json:"currency"`
	Amount   Amount `json:"amount"`
}

type balancePayload struct {
	User *struct {
		Balances *struct {
			Available []balanceEntry `json:"available"`
			Vault     []balanceEntry `json:"vault"`
		} `json:"balances"`
	} `json:"user"`
}

func aggregateBalances(data map[string]any) (Balances, error) {
	out := Balances{
		Available: map[string]decimal.Decimal{},
		Vault:     map[string]decimal.Decimal{},
	}
	// Round-trip the data subtree into a typed payload; json.Number
	// values re-marshal as their original text, so amounts stay exact.
	raw, err := json.Marshal(data)
	if err != nil {
		return Balances{}, &ValidationError{Model: "Balances", Reason: err.Error()}
	}
	var payload balancePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Balances{}, &ValidationError{Model: "Balances", Reason: err.Error()}
	}
	if payload.User == nil || payload.User.Balances == nil {
		return out, nil
	}
	collectBalances(payload.User.Balances.Available, out.Available)
	collectBalances(payload.User.Balances.Vault, out.Vault)
	return out, nil
}

func collectBalances(entries []balanceEntry, into map[string]decimal.Decimal) {
	for _, entry := range entries {
		currency := strings.ToLower(entry.Currency)
		if currency == "" {
			continue
		}
		into[currency] = entry.Amount.Decimal
	}
}
