package stakeapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// PlaceBet submits a bet and returns the confirmed record. The call is
// fire-and-forget against the remote service: no local idempotency
// tracking is kept, so duplicate calls place duplicate bets.
func (c *Client) PlaceBet(ctx context.Context, betData map[string]any) (Bet, error) {
	if len(betData) == 0 {
		return Bet{}, &ValidationError{Model: "Bet", Reason: "empty bet payload"}
	}
	data, err := c.Request(ctx, http.MethodPost, EndpointPlaceBet, nil, betData)
	if err != nil {
		return Bet{}, err
	}
	return BetFromMap(data)
}

// GetBetHistory fetches the user's bet history, newest first as the
// server orders it. A limit of zero or less falls back to 50.
func (c *Client) GetBetHistory(ctx context.Context, limit int) ([]Bet, error) {
	if limit <= 0 {
		limit = 50
	}
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	data, err := c.Request(ctx, http.MethodGet, EndpointBetHistory, query, nil)
	if err != nil {
		return nil, err
	}
	items, _ := data["bets"].([]any)
	bets := make([]Bet, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, &ValidationError{Model: "Bet", Reason: "expected a mapping entry"}
		}
		bet, err := BetFromMap(m)
		if err != nil {
			return nil, err
		}
		bets = append(bets, bet)
	}
	return bets, nil
}
