package stakeapi

import (
	"context"
	"net/http"
	"net/url"
)

// GetSportsEvents fetches upcoming sports events, optionally filtered
// by sport slug. Server response order is preserved.
func (c *Client) GetSportsEvents(ctx context.Context, sport string) ([]SportEvent, error) {
	var query url.Values
	if sport != "" {
		query = url.Values{"sport": {sport}}
	}
	data, err := c.Request(ctx, http.MethodGet, EndpointSportsEvents, query, nil)
	if err != nil {
		return nil, err
	}
	items, _ := data["events"].([]any)
	events := make([]SportEvent, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, &ValidationError{Model: "SportEvent", Reason: "expected a mapping entry"}
		}
		event, err := SportEventFromMap(m)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}
