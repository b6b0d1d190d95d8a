package stakeapi

import (
	"context"
	"net/http"
	"net/url"
)

// GetCasinoGames fetches the casino game catalog, optionally filtered
// by category. Server response order is preserved; exactly one page is
// fetched per call.
func (c *Client) GetCasinoGames(ctx context.Context, category string) ([]Game, error) {
	var query url.Values
	if category != "" {
		query = url.Values{"category": {category}}
	}
	data, err := c.Request(ctx, http.MethodGet, EndpointCasinoGames, query, nil)
	if err != nil {
		return nil, err
	}
	return gamesFromList(data["games"])
}

// GetGameDetails fetches a single game by id.
func (c *Client) GetGameDetails(ctx context.Context, gameID string) (Game, error) {
	path, err := renderPath(EndpointCasinoGameDetails, map[string]string{"game_id": gameID})
	if err != nil {
		return Game{}, err
	}
	data, err := c.Request(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return Game{}, err
	}
	return GameFromMap(data)
}

func gamesFromList(v any) ([]Game, error) {
	items, _ := v.([]any)
	games := make([]Game, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, &ValidationError{Model: "Game", Reason: "expected a mapping entry"}
		}
		game, err := GameFromMap(m)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	return games, nil
}
