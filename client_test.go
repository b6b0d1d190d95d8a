package stakeapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

const (
	testAccessToken   = "test-access-token"
	testSessionCookie = "test-session"
)

func newTestClient(baseURL string) *Client {
	return NewClient(&Config{
		AccessToken:   testAccessToken,
		SessionCookie: testSessionCookie,
		BaseURL:       baseURL,
	})
}

func jsonHandler(t *testing.T, status int, body any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}
}

func TestClientDefaults(t *testing.T) {
	client := NewClient(nil)
	defer client.Close()
	if client.BaseURL() != DefaultBaseURL {
		t.Fatalf("BaseURL = %q, want %q", client.BaseURL(), DefaultBaseURL)
	}
	if client.RateLimit() != DefaultRateLimit {
		t.Fatalf("RateLimit = %d, want %d", client.RateLimit(), DefaultRateLimit)
	}
}

func TestRequestSendsCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Access-Token"); got != testAccessToken {
			t.Errorf("X-Access-Token = %q, want %q", got, testAccessToken)
		}
		cookie, err := r.Cookie("session")
		if err != nil || cookie.Value != testSessionCookie {
			t.Errorf("session cookie = %v, want %q", cookie, testSessionCookie)
		}
		if got := r.Header.Get("Accept"); got != "application/graphql+json, application/json" {
			t.Errorf("Accept = %q", got)
		}
		jsonHandler(t, http.StatusOK, map[string]any{})(w, r)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	defer client.Close()
	if _, err := client.Request(context.Background(), http.MethodGet, "/api/v1/user/profile", nil, nil); err != nil {
		t.Fatalf("Request: %v", err)
	}
}

func TestRequestStatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"401 is AuthenticationError", http.StatusUnauthorized, func(err error) bool {
			var target *AuthenticationError
			return errors.As(err, &target)
		}},
		{"429 is RateLimitError", http.StatusTooManyRequests, func(err error) bool {
			var target *RateLimitError
			return errors.As(err, &target)
		}},
		{"500 is APIError with status", http.StatusInternalServerError, func(err error) bool {
			var target *APIError
			return errors.As(err, &target) && target.Status == http.StatusInternalServerError
		}},
		{"404 is APIError, not auth", http.StatusNotFound, func(err error) bool {
			var auth *AuthenticationError
			var target *APIError
			return !errors.As(err, &auth) && errors.As(err, &target) && target.Status == http.StatusNotFound
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(jsonHandler(t, tt.status, map[string]any{"error": "nope"}))
			defer srv.Close()
			client := newTestClient(srv.URL)
			defer client.Close()
			_, err := client.Request(context.Background(), http.MethodGet, "/api/v1/user/profile", nil, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if !tt.check(err) {
				t.Fatalf("wrong error kind: %v", err)
			}
		})
	}
}

func TestRequestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := newTestClient(srv.URL)
	defer client.Close()
	_, err := client.Request(context.Background(), http.MethodGet, "/api/v1/user/profile", nil, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != 0 || apiErr.Err == nil {
		t.Fatalf("expected wrapped transport failure, got status=%d err=%v", apiErr.Status, apiErr.Err)
	}
}

func TestGetCasinoGames(t *testing.T) {
	games := []map[string]any{
		{"id": "g1", "name": "Test Slot", "category": "slots", "provider": "Acme", "min_bet": "0.01", "max_bet": "100.00"},
		{"id": "g2", "name": "Blackjack", "category": "table", "provider": "Acme"},
	}
	var gotCategory string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != EndpointCasinoGames {
			t.Errorf("path = %q, want %q", r.URL.Path, EndpointCasinoGames)
		}
		gotCategory = r.URL.Query().Get("category")
		jsonHandler(t, http.StatusOK, map[string]any{"games": games})(w, r)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	defer client.Close()

	first, err := client.GetCasinoGames(context.Background(), "slots")
	if err != nil {
		t.Fatalf("GetCasinoGames: %v", err)
	}
	if gotCategory != "slots" {
		t.Fatalf("category param = %q, want slots", gotCategory)
	}
	if len(first) != 2 || first[0].ID != "g1" || first[1].ID != "g2" {
		t.Fatalf("order not preserved: %+v", first)
	}
	if !first[0].MinBet.Equal(decimal.RequireFromString("0.01")) {
		t.Fatalf("MinBet = %s", first[0].MinBet)
	}
	if !first[1].MaxBet.Equal(decimal.RequireFromString("1000.00")) {
		t.Fatalf("default MaxBet = %s", first[1].MaxBet)
	}

	// Identical upstream data yields value-equal records in the same order.
	second, err := client.GetCasinoGames(context.Background(), "slots")
	if err != nil {
		t.Fatalf("GetCasinoGames (second): %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("len mismatch: %d vs %d", len(second), len(first))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Name != second[i].Name ||
			!first[i].MinBet.Equal(second[i].MinBet) || !first[i].MaxBet.Equal(second[i].MaxBet) {
			t.Fatalf("games differ at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestGetGameDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/casino/games/game123" {
			t.Errorf("path = %q", r.URL.Path)
		}
		jsonHandler(t, http.StatusOK, map[string]any{
			"id": "game123", "name": "Test Slot", "category": "slots", "provider": "Acme",
		})(w, r)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	defer client.Close()
	game, err := client.GetGameDetails(context.Background(), "game123")
	if err != nil {
		t.Fatalf("GetGameDetails: %v", err)
	}
	if game.ID != "game123" {
		t.Fatalf("ID = %q", game.ID)
	}

	if _, err := client.GetGameDetails(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty game id")
	}
}

func TestGetSportsEvents(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, http.StatusOK, map[string]any{
		"events": []map[string]any{{
			"id": "e1", "sport": "football", "league": "Premier League",
			"home_team": "Team A", "away_team": "Team B",
			"start_time": "2025-01-15T15:00:00Z", "status": "upcoming",
			"odds": map[string]any{"home": "2.5", "away": "3.2", "draw": "3.0"},
			"live": false,
		}},
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	defer client.Close()
	events, err := client.GetSportsEvents(context.Background(), "football")
	if err != nil {
		t.Fatalf("GetSportsEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len = %d", len(events))
	}
	if !events[0].Odds["home"].Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("home odds = %s", events[0].Odds["home"])
	}
}

func TestGraphQLErrorsAreHardFailures(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, http.StatusOK, map[string]any{
		"errors": []map[string]any{{"message": "not authorized"}, {"message": "bad field"}},
		"data":   map[string]any{"user": nil},
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	defer client.Close()
	_, err := client.GraphQL(context.Background(), QueryUserBalances, nil, "UserBalances")
	var gqlErr *GraphQLError
	if !errors.As(err, &gqlErr) {
		t.Fatalf("expected GraphQLError, got %v", err)
	}
	if len(gqlErr.Messages) != 2 || gqlErr.Messages[0] != "not authorized" {
		t.Fatalf("messages = %v", gqlErr.Messages)
	}

	// Callers matching only *APIError must still catch it.
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("GraphQL failure not matchable as APIError: %v", err)
	}
	if apiErr.Status != http.StatusOK || apiErr.Body != "not authorized, bad field" {
		t.Fatalf("unwrapped APIError = %+v", apiErr)
	}
}

func TestGetUserBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != GraphQLPath {
			t.Errorf("path = %q, want %q", r.URL.Path, GraphQLPath)
		}
		raw, _ := io.ReadAll(r.Body)
		var payload map[string]any
		if err := json.Unmarshal(raw, &payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["operationName"] != "UserBalances" {
			t.Errorf("operationName = %v", payload["operationName"])
		}
		jsonHandler(t, http.StatusOK, map[string]any{
			"data": map[string]any{
				"user": map[string]any{
					"id": "user123",
					"balances": map[string]any{
						"available": []map[string]any{{"currency": "BTC", "amount": "0.001"}},
						"vault":     []map[string]any{},
					},
				},
			},
		})(w, r)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	defer client.Close()
	balances, err := client.GetUserBalance(context.Background())
	if err != nil {
		t.Fatalf("GetUserBalance: %v", err)
	}
	if len(balances.Available) != 1 {
		t.Fatalf("available = %v", balances.Available)
	}
	if !balances.Available["btc"].Equal(decimal.RequireFromString("0.001")) {
		t.Fatalf("btc = %s, want 0.001", balances.Available["btc"])
	}
	if len(balances.Vault) != 0 {
		t.Fatalf("vault = %v, want empty", balances.Vault)
	}
}

func TestGetUserBalanceNumericAmounts(t *testing.T) {
	// Amounts arriving as JSON numbers must survive the decode path
	// without float drift.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"user":{"id":"u1","balances":{` +
			`"available":[{"currency":"ETH","amount":0.30}],` +
			`"vault":[{"currency":"USD","amount":"12.00"}]}}}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	defer client.Close()
	balances, err := client.GetUserBalance(context.Background())
	if err != nil {
		t.Fatalf("GetUserBalance: %v", err)
	}
	if !balances.Available["eth"].Equal(decimal.RequireFromString("0.30")) {
		t.Fatalf("eth = %s, want exactly 0.30", balances.Available["eth"])
	}
	if !balances.Vault["usd"].Equal(decimal.RequireFromString("12.00")) {
		t.Fatalf("usd = %s, want 12.00", balances.Vault["usd"])
	}
}

func TestGetUserBalanceMalformedAmount(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, http.StatusOK, map[string]any{
		"data": map[string]any{
			"user": map[string]any{
				"balances": map[string]any{
					"available": []map[string]any{{"currency": "BTC", "amount": "not-a-number"}},
				},
			},
		},
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	defer client.Close()
	_, err := client.GetUserBalance(context.Background())
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestGetUserBalanceMissingUser(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, http.StatusOK, map[string]any{
		"data": map[string]any{},
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	defer client.Close()
	balances, err := client.GetUserBalance(context.Background())
	if err != nil {
		t.Fatalf("GetUserBalance: %v", err)
	}
	if len(balances.Available) != 0 || len(balances.Vault) != 0 {
		t.Fatalf("expected empty maps, got %+v", balances)
	}
}

func TestGetUserProfile(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, http.StatusOK, map[string]any{
		"id": "user123", "username": "testuser", "email": "test@example.com",
		"verified": true, "created_at": "2025-01-01T00:00:00Z", "country": "US", "currency": "USD",
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	defer client.Close()
	user, err := client.GetUserProfile(context.Background())
	if err != nil {
		t.Fatalf("GetUserProfile: %v", err)
	}
	if user.Username != "testuser" || !user.Verified {
		t.Fatalf("user = %+v", user)
	}
}

func TestPlaceBet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if r.URL.Path != EndpointPlaceBet {
			t.Errorf("path = %q", r.URL.Path)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["amount"] != "5.00" {
			t.Errorf("amount = %v", payload["amount"])
		}
		jsonHandler(t, http.StatusOK, map[string]any{
			"id": "bet1", "user_id": "user123", "game_id": "g1", "bet_type": "straight",
			"amount": "5.00", "potential_payout": "12.50", "odds": "2.5",
			"status": "pending", "placed_at": "2025-01-15T15:00:00Z",
		})(w, r)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	defer client.Close()
	bet, err := client.PlaceBet(context.Background(), map[string]any{
		"game_id": "g1", "amount": "5.00", "bet_type": "straight",
	})
	if err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}
	if bet.Status != BetStatusPending {
		t.Fatalf("status = %q", bet.Status)
	}
	if !bet.Amount.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("amount = %s", bet.Amount)
	}

	var valErr *ValidationError
	if _, err := client.PlaceBet(context.Background(), nil); !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError for empty payload, got %v", err)
	}
}

func TestGetBetHistoryDefaultLimit(t *testing.T) {
	var gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		jsonHandler(t, http.StatusOK, map[string]any{"bets": []map[string]any{}})(w, r)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	defer client.Close()
	bets, err := client.GetBetHistory(context.Background(), 0)
	if err != nil {
		t.Fatalf("GetBetHistory: %v", err)
	}
	if gotLimit != "50" {
		t.Fatalf("limit = %q, want 50", gotLimit)
	}
	if len(bets) != 0 {
		t.Fatalf("bets = %v", bets)
	}
}
