package stakeapi

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Amount is a decimal that decodes from either a JSON string or a JSON
// number. String payloads are parsed exactly; a float is only accepted
// as a last resort for callers that hand-build payloads.
type Amount struct {
	decimal.Decimal
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		a.Decimal = decimal.Zero
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		val, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		a.Decimal = val
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		val, err := decimal.NewFromString(n.String())
		if err != nil {
			return err
		}
		a.Decimal = val
		return nil
	}
	return fmt.Errorf("invalid amount: %s", string(b))
}

// Bet statuses reported by the API.
const (
	BetStatusPending   = "pending"
	BetStatusWon       = "won"
	BetStatusLost      = "lost"
	BetStatusCancelled = "cancelled"
)

// Default bet bounds applied when the catalog omits them.
var (
	defaultMinBet = decimal.RequireFromString("0.01")
	defaultMaxBet = decimal.RequireFromString("1000.00")
)

type User struct {
	ID        string
	Username  string
	Email     string
	Verified  bool
	CreatedAt time.Time
	Country   string
	Currency  string
}

type Game struct {
	ID           string
	Name         string
	Category     string
	Provider     string
	Description  string
	MinBet       decimal.Decimal
	MaxBet       decimal.Decimal
	RTP          *float64
	Volatility   string
	Features     []string
	ThumbnailURL string
}

type SportEvent struct {
	ID        string
	Sport     string
	League    string
	HomeTeam  string
	AwayTeam  string
	StartTime time.Time
	Status    string
	Odds      map[string]decimal.Decimal
	Live      bool
}

type Bet struct {
	ID              string
	UserID          string
	GameID          string
	EventID         string
	BetType         string
	Amount          decimal.Decimal
	PotentialPayout decimal.Decimal
	Odds            decimal.NullDecimal
	Status          string
	PlacedAt        time.Time
	SettledAt       *time.Time
}

type Transaction struct {
	ID          string
	UserID      string
	Type        string
	Amount      decimal.Decimal
	Currency    string
	Status      string
	Timestamp   time.Time
	Description string
}

type Statistics struct {
	TotalBets    int
	TotalWagered decimal.Decimal
	TotalWon     decimal.Decimal
	TotalLost    decimal.Decimal
	WinRate      float64
	BiggestWin   decimal.Decimal
	FavoriteGame string
}

// Balances holds per-currency amounts keyed by lower-cased currency
// code. Vault funds are held outside the wagering-available balance.
type Balances struct {
	Available map[string]decimal.Decimal
	Vault     map[string]decimal.Decimal
}

// UserFromMap builds a User from a decoded response payload.
func UserFromMap(data map[string]any) (User, error) {
	const model = "User"
	u := User{Currency: "USD"}
	var err error
	if u.ID, err = requireString(data, model, "id"); err != nil {
		return User{}, err
	}
	if u.Username, err = requireString(data, model, "username"); err != nil {
		return User{}, err
	}
	if u.CreatedAt, err = requireTime(data, model, "created_at"); err != nil {
		return User{}, err
	}
	u.Email = optionalString(data, "email")
	u.Country = optionalString(data, "country")
	u.Verified = optionalBool(data, "verified")
	if c := optionalString(data, "currency"); c != "" {
		u.Currency = c
	}
	return u, nil
}

// GameFromMap builds a Game from a decoded response payload. Missing
// bet bounds default to 0.01 and 1000.00; a missing feature list
// defaults to empty.
func GameFromMap(data map[string]any) (Game, error) {
	const model = "Game"
	g := Game{Features: []string{}}
	var err error
	if g.ID, err = requireString(data, model, "id"); err != nil {
		return Game{}, err
	}
	if g.Name, err = requireString(data, model, "name"); err != nil {
		return Game{}, err
	}
	if g.Category, err = requireString(data, model, "category"); err != nil {
		return Game{}, err
	}
	if g.Provider, err = requireString(data, model, "provider"); err != nil {
		return Game{}, err
	}
	g.Description = optionalString(data, "description")
	g.Volatility = optionalString(data, "volatility")
	g.ThumbnailURL = optionalString(data, "thumbnail_url")
	if g.MinBet, err = optionalDecimal(data, model, "min_bet", defaultMinBet); err != nil {
		return Game{}, err
	}
	if g.MaxBet, err = optionalDecimal(data, model, "max_bet", defaultMaxBet); err != nil {
		return Game{}, err
	}
	if g.RTP, err = optionalFloat(data, model, "rtp"); err != nil {
		return Game{}, err
	}
	if features, ok := data["features"]; ok && features != nil {
		list, ok := features.([]any)
		if !ok {
			return Game{}, &ValidationError{Model: model, Field: "features", Reason: "expected a list"}
		}
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return Game{}, &ValidationError{Model: model, Field: "features", Reason: "expected string entries"}
			}
			g.Features = append(g.Features, s)
		}
	}
	return g, nil
}

// SportEventFromMap builds a SportEvent from a decoded response
// payload. Odds are parsed exactly; a missing odds map defaults to
// empty.
func SportEventFromMap(data map[string]any) (SportEvent, error) {
	const model = "SportEvent"
	e := SportEvent{Odds: map[string]decimal.Decimal{}}
	var err error
	if e.ID, err = requireString(data, model, "id"); err != nil {
		return SportEvent{}, err
	}
	if e.Sport, err = requireString(data, model, "sport"); err != nil {
		return SportEvent{}, err
	}
	if e.League, err = requireString(data, model, "league"); err != nil {
		return SportEvent{}, err
	}
	if e.HomeTeam, err = requireString(data, model, "home_team"); err != nil {
		return SportEvent{}, err
	}
	if e.AwayTeam, err = requireString(data, model, "away_team"); err != nil {
		return SportEvent{}, err
	}
	if e.StartTime, err = requireTime(data, model, "start_time"); err != nil {
		return SportEvent{}, err
	}
	if e.Status, err = requireString(data, model, "status"); err != nil {
		return SportEvent{}, err
	}
	e.Live = optionalBool(data, "live")
	if odds, ok := data["odds"]; ok && odds != nil {
		m, ok := odds.(map[string]any)
		if !ok {
			return SportEvent{}, &ValidationError{Model: model, Field: "odds", Reason: "expected a mapping"}
		}
		for outcome, price := range m {
			d, err := toDecimal(price)
			if err != nil {
				return SportEvent{}, &ValidationError{Model: model, Field: "odds." + outcome, Reason: err.Error()}
			}
			e.Odds[outcome] = d
		}
	}
	return e, nil
}

// BetFromMap builds a Bet from a decoded response payload. The status
// must be one of pending, won, lost or cancelled.
func BetFromMap(data map[string]any) (Bet, error) {
	const model = "Bet"
	var b Bet
	var err error
	if b.ID, err = requireString(data, model, "id"); err != nil {
		return Bet{}, err
	}
	if b.UserID, err = requireString(data, model, "user_id"); err != nil {
		return Bet{}, err
	}
	if b.BetType, err = requireString(data, model, "bet_type"); err != nil {
		return Bet{}, err
	}
	if b.Amount, err = requireDecimal(data, model, "amount"); err != nil {
		return Bet{}, err
	}
	if b.PotentialPayout, err = requireDecimal(data, model, "potential_payout"); err != nil {
		return Bet{}, err
	}
	if b.Status, err = requireString(data, model, "status"); err != nil {
		return Bet{}, err
	}
	switch b.Status {
	case BetStatusPending, BetStatusWon, BetStatusLost, BetStatusCancelled:
	default:
		return Bet{}, &ValidationError{Model: model, Field: "status", Reason: "unknown status " + b.Status}
	}
	if b.PlacedAt, err = requireTime(data, model, "placed_at"); err != nil {
		return Bet{}, err
	}
	b.GameID = optionalString(data, "game_id")
	b.EventID = optionalString(data, "event_id")
	if v, ok := data["odds"]; ok && v != nil {
		d, err := toDecimal(v)
		if err != nil {
			return Bet{}, &ValidationError{Model: model, Field: "odds", Reason: err.Error()}
		}
		b.Odds = decimal.NullDecimal{Decimal: d, Valid: true}
	}
	if b.SettledAt, err = optionalTime(data, model, "settled_at"); err != nil {
		return Bet{}, err
	}
	return b, nil
}

// TransactionFromMap builds a Transaction from a decoded response
// payload.
func TransactionFromMap(data map[string]any) (Transaction, error) {
	const model = "Transaction"
	var tx Transaction
	var err error
	if tx.ID, err = requireString(data, model, "id"); err != nil {
		return Transaction{}, err
	}
	if tx.UserID, err = requireString(data, model, "user_id"); err != nil {
		return Transaction{}, err
	}
	if tx.Type, err = requireString(data, model, "type"); err != nil {
		return Transaction{}, err
	}
	if tx.Amount, err = requireDecimal(data, model, "amount"); err != nil {
		return Transaction{}, err
	}
	if tx.Currency, err = requireString(data, model, "currency"); err != nil {
		return Transaction{}, err
	}
	if tx.Status, err = requireString(data, model, "status"); err != nil {
		return Transaction{}, err
	}
	if tx.Timestamp, err = requireTime(data, model, "timestamp"); err != nil {
		return Transaction{}, err
	}
	tx.Description = optionalString(data, "description")
	return tx, nil
}

// StatisticsFromMap builds a Statistics record; every field aggregates
// to zero when absent.
func StatisticsFromMap(data map[string]any) (Statistics, error) {
	const model = "Statistics"
	s := Statistics{
		TotalWagered: decimal.Zero,
		TotalWon:     decimal.Zero,
		TotalLost:    decimal.Zero,
		BiggestWin:   decimal.Zero,
	}
	var err error
	if s.TotalWagered, err = optionalDecimal(data, model, "total_wagered", decimal.Zero); err != nil {
		return Statistics{}, err
	}
	if s.TotalWon, err = optionalDecimal(data, model, "total_won", decimal.Zero); err != nil {
		return Statistics{}, err
	}
	if s.TotalLost, err = optionalDecimal(data, model, "total_lost", decimal.Zero); err != nil {
		return Statistics{}, err
	}
	if s.BiggestWin, err = optionalDecimal(data, model, "biggest_win", decimal.Zero); err != nil {
		return Statistics{}, err
	}
	if v, ok := data["total_bets"]; ok && v != nil {
		n, err := toInt(v)
		if err != nil {
			return Statistics{}, &ValidationError{Model: model, Field: "total_bets", Reason: err.Error()}
		}
		s.TotalBets = n
	}
	if rate, err := optionalFloat(data, model, "win_rate"); err != nil {
		return Statistics{}, err
	} else if rate != nil {
		s.WinRate = *rate
	}
	s.FavoriteGame = optionalString(data, "favorite_game")
	return s, nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case string:
		return decimal.NewFromString(t)
	case json.Number:
		return decimal.NewFromString(t.String())
	case decimal.Decimal:
		return t, nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case float64:
		return decimal.NewFromFloat(t), nil
	default:
		return decimal.Zero, fmt.Errorf("cannot coerce %T to decimal", v)
	}
}

func toInt(v any) (int, error) {
	switch t := v.(type) {
	case json.Number:
		n, err := t.Int64()
		return int(n), err
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		return int(t), nil
	default:
		return 0, fmt.Errorf("cannot coerce %T to int", v)
	}
}

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case json.Number:
		return t.Float64()
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	default:
		return 0, fmt.Errorf("cannot coerce %T to float", v)
	}
}

func parseTimeValue(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return ts, nil
		}
		// Tolerate payloads without an explicit zone; assume UTC.
		if ts, err := time.Parse("2006-01-02T15:04:05", t); err == nil {
			return ts.UTC(), nil
		}
		return time.Time{}, fmt.Errorf("invalid timestamp %q", t)
	default:
		return time.Time{}, fmt.Errorf("cannot coerce %T to timestamp", v)
	}
}

func requireString(m map[string]any, model, key string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", &ValidationError{Model: model, Field: key, Reason: "required field missing"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &ValidationError{Model: model, Field: key, Reason: fmt.Sprintf("expected string, got %T", v)}
	}
	return s, nil
}

func optionalString(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func optionalBool(m map[string]any, key string) bool {
	if v, ok := m[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

func requireDecimal(m map[string]any, model, key string) (decimal.Decimal, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return decimal.Zero, &ValidationError{Model: model, Field: key, Reason: "required field missing"}
	}
	d, err := toDecimal(v)
	if err != nil {
		return decimal.Zero, &ValidationError{Model: model, Field: key, Reason: err.Error()}
	}
	return d, nil
}

func optionalDecimal(m map[string]any, model, key string, fallback decimal.Decimal) (decimal.Decimal, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return fallback, nil
	}
	d, err := toDecimal(v)
	if err != nil {
		return decimal.Zero, &ValidationError{Model: model, Field: key, Reason: err.Error()}
	}
	return d, nil
}

func optionalFloat(m map[string]any, model, key string) (*float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	f, err := toFloat(v)
	if err != nil {
		return nil, &ValidationError{Model: model, Field: key, Reason: err.Error()}
	}
	return &f, nil
}

func requireTime(m map[string]any, model, key string) (time.Time, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return time.Time{}, &ValidationError{Model: model, Field: key, Reason: "required field missing"}
	}
	ts, err := parseTimeValue(v)
	if err != nil {
		return time.Time{}, &ValidationError{Model: model, Field: key, Reason: err.Error()}
	}
	return ts, nil
}

func optionalTime(m map[string]any, model, key string) (*time.Time, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	ts, err := parseTimeValue(v)
	if err != nil {
		return nil, &ValidationError{Model: model, Field: key, Reason: err.Error()}
	}
	return &ts, nil
}
