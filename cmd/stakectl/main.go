package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	stakeapi "github.com/ChipaDevTeam/StakeAPI"
	"github.com/ChipaDevTeam/StakeAPI/internal/config"
	"github.com/ChipaDevTeam/StakeAPI/internal/logger"
)

const usage = `usage: stakectl <command> [args]

commands:
  balance               show available and vault balances per currency
  profile               show the authenticated user profile
  games [category]      list casino games
  events [sport]        list sports events
  bets [limit]          list bet history
  transactions [limit]  list transactions
  stats                 show betting statistics
  watch <query-file>    stream live updates for a GraphQL subscription
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfgPath := os.Getenv("STAKE_CONFIG")
	envOnly := cfgPath == ""
	if envOnly {
		cfgPath = "config/config.yaml"
	}
	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if curl := os.Getenv("STAKE_CURL"); curl != "" {
		if token, ok := stakeapi.ExtractAccessTokenFromCurl(curl); ok {
			cfg.Client.AccessToken = token
		}
		if session, ok := stakeapi.ExtractSessionFromCurl(curl); ok {
			cfg.Client.SessionCookie = session
		}
	}
	if cfg.Client.AccessToken == "" {
		log.Fatal("no access token configured; set STAKE_CLIENT_ACCESS_TOKEN or STAKE_CURL")
	}

	client := stakeapi.NewClient(&stakeapi.Config{
		AccessToken:   cfg.Client.AccessToken,
		SessionCookie: cfg.Client.SessionCookie,
		BaseURL:       cfg.Client.BaseURL,
		Timeout:       cfg.Client.Timeout,
		RateLimit:     cfg.Client.RateLimit,
		Logger:        log,
	})
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, client, cfg, log, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Fatal("command failed", zap.Error(err))
	}
}

func run(ctx context.Context, client *stakeapi.Client, cfg config.Config, log *zap.Logger, command string, args []string) error {
	switch command {
	case "balance":
		return showBalance(ctx, client)
	case "profile":
		return showProfile(ctx, client)
	case "games":
		return listGames(ctx, client, firstArg(args))
	case "events":
		return listEvents(ctx, client, firstArg(args))
	case "bets":
		return listBets(ctx, client, limitArg(args))
	case "transactions":
		return listTransactions(ctx, client, limitArg(args))
	case "stats":
		return showStats(ctx, client)
	case "watch":
		return watch(ctx, client, cfg.Live, log, firstArg(args))
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// withRetry demonstrates the caller-side backoff the library itself
// deliberately omits: rate-limit responses are retried with doubling
// delays, everything else fails immediately.
func withRetry[T any](ctx context.Context, attempts int, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	delay := time.Second
	for i := 0; i < attempts; i++ {
		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		var rateErr *stakeapi.RateLimitError
		if !errors.As(err, &rateErr) || i == attempts-1 {
			return zero, err
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return zero, nil
}

func showBalance(ctx context.Context, client *stakeapi.Client) error {
	balances, err := withRetry(ctx, 3, client.GetUserBalance)
	if err != nil {
		return err
	}
	fmt.Println("available:")
	for currency, amount := range balances.Available {
		fmt.Printf("  %-6s %s\n", currency, amount.String())
	}
	fmt.Println("vault:")
	for currency, amount := range balances.Vault {
		fmt.Printf("  %-6s %s\n", currency, amount.String())
	}
	return nil
}

func showProfile(ctx context.Context, client *stakeapi.Client) error {
	user, err := withRetry(ctx, 3, client.GetUserProfile)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", user.Username, user.ID)
	if user.Email != "" {
		fmt.Printf("email:    %s (verified: %v)\n", user.Email, user.Verified)
	}
	fmt.Printf("currency: %s\n", user.Currency)
	fmt.Printf("joined:   %s\n", user.CreatedAt.Format(time.RFC3339))
	return nil
}

func listGames(ctx context.Context, client *stakeapi.Client, category string) error {
	games, err := withRetry(ctx, 3, func(ctx context.Context) ([]stakeapi.Game, error) {
		return client.GetCasinoGames(ctx, category)
	})
	if err != nil {
		return err
	}
	for _, game := range games {
		line := fmt.Sprintf("%-40s %-12s %s", game.Name, game.Category, game.Provider)
		if game.RTP != nil {
			line += fmt.Sprintf("  rtp=%.2f%%", *game.RTP)
		}
		fmt.Println(line)
	}
	return nil
}

func listEvents(ctx context.Context, client *stakeapi.Client, sport string) error {
	events, err := withRetry(ctx, 3, func(ctx context.Context) ([]stakeapi.SportEvent, error) {
		return client.GetSportsEvents(ctx, sport)
	})
	if err != nil {
		return err
	}
	for _, event := range events {
		fmt.Printf("%s vs %s  [%s / %s]  %s\n",
			event.HomeTeam, event.AwayTeam, event.Sport, event.League,
			event.StartTime.Format(time.RFC3339))
		for outcome, price := range event.Odds {
			fmt.Printf("  %-10s %s\n", outcome, price.String())
		}
	}
	return nil
}

func listBets(ctx context.Context, client *stakeapi.Client, limit int) error {
	bets, err := withRetry(ctx, 3, func(ctx context.Context) ([]stakeapi.Bet, error) {
		return client.GetBetHistory(ctx, limit)
	})
	if err != nil {
		return err
	}
	for _, bet := range bets {
		fmt.Printf("%s  %-9s amount=%s payout=%s  %s\n",
			bet.PlacedAt.Format(time.RFC3339), bet.Status,
			bet.Amount.String(), bet.PotentialPayout.String(), bet.BetType)
	}
	return nil
}

func listTransactions(ctx context.Context, client *stakeapi.Client, limit int) error {
	transactions, err := withRetry(ctx, 3, func(ctx context.Context) ([]stakeapi.Transaction, error) {
		return client.GetUserTransactions(ctx, limit)
	})
	if err != nil {
		return err
	}
	for _, tx := range transactions {
		fmt.Printf("%s  %-10s %s\n", tx.Timestamp.Format(time.RFC3339), tx.Type,
			stakeapi.FormatCurrency(tx.Amount, tx.Currency))
	}
	return nil
}

func showStats(ctx context.Context, client *stakeapi.Client) error {
	stats, err := withRetry(ctx, 3, client.GetUserStatistics)
	if err != nil {
		return err
	}
	fmt.Printf("total bets:    %d\n", stats.TotalBets)
	fmt.Printf("total wagered: %s\n", stats.TotalWagered.String())
	fmt.Printf("total won:     %s\n", stats.TotalWon.String())
	fmt.Printf("win rate:      %.2f%%\n", stats.WinRate)
	if stats.FavoriteGame != "" {
		fmt.Printf("favorite game: %s\n", stats.FavoriteGame)
	}
	return nil
}

func watch(ctx context.Context, client *stakeapi.Client, live config.LiveConfig, log *zap.Logger, queryFile string) error {
	if queryFile == "" {
		return fmt.Errorf("watch requires a GraphQL subscription query file")
	}
	query, err := os.ReadFile(queryFile)
	if err != nil {
		return err
	}
	stream, err := stakeapi.NewLiveStream(stakeapi.LiveStreamOptions{
		URL:               live.URL,
		Query:             string(query),
		Auth:              client.Auth(),
		HeartbeatInterval: live.HeartbeatInterval,
		BackoffMin:        live.BackoffMin,
		BackoffMax:        live.BackoffMax,
		Logger:            log,
	})
	if err != nil {
		return err
	}
	return stream.Run(ctx, func(data map[string]any, raw []byte) {
		fmt.Println(strings.TrimSpace(string(raw)))
	})
}

func firstArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func limitArg(args []string) int {
	if len(args) == 0 {
		return 0
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0
	}
	return n
}
