// Package stakeapi provides a client for the stake.com GraphQL/REST
// API.
//
// Authentication uses credentials copied out-of-band from a browser
// session: the x-access-token header and, optionally, the session
// cookie. The client stores and replays them; it performs no login
// flow of its own. ExtractAccessTokenFromCurl and
// ExtractSessionFromCurl pull both values out of a copied curl
// command.
//
// # Basic Usage
//
//	client := stakeapi.NewClient(&stakeapi.Config{
//	    AccessToken: token,
//	})
//	defer client.Close()
//
//	balances, err := client.GetUserBalance(ctx)
//	games, err := client.GetCasinoGames(ctx, "slots")
//
// # Error Handling
//
// Failures are typed so callers can match exhaustively with errors.As:
// *AuthenticationError (HTTP 401), *RateLimitError (HTTP 429),
// *ValidationError (model coercion or bad input), *GraphQLError (a
// GraphQL errors list on HTTP 200) and *APIError (any other >=400
// status, or a transport failure it wraps).
//
// The client performs no retries and no request pacing; the RateLimit
// setting is an advisory hint and backoff is a caller concern. All
// monetary fields are shopspring decimals parsed from the exact wire
// string, never through a float.
package stakeapi
