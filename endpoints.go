package stakeapi

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// GraphQL endpoint.
const GraphQLPath = "/_api/graphql"

const apiBase = "/api/v1"

// Legacy REST endpoints. Templates carry named placeholders rendered
// with renderPath.
const (
	EndpointAuthLogin   = apiBase + "/auth/login"
	EndpointAuthLogout  = apiBase + "/auth/logout"
	EndpointAuthRefresh = apiBase + "/auth/refresh"

	EndpointUserProfile      = apiBase + "/user/profile"
	EndpointUserBalance      = apiBase + "/user/balance"
	EndpointUserStatistics   = apiBase + "/user/statistics"
	EndpointUserTransactions = apiBase + "/user/transactions"

	EndpointCasinoGames       = apiBase + "/casino/games"
	EndpointCasinoGameDetails = apiBase + "/casino/games/{game_id}"
	EndpointCasinoProviders   = apiBase + "/casino/providers"
	EndpointCasinoCategories  = apiBase + "/casino/categories"

	EndpointSportsEvents      = apiBase + "/sports/events"
	EndpointSportsEventDetail = apiBase + "/sports/events/{event_id}"
	EndpointSportsLeagues     = apiBase + "/sports/leagues"
	EndpointSportsOdds        = apiBase + "/sports/odds"

	EndpointPlaceBet   = apiBase + "/bets/place"
	EndpointBetHistory = apiBase + "/bets/history"
	EndpointBetDetails = apiBase + "/bets/{bet_id}"
	EndpointCancelBet  = apiBase + "/bets/{bet_id}/cancel"

	EndpointLiveGames  = apiBase + "/live/games"
	EndpointLiveEvents = apiBase + "/live/events"

	EndpointPromotions      = apiBase + "/promotions"
	EndpointPromotionDetail = apiBase + "/promotions/{promo_id}"
)

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// renderPath substitutes named placeholders in a path template. Every
// placeholder must be supplied; leftovers are a ValidationError since
// templates themselves are static and checked at test time.
func renderPath(template string, params map[string]string) (string, error) {
	path := template
	for name, value := range params {
		if strings.TrimSpace(value) == "" {
			return "", &ValidationError{Model: "Endpoints", Field: name, Reason: "empty path parameter"}
		}
		path = strings.ReplaceAll(path, "{"+name+"}", url.PathEscape(value))
	}
	if m := placeholderPattern.FindStringSubmatch(path); m != nil {
		return "", &ValidationError{
			Model:  "Endpoints",
			Field:  m[1],
			Reason: fmt.Sprintf("missing path parameter for %s", template),
		}
	}
	return path, nil
}

// GraphQL documents used against the /_api/graphql endpoint.
const (
	QueryUserBalances = `
query UserBalances {
  user {
    id
    balances {
      available {
        amount
        currency
        __typename
      }
      vault {
        amount
        currency
        __typename
      }
      __typename
    }
    __typename
  }
}`

	QueryUserProfile = `
query UserProfile {
  user {
    id
    name
    email
    isEmailVerified
    country
    level
    statistics {
      __typename
    }
    __typename
  }
}`

	QueryCasinoGames = `
query CasinoGames($first: Int, $after: String, $categorySlug: String) {
  casinoGames(first: $first, after: $after, categorySlug: $categorySlug) {
    edges {
      node {
        id
        name
        slug
        provider {
          name
          __typename
        }
        thumb
        category {
          name
          slug
          __typename
        }
        __typename
      }
      __typename
    }
    pageInfo {
      hasNextPage
      endCursor
      __typename
    }
    __typename
  }
}`

	QuerySportsEvents = `
query SportsEvents($first: Int, $sportSlug: String) {
  sportsEvents(first: $first, sportSlug: $sportSlug) {
    edges {
      node {
        id
        name
        startTime
        sport {
          name
          slug
          __typename
        }
        league {
          name
          slug
          __typename
        }
        competitors {
          name
          __typename
        }
        markets {
          name
          outcomes {
            name
            odds
            __typename
          }
          __typename
        }
        __typename
      }
      __typename
    }
    __typename
  }
}`

	QueryBetHistory = `
query BetHistory($first: Int, $after: String) {
  user {
    bets(first: $first, after: $after) {
      edges {
        node {
          id
          amount
          currency
          multiplier
          payout
          createdAt
          updatedAt
          outcome
          game {
            name
            slug
            __typename
          }
          __typename
        }
        __typename
      }
      pageInfo {
        hasNextPage
        endCursor
        __typename
      }
      __typename
    }
    __typename
  }
}`
)
