package stakeapi

import (
	"sync"
	"time"
)

// Tokens are treated as expired this long before their recorded expiry.
const tokenExpirySafetyMargin = 300 * time.Second

// AuthManager stores the credentials replayed on every request: the
// x-access-token header value and the session cookie. It performs no
// network calls and is safe for concurrent use.
type AuthManager struct {
	mu             sync.Mutex
	accessToken    string
	sessionCookie  string
	tokenExpiresAt time.Time

	now func() time.Time
}

func NewAuthManager(accessToken, sessionCookie string) *AuthManager {
	return &AuthManager{
		accessToken:   accessToken,
		sessionCookie: sessionCookie,
		now:           time.Now,
	}
}

// Headers returns the authentication headers to attach to a request;
// empty when no access token is set.
func (a *AuthManager) Headers() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	headers := map[string]string{}
	if a.accessToken != "" {
		headers["X-Access-Token"] = a.accessToken
	}
	return headers
}

// Cookies returns the authentication cookies to attach to a request;
// empty when no session cookie is set.
func (a *AuthManager) Cookies() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	cookies := map[string]string{}
	if a.sessionCookie != "" {
		cookies["session"] = a.sessionCookie
	}
	return cookies
}

// SetAccessToken replaces the stored access token. A positive ttl
// records an absolute expiry; ttl zero leaves the token non-expiring.
func (a *AuthManager) SetAccessToken(token string, ttl time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.accessToken = token
	if ttl > 0 {
		a.tokenExpiresAt = a.now().Add(ttl)
	} else {
		a.tokenExpiresAt = time.Time{}
	}
}

func (a *AuthManager) SetSessionCookie(sessionCookie string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessionCookie = sessionCookie
}

// IsTokenExpired reports whether the stored token is within the safety
// margin of its recorded expiry. Tokens without a recorded expiry are
// treated as non-expiring.
func (a *AuthManager) IsTokenExpired() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.tokenExpiresAt.IsZero() {
		return false
	}
	return !a.now().Before(a.tokenExpiresAt.Add(-tokenExpirySafetyMargin))
}

// Clear erases all stored credentials. Idempotent.
func (a *AuthManager) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.accessToken = ""
	a.sessionCookie = ""
	a.tokenExpiresAt = time.Time{}
}
