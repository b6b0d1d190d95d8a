package stakeapi

import (
	"regexp"
	"strings"
)

var (
	curlAccessTokenPattern = regexp.MustCompile(`(?i)-H\s+["']x-access-token:\s*([^"']+)["']`)
	curlSessionPattern     = regexp.MustCompile(`session=([^;]+)`)
)

// ExtractAccessTokenFromCurl pulls the x-access-token header value out
// of a copied browser curl command. The header name match is
// case-insensitive. Returns false when no such header is present.
func ExtractAccessTokenFromCurl(curlCommand string) (string, bool) {
	m := curlAccessTokenPattern.FindStringSubmatch(curlCommand)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// ExtractSessionFromCurl pulls the session cookie value (up to the
// next ";") out of a copied browser curl command. Returns false when
// no session cookie is present.
func ExtractSessionFromCurl(curlCommand string) (string, bool) {
	m := curlSessionPattern.FindStringSubmatch(curlCommand)
	if m == nil {
		return "", false
	}
	value := strings.TrimSpace(m[1])
	value = strings.Trim(value, `"'`)
	if value == "" {
		return "", false
	}
	return value, true
}
