package gateway

import (
	"fmt"
	"net/http"
	"unicode/utf8"
)

// errorMessageLimit truncates raw provider bodies carried into error
// messages.
const errorMessageLimit = 512

// mapProviderError classifies a non-2xx provider response. The provider's
// own error text is preserved for debuggability, scrubbed of credentials.
func mapProviderError(d ProviderDescriptor, a adapter, raw RawResponse) *GatewayError {
	msg := a.errorMessage(raw.Body)
	if msg == "" {
		msg = truncateMessage(string(raw.Body))
	}
	msg = scrubCredentials(msg)

	switch {
	case raw.StatusCode == http.StatusUnauthorized || raw.StatusCode == http.StatusForbidden:
		return newError(ErrUpstreamAuth, d.Kind, "provider rejected credentials (status %d): %s", raw.StatusCode, msg)
	case raw.StatusCode == http.StatusTooManyRequests:
		return newError(ErrUpstreamRateLimited, d.Kind, "provider rate limited the request: %s", msg)
	case raw.StatusCode == http.StatusRequestEntityTooLarge:
		// Still bad-request kind, but tagged so callers can tell it is a
		// size rejection.
		return newError(ErrUpstreamBadRequest, d.Kind, "payload too large for provider: %s", msg)
	case raw.StatusCode >= 400 && raw.StatusCode < 500:
		return newError(ErrUpstreamBadRequest, d.Kind, "provider rejected the request (status %d): %s", raw.StatusCode, msg)
	default:
		// 5xx and anything outside the table.
		return newError(ErrUpstreamTransient, d.Kind, "provider returned status %d: %s", raw.StatusCode, msg)
	}
}

func truncateMessage(s string) string {
	if len(s) <= errorMessageLimit {
		return s
	}
	cut := errorMessageLimit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return fmt.Sprintf("%s... (%d bytes truncated)", s[:cut], len(s)-cut)
}
