package gateway

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrorKind classifies gateway failures into the small taxonomy the route
// layer maps to HTTP statuses.
type ErrorKind string

const (
	ErrNoProviderConfigured ErrorKind = "no_provider_configured"
	ErrPayloadTooLarge      ErrorKind = "payload_too_large"
	ErrUpstreamAuth         ErrorKind = "upstream_auth"
	ErrUpstreamRateLimited  ErrorKind = "upstream_rate_limited"
	ErrUpstreamBadRequest   ErrorKind = "upstream_bad_request"
	ErrUpstreamTransient    ErrorKind = "upstream_transient"
	ErrUpstreamUnparsable   ErrorKind = "upstream_unparsable"
)

// GatewayError is the only failure shape the gateway returns. Provider is
// empty when the failure happened before a provider was selected.
type GatewayError struct {
	Kind     ErrorKind
	Message  string
	Provider string
}

func (e *GatewayError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Provider, e.Message)
}

func newError(kind ErrorKind, provider ProviderKind, format string, args ...any) *GatewayError {
	return &GatewayError{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Provider: string(provider),
	}
}

// AsGatewayError extracts the typed error from err. Anything else that
// leaks out of the gateway (there should be nothing) is reported as
// transient so callers still get a member of the taxonomy.
func AsGatewayError(err error) *GatewayError {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr
	}
	return &GatewayError{Kind: ErrUpstreamTransient, Message: err.Error()}
}

// Credentials may reach error text through URLs (google puts the key in
// the query string) or echoed headers. Scrub them before the message is
// stored or returned.
var credentialPattern = regexp.MustCompile(`(?i)(key=|api[-_]?key["':\s=]+|bearer\s+)[A-Za-z0-9._\-]+`)

func scrubCredentials(s string) string {
	return credentialPattern.ReplaceAllString(s, "${1}REDACTED")
}
