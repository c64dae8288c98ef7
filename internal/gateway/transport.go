package gateway

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"
)

// responseBodyLimit caps how much of a provider response is read. Answers
// are bounded by maxAnswerTokens, so anything past this is garbage.
const responseBodyLimit = 4 << 20

// Transport executes one provider HTTP call with a bounded timeout. It
// never retries; a timed-out or failed call surfaces as transient
// immediately and retry policy stays with the caller.
type Transport struct {
	client *http.Client
}

func NewTransport() *Transport {
	return &Transport{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Send posts req and returns the raw exchange. Non-2xx statuses are not
// errors here; they come back as a RawResponse for the error mapper.
func (t *Transport) Send(ctx context.Context, d ProviderDescriptor, req *ProviderRequest, timeout time.Duration) (*RawResponse, *GatewayError) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, newError(ErrUpstreamTransient, d.Kind, "failed to create request: %s", scrubCredentials(err.Error()))
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, newError(ErrUpstreamTransient, d.Kind, "request timed out after %s", timeout)
		}
		if errors.Is(err, context.Canceled) {
			return nil, newError(ErrUpstreamTransient, d.Kind, "request canceled by caller")
		}
		return nil, newError(ErrUpstreamTransient, d.Kind, "request failed: %s", scrubCredentials(err.Error()))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	if err != nil {
		return nil, newError(ErrUpstreamTransient, d.Kind, "failed to read response: %s", scrubCredentials(err.Error()))
	}

	return &RawResponse{StatusCode: resp.StatusCode, Body: body}, nil
}
