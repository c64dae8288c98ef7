// Package gateway mediates between the stateless HTTP route layer and the
// set of configured LLM providers. Each call selects exactly one provider,
// builds its wire request, executes it with a bounded timeout, and
// normalizes the response or error into one uniform shape. The gateway
// holds no state across calls beyond the immutable catalog and the
// credentials loaded at startup.
package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"

	"csvchat/internal/utils"
)

const defaultProviderTimeout = 60 * time.Second

// Options configures a Gateway.
type Options struct {
	Catalog     Catalog
	Credentials Credentials
	Timeout     time.Duration
	Logger      *utils.Logger
}

// Gateway answers CSV questions through exactly one provider per call.
// Safe for concurrent use; calls share only read-only state.
type Gateway struct {
	catalog   Catalog
	creds     Credentials
	transport *Transport
	timeout   time.Duration
	logger    *utils.Logger
}

func New(opts Options) *Gateway {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewLogger("gateway")
	}
	return &Gateway{
		catalog:   opts.Catalog,
		creds:     opts.Credentials,
		transport: NewTransport(),
		timeout:   timeout,
		logger:    logger,
	}
}

// Catalog returns the provider catalog in priority order.
func (g *Gateway) Catalog() []ProviderDescriptor {
	return g.catalog.Providers()
}

// DetectProvider reports the provider a call would use first, ignoring
// payload size.
func (g *Gateway) DetectProvider() (ProviderDescriptor, bool) {
	return g.catalog.Detect(g.creds)
}

// AnswerQuestion runs one full pipeline: select, build, send, normalize.
// The returned error is always a *GatewayError; nothing here panics and
// nothing survives the call.
func (g *Gateway) AnswerQuestion(ctx context.Context, req ChatRequest) (*ChatAnswer, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}
	start := time.Now()

	d, gwErr := g.catalog.Select(g.creds, int64(len(req.CSVBytes)))
	if gwErr != nil {
		g.logger.Warn("no provider selected", "request_id", req.RequestID, "kind", gwErr.Kind, "csv_bytes", len(req.CSVBytes))
		return nil, gwErr
	}

	a, gwErr := adapterFor(d.Kind)
	if gwErr != nil {
		return nil, gwErr
	}

	pReq, gwErr := a.build(d, g.creds[d.Kind], req)
	if gwErr != nil {
		g.logger.Warn("request build rejected", "request_id", req.RequestID, "provider", d.Kind, "kind", gwErr.Kind)
		return nil, gwErr
	}

	raw, gwErr := g.transport.Send(ctx, d, pReq, g.timeout)
	if gwErr != nil {
		g.logger.Error("provider call failed", "request_id", req.RequestID, "provider", d.Kind, "kind", gwErr.Kind)
		return nil, gwErr
	}

	if raw.StatusCode < 200 || raw.StatusCode > 299 {
		gwErr = mapProviderError(d, a, *raw)
		g.logger.Error("provider returned error", "request_id", req.RequestID, "provider", d.Kind, "status", raw.StatusCode, "kind", gwErr.Kind)
		return nil, gwErr
	}

	answer, gwErr := a.normalize(d, *raw)
	if gwErr != nil {
		g.logger.Error("provider response unparsable", "request_id", req.RequestID, "provider", d.Kind)
		return nil, gwErr
	}

	g.logger.Info("answered question", "request_id", req.RequestID, "provider", d.Kind, "model", answer.ModelUsed,
		"csv_bytes", len(req.CSVBytes), "elapsed_ms", time.Since(start).Milliseconds())
	return answer, nil
}
