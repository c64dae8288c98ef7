package gateway

import (
	"unicode/utf8"
)

// adapter is the closed set of provider-specific behaviors: building the
// wire request, extracting the answer from a 2xx body, and pulling the
// provider's own error text out of a failure body. Adding a provider means
// adding one implementation, not touching call sites.
type adapter interface {
	build(d ProviderDescriptor, apiKey string, req ChatRequest) (*ProviderRequest, *GatewayError)
	normalize(d ProviderDescriptor, raw RawResponse) (*ChatAnswer, *GatewayError)
	errorMessage(body []byte) string
}

var adapters = map[ProviderKind]adapter{
	KindAnthropic:   anthropicAdapter{},
	KindOpenAI:      openAIAdapter{},
	KindAzureOpenAI: azureAdapter{},
	KindGoogle:      googleAdapter{},
}

func adapterFor(kind ProviderKind) (adapter, *GatewayError) {
	a, ok := adapters[kind]
	if !ok {
		return nil, newError(ErrNoProviderConfigured, kind, "no adapter for provider kind %q", kind)
	}
	return a, nil
}

// answerTokenReserve is headroom kept for the model's reply when checking
// a decoded-text prompt against the context window.
const answerTokenReserve = 2000

// decodeCSVText validates and bounds the CSV for decoded-text providers.
// Both failure modes happen before any network call: a non-UTF-8 file is a
// bad request, an over-context file is rejected rather than silently
// truncated.
func decodeCSVText(d ProviderDescriptor, req ChatRequest) (string, *GatewayError) {
	if !utf8.Valid(req.CSVBytes) {
		return "", newError(ErrUpstreamBadRequest, d.Kind, "unable to decode CSV file as UTF-8")
	}
	text := string(req.CSVBytes)

	needed := countTokens(d.DefaultModel, text) + countTokens(d.DefaultModel, req.Question) + answerTokenReserve
	if needed > d.MaxContextTokens {
		return "", newError(ErrPayloadTooLarge, d.Kind,
			"CSV content needs ~%d tokens but model %s allows %d", needed, d.DefaultModel, d.MaxContextTokens)
	}
	return text, nil
}
