package gateway

// ChatRequest is the per-call input triple plus the request ID the route
// layer or gateway assigned for tracing. It is owned by the call that
// created it and discarded when the call completes.
type ChatRequest struct {
	CSVBytes    []byte
	CSVFileName string
	Question    string
	RequestID   string
}

// ProviderRequest is a fully built provider-specific HTTP request. Built
// fresh per call, never reused.
type ProviderRequest struct {
	URL     string
	Headers map[string]string
	Body    []byte
}

// ChatAnswer is the normalized success result.
type ChatAnswer struct {
	AnswerText   string `json:"answer"`
	ProviderUsed string `json:"provider_used"`
	ModelUsed    string `json:"model_used"`
}

// RawResponse is what the transport hands back for any completed HTTP
// exchange, 2xx or not.
type RawResponse struct {
	StatusCode int
	Body       []byte
}
