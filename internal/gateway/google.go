package gateway

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// googleAdapter speaks the Gemini generateContent API. The key rides in
// the query string, so anything derived from the request URL must go
// through scrubCredentials before it is reported.
type googleAdapter struct{}

type googlePart struct {
	Text string `json:"text"`
}

type googleContent struct {
	Parts []googlePart `json:"parts"`
}

type googleGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type googleRequest struct {
	Contents         []googleContent        `json:"contents"`
	GenerationConfig googleGenerationConfig `json:"generationConfig"`
}

type googleResponse struct {
	Candidates []struct {
		Content struct {
			Parts []googlePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type googleErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (googleAdapter) build(d ProviderDescriptor, apiKey string, req ChatRequest) (*ProviderRequest, *GatewayError) {
	csvText, gwErr := decodeCSVText(d, req)
	if gwErr != nil {
		return nil, gwErr
	}

	prompt := fmt.Sprintf("Analyze this CSV data from file '%s' and answer the question.\n\nCSV Data:\n%s\n\nQuestion: %s\n\nProvide a comprehensive analysis and answer.",
		req.CSVFileName, csvText, req.Question)

	payload := googleRequest{
		Contents: []googleContent{{Parts: []googlePart{{Text: prompt}}}},
		GenerationConfig: googleGenerationConfig{
			MaxOutputTokens: maxAnswerTokens,
			Temperature:     0.7,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, newError(ErrUpstreamBadRequest, d.Kind, "failed to encode request: %v", err)
	}

	return &ProviderRequest{
		URL: fmt.Sprintf("%s/%s:generateContent?key=%s", d.Endpoint, d.DefaultModel, url.QueryEscape(apiKey)),
		Headers: map[string]string{
			"Content-Type": "application/json",
			"X-Request-ID": req.RequestID,
		},
		Body: body,
	}, nil
}

func (googleAdapter) normalize(d ProviderDescriptor, raw RawResponse) (*ChatAnswer, *GatewayError) {
	var resp googleResponse
	if err := json.Unmarshal(raw.Body, &resp); err != nil {
		return nil, newError(ErrUpstreamUnparsable, d.Kind, "invalid JSON in provider response: %v", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 || resp.Candidates[0].Content.Parts[0].Text == "" {
		return nil, newError(ErrUpstreamUnparsable, d.Kind, "response has no candidates")
	}
	return &ChatAnswer{
		AnswerText:   resp.Candidates[0].Content.Parts[0].Text,
		ProviderUsed: string(d.Kind),
		ModelUsed:    d.DefaultModel,
	}, nil
}

func (googleAdapter) errorMessage(body []byte) string {
	var resp googleErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}
	return resp.Error.Message
}
