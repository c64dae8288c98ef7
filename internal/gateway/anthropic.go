package gateway

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

const anthropicAPIVersion = "2023-06-01"

// anthropicAdapter speaks the Anthropic messages API. It is the one
// native-document provider: the CSV travels as a base64 document block and
// the model reads the file itself.
type anthropicAdapter struct{}

type anthropicDocumentSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicContentBlock struct {
	Type   string                   `json:"type"`
	Text   string                   `json:"text,omitempty"`
	Source *anthropicDocumentSource `json:"source,omitempty"`
}

type anthropicMessage struct {
	Role    string                  `json:"role"`
	Content []anthropicContentBlock `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model string `json:"model"`
}

type anthropicErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (anthropicAdapter) build(d ProviderDescriptor, apiKey string, req ChatRequest) (*ProviderRequest, *GatewayError) {
	payload := anthropicRequest{
		Model:     d.DefaultModel,
		MaxTokens: maxAnswerTokens,
		Messages: []anthropicMessage{{
			Role: "user",
			Content: []anthropicContentBlock{
				{
					Type: "text",
					Text: fmt.Sprintf("I have uploaded a CSV file named '%s'. Please analyze this data and answer the following question: %s",
						req.CSVFileName, req.Question),
				},
				{
					Type: "document",
					Source: &anthropicDocumentSource{
						Type:      "base64",
						MediaType: "text/csv",
						Data:      base64.StdEncoding.EncodeToString(req.CSVBytes),
					},
				},
			},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, newError(ErrUpstreamBadRequest, d.Kind, "failed to encode request: %v", err)
	}

	return &ProviderRequest{
		URL: d.Endpoint,
		Headers: map[string]string{
			"x-api-key":         apiKey,
			"anthropic-version": anthropicAPIVersion,
			"content-type":      "application/json",
			"x-request-id":      req.RequestID,
		},
		Body: body,
	}, nil
}

func (anthropicAdapter) normalize(d ProviderDescriptor, raw RawResponse) (*ChatAnswer, *GatewayError) {
	var resp anthropicResponse
	if err := json.Unmarshal(raw.Body, &resp); err != nil {
		return nil, newError(ErrUpstreamUnparsable, d.Kind, "invalid JSON in provider response: %v", err)
	}
	if len(resp.Content) == 0 || resp.Content[0].Text == "" {
		return nil, newError(ErrUpstreamUnparsable, d.Kind, "response has no content blocks")
	}
	model := resp.Model
	if model == "" {
		model = d.DefaultModel
	}
	return &ChatAnswer{
		AnswerText:   resp.Content[0].Text,
		ProviderUsed: string(d.Kind),
		ModelUsed:    model,
	}, nil
}

func (anthropicAdapter) errorMessage(body []byte) string {
	var resp anthropicErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}
	return resp.Error.Message
}
