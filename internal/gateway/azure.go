package gateway

import (
	"encoding/json"
)

// azureAdapter speaks the same chat-completions dialect as openAIAdapter
// but authenticates with an api-key header and targets a per-deployment
// URL, so the body carries no model field.
type azureAdapter struct{}

func (azureAdapter) build(d ProviderDescriptor, apiKey string, req ChatRequest) (*ProviderRequest, *GatewayError) {
	csvText, gwErr := decodeCSVText(d, req)
	if gwErr != nil {
		return nil, gwErr
	}

	payload := chatCompletionsRequest{
		Messages: []chatCompletionsMessage{
			{Role: "system", Content: csvSystemPrompt},
			{Role: "user", Content: chatCompletionsPrompt(req.CSVFileName, csvText, req.Question)},
		},
		MaxTokens:   maxAnswerTokens,
		Temperature: 0.3,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, newError(ErrUpstreamBadRequest, d.Kind, "failed to encode request: %v", err)
	}

	return &ProviderRequest{
		URL: d.Endpoint,
		Headers: map[string]string{
			"api-key":      apiKey,
			"Content-Type": "application/json",
			"X-Request-ID": req.RequestID,
		},
		Body: body,
	}, nil
}

func (azureAdapter) normalize(d ProviderDescriptor, raw RawResponse) (*ChatAnswer, *GatewayError) {
	return normalizeChatCompletions(d, raw)
}

func (azureAdapter) errorMessage(body []byte) string {
	return chatCompletionsErrorMessage(body)
}
