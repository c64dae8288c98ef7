package gateway

import (
	"encoding/json"
	"fmt"
)

// maxAnswerTokens bounds the model's reply for every provider.
const maxAnswerTokens = 1500

const csvSystemPrompt = "You are a helpful assistant that analyzes CSV data and answers questions about it."

// openAIAdapter speaks the chat-completions API. The CSV is decoded to
// text and inlined into the user prompt.
type openAIAdapter struct{}

type chatCompletionsMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionsRequest struct {
	Model       string                   `json:"model,omitempty"`
	Messages    []chatCompletionsMessage `json:"messages"`
	MaxTokens   int                      `json:"max_tokens"`
	Temperature float64                  `json:"temperature"`
}

type chatCompletionsResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Model string `json:"model"`
}

type chatCompletionsErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// chatCompletionsPrompt assembles the single text prompt shared by the
// chat-completions providers.
func chatCompletionsPrompt(fileName, csvText, question string) string {
	return fmt.Sprintf("Here is CSV data from file '%s':\n\n%s\n\nQuestion: %s\n\nPlease analyze the data and provide a comprehensive answer.",
		fileName, csvText, question)
}

func (openAIAdapter) build(d ProviderDescriptor, apiKey string, req ChatRequest) (*ProviderRequest, *GatewayError) {
	csvText, gwErr := decodeCSVText(d, req)
	if gwErr != nil {
		return nil, gwErr
	}

	payload := chatCompletionsRequest{
		Model: d.DefaultModel,
		Messages: []chatCompletionsMessage{
			{Role: "system", Content: csvSystemPrompt},
			{Role: "user", Content: chatCompletionsPrompt(req.CSVFileName, csvText, req.Question)},
		},
		MaxTokens:   maxAnswerTokens,
		Temperature: 0.7,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, newError(ErrUpstreamBadRequest, d.Kind, "failed to encode request: %v", err)
	}

	return &ProviderRequest{
		URL: d.Endpoint,
		Headers: map[string]string{
			"Authorization": "Bearer " + apiKey,
			"Content-Type":  "application/json",
			"X-Request-ID":  req.RequestID,
		},
		Body: body,
	}, nil
}

func (openAIAdapter) normalize(d ProviderDescriptor, raw RawResponse) (*ChatAnswer, *GatewayError) {
	return normalizeChatCompletions(d, raw)
}

func (openAIAdapter) errorMessage(body []byte) string {
	return chatCompletionsErrorMessage(body)
}

func normalizeChatCompletions(d ProviderDescriptor, raw RawResponse) (*ChatAnswer, *GatewayError) {
	var resp chatCompletionsResponse
	if err := json.Unmarshal(raw.Body, &resp); err != nil {
		return nil, newError(ErrUpstreamUnparsable, d.Kind, "invalid JSON in provider response: %v", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, newError(ErrUpstreamUnparsable, d.Kind, "response has no choices")
	}
	model := resp.Model
	if model == "" {
		model = d.DefaultModel
	}
	return &ChatAnswer{
		AnswerText:   resp.Choices[0].Message.Content,
		ProviderUsed: string(d.Kind),
		ModelUsed:    model,
	}, nil
}

func chatCompletionsErrorMessage(body []byte) string {
	var resp chatCompletionsErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}
	return resp.Error.Message
}
