package gateway

import (
	"github.com/pkoukk/tiktoken-go"
)

// heuristicBytesPerToken approximates English/CSV text when no encoding
// is available for the model.
const heuristicBytesPerToken = 4

// countTokens estimates the token count of text for model. tiktoken only
// knows OpenAI-family encodings and may need its BPE data on disk; when it
// cannot help, a bytes/4 heuristic keeps the bound deterministic.
func countTokens(model, text string) int {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
	}
	if err != nil || enc == nil {
		return len(text)/heuristicBytesPerToken + 1
	}
	return len(enc.Encode(text, nil, nil))
}
