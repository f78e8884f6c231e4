package openai

import (
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// describeAPIError turns a client error into a readable one, keeping the cause
// in the chain so context cancellation stays detectable.
func describeAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("oracle API error %d: %s: %w", reqErr.HTTPStatusCode, detail, err)
		}
		return fmt.Errorf("oracle API error %d: %w", reqErr.HTTPStatusCode, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("oracle API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	return fmt.Errorf("oracle request failed: %w", err)
}

// extractDetail reads the "detail" field some OpenAI-compatible gateways use.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		return parsed.Detail
	}
	return ""
}
