package provider

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ProviderError carries the upstream status and message. The gateway never
// retries; callers own their retry policy.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("provider: %d: %s", e.Status, e.Message)
	}
	return "provider: " + e.Message
}

type upstreamError struct {
	Error struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func newProviderError(status int, body []byte) *ProviderError {
	message := strings.TrimSpace(string(body))

	var decoded upstreamError
	if err := json.Unmarshal(body, &decoded); err == nil && decoded.Error.Message != "" {
		message = decoded.Error.Message
	}

	return &ProviderError{Status: status, Message: message}
}
