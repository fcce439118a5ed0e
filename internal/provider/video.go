package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// PollPolicy bounds the long-running video job. The browser source polled
// forever; here the cap is explicit and tunable. MaxAttempts < 0 restores the
// unbounded behavior.
type PollPolicy struct {
	Interval    time.Duration
	MaxAttempts int
}

func (p PollPolicy) withDefaults() PollPolicy {
	if p.Interval <= 0 {
		p.Interval = 10 * time.Second
	}
	if p.MaxAttempts == 0 {
		p.MaxAttempts = 60
	}
	return p
}

// Budget is the worst-case wall clock the poll loop may consume, or a
// negative duration when the policy is unbounded. Callers that put a deadline
// around a whole video run should start from this, not from a request timeout.
func (p PollPolicy) Budget() time.Duration {
	p = p.withDefaults()
	if p.MaxAttempts < 0 {
		return -1
	}
	return p.Interval * time.Duration(p.MaxAttempts)
}

// VideoPhase tells the status callback where the job is in its lifecycle, so
// callers can track state without parsing the status text.
type VideoPhase int

const (
	VideoPhaseSubmitting VideoPhase = iota
	VideoPhaseGenerating
	VideoPhasePolling
	VideoPhaseFetching
	VideoPhaseDone
)

type videoSubmitRequest struct {
	Instances []videoInstance `json:"instances"`
}

type videoInstance struct {
	Prompt string `json:"prompt"`
}

type operationResponse struct {
	Name     string          `json:"name"`
	Done     bool            `json:"done"`
	Error    *operationError `json:"error,omitempty"`
	Response *videoResult    `json:"response,omitempty"`
}

type operationError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type videoResult struct {
	GenerateVideoResponse struct {
		GeneratedSamples []struct {
			Video struct {
				URI string `json:"uri"`
			} `json:"video"`
		} `json:"generatedSamples"`
	} `json:"generateVideoResponse"`
}

// GenerateVideo submits a job, polls the operation handle until it reports
// done, then fetches the result bytes. onStatus is invoked synchronously at
// each phase so the caller can surface progress without polling the gateway.
func (c *Client) GenerateVideo(ctx context.Context, prompt string, onStatus func(VideoPhase, string)) ([]byte, error) {
	if onStatus == nil {
		onStatus = func(VideoPhase, string) {}
	}

	onStatus(VideoPhaseSubmitting, "Warming up the video engine...")

	raw, err := c.post(ctx, fmt.Sprintf("%s/%s/models/%s:predictLongRunning", c.baseURL, c.apiVersion, defaultVideoModel), videoSubmitRequest{
		Instances: []videoInstance{{Prompt: prompt}},
	})
	if err != nil {
		return nil, err
	}

	var submitted operationResponse
	if err := json.Unmarshal(raw, &submitted); err != nil {
		return nil, fmt.Errorf("decode submit response: %w", err)
	}
	if submitted.Name == "" {
		return nil, &ProviderError{Message: "response contains no operation handle"}
	}

	onStatus(VideoPhaseGenerating, "Generating your video, this can take a few minutes...")

	uri, err := c.pollOperation(ctx, submitted.Name, onStatus)
	if err != nil {
		return nil, err
	}

	onStatus(VideoPhaseFetching, "Fetching the finished video...")

	data, err := c.get(ctx, uri)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, &ProviderError{Message: "video result is empty"}
	}

	onStatus(VideoPhaseDone, "Video ready!")
	return data, nil
}

func (c *Client) pollOperation(ctx context.Context, name string, onStatus func(VideoPhase, string)) (string, error) {
	for attempt := 1; c.poll.MaxAttempts < 0 || attempt <= c.poll.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.poll.Interval):
		}

		onStatus(VideoPhasePolling, fmt.Sprintf("Still rendering... (check %d)", attempt))

		raw, err := c.get(ctx, fmt.Sprintf("%s/%s/%s", c.baseURL, c.apiVersion, name))
		if err != nil {
			return "", err
		}

		var op operationResponse
		if err := json.Unmarshal(raw, &op); err != nil {
			return "", fmt.Errorf("decode operation: %w", err)
		}

		if op.Error != nil {
			return "", &ProviderError{Status: op.Error.Code, Message: op.Error.Message}
		}
		if !op.Done {
			continue
		}

		if op.Response == nil || len(op.Response.GenerateVideoResponse.GeneratedSamples) == 0 {
			return "", &ProviderError{Message: "operation finished without a video"}
		}

		uri := op.Response.GenerateVideoResponse.GeneratedSamples[0].Video.URI
		if uri == "" {
			return "", &ProviderError{Message: "operation finished without a video URI"}
		}

		c.logger.Info("video operation done", "operation", name, "attempts", attempt)
		return uri, nil
	}

	return "", &ProviderError{Message: fmt.Sprintf("video job still pending after %d checks", c.poll.MaxAttempts)}
}
