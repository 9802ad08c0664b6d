// Package asr calls an OpenAI-compatible speech recognition endpoint and
// normalizes its response into word-level timestamps.
package asr

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"clipforge-ai/internal/types"
)

const defaultBaseUrl = "https://api.openai.com/v1"

// Client talks to the transcription endpoint. The API key travels per call
// so the caller can rotate credentials between attempts.
type Client struct {
	http    *resty.Client
	baseUrl string
}

func NewClient(baseUrl, proxyAddr string) *Client {
	if baseUrl == "" {
		baseUrl = defaultBaseUrl
	}

	httpClient := resty.New().
		SetRetryCount(0)
	if proxyAddr != "" {
		httpClient.SetProxy(proxyAddr)
	}

	return &Client{
		http:    httpClient,
		baseUrl: baseUrl,
	}
}

// StatusError is an HTTP-level transcription failure. The status code lets
// the caller distinguish quota/auth failures, which exhaust the key, from
// everything else, which must not.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("transcription request failed with status %d: %s", e.StatusCode, e.Body)
}

// IsQuotaOrAuth reports whether err is an HTTP failure that should exhaust
// the key used for the call.
func IsQuotaOrAuth(err error) bool {
	se, ok := err.(*StatusError)
	if !ok {
		return false
	}
	switch se.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return true
	}
	return false
}

type transcriptionRequest struct {
	Url                    string   `json:"url"`
	Model                  string   `json:"model"`
	Language               string   `json:"language,omitempty"`
	ResponseFormat         string   `json:"response_format"`
	TimestampGranularities []string `json:"timestamp_granularities"`
}

type transcriptionResponse struct {
	Language string `json:"language"`
	Words    []struct {
		Word  string  `json:"word"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"words"`
	Segments []struct {
		Text  string  `json:"text"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"segments"`
}

// Transcribe submits the audio at audioURL and returns word timestamps, or
// provider segments when the service skips word granularity.
func (c *Client) Transcribe(ctx context.Context, audioURL string, language types.Language, apiKey string) (*types.TranscriptionResult, error) {
	req := transcriptionRequest{
		Url:                    audioURL,
		Model:                  "whisper-1",
		Language:               string(language),
		ResponseFormat:         "verbose_json",
		TimestampGranularities: []string{"word", "segment"},
	}

	var parsed transcriptionResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(apiKey).
		SetBody(req).
		SetResult(&parsed).
		Post(c.baseUrl + "/audio/transcriptions")
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	if resp.IsError() {
		return nil, &StatusError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	result := &types.TranscriptionResult{
		Language: types.Language(parsed.Language),
	}
	for _, w := range parsed.Words {
		result.Words = append(result.Words, types.WordTimestamp{
			Text:  w.Word,
			Start: w.Start,
			End:   w.End,
		})
	}
	for _, seg := range parsed.Segments {
		result.Segments = append(result.Segments, types.TranscriptSegment{
			Text:     seg.Text,
			Start:    seg.Start,
			End:      seg.End,
			Language: result.Language,
		})
	}
	return result, nil
}
