package openai

import (
	"errors"
	"net/http"

	"github.com/sashabaranov/go-openai"

	apperrors "clipforge-ai/pkg/errors"
)

var ErrEmptyCompletion = errors.New("generation service returned no choices")

// wrapProviderError tags quota and auth rejections from the generation
// service so callers can surface them separately from a bad reply.
func wrapProviderError(err error) error {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.HTTPStatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return apperrors.Wrap(apperrors.CodeLLMQuotaExceeded, "Generation service quota exhausted or key rejected", err)
	}
	return err
}
