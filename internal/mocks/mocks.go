// Package mocks provides mock implementations of core interfaces for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"clipforge-ai/internal/types"
)

// MockTranscriber is a mock implementation of types.Transcriber
type MockTranscriber struct {
	mock.Mock
}

func (m *MockTranscriber) Transcribe(ctx context.Context, audioURL string, language types.Language, apiKey string) (*types.TranscriptionResult, error) {
	args := m.Called(ctx, audioURL, language, apiKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TranscriptionResult), args.Error(1)
}

// MockChatCompleter is a mock implementation of types.ChatCompleter
type MockChatCompleter struct {
	mock.Mock
}

func (m *MockChatCompleter) ChatCompletion(prompt string) (string, error) {
	args := m.Called(prompt)
	return args.String(0), args.Error(1)
}
