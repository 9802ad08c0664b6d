package types

import "context"

// Transcriber turns an audio source into word timestamps (or ready-made
// segments, for providers that only return sentence granularity). The apiKey
// is supplied per call so the caller can rotate credentials between attempts.
type Transcriber interface {
	Transcribe(ctx context.Context, audioURL string, language Language, apiKey string) (*TranscriptionResult, error)
}

// ChatCompleter is the generation/ranking collaborator. It returns free-form
// text that is expected, but not guaranteed, to contain JSON.
type ChatCompleter interface {
	ChatCompletion(prompt string) (string, error)
}
