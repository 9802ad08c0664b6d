package openai

import (
	"context"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"clipforge-ai/config"
)

const defaultModel = "gpt-4o-mini"

type Client struct {
	client *openai.Client
	model  string
}

func NewClient(baseUrl, apiKey, proxyAddr, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseUrl != "" {
		cfg.BaseURL = baseUrl
	}
	if model == "" {
		model = defaultModel
	}

	transport := &http.Transport{}
	if proxyAddr != "" {
		transport.Proxy = http.ProxyURL(config.Conf.App.ParsedProxy)
	}

	// No client timeout: clip analysis over a long transcript can run for
	// minutes on thinking models.
	cfg.HTTPClient = &http.Client{
		Transport: transport,
	}

	client := openai.NewClientWithConfig(cfg)
	return &Client{client: client, model: model}
}

// ChatCompletion sends a single-turn prompt and returns the raw text reply.
// The reply is free-form; see internal/candidate for the recovery parsing.
func (c *Client) ChatCompletion(prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", wrapProviderError(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
