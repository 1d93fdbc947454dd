package llm

import (
	"context"
	"fmt"

	"github.com/go-deepseek/deepseek"
	"github.com/go-deepseek/deepseek/request"
)

// DeepSeek is the hosted-API backend.
type DeepSeek struct {
	client deepseek.Client
	model  string
}

func NewDeepSeek(apiKey, model string) (*DeepSeek, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("deepseek api key is required")
	}
	client, err := deepseek.NewClient(apiKey)
	if err != nil {
		return nil, fmt.Errorf("create deepseek client: %w", err)
	}
	if model == "" {
		model = deepseek.DEEPSEEK_CHAT_MODEL
	}
	return &DeepSeek{client: client, model: model}, nil
}

func (d *DeepSeek) Generate(ctx context.Context, req Request) (string, error) {
	messages := make([]*request.Message, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, &request.Message{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		messages = append(messages, &request.Message{Role: m.Role, Content: m.Content})
	}

	var temp *float32
	if req.Temperature > 0 {
		t := float32(req.Temperature)
		temp = &t
	}

	resp, err := d.client.CallChatCompletionsChat(ctx, &request.ChatCompletionsRequest{
		Model:       d.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: temp,
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("deepseek request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("deepseek returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (d *DeepSeek) Name() string { return ProviderDeepSeek }
