package upstream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI answers queries through the OpenAI chat-completions API or any
// compatible endpoint.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI creates an OpenAI-backed responder. The optional baseURL
// parameter allows overriding the API endpoint (pass "" for the default).
func NewOpenAI(apiKey, baseURL, model string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai responder requires an API key")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// Name implements Responder.
func (*OpenAI) Name() string { return "openai" }

// Respond implements Responder.
func (o *OpenAI) Respond(ctx context.Context, query string) (json.RawMessage, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(query),
		},
		Model: o.model,
	}

	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("openai completion returned no choices")
	}

	answer := Answer{
		Answer: completion.Choices[0].Message.Content,
		Model:  completion.Model,
	}
	payload, err := json.Marshal(answer)
	if err != nil {
		return nil, fmt.Errorf("marshal openai answer: %w", err)
	}
	return payload, nil
}
