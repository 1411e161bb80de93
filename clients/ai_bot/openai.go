package ai_bot

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"keyword-assistant/errorsx"

	"github.com/sashabaranov/go-openai"
)

const (
	DefaultModel       = openai.GPT3Dot5TurboInstruct
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 150
)

type openAIImpl struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	// Temperature is nil for the default; a pointer to 0 asks for greedy sampling.
	Temperature *float32
	MaxTokens   int
}

// NewOpenAIClient generates responses with the hosted completions API.
// A zero MaxTokens selects the default.
func NewOpenAIClient(cfg *OpenAIConfig) (AIBotAPI, error) {
	if cfg == nil {
		return nil, errors.New("missing parameter: cfg")
	}

	if cfg.APIKey == "" {
		return nil, errors.New("missing parameter: cfg.APIKey")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	client := &openAIImpl{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		temperature: DefaultTemperature,
		maxTokens:   cfg.MaxTokens,
	}

	if client.model == "" {
		client.model = DefaultModel
	}

	if cfg.Temperature != nil {
		client.temperature = *cfg.Temperature
	}

	// the request omits a zero temperature, so send the smallest value above it
	if client.temperature == 0 {
		client.temperature = math.SmallestNonzeroFloat32
	}

	if client.maxTokens <= 0 {
		client.maxTokens = DefaultMaxTokens
	}

	return client, nil
}

func (client *openAIImpl) Respond(ctx context.Context, command string, input string) (string, error) {
	resp, err := client.client.CreateCompletion(ctx, openai.CompletionRequest{
		Model:       client.model,
		Prompt:      BuildPrompt(command, input),
		Temperature: client.temperature,
		MaxTokens:   client.maxTokens,
	})
	if err != nil {
		return "", errorsx.Wrap(fmt.Errorf("create completion: %w", err), errorsx.ReasonGeneration)
	}

	if len(resp.Choices) == 0 {
		return "", errorsx.New(errorsx.ReasonGeneration, "completion returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Text), nil
}
