package ai_bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"keyword-assistant/errorsx"
)

type clientImpl struct {
	apiHost    string
	httpClient *http.Client
}

type Config struct {
	ApiHost    string
	HTTPClient *http.Client
}

func NewClient(cfg *Config) (AIBotAPI, error) {
	if cfg == nil {
		return nil, errors.New("missing parameter: cfg")
	}

	if cfg.ApiHost == "" {
		return nil, errors.New("missing parameter: cfg.ApiHost")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &clientImpl{
		apiHost:    strings.TrimRight(cfg.ApiHost, "/"),
		httpClient: httpClient,
	}, nil
}

func (client *clientImpl) Respond(ctx context.Context, command string, input string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, client.apiHost+"/get_prompt_response", nil)
	if err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonGeneration)
	}

	q := req.URL.Query()
	q.Add("prompt", BuildPrompt(command, input))
	req.URL.RawQuery = q.Encode()

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return "", errorsx.Wrap(fmt.Errorf("send prompt: %w", err), errorsx.ReasonGeneration)
	}

	defer resp.Body.Close()

	// get the response body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errorsx.Wrap(fmt.Errorf("read response: %w", err), errorsx.ReasonGeneration)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errorsx.New(errorsx.ReasonGeneration, "prompt endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return strings.TrimSpace(string(body)), nil
}
