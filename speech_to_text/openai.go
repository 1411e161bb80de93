package speech_to_text

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"keyword-assistant/errorsx"
	"keyword-assistant/logging"

	"github.com/sashabaranov/go-openai"
	"github.com/spf13/afero"
)

type openAIImpl struct {
	client  *openai.Client
	model   string
	fileSys afero.Fs
	logger  *slog.Logger
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	FileSys afero.Fs
	Logger  *slog.Logger
}

// NewOpenAI transcribes with the hosted Whisper API.
func NewOpenAI(cfg *OpenAIConfig) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("apiKey is empty")
	}

	if cfg.FileSys == nil {
		return nil, fmt.Errorf("fileSys is nil")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}

	return &openAIImpl{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   model,
		fileSys: cfg.FileSys,
		logger:  logging.NewComponentLogger(cfg.Logger, "openai_stt"),
	}, nil
}

func (o *openAIImpl) Transcribe(ctx context.Context, path string) (string, error) {
	audioFile, err := o.fileSys.Open(path)
	if err != nil {
		return "", errorsx.Wrap(fmt.Errorf("open %s: %w", path, err), errorsx.ReasonTranscription)
	}

	defer audioFile.Close()

	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.model,
		FilePath: path,
		Reader:   audioFile,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusUnauthorized {
			o.logger.Error("transcription rejected, check the API key", slog.String("path", path))
		}

		return "", errorsx.Wrap(fmt.Errorf("transcribe %s: %w", path, err), errorsx.ReasonTranscription)
	}

	return resp.Text, nil
}
