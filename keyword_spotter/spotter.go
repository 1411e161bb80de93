package keyword_spotter

import (
	"fmt"
	"log/slog"
	"strings"

	"keyword-assistant/errorsx"
	"keyword-assistant/logging"
)

type spotterImpl struct {
	decoder Decoder
	keyword string
	logger  *slog.Logger
}

type Config struct {
	Decoder Decoder
	Keyword string
	Logger  *slog.Logger
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Decoder == nil {
		return nil, fmt.Errorf("decoder is nil")
	}

	if cfg.Keyword == "" {
		return nil, fmt.Errorf("keyword is empty")
	}

	return &spotterImpl{
		decoder: cfg.Decoder,
		keyword: cfg.Keyword,
		logger:  logging.NewComponentLogger(cfg.Logger, "keyword_spotter"),
	}, nil
}

func (s *spotterImpl) Process(chunk []byte) (bool, error) {
	step, err := s.decoder.Step(chunk)
	if err != nil {
		return false, errorsx.Wrap(fmt.Errorf("decode chunk: %w", err), errorsx.ReasonRecognition)
	}

	if step.Finalized {
		s.logger.Debug("utterance finalized", slog.String("text", step.Final))
	}

	return Match(s.keyword, step), nil
}

func (s *spotterImpl) Close() error {
	return s.decoder.Close()
}

// Match is an exact, case-sensitive substring test of keyword against the
// finalized text of step, falling back to its partial text.
func Match(keyword string, step Step) bool {
	if step.Finalized && strings.Contains(step.Final, keyword) {
		return true
	}

	return strings.Contains(step.Partial, keyword)
}
