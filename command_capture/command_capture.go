package command_capture

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"keyword-assistant/audio_capture"
	"keyword-assistant/logging"
	"keyword-assistant/vad"
)

// Mode selects how a command recording ends.
type Mode string

const (
	// ModeDuration stops once SilenceLimit has elapsed since the recording started.
	ModeDuration Mode = "duration"
	// ModeSilence stops once SilenceLimit has elapsed since speech was last heard.
	ModeSilence Mode = "silence"
)

const (
	DefaultPath         = "command.wav"
	DefaultSilenceLimit = 3 * time.Second
	DefaultMaxDuration  = 15 * time.Second
)

type Interface interface {
	// Record captures one command and returns the path it was saved to.
	Record(ctx context.Context) (string, error)
}

type commandImpl struct {
	recorder     audio_capture.Interface
	path         string
	chunkSize    int
	mode         Mode
	silenceLimit time.Duration
	maxDuration  time.Duration
	threshold    float64
	now          func() time.Time
	logger       *slog.Logger
}

type Config struct {
	Recorder         audio_capture.Interface
	Path             string
	ChunkSize        int
	Mode             Mode
	SilenceLimit     time.Duration
	MaxDuration      time.Duration
	SilenceThreshold float64
	Now              func() time.Time
	Logger           *slog.Logger
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Recorder == nil {
		return nil, fmt.Errorf("recorder is nil")
	}

	c := &commandImpl{
		recorder:     cfg.Recorder,
		path:         cfg.Path,
		chunkSize:    cfg.ChunkSize,
		mode:         cfg.Mode,
		silenceLimit: cfg.SilenceLimit,
		maxDuration:  cfg.MaxDuration,
		threshold:    cfg.SilenceThreshold,
		now:          cfg.Now,
		logger:       logging.NewComponentLogger(cfg.Logger, "command_capture"),
	}

	if c.path == "" {
		c.path = DefaultPath
	}

	if c.chunkSize <= 0 {
		c.chunkSize = audio_capture.DefaultChunkSize
	}

	switch c.mode {
	case "":
		c.mode = ModeDuration
	case ModeDuration, ModeSilence:
	default:
		return nil, fmt.Errorf("unknown command mode %q", c.mode)
	}

	if c.silenceLimit <= 0 {
		c.silenceLimit = DefaultSilenceLimit
	}

	if c.maxDuration <= 0 {
		c.maxDuration = DefaultMaxDuration
	}

	if c.now == nil {
		c.now = time.Now
	}

	return c, nil
}

func (c *commandImpl) Record(ctx context.Context) (string, error) {
	c.logger.Info("start command recording", slog.String("mode", string(c.mode)))

	err := c.recorder.Start(c.chunkSize)
	if err != nil {
		return "", err
	}

	var detector *vad.Detector
	if c.mode == ModeSilence {
		detector = vad.NewDetector(2*c.chunkSize, c.chunkSize, c.threshold)
	}

	start := c.now()
	lastSpeech := start

	for {
		if err = ctx.Err(); err != nil {
			_ = c.recorder.Stop()

			return "", err
		}

		chunk, err := c.recorder.ReadChunk()
		if err != nil {
			_ = c.recorder.Stop()

			return "", err
		}

		now := c.now()

		if detector == nil {
			if now.Sub(start) > c.silenceLimit {
				c.logger.Info("stopping command recording due to silence",
					slog.Duration("elapsed", now.Sub(start)))

				break
			}

			continue
		}

		if detector.IsSpeech(audio_capture.BytesToSamples(chunk)) {
			lastSpeech = now
		}

		if now.Sub(lastSpeech) > c.silenceLimit {
			c.logger.Info("stopping command recording due to silence",
				slog.Duration("quiet", now.Sub(lastSpeech)))

			break
		}

		if now.Sub(start) > c.maxDuration {
			c.logger.Info("stopping command recording at max duration",
				slog.Duration("elapsed", now.Sub(start)))

			break
		}
	}

	err = c.recorder.Save(c.path)
	if err != nil {
		_ = c.recorder.Stop()

		return "", err
	}

	err = c.recorder.Stop()
	if err != nil {
		return "", err
	}

	return c.path, nil
}
