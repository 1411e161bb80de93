package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"keyword-assistant/audio_capture"
	"keyword-assistant/clients/ai_bot"
	"keyword-assistant/command_capture"
	"keyword-assistant/errorsx"
	"keyword-assistant/keyword_spotter"
	"keyword-assistant/logging"
	"keyword-assistant/speech_to_text"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const (
	DefaultOutputDir = "transcriptions"
	sampleFilename   = "sample.wav"
	commandFilename  = "command.wav"
)

// CommandSettings bound the follow-up command recording.
type CommandSettings struct {
	Mode             command_capture.Mode
	SilenceLimit     time.Duration
	MaxDuration      time.Duration
	SilenceThreshold float64
}

type assistantImpl struct {
	newRecorder func() (audio_capture.Interface, error)
	spotter     keyword_spotter.Interface
	transcriber speech_to_text.Interface
	aiBot       ai_bot.AIBotAPI
	fileSys     afero.Fs
	outputDir   string
	chunkSize   int
	command     CommandSettings
	now         func() time.Time
	baseLogger  *slog.Logger
	logger      *slog.Logger
	fsm         *stateMachine
}

type Config struct {
	// NewRecorder opens a fresh capture for each session.
	NewRecorder   func() (audio_capture.Interface, error)
	Spotter       keyword_spotter.Interface
	Transcriber   speech_to_text.Interface
	AIBot         ai_bot.AIBotAPI
	FileSys       afero.Fs
	OutputDir     string
	ChunkSize     int
	Command       CommandSettings
	Now           func() time.Time
	Logger        *slog.Logger
	OnStateChange func(StateChange)
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.NewRecorder == nil {
		return nil, fmt.Errorf("newRecorder is nil")
	}

	if cfg.Spotter == nil {
		return nil, fmt.Errorf("spotter is nil")
	}

	if cfg.Transcriber == nil {
		return nil, fmt.Errorf("transcriber is nil")
	}

	if cfg.AIBot == nil {
		return nil, fmt.Errorf("aiBot is nil")
	}

	if cfg.FileSys == nil {
		return nil, fmt.Errorf("fileSys is nil")
	}

	outputDir := cfg.OutputDir
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}

	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = audio_capture.DefaultChunkSize
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	a := &assistantImpl{
		newRecorder: cfg.NewRecorder,
		spotter:     cfg.Spotter,
		transcriber: cfg.Transcriber,
		aiBot:       cfg.AIBot,
		fileSys:     cfg.FileSys,
		outputDir:   outputDir,
		chunkSize:   chunkSize,
		command:     cfg.Command,
		now:         now,
		baseLogger:  cfg.Logger,
		logger:      logging.NewComponentLogger(cfg.Logger, "assistant"),
	}

	onStateChange := cfg.OnStateChange
	a.fsm = newStateMachine(now, func(change StateChange) {
		a.logger.Debug("state change",
			slog.String("from", change.From.String()),
			slog.String("to", change.To.String()),
			slog.String("reason", change.Reason))

		if onStateChange != nil {
			onStateChange(change)
		}
	})

	return a, nil
}

func (a *assistantImpl) State() State {
	return a.fsm.State()
}

func (a *assistantImpl) Run(ctx context.Context) (Result, error) {
	result := Result{
		RunID:       uuid.NewString(),
		SamplePath:  filepath.Join(a.outputDir, sampleFilename),
		CommandPath: filepath.Join(a.outputDir, commandFilename),
	}

	logger := a.logger.With(slog.String("run_id", result.RunID))

	err := a.run(ctx, logger, &result)
	if err != nil {
		if failErr := a.fsm.Transition(StateFailed, err.Error()); failErr != nil {
			logger.Debug("not marking run failed", slog.Any("error", failErr))
		}

		logger.Error("run failed",
			slog.String("state", a.fsm.State().String()),
			slog.String("reason", string(errorsx.Reason(err))),
			slog.Any("error", err))

		return result, err
	}

	return result, nil
}

func (a *assistantImpl) run(ctx context.Context, logger *slog.Logger, result *Result) error {
	err := a.fsm.Transition(StateListening, "start")
	if err != nil {
		return err
	}

	exists, err := afero.DirExists(a.fileSys, a.outputDir)
	if err == nil && !exists {
		err = a.fileSys.MkdirAll(a.outputDir, 0o755)
	}
	if err != nil {
		return errorsx.Wrap(fmt.Errorf("create %s: %w", a.outputDir, err), errorsx.ReasonFileSystem)
	}

	logger.Info("listening for keyword")

	err = a.listen(ctx, logger, result.SamplePath)
	if err != nil {
		return err
	}

	err = a.recordCommand(ctx, result.CommandPath)
	if err != nil {
		return err
	}

	err = a.fsm.Transition(StateTranscribing, "command recorded")
	if err != nil {
		return err
	}

	result.Command, err = a.transcriber.Transcribe(ctx, result.CommandPath)
	if err != nil {
		return fmt.Errorf("transcribe command: %w", err)
	}

	result.Context, err = a.transcriber.Transcribe(ctx, result.SamplePath)
	if err != nil {
		return fmt.Errorf("transcribe context: %w", err)
	}

	logger.Info("transcriptions obtained",
		slog.String("text", result.Context),
		slog.String("command", result.Command))

	err = a.fsm.Transition(StateGenerating, "transcriptions obtained")
	if err != nil {
		return err
	}

	result.Response, err = a.aiBot.Respond(ctx, result.Command, result.Context)
	if err != nil {
		return fmt.Errorf("generate response: %w", err)
	}

	logger.Info("response", slog.String("text", result.Response))

	return a.fsm.Transition(StateDone, "response obtained")
}

// listen feeds the main capture to the spotter until the keyword is heard,
// then saves it. The capture is released on every return path.
func (a *assistantImpl) listen(ctx context.Context, logger *slog.Logger, path string) (err error) {
	recorder, err := a.newRecorder()
	if err != nil {
		return fmt.Errorf("open main capture: %w", err)
	}

	defer func() {
		releaseErr := recorder.Release()
		if err == nil && releaseErr != nil {
			err = fmt.Errorf("release main capture: %w", releaseErr)
		}
	}()

	err = recorder.Start(a.chunkSize)
	if err != nil {
		return fmt.Errorf("start main capture: %w", err)
	}

	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		chunk, readErr := recorder.ReadChunk()
		if readErr != nil {
			return fmt.Errorf("read main capture: %w", readErr)
		}

		detected, spotErr := a.spotter.Process(chunk)
		if spotErr != nil {
			return fmt.Errorf("spot keyword: %w", spotErr)
		}

		if detected {
			break
		}
	}

	logger.Info("keyword detected, stopping recording",
		slog.Int("frames", recorder.Frames()))

	err = a.fsm.Transition(StateKeywordDetected, "keyword detected")
	if err != nil {
		return err
	}

	err = recorder.Save(path)
	if err != nil {
		return fmt.Errorf("save main capture: %w", err)
	}

	return recorder.Stop()
}

// recordCommand runs a bounded command recording on a new capture, released
// before returning.
func (a *assistantImpl) recordCommand(ctx context.Context, path string) (err error) {
	recorder, err := a.newRecorder()
	if err != nil {
		return fmt.Errorf("open command capture: %w", err)
	}

	defer func() {
		releaseErr := recorder.Release()
		if err == nil && releaseErr != nil {
			err = fmt.Errorf("release command capture: %w", releaseErr)
		}
	}()

	err = a.fsm.Transition(StateRecordingCommand, "main capture released")
	if err != nil {
		return err
	}

	capture, err := command_capture.New(&command_capture.Config{
		Recorder:         recorder,
		Path:             path,
		ChunkSize:        a.chunkSize,
		Mode:             a.command.Mode,
		SilenceLimit:     a.command.SilenceLimit,
		MaxDuration:      a.command.MaxDuration,
		SilenceThreshold: a.command.SilenceThreshold,
		Now:              a.now,
		Logger:           a.baseLogger,
	})
	if err != nil {
		return err
	}

	_, err = capture.Record(ctx)
	if err != nil {
		return fmt.Errorf("record command: %w", err)
	}

	return nil
}
