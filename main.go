package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"keyword-assistant/assistant"
	"keyword-assistant/audio_capture"
	"keyword-assistant/clients/ai_bot"
	"keyword-assistant/command_capture"
	"keyword-assistant/config"
	"keyword-assistant/errorsx"
	"keyword-assistant/keyword_spotter"
	"keyword-assistant/logging"
	"keyword-assistant/speech_to_text"

	"github.com/dimiro1/banner"
	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
)

func main() {
	configFlag := flag.String("c", "", "config file (yaml, json or toml)")
	modelFlag := flag.String("m", "", "vosk model directory for keyword detection")
	keywordFlag := flag.String("k", "", "keyword that starts a command")

	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.Load(*configFlag, map[string]any{
		"model_path": *modelFlag,
		"keyword":    *keywordFlag,
	})
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	printBanner(os.Stdout, true, cfg.Keyword)

	logger := logging.InitLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := run(ctx, cfg, logger)
	if err != nil {
		logger.Error("assistant failed",
			slog.String("reason", string(errorsx.Reason(err))),
			slog.Any("error", err))
		stop()
		os.Exit(1)
	}

	fmt.Println("Text Transcription:", result.Context)
	fmt.Println("Command Transcription:", result.Command)
	fmt.Println(result.Response)
}

// printBanner quotes the keyword into a template string constant so template
// syntax in it is printed verbatim.
func printBanner(out io.Writer, color bool, keyword string) {
	tpl := "{{ .Title \"ASSISTANT\" \"\" 0 }}\nKeyword: {{ " + strconv.Quote(keyword) + " }}\n"
	banner.Init(out, true, color, bytes.NewBufferString(tpl))
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) (assistant.Result, error) {
	fileSys := afero.NewOsFs()

	decoder, err := keyword_spotter.NewVoskDecoder(fileSys, cfg.ModelPath, float64(cfg.Audio.SampleRate))
	if err != nil {
		return assistant.Result{}, err
	}

	spotter, err := keyword_spotter.New(&keyword_spotter.Config{
		Decoder: decoder,
		Keyword: cfg.Keyword,
		Logger:  logger,
	})
	if err != nil {
		_ = decoder.Close()
		return assistant.Result{}, err
	}
	defer spotter.Close()

	var transcriber speech_to_text.Interface

	switch cfg.Transcriber.Provider {
	case config.ProviderWhisper:
		model, err := whisper.New(cfg.Transcriber.WhisperModelPath)
		if err != nil {
			return assistant.Result{}, errorsx.Wrap(fmt.Errorf("load whisper model: %w", err), errorsx.ReasonModelLoad)
		}
		defer model.Close()

		transcriber, err = speech_to_text.New(&speech_to_text.Config{
			Model:   model,
			FileSys: fileSys,
			Logger:  logger,
		})
		if err != nil {
			return assistant.Result{}, err
		}
	default:
		transcriber, err = speech_to_text.NewOpenAI(&speech_to_text.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.Transcriber.Model,
			BaseURL: cfg.Transcriber.BaseURL,
			FileSys: fileSys,
			Logger:  logger,
		})
		if err != nil {
			return assistant.Result{}, err
		}
	}

	var bot ai_bot.AIBotAPI

	switch cfg.Generator.Provider {
	case config.ProviderHTTP:
		bot, err = ai_bot.NewClient(&ai_bot.Config{
			ApiHost: cfg.Generator.APIHost,
		})
	default:
		bot, err = ai_bot.NewOpenAIClient(&ai_bot.OpenAIConfig{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.Generator.BaseURL,
			Model:       cfg.Generator.Model,
			Temperature: &cfg.Generator.Temperature,
			MaxTokens:   cfg.Generator.MaxTokens,
		})
	}
	if err != nil {
		return assistant.Result{}, err
	}

	app, err := assistant.New(&assistant.Config{
		NewRecorder: func() (audio_capture.Interface, error) {
			return audio_capture.New(&audio_capture.Config{
				Backend:    audio_capture.NewPortAudioBackend(),
				FileSys:    fileSys,
				SampleRate: cfg.Audio.SampleRate,
				Channels:   cfg.Audio.Channels,
				Logger:     logger,
			})
		},
		Spotter:     spotter,
		Transcriber: transcriber,
		AIBot:       bot,
		FileSys:     fileSys,
		OutputDir:   cfg.Output.Dir,
		ChunkSize:   cfg.Audio.ChunkSize,
		Command: assistant.CommandSettings{
			Mode:             command_capture.Mode(cfg.Command.Mode),
			SilenceLimit:     cfg.Command.SilenceLimit,
			MaxDuration:      cfg.Command.MaxDuration,
			SilenceThreshold: cfg.Command.SilenceThreshold,
		},
		Now:    time.Now,
		Logger: logger,
	})
	if err != nil {
		return assistant.Result{}, err
	}

	return app.Run(ctx)
}
