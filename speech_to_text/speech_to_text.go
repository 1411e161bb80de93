package speech_to_text

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"keyword-assistant/errorsx"
	"keyword-assistant/logging"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/go-audio/wav"
	"github.com/spf13/afero"
)

// sttImpl transcribes with a local whisper.cpp model.
type sttImpl struct {
	model   whisper.Model
	fileSys afero.Fs
	logger  *slog.Logger
}

type Config struct {
	Model   whisper.Model
	FileSys afero.Fs
	Logger  *slog.Logger
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Model == nil {
		return nil, fmt.Errorf("model is nil")
	}

	if cfg.FileSys == nil {
		return nil, fmt.Errorf("fileSys is nil")
	}

	return &sttImpl{
		model:   cfg.Model,
		fileSys: cfg.FileSys,
		logger:  logging.NewComponentLogger(cfg.Logger, "whisper_stt"),
	}, nil
}

func (stt *sttImpl) Transcribe(ctx context.Context, path string) (string, error) {
	data, err := readSamples(stt.fileSys, path)
	if err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonTranscription)
	}

	// Create processing context
	whisperCtx, err := stt.model.NewContext()
	if err != nil {
		return "", errorsx.Wrap(fmt.Errorf("whisper context: %w", err), errorsx.ReasonTranscription)
	}

	var cb whisper.SegmentCallback

	err = whisperCtx.Process(data, cb)
	if err != nil {
		return "", errorsx.Wrap(fmt.Errorf("whisper process %s: %w", path, err), errorsx.ReasonTranscription)
	}

	texts, err := outputSegments(whisperCtx)
	if err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonTranscription)
	}

	text := joinSegments(texts)

	stt.logger.Debug("transcribed",
		slog.String("path", path),
		slog.Int("segments", len(texts)))

	return text, nil
}

// readSamples decodes a 16-bit WAV file into normalized float32 samples.
func readSamples(fileSys afero.Fs, path string) ([]float32, error) {
	f, err := fileSys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%s is not a valid wav file", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	data := make([]float32, len(buf.Data))
	for i, s := range buf.Data {
		data[i] = float32(s) / math.MaxInt16
	}

	return data, nil
}

func outputSegments(whisperCtx whisper.Context) ([]string, error) {
	texts := make([]string, 0)

	for {
		segment, err := whisperCtx.NextSegment()
		if err == io.EOF {
			return texts, nil
		} else if err != nil {
			return nil, err
		}

		texts = append(texts, segment.Text)
	}
}

// joinSegments drops annotation segments like "[BLANK_AUDIO]" or "(wind)"
// and repeated lines, then joins what is left.
func joinSegments(texts []string) string {
	seenText := make(map[string]bool)

	kept := make([]string, 0, len(texts))

	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if text[0] == '(' || text[0] == '[' ||
			text[len(text)-1] == ')' || text[len(text)-1] == ']' {
			continue
		}

		if seenText[text] {
			continue
		}

		seenText[text] = true

		kept = append(kept, text)
	}

	return strings.Join(kept, " ")
}
