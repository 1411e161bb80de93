package audio_capture

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"keyword-assistant/errorsx"
	"keyword-assistant/logging"

	"github.com/spf13/afero"
	"github.com/zenwerk/go-wave"
)

const (
	DefaultSampleRate = 16000
	DefaultChannels   = 1
	DefaultChunkSize  = 4096
)

type captureImpl struct {
	backend    Backend
	fileSys    afero.Fs
	sampleRate int
	channels   int
	logger     *slog.Logger

	stream   Stream
	in       []int16
	buffer   [][]byte
	frames   int
	started  bool
	released bool
}

type Config struct {
	Backend    Backend
	FileSys    afero.Fs
	SampleRate int
	Channels   int
	Logger     *slog.Logger
}

// New acquires the audio backend. The returned capture must be released
// with Release on every exit path.
func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Backend == nil {
		return nil, fmt.Errorf("backend is nil")
	}

	if cfg.FileSys == nil {
		return nil, fmt.Errorf("fileSys is nil")
	}

	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	channels := cfg.Channels
	if channels <= 0 {
		channels = DefaultChannels
	}

	if err := cfg.Backend.Initialize(); err != nil {
		return nil, errorsx.Wrap(fmt.Errorf("initialize audio: %w", err), errorsx.ReasonDevice)
	}

	return &captureImpl{
		backend:    cfg.Backend,
		fileSys:    cfg.FileSys,
		sampleRate: sampleRate,
		channels:   channels,
		logger:     logging.NewComponentLogger(cfg.Logger, "audio_capture"),
	}, nil
}

func (c *captureImpl) Start(chunkSize int) error {
	if c.released {
		return errorsx.New(errorsx.ReasonStreamState, "capture already released")
	}

	if c.stream != nil {
		return errorsx.New(errorsx.ReasonStreamState, "stream already started")
	}

	if c.started {
		return errorsx.New(errorsx.ReasonStreamState, "stream was stopped: open a new capture")
	}

	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	in := make([]int16, chunkSize*c.channels)

	stream, err := c.backend.OpenStream(in, float64(c.sampleRate), c.channels)
	if err != nil {
		return errorsx.Wrap(fmt.Errorf("open input stream: %w", err), errorsx.ReasonDevice)
	}

	err = stream.Start()
	if err != nil {
		_ = stream.Close()

		return errorsx.Wrap(fmt.Errorf("start input stream: %w", err), errorsx.ReasonDevice)
	}

	c.stream = stream
	c.in = in
	c.started = true

	c.logger.Debug("stream started",
		slog.Int("chunk_size", chunkSize),
		slog.Int("sample_rate", c.sampleRate))

	return nil
}

func (c *captureImpl) ReadChunk() ([]byte, error) {
	if c.stream == nil {
		return nil, errorsx.New(errorsx.ReasonStreamState, "stream is not started")
	}

	err := c.stream.Read()
	if errors.Is(err, ErrInputOverflowed) {
		c.logger.Debug("input overflowed, keeping partial chunk")
	} else if err != nil {
		return nil, errorsx.Wrap(fmt.Errorf("read input stream: %w", err), errorsx.ReasonDevice)
	}

	chunk := SamplesToBytes(c.in)

	c.buffer = append(c.buffer, chunk)
	c.frames += len(c.in) / c.channels

	return chunk, nil
}

func (c *captureImpl) Save(path string) error {
	if c.released {
		return errorsx.New(errorsx.ReasonStreamState, "capture already released")
	}

	if !c.started {
		return errorsx.New(errorsx.ReasonStreamState, "nothing recorded: stream was never started")
	}

	err := c.fileSys.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return errorsx.Wrap(fmt.Errorf("create %s: %w", filepath.Dir(path), err), errorsx.ReasonFileSystem)
	}

	waveFile, err := c.fileSys.Create(path)
	if err != nil {
		return errorsx.Wrap(fmt.Errorf("create %s: %w", path, err), errorsx.ReasonFileSystem)
	}

	param := wave.WriterParam{
		Out:           waveFile,
		Channel:       c.channels,
		SampleRate:    c.sampleRate,
		BitsPerSample: bytesPerSample * 8,
	}

	waveWriter, err := wave.NewWriter(param)
	if err != nil {
		_ = waveFile.Close()

		return errorsx.Wrap(fmt.Errorf("wave writer: %w", err), errorsx.ReasonFileSystem)
	}

	for _, chunk := range c.buffer {
		_, err = waveWriter.WriteSample16(BytesToSamples(chunk))
		if err != nil {
			_ = waveWriter.Close()

			return errorsx.Wrap(fmt.Errorf("write %s: %w", path, err), errorsx.ReasonFileSystem)
		}
	}

	// the writer flushes the header and closes the file
	err = waveWriter.Close()
	if err != nil {
		return errorsx.Wrap(fmt.Errorf("close %s: %w", path, err), errorsx.ReasonFileSystem)
	}

	c.logger.Info("audio saved",
		slog.String("path", path),
		slog.Int("frames", c.frames))

	return nil
}

func (c *captureImpl) Stop() error {
	var err error

	if c.stream != nil {
		stopErr := c.stream.Stop()
		closeErr := c.stream.Close()

		err = errors.Join(stopErr, closeErr)
		if err != nil {
			err = errorsx.Wrap(fmt.Errorf("stop input stream: %w", err), errorsx.ReasonDevice)
		}
	}

	c.stream = nil
	c.in = nil
	c.buffer = nil
	c.frames = 0

	return err
}

func (c *captureImpl) Release() error {
	if c.released {
		return nil
	}

	stopErr := c.Stop()

	c.released = true

	err := c.backend.Terminate()
	if err != nil {
		c.logger.Warn("error while freeing audio", slog.Any("error", err))

		return errorsx.Wrap(fmt.Errorf("terminate audio: %w", err), errorsx.ReasonDevice)
	}

	return stopErr
}

func (c *captureImpl) Frames() int {
	return c.frames
}
