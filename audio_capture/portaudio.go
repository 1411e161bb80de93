package audio_capture

import (
	"errors"

	"github.com/gordonklaus/portaudio"
)

// ErrInputOverflowed is returned by a Stream when the device dropped input
// because it was not read fast enough. The read buffer is still valid.
var ErrInputOverflowed = errors.New("input overflowed")

type portaudioBackend struct{}

func NewPortAudioBackend() Backend {
	return portaudioBackend{}
}

func (portaudioBackend) Initialize() error {
	return portaudio.Initialize()
}

func (portaudioBackend) Terminate() error {
	return portaudio.Terminate()
}

func (portaudioBackend) OpenStream(in []int16, sampleRate float64, channels int) (Stream, error) {
	stream, err := portaudio.OpenDefaultStream(channels, 0, sampleRate, len(in)/channels, in)
	if err != nil {
		return nil, err
	}

	return &portaudioStream{Stream: stream}, nil
}

type portaudioStream struct {
	*portaudio.Stream
}

func (s *portaudioStream) Read() error {
	err := s.Stream.Read()
	if err == portaudio.InputOverflowed {
		return ErrInputOverflowed
	}

	return err
}
