package audio_capture

// Interface is a single microphone capture session.
type Interface interface {
	Start(chunkSize int) error
	ReadChunk() ([]byte, error)
	Save(path string) error
	Stop() error
	Release() error
	Frames() int
}

// Backend acquires the audio subsystem and opens input streams on it.
type Backend interface {
	Initialize() error
	Terminate() error
	// OpenStream opens the default input device; every Read fills in.
	OpenStream(in []int16, sampleRate float64, channels int) (Stream, error)
}

type Stream interface {
	Start() error
	Read() error
	Stop() error
	Close() error
}
