package keyword_spotter

// Interface reports whether the configured phrase was heard.
type Interface interface {
	// Process feeds one chunk of 16-bit mono PCM. Once it returns true the
	// caller must stop feeding data; later results are undefined.
	Process(chunk []byte) (bool, error)
	Close() error
}

// Step is the outcome of feeding one chunk to a streaming decoder.
type Step struct {
	// Finalized is set when the chunk closed an utterance; Final holds its text.
	Finalized bool
	Final     string
	// Partial is the in-progress guess for the current utterance.
	Partial string
}

// Decoder is a stateful streaming recognizer: every Step advances its state.
type Decoder interface {
	Step(chunk []byte) (Step, error)
	Close() error
}
