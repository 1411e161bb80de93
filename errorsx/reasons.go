package errorsx

// ReasonCode is a short machine-readable error reason.
type ReasonCode string

const (
	ReasonUnknown ReasonCode = "unknown"

	// ReasonDevice covers a missing, busy or vanished input device.
	ReasonDevice ReasonCode = "device"
	// ReasonStreamState marks a capture call made out of sequence.
	ReasonStreamState ReasonCode = "stream_state"
	ReasonModelLoad   ReasonCode = "model_load"
	// ReasonRecognition is a keyword decoder failing on live audio.
	ReasonRecognition ReasonCode = "recognition"

	ReasonTranscription ReasonCode = "transcription"
	ReasonGeneration    ReasonCode = "generation"

	ReasonFileSystem ReasonCode = "filesystem"
	ReasonConfig     ReasonCode = "config"
)
