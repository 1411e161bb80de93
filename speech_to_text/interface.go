package speech_to_text

import "context"

// Interface turns a finished WAV file into plain text.
type Interface interface {
	Transcribe(ctx context.Context, path string) (string, error)
}
