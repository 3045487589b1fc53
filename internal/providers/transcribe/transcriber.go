package transcribe

import (
	"context"
	"errors"
)

// ErrTranscription is the generic failure returned when audio cannot be
// converted to text. The dispatcher still persists the audio message.
var ErrTranscription = errors.New("transcription failed")

// Transcriber converts an audio payload to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}
