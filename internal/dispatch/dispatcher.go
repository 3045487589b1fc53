package dispatch

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"linguachat/internal/domain"
	"linguachat/internal/providers/transcribe"
)

// MaxFileBytes is the absolute per-file upload cap. It applies to every
// plan, including otherwise-unlimited ones.
const MaxFileBytes = 10 * domain.MiB

// TranscriptPlaceholder is stored as the transcript when speech-to-text is
// unavailable; the audio message still goes out.
const TranscriptPlaceholder = "Transcription failed"

// BlobStore accepts byte payloads and hands out fetchable URLs.
type BlobStore interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
	URL(key string) string
}

// Upload is a user-supplied file attachment.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// SendRequest carries one user-composed message into the pipeline. Exactly
// one of Text, File, Audio is the payload; Text may accompany File as a
// caption but the file branch wins.
type SendRequest struct {
	Chat                 *domain.Chat
	SenderID             string
	Text                 string
	File                 *Upload
	Audio                []byte
	ParticipantLanguages []string
}

// Dispatcher validates, meters, enriches and persists outgoing messages.
type Dispatcher struct {
	ledger      QuotaLedger
	blobs       BlobStore
	transcriber transcribe.Transcriber
	translator  ContentTranslator
	messages    domain.MessageRepository
	logger      zerolog.Logger
	now         func() time.Time
}

func NewDispatcher(ledger QuotaLedger, blobs BlobStore, transcriber transcribe.Transcriber, translator ContentTranslator, messages domain.MessageRepository, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		ledger:      ledger,
		blobs:       blobs,
		transcriber: transcriber,
		translator:  translator,
		messages:    messages,
		logger:      logger,
		now:         time.Now,
	}
}

// Send runs the dispatch pipeline: validate, charge the message quota,
// process the single payload branch, translate text-bearing messages, then
// append exactly one record. Nothing before the append is visible as sent.
func (d *Dispatcher) Send(ctx context.Context, req SendRequest) (*domain.Message, error) {
	if req.SenderID == "" {
		return nil, domain.ErrUnauthorized
	}
	if req.Chat == nil {
		return nil, fmt.Errorf("dispatch: chat is required")
	}
	if strings.TrimSpace(req.Text) == "" && req.File == nil && len(req.Audio) == 0 {
		return nil, domain.ErrEmptyMessage
	}

	// A message accepted is the unit being metered, so this gate is hard.
	allowed, err := d.ledger.CheckAndIncrement(ctx, req.SenderID, domain.ResourceMessages)
	if err != nil {
		return nil, fmt.Errorf("dispatch: message quota check: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("messages: %w", domain.ErrQuotaExceeded)
	}

	msg := &domain.Message{
		ChatID:   req.Chat.ID,
		SenderID: req.SenderID,
	}

	var transcript string
	switch {
	case len(req.Audio) > 0:
		msg.Type = domain.MessageAudio
		transcript, err = d.processAudio(ctx, req, msg)
		if err != nil {
			return nil, err
		}
	case req.File != nil:
		if err := d.processFile(ctx, req, msg); err != nil {
			return nil, err
		}
	default:
		msg.Type = domain.MessageText
	}

	if msg.Type == domain.MessageText || msg.Type == domain.MessageAudio {
		source := req.Text
		if msg.Type == domain.MessageAudio {
			source = transcript
		}
		content, err := d.translator.Translate(ctx, source, req.Chat, req.ParticipantLanguages, req.SenderID)
		if err != nil {
			return nil, fmt.Errorf("dispatch: translate: %w", err)
		}
		msg.Content = content
	}

	stored, err := d.messages.Append(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("dispatch: append message: %w", err)
	}
	return stored, nil
}

// processAudio uploads the recording, charges its bytes, and transcribes.
// Transcription failure is soft: the message keeps a placeholder transcript.
func (d *Dispatcher) processAudio(ctx context.Context, req SendRequest, msg *domain.Message) (string, error) {
	key := fmt.Sprintf("chats/%s/audio_%d.webm", req.Chat.ID, d.now().UnixMilli())
	storedKey, err := d.blobs.Write(ctx, key, req.Audio)
	if err != nil {
		return "", fmt.Errorf("dispatch: upload audio: %w", err)
	}
	msg.FileURL = d.blobs.URL(storedKey)

	if err := d.ledger.IncrementFileStorage(ctx, req.SenderID, int64(len(req.Audio))); err != nil {
		d.logger.Error().Err(err).Str("chat_id", req.Chat.ID).Msg("audio storage charge failed")
	}

	transcript, err := d.transcriber.Transcribe(ctx, req.Audio)
	if err != nil {
		d.logger.Warn().Err(err).Str("chat_id", req.Chat.ID).Msg("transcription unavailable")
		transcript = TranscriptPlaceholder
	}
	msg.OriginalContent = transcript
	return transcript, nil
}

// processFile enforces the absolute size cap and the storage quota before
// any byte is uploaded, then uploads, charges, and classifies the message.
func (d *Dispatcher) processFile(ctx context.Context, req SendRequest, msg *domain.Message) error {
	size := int64(len(req.File.Data))
	if size > MaxFileBytes {
		return fmt.Errorf("%d bytes: %w", size, domain.ErrFileTooLarge)
	}
	ok, err := d.ledger.CheckFileStorageLimit(ctx, req.SenderID, size)
	if err != nil {
		return fmt.Errorf("dispatch: storage quota check: %w", err)
	}
	if !ok {
		return domain.ErrStorageExceeded
	}

	key := fmt.Sprintf("chats/%s/%d_%s", req.Chat.ID, d.now().UnixMilli(), path.Base(req.File.Name))
	storedKey, err := d.blobs.Write(ctx, key, req.File.Data)
	if err != nil {
		return fmt.Errorf("dispatch: upload file: %w", err)
	}
	msg.FileURL = d.blobs.URL(storedKey)

	if err := d.ledger.IncrementFileStorage(ctx, req.SenderID, size); err != nil {
		d.logger.Error().Err(err).Str("chat_id", req.Chat.ID).Msg("file storage charge failed")
	}

	if strings.HasPrefix(req.File.ContentType, "image/") {
		msg.Type = domain.MessageImage
	} else {
		msg.Type = domain.MessageFile
	}
	msg.Content = domain.TextContent(req.File.Name)
	return nil
}
