package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	whisperDefaultTimeout = 30 * time.Second
	whisperDefaultModel   = "whisper-1"
)

type WhisperOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// WhisperClient calls an OpenAI-compatible speech-to-text endpoint.
type WhisperClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type whisperResponse struct {
	Text string `json:"text"`
}

func NewWhisperClient(opts WhisperOptions) (*WhisperClient, error) {
	if opts.APIKey == "" {
		return nil, errors.New("transcribe: api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = whisperDefaultModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: whisperDefaultTimeout}
	}
	return &WhisperClient{apiKey: opts.APIKey, model: model, baseURL: baseURL, client: client}, nil
}

// Transcribe posts the audio payload and returns the recognized text.
func (w *WhisperClient) Transcribe(ctx context.Context, audio []byte) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", "audio.webm")
	if err != nil {
		return "", fmt.Errorf("%w: build form: %v", ErrTranscription, err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("%w: write audio: %v", ErrTranscription, err)
	}
	if err := form.WriteField("model", w.model); err != nil {
		return "", fmt.Errorf("%w: write model field: %v", ErrTranscription, err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("%w: close form: %v", ErrTranscription, err)
	}

	endpoint := w.baseURL + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrTranscription, err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+w.apiKey)

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrTranscription, resp.StatusCode)
	}

	var out whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrTranscription, err)
	}
	return out.Text, nil
}
