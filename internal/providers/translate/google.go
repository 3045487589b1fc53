package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const googleDefaultTimeout = 15 * time.Second

type GoogleOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// GoogleClient calls the Google Translate v2 REST API.
type GoogleClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type googleRequest struct {
	Q      []string `json:"q"`
	Target string   `json:"target"`
	Format string   `json:"format"`
}

type googleResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

func NewGoogleClient(opts GoogleOptions) (*GoogleClient, error) {
	if opts.APIKey == "" {
		return nil, errors.New("translate: api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://translation.googleapis.com"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: googleDefaultTimeout}
	}
	return &GoogleClient{apiKey: opts.APIKey, baseURL: baseURL, client: client}, nil
}

// Translate returns the first translation candidate for text in targetLang.
func (g *GoogleClient) Translate(ctx context.Context, text, targetLang string) (string, error) {
	payload := googleRequest{Q: []string{text}, Target: targetLang, Format: "text"}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrTranslation, err)
	}
	endpoint := fmt.Sprintf("%s/language/translate/v2?key=%s", g.baseURL, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrTranslation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslation, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrTranslation, resp.StatusCode)
	}

	var out googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrTranslation, err)
	}
	if len(out.Data.Translations) == 0 {
		return "", fmt.Errorf("%w: empty candidate list", ErrTranslation)
	}
	return out.Data.Translations[0].TranslatedText, nil
}
