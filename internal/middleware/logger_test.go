package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerIncludesLocaleAndCountry(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler = Logger(logger)(handler)
	handler = I18N("en", nil)(handler)
	handler = RequestID(handler)

	req := httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)
	req.Header.Set("X-Locale", "fr-CA")
	req.Header.Set("X-Country-Code", "ca")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var line struct {
		Method    string `json:"method"`
		Path      string `json:"path"`
		Status    int    `json:"status"`
		RequestID string `json:"request_id"`
		Locale    string `json:"locale"`
		Country   string `json:"country"`
	}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if line.Method != http.MethodGet || line.Path != "/v1/healthz" || line.Status != http.StatusTeapot {
		t.Fatalf("log line = %+v", line)
	}
	if line.RequestID == "" {
		t.Fatal("request_id missing from log line")
	}
	if line.Locale != "fr" {
		t.Fatalf("locale = %q, want fr", line.Locale)
	}
	if line.Country != "CA" {
		t.Fatalf("country = %q, want CA", line.Country)
	}
}

func TestLoggerOmitsCountryWhenUnresolved(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler = Logger(logger)(handler)
	handler = I18N("en", nil)(handler)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if _, ok := line["country"]; ok {
		t.Fatal("country logged for a request with no resolution")
	}
	if line["locale"] != "en" {
		t.Fatalf("locale = %v, want en", line["locale"])
	}
}
