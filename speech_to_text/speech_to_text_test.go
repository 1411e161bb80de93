package speech_to_text

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"keyword-assistant/errorsx"

	"github.com/spf13/afero"
)

func TestJoinSegments(t *testing.T) {
	got := joinSegments([]string{
		" [BLANK_AUDIO]",
		" summarize this",
		"(keyboard clicking)",
		" summarize this",
		"",
		" for me please",
	})
	if got != "summarize this for me please" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
	if _, err := New(&Config{FileSys: afero.NewMemMapFs()}); err == nil {
		t.Fatalf("expected error for nil model")
	}
	if _, err := NewOpenAI(&OpenAIConfig{FileSys: afero.NewMemMapFs()}); err == nil {
		t.Fatalf("expected error for empty api key")
	}
}

func TestReadSamplesRejectsInvalidFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "transcriptions/sample.wav", []byte("not a wav"), 0o644)

	if _, err := readSamples(fs, "transcriptions/sample.wav"); err == nil {
		t.Fatalf("expected error for invalid wav")
	}
	if _, err := readSamples(fs, "missing.wav"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func newOpenAIServer(t *testing.T, handler http.HandlerFunc) (Interface, afero.Fs) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "transcriptions/command.wav", []byte("RIFF....WAVE"), 0o644)

	stt, err := NewOpenAI(&OpenAIConfig{
		APIKey:  "sk-test",
		BaseURL: server.URL + "/v1",
		FileSys: fs,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return stt, fs
}

func TestOpenAITranscribe(t *testing.T) {
	stt, _ := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.FormValue("model") != "whisper-1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, header, err := r.FormFile("file")
		if err != nil || !strings.HasSuffix(header.Filename, "command.wav") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"text":"summarize the meeting"}`)
	})

	text, err := stt.Transcribe(context.Background(), "transcriptions/command.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "summarize the meeting" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestOpenAITranscribeErrors(t *testing.T) {
	t.Run("authentication failure", func(t *testing.T) {
		stt, _ := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`)
		})

		_, err := stt.Transcribe(context.Background(), "transcriptions/command.wav")
		if !errorsx.HasReason(err, errorsx.ReasonTranscription) {
			t.Fatalf("expected transcription error, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		stt, _ := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("request should not be sent")
		})

		_, err := stt.Transcribe(context.Background(), "transcriptions/missing.wav")
		if !errorsx.HasReason(err, errorsx.ReasonTranscription) {
			t.Fatalf("expected transcription error, got %v", err)
		}
	})
}
