package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOpenAIGenerator_Generate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  Eat the curry.  "}}]}`))
	}))
	defer srv.Close()

	gen := NewOpenAIGenerator("sk-test", "gpt-4o-mini", srv.URL+"/v1/", time.Second)
	defer gen.Close()
	text, err := gen.Generate(context.Background(), "hello", GenerationParams{MaxTokens: 100, Temperature: 0.5, TopP: 0.9})
	if err != nil {
		t.Fatal(err)
	}
	if text != "Eat the curry." {
		t.Errorf("text = %q", text)
	}
	if got["model"] != "gpt-4o-mini" || got["max_tokens"] != float64(100) || got["temperature"] != 0.5 {
		t.Errorf("request body = %v", got)
	}
}

func TestOpenAIGenerator_statusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	gen := NewOpenAIGenerator("", "m", srv.URL, time.Second)
	_, err := gen.Generate(context.Background(), "hello", DefaultParams)
	if !errors.Is(err, ErrGeneration) {
		t.Errorf("err = %v, want ErrGeneration", err)
	}
	var status *StatusError
	if !errors.As(err, &status) || !status.Temporary() {
		t.Errorf("expected temporary StatusError, got %v", err)
	}
}

func TestOpenAIGenerator_noChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	gen := NewOpenAIGenerator("", "m", srv.URL, time.Second)
	if _, err := gen.Generate(context.Background(), "hello", DefaultParams); !errors.Is(err, ErrGeneration) {
		t.Errorf("err = %v", err)
	}
}
