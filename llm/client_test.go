package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestCompleteFallsBackToNextModel(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("authorization header = %q", got)
		}
		var req completionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
			return
		}
		if req.Model == "broken" {
			http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(completionResponse{
			Model:   req.Model,
			Choices: []completionChoice{{Message: Message{Role: "assistant", Content: " photosynthesis uses light "}}},
		})
	}))
	defer srv.Close()

	c := New(Config{APIKey: "secret", BaseURL: srv.URL + "/", Models: []string{"broken", "good"}})
	reply, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "what is photosynthesis"}})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if reply.Model != "good" {
		t.Fatalf("model = %q, want good", reply.Model)
	}
	if reply.Content != "photosynthesis uses light" {
		t.Fatalf("content = %q", reply.Content)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("calls = %d, want 2", n)
	}
}

func TestCompleteReportsEveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(completionResponse{})
	}))
	defer srv.Close()

	c := New(Config{APIKey: "k", BaseURL: srv.URL, Models: []string{"a", "b"}})
	if _, err := c.Complete(context.Background(), nil); err == nil {
		t.Fatal("expected error when no model returns choices")
	}
}

func TestCompleteWithoutKey(t *testing.T) {
	c := New(Config{})
	if c.Enabled() {
		t.Fatal("client without key reports enabled")
	}
	if _, err := c.Complete(context.Background(), nil); err != ErrNoAPIKey {
		t.Fatalf("err = %v, want ErrNoAPIKey", err)
	}
}
