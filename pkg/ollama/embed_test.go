package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestEmbed(t *testing.T) {
	var gotModel, gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaEmbedReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		gotModel, gotPrompt = req.Model, req.Prompt
		json.NewEncoder(w).Encode(ollamaEmbedResp{Embedding: []float64{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	c := NewEmbedClient(srv.URL, "nomic-embed-text")
	vec, err := c.Embed(context.Background(), "brake pads")
	if err != nil {
		t.Fatal(err)
	}
	if len(vec) != 3 || vec[1] != float32(0.2) {
		t.Fatalf("unexpected vector: %v", vec)
	}
	if gotModel != "nomic-embed-text" || gotPrompt != "brake pads" {
		t.Fatalf("unexpected request: model=%q prompt=%q", gotModel, gotPrompt)
	}
}

func TestEmbedTruncatesLongInput(t *testing.T) {
	var gotLen int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaEmbedReq
		json.NewDecoder(r.Body).Decode(&req)
		gotLen = len(req.Prompt)
		json.NewEncoder(w).Encode(ollamaEmbedResp{Embedding: []float64{1}})
	}))
	defer srv.Close()

	c := NewEmbedClient(srv.URL, "m")
	if _, err := c.Embed(context.Background(), strings.Repeat("x", MaxInputChars+500)); err != nil {
		t.Fatal(err)
	}
	if gotLen != MaxInputChars {
		t.Fatalf("expected truncation to %d, got %d", MaxInputChars, gotLen)
	}
}

func TestEmbedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewEmbedClient(srv.URL, "m")
	if _, err := c.Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected error on 500")
	}
}
