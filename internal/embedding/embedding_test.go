package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllama_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req ollamaEmbedRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "nomic-embed-text" {
			t.Errorf("model = %q", req.Model)
		}
		if req.Prompt != "Define entropy." {
			t.Errorf("prompt = %q", req.Prompt)
		}

		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{0.1, 0.2, 0.3}})
	}))
	defer server.Close()

	o := NewOllama(server.URL, "")
	vec, err := o.Embed(context.Background(), "Define entropy.")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.1 {
		t.Errorf("vec = %v", vec)
	}
}

func TestOllama_EmbedServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	o := NewOllama(server.URL, "")
	if _, err := o.Embed(context.Background(), "text"); err == nil {
		t.Fatal("Embed() should return error on server error")
	}
}

func TestOllama_EmbedBatchStopsOnError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls > 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{1}})
	}))
	defer server.Close()

	o := NewOllama(server.URL, "")
	if _, err := o.EmbedBatch(context.Background(), []string{"a", "b", "c"}); err == nil {
		t.Fatal("EmbedBatch() should propagate the failure")
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2 (stop at first failure)", calls)
	}
}

func TestOllama_Defaults(t *testing.T) {
	o := NewOllama("", "")
	if o.baseURL != defaultOllamaBaseURL {
		t.Errorf("baseURL = %q", o.baseURL)
	}
	if o.Model() != defaultOllamaModel {
		t.Errorf("model = %q", o.Model())
	}
}

func TestFake_Deterministic(t *testing.T) {
	f := NewFake()
	ctx := context.Background()

	a1, err := f.Embed(ctx, "same text")
	if err != nil {
		t.Fatal(err)
	}
	a2, _ := f.Embed(ctx, "same text")
	for i := range a1 {
		if a1[i] != a2[i] {
			t.Fatal("identical texts must embed identically")
		}
	}
	if len(f.Calls) != 2 {
		t.Errorf("calls = %d, want 2", len(f.Calls))
	}
}

func TestFake_DistinctTextsNearOrthogonal(t *testing.T) {
	f := NewFake()
	ctx := context.Background()

	a, _ := f.Embed(ctx, "Define entropy.")
	b, _ := f.Embed(ctx, "State Hooke's law.")

	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if math.Abs(cos) > 0.8 {
		t.Errorf("derived vectors too similar: cos = %f", cos)
	}
}

func TestFake_CannedOverridesDerived(t *testing.T) {
	f := NewFake()
	f.Canned["pinned"] = []float32{1, 0}

	vec, err := f.Embed(context.Background(), "pinned")
	if err != nil {
		t.Fatal(err)
	}
	if len(vec) != 2 || vec[0] != 1 {
		t.Errorf("vec = %v, want the canned vector", vec)
	}
}
