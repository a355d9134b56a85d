package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paperforge/paperforge/internal/bloom"
)

// chatServer returns an httptest server replying to every chat completion
// with content, and records each decoded request.
func chatServer(t *testing.T, content string, requests *[]chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}

		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if requests != nil {
			*requests = append(*requests, req)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		})
	}))
}

func TestGroqProvider_Structure(t *testing.T) {
	reply := "Here is the structure:\n```json\n" + `{
		"course_name": "Physics 101",
		"units": [
			{"unit_number": 1, "unit_name": "Mechanics", "topics": ["Kinematics", "Dynamics"], "weightage": 40},
			{"unit_number": "2", "unit_name": "Thermodynamics", "topics": ["Entropy"]}
		]
	}` + "\n```"

	var requests []chatRequest
	server := chatServer(t, reply, &requests)
	defer server.Close()

	provider := NewGroqProvider("test-key", WithBaseURL(server.URL))
	structure, err := provider.Structure(context.Background(), "some syllabus text")
	if err != nil {
		t.Fatalf("Structure() error = %v", err)
	}

	if structure.CourseName != "Physics 101" {
		t.Errorf("course name = %q, want %q", structure.CourseName, "Physics 101")
	}
	if len(structure.Units) != 2 {
		t.Fatalf("units = %d, want 2", len(structure.Units))
	}
	if structure.Units[0].Number != "1" || structure.Units[1].Number != "2" {
		t.Errorf("unit numbers = %q, %q; numeric and string forms should both decode to strings",
			structure.Units[0].Number, structure.Units[1].Number)
	}
	if structure.Units[0].Weightage != 40 {
		t.Errorf("weightage = %v, want 40", structure.Units[0].Weightage)
	}

	if len(requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(requests))
	}
	req := requests[0]
	if req.Model != defaultParserModel {
		t.Errorf("structuring should use the parser model, got %q", req.Model)
	}
	if req.Temperature == nil || *req.Temperature != parserTemperature {
		t.Errorf("temperature = %v, want %v", req.Temperature, parserTemperature)
	}
}

func TestGroqProvider_Structure_BadJSONIsParseError(t *testing.T) {
	server := chatServer(t, "I could not parse that syllabus, sorry.", nil)
	defer server.Close()

	provider := NewGroqProvider("test-key", WithBaseURL(server.URL))
	_, err := provider.Structure(context.Background(), "text")

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if parseErr.Call != "structure" {
		t.Errorf("Call = %q, want structure", parseErr.Call)
	}
}

func TestGroqProvider_Author(t *testing.T) {
	reply := `[
		{"question": "Calculate the final velocity of a 2 kg mass after 5 s of 3 m/s^2 acceleration.", "marks": 5, "bloom_level": "apply", "topic": "Kinematics", "difficulty": "medium"},
		{"question": "Use the work-energy theorem to find the braking distance.", "marks": 5, "bloom_level": "apply", "topic": "Dynamics", "difficulty": "hard"}
	]`

	var requests []chatRequest
	server := chatServer(t, reply, &requests)
	defer server.Close()

	provider := NewGroqProvider("test-key", WithBaseURL(server.URL))
	questions, err := provider.Author(context.Background(), AuthorRequest{
		Level:            bloom.Apply,
		Count:            2,
		MarksPerQuestion: 5,
		TopicHints:       "Kinematics, Dynamics",
		Context:          "unit context",
	})
	if err != nil {
		t.Fatalf("Author() error = %v", err)
	}

	if len(questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(questions))
	}
	if questions[0].Marks != 5 || questions[0].Level != "apply" {
		t.Errorf("first question = %+v", questions[0])
	}

	req := requests[0]
	if req.Model != defaultGeneratorModel {
		t.Errorf("authoring should use the generator model, got %q", req.Model)
	}
	prompt := req.Messages[len(req.Messages)-1].Content
	for _, want := range []string{`"apply" level`, "worth 5 marks", "Kinematics, Dynamics", "Generate 2"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGroqProvider_Author_SchemaRejectsMissingMarks(t *testing.T) {
	server := chatServer(t, `[{"question": "Define inertia."}]`, nil)
	defer server.Close()

	provider := NewGroqProvider("test-key", WithBaseURL(server.URL))
	_, err := provider.Author(context.Background(), AuthorRequest{Level: bloom.Remember, Count: 1, MarksPerQuestion: 2})

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *ParseError for missing marks", err)
	}
}

func TestGroqProvider_Evaluate(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		want  float64
	}{
		{"bare number", "8.5", 8.5},
		{"number in prose", "I would rate this question 7 out of 10.", 7},
		{"clamped high", "15", 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := chatServer(t, tc.reply, nil)
			defer server.Close()

			provider := NewGroqProvider("test-key", WithBaseURL(server.URL))
			score, err := provider.Evaluate(context.Background(), QuestionRecord{Text: "q", Marks: 5})
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if score != tc.want {
				t.Errorf("score = %v, want %v", score, tc.want)
			}
		})
	}
}

func TestGroqProvider_Evaluate_NoNumberIsParseError(t *testing.T) {
	server := chatServer(t, "This question looks fine to me.", nil)
	defer server.Close()

	provider := NewGroqProvider("test-key", WithBaseURL(server.URL))
	_, err := provider.Evaluate(context.Background(), QuestionRecord{Text: "q"})

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
}

func TestGroqProvider_Refine(t *testing.T) {
	server := chatServer(t, "  Explain, with a worked example, how entropy changes in free expansion.  ", nil)
	defer server.Close()

	provider := NewGroqProvider("test-key", WithBaseURL(server.URL))
	improved, err := provider.Refine(context.Background(), "Explain entropy.", "too vague for 8 marks")
	if err != nil {
		t.Fatalf("Refine() error = %v", err)
	}
	if strings.HasPrefix(improved, " ") || improved == "" {
		t.Errorf("improved text not trimmed: %q", improved)
	}
}

func TestGroqProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer server.Close()

	provider := NewGroqProvider("test-key", WithBaseURL(server.URL))
	_, err := provider.Structure(context.Background(), "text")
	if err == nil {
		t.Fatal("Structure() should return error on API error")
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		t.Error("transport errors must not be parse errors, they are retryable")
	}
}

func TestGroqProvider_HealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
	}{
		{"healthy", http.StatusOK, false},
		{"unhealthy", http.StatusUnauthorized, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/models" {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			provider := NewGroqProvider("test-key", WithBaseURL(server.URL))
			err := provider.HealthCheck(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("HealthCheck() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
