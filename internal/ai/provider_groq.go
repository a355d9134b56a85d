package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

const (
	defaultGroqBaseURL = "https://api.groq.com/openai/v1"

	// Dual-model split: a small fast model for parsing and scoring, a
	// large one for authoring and refinement.
	defaultParserModel    = "llama-3.1-8b-instant"
	defaultGeneratorModel = "llama-3.3-70b-versatile"

	parserTemperature    = 0.3
	generatorTemperature = 0.7
	parserMaxTokens      = 1024
	generatorMaxTokens   = 2048
)

// GroqProvider implements Service against the Groq chat completions API
// (OpenAI-compatible, so any compatible endpoint works via WithBaseURL).
type GroqProvider struct {
	apiKey         string
	baseURL        string
	client         *http.Client
	parserModel    string
	generatorModel string
}

// GroqOption configures a GroqProvider.
type GroqOption func(*GroqProvider)

// WithBaseURL sets the base URL for the OpenAI-compatible API.
func WithBaseURL(url string) GroqOption {
	return func(p *GroqProvider) {
		p.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) GroqOption {
	return func(p *GroqProvider) {
		p.client = client
	}
}

// WithModels overrides the parser and generator model IDs.
func WithModels(parser, generator string) GroqOption {
	return func(p *GroqProvider) {
		if parser != "" {
			p.parserModel = parser
		}
		if generator != "" {
			p.generatorModel = generator
		}
	}
}

// NewGroqProvider creates a provider with the default dual-model setup.
func NewGroqProvider(apiKey string, opts ...GroqOption) *GroqProvider {
	p := &GroqProvider{
		apiKey:         apiKey,
		baseURL:        defaultGroqBaseURL,
		client:         http.DefaultClient,
		parserModel:    defaultParserModel,
		generatorModel: defaultGeneratorModel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// chatRequest is the request body for the chat completions API.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *GroqProvider) complete(ctx context.Context, model, system, user string, temperature float64, maxTokens int) (string, error) {
	messages := []chatMessage{}
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: user})

	req := chatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: &temperature,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("groq api error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return chatResp.Choices[0].Message.Content, nil
}

// Structure parses raw syllabus text into a course/unit record using the
// parser model.
func (p *GroqProvider) Structure(ctx context.Context, syllabusText string) (CourseStructure, error) {
	prompt := fmt.Sprintf(`You are a syllabus parser. Extract and structure the following syllabus into JSON format.

Extract:
1. Course name
2. Units/Modules with their topics
3. Learning objectives
4. Suggested weightage (if mentioned)

Syllabus:
%s

Return ONLY a valid JSON object with this structure:
{
    "course_name": "string",
    "units": [
        {
            "unit_number": "string",
            "unit_name": "string",
            "topics": ["topic1", "topic2"],
            "weightage": 25
        }
    ]
}`, syllabusText)

	content, err := p.complete(ctx, p.parserModel,
		"You are an expert syllabus analyzer. Always respond with valid JSON.",
		prompt, parserTemperature, parserMaxTokens)
	if err != nil {
		return CourseStructure{}, err
	}

	raw := ExtractJSON(content)
	if err := ValidateStructure(raw); err != nil {
		return CourseStructure{}, &ParseError{Call: "structure", Err: err}
	}
	var structure CourseStructure
	if err := json.Unmarshal([]byte(raw), &structure); err != nil {
		return CourseStructure{}, &ParseError{Call: "structure", Err: err}
	}
	return structure, nil
}

// Author generates question records for one Bloom level using the
// generator model.
func (p *GroqProvider) Author(ctx context.Context, req AuthorRequest) ([]QuestionRecord, error) {
	prompt := fmt.Sprintf(`Generate %d examination questions at the "%s" level of Bloom's Taxonomy.

Each question should be worth %d marks.

Topics to cover: %s

Syllabus context:
%s

Requirements:
1. Questions must be at the "%s" cognitive level
2. Cover different topics
3. Be clear, unambiguous, and exam-appropriate
4. Include enough context for students to answer

Bloom's Level Description:
- Remember: Recall facts, terms, basic concepts
- Understand: Explain ideas or concepts
- Apply: Use knowledge in new situations
- Analyze: Break down into parts, find relationships
- Evaluate: Justify decisions, critique
- Create: Design, construct, produce something new

Generate %d questions in JSON format:
[
    {
        "question": "Question text here",
        "marks": %d,
        "bloom_level": "%s",
        "topic": "Specific topic",
        "difficulty": "easy/medium/hard"
    }
]

Return ONLY valid JSON array.`,
		req.Count, req.Level, req.MarksPerQuestion, req.TopicHints, req.Context,
		req.Level, req.Count, req.MarksPerQuestion, req.Level)

	content, err := p.complete(ctx, p.generatorModel,
		"You are an expert question paper setter with deep knowledge of Bloom's Taxonomy.",
		prompt, generatorTemperature, generatorMaxTokens)
	if err != nil {
		return nil, err
	}

	raw := ExtractJSON(content)
	if err := ValidateQuestions(raw); err != nil {
		return nil, &ParseError{Call: "author", Err: err}
	}
	var questions []QuestionRecord
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return nil, &ParseError{Call: "author", Err: err}
	}
	return questions, nil
}

var scoreRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// Evaluate scores a question 0-10 with the parser model. A reply carrying
// no number at all is a parse error; out-of-range scores are clamped.
func (p *GroqProvider) Evaluate(ctx context.Context, q QuestionRecord) (float64, error) {
	prompt := fmt.Sprintf(`Evaluate the quality of this examination question on a scale of 0-10.

Question: %s
Marks: %d
Bloom's Level: %s
Topic: %s

Evaluation criteria:
1. Clarity and unambiguity (0-3)
2. Appropriate for Bloom's level (0-3)
3. Exam suitability (0-2)
4. Scope matches marks (0-2)

Return ONLY a number between 0 and 10.`, q.Text, q.Marks, q.Level, q.Topic)

	content, err := p.complete(ctx, p.parserModel,
		"You are an exam quality evaluator.", prompt, parserTemperature, parserMaxTokens)
	if err != nil {
		return 0, err
	}

	match := scoreRe.FindString(content)
	if match == "" {
		return 0, &ParseError{Call: "evaluate", Err: fmt.Errorf("no score in %q", strings.TrimSpace(content))}
	}
	score, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, &ParseError{Call: "evaluate", Err: err}
	}
	if score > 10 {
		score = 10
	}
	if score < 0 {
		score = 0
	}
	return score, nil
}

// Refine asks the generator model for an improved question text.
func (p *GroqProvider) Refine(ctx context.Context, questionText, feedback string) (string, error) {
	prompt := fmt.Sprintf(`Improve this examination question based on the feedback.

Original Question: %s

Feedback: %s

Provide an improved version of the question that addresses the feedback.
Return ONLY the improved question text, nothing else.`, questionText, feedback)

	content, err := p.complete(ctx, p.generatorModel, "", prompt, generatorTemperature, generatorMaxTokens)
	if err != nil {
		return "", err
	}
	improved := strings.TrimSpace(content)
	if improved == "" {
		return "", &ParseError{Call: "refine", Err: fmt.Errorf("empty reply")}
	}
	return improved, nil
}

// HealthCheck verifies the API is reachable with the configured key.
func (p *GroqProvider) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}
