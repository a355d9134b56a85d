package ai

import "context"

// MockService is a test double for the generation service. Zero-value
// fields fall back to sensible canned results.
type MockService struct {
	StructureResult CourseStructure
	StructureErr    error

	AuthorResult []QuestionRecord
	AuthorErr    error
	// AuthorFn, when set, overrides AuthorResult so tests can vary the
	// reply per request.
	AuthorFn func(req AuthorRequest) ([]QuestionRecord, error)

	EvaluateResult float64
	EvaluateErr    error

	RefineResult string
	RefineErr    error

	// AuthorCalls captures every authoring request for inspection.
	AuthorCalls []AuthorRequest
}

func (m *MockService) Structure(_ context.Context, _ string) (CourseStructure, error) {
	if m.StructureErr != nil {
		return CourseStructure{}, m.StructureErr
	}
	return m.StructureResult, nil
}

func (m *MockService) Author(_ context.Context, req AuthorRequest) ([]QuestionRecord, error) {
	m.AuthorCalls = append(m.AuthorCalls, req)
	if m.AuthorFn != nil {
		return m.AuthorFn(req)
	}
	if m.AuthorErr != nil {
		return nil, m.AuthorErr
	}
	return m.AuthorResult, nil
}

func (m *MockService) Evaluate(_ context.Context, _ QuestionRecord) (float64, error) {
	if m.EvaluateErr != nil {
		return 0, m.EvaluateErr
	}
	return m.EvaluateResult, nil
}

func (m *MockService) Refine(_ context.Context, questionText, _ string) (string, error) {
	if m.RefineErr != nil {
		return "", m.RefineErr
	}
	if m.RefineResult == "" {
		return questionText, nil
	}
	return m.RefineResult, nil
}
