package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/paperforge/paperforge/internal/ai"
	"github.com/paperforge/paperforge/internal/bloom"
	"github.com/paperforge/paperforge/internal/embedding"
	"github.com/paperforge/paperforge/internal/generator"
	"github.com/paperforge/paperforge/internal/novelty"
	"github.com/paperforge/paperforge/internal/paper"
	"github.com/paperforge/paperforge/internal/pastpapers"
	"github.com/paperforge/paperforge/internal/patterns"
	"github.com/paperforge/paperforge/internal/platform/cache"
	"github.com/paperforge/paperforge/internal/platform/config"
	"github.com/paperforge/paperforge/internal/platform/database"
	"github.com/paperforge/paperforge/internal/store"
	"github.com/paperforge/paperforge/internal/syllabus"
)

// maxSetCount caps how many paper sets one request may ask for.
const maxSetCount = 5

// app wires the pipeline components behind the HTTP surface.
type app struct {
	profile   config.Profile
	orch      *generator.Orchestrator
	embedder  embedding.Service // nil when embeddings are disabled
	knowledge store.Knowledge
	past      []pastpapers.Paper
	db        *database.DB // nil without Postgres
	cache     *cache.Cache // nil without Redis
}

func (a *app) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", a.handleHealthz)
	mux.HandleFunc("GET /readyz", a.handleReadyz)
	mux.HandleFunc("POST /api/papers/generate", a.handleGenerate)
	mux.HandleFunc("GET /api/papers/generate/ws", a.handleGenerateWS)
	return mux
}

func (a *app) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *app) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if a.db != nil {
		if err := a.db.HealthCheck(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "database unavailable"})
			return
		}
	}
	if a.cache != nil {
		if err := a.cache.HealthCheck(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "cache unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type generateRequest struct {
	SyllabusText string `json:"syllabus_text"`
	TotalMarks   int    `json:"total_marks,omitempty"`
	SetCount     int    `json:"set_count,omitempty"`
	// Distribution overrides the profile's Bloom percentages, keyed by
	// level name.
	Distribution map[string]float64 `json:"distribution,omitempty"`
}

type setResult struct {
	Paper           paper.Paper  `json:"paper"`
	Validation      paper.Report `json:"validation"`
	AverageQuality  float64      `json:"average_quality"`
	DiversityScore  float64      `json:"diversity_score"`
	NoveltyDropped  int          `json:"novelty_dropped"`
	NoveltyWarnings []string     `json:"novelty_warnings,omitempty"`
}

type generateResponse struct {
	Course          ai.CourseStructure `json:"course"`
	Topics          []syllabus.Topic   `json:"topics"`
	Sets            []setResult        `json:"sets"`
	Recommendations []string           `json:"recommendations"`
}

func (req *generateRequest) normalize(profile config.Profile) (bloom.Distribution, error) {
	req.SyllabusText = strings.TrimSpace(req.SyllabusText)
	if req.SyllabusText == "" {
		return nil, fmt.Errorf("syllabus_text is required")
	}
	if req.TotalMarks <= 0 {
		req.TotalMarks = profile.TotalMarks
	}
	if req.SetCount <= 0 {
		req.SetCount = 1
	}
	if req.SetCount > maxSetCount {
		return nil, fmt.Errorf("set_count %d exceeds the maximum of %d", req.SetCount, maxSetCount)
	}

	if len(req.Distribution) == 0 {
		return profile.Distribution, nil
	}
	dist := make(bloom.Distribution, len(req.Distribution))
	for name, pct := range req.Distribution {
		level, err := bloom.ParseLevel(name)
		if err != nil {
			return nil, fmt.Errorf("distribution: %w", err)
		}
		if pct < 0 {
			return nil, fmt.Errorf("distribution[%s] is negative", name)
		}
		dist[level] = pct
	}
	return dist, nil
}

func (a *app) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	dist, err := req.normalize(a.profile)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp := a.generate(r.Context(), req, dist, nil)
	writeJSON(w, http.StatusOK, resp)
}

// progressFunc receives pipeline stage events; nil skips reporting.
type progressFunc func(stage, detail string)

// generate runs the full pipeline: score topics, structure the syllabus,
// then per set author, filter, evaluate and assemble. Each set owns its
// own novelty state; sets run sequentially so the question counter and
// accepted-question history have a single writer.
func (a *app) generate(ctx context.Context, req generateRequest, dist bloom.Distribution, progress progressFunc) generateResponse {
	report := func(stage, detail string) {
		if progress != nil {
			progress(stage, detail)
		}
	}

	analyzer := patterns.NewAnalyzer()
	analysis := analyzer.Analyze(req.SyllabusText, a.past)

	report("scoring", "ranking syllabus topics")
	scorer := syllabus.NewScorer()
	scorer.SyllabusWeight = a.profile.SyllabusWeight
	scorer.FrequencyWeight = a.profile.FrequencyWeight
	history := patterns.FrequencyMap(analysis.TopicFrequencies)
	topics := scorer.Score(req.SyllabusText, history)

	report("structuring", "parsing the syllabus")
	course := a.orch.Structure(ctx, req.SyllabusText)

	a.storeSyllabus(ctx, course.CourseName, req.SyllabusText)

	sets := make([]setResult, 0, req.SetCount)
	for i := 0; i < req.SetCount; i++ {
		setName := fmt.Sprintf("Set %c", 'A'+i)
		report("generating", setName)
		sets = append(sets, a.generateSet(ctx, setName, req, dist, topics, report))
	}

	return generateResponse{
		Course:          course,
		Topics:          topics,
		Sets:            sets,
		Recommendations: analyzer.Recommendations(),
	}
}

func (a *app) generateSet(ctx context.Context, setName string, req generateRequest, dist bloom.Distribution, topics []syllabus.Topic, report progressFunc) setResult {
	questions := a.orch.Generate(ctx, generator.GenerateInput{
		Syllabus:     req.SyllabusText,
		Topics:       topics,
		Distribution: dist,
		TotalMarks:   req.TotalMarks,
	})

	report("filtering", setName)
	filter := novelty.NewFilter(a.embedder)
	filter.Threshold = a.profile.SimilarityThreshold
	state := novelty.NewState()
	res := filter.FilterWithPastPapers(ctx, state, questions, a.past)

	report("evaluating", setName)
	var qualitySum float64
	for i := range res.Accepted {
		score := a.orch.EvaluateQuality(ctx, res.Accepted[i])
		res.Accepted[i].QualityScore = &score
		qualitySum += score
	}
	avgQuality := 0.0
	if len(res.Accepted) > 0 {
		avgQuality = qualitySum / float64(len(res.Accepted))
	}

	diversity, err := filter.DiversityScore(ctx, res.Accepted)
	if err != nil {
		slog.Warn("diversity scoring failed", "set", setName, "error", err)
		diversity = 1.0
	}

	assembled := paper.Assemble(res.Accepted, setName)
	validation := paper.Validate(res.Accepted, req.TotalMarks, paper.ValidateOptions{
		MinQuestions: a.profile.MinQuestions,
		MaxQuestions: a.profile.MaxQuestions,
	})

	a.storeQuestions(ctx, setName, res.Accepted)

	return setResult{
		Paper:           assembled,
		Validation:      validation,
		AverageQuality:  avgQuality,
		DiversityScore:  diversity,
		NoveltyDropped:  res.Dropped,
		NoveltyWarnings: res.Warnings,
	}
}

// storeSyllabus and storeQuestions are best-effort: persistence failures
// never fail a generation request.
func (a *app) storeSyllabus(ctx context.Context, courseName, text string) {
	if a.knowledge == nil || a.embedder == nil {
		return
	}
	if _, err := store.StoreSyllabus(ctx, a.knowledge, a.embedder, courseName, text); err != nil {
		slog.Warn("storing syllabus failed", "error", err)
	}
}

func (a *app) storeQuestions(ctx context.Context, setName string, questions []paper.Question) {
	if a.knowledge == nil || a.embedder == nil {
		return
	}
	if _, err := store.StoreQuestions(ctx, a.knowledge, a.embedder, setName, questions); err != nil {
		slog.Warn("storing questions failed", "set", setName, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
