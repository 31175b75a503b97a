// Package workflow runs the three candidate-screening tasks: resume parsing,
// direction matching and outreach drafting. Every task prefers a hosted model
// when one is configured and silently downgrades to deterministic rules when
// the model call or its reply cannot be used.
package workflow

import (
	"context"

	"go.uber.org/zap"

	"scholarscout/internal/ai"
	"scholarscout/internal/candidate"
)

// Path records which route produced a result.
type Path string

const (
	PathLLM       Path = "llm"
	PathHeuristic Path = "heuristic"
)

// GeneratorFactory builds the model client for one task invocation. Tests
// substitute it to script replies.
type GeneratorFactory func(ctx context.Context, cfg ai.ModelConfig, log *zap.Logger) (ai.Generator, error)

// Institute describes the hiring organisation presented in outreach emails.
type Institute struct {
	Name  string
	Pitch string
}

// Workflow holds the shared task dependencies. It keeps no per-candidate
// state; everything flows through arguments and return values.
type Workflow struct {
	factory   GeneratorFactory
	institute Institute
	logger    *zap.Logger
}

// New builds a Workflow. A nil factory defaults to the real provider clients.
func New(factory GeneratorFactory, institute Institute, log *zap.Logger) *Workflow {
	if factory == nil {
		factory = ai.New
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Workflow{factory: factory, institute: institute, logger: log}
}

// Institute returns the hiring organisation the workflow presents.
func (w *Workflow) Institute() Institute {
	return w.institute
}

// WithInstitute returns a copy of the workflow presenting a different hiring
// organisation in outreach drafts. The receiver is unchanged.
func (w *Workflow) WithInstitute(institute Institute) *Workflow {
	clone := *w
	clone.institute = institute

	return &clone
}

// ResumeRecord couples a structured profile with how it was produced. The raw
// text is kept for re-parsing but never serialised to clients.
type ResumeRecord struct {
	Profile *candidate.Profile `json:"profile"`
	RawText string             `json:"-"`
	Path    Path               `json:"path"`
	Model   string             `json:"model,omitempty"`
}

// MatchReport scores one candidate against a recruiting direction.
type MatchReport struct {
	Candidate string   `json:"candidate"`
	Direction string   `json:"direction"`
	Score     int      `json:"suitability_score"`
	Reasoning string   `json:"reasoning"`
	Strengths []string `json:"strengths"`
	Gaps      []string `json:"gaps"`
	Projects  []string `json:"recommended_projects"`
	Path      Path     `json:"path"`
	Model     string   `json:"model,omitempty"`
}

// OutreachEmail is a ready-to-send draft in the requested language.
type OutreachEmail struct {
	Candidate string   `json:"candidate"`
	Subject   string   `json:"subject"`
	Body      string   `json:"body"`
	Language  Language `json:"language"`
	Path      Path     `json:"path"`
	Model     string   `json:"model,omitempty"`
}
