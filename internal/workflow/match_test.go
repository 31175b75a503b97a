package workflow

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"scholarscout/internal/ai"
	"scholarscout/internal/candidate"
)

func TestMatchRequiresInputs(t *testing.T) {
	w := newTestWorkflow(t, &stubGenerator{}, nil)

	if _, err := w.Match(context.Background(), nil, "Immunology", false, ai.ModelConfig{}); err == nil {
		t.Fatal("expected an error for a nil profile")
	}

	if _, err := w.Match(context.Background(), candidate.DemoProfile(), "  ", false, ai.ModelConfig{}); err == nil {
		t.Fatal("expected an error for an empty direction")
	}
}

func TestMatchHeuristicReport(t *testing.T) {
	stub := &stubGenerator{}
	w := newTestWorkflow(t, stub, nil)

	report, err := w.Match(context.Background(), candidate.DemoProfile(), "Immunology", false, ai.ModelConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stub.calls != 0 {
		t.Fatalf("expected no model calls, got %d", stub.calls)
	}

	if report.Score != FallbackScore {
		t.Fatalf("expected fallback score %d, got %d", FallbackScore, report.Score)
	}

	if report.Path != PathHeuristic {
		t.Fatalf("expected heuristic path, got %q", report.Path)
	}

	if len(report.Strengths) == 0 || !strings.Contains(report.Strengths[0], "Immunology") {
		t.Fatalf("expected overlap strength, got %v", report.Strengths)
	}
}

func TestMatchFallbackOnProviderError(t *testing.T) {
	stub := &stubGenerator{err: &ai.ProviderError{Provider: ai.ProviderAnthropic, Status: 500}}
	w := newTestWorkflow(t, stub, nil)

	report, err := w.Match(context.Background(), candidate.DemoProfile(), "Immunology", true, ai.ModelConfig{Provider: ai.ProviderAnthropic})
	if err != nil {
		t.Fatalf("expected no error despite provider failure, got %v", err)
	}

	if report.Score != FallbackScore {
		t.Fatalf("expected fallback score %d, got %d", FallbackScore, report.Score)
	}

	if report.Reasoning == "" {
		t.Fatal("expected non-empty reasoning")
	}

	if len(report.Strengths) == 0 || len(report.Gaps) == 0 || len(report.Projects) == 0 {
		t.Fatalf("expected non-empty strengths, gaps and projects, got %v / %v / %v",
			report.Strengths, report.Gaps, report.Projects)
	}

	if report.Path != PathHeuristic {
		t.Fatalf("expected heuristic path, got %q", report.Path)
	}
}

func TestMatchFallbackOnUnusableReplies(t *testing.T) {
	replies := []string{
		"The candidate looks great!",
		`{"reasoning": "no score included"}`,
		`{"suitability_score": "N/A"}`,
	}

	for _, reply := range replies {
		stub := &stubGenerator{reply: reply}
		w := newTestWorkflow(t, stub, nil)

		report, err := w.Match(context.Background(), candidate.DemoProfile(), "Immunology", true, ai.ModelConfig{Provider: ai.ProviderOpenAI})
		if err != nil {
			t.Fatalf("reply %.30q: unexpected error: %v", reply, err)
		}

		if report.Score != FallbackScore || report.Path != PathHeuristic {
			t.Fatalf("reply %.30q: expected fallback report, got score=%d path=%q", reply, report.Score, report.Path)
		}
	}
}

func TestMatchClampsScores(t *testing.T) {
	cases := []struct {
		name  string
		score string
		want  int
	}{
		{"negative", "-5", 0},
		{"overshoot", "250", 100},
		{"fractional", "86.4", 86},
		{"string score", `"85"`, 85},
		{"boundary low", "0", 0},
		{"boundary high", "100", 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubGenerator{reply: fmt.Sprintf(`{"suitability_score": %s, "reasoning": "ok"}`, tc.score)}
			w := newTestWorkflow(t, stub, nil)

			report, err := w.Match(context.Background(), candidate.DemoProfile(), "Immunology", true, ai.ModelConfig{Provider: ai.ProviderOpenAI})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if report.Score != tc.want {
				t.Fatalf("expected score %d, got %d", tc.want, report.Score)
			}

			if report.Path != PathLLM {
				t.Fatalf("expected llm path, got %q", report.Path)
			}
		})
	}
}

func TestMatchModelReport(t *testing.T) {
	stub := &stubGenerator{reply: `{
		"suitability_score": 92,
		"reasoning": "Strong overlap with the immunology roadmap.",
		"strengths": ["Nature-level publications", "Active grants"],
		"gaps": ["No industry experience"],
		"recommended_projects": ["Tumor microenvironment atlas"]
	}`}
	w := newTestWorkflow(t, stub, nil)

	report, err := w.Match(context.Background(), candidate.DemoProfile(), "Cancer Immunology", true, ai.ModelConfig{Provider: ai.ProviderGemini})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Score != 92 || report.Model != "stub-model" || report.Path != PathLLM {
		t.Fatalf("unexpected report: %+v", report)
	}

	if len(report.Strengths) != 2 || len(report.Gaps) != 1 || len(report.Projects) != 1 {
		t.Fatalf("model lists not applied: %+v", report)
	}

	if !strings.Contains(stub.lastPrompt, "Cancer Immunology") {
		t.Fatal("expected direction inside the prompt")
	}

	if !strings.Contains(stub.lastPrompt, "Dr. Ada Zhang") {
		t.Fatal("expected profile payload inside the prompt")
	}
}

func TestMatchHeuristicGapWithoutOverlap(t *testing.T) {
	profile := candidate.NewProfile()
	profile.Name = "Dr. Kim Lee"
	profile.Interests = []string{"Astrophysics"}

	w := newTestWorkflow(t, &stubGenerator{}, nil)

	report, err := w.Match(context.Background(), profile, "Immunology", false, ai.ModelConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Gaps) == 0 || !strings.Contains(report.Gaps[0], "No direct overlap") {
		t.Fatalf("expected a no-overlap gap, got %v", report.Gaps)
	}
}

func TestClampScore(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{-1, 0},
		{0, 0},
		{49.5, 50},
		{100, 100},
		{1000, 100},
	}

	for _, tc := range cases {
		if got := clampScore(tc.in); got != tc.want {
			t.Fatalf("clampScore(%v): expected %d, got %d", tc.in, tc.want, got)
		}
	}
}
