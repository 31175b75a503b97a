package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"scholarscout/internal/ai"
	"scholarscout/internal/candidate"
	"scholarscout/internal/logger"
	"scholarscout/internal/parsing"
)

// FallbackScore is reported whenever a match runs without a usable model
// reply. The constant keeps deterministic runs comparable across candidates.
const FallbackScore = 40

// Match scores a candidate against a recruiting direction. The profile and
// direction are required; everything else degrades gracefully, so a model
// failure still yields a complete report.
func (w *Workflow) Match(ctx context.Context, profile *candidate.Profile, direction string, useLLM bool, cfg ai.ModelConfig) (*MatchReport, error) {
	if profile == nil {
		return nil, errors.New("candidate profile is required")
	}

	direction = strings.TrimSpace(direction)
	if direction == "" {
		return nil, errors.New("recruiting direction is required")
	}

	log := w.logger.With(zap.String(logger.FieldTask, "match"))

	report := heuristicMatch(profile, direction)
	if !useLLM {
		return report, nil
	}

	generator, err := w.factory(ctx, cfg, log)
	if err != nil {
		log.Warn("model unavailable, using deterministic report", zap.Error(err))
		return report, nil
	}

	payload, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		log.Warn("marshal profile payload failed, using deterministic report", zap.Error(err))
		return report, nil
	}

	raw, err := generator.GenerateContent(ctx, matchPrompt(string(payload), direction))
	if err != nil {
		log.Warn("model call failed, using deterministic report", zap.Error(err))
		return report, nil
	}

	fields, err := parsing.ExtractObject(raw, parsing.SchemaMatch)
	if err != nil {
		log.Warn("model reply rejected, using deterministic report", zap.Error(err))
		return report, nil
	}

	score := parsing.CoerceFloat(fields["suitability_score"])
	if math.IsNaN(score) {
		log.Warn("score missing from model reply, using deterministic report")
		return report, nil
	}

	report.Score = clampScore(score)
	if v := parsing.CoerceString(fields["reasoning"]); v != "" {
		report.Reasoning = v
	}

	report.Strengths = parsing.CoerceStringSlice(fields["strengths"])
	report.Gaps = parsing.CoerceStringSlice(fields["gaps"])
	report.Projects = parsing.CoerceStringSlice(fields["recommended_projects"])
	report.Path = PathLLM
	report.Model = generator.Model()

	log.Debug("match scored by model",
		zap.String("candidate", profile.Name),
		zap.Int("score", report.Score),
	)

	return report, nil
}

// clampScore rounds and pins a raw score into the 0-100 range.
func clampScore(score float64) int {
	if score < 0 {
		return 0
	}

	if score > 100 {
		return 100
	}

	return int(math.Round(score))
}

// heuristicMatch produces the deterministic report used when no model reply
// is available. Strengths and gaps are always non-empty so downstream
// rendering never deals with holes.
func heuristicMatch(profile *candidate.Profile, direction string) *MatchReport {
	focus := make([]string, 0, len(profile.Interests)+len(profile.Skills))
	focus = append(focus, profile.Interests...)
	focus = append(focus, profile.Skills...)

	overlap := keywordOverlap(focus, direction)

	var strengths, gaps []string

	if len(overlap) > 0 {
		strengths = append(strengths, fmt.Sprintf("Research focus overlaps the %s direction: %s.", direction, strings.Join(overlap, ", ")))
	} else {
		gaps = append(gaps, fmt.Sprintf("No direct overlap found between the stated focus areas and the %s direction.", direction))
	}

	if profile.HIndex != "" && profile.HIndex != candidate.NotAvailable {
		strengths = append(strengths, fmt.Sprintf("Documented citation impact (h-index %s).", profile.HIndex))
	}

	if len(profile.Publications) > 0 {
		strengths = append(strengths, fmt.Sprintf("%d publication highlight(s) in journals of interest.", len(profile.Publications)))
	}

	if len(profile.Skills) > 0 {
		strengths = append(strengths, fmt.Sprintf("Hands-on techniques on record: %s.", strings.Join(profile.Skills, ", ")))
	}

	if len(strengths) == 0 {
		strengths = append(strengths, "Profile carries too little signal for an automated read; review manually.")
	}

	if len(gaps) == 0 {
		gaps = append(gaps, "Assessment ran without model assistance; verify details before deciding.")
	}

	return &MatchReport{
		Candidate: profile.Name,
		Direction: direction,
		Score:     FallbackScore,
		Reasoning: fmt.Sprintf(
			"Deterministic assessment of %s for the %s direction: %d focus-area match(es). The score is a fixed baseline, not a model judgement.",
			profile.Name, direction, len(overlap),
		),
		Strengths: strengths,
		Gaps:      gaps,
		Projects:  []string{fmt.Sprintf("Exploratory collaboration in %s", direction)},
		Path:      PathHeuristic,
	}
}

// keywordOverlap reports which focus terms share a token with the direction.
// Tokens shorter than four characters are ignored to skip connective words.
func keywordOverlap(terms []string, direction string) []string {
	tokens := strings.Fields(strings.ToLower(direction))

	var overlap []string

	for _, term := range terms {
		lowered := strings.ToLower(term)

		for _, token := range tokens {
			if len(token) < 4 {
				continue
			}

			if strings.Contains(lowered, token) {
				overlap = append(overlap, term)
				break
			}
		}
	}

	return overlap
}
