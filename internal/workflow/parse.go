package workflow

import (
	"context"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"scholarscout/internal/ai"
	"scholarscout/internal/candidate"
	"scholarscout/internal/logger"
	"scholarscout/internal/parsing"
)

// maxPromptRunes bounds how much resume text is sent to a model.
const maxPromptRunes = 12000

// ParseResume builds a structured profile from raw resume text. Deterministic
// extraction always runs first; a model refines the result only when useLLM
// is set and the model round-trip succeeds. Any model failure keeps the
// deterministic profile and annotates it, so the call itself never fails.
func (w *Workflow) ParseResume(ctx context.Context, text string, useLLM bool, cfg ai.ModelConfig) *ResumeRecord {
	log := w.logger.With(zap.String(logger.FieldTask, "parse"))

	baseline := candidate.ExtractProfile(text)
	record := &ResumeRecord{Profile: baseline, RawText: text, Path: PathHeuristic}

	if !useLLM || strings.TrimSpace(text) == "" {
		return record
	}

	generator, err := w.factory(ctx, cfg, log)
	if err != nil {
		log.Warn("model unavailable, keeping heuristic profile", zap.Error(err))
		annotateNotes(baseline, "LLM unavailable; heuristic extraction used.")

		return record
	}

	raw, err := generator.GenerateContent(ctx, parsePrompt(truncateRunes(text, maxPromptRunes)))
	if err != nil {
		log.Warn("model call failed, keeping heuristic profile", zap.Error(err))
		annotateNotes(baseline, "LLM call failed; heuristic extraction used.")

		return record
	}

	fields, err := parsing.ExtractObject(raw, parsing.SchemaProfile)
	if err != nil {
		log.Warn("model reply rejected, keeping heuristic profile", zap.Error(err))
		annotateNotes(baseline, "LLM parsing failed to return valid JSON.")

		return record
	}

	mergeProfile(baseline, fields)
	record.Path = PathLLM
	record.Model = generator.Model()

	log.Debug("profile refined by model", zap.String("candidate", baseline.Name))

	return record
}

// mergeProfile overlays model fields onto the deterministic baseline. The
// model wins wherever it produced a value; baseline values fill the gaps.
// Notes are replaced outright so stale extraction remarks do not survive.
func mergeProfile(p *candidate.Profile, fields map[string]any) {
	if v := parsing.CoerceString(fields["name"]); v != "" {
		p.Name = v
	}

	if v := parsing.CoerceString(fields["current_institution"]); v != "" {
		p.Institution = v
	}

	if v := parsing.CoerceString(fields["estimated_ranking"]); v != "" {
		p.Ranking = v
	}

	if v := parsing.CoerceString(fields["education"]); v != "" {
		p.Education = v
	}

	if v := parsing.CoerceString(fields["h_index"]); v != "" {
		p.HIndex = v
	}

	if v := parsing.CoerceInt(fields["publication_count"]); v > 0 {
		p.PublicationCount = v
	}

	if v := parsing.CoerceStringSlice(fields["research_focus_keywords"]); len(v) > 0 {
		p.Interests = v
	}

	if v := parsing.CoerceStringSlice(fields["skills"]); len(v) > 0 {
		p.Skills = v
	}

	if v := coercePublications(fields["key_publications"]); len(v) > 0 {
		p.Publications = v
	}

	if v := coerceGrants(fields["grants"]); len(v) > 0 {
		p.Grants = v
	}

	if v := parsing.CoerceStringSlice(fields["emails"]); len(v) > 0 {
		p.Emails = v
	}

	p.Notes = parsing.CoerceString(fields["notes"])
}

func coercePublications(v any) []candidate.Publication {
	var decoded []candidate.Publication
	if err := decodeWeakly(v, &decoded); err != nil {
		return nil
	}

	out := make([]candidate.Publication, 0, len(decoded))
	for _, pub := range decoded {
		if pub.Title == "" && pub.Journal == "" {
			continue
		}

		out = append(out, pub)
	}

	return out
}

func coerceGrants(v any) []candidate.Grant {
	var decoded []candidate.Grant
	if err := decodeWeakly(v, &decoded); err != nil {
		return nil
	}

	out := make([]candidate.Grant, 0, len(decoded))
	for _, grant := range decoded {
		if grant.Title == "" && grant.Sponsor == "" {
			continue
		}

		out = append(out, grant)
	}

	return out
}

// decodeWeakly maps loosely typed model output onto a typed destination.
// Numeric years and amounts arrive as floats and must land in string fields.
func decodeWeakly(v any, dest any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           dest,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(v)
}

func annotateNotes(p *candidate.Profile, note string) {
	if strings.TrimSpace(p.Notes) == "" {
		p.Notes = note
		return
	}

	p.Notes = p.Notes + " | " + note
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit])
}
