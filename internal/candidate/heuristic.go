package candidate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// HeuristicNotes marks profiles produced without a model so the UI can offer
// a richer re-parse.
const HeuristicNotes = "Heuristic extraction; refine with LLM for richer details."

const maxInterests = 10

var (
	emailPattern    = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	hIndexPattern   = regexp.MustCompile(`(?i)h-?index[:\s]+(\d+)`)
	pubCountPattern = regexp.MustCompile(`(?i)(\d+)\s+publications?`)
	capWordPattern  = regexp.MustCompile(`\b[A-Z][a-zA-Z]{3,}\b`)

	institutionPattern = regexp.MustCompile(
		`\b(?:[A-Z][\w&.'-]*\s+){0,4}(?:University|Institute|College|Hospital|Academy|Centre|Center)(?:\s+of(?:\s+[A-Z][\w'-]*)+)?`,
	)

	nameLinePattern = regexp.MustCompile(
		`^((?:(?:Dr|Prof|Professor)\.?\s+)?[A-Z][a-z'-]+(?:\s+[A-Z][a-z'-]+){1,3})\b`,
	)
)

// degreePatterns are ordered from highest to lowest qualification; the first
// hit wins.
var degreePatterns = []struct {
	pattern *regexp.Regexp
	degree  string
}{
	{regexp.MustCompile(`(?i)\b(?:ph\.?\s*d\.?|d\.?phil\.?|doctor of philosophy|doctorate)\b`), "PhD"},
	{regexp.MustCompile(`\bM\.?D\.?\b`), "MD"},
	{regexp.MustCompile(`(?i)\b(?:m\.?\s*sc\.?|master(?:'s)? of science)\b`), "MSc"},
	{regexp.MustCompile(`(?i)\b(?:b\.?\s*sc\.?|bachelor(?:'s)? of science)\b`), "BSc"},
}

// journalsOfInterest drive the publication highlights; a mention anywhere in
// the text counts.
var journalsOfInterest = []string{"Nature", "Science", "Cell", "Lancet"}

var journalPatterns = func() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(journalsOfInterest))
	for _, journal := range journalsOfInterest {
		patterns[journal] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(journal) + `\b`)
	}
	return patterns
}()

// researchVocabulary catches lower-cased focus terms the capitalised-word
// scan misses.
var researchVocabulary = []string{
	"Immunology", "Immunotherapy", "Oncology", "Genomics", "Proteomics",
	"Neuroscience", "Bioinformatics", "Single-cell", "Tumor microenvironment",
	"Machine learning", "CRISPR", "T cell",
}

var vocabularyPatterns = func() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(researchVocabulary))
	for _, term := range researchVocabulary {
		patterns = append(patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(term)+`\b`))
	}
	return patterns
}()

// skillVocabulary maps technique spellings seen in resumes to one display
// form per skill. Output order follows this list.
var skillVocabulary = []struct {
	display  string
	variants []string
}{
	{"single-cell RNA sequencing", []string{"single-cell RNA sequencing", "single cell RNA sequencing", "scRNA-seq"}},
	{"CRISPR", []string{"CRISPR", "CRISPR-Cas9", "gene editing"}},
	{"flow cytometry", []string{"flow cytometry", "FACS"}},
	{"mass spectrometry", []string{"mass spectrometry", "LC-MS"}},
	{"machine learning", []string{"machine learning", "deep learning"}},
	{"bioinformatics", []string{"bioinformatics", "computational biology"}},
	{"organoid culture", []string{"organoid", "organoids"}},
}

var skillPatterns = func() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(skillVocabulary))
	for _, skill := range skillVocabulary {
		quoted := make([]string, 0, len(skill.variants))
		for _, variant := range skill.variants {
			quoted = append(quoted, regexp.QuoteMeta(variant))
		}
		patterns = append(patterns, regexp.MustCompile(`(?i)\b(?:`+strings.Join(quoted, "|")+`)\b`))
	}
	return patterns
}()

// ExtractProfile builds a profile from raw resume text using deterministic
// rules only. It accepts any input, including empty text, and never fails.
func ExtractProfile(text string) *Profile {
	profile := NewProfile()
	profile.Notes = HeuristicNotes

	text = strings.TrimSpace(text)
	if text == "" {
		return profile
	}

	if name := extractName(text); name != "" {
		profile.Name = name
	}

	if institution := strings.TrimSpace(institutionPattern.FindString(text)); institution != "" {
		profile.Institution = institution
	}

	if m := hIndexPattern.FindStringSubmatch(text); m != nil {
		profile.HIndex = m[1]
	}

	if m := pubCountPattern.FindStringSubmatch(text); m != nil {
		count, err := strconv.Atoi(m[1])
		if err == nil {
			profile.PublicationCount = count
		}
	}

	profile.Education = extractDegree(text)
	profile.Emails = dedupe(emailPattern.FindAllString(text, -1), 0)
	profile.Interests = extractInterests(text)
	profile.Skills = extractSkills(text)
	profile.Publications = journalHighlights(text)

	return profile
}

// extractName inspects the first non-empty line for something shaped like a
// personal name. Header lines such as "Curriculum Vitae" are skipped.
func extractName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		if strings.Contains(lower, "curriculum") || strings.Contains(lower, "vitae") || strings.Contains(lower, "resume") {
			return ""
		}

		if m := nameLinePattern.FindStringSubmatch(line); m != nil {
			return m[1]
		}

		return ""
	}

	return ""
}

func extractDegree(text string) string {
	for _, candidate := range degreePatterns {
		if candidate.pattern.MatchString(text) {
			return candidate.degree
		}
	}

	return ""
}

// extractInterests merges the capitalised-word scan with the research
// vocabulary, keeping first-occurrence order and capping the result.
func extractInterests(text string) []string {
	found := capWordPattern.FindAllString(text, -1)

	for _, pattern := range vocabularyPatterns {
		if term := pattern.FindString(text); term != "" {
			found = append(found, canonicalTerm(term))
		}
	}

	return dedupe(found, maxInterests)
}

// extractSkills reports vocabulary techniques mentioned anywhere in the text,
// one entry per skill regardless of how many spellings matched.
func extractSkills(text string) []string {
	var skills []string

	for i, skill := range skillVocabulary {
		if skillPatterns[i].MatchString(text) {
			skills = append(skills, skill.display)
		}
	}

	return skills
}

// canonicalTerm maps a vocabulary hit back to its display form.
func canonicalTerm(term string) string {
	for _, display := range researchVocabulary {
		if strings.EqualFold(display, term) {
			return display
		}
	}

	return term
}

func journalHighlights(text string) []Publication {
	var highlights []Publication

	for _, journal := range journalsOfInterest {
		if journalPatterns[journal].MatchString(text) {
			highlights = append(highlights, Publication{
				Title:   fmt.Sprintf("Highlight from %s", journal),
				Journal: journal,
			})
		}
	}

	return highlights
}

// dedupe drops case-insensitive duplicates, preserving first-seen order.
// A limit of zero means unbounded.
func dedupe(values []string, limit int) []string {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))

	for _, value := range values {
		key := strings.ToLower(value)
		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		out = append(out, value)

		if limit > 0 && len(out) == limit {
			break
		}
	}

	return out
}
