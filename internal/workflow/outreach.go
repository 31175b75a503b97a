package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"scholarscout/internal/ai"
	"scholarscout/internal/candidate"
	"scholarscout/internal/logger"
)

// Language selects the outreach email language. The set is closed: growing
// it means adding a template, a default subject and a ParseLanguage case.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageChinese Language = "zh"
)

// ParseLanguage normalises user input into a supported language tag. Empty
// input defaults to English.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "en", "english":
		return LanguageEnglish, nil
	case "zh", "zh-cn", "chinese", "中文":
		return LanguageChinese, nil
	default:
		return "", fmt.Errorf("unsupported language %q (choose en or zh)", s)
	}
}

func languageName(lang Language) string {
	if lang == LanguageChinese {
		return "Chinese"
	}

	return "English"
}

// Outreach drafts a recruiting email from a match report in the requested
// language, personalised with the candidate's profile when one is supplied.
// A bilingual template stands in whenever the model path is disabled or
// fails, so the same inputs always produce a sendable draft.
func (w *Workflow) Outreach(ctx context.Context, report *MatchReport, profile *candidate.Profile, lang Language, useLLM bool, cfg ai.ModelConfig) (*OutreachEmail, error) {
	if report == nil {
		return nil, errors.New("match report is required")
	}

	if strings.TrimSpace(report.Direction) == "" {
		return nil, errors.New("match report carries no recruiting direction")
	}

	if lang == "" {
		lang = LanguageEnglish
	}

	log := w.logger.With(zap.String(logger.FieldTask, "outreach"))

	email := w.templateEmail(report, profile, lang)
	if !useLLM {
		return email, nil
	}

	generator, err := w.factory(ctx, cfg, log)
	if err != nil {
		log.Warn("model unavailable, using template email", zap.Error(err))
		return email, nil
	}

	prompt, err := w.outreachModelPrompt(report, profile, lang)
	if err != nil {
		log.Warn("marshal prompt payload failed, using template email", zap.Error(err))
		return email, nil
	}

	raw, err := generator.GenerateContent(ctx, prompt)
	if err != nil {
		log.Warn("model call failed, using template email", zap.Error(err))
		return email, nil
	}

	subject, body := splitSubject(raw, lang)
	if body == "" {
		log.Warn("model reply had no body, using template email")
		return email, nil
	}

	email.Subject = subject
	email.Body = body
	email.Path = PathLLM
	email.Model = generator.Model()

	return email, nil
}

// outreachModelPrompt embeds the match assessment and the profile so the
// model can reference strengths, recommended projects and a concrete
// publication or grant. The report's gaps are not sent.
func (w *Workflow) outreachModelPrompt(report *MatchReport, profile *candidate.Profile, lang Language) (string, error) {
	assessment := struct {
		Candidate string   `json:"candidate"`
		Direction string   `json:"direction"`
		Score     int      `json:"suitability_score"`
		Strengths []string `json:"strengths"`
		Projects  []string `json:"recommended_projects"`
	}{
		Candidate: candidateName(report, profile),
		Direction: report.Direction,
		Score:     report.Score,
		Strengths: report.Strengths,
		Projects:  report.Projects,
	}

	assessmentJSON, err := json.MarshalIndent(assessment, "", "  ")
	if err != nil {
		return "", err
	}

	profileJSON := []byte("{}")
	if profile != nil {
		profileJSON, err = json.MarshalIndent(profile, "", "  ")
		if err != nil {
			return "", err
		}
	}

	return outreachPrompt(string(assessmentJSON), string(profileJSON), report.Direction, w.instituteName(lang), w.institute.Pitch, lang), nil
}

// templateEmail renders the language-specific fallback draft.
func (w *Workflow) templateEmail(report *MatchReport, profile *candidate.Profile, lang Language) *OutreachEmail {
	template := outreachFallbackEN
	if lang == LanguageChinese {
		template = outreachFallbackZH
	}

	name := candidateName(report, profile)

	rendered := renderTemplate(template, map[string]string{
		"{{NAME}}":      displayName(name, lang),
		"{{DIRECTION}}": report.Direction,
		"{{INSTITUTE}}": w.instituteName(lang),
		"{{HIGHLIGHT}}": personalHighlight(profile, lang),
		"{{PITCH}}":     strings.TrimSpace(w.institute.Pitch),
	})

	subject, body := splitSubject(rendered, lang)

	return &OutreachEmail{
		Candidate: name,
		Subject:   subject,
		Body:      body,
		Language:  lang,
		Path:      PathHeuristic,
	}
}

func (w *Workflow) instituteName(lang Language) string {
	if name := strings.TrimSpace(w.institute.Name); name != "" {
		return name
	}

	if lang == LanguageChinese {
		return "我们的研究院"
	}

	return "our institute"
}

// candidateName prefers the parsed profile name over the report's key.
func candidateName(report *MatchReport, profile *candidate.Profile) string {
	if profile != nil {
		if name := strings.TrimSpace(profile.Name); name != "" {
			return name
		}
	}

	return strings.TrimSpace(report.Candidate)
}

func displayName(name string, lang Language) string {
	if name != "" && name != candidate.UnknownName {
		return name
	}

	if lang == LanguageChinese {
		return "老师"
	}

	return "Colleague"
}

// personalHighlight picks the most concrete achievement to mention: the
// first publication, then the first grant, then a generic phrase.
func personalHighlight(profile *candidate.Profile, lang Language) string {
	if profile != nil && len(profile.Publications) > 0 {
		pub := profile.Publications[0]

		if lang == LanguageChinese {
			if pub.Journal != "" {
				return fmt.Sprintf("您发表于 %s 的《%s》", pub.Journal, pub.Title)
			}
			return fmt.Sprintf("您的论文《%s》", pub.Title)
		}

		if pub.Journal != "" {
			return fmt.Sprintf("your paper %q in %s", pub.Title, pub.Journal)
		}
		return fmt.Sprintf("your paper %q", pub.Title)
	}

	if profile != nil && len(profile.Grants) > 0 {
		grant := profile.Grants[0]

		if lang == LanguageChinese {
			return fmt.Sprintf("您主持的“%s”项目", grant.Title)
		}
		return fmt.Sprintf("your %q grant", grant.Title)
	}

	if lang == LanguageChinese {
		return "您近期的研究成果"
	}

	return "your recent research contributions"
}

// splitSubject peels a leading "Subject:"/"主题：" line off a drafted email.
// Replies without one keep their full text as the body and get the default
// subject for the language.
func splitSubject(raw string, lang Language) (string, string) {
	text := strings.TrimSpace(raw)
	lines := strings.SplitN(text, "\n", 2)
	first := strings.TrimSpace(lines[0])

	for _, prefix := range []string{"Subject:", "主题：", "主题:"} {
		if !strings.HasPrefix(first, prefix) {
			continue
		}

		subject := strings.TrimSpace(strings.TrimPrefix(first, prefix))
		if subject == "" {
			subject = defaultSubject(lang)
		}

		var body string
		if len(lines) > 1 {
			body = strings.TrimSpace(lines[1])
		}

		return subject, body
	}

	return defaultSubject(lang), text
}

func defaultSubject(lang Language) string {
	if lang == LanguageChinese {
		return "关于科研合作与人才引进的联系"
	}

	return "Research collaboration opportunity"
}
