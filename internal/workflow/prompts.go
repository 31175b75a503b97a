package workflow

import (
	"strings"

	_ "embed"
)

//go:embed prompts/parse.md
var parsePromptTemplate string

//go:embed prompts/match.md
var matchPromptTemplate string

//go:embed prompts/outreach.md
var outreachPromptTemplate string

//go:embed prompts/outreach_fallback_en.md
var outreachFallbackEN string

//go:embed prompts/outreach_fallback_zh.md
var outreachFallbackZH string

func parsePrompt(resumeText string) string {
	return strings.ReplaceAll(parsePromptTemplate, "{{RESUME_TEXT}}", resumeText)
}

func matchPrompt(profileJSON, direction string) string {
	prompt := strings.ReplaceAll(matchPromptTemplate, "{{PROFILE_JSON}}", profileJSON)
	return strings.ReplaceAll(prompt, "{{DIRECTION}}", direction)
}

func outreachPrompt(assessmentJSON, profileJSON, direction, institute, pitch string, lang Language) string {
	replacer := strings.NewReplacer(
		"{{ASSESSMENT_JSON}}", assessmentJSON,
		"{{PROFILE_JSON}}", profileJSON,
		"{{DIRECTION}}", direction,
		"{{INSTITUTE}}", institute,
		"{{PITCH}}", pitch,
		"{{LANGUAGE}}", languageName(lang),
	)

	return replacer.Replace(outreachPromptTemplate)
}

// renderTemplate fills an outreach fallback template and squeezes the blank
// gaps left by empty tokens.
func renderTemplate(template string, tokens map[string]string) string {
	out := template
	for token, value := range tokens {
		out = strings.ReplaceAll(out, token, value)
	}

	for strings.Contains(out, "\n\n\n") {
		out = strings.ReplaceAll(out, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(out)
}
