package workflow

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"scholarscout/internal/ai"
	"scholarscout/internal/candidate"
)

func sampleReport() *MatchReport {
	return &MatchReport{
		Candidate: "Dr. Ada Zhang",
		Direction: "Immunology",
		Score:     82,
		Reasoning: "Strong tumor immunology record with translational experience.",
		Strengths: []string{"Nature-level publication record", "Funded checkpoint biology program"},
		Gaps:      []string{"No industry collaborations listed"},
		Projects:  []string{"Neoantigen discovery platform"},
		Path:      PathHeuristic,
	}
}

func TestParseLanguage(t *testing.T) {
	cases := []struct {
		in   string
		want Language
	}{
		{"", LanguageEnglish},
		{"en", LanguageEnglish},
		{"English", LanguageEnglish},
		{"zh", LanguageChinese},
		{"zh-CN", LanguageChinese},
		{"Chinese", LanguageChinese},
		{"中文", LanguageChinese},
	}

	for _, tc := range cases {
		got, err := ParseLanguage(tc.in)
		if err != nil {
			t.Fatalf("input %q: unexpected error: %v", tc.in, err)
		}

		if got != tc.want {
			t.Fatalf("input %q: expected %q, got %q", tc.in, tc.want, got)
		}
	}

	if _, err := ParseLanguage("fr"); err == nil {
		t.Fatal("expected an error for an unsupported language")
	}
}

func TestOutreachRequiresMatchReport(t *testing.T) {
	w := newTestWorkflow(t, &stubGenerator{}, nil)

	if _, err := w.Outreach(context.Background(), nil, candidate.DemoProfile(), LanguageEnglish, false, ai.ModelConfig{}); err == nil {
		t.Fatal("expected an error for a nil match report")
	}

	blank := sampleReport()
	blank.Direction = "  "

	if _, err := w.Outreach(context.Background(), blank, candidate.DemoProfile(), LanguageEnglish, false, ai.ModelConfig{}); err == nil {
		t.Fatal("expected an error for a report without a direction")
	}
}

func TestOutreachTemplateByLanguage(t *testing.T) {
	w := newTestWorkflow(t, &stubGenerator{}, nil)
	report := sampleReport()
	profile := candidate.DemoProfile()

	english, err := w.Outreach(context.Background(), report, profile, LanguageEnglish, false, ai.ModelConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chinese, err := w.Outreach(context.Background(), report, profile, LanguageChinese, false, ai.ModelConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if english.Language != LanguageEnglish || chinese.Language != LanguageChinese {
		t.Fatalf("unexpected language tags: %q / %q", english.Language, chinese.Language)
	}

	if !strings.Contains(english.Body, "Dr. Ada Zhang") || !strings.Contains(chinese.Body, "Dr. Ada Zhang") {
		t.Fatal("expected the candidate name in both bodies")
	}

	if !strings.Contains(english.Body, "Checkpoint modulation in solid tumors") ||
		!strings.Contains(chinese.Body, "Checkpoint modulation in solid tumors") {
		t.Fatal("expected the personal highlight in both bodies")
	}

	if !strings.Contains(english.Subject, "Immunology") {
		t.Fatalf("expected direction in the english subject, got %q", english.Subject)
	}

	if !strings.Contains(chinese.Subject, "Immunology") {
		t.Fatalf("expected direction in the chinese subject, got %q", chinese.Subject)
	}

	if !strings.Contains(chinese.Body, "尊敬的") {
		t.Fatalf("expected a chinese salutation, got %q", chinese.Body)
	}

	if english.Body == chinese.Body {
		t.Fatal("expected the two languages to produce different bodies")
	}
}

func TestOutreachWithoutProfile(t *testing.T) {
	w := newTestWorkflow(t, &stubGenerator{}, nil)

	email, err := w.Outreach(context.Background(), sampleReport(), nil, LanguageEnglish, false, ai.ModelConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if email.Candidate != "Dr. Ada Zhang" {
		t.Fatalf("expected the report's candidate name, got %q", email.Candidate)
	}

	if !strings.Contains(email.Body, "Dear Dr. Ada Zhang") {
		t.Fatalf("expected the report name in the salutation, got %q", email.Body)
	}

	if !strings.Contains(email.Body, "your recent research contributions") {
		t.Fatalf("expected the generic highlight without a profile, got %q", email.Body)
	}
}

func TestOutreachIdempotent(t *testing.T) {
	w := newTestWorkflow(t, &stubGenerator{reply: "Subject: Hello\n\nDear Dr. Zhang, we admire your work."}, nil)
	report := sampleReport()
	profile := candidate.DemoProfile()

	first, err := w.Outreach(context.Background(), report, profile, LanguageEnglish, true, ai.ModelConfig{Provider: ai.ProviderOpenAI})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := w.Outreach(context.Background(), report, profile, LanguageEnglish, true, ai.ModelConfig{Provider: ai.ProviderOpenAI})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical drafts, got %+v vs %+v", first, second)
	}
}

func TestOutreachModelReply(t *testing.T) {
	stub := &stubGenerator{reply: "Subject: Invitation to discuss a faculty opening\n\nDear Dr. Zhang,\n\nYour Nature paper caught our attention."}
	w := newTestWorkflow(t, stub, nil)

	email, err := w.Outreach(context.Background(), sampleReport(), candidate.DemoProfile(), LanguageEnglish, true, ai.ModelConfig{Provider: ai.ProviderOpenAI})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if email.Subject != "Invitation to discuss a faculty opening" {
		t.Fatalf("unexpected subject: %q", email.Subject)
	}

	if !strings.HasPrefix(email.Body, "Dear Dr. Zhang,") {
		t.Fatalf("unexpected body: %q", email.Body)
	}

	if email.Path != PathLLM || email.Model != "stub-model" {
		t.Fatalf("expected llm path, got %+v", email)
	}

	if !strings.Contains(stub.lastPrompt, "Language: English") {
		t.Fatal("expected language hint inside the prompt")
	}

	if !strings.Contains(stub.lastPrompt, "Funded checkpoint biology program") ||
		!strings.Contains(stub.lastPrompt, "Neoantigen discovery platform") {
		t.Fatal("expected strengths and recommended projects inside the prompt")
	}

	if strings.Contains(stub.lastPrompt, "No industry collaborations listed") {
		t.Fatal("expected gaps to stay out of the prompt")
	}
}

// languageStub replies with a different canned draft per requested language
// so the two drafts can be told apart.
type languageStub struct{}

func (s *languageStub) GenerateContent(_ context.Context, prompt string) (string, error) {
	if strings.Contains(prompt, "Language: Chinese") {
		return "主题：诚邀您来访交流\n\n尊敬的张老师：期待与您深入交流。", nil
	}

	return "Subject: An invitation to visit\n\nDear Dr. Zhang, we would value a conversation.", nil
}

func (s *languageStub) Model() string { return "stub-model" }

func TestOutreachModelLanguageSelection(t *testing.T) {
	w := newTestWorkflow(t, &languageStub{}, nil)
	report := sampleReport()
	profile := candidate.DemoProfile()

	english, err := w.Outreach(context.Background(), report, profile, LanguageEnglish, true, ai.ModelConfig{Provider: ai.ProviderOpenAI})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chinese, err := w.Outreach(context.Background(), report, profile, LanguageChinese, true, ai.ModelConfig{Provider: ai.ProviderOpenAI})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if english.Language != LanguageEnglish || chinese.Language != LanguageChinese {
		t.Fatalf("unexpected language tags: %q / %q", english.Language, chinese.Language)
	}

	if english.Candidate != chinese.Candidate {
		t.Fatalf("expected the same candidate on both drafts: %q / %q", english.Candidate, chinese.Candidate)
	}

	if !strings.HasPrefix(english.Body, "Dear Dr. Zhang") {
		t.Fatalf("unexpected english body: %q", english.Body)
	}

	if !strings.HasPrefix(chinese.Body, "尊敬的张老师") {
		t.Fatalf("unexpected chinese body: %q", chinese.Body)
	}
}

func TestOutreachChineseSubjectPrefix(t *testing.T) {
	stub := &stubGenerator{reply: "主题：诚邀您交流访问\n\n尊敬的张老师：\n\n我们拜读了您发表于 Nature 的论文。"}
	w := newTestWorkflow(t, stub, nil)

	email, err := w.Outreach(context.Background(), sampleReport(), candidate.DemoProfile(), LanguageChinese, true, ai.ModelConfig{Provider: ai.ProviderOpenAI})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if email.Subject != "诚邀您交流访问" {
		t.Fatalf("unexpected subject: %q", email.Subject)
	}

	if !strings.HasPrefix(email.Body, "尊敬的张老师：") {
		t.Fatalf("unexpected body: %q", email.Body)
	}
}

func TestOutreachReplyWithoutSubjectLine(t *testing.T) {
	stub := &stubGenerator{reply: "Dear Dr. Zhang,\n\nWe would be delighted to talk."}
	w := newTestWorkflow(t, stub, nil)

	email, err := w.Outreach(context.Background(), sampleReport(), candidate.DemoProfile(), LanguageEnglish, true, ai.ModelConfig{Provider: ai.ProviderOpenAI})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if email.Subject != defaultSubject(LanguageEnglish) {
		t.Fatalf("expected default subject, got %q", email.Subject)
	}

	if !strings.HasPrefix(email.Body, "Dear Dr. Zhang,") {
		t.Fatalf("expected full reply as body, got %q", email.Body)
	}
}

func TestOutreachFallbackOnProviderError(t *testing.T) {
	stub := &stubGenerator{err: &ai.ProviderError{Provider: ai.ProviderOpenAI, Status: 503}}
	w := newTestWorkflow(t, stub, nil)

	email, err := w.Outreach(context.Background(), sampleReport(), candidate.DemoProfile(), LanguageEnglish, true, ai.ModelConfig{Provider: ai.ProviderOpenAI})
	if err != nil {
		t.Fatalf("expected no error despite provider failure, got %v", err)
	}

	if email.Path != PathHeuristic {
		t.Fatalf("expected template path, got %q", email.Path)
	}

	if email.Subject == "" || email.Body == "" {
		t.Fatalf("expected a complete template draft, got %+v", email)
	}
}

func TestOutreachFallbackOnEmptyModelBody(t *testing.T) {
	stub := &stubGenerator{reply: "Subject: Hi"}
	w := newTestWorkflow(t, stub, nil)

	email, err := w.Outreach(context.Background(), sampleReport(), candidate.DemoProfile(), LanguageEnglish, true, ai.ModelConfig{Provider: ai.ProviderOpenAI})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if email.Path != PathHeuristic {
		t.Fatalf("expected template fallback, got %q", email.Path)
	}

	if !strings.Contains(email.Body, "Dear Dr. Ada Zhang") {
		t.Fatalf("expected template body, got %q", email.Body)
	}
}

func TestOutreachUnknownCandidateSalutation(t *testing.T) {
	report := sampleReport()
	report.Candidate = candidate.UnknownName
	profile := candidate.NewProfile()

	w := newTestWorkflow(t, &stubGenerator{}, nil)

	english, err := w.Outreach(context.Background(), report, profile, LanguageEnglish, false, ai.ModelConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(english.Body, "Dear Colleague") {
		t.Fatalf("expected generic salutation, got %q", english.Body)
	}

	chinese, err := w.Outreach(context.Background(), report, profile, LanguageChinese, false, ai.ModelConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(chinese.Body, "尊敬的老师") {
		t.Fatalf("expected generic chinese salutation, got %q", chinese.Body)
	}
}
