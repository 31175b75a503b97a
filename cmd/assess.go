package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"scholarscout/internal/ai"
	"scholarscout/internal/candidate"
	"scholarscout/internal/document"
	"scholarscout/internal/logger"
	"scholarscout/internal/workflow"
)

const (
	PromptOutreachEN  = "Draft outreach email (English)"
	PromptOutreachZH  = "Draft outreach email (中文)"
	PromptShowReport  = "Show the match report"
	PromptShowProfile = "Show the parsed profile"
	PromptExit        = "Exit"
)

var errExit = errors.New("exit requested")

var assessPrompt = promptui.Select{
	Label: "Next action",
	Items: []string{PromptOutreachEN, PromptOutreachZH, PromptShowReport, PromptShowProfile, PromptExit},
}

var assessCmd = &cobra.Command{
	Use:   "assess [resume-file]",
	Short: "Parse one resume, score it against a recruiting direction and draft outreach",
	Args:  cobra.MaximumNArgs(1),
	Run:   assess,
}

func init() {
	rootCmd.AddCommand(assessCmd)

	assessCmd.Flags().StringP("direction", "r", "", "recruiting direction to score the candidate against")
	assessCmd.Flags().Bool("use-llm", false, "call the configured model provider; plain heuristics otherwise")
	assessCmd.Flags().Bool("demo", false, "assess the built-in sample candidate instead of a file")
	assessCmd.Flags().BoolP("auto-approve", "y", false, "print the match report and exit without the action prompt")
}

// assess drives the full workflow for a single candidate.
func assess(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the "+app+" assessment", zap.String("version", version))

	useLLM := cmd.Flag("use-llm").Value.String() == "true"
	model := modelConfig(config, logger)
	flow := workflow.New(nil, instituteFromConfig(config), logger)

	record, err := assessRecord(ctx, cmd, args, flow, useLLM, model)
	if err != nil {
		logger.Fatal("loading the candidate", zap.Error(err))
	}

	logger.Info("candidate profile ready",
		zap.String("candidate", record.Profile.Name),
		zap.String("path", string(record.Path)),
	)

	printJSON(record.Profile)

	direction := cmd.Flag("direction").Value.String()
	if direction == "" {
		logger.Info("exiting", zap.String("reason", "no direction given; pass --direction to score the candidate"))
		return
	}

	report, err := flow.Match(ctx, record.Profile, direction, useLLM, model)
	if err != nil {
		logger.Fatal("matching the candidate", zap.Error(err))
	}

	logger.Info("match complete",
		zap.Int("suitability_score", report.Score),
		zap.String("path", string(report.Path)),
	)

	if cmd.Flag("auto-approve").Value.String() == "true" {
		printJSON(report)
		return
	}

	for {
		_, action, err := assessPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAssessAction(ctx, action, flow, record, report, useLLM, model); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// assessRecord loads the profile under assessment: the built-in sample
// candidate with --demo, otherwise the resume file argument.
func assessRecord(ctx context.Context, cmd *cobra.Command, args []string, flow *workflow.Workflow, useLLM bool, model ai.ModelConfig) (*workflow.ResumeRecord, error) {
	if cmd.Flag("demo").Value.String() == "true" {
		return &workflow.ResumeRecord{Profile: candidate.DemoProfile(), Path: workflow.PathHeuristic}, nil
	}

	if len(args) != 1 {
		return nil, errors.New("a resume file argument is required unless --demo is set")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("reading the resume file: %w", err)
	}

	text, err := document.ExtractText(filepath.Base(args[0]), "", data)
	if err != nil {
		return nil, fmt.Errorf("extracting resume text: %w", err)
	}

	return flow.ParseResume(ctx, text, useLLM, model), nil
}

func handleAssessAction(ctx context.Context, action string, flow *workflow.Workflow, record *workflow.ResumeRecord, report *workflow.MatchReport, useLLM bool, model ai.ModelConfig) error {
	switch action {
	case PromptOutreachEN:
		return draftAndPrint(ctx, flow, record, report, workflow.LanguageEnglish, useLLM, model)
	case PromptOutreachZH:
		return draftAndPrint(ctx, flow, record, report, workflow.LanguageChinese, useLLM, model)
	case PromptShowReport:
		printJSON(report)
		return nil
	case PromptShowProfile:
		printJSON(record.Profile)
		return nil
	case PromptExit:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func draftAndPrint(ctx context.Context, flow *workflow.Workflow, record *workflow.ResumeRecord, report *workflow.MatchReport, lang workflow.Language, useLLM bool, model ai.ModelConfig) error {
	draft, err := flow.Outreach(ctx, report, record.Profile, lang, useLLM, model)
	if err != nil {
		return err
	}

	fmt.Printf("Subject: %s\n\n%s\n", draft.Subject, draft.Body)

	return nil
}

func printJSON(v any) {
	// do not bother error since the value was built by this process
	pretty, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(pretty))
}
