// Package main provides the command-line interface for the dual prompt
// optimizer: it reads the user input and initial prompts from files, runs the
// optimization loop, and writes the result reports.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/teilomillet/dualprompt/config"
	"github.com/teilomillet/dualprompt/optimizer"
	"github.com/teilomillet/dualprompt/oracle"
	"github.com/teilomillet/dualprompt/utils"
)

type cmdFlags struct {
	inputFile          string
	systemPromptFile   string
	critiquePromptFile string
	outputPrefix       string
	logLevel           string
	targetScore        int
	maxRounds          int
	patience           int
	confidenceTarget   int
	validationSamples  int
	noRubric           bool
	noArtifact         bool
	saveIntermediate   bool
	basic              bool
}

func parseFlags() *cmdFlags {
	flags := &cmdFlags{}
	flag.StringVar(&flags.inputFile, "input", "user_input.txt", "File containing the user input")
	flag.StringVar(&flags.systemPromptFile, "system-prompt", "initial_system_prompt.txt", "File containing the initial system prompt")
	flag.StringVar(&flags.critiquePromptFile, "critique-prompt", "critique_system_prompt.txt", "File containing the initial critique prompt")
	flag.StringVar(&flags.outputPrefix, "output-prefix", "", "Prefix for result files (default from config)")
	flag.StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.IntVar(&flags.targetScore, "target", 0, "Target score (1-100)")
	flag.IntVar(&flags.maxRounds, "max-rounds", 0, "Maximum optimization rounds")
	flag.IntVar(&flags.patience, "patience", 0, "Rounds without improvement before early stopping")
	flag.IntVar(&flags.confidenceTarget, "confidence-target", -1, "Confidence target (0 disables the confidence gate)")
	flag.IntVar(&flags.validationSamples, "samples", -1, "Cross-validation sample count (0 disables cross-validation)")
	flag.BoolVar(&flags.noRubric, "no-rubric-improvement", false, "Disable critique prompt improvement")
	flag.BoolVar(&flags.noArtifact, "no-artifact-improvement", false, "Disable system prompt improvement")
	flag.BoolVar(&flags.saveIntermediate, "save-intermediate", false, "Save a JSON snapshot after each round")
	flag.BoolVar(&flags.basic, "basic", false, "Basic mode: no confidence gate, no cross-validation")
	flag.Parse()
	return flags
}

func buildConfig(flags *cmdFlags) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if flags.targetScore > 0 {
		cfg.TargetScore = flags.targetScore
	}
	if flags.maxRounds > 0 {
		cfg.MaxRounds = flags.maxRounds
	}
	if flags.patience > 0 {
		cfg.Patience = flags.patience
	}
	if flags.confidenceTarget >= 0 {
		cfg.ConfidenceTarget = flags.confidenceTarget
	}
	if flags.validationSamples >= 0 {
		cfg.ValidationSamples = flags.validationSamples
	}
	if flags.basic {
		cfg.ConfidenceTarget = 0
		cfg.ValidationSamples = 0
	}
	if flags.noRubric {
		cfg.EnableRubricImprovement = false
	}
	if flags.noArtifact {
		cfg.EnableArtifactImprovement = false
	}
	if flags.outputPrefix != "" {
		cfg.OutputPrefix = flags.outputPrefix
	}
	if flags.saveIntermediate {
		cfg.SaveIntermediate = true
	}
	if flags.logLevel != "" {
		var level utils.LogLevel
		if err := level.UnmarshalText([]byte(flags.logLevel)); err != nil {
			return nil, err
		}
		cfg.LogLevel = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func readFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return strings.TrimSpace(string(content)), nil
}

func main() {
	flags := parseFlags()

	cfg, err := buildConfig(flags)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	userInput, err := readFile(flags.inputFile)
	if err != nil {
		log.Fatalf("%v", err)
	}
	systemPrompt, err := readFile(flags.systemPromptFile)
	if err != nil {
		log.Fatalf("%v", err)
	}
	critiquePrompt, err := readFile(flags.critiquePromptFile)
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := utils.NewLogger(cfg.LogLevel)
	client, err := oracle.NewAnthropicClient(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create oracle client: %v", err)
	}

	opts := []optimizer.Option{optimizer.WithLogger(logger)}
	if cfg.SaveIntermediate {
		opts = append(opts, optimizer.WithDebugManager(utils.NewDebugManager(logger, utils.DebugOptions{
			Enabled:    true,
			SaveToFile: true,
		})))
	}

	opt, err := optimizer.New(client, cfg, opts...)
	if err != nil {
		log.Fatalf("Failed to create optimizer: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := opt.Run(ctx, userInput, systemPrompt, critiquePrompt)
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	if err := saveResults(result, cfg, timestamp); err != nil {
		log.Fatalf("Failed to save results: %v", err)
	}

	printSummary(result, cfg, timestamp)
}

func saveResults(result *optimizer.FinalResult, cfg *config.Config, timestamp string) error {
	files := map[string]string{
		fmt.Sprintf("improved_system_prompt_%s.txt", timestamp):   result.FinalSystemPrompt,
		fmt.Sprintf("improved_critique_prompt_%s.txt", timestamp): result.FinalCritiquePrompt,
		fmt.Sprintf("summary_report_%s.md", timestamp):            summaryReport(result, cfg, timestamp),
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	files[fmt.Sprintf("%s_results_%s.json", cfg.OutputPrefix, timestamp)] = string(payload)

	for name, content := range files {
		if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

func summaryReport(result *optimizer.FinalResult, cfg *config.Config, timestamp string) string {
	achieved := "No"
	if result.TargetAchieved {
		achieved = "Yes"
	}
	success := "No"
	if result.FullSuccess {
		success = "Yes"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Dual Prompt Improvement Results - %s\n\n", timestamp)
	fmt.Fprintf(&sb, "## Summary\n")
	fmt.Fprintf(&sb, "- **Final System Prompt Score**: %d/100\n", result.FinalScore)
	fmt.Fprintf(&sb, "- **Best Score Achieved**: %d/100\n", result.BestScore)
	fmt.Fprintf(&sb, "- **Target Score**: %d/100\n", cfg.TargetScore)
	fmt.Fprintf(&sb, "- **Target Achieved**: %s\n", achieved)
	fmt.Fprintf(&sb, "- **Final Confidence**: %d%%\n", result.FinalConfidence)
	fmt.Fprintf(&sb, "- **Full Success**: %s\n", success)
	fmt.Fprintf(&sb, "- **Total Rounds**: %d\n", result.TotalRounds)
	fmt.Fprintf(&sb, "- **Stop Reason**: %s (%s)\n", result.StopReason, result.Reason)
	fmt.Fprintf(&sb, "- **Critique Improvements**: %d\n", len(result.RubricImprovements))

	if len(result.History) > 0 {
		first := result.History[0].Score
		bestRound := 0
		for _, rec := range result.History {
			if rec.Score == result.BestScore {
				bestRound = rec.Round
				break
			}
		}
		fmt.Fprintf(&sb, "\n## Performance\n")
		fmt.Fprintf(&sb, "- **Score Improvement**: %d points\n", result.BestScore-first)
		fmt.Fprintf(&sb, "- **Rounds to Best**: %d\n", bestRound)
	}

	fmt.Fprintf(&sb, "\n## Files Generated\n")
	fmt.Fprintf(&sb, "- `improved_system_prompt_%s.txt` - Final optimized system prompt\n", timestamp)
	fmt.Fprintf(&sb, "- `improved_critique_prompt_%s.txt` - Final optimized critique prompt\n", timestamp)
	fmt.Fprintf(&sb, "- `%s_results_%s.json` - Complete results and history\n", cfg.OutputPrefix, timestamp)

	return sb.String()
}

func printSummary(result *optimizer.FinalResult, cfg *config.Config, timestamp string) {
	fmt.Printf("\nDual improvement process completed\n")
	fmt.Printf("Final score: %d/100 (target %d)\n", result.FinalScore, cfg.TargetScore)
	fmt.Printf("Best score: %d/100\n", result.BestScore)
	fmt.Printf("Confidence: %d%%\n", result.FinalConfidence)
	fmt.Printf("Stop reason: %s\n", result.StopReason)
	fmt.Printf("Results saved with timestamp: %s\n", timestamp)
}
