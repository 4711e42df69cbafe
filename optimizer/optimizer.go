package optimizer

import (
	"context"
	"fmt"

	"github.com/teilomillet/dualprompt/config"
	"github.com/teilomillet/dualprompt/oracle"
	"github.com/teilomillet/dualprompt/utils"
)

// DualOptimizer runs the dual prompt optimization loop. One optimizer may
// serve many runs, but each run owns its SessionState exclusively; runs do
// not share mutable state.
type DualOptimizer struct {
	client   oracle.Client
	cfg      *config.Config
	logger   utils.Logger
	debug    *utils.DebugManager
	crossVal *CrossValidator
}

type Option func(*DualOptimizer)

// WithLogger overrides the default logger.
func WithLogger(logger utils.Logger) Option {
	return func(o *DualOptimizer) {
		o.logger = logger
	}
}

// WithDebugManager enables per-round artifact snapshots.
func WithDebugManager(dm *utils.DebugManager) Option {
	return func(o *DualOptimizer) {
		o.debug = dm
	}
}

// New creates a DualOptimizer from an oracle client and a validated config.
func New(client oracle.Client, cfg *config.Config, opts ...Option) (*DualOptimizer, error) {
	if client == nil {
		return nil, fmt.Errorf("oracle client is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	o := &DualOptimizer{
		client: client,
		cfg:    cfg,
		logger: utils.NewLogger(cfg.LogLevel),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.crossVal = NewCrossValidator(client, cfg, o.logger)
	return o, nil
}

// Run executes one optimization run over the given user input and initial
// artifacts. It returns an error only for invalid arguments; every oracle
// failure during the run resolves to a FinalResult in the StopFailure state
// with a diagnostic reason, never a partial round in history.
//
// Cancellation is cooperative and checked at round boundaries; a cancelled
// run finishes in StopFailure.
func (o *DualOptimizer) Run(ctx context.Context, userInput, systemPrompt, critiquePrompt string) (*FinalResult, error) {
	if userInput == "" || systemPrompt == "" || critiquePrompt == "" {
		return nil, fmt.Errorf("user input, system prompt, and critique prompt are all required")
	}

	state := &SessionState{
		SystemPrompt:   systemPrompt,
		CritiquePrompt: critiquePrompt,
	}
	bestPrompt := systemPrompt

	o.logger.Info("starting dual improvement run",
		"target_score", o.cfg.TargetScore,
		"confidence_target", o.cfg.ConfidenceTarget,
		"max_rounds", o.cfg.MaxRounds,
		"rubric_eval_every", o.cfg.RubricEvalEvery)

	for state.Round < o.cfg.MaxRounds {
		if err := ctx.Err(); err != nil {
			return o.finish(state, bestPrompt, StopFailure, fmt.Sprintf("run cancelled: %v", err)), nil
		}

		state.Round++
		round := state.Round
		promptUsed := state.SystemPrompt
		rubricUsed := state.CritiquePrompt

		// Step 1: generate a response with the current system prompt.
		response, err := o.client.GenerateText(ctx, o.cfg.GenerationModel, promptUsed, userInput)
		if err != nil {
			o.logger.Error("response generation failed", "round", round, "error", err)
			return o.finish(state, bestPrompt, StopFailure,
				fmt.Sprintf("round %d: response generation failed: %v", round, err)), nil
		}

		// Step 2: score the response with the current critique prompt.
		var critique CritiqueResult
		err = o.client.GenerateStructured(ctx, o.cfg.CritiqueModel, rubricUsed,
			critiqueInput(userInput, promptUsed, response), &critique)
		if err != nil {
			o.logger.Error("critique failed", "round", round, "error", err)
			return o.finish(state, bestPrompt, StopFailure,
				fmt.Sprintf("round %d: critique failed: %v", round, err)), nil
		}
		score := critique.Score

		// The delta against best is logged for readability only; control
		// decisions use the monotonic best score and validator statistics.
		o.logger.Info("round scored", "round", round, "score", score, "delta", score-state.BestScore)

		// Step 3: best-score tracking.
		if score > state.BestScore {
			state.BestScore = score
			bestPrompt = promptUsed
			state.RoundsWithoutImprovement = 0
		} else {
			state.RoundsWithoutImprovement++
		}

		// Critique reliability over history plus the in-flight round.
		provisional := append(append([]IterationRecord{}, state.History...),
			IterationRecord{Round: round, Score: score})
		validation := ValidateCritique(provisional, o.cfg.ValidationWindow, o.cfg.RubricImprovementThreshold)
		o.logger.Info("critique validation", "round", round, "reason", validation.Reason)

		// Step 4: meta-evaluate the critique prompt and revise it if weak.
		var meta *MetaEvaluation
		if o.rubricEvalDue(round, validation) {
			meta, err = o.evaluateRubric(ctx, state, round, userInput, promptUsed, response, critique)
			if err != nil {
				o.logger.Error("meta-evaluation failed", "round", round, "error", err)
				return o.finish(state, bestPrompt, StopFailure,
					fmt.Sprintf("round %d: meta-evaluation failed: %v", round, err)), nil
			}
		}

		// Step 5: improve the system prompt if the score falls short.
		if o.cfg.EnableArtifactImprovement && score < o.cfg.TargetScore && round < o.cfg.MaxRounds {
			o.improveArtifact(ctx, state, round, userInput, critique.Critique)
		}

		// Step 6: record the round.
		state.History = append(state.History, IterationRecord{
			Round:          round,
			SystemPrompt:   promptUsed,
			CritiquePrompt: rubricUsed,
			Response:       response,
			Score:          score,
			Critique:       critique.Critique,
			MetaEvaluation: meta,
			Validation:     &validation,
		})
		confidence := FinalConfidence(state.History, state.RubricImprovements,
			o.cfg.TargetScore, o.cfg.RubricImprovementThreshold, o.cfg.ValidationWindow)
		state.History[len(state.History)-1].Confidence = confidence
		o.logger.Info("overall confidence", "round", round, "confidence", confidence)

		if o.debug != nil {
			o.debug.SaveRound(round, state.History[len(state.History)-1])
		}

		// Step 7: termination. Target achievement is checked before the
		// patience check, so reaching the target always takes precedence.
		if score >= o.cfg.TargetScore && (o.cfg.ConfidenceTarget == 0 || confidence >= o.cfg.ConfidenceTarget) {
			return o.finish(state, bestPrompt, StopTargetMet,
				fmt.Sprintf("target score %d reached at round %d", o.cfg.TargetScore, round)), nil
		}
		if state.RoundsWithoutImprovement >= o.cfg.Patience {
			return o.finish(state, bestPrompt, StopNoProgress,
				fmt.Sprintf("no score improvement for %d rounds", o.cfg.Patience)), nil
		}
	}

	return o.finish(state, bestPrompt, StopMaxRounds,
		fmt.Sprintf("maximum rounds (%d) reached", o.cfg.MaxRounds)), nil
}

// rubricEvalDue reports whether this round should meta-evaluate the critique
// prompt: periodically, always on the first round, and whenever the
// reliability validator flags the rubric as currently unreliable.
func (o *DualOptimizer) rubricEvalDue(round int, validation ValidationReport) bool {
	if !o.cfg.EnableRubricImprovement {
		return false
	}
	return round%o.cfg.RubricEvalEvery == 0 || round == 1 || !validation.IsValid
}

// evaluateRubric requests a meta-evaluation of the critique prompt and, when
// the meta-score falls below the improvement threshold, a revision. An
// accepted revision replaces the active rubric and is recorded. A failed
// meta-evaluation is fatal (its meta-score feeds the trend statistics and a
// half-formed round would poison them); a failed revision merely keeps the
// current rubric.
func (o *DualOptimizer) evaluateRubric(ctx context.Context, state *SessionState, round int, userInput, systemPrompt, response string, critique CritiqueResult) (*MetaEvaluation, error) {
	o.logger.Info("evaluating critique prompt", "round", round)

	var meta MetaEvaluation
	err := o.client.GenerateStructured(ctx, o.cfg.MetaModel,
		metaCritiqueInstructions(o.cfg.MetaWeights),
		metaEvaluationInput(state.CritiquePrompt, userInput, systemPrompt, response, critique),
		&meta)
	if err != nil {
		return nil, err
	}

	o.logger.Info("critique prompt meta-score", "round", round, "meta_score", meta.MetaScore)

	if meta.MetaScore >= o.cfg.RubricImprovementThreshold {
		o.logger.Info("critique prompt performing well",
			"meta_score", meta.MetaScore, "threshold", o.cfg.RubricImprovementThreshold)
		return &meta, nil
	}

	o.logger.Info("improving critique prompt",
		"meta_score", meta.MetaScore, "threshold", o.cfg.RubricImprovementThreshold)

	improved, err := o.client.GenerateText(ctx, o.cfg.MetaModel,
		rubricRefinementInstructions, rubricRefinementInput(state.CritiquePrompt, meta))
	if err != nil || improved == "" {
		o.logger.Warn("critique prompt refinement failed, keeping current rubric", "round", round, "error", err)
		return &meta, nil
	}

	state.RubricImprovements = append(state.RubricImprovements, RubricImprovementRecord{
		Round:             round,
		MetaScore:         meta.MetaScore,
		MetaCritique:      meta.MetaCritique,
		OldCritiquePrompt: state.CritiquePrompt,
		NewCritiquePrompt: improved,
	})
	state.CritiquePrompt = improved
	o.logger.Info("critique prompt updated", "round", round)

	return &meta, nil
}

// improveArtifact requests a candidate system prompt revision and accepts it
// either directly (basic mode) or after cross-validation clears the
// acceptance bar (enhanced mode). Refinement failures keep the current
// prompt; the round proceeds.
func (o *DualOptimizer) improveArtifact(ctx context.Context, state *SessionState, round int, userInput, critiqueText string) {
	candidate, err := o.client.GenerateText(ctx, o.cfg.RefinementModel,
		artifactRefinementInstructions, artifactRefinementInput(state.SystemPrompt, critiqueText))
	if err != nil || candidate == "" {
		o.logger.Warn("system prompt refinement failed, keeping current prompt", "round", round, "error", err)
		return
	}

	if o.cfg.ValidationSamples > 0 {
		confidence := o.crossVal.Validate(ctx, state.SystemPrompt, candidate,
			state.CritiquePrompt, userInput, o.cfg.ValidationSamples)
		if confidence < AcceptanceConfidence {
			o.logger.Info("improvement rejected", "round", round, "confidence", confidence)
			return
		}
		o.logger.Info("improvement accepted", "round", round, "confidence", confidence)
	}

	state.SystemPrompt = candidate
}

// finish freezes the session into a FinalResult.
func (o *DualOptimizer) finish(state *SessionState, bestPrompt string, reason StopReason, detail string) *FinalResult {
	finalScore := 0
	if n := len(state.History); n > 0 {
		finalScore = state.History[n-1].Score
	}
	confidence := FinalConfidence(state.History, state.RubricImprovements,
		o.cfg.TargetScore, o.cfg.RubricImprovementThreshold, o.cfg.ValidationWindow)

	targetAchieved := finalScore >= o.cfg.TargetScore
	confidenceAchieved := o.cfg.ConfidenceTarget == 0 || confidence >= o.cfg.ConfidenceTarget

	o.logger.Info("run finished",
		"stop_reason", reason.String(),
		"detail", detail,
		"final_score", finalScore,
		"best_score", state.BestScore,
		"confidence", confidence,
		"rounds", state.Round,
		"rubric_improvements", len(state.RubricImprovements))

	return &FinalResult{
		FinalSystemPrompt:   state.SystemPrompt,
		FinalCritiquePrompt: state.CritiquePrompt,
		BestSystemPrompt:    bestPrompt,
		FinalScore:          finalScore,
		BestScore:           state.BestScore,
		FinalConfidence:     confidence,
		TotalRounds:         len(state.History),
		StopReason:          reason,
		Reason:              detail,
		TargetAchieved:      targetAchieved,
		ConfidenceAchieved:  confidenceAchieved,
		FullSuccess:         targetAchieved && confidenceAchieved,
		History:             state.History,
		RubricImprovements:  state.RubricImprovements,
	}
}
