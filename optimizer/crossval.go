package optimizer

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/teilomillet/dualprompt/config"
	"github.com/teilomillet/dualprompt/oracle"
	"github.com/teilomillet/dualprompt/utils"
)

// CrossValidator empirically compares a candidate system prompt against its
// predecessor before the candidate is accepted.
type CrossValidator struct {
	client oracle.Client
	cfg    *config.Config
	logger utils.Logger
}

// NewCrossValidator creates a cross-validator sharing the run's oracle client.
func NewCrossValidator(client oracle.Client, cfg *config.Config, logger utils.Logger) *CrossValidator {
	return &CrossValidator{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Validate scores both prompts across up to samples test inputs and returns
// the empirical confidence (0-100) that newPrompt is an improvement:
// clamp(50 + 2·(mean(new) - mean(old)), 0, 100).
//
// The test inputs are the base input plus oracle-generated variations probing
// the same capability; if variation generation fails the base input fills the
// remaining slots. Samples are evaluated concurrently and aggregated
// unordered. If either score set ends up empty the result is a neutral 50,
// which sits below the acceptance bar: an unmeasurable improvement neither
// blocks the run nor manufactures false confidence.
func (cv *CrossValidator) Validate(ctx context.Context, oldPrompt, newPrompt, critiquePrompt, baseInput string, samples int) float64 {
	if samples < 1 {
		samples = 1
	}
	inputs := cv.testInputs(ctx, baseInput, samples)

	var mu sync.Mutex
	var oldScores, newScores []float64

	g, gctx := errgroup.WithContext(ctx)
	for _, input := range inputs {
		input := input
		g.Go(func() error {
			// Per-sample failures drop the sample, they never fail the
			// round. Old and new sides are scored independently.
			if score, ok := cv.scorePrompt(gctx, oldPrompt, critiquePrompt, input); ok {
				mu.Lock()
				oldScores = append(oldScores, score)
				mu.Unlock()
			}
			if score, ok := cv.scorePrompt(gctx, newPrompt, critiquePrompt, input); ok {
				mu.Lock()
				newScores = append(newScores, score)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(oldScores) == 0 || len(newScores) == 0 {
		cv.logger.Warn("cross-validation produced no comparable scores, returning neutral confidence")
		return NeutralConfidence
	}

	oldAvg := mean(oldScores)
	newAvg := mean(newScores)
	improvement := newAvg - oldAvg
	confidence := clamp(50+improvement*2, 0, 100)

	cv.logger.Info("cross-validation complete",
		"old_avg", oldAvg, "new_avg", newAvg, "improvement", improvement, "confidence", confidence)

	return confidence
}

// testInputs builds the sample set: the base input first, then oracle
// variations. Variation generation is best effort.
func (cv *CrossValidator) testInputs(ctx context.Context, baseInput string, samples int) []string {
	inputs := []string{baseInput}
	if samples <= 1 {
		return inputs
	}

	var variations []string
	err := cv.client.GenerateStructured(ctx, cv.cfg.GenerationModel,
		variationInstructions, variationInput(samples-1, baseInput), &variations)
	if err != nil {
		cv.logger.Warn("variation generation failed, reusing base input", "error", err)
	}
	for _, v := range variations {
		if len(inputs) < samples && v != "" {
			inputs = append(inputs, v)
		}
	}
	for len(inputs) < samples {
		inputs = append(inputs, baseInput)
	}
	return inputs
}

// scorePrompt generates a response with the given system prompt and scores it
// with the active critique prompt.
func (cv *CrossValidator) scorePrompt(ctx context.Context, systemPrompt, critiquePrompt, input string) (float64, bool) {
	response, err := cv.client.GenerateText(ctx, cv.cfg.GenerationModel, systemPrompt, input)
	if err != nil {
		cv.logger.Warn("cross-validation response generation failed", "error", err)
		return 0, false
	}

	var critique CritiqueResult
	err = cv.client.GenerateStructured(ctx, cv.cfg.CritiqueModel, critiquePrompt,
		critiqueInput(input, systemPrompt, response), &critique)
	if err != nil {
		cv.logger.Warn("cross-validation critique failed", "error", err)
		return 0, false
	}

	return float64(critique.Score), true
}
