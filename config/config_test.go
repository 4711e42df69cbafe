package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teilomillet/dualprompt/utils"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, 95, cfg.TargetScore)
	assert.Equal(t, 15, cfg.MaxRounds)
	assert.Equal(t, 3, cfg.RubricEvalEvery)
	assert.Equal(t, 85, cfg.RubricImprovementThreshold)
	assert.Equal(t, 3, cfg.Patience)
	assert.Equal(t, 90, cfg.ConfidenceTarget)
	assert.Equal(t, 2, cfg.ValidationSamples)
	assert.Equal(t, 3, cfg.ValidationWindow)
	assert.True(t, cfg.EnableRubricImprovement)
	assert.True(t, cfg.EnableArtifactImprovement)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, utils.LogLevelInfo, cfg.LogLevel)

	weights := cfg.MetaWeights
	sum := weights.IssueIdentification + weights.ScoringCalibration +
		weights.Actionability + weights.Comprehensiveness + weights.Consistency
	assert.Equal(t, 100, sum)

	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	t.Setenv("DUALPROMPT_TARGET_SCORE", "80")
	t.Setenv("DUALPROMPT_MAX_ROUNDS", "7")
	t.Setenv("DUALPROMPT_CONFIDENCE_TARGET", "0")
	t.Setenv("DUALPROMPT_TIMEOUT", "30s")
	t.Setenv("DUALPROMPT_ENABLE_RUBRIC_IMPROVEMENT", "false")
	t.Setenv("DUALPROMPT_LOG_LEVEL", "DEBUG")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, 80, cfg.TargetScore)
	assert.Equal(t, 7, cfg.MaxRounds)
	assert.Equal(t, 0, cfg.ConfidenceTarget)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.False(t, cfg.EnableRubricImprovement)
	assert.Equal(t, utils.LogLevelDebug, cfg.LogLevel)

	// Unset variables keep their defaults.
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.GenerationModel)
	assert.Equal(t, 3, cfg.Patience)
}

func TestApplyOptions(t *testing.T) {
	cfg := NewConfig()
	ApplyOptions(cfg,
		SetTargetScore(70),
		SetMaxRounds(5),
		SetPatience(2),
		SetConfidenceTarget(0),
		SetValidationSamples(0),
		SetEnableArtifactImprovement(false),
		SetGenerationModel("other-model"),
		SetAPIKey("option-key"),
	)

	assert.Equal(t, 70, cfg.TargetScore)
	assert.Equal(t, 5, cfg.MaxRounds)
	assert.Equal(t, 2, cfg.Patience)
	assert.Equal(t, 0, cfg.ConfidenceTarget)
	assert.Equal(t, 0, cfg.ValidationSamples)
	assert.False(t, cfg.EnableArtifactImprovement)
	assert.Equal(t, "other-model", cfg.GenerationModel)
	assert.Equal(t, "option-key", cfg.APIKey)

	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsOutOfRangeValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"target score above 100", func(c *Config) { c.TargetScore = 101 }},
		{"target score zero", func(c *Config) { c.TargetScore = 0 }},
		{"max rounds zero", func(c *Config) { c.MaxRounds = 0 }},
		{"patience zero", func(c *Config) { c.Patience = 0 }},
		{"negative validation samples", func(c *Config) { c.ValidationSamples = -1 }},
		{"validation window below 2", func(c *Config) { c.ValidationWindow = 1 }},
		{"confidence target above 100", func(c *Config) { c.ConfidenceTarget = 150 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
