// Package config holds the configuration for a dual prompt optimization run.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"github.com/teilomillet/dualprompt/utils"
)

// MetaWeights controls how the rubric prompt itself is judged during
// meta-evaluation. The five dimensions should sum to 100.
type MetaWeights struct {
	IssueIdentification int `env:"DUALPROMPT_META_WEIGHT_ISSUES" envDefault:"25"`
	ScoringCalibration  int `env:"DUALPROMPT_META_WEIGHT_CALIBRATION" envDefault:"20"`
	Actionability       int `env:"DUALPROMPT_META_WEIGHT_ACTIONABILITY" envDefault:"25"`
	Comprehensiveness   int `env:"DUALPROMPT_META_WEIGHT_COMPREHENSIVENESS" envDefault:"15"`
	Consistency         int `env:"DUALPROMPT_META_WEIGHT_CONSISTENCY" envDefault:"15"`
}

// Config carries every tunable of the optimization loop and the oracle
// client. Zero-config use works through LoadConfig (environment variables)
// or NewConfig (library defaults) plus functional options.
type Config struct {
	// Model routing: distinct models may serve each call site.
	GenerationModel string `env:"DUALPROMPT_GENERATION_MODEL" envDefault:"claude-sonnet-4-20250514"`
	CritiqueModel   string `env:"DUALPROMPT_CRITIQUE_MODEL" envDefault:"claude-sonnet-4-20250514"`
	RefinementModel string `env:"DUALPROMPT_REFINEMENT_MODEL" envDefault:"claude-sonnet-4-20250514"`
	MetaModel       string `env:"DUALPROMPT_META_MODEL" envDefault:"claude-sonnet-4-20250514"`

	APIKey   string        `env:"ANTHROPIC_API_KEY"`
	Endpoint string        `env:"DUALPROMPT_ENDPOINT" envDefault:"https://api.anthropic.com/v1/messages"`
	Timeout  time.Duration `env:"DUALPROMPT_TIMEOUT" envDefault:"90s"`

	// Loop parameters.
	TargetScore                int `env:"DUALPROMPT_TARGET_SCORE" envDefault:"95" validate:"min=1,max=100"`
	MaxRounds                  int `env:"DUALPROMPT_MAX_ROUNDS" envDefault:"15" validate:"min=1"`
	RubricEvalEvery            int `env:"DUALPROMPT_RUBRIC_EVAL_EVERY" envDefault:"3" validate:"min=1"`
	RubricImprovementThreshold int `env:"DUALPROMPT_RUBRIC_THRESHOLD" envDefault:"85" validate:"min=1,max=100"`
	Patience                   int `env:"DUALPROMPT_PATIENCE" envDefault:"3" validate:"min=1"`

	// Enhanced loop parameters. A ConfidenceTarget of 0 disables the
	// confidence gate on target achievement; ValidationSamples of 0
	// disables cross-validation of artifact improvements.
	ConfidenceTarget  int `env:"DUALPROMPT_CONFIDENCE_TARGET" envDefault:"90" validate:"min=0,max=100"`
	ValidationSamples int `env:"DUALPROMPT_VALIDATION_SAMPLES" envDefault:"2" validate:"min=0"`
	ValidationWindow  int `env:"DUALPROMPT_VALIDATION_WINDOW" envDefault:"3" validate:"min=2"`

	EnableRubricImprovement   bool `env:"DUALPROMPT_ENABLE_RUBRIC_IMPROVEMENT" envDefault:"true"`
	EnableArtifactImprovement bool `env:"DUALPROMPT_ENABLE_ARTIFACT_IMPROVEMENT" envDefault:"true"`

	MetaWeights MetaWeights

	// Oracle client behavior.
	MaxResponseTokens int           `env:"DUALPROMPT_MAX_RESPONSE_TOKENS" envDefault:"8000" validate:"min=1"`
	MaxPromptTokens   int           `env:"DUALPROMPT_MAX_PROMPT_TOKENS" envDefault:"50000" validate:"min=1"`
	MaxRetries        int           `env:"DUALPROMPT_MAX_RETRIES" envDefault:"3" validate:"min=0"`
	RetryDelay        time.Duration `env:"DUALPROMPT_RETRY_DELAY" envDefault:"2s"`
	RateLimitInterval time.Duration `env:"DUALPROMPT_RATE_LIMIT_INTERVAL" envDefault:"3s"`

	// Output behavior.
	LogLevel         utils.LogLevel `env:"DUALPROMPT_LOG_LEVEL" envDefault:"INFO"`
	SaveIntermediate bool           `env:"DUALPROMPT_SAVE_INTERMEDIATE" envDefault:"false"`
	OutputPrefix     string         `env:"DUALPROMPT_OUTPUT_PREFIX" envDefault:"dual_improvement"`
}

// LoadConfig builds a Config from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewConfig returns a Config with library defaults, suitable for tests and
// embedding without touching the environment.
func NewConfig() *Config {
	return &Config{
		GenerationModel:            "claude-sonnet-4-20250514",
		CritiqueModel:              "claude-sonnet-4-20250514",
		RefinementModel:            "claude-sonnet-4-20250514",
		MetaModel:                  "claude-sonnet-4-20250514",
		Endpoint:                   "https://api.anthropic.com/v1/messages",
		Timeout:                    90 * time.Second,
		TargetScore:                95,
		MaxRounds:                  15,
		RubricEvalEvery:            3,
		RubricImprovementThreshold: 85,
		Patience:                   3,
		ConfidenceTarget:           90,
		ValidationSamples:          2,
		ValidationWindow:           3,
		EnableRubricImprovement:    true,
		EnableArtifactImprovement:  true,
		MetaWeights: MetaWeights{
			IssueIdentification: 25,
			ScoringCalibration:  20,
			Actionability:       25,
			Comprehensiveness:   15,
			Consistency:         15,
		},
		MaxResponseTokens: 8000,
		MaxPromptTokens:   50000,
		MaxRetries:        3,
		RetryDelay:        2 * time.Second,
		RateLimitInterval: 3 * time.Second,
		LogLevel:          utils.LogLevelInfo,
		OutputPrefix:      "dual_improvement",
	}
}

var validate = validator.New()

// Validate checks numeric bounds on the configuration.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

type ConfigOption func(*Config)

// ApplyOptions applies the given options to the config.
func ApplyOptions(cfg *Config, opts ...ConfigOption) {
	for _, opt := range opts {
		opt(cfg)
	}
}

func SetTargetScore(score int) ConfigOption {
	return func(c *Config) {
		c.TargetScore = score
	}
}

func SetMaxRounds(rounds int) ConfigOption {
	return func(c *Config) {
		c.MaxRounds = rounds
	}
}

func SetRubricEvalEvery(every int) ConfigOption {
	return func(c *Config) {
		c.RubricEvalEvery = every
	}
}

func SetRubricImprovementThreshold(threshold int) ConfigOption {
	return func(c *Config) {
		c.RubricImprovementThreshold = threshold
	}
}

func SetPatience(patience int) ConfigOption {
	return func(c *Config) {
		c.Patience = patience
	}
}

func SetConfidenceTarget(target int) ConfigOption {
	return func(c *Config) {
		c.ConfidenceTarget = target
	}
}

func SetValidationSamples(samples int) ConfigOption {
	return func(c *Config) {
		c.ValidationSamples = samples
	}
}

func SetValidationWindow(window int) ConfigOption {
	return func(c *Config) {
		c.ValidationWindow = window
	}
}

func SetEnableRubricImprovement(enabled bool) ConfigOption {
	return func(c *Config) {
		c.EnableRubricImprovement = enabled
	}
}

func SetEnableArtifactImprovement(enabled bool) ConfigOption {
	return func(c *Config) {
		c.EnableArtifactImprovement = enabled
	}
}

func SetGenerationModel(model string) ConfigOption {
	return func(c *Config) {
		c.GenerationModel = model
	}
}

func SetCritiqueModel(model string) ConfigOption {
	return func(c *Config) {
		c.CritiqueModel = model
	}
}

func SetRefinementModel(model string) ConfigOption {
	return func(c *Config) {
		c.RefinementModel = model
	}
}

func SetMetaModel(model string) ConfigOption {
	return func(c *Config) {
		c.MetaModel = model
	}
}

func SetLogLevel(level utils.LogLevel) ConfigOption {
	return func(c *Config) {
		c.LogLevel = level
	}
}

func SetAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

func SetEndpoint(endpoint string) ConfigOption {
	return func(c *Config) {
		c.Endpoint = endpoint
	}
}
