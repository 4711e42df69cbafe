// Package optimizer implements the dual prompt optimization loop: a system
// prompt and the critique prompt that scores it are refined together across
// rounds by an external oracle, with statistical validation of the critique's
// reliability and cross-validated acceptance of improvements.
package optimizer

// CritiqueResult is the structured output of scoring one generated response
// with the critique prompt. Scores outside [1,100] are rejected at the oracle
// boundary, never clamped.
type CritiqueResult struct {
	Score    int    `json:"score" validate:"required,min=1,max=100"`
	Critique string `json:"critique"`
}

// MetaEvaluation is the structured output of judging the critique prompt
// itself. Produced at most once per round, on rubric-evaluation rounds.
type MetaEvaluation struct {
	MetaScore              int    `json:"meta_score" validate:"required,min=1,max=100"`
	MetaCritique           string `json:"meta_critique"`
	ImprovementSuggestions string `json:"improvement_suggestions"`
	IdentifiedIssues       string `json:"identified_issues"`
	CritiqueAccuracy       string `json:"critique_accuracy"`
}

// ValidationReport is the critique reliability assessment derived from the
// trailing window of iteration records. It is a pure function of history.
type ValidationReport struct {
	IsValid          bool   `json:"is_valid"`
	Confidence       int    `json:"confidence"`
	ConsistencyScore int    `json:"consistency_score"`
	TrendScore       int    `json:"trend_score"`
	MetaStability    int    `json:"meta_stability"`
	Reason           string `json:"reason"`
}

// IterationRecord captures everything one completed round used and produced.
// The prompt fields are snapshots of the artifacts as they were when the
// round's response was generated and scored; later rounds mutating the live
// artifacts do not affect past records.
type IterationRecord struct {
	Round          int               `json:"iteration"`
	SystemPrompt   string            `json:"system_prompt"`
	CritiquePrompt string            `json:"critique_prompt_used"`
	Response       string            `json:"response"`
	Score          int               `json:"score"`
	Critique       string            `json:"critique"`
	MetaEvaluation *MetaEvaluation   `json:"meta_evaluation,omitempty"`
	Validation     *ValidationReport `json:"critique_validation,omitempty"`
	Confidence     int               `json:"confidence"`
}

// RubricImprovementRecord is appended whenever a critique prompt revision is
// accepted.
type RubricImprovementRecord struct {
	Round             int    `json:"iteration"`
	MetaScore         int    `json:"meta_score"`
	MetaCritique      string `json:"meta_critique"`
	OldCritiquePrompt string `json:"old_critique_prompt"`
	NewCritiquePrompt string `json:"new_critique_prompt"`
}

// SessionState is the mutable state of one optimization run, owned
// exclusively by the controller for the run's duration.
type SessionState struct {
	SystemPrompt             string
	CritiquePrompt           string
	Round                    int
	BestScore                int
	RoundsWithoutImprovement int
	History                  []IterationRecord
	RubricImprovements       []RubricImprovementRecord
}

// StopReason is the terminal state of a finished run.
type StopReason int

const (
	StopTargetMet StopReason = iota
	StopNoProgress
	StopMaxRounds
	StopFailure
)

func (r StopReason) String() string {
	switch r {
	case StopTargetMet:
		return "target_met"
	case StopNoProgress:
		return "no_progress"
	case StopMaxRounds:
		return "max_rounds"
	case StopFailure:
		return "failure"
	default:
		return "unknown"
	}
}

func (r StopReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// FinalResult bundles everything a finished run produced, for reporting and
// audit. It is a read-only export; the optimizer never depends on anything
// being written back.
type FinalResult struct {
	FinalSystemPrompt   string                    `json:"final_system_prompt"`
	FinalCritiquePrompt string                    `json:"final_critique_prompt"`
	BestSystemPrompt    string                    `json:"best_system_prompt"`
	FinalScore          int                       `json:"final_score"`
	BestScore           int                       `json:"best_score"`
	FinalConfidence     int                       `json:"final_confidence"`
	TotalRounds         int                       `json:"total_iterations"`
	StopReason          StopReason                `json:"stop_reason"`
	Reason              string                    `json:"reason"`
	TargetAchieved      bool                      `json:"target_achieved"`
	ConfidenceAchieved  bool                      `json:"confidence_achieved"`
	FullSuccess         bool                      `json:"full_success"`
	History             []IterationRecord         `json:"history"`
	RubricImprovements  []RubricImprovementRecord `json:"critique_improvement_history"`
}
