package optimizer

// Tuning constants of the optimization loop.
const (
	// DefaultValidationWindow is the trailing record count used by the
	// critique reliability validator.
	DefaultValidationWindow = 3

	// ValidityThreshold is the minimum reliability confidence for the
	// critique prompt to be considered valid.
	ValidityThreshold = 70.0

	// AcceptanceConfidence is the minimum cross-validation confidence for
	// an artifact improvement to replace the active system prompt.
	AcceptanceConfidence = 60.0

	// NeutralConfidence is returned when cross-validation cannot measure an
	// improvement at all. It sits below the acceptance bar on purpose:
	// unverified improvements are rejected, not waved through.
	NeutralConfidence = 50.0
)
