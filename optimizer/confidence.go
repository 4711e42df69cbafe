package optimizer

import "math"

// FinalConfidence blends three signals into one overall confidence percentage
// for the run so far:
//   - target achievement: 100 once the final score clears the target,
//     proportional below it;
//   - score stability: the critique reliability validator's confidence over
//     the history;
//   - rubric quality: the last accepted rubric revision's meta-score plus a
//     bonus for the revision having happened at all, zero if the rubric was
//     never revised.
//
// It is recomputed from scratch every round since history only grows.
func FinalConfidence(history []IterationRecord, rubricHistory []RubricImprovementRecord, targetScore, improvementThreshold, window int) int {
	if len(history) == 0 {
		return 0
	}

	finalScore := float64(history[len(history)-1].Score)
	target := float64(targetScore)

	targetAchievement := 100.0
	if finalScore < target {
		targetAchievement = finalScore / target * 100
	}

	stability := float64(ValidateCritique(history, window, improvementThreshold).Confidence)

	var rubricQuality float64
	if n := len(rubricHistory); n > 0 {
		rubricQuality = math.Min(100, float64(rubricHistory[n-1].MetaScore)+10)
	}

	return int(math.Round(targetAchievement*0.4 + stability*0.3 + rubricQuality*0.3))
}
