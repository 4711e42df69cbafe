package optimizer

import (
	"fmt"
	"math"
)

// ValidateCritique computes a statistical confidence that the critique prompt
// is producing trustworthy, stable scores. It is a pure function of the
// trailing window of iteration records.
//
// Three signals are blended:
//   - consistency: wildly oscillating scores indicate an unstable rubric, so
//     a low standard deviation is rewarded: max(0, 100 - 2σ).
//   - trend: scores should rise while the artifact is actively improved:
//     clamp(50 + 2·(last - first), 0, 100).
//   - meta-stability: a rubric that meta-evaluation has judged reliable gets
//     full credit; otherwise the mean meta-score stands as-is.
//
// With fewer than two records reliability cannot yet be disproved, so a
// neutral report with confidence 50 and validity true is returned.
func ValidateCritique(history []IterationRecord, window, improvementThreshold int) ValidationReport {
	if len(history) < 2 {
		return ValidationReport{
			IsValid:    true,
			Confidence: 50,
			Reason:     "Insufficient history",
		}
	}

	if window < 2 {
		window = DefaultValidationWindow
	}
	recent := history
	if len(recent) > window {
		recent = recent[len(recent)-window:]
	}

	scores := make([]float64, len(recent))
	for i, rec := range recent {
		scores[i] = float64(rec.Score)
	}

	consistency := math.Max(0, 100-sampleStdDev(scores)*2)
	trend := clamp(50+(scores[len(scores)-1]-scores[0])*2, 0, 100)

	var metaScores []float64
	for _, rec := range recent {
		if rec.MetaEvaluation != nil {
			metaScores = append(metaScores, float64(rec.MetaEvaluation.MetaScore))
		}
	}
	var metaStability float64
	if len(metaScores) > 0 {
		if avg := mean(metaScores); avg >= float64(improvementThreshold) {
			metaStability = 100
		} else {
			metaStability = avg
		}
	}

	confidence := consistency*0.4 + trend*0.4 + metaStability*0.2

	return ValidationReport{
		IsValid:          confidence >= ValidityThreshold,
		Confidence:       int(math.Round(confidence)),
		ConsistencyScore: int(math.Round(consistency)),
		TrendScore:       int(math.Round(trend)),
		MetaStability:    int(math.Round(metaStability)),
		Reason: fmt.Sprintf("Confidence: %.1f%% (Consistency: %.1f, Trend: %.1f, Meta: %.1f)",
			confidence, consistency, trend, metaStability),
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev returns the sample standard deviation (n-1 denominator).
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
