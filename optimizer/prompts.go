package optimizer

import (
	"fmt"

	"github.com/teilomillet/dualprompt/config"
)

// critiqueInput assembles the payload scored by the critique prompt.
func critiqueInput(userInput, systemPrompt, response string) string {
	return fmt.Sprintf("User Input: %s\nSystem Prompt: %s\nResponse: %s", userInput, systemPrompt, response)
}

// metaCritiqueInstructions builds the system prompt for judging the critique
// prompt itself, with the configured dimension weights interpolated.
func metaCritiqueInstructions(w config.MetaWeights) string {
	return fmt.Sprintf(`You are Dr. Meta-Critic, the world's foremost expert in evaluating AI critique systems. Your specialization is assessing how well critique prompts perform at evaluating system prompts.

You will evaluate a critique prompt's performance across these weighted dimensions (total 100 points):

**Evaluation Criteria:**

1. **Issue Identification Accuracy (%d points)**:
   - Did it accurately identify real problems in the system prompt?
   - Did it miss critical issues?
   - Did it flag non-issues as problems?
   - How precisely did it pinpoint the root causes?

2. **Scoring Calibration (%d points)**:
   - Is the score appropriate for the actual quality of the system prompt and response?
   - Is it well-calibrated (not too harsh or too lenient)?
   - Does the score align with the severity of issues identified?

3. **Actionability & Specificity (%d points)**:
   - Are suggestions concrete and implementable?
   - Do they provide specific guidance on HOW to improve?
   - Are the recommendations relevant to the core issues?

4. **Comprehensiveness (%d points)**:
   - Did it cover all important aspects of system prompt quality?
   - Are there missing evaluation dimensions?
   - Is the analysis thorough enough?

5. **Consistency & Logic (%d points)**:
   - Is the critique internally consistent?
   - Do individual assessments align with the final score?
   - Is the reasoning sound and logical?

**Analysis Process:**
1. First, independently assess what the real issues are with the system prompt
2. Compare this with what the critique prompt identified
3. Evaluate the appropriateness of the score given
4. Assess the quality and actionability of suggestions
5. Check for comprehensiveness and consistency

Provide your assessment as JSON with:
- "meta_critique": Detailed analysis of the critique prompt's performance
- "meta_score": Score from 1-100 for critique prompt quality
- "improvement_suggestions": Specific suggestions for improving the critique prompt
- "identified_issues": What you independently identified as the real issues
- "critique_accuracy": How well the critique prompt identified these real issues`,
		w.IssueIdentification, w.ScoringCalibration, w.Actionability, w.Comprehensiveness, w.Consistency)
}

// metaEvaluationInput assembles the evidence the meta-critic judges.
func metaEvaluationInput(critiquePrompt, userInput, systemPrompt, response string, critique CritiqueResult) string {
	return fmt.Sprintf(`CRITIQUE PROMPT BEING EVALUATED:
%s

USER INPUT:
%s

SYSTEM PROMPT BEING CRITIQUED:
%s

GENERATED RESPONSE:
%s

CRITIQUE OUTPUT:
Score: %d
Critique: %s`, critiquePrompt, userInput, systemPrompt, response, critique.Score, critique.Critique)
}

const rubricRefinementInstructions = `You are an expert architect of AI critique systems. Your task is to enhance critique prompts to make them more accurate, comprehensive, and effective at evaluating system prompts.

Based on the meta-evaluation feedback provided, improve the critique prompt by:

1. **Addressing Specific Weaknesses**: Fix the exact issues identified in the meta-evaluation
2. **Improving Scoring Calibration**: Enhance scoring guidelines to be more accurate and consistent
3. **Enhancing Actionability**: Make suggestions more specific and implementable
4. **Adding Missing Dimensions**: Include any evaluation aspects that were overlooked
5. **Maintaining Strengths**: Preserve what's working well in the current prompt
6. **Structural Improvements**: Optimize the format and flow for better AI comprehension

**Enhancement Strategies:**
- Add more detailed scoring rubrics if calibration is off
- Include specific examples if actionability is poor
- Expand evaluation dimensions if comprehensiveness is lacking
- Clarify instructions if consistency is an issue
- Reorganize structure if logic flow is problematic

Return ONLY the improved critique prompt, ready for immediate use. Maintain the JSON output format requirement.`

func rubricRefinementInput(critiquePrompt string, meta MetaEvaluation) string {
	return fmt.Sprintf(`CURRENT CRITIQUE PROMPT:
%s

META-EVALUATION FEEDBACK:
Meta-Score: %d/100
Analysis: %s
Improvement Suggestions: %s
Real Issues Identified: %s
Critique Accuracy Assessment: %s`,
		critiquePrompt, meta.MetaScore, meta.MetaCritique,
		meta.ImprovementSuggestions, meta.IdentifiedIssues, meta.CritiqueAccuracy)
}

const artifactRefinementInstructions = `You are an elite system prompt engineer specializing in transforming good prompts into exceptional ones.

Your task is to refine the given system prompt to address ALL issues identified in the critique while maintaining its core functionality and strengths.

**Improvement Strategy:**
1. **Address Every Issue**: Systematically fix each problem mentioned in the critique
2. **Preserve Strengths**: Keep what's working well
3. **Enhance Clarity**: Make instructions more precise and unambiguous
4. **Improve Structure**: Optimize organization and flow
5. **Add Missing Elements**: Include any crucial components that were absent
6. **Strengthen Constraints**: Better define boundaries and limitations
7. **Optimize for AI**: Ensure the prompt works well with AI reasoning patterns

**Quality Standards:**
- Every instruction should be clear and actionable
- The prompt should be comprehensive yet efficient
- It should handle edge cases and ambiguities
- The structure should facilitate AI understanding
- All constraints should be explicitly defined

Return ONLY the improved system prompt, ready for immediate deployment.`

func artifactRefinementInput(systemPrompt, critiqueText string) string {
	return fmt.Sprintf(`CURRENT SYSTEM PROMPT:
%s

CRITIQUE TO ADDRESS:
%s

Please provide an improved version that addresses all the issues raised while maintaining the prompt's core purpose and effectiveness.`,
		systemPrompt, critiqueText)
}

const variationInstructions = `You are a test case generator. Create realistic variations.`

func variationInput(count int, userInput string) string {
	return fmt.Sprintf(`Generate %d variations of this user input that test similar capabilities:

Original: %s

Return as JSON array: ["variation1", "variation2", ...]`, count, userInput)
}
