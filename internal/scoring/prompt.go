package scoring

import "fmt"

const evaluationPrompt = `You are an interview evaluator. Compare the candidate's response to the reference answer.
- Candidate Response: %s
- Reference Answer: %s
Give a score between 0 and 10 based on relevance, completeness, and correctness.
Only return a numeric score between 0 and 10 with no extra text.`

func buildPrompt(candidate, reference string) string {
	return fmt.Sprintf(evaluationPrompt, candidate, reference)
}
