package ai

import "fmt"

// BuildAnalysisPrompt wraps the concatenated source in the fixed review
// instructions. The model is asked for four sections: code quality,
// potential improvements, security concerns and an overall assessment.
func BuildAnalysisPrompt(code string) string {
	return fmt.Sprintf(`Analyze the following code and provide insights on code quality, potential improvements, and any security concerns:

%s

Please provide your analysis in a structured format with sections for:
1. Code Quality
2. Potential Improvements
3. Security Concerns
4. Overall Assessment`, code)
}
