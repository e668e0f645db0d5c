package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/zombar/explorer/models"
)

// CompletionClient generates a free-form completion for a prompt.
type CompletionClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// fallbackAnalysis is returned whenever AI analysis fails for any reason:
// network error, missing content, malformed JSON. By value it is
// indistinguishable from a successful minimal analysis; callers cannot tell
// success from fallback except by inspecting the values.
func fallbackAnalysis() models.AIAnalysis {
	return models.AIAnalysis{
		Category:           models.CategoryOther,
		Tags:               []string{},
		Summary:            "Unable to analyze content",
		ActionableInsights: []string{},
		Priority:           models.PriorityMedium,
	}
}

// analysisResult carries the degraded flag internally. The boundary
// deliberately discards it: AnalyzeContent returns only the analysis.
type analysisResult struct {
	analysis models.AIAnalysis
	degraded bool
}

const fullAnalysisPrompt = `Analyze this exploration item and provide structured insights:

Title: %s
Description: %s
URL: %s

Provide a JSON response with:
1. category: One of AI_AGENTS, RASPBERRY_PI, PRINTER_3D, ELECTRONICS, SOFTWARE, AUTOMATION, WEB_TOOLS, PRODUCTIVITY, MARKETING, or OTHER
2. tags: Array of 3-5 relevant tags (lowercase, single words)
3. summary: A concise 1-2 sentence summary
4. actionableInsights: Array of 2-3 specific action items or learning points
5. priority: "low", "medium", or "high" based on potential impact

Respond only with valid JSON.`

const limitedAnalysisPrompt = `This is an Instagram %s but full content details are not available.
URL: %s

Based on the limited information available, provide a JSON response with:
1. category: Most likely MARKETING or OTHER
2. tags: Array of 3-5 relevant tags (lowercase, single words) - focus on "instagram", "socialmedia", etc.
3. summary: Note that this is Instagram content requiring direct access for full details
4. actionableInsights: Suggest visiting Instagram directly to view the content
5. priority: "low" since we can't determine the actual content value

Respond only with valid JSON.`

// buildAnalysisPrompt selects the prompt template. Instagram URLs whose
// description is missing or carries the degraded-extraction marker get the
// reduced-confidence template.
func buildAnalysisPrompt(title, description, contentURL string) string {
	limitedInfo := strings.Contains(contentURL, "instagram.com") &&
		(description == "" || strings.Contains(description, "Note: Full content details require"))

	if limitedInfo {
		return fmt.Sprintf(limitedAnalysisPrompt, title, contentURL)
	}

	desc := description
	if desc == "" {
		desc = "Not provided"
	}
	u := contentURL
	if u == "" {
		u = "Not provided"
	}
	return fmt.Sprintf(fullAnalysisPrompt, title, desc, u)
}

// cleanJSONResponse strips a markdown code fence wrapper, with or without a
// language tag, from a completion reply.
func cleanJSONResponse(content string) string {
	cleaned := strings.TrimSpace(content)

	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[len("```json"):]
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[len("```"):]
	}

	if strings.HasSuffix(cleaned, "```") {
		cleaned = cleaned[:len(cleaned)-len("```")]
	}

	return strings.TrimSpace(cleaned)
}

// analyzeContent calls the completion service and parses its reply into a
// structured analysis. It never fails outward: every error path yields the
// fixed fallback analysis flagged as degraded.
func analyzeContent(ctx context.Context, client CompletionClient, title, description, contentURL string) analysisResult {
	prompt := buildAnalysisPrompt(title, description, contentURL)

	reply, err := client.Generate(ctx, prompt)
	if err != nil {
		log.Printf("AI analysis failed for %s: %v", contentURL, err)
		return analysisResult{analysis: fallbackAnalysis(), degraded: true}
	}

	var analysis models.AIAnalysis
	if err := json.Unmarshal([]byte(cleanJSONResponse(reply)), &analysis); err != nil {
		log.Printf("Failed to parse AI analysis response for %s: %v", contentURL, err)
		return analysisResult{analysis: fallbackAnalysis(), degraded: true}
	}

	// Keep the result fully populated even when the model omits fields.
	if analysis.Category == "" {
		analysis.Category = models.CategoryOther
	}
	if analysis.Tags == nil {
		analysis.Tags = []string{}
	}
	if analysis.ActionableInsights == nil {
		analysis.ActionableInsights = []string{}
	}
	switch analysis.Priority {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
	default:
		analysis.Priority = models.PriorityMedium
	}

	return analysisResult{analysis: analysis}
}
