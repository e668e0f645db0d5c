package explorer

import (
	"math"
	"strings"

	"github.com/zombar/explorer/models"
)

// categoryRules is the fixed category taxonomy with its keyword lists,
// scored in declared order. A tie keeps the earlier entry, so precedence is
// explicit in the table rather than implicit in branch order.
var categoryRules = []struct {
	name     string
	keywords []string
}{
	{"AI_AGENTS", []string{
		"ai", "artificial intelligence", "gpt", "chatgpt", "llm",
		"machine learning", "neural", "openai", "claude", "gemini", "copilot",
	}},
	{"RASPBERRY_PI", []string{
		"raspberry pi", "gpio", "sensor", "arduino", "microcontroller", "iot", "embedded",
	}},
	{"PRINTER_3D", []string{
		"3d print", "3d printer", "filament", "pla", "abs", "stl", "cad", "fusion 360", "prusa",
	}},
	{"SOFTWARE", []string{
		"github", "repository", "repo", "open source", "code", "programming",
		"developer", "software", "library", "framework",
	}},
	{"AUTOMATION", []string{
		"automation", "n8n", "zapier", "make", "integromat", "workflow",
		"no code", "low code", "integration", "api", "webhook", "job automation",
	}},
	{"WEB_TOOLS", []string{
		"website", "web app", "online tool", "saas", "browser", "chrome extension", "web service",
	}},
	{"PRODUCTIVITY", []string{
		"productivity", "notion", "efficiency", "time management", "task", "organize", "slack", "email",
	}},
	{"MARKETING", []string{
		"seo", "marketing", "google business", "social media", "growth",
		"traffic", "conversion", "linkedin", "indeed",
	}},
}

// CategorizeContent scores the fixed category taxonomy against free text.
// Each keyword literally present (case-insensitive) counts once per
// category; confidence is score/3 saturating at 1. Text with no keyword
// hits at all yields the default category with a no-signal confidence of
// 0.5 rather than zero.
func CategorizeContent(text string) models.CategorizationResult {
	lower := strings.ToLower(text)

	best := models.CategorizationResult{
		Category:   models.CategoryOther,
		Confidence: 0.5,
	}
	bestScore := 0

	for _, rule := range categoryRules {
		score := 0
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = models.CategorizationResult{
				Category:   rule.name,
				Confidence: math.Min(float64(score)/3, 1),
			}
		}
	}

	return best
}
