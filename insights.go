package explorer

import (
	"regexp"
	"strings"

	"github.com/zombar/explorer/models"
)

// toolMentionPatterns matches named automation, productivity, and AI tools
// plus raw URLs. Matches are lower-cased and de-duplicated.
var toolMentionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(n8n|zapier|make|ifttt|integromat)\b`),
	regexp.MustCompile(`(?i)\b(linkedin|indeed|gmail|notion|slack|github|docker)\b`),
	regexp.MustCompile(`(?i)\b(openai|chatgpt|claude|gemini|copilot)\b`),
	regexp.MustCompile(`https?://[^\s]+|www\.[^\s]+`),
}

// keyPointKeywords qualifies a sentence as a key point when any of these
// appears in its lower-cased form.
var keyPointKeywords = []string{
	"automat", "no code", "zero coding", "productivity", "efficiency",
	"job hunt", "job search", "application", "workflow", "integration",
	"tip", "hack", "tool", "website", "app", "service", "feature",
	"how to", "use", "create", "build", "repo", "repository", "open source",
}

// callToActionPatterns matches common social media calls to action.
var callToActionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)comment\s+\w+\s+and\s+i['’]?ll`),
	regexp.MustCompile(`(?i)drop\s+a?\s*\w+\s+below`),
	regexp.MustCompile(`(?i)dm\s+me\s+for`),
	regexp.MustCompile(`(?i)click\s+the\s+link`),
	regexp.MustCompile(`(?i)check\s+out`),
	regexp.MustCompile(`(?i)try\s+\w+`),
	regexp.MustCompile(`(?i)download\s+\w+`),
	regexp.MustCompile(`(?i)get\s+started`),
}

// actionVerbs qualifies a whole sentence as an action item when its trimmed
// lower-cased form starts with one of them.
var actionVerbs = []string{
	"try", "use", "check", "visit", "download",
	"install", "create", "build", "make", "automate",
}

// topicRules maps content keywords to a coarse main topic. First matching
// rule wins; no match leaves the topic unset.
var topicRules = []struct {
	topic string
	match func(lower string) bool
}{
	{"Workflow Automation", func(s string) bool {
		return strings.Contains(s, "n8n") || strings.Contains(s, "automation") || strings.Contains(s, "workflow")
	}},
	{"Job Search Automation", func(s string) bool {
		return strings.Contains(s, "job") &&
			(strings.Contains(s, "hunt") || strings.Contains(s, "search") || strings.Contains(s, "application"))
	}},
	{"AI Tools", func(s string) bool {
		return strings.Contains(s, "ai") || strings.Contains(s, "gpt") || strings.Contains(s, "llm")
	}},
	{"Local SEO / Google Business", func(s string) bool {
		return strings.Contains(s, "google") && strings.Contains(s, "business")
	}},
	{"Web Tools", func(s string) bool {
		return strings.Contains(s, "website") || strings.Contains(s, "web")
	}},
	{"Productivity Tools", func(s string) bool {
		return strings.Contains(s, "productivity") || strings.Contains(s, "efficiency")
	}},
}

var (
	sentenceSplitRe    = regexp.MustCompile(`[.!?]+`)
	whitespaceCollapse = regexp.MustCompile(`\s+`)
)

// MineInsights extracts mentioned tools, key sentences, action items, and a
// coarse main topic from free text, typically the concatenation of an
// extracted title and description.
func MineInsights(text string) models.Insights {
	insights := models.Insights{
		KeyPoints:      []string{},
		MentionedTools: []string{},
		ActionItems:    []string{},
	}

	for _, pattern := range toolMentionPatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			insights.MentionedTools = append(insights.MentionedTools, strings.ToLower(match))
		}
	}
	insights.MentionedTools = dedupe(insights.MentionedTools)

	var sentences []string
	for _, s := range sentenceSplitRe.Split(text, -1) {
		if len(strings.TrimSpace(s)) > 10 {
			sentences = append(sentences, s)
		}
	}

	for _, sentence := range sentences {
		lower := strings.ToLower(sentence)
		for _, keyword := range keyPointKeywords {
			if strings.Contains(lower, keyword) {
				cleaned := whitespaceCollapse.ReplaceAllString(strings.TrimSpace(sentence), " ")
				if len(cleaned) > 15 {
					insights.KeyPoints = append(insights.KeyPoints, cleaned)
				}
				break
			}
		}
	}

	for _, pattern := range callToActionPatterns {
		insights.ActionItems = append(insights.ActionItems, pattern.FindAllString(text, -1)...)
	}
	for _, sentence := range sentences {
		lower := strings.ToLower(strings.TrimSpace(sentence))
		for _, verb := range actionVerbs {
			if strings.HasPrefix(lower, verb) {
				insights.ActionItems = append(insights.ActionItems, strings.TrimSpace(sentence))
				break
			}
		}
	}
	insights.ActionItems = dedupe(insights.ActionItems)

	lower := strings.ToLower(text)
	for _, rule := range topicRules {
		if rule.match(lower) {
			insights.MainTopic = rule.topic
			break
		}
	}

	return insights
}

// dedupe removes duplicate entries preserving first-seen order.
func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
