package models

import "time"

// Item status values. New items created from a suggested record always
// start as PLANNED.
const (
	StatusPlanned    = "PLANNED"
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
)

// AIAnalysis priority levels.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// CategoryOther is the default category used when no signal is found.
const CategoryOther = "OTHER"

// ExtractedContent holds platform-aware metadata extracted from a URL,
// either via the external metadata tool or from raw HTML. Fields are left
// empty when they could not be derived; extraction never fails outright.
type ExtractedContent struct {
	Title        string         `json:"title,omitempty"`
	Description  string         `json:"description,omitempty"`
	Author       string         `json:"author,omitempty"`
	Platform     string         `json:"platform,omitempty"`
	ContentType  string         `json:"content_type,omitempty"`
	ThumbnailURL string         `json:"thumbnail_url,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Insights holds heuristic findings mined from free text.
type Insights struct {
	MainTopic      string   `json:"main_topic,omitempty"`
	KeyPoints      []string `json:"key_points"`
	MentionedTools []string `json:"mentioned_tools"`
	ActionItems    []string `json:"action_items"`
}

// CategorizationResult is the outcome of keyword-based category scoring.
// Confidence is always in [0, 1].
type CategorizationResult struct {
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory,omitempty"`
	Confidence  float64 `json:"confidence"`
}

// AIAnalysis is the structured result of AI content analysis. It is always
// fully populated: on any upstream failure a fixed fallback value is
// returned instead of an error.
type AIAnalysis struct {
	Category           string   `json:"category"`
	Tags               []string `json:"tags"`
	Summary            string   `json:"summary"`
	ActionableInsights []string `json:"actionableInsights"`
	Priority           string   `json:"priority"`
}

// Link is a labeled URL attached to an item or suggested record.
type Link struct {
	URL   string `json:"url"`
	Label string `json:"label,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

// SuggestedRecord is the pre-filled candidate item offered to the caller
// after processing a URL. It is never persisted by the pipeline itself.
type SuggestedRecord struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	PrimaryURL  string   `json:"primary_url"`
	Links       []Link   `json:"links"`
	Status      string   `json:"status"`
	Notes       string   `json:"notes,omitempty"`
}

// ProcessResult is the complete output of the URL processing pipeline.
type ProcessResult struct {
	URL            string               `json:"url"`
	Extracted      ExtractedContent     `json:"extracted"`
	Insights       Insights             `json:"insights"`
	Categorization CategorizationResult `json:"categorization"`
	AIAnalysis     *AIAnalysis          `json:"ai_analysis,omitempty"`
	Suggested      SuggestedRecord      `json:"suggested"`
}

// Item is a persisted exploration item.
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	PrimaryURL  string    `json:"primary_url,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	Status      string    `json:"status"`
	Category    string    `json:"category,omitempty"`
	IsFavorite  bool      `json:"is_favorite"`
	IsArchived  bool      `json:"is_archived"`
	Links       []Link    `json:"links"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Category is a persisted item category.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ItemCount   int       `json:"item_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// OllamaRequest represents a request to the Ollama API
type OllamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

// OllamaResponse represents a response from the Ollama API
type OllamaResponse struct {
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
}
