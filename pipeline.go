package explorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/zombar/explorer/metrics"
	"github.com/zombar/explorer/models"
	"github.com/zombar/explorer/ollama"
	"github.com/zombar/explorer/slug"
	"github.com/zombar/explorer/ytdlp"
)

// Config contains enricher configuration
type Config struct {
	HTTPTimeout   time.Duration
	OllamaBaseURL string
	OllamaModel   string
	YTDLPBinary   string
	// ProxyURL, when set, routes page fetches through an HTML-fetching
	// proxy (POST {"url": ...} returning the raw body) instead of
	// fetching the target directly.
	ProxyURL string
}

// DefaultConfig returns default enricher configuration
func DefaultConfig() Config {
	return Config{
		HTTPTimeout:   30 * time.Second,
		OllamaBaseURL: ollama.DefaultBaseURL,
		OllamaModel:   ollama.DefaultModel,
		YTDLPBinary:   ytdlp.DefaultBinary,
	}
}

// ToolExtractor is the external metadata tool invoked for recognized
// platform URLs.
type ToolExtractor interface {
	Extract(ctx context.Context, url string) (*ytdlp.Metadata, error)
}

// recognizedPlatformHosts lists the URL substrings for which the metadata
// tool is attempted before HTML extraction.
var recognizedPlatformHosts = []string{
	"instagram.com", "youtube.com", "youtu.be",
	"tiktok.com", "twitter.com", "x.com",
}

// Enricher runs the URL content enrichment pipeline: platform metadata
// extraction, insight mining, category scoring, and AI enrichment, merged
// into a single suggested record. Every stage degrades gracefully; only an
// invalid input URL is an error.
type Enricher struct {
	config       Config
	httpClient   *http.Client
	ollamaClient CompletionClient
	tool         ToolExtractor
}

// New creates a new Enricher instance
func New(config Config) *Enricher {
	return &Enricher{
		config: config,
		httpClient: &http.Client{
			Timeout:   config.HTTPTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		ollamaClient: ollama.NewClient(config.OllamaBaseURL, config.OllamaModel),
		tool:         ytdlp.New(config.YTDLPBinary),
	}
}

// ProcessURL runs the full pipeline for a single URL. Stages run strictly
// in sequence and share no state with other requests.
func (e *Enricher) ProcessURL(ctx context.Context, targetURL string) (*models.ProcessResult, error) {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("URL must be http or https")
	}

	var extracted models.ExtractedContent
	toolUsed := false

	if isRecognizedPlatform(targetURL) {
		meta, err := e.tool.Extract(ctx, targetURL)
		if err != nil {
			log.Printf("Metadata tool failed for %s, falling back to HTML extraction: %v", targetURL, err)
			metrics.ObserveStage("tool", "fallback")
		} else {
			extracted = toolContent(meta, targetURL)
			toolUsed = true
			metrics.ObserveStage("tool", "ok")
		}
	}

	if !toolUsed {
		rawHTML, err := e.fetchHTML(ctx, targetURL)
		if err != nil {
			// Continue with whatever is already known.
			log.Printf("HTML fetch failed for %s, continuing with empty extraction: %v", targetURL, err)
			metrics.ObserveStage("fetch", "error")
		} else {
			extracted = ExtractFromHTML(rawHTML, targetURL)
			metrics.ObserveStage("fetch", "ok")
		}
	}

	insights := MineInsights(extracted.Title + " " + extracted.Description)
	categorization := CategorizeContent(extracted.Description)

	var analysis *models.AIAnalysis
	if extracted.Title != "" || extracted.Description != "" {
		title := extracted.Title
		if title == "" {
			title = "Social Media Content"
		}
		result := analyzeContent(ctx, e.ollamaClient, title, extracted.Description, targetURL)
		if result.degraded {
			metrics.ObserveStage("analyze", "fallback")
		} else {
			metrics.ObserveStage("analyze", "ok")
		}
		analysis = &result.analysis
	}

	return &models.ProcessResult{
		URL:            targetURL,
		Extracted:      extracted,
		Insights:       insights,
		Categorization: categorization,
		AIAnalysis:     analysis,
		Suggested:      buildSuggestedRecord(targetURL, extracted, insights, categorization, analysis),
	}, nil
}

// AnalyzeContent runs AI enrichment on already-known fields. It never
// fails: any upstream error yields the fixed fallback analysis.
func (e *Enricher) AnalyzeContent(ctx context.Context, title, description, contentURL string) models.AIAnalysis {
	return analyzeContent(ctx, e.ollamaClient, title, description, contentURL).analysis
}

// ExtractToolMetadata invokes the external metadata tool directly.
func (e *Enricher) ExtractToolMetadata(ctx context.Context, targetURL string) (*ytdlp.Metadata, error) {
	return e.tool.Extract(ctx, targetURL)
}

// isRecognizedPlatform reports whether the metadata tool should be tried
// for the URL.
func isRecognizedPlatform(targetURL string) bool {
	for _, host := range recognizedPlatformHosts {
		if strings.Contains(targetURL, host) {
			return true
		}
	}
	return false
}

// fetchHTML retrieves the raw page body, either directly or through the
// configured HTML-fetch proxy.
func (e *Enricher) fetchHTML(ctx context.Context, targetURL string) (string, error) {
	var req *http.Request
	var err error

	if e.config.ProxyURL != "" {
		payload, merr := json.Marshal(map[string]string{"url": targetURL})
		if merr != nil {
			return "", fmt.Errorf("failed to marshal proxy request: %w", merr)
		}
		req, err = http.NewRequestWithContext(ctx, "POST", e.config.ProxyURL, bytes.NewReader(payload))
		if err == nil {
			req.Header.Set("Content-Type", "application/json")
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, "GET", targetURL, nil)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; Explorer/1.0)")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return string(body), nil
}

// toolContent maps the metadata tool's output onto ExtractedContent. The
// platform name comes from URL classification so it stays within the fixed
// platform set; the tool's extractor id is kept as side metadata.
func toolContent(meta *ytdlp.Metadata, targetURL string) models.ExtractedContent {
	platform, contentType := detectPlatform(targetURL)

	content := models.ExtractedContent{
		Title:        meta.BestTitle(),
		Description:  meta.Description,
		Author:       meta.BestAuthor(),
		Platform:     platform,
		ContentType:  contentType,
		ThumbnailURL: meta.Thumbnail,
		Metadata: map[string]any{
			"extractor":  meta.Extractor,
			"tags":       meta.Tags,
			"viewCount":  meta.ViewCount,
			"likeCount":  meta.LikeCount,
			"uploadDate": meta.UploadDate,
			"duration":   meta.Duration,
		},
	}
	return content
}

// buildSuggestedRecord merges pipeline stage outputs into the pre-filled
// record offered to the caller. AI-derived category wins over the
// keyword-scored one; tags are the de-duplicated union of AI tags, the
// first two mentioned-tool domains, and the lower-cased platform and
// content type.
func buildSuggestedRecord(targetURL string, extracted models.ExtractedContent, insights models.Insights, categorization models.CategorizationResult, analysis *models.AIAnalysis) models.SuggestedRecord {
	record := models.SuggestedRecord{
		PrimaryURL: targetURL,
		Status:     models.StatusPlanned,
		Notes:      strings.Join(insights.KeyPoints, "\n"),
		Links:      []models.Link{},
	}

	record.Title = extracted.Title
	if record.Title == "" && analysis != nil {
		record.Title = analysis.Summary
	}
	if record.Title == "" {
		record.Title = "Untitled"
	}

	record.Description = extracted.Description
	if record.Description == "" && analysis != nil {
		record.Description = analysis.Summary
	}

	record.Category = categorization.Category
	if analysis != nil && analysis.Category != "" {
		record.Category = analysis.Category
	}
	if record.Category == "" {
		record.Category = models.CategoryOther
	}

	var tags []string
	if analysis != nil {
		tags = append(tags, analysis.Tags...)
	}
	for i, tool := range insights.MentionedTools {
		if i >= 2 {
			break
		}
		tags = append(tags, toolTag(tool))
	}
	tags = append(tags, strings.ToLower(extracted.Platform), strings.ToLower(extracted.ContentType))

	record.Tags = []string{}
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		normalized := slug.Tag(tag)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		record.Tags = append(record.Tags, normalized)
	}

	for _, tool := range insights.MentionedTools {
		if strings.EqualFold(tool, targetURL) {
			continue
		}
		record.Links = append(record.Links, models.Link{
			URL:   tool,
			Label: toolDomain(tool),
		})
	}

	return record
}

// toolDomain strips the scheme and path from a tool mention, leaving the
// bare domain used as a link label.
func toolDomain(tool string) string {
	domain := tool
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	if i := strings.IndexByte(domain, '/'); i >= 0 {
		domain = domain[:i]
	}
	return domain
}

// toolTag reduces a tool mention to its first path-free domain label, e.g.
// "https://notion.so/templates" becomes "notion".
func toolTag(tool string) string {
	domain := toolDomain(tool)
	if i := strings.IndexByte(domain, '.'); i >= 0 {
		domain = domain[:i]
	}
	return domain
}
