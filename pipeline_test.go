package explorer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/zombar/explorer/models"
	"github.com/zombar/explorer/ytdlp"
)

// fakeTool satisfies ToolExtractor with a canned result.
type fakeTool struct {
	meta *ytdlp.Metadata
	err  error
}

func (f *fakeTool) Extract(ctx context.Context, url string) (*ytdlp.Metadata, error) {
	return f.meta, f.err
}

// mockOllama returns a test server that answers every generate call with
// the given completion text.
func mockOllama(t *testing.T, response string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(models.OllamaResponse{
			Model:    "test",
			Response: response,
			Done:     true,
		})
	}))
}

func TestNewInstrumentsHTTPClient(t *testing.T) {
	// Fetches must carry trace context into upstream sites and the proxy.
	e := New(DefaultConfig())

	if _, ok := e.httpClient.Transport.(*otelhttp.Transport); !ok {
		t.Errorf("transport = %T, want *otelhttp.Transport", e.httpClient.Transport)
	}
}

func TestProcessURLRejectsInvalidURL(t *testing.T) {
	e := New(DefaultConfig())

	if _, err := e.ProcessURL(context.Background(), "ftp://example.com/file"); err == nil {
		t.Error("expected error for non-http scheme")
	}
	if _, err := e.ProcessURL(context.Background(), "://bad"); err == nil {
		t.Error("expected error for unparseable URL")
	}
}

func TestProcessURLToolFallbackToHTML(t *testing.T) {
	// The tool binary does not exist, so a recognized platform URL must
	// fall back to HTML extraction through the configured proxy.
	targetURL := "https://www.youtube.com/watch?v=abc123"

	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("proxy expected POST, got %s", r.Method)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("proxy body: %v", err)
		}
		if req["url"] != targetURL {
			t.Errorf("proxy url = %q, want %q", req["url"], targetURL)
		}
		w.Write([]byte(`<html><head>
			<title>Automation Walkthrough</title>
			<meta name="description" content="Build a workflow with n8n, source at ` + targetURL + `">
		</head><body></body></html>`))
	}))
	defer proxy.Close()

	ollamaSrv := mockOllama(t, "```json\n"+`{"category":"AUTOMATION","tags":["workflow"],"summary":"An automation walkthrough","actionableInsights":["Watch it"],"priority":"medium"}`+"\n```")
	defer ollamaSrv.Close()

	e := New(Config{
		HTTPTimeout:   5 * time.Second,
		OllamaBaseURL: ollamaSrv.URL,
		OllamaModel:   "test",
		YTDLPBinary:   "yt-dlp-test-binary-that-does-not-exist",
		ProxyURL:      proxy.URL,
	})

	result, err := e.ProcessURL(context.Background(), targetURL)
	if err != nil {
		t.Fatalf("ProcessURL: %v", err)
	}

	if result.Extracted.Platform != PlatformYouTube {
		t.Errorf("platform = %q, want %q", result.Extracted.Platform, PlatformYouTube)
	}
	if result.Extracted.Title != "Automation Walkthrough" {
		t.Errorf("title = %q", result.Extracted.Title)
	}

	// The source URL appears in the mined tool mentions but must never
	// come back as a suggested link.
	foundMention := false
	for _, tool := range result.Insights.MentionedTools {
		if strings.EqualFold(tool, targetURL) {
			foundMention = true
		}
	}
	if !foundMention {
		t.Fatalf("expected the source URL in mentioned tools, got %v", result.Insights.MentionedTools)
	}
	for _, link := range result.Suggested.Links {
		if strings.EqualFold(link.URL, targetURL) {
			t.Errorf("suggested links must not include the source URL: %v", result.Suggested.Links)
		}
	}

	if result.AIAnalysis == nil || result.AIAnalysis.Category != "AUTOMATION" {
		t.Errorf("ai analysis = %+v", result.AIAnalysis)
	}
	if result.Suggested.Category != "AUTOMATION" {
		t.Errorf("suggested category = %q, want AUTOMATION", result.Suggested.Category)
	}
	if result.Suggested.Status != models.StatusPlanned {
		t.Errorf("suggested status = %q, want %q", result.Suggested.Status, models.StatusPlanned)
	}
}

func TestProcessURLToolSuccess(t *testing.T) {
	ollamaSrv := mockOllama(t, `{"category":"SOFTWARE","tags":["video"],"summary":"s","actionableInsights":[],"priority":"low"}`)
	defer ollamaSrv.Close()

	e := New(Config{
		HTTPTimeout:   5 * time.Second,
		OllamaBaseURL: ollamaSrv.URL,
		OllamaModel:   "test",
	})
	e.tool = &fakeTool{meta: &ytdlp.Metadata{
		Title:       "Video Title",
		Description: "About building with docker",
		Uploader:    "Some Channel",
		Extractor:   "youtube",
		Thumbnail:   "https://i.example.com/t.jpg",
	}}

	result, err := e.ProcessURL(context.Background(), "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("ProcessURL: %v", err)
	}

	if result.Extracted.Title != "Video Title" {
		t.Errorf("title = %q", result.Extracted.Title)
	}
	if result.Extracted.Author != "Some Channel" {
		t.Errorf("author = %q", result.Extracted.Author)
	}
	// Platform comes from URL classification, not from the tool.
	if result.Extracted.Platform != PlatformYouTube {
		t.Errorf("platform = %q, want %q", result.Extracted.Platform, PlatformYouTube)
	}
	if result.Extracted.ContentType != "Video" {
		t.Errorf("contentType = %q, want Video", result.Extracted.ContentType)
	}
	if got := result.Extracted.Metadata["extractor"]; got != "youtube" {
		t.Errorf("extractor metadata = %v", got)
	}
}

func TestProcessURLFetchFailureStillReturnsResult(t *testing.T) {
	// No tool, no reachable page: the pipeline degrades to an empty
	// extraction and no AI call, but never errors.
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer proxy.Close()

	e := New(Config{
		HTTPTimeout: 2 * time.Second,
		ProxyURL:    proxy.URL,
	})

	result, err := e.ProcessURL(context.Background(), "https://example.com/page")
	if err != nil {
		t.Fatalf("ProcessURL: %v", err)
	}
	if result.AIAnalysis != nil {
		t.Errorf("no extracted content should mean no AI analysis, got %+v", result.AIAnalysis)
	}
	if result.Suggested.Title != "Untitled" {
		t.Errorf("suggested title = %q, want Untitled", result.Suggested.Title)
	}
	if result.Categorization.Category != models.CategoryOther {
		t.Errorf("categorization = %+v", result.Categorization)
	}
}

func TestBuildSuggestedRecordMergePolicy(t *testing.T) {
	extracted := models.ExtractedContent{
		Title:       "Extracted Title",
		Description: "Extracted description",
		Platform:    PlatformYouTube,
		ContentType: "Video",
	}
	insights := models.Insights{
		KeyPoints:      []string{"point one", "point two"},
		MentionedTools: []string{"n8n", "https://notion.so/templates", "zapier"},
		ActionItems:    []string{},
	}
	categorization := models.CategorizationResult{Category: "SOFTWARE", Confidence: 0.66}
	analysis := &models.AIAnalysis{
		Category: "AUTOMATION",
		Tags:     []string{"AI Tools", "workflow"},
		Summary:  "A summary",
		Priority: models.PriorityHigh,
	}

	record := buildSuggestedRecord("https://youtu.be/abc", extracted, insights, categorization, analysis)

	if record.Title != "Extracted Title" {
		t.Errorf("title = %q", record.Title)
	}
	if record.Category != "AUTOMATION" {
		t.Errorf("AI category must win, got %q", record.Category)
	}
	if record.Notes != "point one\npoint two" {
		t.Errorf("notes = %q", record.Notes)
	}

	// AI tags, first two tool domains, platform, content type; slugged
	// and deduplicated in first-seen order.
	wantTags := []string{"ai-tools", "workflow", "n8n", "notion", "youtube", "video"}
	if !reflect.DeepEqual(record.Tags, wantTags) {
		t.Errorf("tags = %v, want %v", record.Tags, wantTags)
	}

	wantLinks := []models.Link{
		{URL: "n8n", Label: "n8n"},
		{URL: "https://notion.so/templates", Label: "notion.so"},
		{URL: "zapier", Label: "zapier"},
	}
	if !reflect.DeepEqual(record.Links, wantLinks) {
		t.Errorf("links = %v, want %v", record.Links, wantLinks)
	}
}

func TestBuildSuggestedRecordFallbacks(t *testing.T) {
	empty := models.ExtractedContent{}
	noInsights := models.Insights{KeyPoints: []string{}, MentionedTools: []string{}, ActionItems: []string{}}
	scored := models.CategorizationResult{Category: models.CategoryOther, Confidence: 0.5}

	t.Run("analysis summary fills title and description", func(t *testing.T) {
		analysis := &models.AIAnalysis{Category: "OTHER", Summary: "From the model", Tags: []string{}}
		record := buildSuggestedRecord("https://example.com", empty, noInsights, scored, analysis)
		if record.Title != "From the model" {
			t.Errorf("title = %q", record.Title)
		}
		if record.Description != "From the model" {
			t.Errorf("description = %q", record.Description)
		}
	})

	t.Run("no analysis at all", func(t *testing.T) {
		record := buildSuggestedRecord("https://example.com", empty, noInsights, scored, nil)
		if record.Title != "Untitled" {
			t.Errorf("title = %q, want Untitled", record.Title)
		}
		if record.Category != models.CategoryOther {
			t.Errorf("category = %q", record.Category)
		}
		if record.Links == nil || record.Tags == nil {
			t.Error("links and tags must be empty, not nil")
		}
	})
}

func TestToolDomainAndTag(t *testing.T) {
	tests := []struct {
		tool   string
		domain string
		tag    string
	}{
		{"https://notion.so/templates/x", "notion.so", "notion"},
		{"http://n8n.io", "n8n.io", "n8n"},
		{"zapier", "zapier", "zapier"},
		{"www.example.com/page", "www.example.com", "www"},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			if got := toolDomain(tt.tool); got != tt.domain {
				t.Errorf("toolDomain = %q, want %q", got, tt.domain)
			}
			if got := toolTag(tt.tool); got != tt.tag {
				t.Errorf("toolTag = %q, want %q", got, tt.tag)
			}
		})
	}
}
