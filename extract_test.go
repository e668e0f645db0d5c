package explorer

import (
	"strings"
	"testing"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url         string
		platform    string
		contentType string
	}{
		{"https://www.instagram.com/reel/ABC123/", PlatformInstagram, ""},
		{"https://www.tiktok.com/@user/video/123", PlatformTikTok, "Video"},
		{"https://www.youtube.com/watch?v=abc", PlatformYouTube, "Video"},
		{"https://youtu.be/abc", PlatformYouTube, "Video"},
		{"https://twitter.com/user/status/1", PlatformTwitter, "Tweet"},
		{"https://x.com/user/status/1", PlatformTwitter, "Tweet"},
		{"https://example.com/article", PlatformWebsite, "Article"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			platform, contentType := detectPlatform(tt.url)
			if platform != tt.platform {
				t.Errorf("platform = %q, want %q", platform, tt.platform)
			}
			if contentType != tt.contentType {
				t.Errorf("contentType = %q, want %q", contentType, tt.contentType)
			}
		})
	}
}

func TestExtractFromHTMLGenericWebsite(t *testing.T) {
	rawHTML := `<html><head>
		<title>Tom &amp; Jerry&#39;s Workshop</title>
		<meta name="description" content="A guide to 3d printing &amp; more">
	</head><body></body></html>`

	content := ExtractFromHTML(rawHTML, "https://example.com/guide")

	if content.Platform != PlatformWebsite {
		t.Errorf("platform = %q, want %q", content.Platform, PlatformWebsite)
	}
	if content.ContentType != "Article" {
		t.Errorf("contentType = %q, want %q", content.ContentType, "Article")
	}
	if content.Title != "Tom & Jerry's Workshop" {
		t.Errorf("title = %q, entities not decoded", content.Title)
	}
	if content.Description != "A guide to 3d printing & more" {
		t.Errorf("description = %q, entities not decoded", content.Description)
	}
}

func TestExtractFromHTMLInstagramPost(t *testing.T) {
	rawHTML := `<html><head>
		<meta property="og:title" content="Jane Doe (@janedoe) &#8226; Instagram photos">
		<meta property="og:description" content="Automate everything #n8n #automation #nocode">
		<meta property="og:image" content="https://cdn.example.com/thumb.jpg">
	</head><body></body></html>`

	content := ExtractFromHTML(rawHTML, "https://www.instagram.com/p/XYZ789/")

	if content.Platform != PlatformInstagram {
		t.Fatalf("platform = %q, want %q", content.Platform, PlatformInstagram)
	}
	if content.ContentType != "Post" {
		t.Errorf("contentType = %q, want %q", content.ContentType, "Post")
	}
	if content.Author != "@janedoe" {
		t.Errorf("author = %q, want %q", content.Author, "@janedoe")
	}
	if got := content.Metadata["realName"]; got != "Jane Doe" {
		t.Errorf("realName = %v, want %q", got, "Jane Doe")
	}
	if content.ThumbnailURL != "https://cdn.example.com/thumb.jpg" {
		t.Errorf("thumbnail = %q", content.ThumbnailURL)
	}

	hashtags, ok := content.Metadata["hashtags"].([]string)
	if !ok || len(hashtags) != 3 {
		t.Fatalf("hashtags = %v, want 3 entries", content.Metadata["hashtags"])
	}
	if hashtags[0] != "#n8n" || hashtags[1] != "#automation" || hashtags[2] != "#nocode" {
		t.Errorf("hashtags = %v", hashtags)
	}
}

func TestExtractFromHTMLInstagramReelDegraded(t *testing.T) {
	// No usable meta tags at all: the extractor must synthesize a
	// placeholder rather than return an empty result.
	content := ExtractFromHTML("<html><head></head><body></body></html>", "https://www.instagram.com/reel/ABC123/")

	if content.ContentType != "Reel" {
		t.Errorf("contentType = %q, want %q", content.ContentType, "Reel")
	}
	if content.Title != "Instagram Reel" {
		t.Errorf("title = %q, want %q", content.Title, "Instagram Reel")
	}
	if !strings.Contains(content.Description, "ABC123") {
		t.Errorf("description %q should mention the shortcode", content.Description)
	}
	if !strings.Contains(content.Description, "require visiting Instagram directly") {
		t.Errorf("description %q should carry the degraded note", content.Description)
	}
	if got := content.Metadata["shortcode"]; got != "ABC123" {
		t.Errorf("shortcode = %v, want ABC123", got)
	}
	if got := content.Metadata["requiresDirectAccess"]; got != true {
		t.Errorf("requiresDirectAccess = %v, want true", got)
	}
	// "reel" is a path segment, not a username.
	if content.Author != "" {
		t.Errorf("author = %q, want empty", content.Author)
	}
}

func TestExtractFromHTMLInstagramUselessTitle(t *testing.T) {
	rawHTML := `<html><head>
		<meta property="og:title" content="Instagram">
	</head><body></body></html>`

	content := ExtractFromHTML(rawHTML, "https://www.instagram.com/someuser/")

	if content.Author != "@someuser" {
		t.Errorf("author = %q, want @someuser", content.Author)
	}
	if content.Metadata["requiresDirectAccess"] != nil {
		t.Errorf("profile URL without shortcode should not set requiresDirectAccess")
	}
}

func TestExtractFromHTMLInstagramTwitterTitleFallback(t *testing.T) {
	rawHTML := `<html><head>
		<meta name="twitter:title" content="Bob (@bob) on Instagram">
	</head><body></body></html>`

	content := ExtractFromHTML(rawHTML, "https://www.instagram.com/p/CODE1/")

	if content.Title != "Bob (@bob) on Instagram" {
		t.Errorf("title = %q", content.Title)
	}
	if content.Author != "@bob" {
		t.Errorf("author = %q, want @bob", content.Author)
	}
}

func TestParsePageMetaFirstOccurrenceWins(t *testing.T) {
	rawHTML := `<html><head>
		<meta property="og:title" content="first">
		<meta property="og:title" content="second">
		<title>first title</title>
		<title>second title</title>
	</head><body></body></html>`

	meta := parsePageMeta(rawHTML)
	if meta.ogTitle != "first" {
		t.Errorf("ogTitle = %q, want %q", meta.ogTitle, "first")
	}
	if meta.pageTitle != "first title" {
		t.Errorf("pageTitle = %q, want %q", meta.pageTitle, "first title")
	}
}

func TestExtractFromHTMLMalformedHTML(t *testing.T) {
	// Truncated tags must not panic and may yield a partial result.
	content := ExtractFromHTML(`<html><head><meta property="og:title`, "https://example.com")
	if content.Platform != PlatformWebsite {
		t.Errorf("platform = %q, want %q", content.Platform, PlatformWebsite)
	}
}
