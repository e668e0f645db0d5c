package explorer

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/zombar/explorer/models"
)

// Recognized platform names. Everything else is a generic Website.
const (
	PlatformInstagram = "Instagram"
	PlatformTikTok    = "TikTok"
	PlatformYouTube   = "YouTube"
	PlatformTwitter   = "Twitter/X"
	PlatformWebsite   = "Website"
)

// degradedExtractionNote marks an Instagram extraction that fell back to a
// synthesized placeholder. The AI enrichment adapter keys its reduced
// prompt off this exact text.
const degradedExtractionNote = "Note: Full content details require visiting Instagram directly."

// platformRules maps URL substrings to a platform and its default content
// type, evaluated in declared order so precedence is explicit. Instagram
// derives its content type from the URL path instead.
var platformRules = []struct {
	substrings  []string
	platform    string
	contentType string
}{
	{[]string{"instagram.com"}, PlatformInstagram, ""},
	{[]string{"tiktok.com"}, PlatformTikTok, "Video"},
	{[]string{"youtube.com", "youtu.be"}, PlatformYouTube, "Video"},
	{[]string{"twitter.com", "x.com"}, PlatformTwitter, "Tweet"},
}

var (
	instagramShortcodeRe = regexp.MustCompile(`/(p|reel|tv)/([A-Za-z0-9_-]+)`)
	instagramUsernameRe  = regexp.MustCompile(`instagram\.com/([^/?]+)`)
	instagramAuthorRe    = regexp.MustCompile(`([^(]+)\s*\(@([^)]+)\)`)
	hashtagRe            = regexp.MustCompile(`#\w+`)
)

// detectPlatform classifies a URL into a platform and default content type.
func detectPlatform(pageURL string) (string, string) {
	for _, rule := range platformRules {
		for _, sub := range rule.substrings {
			if strings.Contains(pageURL, sub) {
				return rule.platform, rule.contentType
			}
		}
	}
	return PlatformWebsite, "Article"
}

// pageMeta holds the raw meta tag values found in an HTML document. First
// occurrence wins for every field.
type pageMeta struct {
	ogTitle       string
	ogDescription string
	ogImage       string
	twitterTitle  string
	description   string
	pageTitle     string
}

// parsePageMeta walks the parsed HTML tree and collects the meta tags the
// extractor cares about.
func parsePageMeta(rawHTML string) pageMeta {
	var meta pageMeta

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return meta
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				var property, name, content string
				for _, attr := range n.Attr {
					switch attr.Key {
					case "property":
						property = strings.ToLower(attr.Val)
					case "name":
						name = strings.ToLower(attr.Val)
					case "content":
						content = attr.Val
					}
				}
				switch {
				case property == "og:title" && meta.ogTitle == "":
					meta.ogTitle = content
				case property == "og:description" && meta.ogDescription == "":
					meta.ogDescription = content
				case property == "og:image" && meta.ogImage == "":
					meta.ogImage = content
				case name == "twitter:title" && meta.twitterTitle == "":
					meta.twitterTitle = content
				case name == "description" && meta.description == "":
					meta.description = content
				}
			case "title":
				if meta.pageTitle == "" && n.FirstChild != nil {
					meta.pageTitle = strings.TrimSpace(n.FirstChild.Data)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return meta
}

// ExtractFromHTML extracts platform-aware metadata from raw HTML. It never
// fails: unmatched patterns simply leave the corresponding field unset, and
// the result is a best-effort, possibly partial, ExtractedContent.
func ExtractFromHTML(rawHTML, pageURL string) models.ExtractedContent {
	meta := parsePageMeta(rawHTML)

	content := models.ExtractedContent{}
	content.Platform, content.ContentType = detectPlatform(pageURL)

	if content.Platform == PlatformInstagram {
		extractInstagram(&content, meta, pageURL)
	}

	// Generic fallbacks for all platforms.
	if content.Title == "" && meta.pageTitle != "" {
		content.Title = decodeEntities(meta.pageTitle)
	}
	if content.Description == "" && meta.description != "" {
		content.Description = decodeEntities(meta.description)
	}

	return content
}

// extractInstagram populates Instagram-specific fields: content type and
// shortcode from the URL path, og:/twitter: meta tags, author parsed from
// the "Display Name (@username)" title pattern, and hashtags from the
// description. When no usable title exists it synthesizes a placeholder and
// marks the extraction as requiring direct access.
func extractInstagram(content *models.ExtractedContent, meta pageMeta, pageURL string) {
	shortcode := instagramShortcodeRe.FindStringSubmatch(pageURL)
	username := instagramUsernameRe.FindStringSubmatch(pageURL)

	switch {
	case strings.Contains(pageURL, "/reel/"):
		content.ContentType = "Reel"
	case strings.Contains(pageURL, "/p/"):
		content.ContentType = "Post"
	case strings.Contains(pageURL, "/stories/"):
		content.ContentType = "Story"
	}

	if meta.ogTitle != "" {
		content.Title = decodeEntities(meta.ogTitle)
	} else if meta.twitterTitle != "" {
		content.Title = decodeEntities(meta.twitterTitle)
	}

	if meta.ogDescription != "" {
		content.Description = decodeEntities(meta.ogDescription)
	} else if meta.description != "" {
		content.Description = decodeEntities(meta.description)
	}

	if meta.ogImage != "" {
		content.ThumbnailURL = meta.ogImage
	}

	if content.Title != "" {
		// Instagram titles often follow "Name (@username) • Instagram reel".
		if m := instagramAuthorRe.FindStringSubmatch(content.Title); m != nil {
			content.Author = "@" + m[2]
			setMetadata(content, "realName", strings.TrimSpace(m[1]))
		} else if valid, name := usernameFromURL(username); valid {
			content.Author = "@" + name
		}
	}

	if content.Description != "" {
		if tags := hashtagRe.FindAllString(content.Description, -1); tags != nil {
			setMetadata(content, "hashtags", tags)
		}
	}

	// Fallback for Instagram when meta tags are missing or useless.
	if content.Title == "" || content.Title == "Instagram" {
		if shortcode != nil {
			kind, code := shortcode[1], shortcode[2]
			switch kind {
			case "reel":
				content.Title = "Instagram Reel"
				content.Description = fmt.Sprintf("View this Instagram Reel (%s). %s", code, degradedExtractionNote)
			case "p":
				content.Title = "Instagram Post"
				content.Description = fmt.Sprintf("View this Instagram Post (%s). %s", code, degradedExtractionNote)
			}
			setMetadata(content, "shortcode", code)
			setMetadata(content, "requiresDirectAccess", true)
		}
		if content.Author == "" {
			if valid, name := usernameFromURL(username); valid {
				content.Author = "@" + name
			}
		}
	}
}

// usernameFromURL validates a username captured from the URL path,
// rejecting the literal "reel" and "p" path segments as false positives.
func usernameFromURL(match []string) (bool, string) {
	if match == nil {
		return false, ""
	}
	if match[1] == "reel" || match[1] == "p" {
		return false, ""
	}
	return true, match[1]
}

func setMetadata(content *models.ExtractedContent, key string, value any) {
	if content.Metadata == nil {
		content.Metadata = make(map[string]any)
	}
	content.Metadata[key] = value
}
