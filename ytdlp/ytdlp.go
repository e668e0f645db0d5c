package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultBinary is the yt-dlp executable looked up on PATH.
const DefaultBinary = "yt-dlp"

var (
	// ErrNotInstalled indicates the yt-dlp binary could not be found.
	ErrNotInstalled = errors.New("yt-dlp is not installed")
	// ErrUnsupported indicates yt-dlp does not support the given URL.
	ErrUnsupported = errors.New("unsupported URL")
)

// Metadata is the subset of yt-dlp's --dump-json output the pipeline
// consumes.
type Metadata struct {
	Title        string   `json:"title"`
	FullTitle    string   `json:"fulltitle"`
	Description  string   `json:"description"`
	Uploader     string   `json:"uploader"`
	Channel      string   `json:"channel"`
	Creator      string   `json:"creator"`
	Extractor    string   `json:"extractor"`
	Duration     float64  `json:"duration"`
	ViewCount    int64    `json:"view_count"`
	LikeCount    int64    `json:"like_count"`
	CommentCount int64    `json:"comment_count"`
	UploadDate   string   `json:"upload_date"`
	Thumbnail    string   `json:"thumbnail"`
	Tags         []string `json:"tags"`
	Categories   []string `json:"categories"`
	WebpageURL   string   `json:"webpage_url"`
}

// BestTitle returns the first non-empty of title and fulltitle, falling
// back to "Untitled".
func (m *Metadata) BestTitle() string {
	if m.Title != "" {
		return m.Title
	}
	if m.FullTitle != "" {
		return m.FullTitle
	}
	return "Untitled"
}

// BestAuthor returns the first non-empty of uploader, channel, and creator.
func (m *Metadata) BestAuthor() string {
	if m.Uploader != "" {
		return m.Uploader
	}
	if m.Channel != "" {
		return m.Channel
	}
	return m.Creator
}

// Runner invokes yt-dlp as a subprocess to extract metadata for supported
// platform URLs without downloading any media.
type Runner struct {
	binary string
}

// New creates a Runner. An empty binary uses DefaultBinary from PATH.
func New(binary string) *Runner {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Runner{binary: binary}
}

// Extract runs yt-dlp --dump-json against the URL and parses the result.
// A missing binary maps to ErrNotInstalled and an unsupported URL to
// ErrUnsupported so callers can fall back to HTML extraction; any other
// failure is returned as-is.
func (r *Runner) Extract(ctx context.Context, targetURL string) (*Metadata, error) {
	cmd := exec.CommandContext(ctx, r.binary, "--dump-json", "--no-warnings", "--no-playlist", targetURL)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, classifyError(err, stderr.String())
	}

	var meta Metadata
	if err := json.Unmarshal(stdout.Bytes(), &meta); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
	}

	return &meta, nil
}

// classifyError maps a subprocess failure onto the package's error
// taxonomy.
func classifyError(err error, stderr string) error {
	if errors.Is(err, exec.ErrNotFound) {
		return ErrNotInstalled
	}
	if strings.Contains(stderr, "Unsupported URL") {
		return fmt.Errorf("%w: %s", ErrUnsupported, firstLine(stderr))
	}
	return fmt.Errorf("yt-dlp failed: %s: %w", firstLine(stderr), err)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
