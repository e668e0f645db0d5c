package ytdlp

import (
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"strings"
	"testing"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		stderr string
		want   error
	}{
		{
			name: "missing binary",
			err:  &exec.Error{Name: "yt-dlp", Err: exec.ErrNotFound},
			want: ErrNotInstalled,
		},
		{
			name:   "unsupported url",
			err:    errors.New("exit status 1"),
			stderr: "ERROR: Unsupported URL: https://example.com/page\nmore output",
			want:   ErrUnsupported,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err, tt.stderr)
			if !errors.Is(got, tt.want) {
				t.Errorf("classifyError = %v, want errors.Is %v", got, tt.want)
			}
		})
	}
}

func TestClassifyErrorGenericKeepsFirstLine(t *testing.T) {
	err := classifyError(errors.New("exit status 1"), "ERROR: something broke\nsecond line")

	if errors.Is(err, ErrNotInstalled) || errors.Is(err, ErrUnsupported) {
		t.Fatalf("generic failure misclassified: %v", err)
	}
	if !strings.Contains(err.Error(), "ERROR: something broke") {
		t.Errorf("error %q should carry the first stderr line", err)
	}
	if strings.Contains(err.Error(), "second line") {
		t.Errorf("error %q should not carry later stderr lines", err)
	}
}

func TestExtractMissingBinary(t *testing.T) {
	r := New("yt-dlp-test-binary-that-does-not-exist")

	_, err := r.Extract(context.Background(), "https://youtu.be/abc")
	if !errors.Is(err, ErrNotInstalled) {
		t.Errorf("err = %v, want ErrNotInstalled", err)
	}
}

func TestMetadataParsing(t *testing.T) {
	raw := `{
		"title": "Some Video",
		"fulltitle": "Some Video (Full)",
		"description": "About things",
		"uploader": "chan",
		"extractor": "youtube",
		"duration": 123.5,
		"view_count": 1000,
		"like_count": 42,
		"upload_date": "20250101",
		"thumbnail": "https://i.example.com/t.jpg",
		"tags": ["a", "b"],
		"webpage_url": "https://youtu.be/abc"
	}`

	var meta Metadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if meta.Title != "Some Video" {
		t.Errorf("title = %q", meta.Title)
	}
	if meta.Duration != 123.5 {
		t.Errorf("duration = %v", meta.Duration)
	}
	if meta.ViewCount != 1000 || meta.LikeCount != 42 {
		t.Errorf("counts = %d/%d", meta.ViewCount, meta.LikeCount)
	}
	if len(meta.Tags) != 2 {
		t.Errorf("tags = %v", meta.Tags)
	}
}

func TestBestTitle(t *testing.T) {
	tests := []struct {
		name string
		meta Metadata
		want string
	}{
		{"title wins", Metadata{Title: "a", FullTitle: "b"}, "a"},
		{"fulltitle fallback", Metadata{FullTitle: "b"}, "b"},
		{"default", Metadata{}, "Untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.meta.BestTitle(); got != tt.want {
				t.Errorf("BestTitle = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBestAuthor(t *testing.T) {
	tests := []struct {
		name string
		meta Metadata
		want string
	}{
		{"uploader wins", Metadata{Uploader: "u", Channel: "c", Creator: "x"}, "u"},
		{"channel fallback", Metadata{Channel: "c", Creator: "x"}, "c"},
		{"creator fallback", Metadata{Creator: "x"}, "x"},
		{"empty", Metadata{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.meta.BestAuthor(); got != tt.want {
				t.Errorf("BestAuthor = %q, want %q", got, tt.want)
			}
		})
	}
}
