package cmd

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/jfmyers9/encore/internal/music"
)

func TestPadToWidth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{
			name:     "no padding when width is 0",
			input:    "Hello",
			width:    0,
			expected: "Hello",
		},
		{
			name:     "no padding when width is negative",
			input:    "Hello",
			width:    -1,
			expected: "Hello",
		},
		{
			name:     "pad short text with spaces",
			input:    "Hi",
			width:    10,
			expected: "Hi        ",
		},
		{
			name:     "exact width unchanged",
			input:    "Hello",
			width:    5,
			expected: "Hello",
		},
		{
			name:     "truncate long text with ellipsis",
			input:    "This is a very long string that needs truncation",
			width:    20,
			expected: "This is a very lo...",
		},
		{
			name:     "handle emoji correctly",
			input:    "🎵 Music",
			width:    15,
			expected: "🎵 Music       ", // emoji is 2 columns wide
		},
		{
			name:     "truncate emoji text",
			input:    "🎵 This is a very long song title",
			width:    15,
			expected: "🎵 This is a...",
		},
		{
			name:     "handle unicode characters",
			input:    "日本語",
			width:    10,
			expected: "日本語    ",
		},
		{
			name:     "truncate wide text pads the odd column",
			input:    "日本語とても長いテキスト",
			width:    10,
			expected: "日本語... ",
		},
		{
			name:     "empty string padding",
			input:    "",
			width:    5,
			expected: "     ",
		},
		{
			name:     "width smaller than ellipsis",
			input:    "Hello",
			width:    2,
			expected: "..",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := padToWidth(tt.input, tt.width)
			if result != tt.expected {
				t.Errorf("padToWidth(%q, %d) = %q, want %q", tt.input, tt.width, result, tt.expected)
			}
			if tt.width > 0 && runewidth.StringWidth(result) != tt.width {
				t.Errorf("result width = %d, want %d", runewidth.StringWidth(result), tt.width)
			}
		})
	}
}

func testTrack() music.Track {
	return music.Track{
		ID:         "4VqPOruhp5EdPBeR92t6lQ",
		Name:       "Duality",
		PreviewURL: "https://p.scdn.co/mp3-preview/duality",
		DurationMS: 252_000,
		Artists:    []music.Artist{{Name: "Slipknot"}},
		Album:      music.Album{Name: "Vol. 3: (The Subliminal Verses)", ReleaseDate: "2004-05-25"},
	}
}

func TestTrackFormatter_Format(t *testing.T) {
	tests := []struct {
		name     string
		template string
		width    int
		favorite bool
		expected string
	}{
		{
			name:     "default format",
			template: "{{.Artists}} - {{.Name}}",
			expected: "Slipknot - Duality",
		},
		{
			name:     "album year and duration",
			template: "{{.Name}} ({{.Album}}, {{.Year}}) {{.Duration}}",
			expected: "Duality (Vol. 3: (The Subliminal Verses), 2004) 4:12",
		},
		{
			name:     "conditional favorite",
			template: "{{if .Favorite}}* {{end}}{{.Name}}",
			favorite: true,
			expected: "* Duality",
		},
		{
			name:     "fixed width",
			template: "{{.Artists}} - {{.Name}}",
			width:    12,
			expected: "Slipknot ...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := newTrackFormatter(tt.template, tt.width)
			if err != nil {
				t.Fatalf("newTrackFormatter: %v", err)
			}
			got, err := f.Format(testTrack(), tt.favorite)
			if err != nil {
				t.Fatalf("Format: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Format() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestTrackFormatter_InvalidTemplate(t *testing.T) {
	if _, err := newTrackFormatter("{{.Name", 0); err == nil {
		t.Fatal("expected error for unterminated template")
	}

	f, err := newTrackFormatter("{{.Missing}}", 0)
	if err != nil {
		t.Fatalf("newTrackFormatter: %v", err)
	}
	if _, err := f.Format(testTrack(), false); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestTrackFormatter_Line(t *testing.T) {
	f, err := newTrackFormatter("{{.Artists}} - {{.Name}}", 0)
	if err != nil {
		t.Fatalf("newTrackFormatter: %v", err)
	}

	track := testTrack()
	line, err := f.Line(track, true)
	if err != nil {
		t.Fatalf("Line: %v", err)
	}
	if !strings.HasPrefix(line, "♥ 4VqPOruhp5EdPBeR92t6lQ") || !strings.HasSuffix(line, "Slipknot - Duality") {
		t.Errorf("unexpected line %q", line)
	}

	track.PreviewURL = ""
	line, err = f.Line(track, false)
	if err != nil {
		t.Fatalf("Line: %v", err)
	}
	if !strings.HasPrefix(line, "  4VqPOruhp5EdPBeR92t6lQ") || !strings.HasSuffix(line, "(no preview)") {
		t.Errorf("unexpected line %q", line)
	}
}
