package cmd

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/mattn/go-runewidth"

	"github.com/jfmyers9/encore/internal/music"
)

// trackView is the data available to output format templates
type trackView struct {
	ID       string
	Name     string
	Artists  string
	Album    string
	Year     string
	Duration string
	URL      string
	Preview  bool
	Favorite bool
}

func newTrackView(t music.Track, favorite bool) trackView {
	duration := ""
	if t.DurationMS > 0 {
		d := t.Duration()
		duration = fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
	}
	return trackView{
		ID:       t.ID,
		Name:     t.Name,
		Artists:  t.ArtistNames(),
		Album:    t.Album.Name,
		Year:     t.Album.Year(),
		Duration: duration,
		URL:      t.ExternalURL,
		Preview:  t.HasPreview(),
		Favorite: favorite,
	}
}

// trackFormatter renders tracks with a user template and optional fixed width
type trackFormatter struct {
	tmpl  *template.Template
	width int
}

func newTrackFormatter(templateStr string, width int) (*trackFormatter, error) {
	tmpl, err := template.New("output").Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}
	return &trackFormatter{tmpl: tmpl, width: width}, nil
}

// Format applies the template to the track data
func (f *trackFormatter) Format(t music.Track, favorite bool) (string, error) {
	var buf bytes.Buffer
	if err := f.tmpl.Execute(&buf, newTrackView(t, favorite)); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}
	return padToWidth(buf.String(), f.width), nil
}

// Line formats a track as a list entry with favorite and preview markers
func (f *trackFormatter) Line(t music.Track, favorite bool) (string, error) {
	text, err := f.Format(t, favorite)
	if err != nil {
		return "", err
	}

	marker := " "
	if favorite {
		marker = "♥"
	}
	line := fmt.Sprintf("%s %s  %s", marker, padToWidth(t.ID, 22), text)
	if !t.HasPreview() {
		line += "  (no preview)"
	}
	return strings.TrimRight(line, " "), nil
}

// padToWidth pads or truncates text to a fixed display width.
// Width is measured in display columns, accounting for Unicode characters.
// If width <= 0, returns text unchanged.
// If text is longer than width, truncates with "..." suffix.
// If text is shorter than width, pads with spaces.
func padToWidth(text string, width int) string {
	if width <= 0 {
		return text // no padding requested
	}

	currentWidth := runewidth.StringWidth(text)
	switch {
	case currentWidth > width:
		const ellipsis = "..."
		if width <= len(ellipsis) {
			return runewidth.Truncate(ellipsis, width, "")
		}
		// Wide runes may leave the truncated text a column short
		result := runewidth.Truncate(text, width-len(ellipsis), "") + ellipsis
		return runewidth.FillRight(result, width)
	case currentWidth < width:
		return runewidth.FillRight(text, width)
	}
	return text // exactly the right width
}
