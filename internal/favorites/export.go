package favorites

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jfmyers9/encore/internal/music"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FormatForPath picks the export format from a file extension. Anything
// other than .yaml or .yml is JSON.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Export writes tracks to w in format.
func Export(w io.Writer, tracks []music.Track, format string) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tracks); err != nil {
			return fmt.Errorf("failed to encode favorites: %w", err)
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(tracks); err != nil {
			return fmt.Errorf("failed to encode favorites: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// Import reads a track list written by Export. Entries without an id are
// dropped and duplicates keep their first occurrence.
func Import(r io.Reader, format string) ([]music.Track, error) {
	var tracks []music.Track

	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&tracks); err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to decode favorites: %w", err)
		}
	case FormatJSON, "":
		if err := json.NewDecoder(r).Decode(&tracks); err != nil {
			return nil, fmt.Errorf("failed to decode favorites: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown import format %q", format)
	}

	valid := tracks[:0]
	for _, t := range tracks {
		if t.ID != "" {
			valid = append(valid, t)
		}
	}
	return dedupe(valid), nil
}
