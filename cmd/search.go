package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the Spotify catalog for tracks",
	Long: `Search the Spotify catalog for tracks matching a query.

Each result is printed with its track id, which can be passed to
'encore play' or 'encore favorites add'. Favorites are marked with ♥.

The output format can be customized in ~/.config/encore/config.yaml
using a Go template. Available fields: .ID, .Name, .Artists, .Album,
.Year, .Duration, .URL, .Preview, .Favorite`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntP("limit", "n", 10, "Maximum number of results (1-50)")
	searchCmd.Flags().StringP("format", "f", "", "Output format template (overrides config)")
	searchCmd.Flags().IntP("width", "w", 0, "Fixed output width (0=disabled, overrides config)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	s, err := openSession(ctx, sessionOptions{requireCatalog: true})
	if err != nil {
		return err
	}
	defer s.Close()

	formatter, err := formatterFromFlags(cmd, s)
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	tracks, err := s.catalog.Search(ctx, strings.Join(args, " "), limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(tracks) == 0 {
		fmt.Println("No tracks found")
		return nil
	}

	favs := s.deck.Favorites()
	for _, t := range tracks {
		line, err := formatter.Line(t, favs.IsFavorite(t.ID))
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		fmt.Println(line)
	}
	return nil
}

// formatterFromFlags builds a formatter from config, overridden by the
// --format and --width flags when the command has them
func formatterFromFlags(cmd *cobra.Command, s *session) (*trackFormatter, error) {
	format := s.cfg.OutputFormat
	if f, _ := cmd.Flags().GetString("format"); f != "" {
		format = f
	}
	width := s.cfg.OutputWidth
	if w, _ := cmd.Flags().GetInt("width"); w != 0 {
		width = w
	}
	return newTrackFormatter(format, width)
}
