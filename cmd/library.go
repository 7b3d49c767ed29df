package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/encore/internal/library"
	"github.com/jfmyers9/encore/internal/music"
)

// libraryCmd represents the library command
var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Show the curated artist library",
	Long: `Show the curated library of artists, albums and tracks.

The library is read from ~/.config/encore/library.yaml (library_file in the
config). When the file does not exist the built-in library is shown.

With --tracks the track names are fetched from the Spotify catalog.`,
	Args: cobra.NoArgs,
	RunE: runLibrary,
}

func init() {
	rootCmd.AddCommand(libraryCmd)

	libraryCmd.Flags().StringP("genre", "g", "", "Only show artists of this genre")
	libraryCmd.Flags().Bool("genres", false, "List the genres instead of artists")
	libraryCmd.Flags().BoolP("tracks", "t", false, "Resolve and list track names")
	libraryCmd.Flags().StringP("format", "f", "", "Output format template (overrides config)")
	libraryCmd.Flags().IntP("width", "w", 0, "Fixed output width (0=disabled, overrides config)")
}

func runLibrary(cmd *cobra.Command, args []string) error {
	resolve, _ := cmd.Flags().GetBool("tracks")

	return withSession(cmd, resolve, func(ctx context.Context, s *session) error {
		lib, err := library.Load(s.cfg.LibraryFile)
		if err != nil {
			return err
		}

		if genres, _ := cmd.Flags().GetBool("genres"); genres {
			for _, g := range lib.Genres() {
				fmt.Println(g)
			}
			return nil
		}

		genre, _ := cmd.Flags().GetString("genre")
		artists := lib.ByGenre(genre)
		if len(artists) == 0 {
			return fmt.Errorf("no artists in genre %q (available: %s)", genre, strings.Join(lib.Genres(), ", "))
		}

		var (
			tracks    map[string]music.Track
			formatter *trackFormatter
		)
		if resolve {
			formatter, err = formatterFromFlags(cmd, s)
			if err != nil {
				return err
			}
			tracks, err = resolveTracks(ctx, s, artists)
			if err != nil {
				return err
			}
		}

		favs := s.deck.Favorites()
		for _, a := range artists {
			fmt.Printf("%s [%s] %s\n", a.Name, a.Genre, a.ID)
			for _, al := range a.Albums {
				fmt.Printf("  %s (%d tracks) %s\n", al.Name, len(al.Tracks), al.ID)
				if !resolve {
					continue
				}
				for _, id := range al.Tracks {
					t, ok := tracks[id]
					if !ok {
						fmt.Printf("    ? %s  (not found)\n", id)
						continue
					}
					line, err := formatter.Line(t, favs.IsFavorite(id))
					if err != nil {
						return fmt.Errorf("failed to format output: %w", err)
					}
					fmt.Printf("    %s\n", line)
				}
			}
		}
		return nil
	})
}

// resolveTracks fetches every track listed under artists, keyed by id
func resolveTracks(ctx context.Context, s *session, artists []library.Artist) (map[string]music.Track, error) {
	sub := &library.Library{Artists: artists}
	found, err := s.catalog.Tracks(ctx, sub.TrackIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch library tracks: %w", err)
	}

	tracks := make(map[string]music.Track, len(found))
	for _, t := range found {
		tracks[t.ID] = t
	}
	return tracks, nil
}
