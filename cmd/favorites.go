package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/encore/internal/favorites"
	"github.com/jfmyers9/encore/internal/library"
	"github.com/jfmyers9/encore/internal/music"
	"github.com/jfmyers9/encore/pkg/spotify"
)

// favoritesCmd represents the favorites command group
var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "Manage the favorites list",
	Long: `Manage the list of favorite tracks.

Favorites are stored under the configured key (default spotify-favorites)
in the configured store backend. Tracks may be given as Spotify ids,
spotify:track: URIs or open.spotify.com URLs.`,
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorite tracks",
	Args:  cobra.NoArgs,
	RunE:  runFavoritesList,
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add <track>...",
	Short: "Add tracks to favorites",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFavoritesAdd,
}

var favoritesRemoveCmd = &cobra.Command{
	Use:     "remove <track>...",
	Aliases: []string{"rm"},
	Short:   "Remove tracks from favorites",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runFavoritesRemove,
}

var favoritesToggleCmd = &cobra.Command{
	Use:   "toggle <track>",
	Short: "Add a track to favorites, or remove it if already present",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoritesToggle,
}

var favoritesSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Add the default favorites",
	Long: `Add the default favorite tracks that are not yet in the list.

The defaults are read from favorites.defaults in the config file. When
none are configured, every track of the curated library is used. Tracks
the catalog does not return are skipped.`,
	Args: cobra.NoArgs,
	RunE: runFavoritesSeed,
}

var favoritesExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write favorites to a JSON or YAML file",
	Long: `Write favorites to a file. The format follows the file extension
(.yaml or .yml for YAML, JSON otherwise). Without a file, or with "-",
JSON is written to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFavoritesExport,
}

var favoritesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Add favorites from a JSON or YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoritesImport,
}

func init() {
	rootCmd.AddCommand(favoritesCmd)
	favoritesCmd.AddCommand(favoritesListCmd, favoritesAddCmd, favoritesRemoveCmd,
		favoritesToggleCmd, favoritesSeedCmd, favoritesExportCmd, favoritesImportCmd)

	favoritesListCmd.Flags().StringP("format", "f", "", "Output format template (overrides config)")
	favoritesListCmd.Flags().IntP("width", "w", 0, "Fixed output width (0=disabled, overrides config)")
	favoritesImportCmd.Flags().Bool("replace", false, "Replace the list instead of adding to it")
}

// withSession opens a session bounded by timeout and closes it after fn
func withSession(cmd *cobra.Command, requireCatalog bool, fn func(ctx context.Context, s *session) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	s, err := openSession(ctx, sessionOptions{requireCatalog: requireCatalog})
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(ctx, s)
}

func runFavoritesList(cmd *cobra.Command, args []string) error {
	return withSession(cmd, false, func(_ context.Context, s *session) error {
		formatter, err := formatterFromFlags(cmd, s)
		if err != nil {
			return err
		}

		tracks := s.deck.Favorites().List()
		if len(tracks) == 0 {
			fmt.Println("No favorites yet. Add some with 'encore favorites add' or 'encore favorites seed'")
			return nil
		}
		for _, t := range tracks {
			line, err := formatter.Line(t, true)
			if err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}
			fmt.Println(line)
		}
		return nil
	})
}

func runFavoritesAdd(cmd *cobra.Command, args []string) error {
	return withSession(cmd, true, func(ctx context.Context, s *session) error {
		var tracks []music.Track
		for _, ref := range args {
			t, err := s.deck.Lookup(ctx, ref)
			if err != nil {
				return fmt.Errorf("failed to look up %s: %w", ref, err)
			}
			tracks = append(tracks, t)
		}

		added := s.deck.Favorites().Add(tracks...)
		fmt.Printf("Added %d of %d tracks\n", added, len(tracks))
		return nil
	})
}

func runFavoritesRemove(cmd *cobra.Command, args []string) error {
	return withSession(cmd, false, func(_ context.Context, s *session) error {
		removed := 0
		for _, ref := range args {
			id := spotify.ExtractID(ref, spotify.KindTrack)
			if id == "" {
				return fmt.Errorf("not a track reference: %q", ref)
			}
			if s.deck.Favorites().Remove(id) {
				removed++
			}
		}
		fmt.Printf("Removed %d of %d tracks\n", removed, len(args))
		return nil
	})
}

func runFavoritesToggle(cmd *cobra.Command, args []string) error {
	id := spotify.ExtractID(args[0], spotify.KindTrack)
	if id == "" {
		return fmt.Errorf("not a track reference: %q", args[0])
	}

	return withSession(cmd, false, func(ctx context.Context, s *session) error {
		favs := s.deck.Favorites()

		// Removing needs no catalog lookup
		if favs.IsFavorite(id) {
			favs.Remove(id)
			fmt.Printf("Removed %s from favorites\n", id)
			return nil
		}
		if s.catalog == nil {
			return errNoCredentials
		}

		track, err := s.deck.Lookup(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to look up %s: %w", id, err)
		}
		s.deck.ToggleFavorite(track)
		fmt.Printf("Added %s - %s to favorites\n", track.ArtistNames(), track.Name)
		return nil
	})
}

func runFavoritesSeed(cmd *cobra.Command, args []string) error {
	return withSession(cmd, true, func(ctx context.Context, s *session) error {
		ids := s.cfg.Favorites.Defaults
		if len(ids) == 0 {
			lib, err := library.Load(s.cfg.LibraryFile)
			if err != nil {
				return err
			}
			ids = lib.TrackIDs()
		}

		added, err := s.deck.Seed(ctx, ids)
		if err != nil {
			return err
		}
		fmt.Printf("Added %d default favorites\n", added)
		return nil
	})
}

func runFavoritesExport(cmd *cobra.Command, args []string) error {
	return withSession(cmd, false, func(_ context.Context, s *session) error {
		tracks := s.deck.Favorites().List()

		if len(args) == 0 || args[0] == "-" {
			return favorites.Export(os.Stdout, tracks, favorites.FormatJSON)
		}

		path := args[0]
		tmp := path + ".tmp"
		f, err := os.Create(tmp)
		if err != nil {
			return fmt.Errorf("failed to create export file: %w", err)
		}
		if err := favorites.Export(f, tracks, favorites.FormatForPath(path)); err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
			return err
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("failed to write export file: %w", err)
		}
		if err := os.Rename(tmp, path); err != nil {
			return fmt.Errorf("failed to write export file: %w", err)
		}

		fmt.Fprintf(os.Stderr, "Exported %d favorites to %s\n", len(tracks), path)
		return nil
	})
}

func runFavoritesImport(cmd *cobra.Command, args []string) error {
	path := args[0]

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open import file: %w", err)
		}
		defer f.Close()
		r = f
	}

	tracks, err := favorites.Import(r, favorites.FormatForPath(path))
	if err != nil {
		return err
	}

	return withSession(cmd, false, func(_ context.Context, s *session) error {
		if replace, _ := cmd.Flags().GetBool("replace"); replace {
			s.deck.Favorites().Replace(tracks)
			fmt.Printf("Replaced favorites with %d tracks\n", len(tracks))
			return nil
		}

		added := s.deck.Favorites().Add(tracks...)
		fmt.Printf("Imported %d of %d tracks\n", added, len(tracks))
		return nil
	})
}
