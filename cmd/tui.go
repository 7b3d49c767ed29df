package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/encore/internal/config"
	"github.com/jfmyers9/encore/internal/discord"
	"github.com/jfmyers9/encore/internal/library"
	"github.com/jfmyers9/encore/internal/music"
	"github.com/jfmyers9/encore/internal/tui"
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse, preview and collect tracks in a terminal UI",
	Long: `Display a terminal-based user interface for previewing tracks.

The TUI includes:
- Now playing panel with track, artists, album and play state
- Progress bar for the current preview clip
- Favorites list and a browse list (the curated library, or search
  results with --search)
- Recently played tracks

Keys: enter plays or pauses the selected track, space toggles the current
track, f toggles the selected track's favorite, s stops, tab switches
lists, q quits.

Logs are written to ~/.config/encore/tui.log unless --log-file is set.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().StringP("search", "s", "", "Browse search results instead of the library")
	tuiCmd.Flags().StringP("genre", "g", "", "Only browse library artists of this genre")
	tuiCmd.Flags().Duration("refresh", 250*time.Millisecond, "Display refresh interval")
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	s, err := openSession(ctx, sessionOptions{
		requireCatalog: true,
		defaultLogFile: filepath.Join(config.GetConfigDir(), "tui.log"),
	})
	if err != nil {
		return err
	}
	defer s.Close()

	title, tracks, err := browseTracks(ctx, cmd, s)
	if err != nil {
		return err
	}

	refresh, _ := cmd.Flags().GetDuration("refresh")
	app := tui.New(s.deck, tui.Config{
		RefreshRate: refresh,
		BrowseTitle: title,
	})

	if s.cfg.Discord.AppID != "" {
		presence := discord.New(s.cfg.Discord.AppID, s.logger)
		go presence.Follow(ctx, s.deck.Player())
	}

	// Fill the browse list once the application loop is running
	go app.SetBrowseTracks(tracks)

	s.logger.Info().Int("tracks", len(tracks)).Str("browse", title).Msg("Starting TUI")
	return app.Run(ctx)
}

// browseTracks loads the tracks shown in the browse panel
func browseTracks(ctx context.Context, cmd *cobra.Command, s *session) (string, []music.Track, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if query, _ := cmd.Flags().GetString("search"); query != "" {
		tracks, err := s.catalog.Search(fetchCtx, query, 50)
		if err != nil {
			return "", nil, fmt.Errorf("search failed: %w", err)
		}
		return fmt.Sprintf("Search: %s", query), tracks, nil
	}

	lib, err := library.Load(s.cfg.LibraryFile)
	if err != nil {
		return "", nil, err
	}

	genre, _ := cmd.Flags().GetString("genre")
	artists := lib.ByGenre(genre)
	if len(artists) == 0 {
		return "", nil, fmt.Errorf("no artists in genre %q (available: %s)", genre, strings.Join(lib.Genres(), ", "))
	}

	title := "Library"
	if genre != "" {
		title = fmt.Sprintf("Library: %s", genre)
	}

	ids := (&library.Library{Artists: artists}).TrackIDs()
	tracks, err := s.catalog.Tracks(fetchCtx, ids)
	if err != nil {
		return "", nil, fmt.Errorf("failed to fetch library tracks: %w", err)
	}
	return title, tracks, nil
}
