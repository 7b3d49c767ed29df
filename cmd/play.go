package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/encore/internal/discord"
	"github.com/jfmyers9/encore/internal/player"
)

// playCmd represents the play command
var playCmd = &cobra.Command{
	Use:   "play <track>",
	Short: "Play the preview clip of a track",
	Long: `Play the 30-second preview clip of a track and wait for it to finish.

The track may be a Spotify track id, a spotify:track: URI or an
open.spotify.com track URL. Press Ctrl+C to stop early.

Exit codes:
  0 - Preview played to the end or was interrupted
  1 - Track not found, has no preview, or playback failed`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().BoolP("favorite", "f", false, "Also add the track to favorites")
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx, sessionOptions{requireCatalog: true})
	if err != nil {
		return err
	}
	defer s.Close()

	formatter, err := formatterFromFlags(cmd, s)
	if err != nil {
		return err
	}

	if s.cfg.Discord.AppID != "" {
		presence := discord.New(s.cfg.Discord.AppID, s.logger)
		go presence.Follow(ctx, s.deck.Player())
	}

	// Subscribe before starting so no transition is missed
	finished := make(chan error, 1)
	var started atomic.Bool
	unsubscribe := s.deck.Player().Subscribe(func(snap player.Snapshot) {
		switch snap.State {
		case player.StatePlaying:
			started.Store(true)
		case player.StateStopped:
			var err error
			if !started.Load() {
				err = errors.New("playback failed to start")
			}
			select {
			case finished <- err:
			default:
			}
		}
	})
	defer unsubscribe()

	track, err := s.deck.PlayRef(ctx, args[0])
	if errors.Is(err, player.ErrNoPreviewAvailable) {
		return fmt.Errorf("%q has no preview clip", track.Name)
	}
	if err != nil {
		return err
	}

	if add, _ := cmd.Flags().GetBool("favorite"); add {
		s.deck.Favorites().Add(track)
	}

	line, err := formatter.Format(track, s.deck.Favorites().IsFavorite(track.ID))
	if err != nil {
		return err
	}
	fmt.Printf("▶ %s\n", line)

	select {
	case err := <-finished:
		return err
	case <-ctx.Done():
		s.logger.Debug().Msg("Interrupted, stopping playback")
		return nil
	}
}
