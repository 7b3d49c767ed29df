package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/jfmyers9/encore/internal/deck"
	"github.com/jfmyers9/encore/internal/music"
	"github.com/jfmyers9/encore/internal/player"
)

const maxRecentTracks = 5

// Config holds TUI configuration options
type Config struct {
	RefreshRate time.Duration // How often to refresh the display
	BrowseTitle string        // Title of the browse panel
}

// DefaultConfig returns the default TUI configuration
func DefaultConfig() Config {
	return Config{
		RefreshRate: 250 * time.Millisecond,
		BrowseTitle: "Library",
	}
}

// RecentTrack stores info about a recently played track
type RecentTrack struct {
	Name     string
	Artists  string
	PlayedAt time.Time
}

// App is the TUI for browsing and previewing tracks
type App struct {
	app        *tview.Application
	nowPlaying *tview.TextView
	progress   *tview.TextView
	recent     *tview.TextView
	status     *tview.TextView
	favorites  *tview.List
	browse     *tview.List

	config Config
	deck   *deck.Deck

	// Mutex protects state written by player and favorites observers
	// and read by the refresh ticker.
	mu sync.Mutex

	// Current state (guarded by mu)
	snapshot     player.Snapshot
	favTracks    []music.Track
	browseTracks []music.Track
	message      string
	sessionStart time.Time

	// Ring buffer for recently started tracks
	recentBuf   [maxRecentTracks]RecentTrack
	recentCount int
	lastTrackID string

	// Last-rendered content for change detection
	lastNowPlaying string
	lastProgress   string
	lastRecent     string
	lastStatus     string

	// Cached progress bar width to stabilize change detection.
	// Updated only when GetInnerRect returns a positive value.
	lastBarWidth int

	cancelFunc context.CancelFunc
}

// New creates a TUI driving d
func New(d *deck.Deck, cfg Config) *App {
	if cfg.RefreshRate <= 0 {
		cfg.RefreshRate = DefaultConfig().RefreshRate
	}
	if cfg.BrowseTitle == "" {
		cfg.BrowseTitle = DefaultConfig().BrowseTitle
	}

	a := &App{
		app:          tview.NewApplication(),
		config:       cfg,
		deck:         d,
		sessionStart: time.Now(),
	}
	a.setupUI()
	return a
}

// SetBrowseTracks replaces the tracks listed in the browse panel
func (a *App) SetBrowseTracks(tracks []music.Track) {
	a.mu.Lock()
	a.browseTracks = tracks
	a.mu.Unlock()

	a.app.QueueUpdateDraw(func() {
		fillList(a.browse, tracks, a.deck.Favorites().IsFavorite)
	})
}

// setupUI creates the UI layout
func (a *App) setupUI() {
	// Now playing panel
	a.nowPlaying = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.nowPlaying.SetBorder(true).
		SetTitle(" Now Playing ").
		SetTitleAlign(tview.AlignLeft)

	// Progress bar
	a.progress = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.progress.SetBorder(true)

	// Favorites and browse lists
	a.favorites = tview.NewList().ShowSecondaryText(true)
	a.favorites.SetBorder(true).
		SetTitle(" Favorites ").
		SetTitleAlign(tview.AlignLeft)
	a.favorites.SetSelectedFunc(func(i int, _, _ string, _ rune) {
		a.playAt(a.favTracksSnapshot(), i)
	})

	a.browse = tview.NewList().ShowSecondaryText(true)
	a.browse.SetBorder(true).
		SetTitle(fmt.Sprintf(" %s ", a.config.BrowseTitle)).
		SetTitleAlign(tview.AlignLeft)
	a.browse.SetSelectedFunc(func(i int, _, _ string, _ rune) {
		a.playAt(a.browseTracksSnapshot(), i)
	})

	// Recent tracks
	a.recent = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	a.recent.SetBorder(true).
		SetTitle(" Recent ").
		SetTitleAlign(tview.AlignLeft)

	// Status bar
	a.status = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)

	// Top row: now playing | recent
	// Middle row: progress bar
	// Main row: favorites | browse
	// Footer: status bar
	topRow := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(a.nowPlaying, 0, 2, false).
		AddItem(a.recent, 0, 1, false)

	lists := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(a.favorites, 0, 1, true).
		AddItem(a.browse, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(topRow, 9, 1, false).
		AddItem(a.progress, 3, 1, false).
		AddItem(lists, 0, 1, true).
		AddItem(a.status, 1, 1, false)

	// Handle keyboard input
	a.app.SetInputCapture(a.handleKeyEvent)

	a.app.SetRoot(flex, true).SetFocus(a.favorites)
}

// handleKeyEvent processes keyboard input
func (a *App) handleKeyEvent(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyTab {
		if a.favorites.HasFocus() {
			a.app.SetFocus(a.browse)
		} else {
			a.app.SetFocus(a.favorites)
		}
		return nil
	}

	switch event.Rune() {
	case 'q', 'Q':
		a.Stop()
		return nil
	case ' ':
		// Play/pause the current track
		a.mu.Lock()
		current := a.snapshot.Track
		a.mu.Unlock()
		if current != nil {
			a.play(*current)
		}
		return nil
	case 's', 'S':
		a.deck.Player().Stop()
		return nil
	case 'f', 'F':
		if track, ok := a.selectedTrack(); ok {
			a.toggleFavorite(track)
		}
		return nil
	}
	return event
}

// Run starts the TUI and blocks until it exits
func (a *App) Run(ctx context.Context) error {
	ctx, a.cancelFunc = context.WithCancel(ctx)

	a.mu.Lock()
	a.snapshot = a.deck.Player().Snapshot()
	a.favTracks = a.deck.Favorites().List()
	favs := a.favTracks
	a.mu.Unlock()
	fillList(a.favorites, favs, func(string) bool { return true })

	unsubPlayer := a.deck.Player().Subscribe(a.onPlayback)
	defer unsubPlayer()
	unsubFavs := a.deck.Favorites().Subscribe(a.onFavorites)
	defer unsubFavs()

	go a.handleUpdates(ctx)

	// Run application
	if err := a.app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

// Stop stops the TUI application
func (a *App) Stop() {
	if a.cancelFunc != nil {
		a.cancelFunc()
	}
	a.app.Stop()
}

// onPlayback records player state changes. Redraws are left to the ticker.
func (a *App) onPlayback(snap player.Snapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.snapshot = snap
	if snap.State == player.StatePlaying && snap.Track != nil && snap.Track.ID != a.lastTrackID {
		a.lastTrackID = snap.Track.ID
		a.addToRecentTracks(*snap.Track)
	}
}

// onFavorites rebuilds both lists so favorite markers stay in sync.
// Changes made from key handlers arrive on the event loop goroutine, so
// the redraw is queued asynchronously.
func (a *App) onFavorites(tracks []music.Track) {
	a.mu.Lock()
	a.favTracks = tracks
	browse := a.browseTracks
	a.mu.Unlock()

	go a.app.QueueUpdateDraw(func() {
		fillList(a.favorites, tracks, func(string) bool { return true })
		fillList(a.browse, browse, a.deck.Favorites().IsFavorite)
	})
}

// handleUpdates drives periodic redraws until ctx is done
func (a *App) handleUpdates(ctx context.Context) {
	ticker := time.NewTicker(a.config.RefreshRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.app.Stop()
			return
		case <-ticker.C:
			a.refresh()
		}
	}
}

// refresh updates all text components
func (a *App) refresh() {
	a.app.QueueUpdateDraw(func() {
		a.mu.Lock()
		defer a.mu.Unlock()

		a.updateNowPlaying()
		a.updateProgress()
		a.updateRecentTracks()
		a.updateStatus()
	})
}

func (a *App) play(track music.Track) {
	err := a.deck.PlayTrack(track)

	a.mu.Lock()
	defer a.mu.Unlock()
	switch {
	case errors.Is(err, player.ErrNoPreviewAvailable):
		a.message = fmt.Sprintf("No preview available for %q", track.Name)
	case err != nil:
		a.message = err.Error()
	default:
		a.message = ""
	}
}

func (a *App) playAt(tracks []music.Track, i int) {
	if i >= 0 && i < len(tracks) {
		a.play(tracks[i])
	}
}

func (a *App) toggleFavorite(track music.Track) {
	added := a.deck.ToggleFavorite(track)

	a.mu.Lock()
	defer a.mu.Unlock()
	if added {
		a.message = fmt.Sprintf("Added %q to favorites", track.Name)
	} else {
		a.message = fmt.Sprintf("Removed %q from favorites", track.Name)
	}
}

// selectedTrack returns the highlighted track of the focused list
func (a *App) selectedTrack() (music.Track, bool) {
	tracks, list := a.favTracksSnapshot(), a.favorites
	if a.browse.HasFocus() {
		tracks, list = a.browseTracksSnapshot(), a.browse
	}

	i := list.GetCurrentItem()
	if i < 0 || i >= len(tracks) {
		return music.Track{}, false
	}
	return tracks[i], true
}

func (a *App) favTracksSnapshot() []music.Track {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.favTracks
}

func (a *App) browseTracksSnapshot() []music.Track {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.browseTracks
}

// addToRecentTracks adds a track to the ring buffer of recent tracks.
// Must be called with a.mu held.
func (a *App) addToRecentTracks(track music.Track) {
	idx := a.recentCount % maxRecentTracks
	a.recentBuf[idx] = RecentTrack{
		Name:     track.Name,
		Artists:  track.ArtistNames(),
		PlayedAt: time.Now(),
	}
	a.recentCount++
}

// getRecentTracks returns recent tracks in most-recent-first order.
// Must be called with a.mu held.
func (a *App) getRecentTracks() []RecentTrack {
	n := a.recentCount
	if n > maxRecentTracks {
		n = maxRecentTracks
	}
	result := make([]RecentTrack, n)
	for i := 0; i < n; i++ {
		// Walk backwards from the most recently written slot
		idx := (a.recentCount - 1 - i) % maxRecentTracks
		result[i] = a.recentBuf[idx]
	}
	return result
}

// updateNowPlaying updates the now playing panel
func (a *App) updateNowPlaying() {
	isFav := false
	if a.snapshot.Track != nil {
		isFav = a.deck.Favorites().IsFavorite(a.snapshot.Track.ID)
	}

	text := nowPlayingText(a.snapshot, isFav)
	if text != a.lastNowPlaying {
		a.lastNowPlaying = text
		a.nowPlaying.SetText(text)
	}
}

// updateProgress updates the progress bar
func (a *App) updateProgress() {
	var text string

	if a.snapshot.Track != nil && a.snapshot.State != player.StateIdle {
		_, _, width, _ := a.progress.GetInnerRect()
		barWidth := width - 6 // Account for percentage display
		// Only update cached width when GetInnerRect returns a positive value,
		// avoiding flicker from transient zero-width during layout.
		if barWidth > 0 {
			a.lastBarWidth = barWidth
		}
		if a.lastBarWidth < 10 {
			a.lastBarWidth = 10
		}

		text = fmt.Sprintf("%s %3.0f%%", buildProgressBar(a.snapshot.Progress, a.lastBarWidth), a.snapshot.Progress)
	}

	if text != a.lastProgress {
		a.lastProgress = text
		a.progress.SetText(text)
	}
}

// updateRecentTracks updates the recent tracks panel
func (a *App) updateRecentTracks() {
	var sb strings.Builder

	tracks := a.getRecentTracks()
	if len(tracks) == 0 {
		sb.WriteString("[gray]Nothing played yet[-]")
	} else {
		for i, track := range tracks {
			if i > 0 {
				sb.WriteString("\n")
			}

			// Truncate name if too long
			name := track.Name
			if len([]rune(name)) > 24 {
				name = string([]rune(name)[:21]) + "..."
			}
			sb.WriteString(fmt.Sprintf("[white]%s[-] [gray]%s[-]", tview.Escape(name), tview.Escape(track.Artists)))
		}
	}

	text := sb.String()
	if text != a.lastRecent {
		a.lastRecent = text
		a.recent.SetText(text)
	}
}

// updateStatus updates the footer with key help or the last message
func (a *App) updateStatus() {
	text := "[gray]enter:play/pause  space:toggle current  s:stop  f:favorite  tab:switch  q:quit[-]"
	if a.message != "" {
		text = fmt.Sprintf("[yellow]%s[-]", tview.Escape(a.message))
	}
	text += fmt.Sprintf("  [gray]%s[-]", formatDuration(time.Since(a.sessionStart)))

	if text != a.lastStatus {
		a.lastStatus = text
		a.status.SetText(text)
	}
}

// fillList replaces the items of list with tracks, marking favorites
func fillList(list *tview.List, tracks []music.Track, isFavorite func(string) bool) {
	current := list.GetCurrentItem()
	list.Clear()

	for _, t := range tracks {
		list.AddItem(trackLabel(t, isFavorite(t.ID)), tview.Escape(t.ArtistNames()), 0, nil)
	}
	if current >= 0 && current < len(tracks) {
		list.SetCurrentItem(current)
	}
}

// trackLabel renders a list entry
func trackLabel(t music.Track, favorite bool) string {
	label := tview.Escape(t.Name)
	if !t.HasPreview() {
		label = "[gray]" + label + " (no preview)[-]"
	}
	if favorite {
		label = "[red]♥[-] " + label
	}
	return label
}

// nowPlayingText renders the now playing panel
func nowPlayingText(snap player.Snapshot, favorite bool) string {
	if snap.Track == nil {
		return "\n\n[gray]Nothing selected[-]"
	}
	t := snap.Track

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("[white::b]%s[-:-:-]\n", tview.Escape(t.Name)))
	sb.WriteString(fmt.Sprintf("[yellow]%s[-]\n", tview.Escape(t.ArtistNames())))

	album := t.Album.Name
	if year := t.Album.Year(); year != "" {
		album = fmt.Sprintf("%s (%s)", album, year)
	}
	sb.WriteString(fmt.Sprintf("[gray]%s[-]", tview.Escape(album)))
	if t.DurationMS > 0 {
		sb.WriteString(fmt.Sprintf(" [gray]%s[-]", formatDuration(t.Duration())))
	}

	// Play state indicator
	var stateIcon string
	switch snap.State {
	case player.StatePlaying:
		stateIcon = "[green]▶[-]" // Play triangle
	case player.StatePaused:
		stateIcon = "[yellow]⏸[-]" // Pause icon
	case player.StateLoading:
		stateIcon = "[gray]…[-]" // Ellipsis
	default:
		stateIcon = "[gray]■[-]" // Stop square
	}
	if favorite {
		stateIcon += " [red]♥[-]"
	}
	sb.WriteString(fmt.Sprintf("\n\n%s", stateIcon))

	return sb.String()
}

// buildProgressBar creates a text-based progress bar for a percentage
func buildProgressBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}

	progress := percent / 100
	if progress > 1 {
		progress = 1
	}
	if progress < 0 {
		progress = 0
	}

	filled := int(progress * float64(width))
	empty := width - filled

	bar := "[green]" + strings.Repeat("█", filled) + "[-]" +
		"[gray]" + strings.Repeat("░", empty) + "[-]"

	return bar
}

// formatDuration formats a duration as MM:SS or HH:MM:SS for longer durations
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
