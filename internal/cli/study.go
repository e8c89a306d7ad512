package cli

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tmaki/subvoc/internal/dictionary"
	"github.com/tmaki/subvoc/internal/player"
	"github.com/tmaki/subvoc/internal/session"
	"github.com/tmaki/subvoc/internal/store"
	"github.com/tmaki/subvoc/internal/tui"
)

var studyCmd = &cobra.Command{
	Use:   "study [media_id]",
	Short: "Study imported subtitles alongside mpv playback",
	Long: `Open a study session for previously imported subtitles.

mpv must be running with its JSON IPC socket enabled, e.g.:

  mpv --input-ipc-server=/tmp/subvoc-mpv.sock episode01.mkv

The session follows playback: the subtitle under the playhead is shown, and
hotkeys navigate between lines, look up word meanings, and tag tokens.

Examples:
  subvoc study s1e01
  subvoc study s1e01 --socket /tmp/mpv.sock
  subvoc study s1e01 --play episode01.mkv`,
	Args: cobra.ExactArgs(1),
	RunE: runStudy,
}

func init() {
	rootCmd.AddCommand(studyCmd)

	studyCmd.Flags().
		String("socket", "", "mpv IPC socket path (overrides config)")
	studyCmd.Flags().
		String("play", "", "Media file to load into mpv before the session starts")
	studyCmd.Flags().
		String("provider", "", "Dictionary provider: gemini, openai or anthropic (overrides config)")
	studyCmd.Flags().
		StringP("api-key", "k", "", "Dictionary provider API key (or set the provider's env var)")
}

func runStudy(cmd *cobra.Command, args []string) error {
	mediaID := args[0]
	ctx := context.Background()

	socket, _ := cmd.Flags().GetString("socket")
	if socket == "" {
		socket = cfg.MPVSocket
	}
	playPath, _ := cmd.Flags().GetString("play")
	providerStr, _ := cmd.Flags().GetString("provider")
	if providerStr == "" {
		providerStr = cfg.Provider
	}
	apiKey, _ := cmd.Flags().GetString("api-key")

	db, err := store.OpenSQLite(databasePath(cmd))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	entries, generation, err := db.LoadSubtitles(ctx, mediaID)
	if err != nil {
		return fmt.Errorf("failed to load subtitles: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("no subtitles imported for %q: run subvoc import first", mediaID)
	}

	mpv, err := player.ConnectMPV(socket)
	if err != nil {
		return fmt.Errorf("failed to connect to mpv at %s: %w", socket, err)
	}
	defer mpv.Close()

	if playPath != "" {
		if err := mpv.LoadFile(playPath); err != nil {
			return fmt.Errorf("failed to load %s into mpv: %w", playPath, err)
		}
	}

	lookup, err := buildFetcher(ctx, db, dictionary.Provider(providerStr), apiKey)
	if err != nil {
		return err
	}

	clock := player.NewFallbackClock(mpv)
	model, cb := tui.NewModel(clock, logger)

	opts := session.Options{}
	if cfg.LockoutMillis > 0 {
		opts.Lockout = time.Duration(cfg.LockoutMillis) * time.Millisecond
	}

	sess := session.New(mpv, db, lookup, cb, opts)
	report := sess.Restore(mediaID, generation, entries)
	model.SetSession(sess)

	for _, id := range report.Dropped {
		logger.Warnw("Dropping malformed subtitle", "id", id)
	}

	logger.Infow("Starting study session",
		"media_id", mediaID,
		"entries", len(entries),
		"generation", sess.Generation(),
		"socket", socket,
		"provider", providerStr,
	)

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("study session failed: %w", err)
	}
	return nil
}

// builds the session's word lookup: the store's candidate cache first, the
// dictionary provider on a miss, results written back for next time
func buildFetcher(
	ctx context.Context,
	db store.Store,
	provider dictionary.Provider,
	apiKey string,
) (session.Fetcher, error) {
	if apiKey == "" {
		apiKey = cfg.APIKey()
	}
	if apiKey == "" {
		return nil, fmt.Errorf(
			"dictionary API key is required: use --api-key or set the %s provider's env var",
			provider,
		)
	}

	dict, err := dictionary.Factory(ctx, provider, apiKey, dictionary.Options{
		SourceLanguage: cfg.SourceLanguage,
		TargetLanguage: cfg.TargetLanguage,
		Model:          cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create dictionary: %w", err)
	}

	return func(ctx context.Context, word string) ([]dictionary.Candidate, error) {
		cached, err := db.CandidatesForWord(ctx, word)
		if err == nil && len(cached) > 0 {
			return cached, nil
		}
		if err != nil {
			logger.Debugw("Candidate cache read failed", "word", word, "error", err)
		}

		list, err := dict.Lookup(ctx, word)
		if err != nil {
			return nil, err
		}

		saved, err := db.SaveCandidates(ctx, word, list)
		if err != nil {
			logger.Warnw("Failed to cache candidates", "word", word, "error", err)
			return list, nil
		}
		return saved, nil
	}, nil
}
