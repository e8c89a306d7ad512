package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tmaki/subvoc/internal/store"
	"github.com/tmaki/subvoc/internal/subtitle"
	"github.com/tmaki/subvoc/internal/timeline"
)

var importCmd = &cobra.Command{
	Use:   "import [subtitle_file]",
	Short: "Import a subtitle file for study",
	Long: `Import a subtitle file (SRT or VTT) into the study database.

Each subtitle line is tokenized into taggable words and stored under a media
id. Importing the same media id again replaces its subtitles and discards any
previous token assignments.

Examples:
  subvoc import episode01.srt
  subvoc import episode01.vtt --media-id s1e01`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().
		StringP("media-id", "m", "", "Media id to store subtitles under (default: file name without extension)")
}

func runImport(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	ctx := context.Background()

	mediaID, _ := cmd.Flags().GetString("media-id")
	if mediaID == "" {
		base := filepath.Base(subtitlePath)
		mediaID = strings.TrimSuffix(base, filepath.Ext(base))
	}

	cues, err := subtitle.Open(subtitlePath)
	if err != nil {
		return err
	}
	if len(cues) == 0 {
		return fmt.Errorf("no cues found in %s", subtitlePath)
	}

	entries := subtitle.Entries(mediaID, cues)

	// a dry build surfaces drops and ordinal gaps before anything persists,
	// and mints the generation the stored entries are stamped with
	_, report := timeline.Build(entries)
	for _, id := range report.Dropped {
		logger.Warnw("Dropping malformed subtitle", "id", id)
	}
	for _, gap := range report.Gaps {
		logger.Debugw("Ordinal gap",
			"after", gap.AfterID,
			"before", gap.BeforeID,
			"missing", gap.Missing,
		)
	}

	db, err := store.OpenSQLite(databasePath(cmd))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.SaveSubtitles(ctx, mediaID, report.Generation, entries); err != nil {
		return fmt.Errorf("failed to save subtitles: %w", err)
	}

	logger.Infow("Imported subtitles",
		"media_id", mediaID,
		"entries", len(entries),
		"dropped", len(report.Dropped),
		"generation", report.Generation,
	)

	fmt.Fprintf(os.Stdout, "Imported %d subtitles as %q\n", len(entries), mediaID)
	return nil
}
