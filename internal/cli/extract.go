package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tmaki/subvoc/internal/media"
)

var extractCmd = &cobra.Command{
	Use:   "extract [media_file]",
	Short: "Extract embedded subtitles from a media file",
	Long: `Extract an embedded subtitle stream from a video container to a WebVTT
file, ready for import.

Without --stream the available subtitle streams are listed.

Examples:
  subvoc extract episode01.mkv
  subvoc extract episode01.mkv --stream 0
  subvoc extract episode01.mkv --stream 1 -o episode01.es.vtt`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().
		Int("stream", -1, "Subtitle stream index to extract (see the listing without this flag)")
	extractCmd.Flags().
		StringP("output", "o", "", "Output .vtt path (default: media file name with .vtt extension)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	mediaPath := args[0]
	ctx := context.Background()

	stream, _ := cmd.Flags().GetInt("stream")
	outputPath, _ := cmd.Flags().GetString("output")

	extractor := media.NewExtractor()

	info, err := extractor.Probe(ctx, mediaPath)
	if err != nil {
		return err
	}
	if len(info.Subtitles) == 0 {
		return fmt.Errorf("no embedded subtitle streams in %s", mediaPath)
	}

	if stream < 0 {
		fmt.Printf("Subtitle streams in %s:\n", mediaPath)
		for _, s := range info.Subtitles {
			desc := s.Language
			if s.Title != "" {
				desc += " " + s.Title
			}
			if desc == "" {
				desc = "(untagged)"
			}
			fmt.Printf("  %d: %s [%s]\n", s.Index, desc, s.Codec)
		}
		fmt.Println("\nRe-run with --stream N to extract one.")
		return nil
	}

	if stream >= len(info.Subtitles) {
		return fmt.Errorf("stream %d out of range: %d subtitle streams available", stream, len(info.Subtitles))
	}

	if outputPath == "" {
		outputPath = strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath)) + ".vtt"
	}

	logger.Infow("Extracting subtitles",
		"input", mediaPath,
		"stream", stream,
		"output", outputPath,
	)

	if err := extractor.ExtractSubtitles(ctx, mediaPath, outputPath, stream); err != nil {
		return err
	}

	fmt.Printf("Extracted subtitles to %s\n", outputPath)
	return nil
}
