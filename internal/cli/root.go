package cli

import (
	"github.com/spf13/cobra"

	"github.com/tmaki/subvoc/internal/config"
	"github.com/tmaki/subvoc/internal/logging"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "subvoc",
	Short: "Vocabulary study companion for subtitled video",
	Long: `Subvoc turns subtitled video into vocabulary study sessions.

Import a subtitle file for a video, then study it alongside mpv: the current
subtitle follows playback, hotkeys jump between lines, and AI dictionary
lookups let you tag each word with the sense it carries in context.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)

		if configPath == "" {
			var err error
			configPath, err = config.DefaultPath()
			if err != nil {
				return err
			}
		}
		var err error
		cfg, err = config.Load(configPath)
		return err
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Config file path (default ~/.config/subvoc/config.yaml)")
	rootCmd.PersistentFlags().
		String("db", "", "SQLite database path (overrides config)")
}

// database path with the --db flag applied on top of config
func databasePath(cmd *cobra.Command) string {
	if flag, _ := cmd.Flags().GetString("db"); flag != "" {
		return flag
	}
	return cfg.DatabasePath
}
