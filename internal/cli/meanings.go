package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tmaki/subvoc/internal/store"
)

var meaningsCmd = &cobra.Command{
	Use:   "meanings",
	Short: "Manage the stored meaning records",
	Long: `List and edit the meaning records accumulated from dictionary lookups.

Meanings are created automatically when a lookup result is tagged during a
study session; this command covers the occasional manual fix.`,
}

var meaningsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored meanings",
	RunE:  runMeaningsList,
}

var meaningsAddCmd = &cobra.Command{
	Use:   "add [word] [label]",
	Short: "Add a meaning by hand",
	Args:  cobra.ExactArgs(2),
	RunE:  runMeaningsAdd,
}

var meaningsEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a meaning's label or definition",
	Args:  cobra.ExactArgs(1),
	RunE:  runMeaningsEdit,
}

var meaningsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a meaning",
	Args:  cobra.ExactArgs(1),
	RunE:  runMeaningsDelete,
}

func init() {
	rootCmd.AddCommand(meaningsCmd)
	meaningsCmd.AddCommand(meaningsListCmd)
	meaningsCmd.AddCommand(meaningsAddCmd)
	meaningsCmd.AddCommand(meaningsEditCmd)
	meaningsCmd.AddCommand(meaningsDeleteCmd)

	meaningsAddCmd.Flags().String("definition", "", "Definition text")
	meaningsAddCmd.Flags().String("pos", "", "Part of speech")

	meaningsEditCmd.Flags().String("label", "", "New label")
	meaningsEditCmd.Flags().String("definition", "", "New definition text")
	meaningsEditCmd.Flags().String("pos", "", "New part of speech")
}

func runMeaningsList(cmd *cobra.Command, args []string) error {
	db, err := store.OpenSQLite(databasePath(cmd))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	list, err := db.ListMeanings(context.Background())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No meanings stored yet.")
		return nil
	}
	for _, m := range list {
		line := fmt.Sprintf("%d\t%s\t%s", m.ID, m.Word, m.Label)
		if m.PartOfSpeech != "" {
			line += fmt.Sprintf(" (%s)", m.PartOfSpeech)
		}
		if m.Definition != "" {
			line += "\t" + m.Definition
		}
		fmt.Println(line)
	}
	return nil
}

func runMeaningsAdd(cmd *cobra.Command, args []string) error {
	definition, _ := cmd.Flags().GetString("definition")
	pos, _ := cmd.Flags().GetString("pos")

	db, err := store.OpenSQLite(databasePath(cmd))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	m, err := db.CreateMeaning(context.Background(), store.Meaning{
		Word:         args[0],
		Label:        args[1],
		Definition:   definition,
		PartOfSpeech: pos,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Created meaning %d for %q\n", m.ID, m.Word)
	return nil
}

func runMeaningsEdit(cmd *cobra.Command, args []string) error {
	var id int64
	if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
		return fmt.Errorf("invalid meaning id %q", args[0])
	}

	db, err := store.OpenSQLite(databasePath(cmd))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	m, err := db.GetMeaning(ctx, id)
	if err != nil {
		return err
	}

	if v, _ := cmd.Flags().GetString("label"); v != "" {
		m.Label = v
	}
	if v, _ := cmd.Flags().GetString("definition"); v != "" {
		m.Definition = v
	}
	if v, _ := cmd.Flags().GetString("pos"); v != "" {
		m.PartOfSpeech = v
	}

	if err := db.UpdateMeaning(ctx, m); err != nil {
		return err
	}

	fmt.Printf("Updated meaning %d\n", id)
	return nil
}

func runMeaningsDelete(cmd *cobra.Command, args []string) error {
	var id int64
	if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
		return fmt.Errorf("invalid meaning id %q", args[0])
	}

	db, err := store.OpenSQLite(databasePath(cmd))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.DeleteMeaning(context.Background(), id); err != nil {
		return err
	}

	fmt.Printf("Deleted meaning %d\n", id)
	return nil
}
