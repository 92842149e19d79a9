package dictionary

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mizuki-dev/subrefine/internal/model"
	"github.com/mizuki-dev/subrefine/internal/repository"
)

// NewAddCommand creates the add dictionary entry command
func NewAddCommand(repo repository.DictionaryRepository) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [WRONG] [CORRECT]",
		Short: "Add a correction entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, _ := cmd.Flags().GetString("category")
			disabled, _ := cmd.Flags().GetBool("disabled")

			ctx := context.Background()
			dictRepo, cleanup, err := resolveRepository(ctx, repo)
			if err != nil {
				return err
			}
			defer cleanup()

			entry := &model.DictionaryEntry{
				Wrong:     args[0],
				Correct:   args[1],
				Category:  category,
				IsEnabled: !disabled,
			}
			if err := dictRepo.Create(ctx, entry); err != nil {
				return fmt.Errorf("failed to add dictionary entry: %w", err)
			}

			cmd.Printf("Added dictionary entry %d: %q -> %q\n", entry.ID, entry.Wrong, entry.Correct)
			return nil
		},
	}

	// Add flags
	cmd.Flags().String("category", "", "Entry category (e.g. person, place, jargon)")
	cmd.Flags().Bool("disabled", false, "Create the entry in disabled state")

	return cmd
}
