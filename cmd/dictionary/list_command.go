package dictionary

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mizuki-dev/subrefine/internal/repository"
)

// NewListCommand creates the list dictionary entries command
func NewListCommand(repo repository.DictionaryRepository) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List dictionary entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")

			ctx := context.Background()
			dictRepo, cleanup, err := resolveRepository(ctx, repo)
			if err != nil {
				return err
			}
			defer cleanup()

			entries, err := dictRepo.List(ctx, limit, offset)
			if err != nil {
				return fmt.Errorf("failed to list dictionary entries: %w", err)
			}

			if len(entries) == 0 {
				cmd.Println("No dictionary entries found")
				return nil
			}

			for _, entry := range entries {
				state := "enabled"
				if !entry.IsEnabled {
					state = "disabled"
				}
				cmd.Printf("ID: %d\n", entry.ID)
				cmd.Printf("Correction: %q -> %q\n", entry.Wrong, entry.Correct)
				if entry.Category != "" {
					cmd.Printf("Category: %s\n", entry.Category)
				}
				cmd.Printf("State: %s (used %d times)\n", state, entry.UsedCount)
				cmd.Printf("Created: %s\n", entry.CreatedAt.Format("2006-01-02 15:04:05"))
				cmd.Println("---")
			}

			return nil
		},
	}

	// Add flags
	cmd.Flags().Int("limit", 50, "Maximum number of entries to list")
	cmd.Flags().Int("offset", 0, "Number of entries to skip")

	return cmd
}
