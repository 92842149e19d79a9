package dictionary

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mizuki-dev/subrefine/internal/repository"
)

// NewRemoveCommand creates the remove dictionary entry command
func NewRemoveCommand(repo repository.DictionaryRepository) *cobra.Command {
	return &cobra.Command{
		Use:   "remove [ENTRY_ID]",
		Short: "Remove a dictionary entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid entry ID: %s", args[0])
			}

			ctx := context.Background()
			dictRepo, cleanup, err := resolveRepository(ctx, repo)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := dictRepo.Delete(ctx, id); err != nil {
				return fmt.Errorf("failed to remove dictionary entry: %w", err)
			}

			cmd.Printf("Removed dictionary entry %d\n", id)
			return nil
		},
	}
}
