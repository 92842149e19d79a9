package dictionary

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mizuki-dev/subrefine/internal/repository"
)

// NewEnableCommand creates the enable dictionary entry command
func NewEnableCommand(repo repository.DictionaryRepository) *cobra.Command {
	return newToggleCommand(repo, "enable", true)
}

// NewDisableCommand creates the disable dictionary entry command
func NewDisableCommand(repo repository.DictionaryRepository) *cobra.Command {
	return newToggleCommand(repo, "disable", false)
}

// newToggleCommand builds enable/disable, which differ only in the flag value.
// Disabling keeps the entry and its usage history; only future runs skip it.
func newToggleCommand(repo repository.DictionaryRepository, verb string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " [ENTRY_ID]",
		Short: verb + " a dictionary entry",
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

			if err := dictRepo.SetEnabled(ctx, id, enabled); err != nil {
				return fmt.Errorf("failed to %s dictionary entry: %w", verb, err)
			}

			cmd.Printf("Dictionary entry %d %sd\n", id, verb)
			return nil
		},
	}
}
