package pending

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewPromoteCommand creates the promote pending suggestion command
func NewPromoteCommand(services *Services) *cobra.Command {
	return &cobra.Command{
		Use:   "promote [PENDING_ID]",
		Short: "Promote a pending suggestion into the dictionary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := resolveServices(ctx, services)
			if err != nil {
				return err
			}
			defer cleanup()

			entry, err := svc.Tracker.Promote(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to promote pending suggestion: %w", err)
			}

			cmd.Printf("Promoted to dictionary entry %d: %q -> %q\n", entry.ID, entry.Wrong, entry.Correct)
			return nil
		},
	}
}
