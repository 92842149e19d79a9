package pending

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewRejectCommand creates the reject pending suggestion command
func NewRejectCommand(services *Services) *cobra.Command {
	return &cobra.Command{
		Use:   "reject [PENDING_ID]",
		Short: "Reject a pending suggestion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := resolveServices(ctx, services)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.Tracker.Reject(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to reject pending suggestion: %w", err)
			}

			cmd.Printf("Rejected pending suggestion %s\n", args[0])
			return nil
		},
	}
}
