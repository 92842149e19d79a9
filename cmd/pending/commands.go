package pending

import (
	"github.com/spf13/cobra"
)

// NewPendingCommand creates the main pending command
func NewPendingCommand(services *Services) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Manage pending dictionary suggestions",
		Long:  `List, promote, and reject dictionary candidates accumulated by review runs`,
	}

	// Add subcommands
	cmd.AddCommand(NewListCommand(services))
	cmd.AddCommand(NewPromoteCommand(services))
	cmd.AddCommand(NewRejectCommand(services))

	return cmd
}
