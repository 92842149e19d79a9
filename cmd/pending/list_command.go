package pending

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewListCommand creates the list pending suggestions command
func NewListCommand(services *Services) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending dictionary suggestions",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")

			ctx := context.Background()
			svc, cleanup, err := resolveServices(ctx, services)
			if err != nil {
				return err
			}
			defer cleanup()

			pendings, err := svc.Pending.List(ctx, limit, offset)
			if err != nil {
				return fmt.Errorf("failed to list pending suggestions: %w", err)
			}

			if len(pendings) == 0 {
				cmd.Println("No pending suggestions found")
				return nil
			}

			for _, p := range pendings {
				cmd.Printf("ID: %s\n", p.ID)
				cmd.Printf("Correction: %q -> %q\n", p.Wrong, p.Correct)
				if p.Category != "" {
					cmd.Printf("Category: %s\n", p.Category)
				}
				cmd.Printf("Occurrences: %d (confidence %.2f)\n", p.OccurrenceCount, p.Confidence)
				cmd.Printf("Segments: %v\n", p.SourceSegmentIDs)
				cmd.Printf("First seen: %s\n", p.FirstSeen.Format("2006-01-02 15:04:05"))
				cmd.Printf("Last seen: %s\n", p.LastSeen.Format("2006-01-02 15:04:05"))
				cmd.Println("---")
			}

			return nil
		},
	}

	// Add flags
	cmd.Flags().Int("limit", 50, "Maximum number of suggestions to list")
	cmd.Flags().Int("offset", 0, "Number of suggestions to skip")

	return cmd
}
