package dictionary

import (
	"github.com/spf13/cobra"

	"github.com/mizuki-dev/subrefine/internal/repository"
)

// NewDictionaryCommand creates the main dictionary command
func NewDictionaryCommand(repo repository.DictionaryRepository) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dictionary",
		Short: "Manage the correction dictionary",
		Long:  `List, add, remove, enable, and disable misrecognition-correction entries`,
	}

	// Add subcommands
	cmd.AddCommand(NewListCommand(repo))
	cmd.AddCommand(NewAddCommand(repo))
	cmd.AddCommand(NewRemoveCommand(repo))
	cmd.AddCommand(NewEnableCommand(repo))
	cmd.AddCommand(NewDisableCommand(repo))

	return cmd
}
