package cmd

import (
	"github.com/mizuki-dev/subrefine/cmd/dictionary"
)

func init() {
	// Repositories are resolved lazily per invocation so that help output
	// works without a database connection.
	rootCmd.AddCommand(dictionary.NewDictionaryCommand(nil))
}
