package cmd

import (
	"github.com/mizuki-dev/subrefine/cmd/pending"
)

func init() {
	rootCmd.AddCommand(pending.NewPendingCommand(nil))
}
