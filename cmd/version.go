package cmd

import (
	"github.com/spf13/cobra"
)

// Populated by goreleaser during build
var (
	version = "latest"
	commit  = "none"
)

func NewVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("themeserver %s (%s)\n", version, commit)
		},
	}
	return cmd
}
