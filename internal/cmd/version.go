package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rigforge/rigforge/internal/output"
	"github.com/rigforge/rigforge/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output.Println(version.Get().String())
			return nil
		},
	}
}
