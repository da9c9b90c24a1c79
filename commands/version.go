package commands

import (
	"fmt"

	"github.com/openintegrity/oi-audit/util/cobrautil/completion"
	"github.com/openintegrity/oi-audit/version"
	"github.com/spf13/cobra"
)

func runVersion(streams Streams) error {
	_, err := fmt.Fprintln(streams.Out, version.Package, version.Version, version.Revision)
	return err
}

func versionCmd(streams Streams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show oi-audit version information",
		Args:  usageArgs(cobra.ExactArgs(0)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(streams)
		},
		ValidArgsFunction:     completion.Disable,
		DisableFlagsInUseLine: true,
	}
	return cmd
}
