package completion

import (
	"strings"

	"github.com/spf13/cobra"
)

// ValidArgsFn defines a completion func to be returned to fetch completion options
type ValidArgsFn func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective)

func Disable(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return nil, cobra.ShellCompDirectiveNoSpace
}

// Values completes a flag from a fixed set of values.
func Values(values ...string) ValidArgsFn {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var filtered []string
		for _, v := range values {
			if strings.HasPrefix(v, toComplete) {
				filtered = append(filtered, v)
			}
		}
		return filtered, cobra.ShellCompDirectiveNoFileComp
	}
}
