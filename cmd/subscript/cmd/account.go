package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Neopallium/sub-script/pkg/account"
)

func newAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "account <name>...",
		Short: "Print development account ids",
		Long: `Print the account id derived for each development name. These are the ids
a "//Name" string encodes to in an AccountId slot.

Examples:
  subscript account Alice Bob
  subscript account //Charlie`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyring := account.NewKeyring()
			out := cmd.OutOrStdout()
			for _, arg := range args {
				name := strings.TrimPrefix(arg, "//")
				if name == "" {
					return fmt.Errorf("empty account name")
				}
				fmt.Fprintf(out, "%s\t%s\n", nameColor.Sprint(name), keyring.Get(name).Account())
			}
			return nil
		},
	}
}
