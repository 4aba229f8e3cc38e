package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Neopallium/sub-script/pkg/types"
)

var (
	nameColor       = color.New(color.FgCyan)
	unresolvedColor = color.New(color.FgRed)
	customColor     = color.New(color.FgYellow)
)

func printType(w io.Writer, name string, ref *types.TypeRef) {
	def := types.Describe(ref)
	switch {
	case !ref.IsResolved():
		def = unresolvedColor.Sprint(def)
	case strings.HasPrefix(def, "custom "):
		def = customColor.Sprint(def)
	}
	fmt.Fprintf(w, "%s => %s\n", nameColor.Sprint(name), def)
}

func newTypesCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "types",
		Short: "List registered types",
		Long: `List every registered name with its definition, in registration order.

Examples:
  subscript -s chain.json types
  subscript -s chain.json types --unresolved
  subscript -s chain.json types --filter Balance`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			unresolvedOnly, _ := cmd.Flags().GetBool("unresolved")
			filter, _ := cmd.Flags().GetString("filter")

			lookup, _, err := buildLookup(cmd)
			if err != nil {
				return err
			}

			names := lookup.Names()
			if unresolvedOnly {
				names = lookup.Unresolved()
			}
			out := cmd.OutOrStdout()
			for _, name := range names {
				if filter != "" && !strings.Contains(name, filter) {
					continue
				}
				if ref, ok := lookup.Get(name); ok {
					printType(out, name, ref)
				}
			}
			return nil
		},
	}
	c.Flags().Bool("unresolved", false, "Only list names that were referenced but never defined")
	c.Flags().String("filter", "", "Only list names containing this text")
	return c
}

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <type>",
		Short: "Show the definition behind a type expression",
		Long: `Parse a type expression and show what it resolves to, including any
custom encoders registered on it.

Examples:
  subscript describe "Vec<(u8, Text)>"
  subscript -s chain.json describe MultiAddress`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lookup, _, err := buildLookup(cmd)
			if err != nil {
				return err
			}
			ref, err := lookup.ParseType(args[0])
			if err != nil {
				return fmt.Errorf("failed to parse type: %w", err)
			}

			out := cmd.OutOrStdout()
			printType(out, args[0], ref)
			if c, ok := ref.Meta().(*types.Custom); ok {
				for _, typ := range c.EncoderTypes() {
					fmt.Fprintf(out, "  encodes %s\n", typ)
				}
				if c.HasDecoder() {
					fmt.Fprintln(out, "  custom decoder")
				}
			}
			return nil
		},
	}
}
