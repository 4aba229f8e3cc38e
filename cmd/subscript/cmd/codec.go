package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Neopallium/sub-script/pkg/value"
)

// readArg returns arg, or stdin when arg is "-"
func readArg(cmd *cobra.Command, arg string) ([]byte, error) {
	if arg != "-" {
		return []byte(arg), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return data, nil
}

func newEncodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode <type> <json>",
		Short: "Encode a JSON value as SCALE bytes",
		Long: `Encode a JSON value as the named type and print the bytes as 0x hex.
Pass - as the value to read it from stdin.

Examples:
  subscript encode "Vec<u16>" '[1, 2, 3]'
  subscript encode "Compact<u128>" 340282366920938463463374607431768211455
  subscript -s chain.json encode AccountId '"//Alice"'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lookup, _, err := buildLookup(cmd)
			if err != nil {
				return err
			}
			raw, err := readArg(cmd, args[1])
			if err != nil {
				return err
			}
			v, err := value.FromJSON(raw)
			if err != nil {
				return err
			}

			ref, err := lookup.ParseType(args[0])
			if err != nil {
				return fmt.Errorf("failed to parse type: %w", err)
			}
			data, err := ref.Encode(v)
			if err != nil {
				return fmt.Errorf("failed to encode %s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), value.Hex(data))
			return nil
		},
	}
}

func newDecodeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "decode <type> <hex>",
		Short: "Decode SCALE bytes into JSON",
		Long: `Decode hex encoded SCALE bytes as the named type and print the value as JSON.
Pass - as the bytes to read the hex from stdin.

Examples:
  subscript decode "Vec<u16>" 0x0c010002000300
  subscript decode "(u8, bool)" 0x0701 --partial`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			partial, _ := cmd.Flags().GetBool("partial")
			compactOut, _ := cmd.Flags().GetBool("compact-json")

			lookup, _, err := buildLookup(cmd)
			if err != nil {
				return err
			}
			raw, err := readArg(cmd, args[1])
			if err != nil {
				return err
			}
			data, err := value.ParseHex(strings.TrimSpace(string(raw)))
			if err != nil {
				return err
			}

			ref, err := lookup.ParseType(args[0])
			if err != nil {
				return fmt.Errorf("failed to parse type: %w", err)
			}
			var v any
			if partial {
				v, err = ref.Decode(data)
			} else {
				v, err = ref.DecodeAll(data)
			}
			if err != nil {
				return fmt.Errorf("failed to decode %s: %w", args[0], err)
			}

			var out []byte
			if compactOut {
				out, err = value.ToJSON(v)
			} else {
				out, err = value.ToJSONIndent(v)
			}
			if err != nil {
				return fmt.Errorf("failed to render value: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	c.Flags().Bool("partial", false, "Ignore bytes left after the value")
	c.Flags().Bool("compact-json", false, "Print JSON on one line")
	return c
}
