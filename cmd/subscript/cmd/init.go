package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Neopallium/sub-script/pkg/config"
)

func newInitCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Long: `Write a config file with default settings and a freshly generated API key
for the HTTP server.

This is optional: every setting also has a default, an environment variable
(SUBSCRIPT_SERVER_PORT, SUBSCRIPT_CODEC_REDEFINE, ...) and usually a flag.

Examples:
  subscript init
  subscript init --config ./subscript.yaml --data-dir ./data --force`,
		Args: cobra.NoArgs,
		// The config being written may not parse yet
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			dataDir, _ := cmd.Flags().GetString("data-dir")
			force, _ := cmd.Flags().GetBool("force")

			if path == "" {
				path = config.GetDefaultConfigPath()
			}
			if config.ConfigExists(path) && !force {
				return fmt.Errorf("config file %s already exists, use --force to overwrite", path)
			}

			cfg, err := config.BootstrapConfig(path, dataDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config written to %s\n", path)
			fmt.Fprintf(out, "Data directory: %s\n", cfg.DataDir)
			fmt.Fprintf(out, "API key: %s\n", cfg.Server.APIKey)
			return nil
		},
	}
	c.Flags().Bool("force", false, "Overwrite an existing config file")
	return c
}
