package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
)

func newSnapshotCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage stored schema snapshots",
		Long: `Store validated schema documents in the data directory so they can be
loaded later with --snapshot <id> or served by the HTTP API.`,
	}
	c.AddCommand(newSnapshotSaveCmd(), newSnapshotListCmd(), newSnapshotShowCmd(), newSnapshotDeleteCmd())
	return c
}

func newSnapshotSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <label> <file>",
		Short: "Validate a schema file and store it",
		Long: `Validate a schema file and store it under a new snapshot id.

Examples:
  subscript snapshot save mainnet-v12 ./types.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read schema file: %w", err)
			}
			store, err := openSnapshots(settingsFrom(cmd))
			if err != nil {
				return err
			}
			defer store.Close()

			id, err := store.Save(args[0], doc)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id.String())
			return nil
		},
	}
}

func newSnapshotListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSnapshots(settingsFrom(cmd))
			if err != nil {
				return err
			}
			defer store.Close()

			infos, err := store.List()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tLABEL\tTYPES\tSIZE\tCREATED")
			for _, info := range infos {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
					info.ID, info.Label, info.Types, info.Size, info.Created.UTC().Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
}

func newSnapshotShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print the schema document stored in a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ksuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid snapshot id %q: %w", args[0], err)
			}
			store, err := openSnapshots(settingsFrom(cmd))
			if err != nil {
				return err
			}
			defer store.Close()

			doc, _, err := store.Load(id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(doc))
			return nil
		},
	}
}

func newSnapshotDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ksuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid snapshot id %q: %w", args[0], err)
			}
			store, err := openSnapshots(settingsFrom(cmd))
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			return nil
		},
	}
}
