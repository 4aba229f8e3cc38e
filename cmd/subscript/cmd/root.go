package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Neopallium/sub-script/pkg/config"
	"github.com/Neopallium/sub-script/pkg/di"
	"github.com/Neopallium/sub-script/pkg/engine"
	"github.com/Neopallium/sub-script/pkg/storage"
	"github.com/Neopallium/sub-script/pkg/types"
)

var container = di.NewContainer()

// SetContainer replaces the dependency container used by every command
func SetContainer(c *di.Container) {
	container = c
}

// settings are resolved once per invocation from config file, environment and flags
type settings struct {
	cfg      *config.Config
	log      *zap.Logger
	snapshot string
}

type settingsKey struct{}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "subscript",
		Short: "sub-script - dynamic SCALE type registry and codec",
		Long: `sub-script loads Substrate style JSON type definitions at runtime and
encodes or decodes values of those types to and from SCALE bytes.

Examples:
  subscript --schema types.json encode Transfer '{"dest": "//Bob", "value": 10}'
  subscript --schema types.json decode "Vec<u32>" 0x080100000002000000
  subscript --schema types.json types --unresolved`,
		SilenceUsage:      true,
		PersistentPreRunE: loadSettings,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Config file (default "+config.GetDefaultConfigPath()+" when present)")
	flags.StringArrayP("schema", "s", nil, "Schema file to load, may be repeated")
	flags.StringP("data-dir", "d", "", "Data directory for schema snapshots")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("redefine", "", "Type redefinition policy: keep, overwrite or reject")
	flags.String("unknown-variant", "", "Unknown enum variant policy: strict or lenient")
	flags.Uint32("token-decimals", 0, "Scale Balance values by 10^n")
	flags.String("snapshot", "", "Also load the schema stored in this snapshot")
	flags.Bool("no-color", false, "Disable colored output")

	root.AddCommand(
		newEncodeCmd(),
		newDecodeCmd(),
		newTypesCmd(),
		newDescribeCmd(),
		newServeCmd(),
		newSnapshotCmd(),
		newInitCmd(),
		newAccountCmd(),
	)
	return root
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func loadSettings(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	if path == "" && config.ConfigExists(config.GetDefaultConfigPath()) {
		path = config.GetDefaultConfigPath()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}

	if flags.Changed("schema") {
		schemas, _ := flags.GetStringArray("schema")
		cfg.Schemas = append(cfg.Schemas, schemas...)
	}
	if flags.Changed("data-dir") {
		cfg.DataDir, _ = flags.GetString("data-dir")
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("redefine") {
		cfg.Codec.Redefine, _ = flags.GetString("redefine")
	}
	if flags.Changed("unknown-variant") {
		cfg.Codec.UnknownVariant, _ = flags.GetString("unknown-variant")
	}
	if flags.Changed("token-decimals") {
		cfg.Codec.TokenDecimals, _ = flags.GetUint32("token-decimals")
	}
	if noColor, _ := flags.GetBool("no-color"); noColor {
		color.NoColor = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, _ := cfg.Logging.ZapLevel()
	log, err := newLogger(level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	snapshot, _ := flags.GetString("snapshot")

	cmd.SetContext(context.WithValue(cmd.Context(), settingsKey{}, &settings{
		cfg:      cfg,
		log:      log,
		snapshot: snapshot,
	}))
	return nil
}

func newLogger(level zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	return cfg.Build()
}

func settingsFrom(cmd *cobra.Command) *settings {
	s, ok := cmd.Context().Value(settingsKey{}).(*settings)
	if !ok {
		// Commands run outside the root still get defaults
		return &settings{cfg: config.DefaultConfig(), log: zap.NewNop()}
	}
	return s
}

func openSnapshots(s *settings) (*storage.SnapshotStore, error) {
	if err := os.MkdirAll(s.cfg.DataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	store, err := container.GetSnapshotStoreFactory()(filepath.Join(s.cfg.DataDir, "snapshots"), s.log)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	return store, nil
}

func loadSnapshotDoc(s *settings) ([]byte, error) {
	id, err := ksuid.Parse(s.snapshot)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot id %q: %w", s.snapshot, err)
	}
	store, err := openSnapshots(s)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	doc, _, err := store.Load(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return doc, nil
}

// buildLookup creates the registry described by the command's settings
func buildLookup(cmd *cobra.Command) (*types.Lookup, *settings, error) {
	s := settingsFrom(cmd)
	redefine, variant, err := s.cfg.Codec.Policies()
	if err != nil {
		return nil, s, err
	}
	opts := engine.Options{
		SchemaFiles:   s.cfg.Schemas,
		Redefine:      redefine,
		Variant:       variant,
		TokenDecimals: s.cfg.Codec.TokenDecimals,
		Logger:        s.log,
	}
	if s.snapshot != "" {
		doc, err := loadSnapshotDoc(s)
		if err != nil {
			return nil, s, err
		}
		opts.SchemaDocs = [][]byte{doc}
	}

	lookup, err := container.GetLookupFactory()(opts)
	if err != nil {
		return nil, s, fmt.Errorf("failed to load types: %w", err)
	}
	return lookup, s, nil
}
