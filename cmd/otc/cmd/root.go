package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceCircuit/internal/config"
)

var (
	// Global flags
	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "otc",
	Short: "OpenTraceCircuit - circuit file tools",
	Long: `OpenTraceCircuit (otc) works with saved circuit files:
  - inspect and verify circuit files and their hashes
  - place components from blueprint templates and wire connectors
  - export netlists and connection graphs

Examples:
  otc info board.circuit                   # Show components and wiring
  otc verify board.circuit                 # Check stream and record hashes
  otc place board.circuit Resistor 100 50  # Add a component
  otc wire board.circuit 1 4               # Connect two connectors
  otc netlist board.circuit -f kicad       # Export a KiCad netlist`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&configDir, "config", "", "config directory (default $XDG_CONFIG_HOME/otc)")
	flags.StringP("blueprints", "b", "", "blueprint template directory")
	flags.Bool("hashes", true, "write and verify record hashes")
	flags.BoolVarP(&assumeYes, "yes", "y", false, "load modified files without asking")
	flags.BoolVar(&assumeNo, "no", false, "refuse modified files without asking")
	rootCmd.MarkFlagsMutuallyExclusive("yes", "no")
}

// setup resolves configuration and attaches the logger and settings to the
// command context.
func setup(cmd *cobra.Command, _ []string) error {
	dir := configDir
	if dir == "" {
		var err error
		if dir, err = config.DefaultDir(); err != nil {
			return err
		}
	}

	v, err := config.Load(dir)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if err := v.BindPFlag(config.KeyBlueprintDir, flags.Lookup("blueprints")); err != nil {
		return err
	}
	if err := v.BindPFlag(config.KeyUseHashes, flags.Lookup("hashes")); err != nil {
		return err
	}

	cfg, err := config.Resolve(v)
	if err != nil {
		return err
	}
	if verbose {
		cfg.LogLevel = debugLevel
	}

	logger := newLogger(os.Stderr, cfg.LogLevel)
	logger.Debug("configuration", "dir", dir, "blueprints", cfg.BlueprintDir, "hashes", cfg.UseHashes)

	ctx := withLogger(cmd.Context(), logger)
	ctx = withConfig(ctx, cfg)
	cmd.SetContext(ctx)
	return nil
}
