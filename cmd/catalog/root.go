// catalog loads an entity catalog from a paginated JSON API and renders it,
// either once on the terminal (load) or behind an HTTP endpoint (serve).
//
// Usage:
//
//	catalog load [--index-url=<url>] [--limit=N] [--concurrency=N] [-o cards|json|yaml] [--theme=light|dark]
//	catalog serve [--addr=:8080]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/catalog-loader/internal/config"
	"github.com/Sternrassler/catalog-loader/pkg/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

type globalOptions struct {
	configPath string
	logLevel   string
	pretty     bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Load an entity catalog from a paginated JSON API",
		Long: "catalog fetches one index page, resolves every entry's detail document\n" +
			"concurrently and presents the surviving entries in index order.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	f := rootCmd.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/catalog-loader/config.toml)")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	f.BoolVar(&opts.pretty, "pretty", false, "Human-readable log output")

	rootCmd.AddCommand(newLoadCmd(opts))
	rootCmd.AddCommand(newServeCmd(opts))
	return rootCmd
}

// load reads the config file and environment, then applies global flags.
func (o *globalOptions) load(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("pretty") {
		cfg.Log.Pretty = o.pretty
	}

	o.cfg = cfg
	logging.Setup(cfg.LoggingConfig())
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
