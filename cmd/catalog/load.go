package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sternrassler/catalog-loader/internal/view"
	"github.com/Sternrassler/catalog-loader/pkg/catalog"
)

// Output formats of the load command.
const (
	outputCards = "cards"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

type loadOptions struct {
	indexURL    string
	limit       int
	concurrency int
	output      string
	theme       string
}

func newLoadCmd(g *globalOptions) *cobra.Command {
	opts := &loadOptions{}

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load the catalog once and print it",
		Long: `Runs one load and prints the result.

An index failure prints the failure message and still exits 0; only invalid
configuration makes the command fail.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLoad(cmd, g, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.indexURL, "index-url", "", "Index endpoint URL")
	f.IntVar(&opts.limit, "limit", 0, "Page size sent as the limit query parameter")
	f.IntVar(&opts.concurrency, "concurrency", 0, "Max in-flight detail requests (0 = all at once)")
	f.StringVarP(&opts.output, "output", "o", outputCards, "Output format: cards, json, yaml")
	f.StringVar(&opts.theme, "theme", "", "Card theme: light, dark")

	return cmd
}

func runLoad(cmd *cobra.Command, g *globalOptions, opts *loadOptions) error {
	cfg := g.cfg
	flags := cmd.Flags()
	if flags.Changed("index-url") {
		cfg.Catalog.IndexURL = opts.indexURL
	}
	if flags.Changed("limit") {
		cfg.Catalog.Limit = opts.limit
	}
	if flags.Changed("concurrency") {
		cfg.Catalog.Concurrency = opts.concurrency
	}
	if flags.Changed("theme") {
		cfg.View.Theme = opts.theme
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	switch opts.output {
	case outputCards, outputJSON, outputYAML:
	default:
		return fmt.Errorf("unknown output format %q (want cards, json or yaml)", opts.output)
	}

	d, err := buildDeps(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	state := d.loader.Load(cmd.Context(), cfg.Catalog.IndexURL, cfg.Catalog.Limit)

	theme, _ := view.ParseTheme(cfg.View.Theme)
	return writeState(cmd.OutOrStdout(), opts.output, theme, state)
}

func writeState(w io.Writer, format string, theme view.Theme, state catalog.LoadState) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(state)
	default:
		page := view.NewPage(theme)
		page.SetState(state)
		return page.Render(w)
	}
}
