// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shadowrail/shadowrail/internal/config"
	"github.com/shadowrail/shadowrail/internal/openapi"
)

var (
	generateDryRun  bool
	generateInclude []string
	generateExclude []string
)

var generateCmd = &cobra.Command{
	Use:   "generate [paths...]",
	Short: "Generate an OpenAPI specification from a Rails app's routes and controllers",
	Long: `Generate an OpenAPI specification from a Rails app: evaluates
config/routes.rb, analyzes app/controllers, and produces an OpenAPI
3.0/3.1 document annotated with each endpoint's auth status, effective
filter chain, and source location.

Example:
  shadowrail generate                  # Generate from the current directory
  shadowrail generate ./api ./admin    # Generate from multiple Rails roots
  shadowrail generate --dry-run        # Preview output without writing
  shadowrail generate -f json          # Write JSON instead of YAML`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "preview output without writing to file")
	generateCmd.Flags().StringSliceVarP(&generateInclude, "include", "i", nil, "glob patterns to include")
	generateCmd.Flags().StringSliceVarP(&generateExclude, "exclude", "e", nil, "glob patterns to exclude")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if len(generateInclude) > 0 {
		cfg.Source.Include = generateInclude
	}
	if len(generateExclude) > 0 {
		cfg.Source.Exclude = generateExclude
	}
	if output != "" {
		cfg.Output = output
	}
	if format != "" {
		cfg.Format = format
	}

	paths := args
	if len(paths) == 0 {
		paths = cfg.Source.Paths
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	printVerbose("Configuration:")
	printVerbose("  Output: %s", cfg.Output)
	printVerbose("  Format: %s", cfg.Format)
	printVerbose("  Paths: %s", strings.Join(paths, ", "))

	if generateDryRun {
		printInfo("Dry run mode - no files will be written")
	}

	doc, diags, err := generateSpecFromPaths(cfg, paths)
	if err != nil {
		return err
	}
	printDiagnostics(diags)

	endpointCount := 0
	for range doc.Paths {
		endpointCount++
	}
	printInfo("Resolved %d path(s) across %d Rails root(s)", endpointCount, len(paths))

	writer := openapi.NewWriter()

	if generateDryRun {
		var out string
		if cfg.Format == "json" {
			out, err = writer.ToJSON(doc)
		} else {
			out, err = writer.ToYAML(doc)
		}
		if err != nil {
			return fmt.Errorf("failed to serialize spec: %w", err)
		}
		fmt.Print(out)
		return nil
	}

	if err := writer.WriteFile(doc, cfg.Output, cfg.Format); err != nil {
		return fmt.Errorf("failed to write spec: %w", err)
	}

	printInfo("OpenAPI specification written to: %s", cfg.Output)
	return nil
}
