// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shadowrail/shadowrail/internal/config"
	"github.com/shadowrail/shadowrail/internal/openapi"
	"github.com/shadowrail/shadowrail/pkg/types"
)

// Exit codes for diff.
const (
	ExitCodeDiffClean     = 0 // no auth regression or removed endpoint
	ExitCodeDiffRegressed = 1 // auth regression or removed endpoint found
	ExitCodeDiffError     = 2 // error during comparison
)

var (
	diffColor bool
	diffCI    bool
)

var diffCmd = &cobra.Command{
	Use:   "diff [file1] [file2]",
	Short: "Compare two OpenAPI specifications for auth regressions",
	Long: `Compare two OpenAPI specifications produced by generate and report
endpoints added or removed, plus any endpoint whose auth_status weakened
to unprotected — the signal a shadow API was introduced.

If only one file is provided, it is compared against the specification
generated from the current source. If no files are provided, the
configured output file is compared against the current source.

Example:
  shadowrail diff                           # Compare output file vs generated
  shadowrail diff openapi.yaml              # Compare file vs generated
  shadowrail diff old.yaml new.yaml         # Compare two files
  shadowrail diff --ci                      # CI mode: exit 1 on regression`,
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().BoolVar(&diffColor, "color", true, "enable colored output")
	diffCmd.Flags().BoolVar(&diffCI, "ci", false, "CI mode: use exit codes for status")
}

func runDiff(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return diffFail(err, "failed to load config: %w")
	}

	if output != "" {
		cfg.Output = output
	}
	if format != "" {
		cfg.Format = format
	}

	var specA, specB *types.OpenAPI
	var labelA, labelB string

	switch len(args) {
	case 0:
		printVerbose("Comparing %s against generated...", cfg.Output)

		if _, err := os.Stat(cfg.Output); os.IsNotExist(err) {
			return diffFail(fmt.Errorf("spec file not found: %s. Run 'shadowrail generate' first", cfg.Output), "%w")
		}

		specA, err = openapi.ReadFile(cfg.Output)
		if err != nil {
			return diffFail(err, "failed to read existing spec: %w")
		}
		labelA = cfg.Output

		specB, _, err = generateSpecFromPaths(cfg, cfg.Source.Paths)
		if err != nil {
			return diffFail(err, "failed to generate spec from source: %w")
		}
		labelB = "<generated>"

	case 1:
		printVerbose("Comparing %s against generated...", args[0])

		specA, err = openapi.ReadFile(args[0])
		if err != nil {
			return diffFail(err, "failed to read spec file: %w")
		}
		labelA = args[0]

		specB, _, err = generateSpecFromPaths(cfg, cfg.Source.Paths)
		if err != nil {
			return diffFail(err, "failed to generate spec from source: %w")
		}
		labelB = "<generated>"

	case 2:
		printVerbose("Comparing %s against %s...", args[0], args[1])

		specA, err = openapi.ReadFile(args[0])
		if err != nil {
			return diffFail(err, "failed to read spec file: %w")
		}
		labelA = args[0]

		specB, err = openapi.ReadFile(args[1])
		if err != nil {
			return diffFail(err, "failed to read spec file: %w")
		}
		labelB = args[1]

	default:
		return diffFail(fmt.Errorf("too many arguments: expected at most 2 files"), "%w")
	}

	differ := openapi.NewDiffer()
	result, err := differ.Diff(specA, specB)
	if err != nil {
		return diffFail(err, "failed to compare specs: %w")
	}

	if result.IsEmpty() {
		printInfo("No differences found between %s and %s", labelA, labelB)
		if diffCI {
			os.Exit(ExitCodeDiffClean)
		}
		return nil
	}

	fmt.Printf("--- %s\n+++ %s\n\n", labelA, labelB)
	fmt.Print(openapi.FormatDiff(result))

	if result.HasBreakingChanges {
		if diffColor {
			fmt.Println("\n\033[1;31mWARNING: breaking changes detected!\033[0m")
		} else {
			fmt.Println("\nWARNING: breaking changes detected!")
		}
		if diffCI {
			os.Exit(ExitCodeDiffRegressed)
		}
		return fmt.Errorf("breaking changes detected")
	}

	if diffCI {
		os.Exit(ExitCodeDiffClean)
	}
	return nil
}

func diffFail(err error, wrap string) error {
	if diffCI {
		os.Exit(ExitCodeDiffError)
	}
	if wrap == "%w" {
		return err
	}
	return fmt.Errorf(wrap, err)
}
