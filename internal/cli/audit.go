// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shadowrail/shadowrail/internal/config"
	"github.com/shadowrail/shadowrail/pkg/types"
)

// Exit codes for audit.
const (
	ExitCodeClean      = 0 // no unprotected endpoints found (nor unknown ones, with --strict)
	ExitCodeFindings   = 1 // unprotected endpoints found (or unknown ones, with --strict)
	ExitCodeAuditError = 2 // error during analysis
)

var (
	auditShowAll bool
	auditCI      bool
	auditStrict  bool
)

var auditCmd = &cobra.Command{
	Use:   "audit [paths...]",
	Short: "List endpoints without a resolvable authentication filter",
	Long: `Audit evaluates routes and controllers and reports every endpoint whose
auth_status is unprotected or unknown — endpoints without a resolvable
authentication filter, the surface a shadow API scan cares about.

By default only unprotected/unknown endpoints are printed; --show-all
lists every resolved endpoint.

Exit codes:
  0  No unprotected endpoints found (nor unknown ones, with --strict)
  1  Unprotected endpoints found (or unknown ones, with --strict)
  2  Error during analysis

Example:
  shadowrail audit                 # List unprotected/unknown endpoints
  shadowrail audit --show-all      # List every endpoint with its auth status
  shadowrail audit --ci            # CI mode: exit 1 on any unprotected endpoint
  shadowrail audit --ci --strict   # CI mode: exit 1 on unprotected or unknown`,
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().BoolVar(&auditShowAll, "show-all", false, "list every endpoint, not just unprotected/unknown ones")
	auditCmd.Flags().BoolVar(&auditCI, "ci", false, "CI mode: use exit codes for status")
	auditCmd.Flags().BoolVar(&auditStrict, "strict", false, "also fail on unknown (unresolved) auth status, not just unprotected")
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return auditFail(err, "failed to load config: %w")
	}

	if auditShowAll {
		cfg.Analysis.ShowAll = true
	}

	paths := args
	if len(paths) == 0 {
		paths = cfg.Source.Paths
	}

	if err := cfg.Validate(); err != nil {
		return auditFail(err, "invalid configuration: %w")
	}

	printVerbose("Audit configuration:")
	printVerbose("  Show all: %t", cfg.Analysis.ShowAll)
	printVerbose("  Strict: %t", auditStrict)
	printVerbose("  Paths: %s", strings.Join(paths, ", "))

	doc, diags, err := generateSpecFromPaths(cfg, paths)
	if err != nil {
		return auditFail(err, "%w")
	}
	printDiagnostics(diags)

	findings := collectFindings(doc)
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Path != findings[j].Path {
			return findings[i].Path < findings[j].Path
		}
		return findings[i].Method < findings[j].Method
	})

	breaking := 0
	for _, f := range findings {
		if f.AuthStatus == "UNPROTECTED" || (auditStrict && f.AuthStatus == "unknown") {
			breaking++
		}
	}

	if cfg.Analysis.ShowAll {
		printInfo("%d endpoint(s):", len(findings))
		for _, f := range findings {
			printInfo("  %-7s %-40s %-14s %s#%s", f.Method, f.Path, f.AuthStatus, f.Controller, f.Action)
		}
	} else {
		shown := 0
		for _, f := range findings {
			if f.AuthStatus != "UNPROTECTED" && f.AuthStatus != "unknown" {
				continue
			}
			shown++
			printInfo("  %-7s %-40s %-14s %s#%s (%s)", f.Method, f.Path, f.AuthStatus, f.Controller, f.Action, f.Source)
		}
		if shown == 0 {
			printInfo("No unprotected or unknown endpoints found")
		} else {
			printInfo("%d endpoint(s) with no resolvable authentication filter", shown)
		}
	}

	if breaking > 0 {
		if auditCI {
			os.Exit(ExitCodeFindings)
		}
		return fmt.Errorf("%d endpoint(s) with no resolvable authentication filter", breaking)
	}

	if auditCI {
		os.Exit(ExitCodeClean)
	}
	return nil
}

func auditFail(err error, wrap string) error {
	if auditCI {
		os.Exit(ExitCodeAuditError)
	}
	return fmt.Errorf(wrap, err)
}

// finding is a single row of audit output.
type finding struct {
	Method     string
	Path       string
	AuthStatus string
	Controller string
	Action     string
	Source     string
}

// collectFindings flattens every operation (across all method slots,
// including the "*" engine slot) out of an OpenAPI document.
func collectFindings(doc *types.OpenAPI) []finding {
	var out []finding
	for path, item := range doc.Paths {
		slots := []struct {
			method string
			op     *types.Operation
		}{
			{"GET", item.Get}, {"POST", item.Post}, {"PUT", item.Put},
			{"DELETE", item.Delete}, {"PATCH", item.Patch},
			{"OPTIONS", item.Options}, {"HEAD", item.Head}, {"TRACE", item.Trace},
			{"*", item.Any},
		}
		for _, s := range slots {
			if s.op == nil {
				continue
			}
			out = append(out, finding{
				Method:     s.method,
				Path:       path,
				AuthStatus: s.op.XAuthStatus,
				Controller: s.op.XController,
				Action:     s.op.XAction,
				Source:     s.op.XSource,
			})
		}
	}
	return out
}
