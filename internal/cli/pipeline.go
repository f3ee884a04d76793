// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"fmt"
	"path/filepath"

	"github.com/shadowrail/shadowrail/internal/config"
	"github.com/shadowrail/shadowrail/internal/ctrlanalysis"
	"github.com/shadowrail/shadowrail/internal/openapi"
	"github.com/shadowrail/shadowrail/internal/resolve"
	"github.com/shadowrail/shadowrail/internal/routedsl"
	"github.com/shadowrail/shadowrail/internal/vfs"
	"github.com/shadowrail/shadowrail/pkg/types"
)

// generateSpecFromSource runs the full pipeline — route DSL evaluation,
// controller analysis, resolution, OpenAPI rendering — over a single Rails
// application root.
func generateSpecFromSource(cfg *config.Config, root string) (*types.OpenAPI, []types.Diagnostic, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve path %s: %w", root, err)
	}

	fs, err := vfs.NewOSFileSystem(vfs.OSConfig{
		Root:    absRoot,
		Include: cfg.Source.Include,
		Exclude: cfg.Source.Exclude,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", root, err)
	}

	var diags []types.Diagnostic

	records, routeDiags := routedsl.New(fs).Evaluate()
	diags = append(diags, routeDiags...)

	idx, ctrlDiags := ctrlanalysis.NewWithDepth(fs, cfg.Analysis.InheritanceDepth).Analyze()
	diags = append(diags, ctrlDiags...)

	resolved, resolveDiags := resolve.Resolve(records, idx)
	diags = append(diags, resolveDiags...)

	builder := openapi.NewBuilder(cfg)
	doc, err := builder.Build(resolved)
	if err != nil {
		return nil, diags, fmt.Errorf("failed to build OpenAPI spec: %w", err)
	}

	return doc, diags, nil
}

// generateSpecFromPaths runs generateSpecFromSource over every path and
// merges their endpoints into a single document, in path order.
func generateSpecFromPaths(cfg *config.Config, paths []string) (*types.OpenAPI, []types.Diagnostic, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	if len(paths) == 1 {
		return generateSpecFromSource(cfg, paths[0])
	}

	var merged *types.OpenAPI
	var diags []types.Diagnostic
	for _, path := range paths {
		doc, d, err := generateSpecFromSource(cfg, path)
		if err != nil {
			return nil, nil, err
		}
		diags = append(diags, d...)
		if merged == nil {
			merged = doc
			continue
		}
		for p, item := range doc.Paths {
			merged.Paths[p] = item
		}
	}
	return merged, diags, nil
}

// printDiagnostics logs diagnostics at verbose level, in the order given,
// each tagged with its severity.
func printDiagnostics(diags []types.Diagnostic) {
	for _, d := range diags {
		loc := d.File
		if d.Line > 0 {
			loc = fmt.Sprintf("%s:%d", d.File, d.Line)
		}
		if loc != "" {
			printVerbose("  [%s] %s: %s", d.Severity, loc, d.Message)
		} else {
			printVerbose("  [%s] %s", d.Severity, d.Message)
		}
	}
}
