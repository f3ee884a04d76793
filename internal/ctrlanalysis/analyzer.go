// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package ctrlanalysis discovers Rails controller classes under
// app/controllers, extracts their before_action/skip_before_action
// declarations and strong-parameter schemas, and composes the effective
// filter set for a given class+action across a bounded ancestor chain.
package ctrlanalysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shadowrail/shadowrail/internal/rast"
	"github.com/shadowrail/shadowrail/internal/vfs"
	"github.com/shadowrail/shadowrail/pkg/types"
)

var filterMethods = map[string]bool{
	"before_action":      true,
	"before_filter":      true,
	"skip_before_action": true,
	"skip_before_filter": true,
}

var skipMethods = map[string]bool{
	"skip_before_action": true,
	"skip_before_filter": true,
}

// Index is the frozen result of Analyze: every discovered controller,
// keyed by its fully qualified class name.
type Index struct {
	Controllers map[string]types.ControllerSummary

	// MaxHops bounds EffectiveFilters' ancestor walk. Zero (the value a
	// literal Index{} gets in tests) falls back to maxInheritanceHops.
	MaxHops int
}

// Analyzer walks app/controllers/** over a vfs.FS and builds an Index.
type Analyzer struct {
	fs      vfs.FS
	maxHops int
}

// New builds an Analyzer with the default ancestor-hop bound.
func New(fs vfs.FS) *Analyzer {
	return &Analyzer{fs: fs, maxHops: maxInheritanceHops}
}

// NewWithDepth builds an Analyzer whose Index.EffectiveFilters walks at
// most maxHops ancestors, per the analysis.inheritanceDepth setting.
func NewWithDepth(fs vfs.FS, maxHops int) *Analyzer {
	if maxHops <= 0 {
		maxHops = maxInheritanceHops
	}
	return &Analyzer{fs: fs, maxHops: maxHops}
}

// Analyze discovers and parses every controller file reachable under
// app/controllers, producing an Index and a diagnostics list. It never
// fails: an unreadable or unparseable file yields diagnostics, not errors.
func (a *Analyzer) Analyze() (Index, []types.Diagnostic) {
	idx := Index{Controllers: make(map[string]types.ControllerSummary), MaxHops: a.maxHops}
	var diags []types.Diagnostic

	paths, err := a.fs.List("app/controllers")
	if err != nil {
		diags = append(diags, types.Diagnostic{
			Severity: types.SeverityWarn,
			Kind:     types.KindFileMissing,
			Message:  "app/controllers not found",
		})
		return idx, diags
	}
	sort.Strings(paths)

	for _, path := range paths {
		if !strings.HasSuffix(path, ".rb") {
			continue
		}
		data, err := a.fs.Read(path)
		if err != nil {
			diags = append(diags, types.Diagnostic{
				Severity: types.SeverityWarn, Kind: types.KindFileMissing, File: path,
				Message: "controller file unreadable",
			})
			continue
		}
		nodes, pdiags := rast.Parse(path, string(data))
		for _, d := range pdiags {
			diags = append(diags, types.Diagnostic{
				Severity: types.SeverityWarn, Kind: types.KindParseTolerable,
				File: d.File, Line: d.Line, Message: d.Message,
			})
		}
		nodeDiags := collectClasses(nodes, nil, path, idx.Controllers)
		diags = append(diags, nodeDiags...)
	}

	return idx, diags
}

func collectClasses(nodes []rast.Node, modulePrefix []string, file string, out map[string]types.ControllerSummary) []types.Diagnostic {
	var diags []types.Diagnostic
	for _, n := range nodes {
		switch n.Kind {
		case rast.KindModuleDef:
			next := append(append([]string{}, modulePrefix...), n.ClassName)
			diags = append(diags, collectClasses(n.Body, next, file, out)...)
		case rast.KindClassDef:
			full := strings.Join(append(append([]string{}, modulePrefix...), n.ClassName), "::")
			summary, sdiags := buildSummary(full, n, file)
			out[full] = summary
			diags = append(diags, sdiags...)
		}
	}
	return diags
}

func buildSummary(className string, n rast.Node, file string) (types.ControllerSummary, []types.Diagnostic) {
	summary := types.ControllerSummary{
		ClassName:    className,
		ParentClass:  n.ParentName,
		File:         file,
		Line:         n.Pos.Line,
		ActionParams: make(map[string]types.ParamSchema),
	}
	var diags []types.Diagnostic

	for _, stmt := range n.Body {
		switch {
		case stmt.Kind == rast.KindCall && filterMethods[stmt.Method]:
			decls, ddiags := buildFilterDecls(stmt)
			diags = append(diags, ddiags...)
			if skipMethods[stmt.Method] {
				summary.SkipBeforeActions = append(summary.SkipBeforeActions, decls...)
			} else {
				summary.BeforeActions = append(summary.BeforeActions, decls...)
			}
		case stmt.Kind == rast.KindMethodDef && strings.HasSuffix(stmt.MethodName, "_params"):
			if schema, ok := extractParamSchema(stmt.Body); ok {
				summary.ActionParams[stmt.MethodName] = schema
			}
		}
	}

	return summary, diags
}

func buildFilterDecls(call rast.Node) ([]types.FilterDecl, []types.Diagnostic) {
	only, hasOnly := call.Kw("only")
	except, hasExcept := call.Kw("except")
	var onlySet, exceptSet map[string]bool
	if hasOnly {
		onlySet = actionSet(only)
	}
	if hasExcept {
		exceptSet = actionSet(except)
	}

	var diags []types.Diagnostic
	if hasOnly && hasExcept {
		diags = append(diags, types.Diagnostic{
			Severity: types.SeverityWarn,
			Kind:     types.KindAmbiguousDSL,
			File:     call.Pos.File,
			Line:     call.Pos.Line,
			Message:  fmt.Sprintf("%s: both only: and except: given; except: dropped per tie-break", call.Method),
		})
		exceptSet = nil
	}

	if len(call.Args) == 0 {
		return []types.FilterDecl{{
			FilterName: "(block)",
			Only:       onlySet,
			Except:     exceptSet,
			IsBlock:    true,
		}}, diags
	}

	decls := make([]types.FilterDecl, 0, len(call.Args))
	for _, arg := range call.Args {
		name, ok := stringValue(arg)
		if !ok {
			continue
		}
		decls = append(decls, types.FilterDecl{
			FilterName: name,
			Only:       onlySet,
			Except:     exceptSet,
		})
	}
	return decls, diags
}

func stringValue(n rast.Node) (string, bool) {
	switch n.Kind {
	case rast.KindSymbol, rast.KindIdent:
		return n.Name, true
	case rast.KindStringLit:
		return n.Str, true
	}
	return "", false
}

func actionSet(n rast.Node) map[string]bool {
	set := make(map[string]bool)
	switch n.Kind {
	case rast.KindArrayLit:
		for _, item := range n.Items {
			if s, ok := stringValue(item); ok {
				set[s] = true
			}
		}
	default:
		if s, ok := stringValue(n); ok {
			set[s] = true
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}
