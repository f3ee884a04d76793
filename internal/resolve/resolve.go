// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package resolve joins route-evaluator EndpointRecords with controller-
// analyzer summaries, producing the final ResolvedEndpoint stream with
// auth_status, effective filters, and request schema attached.
package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shadowrail/shadowrail/internal/ctrlanalysis"
	"github.com/shadowrail/shadowrail/pkg/types"
)

type key struct {
	verb types.Verb
	path string
}

// Resolve joins records with idx and deduplicates by (verb, path),
// preserving emission order (the order records were produced in, which the
// route evaluator guarantees matches source order).
func Resolve(records []types.EndpointRecord, idx ctrlanalysis.Index) ([]types.ResolvedEndpoint, []types.Diagnostic) {
	var diags []types.Diagnostic
	seen := make(map[key]int) // key -> index into out
	var out []types.ResolvedEndpoint

	for _, rec := range records {
		resolved, d := resolveOne(rec, idx)
		diags = append(diags, d...)

		k := key{verb: rec.Verb, path: rec.Path}
		if i, ok := seen[k]; ok {
			out[i].Flags = unionFlags(out[i].Flags, resolved.Flags)
			diags = append(diags, types.Diagnostic{
				Severity: types.SeverityWarn,
				Kind:     types.KindAmbiguousDSL,
				File:     rec.Source.File,
				Line:     rec.Source.Line,
				Message:  fmt.Sprintf("duplicate route %s %s; keeping first-seen controller/action", rec.Verb, rec.Path),
			})
			continue
		}
		seen[k] = len(out)
		out = append(out, resolved)
	}

	return out, diags
}

func resolveOne(rec types.EndpointRecord, idx ctrlanalysis.Index) (types.ResolvedEndpoint, []types.Diagnostic) {
	resolved := types.ResolvedEndpoint{EndpointRecord: rec}

	if rec.HasFlag(types.FlagEngineMount) {
		resolved.AuthStatus = types.AuthUnknown
		return resolved, nil
	}

	summary, found := idx.Controllers[rec.ControllerClass]
	if !found {
		resolved.AuthStatus = types.AuthUnknown
		return resolved, []types.Diagnostic{{
			Severity: types.SeverityWarn,
			Kind:     types.KindUnresolvedRef,
			File:     rec.Source.File,
			Line:     rec.Source.Line,
			Message:  fmt.Sprintf("controller class %q not found", rec.ControllerClass),
		}}
	}

	filters, _, unresolved := idx.EffectiveFilters(rec.ControllerClass, rec.Action)
	resolved.EffectiveFilters = filters

	hasAuth, hasBlock := false, false
	for _, f := range filters {
		if ctrlanalysis.IsAuthFilter(f) {
			hasAuth = true
		}
		if f == "(block)" {
			hasBlock = true
		}
	}

	switch {
	case hasAuth:
		resolved.AuthStatus = types.AuthAuthenticated
	case unresolved, hasBlock:
		resolved.AuthStatus = types.AuthUnknown
	default:
		resolved.AuthStatus = types.AuthUnprotected
	}

	if schema := pickRequestSchema(summary, rec.Action); schema != nil {
		resolved.RequestSchema = schema
	}

	return resolved, nil
}

// pickRequestSchema applies the §4.3 heuristic: create/update actions use
// the first *_params method, in sorted name order, whose stem and the
// controller's resource name contain one another; with a single candidate
// method, that one is used unconditionally.
func pickRequestSchema(summary types.ControllerSummary, action string) *types.ParamSchema {
	if action != "create" && action != "update" || len(summary.ActionParams) == 0 {
		return nil
	}
	methodNames := make([]string, 0, len(summary.ActionParams))
	for name := range summary.ActionParams {
		methodNames = append(methodNames, name)
	}
	sort.Strings(methodNames)

	if len(methodNames) == 1 {
		s := summary.ActionParams[methodNames[0]]
		return &s
	}

	resource := strings.ToLower(strings.TrimSuffix(lastSegment(summary.ClassName), "Controller"))
	for _, methodName := range methodNames {
		stem := strings.TrimSuffix(methodName, "_params")
		if strings.Contains(resource, stem) || strings.Contains(stem, resource) {
			s := summary.ActionParams[methodName]
			return &s
		}
	}
	return nil
}

func lastSegment(qualified string) string {
	parts := strings.Split(qualified, "::")
	return parts[len(parts)-1]
}

func unionFlags(a, b map[types.Flag]bool) map[types.Flag]bool {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[types.Flag]bool, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}
