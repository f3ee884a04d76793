// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package openapi

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shadowrail/shadowrail/pkg/types"
)

// DiffType represents the type of change detected.
type DiffType string

const (
	// DiffTypeAdded indicates a new item was added.
	DiffTypeAdded DiffType = "added"

	// DiffTypeRemoved indicates an item was removed.
	DiffTypeRemoved DiffType = "removed"
)

// PathChange represents an endpoint that was added or removed between two
// generations.
type PathChange struct {
	Type        DiffType
	Path        string
	Method      string
	Description string
}

// AuthRegression records an endpoint whose auth_status got weaker between
// two generations: authenticated/unknown moving to unprotected is the one
// direction this tool treats as a security regression.
type AuthRegression struct {
	Path        string
	Method      string
	Before      string
	After       string
	Description string
}

// DiffResult contains the differences between two OpenAPI documents,
// oriented around shadow-API detection rather than generic schema drift.
type DiffResult struct {
	// PathChanges contains every endpoint added or removed.
	PathChanges []PathChange

	// AuthRegressions contains every endpoint whose auth_status weakened.
	AuthRegressions []AuthRegression

	// HasBreakingChanges is true when a regression or removal was found.
	HasBreakingChanges bool

	// Summary is a human-readable summary of changes.
	Summary string
}

// IsEmpty returns true if there are no differences.
func (d *DiffResult) IsEmpty() bool {
	return len(d.PathChanges) == 0 && len(d.AuthRegressions) == 0
}

// Differ compares two OpenAPI documents produced by Builder.Build.
type Differ struct{}

// NewDiffer creates a new Differ.
func NewDiffer() *Differ {
	return &Differ{}
}

// Diff compares two OpenAPI documents (before, after) and reports added/
// removed endpoints plus any auth_status regression.
func (d *Differ) Diff(before, after *types.OpenAPI) (*DiffResult, error) {
	result := &DiffResult{
		PathChanges:     []PathChange{},
		AuthRegressions: []AuthRegression{},
	}

	beforeOps := d.collectOperations(before)
	afterOps := d.collectOperations(after)

	for key, op := range beforeOps {
		afterOp, exists := afterOps[key]
		if !exists {
			result.PathChanges = append(result.PathChanges, PathChange{
				Type:        DiffTypeRemoved,
				Path:        key.path,
				Method:      key.method,
				Description: fmt.Sprintf("Removed %s %s", key.method, key.path),
			})
			continue
		}
		if reg := d.regression(key, op, afterOp); reg != nil {
			result.AuthRegressions = append(result.AuthRegressions, *reg)
		}
	}

	for key := range afterOps {
		if _, exists := beforeOps[key]; !exists {
			result.PathChanges = append(result.PathChanges, PathChange{
				Type:        DiffTypeAdded,
				Path:        key.path,
				Method:      key.method,
				Description: fmt.Sprintf("Added %s %s", key.method, key.path),
			})
		}
	}

	result.HasBreakingChanges = d.detectBreakingChanges(result)
	result.Summary = d.generateSummary(result)

	return result, nil
}

type opKey struct {
	path   string
	method string
}

// collectOperations flattens a document's paths into a (path, method) ->
// Operation map, including the "*" engine/any-verb slot.
func (d *Differ) collectOperations(doc *types.OpenAPI) map[opKey]*types.Operation {
	ops := make(map[opKey]*types.Operation)
	if doc == nil {
		return ops
	}
	for path, item := range doc.Paths {
		for _, m := range methodSlots(item) {
			if m.op != nil {
				ops[opKey{path: path, method: m.name}] = m.op
			}
		}
	}
	return ops
}

type methodSlot struct {
	name string
	op   *types.Operation
}

func methodSlots(item types.PathItem) []methodSlot {
	return []methodSlot{
		{"GET", item.Get},
		{"POST", item.Post},
		{"PUT", item.Put},
		{"DELETE", item.Delete},
		{"PATCH", item.Patch},
		{"OPTIONS", item.Options},
		{"HEAD", item.Head},
		{"TRACE", item.Trace},
		{"*", item.Any},
	}
}

// regression reports a weakening of auth_status: authenticated or unknown
// moving to UNPROTECTED. unknown -> authenticated, or any status staying
// put, is not a regression.
func (d *Differ) regression(key opKey, before, after *types.Operation) *AuthRegression {
	if after.XAuthStatus != "UNPROTECTED" {
		return nil
	}
	if before.XAuthStatus == "UNPROTECTED" || before.XAuthStatus == "" {
		return nil
	}
	return &AuthRegression{
		Path:        key.path,
		Method:      key.method,
		Before:      before.XAuthStatus,
		After:       after.XAuthStatus,
		Description: fmt.Sprintf("%s %s went from %s to %s", key.method, key.path, before.XAuthStatus, after.XAuthStatus),
	}
}

// detectBreakingChanges checks if any changes should fail a CI gate.
func (d *Differ) detectBreakingChanges(result *DiffResult) bool {
	if len(result.AuthRegressions) > 0 {
		return true
	}
	for _, change := range result.PathChanges {
		if change.Type == DiffTypeRemoved {
			return true
		}
	}
	return false
}

// generateSummary creates a human-readable summary of changes.
func (d *Differ) generateSummary(result *DiffResult) string {
	if result.IsEmpty() {
		return "No changes detected"
	}

	pathAdded, pathRemoved := 0, 0
	for _, c := range result.PathChanges {
		switch c.Type {
		case DiffTypeAdded:
			pathAdded++
		case DiffTypeRemoved:
			pathRemoved++
		}
	}

	var parts []string
	if pathAdded > 0 {
		parts = append(parts, fmt.Sprintf("%d endpoint(s) added", pathAdded))
	}
	if pathRemoved > 0 {
		parts = append(parts, fmt.Sprintf("%d endpoint(s) removed", pathRemoved))
	}
	if len(result.AuthRegressions) > 0 {
		parts = append(parts, fmt.Sprintf("%d auth regression(s)", len(result.AuthRegressions)))
	}

	summary := strings.Join(parts, ", ")
	if result.HasBreakingChanges {
		summary += " [BREAKING CHANGES DETECTED]"
	}
	return summary
}

// FormatDiff returns a formatted string representation of the diff.
func FormatDiff(result *DiffResult) string {
	if result.IsEmpty() {
		return "No differences found."
	}

	var sb strings.Builder

	sb.WriteString("=== OpenAPI Diff ===\n\n")
	sb.WriteString(result.Summary)
	sb.WriteString("\n\n")

	if len(result.AuthRegressions) > 0 {
		sb.WriteString("--- Auth Regressions ---\n")

		regs := make([]AuthRegression, len(result.AuthRegressions))
		copy(regs, result.AuthRegressions)
		sort.Slice(regs, func(i, j int) bool {
			if regs[i].Path != regs[j].Path {
				return regs[i].Path < regs[j].Path
			}
			return regs[i].Method < regs[j].Method
		})

		for _, r := range regs {
			sb.WriteString(fmt.Sprintf("! %s %s: %s -> %s\n", r.Method, r.Path, r.Before, r.After))
		}
		sb.WriteString("\n")
	}

	if len(result.PathChanges) > 0 {
		sb.WriteString("--- Endpoint Changes ---\n")

		changes := make([]PathChange, len(result.PathChanges))
		copy(changes, result.PathChanges)
		sort.Slice(changes, func(i, j int) bool {
			if changes[i].Path != changes[j].Path {
				return changes[i].Path < changes[j].Path
			}
			return changes[i].Method < changes[j].Method
		})

		for _, c := range changes {
			symbol := "  "
			switch c.Type {
			case DiffTypeAdded:
				symbol = "+ "
			case DiffTypeRemoved:
				symbol = "- "
			}
			sb.WriteString(fmt.Sprintf("%s%s %s\n", symbol, c.Method, c.Path))
		}
	}

	return sb.String()
}
