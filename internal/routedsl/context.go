// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package routedsl evaluates the Rails routing DSL AST (as produced by
// internal/rast) under an accumulating, immutable RouteContext, emitting a
// flat stream of EndpointRecords.
package routedsl

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/shadowrail/shadowrail/internal/rast"
)

var titleCaser = cases.Title(language.English)

// concernTable is a shared, mutable registry of `concern :name do ... end`
// bodies. It is not part of the persistent Context value itself — concerns
// are effectively file-global once declared — but every Context created
// during one evaluation run points at the same table, so a concern declared
// in a sibling branch is still visible (matching Rails' own behavior: a
// `concern` call registers into the routes DSL's shared namespace, not into
// a lexical scope).
type concernTable struct {
	bodies map[string][]rast.Node
}

func newConcernTable() *concernTable {
	return &concernTable{bodies: make(map[string][]rast.Node)}
}

// Context is the immutable, persistent lexical state threaded through route
// DSL evaluation. Every push method returns a new value; the caller's own
// Context is left untouched, so returning from a block automatically
// "pops" back to the parent's state.
type Context struct {
	PathPrefix            string
	ModulePrefix          []string // already-camelized segments
	ControllerOverride    string
	HasControllerOverride bool
	PathParamName         string
	Conditional           bool
	Dynamic               bool
	DefaultOptions        map[string]rast.Node
	EngineMount           string

	concerns *concernTable
}

// RootContext is the context the root routes.rb file is evaluated under.
func RootContext() Context {
	return Context{
		PathParamName: "id",
		concerns:      newConcernTable(),
	}
}

func (c Context) withPath(segment string) Context {
	n := c
	n.PathPrefix = joinPath(c.PathPrefix, segment)
	return n
}

func (c Context) withModule(segment string) Context {
	n := c
	n.ModulePrefix = append(append([]string{}, c.ModulePrefix...), camelize(segment))
	n.HasControllerOverride = false
	n.ControllerOverride = ""
	return n
}

func (c Context) withController(name string) Context {
	n := c
	n.ControllerOverride = name
	n.HasControllerOverride = true
	return n
}

func (c Context) withoutController() Context {
	n := c
	n.ControllerOverride = ""
	n.HasControllerOverride = false
	return n
}

func (c Context) withParam(name string) Context {
	n := c
	n.PathParamName = name
	return n
}

func (c Context) withConditional() Context {
	n := c
	n.Conditional = true
	return n
}

func (c Context) withDynamic() Context {
	n := c
	n.Dynamic = true
	return n
}

func (c Context) withEngineMount(name string) Context {
	n := c
	n.EngineMount = name
	return n
}

// SetConcern registers a concern body under name, visible to every Context
// sharing this evaluation run.
func (c Context) SetConcern(name string, body []rast.Node) {
	c.concerns.bodies[name] = body
}

// ConcernBody looks up a previously registered concern body.
func (c Context) ConcernBody(name string) ([]rast.Node, bool) {
	body, ok := c.concerns.bodies[name]
	return body, ok
}

func (c Context) withDefaultOptions(extra map[string]rast.Node) Context {
	n := c
	merged := make(map[string]rast.Node, len(c.DefaultOptions)+len(extra))
	for k, v := range c.DefaultOptions {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	n.DefaultOptions = merged
	return n
}

// ControllerClass derives the canonical controller class name for a path
// segment default, per §4.2: camelize(segment) + "Controller", prefixed by
// the camelized module_prefix joined with "::". An explicit
// ControllerOverride (from scope(controller:) or resources(controller:))
// replaces the camelized-segment part; a "/"-qualified override (e.g.
// "admin/posts") camelizes each piece, matching Rails' own `to: 'admin/posts#x'`.
func (c Context) ControllerClass(defaultSegment string) string {
	if c.HasControllerOverride {
		return c.ResolveControllerName(c.ControllerOverride)
	}
	return c.ResolveControllerName(defaultSegment)
}

// ResolveControllerName camelizes each "/"-separated piece of raw, appends
// "Controller" to the last piece, and prefixes the context's module chain.
func (c Context) ResolveControllerName(raw string) string {
	pieces := strings.Split(raw, "/")
	segs := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		if piece == "" {
			continue
		}
		segs = append(segs, camelize(piece))
	}
	if len(segs) == 0 {
		segs = []string{"Unknown"}
	}
	segs[len(segs)-1] += "Controller"
	all := append(append([]string{}, c.ModulePrefix...), segs...)
	return strings.Join(all, "::")
}

func joinPath(prefix, segment string) string {
	if segment == "" {
		return prefix
	}
	if !strings.HasPrefix(segment, "/") {
		segment = "/" + segment
	}
	return normalizePath(prefix + segment)
}

// normalizePath collapses repeated slashes and strips a trailing slash,
// except for the root path itself.
func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimSuffix(p, "/")
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// camelize converts a snake_case or slash/colon separated identifier into
// CamelCase, e.g. "user_accounts" -> "UserAccounts", "v1" -> "V1".
func camelize(s string) string {
	s = strings.NewReplacer("::", "_", "/", "_", "-", "_").Replace(s)
	parts := strings.Split(s, "_")
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		b.WriteString(titleWord(part))
	}
	return b.String()
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	return titleCaser.String(s)
}
