// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package routedsl

import (
	"fmt"
	"strings"

	"github.com/shadowrail/shadowrail/internal/rast"
	"github.com/shadowrail/shadowrail/internal/vfs"
	"github.com/shadowrail/shadowrail/pkg/types"
)

var verbMethods = map[string]types.Verb{
	"get":     types.GET,
	"post":    types.POST,
	"put":     types.PUT,
	"patch":   types.PATCH,
	"delete":  types.DELETE,
	"head":    types.HEAD,
	"options": types.OPTIONS,
}

// Evaluator is a pure-ish (aside from its own diagnostics accumulator)
// (AST, RouteContext) -> ([]EndpointRecord, []Diagnostic) engine for the
// Rails routing DSL, per §4.2.
type Evaluator struct {
	fs     vfs.FS
	diags  []types.Diagnostic
	loaded map[string]bool
}

// New builds an Evaluator reading route fragments from fs.
func New(fs vfs.FS) *Evaluator {
	return &Evaluator{fs: fs, loaded: make(map[string]bool)}
}

// Evaluate loads config/routes.rb and walks the routing DSL to completion.
func (e *Evaluator) Evaluate() ([]types.EndpointRecord, []types.Diagnostic) {
	body, ok := e.loadDrawBlock("config/routes.rb", true)
	if !ok {
		return nil, e.diags
	}
	records := e.evalNodes(body, RootContext())
	return records, e.diags
}

// loadDrawBlock reads and parses a route file, returning the statements
// inside its `...routes.draw do ... end` block (or, tolerantly, its entire
// top-level node list if no such call is found). root controls whether a
// missing file is Fatal (config/routes.rb) or just a warning (a draw(:name)
// fragment).
func (e *Evaluator) loadDrawBlock(path string, root bool) ([]rast.Node, bool) {
	data, err := e.fs.Read(path)
	if err != nil {
		sev := types.SeverityWarn
		kind := types.KindFileMissing
		if root {
			sev = types.SeverityFatal
			kind = types.KindFatal
		}
		e.diag(sev, kind, path, 0, fmt.Sprintf("route file not found: %s", path))
		return nil, !root
	}

	nodes, pdiags := rast.Parse(path, string(data))
	for _, d := range pdiags {
		e.diag(types.SeverityWarn, types.KindParseTolerable, d.File, d.Line, d.Message)
	}

	for _, n := range nodes {
		if n.Kind == rast.KindCall && n.Method == "draw" && n.Block != nil {
			return n.Block.Body, true
		}
	}
	return nodes, true
}

func (e *Evaluator) diag(sev types.Severity, kind, file string, line int, msg string) {
	e.diags = append(e.diags, types.Diagnostic{Severity: sev, Kind: kind, File: file, Line: line, Message: msg})
}

func (e *Evaluator) evalNodes(nodes []rast.Node, ctx Context) []types.EndpointRecord {
	var out []types.EndpointRecord
	for _, n := range nodes {
		out = append(out, e.evalNode(n, ctx)...)
	}
	return out
}

func (e *Evaluator) evalNode(n rast.Node, ctx Context) []types.EndpointRecord {
	switch n.Kind {
	case rast.KindIfExpr:
		return e.evalIf(n, ctx)
	case rast.KindCall:
		return e.evalCall(n, ctx)
	default:
		return nil
	}
}

func (e *Evaluator) evalIf(n rast.Node, ctx Context) []types.EndpointRecord {
	staticTrue := n.Cond != nil && n.Cond.Kind == rast.KindIdent && n.Cond.Name == "true"
	if staticTrue {
		return e.evalNodes(n.Then, ctx)
	}
	branchCtx := ctx.withConditional()
	var out []types.EndpointRecord
	out = append(out, e.evalNodes(n.Then, branchCtx)...)
	out = append(out, e.evalNodes(n.Else, branchCtx)...)
	return out
}

func (e *Evaluator) evalCall(n rast.Node, ctx Context) []types.EndpointRecord {
	if verb, ok := verbMethods[n.Method]; ok {
		return e.emitVerb(n, ctx, verb)
	}
	switch n.Method {
	case "root":
		return e.evalRoot(n, ctx)
	case "match":
		return e.evalMatch(n, ctx)
	case "resources":
		return e.evalResourceLike(n, ctx, true)
	case "resource":
		return e.evalResourceLike(n, ctx, false)
	case "namespace":
		return e.evalNamespace(n, ctx)
	case "scope":
		return e.evalScope(n, ctx)
	case "member":
		if n.Block == nil {
			return nil
		}
		return e.evalNodes(n.Block.Body, ctx.withPath(":"+ctx.PathParamName))
	case "collection":
		if n.Block == nil {
			return nil
		}
		return e.evalNodes(n.Block.Body, ctx)
	case "concern":
		return e.evalConcern(n, ctx)
	case "mount":
		return e.evalMount(n, ctx)
	case "draw":
		return e.evalDraw(n, ctx)
	case "with_options":
		return e.evalWithOptions(n, ctx)
	case "constraints":
		return e.evalConstraints(n, ctx)
	case "each":
		if n.Block != nil {
			return e.evalNodes(n.Block.Body, ctx.withDynamic())
		}
		return nil
	default:
		e.diag(types.SeverityWarn, types.KindParseTolerable, n.Pos.File, n.Pos.Line,
			fmt.Sprintf("unrecognized routing DSL call: %s", n.Method))
		return nil
	}
}

// emitVerb builds the single EndpointRecord for a `get/post/.../delete` call.
func (e *Evaluator) emitVerb(n rast.Node, ctx Context, verb types.Verb) []types.EndpointRecord {
	rec, ok := e.buildEndpoint(n, ctx, verb)
	if !ok {
		return nil
	}
	return []types.EndpointRecord{rec}
}

// buildEndpoint resolves path/controller/action for a single verb
// invocation (used by get/post/... and by match's per-verb expansion).
func (e *Evaluator) buildEndpoint(n rast.Node, ctx Context, verb types.Verb) (types.EndpointRecord, bool) {
	var path, action, controller string

	if len(n.Args) > 0 {
		arg0 := n.Args[0]
		switch arg0.Kind {
		case rast.KindStringLit:
			path = arg0.Str
		case rast.KindSymbol:
			// Open question resolution (see DESIGN.md): a bare symbol
			// positional arg names both the action and the path segment.
			path = "/" + arg0.Name
			action = arg0.Name
		default:
			e.diag(types.SeverityWarn, types.KindParseTolerable, n.Pos.File, n.Pos.Line, "unresolvable route path argument")
		}
	}

	if to, ok := n.Kw("to"); ok {
		if s, ok := stringValue(to); ok && strings.Contains(s, "#") {
			parts := strings.SplitN(s, "#", 2)
			controller = ctx.ResolveControllerName(parts[0])
			action = parts[1]
		} else if s, ok := stringValue(to); ok {
			action = s
		}
	} else {
		if ctrl, ok := n.Kw("controller"); ok {
			if s, ok := stringValue(ctrl); ok {
				controller = ctx.ResolveControllerName(s)
			}
		}
		if act, ok := n.Kw("action"); ok {
			if s, ok := stringValue(act); ok {
				action = s
			}
		}
	}

	if action == "" {
		action = pathStem(path)
	}
	flags := map[types.Flag]bool{}
	if controller == "" {
		if ctx.HasControllerOverride {
			controller = ctx.ResolveControllerName(ctx.ControllerOverride)
		} else {
			flags[types.FlagUnknownController] = true
		}
	}
	if ctx.Conditional {
		flags[types.FlagConditional] = true
	}
	if ctx.Dynamic {
		flags[types.FlagDynamic] = true
	}

	rec := types.EndpointRecord{
		Verb:            verb,
		Path:            joinPath(ctx.PathPrefix, path),
		ControllerClass: controller,
		Action:          action,
		Source:          types.SourceRef{File: n.Pos.File, Line: n.Pos.Line},
		Flags:           flags,
		RawOptions:      rawOptionsFromKwArgs(n.KwArgs),
	}
	return rec, true
}

func (e *Evaluator) evalRoot(n rast.Node, ctx Context) []types.EndpointRecord {
	to, hasTo := n.Kw("to")
	spec := ""
	if hasTo {
		spec, _ = stringValue(to)
	} else if len(n.Args) > 0 {
		spec, _ = stringValue(n.Args[0])
	}
	controller, action := "", ""
	if strings.Contains(spec, "#") {
		parts := strings.SplitN(spec, "#", 2)
		controller = ctx.ResolveControllerName(parts[0])
		action = parts[1]
	}
	flags := map[types.Flag]bool{}
	if ctx.Conditional {
		flags[types.FlagConditional] = true
	}
	if ctx.Dynamic {
		flags[types.FlagDynamic] = true
	}
	if controller == "" {
		flags[types.FlagUnknownController] = true
	}
	return []types.EndpointRecord{{
		Verb:            types.GET,
		Path:            normalizePath(ctx.PathPrefix),
		ControllerClass: controller,
		Action:          action,
		Source:          types.SourceRef{File: n.Pos.File, Line: n.Pos.Line},
		Flags:           flags,
	}}
}

func (e *Evaluator) evalMatch(n rast.Node, ctx Context) []types.EndpointRecord {
	via, ok := n.Kw("via")
	var verbs []types.Verb
	if !ok {
		e.diag(types.SeverityWarn, types.KindParseTolerable, n.Pos.File, n.Pos.Line, "match without via: defaults to GET")
		verbs = []types.Verb{types.GET}
	} else if s, ok := stringValue(via); ok {
		if s == "all" {
			verbs = types.StandardVerbs
		} else if v, ok := verbMethods[strings.ToLower(s)]; ok {
			verbs = []types.Verb{v}
		}
	} else if via.Kind == rast.KindArrayLit {
		for _, item := range via.Items {
			if s, ok := stringValue(item); ok {
				if v, ok := verbMethods[strings.ToLower(s)]; ok {
					verbs = append(verbs, v)
				}
			}
		}
	}
	var out []types.EndpointRecord
	for _, v := range verbs {
		if rec, ok := e.buildEndpoint(n, ctx, v); ok {
			out = append(out, rec)
		}
	}
	return out
}

func (e *Evaluator) evalNamespace(n rast.Node, ctx Context) []types.EndpointRecord {
	if len(n.Args) == 0 {
		e.diag(types.SeverityWarn, types.KindParseTolerable, n.Pos.File, n.Pos.Line, "namespace without a name")
		return nil
	}
	name, _ := stringValue(n.Args[0])
	child := ctx.withPath(name).withModule(name)
	if n.Block == nil {
		return nil
	}
	return e.evalNodes(n.Block.Body, child)
}

func (e *Evaluator) evalScope(n rast.Node, ctx Context) []types.EndpointRecord {
	child := ctx
	if len(n.Args) > 0 {
		if s, ok := stringValue(n.Args[0]); ok {
			child = child.withPath(s)
		}
	}
	if p, ok := n.Kw("path"); ok {
		if s, ok := stringValue(p); ok {
			child = child.withPath(s)
		}
	}
	if m, ok := n.Kw("module"); ok {
		if s, ok := stringValue(m); ok {
			child = child.withModule(s)
		}
	}
	if c, ok := n.Kw("controller"); ok {
		if s, ok := stringValue(c); ok {
			child = child.withController(s)
		}
	}
	if n.Block == nil {
		return nil
	}
	return e.evalNodes(n.Block.Body, child)
}

func (e *Evaluator) evalConcern(n rast.Node, ctx Context) []types.EndpointRecord {
	if len(n.Args) == 0 || n.Block == nil {
		return nil
	}
	name, _ := stringValue(n.Args[0])
	ctx.SetConcern(name, n.Block.Body)
	return nil
}

func (e *Evaluator) evalMount(n rast.Node, ctx Context) []types.EndpointRecord {
	var target, path string
	if len(n.Args) > 0 {
		arg0 := n.Args[0]
		if arg0.Kind == rast.KindHashLit && len(arg0.Pairs) == 1 {
			target = exprText(arg0.Pairs[0].Key)
			path, _ = stringValue(arg0.Pairs[0].Value)
		} else {
			target = exprText(arg0)
		}
	}
	if at, ok := n.Kw("at"); ok {
		if s, ok := stringValue(at); ok {
			path = s
		}
	}
	if target == "" {
		target = "(unresolved)"
	}
	if path == "" {
		e.diag(types.SeverityWarn, types.KindUnresolvedRef, n.Pos.File, n.Pos.Line, "mount target path could not be resolved")
		path = "/" + strings.ToLower(target)
	}
	flags := map[types.Flag]bool{types.FlagEngineMount: true}
	if ctx.Conditional {
		flags[types.FlagConditional] = true
	}
	return []types.EndpointRecord{{
		Verb:            types.AnyVerb,
		Path:            normalizePath(path),
		ControllerClass: target,
		Action:          "(engine)",
		Source:          types.SourceRef{File: n.Pos.File, Line: n.Pos.Line},
		Flags:           flags,
	}}
}

func (e *Evaluator) evalDraw(n rast.Node, ctx Context) []types.EndpointRecord {
	if len(n.Args) == 0 {
		return nil
	}
	name, _ := stringValue(n.Args[0])
	candidates := []string{
		"config/routes/" + name + ".rb",
		"config/routes/" + name + ".routes.rb",
	}
	for _, path := range candidates {
		if e.loaded[path] {
			continue
		}
		if _, err := e.fs.Read(path); err != nil {
			continue
		}
		e.loaded[path] = true
		body, ok := e.loadDrawBlock(path, false)
		if !ok {
			continue
		}
		return e.evalNodes(body, ctx)
	}
	e.diag(types.SeverityWarn, types.KindFileMissing, n.Pos.File, n.Pos.Line,
		fmt.Sprintf("draw(:%s) fragment not found", name))
	return nil
}

func (e *Evaluator) evalWithOptions(n rast.Node, ctx Context) []types.EndpointRecord {
	extra := make(map[string]rast.Node, len(n.KwArgs))
	for _, kw := range n.KwArgs {
		extra[kw.Key] = kw.Value
	}
	child := ctx.withDefaultOptions(extra)
	if c, ok := extra["controller"]; ok {
		if s, ok := stringValue(c); ok {
			child = child.withController(s)
		}
	}
	if n.Block == nil {
		return nil
	}
	return e.evalNodes(n.Block.Body, child)
}

func (e *Evaluator) evalConstraints(n rast.Node, ctx Context) []types.EndpointRecord {
	if n.Block == nil {
		return nil
	}
	recs := e.evalNodes(n.Block.Body, ctx)
	for i := range recs {
		if recs[i].Flags == nil {
			recs[i].Flags = map[types.Flag]bool{}
		}
		recs[i].Flags[types.FlagConstraintPresent] = true
	}
	return recs
}

// evalResourceLike implements `resources`/`resource`, §4.2.
func (e *Evaluator) evalResourceLike(n rast.Node, ctx Context, plural bool) []types.EndpointRecord {
	if len(n.Args) == 0 {
		e.diag(types.SeverityWarn, types.KindParseTolerable, n.Pos.File, n.Pos.Line, "resources/resource without a name")
		return nil
	}
	name, _ := stringValue(n.Args[0])

	segment := name
	if p, ok := n.Kw("path"); ok {
		if s, ok := stringValue(p); ok {
			segment = s
		}
	}

	// A resources block derives its own controller from its name; an
	// enclosing scope(controller:) must not leak through, but bare verb
	// calls inside member/collection blocks do inherit the binding.
	child := ctx.withPath(segment).withoutController()
	if ctrl, ok := n.Kw("controller"); ok {
		if s, ok := stringValue(ctrl); ok {
			child = child.withController(s)
		}
	}
	if !child.HasControllerOverride {
		child = child.withController(name)
	}
	if param, ok := n.Kw("param"); ok {
		if s, ok := stringValue(param); ok {
			child = child.withParam(s)
		}
	}

	only, hasOnly := n.Kw("only")
	except, hasExcept := n.Kw("except")
	var onlySet, exceptSet map[string]bool
	if hasOnly {
		onlySet = actionSet(only)
	}
	if hasExcept {
		exceptSet = actionSet(except)
	}
	if hasOnly && hasExcept {
		e.diag(types.SeverityWarn, types.KindAmbiguousDSL, n.Pos.File, n.Pos.Line,
			"both only: and except: given; except: dropped per tie-break")
		exceptSet = nil
	}

	actions := resourceActions(plural)
	selected := make([]resourceAction, 0, len(actions))
	for _, a := range actions {
		if hasOnly {
			if onlySet[a.name] {
				selected = append(selected, a)
			}
			continue
		}
		if hasExcept {
			if !exceptSet[a.name] {
				selected = append(selected, a)
			}
			continue
		}
		selected = append(selected, a)
	}

	controllerClass := child.ControllerClass(name)
	var out []types.EndpointRecord
	for _, a := range selected {
		path := child.PathPrefix
		if a.member {
			path = joinPath(path, ":"+child.PathParamName)
		}
		if a.suffix != "" {
			path = joinPath(path, a.suffix)
		}
		flags := map[types.Flag]bool{}
		if ctx.Conditional {
			flags[types.FlagConditional] = true
		}
		if ctx.Dynamic {
			flags[types.FlagDynamic] = true
		}
		out = append(out, types.EndpointRecord{
			Verb:            a.verb,
			Path:            path,
			ControllerClass: controllerClass,
			Action:          a.name,
			Source:          types.SourceRef{File: n.Pos.File, Line: n.Pos.Line},
			Flags:           flags,
			RawOptions:      rawOptionsFromKwArgs(n.KwArgs),
		})
	}

	if concernsKw, ok := n.Kw("concerns"); ok {
		for _, name := range nameList(concernsKw) {
			if body, ok := child.ConcernBody(name); ok {
				out = append(out, e.evalNodes(body, child)...)
			} else {
				e.diag(types.SeverityWarn, types.KindUnresolvedRef, n.Pos.File, n.Pos.Line,
					fmt.Sprintf("concern :%s not found", name))
			}
		}
	}

	if n.Block != nil {
		out = append(out, e.evalNodes(n.Block.Body, child)...)
	}
	return out
}

type resourceAction struct {
	name   string
	verb   types.Verb
	suffix string
	member bool
}

func resourceActions(plural bool) []resourceAction {
	if plural {
		return []resourceAction{
			{name: "index", verb: types.GET},
			{name: "new", verb: types.GET, suffix: "new"},
			{name: "create", verb: types.POST},
			{name: "show", verb: types.GET, member: true},
			{name: "edit", verb: types.GET, member: true, suffix: "edit"},
			{name: "update", verb: types.PATCH, member: true},
			{name: "destroy", verb: types.DELETE, member: true},
		}
	}
	return []resourceAction{
		{name: "new", verb: types.GET, suffix: "new"},
		{name: "create", verb: types.POST},
		{name: "show", verb: types.GET},
		{name: "edit", verb: types.GET, suffix: "edit"},
		{name: "update", verb: types.PATCH},
		{name: "destroy", verb: types.DELETE},
	}
}
