// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package types

// Verb is an HTTP method recognized by the route evaluator, or AnyVerb for
// an opaque engine mount.
type Verb string

const (
	GET     Verb = "GET"
	POST    Verb = "POST"
	PUT     Verb = "PUT"
	PATCH   Verb = "PATCH"
	DELETE  Verb = "DELETE"
	HEAD    Verb = "HEAD"
	OPTIONS Verb = "OPTIONS"
	AnyVerb Verb = "*"
)

// StandardVerbs is the set `via: :all` expands to.
var StandardVerbs = []Verb{GET, POST, PUT, PATCH, DELETE, HEAD, OPTIONS}

// AuthStatus is the outcome of joining an endpoint with its controller's
// effective filter set.
type AuthStatus string

const (
	AuthAuthenticated AuthStatus = "authenticated"
	AuthUnprotected   AuthStatus = "unprotected"
	AuthUnknown       AuthStatus = "unknown"
)

// Flag marks a condition under which an endpoint was produced.
type Flag string

const (
	FlagConditional       Flag = "conditional"
	FlagDynamic           Flag = "dynamic"
	FlagEngineMount       Flag = "engine_mount"
	FlagConstraintPresent Flag = "constraint_present"
	FlagUnknownController Flag = "unknown_controller"
)

// SourceRef is the file/line an endpoint or filter declaration originated from.
type SourceRef struct {
	File string
	Line int
}

// EndpointRecord is emitted by the route evaluator: a single routed verb+path
// bound to a controller action, before any auth analysis has joined in.
type EndpointRecord struct {
	Verb            Verb
	Path            string
	ControllerClass string
	Action          string
	Source          SourceRef
	Flags           map[Flag]bool
	RawOptions      map[string]any
}

// HasFlag reports whether f is set; a nil Flags map behaves as empty.
func (e EndpointRecord) HasFlag(f Flag) bool {
	return e.Flags != nil && e.Flags[f]
}

// FilterDecl is a parsed before_action/skip_before_action declaration.
// Only and Except are mutually exclusive; a nil set means "applies to every action".
type FilterDecl struct {
	FilterName string
	Only       map[string]bool
	Except     map[string]bool
	IsBlock    bool
}

// AppliesTo reports whether this filter declaration applies to the given action,
// honoring only:/except: predicates.
func (f FilterDecl) AppliesTo(action string) bool {
	if f.Only != nil {
		return f.Only[action]
	}
	if f.Except != nil {
		return !f.Except[action]
	}
	return true
}

// ParamField is a single strong-parameter field with its inferred JSON-Schema type.
type ParamField struct {
	Name     string
	TypeHint string
}

// ParamSchema is the request-body shape recovered from a `*_params` method.
type ParamSchema struct {
	RootKey string
	Fields  []ParamField
}

// ControllerSummary is the per-class result of the controller analyzer,
// before inheritance composition.
type ControllerSummary struct {
	ClassName         string
	ParentClass       string
	BeforeActions     []FilterDecl
	SkipBeforeActions []FilterDecl
	ActionParams      map[string]ParamSchema
	File              string
	Line              int
}

// ResolvedEndpoint is the final output of the endpoint resolver: an
// EndpointRecord joined with its auth analysis.
type ResolvedEndpoint struct {
	EndpointRecord
	AuthStatus       AuthStatus
	EffectiveFilters []string
	RequestSchema    *ParamSchema
}
