// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package openapi renders resolved Rails endpoints into an OpenAPI 3.0/3.1
// document, diffs two such documents for auth-status regressions, and
// writes/reads them as YAML or JSON.
package openapi

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/shadowrail/shadowrail/internal/config"
	"github.com/shadowrail/shadowrail/pkg/types"
)

// railsParam matches a Rails path segment placeholder, e.g. :id or :post_id.
var railsParam = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)`)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Builder constructs an OpenAPI document from resolved endpoints.
type Builder struct {
	config *config.Config
}

// NewBuilder creates a new OpenAPI builder with the given configuration.
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{config: cfg}
}

// Build renders endpoints into a complete OpenAPI document, honoring the
// configured analysis filters (include_conditional, exclude_engines).
func (b *Builder) Build(endpoints []types.ResolvedEndpoint) (*types.OpenAPI, error) {
	doc := &types.OpenAPI{
		OpenAPI: b.config.OpenAPI.Version,
		Info:    b.buildInfo(),
		Servers: b.buildServers(),
		Paths:   make(map[string]types.PathItem),
		Tags:    b.buildTags(),
	}

	for _, ep := range endpoints {
		if ep.HasFlag(types.FlagEngineMount) && b.config.Analysis.ExcludeEngines {
			continue
		}
		if ep.HasFlag(types.FlagConditional) && !b.config.Analysis.IncludeConditional {
			continue
		}
		b.addOperation(doc, ep)
	}

	if len(b.config.OpenAPI.Security.Schemes) > 0 {
		doc.Security = b.buildSecurity()
		doc.Components = &types.Components{SecuritySchemes: b.buildSecuritySchemes()}
	}

	return doc, nil
}

// addOperation places a single resolved endpoint's operation into the
// document, keyed by its openapi-converted path and HTTP verb.
func (b *Builder) addOperation(doc *types.OpenAPI, ep types.ResolvedEndpoint) {
	path := openAPIPath(ep.Path)
	item := doc.Paths[path]
	if item.Parameters == nil {
		item.Parameters = pathParameters(ep.Path)
	}

	op := b.endpointToOperation(ep, path)

	switch ep.Verb {
	case types.GET:
		item.Get = op
	case types.POST:
		item.Post = op
	case types.PUT:
		item.Put = op
	case types.PATCH:
		item.Patch = op
	case types.DELETE:
		item.Delete = op
	case types.HEAD:
		item.Head = op
	case types.OPTIONS:
		item.Options = op
	default: // AnyVerb: match ... via: :all already expands before this point,
		// so reaching here means an opaque engine mount or wildcard match.
		item.Any = op
	}

	doc.Paths[path] = item
}

// endpointToOperation builds the Operation and its Rails-specific x-*
// extensions for a single resolved endpoint.
func (b *Builder) endpointToOperation(ep types.ResolvedEndpoint, openAPIPathStr string) *types.Operation {
	op := &types.Operation{
		OperationID: operationID(openAPIPathStr, ep.Action, string(ep.Verb)),
		Summary:     summaryFor(ep),
		Tags:        []string{tagFor(ep.Path)},
		Responses:   map[string]types.Response{"200": {Description: "Successful response"}},

		XController:  ep.ControllerClass,
		XAction:      ep.Action,
		XAuthStatus:  authStatusExtension(ep.AuthStatus),
		XAuthFilters: ep.EffectiveFilters,
		XSource:      sourceExtension(ep.Source),
		XFlags:       flagsExtension(ep.Flags),
		XConditional: ep.HasFlag(types.FlagConditional),
	}

	if ep.RequestSchema != nil {
		op.RequestBody = requestBodyFor(*ep.RequestSchema)
	}

	return op
}

func summaryFor(ep types.ResolvedEndpoint) string {
	if ep.ControllerClass == "" {
		return string(ep.Verb) + " " + ep.Path
	}
	return ep.ControllerClass + "#" + ep.Action
}

func authStatusExtension(s types.AuthStatus) string {
	if s == types.AuthUnprotected {
		return "UNPROTECTED"
	}
	return string(s)
}

func sourceExtension(ref types.SourceRef) string {
	if ref.File == "" {
		return ""
	}
	return ref.File + ":" + strconv.Itoa(ref.Line)
}

func flagsExtension(flags map[types.Flag]bool) []string {
	if len(flags) == 0 {
		return nil
	}
	out := make([]string, 0, len(flags))
	for f, on := range flags {
		if on {
			out = append(out, string(f))
		}
	}
	sort.Strings(out)
	return out
}

func requestBodyFor(schema types.ParamSchema) *types.RequestBody {
	props := make(map[string]*types.Schema, len(schema.Fields))
	for _, f := range schema.Fields {
		props[f.Name] = &types.Schema{Type: f.TypeHint}
	}
	return &types.RequestBody{
		Required: true,
		Content: map[string]types.MediaType{
			"application/json": {
				Schema: &types.Schema{Type: "object", Properties: props},
			},
		},
	}
}

// openAPIPath rewrites Rails' :name path segments into OpenAPI's {name}
// form.
func openAPIPath(railsPath string) string {
	return railsParam.ReplaceAllString(railsPath, "{$1}")
}

// pathParameters declares an OpenAPI path parameter for every :name segment
// so the document stays structurally valid.
func pathParameters(railsPath string) []types.Parameter {
	matches := railsParam.FindAllStringSubmatch(railsPath, -1)
	if len(matches) == 0 {
		return nil
	}
	params := make([]types.Parameter, 0, len(matches))
	for _, m := range matches {
		params = append(params, types.Parameter{
			Name:     m[1],
			In:       "path",
			Required: true,
			Schema:   &types.Schema{Type: "string"},
		})
	}
	return params
}

// operationID slugs verb+path+action into a stable identifier, e.g.
// "get_posts_id_show".
func operationID(openAPIPathStr, action, verb string) string {
	raw := strings.ToLower(verb + "_" + openAPIPathStr + "_" + action)
	slug := nonSlug.ReplaceAllString(raw, "_")
	slug = strings.Trim(slug, "_")
	for strings.Contains(slug, "__") {
		slug = strings.ReplaceAll(slug, "__", "_")
	}
	return slug
}

// tagFor groups an endpoint under its first two path segments, e.g.
// "/api/v1/posts/:id" -> "api/v1".
func tagFor(railsPath string) string {
	segs := strings.Split(strings.Trim(railsPath, "/"), "/")
	var keep []string
	for _, s := range segs {
		if s == "" {
			continue
		}
		keep = append(keep, s)
		if len(keep) == 2 {
			break
		}
	}
	if len(keep) == 0 {
		return "root"
	}
	return strings.Join(keep, "/")
}

// buildInfo constructs the Info object from configuration.
func (b *Builder) buildInfo() types.Info {
	info := types.Info{
		Title:          b.config.OpenAPI.Info.Title,
		Description:    b.config.OpenAPI.Info.Description,
		TermsOfService: b.config.OpenAPI.Info.TermsOfService,
		Version:        b.config.OpenAPI.Info.Version,
	}

	if b.config.OpenAPI.Info.Contact.Name != "" ||
		b.config.OpenAPI.Info.Contact.Email != "" ||
		b.config.OpenAPI.Info.Contact.URL != "" {
		info.Contact = &types.Contact{
			Name:  b.config.OpenAPI.Info.Contact.Name,
			URL:   b.config.OpenAPI.Info.Contact.URL,
			Email: b.config.OpenAPI.Info.Contact.Email,
		}
	}

	if b.config.OpenAPI.Info.License.Name != "" {
		info.License = &types.License{
			Name: b.config.OpenAPI.Info.License.Name,
			URL:  b.config.OpenAPI.Info.License.URL,
		}
	}

	return info
}

// buildServers constructs the servers list from configuration.
func (b *Builder) buildServers() []types.Server {
	servers := make([]types.Server, 0, len(b.config.OpenAPI.Servers))
	for _, s := range b.config.OpenAPI.Servers {
		servers = append(servers, types.Server{
			URL:         s.URL,
			Description: s.Description,
		})
	}
	return servers
}

// buildTags constructs the tags list from configuration.
func (b *Builder) buildTags() []types.Tag {
	tags := make([]types.Tag, 0, len(b.config.OpenAPI.Tags))
	for _, t := range b.config.OpenAPI.Tags {
		tags = append(tags, types.Tag{
			Name:        t.Name,
			Description: t.Description,
		})
	}
	return tags
}

// buildSecurity constructs the global security requirements.
func (b *Builder) buildSecurity() []map[string][]string {
	if len(b.config.OpenAPI.Security.Default) == 0 {
		return nil
	}

	security := make([]map[string][]string, 0, len(b.config.OpenAPI.Security.Default))
	for _, name := range b.config.OpenAPI.Security.Default {
		security = append(security, map[string][]string{name: {}})
	}

	return security
}

// buildSecuritySchemes constructs security scheme definitions.
func (b *Builder) buildSecuritySchemes() map[string]types.SecurityScheme {
	schemes := make(map[string]types.SecurityScheme)

	for name, cfg := range b.config.OpenAPI.Security.Schemes {
		schemes[name] = types.SecurityScheme{
			Type:         cfg.Type,
			Description:  cfg.Description,
			Name:         cfg.Name,
			In:           cfg.In,
			Scheme:       cfg.Scheme,
			BearerFormat: cfg.BearerFormat,
		}
	}

	return schemes
}

// SortedPaths returns a sorted list of path keys for deterministic output.
func SortedPaths(paths map[string]types.PathItem) []string {
	keys := make([]string, 0, len(paths))
	for k := range paths {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
