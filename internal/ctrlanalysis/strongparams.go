// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package ctrlanalysis

import (
	"regexp"
	"strings"

	"github.com/shadowrail/shadowrail/internal/rast"
	"github.com/shadowrail/shadowrail/pkg/types"
)

// integerFieldRegex and booleanFieldRegex classify a strong-parameter field
// by name when no stronger signal is available, per the same naming-
// convention heuristic the teacher's Ruby plugin support uses for request
// schema inference.
var (
	integerFieldRegex = regexp.MustCompile(`(?i)(_id$|_count$|^(id|age|quantity|size|limit|offset)$)`)
	booleanFieldRegex = regexp.MustCompile(`(?i)^(is_|has_|published|active|enabled)`)
)

func typeHint(name string) string {
	switch {
	case integerFieldRegex.MatchString(name):
		return "integer"
	case booleanFieldRegex.MatchString(name), strings.HasSuffix(name, "?"):
		return "boolean"
	default:
		return "string"
	}
}

// extractParamSchema searches a method body for a
// `params.require(:key).permit(...)` call shape and renders it into a
// ParamSchema. It looks both at bare statements and at the right-hand side
// of an assignment, since `*_params` methods sometimes bind the result to
// a local before returning it.
func extractParamSchema(body []rast.Node) (types.ParamSchema, bool) {
	for _, stmt := range body {
		if call, ok := findPermitCall(stmt); ok {
			return schemaFromPermitCall(call), true
		}
	}
	return types.ParamSchema{}, false
}

func findPermitCall(n rast.Node) (rast.Node, bool) {
	switch n.Kind {
	case rast.KindAssign:
		if n.Value != nil {
			return findPermitCall(*n.Value)
		}
	case rast.KindCall:
		if n.Method == "permit" && n.Receiver != nil && n.Receiver.Method == "require" {
			return n, true
		}
		if n.Receiver != nil {
			return findPermitCall(*n.Receiver)
		}
	}
	return rast.Node{}, false
}

func schemaFromPermitCall(call rast.Node) types.ParamSchema {
	schema := types.ParamSchema{}

	if call.Receiver != nil && len(call.Receiver.Args) > 0 {
		if key, ok := stringValue(call.Receiver.Args[0]); ok {
			schema.RootKey = key
		}
	}

	for _, arg := range call.Args {
		schema.Fields = append(schema.Fields, fieldsFromPermitArg(arg)...)
	}
	return schema
}

// fieldsFromPermitArg flattens one positional argument of `.permit(...)`:
// a bare symbol/string is a scalar field; a hash literal's keys are fields,
// whether their value is an empty array (list field) or a symbol array
// (nested permit, flattened to its parent key for our purposes).
func fieldsFromPermitArg(arg rast.Node) []types.ParamField {
	switch arg.Kind {
	case rast.KindSymbol, rast.KindStringLit, rast.KindIdent:
		name, ok := stringValue(arg)
		if !ok {
			return nil
		}
		return []types.ParamField{{Name: name, TypeHint: typeHint(name)}}
	case rast.KindHashLit:
		var out []types.ParamField
		for _, pair := range arg.Pairs {
			name, ok := stringValue(pair.Key)
			if !ok {
				continue
			}
			out = append(out, types.ParamField{Name: name, TypeHint: typeHint(name)})
		}
		return out
	default:
		return nil
	}
}
