// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package routedsl

import (
	"strings"

	"github.com/shadowrail/shadowrail/internal/rast"
)

// stringValue extracts the string payload of a StringLit or Symbol node.
func stringValue(n rast.Node) (string, bool) {
	switch n.Kind {
	case rast.KindStringLit:
		return n.Str, true
	case rast.KindSymbol, rast.KindIdent:
		return n.Name, true
	}
	return "", false
}

// actionSet builds a set from a kwarg value that may be a single Symbol or
// an ArrayLit of Symbols/StringLits.
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

// nameList extracts symbol/string names from a kwarg value that may be a
// single Symbol or an ArrayLit, preserving declaration order (unlike
// actionSet, whose set form is order-free by design).
func nameList(n rast.Node) []string {
	var out []string
	switch n.Kind {
	case rast.KindArrayLit:
		for _, item := range n.Items {
			if s, ok := stringValue(item); ok {
				out = append(out, s)
			}
		}
	default:
		if s, ok := stringValue(n); ok {
			out = append(out, s)
		}
	}
	return out
}

// rawOptionValue renders a Node as a plain Go value for RawOptions/round-tripping
// into OpenAPI extensions. It never fails: unrepresentable nodes become their
// best-effort string form.
func rawOptionValue(n rast.Node) any {
	switch n.Kind {
	case rast.KindStringLit:
		return n.Str
	case rast.KindSymbol:
		return n.Name
	case rast.KindIdent:
		return n.Name
	case rast.KindIntLit:
		return n.Int
	case rast.KindArrayLit:
		out := make([]any, 0, len(n.Items))
		for _, it := range n.Items {
			out = append(out, rawOptionValue(it))
		}
		return out
	case rast.KindHashLit:
		out := make(map[string]any, len(n.Pairs))
		for _, pair := range n.Pairs {
			key, _ := stringValue(pair.Key)
			out[key] = rawOptionValue(pair.Value)
		}
		return out
	case rast.KindCall:
		return exprText(n)
	default:
		return n.Raw
	}
}

func rawOptionsFromKwArgs(kwargs []rast.KwArg) map[string]any {
	if len(kwargs) == 0 {
		return nil
	}
	out := make(map[string]any, len(kwargs))
	for _, kw := range kwargs {
		out[kw.Key] = rawOptionValue(kw.Value)
	}
	return out
}

// exprText renders a dotted/qualified identifier chain (e.g. Sidekiq::Web,
// or a receiver.method call used as a mount target) back to source-ish
// text, for cases where the spec asks us to "record the raw expression
// text" rather than resolve a value.
func exprText(n rast.Node) string {
	switch n.Kind {
	case rast.KindIdent:
		return n.Name
	case rast.KindCall:
		if n.Receiver != nil {
			return exprText(*n.Receiver) + "." + n.Method
		}
		return n.Method
	case rast.KindStringLit:
		return n.Str
	case rast.KindSymbol:
		return ":" + n.Name
	default:
		return n.Raw
	}
}

// pathStem returns the last meaningful path segment, used as the implicit
// action name when a verb call gives neither `to:` nor `action:`.
func pathStem(path string) string {
	path = strings.TrimPrefix(path, "/")
	segs := strings.Split(path, "/")
	last := segs[len(segs)-1]
	last = strings.TrimPrefix(last, ":")
	return last
}
