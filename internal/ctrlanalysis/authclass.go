// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package ctrlanalysis

import "regexp"

var exactAuthFilters = map[string]bool{
	"authenticate_user!":    true,
	"authorize!":            true,
	"require_login":         true,
	"doorkeeper_authorize!": true,
	"authenticate!":         true,
	"login_required":        true,
	"require_user":          true,
}

var authFilterPattern = regexp.MustCompile(`(?i)auth|login|session|token|verify|signed[_ ]in`)

// IsAuthFilter reports whether a before_action name counts as an
// authentication gate. "(block)" filters are never classified as auth —
// callers that need that distinction check the name directly.
func IsAuthFilter(name string) bool {
	if name == "(block)" {
		return false
	}
	if exactAuthFilters[name] {
		return true
	}
	return authFilterPattern.MatchString(name)
}
