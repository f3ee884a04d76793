// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package ctrlanalysis

import "github.com/shadowrail/shadowrail/pkg/types"

// maxInheritanceHops bounds how far up the parent chain EffectiveFilters
// climbs. Chasing an unbounded chain risks loops on malformed input and
// buys nothing past a few levels in practice; three hops covers the usual
// Concern/ApplicationController/leaf-controller depth.
const maxInheritanceHops = 3

// frameworkBoundaries are ancestor class names EffectiveFilters never tries
// to resolve further, whether or not they happen to appear in the index.
var frameworkBoundaries = map[string]bool{
	"ApplicationController":  true,
	"ActionController::Base": true,
	"ActionController::API":  true,
}

// EffectiveFilters composes the before_action set that applies to
// className.action, walking the ancestor chain root-down per §4.3. It
// reports foundClass=false (with unresolved=true) when className itself
// was never discovered, and
// unresolved=true when some ancestor in the chain could not be resolved
// (as opposed to the chain terminating normally at a framework boundary).
func (idx Index) EffectiveFilters(className, action string) (filters []string, foundClass bool, unresolved bool) {
	root, ok := idx.Controllers[className]
	if !ok {
		return nil, false, true
	}

	maxHops := idx.MaxHops
	if maxHops <= 0 {
		maxHops = maxInheritanceHops
	}

	chain := []types.ControllerSummary{root}
	current := root
	for hops := 0; hops < maxHops; hops++ {
		parent := current.ParentClass
		if parent == "" {
			break
		}
		if frameworkBoundaries[parent] {
			if next, ok := idx.Controllers[parent]; ok {
				chain = append(chain, next)
			}
			break
		}
		next, ok := idx.Controllers[parent]
		if !ok {
			unresolved = true
			break
		}
		chain = append(chain, next)
		current = next
	}

	// chain currently holds [C, parent, grandparent, ...]; reverse so
	// composition proceeds root-first, per spec.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	applied := newOrderedSet()
	for _, cls := range chain {
		for _, fd := range cls.BeforeActions {
			if fd.AppliesTo(action) {
				applied.add(fd.FilterName)
			}
		}
		for _, fd := range cls.SkipBeforeActions {
			if fd.AppliesTo(action) {
				applied.remove(fd.FilterName)
			}
		}
	}

	return applied.slice(), true, unresolved
}

type orderedSet struct {
	order []string
	has   map[string]bool
}

func newOrderedSet() *orderedSet {
	return &orderedSet{has: make(map[string]bool)}
}

func (s *orderedSet) add(name string) {
	if s.has[name] {
		return
	}
	s.has[name] = true
	s.order = append(s.order, name)
}

func (s *orderedSet) remove(name string) {
	if !s.has[name] {
		return
	}
	delete(s.has, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *orderedSet) slice() []string {
	if len(s.order) == 0 {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
