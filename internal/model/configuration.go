// Package model defines the data structures shared by the bisection engine.
package model

import (
	"fmt"
	"sort"
)

// Component is the opaque name of one unit of a configuration (e.g. a function
// with its own profile body).
type Component string

// Payload is the uninterpreted value attached to a component. The engine only
// ever substitutes payloads, it never inspects them.
type Payload string

// Configuration maps component names to their payloads.
type Configuration map[Component]Payload

// Clone returns a shallow copy of c.
func (c Configuration) Clone() Configuration {
	out := make(Configuration, len(c))
	for name, payload := range c {
		out[name] = payload
	}

	return out
}

// Components returns the component names of c in sorted order.
func (c Configuration) Components() []Component {
	names := make([]Component, 0, len(c))
	for name := range c {
		names = append(names, name)
	}

	SortComponents(names)

	return names
}

// MakeCandidate copies good and overwrites every component in components with
// its payload from bad. Neither input is modified.
//
// Asking for a component bad does not have is a programming error and panics.
func MakeCandidate(good, bad Configuration, components []Component) Configuration {
	candidate := good.Clone()
	Splice(candidate, bad, components)

	return candidate
}

// Splice overwrites components in dst with their payloads from src.
func Splice(dst, src Configuration, components []Component) {
	for _, name := range components {
		payload, ok := src[name]
		if !ok {
			panic(fmt.Sprintf("component %q missing from source configuration", name))
		}

		dst[name] = payload
	}
}

// CommonComponents returns the sorted names present in both a and b.
func CommonComponents(a, b Configuration) []Component {
	common := make([]Component, 0, len(a))
	for name := range a {
		if _, ok := b[name]; ok {
			common = append(common, name)
		}
	}

	SortComponents(common)

	return common
}

// OnlyIn returns the sorted names present in a but absent from b.
func OnlyIn(a, b Configuration) []Component {
	only := make([]Component, 0)
	for name := range a {
		if _, ok := b[name]; !ok {
			only = append(only, name)
		}
	}

	SortComponents(only)

	return only
}

// SortComponents sorts names in place.
func SortComponents(names []Component) {
	sort.Slice(names, func(i, j int) bool {
		return names[i] < names[j]
	})
}
