// Package routetree groups manifest routes by their first path segment for
// display. The tree is never used to resolve URLs.
package routetree

import (
	"strings"

	"github.com/conneroisu/pen/internal/manifest"
)

// RootGroup is the group of URLs without any path segment, such as "/".
const RootGroup = "root"

// Group is one top-level segment and the routes under it.
type Group struct {
	Name   string   `json:"name" yaml:"name"`
	Routes []string `json:"routes" yaml:"routes"`
}

// Tree is an ordered set of groups. Groups appear in the order their first
// route appears in the manifest.
type Tree struct {
	groups []Group
	index  map[string]int
}

// GroupKey returns the first non-empty segment of url, or RootGroup.
func GroupKey(url string) string {
	for _, segment := range strings.Split(url, "/") {
		if segment != "" {
			return segment
		}
	}
	return RootGroup
}

// Build derives a fresh tree from the manifest key order.
func Build(m *manifest.Manifest) *Tree {
	return FromURLs(m.Keys())
}

// FromURLs groups urls in the given order.
func FromURLs(urls []string) *Tree {
	tree := &Tree{index: make(map[string]int)}
	for _, url := range urls {
		tree.add(url)
	}
	return tree
}

func (t *Tree) add(url string) {
	key := GroupKey(url)
	i, ok := t.index[key]
	if !ok {
		i = len(t.groups)
		t.index[key] = i
		t.groups = append(t.groups, Group{Name: key})
	}
	t.groups[i].Routes = append(t.groups[i].Routes, url)
}

// Groups returns a copy of the groups in order.
func (t *Tree) Groups() []Group {
	out := make([]Group, len(t.groups))
	for i, g := range t.groups {
		routes := make([]string, len(g.Routes))
		copy(routes, g.Routes)
		out[i] = Group{Name: g.Name, Routes: routes}
	}
	return out
}

// Names returns the group names in order.
func (t *Tree) Names() []string {
	names := make([]string, len(t.groups))
	for i, g := range t.groups {
		names[i] = g.Name
	}
	return names
}

// Routes returns the URLs of a group.
func (t *Tree) Routes(group string) ([]string, bool) {
	i, ok := t.index[group]
	if !ok {
		return nil, false
	}
	routes := make([]string, len(t.groups[i].Routes))
	copy(routes, t.groups[i].Routes)
	return routes, true
}

// Len returns the number of groups.
func (t *Tree) Len() int {
	return len(t.groups)
}
