// Package modules resolves pattern bundles over a possibly cyclic
// dependency graph.
package modules

import (
	"sort"

	"dirscope/pkg/models"
)

// Graph maps module ids to modules
type Graph map[string]models.Module

// NewGraph indexes modules by id. A later duplicate id replaces an earlier one.
func NewGraph(modules []models.Module) Graph {
	g := make(Graph, len(modules))
	for _, m := range modules {
		g[m.ID] = m
	}
	return g
}

// Closure returns the sorted union of the patterns of id and of every
// module reachable through its dependencies. Cycles end the descent
// silently and an unknown id yields an empty result.
func Closure(id string, graph Graph) []string {
	patterns := make(map[string]struct{})
	collect(id, graph, make(map[string]bool), patterns)

	out := make([]string, 0, len(patterns))
	for p := range patterns {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func collect(id string, graph Graph, visited map[string]bool, patterns map[string]struct{}) {
	if visited[id] {
		return
	}
	visited[id] = true

	m, ok := graph[id]
	if !ok {
		return
	}
	for _, p := range m.Patterns {
		if p != "" {
			patterns[p] = struct{}{}
		}
	}
	for _, dep := range m.Dependencies {
		collect(dep, graph, visited, patterns)
	}
}
