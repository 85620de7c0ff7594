package modules

import (
	"errors"
	"fmt"
	"sort"

	"dirscope/pkg/models"
)

// ErrUnknownModule is returned for ids missing from the registry
var ErrUnknownModule = errors.New("unknown module")

// Registry is the in-memory module graph loaded from configuration
type Registry struct {
	graph      Graph
	dependents map[string][]string
}

// NewRegistry builds a registry and its reverse edges
func NewRegistry(modules []models.Module) *Registry {
	r := &Registry{
		graph:      NewGraph(modules),
		dependents: make(map[string][]string),
	}
	for id, m := range r.graph {
		for _, dep := range m.Dependencies {
			r.dependents[dep] = append(r.dependents[dep], id)
		}
	}
	for id := range r.dependents {
		sort.Strings(r.dependents[id])
	}
	return r
}

// Get returns the module with the given id
func (r *Registry) Get(id string) (models.Module, error) {
	m, ok := r.graph[id]
	if !ok {
		return models.Module{}, fmt.Errorf("%w: %s", ErrUnknownModule, id)
	}
	return m, nil
}

// Graph exposes the underlying graph for Closure
func (r *Registry) Graph() Graph {
	return r.graph
}

// Patterns returns the pattern closure of id
func (r *Registry) Patterns(id string) ([]string, error) {
	if _, err := r.Get(id); err != nil {
		return nil, err
	}
	return Closure(id, r.graph), nil
}

// Dependencies returns every module id reachable from id, excluding id
func (r *Registry) Dependencies(id string) []string {
	return r.reach(id, func(m string) []string {
		return r.graph[m].Dependencies
	})
}

// Dependents returns every module id that reaches id, excluding id
func (r *Registry) Dependents(id string) []string {
	return r.reach(id, func(m string) []string {
		return r.dependents[m]
	})
}

func (r *Registry) reach(id string, next func(string) []string) []string {
	visited := map[string]bool{id: true}
	var out []string

	var visit func(string)
	visit = func(cur string) {
		for _, n := range next(cur) {
			if visited[n] {
				continue
			}
			visited[n] = true
			out = append(out, n)
			visit(n)
		}
	}
	visit(id)

	sort.Strings(out)
	return out
}

// Validate reports dependencies that point at unknown modules
func (r *Registry) Validate() error {
	var errs []error
	ids := make([]string, 0, len(r.graph))
	for id := range r.graph {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		for _, dep := range r.graph[id].Dependencies {
			if _, ok := r.graph[dep]; !ok {
				errs = append(errs, fmt.Errorf("module %s depends on %w: %s", id, ErrUnknownModule, dep))
			}
		}
	}
	return errors.Join(errs...)
}
