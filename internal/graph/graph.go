// Package graph implements the pure dependency/spawn graph engine
// (§4.8): id resolution, circular-dependency detection, BFS
// reachability over four edge kinds, and the DOT/Mermaid serialisers.
// Every function here takes a plain map of ticket metadata rather than
// a *store.Store, so the algorithms stay trivially testable and are
// reusable from both the CLI and the MCP surface without either one
// pulling in store's locking.
package graph

import (
	"sort"
	"strings"

	"github.com/divmain/janus/internal/janus"
	"github.com/divmain/janus/internal/model"
)

// TicketMeta is the minimal ticket projection the graph algorithms
// need: an id, its dependencies, and (optionally) the id of the ticket
// it was spawned from. Type and Status are carried only for display —
// GenerateDOT/GenerateMermaid title-case them into the node label —
// and play no part in traversal or cycle detection.
type TicketMeta struct {
	ID          string
	Title       string
	Type        model.TicketType
	Status      model.Status
	Deps        []string
	SpawnedFrom string
}

// ResolveID resolves a partial id against ids: exact match wins,
// otherwise a unique substring match, otherwise an error describing
// why resolution failed.
func ResolveID(partial string, ids map[string]TicketMeta) (string, error) {
	if len(ids) == 0 {
		return "", janus.NewEmptyMap()
	}
	if _, ok := ids[partial]; ok {
		return partial, nil
	}

	var matches []string
	for k := range ids {
		if strings.Contains(k, partial) {
			matches = append(matches, k)
		}
	}
	sort.Strings(matches)

	switch len(matches) {
	case 0:
		return "", janus.NewNotFound(partial)
	case 1:
		return matches[0], nil
	default:
		return "", janus.NewAmbiguous(partial, matches)
	}
}

// CheckCircularDependency reports an error if adding a from->to
// dependency edge would create a cycle. It checks the direct case
// (to already depends on from) before falling back to a DFS from to
// looking for from, so the error message can name whichever shape of
// cycle was actually found.
func CheckCircularDependency(from, to string, tickets map[string]TicketMeta) error {
	if dep, ok := tickets[to]; ok && contains(dep.Deps, from) {
		return janus.NewCycleError(from + " -> " + to + " (direct: " + to + " already depends on " + from + ")")
	}

	visited := make(map[string]bool)
	var path []string
	if cyclePath, found := hasPathTo(to, from, tickets, visited, path); found {
		fullCycle := append(cyclePath, to)
		return janus.NewCycleError(from + " -> " + to + " would create cycle: " + strings.Join(fullCycle, " -> "))
	}
	return nil
}

func hasPathTo(current, target string, tickets map[string]TicketMeta, visited map[string]bool, path []string) ([]string, bool) {
	if current == target {
		return append(path, current), true
	}
	if visited[current] {
		return nil, false
	}
	visited[current] = true
	path = append(path, current)

	if t, ok := tickets[current]; ok {
		for _, dep := range t.Deps {
			if found, ok := hasPathTo(dep, target, tickets, visited, path); ok {
				return found, true
			}
		}
	}
	return nil, false
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

// Filter restricts which edge kinds GetReachableTickets and BuildEdges
// traverse/emit.
type Filter int

const (
	FilterAll Filter = iota
	FilterDeps
	FilterSpawn
)

// GetReachableTickets returns the set of ticket ids reachable from
// root by BFS over up to four edge kinds: outgoing deps, incoming deps
// (reverse — tickets that depend on this one), the spawn parent, and
// spawn children (reverse). filter restricts which kinds are followed;
// a visited set makes the traversal safe in the presence of cycles.
func GetReachableTickets(rootPartial string, tickets map[string]TicketMeta, filter Filter) (map[string]bool, error) {
	root, err := ResolveID(rootPartial, tickets)
	if err != nil {
		return nil, err
	}

	visited := make(map[string]bool)
	queue := []string{root}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		if t, ok := tickets[current]; ok {
			if filter != FilterSpawn {
				for _, dep := range t.Deps {
					if !visited[dep] {
						queue = append(queue, dep)
					}
				}
			}
			if filter != FilterDeps && t.SpawnedFrom != "" && !visited[t.SpawnedFrom] {
				queue = append(queue, t.SpawnedFrom)
			}
		}

		for id, other := range tickets {
			if visited[id] {
				continue
			}
			if filter != FilterSpawn && contains(other.Deps, current) {
				queue = append(queue, id)
			}
			if filter != FilterDeps && other.SpawnedFrom == current {
				queue = append(queue, id)
			}
		}
	}

	return visited, nil
}

// EdgeType discriminates the two edge kinds the graph builder emits.
type EdgeType int

const (
	EdgeBlocks EdgeType = iota
	EdgeSpawned
)

// Edge is a directed relationship between two tickets in the node set.
type Edge struct {
	From string
	To   string
	Type EdgeType
}

// BuildEdges produces the edge set for a given node set ids: a->b
// ("blocks") iff b is in a.Deps and both endpoints are in ids and
// filter != Spawn; parent->child ("spawned") iff child.SpawnedFrom ==
// parent and both in ids and filter != Deps.
func BuildEdges(ids map[string]bool, tickets map[string]TicketMeta, filter Filter) []Edge {
	var edges []Edge
	for id := range ids {
		t, ok := tickets[id]
		if !ok {
			continue
		}
		if filter != FilterSpawn {
			for _, dep := range t.Deps {
				if ids[dep] {
					edges = append(edges, Edge{From: id, To: dep, Type: EdgeBlocks})
				}
			}
		}
		if filter != FilterDeps && t.SpawnedFrom != "" && ids[t.SpawnedFrom] {
			edges = append(edges, Edge{From: t.SpawnedFrom, To: id, Type: EdgeSpawned})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}
