package graph

import (
	"errors"
	"strings"
	"testing"

	"github.com/divmain/janus/internal/janus"
)

func TestResolveIDExactMatch(t *testing.T) {
	m := map[string]TicketMeta{"j-a1b2": {ID: "j-a1b2"}}
	got, err := ResolveID("j-a1b2", m)
	if err != nil || got != "j-a1b2" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestResolveIDUniqueSubstring(t *testing.T) {
	m := map[string]TicketMeta{"j-a1b2": {}, "k-c3d4": {}}
	got, err := ResolveID("a1", m)
	if err != nil || got != "j-a1b2" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestResolveIDAmbiguous(t *testing.T) {
	m := map[string]TicketMeta{"j-a1b2": {}, "j-a1c3": {}}
	_, err := ResolveID("j-a1", m)
	var jerr *janus.Error
	if !errors.As(err, &jerr) || !errors.Is(err, janus.ErrNotFound) {
		t.Fatalf("expected NotFound-kind ambiguous error, got %v", err)
	}
	if len(jerr.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %v", jerr.Candidates)
	}
}

func TestResolveIDNoMatch(t *testing.T) {
	m := map[string]TicketMeta{"j-a1b2": {}}
	_, err := ResolveID("z-zzzz", m)
	if !errors.Is(err, janus.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestResolveIDEmptyMap(t *testing.T) {
	_, err := ResolveID("j-a1b2", map[string]TicketMeta{})
	if !errors.Is(err, janus.ErrNotFound) {
		t.Fatalf("expected NotFound-kind empty-map error, got %v", err)
	}
}

func TestCheckCircularDependencyDirect(t *testing.T) {
	tickets := map[string]TicketMeta{
		"j-b": {ID: "j-b", Deps: []string{"j-a"}},
	}
	err := CheckCircularDependency("j-a", "j-b", tickets)
	if !errors.Is(err, janus.ErrCycle) {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestCheckCircularDependencyTransitive(t *testing.T) {
	tickets := map[string]TicketMeta{
		"j-b": {ID: "j-b", Deps: []string{"j-c"}},
		"j-c": {ID: "j-c", Deps: []string{"j-a"}},
	}
	err := CheckCircularDependency("j-a", "j-b", tickets)
	if !errors.Is(err, janus.ErrCycle) {
		t.Fatalf("expected transitive cycle error, got %v", err)
	}
	var jerr *janus.Error
	if !errors.As(err, &jerr) {
		t.Fatalf("expected *janus.Error, got %T", err)
	}
	const wantCycle = "j-b -> j-c -> j-a -> j-b"
	if !strings.Contains(jerr.Msg, wantCycle) {
		t.Fatalf("expected message to contain closed cycle %q, got %q", wantCycle, jerr.Msg)
	}
}

func TestCheckCircularDependencyNoCycle(t *testing.T) {
	tickets := map[string]TicketMeta{
		"j-b": {ID: "j-b"},
	}
	if err := CheckCircularDependency("j-a", "j-b", tickets); err != nil {
		t.Fatalf("expected no cycle, got %v", err)
	}
}

func TestGetReachableTicketsBasic(t *testing.T) {
	tickets := map[string]TicketMeta{
		"j-a": {ID: "j-a", Deps: []string{"j-b"}},
		"j-b": {ID: "j-b"},
	}
	got, err := GetReachableTickets("j-a", tickets, FilterAll)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || !got["j-a"] || !got["j-b"] {
		t.Fatalf("unexpected reachable set: %v", got)
	}
}

func TestGetReachableTicketsSpawnOnly(t *testing.T) {
	tickets := map[string]TicketMeta{
		"j-parent": {ID: "j-parent"},
		"j-child":  {ID: "j-child", SpawnedFrom: "j-parent"},
	}
	got, err := GetReachableTickets("j-child", tickets, FilterSpawn)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || !got["j-parent"] || !got["j-child"] {
		t.Fatalf("unexpected reachable set: %v", got)
	}
}

func TestGetReachableTicketsHandlesCycles(t *testing.T) {
	tickets := map[string]TicketMeta{
		"j-a": {ID: "j-a", Deps: []string{"j-b"}},
		"j-b": {ID: "j-b", Deps: []string{"j-a"}},
	}
	got, err := GetReachableTickets("j-a", tickets, FilterDeps)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected cycle traversal to terminate with 2 nodes, got %v", got)
	}
}

func TestBuildEdgesFiltersByKindAndMembership(t *testing.T) {
	tickets := map[string]TicketMeta{
		"j-a": {ID: "j-a", Deps: []string{"j-b"}, SpawnedFrom: "j-b"},
		"j-b": {ID: "j-b"},
	}
	ids := map[string]bool{"j-a": true, "j-b": true}

	deps := BuildEdges(ids, tickets, FilterDeps)
	if len(deps) != 1 || deps[0].Type != EdgeBlocks {
		t.Fatalf("expected 1 blocks edge, got %+v", deps)
	}

	spawn := BuildEdges(ids, tickets, FilterSpawn)
	if len(spawn) != 1 || spawn[0].Type != EdgeSpawned {
		t.Fatalf("expected 1 spawned edge, got %+v", spawn)
	}

	all := BuildEdges(ids, tickets, FilterAll)
	if len(all) != 2 {
		t.Fatalf("expected 2 edges for FilterAll, got %+v", all)
	}
}

func TestBuildEdgesExcludesOutsideNodeSet(t *testing.T) {
	tickets := map[string]TicketMeta{
		"j-a": {ID: "j-a", Deps: []string{"j-b"}, SpawnedFrom: "j-c"},
	}
	ids := map[string]bool{"j-a": true}
	edges := BuildEdges(ids, tickets, FilterAll)
	if len(edges) != 0 {
		t.Fatalf("expected no edges to nodes outside the set, got %+v", edges)
	}
}
