package graph

import (
	"strings"
	"testing"

	"github.com/divmain/janus/internal/model"
)

func TestEscapeDOT(t *testing.T) {
	cases := map[string]string{
		"hello":         "hello",
		`hello "world"`: `hello \"world\"`,
		"line1\nline2":  `line1\nline2`,
	}
	for in, want := range cases {
		if got := escapeDOT(in); got != want {
			t.Errorf("escapeDOT(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEscapeMermaid(t *testing.T) {
	if got, want := escapeMermaid(`hello "world"`), `hello &quot;world&quot;`; got != want {
		t.Errorf("escapeMermaid = %q, want %q", got, want)
	}
	if got, want := escapeMermaid("<tag>"), "&lt;tag&gt;"; got != want {
		t.Errorf("escapeMermaid = %q, want %q", got, want)
	}
}

func TestGenerateDOTEmpty(t *testing.T) {
	out := GenerateDOT(nil, nil, nil)
	if !strings.Contains(out, "digraph janus") || !strings.Contains(out, "rankdir=TB") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestGenerateDOTWithNodesAndEdges(t *testing.T) {
	ids := map[string]bool{"j-a1b2": true, "j-c3d4": true}
	tickets := map[string]TicketMeta{"j-a1b2": {ID: "j-a1b2", Title: "Test Ticket"}}
	edges := []Edge{{From: "j-a1b2", To: "j-c3d4", Type: EdgeBlocks}}

	out := GenerateDOT(ids, edges, tickets)
	if !strings.Contains(out, `"j-a1b2"`) || !strings.Contains(out, "Test Ticket") {
		t.Fatalf("expected node with title, got: %s", out)
	}
	if !strings.Contains(out, `"j-a1b2" -> "j-c3d4"`) || !strings.Contains(out, "blocks") {
		t.Fatalf("expected blocks edge, got: %s", out)
	}
}

func TestGenerateDOTSpawnedEdgeIsDashed(t *testing.T) {
	ids := map[string]bool{"j-parent": true, "j-child": true}
	edges := []Edge{{From: "j-parent", To: "j-child", Type: EdgeSpawned}}
	out := GenerateDOT(ids, edges, nil)
	if !strings.Contains(out, "style=dashed") || !strings.Contains(out, "spawned") {
		t.Fatalf("expected dashed spawned edge, got: %s", out)
	}
}

func TestGenerateMermaidEmpty(t *testing.T) {
	out := GenerateMermaid(nil, nil, nil)
	if !strings.Contains(out, "graph TD") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestGenerateMermaidReplacesHyphensInIDs(t *testing.T) {
	ids := map[string]bool{"j-a1b2": true, "j-c3d4": true}
	edges := []Edge{{From: "j-a1b2", To: "j-c3d4", Type: EdgeBlocks}}
	out := GenerateMermaid(ids, edges, nil)
	if !strings.Contains(out, "j_a1b2 -->|blocks| j_c3d4") {
		t.Fatalf("expected hyphen-safe mermaid ids, got: %s", out)
	}
}

func TestGenerateMermaidSpawnedEdge(t *testing.T) {
	ids := map[string]bool{"j-parent": true, "j-child": true}
	edges := []Edge{{From: "j-parent", To: "j-child", Type: EdgeSpawned}}
	out := GenerateMermaid(ids, edges, nil)
	if !strings.Contains(out, "-.->") || !strings.Contains(out, "spawned") {
		t.Fatalf("expected dashed mermaid spawned edge, got: %s", out)
	}
}

func TestGenerateDOTLabelTitleCasesTypeAndStatus(t *testing.T) {
	ids := map[string]bool{"j-a1b2": true}
	tickets := map[string]TicketMeta{
		"j-a1b2": {ID: "j-a1b2", Title: "Test Ticket", Type: model.TypeBug, Status: model.StatusInProgress},
	}
	out := GenerateDOT(ids, nil, tickets)
	if !strings.Contains(out, "Bug In Progress") {
		t.Fatalf("expected title-cased type/status in label, got: %s", out)
	}
}

func TestGenerateMermaidLabelTitleCasesTypeAndStatus(t *testing.T) {
	ids := map[string]bool{"j-a1b2": true}
	tickets := map[string]TicketMeta{
		"j-a1b2": {ID: "j-a1b2", Title: "Test Ticket", Type: model.TypeFeature, Status: model.StatusNew},
	}
	out := GenerateMermaid(ids, nil, tickets)
	if !strings.Contains(out, "Feature New") {
		t.Fatalf("expected title-cased type/status in label, got: %s", out)
	}
}

func TestGenerateDOTLabelTruncatesLongTitles(t *testing.T) {
	ids := map[string]bool{"j-a1b2": true}
	longTitle := strings.Repeat("x", 50)
	tickets := map[string]TicketMeta{"j-a1b2": {ID: "j-a1b2", Title: longTitle}}
	out := GenerateDOT(ids, nil, tickets)
	if strings.Contains(out, longTitle) {
		t.Fatalf("expected long title to be truncated, got: %s", out)
	}
	if !strings.Contains(out, "…") {
		t.Fatalf("expected ellipsis in truncated title, got: %s", out)
	}
}
