package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/divmain/janus/internal/janus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// labelCaser title-cases the underscore-separated ticket type/status
// tokens (e.g. "in_progress") into display labels (e.g. "In Progress")
// for graph node rendering.
var labelCaser = cases.Title(language.Und)

func titleCaseLabel(s string) string {
	if s == "" {
		return ""
	}
	return labelCaser.String(strings.ReplaceAll(s, "_", " "))
}

// GenerateDOT renders ids and edges as a Graphviz DOT digraph. Node
// and edge order is sorted for stable output across runs.
func GenerateDOT(ids map[string]bool, edges []Edge, tickets map[string]TicketMeta) string {
	var b strings.Builder
	b.WriteString("digraph janus {\n")
	b.WriteString("  rankdir=TB;\n")
	b.WriteString("  node [shape=box];\n")
	b.WriteString("\n")

	sorted := sortedKeys(ids)
	b.WriteString("  // Nodes\n")
	for _, id := range sorted {
		title, kind := "", ""
		if t, ok := tickets[id]; ok {
			title = janus.TruncateString(t.Title, 30)
			kind = strings.TrimSpace(titleCaseLabel(string(t.Type)) + " " + titleCaseLabel(string(t.Status)))
		}
		label := fmt.Sprintf("%s\\n%s", escapeDOT(id), escapeDOT(title))
		if kind != "" {
			label = fmt.Sprintf("%s\\n%s", label, escapeDOT(kind))
		}
		fmt.Fprintf(&b, "  \"%s\" [label=\"%s\"];\n", id, label)
	}

	if len(edges) > 0 {
		b.WriteString("\n  // Edges\n")
		sortedEdges := sortEdges(edges)
		for _, e := range sortedEdges {
			switch e.Type {
			case EdgeBlocks:
				fmt.Fprintf(&b, "  %q -> %q [label=\"blocks\"];\n", e.From, e.To)
			case EdgeSpawned:
				fmt.Fprintf(&b, "  %q -> %q [style=dashed, label=\"spawned\"];\n", e.From, e.To)
			}
		}
	}

	b.WriteString("}")
	return b.String()
}

// GenerateMermaid renders ids and edges as a Mermaid flowchart
// (graph TD). Node and edge order is sorted for stable output.
func GenerateMermaid(ids map[string]bool, edges []Edge, tickets map[string]TicketMeta) string {
	var lines []string
	lines = append(lines, "graph TD")

	sorted := sortedKeys(ids)
	for _, id := range sorted {
		title, kind := "", ""
		if t, ok := tickets[id]; ok {
			title = janus.TruncateString(t.Title, 30)
			kind = strings.TrimSpace(titleCaseLabel(string(t.Type)) + " " + titleCaseLabel(string(t.Status)))
		}
		safeID := mermaidSafeID(id)
		label := fmt.Sprintf("%s<br/>%s", escapeMermaid(id), escapeMermaid(title))
		if kind != "" {
			label = fmt.Sprintf("%s<br/>%s", label, escapeMermaid(kind))
		}
		lines = append(lines, fmt.Sprintf("  %s[\"%s\"]", safeID, label))
	}

	if len(edges) > 0 {
		lines = append(lines, "")
		for _, e := range sortEdges(edges) {
			from, to := mermaidSafeID(e.From), mermaidSafeID(e.To)
			switch e.Type {
			case EdgeBlocks:
				lines = append(lines, fmt.Sprintf("  %s -->|blocks| %s", from, to))
			case EdgeSpawned:
				lines = append(lines, fmt.Sprintf("  %s -.->|spawned| %s", from, to))
			}
		}
	}

	return strings.Join(lines, "\n")
}

func sortedKeys(ids map[string]bool) []string {
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func sortEdges(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

func mermaidSafeID(id string) string {
	return strings.ReplaceAll(id, "-", "_")
}

func escapeDOT(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return r.Replace(s)
}

func escapeMermaid(s string) string {
	r := strings.NewReplacer(`"`, "&quot;", "<", "&lt;", ">", "&gt;", "\n", "<br/>")
	return r.Replace(s)
}
