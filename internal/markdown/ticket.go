package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/divmain/janus/internal/janus"
	"github.com/divmain/janus/internal/model"
)

// recognised H2 headings for tickets, case-insensitive, with aliases.
var ticketSectionAliases = map[string]string{
	"description":          "description",
	"acceptance criteria":  "acceptance criteria",
	"acceptance criterion": "acceptance criteria",
	"notes":                "notes",
	"completion summary":   "completion summary",
}

var listItemText = regexp.MustCompile(`^\s*(?:[-*+]|\d+\.)\s+(.*)$`)

// ParseTicket parses the raw bytes of a ticket file into a *model.Ticket.
// The frontmatter id field is parsed as given; callers are responsible
// for applying the filename-is-authoritative rule
// (model.EnforceFilenameAuthority),
// since this function has no knowledge of the file's name.
func ParseTicket(raw []byte) (*model.Ticket, error) {
	fm, body, err := splitFrontmatter(raw)
	if err != nil {
		return nil, err
	}
	t := &model.Ticket{}
	if err := unmarshalFrontmatter(fm, t); err != nil {
		return nil, err
	}

	headings := splitHeadings(body)
	checkStructure("ticket", body, headings)
	if len(headings) == 0 || headings[0].level != 1 {
		return nil, janus.NewParseError("", fmt.Errorf("ticket body must start with an H1 title"))
	}
	t.Title = headings[0].title
	t.Description = strings.TrimSpace(headings[0].content)

	for _, h := range headings[1:] {
		if h.level != 2 {
			// H3s are preserved as free-form sections of their own,
			// keyed by their heading text.
			t.FreeFormSections = append(t.FreeFormSections, model.FreeFormSection{
				Heading: h.title, Content: h.content,
			})
			continue
		}
		canon, known := ticketSectionAliases[strings.ToLower(h.title)]
		if !known {
			t.FreeFormSections = append(t.FreeFormSections, model.FreeFormSection{
				Heading: h.title, Content: h.content,
			})
			continue
		}
		switch canon {
		case "description":
			if strings.TrimSpace(t.Description) == "" {
				t.Description = strings.TrimSpace(h.content)
			}
		case "acceptance criteria":
			t.AcceptanceCriteria = parseListItems(h.content)
		case "notes":
			t.Notes = strings.TrimSpace(h.content)
		case "completion summary":
			t.CompletionSummary = strings.TrimSpace(h.content)
		}
	}

	return t, nil
}

func parseListItems(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		if m := listItemText.FindStringSubmatch(line); m != nil {
			out = append(out, strings.TrimSpace(m[1]))
		}
	}
	return out
}

// SerialiseTicket regenerates a ticket file from a *model.Ticket.
// Frontmatter keys are emitted in the fixed order defined by the yaml
// struct tags on model.Ticket; missing optional fields are omitted by
// yaml's `omitempty`. Free-form sections are re-emitted as H2 sections
// after all recognised sections, in their original relative order;
// their original position among the recognised sections is not
// preserved.
func SerialiseTicket(t *model.Ticket) ([]byte, error) {
	fm, err := marshalFrontmatter(t)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(fence)
	b.WriteString("\n")
	b.Write(fm)
	if !strings.HasSuffix(string(fm), "\n") {
		b.WriteString("\n")
	}
	b.WriteString(fence)
	b.WriteString("\n")
	fmt.Fprintf(&b, "# %s\n", t.Title)
	if t.Description != "" {
		fmt.Fprintf(&b, "%s\n", t.Description)
	}
	if len(t.AcceptanceCriteria) > 0 {
		b.WriteString("\n## Acceptance Criteria\n")
		for _, item := range t.AcceptanceCriteria {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	if t.Notes != "" {
		fmt.Fprintf(&b, "\n## Notes\n%s\n", t.Notes)
	}
	if t.CompletionSummary != "" {
		fmt.Fprintf(&b, "\n## Completion Summary\n%s\n", t.CompletionSummary)
	}
	for _, s := range t.FreeFormSections {
		level := "##"
		fmt.Fprintf(&b, "\n%s %s\n%s\n", level, s.Heading, s.Content)
	}
	return []byte(b.String()), nil
}
