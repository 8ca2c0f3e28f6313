package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/divmain/janus/internal/janus"
	"github.com/divmain/janus/internal/model"
)

var phaseHeading = regexp.MustCompile(`(?i)^phase\s+([0-9]+[a-zA-Z]?)\s*:\s*(.*)$`)

// ticketListID captures the id of a single ticket-list item; the
// remainder of the line (a trailing description) is discarded for
// parsing but preserved in TicketsRaw for rendering.
var ticketListID = regexp.MustCompile(`^\s*(?:[-*+]|\d+\.)\s+([\w-]+)`)

// ParsePlan parses the raw bytes of a plan file into a *model.Plan.
func ParsePlan(raw []byte) (*model.Plan, error) {
	fm, body, err := splitFrontmatter(raw)
	if err != nil {
		return nil, err
	}
	p := &model.Plan{}
	if err := unmarshalFrontmatter(fm, p); err != nil {
		return nil, err
	}

	headings := splitHeadings(body)
	checkStructure("plan", body, headings)
	if len(headings) == 0 || headings[0].level != 1 {
		return nil, janus.NewParseError("", fmt.Errorf("plan body must start with an H1 title"))
	}
	p.Title = headings[0].title
	p.Overview = strings.TrimSpace(headings[0].content)

	i := 1
	for i < len(headings) {
		h := headings[i]
		if h.level != 2 {
			// Stray H3 with no enclosing phase: preserve as free-form.
			p.Sections = append(p.Sections, model.PlanSection{
				Kind:     model.SectionFreeForm,
				FreeForm: &model.FreeFormSection{Heading: h.title, Content: h.content},
			})
			i++
			continue
		}

		if strings.EqualFold(h.title, "tickets") {
			p.Sections = append(p.Sections, model.PlanSection{
				Kind:       model.SectionTickets,
				TicketIDs:  parseTicketListIDs(h.content),
				TicketsRaw: h.content,
			})
			i++
			continue
		}

		if m := phaseHeading.FindStringSubmatch(h.title); m != nil {
			phase := &model.Phase{
				Number:      m[1],
				Name:        strings.TrimSpace(m[2]),
				Description: strings.TrimSpace(h.content),
			}
			i++
			for i < len(headings) && headings[i].level == 3 {
				sub := headings[i]
				switch strings.ToLower(strings.TrimSpace(sub.title)) {
				case "success criteria":
					phase.SuccessCriteria = parseListItems(sub.content)
				case "tickets":
					phase.TicketIDs = parseTicketListIDs(sub.content)
					phase.TicketsRaw = sub.content
				}
				i++
			}
			p.Sections = append(p.Sections, model.PlanSection{Kind: model.SectionPhase, Phase: phase})
			continue
		}

		// Unknown H2: free-form, round-trips verbatim.
		p.Sections = append(p.Sections, model.PlanSection{
			Kind:     model.SectionFreeForm,
			FreeForm: &model.FreeFormSection{Heading: h.title, Content: h.content},
		})
		i++
	}

	return p, nil
}

func parseTicketListIDs(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		if m := ticketListID.FindStringSubmatch(line); m != nil {
			out = append(out, m[1])
		}
	}
	return out
}

// SerialisePlan regenerates a plan file from a *model.Plan, re-emitting
// free-form sections and ticket lists in their original position and
// preserving any TicketsRaw content verbatim.
func SerialisePlan(p *model.Plan) ([]byte, error) {
	fm, err := marshalFrontmatter(p)
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
	fmt.Fprintf(&b, "# %s\n", p.Title)
	if p.Overview != "" {
		fmt.Fprintf(&b, "%s\n", p.Overview)
	}

	for _, s := range p.Sections {
		switch s.Kind {
		case model.SectionTickets:
			b.WriteString("\n## Tickets\n")
			writeTicketsBlock(&b, s.TicketsRaw, s.TicketIDs)
		case model.SectionPhase:
			ph := s.Phase
			fmt.Fprintf(&b, "\n## Phase %s: %s\n", ph.Number, ph.Name)
			if ph.Description != "" {
				fmt.Fprintf(&b, "%s\n", ph.Description)
			}
			if len(ph.SuccessCriteria) > 0 {
				b.WriteString("\n### Success Criteria\n")
				for _, c := range ph.SuccessCriteria {
					fmt.Fprintf(&b, "- %s\n", c)
				}
			}
			if len(ph.TicketIDs) > 0 || ph.TicketsRaw != "" {
				b.WriteString("\n### Tickets\n")
				writeTicketsBlock(&b, ph.TicketsRaw, ph.TicketIDs)
			}
		case model.SectionFreeForm:
			fmt.Fprintf(&b, "\n## %s\n%s\n", s.FreeForm.Heading, s.FreeForm.Content)
		}
	}

	return []byte(b.String()), nil
}

func writeTicketsBlock(b *strings.Builder, raw string, ids []string) {
	if raw != "" {
		fmt.Fprintf(b, "%s\n", raw)
		return
	}
	for _, id := range ids {
		fmt.Fprintf(b, "- %s\n", id)
	}
}
