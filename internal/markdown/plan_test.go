package markdown

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/divmain/janus/internal/model"
)

const samplePlan = `---
id: plan-c3d4
uuid: 22222222-2222-4222-8222-222222222222
created: 2024-01-15T10:30:00Z
---
# Sample plan

Overview text for the plan.

## Phase 1: Foundations
Lay the groundwork.

### Success Criteria
- builds cleanly
- tests pass

### Tickets
- t1 some description of t1
- t2

## Phase 2a: Follow-up
### Tickets
- t3

## Notes
Free-form content that round-trips.
`

func TestParsePlanStructure(t *testing.T) {
	plan, err := ParsePlan([]byte(samplePlan))
	if err != nil {
		t.Fatalf("ParsePlan: %v", err)
	}
	if plan.IDValue != "plan-c3d4" {
		t.Errorf("id = %q", plan.IDValue)
	}
	if !plan.IsPhased() {
		t.Fatal("expected phased plan")
	}
	phases := plan.Phases()
	if len(phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(phases))
	}
	if phases[0].Number != "1" || phases[0].Name != "Foundations" {
		t.Errorf("phase 0 = %+v", phases[0])
	}
	if phases[1].Number != "2a" {
		t.Errorf("phase 1 number = %q", phases[1].Number)
	}
	if len(phases[0].SuccessCriteria) != 2 {
		t.Errorf("success criteria = %v", phases[0].SuccessCriteria)
	}
	if len(phases[0].TicketIDs) != 2 || phases[0].TicketIDs[0] != "t1" {
		t.Errorf("phase 0 ticket ids = %v", phases[0].TicketIDs)
	}
}

func TestPlanAllTicketsCountsDuplicates(t *testing.T) {
	plan := &model.Plan{
		Sections: []model.PlanSection{
			{Kind: model.SectionPhase, Phase: &model.Phase{TicketIDs: []string{"t1", "t2"}}},
			{Kind: model.SectionPhase, Phase: &model.Phase{TicketIDs: []string{"t1"}}},
		},
	}
	all := plan.AllTickets()
	if len(all) != 3 {
		t.Fatalf("expected 3 raw entries (t1 counted twice), got %d: %v", len(all), all)
	}
}

func TestParsePlanRoundTrip(t *testing.T) {
	first, err := ParsePlan([]byte(samplePlan))
	if err != nil {
		t.Fatalf("first parse: %v", err)
	}
	serialised, err := SerialisePlan(first)
	if err != nil {
		t.Fatalf("serialise: %v", err)
	}
	second, err := ParsePlan(serialised)
	if err != nil {
		t.Fatalf("second parse: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("parse(serialise(parse(x))) != parse(x): %s", diff)
	}
}
