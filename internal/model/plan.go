package model

import (
	"fmt"
	"time"
)

// Plan is an ordered collection of tickets and/or phases backed by a
// single markdown file under <root>/plans/.
type Plan struct {
	IDValue  string    `yaml:"id"`
	UUID     string    `yaml:"uuid"`
	Title    string    `yaml:"-"`
	Created  time.Time `yaml:"created"`
	// Overview is the free text between the H1 title and the first H2
	// section, preserved verbatim for round-trip (plans have no other
	// defined use for it).
	Overview      string        `yaml:"-"`
	Sections      []PlanSection `yaml:"-"`
	FilePathValue string        `yaml:"-"`
}

// ID implements janus.Item.
func (p *Plan) ID() string { return p.IDValue }

// FilePath implements janus.Item.
func (p *Plan) FilePath() string { return p.FilePathValue }

// SetID implements janus.Item.
func (p *Plan) SetID(id string) { p.IDValue = id }

// SetFilePath implements janus.Item.
func (p *Plan) SetFilePath(path string) { p.FilePathValue = path }

// SectionKind discriminates the variants of PlanSection.
type SectionKind int

const (
	SectionPhase SectionKind = iota
	SectionTickets
	SectionFreeForm
)

// PlanSection is a tagged union: exactly one of Phase, TicketIDs or
// FreeForm is meaningful, selected by Kind.
type PlanSection struct {
	Kind SectionKind
	Phase *Phase
	// TicketIDs is the parsed view (ids only) of a top-level Tickets
	// section, used by the status and graph engines.
	TicketIDs []string
	// TicketsRaw is the verbatim list block, including any trailing
	// per-item description text, preserved for exact round-trip on
	// serialise. Empty when the section was built programmatically
	// rather than parsed from disk.
	TicketsRaw string
	FreeForm   *FreeFormSection // SectionFreeForm
}

// Phase is a named, numbered subgroup of tickets within a phased plan.
type Phase struct {
	Number          string // "1", "2a", "10", ...
	Name            string
	Description     string
	SuccessCriteria []string
	TicketIDs       []string
	// TicketsRaw mirrors PlanSection.TicketsRaw for a phase's nested
	// Tickets list.
	TicketsRaw string
}

// IsPhased reports whether any section of the plan is a Phase.
func (p *Plan) IsPhased() bool {
	for _, s := range p.Sections {
		if s.Kind == SectionPhase {
			return true
		}
	}
	return false
}

// IsSimple reports whether the plan has a top-level Tickets section and
// no Phase.
func (p *Plan) IsSimple() bool {
	hasTickets := false
	for _, s := range p.Sections {
		if s.Kind == SectionPhase {
			return false
		}
		if s.Kind == SectionTickets {
			hasTickets = true
		}
	}
	return hasTickets
}

// Phases returns every Phase section in order.
func (p *Plan) Phases() []*Phase {
	var out []*Phase
	for i := range p.Sections {
		if p.Sections[i].Kind == SectionPhase {
			out = append(out, p.Sections[i].Phase)
		}
	}
	return out
}

// AllTickets returns every ticket id referenced anywhere in the plan —
// across phases for a phased plan, or the single list for a simple
// plan. A ticket referenced by two phases appears twice: this mirrors
// the reference implementation's raw, undeduplicated list-entry count
// (see DESIGN.md, Open Question #1).
func (p *Plan) AllTickets() []string {
	var out []string
	for _, s := range p.Sections {
		switch s.Kind {
		case SectionPhase:
			out = append(out, s.Phase.TicketIDs...)
		case SectionTickets:
			out = append(out, s.TicketIDs...)
		}
	}
	return out
}

// FindPhaseByNumber returns the phase with the given number, or nil.
func (p *Plan) FindPhaseByNumber(number string) *Phase {
	for _, ph := range p.Phases() {
		if ph.Number == number {
			return ph
		}
	}
	return nil
}

// PlanStatus is the derived aggregate status of a whole plan, with its
// progress counters. It is never stored — only computed on demand by
// the status engine.
type PlanStatus struct {
	Status         Status
	CompletedCount int
	TotalCount     int
}

// ProgressString renders "completed/total (pct%)", e.g. "5/12 (41%)".
func (s PlanStatus) ProgressString() string {
	pct := 0
	if s.TotalCount > 0 {
		pct = s.CompletedCount * 100 / s.TotalCount
	}
	return formatProgress(s.CompletedCount, s.TotalCount, true, pct)
}

// PhaseStatus mirrors PlanStatus but for a single phase. Its
// ProgressString deliberately omits the percentage — an asymmetry
// preserved from the reference implementation (see SPEC_FULL.md).
type PhaseStatus struct {
	Status         Status
	CompletedCount int
	TotalCount     int
}

// ProgressString renders "completed/total" with no percentage.
func (s PhaseStatus) ProgressString() string {
	return formatProgress(s.CompletedCount, s.TotalCount, false, 0)
}

func formatProgress(completed, total int, withPct bool, pct int) string {
	if withPct {
		return fmt.Sprintf("%d/%d (%d%%)", completed, total, pct)
	}
	return fmt.Sprintf("%d/%d", completed, total)
}
