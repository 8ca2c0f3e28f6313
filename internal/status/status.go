// Package status implements the pure status engine (§4.7): the
// aggregate-status reduction, plan/phase status derivation, and the
// dependency-satisfaction predicate used by the "next up" surface.
// Nothing here touches disk — callers hand in the ticket-status lookup
// they already have (typically store.Store.GetTicket or a cache-backed
// map), which is what keeps this package trivially testable and
// reusable from both the CLI and the MCP surface.
package status

import "github.com/divmain/janus/internal/model"

// Aggregate reduces a list of ticket statuses to a single status per
// the six ordered rules:
//  1. empty list -> new
//  2. every entry complete -> complete
//  3. every entry cancelled -> cancelled
//  4. every entry in {complete, cancelled} (mixed) -> complete
//  5. every entry in {new, next} -> new
//  6. otherwise -> in_progress
func Aggregate(statuses []model.Status) model.Status {
	if len(statuses) == 0 {
		return model.StatusNew
	}

	allComplete := true
	allCancelled := true
	allTerminal := true
	allNotStarted := true
	for _, s := range statuses {
		if s != model.StatusComplete {
			allComplete = false
		}
		if s != model.StatusCancelled {
			allCancelled = false
		}
		if !s.IsTerminal() {
			allTerminal = false
		}
		if !s.IsNotStarted() {
			allNotStarted = false
		}
	}

	switch {
	case allComplete:
		return model.StatusComplete
	case allCancelled:
		return model.StatusCancelled
	case allTerminal:
		return model.StatusComplete
	case allNotStarted:
		return model.StatusNew
	default:
		return model.StatusInProgress
	}
}

// Lookup resolves a ticket id to its current status. It returns false
// for ids that are not found, matching store.Store.GetTicket's shape
// closely enough that callers can adapt one to the other with a
// one-line wrapper.
type Lookup func(id string) (model.Status, bool)

// Warn receives the id of a ticket referenced by a plan/phase but
// missing from the lookup, so the caller can log it. May be nil.
type Warn func(id string)

// PlanStatus computes the plan's aggregate status by resolving every
// ticket id returned by plan.AllTickets() (duplicates included, per
// the plan engine's raw reference-count semantics) against lookup.
// Missing tickets are skipped from the status reduction but still
// counted in the denominator, and reported to warn if non-nil.
func PlanStatus(plan model.Plan, lookup Lookup, warn Warn) model.PlanStatus {
	ids := plan.AllTickets()
	statuses, completed := resolveStatuses(ids, lookup, warn)
	return model.PlanStatus{
		Status:         Aggregate(statuses),
		CompletedCount: completed,
		TotalCount:     len(ids),
	}
}

// PhaseStatus computes a single phase's aggregate status the same way
// PlanStatus does, scoped to that phase's own ticket list.
func PhaseStatus(phase model.Phase, lookup Lookup, warn Warn) model.PhaseStatus {
	statuses, completed := resolveStatuses(phase.TicketIDs, lookup, warn)
	return model.PhaseStatus{
		Status:         Aggregate(statuses),
		CompletedCount: completed,
		TotalCount:     len(phase.TicketIDs),
	}
}

// AllPhaseStatuses computes PhaseStatus for every phase in the plan, in
// order.
func AllPhaseStatuses(plan model.Plan, lookup Lookup, warn Warn) []model.PhaseStatus {
	phases := plan.Phases()
	out := make([]model.PhaseStatus, 0, len(phases))
	for _, ph := range phases {
		out = append(out, PhaseStatus(*ph, lookup, warn))
	}
	return out
}

func resolveStatuses(ids []string, lookup Lookup, warn Warn) (statuses []model.Status, completed int) {
	for _, id := range ids {
		s, ok := lookup(id)
		if !ok {
			if warn != nil {
				warn(id)
			}
			continue
		}
		statuses = append(statuses, s)
		if s == model.StatusComplete {
			completed++
		}
	}
	return statuses, completed
}

// DependencySatisfied reports whether depID is satisfied: it must
// exist in lookup and be in a terminal state (complete or cancelled).
// An orphan dep — one with no entry in lookup — is never satisfied;
// this is the safe default, since a dependency that cannot be found
// cannot be verified as done.
func DependencySatisfied(depID string, lookup Lookup) bool {
	s, ok := lookup(depID)
	return ok && s.IsTerminal()
}

// AllDepsSatisfied reports whether every id in deps is satisfied per
// DependencySatisfied. A ticket with no deps is vacuously satisfied.
func AllDepsSatisfied(deps []string, lookup Lookup) bool {
	for _, d := range deps {
		if !DependencySatisfied(d, lookup) {
			return false
		}
	}
	return true
}

// HasUnsatisfiedDep reports whether at least one of deps is
// unsatisfied — the complement of AllDepsSatisfied, kept as its own
// function because call sites that only care about "is this ticket
// blocked" read more clearly against it than against a negation.
func HasUnsatisfiedDep(deps []string, lookup Lookup) bool {
	return !AllDepsSatisfied(deps, lookup)
}
