// Package write is the single entry point for every core mutation:
// ticket and plan creation, status and field changes, dependency and
// link edits, and deletions. Every exported method follows the same
// shape the teacher's kanban/state.go uses for each of its own mutating
// methods (mutate, then persist under lock) generalised to the longer
// fan-out §5 requires: pre-hook, serialise, file, watcher notify,
// store, cache, event log, post-hook. A method either completes the
// whole sequence or fails before the file step runs — nothing here
// leaves a half-applied ticket on disk.
package write

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/divmain/janus/internal/cache"
	"github.com/divmain/janus/internal/eventlog"
	"github.com/divmain/janus/internal/graph"
	"github.com/divmain/janus/internal/hooks"
	"github.com/divmain/janus/internal/janus"
	"github.com/divmain/janus/internal/markdown"
	"github.com/divmain/janus/internal/model"
	"github.com/divmain/janus/internal/repo"
	"github.com/divmain/janus/internal/store"
	"github.com/divmain/janus/internal/watcher"
)

// defaultTicketPrefix is used by CreateTicket when the caller leaves
// Prefix blank.
const defaultTicketPrefix = "j"

// Writer fans every mutation out to the file, store, cache, event log,
// hooks and watcher-suppression collaborators in the order §5
// guarantees. Cache and Watcher are soft dependencies: both may be nil
// (no cache configured, no watcher running) and every method tolerates
// that.
type Writer struct {
	store   *store.Store
	cache   *cache.Cache
	watcher *watcher.Watcher
	hooks   *hooks.Runner
	log     *slog.Logger
}

// New builds a Writer. cache, w and h may be nil.
func New(s *store.Store, c *cache.Cache, w *watcher.Watcher, h *hooks.Runner, log *slog.Logger) *Writer {
	if log == nil {
		log = slog.Default()
	}
	if h == nil {
		h = hooks.New(hooks.Config{})
	}
	return &Writer{store: s, cache: c, watcher: w, hooks: h, log: log}
}

func ticketPath(id string) string { return filepath.Join(repo.ItemsDir(), id+".md") }
func planPath(id string) string   { return filepath.Join(repo.PlansDir(), id+".md") }

// --- hook plumbing ---

// runPre runs the pre-hook bound to eventType. A non-nil error is
// fatal to the caller per §7 ("pre-hooks are fatal").
func (w *Writer) runPre(ctx context.Context, eventType string, env []string) error {
	_, err := w.hooks.Run(ctx, hooks.Pre, eventType, env)
	return err
}

// runPost runs the post-hook bound to eventType. Failure is advisory:
// it is appended to hooks.log and otherwise swallowed.
func (w *Writer) runPost(ctx context.Context, eventType string, env []string) {
	if _, err := w.hooks.Run(ctx, hooks.Post, eventType, env); err != nil {
		if logErr := hooks.LogFailure(eventType, err); logErr != nil {
			w.log.Warn("failed to record post-hook failure", "event_type", eventType, "err", logErr)
		}
	}
}

func hookEnv(pairs ...string) []string {
	env := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		env = append(env, fmt.Sprintf("%s=%s", pairs[i], pairs[i+1]))
	}
	return env
}

// --- file/watcher plumbing ---

// putTicketFile serialises t, writes it to its path, and notifies the
// watcher so the fsnotify echo of this write is suppressed rather than
// reconciled a second time.
func (w *Writer) putTicketFile(t *model.Ticket) error {
	data, err := markdown.SerialiseTicket(t)
	if err != nil {
		return err
	}
	path := ticketPath(t.IDValue)
	if err := repo.Write(path, data); err != nil {
		return err
	}
	t.SetFilePath(path)
	if w.watcher != nil {
		w.watcher.NotifyWrite(path, data)
	}
	return nil
}

func (w *Writer) putPlanFile(p *model.Plan) error {
	data, err := markdown.SerialisePlan(p)
	if err != nil {
		return err
	}
	path := planPath(p.IDValue)
	if err := repo.Write(path, data); err != nil {
		return err
	}
	p.SetFilePath(path)
	if w.watcher != nil {
		w.watcher.NotifyWrite(path, data)
	}
	return nil
}

func (w *Writer) removeTicketFile(id string) error {
	path := ticketPath(id)
	if w.watcher != nil {
		w.watcher.NotifyRemoval(path)
	}
	return repo.Delete(path)
}

func (w *Writer) removePlanFile(id string) error {
	path := planPath(id)
	if w.watcher != nil {
		w.watcher.NotifyRemoval(path)
	}
	return repo.Delete(path)
}

// --- store/cache plumbing ---

func (w *Writer) persistTicket(t model.Ticket) {
	w.store.SetTicket(t)
	if w.cache != nil {
		if err := w.cache.UpsertTicket(t); err != nil {
			w.log.Warn("failed to update ticket cache row", "id", t.IDValue, "err", err)
		}
	}
}

func (w *Writer) persistPlan(p model.Plan) {
	w.store.SetPlan(p)
	if w.cache != nil {
		if err := w.cache.UpsertPlan(p); err != nil {
			w.log.Warn("failed to update plan cache row", "id", p.IDValue, "err", err)
		}
	}
}

func (w *Writer) forgetTicket(id string) {
	w.store.DeleteTicket(id)
	w.store.DeleteEmbedding(id)
	if w.cache != nil {
		if err := w.cache.DeleteTicket(id); err != nil {
			w.log.Warn("failed to delete ticket cache row", "id", id, "err", err)
		}
	}
}

func (w *Writer) forgetPlan(id string) {
	w.store.DeletePlan(id)
	if w.cache != nil {
		if err := w.cache.DeletePlan(id); err != nil {
			w.log.Warn("failed to delete plan cache row", "id", id, "err", err)
		}
	}
}

func (w *Writer) logEvent(eventType eventlog.EventType, entity janus.EntityType, id string, data any) {
	eventlog.Log(w.log, eventlog.New(eventType, entity, id, data))
}

// --- ticket graph helpers ---

func (w *Writer) ticketMetaMap() map[string]graph.TicketMeta {
	all := w.store.AllTickets()
	out := make(map[string]graph.TicketMeta, len(all))
	for _, t := range all {
		out[t.IDValue] = graph.TicketMeta{
			ID: t.IDValue, Title: t.Title, Type: t.Type, Status: t.Status,
			Deps: t.Deps, SpawnedFrom: t.SpawnedFrom,
		}
	}
	return out
}

func removeString(ss []string, s string) []string {
	out := ss[:0:0]
	for _, x := range ss {
		if x != s {
			out = append(out, x)
		}
	}
	return out
}

func containsString(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

// CreateTicketInput describes a new ticket. Prefix defaults to "j"
// when empty; Status defaults to new. Priority is used as given and has
// no default of its own: its zero value is P0, so a ticket created
// without an explicit Priority is P0.
type CreateTicketInput struct {
	Prefix             string
	Title              string
	Description        string
	AcceptanceCriteria []string
	Status             model.Status
	Priority           model.Priority
	Type               model.TicketType
	Deps               []string
	Links              []string
	Parent             string
	SpawnedFrom        string
	SpawnContext       string
	Depth              uint32
	Remote             string
	ExternalRef        string
}

// CreateTicket assigns a fresh id, runs the pre-hook, writes the
// ticket file, indexes it in the store and cache, appends a
// ticket_created event, and fires the (advisory) post-hook.
func (w *Writer) CreateTicket(ctx context.Context, in CreateTicketInput) (model.Ticket, error) {
	prefix := in.Prefix
	if prefix == "" {
		prefix = defaultTicketPrefix
	}
	if in.Title == "" {
		return model.Ticket{}, janus.NewValidationError("ticket title must not be empty")
	}
	status := in.Status
	if status == "" {
		status = model.StatusNew
	}
	if _, err := model.ParseStatus(string(status)); err != nil {
		return model.Ticket{}, err
	}
	typ := in.Type
	if typ == "" {
		typ = model.TypeTask
	}
	if _, err := model.ParseTicketType(string(typ)); err != nil {
		return model.Ticket{}, err
	}

	for _, dep := range in.Deps {
		if !w.store.TicketExists(dep) {
			return model.Ticket{}, janus.NewNotFound(dep)
		}
	}
	for _, linked := range in.Links {
		if !w.store.TicketExists(linked) {
			return model.Ticket{}, janus.NewNotFound(linked)
		}
	}

	id, err := model.GenerateTicketID(prefix, w.store.TicketExists)
	if err != nil {
		return model.Ticket{}, err
	}

	if err := w.runPre(ctx, string(eventlog.TicketCreated), hookEnv("JANUS_TICKET_ID", id)); err != nil {
		return model.Ticket{}, err
	}

	t := model.Ticket{
		IDValue:            id,
		UUID:               uuid.New().String(),
		Title:              in.Title,
		Status:             status,
		Priority:           in.Priority,
		Type:               typ,
		Deps:               in.Deps,
		Links:              in.Links,
		Parent:             in.Parent,
		SpawnedFrom:        in.SpawnedFrom,
		SpawnContext:       in.SpawnContext,
		Depth:              in.Depth,
		Created:            time.Now().UTC(),
		Description:        in.Description,
		AcceptanceCriteria: in.AcceptanceCriteria,
		Remote:             in.Remote,
		ExternalRef:        in.ExternalRef,
	}

	if err := w.putTicketFile(&t); err != nil {
		return model.Ticket{}, err
	}
	w.persistTicket(t)
	w.logEvent(eventlog.TicketCreated, janus.EntityTicket, id, map[string]any{"title": t.Title, "status": string(t.Status)})
	w.runPost(ctx, string(eventlog.TicketCreated), hookEnv("JANUS_TICKET_ID", id))

	return t, nil
}

// UpdateTicketStatus transitions id to status.
func (w *Writer) UpdateTicketStatus(ctx context.Context, id string, status model.Status) error {
	if _, err := model.ParseStatus(string(status)); err != nil {
		return err
	}
	t, ok := w.store.GetTicket(id)
	if !ok {
		return janus.NewNotFound(id)
	}
	from := t.Status
	if from == status {
		return nil
	}

	env := hookEnv("JANUS_TICKET_ID", id, "JANUS_FROM_STATUS", string(from), "JANUS_TO_STATUS", string(status))
	if err := w.runPre(ctx, string(eventlog.StatusChanged), env); err != nil {
		return err
	}

	t.Status = status
	if err := w.putTicketFile(&t); err != nil {
		return err
	}
	w.persistTicket(t)
	w.logEvent(eventlog.StatusChanged, janus.EntityTicket, id, map[string]any{"from": string(from), "to": string(status)})
	w.runPost(ctx, string(eventlog.StatusChanged), env)
	return nil
}

// AddNote appends text to id's Notes section.
func (w *Writer) AddNote(ctx context.Context, id, text string) error {
	t, ok := w.store.GetTicket(id)
	if !ok {
		return janus.NewNotFound(id)
	}
	env := hookEnv("JANUS_TICKET_ID", id)
	if err := w.runPre(ctx, string(eventlog.NoteAdded), env); err != nil {
		return err
	}

	if t.Notes == "" {
		t.Notes = text
	} else {
		t.Notes = t.Notes + "\n" + text
	}
	if err := w.putTicketFile(&t); err != nil {
		return err
	}
	w.persistTicket(t)
	w.logEvent(eventlog.NoteAdded, janus.EntityTicket, id, map[string]any{"text": text})
	w.runPost(ctx, string(eventlog.NoteAdded), env)
	return nil
}

// AddDependency records that id depends on dependsOn, after verifying
// both ids exist and that the edge does not close a cycle.
func (w *Writer) AddDependency(ctx context.Context, id, dependsOn string) error {
	t, ok := w.store.GetTicket(id)
	if !ok {
		return janus.NewNotFound(id)
	}
	if !w.store.TicketExists(dependsOn) {
		return janus.NewNotFound(dependsOn)
	}
	if containsString(t.Deps, dependsOn) {
		return nil
	}
	if err := graph.CheckCircularDependency(id, dependsOn, w.ticketMetaMap()); err != nil {
		return err
	}

	env := hookEnv("JANUS_TICKET_ID", id, "JANUS_DEPENDS_ON", dependsOn)
	if err := w.runPre(ctx, string(eventlog.DependencyAdded), env); err != nil {
		return err
	}

	t.Deps = append(append([]string{}, t.Deps...), dependsOn)
	if err := w.putTicketFile(&t); err != nil {
		return err
	}
	w.persistTicket(t)
	w.logEvent(eventlog.DependencyAdded, janus.EntityTicket, id, map[string]any{"depends_on": dependsOn})
	w.runPost(ctx, string(eventlog.DependencyAdded), env)
	return nil
}

// RemoveDependency undoes AddDependency.
func (w *Writer) RemoveDependency(ctx context.Context, id, dependsOn string) error {
	t, ok := w.store.GetTicket(id)
	if !ok {
		return janus.NewNotFound(id)
	}
	if !containsString(t.Deps, dependsOn) {
		return nil
	}

	env := hookEnv("JANUS_TICKET_ID", id, "JANUS_DEPENDS_ON", dependsOn)
	if err := w.runPre(ctx, string(eventlog.DependencyRemoved), env); err != nil {
		return err
	}

	t.Deps = removeString(t.Deps, dependsOn)
	if err := w.putTicketFile(&t); err != nil {
		return err
	}
	w.persistTicket(t)
	w.logEvent(eventlog.DependencyRemoved, janus.EntityTicket, id, map[string]any{"depends_on": dependsOn})
	w.runPost(ctx, string(eventlog.DependencyRemoved), env)
	return nil
}

// AddLink records a non-dependency cross-reference from id to linked.
func (w *Writer) AddLink(ctx context.Context, id, linked string) error {
	t, ok := w.store.GetTicket(id)
	if !ok {
		return janus.NewNotFound(id)
	}
	if !w.store.TicketExists(linked) {
		return janus.NewNotFound(linked)
	}
	if containsString(t.Links, linked) {
		return nil
	}

	env := hookEnv("JANUS_TICKET_ID", id, "JANUS_LINKED_ID", linked)
	if err := w.runPre(ctx, string(eventlog.LinkAdded), env); err != nil {
		return err
	}

	t.Links = append(append([]string{}, t.Links...), linked)
	if err := w.putTicketFile(&t); err != nil {
		return err
	}
	w.persistTicket(t)
	w.logEvent(eventlog.LinkAdded, janus.EntityTicket, id, map[string]any{"linked_id": linked})
	w.runPost(ctx, string(eventlog.LinkAdded), env)
	return nil
}

// RemoveLink undoes AddLink.
func (w *Writer) RemoveLink(ctx context.Context, id, linked string) error {
	t, ok := w.store.GetTicket(id)
	if !ok {
		return janus.NewNotFound(id)
	}
	if !containsString(t.Links, linked) {
		return nil
	}

	env := hookEnv("JANUS_TICKET_ID", id, "JANUS_LINKED_ID", linked)
	if err := w.runPre(ctx, string(eventlog.LinkRemoved), env); err != nil {
		return err
	}

	t.Links = removeString(t.Links, linked)
	if err := w.putTicketFile(&t); err != nil {
		return err
	}
	w.persistTicket(t)
	w.logEvent(eventlog.LinkRemoved, janus.EntityTicket, id, map[string]any{"linked_id": linked})
	w.runPost(ctx, string(eventlog.LinkRemoved), env)
	return nil
}

// DeleteTicket removes id's file, store entry, cache row and cached
// embedding. There is no corresponding event-log type in the teacher's
// event taxonomy for ticket deletion, so it is recorded as a
// field_updated event naming the deletion explicitly; see DESIGN.md.
func (w *Writer) DeleteTicket(ctx context.Context, id string) error {
	if !w.store.TicketExists(id) {
		return janus.NewNotFound(id)
	}
	env := hookEnv("JANUS_TICKET_ID", id)
	if err := w.runPre(ctx, "ticket_deleted", env); err != nil {
		return err
	}

	if err := w.removeTicketFile(id); err != nil {
		return err
	}
	w.forgetTicket(id)
	w.logEvent(eventlog.FieldUpdated, janus.EntityTicket, id, map[string]any{"deleted": true})
	w.runPost(ctx, "ticket_deleted", env)
	return nil
}

// CreatePlanInput describes a new plan.
type CreatePlanInput struct {
	Title    string
	Overview string
}

// CreatePlan assigns a fresh plan id, writes its file with an empty
// Tickets section, and indexes it.
func (w *Writer) CreatePlan(ctx context.Context, in CreatePlanInput) (model.Plan, error) {
	if in.Title == "" {
		return model.Plan{}, janus.NewValidationError("plan title must not be empty")
	}

	id, err := model.GeneratePlanID(w.store.PlanExists)
	if err != nil {
		return model.Plan{}, err
	}

	env := hookEnv("JANUS_PLAN_ID", id)
	if err := w.runPre(ctx, string(eventlog.PlanCreated), env); err != nil {
		return model.Plan{}, err
	}

	p := model.Plan{
		IDValue:  id,
		UUID:     uuid.New().String(),
		Title:    in.Title,
		Created:  time.Now().UTC(),
		Overview: in.Overview,
		Sections: []model.PlanSection{{Kind: model.SectionTickets}},
	}

	if err := w.putPlanFile(&p); err != nil {
		return model.Plan{}, err
	}
	w.persistPlan(p)
	w.logEvent(eventlog.PlanCreated, janus.EntityPlan, id, map[string]any{"title": p.Title})
	w.runPost(ctx, string(eventlog.PlanCreated), env)
	return p, nil
}

// AddTicketToPlan appends ticketID to planID's top-level Tickets
// section (the first one found, or a new one appended to the plan if
// it has none). Phases are never targeted: no method here adds a
// ticket to a phase.
func (w *Writer) AddTicketToPlan(ctx context.Context, planID, ticketID string) error {
	p, ok := w.store.GetPlan(planID)
	if !ok {
		return janus.NewNotFound(planID)
	}
	if !w.store.TicketExists(ticketID) {
		return janus.NewNotFound(ticketID)
	}

	idx := -1
	for i, s := range p.Sections {
		if s.Kind == model.SectionTickets {
			idx = i
			break
		}
	}
	if idx == -1 {
		p.Sections = append(p.Sections, model.PlanSection{Kind: model.SectionTickets})
		idx = len(p.Sections) - 1
	}
	if containsString(p.Sections[idx].TicketIDs, ticketID) {
		return nil
	}

	env := hookEnv("JANUS_PLAN_ID", planID, "JANUS_TICKET_ID", ticketID)
	if err := w.runPre(ctx, string(eventlog.TicketAddedToPlan), env); err != nil {
		return err
	}

	p.Sections[idx].TicketIDs = append(append([]string{}, p.Sections[idx].TicketIDs...), ticketID)
	p.Sections[idx].TicketsRaw = ""
	if err := w.putPlanFile(&p); err != nil {
		return err
	}
	w.persistPlan(p)
	w.logEvent(eventlog.TicketAddedToPlan, janus.EntityPlan, planID, map[string]any{"ticket_id": ticketID})
	w.runPost(ctx, string(eventlog.TicketAddedToPlan), env)
	return nil
}

// RemoveTicketFromPlan removes ticketID from every top-level Tickets
// section and every phase of planID.
func (w *Writer) RemoveTicketFromPlan(ctx context.Context, planID, ticketID string) error {
	p, ok := w.store.GetPlan(planID)
	if !ok {
		return janus.NewNotFound(planID)
	}

	found := false
	for i := range p.Sections {
		switch p.Sections[i].Kind {
		case model.SectionTickets:
			if containsString(p.Sections[i].TicketIDs, ticketID) {
				found = true
			}
		case model.SectionPhase:
			if containsString(p.Sections[i].Phase.TicketIDs, ticketID) {
				found = true
			}
		}
	}
	if !found {
		return nil
	}

	env := hookEnv("JANUS_PLAN_ID", planID, "JANUS_TICKET_ID", ticketID)
	if err := w.runPre(ctx, string(eventlog.TicketRemovedFromPlan), env); err != nil {
		return err
	}

	for i := range p.Sections {
		switch p.Sections[i].Kind {
		case model.SectionTickets:
			p.Sections[i].TicketIDs = removeString(p.Sections[i].TicketIDs, ticketID)
			p.Sections[i].TicketsRaw = ""
		case model.SectionPhase:
			p.Sections[i].Phase.TicketIDs = removeString(p.Sections[i].Phase.TicketIDs, ticketID)
			p.Sections[i].Phase.TicketsRaw = ""
		}
	}

	if err := w.putPlanFile(&p); err != nil {
		return err
	}
	w.persistPlan(p)
	w.logEvent(eventlog.TicketRemovedFromPlan, janus.EntityPlan, planID, map[string]any{"ticket_id": ticketID})
	w.runPost(ctx, string(eventlog.TicketRemovedFromPlan), env)
	return nil
}

// AddPhase appends a new, empty phase to planID.
func (w *Writer) AddPhase(ctx context.Context, planID, number, name, description string) error {
	p, ok := w.store.GetPlan(planID)
	if !ok {
		return janus.NewNotFound(planID)
	}
	if p.FindPhaseByNumber(number) != nil {
		return janus.NewValidationError("plan %q already has phase %q", planID, number)
	}

	env := hookEnv("JANUS_PLAN_ID", planID, "JANUS_PHASE_NUMBER", number)
	if err := w.runPre(ctx, string(eventlog.PhaseAdded), env); err != nil {
		return err
	}

	p.Sections = append(p.Sections, model.PlanSection{
		Kind:  model.SectionPhase,
		Phase: &model.Phase{Number: number, Name: name, Description: description},
	})
	if err := w.putPlanFile(&p); err != nil {
		return err
	}
	w.persistPlan(p)
	w.logEvent(eventlog.PhaseAdded, janus.EntityPlan, planID, map[string]any{"number": number, "name": name})
	w.runPost(ctx, string(eventlog.PhaseAdded), env)
	return nil
}

// RemovePhase removes the phase numbered number from planID.
func (w *Writer) RemovePhase(ctx context.Context, planID, number string) error {
	p, ok := w.store.GetPlan(planID)
	if !ok {
		return janus.NewNotFound(planID)
	}
	if p.FindPhaseByNumber(number) == nil {
		return janus.NewNotFound(number)
	}

	env := hookEnv("JANUS_PLAN_ID", planID, "JANUS_PHASE_NUMBER", number)
	if err := w.runPre(ctx, string(eventlog.PhaseRemoved), env); err != nil {
		return err
	}

	kept := p.Sections[:0:0]
	for _, s := range p.Sections {
		if s.Kind == model.SectionPhase && s.Phase.Number == number {
			continue
		}
		kept = append(kept, s)
	}
	p.Sections = kept

	if err := w.putPlanFile(&p); err != nil {
		return err
	}
	w.persistPlan(p)
	w.logEvent(eventlog.PhaseRemoved, janus.EntityPlan, planID, map[string]any{"number": number})
	w.runPost(ctx, string(eventlog.PhaseRemoved), env)
	return nil
}

// DeletePlan removes planID's file, store entry and cache row.
func (w *Writer) DeletePlan(ctx context.Context, planID string) error {
	if !w.store.PlanExists(planID) {
		return janus.NewNotFound(planID)
	}
	env := hookEnv("JANUS_PLAN_ID", planID)
	if err := w.runPre(ctx, "plan_deleted", env); err != nil {
		return err
	}

	if err := w.removePlanFile(planID); err != nil {
		return err
	}
	w.forgetPlan(planID)
	w.logEvent(eventlog.FieldUpdated, janus.EntityPlan, planID, map[string]any{"deleted": true})
	w.runPost(ctx, "plan_deleted", env)
	return nil
}

// MoveTicket reparents id under newParent, clearing its previous
// parent. Passing an empty newParent detaches id entirely.
func (w *Writer) MoveTicket(ctx context.Context, id, newParent string) error {
	t, ok := w.store.GetTicket(id)
	if !ok {
		return janus.NewNotFound(id)
	}
	if newParent != "" && !w.store.TicketExists(newParent) {
		return janus.NewNotFound(newParent)
	}
	if t.Parent == newParent {
		return nil
	}

	env := hookEnv("JANUS_TICKET_ID", id, "JANUS_NEW_PARENT", newParent)
	if err := w.runPre(ctx, string(eventlog.TicketMoved), env); err != nil {
		return err
	}

	from := t.Parent
	t.Parent = newParent
	if err := w.putTicketFile(&t); err != nil {
		return err
	}
	w.persistTicket(t)
	w.logEvent(eventlog.TicketMoved, janus.EntityTicket, id, map[string]any{"from_parent": from, "to_parent": newParent})
	w.runPost(ctx, string(eventlog.TicketMoved), env)
	return nil
}

// RebuildCache drops and repopulates the query cache from the store,
// then appends a cache_rebuilt event. A no-op, successfully, when no
// cache is configured.
func (w *Writer) RebuildCache(ctx context.Context) error {
	if w.cache == nil {
		return nil
	}
	if err := w.cache.RebuildFromStore(w.store); err != nil {
		return err
	}
	w.logEvent(eventlog.CacheRebuilt, janus.EntityTicket, "", map[string]any{
		"ticket_count": w.store.TicketCount(),
	})
	return nil
}
