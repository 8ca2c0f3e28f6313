package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/divmain/janus/internal/janus"
	"github.com/divmain/janus/internal/model"
	"github.com/divmain/janus/internal/store"
)

// scanColumnIndexPattern matches database/sql's "Scan error on column
// index N[, name ...]" wrapper so a failing Scan can be reported with
// its actual column rather than a guess.
var scanColumnIndexPattern = regexp.MustCompile(`column index (\d+)`)

// columnIndex extracts the failing column index from a database/sql
// Scan error, or -1 if the error text doesn't carry one (e.g. the
// driver-level error Scan wraps didn't come through the standard
// "Scan error on column index N" wrapper).
func columnIndex(err error) int {
	m := scanColumnIndexPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return -1
	}
	n, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return -1
	}
	return n
}

// UpsertTicket writes or replaces a single ticket row.
func (c *Cache) UpsertTicket(t model.Ticket) error {
	deps, err := json.Marshal(t.Deps)
	if err != nil {
		return janus.NewCacheDataIntegrity("marshal deps for %s: %v", t.IDValue, err)
	}
	links, err := json.Marshal(t.Links)
	if err != nil {
		return janus.NewCacheDataIntegrity("marshal links for %s: %v", t.IDValue, err)
	}
	_, err = c.db.Exec(`
		INSERT INTO tickets (id, uuid, title, status, priority, ticket_type, body, parent, spawned_from, deps_json, links_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			uuid=excluded.uuid, title=excluded.title, status=excluded.status,
			priority=excluded.priority, ticket_type=excluded.ticket_type, body=excluded.body,
			parent=excluded.parent, spawned_from=excluded.spawned_from,
			deps_json=excluded.deps_json, links_json=excluded.links_json
	`, t.IDValue, t.UUID, t.Title, string(t.Status), int(t.Priority), string(t.Type),
		t.Description, nullable(t.Parent), nullable(t.SpawnedFrom), string(deps), string(links))
	return err
}

// DeleteTicket removes a ticket row. Missing ids are not an error.
func (c *Cache) DeleteTicket(id string) error {
	_, err := c.db.Exec(`DELETE FROM tickets WHERE id = ?`, id)
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type ticketRow struct {
	id, uuid, title, status, ticketType, body string
	priority                                  int
	parent, spawnedFrom                       sql.NullString
	depsJSON, linksJSON                       string
}

func scanTicketRow(scanner interface {
	Scan(dest ...any) error
}) (ticketRow, error) {
	var r ticketRow
	err := scanner.Scan(&r.id, &r.uuid, &r.title, &r.status, &r.priority, &r.ticketType,
		&r.body, &r.parent, &r.spawnedFrom, &r.depsJSON, &r.linksJSON)
	return r, err
}

func rowToTicket(r ticketRow) (model.Ticket, error) {
	if r.id == "" {
		return model.Ticket{}, janus.NewCacheDataIntegrity("ticket row missing required field 'id'")
	}
	if r.uuid == "" {
		return model.Ticket{}, janus.NewCacheDataIntegrity("ticket row %s missing required field 'uuid'", r.id)
	}
	status, err := model.ParseStatus(r.status)
	if err != nil {
		return model.Ticket{}, janus.NewCacheDataIntegrity("ticket row %s has invalid status %q: %v", r.id, r.status, err)
	}
	priority, err := model.ParsePriority(r.priority)
	if err != nil {
		return model.Ticket{}, janus.NewCacheDataIntegrity("ticket row %s has invalid priority %d: %v", r.id, r.priority, err)
	}
	ticketType, err := model.ParseTicketType(r.ticketType)
	if err != nil {
		return model.Ticket{}, janus.NewCacheDataIntegrity("ticket row %s has invalid type: %v", r.id, err)
	}
	var deps, links []string
	if err := json.Unmarshal([]byte(r.depsJSON), &deps); err != nil {
		return model.Ticket{}, janus.NewCacheDataIntegrity("ticket row %s has malformed deps_json: %v", r.id, err)
	}
	if err := json.Unmarshal([]byte(r.linksJSON), &links); err != nil {
		return model.Ticket{}, janus.NewCacheDataIntegrity("ticket row %s has malformed links_json: %v", r.id, err)
	}
	return model.Ticket{
		IDValue:     r.id,
		UUID:        r.uuid,
		Title:       r.title,
		Status:      status,
		Priority:    priority,
		Type:        ticketType,
		Description: r.body,
		Parent:      r.parent.String,
		SpawnedFrom: r.spawnedFrom.String,
		Deps:        deps,
		Links:       links,
	}, nil
}

const ticketColumns = `id, uuid, title, status, priority, ticket_type, body, parent, spawned_from, deps_json, links_json`

// GetAllTickets returns every cached ticket.
func (c *Cache) GetAllTickets() ([]model.Ticket, error) {
	rows, err := c.db.Query(`SELECT ` + ticketColumns + ` FROM tickets ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Ticket
	for rows.Next() {
		r, err := scanTicketRow(rows)
		if err != nil {
			return nil, janus.NewCacheColumnError(columnIndex(err), err)
		}
		t, err := rowToTicket(r)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetTicket returns the cached ticket for id, or (Ticket{}, false, nil)
// if absent.
func (c *Cache) GetTicket(id string) (model.Ticket, bool, error) {
	row := c.db.QueryRow(`SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, id)
	r, err := scanTicketRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Ticket{}, false, nil
	}
	if err != nil {
		return model.Ticket{}, false, janus.NewCacheColumnError(columnIndex(err), err)
	}
	t, err := rowToTicket(r)
	if err != nil {
		return model.Ticket{}, false, err
	}
	return t, true, nil
}

// FindByPartialID returns every ticket whose id contains prefix as a
// substring (case-sensitive, matching the graph engine's resolution
// rule for consistency).
func (c *Cache) FindByPartialID(prefix string) ([]model.Ticket, error) {
	rows, err := c.db.Query(`SELECT `+ticketColumns+` FROM tickets WHERE instr(id, ?) > 0 ORDER BY id`,
		prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Ticket
	for rows.Next() {
		r, err := scanTicketRow(rows)
		if err != nil {
			return nil, janus.NewCacheColumnError(columnIndex(err), err)
		}
		t, err := rowToTicket(r)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// BuildTicketMap returns every cached ticket keyed by id.
func (c *Cache) BuildTicketMap() (map[string]model.Ticket, error) {
	all, err := c.GetAllTickets()
	if err != nil {
		return nil, err
	}
	m := make(map[string]model.Ticket, len(all))
	for _, t := range all {
		m[t.IDValue] = t
	}
	return m, nil
}

// GetChildrenCount counts tickets spawned from id.
func (c *Cache) GetChildrenCount(id string) (int, error) {
	var n int
	err := c.db.QueryRow(`SELECT COUNT(*) FROM tickets WHERE spawned_from = ?`, id).Scan(&n)
	return n, err
}

// SearchTickets parses a leading or embedded `p[0-4]` priority
// shorthand out of query as an exact priority filter, strips it from
// the remaining text, and does a substring LIKE against
// ticket_id OR title OR body OR ticket_type with backslash-escaping of
// the SQL LIKE metacharacters. An empty query (after stripping any
// shorthand) matches every ticket.
func (c *Cache) SearchTickets(query string) ([]model.Ticket, error) {
	priority, remainder, hasPriority := extractPriorityShorthand(query)
	remainder = strings.TrimSpace(remainder)

	var rows *sql.Rows
	var err error
	switch {
	case hasPriority && remainder == "":
		rows, err = c.db.Query(`SELECT `+ticketColumns+` FROM tickets WHERE priority = ? ORDER BY id`, int(priority))
	case hasPriority:
		like := likeContains(remainder)
		rows, err = c.db.Query(`SELECT `+ticketColumns+` FROM tickets
			WHERE priority = ? AND (id LIKE ? ESCAPE '\' OR title LIKE ? ESCAPE '\' OR body LIKE ? ESCAPE '\' OR ticket_type LIKE ? ESCAPE '\')
			ORDER BY id`, int(priority), like, like, like, like)
	case remainder == "":
		rows, err = c.db.Query(`SELECT ` + ticketColumns + ` FROM tickets ORDER BY id`)
	default:
		like := likeContains(remainder)
		rows, err = c.db.Query(`SELECT `+ticketColumns+` FROM tickets
			WHERE id LIKE ? ESCAPE '\' OR title LIKE ? ESCAPE '\' OR body LIKE ? ESCAPE '\' OR ticket_type LIKE ? ESCAPE '\'
			ORDER BY id`, like, like, like, like)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Ticket
	for rows.Next() {
		r, err := scanTicketRow(rows)
		if err != nil {
			return nil, janus.NewCacheColumnError(columnIndex(err), err)
		}
		t, err := rowToTicket(r)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// extractPriorityShorthand looks for a `p[0-4]` token (case-insensitive)
// anywhere in query, returning the parsed priority, the query with that
// token removed, and whether one was found.
func extractPriorityShorthand(query string) (model.Priority, string, bool) {
	lower := strings.ToLower(query)
	for i := 0; i < len(lower)-1; i++ {
		if lower[i] != 'p' {
			continue
		}
		if lower[i+1] < '0' || lower[i+1] > '4' {
			continue
		}
		// must be a standalone token: not preceded/followed by another
		// alphanumeric character.
		if i > 0 && isAlnum(lower[i-1]) {
			continue
		}
		if i+2 < len(lower) && isAlnum(lower[i+2]) {
			continue
		}
		priority := model.Priority(lower[i+1] - '0')
		remainder := query[:i] + query[i+2:]
		return priority, remainder, true
	}
	return 0, query, false
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// likeContains escapes %, _ and \ in s for backslash-escaped SQL LIKE,
// then wraps it in % wildcards for a substring match.
func likeContains(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// cachedSection is the JSON projection of a model.PlanSection stored in
// the plans table's sections_json column — just enough to answer
// status/progress and ticket-membership queries without re-parsing the
// plan's markdown file.
type cachedSection struct {
	Kind      string   `json:"kind"`
	PhaseNum  string   `json:"phase_num,omitempty"`
	PhaseName string   `json:"phase_name,omitempty"`
	TicketIDs []string `json:"ticket_ids,omitempty"`
}

func planStructureType(p model.Plan) string {
	switch {
	case p.IsPhased():
		return "phased"
	case p.IsSimple():
		return "simple"
	default:
		return "empty"
	}
}

func planSectionsJSON(p model.Plan) (string, error) {
	sections := make([]cachedSection, 0, len(p.Sections))
	for _, s := range p.Sections {
		switch s.Kind {
		case model.SectionPhase:
			sections = append(sections, cachedSection{
				Kind:      "phase",
				PhaseNum:  s.Phase.Number,
				PhaseName: s.Phase.Name,
				TicketIDs: s.Phase.TicketIDs,
			})
		case model.SectionTickets:
			sections = append(sections, cachedSection{Kind: "tickets", TicketIDs: s.TicketIDs})
		case model.SectionFreeForm:
			sections = append(sections, cachedSection{Kind: "freeform"})
		}
	}
	b, err := json.Marshal(sections)
	return string(b), err
}

// UpsertPlan writes or replaces a single plan row.
func (c *Cache) UpsertPlan(p model.Plan) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := upsertPlanTx(tx, p); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertPlanTx(tx *sql.Tx, p model.Plan) error {
	sectionsJSON, err := planSectionsJSON(p)
	if err != nil {
		return janus.NewCacheDataIntegrity("marshal sections for %s: %v", p.IDValue, err)
	}
	_, err = tx.Exec(`
		INSERT INTO plans (id, uuid, title, structure_type, sections_json)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			uuid=excluded.uuid, title=excluded.title,
			structure_type=excluded.structure_type, sections_json=excluded.sections_json
	`, p.IDValue, p.UUID, p.Title, planStructureType(p), sectionsJSON)
	return err
}

// DeletePlan removes a plan row. Missing ids are not an error.
func (c *Cache) DeletePlan(id string) error {
	_, err := c.db.Exec(`DELETE FROM plans WHERE id = ?`, id)
	return err
}

// RebuildFromStore drops and reinserts every row from a live store
// snapshot, used by the explicit "cache rebuild" surface and by
// recovery after the cache file is found missing or corrupt.
func (c *Cache) RebuildFromStore(s *store.Store) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tickets`); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM plans`); err != nil {
		return err
	}

	for _, t := range s.AllTickets() {
		deps, _ := json.Marshal(t.Deps)
		links, _ := json.Marshal(t.Links)
		if _, err := tx.Exec(`INSERT INTO tickets (id, uuid, title, status, priority, ticket_type, body, parent, spawned_from, deps_json, links_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.IDValue, t.UUID, t.Title, string(t.Status), int(t.Priority), string(t.Type),
			t.Description, nullable(t.Parent), nullable(t.SpawnedFrom), string(deps), string(links)); err != nil {
			return err
		}
	}

	for _, p := range s.AllPlans() {
		if err := upsertPlanTx(tx, p); err != nil {
			return err
		}
	}

	return tx.Commit()
}
