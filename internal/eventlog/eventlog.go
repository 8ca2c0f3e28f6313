// Package eventlog implements the append-only mutation log (§4.6): a
// newline-delimited JSON file at <root>/events.ndjson. Every write-path
// mutation appends one record; logging is a secondary concern, so
// append failures are logged and swallowed rather than propagated to
// the caller.
package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/divmain/janus/internal/janus"
	"github.com/divmain/janus/internal/repo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// summaryCaser title-cases the snake_case EventType token for
// human-readable display (e.g. "status_changed" -> "Status Changed"),
// normalising the wire payload's terse vocabulary into the form the
// CLI/TUI surfaces print.
var summaryCaser = cases.Title(language.Und)

// EventType enumerates every recognised mutation kind, snake_case on
// the wire.
type EventType string

const (
	TicketCreated         EventType = "ticket_created"
	StatusChanged         EventType = "status_changed"
	NoteAdded             EventType = "note_added"
	FieldUpdated          EventType = "field_updated"
	DependencyAdded       EventType = "dependency_added"
	DependencyRemoved     EventType = "dependency_removed"
	LinkAdded             EventType = "link_added"
	LinkRemoved           EventType = "link_removed"
	PlanCreated           EventType = "plan_created"
	TicketAddedToPlan     EventType = "ticket_added_to_plan"
	TicketRemovedFromPlan EventType = "ticket_removed_from_plan"
	PhaseAdded            EventType = "phase_added"
	PhaseRemoved          EventType = "phase_removed"
	TicketMoved           EventType = "ticket_moved"
	CacheRebuilt          EventType = "cache_rebuilt"
)

// Actor identifies who triggered an event, lowercase on the wire.
type Actor string

const (
	ActorCLI  Actor = "cli"
	ActorMCP  Actor = "mcp"
	ActorHook Actor = "hook"
)

// Event is a single mutation record. Timestamp is filled in by New if
// left zero.
type Event struct {
	Timestamp  string           `json:"timestamp"`
	EventType  EventType        `json:"event_type"`
	EntityType janus.EntityType `json:"entity_type"`
	EntityID   string           `json:"entity_id"`
	Actor      Actor            `json:"actor"`
	Data       json.RawMessage  `json:"data"`
}

// New builds an Event stamped with the current time and ActorCLI as
// the default actor.
func New(eventType EventType, entityType janus.EntityType, entityID string, data any) Event {
	raw, err := json.Marshal(data)
	if err != nil {
		raw = json.RawMessage("{}")
	}
	return Event{
		Timestamp:  isoTimestampMillis(),
		EventType:  eventType,
		EntityType: entityType,
		EntityID:   entityID,
		Actor:      ActorCLI,
		Data:       raw,
	}
}

// WithActor returns a copy of e with Actor set.
func (e Event) WithActor(a Actor) Event {
	e.Actor = a
	return e
}

// Summary renders a short human-readable line for the event, used by
// the CLI/TUI history views: the snake_case EventType is title-cased
// rather than printed as its raw wire token.
func (e Event) Summary() string {
	readable := summaryCaser.String(strings.ReplaceAll(string(e.EventType), "_", " "))
	return fmt.Sprintf("%s  %-24s %s (%s)", e.Timestamp, readable, e.EntityID, e.Actor)
}

func isoTimestampMillis() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

// Log appends event to <root>/events.ndjson, creating the file and its
// parent directory if needed. Failures are logged through log and
// swallowed: event logging must never abort the write path it is
// observing.
func Log(log *slog.Logger, event Event) {
	if err := appendEvent(event); err != nil {
		if log == nil {
			log = slog.Default()
		}
		log.Warn("failed to log event", "event_type", event.EventType, "err", err)
	}
}

func appendEvent(event Event) error {
	path := repo.EventsPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create events directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open events file: %w", err)
	}
	defer f.Close()

	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	line = append(line, '\n')

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return f.Sync()
}

// ReadAll reads every event from <root>/events.ndjson in file order
// (oldest first). Malformed lines are skipped with a warning rather
// than aborting the read. A missing file yields an empty slice, not an
// error.
func ReadAll(log *slog.Logger) ([]Event, error) {
	if log == nil {
		log = slog.Default()
	}
	path := repo.EventsPath()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open events file: %w", err)
	}
	defer f.Close()

	var out []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e Event
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			log.Warn("skipping malformed event line", "line", lineNum, "err", err)
			continue
		}
		out = append(out, e)
	}
	if err := scanner.Err(); err != nil {
		return out, fmt.Errorf("scan events file: %w", err)
	}
	return out, nil
}

// Clear removes the events log file, if present.
func Clear() error {
	path := repo.EventsPath()
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
