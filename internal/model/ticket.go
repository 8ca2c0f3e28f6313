package model

import "time"

// Ticket is a unit of work backed by a single markdown file under
// <root>/items/. Field names mirror the frontmatter keys in the
// ticket file format one-to-one except FilePath, which is derived from
// disk location rather than stored.
type Ticket struct {
	IDValue      string     `yaml:"id"`
	UUID         string     `yaml:"uuid"`
	Title        string     `yaml:"-"`
	Status       Status     `yaml:"status"`
	Priority     Priority   `yaml:"priority"`
	Type         TicketType `yaml:"type"`
	Deps         []string   `yaml:"deps,omitempty"`
	Links        []string   `yaml:"links,omitempty"`
	Parent       string     `yaml:"parent,omitempty"`
	SpawnedFrom  string     `yaml:"spawned_from,omitempty"`
	SpawnContext string     `yaml:"spawn_context,omitempty"`
	Depth        uint32     `yaml:"depth,omitempty"`
	Created      time.Time  `yaml:"created"`
	Triaged      bool       `yaml:"triaged,omitempty"`
	Remote       string     `yaml:"remote,omitempty"`
	ExternalRef  string     `yaml:"external_ref,omitempty"`

	// Description, AcceptanceCriteria, Notes and CompletionSummary are
	// parsed from the body's recognised H2 sections; FreeFormSections
	// holds everything else, keyed by heading, in original order. None
	// of these round-trip through frontmatter — they live in the body.
	Description        string             `yaml:"-"`
	AcceptanceCriteria []string           `yaml:"-"`
	Notes              string             `yaml:"-"`
	CompletionSummary  string             `yaml:"-"`
	FreeFormSections   []FreeFormSection  `yaml:"-"`

	FilePathValue string `yaml:"-"`
}

// ID implements janus.Item.
func (t *Ticket) ID() string { return t.IDValue }

// FilePath implements janus.Item.
func (t *Ticket) FilePath() string { return t.FilePathValue }

// SetID implements janus.Item.
func (t *Ticket) SetID(id string) { t.IDValue = id }

// SetFilePath implements janus.Item.
func (t *Ticket) SetFilePath(p string) { t.FilePathValue = p }

// FreeFormSection is an H2 (ticket) or top-level plan section that is
// not one of the recognised headings; it round-trips verbatim.
type FreeFormSection struct {
	Heading string
	Content string
}
