// Package markdown implements the ticket/plan file format: round-trip
// YAML frontmatter plus a structured body (title, description,
// acceptance criteria, phases, ticket lists, free-form sections).
// Heading structure is split from the raw lines so that unknown
// sections are preserved byte-for-byte between re-renders; goldmark's
// AST is only used to cross-check the heading count.
package markdown

import (
	"bytes"

	"github.com/divmain/janus/internal/janus"
	"gopkg.in/yaml.v3"
)

const fence = "---"

// splitFrontmatter splits raw file bytes into the YAML frontmatter
// block and the remaining body. It requires the file to start with a
// "---" fence line and returns a ParseError if the closing fence is
// missing.
func splitFrontmatter(raw []byte) (fm []byte, body []byte, err error) {
	lines := bytes.Split(raw, []byte("\n"))
	if len(lines) == 0 || string(bytes.TrimRight(lines[0], "\r")) != fence {
		return nil, nil, janus.NewParseError("", errNoFrontmatterFence)
	}
	for i := 1; i < len(lines); i++ {
		if string(bytes.TrimRight(lines[i], "\r")) == fence {
			fm = bytes.Join(lines[1:i], []byte("\n"))
			body = bytes.Join(lines[i+1:], []byte("\n"))
			return fm, body, nil
		}
	}
	return nil, nil, janus.NewParseError("", errNoFrontmatterFence)
}

var errNoFrontmatterFence = errFrontmatter("missing closing --- fence")

type errFrontmatter string

func (e errFrontmatter) Error() string { return string(e) }

func unmarshalFrontmatter(fm []byte, out any) error {
	if err := yaml.Unmarshal(fm, out); err != nil {
		return janus.NewParseError("", err)
	}
	return nil
}

func marshalFrontmatter(in any) ([]byte, error) {
	return yaml.Marshal(in)
}
