package model

import "fmt"

// EnforceFilenameAuthority is the single source of truth for invariant
// 1: the filename stem is authoritative. If the item's id disagrees
// with stem, warn reports the exact warning text and the id is
// overwritten; if the id is empty, it is simply set to stem; if they
// already match, nothing happens. Every code path that loads ticket or
// plan metadata from disk must call this before the item is used.
func EnforceFilenameAuthority(item interface{ ID() string; SetID(string) }, stem string, warn func(string)) {
	id := item.ID()
	switch {
	case id == "":
		item.SetID(stem)
	case id != stem:
		if warn != nil {
			warn(fmt.Sprintf(
				"Warning: ticket file '%s' has frontmatter id '%s' — using filename stem as authoritative ID",
				stem, id,
			))
		}
		item.SetID(stem)
	}
}
