package store

import (
	"github.com/divmain/janus/internal/markdown"
	"github.com/divmain/janus/internal/model"
	"github.com/divmain/janus/internal/repo"
)

// Init scans <root>/items and <root>/plans, parses every .md file,
// applies the filename-is-authoritative rule, and inserts the result
// into the store. Parse failures are logged and skipped — they never
// abort initialisation — per the "store init logs and continues"
// propagation policy. Embeddings are not loaded here; callers that
// want semantic search available call internal/embedding's LoadAll
// against the freshly populated ticket snapshot afterwards, since that
// keeps this package free of a dependency on the embedding package.
func (s *Store) Init() error {
	if err := s.loadTickets(); err != nil {
		return err
	}
	return s.loadPlans()
}

func (s *Store) loadTickets() error {
	entries, err := repo.Scan(repo.ItemsDir())
	if err != nil {
		return err
	}
	for _, e := range entries {
		raw, err := repo.Read(e.Path)
		if err != nil {
			s.log.Warn("failed to read ticket file", "path", repo.RelativePath(e.Path), "err", err)
			continue
		}
		t, err := markdown.ParseTicket(raw)
		if err != nil {
			s.log.Warn("failed to parse ticket file", "path", repo.RelativePath(e.Path), "err", err)
			continue
		}
		model.EnforceFilenameAuthority(t, e.Stem, func(msg string) { s.log.Warn(msg) })
		t.SetFilePath(e.Path)
		s.SetTicket(*t)
	}
	return nil
}

func (s *Store) loadPlans() error {
	entries, err := repo.Scan(repo.PlansDir())
	if err != nil {
		return err
	}
	for _, e := range entries {
		raw, err := repo.Read(e.Path)
		if err != nil {
			s.log.Warn("failed to read plan file", "path", repo.RelativePath(e.Path), "err", err)
			continue
		}
		p, err := markdown.ParsePlan(raw)
		if err != nil {
			s.log.Warn("failed to parse plan file", "path", repo.RelativePath(e.Path), "err", err)
			continue
		}
		model.EnforceFilenameAuthority(p, e.Stem, func(msg string) { s.log.Warn(msg) })
		p.SetFilePath(e.Path)
		s.SetPlan(*p)
	}
	return nil
}
