package model

import "testing"

func TestEnforceFilenameAuthority(t *testing.T) {
	t.Run("matching ids, no warning", func(t *testing.T) {
		ticket := &Ticket{IDValue: "j-a1b2"}
		warned := false
		EnforceFilenameAuthority(ticket, "j-a1b2", func(string) { warned = true })
		if ticket.IDValue != "j-a1b2" || warned {
			t.Fatalf("expected no change and no warning, got id=%q warned=%v", ticket.IDValue, warned)
		}
	})

	t.Run("missing id, no warning", func(t *testing.T) {
		ticket := &Ticket{}
		warned := false
		EnforceFilenameAuthority(ticket, "j-a1b2", func(string) { warned = true })
		if ticket.IDValue != "j-a1b2" || warned {
			t.Fatalf("expected filename stem adopted silently, got id=%q warned=%v", ticket.IDValue, warned)
		}
	})

	t.Run("mismatched id, stem wins and warns", func(t *testing.T) {
		ticket := &Ticket{IDValue: "j-wrong"}
		var msg string
		EnforceFilenameAuthority(ticket, "j-a1b2", func(s string) { msg = s })
		if ticket.IDValue != "j-a1b2" {
			t.Fatalf("expected filename stem to win, got %q", ticket.IDValue)
		}
		want := "Warning: ticket file 'j-a1b2' has frontmatter id 'j-wrong' — using filename stem as authoritative ID"
		if msg != want {
			t.Fatalf("warning = %q, want %q", msg, want)
		}
	})
}
