package remote

import "testing"

func TestParseRemoteRefGitHubFull(t *testing.T) {
	ref, err := ParseRemoteRef("github:acme/widgets/42", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Kind != KindGitHub || ref.Owner != "acme" || ref.Repo != "widgets" || ref.Issue != "42" {
		t.Fatalf("unexpected ref: %+v", ref)
	}
	if n, err := ref.IssueNumber(); err != nil || n != 42 {
		t.Fatalf("IssueNumber() = %d, %v", n, err)
	}
}

func TestParseRemoteRefGitHubShort(t *testing.T) {
	ref, err := ParseRemoteRef("acme/widgets/7", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Kind != KindGitHub || ref.Issue != "7" {
		t.Fatalf("unexpected ref: %+v", ref)
	}
}

func TestParseRemoteRefLinearFull(t *testing.T) {
	ref, err := ParseRemoteRef("linear:acme/ENG-123", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Kind != KindLinear || ref.Owner != "acme" || ref.Issue != "ENG-123" {
		t.Fatalf("unexpected ref: %+v", ref)
	}
}

func TestParseRemoteRefLinearShortRequiresDefaultOrg(t *testing.T) {
	if _, err := ParseRemoteRef("ENG-123", ""); err == nil {
		t.Fatal("expected error without a configured default org")
	}
	ref, err := ParseRemoteRef("ENG-123", "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Kind != KindLinear || ref.Owner != "acme" || ref.Issue != "ENG-123" {
		t.Fatalf("unexpected ref: %+v", ref)
	}
}

func TestParseRemoteRefRejectsGarbage(t *testing.T) {
	cases := []string{"", "   ", "github:acme/widgets/0", "github:acme/widgets/-1", "linear:acme/eng-1", "not a ref at all"}
	for _, c := range cases {
		if _, err := ParseRemoteRef(c, "acme"); err == nil {
			t.Errorf("expected error parsing %q", c)
		}
	}
}

func TestRemoteRefString(t *testing.T) {
	ref := RemoteRef{Kind: KindGitHub, Owner: "acme", Repo: "widgets", Issue: "42"}
	if got, want := ref.String(), "github:acme/widgets/42"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	ref2 := RemoteRef{Kind: KindLinear, Owner: "acme", Issue: "ENG-1"}
	if got, want := ref2.String(), "linear:acme/ENG-1"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestRemoteStatusToTicketStatus(t *testing.T) {
	if got := RemoteClosed.ToTicketStatus(); got.String() != "complete" {
		t.Fatalf("expected complete, got %s", got)
	}
	if got := RemoteInProgress.ToTicketStatus(); got.String() != "in_progress" {
		t.Fatalf("expected in_progress, got %s", got)
	}
	if got := RemoteOpen.ToTicketStatus(); got.String() != "new" {
		t.Fatalf("expected new, got %s", got)
	}
}

func TestRemoteStatusCustomSubstringMatch(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Done", "complete"},
		{"Complete", "complete"},
		{"Closed", "complete"},
		{"Cancelled", "cancelled"},
		{"Won't Do (Cancel)", "cancelled"},
		{"In Progress", "in_progress"},
		{"Backlog", "new"},
		{"Triage", "new"},
	}
	for _, c := range cases {
		if got := Custom(c.text).ToTicketStatus(); got.String() != c.want {
			t.Errorf("Custom(%q).ToTicketStatus() = %s, want %s", c.text, got, c.want)
		}
	}
}
