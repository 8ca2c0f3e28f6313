// Package remote implements the remote-reference grammar (§6) and the
// adapter contract tickets use to mirror status against an external
// issue tracker. No concrete GitHub or Linear client lives here —
// only the reference parser and the Provider interface a future
// adapter implements, per spec's explicit non-goal of shipping real
// remote synchronisation.
package remote

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/divmain/janus/internal/model"
)

// Kind identifies which tracker a RemoteRef points at.
type Kind int

const (
	KindGitHub Kind = iota
	KindLinear
)

func (k Kind) String() string {
	switch k {
	case KindGitHub:
		return "github"
	case KindLinear:
		return "linear"
	default:
		return "unknown"
	}
}

// RemoteRef is a parsed pointer to an external issue.
type RemoteRef struct {
	Kind  Kind
	Owner string // github owner, or linear org
	Repo  string // github repo only
	Issue string // github issue number (decimal) or linear issue key
}

func (r RemoteRef) String() string {
	switch r.Kind {
	case KindGitHub:
		return fmt.Sprintf("github:%s/%s/%s", r.Owner, r.Repo, r.Issue)
	case KindLinear:
		return fmt.Sprintf("linear:%s/%s", r.Owner, r.Issue)
	default:
		return ""
	}
}

var (
	githubFull  = regexp.MustCompile(`^github:([^/]+)/([^/]+)/([1-9][0-9]*)$`)
	githubShort = regexp.MustCompile(`^([^/]+)/([^/]+)/([1-9][0-9]*)$`)
	linearFull  = regexp.MustCompile(`^linear:([^/]+)/([A-Z]+-[0-9]+)$`)
	linearKey   = regexp.MustCompile(`^[A-Z]+-[0-9]+$`)
)

// ParseRemoteRef parses a remote reference string per spec §6's
// grammar. defaultLinearOrg is used to resolve the bare-issue-key
// short form; pass "" if no default is configured, in which case that
// short form fails to parse.
func ParseRemoteRef(s string, defaultLinearOrg string) (RemoteRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RemoteRef{}, fmt.Errorf("remote reference is empty")
	}

	if m := githubFull.FindStringSubmatch(s); m != nil {
		return RemoteRef{Kind: KindGitHub, Owner: m[1], Repo: m[2], Issue: m[3]}, nil
	}
	if m := linearFull.FindStringSubmatch(s); m != nil {
		return RemoteRef{Kind: KindLinear, Owner: m[1], Issue: m[2]}, nil
	}
	if m := githubShort.FindStringSubmatch(s); m != nil {
		return RemoteRef{Kind: KindGitHub, Owner: m[1], Repo: m[2], Issue: m[3]}, nil
	}
	if linearKey.MatchString(s) {
		if defaultLinearOrg == "" {
			return RemoteRef{}, fmt.Errorf("remote reference %q is a bare Linear issue key but no default Linear org is configured", s)
		}
		return RemoteRef{Kind: KindLinear, Owner: defaultLinearOrg, Issue: s}, nil
	}

	return RemoteRef{}, fmt.Errorf("remote reference %q matches no known grammar (github:owner/repo/N, linear:org/KEY-N, owner/repo/N, or KEY-N)", s)
}

// IssueNumber returns the GitHub issue number as an int. Only valid
// for KindGitHub refs; callers that already switched on Kind can call
// this without re-checking the error in practice, but it is returned
// for callers that didn't.
func (r RemoteRef) IssueNumber() (int, error) {
	if r.Kind != KindGitHub {
		return 0, fmt.Errorf("remote ref %s is not a GitHub reference", r)
	}
	return strconv.Atoi(r.Issue)
}

// RemoteStatus is the external tracker's notion of issue state,
// independent of either tracker's actual vocabulary. The zero value is
// RemoteOpen. Linear exposes free-text workflow states rather than a
// fixed enum, so those are carried via Custom rather than forced into
// one of the three built-in kinds.
type RemoteStatus struct {
	kind remoteKind
	text string
}

type remoteKind int

const (
	remoteOpen remoteKind = iota
	remoteClosed
	remoteInProgress
	remoteCustom
)

var (
	RemoteOpen       = RemoteStatus{kind: remoteOpen}
	RemoteClosed     = RemoteStatus{kind: remoteClosed}
	RemoteInProgress = RemoteStatus{kind: remoteInProgress}
)

// Custom builds a RemoteStatus from a tracker's free-text workflow
// state name (e.g. a Linear custom state like "In QA" or "Won't Fix").
// ToTicketStatus resolves it by substring match rather than an exact
// vocabulary, since every Linear workspace names its states
// differently.
func Custom(text string) RemoteStatus {
	return RemoteStatus{kind: remoteCustom, text: text}
}

// ToTicketStatus maps a remote tracker status onto the local Status
// enum used for mirroring sync. Custom states are resolved by a
// case-insensitive substring match against the tracker's state name:
// "done"/"complete"/"closed" -> complete, "cancel" -> cancelled,
// "progress" -> in_progress, anything else -> new.
func (rs RemoteStatus) ToTicketStatus() model.Status {
	switch rs.kind {
	case remoteClosed:
		return model.StatusComplete
	case remoteInProgress:
		return model.StatusInProgress
	case remoteCustom:
		lower := strings.ToLower(rs.text)
		switch {
		case strings.Contains(lower, "done"), strings.Contains(lower, "complete"), strings.Contains(lower, "closed"):
			return model.StatusComplete
		case strings.Contains(lower, "cancel"):
			return model.StatusCancelled
		case strings.Contains(lower, "progress"):
			return model.StatusInProgress
		default:
			return model.StatusNew
		}
	default:
		return model.StatusNew
	}
}

// Issue is the subset of remote issue data the core cares about for
// mirroring purposes.
type Issue struct {
	Title  string
	Status RemoteStatus
	URL    string
}

// Provider is the adapter contract a concrete GitHub or Linear client
// implements. No implementation lives in this package; it exists so
// the write path and hooks can depend on an interface rather than a
// concrete tracker.
type Provider interface {
	// FetchIssue retrieves the current state of the referenced issue.
	FetchIssue(ctx context.Context, ref RemoteRef) (Issue, error)
}
