// Package janus holds types and helpers shared across every core
// component: the error taxonomy, the entity-type enum, and small
// string utilities used by the markdown, graph and status packages.
package janus

import (
	"errors"
	"fmt"
)

// Kind classifies an Error into one of the behavioural categories
// described in the error handling design. Callers should switch on
// Kind (or use errors.Is against the Err* sentinels below) rather than
// string-matching Error()'s text.
type Kind int

const (
	// KindValidation covers malformed identifiers, reserved prefixes,
	// unsafe filenames and YAML fields of the wrong shape.
	KindValidation Kind = iota
	// KindNotFound covers a ticket or plan id that does not resolve.
	KindNotFound
	// KindCycle covers a dependency addition that would close a cycle.
	KindCycle
	// KindCache covers query-cache column extraction or data-integrity
	// failures; always recoverable by falling back to disk.
	KindCache
	// KindIO wraps filesystem errors.
	KindIO
	// KindParse covers malformed markdown or YAML.
	KindParse
	// KindHook covers missing/escaping/non-zero-exit/timed-out hook scripts.
	KindHook
	// KindRemote covers protocol or auth failures from a remote adapter.
	KindRemote
	// KindIDGenerationExhausted covers id-generation retry exhaustion.
	KindIDGenerationExhausted
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindNotFound:
		return "NotFound"
	case KindCycle:
		return "CycleError"
	case KindCache:
		return "CacheError"
	case KindIO:
		return "IoError"
	case KindParse:
		return "ParseError"
	case KindHook:
		return "HookError"
	case KindRemote:
		return "RemoteError"
	case KindIDGenerationExhausted:
		return "IdGenerationExhausted"
	default:
		return "UnknownError"
	}
}

// Error is the single error type used across the core. It carries a
// Kind for programmatic dispatch plus a human-facing message that is
// already relativised against the janus root where applicable.
type Error struct {
	Kind Kind
	Msg  string
	// Candidates holds ambiguous-id matches for KindNotFound.
	Candidates []string
	// Path holds the cycle description passed to NewCycleError for
	// KindCycle; it contains the discovered path joined with " -> ".
	Path string
	// Column holds the offending column index for KindCache extraction
	// failures, or -1 when not applicable.
	Column int
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so
// errors.Is(err, janus.ErrNotFound) style checks work with a sentinel.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

func newErr(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...), Column: -1}
}

// NewValidationError builds a KindValidation error.
func NewValidationError(format string, args ...any) *Error {
	return newErr(KindValidation, format, args...)
}

// NewNotFound builds a KindNotFound error for a single missing id.
func NewNotFound(partial string) *Error {
	return newErr(KindNotFound, "no ticket or plan matches %q", partial)
}

// NewAmbiguous builds a KindNotFound error carrying candidate ids.
func NewAmbiguous(partial string, candidates []string) *Error {
	e := newErr(KindNotFound, "id %q is ambiguous: %d candidates", partial, len(candidates))
	e.Candidates = candidates
	return e
}

// NewEmptyMap builds a KindNotFound error for resolution against an
// empty ticket map.
func NewEmptyMap() *Error {
	return newErr(KindNotFound, "ticket map is empty")
}

// NewCycleError builds a KindCycle error carrying the discovered path.
func NewCycleError(path string) *Error {
	e := newErr(KindCycle, "adding this dependency would create a cycle: %s", path)
	e.Path = path
	return e
}

// NewCacheColumnError builds a KindCache error for a column extraction
// failure at the given index.
func NewCacheColumnError(column int, err error) *Error {
	e := newErr(KindCache, "failed to extract column %d", column)
	e.Column = column
	e.Err = err
	return e
}

// NewCacheDataIntegrity builds a KindCache error for a value that
// parsed successfully out of SQLite but fails domain validation (bad
// enum text, missing required field, ...).
func NewCacheDataIntegrity(format string, args ...any) *Error {
	return newErr(KindCache, "cache data integrity: "+format, args...)
}

// NewIOError wraps err as a KindIO error with a relativised path in
// the message.
func NewIOError(relPath string, err error) *Error {
	e := newErr(KindIO, "%s", relPath)
	e.Err = err
	return e
}

// NewParseError builds a KindParse error for a single file.
func NewParseError(relPath string, err error) *Error {
	e := newErr(KindParse, "failed to parse %s", relPath)
	e.Err = err
	return e
}

// NewHookError builds a KindHook error.
func NewHookError(format string, args ...any) *Error {
	return newErr(KindHook, format, args...)
}

// NewRemoteError wraps err as a KindRemote error.
func NewRemoteError(format string, err error, args ...any) *Error {
	e := newErr(KindRemote, format, args...)
	e.Err = err
	return e
}

// NewIDGenerationExhausted builds a KindIDGenerationExhausted error.
func NewIDGenerationExhausted(prefix string) *Error {
	return newErr(KindIDGenerationExhausted, "exhausted id generation retries for prefix %q", prefix)
}

// Sentinels usable with errors.Is(err, janus.ErrNotFound) etc. Each
// carries only a Kind; callers must not rely on their Msg text.
var (
	ErrValidation            = &Error{Kind: KindValidation}
	ErrNotFound              = &Error{Kind: KindNotFound}
	ErrCycle                 = &Error{Kind: KindCycle}
	ErrCache                 = &Error{Kind: KindCache}
	ErrIO                    = &Error{Kind: KindIO}
	ErrParse                 = &Error{Kind: KindParse}
	ErrHook                  = &Error{Kind: KindHook}
	ErrRemote                = &Error{Kind: KindRemote}
	ErrIDGenerationExhausted = &Error{Kind: KindIDGenerationExhausted}
)
