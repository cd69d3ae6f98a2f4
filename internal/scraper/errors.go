package scraper

import (
	"fmt"
	"strings"
)

// FetchError means a source could not be read at all. Fatal for the group.
type FetchError struct {
	Group string
	URL   string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s (%s): %v", e.Group, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError means one row failed required-field typing or was structurally
// short. Row-scoped: the batch logs it and moves on.
type ParseError struct {
	Entity EntityType
	Group  string
	Row    []string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s row in %s [%s]: %v", e.Entity, e.Group, strings.Join(e.Row, ";"), e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// PatternMismatch means an office name did not match the shape a boundary or
// identity rule expected. Non-fatal: the boundary stays empty.
type PatternMismatch struct {
	ContestID  string
	Scope      string
	OfficeName string
}

func (e *PatternMismatch) Error() string {
	return fmt.Sprintf("no %s boundary pattern matched office %q (contest %s)", e.Scope, e.OfficeName, e.ContestID)
}

// ReconciliationSkip means an overlay row resolved to no action, usually a
// half-filled template row or a disabled row with nothing to delete. Expected
// in curated sheets; collected for diagnostics, never logged as a failure.
type ReconciliationSkip struct {
	Entity EntityType
	Group  string
	Row    OverlayRow
}

func (e *ReconciliationSkip) Error() string {
	return fmt.Sprintf("no reconciliation action for %s overlay row in %s (id %v)", e.Entity, e.Group, e.Row["id"])
}

// WriteError means the persistence collaborator failed. Fatal for the batch;
// chunks already flushed stand.
type WriteError struct {
	Entity EntityType
	Group  string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s batch in %s: %v", e.Entity, e.Group, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
