package query

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by [Translator.Translate]. Callers should use
// [errors.Is] to match against these values.
var (
	// ErrUnmappedMember is returned when a filter, sort, or projection
	// references an entity member absent from the translator's wire-name
	// map. The query is rejected whole; no clause is silently dropped.
	ErrUnmappedMember = errors.New("member has no wire-name mapping")

	// ErrUnsupportedNode is returned when the expression tree contains a
	// node kind or operand type the backend dialect cannot express.
	ErrUnsupportedNode = errors.New("unsupported query expression")
)

// TranslationError carries the offending member (when known) alongside the
// sentinel cause.
type TranslationError struct {
	Member string
	Err    error
}

func (e *TranslationError) Error() string {
	if e.Member != "" {
		return fmt.Sprintf("translate query: member %q: %v", e.Member, e.Err)
	}
	return fmt.Sprintf("translate query: %v", e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }

func unmapped(member string) error {
	return &TranslationError{Member: member, Err: ErrUnmappedMember}
}

func unsupported(member string, detail string) error {
	return &TranslationError{Member: member, Err: fmt.Errorf("%w: %s", ErrUnsupportedNode, detail)}
}
