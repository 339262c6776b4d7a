// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftstore Authors

package store

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/driftstore/driftstore/internal/query"
)

// Evaluator applies a translated Mongo-style filter to documents parsed from
// cached payloads, mirroring the operator semantics the backend applies
// remotely: equality, $gt/$gte/$lt/$lte (numbers and canonical date
// strings), $or, and the anchored $regex produced by StartsWith.
//
// An unsupported operator fails construction with a [CacheQueryError];
// clauses are never silently skipped.
type Evaluator struct {
	filter  string
	clauses map[string]any
}

// NewEvaluator parses and validates the filter. The empty string is treated
// as the match-all filter `{}`.
func NewEvaluator(filter string) (*Evaluator, error) {
	trimmed := strings.TrimSpace(filter)
	if trimmed == "" {
		trimmed = "{}"
	}

	var clauses map[string]any
	if err := json.Unmarshal([]byte(trimmed), &clauses); err != nil {
		return nil, &CacheQueryError{Code: CodeCacheQueryFilter, Filter: filter, Err: err}
	}

	if err := validateClauses(clauses); err != nil {
		return nil, &CacheQueryError{Code: CodeCacheQueryFilter, Filter: filter, Err: err}
	}

	return &Evaluator{filter: filter, clauses: clauses}, nil
}

// Matches reports whether doc satisfies every clause of the filter.
func (e *Evaluator) Matches(doc map[string]any) bool {
	return matchClauses(e.clauses, doc)
}

func matchClauses(clauses map[string]any, doc map[string]any) bool {
	for key, expected := range clauses {
		if key == "$or" {
			if !matchOr(expected, doc) {
				return false
			}
			continue
		}

		actual, present := doc[key]

		switch exp := expected.(type) {
		case map[string]any:
			for op, operand := range exp {
				if !matchOperator(op, operand, actual, present) {
					return false
				}
			}
		case nil:
			// {"f":null} matches a missing or null field.
			if present && actual != nil {
				return false
			}
		default:
			if !present || query.CompareValues(actual, expected) != 0 {
				return false
			}
		}
	}
	return true
}

func matchOr(expected any, doc map[string]any) bool {
	branches, ok := expected.([]any)
	if !ok {
		return false
	}
	for _, branch := range branches {
		if sub, ok := branch.(map[string]any); ok && matchClauses(sub, doc) {
			return true
		}
	}
	return false
}

func matchOperator(op string, operand, actual any, present bool) bool {
	if !present {
		return false
	}

	switch op {
	case "$gt":
		return query.CompareValues(actual, operand) > 0
	case "$gte":
		return query.CompareValues(actual, operand) >= 0
	case "$lt":
		return query.CompareValues(actual, operand) < 0
	case "$lte":
		return query.CompareValues(actual, operand) <= 0
	case "$regex":
		pattern, ok := operand.(string)
		if !ok {
			return false
		}
		str, ok := actual.(string)
		if !ok {
			return false
		}
		matched, err := regexp.MatchString(pattern, str)
		return err == nil && matched
	default:
		// validateClauses rejects unknown operators up front.
		return false
	}
}

var supportedOperators = map[string]struct{}{
	"$gt": {}, "$gte": {}, "$lt": {}, "$lte": {}, "$regex": {},
}

func validateClauses(clauses map[string]any) error {
	for key, expected := range clauses {
		if key == "$or" {
			branches, ok := expected.([]any)
			if !ok {
				return fmt.Errorf("$or operand must be an array")
			}
			for _, branch := range branches {
				sub, ok := branch.(map[string]any)
				if !ok {
					return fmt.Errorf("$or branch must be an object")
				}
				if err := validateClauses(sub); err != nil {
					return err
				}
			}
			continue
		}

		if strings.HasPrefix(key, "$") {
			return fmt.Errorf("unsupported top-level operator %q", key)
		}

		if exp, ok := expected.(map[string]any); ok {
			for op, operand := range exp {
				if _, ok := supportedOperators[op]; !ok {
					return fmt.Errorf("unsupported operator %q on field %q", op, key)
				}
				if op == "$regex" {
					pattern, ok := operand.(string)
					if !ok {
						return fmt.Errorf("$regex operand on field %q must be a string", key)
					}
					if _, err := regexp.Compile(pattern); err != nil {
						return fmt.Errorf("invalid $regex on field %q: %w", key, err)
					}
				}
			}
		}
	}
	return nil
}
