// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftstore Authors

package query

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateFormat is the backend's canonical date-string encoding: RFC3339 UTC
// with millisecond precision.
const dateFormat = "2006-01-02T15:04:05.000Z"

// Translated is the wire form of a query: the Mongo-style filter object plus
// the ordered URL modifiers appended outside it.
type Translated struct {
	// Filter is the literal `{...}` filter JSON.
	Filter string

	// Modifiers holds the URL fragments appended after the filter, in
	// emit order: `&sort={...}`, `&skip=N`, `&limit=N`, `&fields=a,b,c`.
	Modifiers []string
}

// QueryString returns the full query-string suffix: filter followed by all
// modifiers.
func (tr Translated) QueryString() string {
	return tr.Filter + strings.Join(tr.Modifiers, "")
}

// All is the translation of the empty query.
func All() Translated {
	return Translated{Filter: "{}"}
}

// Translator converts a [Query] into the backend dialect. Member names are
// resolved through an explicit member→wire-name map fixed at construction;
// a member missing from the map fails translation rather than passing
// through unmapped.
//
// A Translator holds no per-call state: every Translate call uses a fresh
// builder, so one instance may be shared across goroutines.
type Translator struct {
	wireNames map[string]string
}

// NewTranslator builds a Translator over the given member→wire-name map.
// The map is copied; later mutation of the argument has no effect.
func NewTranslator(wireNames map[string]string) *Translator {
	m := make(map[string]string, len(wireNames)+1)
	for k, v := range wireNames {
		m[k] = v
	}
	// Every entity carries the backend id member.
	if _, ok := m["ID"]; !ok {
		m["ID"] = "_id"
	}
	return &Translator{wireNames: m}
}

// ValidateMembers checks at construction time that every listed member has a
// wire-name mapping, so an unmapped member fails when the datastore is built
// instead of on first query.
func (t *Translator) ValidateMembers(members ...string) error {
	for _, member := range members {
		if _, ok := t.wireNames[member]; !ok {
			return unmapped(member)
		}
	}
	return nil
}

// WireName resolves a single member. Exposed for the local filter evaluator
// and projection handling.
func (t *Translator) WireName(member string) (string, error) {
	wire, ok := t.wireNames[member]
	if !ok {
		return "", unmapped(member)
	}
	return wire, nil
}

// Translate renders q into the wire dialect. A nil or empty query translates
// to the match-all filter `{}` with no modifiers.
func (t *Translator) Translate(q *Query) (Translated, error) {
	if q == nil {
		return All(), nil
	}

	var filter strings.Builder
	filter.WriteByte('{')
	for i, node := range q.filters {
		if i > 0 {
			filter.WriteByte(',')
		}
		if err := t.visit(&filter, node); err != nil {
			return Translated{}, err
		}
	}
	filter.WriteByte('}')

	modifiers, err := t.buildModifiers(q)
	if err != nil {
		return Translated{}, err
	}

	return Translated{Filter: filter.String(), Modifiers: modifiers}, nil
}

// visit renders one node as a brace-less fragment (`"field":value` pairs),
// suitable for comma-joining inside the enclosing object.
func (t *Translator) visit(b *strings.Builder, n Node) error {
	switch node := n.(type) {
	case compareNode:
		return t.visitCompare(b, node)

	case andNode:
		// Right operand first. Historical wire ordering, preserved for
		// compatibility; the comma-join keeps the filter semantics
		// order-insensitive.
		if err := t.visit(b, node.Right); err != nil {
			return err
		}
		b.WriteByte(',')
		return t.visit(b, node.Left)

	case orNode:
		b.WriteString(`"$or":[`)
		if err := t.visitBraced(b, node.Left); err != nil {
			return err
		}
		b.WriteByte(',')
		if err := t.visitBraced(b, node.Right); err != nil {
			return err
		}
		b.WriteByte(']')
		return nil

	case boolMemberNode:
		wire, err := t.WireName(node.Member)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, `%q:true`, wire)
		return nil

	case startsWithNode:
		wire, err := t.WireName(node.Member)
		if err != nil {
			return err
		}
		anchored, err := json.Marshal("^" + regexp.QuoteMeta(node.Prefix))
		if err != nil {
			return unsupported(node.Member, "regex prefix not encodable")
		}
		fmt.Fprintf(b, `%q:{"$regex":%s}`, wire, anchored)
		return nil

	default:
		return unsupported("", fmt.Sprintf("node %T", n))
	}
}

// visitBraced renders a node inside its own `{...}` object, as required for
// `$or` array elements.
func (t *Translator) visitBraced(b *strings.Builder, n Node) error {
	b.WriteByte('{')
	if err := t.visit(b, n); err != nil {
		return err
	}
	b.WriteByte('}')
	return nil
}

var compareOperators = map[CompareOp]string{
	OpGreaterThan:        "$gt",
	OpGreaterThanOrEqual: "$gte",
	OpLessThan:           "$lt",
	OpLessThanOrEqual:    "$lte",
}

func (t *Translator) visitCompare(b *strings.Builder, node compareNode) error {
	wire, err := t.WireName(node.Member)
	if err != nil {
		return err
	}

	value, err := encodeValue(node.Member, node.Value)
	if err != nil {
		return err
	}

	if node.Op == OpEqual {
		fmt.Fprintf(b, `%q:%s`, wire, value)
		return nil
	}

	op, ok := compareOperators[node.Op]
	if !ok {
		return unsupported(node.Member, fmt.Sprintf("comparison operator %d", node.Op))
	}
	fmt.Fprintf(b, `%q:{%q:%s}`, wire, op, value)
	return nil
}

// encodeValue renders a comparison operand as filter JSON. Dates use the
// backend's canonical date-string format; strings go through json.Marshal
// for escaping; booleans become lowercase literals.
func encodeValue(member string, v any) (string, error) {
	switch value := v.(type) {
	case string:
		out, err := json.Marshal(value)
		if err != nil {
			return "", unsupported(member, "string not encodable")
		}
		return string(out), nil
	case bool:
		return strconv.FormatBool(value), nil
	case time.Time:
		return strconv.Quote(value.UTC().Format(dateFormat)), nil
	case *time.Time:
		if value == nil {
			return "", unsupported(member, "nil time operand")
		}
		return strconv.Quote(value.UTC().Format(dateFormat)), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		out, err := json.Marshal(value)
		if err != nil {
			return "", unsupported(member, "numeric operand not encodable")
		}
		return string(out), nil
	case nil:
		return "null", nil
	default:
		return "", unsupported(member, fmt.Sprintf("operand type %T", v))
	}
}

func (t *Translator) buildModifiers(q *Query) ([]string, error) {
	var modifiers []string

	if len(q.sorts) > 0 {
		var sortJSON strings.Builder
		sortJSON.WriteByte('{')
		for i, sf := range q.sorts {
			wire, err := t.WireName(sf.member)
			if err != nil {
				return nil, err
			}
			if i > 0 {
				sortJSON.WriteByte(',')
			}
			fmt.Fprintf(&sortJSON, `%q:%d`, wire, sf.order)
		}
		sortJSON.WriteByte('}')
		modifiers = append(modifiers, "&sort="+sortJSON.String())
	}

	if q.hasSkip {
		modifiers = append(modifiers, "&skip="+strconv.Itoa(q.skip))
	}
	if q.hasLimit {
		modifiers = append(modifiers, "&limit="+strconv.Itoa(q.limit))
	}

	if len(q.fields) > 0 {
		wires := make([]string, 0, len(q.fields))
		for _, member := range q.fields {
			wire, err := t.WireName(member)
			if err != nil {
				return nil, err
			}
			wires = append(wires, wire)
		}
		modifiers = append(modifiers, "&fields="+strings.Join(wires, ","))
	}

	return modifiers, nil
}

// SortComparer builds a document comparison function from a translated
// `&sort={...}` modifier, used by the local cache to order FindByQuery
// results the same way the backend would.
func SortComparer(sortModifier string) (func(a, b map[string]any) bool, error) {
	raw := strings.TrimPrefix(sortModifier, "&sort=")

	// multi-field sorts apply keys in the order the sort document declares
	// them, so the object is walked token-wise instead of unmarshalled into
	// a map, which would lose key order
	type sortKey struct {
		field string
		desc  bool
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		if err == nil {
			err = fmt.Errorf("expected object, got %v", tok)
		}
		return nil, fmt.Errorf("parse sort modifier: %w", err)
	}

	var keys []sortKey
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse sort modifier: %w", err)
		}
		field, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("parse sort modifier: expected field name, got %v", tok)
		}
		var dir int
		if err = dec.Decode(&dir); err != nil {
			return nil, fmt.Errorf("parse sort modifier: %w", err)
		}
		keys = append(keys, sortKey{field: field, desc: dir < 0})
	}

	return func(a, b map[string]any) bool {
		for _, k := range keys {
			c := CompareValues(a[k.field], b[k.field])
			if c == 0 {
				continue
			}
			if k.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	}, nil
}

// CompareValues orders two document values the way the backend orders them:
// numbers numerically, date strings chronologically, everything else
// lexicographically by string form. Returns -1, 0, or 1.
func CompareValues(a, b any) int {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}

	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		if at, err := time.Parse(time.RFC3339, as); err == nil {
			if bt, err := time.Parse(time.RFC3339, bs); err == nil {
				switch {
				case at.Before(bt):
					return -1
				case at.After(bt):
					return 1
				default:
					return 0
				}
			}
		}
		return strings.Compare(as, bs)
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
