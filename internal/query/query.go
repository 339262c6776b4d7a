// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftstore Authors

// Package query models typed datastore queries and translates them into the
// backend's Mongo-style query-string dialect.
//
// A query is built fluently and handed to a [Translator] bound to the
// collection's member→wire-name map:
//
//	q := query.New().
//	    Where(query.Eq("Name", "James Dean")).
//	    Descending("ID").
//	    Take(10)
package query

// Node is one node of a filter expression tree. Nodes are constructed with
// the package-level helpers (Eq, Gt, AndAlso, OrElse, ...); the concrete
// types are not exported.
type Node interface {
	isNode()
}

// CompareOp enumerates the comparison operators supported by the backend
// dialect.
type CompareOp int

const (
	OpEqual CompareOp = iota
	OpGreaterThan
	OpGreaterThanOrEqual
	OpLessThan
	OpLessThanOrEqual
)

type compareNode struct {
	Op     CompareOp
	Member string
	Value  any
}

type andNode struct {
	Left, Right Node
}

type orNode struct {
	Left, Right Node
}

type boolMemberNode struct {
	Member string
}

type startsWithNode struct {
	Member string
	Prefix string
}

func (compareNode) isNode()    {}
func (andNode) isNode()        {}
func (orNode) isNode()         {}
func (boolMemberNode) isNode() {}
func (startsWithNode) isNode() {}

// Eq matches documents whose member equals value.
func Eq(member string, value any) Node {
	return compareNode{Op: OpEqual, Member: member, Value: value}
}

// Gt matches documents whose member is strictly greater than value.
func Gt(member string, value any) Node {
	return compareNode{Op: OpGreaterThan, Member: member, Value: value}
}

// Gte matches documents whose member is greater than or equal to value.
func Gte(member string, value any) Node {
	return compareNode{Op: OpGreaterThanOrEqual, Member: member, Value: value}
}

// Lt matches documents whose member is strictly less than value.
func Lt(member string, value any) Node {
	return compareNode{Op: OpLessThan, Member: member, Value: value}
}

// Lte matches documents whose member is less than or equal to value.
func Lte(member string, value any) Node {
	return compareNode{Op: OpLessThanOrEqual, Member: member, Value: value}
}

// AndAlso conjoins two filters. Inside a conjunction the right operand is
// emitted before the left one; the comma-join is order-insensitive for the
// supported operators, and the historical wire ordering is kept for
// compatibility with backends that log or hash the literal filter string.
func AndAlso(left, right Node) Node {
	return andNode{Left: left, Right: right}
}

// OrElse matches documents satisfying either operand, emitted as a `$or`
// array with the left operand first.
func OrElse(left, right Node) Node {
	return orNode{Left: left, Right: right}
}

// IsTrue matches documents whose boolean member is true. Mirrors a bare
// boolean member access in a typed filter expression.
func IsTrue(member string) Node {
	return boolMemberNode{Member: member}
}

// StartsWith matches documents whose string member begins with prefix,
// emitted as an anchored, escaped regular expression.
func StartsWith(member, prefix string) Node {
	return startsWithNode{Member: member, Prefix: prefix}
}

// SortOrder is the direction of one sort field, using the backend's
// 1/-1 encoding.
type SortOrder int

const (
	SortAsc  SortOrder = 1
	SortDesc SortOrder = -1
)

type sortField struct {
	member string
	order  SortOrder
}

// Query is a typed datastore query: filter clauses plus the sort, paging,
// and projection modifiers. The zero value (and nil) means "everything".
// Query is not safe for concurrent mutation; build it on one goroutine.
type Query struct {
	filters  []Node
	sorts    []sortField
	skip     int
	hasSkip  bool
	limit    int
	hasLimit bool
	fields   []string
}

// New returns an empty query.
func New() *Query {
	return &Query{}
}

// Where appends a filter clause. Multiple clauses are conjoined in textual
// order.
func (q *Query) Where(n Node) *Query {
	q.filters = append(q.filters, n)
	return q
}

// Ascending appends an ascending sort on member.
func (q *Query) Ascending(member string) *Query {
	q.sorts = append(q.sorts, sortField{member: member, order: SortAsc})
	return q
}

// Descending appends a descending sort on member.
func (q *Query) Descending(member string) *Query {
	q.sorts = append(q.sorts, sortField{member: member, order: SortDesc})
	return q
}

// Skip sets the number of matching documents the backend drops before
// returning results.
func (q *Query) Skip(n int) *Query {
	q.skip = n
	q.hasSkip = true
	return q
}

// Take caps the number of documents returned.
func (q *Query) Take(n int) *Query {
	q.limit = n
	q.hasLimit = true
	return q
}

// Select restricts the returned documents to the named members.
func (q *Query) Select(members ...string) *Query {
	q.fields = append(q.fields, members...)
	return q
}
