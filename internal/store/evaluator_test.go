// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftstore Authors

package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(t *testing.T, raw string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}

func TestEvaluator_Matches(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		doc    string
		want   bool
	}{
		{
			name:   "equality match",
			filter: `{"name":"James Dean"}`,
			doc:    `{"name":"James Dean","age":24}`,
			want:   true,
		},
		{
			name:   "equality mismatch",
			filter: `{"name":"James Dean"}`,
			doc:    `{"name":"James"}`,
			want:   false,
		},
		{
			name:   "equality missing field",
			filter: `{"name":"James Dean"}`,
			doc:    `{"age":24}`,
			want:   false,
		},
		{
			name:   "empty filter matches everything",
			filter: `{}`,
			doc:    `{"anything":1}`,
			want:   true,
		},
		{
			name:   "two clauses both required",
			filter: `{"city":"Fairmount","name":"James"}`,
			doc:    `{"city":"Fairmount","name":"James"}`,
			want:   true,
		},
		{
			name:   "two clauses one fails",
			filter: `{"city":"Fairmount","name":"James"}`,
			doc:    `{"city":"Fairmount","name":"Jim"}`,
			want:   false,
		},
		{
			name:   "gt true",
			filter: `{"age":{"$gt":21}}`,
			doc:    `{"age":24}`,
			want:   true,
		},
		{
			name:   "gt boundary excluded",
			filter: `{"age":{"$gt":21}}`,
			doc:    `{"age":21}`,
			want:   false,
		},
		{
			name:   "gte boundary included",
			filter: `{"age":{"$gte":21}}`,
			doc:    `{"age":21}`,
			want:   true,
		},
		{
			name:   "lt true",
			filter: `{"age":{"$lt":30}}`,
			doc:    `{"age":24}`,
			want:   true,
		},
		{
			name:   "lte boundary included",
			filter: `{"age":{"$lte":24}}`,
			doc:    `{"age":24}`,
			want:   true,
		},
		{
			name:   "range both bounds",
			filter: `{"age":{"$gt":18,"$lt":30}}`,
			doc:    `{"age":24}`,
			want:   true,
		},
		{
			name:   "range outside",
			filter: `{"age":{"$gt":18,"$lt":30}}`,
			doc:    `{"age":42}`,
			want:   false,
		},
		{
			name:   "comparison against missing field",
			filter: `{"age":{"$gt":18}}`,
			doc:    `{"name":"no age"}`,
			want:   false,
		},
		{
			name:   "date comparison on canonical strings",
			filter: `{"published":{"$gte":"2020-01-01T00:00:00.000Z"}}`,
			doc:    `{"published":"2023-06-15T12:00:00.000Z"}`,
			want:   true,
		},
		{
			name:   "date comparison before bound",
			filter: `{"published":{"$gte":"2020-01-01T00:00:00.000Z"}}`,
			doc:    `{"published":"2019-12-31T23:59:59.000Z"}`,
			want:   false,
		},
		{
			name:   "or first branch",
			filter: `{"$or":[{"name":"James"},{"city":"Fairmount"}]}`,
			doc:    `{"name":"James","city":"Marion"}`,
			want:   true,
		},
		{
			name:   "or second branch",
			filter: `{"$or":[{"name":"James"},{"city":"Fairmount"}]}`,
			doc:    `{"name":"Jim","city":"Fairmount"}`,
			want:   true,
		},
		{
			name:   "or no branch",
			filter: `{"$or":[{"name":"James"},{"city":"Fairmount"}]}`,
			doc:    `{"name":"Jim","city":"Marion"}`,
			want:   false,
		},
		{
			name:   "regex prefix match",
			filter: `{"name":{"$regex":"^Jam"}}`,
			doc:    `{"name":"James"}`,
			want:   true,
		},
		{
			name:   "regex prefix mismatch",
			filter: `{"name":{"$regex":"^Jam"}}`,
			doc:    `{"name":"Jim James"}`,
			want:   false,
		},
		{
			name:   "regex escaped metacharacters",
			filter: `{"path":{"$regex":"^a\\.b"}}`,
			doc:    `{"path":"a.b.c"}`,
			want:   true,
		},
		{
			name:   "regex on non-string field",
			filter: `{"age":{"$regex":"^2"}}`,
			doc:    `{"age":24}`,
			want:   false,
		},
		{
			name:   "null matches missing field",
			filter: `{"deleted":null}`,
			doc:    `{"name":"James"}`,
			want:   true,
		},
		{
			name:   "null matches explicit null",
			filter: `{"deleted":null}`,
			doc:    `{"deleted":null}`,
			want:   true,
		},
		{
			name:   "null rejects present value",
			filter: `{"deleted":null}`,
			doc:    `{"deleted":false}`,
			want:   false,
		},
		{
			name:   "boolean equality",
			filter: `{"active":true}`,
			doc:    `{"active":true}`,
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, err := NewEvaluator(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, eval.Matches(doc(t, tt.doc)))
		})
	}
}

func TestNewEvaluator_EmptyFilterIsMatchAll(t *testing.T) {
	eval, err := NewEvaluator("")
	require.NoError(t, err)
	assert.True(t, eval.Matches(map[string]any{"x": 1}))
}

func TestNewEvaluator_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		filter string
	}{
		{name: "malformed json", filter: `{"name":`},
		{name: "unknown field operator", filter: `{"f":{"$where":"1"}}`},
		{name: "unknown top-level operator", filter: `{"$and":[{"a":1}]}`},
		{name: "invalid regex", filter: `{"f":{"$regex":"["}}`},
		{name: "non-string regex operand", filter: `{"f":{"$regex":1}}`},
		{name: "or operand not array", filter: `{"$or":{"a":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEvaluator(tt.filter)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCacheQuery)
		})
	}
}
