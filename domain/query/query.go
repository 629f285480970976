// Package query provides the option-based query builder shared by all stores.
package query

import (
	"context"
	"fmt"
	"time"
)

// Store is the read surface every store exposes over Option-based queries.
type Store[T any] interface {
	Find(ctx context.Context, options ...Option) ([]T, error)
	FindOne(ctx context.Context, options ...Option) (T, error)
	Count(ctx context.Context, options ...Option) (int64, error)
	Exists(ctx context.Context, options ...Option) (bool, error)
}

// Option applies a modification to a Query.
type Option func(Query) Query

// Query holds conditions, ordering, and pagination for store lookups.
type Query struct {
	conditions []Condition
	orders     []Order
	limit      int
	offset     int
}

// Build creates a Query from a set of options.
func Build(options ...Option) Query {
	q := Query{}
	for _, opt := range options {
		q = opt(q)
	}
	return q
}

// Conditions returns the query conditions.
func (q Query) Conditions() []Condition {
	result := make([]Condition, len(q.conditions))
	copy(result, q.conditions)
	return result
}

// Orders returns the query ordering specifications.
func (q Query) Orders() []Order {
	result := make([]Order, len(q.orders))
	copy(result, q.orders)
	return result
}

// LimitValue returns the limit (0 means no limit).
func (q Query) LimitValue() int {
	return q.limit
}

// OffsetValue returns the offset.
func (q Query) OffsetValue() int {
	return q.offset
}

// Operator is the comparison a Condition applies.
type Operator int

// Operator values.
const (
	OpEqual Operator = iota
	OpIn
	OpGreaterOrEqual
	OpIsNotNull
)

// Condition represents a single query condition.
type Condition struct {
	field string
	value any
	op    Operator
}

// Field returns the condition field name.
func (c Condition) Field() string { return c.field }

// Value returns the condition value.
func (c Condition) Value() any { return c.value }

// Operator returns the comparison operator.
func (c Condition) Operator() Operator { return c.op }

// String returns a readable representation.
func (c Condition) String() string {
	switch c.op {
	case OpIn:
		return fmt.Sprintf("%s IN %v", c.field, c.value)
	case OpGreaterOrEqual:
		return fmt.Sprintf("%s >= %v", c.field, c.value)
	case OpIsNotNull:
		return c.field + " IS NOT NULL"
	default:
		return fmt.Sprintf("%s = %v", c.field, c.value)
	}
}

// Order represents a sort specification.
type Order struct {
	field     string
	ascending bool
}

// Field returns the order field name.
func (o Order) Field() string { return o.field }

// Ascending returns true for ASC, false for DESC.
func (o Order) Ascending() bool { return o.ascending }

// WithCondition adds a field = value equality condition.
// Domain packages use this to define their own typed options.
func WithCondition(field string, value any) Option {
	return withOp(field, value, OpEqual)
}

// WithConditionIn adds a field IN (values) condition.
func WithConditionIn(field string, values any) Option {
	return withOp(field, values, OpIn)
}

// WithSince adds a field >= t condition.
func WithSince(field string, t time.Time) Option {
	return withOp(field, t, OpGreaterOrEqual)
}

// WithNotNull requires the field to be non-NULL.
func WithNotNull(field string) Option {
	return withOp(field, nil, OpIsNotNull)
}

func withOp(field string, value any, op Operator) Option {
	return func(q Query) Query {
		q.conditions = append(q.conditions, Condition{field: field, value: value, op: op})
		return q
	}
}

// WithID filters by the "id" column.
func WithID(id int64) Option {
	return WithCondition("id", id)
}

// WithLimit sets the maximum number of results.
func WithLimit(n int) Option {
	return func(q Query) Query {
		q.limit = n
		return q
	}
}

// WithOffset sets the result offset.
func WithOffset(n int) Option {
	return func(q Query) Query {
		q.offset = n
		return q
	}
}

// WithOrderAsc adds ascending ordering on a field.
func WithOrderAsc(field string) Option {
	return func(q Query) Query {
		q.orders = append(q.orders, Order{field: field, ascending: true})
		return q
	}
}

// WithOrderDesc adds descending ordering on a field.
func WithOrderDesc(field string) Option {
	return func(q Query) Query {
		q.orders = append(q.orders, Order{field: field, ascending: false})
		return q
	}
}
