// Package store holds the key-value backends that persist visitor counters.
package store

import (
	"context"
	"errors"
	"strconv"
)

var (
	ErrNotFound = errors.New("store: record not found")
	ErrExists   = errors.New("store: record already exists")
)

// Decimal is the textual number a backend hands back, e.g. a DynamoDB N value.
type Decimal string

func DecimalFromInt(v int64) Decimal {
	return Decimal(strconv.FormatInt(v, 10))
}

func (d Decimal) String() string {
	return string(d)
}

// Store is a table of counters keyed by visitor id.
type Store interface {
	// Get returns the stored count, ErrNotFound when the id has no record.
	Get(ctx context.Context, id string) (Decimal, error)

	// PutIfAbsent creates the record with initial. It returns ErrExists and
	// leaves the record untouched when one is already there.
	PutIfAbsent(ctx context.Context, id string, initial int64) error

	// Add atomically adds delta and returns the new value. A missing record
	// counts as zero.
	Add(ctx context.Context, id string, delta int64) (Decimal, error)

	Close() error
}
