package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tckz/visitor-counter/internal/counter"
	"github.com/tckz/visitor-counter/internal/marker"
	"github.com/tckz/visitor-counter/internal/store"
)

type flakyIncrementer struct {
	fail int
	next Incrementer
}

func (f *flakyIncrementer) IncrementVisitor(ctx context.Context, id string) (json.Number, error) {
	if f.fail > 0 {
		f.fail--
		return "", &counter.StorageError{Op: "add", ID: id, Err: errors.New("unavailable")}
	}
	return f.next.IncrementVisitor(ctx, id)
}

type brokenMarker struct{}

func (brokenMarker) Acquire(ctx context.Context, msgID string) (bool, error) {
	return false, errors.New("redis down")
}

func (brokenMarker) Release(ctx context.Context, msgID string) error {
	return nil
}

func TestConsumer_RedeliveryCountedOnce(t *testing.T) {
	c := NewConsumer(counter.NewService(store.NewLocalStore()), marker.NewLocalMarker(time.Minute), nil)
	ctx := context.Background()
	attrs := map[string]string{VisitorAttribute: "home"}

	res, n := c.Handle(ctx, "m1", attrs)
	assert.Equal(t, Counted, res)
	assert.Equal(t, "1", n.String())

	res, _ = c.Handle(ctx, "m1", attrs)
	assert.Equal(t, Duplicate, res)

	res, n = c.Handle(ctx, "m2", attrs)
	assert.Equal(t, Counted, res)
	assert.Equal(t, "2", n.String())
}

func TestConsumer_DefaultVisitor(t *testing.T) {
	s := store.NewLocalStore()
	c := NewConsumer(counter.NewService(s), marker.NewLocalMarker(time.Minute), nil)

	res, _ := c.Handle(context.Background(), "m1", nil)
	assert.Equal(t, Counted, res)

	v, err := s.Get(context.Background(), counter.DefaultVisitorID)
	assert.NoError(t, err)
	assert.Equal(t, store.Decimal("1"), v)
}

func TestConsumer_FailureReleasesClaim(t *testing.T) {
	svc := &flakyIncrementer{fail: 1, next: counter.NewService(store.NewLocalStore())}
	c := NewConsumer(svc, marker.NewLocalMarker(time.Minute), nil)
	ctx := context.Background()
	attrs := map[string]string{VisitorAttribute: "home"}

	res, _ := c.Handle(ctx, "m1", attrs)
	assert.Equal(t, Failed, res)

	res, n := c.Handle(ctx, "m1", attrs)
	assert.Equal(t, Counted, res)
	assert.Equal(t, "1", n.String())
}

func TestConsumer_MarkerError(t *testing.T) {
	s := store.NewLocalStore()
	c := NewConsumer(counter.NewService(s), brokenMarker{}, nil)

	res, _ := c.Handle(context.Background(), "m1", map[string]string{VisitorAttribute: "home"})
	assert.Equal(t, Failed, res)

	_, err := s.Get(context.Background(), "home")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "counted", Counted.String())
	assert.Equal(t, "duplicate", Duplicate.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "Result(9)", Result(9).String())
}
