// Package counter increments persistent per-visitor counts.
package counter

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/tckz/visitor-counter/internal/store"
	"go.uber.org/zap"
)

// DefaultVisitorID stands in when the caller does not identify the visitor.
const DefaultVisitorID = "unknown_visitor"

type options struct {
	logger       *zap.Logger
	ensureRecord bool
}

type Option func(o *options)

func WithLogger(zl *zap.Logger) Option {
	return Option(func(o *options) {
		o.logger = zl
	})
}

// WithEnsureRecord makes the service look the record up and create it at
// zero before incrementing. The increment alone already starts missing
// records from zero, so this only changes how many store calls are made.
func WithEnsureRecord(b bool) Option {
	return Option(func(o *options) {
		o.ensureRecord = b
	})
}

type Service struct {
	store        store.Store
	logger       *zap.Logger
	ensureRecord bool
}

func NewService(s store.Store, opts ...Option) *Service {
	options := options{
		logger: zap.NewNop(),
	}
	for _, e := range opts {
		e(&options)
	}
	return &Service{
		store:        s,
		logger:       options.logger,
		ensureRecord: options.ensureRecord,
	}
}

// IncrementVisitor adds one to the count of id and returns the new count.
// Store failures come back as *StorageError.
func (s *Service) IncrementVisitor(ctx context.Context, id string) (json.Number, error) {
	logger := s.logger.With(zap.String("visitor", id))
	logger.Info("Visitor ID")

	if s.ensureRecord {
		if err := s.ensureExists(ctx, logger, id); err != nil {
			return "", err
		}
	}

	v, err := s.store.Add(ctx, id, 1)
	if err != nil {
		return "", &StorageError{Op: "add", ID: id, Err: err}
	}
	logger.Debug("Update response", zap.Stringer("visitorCount", v))

	n, err := Normalize(v)
	if err != nil {
		return "", &StorageError{Op: "add", ID: id, Err: err}
	}
	return n, nil
}

func (s *Service) ensureExists(ctx context.Context, logger *zap.Logger, id string) error {
	_, err := s.store.Get(ctx, id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return &StorageError{Op: "get", ID: id, Err: err}
	}

	logger.Info("Initializing visitor count")
	err = s.store.PutIfAbsent(ctx, id, 0)
	if errors.Is(err, store.ErrExists) {
		// Another request created it first.
		return nil
	}
	if err != nil {
		return &StorageError{Op: "put", ID: id, Err: err}
	}
	return nil
}

// Current returns the count of id without changing it.
func (s *Service) Current(ctx context.Context, id string) (json.Number, error) {
	v, err := s.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return "0", nil
	}
	if err != nil {
		return "", &StorageError{Op: "get", ID: id, Err: err}
	}
	n, err := Normalize(v)
	if err != nil {
		return "", &StorageError{Op: "get", ID: id, Err: err}
	}
	return n, nil
}
