package store

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/datastore"
)

const (
	DefaultKind = "visitor_count"

	txAttempts = 10
)

type visitorRecord struct {
	VisitorCount int64 `datastore:"visitorCount"`
}

var _ Store = (*DatastoreStore)(nil)

type DatastoreStore struct {
	kind      string
	namespace string
	client    *datastore.Client
}

func NewDatastoreStore(client *datastore.Client, kind, namespace string) *DatastoreStore {
	if kind == "" {
		kind = DefaultKind
	}
	return &DatastoreStore{kind: kind, namespace: namespace, client: client}
}

func (s *DatastoreStore) key(id string) *datastore.Key {
	key := datastore.NameKey(s.kind, id, nil)
	key.Namespace = s.namespace
	return key
}

func (s *DatastoreStore) Get(ctx context.Context, id string) (Decimal, error) {
	var rec visitorRecord
	err := s.client.Get(ctx, s.key(id), &rec)
	if errors.Is(err, datastore.ErrNoSuchEntity) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("datastore.Get: %w", err)
	}
	return DecimalFromInt(rec.VisitorCount), nil
}

func (s *DatastoreStore) PutIfAbsent(ctx context.Context, id string, initial int64) error {
	key := s.key(id)
	alreadyExist := false
	_, err := s.client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		// The func may run more than once when the transaction loses a race.
		alreadyExist = false
		var rec visitorRecord
		err := tx.Get(key, &rec)
		if err == nil {
			alreadyExist = true
			return nil
		} else if !errors.Is(err, datastore.ErrNoSuchEntity) {
			return err
		}

		_, err = tx.Put(key, &visitorRecord{VisitorCount: initial})
		return err
	}, datastore.MaxAttempts(txAttempts))
	if err != nil {
		return fmt.Errorf("datastore.RunInTransaction: %w", err)
	}
	if alreadyExist {
		return ErrExists
	}
	return nil
}

func (s *DatastoreStore) Add(ctx context.Context, id string, delta int64) (Decimal, error) {
	key := s.key(id)
	var rec visitorRecord
	_, err := s.client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		rec = visitorRecord{}
		if err := tx.Get(key, &rec); err != nil && !errors.Is(err, datastore.ErrNoSuchEntity) {
			return err
		}
		rec.VisitorCount += delta
		_, err := tx.Put(key, &rec)
		return err
	}, datastore.MaxAttempts(txAttempts))
	if err != nil {
		return "", fmt.Errorf("datastore.RunInTransaction: %w", err)
	}
	return DecimalFromInt(rec.VisitorCount), nil
}

func (s *DatastoreStore) Close() error {
	return s.client.Close()
}
