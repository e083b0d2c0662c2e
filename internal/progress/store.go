package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/dgraph-io/badger/v4"
)

// Options configures Open.
type Options struct {
	// Path is the badger directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
	Logger   *slog.Logger
}

// Store is the badger-backed progress store. It is safe for concurrent use.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens or creates the store.
func Open(opts Options) (*Store, error) {
	bopts := badger.DefaultOptions(opts.Path)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts.Logger = nil // disable badger logging
	bopts.SyncWrites = true

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, ErrUnavailable.WithCause(fmt.Errorf("open badger db: %w", err))
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Info("progress store opened", "path", opts.Path, "in_memory", opts.InMemory)

	return &Store{db: db, logger: logger}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	s.logger.Info("closing progress store")
	return s.db.Close()
}

// Save upserts p.
func (s *Store) Save(ctx context.Context, p Progress) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(p.BookID), data)
	})
	if err != nil {
		return ErrUnavailable.WithCause(fmt.Errorf("save progress for %s: %w", p.BookID, err))
	}
	return nil
}

// Get returns the progress of bookID or ErrNotFound.
func (s *Store) Get(ctx context.Context, bookID string) (Progress, error) {
	if err := ctx.Err(); err != nil {
		return Progress{}, err
	}

	var p Progress
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(bookID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return Progress{}, ErrNotFound
	case err != nil:
		return Progress{}, ErrUnavailable.WithCause(fmt.Errorf("load progress for %s: %w", bookID, err))
	}
	return p, nil
}

// All returns every stored record, most recently read first. Records that
// fail to decode are skipped and logged.
func (s *Store) All(ctx context.Context) ([]Progress, error) {
	var out []Progress
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(KeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			var p Progress
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			})
			if err != nil {
				s.logger.Warn("skipping unreadable progress record",
					"key", string(item.Key()),
					"error", err,
				)
				continue
			}
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, ErrUnavailable.WithCause(fmt.Errorf("list progress: %w", err))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastRead.After(out[j].LastRead)
	})
	return out, nil
}

// Delete removes the progress of bookID. Deleting a missing record is not
// an error.
func (s *Store) Delete(ctx context.Context, bookID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(bookID))
	})
	if err != nil {
		return ErrUnavailable.WithCause(fmt.Errorf("delete progress for %s: %w", bookID, err))
	}
	return nil
}
