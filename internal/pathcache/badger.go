package pathcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/jonesrussell/north-cloud/philosophy/internal/domain"
)

const (
	badgerKeyPrefix = "path:"
	badgerDirMode   = 0o750
)

// BadgerConfig configures the embedded store.
type BadgerConfig struct {
	// Dir is the database directory. Ignored when InMemory is set.
	Dir      string
	InMemory bool
	// SyncWrites fsyncs every commit.
	SyncWrites bool
}

// BadgerStore keeps the mapping in an embedded Badger database, one key per title.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens or creates the database described by cfg.
func OpenBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Dir == "" {
			return nil, errors.New("badger dir is required")
		}
		if err := os.MkdirAll(cfg.Dir, badgerDirMode); err != nil {
			return nil, fmt.Errorf("create badger dir %s: %w", cfg.Dir, err)
		}
		opts = badger.DefaultOptions(cfg.Dir)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Load iterates every path key.
func (s *BadgerStore) Load(ctx context.Context) (map[string]domain.Path, error) {
	paths := make(map[string]domain.Path)

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   100,
			Prefix:         []byte(badgerKeyPrefix),
		})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			title := string(item.Key()[len(badgerKeyPrefix):])
			err := item.Value(func(val []byte) error {
				paths[title] = decodePath(val)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load badger paths: %w", err)
	}
	return paths, nil
}

// Save replaces every path key in a single update transaction.
func (s *BadgerStore) Save(ctx context.Context, paths map[string]domain.Path) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		var stale [][]byte
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(badgerKeyPrefix)})
		for it.Rewind(); it.Valid(); it.Next() {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range stale {
			if _, keep := paths[string(key[len(badgerKeyPrefix):])]; keep {
				continue
			}
			if err := txn.Delete(key); err != nil {
				return err
			}
		}

		for title, path := range paths {
			if err := ctx.Err(); err != nil {
				return err
			}
			raw, err := json.Marshal(path)
			if err != nil {
				return fmt.Errorf("encode path for %q: %w", title, err)
			}
			if err = txn.Set([]byte(badgerKeyPrefix+title), raw); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save badger paths: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
