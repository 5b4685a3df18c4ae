package store

import (
	"context"
	"errors"
	"log"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerStore is the embedded on-disk Store used when no DATABASE_URL
// is configured.
type BadgerStore struct {
	db *badger.DB
}

// BadgerOptions configures the embedded store.
type BadgerOptions struct {
	// Dir is the data directory. Required unless InMemory is set.
	Dir string

	// InMemory runs badger without disk persistence; used in tests
	// that want a real engine.
	InMemory bool
}

// NewBadgerStore opens (or creates) the badger database.
func NewBadgerStore(opts BadgerOptions) (*BadgerStore, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("store: BadgerOptions.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir).WithLogger(badgerLogger{})
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Write(_ context.Context, key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

func (s *BadgerStore) Read(_ context.Context, key string) ([]byte, bool, error) {
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (s *BadgerStore) Delete(_ context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

func (s *BadgerStore) ListKeys(_ context.Context, prefix string) ([]string, error) {
	p := []byte(prefix)
	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = p
		iterOpts.PrefetchValues = false
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return keys, err
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// badgerLogger routes badger errors/warnings through the standard log
// and drops its chatty info/debug output.
type badgerLogger struct{}

func (badgerLogger) Errorf(f string, v ...interface{})   { log.Printf("[badger] ERROR: "+f, v...) }
func (badgerLogger) Warningf(f string, v ...interface{}) { log.Printf("[badger] WARN: "+f, v...) }
func (badgerLogger) Infof(string, ...interface{})        {}
func (badgerLogger) Debugf(string, ...interface{})       {}
