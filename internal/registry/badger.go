package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v3"
)

// BadgerStore is a DocumentStore backed by an embedded Badger database.
// Each store instance owns one key inside a shared DB; Replace runs in a
// read-write transaction, which gives readers the same all-or-nothing
// visibility as the file store's rename.
type BadgerStore struct {
	db  *badger.DB
	key []byte
}

// OpenBadger opens (or creates) the Badger database backing registry
// document stores.
func OpenBadger(dir string, logger *slog.Logger) (*badger.DB, error) {
	if dir == "" {
		return nil, fmt.Errorf("registry: badger dir is required")
	}
	opts := badger.DefaultOptions(dir)
	opts.Logger = &badgerLogger{logger: logger}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("registry: open badger db: %w", err)
	}
	return db, nil
}

// NewBadgerStore creates a document store over the given DB and key.
func NewBadgerStore(db *badger.DB, name string) *BadgerStore {
	return &BadgerStore{
		db:  db,
		key: []byte("registry/" + name),
	}
}

// Load returns the current document, or an empty document if none has
// been stored yet.
func (s *BadgerStore) Load(_ context.Context) ([]byte, error) {
	var doc []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key)
		if err == badger.ErrKeyNotFound {
			doc = append([]byte(nil), emptyDocument...)
			return nil
		}
		if err != nil {
			return err
		}
		doc, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("registry: badger get %s: %w", s.key, err)
	}
	return doc, nil
}

// Replace publishes the new document in a single transaction.
func (s *BadgerStore) Replace(_ context.Context, doc []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key, doc)
	})
	if err != nil {
		return fmt.Errorf("registry: badger set %s: %w", s.key, err)
	}
	return nil
}

// Close is a no-op: the shared DB is closed by its owner.
func (s *BadgerStore) Close() error {
	return nil
}

// badgerLogger adapts slog to badger's logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) log() *slog.Logger {
	if l.logger == nil {
		return slog.Default()
	}
	return l.logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.log().Error(fmt.Sprintf("badger: "+format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.log().Warn(fmt.Sprintf("badger: "+format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.log().Debug(fmt.Sprintf("badger: "+format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.log().Debug(fmt.Sprintf("badger: "+format, args...))
}
