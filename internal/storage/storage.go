// Package storage provides the durable local key-value store shared by the
// record and conversation stores. Keys are strings, values are JSON blobs;
// each consumer owns a disjoint key namespace.
package storage

import (
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/carelink-ai/carelink/internal/config"
	apperrors "github.com/carelink-ai/carelink/internal/errors"
)

// KV wraps BadgerDB behind the string-key/JSON-value interface the stores
// need
type KV struct {
	db     *badger.DB
	cron   *cron.Cron
	logger *zap.Logger
}

// Open opens (or creates) the store at the configured path and schedules
// periodic value-log garbage collection.
func Open(cfg config.StorageConfig, logger *zap.Logger) (*KV, error) {
	opts := badger.DefaultOptions(cfg.BadgerPath).
		WithLogger(nil).
		WithNumVersionsToKeep(1).
		WithCompactL0OnClose(true).
		WithValueLogFileSize(16 << 20).
		WithMemTableSize(16 << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrStoreRead.Code, "failed to open badger")
	}

	kv := &KV{db: db, logger: logger}

	schedule := cfg.GCSchedule
	if schedule == "" {
		schedule = "@every 30m"
	}

	kv.cron = cron.New()
	if _, err := kv.cron.AddFunc(schedule, kv.runGC); err != nil {
		db.Close()
		return nil, apperrors.Wrap(err, apperrors.ErrConfigInvalid.Code, "invalid gc schedule")
	}
	kv.cron.Start()

	return kv, nil
}

// OpenInMemory opens an ephemeral store for tests
func OpenInMemory(logger *zap.Logger) (*KV, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &KV{db: db, logger: logger}, nil
}

func (s *KV) runGC() {
	// Badger wants RunValueLogGC called in a loop until it reports nothing
	// left to collect
	for {
		if err := s.db.RunValueLogGC(0.5); err != nil {
			if !errors.Is(err, badger.ErrNoRewrite) {
				s.logger.Debug("Value log GC stopped", zap.Error(err))
			}
			return
		}
	}
}

// Get returns the value stored under key, or ErrNotFound
func (s *KV) Get(key string) ([]byte, error) {
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			val = append([]byte{}, v...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrStoreRead.Code, apperrors.ErrStoreRead.Message)
	}
	return val, nil
}

// Set stores value under key
func (s *KV) Set(key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrStoreWrite.Code, apperrors.ErrStoreWrite.Message)
	}
	return nil
}

// Delete removes key; deleting a missing key is not an error
func (s *KV) Delete(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrStoreWrite.Code, apperrors.ErrStoreWrite.Message)
	}
	return nil
}

// Close stops maintenance and closes the store
func (s *KV) Close() error {
	if s.cron != nil {
		s.cron.Stop()
	}
	return s.db.Close()
}
