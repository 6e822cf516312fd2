// Package records implements the persisted health record store: an
// append-only, newest-first collection of timestamped vitals entries.
package records

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/carelink-ai/carelink/internal/assessment"
	apperrors "github.com/carelink-ai/carelink/internal/errors"
	"github.com/carelink-ai/carelink/internal/metrics"
	"github.com/carelink-ai/carelink/internal/storage"
)

// StorageKey is the fixed durable-storage key for health records
const StorageKey = "health-records"

// RecordAssessment is the subset of a HealthAssessment kept with a record
type RecordAssessment struct {
	Response        string   `json:"response"`
	Severity        string   `json:"severity"`
	Recommendations []string `json:"recommendations"`
	Emergency       bool     `json:"emergency,omitempty"`
}

// HealthRecord is one vitals submission. Records are never mutated after
// creation.
type HealthRecord struct {
	ID         string                `json:"id"`
	Timestamp  time.Time             `json:"timestamp"`
	Vitals     assessment.VitalSigns `json:"vitals"`
	Notes      string                `json:"notes,omitempty"`
	Assessment *RecordAssessment     `json:"assessment,omitempty"`
}

// Store holds health records newest-first with write-through persistence.
// Mutations hold the lock across the in-memory update and the durable write,
// so readers never observe a partially applied state.
type Store struct {
	kv      *storage.KV
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu      sync.RWMutex
	records []HealthRecord
}

// NewStore loads existing records from durable storage. Corrupt stored data
// is logged and treated as empty; the corrupt value is left in place until
// the next successful mutation overwrites it.
func NewStore(kv *storage.KV, logger *zap.Logger) *Store {
	s := &Store{
		kv:      kv,
		logger:  logger,
		metrics: metrics.Default(),
	}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := s.kv.Get(StorageKey)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("Failed to load health records, starting empty", zap.Error(err))
		}
		return
	}

	var records []HealthRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("Corrupt health records in storage, starting empty", zap.Error(err))
		return
	}

	s.records = records
	s.metrics.SetStoreEntries(StorageKey, len(records))
}

// NewRecordID returns a unique, monotonic-ish token derived from the current
// timestamp
func NewRecordID() string {
	suffix := make([]byte, 4)
	rand.Read(suffix)
	return fmt.Sprintf("rec_%d_%s", time.Now().UnixNano(), hex.EncodeToString(suffix))
}

// Add prepends a record and persists the full sequence. Missing ID and
// timestamp are filled in.
func (s *Store) Add(rec HealthRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = NewRecordID()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	updated := make([]HealthRecord, 0, len(s.records)+1)
	updated = append(updated, rec)
	updated = append(updated, s.records...)

	if err := s.persist(updated); err != nil {
		// In-memory state is untouched on a failed write
		return err
	}

	s.records = updated
	s.metrics.SetStoreEntries(StorageKey, len(updated))
	return nil
}

func (s *Store) persist(records []HealthRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrStoreWrite.Code, "failed to serialize health records")
	}
	return s.kv.Set(StorageKey, data)
}

// Latest returns the newest record, or nil if the store is empty
func (s *Store) Latest() *HealthRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return nil
	}
	rec := s.records[0]
	return &rec
}

// All returns a snapshot of the sequence, newest first
func (s *Store) All() []HealthRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]HealthRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of records
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Reset clears the store and its durable entry
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(StorageKey); err != nil {
		return err
	}

	s.records = nil
	s.metrics.SetStoreEntries(StorageKey, 0)
	return nil
}
