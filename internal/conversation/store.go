// Package conversation implements the persisted chat history, scoped per
// identity so histories never bleed across sign-in changes.
package conversation

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carelink-ai/carelink/internal/assessment"
	apperrors "github.com/carelink-ai/carelink/internal/errors"
	"github.com/carelink-ai/carelink/internal/identity"
	"github.com/carelink-ai/carelink/internal/metrics"
	"github.com/carelink-ai/carelink/internal/storage"
)

// WelcomeText seeds every fresh conversation
const WelcomeText = "Hello! I'm your CareLink AI assistant. I'm here to help you with any health concerns you might have. Please describe what you're experiencing, and I'll provide guidance and assess the severity of your situation."

// ChatMessage is one chat turn. Messages are never mutated after creation;
// assistant turns carry the assessment fields for rendering.
type ChatMessage struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	IsUser    bool      `json:"isUser"`
	Timestamp time.Time `json:"timestamp"`

	Severity          string   `json:"severity,omitempty"`
	Mood              string   `json:"mood,omitempty"`
	Recommendations   []string `json:"recommendations,omitempty"`
	FollowUpQuestions []string `json:"followUpQuestions,omitempty"`
	Emergency         bool     `json:"emergency,omitempty"`
}

// AssistantMessage builds a chat turn from an assessment
func AssistantMessage(a *assessment.HealthAssessment) ChatMessage {
	return ChatMessage{
		ID:                uuid.NewString(),
		Text:              a.Response,
		IsUser:            false,
		Timestamp:         time.Now(),
		Severity:          a.Severity,
		Mood:              a.Mood,
		Recommendations:   a.Recommendations,
		FollowUpQuestions: a.FollowUpQuestions,
		Emergency:         a.Emergency,
	}
}

// UserMessage builds a chat turn from user input
func UserMessage(text string) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Text:      text,
		IsUser:    true,
		Timestamp: time.Now(),
	}
}

// Store holds the oldest-first message sequences, one per identity
// namespace. Every operation takes the identity it acts for and derives the
// storage key from it on that call, so concurrent requests for different
// identities can never write into each other's namespace. A single mutex
// serializes the read-modify-persist cycle.
type Store struct {
	kv      *storage.KV
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu sync.Mutex
}

// NewStore creates the conversation store over durable storage
func NewStore(kv *storage.KV, logger *zap.Logger) *Store {
	return &Store{
		kv:      kv,
		logger:  logger,
		metrics: metrics.Default(),
	}
}

func seeded() []ChatMessage {
	return []ChatMessage{{
		ID:        uuid.NewString(),
		Text:      WelcomeText,
		IsUser:    false,
		Timestamp: time.Now(),
		Severity:  assessment.SeverityLow,
		Mood:      "Calm",
	}}
}

// loadFor reads the sequence stored for an identity. Missing or corrupt data
// yields a fresh seeded conversation; corrupt data is logged, not fatal.
func (s *Store) loadFor(id *identity.Identity) []ChatMessage {
	key := identity.ChatStorageKey(id)

	data, err := s.kv.Get(key)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("Failed to load conversation, seeding fresh",
				zap.String("key", key), zap.Error(err))
		}
		return seeded()
	}

	var messages []ChatMessage
	if err := json.Unmarshal(data, &messages); err != nil {
		s.logger.Warn("Corrupt conversation in storage, seeding fresh",
			zap.String("key", key), zap.Error(err))
		return seeded()
	}
	if len(messages) == 0 {
		return seeded()
	}

	return messages
}

// Append adds a message to the end of the identity's sequence and persists
// the full sequence under that identity's key
func (s *Store) Append(id *identity.Identity, msg ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	updated := append(s.loadFor(id), msg)
	if err := s.persist(id, updated); err != nil {
		return err
	}

	s.publishSize(len(updated))
	return nil
}

func (s *Store) persist(id *identity.Identity, messages []ChatMessage) error {
	data, err := json.Marshal(messages)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrStoreWrite.Code, "failed to serialize conversation")
	}
	return s.kv.Set(identity.ChatStorageKey(id), data)
}

// Clear resets the identity's conversation to a single seeded welcome
// message, evicting the prior durable entry first. Idempotent.
func (s *Store) Clear(id *identity.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(identity.ChatStorageKey(id)); err != nil {
		return err
	}

	fresh := seeded()
	if err := s.persist(id, fresh); err != nil {
		return err
	}

	s.publishSize(len(fresh))
	return nil
}

// Messages returns the identity's sequence, oldest first. A namespace with
// nothing stored yet yields the seeded welcome conversation.
func (s *Store) Messages(id *identity.Identity) []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadFor(id)
}

// Len returns the number of messages in the identity's sequence
func (s *Store) Len(id *identity.Identity) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.loadFor(id))
}

func (s *Store) publishSize(n int) {
	s.metrics.SetStoreEntries("conversation", n)
}
