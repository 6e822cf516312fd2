package conversation

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/carelink-ai/carelink/internal/assessment"
	"github.com/carelink-ai/carelink/internal/identity"
	"github.com/carelink-ai/carelink/internal/storage"
)

func setupKV(t *testing.T) *storage.KV {
	kv, err := storage.OpenInMemory(zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestFreshNamespaceSeedsWelcome(t *testing.T) {
	store := NewStore(setupKV(t), zap.NewNop())

	msgs := store.Messages(nil)
	require.Len(t, msgs, 1)
	assert.Equal(t, WelcomeText, msgs[0].Text)
	assert.False(t, msgs[0].IsUser)
	assert.Equal(t, assessment.SeverityLow, msgs[0].Severity)
	assert.Equal(t, "Calm", msgs[0].Mood)
}

func TestAppendOrdersOldestFirst(t *testing.T) {
	store := NewStore(setupKV(t), zap.NewNop())

	require.NoError(t, store.Append(nil, UserMessage("I feel dizzy")))
	require.NoError(t, store.Append(nil, AssistantMessage(&assessment.HealthAssessment{
		Response: "That sounds uncomfortable.", Severity: "low", Mood: "Calm",
		Recommendations: []string{"Sit down"},
	})))

	msgs := store.Messages(nil)
	require.Len(t, msgs, 3)
	assert.Equal(t, WelcomeText, msgs[0].Text)
	assert.Equal(t, "I feel dizzy", msgs[1].Text)
	assert.True(t, msgs[1].IsUser)
	assert.Equal(t, "That sounds uncomfortable.", msgs[2].Text)
	assert.False(t, msgs[2].IsUser)
}

func TestAssistantMessageCarriesAssessmentFields(t *testing.T) {
	msg := AssistantMessage(&assessment.HealthAssessment{
		Response:        "This could be a heart attack.",
		Severity:        assessment.SeverityHigh,
		Mood:            "Urgent",
		Recommendations: []string{"Call emergency services", "Sit down and stay calm"},
		Emergency:       true,
	})

	assert.Equal(t, assessment.SeverityHigh, msg.Severity)
	assert.True(t, msg.Emergency)
	assert.NotEmpty(t, msg.ID)
}

func TestClearIsIdempotent(t *testing.T) {
	kv := setupKV(t)
	store := NewStore(kv, zap.NewNop())

	require.NoError(t, store.Append(nil, UserMessage("hello")))
	require.NoError(t, store.Clear(nil))

	first := store.Messages(nil)
	require.Len(t, first, 1)
	assert.Equal(t, WelcomeText, first[0].Text)

	require.NoError(t, store.Clear(nil))
	second := store.Messages(nil)
	require.Len(t, second, 1)
	assert.Equal(t, WelcomeText, second[0].Text)

	// Durable entry reflects exactly the single seeded element
	data, err := kv.Get(identity.ChatStorageKey(nil))
	require.NoError(t, err)
	var stored []ChatMessage
	require.NoError(t, json.Unmarshal(data, &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, WelcomeText, stored[0].Text)
}

func TestIdentityNamespacesAreIsolated(t *testing.T) {
	store := NewStore(setupKV(t), zap.NewNop())

	require.NoError(t, store.Append(nil, UserMessage("anonymous question")))

	user := &identity.Identity{ID: "uid-7", DisplayName: "Sam"}

	// Authenticated namespace starts fresh; anonymous messages must not leak
	for _, msg := range store.Messages(user) {
		assert.NotEqual(t, "anonymous question", msg.Text)
	}

	require.NoError(t, store.Append(user, UserMessage("signed-in question")))

	// Anonymous history is unchanged
	texts := []string{}
	for _, msg := range store.Messages(nil) {
		texts = append(texts, msg.Text)
	}
	assert.Contains(t, texts, "anonymous question")
	assert.NotContains(t, texts, "signed-in question")

	// And the authenticated one only holds its own
	texts = texts[:0]
	for _, msg := range store.Messages(user) {
		texts = append(texts, msg.Text)
	}
	assert.Contains(t, texts, "signed-in question")
	assert.NotContains(t, texts, "anonymous question")
}

func TestInterleavedAppendsStayInTheirNamespace(t *testing.T) {
	store := NewStore(setupKV(t), zap.NewNop())
	user := &identity.Identity{ID: "user-x"}

	// A read of the other namespace between an identity's two appends must
	// not redirect the second append.
	require.NoError(t, store.Append(nil, UserMessage("anon turn")))
	_ = store.Messages(user)
	require.NoError(t, store.Append(nil, AssistantMessage(&assessment.HealthAssessment{
		Response: "This could be a heart attack.", Severity: "high", Mood: "Urgent",
		Recommendations: []string{"Call emergency services"},
	})))

	for _, msg := range store.Messages(user) {
		assert.NotEqual(t, "This could be a heart attack.", msg.Text)
		assert.NotEqual(t, "anon turn", msg.Text)
	}

	texts := []string{}
	for _, msg := range store.Messages(nil) {
		texts = append(texts, msg.Text)
	}
	assert.Contains(t, texts, "anon turn")
	assert.Contains(t, texts, "This could be a heart attack.")
}

func TestConcurrentAppendsAcrossIdentities(t *testing.T) {
	store := NewStore(setupKV(t), zap.NewNop())
	userA := &identity.Identity{ID: "uid-a"}
	userB := &identity.Identity{ID: "uid-b"}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			store.Append(userA, UserMessage(fmt.Sprintf("a-%d", n)))
		}(i)
		go func(n int) {
			defer wg.Done()
			store.Append(userB, UserMessage(fmt.Sprintf("b-%d", n)))
		}(i)
	}
	wg.Wait()

	// welcome + 20 per namespace, nothing crossed over
	msgsA := store.Messages(userA)
	require.Len(t, msgsA, 21)
	for _, msg := range msgsA[1:] {
		assert.Equal(t, byte('a'), msg.Text[0])
	}

	msgsB := store.Messages(userB)
	require.Len(t, msgsB, 21)
	for _, msg := range msgsB[1:] {
		assert.Equal(t, byte('b'), msg.Text[0])
	}
}

func TestPersistedAcrossReload(t *testing.T) {
	kv := setupKV(t)

	store := NewStore(kv, zap.NewNop())
	require.NoError(t, store.Append(nil, UserMessage("remember me")))

	reloaded := NewStore(kv, zap.NewNop())
	msgs := reloaded.Messages(nil)
	require.Len(t, msgs, 2)
	assert.Equal(t, "remember me", msgs[1].Text)
}

func TestCorruptConversationSeedsFresh(t *testing.T) {
	kv := setupKV(t)
	require.NoError(t, kv.Set(identity.ChatStorageKey(nil), []byte("[broken")))

	store := NewStore(kv, zap.NewNop())
	msgs := store.Messages(nil)
	require.Len(t, msgs, 1)
	assert.Equal(t, WelcomeText, msgs[0].Text)
}
