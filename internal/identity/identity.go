// Package identity models the nullable user identity supplied by the
// external auth boundary. CareLink never authenticates users itself; an
// identity only picks the conversation storage namespace and fills display
// fields.
package identity

// Identity describes an authenticated user. The zero value is not used to
// represent anonymity; a nil *Identity is.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

const (
	chatKeyPrefix = "carelink-chat-history"
	anonSuffix    = "anon"
)

// ChatStorageKey derives the durable-storage key for an identity's
// conversation history. Pure and total: a nil identity or one without an ID
// maps to the anonymous namespace.
func ChatStorageKey(id *Identity) string {
	if id == nil || id.ID == "" {
		return chatKeyPrefix + "-" + anonSuffix
	}
	return chatKeyPrefix + "-" + id.ID
}
