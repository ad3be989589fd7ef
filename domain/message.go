package domain

// StoredMessage is one persisted (user, text) record.
// IDs are assigned by the store, strictly increasing in insertion order,
// and never mutated or reused.
type StoredMessage struct {
	ID     uint64
	UserID string
	Text   string
}
