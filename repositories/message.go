//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"echobot/domain"
	apperr "echobot/errors"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// sequenceBandwidth is the number of ids a Sequence leases per disk write.
// Restarting the process may skip up to this many ids; ids stay strictly
// increasing either way.
const sequenceBandwidth = 100

type IMessageRepository interface {
	Append(userID, text string) (uint64, error)
	Count(userID string) (int, error)
	Recent(userID string, limit int) ([]domain.StoredMessage, error)
}

type MessageRepository struct {
	db  *badger.DB
	seq *badger.Sequence
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) (*MessageRepository, error) {
	seq, err := db.GetSequence([]byte("seq:msg"), sequenceBandwidth)
	if err != nil {
		return nil, storeErr(err)
	}
	return &MessageRepository{db: db, seq: seq, log: log}, nil
}

// Close releases the unused part of the id lease back to the store.
func (r *MessageRepository) Close() error {
	return r.seq.Release()
}

// Append persists a message in BadgerDB under an id taken from a persistent
// sequence. The key is formatted as "msg:{user_hex}:{id_padded}" so that:
//  1. A prefix scan on "msg:{user_hex}:" selects exactly one user's history.
//     The user component is hex-encoded: identities come from the transport
//     and may contain the ":" separator, which must never bleed into another
//     identity's prefix.
//  2. The 19-digit zero padding makes lexicographical order equal insertion
//     order, so a reverse iteration yields newest-first.
//
// Empty or whitespace-only text is rejected with ErrEmptyMessage rather than
// silently stored; an id is never burned for a blank record that would skew
// Count.
func (r *MessageRepository) Append(userID, text string) (uint64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, apperr.ErrEmptyMessage
	}
	id, err := r.seq.Next()
	if err != nil {
		return 0, storeErr(err)
	}
	// The first sequence value is 0; user-facing ids start at 1.
	id++
	key := messageKey(userID, id)
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, []byte(text))
	})
	if err != nil {
		return 0, storeErr(err)
	}
	r.log.Debug("Message stored", "user", userID, "id", id)
	return id, nil
}

// Count returns the number of messages ever appended for the user,
// 0 for unknown users. Key-only scan, values are never touched.
func (r *MessageRepository) Count(userID string) (int, error) {
	var count int
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte(userPrefix(userID))
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, storeErr(err)
	}
	return count, nil
}

// Recent retrieves up to limit messages for the user, most-recent-first.
// Thanks to the padded id in the key, a reverse prefix scan starting past the
// highest possible id walks the history newest to oldest.
func (r *MessageRepository) Recent(userID string, limit int) ([]domain.StoredMessage, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	messages := make([]domain.StoredMessage, 0, limit)
	err := r.db.View(func(txn *badger.Txn) error {
		prefixStr := userPrefix(userID)
		prefix := []byte(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek to the newest possible position msg:{user_hex}:9999999999999999999
		// then walk backwards through the real keys.
		seekKey := append(prefix, []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if len(messages) == limit {
				break
			}
			item := it.Item()
			id, err := strconv.ParseUint(string(item.Key()[len(prefixStr):]), 10, 64)
			if err != nil {
				return err
			}
			err = item.Value(func(value []byte) error {
				messages = append(messages, domain.StoredMessage{
					ID:     id,
					UserID: userID,
					Text:   string(value),
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return messages, nil
}

// userPrefix hex-encodes the identity so the ":" separator stays
// unambiguous whatever characters the transport allows in a chat id.
func userPrefix(userID string) string {
	return fmt.Sprintf("msg:%s:", hex.EncodeToString([]byte(userID)))
}

func messageKey(userID string, id uint64) []byte {
	return []byte(fmt.Sprintf("%s%019d", userPrefix(userID), id))
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %w", apperr.ErrStoreUnavailable, err)
}
