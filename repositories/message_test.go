package repositories

import (
	apperr "echobot/errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openTestRepository(t *testing.T) *MessageRepository {
	t.Helper()
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	repository, err := NewMessageRepository(db, slog.Default())
	req.NoError(err)
	t.Cleanup(func() { _ = repository.Close() })
	return repository
}

func Test_Append_Assigns_Increasing_IDs(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t)

	var previous uint64
	for _, text := range []string{"first", "second", "third"} {
		id, err := repository.Append("alice", text)
		req.NoError(err)
		req.Greater(id, previous)
		previous = id
	}
}

func Test_Append_Rejects_Blank_Text(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := repository.Append("alice", text)
		req.ErrorIs(err, apperr.ErrEmptyMessage)
	}

	count, err := repository.Count("alice")
	req.NoError(err)
	req.Zero(count)
}

func Test_Count_Per_User(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t)

	for i := 0; i < 4; i++ {
		_, err := repository.Append("alice", fmt.Sprintf("message %d", i))
		req.NoError(err)
	}
	_, err := repository.Append("bob", "only one")
	req.NoError(err)

	aliceCount, err := repository.Count("alice")
	req.NoError(err)
	req.Equal(4, aliceCount)

	bobCount, err := repository.Count("bob")
	req.NoError(err)
	req.Equal(1, bobCount)

	unknownCount, err := repository.Count("clara")
	req.NoError(err)
	req.Zero(unknownCount)
}

func Test_Recent_Newest_First(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t)

	var ids []uint64
	for _, text := range []string{"one", "two", "three"} {
		id, err := repository.Append("alice", text)
		req.NoError(err)
		ids = append(ids, id)
	}

	messages, err := repository.Recent("alice", 5)
	req.NoError(err)
	req.Len(messages, 3)
	req.Equal(ids[2], messages[0].ID)
	req.Equal("three", messages[0].Text)
	req.Equal(ids[1], messages[1].ID)
	req.Equal("two", messages[1].Text)
	req.Equal(ids[0], messages[2].ID)
	req.Equal("one", messages[2].Text)
}

func Test_Recent_Honors_Limit(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t)

	for i := 1; i <= 7; i++ {
		_, err := repository.Append("alice", fmt.Sprintf("message %d", i))
		req.NoError(err)
	}

	messages, err := repository.Recent("alice", 5)
	req.NoError(err)
	req.Len(messages, 5)
	req.Equal("message 7", messages[0].Text)
	req.Equal("message 3", messages[4].Text)
}

func Test_Recent_Unknown_User_Is_Empty(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t)

	messages, err := repository.Recent("nobody", 5)
	req.NoError(err)
	req.Empty(messages)
}

func Test_Recent_Requires_Positive_Limit(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t)

	_, err := repository.Recent("alice", 0)
	req.Error(err)
	_, err = repository.Recent("alice", -1)
	req.Error(err)
}

func Test_Users_Are_Isolated(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t)

	_, err := repository.Append("alice", "hers")
	req.NoError(err)
	_, err = repository.Append("bob", "his")
	req.NoError(err)

	messages, err := repository.Recent("alice", 5)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal("hers", messages[0].Text)
}

func Test_Identity_Containing_Separator_Stays_Isolated(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t)

	// "alice:evil" must never bleed into "alice"'s prefix scans.
	_, err := repository.Append("alice", "hers")
	req.NoError(err)
	_, err = repository.Append("alice:evil", "not hers")
	req.NoError(err)

	count, err := repository.Count("alice")
	req.NoError(err)
	req.Equal(1, count)

	messages, err := repository.Recent("alice", 5)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal("hers", messages[0].Text)

	count, err = repository.Count("alice:evil")
	req.NoError(err)
	req.Equal(1, count)

	messages, err = repository.Recent("alice:evil", 5)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal("not hers", messages[0].Text)
}
