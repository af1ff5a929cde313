package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitapp/orbit-backend/internal/domain"
	"github.com/orbitapp/orbit-backend/internal/repository"
	"github.com/orbitapp/orbit-backend/internal/repository/postgres"
)

func setupChatRepo(t *testing.T) (repository.ChatRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return postgres.NewChatRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestEnsureConversationCreates(t *testing.T) {
	ctx := context.Background()
	repo, mock := setupChatRepo(t)

	mock.ExpectBegin()
	// Canonical pair order: "alice" < "bob" regardless of caller order.
	mock.ExpectExec(`INSERT INTO conversations`).
		WithArgs(sqlmock.AnyArg(), "alice", "bob").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT id FROM conversations`).
		WithArgs("alice", "bob").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("conv-1"))
	mock.ExpectExec(`INSERT INTO conversation_members`).
		WithArgs("conv-1", "alice", "bob").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	id, err := repo.EnsureConversation(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, "conv-1", id)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendMessageTransaction(t *testing.T) {
	ctx := context.Background()
	repo, mock := setupChatRepo(t)

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO messages`).
		WithArgs("conv-1", "alice", "hello there").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now))
	mock.ExpectExec(`UPDATE conversations`).
		WithArgs("hello there", "alice", "conv-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE conversation_members`).
		WithArgs("alice", "conv-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	msg, err := repo.AppendMessage(ctx, "conv-1", "alice", "hello there", "hello there")
	require.NoError(t, err)
	assert.Equal(t, int64(7), msg.ID)
	assert.Equal(t, "alice", msg.SenderID)
	assert.Equal(t, "hello there", msg.Body)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendMessageMissingConversationRollsBack(t *testing.T) {
	ctx := context.Background()
	repo, mock := setupChatRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO messages`).
		WithArgs("conv-missing", "alice", "hi").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))
	mock.ExpectExec(`UPDATE conversations`).
		WithArgs("hi", "alice", "conv-missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.AppendMessage(ctx, "conv-missing", "alice", "hi", "hi")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetConversationNotFound(t *testing.T) {
	ctx := context.Background()
	repo, mock := setupChatRepo(t)

	mock.ExpectQuery(`SELECT id, user1_id, user2_id`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetConversation(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkReadUnknownConversation(t *testing.T) {
	ctx := context.Background()
	repo, mock := setupChatRepo(t)

	mock.ExpectExec(`UPDATE conversation_members`).
		WithArgs("ghost", "alice").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkRead(ctx, "alice", "ghost")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListSummariesMapsPeer(t *testing.T) {
	ctx := context.Background()
	repo, mock := setupChatRepo(t)

	now := time.Now()
	preview := "see you at 9"
	mock.ExpectQuery(`SELECT c.id AS conversation_id`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"conversation_id", "peer_id", "last_message", "updated_at", "is_read"}).
			AddRow("conv-1", "bob", preview, now, false))

	summaries, err := repo.ListSummaries(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "bob", summaries[0].PeerID)
	assert.Equal(t, preview, *summaries[0].LastMessage)
	assert.False(t, summaries[0].Read)

	require.NoError(t, mock.ExpectationsWereMet())
}
