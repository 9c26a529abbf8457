package repository_test

import (
	"context"
	"testing"
	"time"

	"tracker/internal/model"
	"tracker/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository_Create(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewNotificationRepository(gormDB)

	id := uuid.New()
	n := &model.Notification{
		UserID:  uuid.New(),
		Title:   "New Task Created",
		Content: `You created task "Write docs"`,
		Type:    model.NotificationTaskCreated,
	}
	n.SetRelated(model.TaskRef(uuid.New()))

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id.String()))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), n)

	assert.NoError(t, err)
	assert.Equal(t, id, n.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_ListByUser(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewNotificationRepository(gormDB)

	userID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "notifications" WHERE user_id = `).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))
	mock.ExpectQuery(`SELECT \* FROM "notifications" WHERE user_id = .* ORDER BY created_at DESC LIMIT .* OFFSET`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "content", "type", "read", "created_at"}).
			AddRow(uuid.New().String(), userID.String(), "t", "c", "system", false, now))

	items, total, err := repo.ListByUser(context.Background(), userID, 2, 20)

	require.NoError(t, err)
	assert.Equal(t, int64(21), total)
	assert.Len(t, items, 1)
	assert.Equal(t, model.NotificationSystem, items[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_MarkRead_ForeignRow(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewNotificationRepository(gormDB)

	// Строка принадлежит другому пользователю: UPDATE ничего не затрагивает
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "notifications" SET "read"=.* WHERE id = .* AND user_id = `).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.MarkRead(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, repository.ErrNotificationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_MarkAllRead(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewNotificationRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "notifications" SET "read"=.* WHERE user_id = .* AND read = `).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	n, err := repo.MarkAllRead(context.Background(), uuid.New())

	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_DeleteAll(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewNotificationRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "notifications" WHERE user_id = `).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectCommit()

	n, err := repo.DeleteAll(context.Background(), uuid.New())

	assert.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
