package repository_test

import (
	"context"
	"testing"

	"tracker/internal/model"
	"tracker/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTaskRepository_GetByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE id = `).
		WillReturnError(gorm.ErrRecordNotFound)

	task, err := repo.GetByID(context.Background(), uuid.New())

	assert.Nil(t, task)
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_UpdatePriority(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tasks" SET "priority"=.*WHERE id = `).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdatePriority(context.Background(), uuid.New(), model.PriorityMustBeDone)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Delete_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "tasks" WHERE id = `).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_MemberIDs(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewProjectRepository(gormDB)

	assignee, both, creatorOnly := uuid.New(), uuid.New(), uuid.New()
	mock.ExpectQuery(`SELECT DISTINCT .*assignee_id.* FROM "tasks" WHERE project_id = .* AND assignee_id IS NOT NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"assignee_id"}).AddRow(assignee.String()).AddRow(both.String()))
	mock.ExpectQuery(`SELECT DISTINCT .*creator_id.* FROM "tasks" WHERE project_id = .* AND creator_id IS NOT NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"creator_id"}).AddRow(both.String()).AddRow(creatorOnly.String()))

	ids, err := repo.MemberIDs(context.Background(), uuid.New())

	// создатель задачи без назначений тоже участник проекта
	assert.NoError(t, err)
	assert.Equal(t, []uuid.UUID{assignee, both, creatorOnly}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
