package repository_test

import (
	"context"
	"testing"

	"tracker/internal/model"
	"tracker/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	assert.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_Create(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewUserRepository(gormDB)

	user := &model.User{ID: uuid.New(), Email: "ann@example.com", HashedPassword: "x", Name: "Ann Lee", Role: "member"}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users" .* RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(user.ID.String()))
	mock.ExpectCommit()

	assert.NoError(t, repo.Create(context.Background(), user))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name     string
		expect   func(q *sqlmock.ExpectedQuery)
		wantUser bool
		wantErr  bool
	}{
		{
			name: "found",
			expect: func(q *sqlmock.ExpectedQuery) {
				q.WillReturnRows(sqlmock.NewRows([]string{"id", "email", "hashed_password", "name", "role"}).
					AddRow(userID.String(), "ann@example.com", "x", "Ann Lee", "member"))
			},
			wantUser: true,
		},
		{
			// отсутствие пользователя не ошибка
			name:   "missing",
			expect: func(q *sqlmock.ExpectedQuery) { q.WillReturnError(gorm.ErrRecordNotFound) },
		},
		{
			name:    "driver failure",
			expect:  func(q *sqlmock.ExpectedQuery) { q.WillReturnError(assert.AnError) },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gormDB, mock := setupMockDB(t)
			repo := repository.NewUserRepository(gormDB)
			tt.expect(mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = .* LIMIT`))

			user, err := repo.FindByEmail(context.Background(), "ann@example.com")

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.wantUser {
				require.NotNil(t, user)
				assert.Equal(t, userID, user.ID)
				assert.Equal(t, "Ann Lee", user.Name)
			} else {
				assert.Nil(t, user)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByID_Missing(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewUserRepository(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = `).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	user, err := repo.GetByID(context.Background(), uuid.New())

	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_List(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewUserRepository(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "users" ORDER BY name`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(uuid.NewString(), "Ann Lee").
			AddRow(uuid.NewString(), "Bob Ray"))

	users, err := repo.List(context.Background())

	assert.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Bob Ray", users[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SampleIDs(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	a, b := uuid.New(), uuid.New()
	mock.ExpectQuery(`SELECT "id" FROM "users" WHERE id <> .* ORDER BY random\(\) LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(a.String()).AddRow(b.String()))

	ids, err := userRepo.SampleIDs(context.Background(), uuid.New(), 2)

	assert.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Exists(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE id = `).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := userRepo.Exists(context.Background(), uuid.New())

	assert.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
