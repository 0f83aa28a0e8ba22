package store

import (
	"context"
	"errors"
	"io"
	"testing"

	"taskboard/apierror"
	"taskboard/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), database.NewGormConfig(log))
	require.NoError(t, err)
	return db, mock
}

func TestStorageFailuresPropagate(t *testing.T) {
	boom := errors.New("connection reset by peer")

	t.Run("ListProjects", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT .* FROM "projects"`).WillReturnError(boom)

		_, err := NewProjects(db).List(context.Background(), 1)
		require.Error(t, err)
		assert.True(t, apierror.IsKind(err, apierror.KindStorage))
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 500, apierror.From(err).Status())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetTask", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT tasks\.\* FROM "tasks" JOIN projects`).WillReturnError(boom)

		_, err := NewTasks(db).Get(context.Background(), 1, 1)
		assert.True(t, apierror.IsKind(err, apierror.KindStorage))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Authenticate", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT .* FROM "users" WHERE token = \$1`).WillReturnError(boom)

		_, err := NewCredentials(db, 40).Authenticate(context.Background(), "Bearer abc")
		assert.True(t, apierror.IsKind(err, apierror.KindStorage))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CreateTaskRollsBack", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT count\(\*\) FROM "projects"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "tasks"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(7, "pending"))
		mock.ExpectQuery(`INSERT INTO "task_tags"`).WillReturnError(boom)
		mock.ExpectRollback()

		in := decode[TaskInput](t, `{"project_id":1,"title":"t","tags":["urgent"]}`)
		_, err := NewTasks(db).Create(context.Background(), 1, in)
		assert.True(t, apierror.IsKind(err, apierror.KindStorage))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
