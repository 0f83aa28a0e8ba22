package store

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"taskboard/database"
	"taskboard/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), database.NewGormConfig(log))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

type fixture struct {
	db       *gorm.DB
	creds    *Credentials
	projects *Projects
	tasks    *Tasks
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	return &fixture{
		db:       db,
		creds:    NewCredentials(db, 40),
		projects: NewProjects(db),
		tasks:    NewTasks(db),
	}
}

func (f *fixture) user(t *testing.T, email string) models.UserView {
	t.Helper()
	u, err := f.creds.Register(context.Background(), RegisterInput{
		Name:     models.Some("Test User"),
		Email:    models.Some(email),
		Password: models.Some("secret"),
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) project(t *testing.T, userID uint, title string) models.ProjectView {
	t.Helper()
	p, err := f.projects.Create(context.Background(), userID, ProjectInput{Title: models.Some(title)})
	require.NoError(t, err)
	return p
}

func (f *fixture) task(t *testing.T, userID, projectID uint, body string) models.TaskView {
	t.Helper()
	in := decode[TaskInput](t, body)
	in.ProjectID = models.Some(projectID)
	task, err := f.tasks.Create(context.Background(), userID, in)
	require.NoError(t, err)
	return task
}

func decode[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}
