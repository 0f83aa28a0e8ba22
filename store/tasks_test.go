package store

import (
	"context"
	"testing"

	"taskboard/apierror"
	"taskboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskCreateWithTagsAndLinks(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "a@example.com")
	p := f.project(t, u.ID, "P1")

	task := f.task(t, u.ID, p.ID, `{
		"title": "write docs",
		"tags": ["urgent", "docs"],
		"links": ["not an object", 7, null, {"title": "docs", "url": "https://example.com/docs"}, {"url": "https://example.com"}]
	}`)

	assert.Equal(t, p.ID, task.ProjectID)
	assert.Equal(t, models.StatusPending, task.Status)
	assert.Equal(t, []string{"urgent", "docs"}, task.Tags)
	require.Len(t, task.TagMeta, 2)
	assert.Equal(t, "urgent", task.TagMeta[0].Tag)
	assert.NotZero(t, task.TagMeta[0].ID)

	require.Len(t, task.Links, 2)
	require.NotNil(t, task.Links[0].Title)
	assert.Equal(t, "docs", *task.Links[0].Title)
	assert.Nil(t, task.Links[1].Title)
	assert.Equal(t, "https://example.com", task.Links[1].URL)
	assert.Empty(t, task.Images)
	assert.Empty(t, task.ImageMeta)
}

func TestTaskCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@example.com")
	p := f.project(t, u.ID, "P1")

	_, err := f.tasks.Create(ctx, u.ID, decode[TaskInput](t, `{}`))
	assert.Equal(t, []string{"project_id", "title"}, apierror.From(err).Fields)

	in := decode[TaskInput](t, `{"title":"t","status":"archived"}`)
	in.ProjectID = models.Some(p.ID)
	_, err = f.tasks.Create(ctx, u.ID, in)
	assert.True(t, apierror.HasCode(err, apierror.CodeInvalidStatus))
	assert.Equal(t, 422, apierror.From(err).Status())

	in = decode[TaskInput](t, `{"title":"t","deadline":"next tuesday"}`)
	in.ProjectID = models.Some(p.ID)
	_, err = f.tasks.Create(ctx, u.ID, in)
	assert.True(t, apierror.HasCode(err, apierror.CodeInvalidDeadline))

	in = decode[TaskInput](t, `{"title":"t","links":[{"title":"no url"}]}`)
	in.ProjectID = models.Some(p.ID)
	_, err = f.tasks.Create(ctx, u.ID, in)
	assert.Equal(t, []string{"url"}, apierror.From(err).Fields)

	in = decode[TaskInput](t, `{"title":"t","tags":["ok", ""]}`)
	in.ProjectID = models.Some(p.ID)
	_, err = f.tasks.Create(ctx, u.ID, in)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))

	var count int64
	require.NoError(t, f.db.Model(&models.Task{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, f.db.Model(&models.TaskTag{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestTaskCreateRequiresOwnedProject(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	intruder := f.user(t, "intruder@example.com")
	p := f.project(t, owner.ID, "P1")

	in := decode[TaskInput](t, `{"title":"t"}`)
	in.ProjectID = models.Some(p.ID)
	_, err := f.tasks.Create(context.Background(), intruder.ID, in)
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
	assert.Equal(t, "Project not found", apierror.From(err).Message)
}

func TestTaskCreateIgnoresNonArrayCollections(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "a@example.com")
	p := f.project(t, u.ID, "P1")

	task := f.task(t, u.ID, p.ID, `{"title":"t","tags":"urgent","links":{"url":"https://x"}}`)
	assert.Empty(t, task.Tags)
	assert.Empty(t, task.Links)
}

func TestTaskUpdatePartial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@example.com")
	p := f.project(t, u.ID, "P1")
	task := f.task(t, u.ID, p.ID, `{"title":"t","description":"d","status":"in_progress","deadline":"2025-06-01"}`)

	got, err := f.tasks.Update(ctx, u.ID, task.ID, decode[TaskInput](t, `{"title":"X"}`))
	require.NoError(t, err)
	assert.Equal(t, "X", got.Title)
	require.NotNil(t, got.Description)
	assert.Equal(t, "d", *got.Description)
	assert.Equal(t, models.StatusInProgress, got.Status)
	require.NotNil(t, got.Deadline)
	assert.Equal(t, "2025-06-01", *got.Deadline)

	got, err = f.tasks.Update(ctx, u.ID, task.ID, decode[TaskInput](t, `{"description":null,"status":null}`))
	require.NoError(t, err)
	assert.Nil(t, got.Description)
	assert.Equal(t, models.StatusInProgress, got.Status)
	assert.NotNil(t, got.Deadline)

	got, err = f.tasks.Update(ctx, u.ID, task.ID, decode[TaskInput](t, `{"status":"completed","deadline":null}`))
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Nil(t, got.Deadline)

	_, err = f.tasks.Update(ctx, u.ID, task.ID, decode[TaskInput](t, `{"status":"archived"}`))
	assert.True(t, apierror.HasCode(err, apierror.CodeInvalidStatus))
}

func TestTaskOwnershipScoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@example.com")
	intruder := f.user(t, "intruder@example.com")
	p := f.project(t, owner.ID, "P1")
	task := f.task(t, owner.ID, p.ID, `{"title":"t","tags":["keep"]}`)
	tagID := task.TagMeta[0].ID

	notFound := func(err error) {
		t.Helper()
		assert.True(t, apierror.IsKind(err, apierror.KindNotFound), "%v", err)
	}

	_, err := f.tasks.Get(ctx, task.ID, intruder.ID)
	notFound(err)
	_, err = f.tasks.Update(ctx, intruder.ID, task.ID, decode[TaskInput](t, `{"title":"x"}`))
	notFound(err)
	notFound(f.tasks.Delete(ctx, intruder.ID, task.ID))
	_, err = f.tasks.AddTag(ctx, intruder.ID, task.ID, TagInput{Tag: models.Some("x")})
	notFound(err)
	_, err = f.tasks.DeleteTag(ctx, intruder.ID, task.ID, tagID)
	notFound(err)
	_, err = f.tasks.AddLink(ctx, intruder.ID, task.ID, LinkInput{URL: models.Some("https://x")})
	notFound(err)
	_, err = f.tasks.AddImage(ctx, intruder.ID, task.ID, "/uploads/tasks/x.png")
	notFound(err)

	got, err := f.tasks.Get(ctx, task.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, got.Tags)
	assert.Equal(t, "t", got.Title)
}

func TestTaskChildren(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@example.com")
	p := f.project(t, u.ID, "P1")
	task := f.task(t, u.ID, p.ID, `{"title":"t"}`)

	got, err := f.tasks.AddTag(ctx, u.ID, task.ID, TagInput{Tag: models.Some("urgent")})
	require.NoError(t, err)
	assert.Equal(t, []string{"urgent"}, got.Tags)

	_, err = f.tasks.AddTag(ctx, u.ID, task.ID, TagInput{})
	assert.Equal(t, []string{"tag"}, apierror.From(err).Fields)

	got, err = f.tasks.AddLink(ctx, u.ID, task.ID, LinkInput{Title: models.Some("home"), URL: models.Some("https://example.com")})
	require.NoError(t, err)
	require.Len(t, got.Links, 1)

	got, err = f.tasks.AddImage(ctx, u.ID, task.ID, "/uploads/tasks/a.png")
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/tasks/a.png"}, got.Images)
	require.Len(t, got.ImageMeta, 1)

	got, err = f.tasks.DeleteTag(ctx, u.ID, task.ID, got.TagMeta[0].ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)

	got, err = f.tasks.DeleteLink(ctx, u.ID, task.ID, got.Links[0].ID)
	require.NoError(t, err)
	assert.Empty(t, got.Links)

	got, err = f.tasks.DeleteImage(ctx, u.ID, task.ID, got.ImageMeta[0].ID)
	require.NoError(t, err)
	assert.Empty(t, got.Images)

	got, err = f.tasks.DeleteTag(ctx, u.ID, task.ID, 424242)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
}

func TestTaskChildDeleteScopedToTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@example.com")
	p := f.project(t, u.ID, "P1")
	first := f.task(t, u.ID, p.ID, `{"title":"first","tags":["mine"]}`)
	second := f.task(t, u.ID, p.ID, `{"title":"second"}`)

	_, err := f.tasks.DeleteTag(ctx, u.ID, second.ID, first.TagMeta[0].ID)
	require.NoError(t, err)

	got, err := f.tasks.Get(ctx, first.ID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"mine"}, got.Tags)
}

func TestTaskDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@example.com")
	p := f.project(t, u.ID, "P1")
	task := f.task(t, u.ID, p.ID, `{"title":"t","tags":["a","b"],"links":[{"url":"https://x"}]}`)

	require.NoError(t, f.tasks.Delete(ctx, u.ID, task.ID))

	_, err := f.tasks.Get(ctx, task.ID, u.ID)
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))

	var count int64
	f.db.Model(&models.TaskTag{}).Count(&count)
	assert.Zero(t, count)
	f.db.Model(&models.TaskLink{}).Count(&count)
	assert.Zero(t, count)

	project, err := f.projects.Get(ctx, u.ID, p.ID)
	require.NoError(t, err)
	assert.Empty(t, project.Tasks)
}
