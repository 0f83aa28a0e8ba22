package store

import (
	"context"
	"encoding/json"
	"errors"

	"taskboard/apierror"
	"taskboard/models"

	"gorm.io/gorm"
)

type TaskInput struct {
	ProjectID   models.Optional[uint]              `json:"project_id"`
	Title       models.Optional[string]            `json:"title"`
	Description models.Optional[string]            `json:"description"`
	Status      models.Optional[models.TaskStatus] `json:"status"`
	Deadline    models.Optional[string]            `json:"deadline"`
	Tags        json.RawMessage                    `json:"tags"`
	Links       json.RawMessage                    `json:"links"`
}

type TagInput struct {
	Tag models.Optional[string] `json:"tag"`
}

type LinkInput struct {
	Title models.Optional[string] `json:"title"`
	URL   models.Optional[string] `json:"url"`
}

// Tasks is the task repository. Ownership is transitive: a task belongs to
// the owner of its project, so every lookup joins the projects table.
type Tasks struct {
	db *gorm.DB
}

func NewTasks(db *gorm.DB) *Tasks {
	return &Tasks{db: db}
}

// Get returns the full task view. An ownerID of 0 skips the ownership filter.
func (t *Tasks) Get(ctx context.Context, taskID, ownerID uint) (models.TaskView, error) {
	task, err := t.find(t.db.WithContext(ctx), taskID, ownerID, true)
	if err != nil {
		return models.TaskView{}, err
	}
	return task.View(), nil
}

// Create inserts the task with its tags and links in one transaction.
func (t *Tasks) Create(ctx context.Context, userID uint, in TaskInput) (models.TaskView, error) {
	var missing []string
	if !in.ProjectID.HasValue() || in.ProjectID.Value == 0 {
		missing = append(missing, "project_id")
	}
	if !in.Title.HasValue() || in.Title.Value == "" {
		missing = append(missing, "title")
	}
	if len(missing) > 0 {
		return models.TaskView{}, apierror.MissingFields(missing...)
	}

	db := t.db.WithContext(ctx)
	if err := t.assertProjectOwnership(db, userID, in.ProjectID.Value); err != nil {
		return models.TaskView{}, err
	}
	if err := validateStatus(in.Status); err != nil {
		return models.TaskView{}, err
	}
	if err := validateDeadline(in.Deadline); err != nil {
		return models.TaskView{}, err
	}
	tags, err := decodeTags(in.Tags)
	if err != nil {
		return models.TaskView{}, err
	}
	links, err := decodeLinks(in.Links)
	if err != nil {
		return models.TaskView{}, err
	}

	task := models.Task{
		ProjectID:   in.ProjectID.Value,
		Title:       in.Title.Value,
		Description: in.Description.Ptr(),
		Status:      models.StatusPending,
		Deadline:    in.Deadline.Ptr(),
	}
	if in.Status.HasValue() {
		task.Status = in.Status.Value
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return apierror.Storage("failed to create task", err)
		}
		for _, tag := range tags {
			if err := t.insertTag(tx, task.ID, tag); err != nil {
				return err
			}
		}
		for _, link := range links {
			if err := t.insertLink(tx, task.ID, link); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.TaskView{}, err
	}

	return t.Get(ctx, task.ID, userID)
}

// Update overwrites every field present in the input. Null title or status
// keep the stored value; null description or deadline clear it.
func (t *Tasks) Update(ctx context.Context, userID, taskID uint, in TaskInput) (models.TaskView, error) {
	db := t.db.WithContext(ctx)
	task, err := t.find(db, taskID, userID, false)
	if err != nil {
		return models.TaskView{}, err
	}
	if err := requireNonEmpty("title", in.Title); err != nil {
		return models.TaskView{}, err
	}
	if err := validateStatus(in.Status); err != nil {
		return models.TaskView{}, err
	}
	if err := validateDeadline(in.Deadline); err != nil {
		return models.TaskView{}, err
	}

	if in.Title.HasValue() {
		task.Title = in.Title.Value
	}
	if in.Status.HasValue() {
		task.Status = in.Status.Value
	}
	in.Description.Apply(&task.Description)
	in.Deadline.Apply(&task.Deadline)

	err = db.Model(task).
		Select("Title", "Description", "Status", "Deadline").
		Updates(task).Error
	if err != nil {
		return models.TaskView{}, apierror.Storage("failed to update task", err)
	}
	return t.Get(ctx, taskID, userID)
}

// Delete removes the task together with its tags, links and images.
func (t *Tasks) Delete(ctx context.Context, userID, taskID uint) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := t.find(tx, taskID, userID, false)
		if err != nil {
			return err
		}
		if err := deleteTaskChildren(tx, task.ID); err != nil {
			return err
		}
		if err := tx.Delete(task).Error; err != nil {
			return apierror.Storage("failed to delete task", err)
		}
		return nil
	})
}

func (t *Tasks) AddTag(ctx context.Context, userID, taskID uint, in TagInput) (models.TaskView, error) {
	if err := requireFields(field{"tag", in.Tag}); err != nil {
		return models.TaskView{}, err
	}
	return t.mutate(ctx, userID, taskID, func(tx *gorm.DB) error {
		return t.insertTag(tx, taskID, in.Tag.Value)
	})
}

func (t *Tasks) DeleteTag(ctx context.Context, userID, taskID, tagID uint) (models.TaskView, error) {
	return t.mutate(ctx, userID, taskID, func(tx *gorm.DB) error {
		return deleteChild(tx, &models.TaskTag{}, taskID, tagID)
	})
}

func (t *Tasks) AddLink(ctx context.Context, userID, taskID uint, in LinkInput) (models.TaskView, error) {
	if err := requireFields(field{"url", in.URL}); err != nil {
		return models.TaskView{}, err
	}
	return t.mutate(ctx, userID, taskID, func(tx *gorm.DB) error {
		return t.insertLink(tx, taskID, in)
	})
}

func (t *Tasks) DeleteLink(ctx context.Context, userID, taskID, linkID uint) (models.TaskView, error) {
	return t.mutate(ctx, userID, taskID, func(tx *gorm.DB) error {
		return deleteChild(tx, &models.TaskLink{}, taskID, linkID)
	})
}

func (t *Tasks) AddImage(ctx context.Context, userID, taskID uint, path string) (models.TaskView, error) {
	return t.mutate(ctx, userID, taskID, func(tx *gorm.DB) error {
		image := models.TaskImage{TaskID: taskID, FilePath: path}
		if err := tx.Create(&image).Error; err != nil {
			return apierror.Storage("failed to add image", err)
		}
		return nil
	})
}

func (t *Tasks) DeleteImage(ctx context.Context, userID, taskID, imageID uint) (models.TaskView, error) {
	return t.mutate(ctx, userID, taskID, func(tx *gorm.DB) error {
		return deleteChild(tx, &models.TaskImage{}, taskID, imageID)
	})
}

// mutate checks that the user owns the task, applies fn and returns the
// refreshed view.
func (t *Tasks) mutate(ctx context.Context, userID, taskID uint, fn func(tx *gorm.DB) error) (models.TaskView, error) {
	db := t.db.WithContext(ctx)
	if _, err := t.find(db, taskID, userID, false); err != nil {
		return models.TaskView{}, err
	}
	if err := fn(db); err != nil {
		return models.TaskView{}, err
	}
	return t.Get(ctx, taskID, userID)
}

func (t *Tasks) find(db *gorm.DB, taskID, ownerID uint, withChildren bool) (*models.Task, error) {
	q := db.Model(&models.Task{}).
		Select("tasks.*").
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("tasks.id = ?", taskID)
	if ownerID != 0 {
		q = q.Where("projects.user_id = ?", ownerID)
	}
	if withChildren {
		q = q.Preload("Tags", orderByID).
			Preload("Links", orderByID).
			Preload("Images", orderByID)
	}

	var task models.Task
	if err := q.First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Task not found")
		}
		return nil, apierror.Storage("failed to load task", err)
	}
	return &task, nil
}

func (t *Tasks) assertProjectOwnership(db *gorm.DB, userID, projectID uint) error {
	var count int64
	err := db.Model(&models.Project{}).
		Where("id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	if err != nil {
		return apierror.Storage("failed to load project", err)
	}
	if count == 0 {
		return apierror.NotFound("Project not found")
	}
	return nil
}

func (t *Tasks) insertTag(tx *gorm.DB, taskID uint, tag string) error {
	if err := tx.Create(&models.TaskTag{TaskID: taskID, Tag: tag}).Error; err != nil {
		return apierror.Storage("failed to add tag", err)
	}
	return nil
}

func (t *Tasks) insertLink(tx *gorm.DB, taskID uint, in LinkInput) error {
	link := models.TaskLink{TaskID: taskID, Title: in.Title.Ptr(), URL: in.URL.Value}
	if err := tx.Create(&link).Error; err != nil {
		return apierror.Storage("failed to add link", err)
	}
	return nil
}

// decodeTags ignores a value that is not an array. Array entries must be
// non-empty strings.
func decodeTags(data json.RawMessage) ([]string, error) {
	raw := asArray(data)
	tags := make([]string, 0, len(raw))
	for _, item := range raw {
		var tag string
		if err := json.Unmarshal(item, &tag); err != nil || tag == "" {
			return nil, apierror.MissingFields("tag")
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// decodeLinks ignores a value that is not an array and skips entries that
// are not JSON objects. Object entries must carry a url.
func decodeLinks(data json.RawMessage) ([]LinkInput, error) {
	raw := asArray(data)
	links := make([]LinkInput, 0, len(raw))
	for _, item := range raw {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(item, &probe); err != nil || probe == nil {
			continue
		}
		var link LinkInput
		if err := json.Unmarshal(item, &link); err != nil {
			return nil, apierror.Validation(apierror.CodeInvalidBody, "Invalid link")
		}
		if err := requireFields(field{"url", link.URL}); err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, nil
}

func asArray(data json.RawMessage) []json.RawMessage {
	if len(data) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	return items
}

func deleteChild(tx *gorm.DB, model any, taskID, id uint) error {
	if err := tx.Where("id = ? AND task_id = ?", id, taskID).Delete(model).Error; err != nil {
		return apierror.Storage("failed to delete task item", err)
	}
	return nil
}

func deleteTaskChildren(tx *gorm.DB, taskIDs ...uint) error {
	if len(taskIDs) == 0 {
		return nil
	}
	for _, model := range []any{&models.TaskTag{}, &models.TaskLink{}, &models.TaskImage{}} {
		if err := tx.Where("task_id IN ?", taskIDs).Delete(model).Error; err != nil {
			return apierror.Storage("failed to delete task items", err)
		}
	}
	return nil
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}
