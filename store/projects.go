package store

import (
	"context"
	"errors"

	"taskboard/apierror"
	"taskboard/models"

	"gorm.io/gorm"
)

type ProjectInput struct {
	Title       models.Optional[string] `json:"title"`
	Description models.Optional[string] `json:"description"`
	Image       models.Optional[string] `json:"image"`
	Link        models.Optional[string] `json:"link"`
}

// Projects is the ownership-scoped project repository. Every query filters
// on the owning user.
type Projects struct {
	db *gorm.DB
}

func NewProjects(db *gorm.DB) *Projects {
	return &Projects{db: db}
}

func withTaskSummaries(db *gorm.DB) *gorm.DB {
	return db.Preload("Tasks", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "project_id", "title", "status", "deadline", "created_at").
			Order("created_at DESC").Order("id DESC")
	})
}

// List returns the user's projects, newest first.
func (p *Projects) List(ctx context.Context, userID uint) ([]models.ProjectView, error) {
	var projects []models.Project
	err := withTaskSummaries(p.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&projects).Error
	if err != nil {
		return nil, apierror.Storage("failed to list projects", err)
	}

	views := make([]models.ProjectView, 0, len(projects))
	for i := range projects {
		views = append(views, projects[i].View())
	}
	return views, nil
}

func (p *Projects) Get(ctx context.Context, userID, projectID uint) (models.ProjectView, error) {
	var project models.Project
	err := withTaskSummaries(p.db.WithContext(ctx)).
		Where("id = ? AND user_id = ?", projectID, userID).
		First(&project).Error
	if err != nil {
		return models.ProjectView{}, projectLookupError(err)
	}
	return project.View(), nil
}

func (p *Projects) Create(ctx context.Context, userID uint, in ProjectInput) (models.ProjectView, error) {
	if err := requireFields(field{"title", in.Title}); err != nil {
		return models.ProjectView{}, err
	}

	project := models.Project{
		UserID:      userID,
		Title:       in.Title.Value,
		Description: in.Description.Ptr(),
		Image:       in.Image.Ptr(),
		Link:        in.Link.Ptr(),
	}
	if err := p.db.WithContext(ctx).Create(&project).Error; err != nil {
		return models.ProjectView{}, apierror.Storage("failed to create project", err)
	}
	return p.Get(ctx, userID, project.ID)
}

// Update overwrites every field present in the input, including with null.
// A null title keeps the stored title.
func (p *Projects) Update(ctx context.Context, userID, projectID uint, in ProjectInput) (models.ProjectView, error) {
	if err := requireNonEmpty("title", in.Title); err != nil {
		return models.ProjectView{}, err
	}

	db := p.db.WithContext(ctx)
	project, err := p.find(db, userID, projectID)
	if err != nil {
		return models.ProjectView{}, err
	}

	if in.Title.HasValue() {
		project.Title = in.Title.Value
	}
	in.Description.Apply(&project.Description)
	in.Image.Apply(&project.Image)
	in.Link.Apply(&project.Link)

	err = db.Model(project).
		Select("Title", "Description", "Image", "Link").
		Updates(project).Error
	if err != nil {
		return models.ProjectView{}, apierror.Storage("failed to update project", err)
	}
	return p.Get(ctx, userID, projectID)
}

// Delete removes the project together with its tasks and their children.
func (p *Projects) Delete(ctx context.Context, userID, projectID uint) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project, err := p.find(tx, userID, projectID)
		if err != nil {
			return err
		}

		var taskIDs []uint
		if err := tx.Model(&models.Task{}).Where("project_id = ?", project.ID).Pluck("id", &taskIDs).Error; err != nil {
			return apierror.Storage("failed to load project tasks", err)
		}
		if err := deleteTaskChildren(tx, taskIDs...); err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Task{}).Error; err != nil {
			return apierror.Storage("failed to delete project tasks", err)
		}
		if err := tx.Delete(project).Error; err != nil {
			return apierror.Storage("failed to delete project", err)
		}
		return nil
	})
}

func (p *Projects) AttachImage(ctx context.Context, userID, projectID uint, path string) (models.ProjectView, error) {
	db := p.db.WithContext(ctx)
	project, err := p.find(db, userID, projectID)
	if err != nil {
		return models.ProjectView{}, err
	}
	if err := db.Model(project).Update("image", path).Error; err != nil {
		return models.ProjectView{}, apierror.Storage("failed to attach image", err)
	}
	return p.Get(ctx, userID, projectID)
}

// find loads the bare project row for mutation.
func (p *Projects) find(db *gorm.DB, userID, projectID uint) (*models.Project, error) {
	var project models.Project
	if err := db.Where("id = ? AND user_id = ?", projectID, userID).First(&project).Error; err != nil {
		return nil, projectLookupError(err)
	}
	return &project, nil
}

func projectLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.NotFound("Project not found")
	}
	return apierror.Storage("failed to load project", err)
}
