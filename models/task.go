package models

import (
	"time"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusBlocked    TaskStatus = "blocked"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusBlocked:
		return true
	}
	return false
}

type Task struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time   `gorm:"index" json:"created_at"`
	ProjectID   uint        `gorm:"not null;index" json:"project_id"`
	Title       string      `gorm:"not null;size:255" json:"title"`
	Description *string     `gorm:"type:text" json:"description"`
	Status      TaskStatus  `gorm:"not null;size:20;default:pending" json:"status"`
	Deadline    *string     `gorm:"size:32" json:"deadline"`
	Tags        []TaskTag   `gorm:"foreignKey:TaskID" json:"-"`
	Links       []TaskLink  `gorm:"foreignKey:TaskID" json:"-"`
	Images      []TaskImage `gorm:"foreignKey:TaskID" json:"-"`
}

type TaskTag struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	TaskID uint   `gorm:"not null;index" json:"-"`
	Tag    string `gorm:"not null;size:100" json:"tag"`
}

type TaskLink struct {
	ID     uint    `gorm:"primaryKey" json:"id"`
	TaskID uint    `gorm:"not null;index" json:"-"`
	Title  *string `gorm:"size:255" json:"title"`
	URL    string  `gorm:"column:url;not null;size:2048" json:"url"`
}

type TaskImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	TaskID    uint      `gorm:"not null;index" json:"-"`
	FilePath  string    `gorm:"not null;size:512" json:"file_path"`
}

// TaskView is the full public view of a task. Tags and images appear twice:
// once flattened and once with their row ids in the *_meta lists.
type TaskView struct {
	ID          uint        `json:"id"`
	ProjectID   uint        `json:"project_id"`
	Title       string      `json:"title"`
	Description *string     `json:"description"`
	Status      TaskStatus  `json:"status"`
	Deadline    *string     `json:"deadline"`
	CreatedAt   time.Time   `json:"created_at"`
	Tags        []string    `json:"tags"`
	TagMeta     []TaskTag   `json:"tag_meta"`
	Links       []TaskLink  `json:"links"`
	Images      []string    `json:"images"`
	ImageMeta   []TaskImage `json:"image_meta"`
}

// View assembles the public view from a task with its children preloaded.
func (t *Task) View() TaskView {
	v := TaskView{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Deadline:    t.Deadline,
		CreatedAt:   t.CreatedAt,
		Tags:        make([]string, 0, len(t.Tags)),
		TagMeta:     make([]TaskTag, 0, len(t.Tags)),
		Links:       make([]TaskLink, 0, len(t.Links)),
		Images:      make([]string, 0, len(t.Images)),
		ImageMeta:   make([]TaskImage, 0, len(t.Images)),
	}
	for _, tag := range t.Tags {
		v.Tags = append(v.Tags, tag.Tag)
		v.TagMeta = append(v.TagMeta, tag)
	}
	v.Links = append(v.Links, t.Links...)
	for _, img := range t.Images {
		v.Images = append(v.Images, img.FilePath)
		v.ImageMeta = append(v.ImageMeta, img)
	}
	return v
}
