package models

import (
	"time"
)

type Project struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UserID      uint      `gorm:"not null;index" json:"-"`
	Title       string    `gorm:"not null;size:255" json:"title"`
	Description *string   `gorm:"type:text" json:"description"`
	Image       *string   `gorm:"size:512" json:"image"`
	Link        *string   `gorm:"size:1024" json:"link"`
	Tasks       []Task    `gorm:"foreignKey:ProjectID" json:"-"`
}

// TaskSummary is the lightweight task entry nested under a project.
type TaskSummary struct {
	ID       uint       `json:"id"`
	Title    string     `json:"title"`
	Status   TaskStatus `json:"status"`
	Deadline *string    `json:"deadline"`
}

type ProjectView struct {
	ID          uint          `json:"id"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	Image       *string       `json:"image"`
	Link        *string       `json:"link"`
	CreatedAt   time.Time     `json:"created_at"`
	Tasks       []TaskSummary `json:"tasks"`
}

// View assembles the public view from a project with its Tasks preloaded.
func (p *Project) View() ProjectView {
	tasks := make([]TaskSummary, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		tasks = append(tasks, TaskSummary{
			ID:       t.ID,
			Title:    t.Title,
			Status:   t.Status,
			Deadline: t.Deadline,
		})
	}
	return ProjectView{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		Link:        p.Link,
		CreatedAt:   p.CreatedAt,
		Tasks:       tasks,
	}
}
