package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Name         string    `gorm:"not null;size:200" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	PasswordHash string    `gorm:"column:password;not null" json:"-"`
	Token        string    `gorm:"index;size:128" json:"token"`
	Projects     []Project `gorm:"foreignKey:UserID" json:"-"`
}

// UserView is the public view of a user. It never carries the password hash.
type UserView struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) View() UserView {
	return UserView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Token:     u.Token,
		CreatedAt: u.CreatedAt,
	}
}

