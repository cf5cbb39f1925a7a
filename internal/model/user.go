package model

import "strings"

type UserRole string

const (
	Student    UserRole = "student"
	Instructor UserRole = "instructor"
	Admin      UserRole = "admin"
)

// swagger:model User
type User struct {
	UUIDBase
	Username   string   `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Password   string   `gorm:"size:100;not null" json:"-"`
	Email      string   `gorm:"size:100;uniqueIndex;not null" json:"email"`
	FirstName  string   `gorm:"size:100;not null" json:"firstName"`
	LastName   string   `gorm:"size:100;not null" json:"lastName"`
	MiddleName string   `gorm:"size:100" json:"middleName,omitempty"`
	Image      string   `gorm:"size:255" json:"image,omitempty"`
	Role       UserRole `gorm:"size:20;default:'student'" json:"role"`
	IsArchived bool     `gorm:"default:false" json:"isArchived"`
}

func (User) TableName() string {
	return "users"
}

// FullName 返回 "名 姓"，用于花名册和提交记录展示
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
