package model

import "time"

type MaterialType string

const (
	MaterialAssignment   MaterialType = "assignment"
	MaterialReading      MaterialType = "material"
	MaterialAnnouncement MaterialType = "announcement"
)

// swagger:model Material
type Material struct {
	UUIDBase
	CourseID       string       `gorm:"type:varchar(36);index;not null" json:"courseId"`
	InstructorName string       `gorm:"size:200" json:"instructorName"`
	Name           string       `gorm:"size:255" json:"name"`
	Description    string       `gorm:"type:text" json:"description"`
	File           string       `gorm:"size:255" json:"file"`
	Type           MaterialType `gorm:"size:20;index;not null" json:"type"`
	DueDate        *time.Time   `json:"dueDate,omitempty"`
	IsArchived     bool         `gorm:"default:false" json:"isArchived"`
}

func (Material) TableName() string {
	return "materials"
}
