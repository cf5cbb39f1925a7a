package model

import "gorm.io/datatypes"

type QuestionType string

const (
	QuestionMCQ QuestionType = "mcq"
	QuestionFIB QuestionType = "fib"
)

type QuizQuestion struct {
	Question string       `json:"question"`
	Answer   string       `json:"answer"`
	Type     QuestionType `json:"type,omitempty"`
	Options  []string     `json:"options,omitempty"`
}

// swagger:model Quiz
type Quiz struct {
	UUIDBase
	CourseID   string                            `gorm:"type:varchar(36);index;not null" json:"courseId"`
	Name       string                            `gorm:"size:255;not null" json:"name"`
	Questions  datatypes.JSONSlice[QuizQuestion] `gorm:"type:json" json:"questions"`
	IsArchived bool                              `gorm:"default:false" json:"isArchived"`
}

func (Quiz) TableName() string {
	return "quizzes"
}
