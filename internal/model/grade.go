package model

import (
	"time"

	"gorm.io/datatypes"
)

type GradeType string

const (
	GradeQuiz GradeType = "quiz"
	GradeTask GradeType = "task"
)

// GradeEvent 一次计分记录。quiz 类型的 TaskID 为测验ID，task 类型为资料ID；(StudentID, TaskID) 唯一
//
// swagger:model GradeEvent
type GradeEvent struct {
	UUIDBase
	StudentID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_grade_event_student_task" json:"studentId"`
	TaskID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_grade_event_student_task" json:"taskId"`
	Grade     float64   `gorm:"not null" json:"grade"`
	Type      GradeType `gorm:"size:10;not null;index" json:"type"`
}

func (GradeEvent) TableName() string {
	return "grade_events"
}

type AnswerResult struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	Correct       bool   `json:"correct"`
}

// QuizAttempt 测验作答明细（逐题结果）
//
// swagger:model QuizAttempt
type QuizAttempt struct {
	UUIDBase
	StudentID   string                            `gorm:"type:varchar(36);not null;uniqueIndex:idx_quiz_attempt_student_quiz" json:"studentId"`
	QuizID      string                            `gorm:"type:varchar(36);not null;uniqueIndex:idx_quiz_attempt_student_quiz;index" json:"quizId"`
	CourseID    string                            `gorm:"type:varchar(36);index" json:"courseId"`
	Score       int                               `gorm:"not null" json:"score"`
	Total       int                               `gorm:"not null" json:"total"`
	SubmittedAt time.Time                         `json:"submittedAt"`
	Answers     datatypes.JSONSlice[AnswerResult] `gorm:"type:json" json:"answers"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
