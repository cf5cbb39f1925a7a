package service

import (
	"classroom_backend/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// 评分服务依赖的存储接口；repository 包提供 gorm 实现，repository/memory 提供内存实现

type UserStore interface {
	FindUserByID(ctx context.Context, id string) (*model.User, error)
}

type CourseStore interface {
	CreateCourse(ctx context.Context, course *model.Course) error
	FindCourseByID(ctx context.Context, id string) (*model.Course, error)
	SaveCourse(ctx context.Context, course *model.Course) error
	EnrollStudent(ctx context.Context, courseID, studentID string) error
	ListEnrolledStudentIDs(ctx context.Context, courseID string) ([]string, error)
}

type MaterialStore interface {
	CreateMaterial(ctx context.Context, material *model.Material) error
	FindMaterialByID(ctx context.Context, id string) (*model.Material, error)
	SaveMaterial(ctx context.Context, material *model.Material) error
	FindMaterialsByIDs(ctx context.Context, ids []string) ([]model.Material, error)
	ListMaterialsByCourseAndType(ctx context.Context, courseID string, materialType model.MaterialType) ([]model.Material, error)
}

type QuizStore interface {
	CreateQuiz(ctx context.Context, quiz *model.Quiz) error
	FindQuizByID(ctx context.Context, id string) (*model.Quiz, error)
	FindQuizzesByIDs(ctx context.Context, ids []string) ([]model.Quiz, error)
	ListQuizzesByCourse(ctx context.Context, courseID string, archived *bool) ([]model.Quiz, error)
}

type SubmissionStore interface {
	CreateSubmission(ctx context.Context, submission *model.Submission) error
	FindActiveSubmission(ctx context.Context, materialID, studentID string) (*model.Submission, error)
	ListSubmissionsByStudent(ctx context.Context, studentID string, materialIDs []string) ([]model.Submission, error)
	ListSubmissions(ctx context.Context, filter model.SubmissionFilter) ([]model.Submission, error)
	ApplyGrade(ctx context.Context, submissionID string, grade float64, event *model.GradeEvent) error
}

type GradeStore interface {
	GradeEventExists(ctx context.Context, studentID, taskID string) (bool, error)
	ListGradeEventsByStudent(ctx context.Context, studentID string) ([]model.GradeEvent, error)
	RecordQuizAttempt(ctx context.Context, attempt *model.QuizAttempt, event *model.GradeEvent) error
	ListQuizAttempts(ctx context.Context, studentID string, quizIDs []string) ([]model.QuizAttempt, error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	ListComments(ctx context.Context, filter model.CommentFilter) ([]model.Comment, error)
}

// ReportCache 成绩报告缓存，可为 nil（未启用 redis）。
// 报告写在读取事件前取得的代数下；Invalidate 推进代数，旧报告随即不可见
type ReportCache interface {
	Generation(ctx context.Context, studentID string) (int64, error)
	Get(ctx context.Context, studentID string, gen int64, dst interface{}) (bool, error)
	Set(ctx context.Context, studentID string, gen int64, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, studentID string) error
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
