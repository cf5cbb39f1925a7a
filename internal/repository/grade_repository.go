package repository

import (
	"classroom_backend/internal/model"
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type GradeRepository struct {
	DB *gorm.DB
}

func NewGradeRepository(db *gorm.DB) *GradeRepository {
	return &GradeRepository{DB: db}
}

func (r *GradeRepository) GradeEventExists(ctx context.Context, studentID, taskID string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&model.GradeEvent{}).
		Where("student_id = ? AND task_id = ?", studentID, taskID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "count grade events")
	}
	return count > 0, nil
}

func (r *GradeRepository) ListGradeEventsByStudent(ctx context.Context, studentID string) ([]model.GradeEvent, error) {
	var events []model.GradeEvent
	err := r.DB.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at asc, id asc").
		Find(&events).Error
	return events, errors.Wrap(err, "list grade events")
}

// RecordQuizAttempt 同一事务写入成绩事件和作答明细；任一唯一索引冲突返回 gorm.ErrDuplicatedKey
func (r *GradeRepository) RecordQuizAttempt(ctx context.Context, attempt *model.QuizAttempt, event *model.GradeEvent) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(event).Error; err != nil {
			return err
		}
		return tx.Create(attempt).Error
	})
	return errors.Wrap(err, "record quiz attempt")
}

func (r *GradeRepository) ListQuizAttempts(ctx context.Context, studentID string, quizIDs []string) ([]model.QuizAttempt, error) {
	if len(quizIDs) == 0 {
		return nil, nil
	}
	var attempts []model.QuizAttempt
	err := r.DB.WithContext(ctx).
		Where("student_id = ? AND quiz_id IN ?", studentID, quizIDs).
		Find(&attempts).Error
	return attempts, errors.Wrap(err, "list quiz attempts")
}
