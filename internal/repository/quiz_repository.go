package repository

import (
	"classroom_backend/internal/model"
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) CreateQuiz(ctx context.Context, quiz *model.Quiz) error {
	return errors.Wrap(r.DB.WithContext(ctx).Create(quiz).Error, "create quiz")
}

func (r *QuizRepository) FindQuizByID(ctx context.Context, id string) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := r.DB.WithContext(ctx).First(&quiz, "id = ?", id).Error; err != nil {
		return nil, errors.Wrapf(err, "find quiz %s", id)
	}
	return &quiz, nil
}

func (r *QuizRepository) FindQuizzesByIDs(ctx context.Context, ids []string) ([]model.Quiz, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var quizzes []model.Quiz
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&quizzes).Error
	return quizzes, errors.Wrap(err, "find quizzes")
}

// ListQuizzesByCourse archived 为 nil 时不按归档状态过滤
func (r *QuizRepository) ListQuizzesByCourse(ctx context.Context, courseID string, archived *bool) ([]model.Quiz, error) {
	query := r.DB.WithContext(ctx).Where("course_id = ?", courseID)
	if archived != nil {
		query = query.Where("is_archived = ?", *archived)
	}
	var quizzes []model.Quiz
	err := query.Order("created_at asc").Find(&quizzes).Error
	return quizzes, errors.Wrap(err, "list quizzes")
}
