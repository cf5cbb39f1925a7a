package repository

import (
	"classroom_backend/internal/model"
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type CommentRepository struct {
	DB *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{DB: db}
}

func (r *CommentRepository) CreateComment(ctx context.Context, comment *model.Comment) error {
	return errors.Wrap(r.DB.WithContext(ctx).Create(comment).Error, "create comment")
}

func (r *CommentRepository) ListComments(ctx context.Context, filter model.CommentFilter) ([]model.Comment, error) {
	query := r.DB.WithContext(ctx).Model(&model.Comment{})
	if filter.MaterialID != "" {
		query = query.Where("material_id = ?", filter.MaterialID)
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.IsArchived != nil {
		query = query.Where("is_archived = ?", *filter.IsArchived)
	}
	var comments []model.Comment
	err := query.Order("created_at asc").Find(&comments).Error
	return comments, errors.Wrap(err, "list comments")
}
