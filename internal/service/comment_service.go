package service

import (
	"classroom_backend/internal/model"
	"classroom_backend/internal/util"
	"context"
	"strings"
)

type CommentService struct {
	Comments  CommentStore
	Materials MaterialStore
	Users     UserStore
}

func NewCommentService(comments CommentStore, materials MaterialStore, users UserStore) *CommentService {
	return &CommentService{Comments: comments, Materials: materials, Users: users}
}

type CreateCommentReq struct {
	Message string `json:"message" binding:"required"`
}

func (s *CommentService) Create(ctx context.Context, materialID, userID string, req CreateCommentReq) (*model.Comment, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, util.NewValidationError("comment message is required")
	}
	if _, err := s.Materials.FindMaterialByID(ctx, materialID); err != nil {
		if isNotFound(err) {
			return nil, util.NewNotFoundError("material not found")
		}
		return nil, err
	}
	user, err := s.Users.FindUserByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, util.NewNotFoundError("user not found")
		}
		return nil, err
	}

	comment := &model.Comment{
		MaterialID: materialID,
		UserID:     userID,
		UserName:   user.FullName(),
		Message:    req.Message,
	}
	if err := s.Comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) List(ctx context.Context, filter model.CommentFilter) ([]model.Comment, error) {
	comments, err := s.Comments.ListComments(ctx, filter)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	return comments, nil
}
