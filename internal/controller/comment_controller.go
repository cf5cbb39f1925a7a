package controller

import (
	"classroom_backend/internal/model"
	"classroom_backend/internal/service"
	"classroom_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CommentController struct {
	CommentService *service.CommentService
}

func NewCommentController(commentService *service.CommentService) *CommentController {
	return &CommentController{CommentService: commentService}
}

// @Summary 发表资料评论
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param materialId path string true "资料ID"
// @Param body body service.CreateCommentReq true "评论内容"
// @Success 201 {object} util.Response{data=model.Comment}
// @Failure 404 {object} util.Response
// @Router /courses/comment/{materialId} [post]
func (c *CommentController) CreateComment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	var req service.CreateCommentReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	comment, err := c.CommentService.Create(ctx.Request.Context(), ctx.Param("materialId"), user.UserID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, comment)
}

// @Summary 查询资料评论
// @Tags 评论
// @Produce json
// @Security BearerAuth
// @Param materialId query string false "资料ID"
// @Param userId query string false "用户ID"
// @Param isArchived query bool false "归档状态"
// @Success 200 {object} util.Response{data=[]model.Comment}
// @Router /courses/getComment [get]
func (c *CommentController) GetComment(ctx *gin.Context) {
	archived, err := util.ParseOptionalBool(ctx.Query("isArchived"))
	if err != nil {
		util.BadRequest(ctx, "invalid isArchived")
		return
	}

	comments, err := c.CommentService.List(ctx.Request.Context(), model.CommentFilter{
		MaterialID: ctx.Query("materialId"),
		UserID:     ctx.Query("userId"),
		IsArchived: archived,
	})
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, comments)
}
