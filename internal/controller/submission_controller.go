package controller

import (
	"classroom_backend/internal/model"
	"classroom_backend/internal/service"
	"classroom_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	SubmissionService *service.SubmissionService
}

func NewSubmissionController(submissionService *service.SubmissionService) *SubmissionController {
	return &SubmissionController{SubmissionService: submissionService}
}

// @Summary 学生提交作业
// @Tags 作业
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param materialId path string true "作业ID"
// @Param body body service.SubmitReq true "提交说明与文件引用"
// @Success 201 {object} util.Response{data=model.Submission}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /courses/submission/{materialId} [post]
func (c *SubmissionController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	var req service.SubmitReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	submission, err := c.SubmissionService.Submit(ctx.Request.Context(), ctx.Param("materialId"), user.UserID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, submission)
}

// @Summary 查询作业提交
// @Tags 作业
// @Produce json
// @Security BearerAuth
// @Param studentId query string false "学生ID"
// @Param materialId query string false "作业ID"
// @Param isArchived query bool false "归档状态"
// @Success 200 {object} util.Response{data=[]model.Submission}
// @Router /courses/getSubmission [get]
func (c *SubmissionController) GetSubmission(ctx *gin.Context) {
	archived, err := util.ParseOptionalBool(ctx.Query("isArchived"))
	if err != nil {
		util.BadRequest(ctx, "invalid isArchived")
		return
	}

	subs, err := c.SubmissionService.List(ctx.Request.Context(), model.SubmissionFilter{
		StudentID:  ctx.Query("studentId"),
		MaterialID: ctx.Query("materialId"),
		IsArchived: archived,
	})
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, subs)
}
