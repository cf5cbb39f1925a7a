package controller

import (
	"classroom_backend/internal/model"
	"classroom_backend/internal/service"
	"classroom_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GradeController struct {
	QuizService       *service.QuizService
	SubmissionService *service.SubmissionService
	ReportService     *service.ReportService
	RosterService     *service.RosterService
}

func NewGradeController(quizService *service.QuizService, submissionService *service.SubmissionService,
	reportService *service.ReportService, rosterService *service.RosterService) *GradeController {
	return &GradeController{
		QuizService:       quizService,
		SubmissionService: submissionService,
		ReportService:     reportService,
		RosterService:     rosterService,
	}
}

type AnswerQuizReq struct {
	Answers []string `json:"answers"`
}

type GradeSubmissionReq struct {
	Grade      *float64 `json:"grade"`
	MaterialID string   `json:"materialId"`
}

// @Summary 提交测验答案并自动评分
// @Tags 成绩
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param quizId path string true "测验ID"
// @Param body body AnswerQuizReq true "按题目顺序排列的答案"
// @Success 200 {object} util.Response{data=service.EvaluationResult}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /courses/answerQuiz/{quizId} [post]
func (c *GradeController) AnswerQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AnswerQuizReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.QuizService.Evaluate(ctx.Request.Context(), ctx.Param("quizId"), user.UserID, req.Answers)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 教师为学生的作业提交打分
// @Tags 成绩
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "学生ID"
// @Param body body GradeSubmissionReq true "分数(0-100)与作业ID"
// @Success 200 {object} util.Response{data=service.GradeRecord}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /courses/submission/grade/{studentId} [post]
func (c *GradeController) GradeSubmission(ctx *gin.Context) {
	var req GradeSubmissionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if req.Grade == nil {
		util.BadRequest(ctx, "invalid grade")
		return
	}

	record, err := c.SubmissionService.Grade(ctx.Request.Context(), req.MaterialID, ctx.Param("studentId"), *req.Grade)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, record)
}

// @Summary 学生成绩汇总报告
// @Description 学生只能查看自己的报告，教师和管理员可查看任意学生
// @Tags 成绩
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "学生ID"
// @Success 200 {object} util.Response{data=service.PerformanceReport}
// @Failure 404 {object} util.Response
// @Router /courses/grades/totalGrades/{studentId} [get]
func (c *GradeController) TotalGrades(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	studentID := ctx.Param("studentId")
	if user.Role == model.Student && user.UserID != studentID {
		util.RespondError(ctx, util.NewPermissionDeniedError("students can only view their own grades"))
		return
	}

	report, err := c.ReportService.Build(ctx.Request.Context(), studentID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// @Summary 课程成绩花名册
// @Tags 成绩
// @Produce json
// @Security BearerAuth
// @Param courseId query string true "课程ID"
// @Param studentId query string false "只返回该学生"
// @Param query query string false "按姓名或用户名模糊匹配"
// @Param isArchived query bool false "按测验归档状态过滤"
// @Success 200 {object} util.Response{data=[]service.StudentRosterEntry}
// @Failure 404 {object} util.Response
// @Router /courses/getGrade [get]
func (c *GradeController) GetGrade(ctx *gin.Context) {
	courseID := ctx.Query("courseId")
	if courseID == "" {
		util.BadRequest(ctx, "courseId is required")
		return
	}
	archived, err := util.ParseOptionalBool(ctx.Query("isArchived"))
	if err != nil {
		util.BadRequest(ctx, "invalid isArchived")
		return
	}

	roster, err := c.RosterService.Build(ctx.Request.Context(), courseID, service.RosterFilter{
		StudentID:  ctx.Query("studentId"),
		IsArchived: archived,
		Query:      ctx.Query("query"),
	})
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, roster)
}
