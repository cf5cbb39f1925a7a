package controller

import (
	"classroom_backend/internal/service"
	"classroom_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
	QuizService   *service.QuizService
}

func NewCourseController(courseService *service.CourseService, quizService *service.QuizService) *CourseController {
	return &CourseController{CourseService: courseService, QuizService: quizService}
}

// @Summary 创建课程
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateCourseReq true "课程信息"
// @Success 201 {object} util.Response{data=model.Course}
// @Router /courses/create [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	var req service.CreateCourseReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.CreateCourse(ctx.Request.Context(), user.UserID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// @Summary 学生加入课程
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /courses/join/{courseId} [post]
func (c *CourseController) JoinCourse(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	courseID := ctx.Param("courseId")
	if err := c.CourseService.JoinCourse(ctx.Request.Context(), courseID, user.UserID); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"courseId": courseID, "studentId": user.UserID})
}

// @Summary 发布课程资料或作业
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param body body service.CreateMaterialReq true "资料信息，type 默认为 assignment"
// @Success 201 {object} util.Response{data=model.Material}
// @Router /courses/material/{courseId} [post]
func (c *CourseController) CreateMaterial(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	var req service.CreateMaterialReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	material, err := c.CourseService.CreateMaterial(ctx.Request.Context(), ctx.Param("courseId"), user.UserID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, material)
}

// @Summary 创建测验
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param body body service.CreateQuizReq true "测验题目"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Failure 400 {object} util.Response
// @Router /courses/quiz/{courseId} [post]
func (c *CourseController) CreateQuiz(ctx *gin.Context) {
	var req service.CreateQuizReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.CreateQuiz(ctx.Request.Context(), ctx.Param("courseId"), req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// @Summary 更新课程
// @Description 只更新请求体中出现的字段，isArchived=true 即归档
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param body body service.UpdateCourseReq true "要修改的字段"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /courses/update/{courseId} [post]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	var req service.UpdateCourseReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.UpdateCourse(ctx.Request.Context(), ctx.Param("courseId"), req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary 更新课程资料
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param materialId path string true "资料ID"
// @Param body body service.UpdateMaterialReq true "要修改的字段"
// @Success 200 {object} util.Response{data=model.Material}
// @Failure 404 {object} util.Response
// @Router /courses/material/update/{materialId} [post]
func (c *CourseController) UpdateMaterial(ctx *gin.Context) {
	var req service.UpdateMaterialReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	material, err := c.CourseService.UpdateMaterial(ctx.Request.Context(), ctx.Param("materialId"), req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, material)
}
