package app

import (
	"classroom_backend/docs"
	"classroom_backend/internal/config"
	"classroom_backend/internal/middleware"
	"classroom_backend/internal/model"
	"classroom_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/api/health", c.health.HealthCheck)

	auth := middleware.AuthMiddleware(cfg.JWT.Secret)

	// 1. 账号
	users := router.Group("/users")
	{
		users.POST("/create", c.auth.Register)
		users.POST("/login", c.auth.Login)
		users.GET("/myUser", auth, c.auth.MyUser)
	}

	// 2. 课程与成绩，均需登录
	courses := router.Group("/courses")
	courses.Use(auth)
	{
		a.registerStudentRoutes(courses, c)
		a.registerInstructorRoutes(courses, c)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/join/:courseId", c.course.JoinCourse)
	rg.POST("/answerQuiz/:quizId", c.grade.AnswerQuiz)
	rg.POST("/submission/:materialId", c.submission.Submit)
	rg.GET("/grades/totalGrades/:studentId", c.grade.TotalGrades)
	rg.POST("/comment/:materialId", c.comment.CreateComment)
	rg.GET("/getComment", c.comment.GetComment)
}

func (a *App) registerInstructorRoutes(rg *gin.RouterGroup, c *controllers) {
	instructor := rg.Group("")
	instructor.Use(middleware.RoleMiddleware(model.Instructor))
	{
		instructor.POST("/create", c.course.CreateCourse)
		instructor.POST("/update/:courseId", c.course.UpdateCourse)
		instructor.POST("/material/:courseId", c.course.CreateMaterial)
		instructor.POST("/material/update/:materialId", c.course.UpdateMaterial)
		instructor.POST("/quiz/:courseId", c.course.CreateQuiz)
		instructor.POST("/submission/grade/:studentId", c.grade.GradeSubmission)
		instructor.GET("/getGrade", c.grade.GetGrade)
		instructor.GET("/getSubmission", c.submission.GetSubmission)
	}
}
