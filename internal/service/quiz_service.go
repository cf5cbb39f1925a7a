package service

import (
	"classroom_backend/internal/model"
	"classroom_backend/internal/util"
	"classroom_backend/pkg/logger"
	"classroom_backend/pkg/monitoring"
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

type QuizService struct {
	Quizzes QuizStore
	Courses CourseStore
	Grades  GradeStore
	Cache   ReportCache
}

func NewQuizService(quizzes QuizStore, courses CourseStore, grades GradeStore, cache ReportCache) *QuizService {
	return &QuizService{Quizzes: quizzes, Courses: courses, Grades: grades, Cache: cache}
}

type QuizQuestionReq struct {
	Question string             `json:"question"`
	Answer   string             `json:"answer"`
	Type     model.QuestionType `json:"type"`
	Options  []string           `json:"options"`
}

type CreateQuizReq struct {
	Name      string            `json:"name" binding:"required"`
	Questions []QuizQuestionReq `json:"questions"`
}

// EvaluationResult 测验评分结果
type EvaluationResult struct {
	StudentID      string          `json:"studentId"`
	TotalGrade     float64         `json:"totalGrade"`
	Type           model.GradeType `json:"type"`
	TaskID         string          `json:"taskId"`
	CorrectCount   int             `json:"correctCount"`
	TotalQuestions int             `json:"totalQuestions"`
}

func (s *QuizService) CreateQuiz(ctx context.Context, courseID string, req CreateQuizReq) (*model.Quiz, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, util.NewValidationError("quiz name is required")
	}
	if len(req.Questions) == 0 {
		return nil, util.NewInvalidQuizError("quiz must have at least one question")
	}

	if _, err := s.Courses.FindCourseByID(ctx, courseID); err != nil {
		if isNotFound(err) {
			return nil, util.NewNotFoundError("course not found")
		}
		return nil, err
	}

	questions := make([]model.QuizQuestion, 0, len(req.Questions))
	for _, q := range req.Questions {
		if strings.TrimSpace(q.Question) == "" || strings.TrimSpace(q.Answer) == "" {
			return nil, util.NewValidationError("every question needs question and answer text")
		}
		questions = append(questions, model.QuizQuestion{
			Question: q.Question,
			Answer:   q.Answer,
			Type:     q.Type,
			Options:  q.Options,
		})
	}

	quiz := &model.Quiz{
		CourseID:  courseID,
		Name:      req.Name,
		Questions: questions,
	}
	if err := s.Quizzes.CreateQuiz(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// Evaluate 对学生的作答评分并记录成绩事件。
// 重复作答检查在评分之前；并发的重复请求由唯一索引兜底。
func (s *QuizService) Evaluate(ctx context.Context, quizID, studentID string, answers []string) (*EvaluationResult, error) {
	if strings.TrimSpace(studentID) == "" {
		monitoring.GradeOutcomes.WithLabelValues(string(model.GradeQuiz), "rejected").Inc()
		return nil, util.NewValidationError("student id is required")
	}

	quiz, err := s.Quizzes.FindQuizByID(ctx, quizID)
	if err != nil {
		if isNotFound(err) {
			return nil, util.NewNotFoundError("quiz not found")
		}
		return nil, err
	}

	taken, err := s.Grades.GradeEventExists(ctx, studentID, quiz.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		monitoring.GradeOutcomes.WithLabelValues(string(model.GradeQuiz), "duplicate").Inc()
		return nil, util.NewDuplicateAttemptError("already taken this quiz")
	}

	if len(quiz.Questions) == 0 {
		monitoring.GradeOutcomes.WithLabelValues(string(model.GradeQuiz), "rejected").Inc()
		return nil, util.NewInvalidQuizError("quiz has no questions")
	}

	results, correct, pct := scoreAnswers(quiz.Questions, answers)

	attempt := &model.QuizAttempt{
		StudentID:   studentID,
		QuizID:      quiz.ID,
		CourseID:    quiz.CourseID,
		Score:       correct,
		Total:       len(quiz.Questions),
		SubmittedAt: time.Now(),
		Answers:     results,
	}
	event := &model.GradeEvent{
		StudentID: studentID,
		TaskID:    quiz.ID,
		Grade:     pct,
		Type:      model.GradeQuiz,
	}

	if err := s.Grades.RecordQuizAttempt(ctx, attempt, event); err != nil {
		if isDuplicate(err) {
			monitoring.GradeOutcomes.WithLabelValues(string(model.GradeQuiz), "duplicate").Inc()
			return nil, util.NewDuplicateAttemptError("already taken this quiz")
		}
		monitoring.GradeOutcomes.WithLabelValues(string(model.GradeQuiz), "failed").Inc()
		return nil, err
	}

	invalidateReport(ctx, s.Cache, studentID)
	monitoring.GradeOutcomes.WithLabelValues(string(model.GradeQuiz), "recorded").Inc()
	logger.Log.Info("quiz evaluated",
		zap.String("studentId", studentID),
		zap.String("taskId", quiz.ID),
		zap.Int("correct", correct),
		zap.Int("total", len(quiz.Questions)),
		zap.Float64("grade", pct),
	)

	return &EvaluationResult{
		StudentID:      studentID,
		TotalGrade:     pct,
		Type:           model.GradeQuiz,
		TaskID:         quiz.ID,
		CorrectCount:   correct,
		TotalQuestions: len(quiz.Questions),
	}, nil
}

func invalidateReport(ctx context.Context, cache ReportCache, studentID string) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, studentID); err != nil {
		logger.Log.Warn("failed to invalidate cached report", zap.String("studentId", studentID), zap.Error(err))
	}
}
