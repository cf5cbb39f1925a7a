package service

import (
	"classroom_backend/internal/model"
	"classroom_backend/internal/util"
	"classroom_backend/pkg/logger"
	"classroom_backend/pkg/monitoring"
	"classroom_backend/pkg/tracing"
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type ReportService struct {
	Grades    GradeStore
	Materials MaterialStore
	Quizzes   QuizStore
	Cache     ReportCache
	Settings  *GradingSettings
}

func NewReportService(grades GradeStore, materials MaterialStore, quizzes QuizStore, cache ReportCache, settings *GradingSettings) *ReportService {
	return &ReportService{
		Grades:    grades,
		Materials: materials,
		Quizzes:   quizzes,
		Cache:     cache,
		Settings:  settings,
	}
}

type ReportEntry struct {
	TaskID   string          `json:"taskId"`
	TaskName string          `json:"taskName"`
	Grade    float64         `json:"grade"`
	Type     model.GradeType `json:"type"`
}

// PerformanceReport 学生成绩汇总
type PerformanceReport struct {
	StudentID           string        `json:"studentId"`
	Grades              []ReportEntry `json:"grades"`
	Average             float64       `json:"average"`
	QuizAverage         float64       `json:"quizAverage"`
	TaskAverage         float64       `json:"taskAverage"`
	Weakness            string        `json:"weakness"`
	WeaknessDetails     string        `json:"weaknessDetails"`
	PerformanceFeedback string        `json:"performanceFeedback"`
}

func (s *ReportService) Build(ctx context.Context, studentID string) (*PerformanceReport, error) {
	ctx, span := tracing.Start(ctx, "ReportService.Build")
	defer span.End()
	span.SetAttributes(attribute.String("student.id", studentID))

	if strings.TrimSpace(studentID) == "" {
		return nil, util.NewValidationError("student id is required")
	}

	// 代数必须在读取成绩事件之前取得，期间的成绩写入会使本次结果落在旧代数下
	cacheable := s.Cache != nil
	var gen int64
	if cacheable {
		var err error
		if gen, err = s.Cache.Generation(ctx, studentID); err != nil {
			logger.Log.Warn("failed to read report generation", zap.String("studentId", studentID), zap.Error(err))
			cacheable = false
		}
	}
	if cacheable {
		var cached PerformanceReport
		hit, err := s.Cache.Get(ctx, studentID, gen, &cached)
		if err != nil {
			logger.Log.Warn("failed to read cached report", zap.String("studentId", studentID), zap.Error(err))
		} else if hit {
			monitoring.ReportCache.WithLabelValues("hit").Inc()
			return &cached, nil
		}
		monitoring.ReportCache.WithLabelValues("miss").Inc()
	}

	events, err := s.Grades.ListGradeEventsByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, util.NewNotFoundError("no grades found")
	}

	names, err := s.resolveTaskNames(ctx, events)
	if err != nil {
		return nil, err
	}

	settings := s.Settings.Get()
	report := summarize(studentID, events, names, settings.LowGradeThreshold)

	if cacheable {
		if err := s.Cache.Set(ctx, studentID, gen, report, settings.ReportCacheTTL); err != nil {
			logger.Log.Warn("failed to cache report", zap.String("studentId", studentID), zap.Error(err))
		}
	}
	return report, nil
}

// resolveTaskNames 批量查询作业与测验名称；找不到的任务回退为 "Unknown Task"
func (s *ReportService) resolveTaskNames(ctx context.Context, events []model.GradeEvent) (map[string]string, error) {
	var quizIDs, taskIDs []string
	for _, e := range events {
		if e.Type == model.GradeQuiz {
			quizIDs = append(quizIDs, e.TaskID)
		} else {
			taskIDs = append(taskIDs, e.TaskID)
		}
	}

	names := make(map[string]string, len(events))
	if len(quizIDs) > 0 {
		quizzes, err := s.Quizzes.FindQuizzesByIDs(ctx, quizIDs)
		if err != nil {
			return nil, err
		}
		for _, q := range quizzes {
			names[q.ID] = q.Name
		}
	}
	if len(taskIDs) > 0 {
		materials, err := s.Materials.FindMaterialsByIDs(ctx, taskIDs)
		if err != nil {
			return nil, err
		}
		for _, m := range materials {
			names[m.ID] = m.Name
		}
	}
	return names, nil
}

func summarize(studentID string, events []model.GradeEvent, names map[string]string, threshold float64) *PerformanceReport {
	report := &PerformanceReport{
		StudentID: studentID,
		Grades:    make([]ReportEntry, 0, len(events)),
	}

	var all, quizGrades, taskGrades []float64
	var lowQuizzes, lowTasks []string
	for _, e := range events {
		name, ok := names[e.TaskID]
		if !ok {
			name = util.UnknownTask
		}
		report.Grades = append(report.Grades, ReportEntry{
			TaskID:   e.TaskID,
			TaskName: name,
			Grade:    e.Grade,
			Type:     e.Type,
		})

		all = append(all, e.Grade)
		switch e.Type {
		case model.GradeQuiz:
			quizGrades = append(quizGrades, e.Grade)
			if e.Grade < threshold {
				lowQuizzes = append(lowQuizzes, name)
			}
		case model.GradeTask:
			taskGrades = append(taskGrades, e.Grade)
			if e.Grade < threshold {
				lowTasks = append(lowTasks, name)
			}
		}
	}

	report.Average = mean2(all)
	report.QuizAverage = mean2(quizGrades)
	report.TaskAverage = mean2(taskGrades)

	// 只有两类成绩都存在时才比较，避免缺失的一侧按 0 计入
	report.Weakness = util.WeaknessNone
	if len(quizGrades) > 0 && len(taskGrades) > 0 {
		switch {
		case report.QuizAverage < report.TaskAverage:
			report.Weakness = util.WeaknessQuiz
			report.WeaknessDetails = fmt.Sprintf("Your quiz average (%s) is lower than your task average (%s).",
				formatGrade(report.QuizAverage), formatGrade(report.TaskAverage))
		case report.TaskAverage < report.QuizAverage:
			report.Weakness = util.WeaknessTask
			report.WeaknessDetails = fmt.Sprintf("Your task average (%s) is lower than your quiz average (%s).",
				formatGrade(report.TaskAverage), formatGrade(report.QuizAverage))
		}
	}

	switch {
	case len(lowQuizzes) > 0:
		report.PerformanceFeedback = "You need to improve in the following quizzes: " + strings.Join(lowQuizzes, ", ")
	case len(lowTasks) > 0:
		report.PerformanceFeedback = "You need to improve in the following tasks: " + strings.Join(lowTasks, ", ")
	default:
		report.PerformanceFeedback = util.PerformingWell
	}
	return report
}
