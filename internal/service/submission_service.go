package service

import (
	"classroom_backend/internal/model"
	"classroom_backend/internal/util"
	"classroom_backend/pkg/logger"
	"classroom_backend/pkg/monitoring"
	"context"
	"math"
	"strings"

	"go.uber.org/zap"
)

type SubmissionService struct {
	Submissions SubmissionStore
	Materials   MaterialStore
	Users       UserStore
	Cache       ReportCache
}

func NewSubmissionService(submissions SubmissionStore, materials MaterialStore, users UserStore, cache ReportCache) *SubmissionService {
	return &SubmissionService{Submissions: submissions, Materials: materials, Users: users, Cache: cache}
}

type SubmitReq struct {
	Description string `json:"description"`
	File        string `json:"file"`
}

// GradeRecord 作业评分结果，TotalGrade 固定两位小数
type GradeRecord struct {
	StudentID  string          `json:"studentId"`
	TotalGrade string          `json:"totalGrade"`
	Type       model.GradeType `json:"type"`
	TaskID     string          `json:"taskId"`
}

func (s *SubmissionService) Submit(ctx context.Context, materialID, studentID string, req SubmitReq) (*model.Submission, error) {
	if strings.TrimSpace(studentID) == "" {
		return nil, util.NewValidationError("student id is required")
	}

	material, err := s.Materials.FindMaterialByID(ctx, materialID)
	if err != nil {
		if isNotFound(err) {
			return nil, util.NewNotFoundError("material not found")
		}
		return nil, err
	}
	if material.Type != model.MaterialAssignment {
		return nil, util.NewValidationError("only assignments accept submissions")
	}

	student, err := s.Users.FindUserByID(ctx, studentID)
	if err != nil {
		if isNotFound(err) {
			return nil, util.NewNotFoundError("student not found")
		}
		return nil, err
	}

	submission := &model.Submission{
		MaterialID:      materialID,
		StudentID:       studentID,
		StudentName:     student.FullName(),
		StudentUsername: student.Username,
		Description:     req.Description,
		File:            req.File,
	}
	if err := s.Submissions.CreateSubmission(ctx, submission); err != nil {
		if isDuplicate(err) {
			return nil, util.NewDuplicateAttemptError("already submitted this material")
		}
		return nil, err
	}
	return submission, nil
}

// List 按学生、资料与归档状态精确筛选提交，供教师评分前查看
func (s *SubmissionService) List(ctx context.Context, filter model.SubmissionFilter) ([]model.Submission, error) {
	subs, err := s.Submissions.ListSubmissions(ctx, filter)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []model.Submission{}
	}
	return subs, nil
}

// Grade 给学生的作业提交打分并记录 task 成绩事件。允许重复评分（覆盖）。
func (s *SubmissionService) Grade(ctx context.Context, materialID, studentID string, grade float64) (*GradeRecord, error) {
	if math.IsNaN(grade) || grade < 0 || grade > 100 {
		monitoring.GradeOutcomes.WithLabelValues(string(model.GradeTask), "rejected").Inc()
		return nil, util.NewValidationError("invalid grade")
	}
	if strings.TrimSpace(materialID) == "" {
		return nil, util.NewValidationError("material id is required")
	}
	if strings.TrimSpace(studentID) == "" {
		return nil, util.NewValidationError("student id is required")
	}

	submission, err := s.Submissions.FindActiveSubmission(ctx, materialID, studentID)
	if err != nil {
		if isNotFound(err) {
			return nil, util.NewNotFoundError("submission not found")
		}
		return nil, err
	}

	event := &model.GradeEvent{
		StudentID: studentID,
		TaskID:    materialID,
		Grade:     grade,
		Type:      model.GradeTask,
	}
	if err := s.Submissions.ApplyGrade(ctx, submission.ID, grade, event); err != nil {
		if isNotFound(err) {
			return nil, util.NewNotFoundError("submission not found")
		}
		monitoring.GradeOutcomes.WithLabelValues(string(model.GradeTask), "failed").Inc()
		return nil, err
	}

	invalidateReport(ctx, s.Cache, studentID)
	monitoring.GradeOutcomes.WithLabelValues(string(model.GradeTask), "recorded").Inc()
	logger.Log.Info("submission graded",
		zap.String("studentId", studentID),
		zap.String("taskId", materialID),
		zap.Float64("grade", grade),
		zap.Bool("regraded", submission.IsGraded()),
	)

	return &GradeRecord{
		StudentID:  studentID,
		TotalGrade: formatGrade(grade),
		Type:       model.GradeTask,
		TaskID:     materialID,
	}, nil
}
