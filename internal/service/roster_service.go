package service

import (
	"classroom_backend/internal/model"
	"classroom_backend/internal/util"
	"classroom_backend/pkg/logger"
	"classroom_backend/pkg/monitoring"
	"classroom_backend/pkg/tracing"
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type RosterService struct {
	Courses     CourseStore
	Users       UserStore
	Quizzes     QuizStore
	Materials   MaterialStore
	Submissions SubmissionStore
	Grades      GradeStore
	Files       FileLinker
	Settings    *GradingSettings
}

func NewRosterService(courses CourseStore, users UserStore, quizzes QuizStore, materials MaterialStore,
	submissions SubmissionStore, grades GradeStore, files FileLinker, settings *GradingSettings) *RosterService {
	return &RosterService{
		Courses:     courses,
		Users:       users,
		Quizzes:     quizzes,
		Materials:   materials,
		Submissions: submissions,
		Grades:      grades,
		Files:       files,
		Settings:    settings,
	}
}

// RosterFilter 花名册过滤条件，零值表示不过滤
type RosterFilter struct {
	StudentID  string
	IsArchived *bool
	Query      string
}

type RosterQuizGrade struct {
	QuizID         string     `json:"quizId"`
	QuizName       string     `json:"quizName"`
	TotalGrade     *float64   `json:"totalGrade"`
	CorrectCount   *int       `json:"correctCount,omitempty"`
	TotalQuestions int        `json:"totalQuestions"`
	SubmittedAt    *time.Time `json:"submittedAt"`
	Status         string     `json:"status,omitempty"`
}

type RosterAssignment struct {
	SubmissionID   string    `json:"submissionId"`
	MaterialID     string    `json:"materialId"`
	MaterialName   string    `json:"materialName"`
	Description    string    `json:"description"`
	File           string    `json:"file"`
	SubmissionNote string    `json:"submissionDescription"`
	SubmissionFile string    `json:"submissionFile"`
	Grade          *float64  `json:"grade"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

// StudentRosterEntry 单个学生的成绩行；Error 非空表示该学生的数据未能完整加载
type StudentRosterEntry struct {
	StudentID   string             `json:"studentId"`
	Name        string             `json:"name"`
	Username    string             `json:"username"`
	Email       string             `json:"email"`
	Grades      []RosterQuizGrade  `json:"grades"`
	Assignments []RosterAssignment `json:"assignments"`
	Error       string             `json:"error,omitempty"`
}

// rosterScope 同一课程内所有学生共享的数据
type rosterScope struct {
	quizzes     []model.Quiz
	quizIDs     []string
	materials   map[string]model.Material
	materialIDs []string
	query       string
}

var errRosterTimeout = errors.New("roster timed out")

// Build 按选课顺序返回课程花名册。共享数据加载失败时整体失败，
// 单个学生的数据加载失败只降级该学生的条目。
func (s *RosterService) Build(ctx context.Context, courseID string, filter RosterFilter) ([]StudentRosterEntry, error) {
	started := time.Now()
	defer func() { monitoring.RosterDuration.Observe(time.Since(started).Seconds()) }()

	settings := s.Settings.Get()
	ctx, cancel := context.WithTimeout(ctx, settings.RosterTimeout)
	defer cancel()

	ctx, span := tracing.Start(ctx, "RosterService.Build")
	defer span.End()
	span.SetAttributes(attribute.String("course.id", courseID))

	if strings.TrimSpace(courseID) == "" {
		return nil, util.NewValidationError("course id is required")
	}

	if _, err := s.Courses.FindCourseByID(ctx, courseID); err != nil {
		if isNotFound(err) {
			return nil, util.NewNotFoundError("course not found")
		}
		return nil, err
	}

	studentIDs, err := s.Courses.ListEnrolledStudentIDs(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if filter.StudentID != "" {
		studentIDs = intersect(studentIDs, filter.StudentID)
	}

	scope, err := s.loadScope(ctx, courseID, filter)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("roster.students", len(studentIDs)),
		attribute.Int("roster.quizzes", len(scope.quizzes)),
	)

	entries := make([]*StudentRosterEntry, len(studentIDs))
	workers := settings.RosterWorkers
	if workers <= 0 {
		workers = 1
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i, id := range studentIDs {
		i, id := i, id
		g.Go(func() error {
			entries[i] = s.buildEntry(ctx, id, scope)
			return nil
		})
	}
	_ = g.Wait()

	roster := make([]StudentRosterEntry, 0, len(entries))
	for _, e := range entries {
		if e == nil {
			continue
		}
		roster = append(roster, *e)
	}
	return roster, nil
}

func (s *RosterService) loadScope(ctx context.Context, courseID string, filter RosterFilter) (*rosterScope, error) {
	quizzes, err := s.Quizzes.ListQuizzesByCourse(ctx, courseID, filter.IsArchived)
	if err != nil {
		return nil, err
	}
	assignments, err := s.Materials.ListMaterialsByCourseAndType(ctx, courseID, model.MaterialAssignment)
	if err != nil {
		return nil, err
	}

	scope := &rosterScope{
		quizzes:   quizzes,
		materials: make(map[string]model.Material, len(assignments)),
		query:     strings.ToLower(strings.TrimSpace(filter.Query)),
	}
	for _, q := range quizzes {
		scope.quizIDs = append(scope.quizIDs, q.ID)
	}
	for _, m := range assignments {
		scope.materials[m.ID] = m
		scope.materialIDs = append(scope.materialIDs, m.ID)
	}
	return scope, nil
}

// buildEntry 返回 nil 表示该学生不满足姓名过滤
func (s *RosterService) buildEntry(ctx context.Context, studentID string, scope *rosterScope) *StudentRosterEntry {
	entry := &StudentRosterEntry{
		StudentID:   studentID,
		Grades:      []RosterQuizGrade{},
		Assignments: []RosterAssignment{},
	}
	if ctx.Err() != nil {
		return s.degrade(entry, errRosterTimeout)
	}

	user, err := s.Users.FindUserByID(ctx, studentID)
	if err != nil {
		return s.degrade(entry, err)
	}
	if scope.query != "" && !matchesQuery(user, scope.query) {
		return nil
	}
	entry.Name = user.FullName()
	entry.Username = user.Username
	entry.Email = user.Email

	grades, err := s.quizGrades(ctx, studentID, scope)
	if err != nil {
		return s.degrade(entry, err)
	}
	assignments, err := s.assignments(ctx, studentID, scope)
	if err != nil {
		return s.degrade(entry, err)
	}
	entry.Grades = grades
	entry.Assignments = assignments
	return entry
}

func (s *RosterService) degrade(entry *StudentRosterEntry, err error) *StudentRosterEntry {
	if errors.Is(err, context.DeadlineExceeded) {
		err = errRosterTimeout
	}
	monitoring.RosterDegradedEntries.Inc()
	logger.Log.Warn("roster entry degraded", zap.String("studentId", entry.StudentID), zap.Error(err))
	entry.Error = err.Error()
	return entry
}

// quizGrades 课程中每个测验一行，未作答的标记为 "Quiz not taken"
func (s *RosterService) quizGrades(ctx context.Context, studentID string, scope *rosterScope) ([]RosterQuizGrade, error) {
	grades := make([]RosterQuizGrade, 0, len(scope.quizzes))
	if len(scope.quizzes) == 0 {
		return grades, nil
	}

	events, err := s.Grades.ListGradeEventsByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.Grades.ListQuizAttempts(ctx, studentID, scope.quizIDs)
	if err != nil {
		return nil, err
	}

	byTask := make(map[string]model.GradeEvent, len(events))
	for _, e := range events {
		if e.Type == model.GradeQuiz {
			byTask[e.TaskID] = e
		}
	}
	byQuiz := make(map[string]model.QuizAttempt, len(attempts))
	for _, a := range attempts {
		byQuiz[a.QuizID] = a
	}

	for _, q := range scope.quizzes {
		row := RosterQuizGrade{
			QuizID:         q.ID,
			QuizName:       q.Name,
			TotalQuestions: len(q.Questions),
		}
		event, ok := byTask[q.ID]
		if !ok {
			row.Status = util.QuizNotTaken
			grades = append(grades, row)
			continue
		}
		grade := event.Grade
		row.TotalGrade = &grade
		submitted := event.CreatedAt
		if a, ok := byQuiz[q.ID]; ok {
			score := a.Score
			row.CorrectCount = &score
			row.TotalQuestions = a.Total
			submitted = a.SubmittedAt
		}
		row.SubmittedAt = &submitted
		grades = append(grades, row)
	}
	return grades, nil
}

// assignments 只列出学生实际提交过的作业
func (s *RosterService) assignments(ctx context.Context, studentID string, scope *rosterScope) ([]RosterAssignment, error) {
	out := []RosterAssignment{}
	if len(scope.materialIDs) == 0 {
		return out, nil
	}

	submissions, err := s.Submissions.ListSubmissionsByStudent(ctx, studentID, scope.materialIDs)
	if err != nil {
		return nil, err
	}
	for _, sub := range submissions {
		row := RosterAssignment{
			SubmissionID:   sub.ID,
			MaterialID:     sub.MaterialID,
			MaterialName:   util.UnknownMaterial,
			Description:    util.NoDescription,
			File:           util.NoFile,
			SubmissionNote: sub.Description,
			SubmissionFile: s.link(ctx, sub.File),
			Grade:          sub.Grade,
			SubmittedAt:    sub.CreatedAt,
		}
		if m, ok := scope.materials[sub.MaterialID]; ok {
			row.MaterialName = m.Name
			row.Description = m.Description
			if m.File != "" {
				row.File = s.link(ctx, m.File)
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// link 链接生成失败时返回原始引用
func (s *RosterService) link(ctx context.Context, ref string) string {
	if ref == "" || s.Files == nil {
		return ref
	}
	u, err := s.Files.Link(ctx, ref)
	if err != nil {
		logger.Log.Warn("failed to resolve file link", zap.String("ref", ref), zap.Error(err))
		return ref
	}
	return u
}

func matchesQuery(user *model.User, query string) bool {
	return strings.Contains(strings.ToLower(user.FullName()), query) ||
		strings.Contains(strings.ToLower(user.Username), query)
}

func intersect(ids []string, id string) []string {
	for _, v := range ids {
		if v == id {
			return []string{id}
		}
	}
	return nil
}
