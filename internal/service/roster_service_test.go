package service

import (
	"classroom_backend/internal/model"
	"classroom_backend/internal/repository/memory"
	"classroom_backend/internal/util"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rosterFixture struct {
	svc      *RosterService
	store    *memory.Store
	course   *model.Course
	quiz     *model.Quiz
	archived *model.Quiz
	essay    *model.Material
	alan     *model.User
	grace    *model.User
	linus    *model.User
}

func newRosterFixture(t *testing.T) *rosterFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	instructor := seedUser(t, store, "instructor", "Ada", "Lovelace", model.Instructor)
	course := seedCourse(t, store, instructor.ID)

	f := &rosterFixture{store: store, course: course}
	f.alan = seedUser(t, store, "aturing", "Alan", "Turing", model.Student)
	f.grace = seedUser(t, store, "ghopper", "Grace", "Hopper", model.Student)
	f.linus = seedUser(t, store, "ltorvalds", "Linus", "Torvalds", model.Student)
	for _, u := range []*model.User{f.alan, f.grace, f.linus} {
		require.NoError(t, store.EnrollStudent(ctx, course.ID, u.ID))
	}

	f.quiz = seedQuiz(t, store, course.ID, "Warmup", "2+2", "4", "capital of France", "Paris")
	f.archived = &model.Quiz{CourseID: course.ID, Name: "Old", IsArchived: true,
		Questions: []model.QuizQuestion{{Question: "q", Answer: "a"}}}
	require.NoError(t, store.CreateQuiz(ctx, f.archived))
	f.essay = seedAssignment(t, store, course.ID, "Essay")

	quizSvc := NewQuizService(store, store, store, nil)
	_, err := quizSvc.Evaluate(ctx, f.quiz.ID, f.alan.ID, []string{"4", "Rome"})
	require.NoError(t, err)

	seedSubmission(t, store, f.essay.ID, f.alan)
	_, err = NewSubmissionService(store, store, store, nil).Grade(ctx, f.essay.ID, f.alan.ID, 88)
	require.NoError(t, err)

	f.svc = NewRosterService(store, store, store, store, store, store, LocalFileLinker{}, testSettings())
	return f
}

func TestBuildRoster_EnrollmentOrderAndContent(t *testing.T) {
	f := newRosterFixture(t)

	roster, err := f.svc.Build(context.Background(), f.course.ID, RosterFilter{})
	require.NoError(t, err)
	require.Len(t, roster, 3)
	assert.Equal(t, []string{f.alan.ID, f.grace.ID, f.linus.ID},
		[]string{roster[0].StudentID, roster[1].StudentID, roster[2].StudentID})

	alan := roster[0]
	assert.Equal(t, "Alan Turing", alan.Name)
	assert.Equal(t, "aturing", alan.Username)
	assert.Equal(t, "aturing@example.com", alan.Email)
	assert.Empty(t, alan.Error)

	require.Len(t, alan.Grades, 2)
	taken := alan.Grades[0]
	assert.Equal(t, f.quiz.ID, taken.QuizID)
	require.NotNil(t, taken.TotalGrade)
	assert.Equal(t, 50.0, *taken.TotalGrade)
	require.NotNil(t, taken.CorrectCount)
	assert.Equal(t, 1, *taken.CorrectCount)
	assert.NotNil(t, taken.SubmittedAt)
	assert.Empty(t, taken.Status)

	notTaken := alan.Grades[1]
	assert.Equal(t, f.archived.ID, notTaken.QuizID)
	assert.Equal(t, util.QuizNotTaken, notTaken.Status)
	assert.Nil(t, notTaken.TotalGrade)
	assert.Nil(t, notTaken.SubmittedAt)

	require.Len(t, alan.Assignments, 1)
	a := alan.Assignments[0]
	assert.Equal(t, "Essay", a.MaterialName)
	assert.Equal(t, "Essay description", a.Description)
	assert.Equal(t, "/uploads/materials/Essay.pdf", a.File)
	assert.Equal(t, "/uploads/submissions/aturing.zip", a.SubmissionFile)
	require.NotNil(t, a.Grade)
	assert.Equal(t, 88.0, *a.Grade)

	// 没有提交的学生不生成作业占位
	grace := roster[1]
	assert.Empty(t, grace.Assignments)
	require.Len(t, grace.Grades, 2)
	assert.Equal(t, util.QuizNotTaken, grace.Grades[0].Status)
}

func TestBuildRoster_Filters(t *testing.T) {
	f := newRosterFixture(t)
	ctx := context.Background()
	archived := false

	roster, err := f.svc.Build(ctx, f.course.ID, RosterFilter{IsArchived: &archived})
	require.NoError(t, err)
	require.Len(t, roster, 3)
	require.Len(t, roster[0].Grades, 1)
	assert.Equal(t, f.quiz.ID, roster[0].Grades[0].QuizID)

	roster, err = f.svc.Build(ctx, f.course.ID, RosterFilter{StudentID: f.grace.ID})
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, f.grace.ID, roster[0].StudentID)

	roster, err = f.svc.Build(ctx, f.course.ID, RosterFilter{StudentID: "not-enrolled"})
	require.NoError(t, err)
	assert.Empty(t, roster)

	roster, err = f.svc.Build(ctx, f.course.ID, RosterFilter{Query: "TORV"})
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, f.linus.ID, roster[0].StudentID)

	roster, err = f.svc.Build(ctx, f.course.ID, RosterFilter{Query: "ghop"})
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, f.grace.ID, roster[0].StudentID)
}

func TestBuildRoster_DegradesFailedStudent(t *testing.T) {
	f := newRosterFixture(t)
	f.store.FailFor[f.grace.ID] = errors.New("connection reset")

	roster, err := f.svc.Build(context.Background(), f.course.ID, RosterFilter{})
	require.NoError(t, err)
	require.Len(t, roster, 3)

	assert.Empty(t, roster[0].Error)
	assert.Len(t, roster[0].Grades, 2)

	degraded := roster[1]
	assert.Equal(t, f.grace.ID, degraded.StudentID)
	assert.Equal(t, "connection reset", degraded.Error)
	assert.Empty(t, degraded.Grades)
	assert.Empty(t, degraded.Assignments)

	assert.Empty(t, roster[2].Error)
}

func TestBuildRoster_CourseNotFound(t *testing.T) {
	f := newRosterFixture(t)

	_, err := f.svc.Build(context.Background(), "missing", RosterFilter{})
	assert.True(t, errors.Is(err, util.ErrNotFound))
	assert.Equal(t, "course not found", err.Error())
}

func TestBuildRoster_Timeout(t *testing.T) {
	f := newRosterFixture(t)
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := f.svc.Build(ctx, f.course.ID, RosterFilter{})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestBuildRoster_MissingMaterialFallback(t *testing.T) {
	f := newRosterFixture(t)
	scope := &rosterScope{
		materials:   map[string]model.Material{},
		materialIDs: []string{f.essay.ID},
	}

	rows, err := f.svc.assignments(context.Background(), f.alan.ID, scope)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, util.UnknownMaterial, rows[0].MaterialName)
	assert.Equal(t, util.NoDescription, rows[0].Description)
	assert.Equal(t, util.NoFile, rows[0].File)
}

func TestBuildRoster_WithoutSettingsUsesDefaults(t *testing.T) {
	f := newRosterFixture(t)
	f.svc.Settings = nil

	roster, err := f.svc.Build(context.Background(), f.course.ID, RosterFilter{})
	require.NoError(t, err)
	require.Len(t, roster, 3)
	for _, entry := range roster {
		assert.Empty(t, entry.Error)
	}
}
