package memory

import (
	"classroom_backend/internal/model"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestStore_UniqueConstraints(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	u := &model.User{Username: "a", Email: "a@example.com"}
	require.NoError(t, s.CreateUser(ctx, u))
	err := s.CreateUser(ctx, &model.User{Username: "a", Email: "b@example.com"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	require.NoError(t, s.EnrollStudent(ctx, "c1", u.ID))
	assert.ErrorIs(t, s.EnrollStudent(ctx, "c1", u.ID), gorm.ErrDuplicatedKey)

	sub := &model.Submission{MaterialID: "m1", StudentID: u.ID}
	require.NoError(t, s.CreateSubmission(ctx, sub))
	assert.ErrorIs(t, s.CreateSubmission(ctx, &model.Submission{MaterialID: "m1", StudentID: u.ID}), gorm.ErrDuplicatedKey)

	event := &model.GradeEvent{StudentID: u.ID, TaskID: "q1", Grade: 50, Type: model.GradeQuiz}
	attempt := &model.QuizAttempt{StudentID: u.ID, QuizID: "q1"}
	require.NoError(t, s.RecordQuizAttempt(ctx, attempt, event))
	err = s.RecordQuizAttempt(ctx, &model.QuizAttempt{StudentID: u.ID, QuizID: "q1"},
		&model.GradeEvent{StudentID: u.ID, TaskID: "q1", Grade: 100, Type: model.GradeQuiz})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestStore_ApplyGradeUpserts(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	sub := &model.Submission{MaterialID: "m1", StudentID: "s1"}
	require.NoError(t, s.CreateSubmission(ctx, sub))

	require.NoError(t, s.ApplyGrade(ctx, sub.ID, 40, &model.GradeEvent{StudentID: "s1", TaskID: "m1", Grade: 40, Type: model.GradeTask}))
	require.NoError(t, s.ApplyGrade(ctx, sub.ID, 75, &model.GradeEvent{StudentID: "s1", TaskID: "m1", Grade: 75, Type: model.GradeTask}))

	events, err := s.ListGradeEventsByStudent(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 75.0, events[0].Grade)

	got, err := s.FindActiveSubmission(ctx, "m1", "s1")
	require.NoError(t, err)
	require.NotNil(t, got.Grade)
	assert.Equal(t, 75.0, *got.Grade)

	err = s.ApplyGrade(ctx, "missing", 10, &model.GradeEvent{StudentID: "s1", TaskID: "m2"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestStore_OrderingAndFailures(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	for _, id := range []string{"t3", "t1", "t2"} {
		require.NoError(t, s.InsertGradeEvent(ctx, &model.GradeEvent{StudentID: "s1", TaskID: id, Type: model.GradeTask}))
	}

	events, err := s.ListGradeEventsByStudent(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, []string{"t3", "t1", "t2"}, []string{events[0].TaskID, events[1].TaskID, events[2].TaskID})

	boom := errors.New("boom")
	s.FailFor["s1"] = boom
	_, err = s.ListGradeEventsByStudent(ctx, "s1")
	assert.ErrorIs(t, err, boom)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.FindCourseByID(cancelled, "c1")
	assert.ErrorIs(t, err, context.Canceled)
}
