package service

import (
	"classroom_backend/internal/model"
	"classroom_backend/internal/repository/memory"
	"classroom_backend/internal/util"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuizFixture(t *testing.T) (*QuizService, *memory.Store, *fakeCache, *model.Quiz, *model.User) {
	t.Helper()
	store := memory.NewStore()
	cache := newFakeCache()
	instructor := seedUser(t, store, "instructor", "Ada", "Lovelace", model.Instructor)
	student := seedUser(t, store, "student", "Alan", "Turing", model.Student)
	course := seedCourse(t, store, instructor.ID)
	quiz := seedQuiz(t, store, course.ID, "Warmup", "2+2", "4", "capital of France", "Paris")
	return NewQuizService(store, store, store, cache), store, cache, quiz, student
}

func TestEvaluate_Scores(t *testing.T) {
	tests := []struct {
		name    string
		answers []string
		grade   float64
		correct int
	}{
		{name: "all correct", answers: []string{"4", "Paris"}, grade: 100, correct: 2},
		{name: "half correct", answers: []string{"5", "Paris"}, grade: 50, correct: 1},
		{name: "case sensitive", answers: []string{"4", "paris"}, grade: 50, correct: 1},
		{name: "short answer vector", answers: []string{"4"}, grade: 50, correct: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, quiz, student := newQuizFixture(t)

			res, err := svc.Evaluate(context.Background(), quiz.ID, student.ID, tt.answers)
			require.NoError(t, err)

			assert.Equal(t, tt.grade, res.TotalGrade)
			assert.Equal(t, tt.correct, res.CorrectCount)
			assert.Equal(t, 2, res.TotalQuestions)
			assert.Equal(t, model.GradeQuiz, res.Type)
			assert.Equal(t, quiz.ID, res.TaskID)
			assert.Equal(t, student.ID, res.StudentID)
		})
	}
}

func TestEvaluate_RecordsEventAndAttempt(t *testing.T) {
	svc, store, cache, quiz, student := newQuizFixture(t)
	ctx := context.Background()

	_, err := svc.Evaluate(ctx, quiz.ID, student.ID, []string{"4", "Paris"})
	require.NoError(t, err)

	events, err := store.ListGradeEventsByStudent(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 100.0, events[0].Grade)
	assert.Equal(t, model.GradeQuiz, events[0].Type)
	assert.Equal(t, quiz.ID, events[0].TaskID)

	attempts, err := store.ListQuizAttempts(ctx, student.ID, []string{quiz.ID})
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, 2, attempts[0].Score)
	assert.Equal(t, 2, attempts[0].Total)
	assert.Len(t, attempts[0].Answers, 2)

	assert.Equal(t, []string{student.ID}, cache.invalidated)
}

func TestEvaluate_DuplicateAttempt(t *testing.T) {
	svc, store, _, quiz, student := newQuizFixture(t)
	ctx := context.Background()

	_, err := svc.Evaluate(ctx, quiz.ID, student.ID, []string{"4", "Paris"})
	require.NoError(t, err)

	_, err = svc.Evaluate(ctx, quiz.ID, student.ID, []string{"5", "Rome"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrDuplicateAttempt))
	assert.Equal(t, "already taken this quiz", err.Error())

	events, err := store.ListGradeEventsByStudent(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 100.0, events[0].Grade)
}

func TestEvaluate_ConcurrentDuplicatesRecordOnce(t *testing.T) {
	svc, store, _, quiz, student := newQuizFixture(t)
	ctx := context.Background()

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Evaluate(ctx, quiz.ID, student.ID, []string{"4", "Paris"})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, util.ErrDuplicateAttempt), err)
	}
	assert.Equal(t, 1, succeeded)

	events, err := store.ListGradeEventsByStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestEvaluate_Errors(t *testing.T) {
	svc, store, _, quiz, student := newQuizFixture(t)
	ctx := context.Background()

	_, err := svc.Evaluate(ctx, quiz.ID, "", []string{"4"})
	assert.True(t, errors.Is(err, util.ErrValidation))

	_, err = svc.Evaluate(ctx, "missing", student.ID, []string{"4"})
	assert.True(t, errors.Is(err, util.ErrNotFound))
	assert.Equal(t, "quiz not found", err.Error())

	empty := &model.Quiz{CourseID: quiz.CourseID, Name: "Empty"}
	require.NoError(t, store.CreateQuiz(ctx, empty))
	_, err = svc.Evaluate(ctx, empty.ID, student.ID, nil)
	assert.True(t, errors.Is(err, util.ErrInvalidQuiz))

	events, err := store.ListGradeEventsByStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestCreateQuiz(t *testing.T) {
	svc, _, _, quiz, _ := newQuizFixture(t)
	ctx := context.Background()

	created, err := svc.CreateQuiz(ctx, quiz.CourseID, CreateQuizReq{
		Name: "Geography",
		Questions: []QuizQuestionReq{
			{Question: "capital of Italy", Answer: "Rome", Type: model.QuestionFIB},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Len(t, created.Questions, 1)

	_, err = svc.CreateQuiz(ctx, quiz.CourseID, CreateQuizReq{Name: "Empty"})
	assert.True(t, errors.Is(err, util.ErrInvalidQuiz))

	_, err = svc.CreateQuiz(ctx, quiz.CourseID, CreateQuizReq{
		Name:      "Blank",
		Questions: []QuizQuestionReq{{Question: "  ", Answer: "x"}},
	})
	assert.True(t, errors.Is(err, util.ErrValidation))

	_, err = svc.CreateQuiz(ctx, "missing", CreateQuizReq{
		Name:      "Orphan",
		Questions: []QuizQuestionReq{{Question: "q", Answer: "a"}},
	})
	assert.True(t, errors.Is(err, util.ErrNotFound))
}
