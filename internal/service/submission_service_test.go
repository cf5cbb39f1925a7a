package service

import (
	"classroom_backend/internal/model"
	"classroom_backend/internal/repository/memory"
	"classroom_backend/internal/util"
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submissionFixture struct {
	svc        *SubmissionService
	store      *memory.Store
	cache      *fakeCache
	material   *model.Material
	student    *model.User
	submission *model.Submission
}

func newSubmissionFixture(t *testing.T) *submissionFixture {
	t.Helper()
	store := memory.NewStore()
	cache := newFakeCache()
	instructor := seedUser(t, store, "instructor", "Ada", "Lovelace", model.Instructor)
	student := seedUser(t, store, "student", "Alan", "Turing", model.Student)
	course := seedCourse(t, store, instructor.ID)
	material := seedAssignment(t, store, course.ID, "Essay")
	sub := seedSubmission(t, store, material.ID, student)
	return &submissionFixture{
		svc:        NewSubmissionService(store, store, store, cache),
		store:      store,
		cache:      cache,
		material:   material,
		student:    student,
		submission: sub,
	}
}

func TestGrade_UngradedSubmission(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()

	rec, err := f.svc.Grade(ctx, f.material.ID, f.student.ID, 85)
	require.NoError(t, err)
	assert.Equal(t, &GradeRecord{
		StudentID:  f.student.ID,
		TotalGrade: "85.00",
		Type:       model.GradeTask,
		TaskID:     f.material.ID,
	}, rec)

	sub, err := f.store.FindActiveSubmission(ctx, f.material.ID, f.student.ID)
	require.NoError(t, err)
	require.NotNil(t, sub.Grade)
	assert.Equal(t, 85.0, *sub.Grade)

	events, err := f.store.ListGradeEventsByStudent(ctx, f.student.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.GradeTask, events[0].Type)
	assert.Equal(t, f.material.ID, events[0].TaskID)
	assert.Equal(t, 85.0, events[0].Grade)

	assert.Equal(t, []string{f.student.ID}, f.cache.invalidated)
}

func TestGrade_Bounds(t *testing.T) {
	tests := []struct {
		grade   float64
		wantErr bool
	}{
		{grade: -1, wantErr: true},
		{grade: 101, wantErr: true},
		{grade: math.NaN(), wantErr: true},
		{grade: 0},
		{grade: 100},
		{grade: 72.5},
	}
	for _, tt := range tests {
		f := newSubmissionFixture(t)
		_, err := f.svc.Grade(context.Background(), f.material.ID, f.student.ID, tt.grade)
		if tt.wantErr {
			require.Error(t, err, "grade %v", tt.grade)
			assert.True(t, errors.Is(err, util.ErrValidation))
			assert.Equal(t, "invalid grade", err.Error())
			continue
		}
		assert.NoError(t, err, "grade %v", tt.grade)
	}
}

func TestGrade_RegradeOverwrites(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()

	_, err := f.svc.Grade(ctx, f.material.ID, f.student.ID, 60)
	require.NoError(t, err)
	rec, err := f.svc.Grade(ctx, f.material.ID, f.student.ID, 90)
	require.NoError(t, err)
	assert.Equal(t, "90.00", rec.TotalGrade)

	events, err := f.store.ListGradeEventsByStudent(ctx, f.student.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 90.0, events[0].Grade)
}

func TestGrade_SubmissionNotFound(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()

	_, err := f.svc.Grade(ctx, "missing", f.student.ID, 50)
	assert.True(t, errors.Is(err, util.ErrNotFound))
	assert.Equal(t, "submission not found", err.Error())

	f.store.SetSubmissionArchived(f.submission.ID, true)
	_, err = f.svc.Grade(ctx, f.material.ID, f.student.ID, 50)
	assert.True(t, errors.Is(err, util.ErrNotFound))

	_, err = f.svc.Grade(ctx, "", f.student.ID, 50)
	assert.True(t, errors.Is(err, util.ErrValidation))
}

func TestSubmit(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	other := seedUser(t, f.store, "grace", "Grace", "Hopper", model.Student)

	sub, err := f.svc.Submit(ctx, f.material.ID, other.ID, SubmitReq{Description: "done", File: "grace.zip"})
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", sub.StudentName)
	assert.Equal(t, "grace", sub.StudentUsername)
	assert.Nil(t, sub.Grade)

	_, err = f.svc.Submit(ctx, f.material.ID, other.ID, SubmitReq{})
	assert.True(t, errors.Is(err, util.ErrDuplicateAttempt))
	assert.Equal(t, "already submitted this material", err.Error())

	reading := &model.Material{CourseID: f.material.CourseID, Name: "Notes", Type: model.MaterialReading}
	require.NoError(t, f.store.CreateMaterial(ctx, reading))
	_, err = f.svc.Submit(ctx, reading.ID, other.ID, SubmitReq{})
	assert.True(t, errors.Is(err, util.ErrValidation))

	_, err = f.svc.Submit(ctx, "missing", other.ID, SubmitReq{})
	assert.True(t, errors.Is(err, util.ErrNotFound))
}

func TestSubmit_ConcurrentDuplicatesStoreOnce(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	other := seedUser(t, f.store, "grace", "Grace", "Hopper", model.Student)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Submit(ctx, f.material.ID, other.ID, SubmitReq{File: "grace.zip"})
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

	subs, err := f.store.ListSubmissions(ctx, model.SubmissionFilter{MaterialID: f.material.ID, StudentID: other.ID})
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestListSubmissions_Filters(t *testing.T) {
	f := newSubmissionFixture(t)
	ctx := context.Background()
	other := seedUser(t, f.store, "grace", "Grace", "Hopper", model.Student)
	graceSub, err := f.svc.Submit(ctx, f.material.ID, other.ID, SubmitReq{File: "grace.zip"})
	require.NoError(t, err)
	f.store.SetSubmissionArchived(f.submission.ID, true)

	all, err := f.svc.List(ctx, model.SubmissionFilter{MaterialID: f.material.ID})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active := false
	subs, err := f.svc.List(ctx, model.SubmissionFilter{MaterialID: f.material.ID, IsArchived: &active})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, graceSub.ID, subs[0].ID)

	subs, err = f.svc.List(ctx, model.SubmissionFilter{StudentID: f.student.ID})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, f.submission.ID, subs[0].ID)

	subs, err = f.svc.List(ctx, model.SubmissionFilter{MaterialID: "missing"})
	require.NoError(t, err)
	assert.NotNil(t, subs)
	assert.Empty(t, subs)
}
