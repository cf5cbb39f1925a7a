package service

import (
	"classroom_backend/internal/model"
	"classroom_backend/internal/repository/memory"
	"classroom_backend/internal/util"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseService(t *testing.T) {
	store := memory.NewStore()
	svc := NewCourseService(store, store, store)
	ctx := context.Background()
	instructor := seedUser(t, store, "instructor", "Ada", "Lovelace", model.Instructor)
	student := seedUser(t, store, "student", "Alan", "Turing", model.Student)

	course, err := svc.CreateCourse(ctx, instructor.ID, CreateCourseReq{Name: "Algebra", Section: "B"})
	require.NoError(t, err)
	assert.Equal(t, instructor.ID, course.InstructorID)

	_, err = svc.CreateCourse(ctx, instructor.ID, CreateCourseReq{Name: " "})
	assert.True(t, errors.Is(err, util.ErrValidation))

	require.NoError(t, svc.JoinCourse(ctx, course.ID, student.ID))
	err = svc.JoinCourse(ctx, course.ID, student.ID)
	assert.True(t, errors.Is(err, util.ErrValidation))
	err = svc.JoinCourse(ctx, "missing", student.ID)
	assert.True(t, errors.Is(err, util.ErrNotFound))

	ids, err := store.ListEnrolledStudentIDs(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{student.ID}, ids)

	material, err := svc.CreateMaterial(ctx, course.ID, instructor.ID, CreateMaterialReq{Name: "Essay"})
	require.NoError(t, err)
	assert.Equal(t, model.MaterialAssignment, material.Type)
	assert.Equal(t, "Ada Lovelace", material.InstructorName)

	_, err = svc.CreateMaterial(ctx, course.ID, instructor.ID, CreateMaterialReq{Name: "Bad", Type: "video"})
	assert.True(t, errors.Is(err, util.ErrValidation))
}

func TestAuthService(t *testing.T) {
	store := memory.NewStore()
	svc := NewAuthService(store, &testJWT)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterReq{
		Username:  "aturing",
		Password:  "enigma42",
		Email:     "alan@example.com",
		FirstName: "Alan",
		LastName:  "Turing",
	})
	require.NoError(t, err)
	assert.Equal(t, model.Student, user.Role)
	assert.NotEqual(t, "enigma42", user.Password)

	_, err = svc.Register(ctx, RegisterReq{Username: "aturing", Password: "x", Email: "other@example.com"})
	assert.True(t, errors.Is(err, util.ErrValidation))

	_, err = svc.Register(ctx, RegisterReq{Username: "root", Password: "x", Email: "root@example.com", Role: model.Admin})
	assert.True(t, errors.Is(err, util.ErrValidation))

	token, logged, err := svc.Login(ctx, "aturing", "enigma42")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	claims, err := util.ParseJWT(token, testJWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.Student, claims.Role)

	_, _, err = svc.Login(ctx, "aturing", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody", "enigma42")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func strPtr(s string) *string { return &s }

func TestUpdateCourseAndMaterial(t *testing.T) {
	store := memory.NewStore()
	svc := NewCourseService(store, store, store)
	ctx := context.Background()
	instructor := seedUser(t, store, "instructor", "Ada", "Lovelace", model.Instructor)
	student := seedUser(t, store, "student", "Alan", "Turing", model.Student)
	course := seedCourse(t, store, instructor.ID)
	essay := seedAssignment(t, store, course.ID, "Essay")

	archived := true
	updated, err := svc.UpdateCourse(ctx, course.ID, UpdateCourseReq{Description: strPtr("Linear algebra"), IsArchived: &archived})
	require.NoError(t, err)
	assert.Equal(t, "Algebra", updated.Name)
	assert.Equal(t, "Linear algebra", updated.Description)
	assert.True(t, updated.IsArchived)

	// 归档后不能再选课
	err = svc.JoinCourse(ctx, course.ID, student.ID)
	assert.True(t, errors.Is(err, util.ErrValidation))

	_, err = svc.UpdateCourse(ctx, course.ID, UpdateCourseReq{Name: strPtr(" ")})
	assert.True(t, errors.Is(err, util.ErrValidation))
	_, err = svc.UpdateCourse(ctx, "missing", UpdateCourseReq{})
	assert.True(t, errors.Is(err, util.ErrNotFound))

	material, err := svc.UpdateMaterial(ctx, essay.ID, UpdateMaterialReq{Name: strPtr("Final essay"), File: strPtr("materials/final.pdf")})
	require.NoError(t, err)
	assert.Equal(t, "Final essay", material.Name)
	assert.Equal(t, "Essay description", material.Description)

	stored, err := store.FindMaterialByID(ctx, essay.ID)
	require.NoError(t, err)
	assert.Equal(t, "materials/final.pdf", stored.File)
	assert.Equal(t, model.MaterialAssignment, stored.Type)

	video := model.MaterialType("video")
	_, err = svc.UpdateMaterial(ctx, essay.ID, UpdateMaterialReq{Type: &video})
	assert.True(t, errors.Is(err, util.ErrValidation))
	_, err = svc.UpdateMaterial(ctx, "missing", UpdateMaterialReq{})
	assert.True(t, errors.Is(err, util.ErrNotFound))
}

func TestCommentService(t *testing.T) {
	store := memory.NewStore()
	svc := NewCommentService(store, store, store)
	ctx := context.Background()
	instructor := seedUser(t, store, "instructor", "Ada", "Lovelace", model.Instructor)
	student := seedUser(t, store, "student", "Alan", "Turing", model.Student)
	course := seedCourse(t, store, instructor.ID)
	essay := seedAssignment(t, store, course.ID, "Essay")
	notes := seedAssignment(t, store, course.ID, "Notes")

	first, err := svc.Create(ctx, essay.ID, student.ID, CreateCommentReq{Message: "Is the limit 2 pages?"})
	require.NoError(t, err)
	assert.Equal(t, "Alan Turing", first.UserName)
	_, err = svc.Create(ctx, essay.ID, instructor.ID, CreateCommentReq{Message: "Yes."})
	require.NoError(t, err)
	_, err = svc.Create(ctx, notes.ID, student.ID, CreateCommentReq{Message: "Thanks"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, essay.ID, student.ID, CreateCommentReq{Message: "  "})
	assert.True(t, errors.Is(err, util.ErrValidation))
	_, err = svc.Create(ctx, "missing", student.ID, CreateCommentReq{Message: "hi"})
	assert.True(t, errors.Is(err, util.ErrNotFound))

	comments, err := svc.List(ctx, model.CommentFilter{MaterialID: essay.ID})
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID)
	assert.Equal(t, "Yes.", comments[1].Message)

	comments, err = svc.List(ctx, model.CommentFilter{UserID: student.ID})
	require.NoError(t, err)
	assert.Len(t, comments, 2)
}
