package service

import (
	"classroom_backend/internal/model"
	"classroom_backend/internal/util"
	"context"
	"strings"
	"time"
)

type CourseService struct {
	Courses   CourseStore
	Materials MaterialStore
	Users     UserStore
}

func NewCourseService(courses CourseStore, materials MaterialStore, users UserStore) *CourseService {
	return &CourseService{Courses: courses, Materials: materials, Users: users}
}

type CreateCourseReq struct {
	Name        string `json:"name" binding:"required"`
	Section     string `json:"section"`
	Description string `json:"description"`
	File        string `json:"file"`
}

type CreateMaterialReq struct {
	Name        string             `json:"name" binding:"required"`
	Description string             `json:"description"`
	File        string             `json:"file"`
	Type        model.MaterialType `json:"type"`
	DueDate     *time.Time         `json:"dueDate"`
}

// UpdateCourseReq 只更新非 nil 字段
type UpdateCourseReq struct {
	Name        *string `json:"name"`
	Section     *string `json:"section"`
	Description *string `json:"description"`
	File        *string `json:"file"`
	IsArchived  *bool   `json:"isArchived"`
}

// UpdateMaterialReq 只更新非 nil 字段
type UpdateMaterialReq struct {
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	File        *string             `json:"file"`
	Type        *model.MaterialType `json:"type"`
	DueDate     *time.Time          `json:"dueDate"`
	IsArchived  *bool               `json:"isArchived"`
}

func validMaterialType(t model.MaterialType) bool {
	switch t {
	case model.MaterialAssignment, model.MaterialReading, model.MaterialAnnouncement:
		return true
	}
	return false
}

func (s *CourseService) CreateCourse(ctx context.Context, instructorID string, req CreateCourseReq) (*model.Course, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, util.NewValidationError("course name is required")
	}
	course := &model.Course{
		InstructorID: instructorID,
		Name:         req.Name,
		Section:      req.Section,
		Description:  req.Description,
		File:         req.File,
	}
	if err := s.Courses.CreateCourse(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) JoinCourse(ctx context.Context, courseID, studentID string) error {
	if strings.TrimSpace(studentID) == "" {
		return util.NewValidationError("student id is required")
	}
	course, err := s.Courses.FindCourseByID(ctx, courseID)
	if err != nil {
		if isNotFound(err) {
			return util.NewNotFoundError("course not found")
		}
		return err
	}
	if course.IsArchived {
		return util.NewValidationError("course is archived")
	}
	if err := s.Courses.EnrollStudent(ctx, courseID, studentID); err != nil {
		if isDuplicate(err) {
			return util.NewValidationError("student is already enrolled in this course")
		}
		return err
	}
	return nil
}

func (s *CourseService) CreateMaterial(ctx context.Context, courseID, instructorID string, req CreateMaterialReq) (*model.Material, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, util.NewValidationError("material name is required")
	}
	materialType := req.Type
	if materialType == "" {
		materialType = model.MaterialAssignment
	}
	if !validMaterialType(materialType) {
		return nil, util.NewValidationError("unsupported material type")
	}

	if _, err := s.Courses.FindCourseByID(ctx, courseID); err != nil {
		if isNotFound(err) {
			return nil, util.NewNotFoundError("course not found")
		}
		return nil, err
	}

	instructorName := ""
	if instructor, err := s.Users.FindUserByID(ctx, instructorID); err == nil {
		instructorName = instructor.FullName()
	} else if !isNotFound(err) {
		return nil, err
	}

	material := &model.Material{
		CourseID:       courseID,
		InstructorName: instructorName,
		Name:           req.Name,
		Description:    req.Description,
		File:           req.File,
		Type:           materialType,
		DueDate:        req.DueDate,
	}
	if err := s.Materials.CreateMaterial(ctx, material); err != nil {
		return nil, err
	}
	return material, nil
}

func (s *CourseService) UpdateCourse(ctx context.Context, courseID string, req UpdateCourseReq) (*model.Course, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, util.NewValidationError("course name is required")
	}
	course, err := s.Courses.FindCourseByID(ctx, courseID)
	if err != nil {
		if isNotFound(err) {
			return nil, util.NewNotFoundError("course not found")
		}
		return nil, err
	}

	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.Section != nil {
		course.Section = *req.Section
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.File != nil {
		course.File = *req.File
	}
	if req.IsArchived != nil {
		course.IsArchived = *req.IsArchived
	}

	if err := s.Courses.SaveCourse(ctx, course); err != nil {
		if isNotFound(err) {
			return nil, util.NewNotFoundError("course not found")
		}
		return nil, err
	}
	return course, nil
}

func (s *CourseService) UpdateMaterial(ctx context.Context, materialID string, req UpdateMaterialReq) (*model.Material, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, util.NewValidationError("material name is required")
	}
	if req.Type != nil && !validMaterialType(*req.Type) {
		return nil, util.NewValidationError("unsupported material type")
	}
	material, err := s.Materials.FindMaterialByID(ctx, materialID)
	if err != nil {
		if isNotFound(err) {
			return nil, util.NewNotFoundError("material not found")
		}
		return nil, err
	}

	if req.Name != nil {
		material.Name = *req.Name
	}
	if req.Description != nil {
		material.Description = *req.Description
	}
	if req.File != nil {
		material.File = *req.File
	}
	if req.Type != nil {
		material.Type = *req.Type
	}
	if req.DueDate != nil {
		material.DueDate = req.DueDate
	}
	if req.IsArchived != nil {
		material.IsArchived = *req.IsArchived
	}

	if err := s.Materials.SaveMaterial(ctx, material); err != nil {
		if isNotFound(err) {
			return nil, util.NewNotFoundError("material not found")
		}
		return nil, err
	}
	return material, nil
}
