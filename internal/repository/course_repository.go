package repository

import (
	"classroom_backend/internal/model"
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) CreateCourse(ctx context.Context, course *model.Course) error {
	return errors.Wrap(r.DB.WithContext(ctx).Create(course).Error, "create course")
}

func (r *CourseRepository) FindCourseByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	if err := r.DB.WithContext(ctx).First(&course, "id = ?", id).Error; err != nil {
		return nil, errors.Wrapf(err, "find course %s", id)
	}
	return &course, nil
}

// SaveCourse 按主键写回可编辑字段，记录不存在时返回 gorm.ErrRecordNotFound
func (r *CourseRepository) SaveCourse(ctx context.Context, course *model.Course) error {
	res := r.DB.WithContext(ctx).Model(course).
		Select("name", "section", "description", "file", "is_archived").
		Updates(course)
	if res.Error != nil {
		return errors.Wrap(res.Error, "save course")
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(gorm.ErrRecordNotFound, "save course %s", course.ID)
	}
	return nil
}

// EnrollStudent 重复选课时返回 gorm.ErrDuplicatedKey
func (r *CourseRepository) EnrollStudent(ctx context.Context, courseID, studentID string) error {
	enrollment := &model.CourseStudent{CourseID: courseID, StudentID: studentID}
	return errors.Wrap(r.DB.WithContext(ctx).Create(enrollment).Error, "enroll student")
}

func (r *CourseRepository) ListEnrolledStudentIDs(ctx context.Context, courseID string) ([]string, error) {
	var ids []string
	err := r.DB.WithContext(ctx).
		Model(&model.CourseStudent{}).
		Where("course_id = ?", courseID).
		Order("created_at asc, id asc").
		Pluck("student_id", &ids).Error
	return ids, errors.Wrap(err, "list enrolled students")
}
