package repository

import (
	"classroom_backend/internal/model"
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

// CreateSubmission (material_id, student_id) 唯一，重复提交返回 gorm.ErrDuplicatedKey
func (r *SubmissionRepository) CreateSubmission(ctx context.Context, submission *model.Submission) error {
	return errors.Wrap(r.DB.WithContext(ctx).Create(submission).Error, "create submission")
}

func (r *SubmissionRepository) FindActiveSubmission(ctx context.Context, materialID, studentID string) (*model.Submission, error) {
	var s model.Submission
	err := r.DB.WithContext(ctx).
		Where("material_id = ? AND student_id = ? AND is_archived = ?", materialID, studentID, false).
		First(&s).Error
	if err != nil {
		return nil, errors.Wrap(err, "find submission")
	}
	return &s, nil
}

func (r *SubmissionRepository) ListSubmissionsByStudent(ctx context.Context, studentID string, materialIDs []string) ([]model.Submission, error) {
	if len(materialIDs) == 0 {
		return nil, nil
	}
	var subs []model.Submission
	err := r.DB.WithContext(ctx).
		Where("student_id = ? AND material_id IN ?", studentID, materialIDs).
		Order("created_at asc").
		Find(&subs).Error
	return subs, errors.Wrap(err, "list submissions")
}

func (r *SubmissionRepository) ListSubmissions(ctx context.Context, filter model.SubmissionFilter) ([]model.Submission, error) {
	query := r.DB.WithContext(ctx).Model(&model.Submission{})
	if filter.StudentID != "" {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	if filter.MaterialID != "" {
		query = query.Where("material_id = ?", filter.MaterialID)
	}
	if filter.IsArchived != nil {
		query = query.Where("is_archived = ?", *filter.IsArchived)
	}
	var subs []model.Submission
	err := query.Order("created_at asc").Find(&subs).Error
	return subs, errors.Wrap(err, "list submissions")
}

// ApplyGrade 同一事务内更新提交成绩，并按 (student_id, task_id) upsert task 成绩事件。
// 重复评分覆盖旧值。
func (r *SubmissionRepository) ApplyGrade(ctx context.Context, submissionID string, grade float64, event *model.GradeEvent) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Submission{}).Where("id = ?", submissionID).Update("grade", grade)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "task_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"grade", "type", "updated_at"}),
		}).Create(event).Error
	})
	return errors.Wrap(err, "apply submission grade")
}
