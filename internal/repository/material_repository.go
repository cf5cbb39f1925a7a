package repository

import (
	"classroom_backend/internal/model"
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type MaterialRepository struct {
	DB *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{DB: db}
}

func (r *MaterialRepository) CreateMaterial(ctx context.Context, material *model.Material) error {
	return errors.Wrap(r.DB.WithContext(ctx).Create(material).Error, "create material")
}

func (r *MaterialRepository) FindMaterialByID(ctx context.Context, id string) (*model.Material, error) {
	var material model.Material
	if err := r.DB.WithContext(ctx).First(&material, "id = ?", id).Error; err != nil {
		return nil, errors.Wrapf(err, "find material %s", id)
	}
	return &material, nil
}

func (r *MaterialRepository) SaveMaterial(ctx context.Context, material *model.Material) error {
	res := r.DB.WithContext(ctx).Model(material).
		Select("name", "description", "file", "type", "due_date", "is_archived").
		Updates(material)
	if res.Error != nil {
		return errors.Wrap(res.Error, "save material")
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(gorm.ErrRecordNotFound, "save material %s", material.ID)
	}
	return nil
}

func (r *MaterialRepository) FindMaterialsByIDs(ctx context.Context, ids []string) ([]model.Material, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var materials []model.Material
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&materials).Error
	return materials, errors.Wrap(err, "find materials")
}

func (r *MaterialRepository) ListMaterialsByCourseAndType(ctx context.Context, courseID string, materialType model.MaterialType) ([]model.Material, error) {
	var materials []model.Material
	err := r.DB.WithContext(ctx).
		Where("course_id = ? AND type = ?", courseID, materialType).
		Order("created_at asc").
		Find(&materials).Error
	return materials, errors.Wrap(err, "list materials")
}
