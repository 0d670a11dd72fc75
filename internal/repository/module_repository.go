package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type ModuleRepository struct {
	DB *gorm.DB
}

func NewModuleRepository(db *gorm.DB) *ModuleRepository {
	return &ModuleRepository{DB: db}
}

func (r *ModuleRepository) GetByID(id string) (*model.CourseModule, error) {
	var mod model.CourseModule
	err := r.DB.First(&mod, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &mod, nil
}

func (r *ModuleRepository) Create(mod *model.CourseModule) error {
	return r.DB.Create(mod).Error
}

func (r *ModuleRepository) Update(mod *model.CourseModule) error {
	return r.DB.Save(mod).Error
}

// Delete 删除模块并把其下章节置为未分组，章节本身保留
func (r *ModuleRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.Chapter{}).
			Where("module_id = ?", id).
			Update("module_id", nil).Error
		if err != nil {
			return err
		}
		return tx.Delete(&model.CourseModule{}, "id = ?", id).Error
	})
}

func (r *ModuleRepository) ListByCourse(courseID string) ([]model.CourseModule, error) {
	var modules []model.CourseModule
	err := r.DB.Preload("Chapters", func(db *gorm.DB) *gorm.DB {
		return db.Where("is_library_asset = ?", false).Order("chapters.position ASC")
	}).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&modules).Error
	return modules, err
}

func (r *ModuleRepository) MaxPosition(courseID string) (int, error) {
	var max int
	err := r.DB.Model(&model.CourseModule{}).
		Where("course_id = ?", courseID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	return max, err
}

func (r *ModuleRepository) Reorder(courseID string, orderedIDs []string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			err := tx.Model(&model.CourseModule{}).
				Where("id = ? AND course_id = ?", id, courseID).
				Update("position", i+1).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
