package repository

import (
	"errors"

	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type PurchaseRepository struct {
	DB *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{DB: db}
}

func (r *PurchaseRepository) Exists(userID, courseID string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Purchase{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

// Create 幂等创建购买记录，命中唯一索引冲突时视为已存在
func (r *PurchaseRepository) Create(purchase *model.Purchase) error {
	err := r.DB.Create(purchase).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

func (r *PurchaseRepository) ListCourseIDsForUser(userID string) ([]string, error) {
	var ids []string
	err := r.DB.Model(&model.Purchase{}).
		Where("user_id = ?", userID).
		Pluck("course_id", &ids).Error
	return ids, err
}

// ListUserIDsForCourse 课程的全部购买者，讲师连线页的学员名单来源之一
func (r *PurchaseRepository) ListUserIDsForCourse(courseID string) ([]string, error) {
	var ids []string
	err := r.DB.Model(&model.Purchase{}).
		Where("course_id = ?", courseID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *PurchaseRepository) CountForCourse(courseID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Purchase{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	return count, err
}
