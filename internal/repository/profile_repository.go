package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type ProfileRepository struct {
	DB *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

func (r *ProfileRepository) GetByID(id string) (*model.Profile, error) {
	var profile model.Profile
	err := r.DB.First(&profile, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) GetByExternalUserID(externalUserID string) (*model.Profile, error) {
	var profile model.Profile
	err := r.DB.First(&profile, "external_user_id = ?", externalUserID).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) Create(profile *model.Profile) error {
	return r.DB.Create(profile).Error
}

func (r *ProfileRepository) Update(profile *model.Profile) error {
	return r.DB.Save(profile).Error
}

func (r *ProfileRepository) UpdateRole(id string, role model.Role) error {
	return r.DB.Model(&model.Profile{}).Where("id = ?", id).Update("role", role).Error
}

// Search 按姓名或邮箱模糊搜索档案，供讲师选择与管理端用户管理使用
func (r *ProfileRepository) Search(query, excludeID string, limit, offset int) ([]model.Profile, int64, error) {
	var profiles []model.Profile
	var total int64

	db := r.DB.Model(&model.Profile{})
	if excludeID != "" {
		db = db.Where("id <> ?", excludeID)
	}
	if query != "" {
		searchTerm := "%" + query + "%"
		db = db.Where("name LIKE ? OR email LIKE ?", searchTerm, searchTerm)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&profiles).Error
	return profiles, total, err
}

func (r *ProfileRepository) ListByIDs(ids []string) ([]model.Profile, error) {
	var profiles []model.Profile
	if len(ids) == 0 {
		return profiles, nil
	}
	err := r.DB.Where("id IN ?", ids).Find(&profiles).Error
	return profiles, err
}
