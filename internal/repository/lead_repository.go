package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type LeadRepository struct {
	DB *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) GetByID(id string) (*model.Lead, error) {
	var lead model.Lead
	err := r.DB.First(&lead, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *LeadRepository) Create(lead *model.Lead) error {
	return r.DB.Create(lead).Error
}

func (r *LeadRepository) Update(lead *model.Lead) error {
	return r.DB.Save(lead).Error
}

func (r *LeadRepository) Delete(id string) error {
	return r.DB.Delete(&model.Lead{}, "id = ?", id).Error
}

// List ownerID 非空时只取该负责人名下的线索
func (r *LeadRepository) List(ownerID string, status model.LeadStatus, query string, limit, offset int) ([]model.Lead, int64, error) {
	var leads []model.Lead
	var total int64

	db := r.DB.Model(&model.Lead{})
	if ownerID != "" {
		db = db.Where("owner_id = ?", ownerID)
	}
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if query != "" {
		searchTerm := "%" + query + "%"
		db = db.Where("name LIKE ? OR email LIKE ? OR phone LIKE ?", searchTerm, searchTerm, searchTerm)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&leads).Error
	return leads, total, err
}
