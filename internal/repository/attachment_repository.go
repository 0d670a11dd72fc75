package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type AttachmentRepository struct {
	DB *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{DB: db}
}

func (r *AttachmentRepository) GetByID(id string) (*model.Attachment, error) {
	var attachment model.Attachment
	err := r.DB.First(&attachment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *AttachmentRepository) ListByCourse(courseID string) ([]model.Attachment, error) {
	var attachments []model.Attachment
	err := r.DB.Where("course_id = ?", courseID).
		Order("created_at DESC").
		Find(&attachments).Error
	return attachments, err
}

func (r *AttachmentRepository) Create(attachment *model.Attachment) error {
	return r.DB.Create(attachment).Error
}

func (r *AttachmentRepository) Delete(id string) error {
	return r.DB.Delete(&model.Attachment{}, "id = ?", id).Error
}
