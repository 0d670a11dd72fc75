package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// Upsert 以 (user_id, chapter_id) 为键写入完成状态，重复提交直接覆盖
func (r *ProgressRepository) Upsert(progress *model.UserProgress) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "chapter_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_completed", "updated_at"}),
	}).Create(progress).Error
}

func (r *ProgressRepository) Get(userID, chapterID string) (*model.UserProgress, error) {
	var progress model.UserProgress
	err := r.DB.Where("user_id = ? AND chapter_id = ?", userID, chapterID).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// CountCompletedIn 统计用户在给定章节集合内已完成的数量
func (r *ProgressRepository) CountCompletedIn(userID string, chapterIDs []string) (int64, error) {
	if len(chapterIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.DB.Model(&model.UserProgress{}).
		Where("user_id = ? AND is_completed = ? AND chapter_id IN ?", userID, true, chapterIDs).
		Count(&count).Error
	return count, err
}

// ListCompletedIn 批量进度汇总的第二条查询：用户在给定章节集合内的全部完成记录
func (r *ProgressRepository) ListCompletedIn(userID string, chapterIDs []string) ([]model.UserProgress, error) {
	var rows []model.UserProgress
	if len(chapterIDs) == 0 {
		return rows, nil
	}
	err := r.DB.Where("user_id = ? AND is_completed = ? AND chapter_id IN ?", userID, true, chapterIDs).
		Find(&rows).Error
	return rows, err
}

func (r *ProgressRepository) ListCompletedChapterIDs(userID, courseID string) ([]string, error) {
	var ids []string
	err := r.DB.Model(&model.UserProgress{}).
		Joins("JOIN chapters ON chapters.id = user_progress.chapter_id").
		Where("user_progress.user_id = ? AND user_progress.is_completed = ?", userID, true).
		Where("chapters.course_id = ?", courseID).
		Pluck("user_progress.chapter_id", &ids).Error
	return ids, err
}
