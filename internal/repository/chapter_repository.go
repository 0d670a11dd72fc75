package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type ChapterRepository struct {
	DB *gorm.DB
}

func NewChapterRepository(db *gorm.DB) *ChapterRepository {
	return &ChapterRepository{DB: db}
}

func (r *ChapterRepository) GetByID(id string) (*model.Chapter, error) {
	var chapter model.Chapter
	err := r.DB.First(&chapter, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}

func (r *ChapterRepository) Create(chapter *model.Chapter) error {
	return r.DB.Create(chapter).Error
}

func (r *ChapterRepository) Update(chapter *model.Chapter) error {
	return r.DB.Save(chapter).Error
}

func (r *ChapterRepository) UpdateFields(id string, fields map[string]interface{}) error {
	return r.DB.Model(&model.Chapter{}).Where("id = ?", id).Updates(fields).Error
}

func (r *ChapterRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chapter_id = ?", id).Delete(&model.UserProgress{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Chapter{}, "id = ?", id).Error
	})
}

// CountPublished 统计课程内已发布的课程章节数，素材库条目不计入
func (r *ChapterRepository) CountPublished(courseID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Chapter{}).
		Where("course_id = ? AND is_published = ? AND is_library_asset = ?", courseID, true, false).
		Count(&count).Error
	return count, err
}

// CountPublishedInModule 统计模块内已发布章节数
func (r *ChapterRepository) CountPublishedInModule(moduleID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Chapter{}).
		Where("module_id = ? AND is_published = ? AND is_library_asset = ?", moduleID, true, false).
		Count(&count).Error
	return count, err
}

// ListPublishedByCourse 课程内已发布章节，按 position 升序
func (r *ChapterRepository) ListPublishedByCourse(courseID string) ([]model.Chapter, error) {
	var chapters []model.Chapter
	err := r.DB.Where("course_id = ? AND is_published = ? AND is_library_asset = ?", courseID, true, false).
		Order("position ASC").
		Find(&chapters).Error
	return chapters, err
}

// ListPublishedByCourses 批量加载多门课程的已发布章节，进度汇总用单条查询完成
func (r *ChapterRepository) ListPublishedByCourses(courseIDs []string) ([]model.Chapter, error) {
	var chapters []model.Chapter
	if len(courseIDs) == 0 {
		return chapters, nil
	}
	err := r.DB.Where("course_id IN ? AND is_published = ? AND is_library_asset = ?", courseIDs, true, false).
		Find(&chapters).Error
	return chapters, err
}

// MaxPosition 返回课程内现有章节的最大 position，无章节时返回 0
func (r *ChapterRepository) MaxPosition(courseID string) (int, error) {
	var max int
	err := r.DB.Model(&model.Chapter{}).
		Where("course_id = ? AND is_library_asset = ?", courseID, false).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	return max, err
}

// Reorder 按给定顺序批量更新章节 position
func (r *ChapterRepository) Reorder(courseID string, orderedIDs []string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			err := tx.Model(&model.Chapter{}).
				Where("id = ? AND course_id = ?", id, courseID).
				Update("position", i+1).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// NextPublished 同一课程内 position 更大的下一个已发布章节，没有则返回 gorm.ErrRecordNotFound
func (r *ChapterRepository) NextPublished(courseID string, position int) (*model.Chapter, error) {
	var chapter model.Chapter
	err := r.DB.Where("course_id = ? AND is_published = ? AND is_library_asset = ? AND position > ?",
		courseID, true, false, position).
		Order("position ASC").
		First(&chapter).Error
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}

// ListLibraryAssets 素材库条目，按创建时间倒序
func (r *ChapterRepository) ListLibraryAssets(courseID string) ([]model.Chapter, error) {
	var chapters []model.Chapter
	db := r.DB.Where("is_library_asset = ?", true)
	if courseID != "" {
		db = db.Where("course_id = ?", courseID)
	}
	err := db.Order("created_at DESC").Find(&chapters).Error
	return chapters, err
}
