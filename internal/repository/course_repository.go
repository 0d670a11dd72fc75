package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) GetByID(id string) (*model.Course, error) {
	var course model.Course
	err := r.DB.Preload("Category").First(&course, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// GetWithStructure 加载课程及完整结构（模块、章节、附件），章节按 position 排序
func (r *CourseRepository) GetWithStructure(id string) (*model.Course, error) {
	var course model.Course
	err := r.DB.Preload("Category").
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("course_modules.position ASC")
		}).
		Preload("Modules.Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_library_asset = ?", false).Order("chapters.position ASC")
		}).
		Preload("Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_library_asset = ?", false).Order("chapters.position ASC")
		}).
		Preload("Attachments").
		First(&course, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

func (r *CourseRepository) UpdateFields(id string, fields map[string]interface{}) error {
	return r.DB.Model(&model.Course{}).Where("id = ?", id).Updates(fields).Error
}

func (r *CourseRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&model.Chapter{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&model.CourseModule{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&model.Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&model.CourseInstructor{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Course{}, "id = ?", id).Error
	})
}

// IsOwnerOrInstructor 判断档案是否为课程所有者或被指派的讲师
func (r *CourseRepository) IsOwnerOrInstructor(courseID, profileID, externalUserID string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Course{}).
		Joins("LEFT JOIN course_instructors ON course_instructors.course_id = courses.id").
		Where("courses.id = ?", courseID).
		Where("courses.owner_user_id = ? OR course_instructors.profile_id = ?", externalUserID, profileID).
		Count(&count).Error
	return count > 0, err
}

func (r *CourseRepository) AddInstructor(courseID, profileID string) error {
	return r.DB.Create(&model.CourseInstructor{CourseID: courseID, ProfileID: profileID}).Error
}

func (r *CourseRepository) RemoveInstructor(courseID, profileID string) error {
	return r.DB.Delete(&model.CourseInstructor{}, "course_id = ? AND profile_id = ?", courseID, profileID).Error
}

func (r *CourseRepository) HasInstructor(courseID, profileID string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.CourseInstructor{}).
		Where("course_id = ? AND profile_id = ?", courseID, profileID).
		Count(&count).Error
	return count > 0, err
}

func (r *CourseRepository) ListInstructors(courseID string) ([]model.CourseInstructor, error) {
	var instructors []model.CourseInstructor
	err := r.DB.Preload("Profile").
		Where("course_id = ?", courseID).
		Find(&instructors).Error
	return instructors, err
}

// ListForOwnerOrInstructor 列出该用户拥有或被指派的全部课程，供讲师工作台使用
func (r *CourseRepository) ListForOwnerOrInstructor(profileID, externalUserID string) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Model(&model.Course{}).
		Joins("LEFT JOIN course_instructors ON course_instructors.course_id = courses.id").
		Where("courses.owner_user_id = ? OR course_instructors.profile_id = ?", externalUserID, profileID).
		Group("courses.id").
		Order("courses.created_at DESC").
		Find(&courses).Error
	return courses, err
}

// ListPublished 按分类与标题过滤的已发布课程目录
func (r *CourseRepository) ListPublished(categoryID, title string) ([]model.Course, error) {
	var courses []model.Course
	db := r.DB.Preload("Category").
		Preload("Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_published = ? AND is_library_asset = ?", true, false).
				Order("chapters.position ASC")
		}).
		Where("is_published = ?", true)

	if categoryID != "" {
		db = db.Where("category_id = ?", categoryID)
	}
	if title != "" {
		db = db.Where("title LIKE ?", "%"+title+"%")
	}

	err := db.Order("created_at DESC").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) ListPendingApproval() ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Preload("Category").
		Where("pending_approval = ?", true).
		Order("updated_at ASC").
		Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) ListAll() ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Preload("Category").Order("created_at DESC").Find(&courses).Error
	return courses, err
}

// ListPurchasedByUser 列出用户已购课程，供学员仪表盘使用
func (r *CourseRepository) ListPurchasedByUser(userID string) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Preload("Category").
		Joins("JOIN purchases ON purchases.course_id = courses.id").
		Where("purchases.user_id = ?", userID).
		Order("purchases.created_at DESC").
		Find(&courses).Error
	return courses, err
}
