package service

import (
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

// AccessService 访问控制与发布状态机的唯一裁决点
type AccessService struct {
	Courses   CourseStore
	Chapters  ChapterStore
	Modules   ModuleStore
	Purchases PurchaseStore
}

func NewAccessService(courses CourseStore, chapters ChapterStore, modules ModuleStore, purchases PurchaseStore) *AccessService {
	return &AccessService{
		Courses:   courses,
		Chapters:  chapters,
		Modules:   modules,
		Purchases: purchases,
	}
}

// CanEditCourse 管理员、课程所有者、被指派讲师三者之一
func (s *AccessService) CanEditCourse(profile *model.Profile, courseID string) (bool, error) {
	if profile.Role == model.RoleAdmin {
		return true, nil
	}
	if !model.CapabilitiesFor(profile.Role).CanEditCourses {
		return false, nil
	}
	return s.Courses.IsOwnerOrInstructor(courseID, profile.ID, profile.ExternalUserID)
}

// HasPurchased 购买记录存在即有付费内容访问权
func (s *AccessService) HasPurchased(profile *model.Profile, courseID string) (bool, error) {
	return s.Purchases.Exists(profile.ExternalUserID, courseID)
}

// CanViewChapter 免费章节对所有人开放，其余需购买或教学人员身份
func (s *AccessService) CanViewChapter(profile *model.Profile, chapter *model.Chapter) (bool, error) {
	if chapter.IsFree {
		return true, nil
	}
	if profile.Role.IsStaff() {
		return true, nil
	}
	return s.HasPurchased(profile, chapter.CourseID)
}

// CanAccessChat 教学人员按角色放行，学生需已购买该课程
func (s *AccessService) CanAccessChat(profile *model.Profile, courseID string) (bool, error) {
	if profile.Role.IsStaff() {
		return true, nil
	}
	return s.HasPurchased(profile, courseID)
}

// SubmitCourseForApproval 课程送审
// 前置条件：标题、描述、封面、分类齐备，价格为正，且至少一个已发布章节
func (s *AccessService) SubmitCourseForApproval(profile *model.Profile, courseID string) error {
	ok, err := s.CanEditCourse(profile, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrPermissionDenied
	}

	course, err := s.Courses.GetByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrCourseNotFound
		}
		return err
	}

	var missing []string
	if course.Title == "" {
		missing = append(missing, "title")
	}
	if course.Description == "" {
		missing = append(missing, "description")
	}
	if course.ImageURL == "" {
		missing = append(missing, "imageUrl")
	}
	if course.CategoryID == nil || *course.CategoryID == "" {
		missing = append(missing, "categoryId")
	}
	if course.Price <= 0 {
		missing = append(missing, "price")
	}
	published, err := s.Chapters.CountPublished(courseID)
	if err != nil {
		return err
	}
	if published == 0 {
		missing = append(missing, "publishedChapters")
	}
	if len(missing) > 0 {
		return util.NewValidationError(missing...)
	}

	return s.Courses.UpdateFields(courseID, map[string]interface{}{
		"pending_approval": true,
	})
}

// ApproveCourse 管理员批准后课程上架
func (s *AccessService) ApproveCourse(actor *model.Profile, courseID string) error {
	if !model.CapabilitiesFor(actor.Role).CanApproveCourses {
		return util.ErrPermissionDenied
	}
	if _, err := s.Courses.GetByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrCourseNotFound
		}
		return err
	}
	return s.Courses.UpdateFields(courseID, map[string]interface{}{
		"is_published":     true,
		"pending_approval": false,
	})
}

// RejectCourse 驳回送审，课程回到草稿态
func (s *AccessService) RejectCourse(actor *model.Profile, courseID string) error {
	if !model.CapabilitiesFor(actor.Role).CanApproveCourses {
		return util.ErrPermissionDenied
	}
	if _, err := s.Courses.GetByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrCourseNotFound
		}
		return err
	}
	return s.Courses.UpdateFields(courseID, map[string]interface{}{
		"pending_approval": false,
		"is_published":     false,
	})
}

func (s *AccessService) UnpublishCourse(profile *model.Profile, courseID string) error {
	ok, err := s.CanEditCourse(profile, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrPermissionDenied
	}
	return s.Courses.UpdateFields(courseID, map[string]interface{}{
		"is_published":     false,
		"pending_approval": false,
	})
}

// PublishChapter 章节发布需要标题、描述及内容类型对应的载荷
func (s *AccessService) PublishChapter(profile *model.Profile, chapterID string) error {
	chapter, err := s.Chapters.GetByID(chapterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrChapterNotFound
		}
		return err
	}

	ok, err := s.CanEditCourse(profile, chapter.CourseID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrPermissionDenied
	}

	var missing []string
	if chapter.Title == "" {
		missing = append(missing, "title")
	}
	if chapter.Description == "" {
		missing = append(missing, "description")
	}
	if !chapter.HasPayload() {
		missing = append(missing, chapter.PayloadField())
	}
	if len(missing) > 0 {
		return util.NewValidationError(missing...)
	}

	return s.Chapters.UpdateFields(chapterID, map[string]interface{}{
		"is_published": true,
	})
}

// UnpublishChapter 下线最后一个已发布章节时课程自动下线
func (s *AccessService) UnpublishChapter(profile *model.Profile, chapterID string) error {
	chapter, err := s.Chapters.GetByID(chapterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrChapterNotFound
		}
		return err
	}

	ok, err := s.CanEditCourse(profile, chapter.CourseID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrPermissionDenied
	}

	if err := s.Chapters.UpdateFields(chapterID, map[string]interface{}{
		"is_published": false,
	}); err != nil {
		return err
	}

	remaining, err := s.Chapters.CountPublished(chapter.CourseID)
	if err != nil {
		return err
	}
	if remaining == 0 {
		return s.Courses.UpdateFields(chapter.CourseID, map[string]interface{}{
			"is_published":     false,
			"pending_approval": false,
		})
	}
	return nil
}

// PublishModule 模块发布需要标题且其下至少一个已发布章节
func (s *AccessService) PublishModule(profile *model.Profile, moduleID string) error {
	mod, err := s.Modules.GetByID(moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrModuleNotFound
		}
		return err
	}

	ok, err := s.CanEditCourse(profile, mod.CourseID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrPermissionDenied
	}

	var missing []string
	if mod.Title == "" {
		missing = append(missing, "title")
	}
	published, err := s.Chapters.CountPublishedInModule(moduleID)
	if err != nil {
		return err
	}
	if published == 0 {
		missing = append(missing, "publishedChapters")
	}
	if len(missing) > 0 {
		return util.NewValidationError(missing...)
	}

	mod.IsPublished = true
	return s.Modules.Update(mod)
}

func (s *AccessService) UnpublishModule(profile *model.Profile, moduleID string) error {
	mod, err := s.Modules.GetByID(moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrModuleNotFound
		}
		return err
	}

	ok, err := s.CanEditCourse(profile, mod.CourseID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrPermissionDenied
	}

	mod.IsPublished = false
	return s.Modules.Update(mod)
}
