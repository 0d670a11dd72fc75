package service

import (
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

type CourseService struct {
	Courses     CourseStore
	Categories  CategoryStore
	Attachments AttachmentStore
	Profiles    ProfileStore
	Purchases   PurchaseStore
	Progress    *ProgressService
	Access      *AccessService
}

func NewCourseService(courses CourseStore, categories CategoryStore, attachments AttachmentStore, profiles ProfileStore, purchases PurchaseStore, progress *ProgressService, access *AccessService) *CourseService {
	return &CourseService{
		Courses:     courses,
		Categories:  categories,
		Attachments: attachments,
		Profiles:    profiles,
		Purchases:   purchases,
		Progress:    progress,
		Access:      access,
	}
}

func (s *CourseService) Create(profile *model.Profile, title string) (*model.Course, error) {
	if !model.CapabilitiesFor(profile.Role).CanEditCourses {
		return nil, util.ErrPermissionDenied
	}
	if title == "" {
		return nil, util.NewValidationError("title")
	}

	course := &model.Course{
		OwnerUserID: profile.ExternalUserID,
		Title:       title,
	}
	if err := s.Courses.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

// GetForEdit 编辑视图，需要课程编辑权，返回完整结构
func (s *CourseService) GetForEdit(profile *model.Profile, courseID string) (*model.Course, error) {
	ok, err := s.Access.CanEditCourse(profile, courseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrPermissionDenied
	}

	course, err := s.Courses.GetWithStructure(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

// CourseUpdate 可编辑字段，指针为 nil 表示不更新
type CourseUpdate struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	ImageURL    *string  `json:"imageUrl"`
	Price       *float64 `json:"price"`
	CategoryID  *string  `json:"categoryId"`
}

func (s *CourseService) Update(profile *model.Profile, courseID string, update CourseUpdate) (*model.Course, error) {
	ok, err := s.Access.CanEditCourse(profile, courseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrPermissionDenied
	}

	fields := map[string]interface{}{}
	if update.Title != nil {
		if *update.Title == "" {
			return nil, util.NewValidationError("title")
		}
		fields["title"] = *update.Title
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.ImageURL != nil {
		fields["image_url"] = *update.ImageURL
	}
	if update.Price != nil {
		fields["price"] = *update.Price
	}
	if update.CategoryID != nil {
		if *update.CategoryID != "" {
			if _, err := s.Categories.GetByID(*update.CategoryID); err != nil {
				return nil, util.NewValidationError("categoryId")
			}
		}
		fields["category_id"] = *update.CategoryID
	}

	if len(fields) > 0 {
		if err := s.Courses.UpdateFields(courseID, fields); err != nil {
			return nil, err
		}
	}
	return s.Courses.GetByID(courseID)
}

func (s *CourseService) Delete(profile *model.Profile, courseID string) error {
	ok, err := s.Access.CanEditCourse(profile, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrPermissionDenied
	}
	return s.Courses.Delete(courseID)
}

// CatalogEntry 目录条目，已登录用户附带购买状态与进度
type CatalogEntry struct {
	Course       model.Course    `json:"course"`
	ChapterCount int             `json:"chapterCount"`
	Purchased    bool            `json:"purchased"`
	Progress     *CourseProgress `json:"progress,omitempty"`
}

// Catalog 已发布课程目录，按分类与标题过滤
func (s *CourseService) Catalog(profile *model.Profile, categoryID, title string) ([]CatalogEntry, error) {
	courses, err := s.Courses.ListPublished(categoryID, title)
	if err != nil {
		return nil, err
	}

	purchasedSet := make(map[string]bool)
	var progressByCourse map[string]*CourseProgress
	if profile != nil {
		purchasedIDs, err := s.Purchases.ListCourseIDsForUser(profile.ExternalUserID)
		if err != nil {
			return nil, err
		}
		for _, id := range purchasedIDs {
			purchasedSet[id] = true
		}
		progressByCourse, err = s.Progress.GetProgressBatch(profile.ExternalUserID, purchasedIDs)
		if err != nil {
			return nil, err
		}
	}

	entries := make([]CatalogEntry, 0, len(courses))
	for _, course := range courses {
		entry := CatalogEntry{
			Course:       course,
			ChapterCount: len(course.Chapters),
			Purchased:    purchasedSet[course.ID],
		}
		if entry.Purchased {
			entry.Progress = progressByCourse[course.ID]
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Dashboard 学员仪表盘：已购课程加进度，进度用两条批量查询取齐
func (s *CourseService) Dashboard(profile *model.Profile) ([]CatalogEntry, error) {
	courses, err := s.Courses.ListPurchasedByUser(profile.ExternalUserID)
	if err != nil {
		return nil, err
	}

	courseIDs := make([]string, 0, len(courses))
	for _, c := range courses {
		courseIDs = append(courseIDs, c.ID)
	}
	progressByCourse, err := s.Progress.GetProgressBatch(profile.ExternalUserID, courseIDs)
	if err != nil {
		return nil, err
	}

	entries := make([]CatalogEntry, 0, len(courses))
	for _, course := range courses {
		entries = append(entries, CatalogEntry{
			Course:    course,
			Purchased: true,
			Progress:  progressByCourse[course.ID],
		})
	}
	return entries, nil
}

// ListMine 讲师工作台：拥有或被指派的课程
func (s *CourseService) ListMine(profile *model.Profile) ([]model.Course, error) {
	if !model.CapabilitiesFor(profile.Role).CanEditCourses {
		return nil, util.ErrPermissionDenied
	}
	return s.Courses.ListForOwnerOrInstructor(profile.ID, profile.ExternalUserID)
}

func (s *CourseService) ListPendingApproval(actor *model.Profile) ([]model.Course, error) {
	if !model.CapabilitiesFor(actor.Role).CanApproveCourses {
		return nil, util.ErrPermissionDenied
	}
	return s.Courses.ListPendingApproval()
}

// AddInstructor 指派讲师，目标档案必须是教学人员
func (s *CourseService) AddInstructor(profile *model.Profile, courseID, instructorProfileID string) error {
	ok, err := s.Access.CanEditCourse(profile, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrPermissionDenied
	}

	target, err := s.Profiles.GetByID(instructorProfileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrProfileNotFound
		}
		return err
	}
	if !target.Role.IsStaff() {
		return util.ErrPermissionDenied
	}

	exists, err := s.Courses.HasInstructor(courseID, instructorProfileID)
	if err != nil {
		return err
	}
	if exists {
		return util.ErrAlreadyInstructor
	}
	return s.Courses.AddInstructor(courseID, instructorProfileID)
}

func (s *CourseService) RemoveInstructor(profile *model.Profile, courseID, instructorProfileID string) error {
	ok, err := s.Access.CanEditCourse(profile, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrPermissionDenied
	}
	return s.Courses.RemoveInstructor(courseID, instructorProfileID)
}

func (s *CourseService) ListInstructors(profile *model.Profile, courseID string) ([]model.CourseInstructor, error) {
	ok, err := s.Access.CanEditCourse(profile, courseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrPermissionDenied
	}
	return s.Courses.ListInstructors(courseID)
}

func (s *CourseService) AddAttachment(profile *model.Profile, courseID, name, url, originalFilename string) (*model.Attachment, error) {
	ok, err := s.Access.CanEditCourse(profile, courseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrPermissionDenied
	}
	if name == "" || url == "" {
		return nil, util.NewValidationError("name", "url")
	}

	attachment := &model.Attachment{
		CourseID:         courseID,
		Name:             name,
		URL:              url,
		OriginalFilename: originalFilename,
	}
	if err := s.Attachments.Create(attachment); err != nil {
		return nil, err
	}
	return attachment, nil
}

func (s *CourseService) DeleteAttachment(profile *model.Profile, attachmentID string) error {
	attachment, err := s.Attachments.GetByID(attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrCourseNotFound
		}
		return err
	}

	ok, err := s.Access.CanEditCourse(profile, attachment.CourseID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrPermissionDenied
	}
	return s.Attachments.Delete(attachmentID)
}

// ListAttachments 附件仅对已购学员与教学人员可见
func (s *CourseService) ListAttachments(profile *model.Profile, courseID string) ([]model.Attachment, error) {
	if !profile.Role.IsStaff() {
		purchased, err := s.Access.HasPurchased(profile, courseID)
		if err != nil {
			return nil, err
		}
		if !purchased {
			return nil, util.ErrPermissionDenied
		}
	}
	return s.Attachments.ListByCourse(courseID)
}

func (s *CourseService) ListCategories() ([]model.Category, error) {
	return s.Categories.List()
}

func (s *CourseService) CreateCategory(actor *model.Profile, name string) (*model.Category, error) {
	if actor.Role != model.RoleAdmin {
		return nil, util.ErrPermissionDenied
	}
	if name == "" {
		return nil, util.NewValidationError("name")
	}
	category := &model.Category{Name: name}
	if err := s.Categories.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}
