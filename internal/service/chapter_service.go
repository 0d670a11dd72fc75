package service

import (
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

type ChapterService struct {
	Chapters ChapterStore
	Courses  CourseStore
	Modules  ModuleStore
	Progress ProgressStore
	Access   *AccessService
}

func NewChapterService(chapters ChapterStore, courses CourseStore, modules ModuleStore, progress ProgressStore, access *AccessService) *ChapterService {
	return &ChapterService{
		Chapters: chapters,
		Courses:  courses,
		Modules:  modules,
		Progress: progress,
		Access:   access,
	}
}

func (s *ChapterService) Create(profile *model.Profile, courseID, title string, moduleID *string) (*model.Chapter, error) {
	ok, err := s.Access.CanEditCourse(profile, courseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrPermissionDenied
	}
	if title == "" {
		return nil, util.NewValidationError("title")
	}

	if moduleID != nil && *moduleID != "" {
		mod, err := s.Modules.GetByID(*moduleID)
		if err != nil || mod.CourseID != courseID {
			return nil, util.ErrModuleNotFound
		}
	}

	maxPos, err := s.Chapters.MaxPosition(courseID)
	if err != nil {
		return nil, err
	}

	chapter := &model.Chapter{
		CourseID: courseID,
		ModuleID: moduleID,
		Title:    title,
		Position: maxPos + 1,
	}
	if err := s.Chapters.Create(chapter); err != nil {
		return nil, err
	}
	return chapter, nil
}

// ChapterUpdate 可编辑字段，指针为 nil 表示不更新
type ChapterUpdate struct {
	Title           *string  `json:"title"`
	Description     *string  `json:"description"`
	IsFree          *bool    `json:"isFree"`
	ModuleID        *string  `json:"moduleId"`
	ContentType     *string  `json:"contentType"`
	VideoAssetID    *string  `json:"videoAssetId"`
	VideoPlaybackID *string  `json:"videoPlaybackId"`
	YoutubeVideoID  *string  `json:"youtubeVideoId"`
	TextBody        *string  `json:"textBody"`
	HTMLBody        *string  `json:"htmlBody"`
	PdfURL          *string  `json:"pdfUrl"`
	DurationSeconds *float64 `json:"durationSeconds"`
}

func (s *ChapterService) Update(profile *model.Profile, chapterID string, update ChapterUpdate) (*model.Chapter, error) {
	chapter, err := s.Chapters.GetByID(chapterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChapterNotFound
		}
		return nil, err
	}

	ok, err := s.Access.CanEditCourse(profile, chapter.CourseID)
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
	if update.IsFree != nil {
		fields["is_free"] = *update.IsFree
	}
	if update.ModuleID != nil {
		if *update.ModuleID == "" {
			fields["module_id"] = nil
		} else {
			mod, err := s.Modules.GetByID(*update.ModuleID)
			if err != nil || mod.CourseID != chapter.CourseID {
				return nil, util.ErrModuleNotFound
			}
			fields["module_id"] = *update.ModuleID
		}
	}
	if update.ContentType != nil {
		switch model.ContentType(*update.ContentType) {
		case model.ContentVideoMux, model.ContentVideoYoutube, model.ContentText,
			model.ContentHTMLEmbed, model.ContentPDFDocument:
			fields["content_type"] = *update.ContentType
		default:
			return nil, util.NewValidationError("contentType")
		}
	}
	if update.VideoAssetID != nil {
		fields["video_asset_id"] = *update.VideoAssetID
	}
	if update.VideoPlaybackID != nil {
		fields["video_playback_id"] = *update.VideoPlaybackID
	}
	if update.YoutubeVideoID != nil {
		fields["youtube_video_id"] = *update.YoutubeVideoID
	}
	if update.TextBody != nil {
		fields["text_body"] = *update.TextBody
	}
	if update.HTMLBody != nil {
		fields["html_body"] = *update.HTMLBody
	}
	if update.PdfURL != nil {
		fields["pdf_url"] = *update.PdfURL
	}
	if update.DurationSeconds != nil {
		fields["duration_seconds"] = *update.DurationSeconds
	}

	if len(fields) > 0 {
		if err := s.Chapters.UpdateFields(chapterID, fields); err != nil {
			return nil, err
		}
	}
	return s.Chapters.GetByID(chapterID)
}

// Delete 删除已发布章节后若课程再无已发布章节，课程自动下线
func (s *ChapterService) Delete(profile *model.Profile, chapterID string) error {
	chapter, err := s.Chapters.GetByID(chapterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrChapterNotFound
		}
		return err
	}

	ok, err := s.Access.CanEditCourse(profile, chapter.CourseID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrPermissionDenied
	}

	if err := s.Chapters.Delete(chapterID); err != nil {
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

func (s *ChapterService) Reorder(profile *model.Profile, courseID string, orderedIDs []string) error {
	ok, err := s.Access.CanEditCourse(profile, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrPermissionDenied
	}
	return s.Chapters.Reorder(courseID, orderedIDs)
}

// ChapterView 学员视角的章节内容，未解锁时载荷已清空
type ChapterView struct {
	Chapter       model.Chapter       `json:"chapter"`
	Locked        bool                `json:"locked"`
	Purchased     bool                `json:"purchased"`
	NextChapterID string              `json:"nextChapterId,omitempty"`
	Progress      *model.UserProgress `json:"progress,omitempty"`
}

// GetView 免费章节所有人可看，付费章节仅购买者与教学人员可看载荷
func (s *ChapterService) GetView(profile *model.Profile, chapterID string) (*ChapterView, error) {
	chapter, err := s.Chapters.GetByID(chapterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChapterNotFound
		}
		return nil, err
	}
	if !chapter.IsPublished && !profile.Role.IsStaff() {
		return nil, util.ErrChapterNotFound
	}

	canView, err := s.Access.CanViewChapter(profile, chapter)
	if err != nil {
		return nil, err
	}
	purchased, err := s.Access.HasPurchased(profile, chapter.CourseID)
	if err != nil {
		return nil, err
	}

	view := &ChapterView{
		Chapter:   *chapter,
		Locked:    !canView,
		Purchased: purchased,
	}

	if view.Locked {
		view.Chapter.VideoAssetID = ""
		view.Chapter.VideoPlaybackID = ""
		view.Chapter.YoutubeVideoID = ""
		view.Chapter.TextBody = ""
		view.Chapter.HTMLBody = ""
		view.Chapter.PdfURL = ""
	} else {
		next, err := s.Chapters.NextPublished(chapter.CourseID, chapter.Position)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if err == nil {
			view.NextChapterID = next.ID
		}

		progress, err := s.Progress.Get(profile.ExternalUserID, chapterID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if err == nil {
			view.Progress = progress
		}
	}
	return view, nil
}

// CreateLibraryAsset 素材库条目：挂在课程下但不进入课程结构
func (s *ChapterService) CreateLibraryAsset(profile *model.Profile, courseID, title string, contentType model.ContentType) (*model.Chapter, error) {
	ok, err := s.Access.CanEditCourse(profile, courseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrPermissionDenied
	}
	if title == "" {
		return nil, util.NewValidationError("title")
	}

	asset := &model.Chapter{
		CourseID:       courseID,
		Title:          title,
		ContentType:    contentType,
		IsLibraryAsset: true,
	}
	if err := s.Chapters.Create(asset); err != nil {
		return nil, err
	}
	return asset, nil
}

func (s *ChapterService) ListLibraryAssets(profile *model.Profile, courseID string) ([]model.Chapter, error) {
	if !model.CapabilitiesFor(profile.Role).CanEditCourses {
		return nil, util.ErrPermissionDenied
	}
	if courseID != "" {
		ok, err := s.Access.CanEditCourse(profile, courseID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, util.ErrPermissionDenied
		}
	}
	return s.Chapters.ListLibraryAssets(courseID)
}

// ImportLibraryAsset 把素材复制为目标课程末尾的未发布章节，素材本体不动
func (s *ChapterService) ImportLibraryAsset(profile *model.Profile, assetID, courseID string, moduleID *string) (*model.Chapter, error) {
	ok, err := s.Access.CanEditCourse(profile, courseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrPermissionDenied
	}

	asset, err := s.Chapters.GetByID(assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChapterNotFound
		}
		return nil, err
	}
	if !asset.IsLibraryAsset {
		return nil, util.ErrChapterNotFound
	}

	maxPos, err := s.Chapters.MaxPosition(courseID)
	if err != nil {
		return nil, err
	}

	chapter := &model.Chapter{
		CourseID:        courseID,
		ModuleID:        moduleID,
		Title:           asset.Title,
		Description:     asset.Description,
		Position:        maxPos + 1,
		ContentType:     asset.ContentType,
		VideoAssetID:    asset.VideoAssetID,
		VideoPlaybackID: asset.VideoPlaybackID,
		YoutubeVideoID:  asset.YoutubeVideoID,
		TextBody:        asset.TextBody,
		HTMLBody:        asset.HTMLBody,
		PdfURL:          asset.PdfURL,
		DurationSeconds: asset.DurationSeconds,
	}
	if err := s.Chapters.Create(chapter); err != nil {
		return nil, err
	}
	return chapter, nil
}

// CreateModule 新建模块，追加到课程模块列表末尾
func (s *ChapterService) CreateModule(profile *model.Profile, courseID, title string) (*model.CourseModule, error) {
	ok, err := s.Access.CanEditCourse(profile, courseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrPermissionDenied
	}
	if title == "" {
		return nil, util.NewValidationError("title")
	}

	maxPos, err := s.Modules.MaxPosition(courseID)
	if err != nil {
		return nil, err
	}

	mod := &model.CourseModule{
		CourseID: courseID,
		Title:    title,
		Position: maxPos + 1,
	}
	if err := s.Modules.Create(mod); err != nil {
		return nil, err
	}
	return mod, nil
}

// ModuleUpdate 模块可编辑字段
type ModuleUpdate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (s *ChapterService) UpdateModule(profile *model.Profile, moduleID string, update ModuleUpdate) (*model.CourseModule, error) {
	mod, err := s.Modules.GetByID(moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}

	ok, err := s.Access.CanEditCourse(profile, mod.CourseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrPermissionDenied
	}

	if update.Title != nil {
		if *update.Title == "" {
			return nil, util.NewValidationError("title")
		}
		mod.Title = *update.Title
	}
	if update.Description != nil {
		mod.Description = *update.Description
	}
	if err := s.Modules.Update(mod); err != nil {
		return nil, err
	}
	return mod, nil
}

func (s *ChapterService) DeleteModule(profile *model.Profile, moduleID string) error {
	mod, err := s.Modules.GetByID(moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrModuleNotFound
		}
		return err
	}

	ok, err := s.Access.CanEditCourse(profile, mod.CourseID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrPermissionDenied
	}
	return s.Modules.Delete(moduleID)
}

func (s *ChapterService) ReorderModules(profile *model.Profile, courseID string, orderedIDs []string) error {
	ok, err := s.Access.CanEditCourse(profile, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrPermissionDenied
	}
	return s.Modules.Reorder(courseID, orderedIDs)
}
