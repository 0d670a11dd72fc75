package service

import (
	"errors"
	"math"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

type ProgressService struct {
	Chapters ChapterStore
	Progress ProgressStore
	Access   *AccessService
}

func NewProgressService(chapters ChapterStore, progress ProgressStore, access *AccessService) *ProgressService {
	return &ProgressService{
		Chapters: chapters,
		Progress: progress,
		Access:   access,
	}
}

// CourseProgress 单门课程的进度汇总
type CourseProgress struct {
	CourseID       string  `json:"courseId"`
	CompletedCount int64   `json:"completedCount"`
	TotalCount     int64   `json:"totalCount"`
	Percentage     float64 `json:"percentage"`
}

func percentage(completed, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(total)*10000) / 100
}

// GetProgress 进度 = 已完成的已发布章节数 / 已发布章节数，保留两位小数
func (s *ProgressService) GetProgress(userID, courseID string) (*CourseProgress, error) {
	chapters, err := s.Chapters.ListPublishedByCourse(courseID)
	if err != nil {
		return nil, err
	}

	chapterIDs := make([]string, 0, len(chapters))
	for _, ch := range chapters {
		chapterIDs = append(chapterIDs, ch.ID)
	}

	completed, err := s.Progress.CountCompletedIn(userID, chapterIDs)
	if err != nil {
		return nil, err
	}

	total := int64(len(chapterIDs))
	return &CourseProgress{
		CourseID:       courseID,
		CompletedCount: completed,
		TotalCount:     total,
		Percentage:     percentage(completed, total),
	}, nil
}

// GetProgressBatch 多门课程的进度汇总，固定两条批量查询，与逐门计算结果一致
func (s *ProgressService) GetProgressBatch(userID string, courseIDs []string) (map[string]*CourseProgress, error) {
	result := make(map[string]*CourseProgress, len(courseIDs))
	for _, id := range courseIDs {
		result[id] = &CourseProgress{CourseID: id}
	}
	if len(courseIDs) == 0 {
		return result, nil
	}

	chapters, err := s.Chapters.ListPublishedByCourses(courseIDs)
	if err != nil {
		return nil, err
	}

	chapterCourse := make(map[string]string, len(chapters))
	chapterIDs := make([]string, 0, len(chapters))
	for _, ch := range chapters {
		chapterCourse[ch.ID] = ch.CourseID
		chapterIDs = append(chapterIDs, ch.ID)
		if p, ok := result[ch.CourseID]; ok {
			p.TotalCount++
		}
	}

	completedRows, err := s.Progress.ListCompletedIn(userID, chapterIDs)
	if err != nil {
		return nil, err
	}
	for _, row := range completedRows {
		courseID, ok := chapterCourse[row.ChapterID]
		if !ok {
			continue
		}
		if p, ok := result[courseID]; ok {
			p.CompletedCount++
		}
	}

	for _, p := range result {
		p.Percentage = percentage(p.CompletedCount, p.TotalCount)
	}
	return result, nil
}

// SetCompletion 写入章节完成状态，要求对该章节有访问权
func (s *ProgressService) SetCompletion(profile *model.Profile, chapterID string, isCompleted bool) error {
	chapter, err := s.Chapters.GetByID(chapterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrChapterNotFound
		}
		return err
	}

	ok, err := s.Access.CanViewChapter(profile, chapter)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrPermissionDenied
	}

	return s.Progress.Upsert(&model.UserProgress{
		UserID:      profile.ExternalUserID,
		ChapterID:   chapterID,
		IsCompleted: isCompleted,
	})
}
