package service

import (
	"errors"
	"sort"
	"strings"
	"time"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

const maxMessageLength = 4000

// ThreadService 导师答疑线程：每门课程按学生分线程，双方各自维护已读游标
type ThreadService struct {
	Messages  MessageStore
	Cursors   CursorStore
	Profiles  ProfileStore
	Courses   CourseStore
	Purchases PurchaseStore
	Access    *AccessService
}

func NewThreadService(messages MessageStore, cursors CursorStore, profiles ProfileStore, courses CourseStore, purchases PurchaseStore, access *AccessService) *ThreadService {
	return &ThreadService{
		Messages:  messages,
		Cursors:   cursors,
		Profiles:  profiles,
		Courses:   courses,
		Purchases: purchases,
		Access:    access,
	}
}

// resolveThread 学生只能访问自己的线程，请求里的 threadStudentId 一律忽略
// 教学人员必须显式指明目标学生线程
func (s *ThreadService) resolveThread(profile *model.Profile, threadStudentID string) (string, error) {
	if !profile.Role.IsStaff() {
		return profile.ID, nil
	}
	if threadStudentID == "" {
		return "", util.ErrThreadRequired
	}
	return threadStudentID, nil
}

func (s *ThreadService) checkChatAccess(profile *model.Profile, courseID string) error {
	ok, err := s.Access.CanAccessChat(profile, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrPermissionDenied
	}
	return nil
}

// ListThread 线程全部消息按时间升序
func (s *ThreadService) ListThread(profile *model.Profile, courseID, threadStudentID string) ([]model.CourseMessage, error) {
	if err := s.checkChatAccess(profile, courseID); err != nil {
		return nil, err
	}
	thread, err := s.resolveThread(profile, threadStudentID)
	if err != nil {
		return nil, err
	}
	return s.Messages.ListThread(courseID, thread)
}

// Post 发送消息，线程归属由服务端裁决
func (s *ThreadService) Post(profile *model.Profile, courseID, threadStudentID, content string) (*model.CourseMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" || len(content) > maxMessageLength {
		return nil, util.NewValidationError("content")
	}

	if err := s.checkChatAccess(profile, courseID); err != nil {
		return nil, err
	}
	thread, err := s.resolveThread(profile, threadStudentID)
	if err != nil {
		return nil, err
	}

	msg := &model.CourseMessage{
		CourseID:        courseID,
		ThreadStudentID: thread,
		AuthorID:        profile.ID,
		Content:         content,
	}
	if err := s.Messages.Create(msg); err != nil {
		return nil, err
	}
	msg.Author = *profile
	return msg, nil
}

// MarkReadStudent 学生更新自己线程的已读游标，后写覆盖
func (s *ThreadService) MarkReadStudent(profile *model.Profile, courseID string) error {
	if err := s.checkChatAccess(profile, courseID); err != nil {
		return err
	}
	return s.Cursors.UpsertStudentCursor(profile.ID, courseID, time.Now())
}

// MarkReadMentor 教学人员更新其对某学生线程的已读游标
func (s *ThreadService) MarkReadMentor(profile *model.Profile, courseID, studentID string) error {
	if !profile.Role.IsStaff() {
		return util.ErrPermissionDenied
	}
	if studentID == "" {
		return util.ErrThreadRequired
	}
	return s.Cursors.UpsertMentorCursor(profile.ID, courseID, studentID, time.Now())
}

// studentCursorTime 无游标时返回 nil，未读统计按全部他人消息计
func (s *ThreadService) studentCursorTime(studentID, courseID string) (*time.Time, error) {
	cursor, err := s.Cursors.GetStudentCursor(studentID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	t := cursor.LastReadAt
	return &t, nil
}

// mentorCursorMap 讲师在一门课下的全部线程游标一次取齐，避免逐学生查询
func (s *ThreadService) mentorCursorMap(instructorID, courseID string) (map[string]time.Time, error) {
	cursors, err := s.Cursors.ListMentorCursors(instructorID, courseID)
	if err != nil {
		return nil, err
	}
	readAt := make(map[string]time.Time, len(cursors))
	for _, cursor := range cursors {
		readAt[cursor.StudentID] = cursor.LastReadAt
	}
	return readAt, nil
}

// unreadFirstThenLatest 有未读的在前，其余按最新消息时间倒序
func unreadFirstThenLatest(unreadI, unreadJ int64, lastI, lastJ *model.CourseMessage) bool {
	if (unreadI > 0) != (unreadJ > 0) {
		return unreadI > 0
	}
	ti, tj := time.Time{}, time.Time{}
	if lastI != nil {
		ti = lastI.CreatedAt
	}
	if lastJ != nil {
		tj = lastJ.CreatedAt
	}
	return ti.After(tj)
}

// StudentUnreadCount 学生在一门课程里的未读消息数
func (s *ThreadService) StudentUnreadCount(profile *model.Profile, courseID string) (int64, error) {
	after, err := s.studentCursorTime(profile.ID, courseID)
	if err != nil {
		return 0, err
	}
	return s.Messages.CountUnread(courseID, profile.ID, profile.ID, after)
}

// UnreadBadge 学生全部已购课程的未读总数，导航栏角标数据源
func (s *ThreadService) UnreadBadge(profile *model.Profile) (int64, error) {
	courseIDs, err := s.Purchases.ListCourseIDsForUser(profile.ExternalUserID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, courseID := range courseIDs {
		count, err := s.StudentUnreadCount(profile, courseID)
		if err != nil {
			return 0, err
		}
		total += count
	}
	return total, nil
}

// ChatStudent 讲师连线页的学员条目
type ChatStudent struct {
	Student     model.SafeProfile    `json:"student"`
	LastMessage *model.CourseMessage `json:"lastMessage,omitempty"`
	UnreadCount int64                `json:"unreadCount"`
}

// ListChatStudents 课程内有消息往来的学生列表
// 排序：有未读的在前，其余按最新消息时间倒序
func (s *ThreadService) ListChatStudents(profile *model.Profile, courseID string) ([]ChatStudent, error) {
	if !profile.Role.IsStaff() {
		return nil, util.ErrPermissionDenied
	}

	studentIDs, err := s.Messages.DistinctThreadStudentIDs(courseID)
	if err != nil {
		return nil, err
	}
	profiles, err := s.Profiles.ListByIDs(studentIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}
	readAt, err := s.mentorCursorMap(profile.ID, courseID)
	if err != nil {
		return nil, err
	}

	entries := make([]ChatStudent, 0, len(studentIDs))
	for _, studentID := range studentIDs {
		p, ok := byID[studentID]
		if !ok || p.Role != model.RoleStudent {
			continue
		}

		entry := ChatStudent{Student: p.Safe()}

		latest, err := s.Messages.LatestInThread(courseID, studentID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if err == nil {
			entry.LastMessage = latest
		}

		var after *time.Time
		if t, ok := readAt[studentID]; ok {
			t := t
			after = &t
		}
		unread, err := s.Messages.CountUnread(courseID, studentID, profile.ID, after)
		if err != nil {
			return nil, err
		}
		entry.UnreadCount = unread

		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return unreadFirstThenLatest(entries[i].UnreadCount, entries[j].UnreadCount,
			entries[i].LastMessage, entries[j].LastMessage)
	})

	return entries, nil
}

// HubCourse 连线总览里的课程条目，未读数为该课程全部学生线程未读之和
type HubCourse struct {
	Course      model.Course         `json:"course"`
	LastMessage *model.CourseMessage `json:"lastMessage,omitempty"`
	UnreadCount int64                `json:"unreadCount"`
}

// HubOverview 讲师名下（拥有或被指派）全部课程及未读汇总，管理员看全部课程
// 排序与学员列表一致：有未读的在前，其余按最新消息时间倒序
func (s *ThreadService) HubOverview(profile *model.Profile) ([]HubCourse, error) {
	if !profile.Role.IsStaff() {
		return nil, util.ErrPermissionDenied
	}

	var courses []model.Course
	var err error
	if profile.Role == model.RoleAdmin {
		courses, err = s.Courses.ListAll()
	} else {
		courses, err = s.Courses.ListForOwnerOrInstructor(profile.ID, profile.ExternalUserID)
	}
	if err != nil {
		return nil, err
	}

	hub := make([]HubCourse, 0, len(courses))
	for _, course := range courses {
		studentIDs, err := s.Messages.DistinctThreadStudentIDs(course.ID)
		if err != nil {
			return nil, err
		}
		readAt, err := s.mentorCursorMap(profile.ID, course.ID)
		if err != nil {
			return nil, err
		}

		entry := HubCourse{Course: course}
		for _, studentID := range studentIDs {
			var after *time.Time
			if t, ok := readAt[studentID]; ok {
				t := t
				after = &t
			}
			unread, err := s.Messages.CountUnread(course.ID, studentID, profile.ID, after)
			if err != nil {
				return nil, err
			}
			entry.UnreadCount += unread

			latest, err := s.Messages.LatestInThread(course.ID, studentID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			if err == nil && (entry.LastMessage == nil || latest.CreatedAt.After(entry.LastMessage.CreatedAt)) {
				entry.LastMessage = latest
			}
		}

		hub = append(hub, entry)
	}

	sort.SliceStable(hub, func(i, j int) bool {
		return unreadFirstThenLatest(hub[i].UnreadCount, hub[j].UnreadCount,
			hub[i].LastMessage, hub[j].LastMessage)
	})

	return hub, nil
}
