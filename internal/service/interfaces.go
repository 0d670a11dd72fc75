package service

import (
	"time"

	"lms_backend/internal/model"
)

// 服务层只依赖窄接口，repository 里的具体实现自动满足，测试用内存桩替换

type ProfileStore interface {
	GetByID(id string) (*model.Profile, error)
	GetByExternalUserID(externalUserID string) (*model.Profile, error)
	Create(profile *model.Profile) error
	Update(profile *model.Profile) error
	UpdateRole(id string, role model.Role) error
	Search(query, excludeID string, limit, offset int) ([]model.Profile, int64, error)
	ListByIDs(ids []string) ([]model.Profile, error)
}

type CourseStore interface {
	GetByID(id string) (*model.Course, error)
	GetWithStructure(id string) (*model.Course, error)
	Create(course *model.Course) error
	Update(course *model.Course) error
	UpdateFields(id string, fields map[string]interface{}) error
	Delete(id string) error
	IsOwnerOrInstructor(courseID, profileID, externalUserID string) (bool, error)
	AddInstructor(courseID, profileID string) error
	RemoveInstructor(courseID, profileID string) error
	HasInstructor(courseID, profileID string) (bool, error)
	ListInstructors(courseID string) ([]model.CourseInstructor, error)
	ListForOwnerOrInstructor(profileID, externalUserID string) ([]model.Course, error)
	ListPublished(categoryID, title string) ([]model.Course, error)
	ListPendingApproval() ([]model.Course, error)
	ListAll() ([]model.Course, error)
	ListPurchasedByUser(userID string) ([]model.Course, error)
}

type ChapterStore interface {
	GetByID(id string) (*model.Chapter, error)
	Create(chapter *model.Chapter) error
	Update(chapter *model.Chapter) error
	UpdateFields(id string, fields map[string]interface{}) error
	Delete(id string) error
	CountPublished(courseID string) (int64, error)
	CountPublishedInModule(moduleID string) (int64, error)
	ListPublishedByCourse(courseID string) ([]model.Chapter, error)
	ListPublishedByCourses(courseIDs []string) ([]model.Chapter, error)
	MaxPosition(courseID string) (int, error)
	Reorder(courseID string, orderedIDs []string) error
	NextPublished(courseID string, position int) (*model.Chapter, error)
	ListLibraryAssets(courseID string) ([]model.Chapter, error)
}

type ModuleStore interface {
	GetByID(id string) (*model.CourseModule, error)
	Create(mod *model.CourseModule) error
	Update(mod *model.CourseModule) error
	Delete(id string) error
	ListByCourse(courseID string) ([]model.CourseModule, error)
	MaxPosition(courseID string) (int, error)
	Reorder(courseID string, orderedIDs []string) error
}

type PurchaseStore interface {
	Exists(userID, courseID string) (bool, error)
	Create(purchase *model.Purchase) error
	ListCourseIDsForUser(userID string) ([]string, error)
	ListUserIDsForCourse(courseID string) ([]string, error)
	CountForCourse(courseID string) (int64, error)
}

type ProgressStore interface {
	Upsert(progress *model.UserProgress) error
	Get(userID, chapterID string) (*model.UserProgress, error)
	CountCompletedIn(userID string, chapterIDs []string) (int64, error)
	ListCompletedIn(userID string, chapterIDs []string) ([]model.UserProgress, error)
	ListCompletedChapterIDs(userID, courseID string) ([]string, error)
}

type MessageStore interface {
	Create(msg *model.CourseMessage) error
	ListThread(courseID, threadStudentID string) ([]model.CourseMessage, error)
	DistinctThreadStudentIDs(courseID string) ([]string, error)
	LatestInThread(courseID, threadStudentID string) (*model.CourseMessage, error)
	CountUnread(courseID, threadStudentID, excludeAuthorID string, after *time.Time) (int64, error)
}

type CursorStore interface {
	GetStudentCursor(studentID, courseID string) (*model.StudentLastRead, error)
	UpsertStudentCursor(studentID, courseID string, readAt time.Time) error
	UpsertMentorCursor(instructorID, courseID, studentID string, readAt time.Time) error
	ListMentorCursors(instructorID, courseID string) ([]model.MentorLastRead, error)
}

type CategoryStore interface {
	List() ([]model.Category, error)
	GetByID(id string) (*model.Category, error)
	Create(category *model.Category) error
}

type AttachmentStore interface {
	GetByID(id string) (*model.Attachment, error)
	ListByCourse(courseID string) ([]model.Attachment, error)
	Create(attachment *model.Attachment) error
	Delete(id string) error
}

type LeadStore interface {
	GetByID(id string) (*model.Lead, error)
	Create(lead *model.Lead) error
	Update(lead *model.Lead) error
	Delete(id string) error
	List(ownerID string, status model.LeadStatus, query string, limit, offset int) ([]model.Lead, int64, error)
}

// PaymentGateway 支付网关，生产实现见 razorpay.go
type PaymentGateway interface {
	CreateOrder(amount int64, currency, receipt string) (orderID string, err error)
}
