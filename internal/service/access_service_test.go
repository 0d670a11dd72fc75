package service

import (
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccessFixture() (*AccessService, *stubCourseStore, *stubChapterStore, *stubModuleStore, *stubPurchaseStore) {
	courses := newStubCourseStore()
	chapters := newStubChapterStore()
	modules := newStubModuleStore()
	purchases := newStubPurchaseStore()
	access := NewAccessService(courses, chapters, modules, purchases)
	return access, courses, chapters, modules, purchases
}

func TestCanEditCourse(t *testing.T) {
	access, courses, _, _, _ := newAccessFixture()

	owner := teacherProfile("p-owner", "ext-owner")
	instructor := teacherProfile("p-instructor", "ext-instructor")
	outsider := teacherProfile("p-outsider", "ext-outsider")
	student := studentProfile("p-student", "ext-student")
	admin := adminProfile("p-admin", "ext-admin")

	course := &model.Course{Title: "Go 入门"}
	course.ID = "c1"
	courses.add(course, owner.ExternalUserID, instructor.ID)

	tests := []struct {
		name    string
		profile *model.Profile
		want    bool
	}{
		{name: "owner can edit", profile: owner, want: true},
		{name: "assigned instructor can edit", profile: instructor, want: true},
		{name: "unrelated teacher cannot edit", profile: outsider, want: false},
		{name: "student cannot edit", profile: student, want: false},
		{name: "admin can edit any course", profile: admin, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := access.CanEditCourse(tt.profile, course.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanViewChapter(t *testing.T) {
	access, _, _, _, purchases := newAccessFixture()

	buyer := studentProfile("p-buyer", "ext-buyer")
	stranger := studentProfile("p-stranger", "ext-stranger")
	teacher := teacherProfile("p-teacher", "ext-teacher")
	purchases.add(buyer.ExternalUserID, "c1")

	free := &model.Chapter{CourseID: "c1", IsFree: true}
	paid := &model.Chapter{CourseID: "c1"}

	tests := []struct {
		name    string
		profile *model.Profile
		chapter *model.Chapter
		want    bool
	}{
		{name: "free chapter open to anyone", profile: stranger, chapter: free, want: true},
		{name: "paid chapter requires purchase", profile: stranger, chapter: paid, want: false},
		{name: "buyer can view paid chapter", profile: buyer, chapter: paid, want: true},
		{name: "staff bypasses purchase check", profile: teacher, chapter: paid, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := access.CanViewChapter(tt.profile, tt.chapter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubmitCourseForApproval(t *testing.T) {
	access, courses, chapters, _, _ := newAccessFixture()

	owner := teacherProfile("p-owner", "ext-owner")
	categoryID := "cat1"

	t.Run("lists every missing precondition", func(t *testing.T) {
		course := &model.Course{}
		course.ID = "c-empty"
		courses.add(course, owner.ExternalUserID)

		err := access.SubmitCourseForApproval(owner, course.ID)
		ve, ok := util.AsValidation(err)
		require.True(t, ok)
		assert.ElementsMatch(t,
			[]string{"title", "description", "imageUrl", "categoryId", "price", "publishedChapters"},
			ve.Missing)
		assert.False(t, course.PendingApproval)
	})

	t.Run("complete course goes pending", func(t *testing.T) {
		course := &model.Course{
			Title:       "Go 进阶",
			Description: "深入并发与调度",
			ImageURL:    "https://cdn.example.com/go.png",
			CategoryID:  &categoryID,
			Price:       499,
		}
		course.ID = "c-ready"
		courses.add(course, owner.ExternalUserID)
		chapters.add(&model.Chapter{CourseID: course.ID, Title: "第一章", IsPublished: true})

		require.NoError(t, access.SubmitCourseForApproval(owner, course.ID))
		assert.True(t, course.PendingApproval)
		assert.False(t, course.IsPublished)
	})

	t.Run("non editor is rejected", func(t *testing.T) {
		course := &model.Course{Title: "别人的课"}
		course.ID = "c-other"
		courses.add(course, "someone-else")

		err := access.SubmitCourseForApproval(owner, course.ID)
		assert.ErrorIs(t, err, util.ErrPermissionDenied)
	})
}

func TestApproveAndRejectCourse(t *testing.T) {
	access, courses, _, _, _ := newAccessFixture()

	admin := adminProfile("p-admin", "ext-admin")
	teacher := teacherProfile("p-teacher", "ext-teacher")

	course := &model.Course{Title: "待审课程", PendingApproval: true}
	course.ID = "c1"
	courses.add(course)

	t.Run("teacher cannot approve", func(t *testing.T) {
		assert.ErrorIs(t, access.ApproveCourse(teacher, course.ID), util.ErrPermissionDenied)
	})

	t.Run("approve publishes and clears pending", func(t *testing.T) {
		require.NoError(t, access.ApproveCourse(admin, course.ID))
		assert.True(t, course.IsPublished)
		assert.False(t, course.PendingApproval)
	})

	t.Run("reject returns to draft", func(t *testing.T) {
		course.PendingApproval = true
		course.IsPublished = true
		require.NoError(t, access.RejectCourse(admin, course.ID))
		assert.False(t, course.PendingApproval)
		// 驳回同时强制下线，已上架的课程不会停留在已发布态
		assert.False(t, course.IsPublished)
	})

	t.Run("missing course", func(t *testing.T) {
		assert.ErrorIs(t, access.ApproveCourse(admin, "nope"), util.ErrCourseNotFound)
	})
}

func TestPublishChapter(t *testing.T) {
	access, courses, chapters, _, _ := newAccessFixture()

	owner := teacherProfile("p-owner", "ext-owner")
	course := &model.Course{Title: "课程"}
	course.ID = "c1"
	courses.add(course, owner.ExternalUserID)

	t.Run("text chapter without body", func(t *testing.T) {
		ch := &model.Chapter{CourseID: course.ID, Title: "章节", ContentType: model.ContentText}
		chapters.add(ch)

		err := access.PublishChapter(owner, ch.ID)
		ve, ok := util.AsValidation(err)
		require.True(t, ok)
		assert.ElementsMatch(t, []string{"description", "textBody"}, ve.Missing)
	})

	t.Run("youtube chapter publishes with video id", func(t *testing.T) {
		ch := &model.Chapter{
			CourseID:       course.ID,
			Title:          "视频章节",
			Description:    "介绍",
			ContentType:    model.ContentVideoYoutube,
			YoutubeVideoID: "dQw4w9WgXcQ",
		}
		chapters.add(ch)

		require.NoError(t, access.PublishChapter(owner, ch.ID))
		assert.True(t, ch.IsPublished)
	})
}

func TestUnpublishLastChapterUnpublishesCourse(t *testing.T) {
	access, courses, chapters, _, _ := newAccessFixture()

	owner := teacherProfile("p-owner", "ext-owner")
	course := &model.Course{Title: "课程", IsPublished: true, PendingApproval: true}
	course.ID = "c1"
	courses.add(course, owner.ExternalUserID)

	first := &model.Chapter{CourseID: course.ID, Title: "一", IsPublished: true}
	second := &model.Chapter{CourseID: course.ID, Title: "二", IsPublished: true}
	chapters.add(first)
	chapters.add(second)

	// 还有其他已发布章节，课程保持上架
	require.NoError(t, access.UnpublishChapter(owner, first.ID))
	assert.False(t, first.IsPublished)
	assert.True(t, course.IsPublished)

	// 最后一个已发布章节下线，课程自动下线
	require.NoError(t, access.UnpublishChapter(owner, second.ID))
	assert.False(t, second.IsPublished)
	assert.False(t, course.IsPublished)
	assert.False(t, course.PendingApproval)
}

func TestPublishModule(t *testing.T) {
	access, courses, chapters, modules, _ := newAccessFixture()

	owner := teacherProfile("p-owner", "ext-owner")
	course := &model.Course{Title: "课程"}
	course.ID = "c1"
	courses.add(course, owner.ExternalUserID)

	mod := &model.CourseModule{CourseID: course.ID, Title: "模块一"}
	require.NoError(t, modules.Create(mod))

	t.Run("requires a published chapter inside", func(t *testing.T) {
		err := access.PublishModule(owner, mod.ID)
		ve, ok := util.AsValidation(err)
		require.True(t, ok)
		assert.ElementsMatch(t, []string{"publishedChapters"}, ve.Missing)
	})

	t.Run("publishes once a chapter is live", func(t *testing.T) {
		chapters.add(&model.Chapter{CourseID: course.ID, ModuleID: &mod.ID, Title: "章节", IsPublished: true})
		require.NoError(t, access.PublishModule(owner, mod.ID))
		assert.True(t, mod.IsPublished)
	})

	t.Run("unpublish", func(t *testing.T) {
		require.NoError(t, access.UnpublishModule(owner, mod.ID))
		assert.False(t, mod.IsPublished)
	})
}
