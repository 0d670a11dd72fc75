package service

import (
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chapterFixture struct {
	svc       *ChapterService
	courses   *stubCourseStore
	chapters  *stubChapterStore
	modules   *stubModuleStore
	purchases *stubPurchaseStore
	progress  *stubProgressStore
}

func newChapterFixture() *chapterFixture {
	courses := newStubCourseStore()
	chapters := newStubChapterStore()
	modules := newStubModuleStore()
	purchases := newStubPurchaseStore()
	progress := newStubProgressStore()
	access := NewAccessService(courses, chapters, modules, purchases)
	svc := NewChapterService(chapters, courses, modules, progress, access)
	return &chapterFixture{
		svc:       svc,
		courses:   courses,
		chapters:  chapters,
		modules:   modules,
		purchases: purchases,
		progress:  progress,
	}
}

func (f *chapterFixture) addCourse(id string, editorIDs ...string) *model.Course {
	course := &model.Course{Title: "课程 " + id}
	course.ID = id
	f.courses.add(course, editorIDs...)
	return course
}

func TestCreateChapter(t *testing.T) {
	f := newChapterFixture()

	owner := teacherProfile("p-owner", "ext-owner")
	f.addCourse("c1", owner.ExternalUserID)

	first, err := f.svc.Create(owner, "c1", "第一章", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Position)
	assert.False(t, first.IsPublished)

	second, err := f.svc.Create(owner, "c1", "第二章", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Position)

	t.Run("empty title", func(t *testing.T) {
		_, err := f.svc.Create(owner, "c1", "", nil)
		_, ok := util.AsValidation(err)
		assert.True(t, ok)
	})

	t.Run("module from another course", func(t *testing.T) {
		f.addCourse("c2", owner.ExternalUserID)
		mod := &model.CourseModule{CourseID: "c2", Title: "别的课的模块"}
		require.NoError(t, f.modules.Create(mod))

		_, err := f.svc.Create(owner, "c1", "章节", &mod.ID)
		assert.ErrorIs(t, err, util.ErrModuleNotFound)
	})

	t.Run("outsider denied", func(t *testing.T) {
		outsider := teacherProfile("p-out", "ext-out")
		_, err := f.svc.Create(outsider, "c1", "章节", nil)
		assert.ErrorIs(t, err, util.ErrPermissionDenied)
	})
}

func TestGetViewLockedRedactsPayload(t *testing.T) {
	f := newChapterFixture()

	buyer := studentProfile("p-buyer", "ext-buyer")
	stranger := studentProfile("p-stranger", "ext-stranger")
	teacher := teacherProfile("p-teacher", "ext-teacher")
	f.addCourse("c1", teacher.ExternalUserID)
	f.purchases.add(buyer.ExternalUserID, "c1")

	paid := &model.Chapter{
		CourseID:        "c1",
		Title:           "付费章节",
		Position:        1,
		IsPublished:     true,
		ContentType:     model.ContentVideoMux,
		VideoAssetID:    "asset-1",
		VideoPlaybackID: "playback-1",
		TextBody:        "正文",
	}
	f.chapters.add(paid)
	next := &model.Chapter{CourseID: "c1", Title: "下一章", Position: 2, IsPublished: true}
	f.chapters.add(next)

	t.Run("locked view keeps metadata, drops payload", func(t *testing.T) {
		view, err := f.svc.GetView(stranger, paid.ID)
		require.NoError(t, err)
		assert.True(t, view.Locked)
		assert.False(t, view.Purchased)
		assert.Equal(t, "付费章节", view.Chapter.Title)
		assert.Empty(t, view.Chapter.VideoAssetID)
		assert.Empty(t, view.Chapter.VideoPlaybackID)
		assert.Empty(t, view.Chapter.TextBody)
		assert.Empty(t, view.NextChapterID)
		assert.Nil(t, view.Progress)
	})

	t.Run("buyer gets payload, next chapter and progress", func(t *testing.T) {
		require.NoError(t, f.progress.Upsert(&model.UserProgress{
			UserID: buyer.ExternalUserID, ChapterID: paid.ID, IsCompleted: true,
		}))

		view, err := f.svc.GetView(buyer, paid.ID)
		require.NoError(t, err)
		assert.False(t, view.Locked)
		assert.True(t, view.Purchased)
		assert.Equal(t, "asset-1", view.Chapter.VideoAssetID)
		assert.Equal(t, next.ID, view.NextChapterID)
		require.NotNil(t, view.Progress)
		assert.True(t, view.Progress.IsCompleted)
	})

	t.Run("unpublished chapter hidden from students", func(t *testing.T) {
		draft := &model.Chapter{CourseID: "c1", Title: "草稿", Position: 3}
		f.chapters.add(draft)

		_, err := f.svc.GetView(buyer, draft.ID)
		assert.ErrorIs(t, err, util.ErrChapterNotFound)

		// 教学人员可以预览未发布章节
		view, err := f.svc.GetView(teacher, draft.ID)
		require.NoError(t, err)
		assert.False(t, view.Locked)
	})
}

func TestDeleteLastPublishedChapterUnpublishesCourse(t *testing.T) {
	f := newChapterFixture()

	owner := teacherProfile("p-owner", "ext-owner")
	course := f.addCourse("c1", owner.ExternalUserID)
	course.IsPublished = true

	only := &model.Chapter{CourseID: "c1", Title: "唯一章节", IsPublished: true}
	f.chapters.add(only)

	require.NoError(t, f.svc.Delete(owner, only.ID))
	assert.False(t, course.IsPublished)
	assert.False(t, course.PendingApproval)
}

func TestLibraryAssets(t *testing.T) {
	f := newChapterFixture()

	owner := teacherProfile("p-owner", "ext-owner")
	f.addCourse("c1", owner.ExternalUserID)
	f.addCourse("c2", owner.ExternalUserID)

	asset, err := f.svc.CreateLibraryAsset(owner, "c1", "通用导论视频", model.ContentVideoYoutube)
	require.NoError(t, err)
	assert.True(t, asset.IsLibraryAsset)
	asset.YoutubeVideoID = "abc123"

	t.Run("assets stay out of course structure", func(t *testing.T) {
		published, err := f.chapters.ListPublishedByCourse("c1")
		require.NoError(t, err)
		assert.Empty(t, published)
	})

	t.Run("import copies payload into target course", func(t *testing.T) {
		f.chapters.add(&model.Chapter{CourseID: "c2", Title: "已有章节", Position: 1})

		imported, err := f.svc.ImportLibraryAsset(owner, asset.ID, "c2", nil)
		require.NoError(t, err)
		assert.Equal(t, "c2", imported.CourseID)
		assert.Equal(t, asset.Title, imported.Title)
		assert.Equal(t, "abc123", imported.YoutubeVideoID)
		assert.Equal(t, 2, imported.Position)
		assert.False(t, imported.IsPublished)
		assert.False(t, imported.IsLibraryAsset)
		assert.NotEqual(t, asset.ID, imported.ID)
	})

	t.Run("regular chapter cannot be imported", func(t *testing.T) {
		regular := &model.Chapter{CourseID: "c1", Title: "普通章节"}
		f.chapters.add(regular)

		_, err := f.svc.ImportLibraryAsset(owner, regular.ID, "c2", nil)
		assert.ErrorIs(t, err, util.ErrChapterNotFound)
	})

	t.Run("students cannot list the library", func(t *testing.T) {
		student := studentProfile("p-s1", "ext-s1")
		_, err := f.svc.ListLibraryAssets(student, "c1")
		assert.ErrorIs(t, err, util.ErrPermissionDenied)
	})
}

func TestModuleLifecycle(t *testing.T) {
	f := newChapterFixture()

	owner := teacherProfile("p-owner", "ext-owner")
	f.addCourse("c1", owner.ExternalUserID)

	first, err := f.svc.CreateModule(owner, "c1", "模块一")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Position)

	second, err := f.svc.CreateModule(owner, "c1", "模块二")
	require.NoError(t, err)
	assert.Equal(t, 2, second.Position)

	t.Run("update title", func(t *testing.T) {
		title := "新标题"
		mod, err := f.svc.UpdateModule(owner, first.ID, ModuleUpdate{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "新标题", mod.Title)
	})

	t.Run("reorder swaps positions", func(t *testing.T) {
		require.NoError(t, f.svc.ReorderModules(owner, "c1", []string{second.ID, first.ID}))
		assert.Equal(t, 1, second.Position)
		assert.Equal(t, 2, first.Position)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, f.svc.DeleteModule(owner, second.ID))
		_, err := f.modules.GetByID(second.ID)
		assert.Error(t, err)
	})
}
