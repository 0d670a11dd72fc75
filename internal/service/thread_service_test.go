package service

import (
	"strings"
	"testing"
	"time"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type threadFixture struct {
	svc       *ThreadService
	courses   *stubCourseStore
	purchases *stubPurchaseStore
	messages  *stubMessageStore
	cursors   *stubCursorStore
	profiles  *stubProfileStore
}

func newThreadFixture() *threadFixture {
	courses := newStubCourseStore()
	chapters := newStubChapterStore()
	modules := newStubModuleStore()
	purchases := newStubPurchaseStore()
	messages := &stubMessageStore{}
	cursors := newStubCursorStore()
	profiles := newStubProfileStore()
	access := NewAccessService(courses, chapters, modules, purchases)
	svc := NewThreadService(messages, cursors, profiles, courses, purchases, access)
	return &threadFixture{
		svc:       svc,
		courses:   courses,
		purchases: purchases,
		messages:  messages,
		cursors:   cursors,
		profiles:  profiles,
	}
}

func TestPostMessage(t *testing.T) {
	f := newThreadFixture()

	student := studentProfile("p-s1", "ext-s1")
	teacher := teacherProfile("p-t1", "ext-t1")
	f.profiles.add(student)
	f.profiles.add(teacher)
	f.purchases.add(student.ExternalUserID, "c1")

	t.Run("student posts into own thread regardless of request", func(t *testing.T) {
		msg, err := f.svc.Post(student, "c1", "someone-else", "老师好")
		require.NoError(t, err)
		assert.Equal(t, student.ID, msg.ThreadStudentID)
		assert.Equal(t, student.ID, msg.AuthorID)
		assert.Equal(t, student.Name, msg.Author.Name)
	})

	t.Run("teacher must name the thread", func(t *testing.T) {
		_, err := f.svc.Post(teacher, "c1", "", "回复")
		assert.ErrorIs(t, err, util.ErrThreadRequired)
	})

	t.Run("teacher reply lands in student thread", func(t *testing.T) {
		msg, err := f.svc.Post(teacher, "c1", student.ID, "你好，有什么问题？")
		require.NoError(t, err)
		assert.Equal(t, student.ID, msg.ThreadStudentID)
		assert.Equal(t, teacher.ID, msg.AuthorID)
	})

	t.Run("unpurchased student is rejected", func(t *testing.T) {
		stranger := studentProfile("p-s2", "ext-s2")
		_, err := f.svc.Post(stranger, "c1", "", "蹭课")
		assert.ErrorIs(t, err, util.ErrPermissionDenied)
	})

	t.Run("content validation", func(t *testing.T) {
		_, err := f.svc.Post(student, "c1", "", "   ")
		_, ok := util.AsValidation(err)
		assert.True(t, ok)

		_, err = f.svc.Post(student, "c1", "", strings.Repeat("a", maxMessageLength+1))
		_, ok = util.AsValidation(err)
		assert.True(t, ok)
	})
}

func TestListThread(t *testing.T) {
	f := newThreadFixture()

	student := studentProfile("p-s1", "ext-s1")
	other := studentProfile("p-s2", "ext-s2")
	teacher := teacherProfile("p-t1", "ext-t1")
	f.profiles.add(student)
	f.profiles.add(other)
	f.purchases.add(student.ExternalUserID, "c1")
	f.purchases.add(other.ExternalUserID, "c1")

	base := time.Now().Add(-time.Hour)
	f.messages.add("c1", student.ID, student.ID, "第一条", base)
	f.messages.add("c1", student.ID, teacher.ID, "第二条", base.Add(time.Minute))
	f.messages.add("c1", other.ID, other.ID, "别人的线程", base.Add(2*time.Minute))

	t.Run("student sees only own thread in order", func(t *testing.T) {
		// 学生传入他人线程ID也只会看到自己的
		thread, err := f.svc.ListThread(student, "c1", other.ID)
		require.NoError(t, err)
		require.Len(t, thread, 2)
		assert.Equal(t, "第一条", thread[0].Content)
		assert.Equal(t, "第二条", thread[1].Content)
	})

	t.Run("teacher reads a named thread", func(t *testing.T) {
		thread, err := f.svc.ListThread(teacher, "c1", other.ID)
		require.NoError(t, err)
		require.Len(t, thread, 1)
		assert.Equal(t, "别人的线程", thread[0].Content)
	})

	t.Run("teacher without thread id", func(t *testing.T) {
		_, err := f.svc.ListThread(teacher, "c1", "")
		assert.ErrorIs(t, err, util.ErrThreadRequired)
	})
}

func TestStudentUnreadCount(t *testing.T) {
	f := newThreadFixture()

	student := studentProfile("p-s1", "ext-s1")
	teacher := teacherProfile("p-t1", "ext-t1")
	f.profiles.add(student)
	f.purchases.add(student.ExternalUserID, "c1")

	base := time.Now().Add(-time.Hour)
	f.messages.add("c1", student.ID, teacher.ID, "一", base)
	f.messages.add("c1", student.ID, student.ID, "自己的", base.Add(time.Minute))
	f.messages.add("c1", student.ID, teacher.ID, "二", base.Add(2*time.Minute))

	t.Run("no cursor counts all messages from others", func(t *testing.T) {
		count, err := f.svc.StudentUnreadCount(student, "c1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("cursor only counts newer messages", func(t *testing.T) {
		require.NoError(t, f.cursors.UpsertStudentCursor(student.ID, "c1", base.Add(time.Minute)))
		count, err := f.svc.StudentUnreadCount(student, "c1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("mark read zeroes the count", func(t *testing.T) {
		require.NoError(t, f.svc.MarkReadStudent(student, "c1"))
		count, err := f.svc.StudentUnreadCount(student, "c1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)

		// 重复标记保持为零
		require.NoError(t, f.svc.MarkReadStudent(student, "c1"))
		count, err = f.svc.StudentUnreadCount(student, "c1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})
}

func TestUnreadBadge(t *testing.T) {
	f := newThreadFixture()

	student := studentProfile("p-s1", "ext-s1")
	teacher := teacherProfile("p-t1", "ext-t1")
	f.profiles.add(student)
	f.purchases.add(student.ExternalUserID, "c1")
	f.purchases.add(student.ExternalUserID, "c2")

	base := time.Now().Add(-time.Hour)
	f.messages.add("c1", student.ID, teacher.ID, "一", base)
	f.messages.add("c2", student.ID, teacher.ID, "二", base)
	f.messages.add("c2", student.ID, teacher.ID, "三", base.Add(time.Minute))
	// 未购课程的消息不计入角标
	f.messages.add("c3", student.ID, teacher.ID, "无关", base)

	total, err := f.svc.UnreadBadge(student)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestListChatStudents(t *testing.T) {
	f := newThreadFixture()

	teacher := teacherProfile("p-t1", "ext-t1")
	alice := studentProfile("p-alice", "ext-alice")
	bob := studentProfile("p-bob", "ext-bob")
	carol := studentProfile("p-carol", "ext-carol")
	f.profiles.add(alice)
	f.profiles.add(bob)
	f.profiles.add(carol)

	base := time.Now().Add(-time.Hour)
	// alice：最新但已读
	f.messages.add("c1", alice.ID, alice.ID, "alice 的问题", base.Add(30*time.Minute))
	require.NoError(t, f.cursors.UpsertMentorCursor(teacher.ID, "c1", alice.ID, base.Add(31*time.Minute)))
	// bob：较旧但未读
	f.messages.add("c1", bob.ID, bob.ID, "bob 的问题", base)
	// carol：最旧且已读
	f.messages.add("c1", carol.ID, carol.ID, "carol 的问题", base.Add(-time.Minute))
	require.NoError(t, f.cursors.UpsertMentorCursor(teacher.ID, "c1", carol.ID, base))

	entries, err := f.svc.ListChatStudents(teacher, "c1")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// 有未读的排最前，其余按最新消息时间倒序
	assert.Equal(t, bob.ID, entries[0].Student.ID)
	assert.Equal(t, int64(1), entries[0].UnreadCount)
	assert.Equal(t, alice.ID, entries[1].Student.ID)
	assert.Equal(t, carol.ID, entries[2].Student.ID)

	require.NotNil(t, entries[0].LastMessage)
	assert.Equal(t, "bob 的问题", entries[0].LastMessage.Content)

	t.Run("students cannot list", func(t *testing.T) {
		_, err := f.svc.ListChatStudents(alice, "c1")
		assert.ErrorIs(t, err, util.ErrPermissionDenied)
	})
}

func TestHubOverview(t *testing.T) {
	f := newThreadFixture()

	teacher := teacherProfile("p-t1", "ext-t1")
	alice := studentProfile("p-alice", "ext-alice")
	bob := studentProfile("p-bob", "ext-bob")
	f.profiles.add(alice)
	f.profiles.add(bob)

	c1 := &model.Course{Title: "课程一"}
	c1.ID = "c1"
	c2 := &model.Course{Title: "课程二"}
	c2.ID = "c2"
	f.courses.add(c1, teacher.ExternalUserID)
	f.courses.add(c2, teacher.ID)

	base := time.Now().Add(-time.Hour)
	f.messages.add("c1", alice.ID, alice.ID, "一", base)
	f.messages.add("c1", bob.ID, bob.ID, "二", base)
	f.messages.add("c2", alice.ID, alice.ID, "三", base)
	require.NoError(t, f.cursors.UpsertMentorCursor(teacher.ID, "c2", alice.ID, base.Add(time.Minute)))

	hub, err := f.svc.HubOverview(teacher)
	require.NoError(t, err)
	require.Len(t, hub, 2)

	byCourse := make(map[string]int64)
	for _, entry := range hub {
		byCourse[entry.Course.ID] = entry.UnreadCount
	}
	assert.Equal(t, int64(2), byCourse["c1"])
	assert.Equal(t, int64(0), byCourse["c2"])

	t.Run("admin hub covers every course", func(t *testing.T) {
		admin := adminProfile("p-admin", "ext-admin")
		unrelated := &model.Course{Title: "别人的课程"}
		unrelated.ID = "c3"
		f.courses.add(unrelated)

		hub, err := f.svc.HubOverview(admin)
		require.NoError(t, err)
		assert.Len(t, hub, 3)
	})

	t.Run("students cannot open the hub", func(t *testing.T) {
		_, err := f.svc.HubOverview(alice)
		assert.ErrorIs(t, err, util.ErrPermissionDenied)
	})
}

func TestHubOverviewOrdering(t *testing.T) {
	f := newThreadFixture()

	teacher := teacherProfile("p-t1", "ext-t1")
	alice := studentProfile("p-alice", "ext-alice")
	f.profiles.add(alice)

	newer := &model.Course{Title: "消息最新但已读"}
	newer.ID = "c-newer"
	older := &model.Course{Title: "消息较旧但有未读"}
	older.ID = "c-older"
	f.courses.add(newer, teacher.ExternalUserID)
	f.courses.add(older, teacher.ExternalUserID)

	base := time.Now().Add(-time.Hour)
	// 最新消息的课程游标已推过消息时间
	f.messages.add("c-newer", alice.ID, alice.ID, "新消息", base.Add(30*time.Minute))
	require.NoError(t, f.cursors.UpsertMentorCursor(teacher.ID, "c-newer", alice.ID, base.Add(31*time.Minute)))
	// 较旧消息未读
	f.messages.add("c-older", alice.ID, alice.ID, "旧消息", base)

	hub, err := f.svc.HubOverview(teacher)
	require.NoError(t, err)
	require.Len(t, hub, 2)

	// 有未读的课程排最前，即便它的最新消息更旧
	assert.Equal(t, "c-older", hub[0].Course.ID)
	assert.Equal(t, int64(1), hub[0].UnreadCount)
	assert.Equal(t, "c-newer", hub[1].Course.ID)
	assert.Equal(t, int64(0), hub[1].UnreadCount)

	require.NotNil(t, hub[0].LastMessage)
	assert.Equal(t, "旧消息", hub[0].LastMessage.Content)

	t.Run("all read falls back to recency", func(t *testing.T) {
		require.NoError(t, f.svc.MarkReadMentor(teacher, "c-older", alice.ID))
		hub, err := f.svc.HubOverview(teacher)
		require.NoError(t, err)
		require.Len(t, hub, 2)
		assert.Equal(t, "c-newer", hub[0].Course.ID)
		assert.Equal(t, "c-older", hub[1].Course.ID)
	})
}

func TestMarkReadMentor(t *testing.T) {
	f := newThreadFixture()

	teacher := teacherProfile("p-t1", "ext-t1")
	student := studentProfile("p-s1", "ext-s1")

	t.Run("requires thread id", func(t *testing.T) {
		assert.ErrorIs(t, f.svc.MarkReadMentor(teacher, "c1", ""), util.ErrThreadRequired)
	})

	t.Run("students cannot use mentor cursor", func(t *testing.T) {
		assert.ErrorIs(t, f.svc.MarkReadMentor(student, "c1", student.ID), util.ErrPermissionDenied)
	})

	t.Run("cursor is stored", func(t *testing.T) {
		require.NoError(t, f.svc.MarkReadMentor(teacher, "c1", student.ID))
		cursors, err := f.cursors.ListMentorCursors(teacher.ID, "c1")
		require.NoError(t, err)
		require.Len(t, cursors, 1)
		assert.Equal(t, student.ID, cursors[0].StudentID)
		assert.WithinDuration(t, time.Now(), cursors[0].LastReadAt, time.Minute)
	})
}
