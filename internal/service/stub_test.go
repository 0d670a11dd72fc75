package service

import (
	"sort"
	"strings"
	"time"

	"lms_backend/internal/model"

	"gorm.io/gorm"
)

// 内存桩实现 interfaces.go 里的窄接口，测试不依赖数据库

type stubCourseStore struct {
	courses map[string]*model.Course
	// courseID -> 允许编辑的档案ID或外部用户ID集合
	editors map[string]map[string]bool
}

func newStubCourseStore() *stubCourseStore {
	return &stubCourseStore{
		courses: make(map[string]*model.Course),
		editors: make(map[string]map[string]bool),
	}
}

func (s *stubCourseStore) add(course *model.Course, editorIDs ...string) {
	s.courses[course.ID] = course
	set := make(map[string]bool)
	for _, id := range editorIDs {
		set[id] = true
	}
	s.editors[course.ID] = set
}

func (s *stubCourseStore) GetByID(id string) (*model.Course, error) {
	course, ok := s.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return course, nil
}

func (s *stubCourseStore) GetWithStructure(id string) (*model.Course, error) {
	return s.GetByID(id)
}

func (s *stubCourseStore) Create(course *model.Course) error {
	if course.ID == "" {
		course.ID = model.GenerateUUID()
	}
	s.courses[course.ID] = course
	return nil
}

func (s *stubCourseStore) Update(course *model.Course) error {
	s.courses[course.ID] = course
	return nil
}

func (s *stubCourseStore) UpdateFields(id string, fields map[string]interface{}) error {
	course, ok := s.courses[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["is_published"]; ok {
		course.IsPublished = v.(bool)
	}
	if v, ok := fields["pending_approval"]; ok {
		course.PendingApproval = v.(bool)
	}
	return nil
}

func (s *stubCourseStore) Delete(id string) error {
	delete(s.courses, id)
	return nil
}

func (s *stubCourseStore) IsOwnerOrInstructor(courseID, profileID, externalUserID string) (bool, error) {
	set := s.editors[courseID]
	return set[profileID] || set[externalUserID], nil
}

func (s *stubCourseStore) AddInstructor(courseID, profileID string) error {
	if s.editors[courseID] == nil {
		s.editors[courseID] = make(map[string]bool)
	}
	s.editors[courseID][profileID] = true
	return nil
}

func (s *stubCourseStore) RemoveInstructor(courseID, profileID string) error {
	delete(s.editors[courseID], profileID)
	return nil
}

func (s *stubCourseStore) HasInstructor(courseID, profileID string) (bool, error) {
	return s.editors[courseID][profileID], nil
}

func (s *stubCourseStore) ListInstructors(courseID string) ([]model.CourseInstructor, error) {
	return nil, nil
}

func (s *stubCourseStore) ListForOwnerOrInstructor(profileID, externalUserID string) ([]model.Course, error) {
	var out []model.Course
	for id, course := range s.courses {
		if s.editors[id][profileID] || s.editors[id][externalUserID] {
			out = append(out, *course)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubCourseStore) ListPublished(categoryID, title string) ([]model.Course, error) {
	var out []model.Course
	for _, course := range s.courses {
		if course.IsPublished {
			out = append(out, *course)
		}
	}
	return out, nil
}

func (s *stubCourseStore) ListPendingApproval() ([]model.Course, error) {
	var out []model.Course
	for _, course := range s.courses {
		if course.PendingApproval {
			out = append(out, *course)
		}
	}
	return out, nil
}

func (s *stubCourseStore) ListAll() ([]model.Course, error) {
	var out []model.Course
	for _, course := range s.courses {
		out = append(out, *course)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubCourseStore) ListPurchasedByUser(userID string) ([]model.Course, error) {
	return nil, nil
}

type stubChapterStore struct {
	chapters map[string]*model.Chapter
}

func newStubChapterStore() *stubChapterStore {
	return &stubChapterStore{chapters: make(map[string]*model.Chapter)}
}

func (s *stubChapterStore) add(ch *model.Chapter) {
	if ch.ID == "" {
		ch.ID = model.GenerateUUID()
	}
	s.chapters[ch.ID] = ch
}

func (s *stubChapterStore) GetByID(id string) (*model.Chapter, error) {
	ch, ok := s.chapters[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return ch, nil
}

func (s *stubChapterStore) Create(ch *model.Chapter) error {
	s.add(ch)
	return nil
}

func (s *stubChapterStore) Update(ch *model.Chapter) error {
	s.chapters[ch.ID] = ch
	return nil
}

func (s *stubChapterStore) UpdateFields(id string, fields map[string]interface{}) error {
	ch, ok := s.chapters[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["is_published"]; ok {
		ch.IsPublished = v.(bool)
	}
	if v, ok := fields["title"]; ok {
		ch.Title = v.(string)
	}
	if v, ok := fields["is_free"]; ok {
		ch.IsFree = v.(bool)
	}
	if v, ok := fields["text_body"]; ok {
		ch.TextBody = v.(string)
	}
	if v, ok := fields["content_type"]; ok {
		ch.ContentType = model.ContentType(v.(string))
	}
	return nil
}

func (s *stubChapterStore) Delete(id string) error {
	delete(s.chapters, id)
	return nil
}

func (s *stubChapterStore) CountPublished(courseID string) (int64, error) {
	var n int64
	for _, ch := range s.chapters {
		if ch.CourseID == courseID && ch.IsPublished && !ch.IsLibraryAsset {
			n++
		}
	}
	return n, nil
}

func (s *stubChapterStore) CountPublishedInModule(moduleID string) (int64, error) {
	var n int64
	for _, ch := range s.chapters {
		if ch.ModuleID != nil && *ch.ModuleID == moduleID && ch.IsPublished {
			n++
		}
	}
	return n, nil
}

func (s *stubChapterStore) ListPublishedByCourse(courseID string) ([]model.Chapter, error) {
	var out []model.Chapter
	for _, ch := range s.chapters {
		if ch.CourseID == courseID && ch.IsPublished && !ch.IsLibraryAsset {
			out = append(out, *ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (s *stubChapterStore) ListPublishedByCourses(courseIDs []string) ([]model.Chapter, error) {
	var out []model.Chapter
	for _, id := range courseIDs {
		chapters, _ := s.ListPublishedByCourse(id)
		out = append(out, chapters...)
	}
	return out, nil
}

func (s *stubChapterStore) MaxPosition(courseID string) (int, error) {
	max := 0
	for _, ch := range s.chapters {
		if ch.CourseID == courseID && ch.Position > max {
			max = ch.Position
		}
	}
	return max, nil
}

func (s *stubChapterStore) Reorder(courseID string, orderedIDs []string) error {
	for i, id := range orderedIDs {
		if ch, ok := s.chapters[id]; ok {
			ch.Position = i + 1
		}
	}
	return nil
}

func (s *stubChapterStore) NextPublished(courseID string, position int) (*model.Chapter, error) {
	var next *model.Chapter
	for _, ch := range s.chapters {
		if ch.CourseID != courseID || !ch.IsPublished || ch.Position <= position {
			continue
		}
		if next == nil || ch.Position < next.Position {
			next = ch
		}
	}
	if next == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return next, nil
}

func (s *stubChapterStore) ListLibraryAssets(courseID string) ([]model.Chapter, error) {
	var out []model.Chapter
	for _, ch := range s.chapters {
		if ch.CourseID == courseID && ch.IsLibraryAsset {
			out = append(out, *ch)
		}
	}
	return out, nil
}

type stubModuleStore struct {
	modules map[string]*model.CourseModule
}

func newStubModuleStore() *stubModuleStore {
	return &stubModuleStore{modules: make(map[string]*model.CourseModule)}
}

func (s *stubModuleStore) GetByID(id string) (*model.CourseModule, error) {
	mod, ok := s.modules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return mod, nil
}

func (s *stubModuleStore) Create(mod *model.CourseModule) error {
	if mod.ID == "" {
		mod.ID = model.GenerateUUID()
	}
	s.modules[mod.ID] = mod
	return nil
}

func (s *stubModuleStore) Update(mod *model.CourseModule) error {
	s.modules[mod.ID] = mod
	return nil
}

func (s *stubModuleStore) Delete(id string) error {
	delete(s.modules, id)
	return nil
}

func (s *stubModuleStore) ListByCourse(courseID string) ([]model.CourseModule, error) {
	var out []model.CourseModule
	for _, mod := range s.modules {
		if mod.CourseID == courseID {
			out = append(out, *mod)
		}
	}
	return out, nil
}

func (s *stubModuleStore) MaxPosition(courseID string) (int, error) {
	max := 0
	for _, mod := range s.modules {
		if mod.CourseID == courseID && mod.Position > max {
			max = mod.Position
		}
	}
	return max, nil
}

func (s *stubModuleStore) Reorder(courseID string, orderedIDs []string) error {
	for i, id := range orderedIDs {
		if mod, ok := s.modules[id]; ok {
			mod.Position = i + 1
		}
	}
	return nil
}

type stubPurchaseStore struct {
	// userID -> courseID 集合
	purchases map[string]map[string]bool
}

func newStubPurchaseStore() *stubPurchaseStore {
	return &stubPurchaseStore{purchases: make(map[string]map[string]bool)}
}

func (s *stubPurchaseStore) add(userID, courseID string) {
	if s.purchases[userID] == nil {
		s.purchases[userID] = make(map[string]bool)
	}
	s.purchases[userID][courseID] = true
}

func (s *stubPurchaseStore) Exists(userID, courseID string) (bool, error) {
	return s.purchases[userID][courseID], nil
}

func (s *stubPurchaseStore) Create(purchase *model.Purchase) error {
	s.add(purchase.UserID, purchase.CourseID)
	return nil
}

func (s *stubPurchaseStore) ListCourseIDsForUser(userID string) ([]string, error) {
	var out []string
	for courseID := range s.purchases[userID] {
		out = append(out, courseID)
	}
	sort.Strings(out)
	return out, nil
}

func (s *stubPurchaseStore) ListUserIDsForCourse(courseID string) ([]string, error) {
	var out []string
	for userID, set := range s.purchases {
		if set[courseID] {
			out = append(out, userID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *stubPurchaseStore) CountForCourse(courseID string) (int64, error) {
	ids, _ := s.ListUserIDsForCourse(courseID)
	return int64(len(ids)), nil
}

type stubProgressStore struct {
	// userID -> chapterID -> 是否完成
	rows map[string]map[string]bool
}

func newStubProgressStore() *stubProgressStore {
	return &stubProgressStore{rows: make(map[string]map[string]bool)}
}

func (s *stubProgressStore) Upsert(progress *model.UserProgress) error {
	if s.rows[progress.UserID] == nil {
		s.rows[progress.UserID] = make(map[string]bool)
	}
	s.rows[progress.UserID][progress.ChapterID] = progress.IsCompleted
	return nil
}

func (s *stubProgressStore) Get(userID, chapterID string) (*model.UserProgress, error) {
	completed, ok := s.rows[userID][chapterID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.UserProgress{UserID: userID, ChapterID: chapterID, IsCompleted: completed}, nil
}

func (s *stubProgressStore) CountCompletedIn(userID string, chapterIDs []string) (int64, error) {
	rows, _ := s.ListCompletedIn(userID, chapterIDs)
	return int64(len(rows)), nil
}

func (s *stubProgressStore) ListCompletedIn(userID string, chapterIDs []string) ([]model.UserProgress, error) {
	var out []model.UserProgress
	for _, id := range chapterIDs {
		if s.rows[userID][id] {
			out = append(out, model.UserProgress{UserID: userID, ChapterID: id, IsCompleted: true})
		}
	}
	return out, nil
}

func (s *stubProgressStore) ListCompletedChapterIDs(userID, courseID string) ([]string, error) {
	return nil, nil
}

type stubMessageStore struct {
	messages []model.CourseMessage
}

func (s *stubMessageStore) add(courseID, threadStudentID, authorID, content string, createdAt time.Time) {
	msg := model.CourseMessage{
		CourseID:        courseID,
		ThreadStudentID: threadStudentID,
		AuthorID:        authorID,
		Content:         content,
	}
	msg.ID = model.GenerateUUID()
	msg.CreatedAt = createdAt
	s.messages = append(s.messages, msg)
}

func (s *stubMessageStore) Create(msg *model.CourseMessage) error {
	if msg.ID == "" {
		msg.ID = model.GenerateUUID()
	}
	msg.CreatedAt = time.Now()
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *stubMessageStore) ListThread(courseID, threadStudentID string) ([]model.CourseMessage, error) {
	var out []model.CourseMessage
	for _, msg := range s.messages {
		if msg.CourseID == courseID && msg.ThreadStudentID == threadStudentID {
			out = append(out, msg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *stubMessageStore) DistinctThreadStudentIDs(courseID string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, msg := range s.messages {
		if msg.CourseID == courseID && !seen[msg.ThreadStudentID] {
			seen[msg.ThreadStudentID] = true
			out = append(out, msg.ThreadStudentID)
		}
	}
	return out, nil
}

func (s *stubMessageStore) LatestInThread(courseID, threadStudentID string) (*model.CourseMessage, error) {
	thread, _ := s.ListThread(courseID, threadStudentID)
	if len(thread) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	latest := thread[len(thread)-1]
	return &latest, nil
}

func (s *stubMessageStore) CountUnread(courseID, threadStudentID, excludeAuthorID string, after *time.Time) (int64, error) {
	var n int64
	for _, msg := range s.messages {
		if msg.CourseID != courseID || msg.ThreadStudentID != threadStudentID {
			continue
		}
		if msg.AuthorID == excludeAuthorID {
			continue
		}
		if after != nil && !msg.CreatedAt.After(*after) {
			continue
		}
		n++
	}
	return n, nil
}

type cursorKey struct {
	a, b, c string
}

type stubCursorStore struct {
	student map[cursorKey]time.Time
	mentor  map[cursorKey]time.Time
}

func newStubCursorStore() *stubCursorStore {
	return &stubCursorStore{
		student: make(map[cursorKey]time.Time),
		mentor:  make(map[cursorKey]time.Time),
	}
}

func (s *stubCursorStore) GetStudentCursor(studentID, courseID string) (*model.StudentLastRead, error) {
	t, ok := s.student[cursorKey{studentID, courseID, ""}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.StudentLastRead{StudentID: studentID, CourseID: courseID, LastReadAt: t}, nil
}

func (s *stubCursorStore) UpsertStudentCursor(studentID, courseID string, readAt time.Time) error {
	s.student[cursorKey{studentID, courseID, ""}] = readAt
	return nil
}

func (s *stubCursorStore) UpsertMentorCursor(instructorID, courseID, studentID string, readAt time.Time) error {
	s.mentor[cursorKey{instructorID, courseID, studentID}] = readAt
	return nil
}

func (s *stubCursorStore) ListMentorCursors(instructorID, courseID string) ([]model.MentorLastRead, error) {
	var out []model.MentorLastRead
	for key, t := range s.mentor {
		if key.a == instructorID && key.b == courseID {
			out = append(out, model.MentorLastRead{InstructorID: key.a, CourseID: key.b, StudentID: key.c, LastReadAt: t})
		}
	}
	return out, nil
}

type stubProfileStore struct {
	profiles map[string]*model.Profile
}

func newStubProfileStore() *stubProfileStore {
	return &stubProfileStore{profiles: make(map[string]*model.Profile)}
}

func (s *stubProfileStore) add(p *model.Profile) {
	s.profiles[p.ID] = p
}

func (s *stubProfileStore) GetByID(id string) (*model.Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (s *stubProfileStore) GetByExternalUserID(externalUserID string) (*model.Profile, error) {
	for _, p := range s.profiles {
		if p.ExternalUserID == externalUserID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProfileStore) Create(p *model.Profile) error {
	if p.ID == "" {
		p.ID = model.GenerateUUID()
	}
	s.profiles[p.ID] = p
	return nil
}

func (s *stubProfileStore) Update(p *model.Profile) error {
	s.profiles[p.ID] = p
	return nil
}

func (s *stubProfileStore) UpdateRole(id string, role model.Role) error {
	p, ok := s.profiles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Role = role
	return nil
}

func (s *stubProfileStore) Search(query, excludeID string, limit, offset int) ([]model.Profile, int64, error) {
	var out []model.Profile
	for _, p := range s.profiles {
		if p.ID == excludeID {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) &&
			!strings.Contains(strings.ToLower(p.Email), strings.ToLower(query)) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (s *stubProfileStore) ListByIDs(ids []string) ([]model.Profile, error) {
	var out []model.Profile
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

type stubCategoryStore struct {
	categories map[string]*model.Category
}

func newStubCategoryStore() *stubCategoryStore {
	return &stubCategoryStore{categories: make(map[string]*model.Category)}
}

func (s *stubCategoryStore) List() ([]model.Category, error) {
	var out []model.Category
	for _, c := range s.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *stubCategoryStore) GetByID(id string) (*model.Category, error) {
	c, ok := s.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (s *stubCategoryStore) Create(category *model.Category) error {
	if category.ID == "" {
		category.ID = model.GenerateUUID()
	}
	s.categories[category.ID] = category
	return nil
}

type stubAttachmentStore struct {
	attachments map[string]*model.Attachment
}

func newStubAttachmentStore() *stubAttachmentStore {
	return &stubAttachmentStore{attachments: make(map[string]*model.Attachment)}
}

func (s *stubAttachmentStore) GetByID(id string) (*model.Attachment, error) {
	a, ok := s.attachments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (s *stubAttachmentStore) ListByCourse(courseID string) ([]model.Attachment, error) {
	var out []model.Attachment
	for _, a := range s.attachments {
		if a.CourseID == courseID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *stubAttachmentStore) Create(attachment *model.Attachment) error {
	if attachment.ID == "" {
		attachment.ID = model.GenerateUUID()
	}
	s.attachments[attachment.ID] = attachment
	return nil
}

func (s *stubAttachmentStore) Delete(id string) error {
	delete(s.attachments, id)
	return nil
}

type stubLeadStore struct {
	leads map[string]*model.Lead
}

func newStubLeadStore() *stubLeadStore {
	return &stubLeadStore{leads: make(map[string]*model.Lead)}
}

func (s *stubLeadStore) GetByID(id string) (*model.Lead, error) {
	lead, ok := s.leads[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return lead, nil
}

func (s *stubLeadStore) Create(lead *model.Lead) error {
	if lead.ID == "" {
		lead.ID = model.GenerateUUID()
	}
	s.leads[lead.ID] = lead
	return nil
}

func (s *stubLeadStore) Update(lead *model.Lead) error {
	s.leads[lead.ID] = lead
	return nil
}

func (s *stubLeadStore) Delete(id string) error {
	delete(s.leads, id)
	return nil
}

func (s *stubLeadStore) List(ownerID string, status model.LeadStatus, query string, limit, offset int) ([]model.Lead, int64, error) {
	var out []model.Lead
	for _, lead := range s.leads {
		if ownerID != "" && lead.OwnerID != ownerID {
			continue
		}
		if status != "" && lead.Status != status {
			continue
		}
		out = append(out, *lead)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// stubGateway 固定返回预设订单号
type stubGateway struct {
	orderID string
	// 最近一次下单参数
	lastAmount   int64
	lastCurrency string
	lastReceipt  string
}

func (g *stubGateway) CreateOrder(amount int64, currency, receipt string) (string, error) {
	g.lastAmount = amount
	g.lastCurrency = currency
	g.lastReceipt = receipt
	return g.orderID, nil
}

func studentProfile(id, externalID string) *model.Profile {
	p := &model.Profile{ExternalUserID: externalID, Name: "Student " + id, Role: model.RoleStudent}
	p.ID = id
	return p
}

func teacherProfile(id, externalID string) *model.Profile {
	p := &model.Profile{ExternalUserID: externalID, Name: "Teacher " + id, Role: model.RoleTeacher}
	p.ID = id
	return p
}

func adminProfile(id, externalID string) *model.Profile {
	p := &model.Profile{ExternalUserID: externalID, Name: "Admin " + id, Role: model.RoleAdmin}
	p.ID = id
	return p
}
