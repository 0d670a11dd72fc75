package model

// Course 课程主体 发布前需经管理员审批
// swagger:model Course
type Course struct {
	UUIDBase
	OwnerUserID     string    `gorm:"size:191;index;not null" json:"ownerUserId"` // 身份提供方的用户ID
	Title           string    `gorm:"size:200;not null" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	ImageURL        string    `gorm:"size:255" json:"imageUrl"`
	Price           float64   `gorm:"default:0" json:"price"`
	CategoryID      *string   `gorm:"type:varchar(36);index" json:"categoryId"`
	Category        *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	IsPublished     bool      `gorm:"default:false;index" json:"isPublished"`
	PendingApproval bool      `gorm:"default:false;index" json:"pendingApproval"`

	Chapters    []Chapter          `gorm:"foreignKey:CourseID" json:"chapters,omitempty"`
	Modules     []CourseModule     `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
	Instructors []CourseInstructor `gorm:"foreignKey:CourseID" json:"instructors,omitempty"`
	Attachments []Attachment       `gorm:"foreignKey:CourseID" json:"attachments,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Category
type Category struct {
	UUIDBase
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

func (Category) TableName() string {
	return "categories"
}

// CourseInstructor 课程与受邀讲师的多对多关系
type CourseInstructor struct {
	UUIDBase
	CourseID  string  `gorm:"type:varchar(36);uniqueIndex:idx_course_instructor;not null" json:"courseId"`
	ProfileID string  `gorm:"type:varchar(36);uniqueIndex:idx_course_instructor;not null" json:"profileId"`
	Profile   Profile `gorm:"foreignKey:ProfileID" json:"profile"`
}

func (CourseInstructor) TableName() string {
	return "course_instructors"
}

// Attachment 课程附件，已购学员可下载
type Attachment struct {
	UUIDBase
	CourseID         string `gorm:"type:varchar(36);index;not null" json:"courseId"`
	Name             string `gorm:"size:255;not null" json:"name"`
	URL              string `gorm:"size:512;not null" json:"url"`
	OriginalFilename string `gorm:"size:255" json:"originalFilename"`
}

func (Attachment) TableName() string {
	return "attachments"
}
