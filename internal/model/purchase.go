package model

// Purchase (用户, 课程) 唯一对，存在即代表付费章节的访问授权
// swagger:model Purchase
type Purchase struct {
	UUIDBase
	UserID   string `gorm:"size:191;uniqueIndex:idx_user_course;not null" json:"userId"` // 身份提供方的用户ID
	CourseID string `gorm:"type:varchar(36);uniqueIndex:idx_user_course;index;not null" json:"courseId"`
}

func (Purchase) TableName() string {
	return "purchases"
}

// UserProgress (用户, 章节) 唯一对，进度百分比的唯一数据来源
// swagger:model UserProgress
type UserProgress struct {
	UUIDBase
	UserID      string `gorm:"size:191;uniqueIndex:idx_user_chapter;not null" json:"userId"`
	ChapterID   string `gorm:"type:varchar(36);uniqueIndex:idx_user_chapter;index;not null" json:"chapterId"`
	IsCompleted bool   `gorm:"default:false" json:"isCompleted"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}
