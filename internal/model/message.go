package model

import (
	"time"
)

// CourseMessage 导师答疑消息 每门课程按学生分线程，消息只增不改
// ThreadStudentID 恒为线程归属学生的档案ID，讲师回复也带该值
// swagger:model CourseMessage
type CourseMessage struct {
	UUIDBase
	CourseID        string  `gorm:"type:varchar(36);index:idx_course_thread;not null" json:"courseId"`
	ThreadStudentID string  `gorm:"type:varchar(36);index:idx_course_thread;not null" json:"threadStudentId"`
	AuthorID        string  `gorm:"type:varchar(36);index;not null" json:"authorId"`
	Author          Profile `gorm:"foreignKey:AuthorID" json:"author"`
	Content         string  `gorm:"type:text;not null" json:"content"`
}

func (CourseMessage) TableName() string {
	return "course_messages"
}

// StudentLastRead 学生查看自己线程的最后时间游标
type StudentLastRead struct {
	BaseModel
	StudentID  string    `gorm:"type:varchar(36);uniqueIndex:idx_student_course;not null" json:"studentId"`
	CourseID   string    `gorm:"type:varchar(36);uniqueIndex:idx_student_course;not null" json:"courseId"`
	LastReadAt time.Time `gorm:"not null" json:"lastReadAt"`
}

func (StudentLastRead) TableName() string {
	return "student_last_reads"
}

// MentorLastRead 讲师查看某学生线程的最后时间游标
// 不同讲师对同一线程各自维护独立游标
type MentorLastRead struct {
	BaseModel
	InstructorID string    `gorm:"type:varchar(36);uniqueIndex:idx_mentor_cursor;not null" json:"instructorId"`
	CourseID     string    `gorm:"type:varchar(36);uniqueIndex:idx_mentor_cursor;not null" json:"courseId"`
	StudentID    string    `gorm:"type:varchar(36);uniqueIndex:idx_mentor_cursor;not null" json:"studentId"`
	LastReadAt   time.Time `gorm:"not null" json:"lastReadAt"`
}

func (MentorLastRead) TableName() string {
	return "mentor_last_reads"
}
