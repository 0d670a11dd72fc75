package repository

import (
	"time"

	"lms_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReadCursorRepository struct {
	DB *gorm.DB
}

func NewReadCursorRepository(db *gorm.DB) *ReadCursorRepository {
	return &ReadCursorRepository{DB: db}
}

func (r *ReadCursorRepository) GetStudentCursor(studentID, courseID string) (*model.StudentLastRead, error) {
	var cursor model.StudentLastRead
	err := r.DB.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&cursor).Error
	if err != nil {
		return nil, err
	}
	return &cursor, nil
}

// UpsertStudentCursor 以最后一次写入为准覆盖游标
func (r *ReadCursorRepository) UpsertStudentCursor(studentID, courseID string, readAt time.Time) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_read_at", "updated_at"}),
	}).Create(&model.StudentLastRead{
		StudentID:  studentID,
		CourseID:   courseID,
		LastReadAt: readAt,
	}).Error
}

func (r *ReadCursorRepository) UpsertMentorCursor(instructorID, courseID, studentID string, readAt time.Time) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "instructor_id"}, {Name: "course_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_read_at", "updated_at"}),
	}).Create(&model.MentorLastRead{
		InstructorID: instructorID,
		CourseID:     courseID,
		StudentID:    studentID,
		LastReadAt:   readAt,
	}).Error
}

// ListMentorCursors 某讲师在一门课下的全部学生线程游标，连线页一次取齐
func (r *ReadCursorRepository) ListMentorCursors(instructorID, courseID string) ([]model.MentorLastRead, error) {
	var cursors []model.MentorLastRead
	err := r.DB.Where("instructor_id = ? AND course_id = ?", instructorID, courseID).
		Find(&cursors).Error
	return cursors, err
}
