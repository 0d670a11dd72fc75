package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lms_backend/internal/model"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const threadCacheTTL = 10 * time.Minute

type MessageRepository struct {
	DB    *gorm.DB
	Redis *redis.Client
	ctx   context.Context
}

func NewMessageRepository(db *gorm.DB, rdb *redis.Client) *MessageRepository {
	return &MessageRepository{
		DB:    db,
		Redis: rdb,
		ctx:   context.Background(),
	}
}

func threadCacheKey(courseID, threadStudentID string) string {
	return fmt.Sprintf("chat:thread:%s:%s", courseID, threadStudentID)
}

// Create 写入消息并使该线程的缓存失效，下次拉取时回源数据库
func (r *MessageRepository) Create(msg *model.CourseMessage) error {
	if msg.ID == "" {
		msg.ID = model.GenerateUUID()
	}
	if err := r.DB.Create(msg).Error; err != nil {
		return err
	}
	if r.Redis != nil {
		r.Redis.Del(r.ctx, threadCacheKey(msg.CourseID, msg.ThreadStudentID))
	}
	return nil
}

// ListThread 线程全部消息按时间升序，带作者信息，5秒轮询的热点路径走缓存
func (r *MessageRepository) ListThread(courseID, threadStudentID string) ([]model.CourseMessage, error) {
	if r.Redis != nil {
		key := threadCacheKey(courseID, threadStudentID)
		cached, err := r.Redis.Get(r.ctx, key).Result()
		if err == nil && cached != "" {
			var msgs []model.CourseMessage
			if err := json.Unmarshal([]byte(cached), &msgs); err == nil {
				return msgs, nil
			}
		}
	}

	var msgs []model.CourseMessage
	err := r.DB.Preload("Author").
		Where("course_id = ? AND thread_student_id = ?", courseID, threadStudentID).
		Order("created_at ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}

	if r.Redis != nil {
		if data, err := json.Marshal(msgs); err == nil {
			r.Redis.Set(r.ctx, threadCacheKey(courseID, threadStudentID), data, threadCacheTTL)
		}
	}
	return msgs, nil
}

// DistinctThreadStudentIDs 课程内有过消息的全部线程学生ID
func (r *MessageRepository) DistinctThreadStudentIDs(courseID string) ([]string, error) {
	var ids []string
	err := r.DB.Model(&model.CourseMessage{}).
		Where("course_id = ?", courseID).
		Distinct("thread_student_id").
		Pluck("thread_student_id", &ids).Error
	return ids, err
}

// LatestInThread 线程最新一条消息，没有则返回 gorm.ErrRecordNotFound
func (r *MessageRepository) LatestInThread(courseID, threadStudentID string) (*model.CourseMessage, error) {
	var msg model.CourseMessage
	err := r.DB.Preload("Author").
		Where("course_id = ? AND thread_student_id = ?", courseID, threadStudentID).
		Order("created_at DESC").
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// CountUnread 未读数定义：他人发出且晚于游标的消息数，after 为 nil 时计全部他人消息
func (r *MessageRepository) CountUnread(courseID, threadStudentID, excludeAuthorID string, after *time.Time) (int64, error) {
	db := r.DB.Model(&model.CourseMessage{}).
		Where("course_id = ? AND thread_student_id = ?", courseID, threadStudentID).
		Where("author_id != ?", excludeAuthorID)
	if after != nil {
		db = db.Where("created_at > ?", *after)
	}

	var count int64
	err := db.Count(&count).Error
	return count, err
}
