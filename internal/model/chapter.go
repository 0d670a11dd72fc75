package model

type ContentType string

const (
	ContentVideoMux     ContentType = "VIDEO_MUX"
	ContentVideoYoutube ContentType = "VIDEO_YOUTUBE"
	ContentText         ContentType = "TEXT"
	ContentHTMLEmbed    ContentType = "HTML_EMBED"
	ContentPDFDocument  ContentType = "PDF_DOCUMENT"
)

// CourseModule 章节的有序分组，章节可以不属于任何分组
// swagger:model CourseModule
type CourseModule struct {
	UUIDBase
	CourseID    string `gorm:"type:varchar(36);index;not null" json:"courseId"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Position    int    `gorm:"default:0" json:"position"`
	IsPublished bool   `gorm:"default:false" json:"isPublished"`

	Chapters []Chapter `gorm:"foreignKey:ModuleID" json:"chapters,omitempty"`
}

func (CourseModule) TableName() string {
	return "course_modules"
}

// Chapter 课程章节 按内容类型携带不同的载荷字段
// IsLibraryAsset 为真的章节只作为素材库条目存在，不出现在任何课程结构里
// swagger:model Chapter
type Chapter struct {
	UUIDBase
	CourseID       string      `gorm:"type:varchar(36);index;not null" json:"courseId"`
	ModuleID       *string     `gorm:"type:varchar(36);index" json:"moduleId"`
	Title          string      `gorm:"size:200;not null" json:"title"`
	Description    string      `gorm:"type:text" json:"description"`
	Position       int         `gorm:"default:0" json:"position"`
	IsPublished    bool        `gorm:"default:false;index" json:"isPublished"`
	IsFree         bool        `gorm:"default:false" json:"isFree"`
	IsLibraryAsset bool        `gorm:"default:false;index" json:"isLibraryAsset"`
	ContentType    ContentType `gorm:"type:enum('VIDEO_MUX','VIDEO_YOUTUBE','TEXT','HTML_EMBED','PDF_DOCUMENT');default:'VIDEO_MUX'" json:"contentType"`

	// 类型相关载荷
	VideoAssetID    string  `gorm:"size:191" json:"videoAssetId"`
	VideoPlaybackID string  `gorm:"size:191" json:"videoPlaybackId"`
	YoutubeVideoID  string  `gorm:"size:50" json:"youtubeVideoId"`
	TextBody        string  `gorm:"type:mediumtext" json:"textBody"`
	HTMLBody        string  `gorm:"type:mediumtext" json:"htmlBody"`
	PdfURL          string  `gorm:"size:512" json:"pdfUrl"`
	DurationSeconds float64 `gorm:"default:0" json:"durationSeconds"`
}

func (Chapter) TableName() string {
	return "chapters"
}

// HasPayload 判断该章节的类型相关必填载荷是否齐备，是发布的前置条件之一
func (ch *Chapter) HasPayload() bool {
	switch ch.ContentType {
	case ContentVideoMux:
		return ch.VideoAssetID != ""
	case ContentVideoYoutube:
		return ch.YoutubeVideoID != ""
	case ContentText:
		return ch.TextBody != ""
	case ContentHTMLEmbed:
		return ch.HTMLBody != ""
	case ContentPDFDocument:
		return ch.PdfURL != ""
	}
	return false
}

// PayloadField 返回该内容类型对应的必填字段名，用于校验错误提示
func (ch *Chapter) PayloadField() string {
	switch ch.ContentType {
	case ContentVideoMux:
		return "videoAssetId"
	case ContentVideoYoutube:
		return "youtubeVideoId"
	case ContentText:
		return "textBody"
	case ContentHTMLEmbed:
		return "htmlBody"
	case ContentPDFDocument:
		return "pdfUrl"
	}
	return "content"
}
