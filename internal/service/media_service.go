package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lms_backend/internal/config"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"

	"go.uber.org/zap"
)

// MediaService 课程媒体上传：视频落盘后探测时长并生成封面帧
type MediaService struct {
	Storage *StorageService
	Cfg     *config.Config
}

func NewMediaService(storage *StorageService, cfg *config.Config) *MediaService {
	return &MediaService{Storage: storage, Cfg: cfg}
}

// VideoUploadResult 视频上传结果，Duration 直接可写入章节时长字段
type VideoUploadResult struct {
	URL          string  `json:"url"`
	ThumbnailURL string  `json:"thumbnailUrl"`
	Duration     float64 `json:"duration"`
	Size         int64   `json:"size"`
	Format       string  `json:"format"`
}

func objectName(prefix, originalName string) string {
	base := strings.ReplaceAll(originalName, " ", "-")
	return prefix + "/" + time.Now().Format("20060102150405") + "-" + base
}

// UploadVideo 视频先写到本地工作目录，探测元信息并抓封面帧后再归档到存储后端
func (s *MediaService) UploadVideo(ctx context.Context, file *multipart.FileHeader) (*VideoUploadResult, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".mp4", ".mov", ".webm", ".mkv", ".avi":
	default:
		return nil, util.NewValidationError("file")
	}

	workDir := filepath.Join(s.Cfg.Storage.LocalPath, "videos")
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, err
	}

	videoName := objectName("videos", file.Filename)
	videoPath := filepath.Join(s.Cfg.Storage.LocalPath, filepath.FromSlash(videoName))

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst, err := os.Create(videoPath)
	if err != nil {
		return nil, err
	}
	if _, err := dst.ReadFrom(src); err != nil {
		dst.Close()
		return nil, err
	}
	dst.Close()

	videoURL, err := s.Storage.UploadFile(ctx, videoName, videoPath, file.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	result := &VideoUploadResult{
		URL:    videoURL,
		Size:   file.Size,
		Format: strings.TrimPrefix(ext, "."),
	}

	if info, err := util.GetVideoInfo(videoPath); err == nil {
		result.Duration = info.Duration
	} else {
		logger.Log.Warn("Video probe failed", zap.String("file", file.Filename), zap.Error(err))
	}

	thumbnailName := strings.TrimSuffix(videoName, ext) + ".jpg"
	thumbnailName = "thumbnails/" + filepath.Base(thumbnailName)
	thumbnailPath := filepath.Join(s.Cfg.Storage.LocalPath, "thumbnails", filepath.Base(thumbnailName))
	defer os.Remove(thumbnailPath)

	if err := util.GenerateThumbnail(videoPath, thumbnailPath, "3"); err != nil {
		logger.Log.Warn("Thumbnail generation failed", zap.Error(err))
	} else {
		thumbnailURL, err := s.Storage.UploadFile(ctx, thumbnailName, thumbnailPath, "image/jpeg")
		if err == nil {
			result.ThumbnailURL = thumbnailURL
		}
	}

	return result, nil
}

// FileUploadResult 通用文件上传结果
type FileUploadResult struct {
	URL              string `json:"url"`
	OriginalFilename string `json:"originalFilename"`
	Size             int64  `json:"size"`
}

// UploadFile 附件、封面、PDF 等通用上传
func (s *MediaService) UploadFile(ctx context.Context, file *multipart.FileHeader, prefix string) (*FileUploadResult, error) {
	if prefix == "" {
		prefix = "files"
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	name := objectName(prefix, file.Filename)
	url, err := s.Storage.Upload(ctx, name, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", file.Filename, err)
	}

	return &FileUploadResult{
		URL:              url,
		OriginalFilename: file.Filename,
		Size:             file.Size,
	}, nil
}
