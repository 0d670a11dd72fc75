package controller

import (
	"lms_backend/internal/model"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UploadController struct {
	MediaService *service.MediaService
}

func NewUploadController(mediaService *service.MediaService) *UploadController {
	return &UploadController{MediaService: mediaService}
}

// @Summary 上传视频
// @Description 教学人员上传课程视频，返回地址、时长与封面帧
// @Tags 上传
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "视频文件"
// @Success 201 {object} util.Response
// @Router /api/upload/video [post]
func (c *UploadController) UploadVideo(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}
	if !model.CapabilitiesFor(profile.Role).CanEditCourses {
		util.Forbidden(ctx)
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	result, err := c.MediaService.UploadVideo(ctx.Request.Context(), file)
	if err != nil {
		handleServiceError(ctx, "upload_video", err)
		return
	}
	util.Created(ctx, result)
}

// @Summary 上传文件
// @Description 课程封面、附件、PDF 等通用上传
// @Tags 上传
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "文件"
// @Param prefix formData string false "存储目录前缀"
// @Success 201 {object} util.Response
// @Router /api/upload/file [post]
func (c *UploadController) UploadFile(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}
	if !model.CapabilitiesFor(profile.Role).CanEditCourses {
		util.Forbidden(ctx)
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	result, err := c.MediaService.UploadFile(ctx.Request.Context(), file, ctx.PostForm("prefix"))
	if err != nil {
		handleServiceError(ctx, "upload_file", err)
		return
	}
	util.Created(ctx, result)
}
