package controller

import (
	"lms_backend/internal/model"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ChapterController struct {
	ChapterService  *service.ChapterService
	AccessService   *service.AccessService
	ProgressService *service.ProgressService
}

func NewChapterController(chapterService *service.ChapterService, accessService *service.AccessService, progressService *service.ProgressService) *ChapterController {
	return &ChapterController{
		ChapterService:  chapterService,
		AccessService:   accessService,
		ProgressService: progressService,
	}
}

type createChapterRequest struct {
	Title    string  `json:"title" binding:"required"`
	ModuleID *string `json:"moduleId"`
}

// @Summary 创建章节
// @Description 新章节追加到课程末尾，初始为未发布草稿
// @Tags 章节
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Param request body createChapterRequest true "章节标题"
// @Success 201 {object} util.Response
// @Router /api/courses/{id}/chapters [post]
func (c *ChapterController) Create(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	var req createChapterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	chapter, err := c.ChapterService.Create(profile, ctx.Param("id"), req.Title, req.ModuleID)
	if err != nil {
		handleServiceError(ctx, "chapter_create", err)
		return
	}
	util.Created(ctx, chapter)
}

// @Summary 章节内容
// @Description 学员视角的章节内容，未解锁时不返回载荷
// @Tags 章节
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param chapterId path string true "章节ID"
// @Success 200 {object} util.Response
// @Router /api/chapters/{chapterId} [get]
func (c *ChapterController) GetView(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.ChapterService.GetView(profile, ctx.Param("chapterId"))
	if err != nil {
		handleServiceError(ctx, "chapter_view", err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 更新章节
// @Tags 章节
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param chapterId path string true "章节ID"
// @Param request body service.ChapterUpdate true "待更新字段"
// @Success 200 {object} util.Response
// @Router /api/chapters/{chapterId} [patch]
func (c *ChapterController) Update(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ChapterUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	chapter, err := c.ChapterService.Update(profile, ctx.Param("chapterId"), req)
	if err != nil {
		handleServiceError(ctx, "chapter_update", err)
		return
	}
	util.Success(ctx, chapter)
}

// @Summary 删除章节
// @Description 删除后课程若再无已发布章节则自动下线
// @Tags 章节
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param chapterId path string true "章节ID"
// @Success 200 {object} util.Response
// @Router /api/chapters/{chapterId} [delete]
func (c *ChapterController) Delete(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.ChapterService.Delete(profile, ctx.Param("chapterId")); err != nil {
		handleServiceError(ctx, "chapter_delete", err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 发布章节
// @Description 标题、描述与内容载荷齐备才允许发布
// @Tags 章节
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param chapterId path string true "章节ID"
// @Success 200 {object} util.Response
// @Router /api/chapters/{chapterId}/publish [put]
func (c *ChapterController) Publish(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.AccessService.PublishChapter(profile, ctx.Param("chapterId")); err != nil {
		handleServiceError(ctx, "chapter_publish", err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 下线章节
// @Description 下线最后一个已发布章节会连带课程下线
// @Tags 章节
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param chapterId path string true "章节ID"
// @Success 200 {object} util.Response
// @Router /api/chapters/{chapterId}/unpublish [put]
func (c *ChapterController) Unpublish(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.AccessService.UnpublishChapter(profile, ctx.Param("chapterId")); err != nil {
		handleServiceError(ctx, "chapter_unpublish", err)
		return
	}
	util.Success(ctx, nil)
}

type reorderRequest struct {
	OrderedIDs []string `json:"orderedIds" binding:"required"`
}

// @Summary 章节重排序
// @Tags 章节
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Param request body reorderRequest true "章节ID顺序"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/chapters/reorder [put]
func (c *ChapterController) Reorder(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	var req reorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.ChapterService.Reorder(profile, ctx.Param("id"), req.OrderedIDs); err != nil {
		handleServiceError(ctx, "chapter_reorder", err)
		return
	}
	util.Success(ctx, nil)
}

type progressRequest struct {
	IsCompleted *bool `json:"isCompleted" binding:"required"`
}

// @Summary 更新章节进度
// @Description 写入当前用户对章节的完成状态
// @Tags 进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param chapterId path string true "章节ID"
// @Param request body progressRequest true "完成状态"
// @Success 200 {object} util.Response
// @Router /api/chapters/{chapterId}/progress [put]
func (c *ChapterController) SetProgress(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	var req progressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.ProgressService.SetCompletion(profile, ctx.Param("chapterId"), *req.IsCompleted); err != nil {
		handleServiceError(ctx, "progress_set", err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 课程进度
// @Description 当前用户在一门课程的进度汇总
// @Tags 进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/progress [get]
func (c *ChapterController) GetProgress(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.ProgressService.GetProgress(profile.ExternalUserID, ctx.Param("id"))
	if err != nil {
		handleServiceError(ctx, "progress_get", err)
		return
	}
	util.Success(ctx, progress)
}

type createModuleRequest struct {
	Title string `json:"title" binding:"required"`
}

// @Summary 创建模块
// @Tags 模块
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Param request body createModuleRequest true "模块标题"
// @Success 201 {object} util.Response
// @Router /api/courses/{id}/modules [post]
func (c *ChapterController) CreateModule(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	var req createModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	mod, err := c.ChapterService.CreateModule(profile, ctx.Param("id"), req.Title)
	if err != nil {
		handleServiceError(ctx, "module_create", err)
		return
	}
	util.Created(ctx, mod)
}

// @Summary 更新模块
// @Tags 模块
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param moduleId path string true "模块ID"
// @Param request body service.ModuleUpdate true "待更新字段"
// @Success 200 {object} util.Response
// @Router /api/modules/{moduleId} [patch]
func (c *ChapterController) UpdateModule(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ModuleUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	mod, err := c.ChapterService.UpdateModule(profile, ctx.Param("moduleId"), req)
	if err != nil {
		handleServiceError(ctx, "module_update", err)
		return
	}
	util.Success(ctx, mod)
}

// @Summary 删除模块
// @Description 模块下的章节保留并回到未分组状态
// @Tags 模块
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param moduleId path string true "模块ID"
// @Success 200 {object} util.Response
// @Router /api/modules/{moduleId} [delete]
func (c *ChapterController) DeleteModule(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.ChapterService.DeleteModule(profile, ctx.Param("moduleId")); err != nil {
		handleServiceError(ctx, "module_delete", err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 发布模块
// @Description 需要标题且其下至少一个已发布章节
// @Tags 模块
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param moduleId path string true "模块ID"
// @Success 200 {object} util.Response
// @Router /api/modules/{moduleId}/publish [put]
func (c *ChapterController) PublishModule(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.AccessService.PublishModule(profile, ctx.Param("moduleId")); err != nil {
		handleServiceError(ctx, "module_publish", err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 下线模块
// @Tags 模块
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param moduleId path string true "模块ID"
// @Success 200 {object} util.Response
// @Router /api/modules/{moduleId}/unpublish [put]
func (c *ChapterController) UnpublishModule(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.AccessService.UnpublishModule(profile, ctx.Param("moduleId")); err != nil {
		handleServiceError(ctx, "module_unpublish", err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 模块重排序
// @Tags 模块
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Param request body reorderRequest true "模块ID顺序"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/modules/reorder [put]
func (c *ChapterController) ReorderModules(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	var req reorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.ChapterService.ReorderModules(profile, ctx.Param("id"), req.OrderedIDs); err != nil {
		handleServiceError(ctx, "module_reorder", err)
		return
	}
	util.Success(ctx, nil)
}

type createAssetRequest struct {
	Title       string `json:"title" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

// @Summary 创建素材库条目
// @Description 素材挂在课程下但不进入课程结构
// @Tags 素材库
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Param request body createAssetRequest true "素材信息"
// @Success 201 {object} util.Response
// @Router /api/courses/{id}/library [post]
func (c *ChapterController) CreateLibraryAsset(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	var req createAssetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	asset, err := c.ChapterService.CreateLibraryAsset(profile, ctx.Param("id"), req.Title, model.ContentType(req.ContentType))
	if err != nil {
		handleServiceError(ctx, "library_create", err)
		return
	}
	util.Created(ctx, asset)
}

// @Summary 素材库列表
// @Tags 素材库
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId query string false "课程ID"
// @Success 200 {object} util.Response
// @Router /api/library [get]
func (c *ChapterController) ListLibraryAssets(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	assets, err := c.ChapterService.ListLibraryAssets(profile, ctx.Query("courseId"))
	if err != nil {
		handleServiceError(ctx, "library_list", err)
		return
	}
	util.Success(ctx, assets)
}

type importAssetRequest struct {
	AssetID  string  `json:"assetId" binding:"required"`
	ModuleID *string `json:"moduleId"`
}

// @Summary 导入素材为章节
// @Description 把素材复制为目标课程末尾的未发布章节
// @Tags 素材库
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "目标课程ID"
// @Param request body importAssetRequest true "素材ID"
// @Success 201 {object} util.Response
// @Router /api/courses/{id}/library/import [post]
func (c *ChapterController) ImportLibraryAsset(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	var req importAssetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	chapter, err := c.ChapterService.ImportLibraryAsset(profile, req.AssetID, ctx.Param("id"), req.ModuleID)
	if err != nil {
		handleServiceError(ctx, "library_import", err)
		return
	}
	util.Created(ctx, chapter)
}
