package controller

import (
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
	AccessService *service.AccessService
}

func NewCourseController(courseService *service.CourseService, accessService *service.AccessService) *CourseController {
	return &CourseController{
		CourseService: courseService,
		AccessService: accessService,
	}
}

type createCourseRequest struct {
	Title string `json:"title" binding:"required"`
}

// @Summary 创建课程
// @Description 教学人员创建空课程，创建者即课程所有者
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createCourseRequest true "课程标题"
// @Success 201 {object} util.Response
// @Router /api/courses [post]
func (c *CourseController) Create(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	var req createCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.Create(profile, req.Title)
	if err != nil {
		handleServiceError(ctx, "course_create", err)
		return
	}
	util.Created(ctx, course)
}

// @Summary 课程目录
// @Description 已发布课程目录，支持分类与标题过滤，附带购买状态与进度
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param categoryId query string false "分类ID"
// @Param title query string false "标题关键词"
// @Success 200 {object} util.Response
// @Router /api/courses [get]
func (c *CourseController) Catalog(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	entries, err := c.CourseService.Catalog(profile, ctx.Query("categoryId"), ctx.Query("title"))
	if err != nil {
		handleServiceError(ctx, "course_catalog", err)
		return
	}
	util.Success(ctx, entries)
}

// @Summary 学员仪表盘
// @Description 已购课程列表及各课程进度
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/courses/dashboard [get]
func (c *CourseController) Dashboard(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	entries, err := c.CourseService.Dashboard(profile)
	if err != nil {
		handleServiceError(ctx, "course_dashboard", err)
		return
	}
	util.Success(ctx, entries)
}

// @Summary 我的课程
// @Description 讲师工作台：拥有或被指派的课程
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/courses/mine [get]
func (c *CourseController) ListMine(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	courses, err := c.CourseService.ListMine(profile)
	if err != nil {
		handleServiceError(ctx, "course_list_mine", err)
		return
	}
	util.Success(ctx, courses)
}

// @Summary 课程编辑视图
// @Description 返回课程完整结构，需要课程编辑权
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CourseController) GetForEdit(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	course, err := c.CourseService.GetForEdit(profile, ctx.Param("id"))
	if err != nil {
		handleServiceError(ctx, "course_get", err)
		return
	}
	util.Success(ctx, course)
}

// @Summary 更新课程
// @Description 更新课程基础信息，需要课程编辑权
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Param request body service.CourseUpdate true "待更新字段"
// @Success 200 {object} util.Response
// @Router /api/courses/{id} [patch]
func (c *CourseController) Update(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CourseUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.Update(profile, ctx.Param("id"), req)
	if err != nil {
		handleServiceError(ctx, "course_update", err)
		return
	}
	util.Success(ctx, course)
}

// @Summary 删除课程
// @Description 删除课程及其章节、模块、附件
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id} [delete]
func (c *CourseController) Delete(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.CourseService.Delete(profile, ctx.Param("id")); err != nil {
		handleServiceError(ctx, "course_delete", err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 课程送审
// @Description 校验发布前置条件后将课程置为待审批
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/publish [put]
func (c *CourseController) Publish(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.AccessService.SubmitCourseForApproval(profile, ctx.Param("id")); err != nil {
		handleServiceError(ctx, "course_publish", err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 课程下线
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/unpublish [put]
func (c *CourseController) Unpublish(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.AccessService.UnpublishCourse(profile, ctx.Param("id")); err != nil {
		handleServiceError(ctx, "course_unpublish", err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 批准课程上架
// @Description 管理员批准待审批课程
// @Tags 审批
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/admin/courses/{id}/approve [put]
func (c *CourseController) Approve(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.AccessService.ApproveCourse(profile, ctx.Param("id")); err != nil {
		handleServiceError(ctx, "course_approve", err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 驳回课程送审
// @Tags 审批
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/admin/courses/{id}/reject [put]
func (c *CourseController) Reject(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.AccessService.RejectCourse(profile, ctx.Param("id")); err != nil {
		handleServiceError(ctx, "course_reject", err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 待审批课程列表
// @Tags 审批
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/admin/courses/pending [get]
func (c *CourseController) ListPendingApproval(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	courses, err := c.CourseService.ListPendingApproval(profile)
	if err != nil {
		handleServiceError(ctx, "course_pending", err)
		return
	}
	util.Success(ctx, courses)
}

type instructorRequest struct {
	ProfileID string `json:"profileId" binding:"required"`
}

// @Summary 指派讲师
// @Description 为课程指派一名教学人员作为讲师
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Param request body instructorRequest true "讲师档案ID"
// @Success 201 {object} util.Response
// @Router /api/courses/{id}/instructors [post]
func (c *CourseController) AddInstructor(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	var req instructorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.CourseService.AddInstructor(profile, ctx.Param("id"), req.ProfileID); err != nil {
		handleServiceError(ctx, "instructor_add", err)
		return
	}
	util.Created(ctx, nil)
}

// @Summary 移除讲师
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Param profileId path string true "讲师档案ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/instructors/{profileId} [delete]
func (c *CourseController) RemoveInstructor(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.CourseService.RemoveInstructor(profile, ctx.Param("id"), ctx.Param("profileId")); err != nil {
		handleServiceError(ctx, "instructor_remove", err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 讲师列表
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/instructors [get]
func (c *CourseController) ListInstructors(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	instructors, err := c.CourseService.ListInstructors(profile, ctx.Param("id"))
	if err != nil {
		handleServiceError(ctx, "instructor_list", err)
		return
	}
	util.Success(ctx, instructors)
}

type attachmentRequest struct {
	Name             string `json:"name" binding:"required"`
	URL              string `json:"url" binding:"required"`
	OriginalFilename string `json:"originalFilename"`
}

// @Summary 添加课程附件
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Param request body attachmentRequest true "附件信息"
// @Success 201 {object} util.Response
// @Router /api/courses/{id}/attachments [post]
func (c *CourseController) AddAttachment(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	var req attachmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attachment, err := c.CourseService.AddAttachment(profile, ctx.Param("id"), req.Name, req.URL, req.OriginalFilename)
	if err != nil {
		handleServiceError(ctx, "attachment_add", err)
		return
	}
	util.Created(ctx, attachment)
}

// @Summary 课程附件列表
// @Description 已购学员与教学人员可见
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/attachments [get]
func (c *CourseController) ListAttachments(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	attachments, err := c.CourseService.ListAttachments(profile, ctx.Param("id"))
	if err != nil {
		handleServiceError(ctx, "attachment_list", err)
		return
	}
	util.Success(ctx, attachments)
}

// @Summary 删除课程附件
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attachmentId path string true "附件ID"
// @Success 200 {object} util.Response
// @Router /api/attachments/{attachmentId} [delete]
func (c *CourseController) DeleteAttachment(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.CourseService.DeleteAttachment(profile, ctx.Param("attachmentId")); err != nil {
		handleServiceError(ctx, "attachment_delete", err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 课程分类列表
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/categories [get]
func (c *CourseController) ListCategories(ctx *gin.Context) {
	categories, err := c.CourseService.ListCategories()
	if err != nil {
		handleServiceError(ctx, "category_list", err)
		return
	}
	util.Success(ctx, categories)
}

type createCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// @Summary 创建课程分类
// @Description 仅管理员
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createCategoryRequest true "分类名称"
// @Success 201 {object} util.Response
// @Router /api/categories [post]
func (c *CourseController) CreateCategory(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	var req createCategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	category, err := c.CourseService.CreateCategory(profile, req.Name)
	if err != nil {
		handleServiceError(ctx, "category_create", err)
		return
	}
	util.Created(ctx, category)
}
