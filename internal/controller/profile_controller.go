package controller

import (
	"strconv"

	"lms_backend/internal/model"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	ProfileService *service.ProfileService
}

func NewProfileController(profileService *service.ProfileService) *ProfileController {
	return &ProfileController{ProfileService: profileService}
}

// @Summary 获取当前用户档案
// @Description 返回当前登录用户的档案与能力集
// @Tags 档案
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/profiles/me [get]
func (c *ProfileController) GetMe(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	util.Success(ctx, gin.H{
		"profile":      profile,
		"capabilities": util.GetCapabilitiesFromContext(ctx),
	})
}

// @Summary 更新当前用户档案
// @Description 修改当前用户的姓名和头像，角色不可自改
// @Tags 档案
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ProfileUpdate true "要更新的字段"
// @Success 200 {object} util.Response
// @Router /api/profiles/me [patch]
func (c *ProfileController) UpdateMe(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ProfileUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	updated, err := c.ProfileService.UpdateSelf(profile, req)
	if err != nil {
		handleServiceError(ctx, "profile_update_self", err)
		return
	}
	util.Success(ctx, updated)
}

type updateRoleRequest struct {
	Role model.Role `json:"role" binding:"required"`
}

// @Summary 变更用户角色
// @Description 管理员为指定档案设置角色
// @Tags 档案
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "档案ID"
// @Param request body updateRoleRequest true "目标角色"
// @Success 200 {object} util.Response
// @Router /api/profiles/{id}/role [put]
func (c *ProfileController) UpdateRole(ctx *gin.Context) {
	actor := util.GetProfileFromContext(ctx)
	if actor == nil {
		util.Unauthorized(ctx)
		return
	}

	var req updateRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	switch req.Role {
	case model.RoleStudent, model.RoleTeacher, model.RoleAdmin, model.RoleMarketer:
	default:
		util.BadRequest(ctx, "Invalid role")
		return
	}

	if err := c.ProfileService.UpdateRole(actor, ctx.Param("id"), req.Role); err != nil {
		handleServiceError(ctx, "profile_update_role", err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 搜索用户档案
// @Description 教学人员按姓名或邮箱搜索档案，用于讲师选择与用户管理，结果不含本人
// @Tags 档案
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param q query string false "搜索关键词"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response
// @Router /api/profiles [get]
func (c *ProfileController) Search(ctx *gin.Context) {
	actor := util.GetProfileFromContext(ctx)
	if actor == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	profiles, total, err := c.ProfileService.Search(actor, ctx.Query("q"), limit, (page-1)*limit)
	if err != nil {
		handleServiceError(ctx, "profile_search", err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  profiles,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}
