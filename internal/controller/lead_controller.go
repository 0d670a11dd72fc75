package controller

import (
	"strconv"

	"lms_backend/internal/model"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LeadController struct {
	LeadService *service.LeadService
}

func NewLeadController(leadService *service.LeadService) *LeadController {
	return &LeadController{LeadService: leadService}
}

type createLeadRequest struct {
	Name   string           `json:"name" binding:"required"`
	Email  string           `json:"email"`
	Phone  string           `json:"phone"`
	Source string           `json:"source"`
	Status model.LeadStatus `json:"status"`
	Notes  string           `json:"notes"`
}

// @Summary 创建线索
// @Tags 线索
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createLeadRequest true "线索信息"
// @Success 201 {object} util.Response
// @Router /api/leads [post]
func (c *LeadController) Create(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	var req createLeadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lead := &model.Lead{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Source: req.Source,
		Status: req.Status,
		Notes:  req.Notes,
	}
	if err := c.LeadService.Create(profile, lead); err != nil {
		handleServiceError(ctx, "lead_create", err)
		return
	}
	util.Created(ctx, lead)
}

// @Summary 线索列表
// @Description 管理员看全部，营销人员只看自己名下的
// @Tags 线索
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param status query string false "状态过滤"
// @Param q query string false "搜索关键词"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response
// @Router /api/leads [get]
func (c *LeadController) List(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
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

	leads, total, err := c.LeadService.List(profile, model.LeadStatus(ctx.Query("status")), ctx.Query("q"), limit, (page-1)*limit)
	if err != nil {
		handleServiceError(ctx, "lead_list", err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  leads,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// @Summary 线索详情
// @Tags 线索
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "线索ID"
// @Success 200 {object} util.Response
// @Router /api/leads/{id} [get]
func (c *LeadController) Get(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	lead, err := c.LeadService.Get(profile, ctx.Param("id"))
	if err != nil {
		handleServiceError(ctx, "lead_get", err)
		return
	}
	util.Success(ctx, lead)
}

// @Summary 更新线索
// @Tags 线索
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "线索ID"
// @Param request body service.LeadUpdate true "待更新字段"
// @Success 200 {object} util.Response
// @Router /api/leads/{id} [patch]
func (c *LeadController) Update(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.LeadUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lead, err := c.LeadService.Update(profile, ctx.Param("id"), req)
	if err != nil {
		handleServiceError(ctx, "lead_update", err)
		return
	}
	util.Success(ctx, lead)
}

// @Summary 删除线索
// @Tags 线索
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "线索ID"
// @Success 200 {object} util.Response
// @Router /api/leads/{id} [delete]
func (c *LeadController) Delete(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.LeadService.Delete(profile, ctx.Param("id")); err != nil {
		handleServiceError(ctx, "lead_delete", err)
		return
	}
	util.Success(ctx, nil)
}
