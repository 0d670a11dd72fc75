package controller

import (
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CheckoutController struct {
	CheckoutService *service.CheckoutService
}

func NewCheckoutController(checkoutService *service.CheckoutService) *CheckoutController {
	return &CheckoutController{CheckoutService: checkoutService}
}

// @Summary 创建支付订单
// @Description 为当前用户创建课程购买订单，返回前端发起支付所需字段
// @Tags 购买
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Success 201 {object} util.Response
// @Router /api/courses/{id}/checkout [post]
func (c *CheckoutController) CreateOrder(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	order, err := c.CheckoutService.CreateOrder(profile, ctx.Param("id"))
	if err != nil {
		handleServiceError(ctx, "checkout_create", err)
		return
	}
	util.Created(ctx, order)
}

type verifyRequest struct {
	OrderID   string `json:"orderId" binding:"required"`
	PaymentID string `json:"paymentId" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// @Summary 支付回执验签并开通
// @Description 验签通过后写入购买记录，重复回执幂等
// @Tags 购买
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Param request body verifyRequest true "支付回执"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/checkout/verify [post]
func (c *CheckoutController) Verify(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	var req verifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.CheckoutService.VerifyAndEnroll(profile, ctx.Param("id"), req.OrderID, req.PaymentID, req.Signature); err != nil {
		handleServiceError(ctx, "checkout_verify", err)
		return
	}
	util.Success(ctx, nil)
}
