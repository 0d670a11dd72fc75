package controller

import (
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// MessageController 导师答疑接口，前端每5秒轮询拉取消息与未读数
type MessageController struct {
	ThreadService *service.ThreadService
}

func NewMessageController(threadService *service.ThreadService) *MessageController {
	return &MessageController{ThreadService: threadService}
}

// @Summary 拉取线程消息
// @Description 线程全部消息按时间升序，学生固定取自己的线程，教学人员需传 threadStudentId
// @Tags 答疑
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Param threadStudentId query string false "线程学生档案ID（教学人员必传）"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/messages [get]
func (c *MessageController) List(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	messages, err := c.ThreadService.ListThread(profile, ctx.Param("id"), ctx.Query("threadStudentId"))
	if err != nil {
		handleServiceError(ctx, "thread_list", err)
		return
	}
	util.Success(ctx, messages)
}

type postMessageRequest struct {
	Content         string `json:"content" binding:"required"`
	ThreadStudentID string `json:"threadStudentId"`
}

// @Summary 发送消息
// @Description 线程归属由服务端裁决：学生只能写自己的线程
// @Tags 答疑
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Param request body postMessageRequest true "消息内容"
// @Success 201 {object} util.Response
// @Router /api/courses/{id}/messages [post]
func (c *MessageController) Post(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	var req postMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	msg, err := c.ThreadService.Post(profile, ctx.Param("id"), req.ThreadStudentID, req.Content)
	if err != nil {
		handleServiceError(ctx, "thread_post", err)
		return
	}
	util.Created(ctx, msg)
}

type markReadRequest struct {
	StudentID string `json:"studentId" binding:"required"`
}

// @Summary 教学人员标记学生线程已读
// @Description 每位教学人员对每个学生线程维护独立游标
// @Tags 答疑
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Param request body markReadRequest true "学生档案ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/messages/read [post]
func (c *MessageController) MarkRead(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	var req markReadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.ThreadService.MarkReadMentor(profile, ctx.Param("id"), req.StudentID); err != nil {
		handleServiceError(ctx, "thread_read", err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 学生标记已读
// @Description 学生把自己线程的已读游标推到当前时间
// @Tags 答疑
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/messages/read-student [post]
func (c *MessageController) MarkReadStudent(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.ThreadService.MarkReadStudent(profile, ctx.Param("id")); err != nil {
		handleServiceError(ctx, "thread_read_student", err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 课程学员会话列表
// @Description 有消息往来的学生，未读的排前面，其余按最新消息倒序
// @Tags 答疑
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/chat-students [get]
func (c *MessageController) ChatStudents(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	students, err := c.ThreadService.ListChatStudents(profile, ctx.Param("id"))
	if err != nil {
		handleServiceError(ctx, "chat_students", err)
		return
	}
	util.Success(ctx, students)
}

// @Summary 学生课程未读数
// @Tags 答疑
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/messages/unread [get]
func (c *MessageController) UnreadCount(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	count, err := c.ThreadService.StudentUnreadCount(profile, ctx.Param("id"))
	if err != nil {
		handleServiceError(ctx, "thread_unread", err)
		return
	}
	util.Success(ctx, gin.H{"unreadCount": count})
}

// @Summary 全站未读角标
// @Description 学生全部已购课程的未读总数
// @Tags 答疑
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/messages/unread-badge [get]
func (c *MessageController) UnreadBadge(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	total, err := c.ThreadService.UnreadBadge(profile)
	if err != nil {
		handleServiceError(ctx, "unread_badge", err)
		return
	}
	util.Success(ctx, gin.H{"unreadCount": total})
}

// @Summary 讲师连线总览
// @Description 名下全部课程及每门课的未读消息汇总
// @Tags 答疑
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/mentor-connect [get]
func (c *MessageController) Hub(ctx *gin.Context) {
	profile := util.GetProfileFromContext(ctx)
	if profile == nil {
		util.Unauthorized(ctx)
		return
	}

	hub, err := c.ThreadService.HubOverview(profile)
	if err != nil {
		handleServiceError(ctx, "mentor_hub", err)
		return
	}
	util.Success(ctx, hub)
}
