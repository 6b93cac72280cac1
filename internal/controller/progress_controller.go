package controller

import (
	"errors"
	"io"
	"net/http"
	"sync"

	"skilltree_backend/internal/model"
	"skilltree_backend/internal/service"
	"skilltree_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// streamBuffer 单个连接缓冲的变更数，客户端读得慢时丢弃多余事件
const streamBuffer = 32

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// SetStatus godoc
// @Summary 设置技能完成状态
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.SetStatusRequest true "技能路径与状态"
// @Success 200 {object} util.Response{data=model.SkillCompletion}
// @Router /api/progress [put]
func (c *ProgressController) SetStatus(ctx *gin.Context) {
	var req service.SetStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	completion, err := c.ProgressService.SetStatus(ctx.Request.Context(), currentUserID(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, completion)
}

// GetCompletion godoc
// @Summary 完成状态
// @Description 按技能树返回当前用户每个技能的状态
// @Tags 学习进度
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "组合ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/compositions/{id}/completion [get]
func (c *ProgressController) GetCompletion(ctx *gin.Context) {
	maps, err := c.ProgressService.CompletionMaps(ctx.Request.Context(), currentUserID(ctx), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, maps)
}

// GetSummary godoc
// @Summary 进度汇总
// @Tags 学习进度
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "组合ID"
// @Success 200 {object} util.Response{data=service.ProgressSummary}
// @Router /api/compositions/{id}/progress [get]
func (c *ProgressController) GetSummary(ctx *gin.Context) {
	summary, err := c.ProgressService.Summary(ctx.Request.Context(), currentUserID(ctx), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

// StreamCompletion godoc
// @Summary 完成状态变更推送
// @Description 以 SSE 推送组合内的完成状态变更，学生只收到自己的变更
// @Tags 学习进度
// @Produce text/event-stream
// @Security ApiKeyAuth
// @Param id path string true "组合ID"
// @Success 200 {object} model.SkillCompletion
// @Failure 503 {object} util.Response
// @Router /api/compositions/{id}/completion/stream [get]
func (c *ProgressController) StreamCompletion(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	ownOnly := claims.Role == model.Student

	events := make(chan model.SkillCompletion, streamBuffer)
	unsubscribe, err := c.ProgressService.Subscribe(ctx.Request.Context(), ctx.Param("id"), func(change model.SkillCompletion) {
		if ownOnly && change.UserID != claims.UserID {
			return
		}
		select {
		case events <- change:
		default:
		}
	})
	if errors.Is(err, service.ErrSubscriptionsUnavailable) {
		util.Error(ctx, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	var once sync.Once
	defer once.Do(unsubscribe)

	done := ctx.Request.Context().Done()
	ctx.Stream(func(w io.Writer) bool {
		// 先写出已到达的变更，再等待新事件或连接关闭
		select {
		case change := <-events:
			ctx.SSEvent("completion", change)
			return true
		default:
		}
		select {
		case <-done:
			once.Do(unsubscribe)
			return false
		case change := <-events:
			ctx.SSEvent("completion", change)
			return true
		}
	})
}
