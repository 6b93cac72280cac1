package controller

import (
	"skilltree_backend/internal/service"
	"skilltree_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CompositionController struct {
	CompositionService *service.CompositionService
}

func NewCompositionController(compositionService *service.CompositionService) *CompositionController {
	return &CompositionController{CompositionService: compositionService}
}

// ListCompositions godoc
// @Summary 组合列表
// @Description 返回当前用户拥有或公开分享的组合
// @Tags 组合
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Composition}
// @Router /api/compositions [get]
func (c *CompositionController) ListCompositions(ctx *gin.Context) {
	list, err := c.CompositionService.ListCompositions(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// CreateComposition godoc
// @Summary 新建组合
// @Tags 组合
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CompositionRequest true "组合信息"
// @Success 201 {object} util.Response{data=model.Composition}
// @Router /api/compositions [post]
func (c *CompositionController) CreateComposition(ctx *gin.Context) {
	var req service.CompositionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	comp, err := c.CompositionService.CreateComposition(ctx.Request.Context(), currentUserID(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, comp)
}

// GetComposition godoc
// @Summary 组合详情
// @Tags 组合
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "组合ID"
// @Success 200 {object} util.Response{data=service.CompositionDetail}
// @Failure 404 {object} util.Response
// @Router /api/compositions/{id} [get]
func (c *CompositionController) GetComposition(ctx *gin.Context) {
	detail, err := c.CompositionService.GetComposition(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// UpdateComposition godoc
// @Summary 更新组合
// @Tags 组合
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "组合ID"
// @Param body body service.CompositionRequest true "组合信息"
// @Success 200 {object} util.Response{data=model.Composition}
// @Router /api/compositions/{id} [put]
func (c *CompositionController) UpdateComposition(ctx *gin.Context) {
	var req service.CompositionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	comp, err := c.CompositionService.UpdateComposition(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, comp)
}

// DeleteComposition godoc
// @Summary 删除组合
// @Description 级联删除组合下的全部技能树和技能
// @Tags 组合
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "组合ID"
// @Success 200 {object} util.Response
// @Router /api/compositions/{id} [delete]
func (c *CompositionController) DeleteComposition(ctx *gin.Context) {
	if err := c.CompositionService.DeleteComposition(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// CreateSkilltree godoc
// @Summary 新建技能树
// @Description withExample 为 true 时写入一个带两个子技能的示例技能
// @Tags 技能树
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "组合ID"
// @Param body body service.SkilltreeRequest true "技能树信息"
// @Success 201 {object} util.Response{data=model.Skilltree}
// @Router /api/compositions/{id}/skilltrees [post]
func (c *CompositionController) CreateSkilltree(ctx *gin.Context) {
	var req service.SkilltreeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	tree, err := c.CompositionService.CreateSkilltree(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, tree)
}

// UpdateSkilltree godoc
// @Summary 更新技能树
// @Tags 技能树
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "技能树ID"
// @Param body body service.SkilltreeRequest true "技能树信息"
// @Success 200 {object} util.Response{data=model.Skilltree}
// @Router /api/skilltrees/{id} [put]
func (c *CompositionController) UpdateSkilltree(ctx *gin.Context) {
	var req service.SkilltreeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	tree, err := c.CompositionService.UpdateSkilltree(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, tree)
}

// MoveSkilltree godoc
// @Summary 移动技能树
// @Tags 技能树
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "技能树ID"
// @Param body body MoveRequest true "方向"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response "并发修改冲突"
// @Router /api/skilltrees/{id}/move [post]
func (c *CompositionController) MoveSkilltree(ctx *gin.Context) {
	var req MoveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	dir, err := parseDirection(req.Direction)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if err := c.CompositionService.MoveSkilltree(ctx.Request.Context(), ctx.Param("id"), dir); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// DeleteSkilltree godoc
// @Summary 删除技能树
// @Tags 技能树
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "技能树ID"
// @Success 200 {object} util.Response
// @Router /api/skilltrees/{id} [delete]
func (c *CompositionController) DeleteSkilltree(ctx *gin.Context) {
	if err := c.CompositionService.DeleteSkilltree(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
