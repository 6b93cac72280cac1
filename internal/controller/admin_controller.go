package controller

import (
	"skilltree_backend/internal/service"
	"skilltree_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AdminController 运维接口
type AdminController struct {
	OrderManager *service.OrderManager
}

func NewAdminController(orders *service.OrderManager) *AdminController {
	return &AdminController{OrderManager: orders}
}

// RepairOrder godoc
// @Summary 修复兄弟顺序
// @Description 把 path 下的子记录 order 重新整理为 0..n-1
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param path query string true "父路径（组合、技能树或技能）"
// @Success 200 {object} util.Response{data=object}
// @Router /api/admin/repair-order [post]
func (c *AdminController) RepairOrder(ctx *gin.Context) {
	path, ok := requirePath(ctx)
	if !ok {
		return
	}
	n, err := c.OrderManager.Repair(ctx.Request.Context(), path, "admin")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"changed": n})
}
