package controller

import (
	"fmt"

	"skilltree_backend/internal/skilltree"
	"skilltree_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// MoveRequest 上移或下移
type MoveRequest struct {
	Path      string `json:"path"`
	Direction string `json:"direction" binding:"required,oneof=up down"`
}

func parseDirection(s string) (skilltree.Direction, error) {
	switch s {
	case "up":
		return skilltree.MoveUp, nil
	case "down":
		return skilltree.MoveDown, nil
	default:
		return 0, fmt.Errorf("%w: direction must be up or down", skilltree.ErrIncompleteInput)
	}
}

func parseMode(s string) skilltree.ViewMode {
	if s == string(skilltree.ModeEditing) {
		return skilltree.ModeEditing
	}
	return skilltree.ModeViewing
}

// requirePath 读取 query 中的 path 参数，缺失时直接返回 400
func requirePath(ctx *gin.Context) (string, bool) {
	path := ctx.Query("path")
	if path == "" {
		util.BadRequest(ctx, "path is required")
		return "", false
	}
	return path, true
}

func currentUserID(ctx *gin.Context) uint {
	if claims := util.GetUserFromContext(ctx); claims != nil {
		return claims.UserID
	}
	return 0
}
